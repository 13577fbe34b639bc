package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/etcdkit/pkg/storage/xetcd2"
)

// usageError 参数错误，映射为退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// newClient 从全局 flag 构建客户端。
// --config 提供基础配置，--endpoints 等命令行参数覆盖其中的对应字段。
func newClient(cmd *cli.Command) (*xetcd2.Client, error) {
	var cfg *xetcd2.Config

	if path := cmd.String("config"); path != "" {
		loaded, err := xetcd2.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = xetcd2.DefaultConfig()
	}

	if cmd.IsSet("endpoints") || len(cfg.Endpoints) == 0 {
		cfg.Endpoints = cmd.StringSlice("endpoints")
	}
	if cmd.IsSet("timeout") {
		cfg.RequestTimeout = cmd.Duration("timeout")
	}
	if u := cmd.String("username"); u != "" {
		cfg.Username = u
		cfg.Password = cmd.String("password")
	}

	return xetcd2.NewClient(cfg)
}

// requireArg 取第 i 个位置参数，缺失时返回参数错误。
func requireArg(cmd *cli.Command, i int, name string) (string, error) {
	v := cmd.Args().Get(i)
	if v == "" {
		return "", &usageError{msg: fmt.Sprintf("缺少参数 <%s>", name)}
	}
	return v, nil
}

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createGetCommand(),
		createSetCommand(),
		createRmCommand(),
		createMkdirCommand(),
		createRmdirCommand(),
		createWatchCommand(),
		createMembersCommand(),
		createHealthCommand(),
		createVersionCommand(),
	}
}

// createGetCommand 创建 get 子命令。
func createGetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "读取键或目录",
		ArgsUsage: "<key>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "recursive", Aliases: []string{"r"}, Usage: "递归列出目录子节点"},
			&cli.BoolFlag{Name: "sort", Usage: "按键名排序目录子节点"},
			&cli.BoolFlag{Name: "quorum", Aliases: []string{"q"}, Usage: "线性一致性读"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key, err := requireArg(cmd, 0, "key")
			if err != nil {
				return err
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			opts := xetcd2.GetOptions{
				Recursive: cmd.Bool("recursive"),
				Quorum:    cmd.Bool("quorum"),
			}
			if cmd.IsSet("sort") {
				opts.Sort = xetcd2.Bool(cmd.Bool("sort"))
			}

			resp, err := client.Get(ctx, key, opts)
			if err != nil {
				if xetcd2.IsKeyNotFound(err) {
					return fmt.Errorf("键不存在: %s", key)
				}
				return err
			}

			printNode(&resp.Data.Node, 0)
			return nil
		},
	}
}

// createSetCommand 创建 set 子命令。
func createSetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "写入键值对",
		ArgsUsage: "<key> <value>",
		Flags: []cli.Flag{
			&cli.Uint64Flag{Name: "ttl", Usage: "过期秒数 (0 表示不过期)"},
			&cli.StringFlag{Name: "swap-with-value", Usage: "仅当当前值匹配时写入"},
			&cli.Uint64Flag{Name: "swap-with-index", Usage: "仅当 modifiedIndex 匹配时写入"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key, err := requireArg(cmd, 0, "key")
			if err != nil {
				return err
			}
			value, err := requireArg(cmd, 1, "value")
			if err != nil {
				return err
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			ttl := cmd.Uint64("ttl")

			// 指定比较条件时走 CAS
			if cmd.IsSet("swap-with-value") || cmd.IsSet("swap-with-index") {
				cond := &xetcd2.Conditions{}
				if cmd.IsSet("swap-with-value") {
					cond.Value = xetcd2.String(cmd.String("swap-with-value"))
				}
				if cmd.IsSet("swap-with-index") {
					cond.ModifiedIndex = xetcd2.Uint64(cmd.Uint64("swap-with-index"))
				}

				resp, err := client.CompareAndSwap(ctx, key, value, ttl, cond)
				if err != nil {
					if xetcd2.IsTestFailed(err) {
						return fmt.Errorf("条件不匹配: %s", key)
					}
					return err
				}
				fmt.Println(*resp.Data.Node.Value)
				return nil
			}

			resp, err := client.Set(ctx, key, value, ttl)
			if err != nil {
				return err
			}
			fmt.Println(*resp.Data.Node.Value)
			return nil
		},
	}
}

// createRmCommand 创建 rm 子命令。
func createRmCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "删除键",
		ArgsUsage: "<key>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "recursive", Aliases: []string{"r"}, Usage: "递归删除目录"},
			&cli.StringFlag{Name: "with-value", Usage: "仅当当前值匹配时删除"},
			&cli.Uint64Flag{Name: "with-index", Usage: "仅当 modifiedIndex 匹配时删除"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key, err := requireArg(cmd, 0, "key")
			if err != nil {
				return err
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			if cmd.IsSet("with-value") || cmd.IsSet("with-index") {
				cond := &xetcd2.Conditions{}
				if cmd.IsSet("with-value") {
					cond.Value = xetcd2.String(cmd.String("with-value"))
				}
				if cmd.IsSet("with-index") {
					cond.ModifiedIndex = xetcd2.Uint64(cmd.Uint64("with-index"))
				}

				if _, err := client.CompareAndDelete(ctx, key, cond); err != nil {
					if xetcd2.IsTestFailed(err) {
						return fmt.Errorf("条件不匹配: %s", key)
					}
					return err
				}
				fmt.Println("已删除", key)
				return nil
			}

			if _, err := client.Delete(ctx, key, cmd.Bool("recursive")); err != nil {
				if xetcd2.IsKeyNotFound(err) {
					return fmt.Errorf("键不存在: %s", key)
				}
				return err
			}
			fmt.Println("已删除", key)
			return nil
		},
	}
}

// createMkdirCommand 创建 mkdir 子命令。
func createMkdirCommand() *cli.Command {
	return &cli.Command{
		Name:      "mkdir",
		Usage:     "创建目录",
		ArgsUsage: "<key>",
		Flags: []cli.Flag{
			&cli.Uint64Flag{Name: "ttl", Usage: "过期秒数 (0 表示不过期)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key, err := requireArg(cmd, 0, "key")
			if err != nil {
				return err
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			if _, err := client.CreateDir(ctx, key, cmd.Uint64("ttl")); err != nil {
				if xetcd2.IsNodeExist(err) {
					return fmt.Errorf("已存在: %s", key)
				}
				return err
			}
			fmt.Println("已创建", key)
			return nil
		},
	}
}

// createRmdirCommand 创建 rmdir 子命令。
func createRmdirCommand() *cli.Command {
	return &cli.Command{
		Name:      "rmdir",
		Usage:     "删除空目录",
		ArgsUsage: "<key>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key, err := requireArg(cmd, 0, "key")
			if err != nil {
				return err
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			if _, err := client.DeleteDir(ctx, key); err != nil {
				return err
			}
			fmt.Println("已删除", key)
			return nil
		},
	}
}

// createWatchCommand 创建 watch 子命令。
func createWatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "观察键的变更",
		ArgsUsage: "<key>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "recursive", Aliases: []string{"r"}, Usage: "观察目录及子节点"},
			&cli.Uint64Flag{Name: "after-index", Usage: "从指定索引开始观察"},
			&cli.BoolFlag{Name: "forever", Aliases: []string{"f"}, Usage: "持续观察，按 Ctrl-C 退出"},
			&cli.DurationFlag{Name: "wait-timeout", Usage: "单次等待超时 (0 表示无限等待)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key, err := requireArg(cmd, 0, "key")
			if err != nil {
				return err
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			opts := xetcd2.WatchOptions{
				Recursive: cmd.Bool("recursive"),
				Timeout:   cmd.Duration("wait-timeout"),
			}
			if cmd.IsSet("after-index") {
				opts.Index = xetcd2.Uint64(cmd.Uint64("after-index"))
			}

			if cmd.Bool("forever") {
				stream := client.WatchStream(ctx, key, opts)
				defer stream.Close()

				for ev := range stream.Events() {
					if ev.Err != nil {
						return ev.Err
					}
					printEvent(ev.Response)
				}
				return nil
			}

			resp, err := client.Watch(ctx, key, opts)
			if err != nil {
				if xetcd2.IsWatchTimeout(err) {
					return fmt.Errorf("等待超时: %s", key)
				}
				return err
			}
			printEvent(resp)
			return nil
		},
	}
}

// createMembersCommand 创建 members 子命令。
func createMembersCommand() *cli.Command {
	return &cli.Command{
		Name:  "members",
		Usage: "列出集群成员",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			resp, err := client.ListMembers(ctx)
			if err != nil {
				return err
			}
			for _, m := range resp.Data {
				fmt.Printf("%s: name=%s peerURLs=%v clientURLs=%v\n",
					m.ID, m.Name, m.PeerURLs, m.ClientURLs)
			}
			return nil
		},
	}
}

// createHealthCommand 创建 health 子命令。
func createHealthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "检查各成员健康状态",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			unhealthy := 0
			for _, r := range client.Health(ctx) {
				switch {
				case r.Err != nil:
					fmt.Printf("%s: 不可达 (%v)\n", r.Endpoint, r.Err)
					unhealthy++
				case r.Response.Data.IsHealthy():
					fmt.Printf("%s: 健康\n", r.Endpoint)
				default:
					fmt.Printf("%s: 不健康\n", r.Endpoint)
					unhealthy++
				}
			}
			if unhealthy > 0 {
				return fmt.Errorf("%d 个成员不健康或不可达", unhealthy)
			}
			return nil
		},
	}
}

// createVersionCommand 创建 version 子命令。
func createVersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "查询各成员版本",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			for _, r := range client.Versions(ctx) {
				if r.Err != nil {
					fmt.Printf("%s: 不可达 (%v)\n", r.Endpoint, r.Err)
					continue
				}
				fmt.Printf("%s: server=%s cluster=%s\n",
					r.Endpoint, r.Response.Data.ServerVersion, r.Response.Data.ClusterVersion)
			}
			return nil
		},
	}
}

// printNode 输出节点内容，目录按层级缩进。
func printNode(n *xetcd2.Node, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}

	if n.IsDir() {
		fmt.Fprintf(os.Stdout, "%s%s/\n", indent, n.Key)
		for i := range n.Nodes {
			printNode(&n.Nodes[i], depth+1)
		}
		return
	}

	value := ""
	if n.Value != nil {
		value = *n.Value
	}
	fmt.Fprintf(os.Stdout, "%s%s: %s\n", indent, n.Key, value)
}

// printEvent 输出一次变更事件。
func printEvent(resp *xetcd2.Response[xetcd2.KeyValueInfo]) {
	value := ""
	if resp.Data.Node.Value != nil {
		value = *resp.Data.Node.Value
	}
	fmt.Printf("[%s] %s: %s\n", resp.Data.Action, resp.Data.Node.Key, value)
}
