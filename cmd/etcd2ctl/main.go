// etcd2ctl 是 etcd v2 集群的命令行客户端。
//
// 用法:
//
//	etcd2ctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-e, --endpoints  集群端点列表 (默认: http://127.0.0.1:2379)
//	-c, --config     配置文件路径 (yaml/json，优先级低于 --endpoints)
//	-t, --timeout    单次请求超时时间 (默认: 5s)
//	-u, --username   Basic 认证用户名
//	-p, --password   Basic 认证密码
//
// 命令:
//
//	get <key>            读取键或目录
//	set <key> <value>    写入键值对
//	rm <key>             删除键
//	mkdir <key>          创建目录
//	rmdir <key>          删除空目录
//	watch <key>          观察键的变更
//	members              列出集群成员
//	health               检查各成员健康状态
//	version              查询各成员版本
//
// 退出码:
//
//	0: 命令执行成功
//	1: 命令执行失败（端点不可达、键不存在等）
//	2: 参数错误（缺少参数、未知命令等）
//
// 示例:
//
//	etcd2ctl get /foo
//	etcd2ctl -e http://node1:2379,http://node2:2379 set /foo bar
//	etcd2ctl set /session token --ttl 60
//	etcd2ctl watch /config --recursive --forever
//	etcd2ctl -c etcd.yaml health
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
)

// defaultTimeout 默认请求超时时间。
const defaultTimeout = 5 * time.Second

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args))
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "etcd2ctl",
		Usage:   "etcd v2 集群命令行客户端",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "endpoints",
				Aliases: []string{"e"},
				Usage:   "集群端点列表",
				Value:   []string{"http://127.0.0.1:2379"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径 (yaml/json)",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "单次请求超时时间",
				Value:   defaultTimeout,
			},
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Basic 认证用户名",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Basic 认证密码",
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，
		// 由 run() 统一处理退出码映射，确保与文档退出码契约一致。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run(args []string) int {
	app := createApp()

	if err := app.Run(context.Background(), args); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		// CLI 框架产生的参数错误（如未知 flag、未知命令）也返回退出码 2
		var exitCoder cli.ExitCoder
		if errors.As(err, &exitCoder) {
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}

	return 0
}
