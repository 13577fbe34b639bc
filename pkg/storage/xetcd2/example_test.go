package xetcd2_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/omeyang/etcdkit/pkg/storage/xetcd2"
)

// ExampleNewClient 演示如何创建多端点客户端。
func ExampleNewClient() {
	cfg := xetcd2.DefaultConfig()
	cfg.Endpoints = []string{
		"http://node1:2379",
		"http://node2:2379",
		"http://node3:2379",
	}

	client, err := xetcd2.NewClient(cfg)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(len(client.Endpoints()), "endpoints configured")
	// Output: 3 endpoints configured
}

// ExampleDefaultConfig 演示默认配置。
func ExampleDefaultConfig() {
	cfg := xetcd2.DefaultConfig()
	cfg.Endpoints = []string{"http://localhost:2379"}

	fmt.Printf("RequestTimeout: %v\n", cfg.RequestTimeout)
	fmt.Printf("WatchTimeout: %v\n", cfg.WatchTimeout)
	// Output:
	// RequestTimeout: 5s
	// WatchTimeout: 0s
}

// ExampleClient_Get 演示读取键值。
func ExampleClient_Get() {
	cfg := xetcd2.DefaultConfig()
	cfg.Endpoints = []string{"http://localhost:2379"}

	client, err := xetcd2.NewClient(cfg)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := client.Get(context.Background(), "/foo", xetcd2.GetOptions{})
	if err != nil {
		if xetcd2.IsKeyNotFound(err) {
			fmt.Println("key does not exist")
			return
		}
		log.Fatal(err)
	}

	if resp.Data.Node.Value != nil {
		fmt.Println("value:", *resp.Data.Node.Value)
	}
}

// ExampleClient_CompareAndSwap 演示条件更新。
func ExampleClient_CompareAndSwap() {
	cfg := xetcd2.DefaultConfig()
	cfg.Endpoints = []string{"http://localhost:2379"}

	client, err := xetcd2.NewClient(cfg)
	if err != nil {
		log.Fatal(err)
	}

	// 仅当当前值为 "old" 时更新为 "new"
	_, err = client.CompareAndSwap(context.Background(), "/foo", "new", 0,
		&xetcd2.Conditions{Value: xetcd2.String("old")})
	if err != nil {
		if xetcd2.IsTestFailed(err) {
			fmt.Println("value changed concurrently, retry")
			return
		}
		log.Fatal(err)
	}

	fmt.Println("swapped")
}

// ExampleClient_Watch 演示带超时的一次性观察。
func ExampleClient_Watch() {
	cfg := xetcd2.DefaultConfig()
	cfg.Endpoints = []string{"http://localhost:2379"}

	client, err := xetcd2.NewClient(cfg)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := client.Watch(context.Background(), "/foo", xetcd2.WatchOptions{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		if xetcd2.IsWatchTimeout(err) {
			fmt.Println("no change within 5s")
			return
		}
		log.Fatal(err)
	}

	fmt.Println("change:", resp.Data.Action)
}

// ExampleClient_WatchStream 演示流式观察。
func ExampleClient_WatchStream() {
	cfg := xetcd2.DefaultConfig()
	cfg.Endpoints = []string{"http://localhost:2379"}

	client, err := xetcd2.NewClient(cfg)
	if err != nil {
		log.Fatal(err)
	}

	stream := client.WatchStream(context.Background(), "/config", xetcd2.WatchOptions{
		Recursive: true,
	})
	defer stream.Close()

	for ev := range stream.Events() {
		if ev.Err != nil {
			log.Fatal(ev.Err)
		}
		fmt.Println("change:", ev.Response.Data.Node.Key)
	}
}
