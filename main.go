package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"jarzd/config"
	"jarzd/server"
)

// jarzd 房间存储服务入口：HTTP 接口 + /ws 观察推送
func main() {
	var (
		cfgPath = flag.String("config", "jarzd.yaml", "path to YAML config")
		addr    = flag.String("addr", "", "server listen address, e.g. :8080 (overrides config)")
		backend = flag.String("store", "", "room store backend: memory | redis (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *backend != "" {
		cfg.Store.Backend = *backend
	}

	if err := server.InitLogger(server.LogOptions{
		File:    cfg.Log.File,
		Level:   cfg.Log.Level,
		Console: cfg.Log.Console,
	}); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	store, closeStore := openStore(cfg)
	defer closeStore()

	svc := server.NewService(store, server.WithStaleAfter(cfg.Room.StaleAfter))
	feed := server.NewFeed(svc, cfg.Room.FeedInterval)
	api := server.NewServer(svc, feed, cfg.Server.BasePath, redacted(cfg))

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		server.Log.Infof("jarzd room store listening on %s (store=%s, base=%s)", cfg.Server.Addr, cfg.Store.Backend, cfg.Server.BasePath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")

	feed.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		server.Log.Errorf("shutdown: %v", err)
	}
}

func openStore(cfg *config.Config) (server.Store, func()) {
	if cfg.Store.Backend != "redis" {
		return server.NewMemoryStore(cfg.Store.KeyPrefix), func() {}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Store.Redis.Addr,
		Password: cfg.Store.Redis.Password,
		DB:       cfg.Store.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		server.Log.Fatalf("redis %s: %v", cfg.Store.Redis.Addr, err)
	}
	return server.NewRedisStore(rdb, cfg.Store.KeyPrefix), func() { _ = rdb.Close() }
}

// redacted 去掉密钥后用于 /admin/config 输出
func redacted(cfg *config.Config) config.Config {
	c := *cfg
	c.Store.Redis.Password = ""
	c.Client.Token = ""
	return c
}
