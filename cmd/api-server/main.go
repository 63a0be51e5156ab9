// Package main API Server 入口
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"zensync/internal/apiserver/server"
	"zensync/internal/config"
	"zensync/internal/shared/objstore"
	"zensync/internal/shared/storage/mongostore"
)

func main() {
	// 加载配置（自动加载 .env，根据 APP_ENV 切换 configs/{env}.yaml）
	cfg := config.Load()

	log.Printf("Starting API Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	if cfg.JWTSecret == "" {
		log.Fatal("SECRET_KEY is required")
	}

	// 初始化 MongoDB（业务数据）
	store, err := mongostore.NewStore(cfg.DBURL, cfg.DBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer store.Close()
	log.Println("Connected to MongoDB")

	// 初始化 MinIO（视频与缩略图）
	objects, err := objstore.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("Failed to create MinIO client: %v", err)
	}
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := objects.EnsureBucket(ctx); err != nil {
			log.Fatalf("Failed to ensure MinIO bucket: %v", err)
		}
	}
	log.Println("Connected to MinIO")

	// 初始化 Redis（聊天扇出 + OAuth state）；未配置时单实例降级运行
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		rdb = redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		cancel()
		defer rdb.Close()
		log.Println("Connected to Redis")
	} else {
		log.Println("Redis not configured, running single-instance")
	}

	h := server.NewHandler(cfg, store, objects, rdb)

	// 大文件上传和 WebSocket 都是长连接，只限制请求头读取时间
	srv := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           h.Router(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("API Server listening on :%s", cfg.APIPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}
