package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"LoaderDash/internal/api"
	"LoaderDash/internal/auth"
	"LoaderDash/internal/config"
	"LoaderDash/internal/db"
	log "LoaderDash/internal/log"
	"LoaderDash/internal/server"
)

// Version 会在构建时通过 -ldflags "-X main.Version=xxx" 注入
var Version = "dev"

func main() {
	// 命令行参数处理
	portFlag := flag.String("port", "", "HTTP 服务端口 (优先级高于环境变量 PORT)，默认 5055")
	flag.Parse()

	// 加载配置，密钥缺失时直接退出
	cfg, err := config.Load(*portFlag)
	if err != nil {
		log.Errorf("加载配置失败: %v", err)
		os.Exit(1)
	}

	// 打开数据库连接并初始化表结构
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Errorf("初始化数据库失败: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	// 初始化服务与路由
	authService := auth.NewService(cfg.AdminKey, cfg.APIKey)
	apiRouter := api.NewRouter(database, authService)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := server.New(addr, apiRouter)

	// 启动HTTP服务器
	go func() {
		log.Infof("LoaderDash[%s]启动在 http://localhost:%s", Version, cfg.Port)
		if err := srv.Start(); err != http.ErrServerClosed {
			log.Errorf("HTTP服务器错误: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infof("正在关闭服务器...")

	// 优雅关闭HTTP服务器
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("服务器关闭错误: %v", err)
	}

	log.Infof("服务器已关闭")
}
