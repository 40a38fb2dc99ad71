package main

import (
	"fmt"
	"log"

	"OsuMatchView/internal/adapter/osu"
	"OsuMatchView/internal/api"
	"OsuMatchView/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

func main() {
	// 1. 加载配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}

	// 2. 初始化日志
	logrusLogger := newLogger(cfg.Log)
	logrusLogger.Info("配置文件加载成功")

	// 3. 配置Gin运行模式（从配置读取：debug/release）
	gin.SetMode(cfg.Server.Mode)
	logrusLogger.Infof("Gin运行模式: %s", cfg.Server.Mode)

	// 4. 注册API路由
	source := osu.NewOsuAdapter(&cfg.Osu, logrusLogger)
	r := api.NewRouter(cfg, logrusLogger, source)

	// 5. 启动服务（从配置读取端口）
	port := cfg.Server.Port
	logrusLogger.Infof("服务启动成功，端口：%d", port)
	if err := r.Run(fmt.Sprintf(":%d", port)); err != nil {
		logrusLogger.Fatalf("启动服务失败: %v", err)
	}
}
