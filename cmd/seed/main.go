package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"custify/backend/config"
	"custify/backend/internal/repository"
	"custify/backend/internal/service"
	"custify/backend/pkg/database"
	"custify/backend/pkg/jwt"
	applogger "custify/backend/pkg/logger"
)

// seed 创建初始管理员账号，可重复执行
func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 不需要 Redis：黑名单与限流与初始化无关
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwt.NewManager(&cfg.Auth), nil, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, created, err := svc.User.EnsureAdmin(ctx)
	if err != nil {
		logger.Fatal("初始化管理员失败", zap.Error(err))
	}

	if created {
		logger.Info("管理员账号已创建", zap.Int64("user_id", admin.ID()), zap.String("user_name", admin.UserName()))
	} else {
		logger.Info("管理员账号已存在", zap.Int64("user_id", admin.ID()), zap.String("role", string(admin.Role())))
	}
}
