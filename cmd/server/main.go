package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"anoa.com/pengaduan/internal/bootstrap"
	"anoa.com/pengaduan/internal/config"
	"anoa.com/pengaduan/internal/server"
	"anoa.com/pengaduan/pkg/database"
	"anoa.com/pengaduan/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DSN(), cfg.LogLevel == "debug")
	if err != nil {
		zap.L().Fatal("failed to connect database", zap.Error(err))
	}

	if err := bootstrap.Migrate(db); err != nil {
		zap.L().Fatal("migration failed", zap.Error(err))
	}

	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedUsers(db); err != nil {
			zap.L().Fatal("failed to seed users", zap.Error(err))
		}
		if err := bootstrap.SeedRegistry(db); err != nil {
			zap.L().Fatal("failed to seed lokasi/items", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		zap.L().Warn("redis unavailable, login throttling falls back to memory", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv, err := server.NewServer(cfg, db, redisClient)
	if err != nil {
		zap.L().Fatal("failed to build server", zap.Error(err))
	}

	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		zap.L().Fatal("server exited with error", zap.Error(err))
	}
}
