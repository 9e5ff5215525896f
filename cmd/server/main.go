package main

import (
	"context"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/moodlog/internal/cache"
	"github.com/moodlog/internal/config"
	"github.com/moodlog/internal/db"
	"github.com/moodlog/internal/handler"
	"github.com/moodlog/internal/logging"
	"github.com/moodlog/internal/router"
	"github.com/moodlog/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		Path:       cfg.LogPath,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	logging.SetGlobal(logger)

	// 初始化数据库
	if err := db.Init(db.Options{
		Driver:   cfg.DBDriver,
		Path:     cfg.DatabasePath,
		DSN:      cfg.DatabaseDSN,
		LogLevel: logging.GormLevel(cfg.LogLevel),
	}); err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	statsCache, err := cache.Open(context.Background(), cfg.RedisURL, cfg.StatsCacheTTL, logger)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer statsCache.Close()

	location, err := cfg.Location()
	if err != nil {
		logger.Fatal("invalid timezone", zap.Error(err))
	}

	required := make([]service.Section, 0, len(cfg.RequiredSections))
	for _, name := range cfg.RequiredSections {
		if section, ok := service.ParseSection(name); ok {
			required = append(required, section)
		}
	}

	api := handler.NewAPI(db.DB, handler.Options{
		RequiredSections: required,
		StreakWindowDays: cfg.StreakWindowDays,
		Cache:            statsCache,
		Logger:           logger,
		Location:         location,
	})

	if mode := strings.TrimSpace(cfg.GinMode); mode != "" {
		gin.SetMode(mode)
	}

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, router.Config{
		SessionSecret:      cfg.SessionSecret,
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		SecureCookie:       cfg.SecureCookie,
		Logger:             logger,
	})

	logger.Info("server starting",
		zap.String("addr", cfg.ListenAddr),
		zap.String("db_driver", cfg.DBDriver),
		zap.Bool("stats_cache", statsCache.Enabled()),
		zap.Strings("required_sections", cfg.RequiredSections),
	)
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Fatal("failed to run server", zap.Error(err))
	}
}
