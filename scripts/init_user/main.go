package main

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v9"
	"github.com/moodlog/internal/config"
	"github.com/moodlog/internal/db"
	"github.com/moodlog/internal/logging"
)

type initUserConfig struct {
	Email       string `env:"INIT_USER_EMAIL" envDefault:"demo@moodlog.local"`
	Password    string `env:"INIT_USER_PASSWORD" envDefault:"demo1234"`
	DisplayName string `env:"INIT_USER_NAME" envDefault:"Demo"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}

	var user initUserConfig
	if err := env.Parse(&user); err != nil {
		log.Fatal("读取初始用户配置失败:", err)
	}

	// 初始化数据库
	if err := db.Init(db.Options{
		Driver:   cfg.DBDriver,
		Path:     cfg.DatabasePath,
		DSN:      cfg.DatabaseDSN,
		LogLevel: logging.GormLevel(cfg.LogLevel),
	}); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	if err := db.EnsureUser(user.Email, user.Password, user.DisplayName); err != nil {
		log.Fatal("创建用户失败:", err)
	}

	fmt.Println("初始用户已就绪")
	fmt.Println("邮箱:", user.Email)
}
