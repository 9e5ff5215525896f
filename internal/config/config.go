package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// AllSections 列出全部打卡分区，REQUIRED_SECTIONS 缺省时使用。
var AllSections = []string{
	"sleep",
	"mood",
	"appetite",
	"medications",
	"substances",
	"thoughts",
	"impulses",
	"libido",
	"concentration",
}

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr    string `env:"LISTEN_ADDR"`
	Port          string `env:"PORT" envDefault:"8080"`
	DBDriver      string `env:"DB_DRIVER" envDefault:"sqlite"`
	DatabasePath  string `env:"DATABASE_PATH" envDefault:"moodlog.db"`
	DatabaseDSN   string `env:"DATABASE_DSN"`
	SessionSecret string `env:"SESSION_SECRET" envDefault:"moodlog-dev-secret"`
	SecureCookie  bool   `env:"SECURE_COOKIE" envDefault:"false"`
	GinMode       string `env:"GIN_MODE" envDefault:"release"`
	Timezone      string `env:"TIMEZONE" envDefault:"Local"`

	RedisURL      string        `env:"REDIS_URL"`
	StatsCacheTTL time.Duration `env:"STATS_CACHE_TTL" envDefault:"10m"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogPath       string `env:"LOG_PATH"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"7"`
	LogCompress   bool   `env:"LOG_COMPRESS" envDefault:"false"`

	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	AllowedOrigins     []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	RequiredSections   []string `env:"REQUIRED_SECTIONS" envSeparator:","`
	StreakWindowDays   int      `env:"STREAK_WINDOW_DAYS" envDefault:"30"`
}

// Load 读取 .env（若存在）与环境变量，并为缺失项补齐默认值。
func Load() (AppConfig, error) {
	// .env 仅用于本地开发，不存在时忽略
	_ = godotenv.Load()

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c *AppConfig) normalize() {
	c.Port = strings.TrimSpace(c.Port)
	if strings.TrimSpace(c.ListenAddr) == "" {
		c.ListenAddr = fmt.Sprintf(":%s", c.Port)
	}

	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	sections := make([]string, 0, len(c.RequiredSections))
	seen := make(map[string]struct{}, len(c.RequiredSections))
	for _, raw := range c.RequiredSections {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		sections = append(sections, name)
	}
	if len(sections) == 0 {
		sections = append(sections, AllSections...)
	}
	c.RequiredSections = sections

	origins := make([]string, 0, len(c.AllowedOrigins))
	for _, raw := range c.AllowedOrigins {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.AllowedOrigins = origins

	if c.StreakWindowDays <= 0 {
		c.StreakWindowDays = 30
	}
	if c.RateLimitPerMinute <= 0 {
		c.RateLimitPerMinute = 60
	}
}

func (c AppConfig) validate() error {
	switch c.DBDriver {
	case "sqlite":
	case "mysql":
		if strings.TrimSpace(c.DatabaseDSN) == "" {
			return fmt.Errorf("DATABASE_DSN is required when DB_DRIVER=mysql")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	for _, name := range c.RequiredSections {
		if !isKnownSection(name) {
			return fmt.Errorf("unknown section %q in REQUIRED_SECTIONS", name)
		}
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location 解析 TIMEZONE，打卡日期按该时区切分自然日。
func (c AppConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

func isKnownSection(name string) bool {
	for _, section := range AllSections {
		if section == name {
			return true
		}
	}
	return false
}
