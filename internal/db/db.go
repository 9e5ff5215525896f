package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Options 描述数据库连接方式；Driver 为空时使用 sqlite。
type Options struct {
	Driver   string
	Path     string
	DSN      string
	LogLevel logger.LogLevel
}

// Init 初始化数据库连接并执行自动迁移。
// sqlite 下 Path 为空时回退到默认值 moodlog.db。
func Init(opts Options) error {
	dialector, err := dialectorFor(opts)
	if err != nil {
		return err
	}

	level := opts.LogLevel
	if level == 0 {
		level = logger.Warn
	}

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return err
	}

	return Migrate(DB)
}

// Migrate 为全部模型建表并写入成就目录。
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return SeedAchievements(gdb)
}

// Models 返回需要迁移的模型集合，测试中也复用该列表。
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Profile{},
		&DailyCheckIn{},
		&CheckInSection{},
		&SleepLog{},
		&MoodLog{},
		&AppetiteLog{},
		&MedicationLog{},
		&SubstanceLog{},
		&ThoughtLog{},
		&ImpulseLog{},
		&LibidoLog{},
		&ConcentrationLog{},
		&UserCoins{},
		&CoinTransaction{},
		&GamePlay{},
		&Achievement{},
		&UserAchievement{},
	}
}

func dialectorFor(opts Options) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", "sqlite":
		path := strings.TrimSpace(opts.Path)
		if path == "" {
			path = "moodlog.db"
		}
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
		return sqlite.Open(path), nil
	case "mysql":
		dsn := strings.TrimSpace(opts.DSN)
		if dsn == "" {
			return nil, errors.New("mysql dsn is required")
		}
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") || path == ":memory:" {
		return nil
	}

	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
