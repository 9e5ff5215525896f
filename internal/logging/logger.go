package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
	gormlogger "gorm.io/gorm/logger"
)

// Options 控制日志级别与滚动文件输出。
type Options struct {
	Level      string
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

var (
	mu     sync.RWMutex
	global = zap.NewNop()
)

// New 构建 JSON 格式的 zap logger：stdout 始终输出，配置 Path 时追加 lumberjack 滚动文件。
func New(opts Options) (*zap.Logger, error) {
	level := ParseLevel(opts.Level)
	enabler := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= level })
	encoder := zapcore.NewJSONEncoder(encoderConfig())

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), enabler),
	}

	if path := strings.TrimSpace(opts.Path); path != "" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		rolling := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    orDefault(opts.MaxSizeMB, 100),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			MaxAge:     orDefault(opts.MaxAgeDays, 7),
			Compress:   opts.Compress,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rolling), enabler))
	}

	zapOpts := []zap.Option{zap.AddCaller()}
	if level == zapcore.DebugLevel {
		zapOpts = append(zapOpts, zap.Development())
	}
	return zap.New(zapcore.NewTee(cores...), zapOpts...), nil
}

// SetGlobal 替换全局 logger，nil 时回退为 Nop。
func SetGlobal(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	mu.Lock()
	global = logger
	mu.Unlock()
}

// L 返回全局 logger
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// ParseLevel 将字符串级别映射为 zapcore.Level，未知值按 info 处理。
func ParseLevel(raw string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// GormLevel 让 gorm 的 SQL 日志跟随应用日志级别。
func GormLevel(raw string) gormlogger.LogLevel {
	switch ParseLevel(raw) {
	case zapcore.DebugLevel:
		return gormlogger.Info
	case zapcore.InfoLevel, zapcore.WarnLevel:
		return gormlogger.Warn
	default:
		return gormlogger.Error
	}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     encodeTime,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func encodeTime(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
