// Package log 提供基于 zerolog 的全局 logger，输出到 stderr，可选写入 lumberjack 轮转文件.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yeisme/filedock/pkg/configs"
)

// serviceName 每条日志附带的 service 字段.
const serviceName = "filedock"

var (
	logger   zerolog.Logger
	initOnce sync.Once
)

// Init 按全局配置初始化 logger，只生效一次.
func Init() {
	initOnce.Do(func() {
		cfg := configs.GetConfig()
		logger = New(cfg.Log, cfg.Server.Debug)
		log.Logger = logger

		if cfg.Server.Debug {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}
	})
}

// New 按配置构建 logger，除全局级别外不修改全局状态.
func New(c configs.LogConfig, debug bool) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(c.Level))

	var stderr io.Writer = os.Stderr
	if c.Format != "json" {
		stderr = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	w := stderr
	if c.EnableFile && c.FilePath != "" {
		w = zerolog.MultiLevelWriter(stderr, &lumberjack.Logger{
			Filename:   c.FilePath,
			MaxSize:    c.MaxSize,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAge,
			Compress:   c.Compress,
		})
	}

	zc := zerolog.New(w).With().Timestamp().Str("service", serviceName)
	if debug {
		zc = zc.Caller()
	}

	return zc.Logger()
}

func parseLevel(s string) zerolog.Level {
	if s == "" {
		return zerolog.InfoLevel
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q, using info\n", s)
		return zerolog.InfoLevel
	}

	return lvl
}

// Logger 返回全局 logger，未初始化时按当前配置初始化.
func Logger() *zerolog.Logger {
	Init()
	return &logger
}

// Component 返回带 component 字段的子 logger.
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}

// GinWriter 把 gin 的文本输出转为固定级别的 zerolog 事件.
type GinWriter struct {
	logger *zerolog.Logger
	level  zerolog.Level
}

func NewGinWriter(logger *zerolog.Logger, level zerolog.Level) *GinWriter {
	return &GinWriter{logger: logger, level: level}
}

func (w *GinWriter) Write(p []byte) (int, error) {
	if msg := strings.TrimSpace(string(p)); msg != "" {
		w.logger.WithLevel(w.level).Str("component", "gin").Msg(msg)
	}

	return len(p), nil
}
