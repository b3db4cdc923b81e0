// Package fiber provides a zerolog based access log middleware for fiber.
package fiber

import (
	"io"
	"os"
	"path"
	"slices"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rosterd/rosterd/internal/logger"
)

// Config implements fiber middleware struct.
type Config struct {
	// Next defines a function to skip this middleware when returned true.
	//
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Config of the logger.
	Config logger.Log

	// CacheControlError max-age caching on chain errors.
	CacheControlError string

	// SkipPaths are never logged when Config.DisableCheckAlive is set (health checks, metric scrapes).
	SkipPaths []string

	// UserIDLocal names the fiber.Locals key holding the logged-in user id, if any.
	UserIDLocal string
}

// ConfigDefault is the default config for fiber.
var ConfigDefault = Config{
	Next:              nil,
	CacheControlError: "max-age=0",
}

func configDefault(config ...Config) Config {
	if len(config) < 1 {
		return ConfigDefault
	}

	cfg := config[0]

	if cfg.CacheControlError == "" {
		cfg.CacheControlError = ConfigDefault.CacheControlError
	}

	return cfg
}

// New creates a new fiber access logging middleware using zerolog.
func New(config ...Config) fiber.Handler {
	var (
		writers []io.Writer
		cfg     = configDefault(config...)
	)

	if cfg.Config.File.Enabled {
		if fw := newRollingAccessFile(&cfg.Config); fw != nil {
			writers = append(writers, fw)
		}
	}

	// console output needs both the general switch and the access log switch
	if cfg.Config.Console.Enabled && cfg.Config.EnableAccessLogToConsole {
		if cfg.Config.Console.UseConsoleWriter {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:          os.Stdout,
				NoColor:      false,
				TimeFormat:   zerolog.TimeFieldFormat,
				PartsExclude: []string{"level"},
			})
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	accessLogger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger().
		Level(zerolog.NoLevel)

	return func(ctx *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(ctx) {
			return ctx.Next()
		}

		start := time.Now()

		chainErr := ctx.Next()
		if chainErr != nil {
			if errH := ctx.App().ErrorHandler(ctx, chainErr); errH != nil {
				_ = ctx.SendStatus(fiber.StatusInternalServerError) //nolint:errcheck
				ctx.Response().Header.Set(fiber.HeaderCacheControl, cfg.CacheControlError)
			}
		}

		elapsed := time.Since(start)
		ctx.Response().Header.Set("X-Response-Time", strconv.FormatInt(elapsed.Microseconds(), 10)+"us")

		if cfg.Config.DisableCheckAlive && slices.Contains(cfg.SkipPaths, ctx.Path()) {
			return nil
		}

		logRequest(accessLogger.Log(), ctx, cfg.UserIDLocal, elapsed, chainErr)

		return nil
	}
}

// logRequest writes one access log line for the finished request.
func logRequest(event *zerolog.Event, ctx *fiber.Ctx, userIDLocal string, elapsed time.Duration, chainErr error) {
	uri := ctx.Path()
	if q := ctx.Request().URI().QueryString(); len(q) > 0 {
		uri += "?" + string(q)
	}

	event.Str("method", ctx.Method()).
		Str("uri", uri).
		Int("status", ctx.Response().StatusCode()).
		Dur("elapsed", elapsed).
		Int("bytes", len(ctx.Response().Body())).
		Str("ip", ctx.IP()).
		Bytes("host", ctx.Request().Host()).
		Str("forwarded_for", ctx.Get(fiber.HeaderXForwardedFor)).
		Str("user_agent", ctx.Get(fiber.HeaderUserAgent)).
		Str("referer", ctx.Get(fiber.HeaderReferer))

	if userIDLocal != "" {
		if userID, ok := ctx.Locals(userIDLocal).(uint64); ok {
			event.Uint64("user_id", userID)
		}
	}

	if chainErr != nil {
		event.Err(chainErr)
	}

	event.Send()
}

// newRollingAccessFile uses lumberjack to create file based access log.
func newRollingAccessFile(cfg *logger.Log) io.Writer {
	if cfg.File.Path != "" {
		if err := os.MkdirAll(cfg.File.Path, 0o750); err != nil {
			log.Error().Err(err).Str("path", cfg.File.Path).Msg("can't create log directory")

			return nil
		}
	}

	return &lumberjack.Logger{
		Filename:   path.Join(cfg.File.Path, cfg.File.AccessLog),
		MaxSize:    cfg.File.AccessMaxSize,
		MaxAge:     cfg.File.AccessMaxAge,
		MaxBackups: cfg.File.AccessMaxBackups,
	}
}
