// cmd/historian/main.go drains room action records from the Redis queue into
// the room_actions table.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/dongdong-game/dongdong/internal/cache"
	"github.com/dongdong-game/dongdong/internal/database"
	"github.com/dongdong-game/dongdong/internal/historian"
)

var CLI struct {
	LogLevel    string        `short:"l" default:"info" env:"LOG_LEVEL" enum:"debug,info,warn,error" help:"Log level."`
	RedisAddr   string        `default:"localhost:6379" env:"REDIS_ADDR" help:"Redis address."`
	RedisDB     int           `env:"REDIS_DB" help:"Redis database number."`
	Queue       string        `default:"dongdong_actions" env:"HISTORIAN_QUEUE_NAME" help:"Redis list to drain."`
	BatchSize   int           `default:"20" env:"HISTORIAN_BATCH_SIZE" help:"Records per insert."`
	FlushMS     int           `name:"flush-ms" default:"500" env:"HISTORIAN_FLUSH_MS" help:"Flush a partial batch after this many milliseconds."`
	PollWait    time.Duration `default:"3s" help:"How long each BLPOP waits."`
	DatabaseURL string        `env:"DATABASE_URL" help:"Postgres URL. Empty falls back to PG_* variables."`
}

func main() {
	kctx := kong.Parse(&CLI, kong.Description("Archives Dong Dong room actions."))

	logger := logrus.New()
	if level, err := logrus.ParseLevel(CLI.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connStr := CLI.DatabaseURL
	if connStr == "" {
		connStr = database.ConnStringFromEnv()
	}
	if connStr == "" {
		logger.Error("no database configured, set DATABASE_URL or PG_HOST")
		kctx.Exit(1)
	}
	if err := database.ConnectDB(ctx, connStr); err != nil {
		logger.WithError(err).Error("database connection failed")
		kctx.Exit(1)
	}
	defer database.Close()
	if err := database.EnsureSchema(ctx); err != nil {
		logger.WithError(err).Error("failed to create schema")
		kctx.Exit(1)
	}

	rdb, err := cache.Connect(ctx, cache.Options{Addr: CLI.RedisAddr, DB: CLI.RedisDB})
	if err != nil {
		logger.WithError(err).Error("redis connection failed")
		kctx.Exit(1)
	}
	defer rdb.Close()

	svc := historian.New(cache.NewConsumer(rdb, CLI.Queue), database.ActionWriter{}, historian.Config{
		BatchSize:  CLI.BatchSize,
		FlushDelay: time.Duration(CLI.FlushMS) * time.Millisecond,
		PollWait:   CLI.PollWait,
		Logger:     logger.WithField("queue", CLI.Queue),
	})
	if err := svc.Run(ctx); err != nil {
		logger.WithError(err).Error("historian stopped")
		kctx.Exit(1)
	}
}
