// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dongdong-game/dongdong/internal/cache"
	"github.com/dongdong-game/dongdong/internal/database"
	"github.com/dongdong-game/dongdong/internal/game"
	"github.com/dongdong-game/dongdong/internal/handlers"
	"github.com/dongdong-game/dongdong/internal/room"
)

var CLI struct {
	Addr           string        `short:"a" default:":8080" env:"DONGDONG_ADDR" help:"Address to listen on."`
	LogLevel       string        `short:"l" default:"info" env:"LOG_LEVEL" enum:"debug,info,warn,error" help:"Log level."`
	RoundDelay     time.Duration `default:"5s" env:"ROUND_DELAY" help:"Pause between a round's last trick and the next deal."`
	Seed           int64         `env:"SEED" help:"Seed for room codes and deals. Zero seeds from the clock."`
	HiddenHands    bool          `env:"HIDDEN_HANDS" help:"Only show each player their own hand."`
	AllowedOrigins string        `env:"ALLOWED_ORIGINS" help:"Comma separated list of allowed browser origins. Empty allows all."`
	RedisAddr      string        `env:"REDIS_ADDR" help:"Redis address for the action history queue. Empty disables it."`
	RedisDB        int           `env:"REDIS_DB" help:"Redis database number."`
	Queue          string        `default:"dongdong_actions" env:"HISTORIAN_QUEUE_NAME" help:"Redis list receiving action records."`
	DatabaseURL    string        `env:"DATABASE_URL" help:"Postgres URL for match results. Empty falls back to PG_* variables."`
	ShutdownGrace  time.Duration `default:"10s" help:"How long to wait for open requests on shutdown."`
}

func main() {
	kctx := kong.Parse(&CLI, kong.Description("Dong Dong game server."))

	logger := logrus.New()
	level, err := logrus.ParseLevel(CLI.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := room.Config{
		RoundDelay:  CLI.RoundDelay,
		Logger:      logger,
		HiddenHands: CLI.HiddenHands,
		Seed:        CLI.Seed,
	}

	if CLI.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cache.Options{Addr: CLI.RedisAddr, DB: CLI.RedisDB})
		if err != nil {
			logger.WithError(err).Error("redis unavailable, action history disabled")
		} else {
			defer rdb.Close()
			cfg.Publisher = cache.NewPublisher(rdb, CLI.Queue)
			logger.Infof("Publishing actions to Redis list %s", CLI.Queue)
		}
	}

	connStr := CLI.DatabaseURL
	if connStr == "" {
		connStr = database.ConnStringFromEnv()
	}
	if connStr != "" {
		if err := database.ConnectDB(ctx, connStr); err != nil {
			logger.WithError(err).Error("postgres unavailable, match archive disabled")
		} else if err := database.EnsureSchema(ctx); err != nil {
			logger.WithError(err).Error("failed to create schema, match archive disabled")
			database.Close()
		} else {
			defer database.Close()
			logger.Info("Archiving match results to Postgres")
		}
	}
	if database.DB != nil {
		cfg.OnGameOver = archiveMatch(logger)
	}

	store := room.NewStore(cfg)
	rs := handlers.NewRoomServer(store, logger, splitOrigins(CLI.AllowedOrigins)...)

	srv := &http.Server{
		Addr:              CLI.Addr,
		Handler:           rs.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Running on %s", CLI.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		store.CloseAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), CLI.ShutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("server exited")
		kctx.Exit(1)
	}
}

// archiveMatch stores final standings without holding up the room.
func archiveMatch(logger *logrus.Logger) room.GameOverFunc {
	return func(code string, standings []game.Standing) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			id, err := database.RecordMatchResults(ctx, code, standings)
			if err != nil {
				logger.WithError(err).WithField("room", code).Error("failed to record match results")
				return
			}
			logger.WithFields(logrus.Fields{"room": code, "match": id}).Info("match results recorded")
		}()
	}
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
