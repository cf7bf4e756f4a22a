package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/homebid/internal/auth"
	"github.com/evcraddock/homebid/internal/cache"
	"github.com/evcraddock/homebid/internal/logging"
	"github.com/evcraddock/homebid/internal/web"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the HTTP/JSON marketplace API. Configuration is read from HB_* environment variables and an optional .env file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (default: $HB_PORT or 8080)")

	return cmd
}

func runServe(cmd *cobra.Command, port int) error {
	cfg, err := auth.ConfigFromEnv()
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Port = port
	}
	if flagDB != "" {
		cfg.DBPath = flagDB
	}

	logging.Setup(cfg.DevMode)

	database, err := openDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer closeDB(database)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []web.Option
	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.CacheTTL)
		defer func() {
			if err := rc.Close(); err != nil {
				slog.Warn("closing redis", "error", err)
			}
		}()
		if err := pingCache(ctx, rc); err != nil {
			slog.Warn("cache unavailable, serving without it", "addr", cfg.RedisAddr, "error", err)
		} else {
			slog.Info("caching property reads", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
			opts = append(opts, web.WithCache(rc))
		}
	}

	srv := web.NewServer(database, cfg, opts...)
	if cfg.Seed {
		if err := srv.Seed(ctx); err != nil {
			return fmt.Errorf("seeding accounts: %w", err)
		}
	}

	return srv.ListenAndServe(ctx, cfg.Port)
}

func pingCache(ctx context.Context, rc *cache.Redis) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return rc.Ping(ctx)
}
