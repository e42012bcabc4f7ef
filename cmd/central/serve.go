package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Urjashee/central-backend/internal/cache"
	"github.com/Urjashee/central-backend/internal/config"
	"github.com/Urjashee/central-backend/internal/store"
	"github.com/Urjashee/central-backend/internal/web"
	"github.com/Urjashee/central-backend/internal/web/server"
)

var (
	serveAddress string
	serveDomain  string
)

func init() {
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "Listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveDomain, "domain", "", "Public base URL (overrides config)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the OData server",
	Long: `Start the OData server over the built-in household survey dataset.

Configuration comes from central.yaml in the working directory and from
CENTRAL_* environment variables; the --address and --domain flags
override both.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("address") {
			cfg.Server.Address = serveAddress
		}
		if cmd.Flags().Changed("domain") {
			cfg.Server.Domain = serveDomain
		}

		logger, err := buildLogger(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		defer logger.Sync()

		backend, closeBackend, err := buildCacheBackend(cfg.Cache)
		if err != nil {
			return err
		}

		st := store.Demo()
		res, err := web.NewResource(web.ResourceConfig{
			Forms:       st,
			Submissions: st,
			Domain:      cfg.Server.Domain,
			Documents:   cache.NewDocuments(backend, cfg.Cache.TTL),
			Logger:      logger,
		})
		if err != nil {
			return fmt.Errorf("failed to build resource: %w", err)
		}

		serverConfig := server.DefaultConfig(res.Handler())
		serverConfig.Address = cfg.Server.Address
		serverConfig.ReadTimeout = cfg.Server.ReadTimeout
		serverConfig.WriteTimeout = cfg.Server.WriteTimeout
		serverConfig.IdleTimeout = cfg.Server.IdleTimeout

		srv, err := server.New(serverConfig)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		gs := server.NewGracefulShutdown(srv, &server.ShutdownConfig{
			Timeout: cfg.Server.ShutdownTimeout,
			Logger:  logger,
		})
		if closeBackend != nil {
			gs.RegisterHook(func(ctx context.Context) error {
				return closeBackend()
			})
		}

		successColor := color.New(color.FgGreen, color.Bold)
		infoColor := color.New(color.FgCyan)
		successColor.Printf("central listening on %s\n", cfg.Server.Address)
		infoColor.Printf("service root: %s/v1/forms/households.svc\n", cfg.Server.Domain)

		return gs.Start()
	},
}

func buildLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zapConfig := zap.NewProductionConfig()
	if cfg.Development {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	return zapConfig.Build()
}

// buildCacheBackend returns the configured document cache backend and, for
// backends holding connections, a close function for shutdown.
func buildCacheBackend(cfg config.CacheConfig) (cache.Cache, func() error, error) {
	switch cfg.Backend {
	case "redis":
		redisCache, err := cache.DialRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cache.DefaultConfig())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisCache, redisCache.Close, nil
	case "none":
		return nil, nil, nil
	default:
		return cache.NewMemory(), nil, nil
	}
}
