package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finantah/credit-simulator/internal/cache"
	"github.com/finantah/credit-simulator/internal/config"
	"github.com/finantah/credit-simulator/internal/logging"
	"github.com/finantah/credit-simulator/internal/remote"
	"github.com/finantah/credit-simulator/internal/server"
	"github.com/finantah/credit-simulator/internal/simulator"
	"github.com/finantah/credit-simulator/pkg/constants"
	"github.com/finantah/credit-simulator/pkg/profitability"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(logger, cfg); err != nil {
		logger.Fatal("server stopped with error",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

func run(logger *zap.Logger, cfg *server.Config) error {
	secrets, err := server.LoadSecrets()
	if err != nil {
		return err
	}

	policy, err := loadPolicy(logger, cfg.PolicyFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, logger, cfg, secrets)
	if err != nil {
		return err
	}
	defer closeStore()

	deterministic, err := simulator.NewDeterministic(policy, logger)
	if err != nil {
		return err
	}
	var evaluator simulator.Evaluator = deterministic
	if store != nil {
		evaluator = simulator.NewCached(deterministic, store, cfg.CacheTTL(), logger)
	}

	// Remote narratives are not cached: repeated calls are expected to differ.
	var remoteEvaluator simulator.Evaluator
	if cfg.Remote.Enabled() {
		provider, err := remote.NewProvider(ctx, cfg.Remote.WithDefaults(), secrets.APIKeys())
		if err != nil {
			return err
		}
		if remoteEvaluator, err = remote.NewEvaluator(provider, cfg.Remote, logger); err != nil {
			return err
		}
		logger.Info("remote evaluation enabled",
			zap.String("op", "main.run"),
			zap.String("provider", provider.Name()),
		)
	}

	handler, err := server.NewHandler(logger, server.Options{
		Policy:      policy,
		Evaluator:   evaluator,
		Remote:      remoteEvaluator,
		MaxBodySize: cfg.BodySizeBytes(),
		RateLimit:   cfg.RateLimit,
		Version:     version,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("op", "main.run"),
			zap.String("address", cfg.Address),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("op", "main.run"))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeoutDuration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server exited", zap.String("op", "main.run"))
	return nil
}

func loadPolicy(logger *zap.Logger, path string) (profitability.Policy, error) {
	if path == "" {
		logger.Info("no policy file configured, using default policy", zap.String("op", "main.loadPolicy"))
		return profitability.DefaultPolicy(), nil
	}

	conf, err := config.LoadConfiguration(path)
	if err != nil {
		return profitability.Policy{}, err
	}
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning, zap.String("op", "main.loadPolicy"))
	}
	return conf.Policy.ToPolicy()
}

// openStore returns nil when caching is disabled. Redis is used when
// REDIS_ADDR is set, otherwise outcomes are kept in process memory.
func openStore(ctx context.Context, logger *zap.Logger, cfg *server.Config, secrets server.Secrets) (cache.Store, func(), error) {
	if cfg.Cache.Disabled {
		return nil, func() {}, nil
	}
	if secrets.RedisAddr == "" {
		logger.Info("using in-memory cache", zap.String("op", "main.openStore"))
		return cache.NewMemoryStore(), func() {}, nil
	}

	store, err := cache.ConnectRedis(ctx, cache.RedisOptions{
		Addr:     secrets.RedisAddr,
		Password: secrets.RedisPassword,
		DB:       secrets.RedisDB,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close redis client", zap.String("op", "main.openStore"), zap.Error(err))
		}
	}, nil
}
