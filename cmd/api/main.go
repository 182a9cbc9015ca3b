package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lumenshare/cardledger/internal/adapter"
	"github.com/lumenshare/cardledger/internal/api/middleware"
	"github.com/lumenshare/cardledger/internal/api/server"
	"github.com/lumenshare/cardledger/internal/cache"
	"github.com/lumenshare/cardledger/internal/catalog"
	"github.com/lumenshare/cardledger/internal/config"
	"github.com/lumenshare/cardledger/internal/exchange"
	"github.com/lumenshare/cardledger/internal/ledger"
	"github.com/lumenshare/cardledger/internal/logger"
	"github.com/lumenshare/cardledger/internal/messaging"
	"github.com/lumenshare/cardledger/internal/minting"
	"github.com/lumenshare/cardledger/internal/providers/jetstream"
	"github.com/lumenshare/cardledger/internal/store"
	"github.com/lumenshare/cardledger/internal/wallet"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"component": "api-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Cardledger API")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	if err := store.Migrate(db); err != nil {
		logger.FatalCtx(ctx, "Failed to migrate database schema", zap.Error(err))
	}

	// Initialize adapters
	clock := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()

	// Initialize store
	dataStore := store.NewPGStore(db, clock)

	// Connect to NATS JetStream for card lifecycle events
	var publisher messaging.Publisher
	if cfg.NATS.URL != "" {
		publisher, err = jetstream.NewPublisher(jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, adapter.NewNatsJetStream(), jsonAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err))
		}
		defer publisher.Close()
		logger.InfoCtx(ctx, "Connected to NATS", zap.String("url", cfg.NATS.URL))
	} else {
		logger.WarnCtx(ctx, "NATS URL not configured, card events will not be published")
	}

	// Connect to Redis for the card cache and the write rate limiter
	var redisClient adapter.RedisClient
	var cardCache *cache.CardCache
	if cfg.Redis.Addr != "" {
		redisClient = adapter.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.WarnCtx(ctx, "Redis unreachable, card cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			cardCache = cache.NewCardCache(redisClient, jsonAdapter, cfg.Redis.CardTTL)
			logger.InfoCtx(ctx, "Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	} else {
		logger.WarnCtx(ctx, "Redis not configured, card cache disabled")
	}

	// Wire up domain services
	walletService := wallet.NewService(db, clock)
	catalogService := catalog.NewService(dataStore, cardCache, publisher, clock)
	ledgerService := ledger.NewService(dataStore, cardCache, publisher, clock)
	mintingCoordinator := minting.NewCoordinator(dataStore, walletService, cardCache, publisher, clock)
	exchangeService := exchange.NewService(dataStore, walletService, cardCache, publisher, clock, cfg.Marketplace.QueryFetchWorkers)
	defer exchangeService.Close()

	// Create server config
	serverConfig := server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
			APIKeys:      cfg.Auth.APIKeys,
		},
		WriteRatePerMin: cfg.Marketplace.WriteRatePerMin,
	}

	// Create and start server
	srv := server.New(serverConfig, server.Services{
		Catalog:  catalogService,
		Ledger:   ledgerService,
		Minting:  mintingCoordinator,
		Exchange: exchangeService,
		Wallet:   walletService,
	}, redisClient)

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("API server stopped")
}
