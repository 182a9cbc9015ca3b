package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lumenshare/cardledger/internal/adapter"
	"github.com/lumenshare/cardledger/internal/api/middleware"
	"github.com/lumenshare/cardledger/internal/api/rest"
	"github.com/lumenshare/cardledger/internal/catalog"
	"github.com/lumenshare/cardledger/internal/exchange"
	"github.com/lumenshare/cardledger/internal/ledger"
	"github.com/lumenshare/cardledger/internal/logger"
	"github.com/lumenshare/cardledger/internal/minting"
	"github.com/lumenshare/cardledger/internal/wallet"
)

// Config holds the server configuration
type Config struct {
	Debug           bool
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	Auth            middleware.AuthConfig
	WriteRatePerMin int
}

// Services bundles the domain services the API exposes
type Services struct {
	Catalog  catalog.Service
	Ledger   ledger.Service
	Minting  minting.Coordinator
	Exchange exchange.Service
	Wallet   wallet.Service
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	services   Services
	redis      adapter.RedisClient
	httpServer *http.Server
}

// New creates a new API server. redis may be nil; the write rate limiter
// then runs on local limiters only.
func New(cfg Config, services Services, redis adapter.RedisClient) *Server {
	return &Server{
		config:   cfg,
		services: services,
		redis:    redis,
	}
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	// Set Gin mode based on debug flag
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Setup middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS())

	// Create REST handler
	restHandler := rest.NewHandler(
		s.services.Catalog,
		s.services.Ledger,
		s.services.Minting,
		s.services.Exchange,
		s.services.Wallet,
	)

	// Setup REST routes
	writeLimit := middleware.WriteRateLimit(s.redis, s.config.WriteRatePerMin)
	rest.SetupRoutes(router, restHandler, s.config.Auth, writeLimit)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Info("Starting API server",
		zap.String("address", addr),
	)

	// Start server
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
