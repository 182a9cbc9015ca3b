package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/lumenshare/cardledger/internal/api/middleware"
)

// SetupRoutes configures all REST API routes. Reads are public; every
// mutating endpoint requires authentication and is write-rate limited.
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig, writeLimit gin.HandlerFunc) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	auth := middleware.Auth(authCfg)
	write := func(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
		chain := []gin.HandlerFunc{auth}
		if writeLimit != nil {
			chain = append(chain, writeLimit)
		}
		return append(chain, handlers...)
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Card catalog
		v1.POST("/cards", write(handler.CreateCard)...)
		v1.GET("/cards/:id", handler.GetCard)
		v1.GET("/cards", handler.ListCards)

		// Minting
		v1.POST("/cards/:id/mint", write(handler.MintCard)...)

		// Collections and wallets
		v1.GET("/users/:id/collection", handler.GetCollection)
		v1.GET("/users/:id/wallet", handler.GetWallet)

		// Listings
		v1.PUT("/ownerships/:id/listing", write(handler.SetListing)...)
		v1.DELETE("/ownerships/:id/listing", write(handler.RemoveListing)...)

		// Marketplace
		v1.GET("/marketplace", handler.QueryMarketplace)
		v1.POST("/ownerships/:id/purchase", write(handler.Purchase)...)
	}
}
