package api

import (
	"net/http"

	adminPlugin "payhost-backend/internal/api/v1/admin/plugin"
	paymentRoutes "payhost-backend/internal/api/v1/payment"
	"payhost-backend/internal/metrics"
	"payhost-backend/internal/middleware"
	"payhost-backend/internal/payment"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the HTTP API around an already loaded plugin registry.
func NewRouter(registry *payment.Registry, allowOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Sec-WebSocket-Protocol"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum age for preflight requests
	}))

	// Websocket upgrades and the Prometheus scrape must not be compressed.
	router.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/metrics", "/api/v1/admin/plugins/ws"}),
	))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "plugins": registry.Len()})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API v1
	v1 := router.Group("/api/v1")
	{
		paymentRoutes.RegisterRoutes(v1, registry)

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware())
		{
			adminPlugin.RegisterRoutes(admin, registry, allowOrigins)
		}
	}

	return router
}
