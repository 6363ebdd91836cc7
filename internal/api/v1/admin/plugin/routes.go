package plugin

import (
	"payhost-backend/internal/payment"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the plugin admin API on an admin-authenticated group.
func RegisterRoutes(r *gin.RouterGroup, registry *payment.Registry, allowOrigins []string) {
	h := NewHandler(registry, allowOrigins)

	r.POST("/logout", h.Logout)

	pluginGroup := r.Group("/plugins")
	{
		pluginGroup.GET("", h.ListPlugins)
		pluginGroup.PUT("/debug", h.SetDebugAll)
		pluginGroup.GET("/ws", h.Stream)
		pluginGroup.GET("/:platform", h.GetPlugin)
		pluginGroup.PUT("/:platform", h.UpdatePlugin)
		pluginGroup.PUT("/:platform/debug", h.SetDebug)
		pluginGroup.GET("/:platform/history", h.GetHistory)
	}
}
