package payment

import (
	plugins "payhost-backend/internal/payment"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, registry *plugins.Registry) {
	h := NewHandler(registry)

	paymentGroup := r.Group("/payment")
	{
		paymentGroup.GET("/methods", h.GetPaymentMethods)
	}
}
