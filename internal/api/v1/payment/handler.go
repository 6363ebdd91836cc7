package payment

import (
	"net/http"

	plugins "payhost-backend/internal/payment"
	"payhost-backend/internal/services"
	"payhost-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	registry *plugins.Registry
}

func NewHandler(registry *plugins.Registry) *Handler {
	return &Handler{registry: registry}
}

// GetPaymentMethods returns the enabled payment plugins and whether each
// one currently targets its sandbox
func (h *Handler) GetPaymentMethods(c *gin.Context) {
	methods, err := services.GetEnabledPaymentMethods(h.registry)
	if err != nil {
		c.JSON(utils.NewServiceErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", methods))
}
