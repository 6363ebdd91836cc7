package middleware

import (
	"net/http"

	"payhost-backend/internal/services"
	"payhost-backend/internal/utils"
	"payhost-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextOperatorKey = "operator"
	ContextTokenKey    = "token"
	ContextClaimsKey   = "claims"
)

// AdminAuthMiddleware validates that the caller holds an admin token.
// The token subject is stored in the context as the operator for audit records.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := utils.ExtractToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, err.Error()))
			c.Abort()
			return
		}

		isDenylisted, err := services.IsDenylisted(tokenString)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to check token status"))
			c.Abort()
			return
		}
		if isDenylisted {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Token has been revoked"))
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Invalid or expired token"))
			c.Abort()
			return
		}

		role, ok := claims["role"].(string)
		if !ok || role != "admin" {
			logger.Named("auth").Warn("Unauthorized admin access attempt",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Forbidden: Admins only"))
			c.Abort()
			return
		}

		operator, _ := claims["sub"].(string)
		if operator == "" {
			operator = "admin"
		}
		c.Set(ContextOperatorKey, operator)
		c.Set(ContextTokenKey, tokenString)
		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}
