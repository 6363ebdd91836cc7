package plugin

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"payhost-backend/internal/middleware"
	"payhost-backend/internal/models"
	"payhost-backend/internal/payment"
	"payhost-backend/internal/services"
	"payhost-backend/internal/utils"
	"payhost-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	registry *payment.Registry
	upgrader *websocket.Upgrader
}

// NewHandler builds the admin plugin handler. allowOrigins limits which
// browser origins may open the websocket stream.
func NewHandler(registry *payment.Registry, allowOrigins []string) *Handler {
	return &Handler{registry: registry, upgrader: newUpgrader(allowOrigins)}
}

// toResponse reports false for rows whose platform this build does not
// know, such as rows left behind by a removed provider.
func (h *Handler) toResponse(s models.PluginSetting) (PluginResponse, bool) {
	platform, err := payment.ParsePlatformType(s.Platform)
	if err != nil {
		return PluginResponse{}, false
	}

	var configMap map[string]interface{}
	_ = json.Unmarshal(s.Config, &configMap)

	resp := PluginResponse{
		UUID:      s.UUID,
		Name:      s.Name,
		Debug:     s.Debug,
		Enable:    s.Enable,
		Config:    configMap,
		UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
		Platform:  platform,
	}

	// The live plugin is authoritative for debug mode; a peer may have
	// switched it after this row was read.
	if p, err := h.registry.Get(platform); err == nil {
		resp.Debug = p.IsDebug()
		resp.Environment = payment.Environment(p)
		if ep, ok := p.(payment.EndpointProvider); ok {
			resp.Endpoint = ep.Endpoint()
		}
	}
	return resp, true
}

func platformParam(c *gin.Context) (payment.PlatformType, bool) {
	platform, err := payment.ParsePlatformType(c.Param("platform"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return payment.PlatformUnknown, false
	}
	return platform, true
}

func debugMeta(c *gin.Context, source models.DebugChangeSource) services.DebugChangeMeta {
	return services.DebugChangeMeta{
		Operator:  c.GetString(middleware.ContextOperatorKey),
		IPAddress: c.ClientIP(),
		Source:    source,
	}
}

// ListPlugins returns every stored plugin setting with its live state
func (h *Handler) ListPlugins(c *gin.Context) {
	settings, err := services.ListPluginSettings()
	if err != nil {
		c.JSON(utils.NewServiceErrorResponse(err))
		return
	}

	response := make([]PluginResponse, 0, len(settings))
	for _, s := range settings {
		resp, ok := h.toResponse(s)
		if !ok {
			logger.Named("plugins").Warn("Skipping setting with unknown platform",
				zap.String("platform", s.Platform), zap.Uint("id", s.ID))
			continue
		}
		response = append(response, resp)
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", response))
}

func (h *Handler) GetPlugin(c *gin.Context) {
	platform, ok := platformParam(c)
	if !ok {
		return
	}

	setting, err := services.GetPluginSetting(platform)
	if err != nil {
		c.JSON(utils.NewServiceErrorResponse(err))
		return
	}

	resp, _ := h.toResponse(*setting)
	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", resp))
}

// SetDebug switches one plugin between sandbox and production
func (h *Handler) SetDebug(c *gin.Context) {
	platform, ok := platformParam(c)
	if !ok {
		return
	}

	var req SetDebugRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	err := services.SetPluginDebug(c.Request.Context(), h.registry, platform, *req.Debug, debugMeta(c, models.DebugChangeSourceAdmin))
	if err != nil {
		c.JSON(utils.NewServiceErrorResponse(err))
		return
	}

	setting, err := services.GetPluginSetting(platform)
	if err != nil {
		c.JSON(utils.NewServiceErrorResponse(err))
		return
	}
	resp, _ := h.toResponse(*setting)
	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", resp))
}

// SetDebugAll switches every registered plugin to the same mode
func (h *Handler) SetDebugAll(c *gin.Context) {
	var req SetDebugRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	err := services.SetAllPluginsDebug(c.Request.Context(), h.registry, *req.Debug, debugMeta(c, models.DebugChangeSourceBulk))
	if err != nil {
		c.JSON(utils.NewServiceErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", gin.H{
		"debug":   *req.Debug,
		"plugins": h.registry.Len(),
	}))
}

// UpdatePlugin updates name, enable flag and provider config
func (h *Handler) UpdatePlugin(c *gin.Context) {
	platform, ok := platformParam(c)
	if !ok {
		return
	}

	var req UpdatePluginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	setting, err := services.UpdatePluginSetting(h.registry, platform, req.Name, req.Enable, req.Config)
	if err != nil {
		c.JSON(utils.NewServiceErrorResponse(err))
		return
	}

	resp, _ := h.toResponse(*setting)
	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", resp))
}

// GetHistory returns recent debug switches of one plugin
func (h *Handler) GetHistory(c *gin.Context) {
	platform, ok := platformParam(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid limit"))
		return
	}

	changes, err := services.GetDebugHistory(platform, limit)
	if err != nil {
		c.JSON(utils.NewServiceErrorResponse(err))
		return
	}

	response := make([]DebugChangeResponse, 0, len(changes))
	for _, ch := range changes {
		response = append(response, newDebugChangeResponse(ch))
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", response))
}

// Logout revokes the caller's admin token
func (h *Handler) Logout(c *gin.Context) {
	claims, _ := c.Get(middleware.ContextClaimsKey)
	mapClaims, _ := claims.(jwt.MapClaims)

	if err := services.AddToDenylist(c.GetString(middleware.ContextTokenKey), utils.TokenTTL(mapClaims)); err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to revoke token"))
		return
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", nil))
}
