package plugin

import (
	"time"

	"payhost-backend/internal/models"
	"payhost-backend/internal/payment"
)

type SetDebugRequest struct {
	Debug *bool `json:"debug" binding:"required"`
}

type UpdatePluginRequest struct {
	Name   string                 `json:"name" binding:"max=100"`
	Enable *bool                  `json:"enable"`
	Config map[string]interface{} `json:"config"`
}

type PluginResponse struct {
	UUID        string                 `json:"uuid"`
	Platform    payment.PlatformType   `json:"platform"`
	Name        string                 `json:"name"`
	Debug       bool                   `json:"debug"`
	Environment string                 `json:"environment"`
	Endpoint    string                 `json:"endpoint,omitempty"`
	Enable      bool                   `json:"enable"`
	Config      map[string]interface{} `json:"config"`
	UpdatedAt   string                 `json:"updated_at"`
}

type DebugChangeResponse struct {
	Debug     bool   `json:"debug"`
	Operator  string `json:"operator"`
	Source    string `json:"source"`
	IPAddress string `json:"ip_address"`
	CreatedAt string `json:"created_at"`
}

func newDebugChangeResponse(c models.DebugChange) DebugChangeResponse {
	return DebugChangeResponse{
		Debug:     c.Debug,
		Operator:  c.Operator,
		Source:    string(c.Source),
		IPAddress: c.IPAddress,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}
