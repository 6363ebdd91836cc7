package alipay

import (
	"testing"

	"payhost-backend/internal/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAliPayPluginIdentity(t *testing.T) {
	p := NewAliPayPlugin(false)

	var _ payment.Configurable = p
	var _ payment.EndpointProvider = p

	assert.Equal(t, payment.PlatformAliPay, p.PlatformType())
	assert.False(t, p.IsDebug())
	assert.Equal(t, ProductionGateway, p.Endpoint())

	p.SetDebug(true)
	assert.Equal(t, SandboxGateway, p.Endpoint())
	assert.Equal(t, payment.PlatformAliPay, p.PlatformType())
}

func TestAliPayPluginOptions(t *testing.T) {
	p := NewAliPayPlugin(true,
		WithAppID("2018012202027971"),
		WithGateways("https://prod.example.com/gateway.do", "https://dev.example.com/gateway.do"),
	)

	assert.Equal(t, "2018012202027971", p.AppID())
	assert.Equal(t, "https://dev.example.com/gateway.do", p.Endpoint())
	p.SetDebug(false)
	assert.Equal(t, "https://prod.example.com/gateway.do", p.Endpoint())
}

func TestAliPayPluginSetConfig(t *testing.T) {
	p := NewAliPayPlugin(false)

	err := p.SetConfig(map[string]interface{}{})
	assert.ErrorIs(t, err, payment.ErrMissingConfig)

	require.NoError(t, p.SetConfig(map[string]interface{}{
		"app_id":          "123",
		"sandbox_gateway": "https://sandbox.example.com/gateway.do",
	}))
	assert.Equal(t, "123", p.AppID())
	assert.Equal(t, ProductionGateway, p.Endpoint())

	p.SetDebug(true)
	assert.Equal(t, "https://sandbox.example.com/gateway.do", p.Endpoint())
}

func TestAliPayPluginSetConfigDropsOverrides(t *testing.T) {
	p := NewAliPayPlugin(false)

	require.NoError(t, p.SetConfig(map[string]interface{}{
		"app_id":          "123",
		"gateway":         "https://override.example.com/gateway.do",
		"sandbox_gateway": "https://override-dev.example.com/gateway.do",
	}))
	assert.Equal(t, "https://override.example.com/gateway.do", p.Endpoint())

	require.NoError(t, p.SetConfig(map[string]interface{}{"app_id": "123"}))
	assert.Equal(t, ProductionGateway, p.Endpoint())
	p.SetDebug(true)
	assert.Equal(t, SandboxGateway, p.Endpoint())
}

func TestAliPayPluginSetConfigKeepsConstructionGateways(t *testing.T) {
	p := NewAliPayPlugin(false, WithGateways("https://prod.example.com/gateway.do", "https://dev.example.com/gateway.do"))

	require.NoError(t, p.SetConfig(map[string]interface{}{
		"app_id":  "123",
		"gateway": "https://override.example.com/gateway.do",
	}))
	require.NoError(t, p.SetConfig(map[string]interface{}{"app_id": "123"}))
	assert.Equal(t, "https://prod.example.com/gateway.do", p.Endpoint())
}
