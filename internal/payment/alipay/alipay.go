package alipay

import (
	"sync"

	"payhost-backend/internal/payment"
)

const (
	SandboxGateway    = "https://openapi.alipaydev.com/gateway.do"
	ProductionGateway = "https://openapi.alipay.com/gateway.do"
)

func init() {
	payment.RegisterFactory(payment.PlatformAliPay, func(debug bool) payment.Plugin {
		return NewAliPayPlugin(debug)
	})
}

// Option customises an AliPayPlugin at construction.
type Option func(*AliPayPlugin)

// WithGateways overrides the production and sandbox gateway URLs.
func WithGateways(production, sandbox string) Option {
	return func(p *AliPayPlugin) {
		p.gateway = production
		p.sandboxGateway = sandbox
	}
}

// WithAppID sets the application id issued by the AliPay open platform.
func WithAppID(appID string) Option {
	return func(p *AliPayPlugin) {
		p.appID = appID
	}
}

// AliPayPlugin is the AliPay integration point. It only carries identity,
// debug mode and gateway selection.
type AliPayPlugin struct {
	*payment.Descriptor

	mu             sync.RWMutex
	appID          string
	gateway        string
	sandboxGateway string

	// Gateways chosen at construction. SetConfig falls back to them when
	// a config carries no override.
	defaultGateway        string
	defaultSandboxGateway string
}

func NewAliPayPlugin(debug bool, opts ...Option) *AliPayPlugin {
	p := &AliPayPlugin{
		Descriptor:     payment.NewDescriptor(payment.PlatformAliPay, debug),
		gateway:        ProductionGateway,
		sandboxGateway: SandboxGateway,
	}
	for _, o := range opts {
		o(p)
	}
	p.defaultGateway = p.gateway
	p.defaultSandboxGateway = p.sandboxGateway
	return p
}

// SetConfig accepts app_id (required) and optional gateway and
// sandbox_gateway overrides. Each call replaces the previous config, so an
// override missing from config reverts to the construction default.
func (p *AliPayPlugin) SetConfig(config map[string]interface{}) error {
	appID, err := payment.RequireConfigString(config, "app_id")
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.appID = appID
	p.gateway = p.defaultGateway
	if v, ok := payment.ConfigString(config, "gateway"); ok {
		p.gateway = v
	}
	p.sandboxGateway = p.defaultSandboxGateway
	if v, ok := payment.ConfigString(config, "sandbox_gateway"); ok {
		p.sandboxGateway = v
	}
	return nil
}

func (p *AliPayPlugin) AppID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.appID
}

func (p *AliPayPlugin) Endpoint() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.IsDebug() {
		return p.sandboxGateway
	}
	return p.gateway
}
