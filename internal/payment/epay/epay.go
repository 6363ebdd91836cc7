package epay

import (
	"strings"
	"sync"

	"payhost-backend/internal/payment"
)

func init() {
	payment.RegisterFactory(payment.PlatformEpay, func(debug bool) payment.Plugin {
		return NewEpayPlugin(debug)
	})
}

type EpayPlugin struct {
	*payment.Descriptor

	mu                sync.RWMutex
	GatewayURL        string
	SandboxGatewayURL string
	PID               string
	Key               string
}

func NewEpayPlugin(debug bool) *EpayPlugin {
	return &EpayPlugin{Descriptor: payment.NewDescriptor(payment.PlatformEpay, debug)}
}

func (p *EpayPlugin) SetConfig(config map[string]interface{}) error {
	rawURL, err := payment.RequireConfigString(config, "url")
	if err != nil {
		return err
	}
	pid, err := payment.RequireConfigString(config, "pid")
	if err != nil {
		return err
	}
	key, err := payment.RequireConfigString(config, "key")
	if err != nil {
		return err
	}

	gateway := submitURL(rawURL)
	sandbox := gateway
	if val, ok := payment.ConfigString(config, "sandbox_url"); ok {
		sandbox = submitURL(val)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.GatewayURL = gateway
	p.SandboxGatewayURL = sandbox
	p.PID = pid
	p.Key = key
	return nil
}

// Endpoint returns the submit URL for the current mode. Many Epay
// deployments have no sandbox, in which case both modes share one gateway.
func (p *EpayPlugin) Endpoint() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.IsDebug() {
		return p.SandboxGatewayURL
	}
	return p.GatewayURL
}

// submitURL accepts either the site base URL or the full submit.php URL.
func submitURL(raw string) string {
	baseURL := strings.TrimRight(raw, "/")
	if strings.HasSuffix(baseURL, "submit.php") {
		return baseURL
	}
	return baseURL + "/submit.php"
}
