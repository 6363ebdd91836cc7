package wechatpay

import (
	"strings"
	"sync"

	"payhost-backend/internal/payment"
)

const (
	ProductionBaseURL = "https://api.mch.weixin.qq.com"
	sandboxPath       = "/sandboxnew"
)

func init() {
	payment.RegisterFactory(payment.PlatformWeChatPay, func(debug bool) payment.Plugin {
		return NewWeChatPayPlugin(debug)
	})
}

type WeChatPayPlugin struct {
	*payment.Descriptor

	mu      sync.RWMutex
	baseURL string
	mchID   string
	appID   string
}

func NewWeChatPayPlugin(debug bool) *WeChatPayPlugin {
	return &WeChatPayPlugin{
		Descriptor: payment.NewDescriptor(payment.PlatformWeChatPay, debug),
		baseURL:    ProductionBaseURL,
	}
}

// SetConfig accepts mch_id and app_id (both required) and an optional base_url.
// Without base_url the production host is used again.
func (p *WeChatPayPlugin) SetConfig(config map[string]interface{}) error {
	mchID, err := payment.RequireConfigString(config, "mch_id")
	if err != nil {
		return err
	}
	appID, err := payment.RequireConfigString(config, "app_id")
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.mchID = mchID
	p.appID = appID
	p.baseURL = ProductionBaseURL
	if v, ok := payment.ConfigString(config, "base_url"); ok {
		p.baseURL = strings.TrimRight(v, "/")
	}
	return nil
}

// Endpoint returns the API base URL. The sandbox lives under /sandboxnew
// on the same host.
func (p *WeChatPayPlugin) Endpoint() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.IsDebug() {
		return p.baseURL + sandboxPath
	}
	return p.baseURL
}
