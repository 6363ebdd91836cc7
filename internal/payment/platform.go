package payment

import (
	"fmt"
	"strings"
)

// PlatformType identifies a payment provider.
type PlatformType int

const (
	PlatformUnknown PlatformType = iota
	PlatformAliPay
	PlatformWeChatPay
	PlatformEpay
	PlatformUnionPay
)

var platformNames = map[PlatformType]string{
	PlatformAliPay:    "alipay",
	PlatformWeChatPay: "wechatpay",
	PlatformEpay:      "epay",
	PlatformUnionPay:  "unionpay",
}

// String returns the lower-case identifier used in config, URLs and storage.
func (p PlatformType) String() string {
	if name, ok := platformNames[p]; ok {
		return name
	}
	return "unknown"
}

var displayNames = map[PlatformType]string{
	PlatformAliPay:    "AliPay",
	PlatformWeChatPay: "WeChat Pay",
	PlatformEpay:      "Epay",
	PlatformUnionPay:  "UnionPay",
}

// DisplayName is the default human-readable name of the provider.
func (p PlatformType) DisplayName() string {
	if name, ok := displayNames[p]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether p is one of the known providers.
func (p PlatformType) Valid() bool {
	_, ok := platformNames[p]
	return ok
}

func (p PlatformType) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlatform, int(p))
	}
	return []byte(p.String()), nil
}

func (p *PlatformType) UnmarshalText(text []byte) error {
	parsed, err := ParsePlatformType(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePlatformType accepts the identifier case-insensitively.
// "wxpay" is accepted as an alias for wechatpay.
func ParsePlatformType(s string) (PlatformType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "wxpay" {
		return PlatformWeChatPay, nil
	}
	for p, n := range platformNames {
		if n == name {
			return p, nil
		}
	}
	return PlatformUnknown, fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
}
