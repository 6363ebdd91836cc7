package payment

import (
	"fmt"
	"strings"
)

// ConfigString reads key from a decoded JSON config. JSON numbers are
// rendered without a fractional part, so numeric ids like pid survive.
func ConfigString(config map[string]interface{}, key string) (string, bool) {
	switch v := config[key].(type) {
	case string:
		v = strings.TrimSpace(v)
		return v, v != ""
	case float64:
		return fmt.Sprintf("%.0f", v), true
	case int:
		return fmt.Sprintf("%d", v), true
	default:
		return "", false
	}
}

// RequireConfigString is ConfigString that fails with ErrMissingConfig.
func RequireConfigString(config map[string]interface{}, key string) (string, error) {
	v, ok := ConfigString(config, key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingConfig, key)
	}
	return v, nil
}
