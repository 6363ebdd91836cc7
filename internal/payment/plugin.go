package payment

import "sync/atomic"

// Plugin is the interface that all payment plugins must implement.
type Plugin interface {
	// PlatformType returns the fixed provider identity of the plugin.
	PlatformType() PlatformType

	// IsDebug reports whether the plugin targets sandbox endpoints.
	IsDebug() bool

	// SetDebug switches between sandbox and production endpoints.
	SetDebug(debug bool)
}

// Configurable is implemented by plugins that accept stored settings.
type Configurable interface {
	Plugin
	SetConfig(config map[string]interface{}) error
}

// EndpointProvider is implemented by plugins that expose the gateway URL
// matching their current debug mode.
type EndpointProvider interface {
	Plugin
	Endpoint() string
}

// Descriptor holds the identity and debug mode of a plugin. Concrete plugins
// embed a *Descriptor to satisfy Plugin.
//
// The platform is set once in NewDescriptor. The debug flag may be changed
// at any time from any goroutine.
type Descriptor struct {
	platform PlatformType
	debug    atomic.Bool
}

// NewDescriptor returns a descriptor for platform with the given initial
// debug mode. There is no implicit default: callers decide sandbox or
// production explicitly.
func NewDescriptor(platform PlatformType, debug bool) *Descriptor {
	d := &Descriptor{platform: platform}
	d.debug.Store(debug)
	return d
}

func (d *Descriptor) PlatformType() PlatformType {
	return d.platform
}

func (d *Descriptor) IsDebug() bool {
	return d.debug.Load()
}

func (d *Descriptor) SetDebug(debug bool) {
	d.debug.Store(debug)
}

// Environment returns "sandbox" or "production".
func Environment(p Plugin) string {
	if p.IsDebug() {
		return "sandbox"
	}
	return "production"
}
