package payment

import "errors"

var (
	ErrUnknownPlatform = errors.New("unknown payment platform")
	ErrDuplicatePlugin = errors.New("payment plugin already registered")
	ErrPluginNotFound  = errors.New("payment plugin not found")
	ErrNotConfigurable = errors.New("payment plugin does not accept config")
	ErrMissingConfig   = errors.New("missing config value")
)
