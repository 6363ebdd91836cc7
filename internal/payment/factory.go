package payment

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a plugin with the given initial debug mode.
type Factory func(debug bool) Plugin

var (
	factoriesMu sync.RWMutex
	factories   = make(map[PlatformType]Factory)
)

// RegisterFactory makes a provider buildable by Build. Provider packages
// call it from init, so importing the package is enough to enable it.
// It panics on a duplicate or invalid platform, since both are programming errors.
func RegisterFactory(platform PlatformType, f Factory) {
	if !platform.Valid() || f == nil {
		panic(fmt.Sprintf("payment: invalid factory registration for %s", platform))
	}

	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	if _, exists := factories[platform]; exists {
		panic(fmt.Sprintf("payment: factory for %s registered twice", platform))
	}
	factories[platform] = f
}

// Build creates a new plugin instance for platform.
func Build(platform PlatformType, debug bool) (Plugin, error) {
	factoriesMu.RLock()
	f, ok := factories[platform]
	factoriesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: no factory for %s", ErrPluginNotFound, platform)
	}
	return f(debug), nil
}

// Platforms lists the platforms that have a registered factory.
func Platforms() []PlatformType {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	list := make([]PlatformType, 0, len(factories))
	for p := range factories {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}
