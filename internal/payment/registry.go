package payment

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps platform identifiers to live plugin instances.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	plugins map[PlatformType]Plugin
}

func NewRegistry() *Registry {
	return &Registry{plugins: make(map[PlatformType]Plugin)}
}

func (r *Registry) Register(p Plugin) error {
	if p == nil || !p.PlatformType().Valid() {
		return ErrUnknownPlatform
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	platform := p.PlatformType()
	if _, exists := r.plugins[platform]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePlugin, platform)
	}
	r.plugins[platform] = p
	return nil
}

func (r *Registry) Unregister(platform PlatformType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[platform]; !exists {
		return fmt.Errorf("%w: %s", ErrPluginNotFound, platform)
	}
	delete(r.plugins, platform)
	return nil
}

func (r *Registry) Get(platform PlatformType) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPluginNotFound, platform)
	}
	return p, nil
}

// List returns the registered plugins ordered by platform.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Plugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].PlatformType() < list[j].PlatformType()
	})
	return list
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// SetDebugAll switches every registered plugin to the same mode, e.g. to put
// a test build entirely on sandbox endpoints.
func (r *Registry) SetDebugAll(debug bool) {
	for _, p := range r.List() {
		p.SetDebug(debug)
	}
}
