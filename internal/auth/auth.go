// Package auth holds the API key set guarding the HTTP surface.
package auth

import (
	"fmt"

	"github.com/pyfence-ai/pyfence/internal/config"
)

// Auth answers whether a presented API key may use the service. When auth is
// disabled every key, including an absent one, is accepted.
type Auth struct {
	enabled bool
	keys    map[string]struct{}
}

// New builds an Auth instance from the loaded config.
func New(cfg config.AuthConfig) (*Auth, error) {
	keys := make(map[string]struct{}, len(cfg.APIKeys))
	for _, key := range cfg.APIKeys {
		if key == "" {
			continue
		}
		keys[key] = struct{}{}
	}
	if cfg.Enabled && len(keys) == 0 {
		return nil, fmt.Errorf("auth enabled but no api_keys configured")
	}
	return &Auth{enabled: cfg.Enabled, keys: keys}, nil
}

// Enabled reports whether requests must present a key.
func (a *Auth) Enabled() bool {
	return a != nil && a.enabled
}

// Allow checks the presented key against the configured set.
func (a *Auth) Allow(key string) bool {
	if !a.Enabled() {
		return true
	}
	if key == "" {
		return false
	}
	_, ok := a.keys[key]
	return ok
}
