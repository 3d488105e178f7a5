package auth

import (
	"testing"

	"github.com/pyfence-ai/pyfence/internal/config"
)

func TestAuthDisabledAllowsEverything(t *testing.T) {
	a, err := New(config.AuthConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !a.Allow("") || !a.Allow("anything") {
		t.Fatal("disabled auth should allow every key")
	}
}

func TestAuthEnabledChecksKeys(t *testing.T) {
	a, err := New(config.AuthConfig{Enabled: true, APIKeys: []string{"key-one", "", "key-two"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !a.Allow("key-one") || !a.Allow("key-two") {
		t.Fatal("configured keys rejected")
	}
	if a.Allow("") || a.Allow("wrong") {
		t.Fatal("unknown keys accepted")
	}
}

func TestAuthEnabledWithoutKeysFails(t *testing.T) {
	if _, err := New(config.AuthConfig{Enabled: true, APIKeys: []string{""}}); err == nil {
		t.Fatal("want error for enabled auth without keys")
	}
}
