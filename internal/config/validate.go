package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the loaded config for required fields and safe values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}
	if cfg.Server.MaxRequestBodyBytes <= 0 {
		return errors.New("server.max_request_body_bytes must be positive")
	}

	if err := validateDetectorConfig(cfg.Detector); err != nil {
		return err
	}

	if cfg.Guard.Enabled {
		if strings.TrimSpace(cfg.Guard.BundleDir) == "" {
			return errors.New("guard.bundle_dir must be set when guard is enabled")
		}
		if cfg.Guard.SeqLen < 0 {
			return errors.New("guard.seq_len must not be negative")
		}
	}

	if err := validateActivationConfig(cfg.Activation); err != nil {
		return err
	}

	if cfg.Telemetry.Enabled {
		if strings.TrimSpace(cfg.Telemetry.Endpoint) == "" {
			return errors.New("telemetry.endpoint must be set when telemetry is enabled")
		}
		switch strings.ToLower(cfg.Telemetry.Protocol) {
		case "", "grpc", "http":
		default:
			return fmt.Errorf("telemetry.protocol %q not supported (grpc | http)", cfg.Telemetry.Protocol)
		}
	}

	if cfg.Auth.Enabled && len(cfg.Auth.APIKeys) == 0 {
		return errors.New("auth.api_keys must contain at least one key when auth is enabled")
	}

	switch cfg.Logging.PreviewLevel {
	case "", "metadata", "redacted", "full":
	default:
		return fmt.Errorf("logging.preview_level %q not supported (metadata | redacted | full)", cfg.Logging.PreviewLevel)
	}

	return nil
}

func validateDetectorConfig(d DetectorConfig) error {
	if d.StartTag == "" || d.EndTag == "" {
		return errors.New("detector.start_tag and detector.end_tag must be set")
	}
	if d.StartTag == d.EndTag {
		return errors.New("detector.start_tag and detector.end_tag must differ")
	}
	if d.Threshold < 0 || d.Threshold > 100 {
		return fmt.Errorf("detector.threshold %v out of range [0,100]", d.Threshold)
	}
	if d.Workers <= 0 {
		return errors.New("detector.workers must be positive")
	}
	if d.MaxInputSizeBytes <= 0 {
		return errors.New("detector.max_input_size_bytes must be positive")
	}
	if d.CacheSize < 0 {
		return errors.New("detector.cache_size must not be negative")
	}
	return nil
}

func validateActivationConfig(a ActivationConfig) error {
	if !a.Enabled {
		return nil
	}
	if strings.TrimSpace(a.File) == "" && strings.TrimSpace(a.WebhookURL) == "" {
		return errors.New("activation requires a file or webhook_url sink when enabled")
	}
	if a.WebhookURL != "" {
		u, err := url.Parse(a.WebhookURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("activation.webhook_url %q is not a valid URL", a.WebhookURL)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("activation.webhook_url scheme %q not supported", u.Scheme)
		}
	}
	if a.QueueSize < 0 || a.Workers < 0 {
		return errors.New("activation queue_size and workers must not be negative")
	}
	return nil
}
