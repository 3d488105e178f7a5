package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds pyfence configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Detector   DetectorConfig   `yaml:"detector"`
	Guard      GuardConfig      `yaml:"guard"`
	Activation ActivationConfig `yaml:"activation"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Addr                string `yaml:"addr"`                   // HTTP listen address, e.g. ":8080"
	MaxRequestBodyBytes int64  `yaml:"max_request_body_bytes"` // hard cap on request bodies
}

// DetectorConfig is the externally visible knob set of the pipeline.
type DetectorConfig struct {
	StartTag          string  `yaml:"start_tag"`
	EndTag            string  `yaml:"end_tag"`
	Threshold         float64 `yaml:"threshold"`            // wrap threshold in [0,100]
	Parallel          bool    `yaml:"parallel"`             // default for JSON array fan-out
	Workers           int     `yaml:"workers"`              // bound on concurrent array workers
	MaxInputSizeBytes int     `yaml:"max_input_size_bytes"` // reject larger inputs before scanning
	CacheSize         int     `yaml:"cache_size"`           // string-field result cache entries, 0 disables
}

type GuardConfig struct {
	Enabled   bool   `yaml:"enabled"`
	BundleDir string `yaml:"bundle_dir"`
	SeqLen    int    `yaml:"seq_len"`
}

type ActivationConfig struct {
	Enabled        bool              `yaml:"enabled"`
	QueueSize      int               `yaml:"queue_size"`
	Workers        int               `yaml:"workers"`
	File           string            `yaml:"file"` // JSONL audit file path
	WebhookURL     string            `yaml:"webhook_url"`
	WebhookHeaders map[string]string `yaml:"webhook_headers"`
	WebhookTimeout int               `yaml:"webhook_timeout_seconds"`
}

type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Protocol string `yaml:"protocol"` // grpc | http
}

type AuthConfig struct {
	Enabled bool     `yaml:"enabled"`
	APIKeys []string `yaml:"api_keys"`
}

type LoggingConfig struct {
	Verbose      bool   `yaml:"verbose"`
	PreviewLevel string `yaml:"preview_level"` // metadata | redacted | full
}

const (
	DefaultStartTag     = "<PythonCode>"
	DefaultEndTag       = "</PythonCode>"
	DefaultThreshold    = 70.0
	DefaultWorkers      = 4
	DefaultMaxInputSize = 5 * 1024 * 1024
	DefaultCacheSize    = 1024
)

// Load reads configuration from a YAML file. If the file doesn't exist, it
// returns the default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:                ":8080",
			MaxRequestBodyBytes: 6 * 1024 * 1024,
		},
		Detector: DetectorConfig{
			StartTag:          DefaultStartTag,
			EndTag:            DefaultEndTag,
			Threshold:         DefaultThreshold,
			Parallel:          false,
			Workers:           DefaultWorkers,
			MaxInputSizeBytes: DefaultMaxInputSize,
			CacheSize:         DefaultCacheSize,
		},
		Guard: GuardConfig{
			Enabled: false,
			SeqLen:  256,
		},
		Activation: ActivationConfig{
			Enabled:        false,
			QueueSize:      1000,
			Workers:        1,
			WebhookTimeout: 2,
		},
		Telemetry: TelemetryConfig{
			Enabled:  false,
			Protocol: "grpc",
		},
		Auth: AuthConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Verbose:      false,
			PreviewLevel: "redacted",
		},
	}
}
