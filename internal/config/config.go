package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort          = 8080
	DefaultSnapshotTTL       = 5 * time.Minute
	DefaultPollInterval      = 30 * time.Second
	DefaultBroadcastInterval = 5 * time.Second
)

// Config is the top-level pulse configuration. Fields map 1:1 to
// config.example.yaml.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Collector CollectorConfig `yaml:"collector"`
}

// ServerConfig holds the HTTP/WebSocket serving side.
type ServerConfig struct {
	// HTTPPort is the port the REST API and WebSocket hub listen on.
	HTTPPort int `yaml:"http_port"`

	// Auth configures how incoming API clients are authenticated.
	Auth AuthConfig `yaml:"auth"`

	// Snapshot controls in-memory dashboard snapshot retention.
	Snapshot SnapshotConfig `yaml:"snapshot"`

	// BroadcastInterval is how often the WebSocket hub pushes the current
	// dashboard state to connected clients.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`

	// Alerts holds rule definitions and webhook delivery targets.
	Alerts AlertsConfig `yaml:"alerts"`
}

// AuthConfig controls client authentication on the serving side.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected
	// API key. Used when Mode == "apikey".
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header name to read the key from.
	// Defaults to "x-api-key" if empty.
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// SnapshotConfig controls in-memory snapshot retention.
type SnapshotConfig struct {
	// TTL is how long a source's snapshot stays in the store after its last
	// update. A source that goes quiet for longer than TTL disappears from
	// the dashboard. Default: 5m.
	TTL time.Duration `yaml:"ttl"`
}

// AlertsConfig holds alerting rules and webhook delivery targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines one threshold-based alert condition.
type AlertRule struct {
	// Name is the human-readable alert identifier, used as the deduplication key.
	Name string `yaml:"name"`

	// Condition is a simple expression over snapshot fields:
	// "ltv_cac < 1", "net_margin < 10", "margin_progress < 80",
	// "health == critical".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires for this duration after an alert fires.
	// Defaults to 15 minutes if zero.
	Cooldown time.Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: slack | teams | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// CollectorConfig holds the business-data collection side.
type CollectorConfig struct {
	// PollInterval controls how often each source is read.
	PollInterval time.Duration `yaml:"poll_interval"`

	// Targets holds the dashboard-wide business goals.
	Targets TargetsConfig `yaml:"targets"`

	// Sources is the list of business data endpoints to poll.
	Sources []Source `yaml:"sources"`
}

// TargetsConfig holds configured business goals used in classification.
type TargetsConfig struct {
	// TargetMargin is the net-margin goal in percentage points.
	TargetMargin float64 `yaml:"target_margin"`
}

// Source describes one business data endpoint.
type Source struct {
	// ID is a unique, machine-readable identifier for this source.
	ID string `yaml:"id"`

	// Name is the display name shown on the dashboard. Defaults to ID.
	Name string `yaml:"name"`

	// Type is the endpoint format: storefy (Prometheus text exposition of
	// business counters) | json (plain JSON business report).
	Type string `yaml:"type"`

	// Endpoint is the full URL of the data endpoint.
	Endpoint string `yaml:"endpoint"`

	// Auth configures how the collector authenticates to this source.
	Auth SourceAuth `yaml:"auth"`

	// TLS holds optional TLS dial options.
	TLS TLSConfig `yaml:"tls"`
}

// SourceAuth specifies the authentication mode for one source.
type SourceAuth struct {
	// Mode is one of: apikey | bearer | basic | none.
	Mode string `yaml:"mode"`

	// API key fields — used when Mode == "apikey".
	// Header is the HTTP header name to send the key in.
	Header string `yaml:"header"`
	KeyEnv string `yaml:"key_env"`

	// Bearer token field — used when Mode == "bearer".
	TokenEnv string `yaml:"token_env"`

	// Basic auth fields — used when Mode == "basic".
	Username    string `yaml:"username"`
	PasswordEnv string `yaml:"password_env"`
}

// Key returns the API key resolved from the environment.
func (a SourceAuth) Key() string { return os.Getenv(a.KeyEnv) }

// Token returns the bearer token resolved from the environment.
func (a SourceAuth) Token() string { return os.Getenv(a.TokenEnv) }

// Password returns the basic-auth password resolved from the environment.
func (a SourceAuth) Password() string { return os.Getenv(a.PasswordEnv) }

// TLSConfig holds optional TLS dial options for a source.
type TLSConfig struct {
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// Load reads and parses the config file at path. Missing fields are filled
// with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:          DefaultHTTPPort,
			BroadcastInterval: DefaultBroadcastInterval,
			Snapshot: SnapshotConfig{
				TTL: DefaultSnapshotTTL,
			},
		},
		Collector: CollectorConfig{
			PollInterval: DefaultPollInterval,
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	switch cfg.Server.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", cfg.Server.Auth.Mode)
	}
	if cfg.Server.Snapshot.TTL < 0 {
		return fmt.Errorf("server.snapshot.ttl must not be negative")
	}
	if cfg.Server.BroadcastInterval <= 0 {
		return fmt.Errorf("server.broadcast_interval must be positive")
	}
	if cfg.Collector.PollInterval <= 0 {
		return fmt.Errorf("collector.poll_interval must be positive")
	}
	if cfg.Collector.Targets.TargetMargin < 0 {
		return fmt.Errorf("collector.targets.target_margin must not be negative")
	}

	seen := make(map[string]bool, len(cfg.Collector.Sources))
	for i, src := range cfg.Collector.Sources {
		if src.ID == "" {
			return fmt.Errorf("collector.sources[%d]: id is required", i)
		}
		if seen[src.ID] {
			return fmt.Errorf("collector.sources: duplicate id %q", src.ID)
		}
		seen[src.ID] = true
		if src.Endpoint == "" {
			return fmt.Errorf("collector.sources[%s]: endpoint is required", src.ID)
		}
		switch src.Type {
		case "storefy", "json":
		default:
			return fmt.Errorf("collector.sources[%s]: type %q unknown: want storefy|json", src.ID, src.Type)
		}
	}

	for i, rule := range cfg.Server.Alerts.Rules {
		if rule.Name == "" {
			return fmt.Errorf("server.alerts.rules[%d]: name is required", i)
		}
		if rule.Condition == "" {
			return fmt.Errorf("server.alerts.rules[%s]: condition is required", rule.Name)
		}
		switch rule.Severity {
		case "critical", "warning", "info", "":
		default:
			return fmt.Errorf("server.alerts.rules[%s]: severity %q unknown: want critical|warning|info", rule.Name, rule.Severity)
		}
	}

	return nil
}
