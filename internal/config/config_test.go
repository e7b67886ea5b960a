package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	// Minimal config — empty sections, everything defaulted.
	p := writeConfig(t, `server: {}
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", cfg.Server.HTTPPort, DefaultHTTPPort)
	}
	if cfg.Server.Snapshot.TTL != DefaultSnapshotTTL {
		t.Errorf("snapshot.ttl: got %v, want %v", cfg.Server.Snapshot.TTL, DefaultSnapshotTTL)
	}
	if cfg.Server.BroadcastInterval != DefaultBroadcastInterval {
		t.Errorf("broadcast_interval: got %v, want %v", cfg.Server.BroadcastInterval, DefaultBroadcastInterval)
	}
	if cfg.Collector.PollInterval != DefaultPollInterval {
		t.Errorf("poll_interval: got %v, want %v", cfg.Collector.PollInterval, DefaultPollInterval)
	}
}

func TestLoad_Full(t *testing.T) {
	p := writeConfig(t, `server:
  http_port: 9091
  broadcast_interval: 2s
  auth:
    mode: apikey
    key_env: PULSE_KEY
    header: x-pulse-key
  snapshot:
    ttl: 10m
  alerts:
    rules:
      - name: unit economics underwater
        condition: ltv_cac < 1
        severity: critical
        cooldown: 30m
    webhooks:
      - type: slack
        url_env: SLACK_WEBHOOK_URL
collector:
  poll_interval: 60s
  targets:
    target_margin: 18
  sources:
    - id: main-store
      name: Main Store
      type: storefy
      endpoint: https://shop.example.com/internal/metrics
      auth:
        mode: bearer
        token_env: STORE_TOKEN
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != 9091 {
		t.Errorf("http_port: got %d, want 9091", cfg.Server.HTTPPort)
	}
	if cfg.Server.Auth.EffectiveHeader() != "x-pulse-key" {
		t.Errorf("header: got %q, want x-pulse-key", cfg.Server.Auth.EffectiveHeader())
	}
	if cfg.Server.Snapshot.TTL != 10*time.Minute {
		t.Errorf("snapshot.ttl: got %v, want 10m", cfg.Server.Snapshot.TTL)
	}
	if cfg.Collector.PollInterval != time.Minute {
		t.Errorf("poll_interval: got %v, want 1m", cfg.Collector.PollInterval)
	}
	if cfg.Collector.Targets.TargetMargin != 18 {
		t.Errorf("target_margin: got %v, want 18", cfg.Collector.Targets.TargetMargin)
	}
	if len(cfg.Collector.Sources) != 1 || cfg.Collector.Sources[0].Type != "storefy" {
		t.Fatalf("sources: got %+v", cfg.Collector.Sources)
	}
	if len(cfg.Server.Alerts.Rules) != 1 || cfg.Server.Alerts.Rules[0].Cooldown != 30*time.Minute {
		t.Fatalf("alert rules: got %+v", cfg.Server.Alerts.Rules)
	}
}

func TestLoad_DefaultHeader(t *testing.T) {
	p := writeConfig(t, `server:
  auth:
    mode: apikey
    key_env: PULSE_KEY
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Server.Auth.EffectiveHeader(); got != "x-api-key" {
		t.Errorf("default header: got %q, want x-api-key", got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad port", "server:\n  http_port: 99999\n"},
		{"bad auth mode", "server:\n  auth:\n    mode: oauth\n"},
		{"negative ttl", "server:\n  snapshot:\n    ttl: -1m\n"},
		{"source without id", "collector:\n  sources:\n    - type: storefy\n      endpoint: http://x\n"},
		{"source without endpoint", "collector:\n  sources:\n    - id: a\n      type: storefy\n"},
		{"unknown source type", "collector:\n  sources:\n    - id: a\n      type: csv\n      endpoint: http://x\n"},
		{"duplicate source ids", "collector:\n  sources:\n    - id: a\n      type: storefy\n      endpoint: http://x\n    - id: a\n      type: json\n      endpoint: http://y\n"},
		{"rule without condition", "server:\n  alerts:\n    rules:\n      - name: r\n"},
		{"bad severity", "server:\n  alerts:\n    rules:\n      - name: r\n        condition: ltv_cac < 1\n        severity: fatal\n"},
		{"negative target margin", "collector:\n  targets:\n    target_margin: -5\n"},
		{"not yaml", "{{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeConfig(t, tt.content)
			if _, err := Load(p); err == nil {
				t.Errorf("Load: expected error, got nil")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load on missing file: expected error, got nil")
	}
}
