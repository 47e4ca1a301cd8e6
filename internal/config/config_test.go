package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}

	if cfg.HTTPPort != DefaultHTTPPort {
		t.Errorf("http port = %d, want %d", cfg.HTTPPort, DefaultHTTPPort)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("log level = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.Alibaba.PageSize != DefaultPageSize {
		t.Errorf("page size = %d, want %d", cfg.Alibaba.PageSize, DefaultPageSize)
	}
	if cfg.Azure.PollInterval != DefaultPollInterval {
		t.Errorf("poll interval = %d, want %d", cfg.Azure.PollInterval, DefaultPollInterval)
	}
	if cfg.Azure.MaxPollAttempts != DefaultMaxPollAttempts {
		t.Errorf("max poll attempts = %d, want %d", cfg.Azure.MaxPollAttempts, DefaultMaxPollAttempts)
	}
	if cfg.Azure.ChinaCloud {
		t.Error("china cloud should default to false")
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
http_port: 9090
log_level: debug
alibaba:
  page_size: 100
azure:
  china_cloud: true
  poll_interval: 10
kubecost:
  base_url: http://kubecost.monitoring:9090
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTPPort != 9090 {
		t.Errorf("http port = %d, want 9090", cfg.HTTPPort)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q, want debug", cfg.LogLevel)
	}
	if cfg.Alibaba.PageSize != 100 {
		t.Errorf("page size = %d, want 100", cfg.Alibaba.PageSize)
	}
	if !cfg.Azure.ChinaCloud {
		t.Error("china cloud should be true")
	}
	if cfg.Azure.PollInterval != 10 {
		t.Errorf("poll interval = %d, want 10", cfg.Azure.PollInterval)
	}
	if cfg.Kubecost.BaseURL != "http://kubecost.monitoring:9090" {
		t.Errorf("kubecost base url = %q", cfg.Kubecost.BaseURL)
	}

	// Unset fields still pick up defaults
	if cfg.Azure.MaxPollAttempts != DefaultMaxPollAttempts {
		t.Errorf("max poll attempts = %d, want default %d", cfg.Azure.MaxPollAttempts, DefaultMaxPollAttempts)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "http_port: 9090\n")

	t.Setenv("BILLING_HTTP_PORT", "7070")
	t.Setenv("BILLING_LOG_LEVEL", "warn")
	t.Setenv("BILLING_AZURE_CHINA_CLOUD", "true")
	t.Setenv("BILLING_AZURE_POLL_INTERVAL", "5")
	t.Setenv("BILLING_KUBECOST_BASE_URL", "http://kc:9003")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTPPort != 7070 {
		t.Errorf("http port = %d, env override should win over file", cfg.HTTPPort)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("log level = %q, want warn", cfg.LogLevel)
	}
	if !cfg.Azure.ChinaCloud || cfg.Azure.PollInterval != 5 {
		t.Errorf("azure = %+v, env overrides missing", cfg.Azure)
	}
	if cfg.Kubecost.BaseURL != "http://kc:9003" {
		t.Errorf("kubecost base url = %q", cfg.Kubecost.BaseURL)
	}
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	t.Setenv("BILLING_HTTP_PORT", "not-a-port")
	_, err := Load("")
	if err == nil {
		t.Fatal("Load() = nil error, want failure for non-integer port")
	}
	if !strings.Contains(err.Error(), "BILLING_HTTP_PORT") {
		t.Errorf("error %q should name the offending variable", err)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{"port too large", "http_port: 70000\n", "http_port"},
		{"negative port", "http_port: -1\n", "http_port"},
		{"page size over limit", "alibaba:\n  page_size: 500\n", "page_size"},
		{"negative poll interval", "azure:\n  poll_interval: -5\n", "poll_interval"},
		{"negative poll attempts", "azure:\n  max_poll_attempts: -1\n", "max_poll_attempts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			if err == nil {
				t.Fatal("Load() = nil error, want validation failure")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() = nil error, want failure for missing file")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "http_port: [not a port\n"))
	if err == nil {
		t.Fatal("Load() = nil error, want parse failure")
	}
}
