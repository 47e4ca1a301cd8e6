package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Configuration validation constants
const (
	MinPort = 1     // Minimum valid port number
	MaxPort = 65535 // Maximum valid port number

	// Default values
	DefaultHTTPPort        = 8080
	DefaultLogLevel        = "info"
	DefaultAPITimeout      = 30  // Provider API timeout in seconds
	DefaultPageSize        = 300 // Items per page for paginated bill queries
	DefaultPollTimeout     = 20  // One report status check, seconds
	DefaultDownloadTimeout = 60  // Report CSV download, seconds
	DefaultPollInterval    = 30  // Sleep between blocking polls, seconds
	DefaultMaxPollAttempts = 20
	DefaultKubecostTimeout = 30 // Kubecost query timeout in seconds
)

// AlibabaConfig tunes the Alibaba Cloud BSS client
type AlibabaConfig struct {
	PageSize   int `yaml:"page_size"`
	APITimeout int `yaml:"api_timeout"` // seconds
}

// AzureConfig tunes the Azure cost report client
type AzureConfig struct {
	ChinaCloud      bool `yaml:"china_cloud"`
	PollTimeout     int  `yaml:"poll_timeout"`      // seconds
	DownloadTimeout int  `yaml:"download_timeout"`  // seconds
	PollInterval    int  `yaml:"poll_interval"`     // seconds
	MaxPollAttempts int  `yaml:"max_poll_attempts"` // blocking wait cap
}

// KubecostConfig points at a Kubecost deployment. An empty base URL disables
// the Kubecost endpoints.
type KubecostConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"` // seconds
}

// Config represents the application configuration. Provider credentials are
// deliberately absent: they arrive with each request and are never persisted.
type Config struct {
	HTTPPort int    `yaml:"http_port"`
	LogLevel string `yaml:"log_level"`

	Alibaba  AlibabaConfig  `yaml:"alibaba"`
	Azure    AzureConfig    `yaml:"azure"`
	Kubecost KubecostConfig `yaml:"kubecost"`
}

// Load loads configuration from a YAML file and applies environment variable
// overrides. An empty path skips the file and starts from defaults, since the
// server is fully operational without any file at all.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		// #nosec G304 -- Config file path is provided by administrator via CLI flag, not user input
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyDefaults(&cfg)

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("environment variable error: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for configuration
func applyDefaults(cfg *Config) {
	if cfg.HTTPPort == 0 {
		cfg.HTTPPort = DefaultHTTPPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.Alibaba.PageSize == 0 {
		cfg.Alibaba.PageSize = DefaultPageSize
	}
	if cfg.Alibaba.APITimeout == 0 {
		cfg.Alibaba.APITimeout = DefaultAPITimeout
	}
	if cfg.Azure.PollTimeout == 0 {
		cfg.Azure.PollTimeout = DefaultPollTimeout
	}
	if cfg.Azure.DownloadTimeout == 0 {
		cfg.Azure.DownloadTimeout = DefaultDownloadTimeout
	}
	if cfg.Azure.PollInterval == 0 {
		cfg.Azure.PollInterval = DefaultPollInterval
	}
	if cfg.Azure.MaxPollAttempts == 0 {
		cfg.Azure.MaxPollAttempts = DefaultMaxPollAttempts
	}
	if cfg.Kubecost.Timeout == 0 {
		cfg.Kubecost.Timeout = DefaultKubecostTimeout
	}
}

// applyEnvOverrides applies environment variable overrides to configuration
func applyEnvOverrides(cfg *Config) error {
	if val := os.Getenv("BILLING_HTTP_PORT"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid BILLING_HTTP_PORT: must be an integer, got %q", val)
		}
		cfg.HTTPPort = i
	}

	if val := os.Getenv("BILLING_LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}

	if val := os.Getenv("BILLING_ALIBABA_PAGE_SIZE"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid BILLING_ALIBABA_PAGE_SIZE: must be an integer, got %q", val)
		}
		cfg.Alibaba.PageSize = i
	}

	if val := os.Getenv("BILLING_AZURE_CHINA_CLOUD"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid BILLING_AZURE_CHINA_CLOUD: must be a boolean, got %q", val)
		}
		cfg.Azure.ChinaCloud = b
	}

	if val := os.Getenv("BILLING_AZURE_POLL_INTERVAL"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid BILLING_AZURE_POLL_INTERVAL: must be an integer, got %q", val)
		}
		cfg.Azure.PollInterval = i
	}

	if val := os.Getenv("BILLING_AZURE_MAX_POLL_ATTEMPTS"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid BILLING_AZURE_MAX_POLL_ATTEMPTS: must be an integer, got %q", val)
		}
		cfg.Azure.MaxPollAttempts = i
	}

	if val := os.Getenv("BILLING_KUBECOST_BASE_URL"); val != "" {
		cfg.Kubecost.BaseURL = val
	}

	return nil
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.HTTPPort < MinPort || cfg.HTTPPort > MaxPort {
		return fmt.Errorf("http_port must be between %d and %d", MinPort, MaxPort)
	}

	if cfg.Alibaba.PageSize <= 0 {
		return fmt.Errorf("alibaba page_size must be positive, got %d", cfg.Alibaba.PageSize)
	}
	if cfg.Alibaba.PageSize > 300 {
		return fmt.Errorf("alibaba page_size cannot exceed 300, got %d", cfg.Alibaba.PageSize)
	}
	if cfg.Alibaba.APITimeout <= 0 {
		return fmt.Errorf("alibaba api_timeout must be positive, got %d", cfg.Alibaba.APITimeout)
	}

	if cfg.Azure.PollTimeout <= 0 {
		return fmt.Errorf("azure poll_timeout must be positive, got %d", cfg.Azure.PollTimeout)
	}
	if cfg.Azure.DownloadTimeout <= 0 {
		return fmt.Errorf("azure download_timeout must be positive, got %d", cfg.Azure.DownloadTimeout)
	}
	if cfg.Azure.PollInterval <= 0 {
		return fmt.Errorf("azure poll_interval must be positive, got %d", cfg.Azure.PollInterval)
	}
	if cfg.Azure.MaxPollAttempts <= 0 {
		return fmt.Errorf("azure max_poll_attempts must be positive, got %d", cfg.Azure.MaxPollAttempts)
	}

	if cfg.Kubecost.Timeout <= 0 {
		return fmt.Errorf("kubecost timeout must be positive, got %d", cfg.Kubecost.Timeout)
	}

	return nil
}
