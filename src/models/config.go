package models

// MConfig Structure
type MConfig struct {
	Name      string           `yaml:"name"`
	Host      string           `yaml:"host"`
	Port      int              `yaml:"port"`
	LogLevel  string           `yaml:"log_level"`
	Stream    MStreamConfig    `yaml:"stream"`
	Reference MReferenceConfig `yaml:"reference"`
	Scan      MScanParameters  `yaml:"scan"`
	Alerting  MAlertingConfig  `yaml:"alerting"`
	Network   MNetworkConfig   `yaml:"network"`
}

type MStreamConfig struct {
	URL                   string `yaml:"url"`
	ReconnectDelaySeconds int    `yaml:"reconnect_delay_seconds"`
	Simulate              bool   `yaml:"simulate"`
	SimulateIntervalMs    int    `yaml:"simulate_interval_ms"`
}

type MReferenceConfig struct {
	BaseURL       string `yaml:"base_url"`
	UniverseLimit int    `yaml:"universe_limit"`
	PageSize      int    `yaml:"page_size"`
	AvgVolumeDays int    `yaml:"avg_volume_days"`
}

type MAlertingConfig struct {
	InterAlertDelayMs        int     `yaml:"inter_alert_delay_ms"`
	CooldownMinutes          int     `yaml:"cooldown_minutes"`
	HistorySize              int     `yaml:"history_size"`
	CriticalPercentChange    float64 `yaml:"critical_percent_change"`
	CriticalVolumeMultiplier float64 `yaml:"critical_volume_multiplier"`
}

type MNetworkConfig struct {
	RequestTimeout     int    `yaml:"timeout"`
	MaxRetries         int    `yaml:"retries"`
	ConcurrentRequests int    `yaml:"concurrent_requests"`
	UserAgent          string `yaml:"user_agent"`
}

// MSecrets holds credentials loaded from the environment, never from YAML.
type MSecrets struct {
	APIKey string `envconfig:"SCANNER_API_KEY"`
}
