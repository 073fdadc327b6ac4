package config

import (
	"fmt"
	"os"

	"breakout-scanner/src/models"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
	Secrets models.MSecrets
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 3. Credentials come from the environment, never from the YAML file.
	// A .env file is optional; real env vars win.
	_ = godotenv.Load()
	if err := envconfig.Process("", &config.Secrets); err != nil {
		return nil, fmt.Errorf("failed to read env overrides: %w", err)
	}

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// applyDefaults fills unset sections so a minimal YAML file still runs.
func (c *Config) applyDefaults() {
	if c.Scan.MinPercentChange == 0 && c.Scan.MaxPercentChange == 0 {
		c.Scan = models.DefaultScanParameters()
	}
	if c.Stream.ReconnectDelaySeconds <= 0 {
		c.Stream.ReconnectDelaySeconds = 5
	}
	if c.Stream.SimulateIntervalMs <= 0 {
		c.Stream.SimulateIntervalMs = 500
	}
	if c.Alerting.InterAlertDelayMs <= 0 {
		c.Alerting.InterAlertDelayMs = 500
	}
	if c.Alerting.CooldownMinutes <= 0 {
		c.Alerting.CooldownMinutes = 60
	}
	if c.Alerting.HistorySize <= 0 {
		c.Alerting.HistorySize = 20
	}
	if c.Alerting.CriticalPercentChange <= 0 {
		c.Alerting.CriticalPercentChange = 11.0
	}
	if c.Alerting.CriticalVolumeMultiplier <= 0 {
		c.Alerting.CriticalVolumeMultiplier = 1.5
	}
	if c.Reference.PageSize <= 0 {
		c.Reference.PageSize = 250
	}
	if c.Reference.UniverseLimit <= 0 {
		c.Reference.UniverseLimit = 1000
	}
	if c.Reference.AvgVolumeDays <= 0 {
		c.Reference.AvgVolumeDays = 14
	}
	if c.Network.RequestTimeout <= 0 {
		c.Network.RequestTimeout = 15
	}
	if c.Network.ConcurrentRequests <= 0 {
		c.Network.ConcurrentRequests = 4
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Stream configuration
	if !c.Stream.Simulate && c.Stream.URL == "" {
		return fmt.Errorf("stream url cannot be empty unless simulation is enabled")
	}

	// Validate Reference configuration
	if !c.Stream.Simulate && c.Reference.BaseURL == "" {
		return fmt.Errorf("reference base url cannot be empty unless simulation is enabled")
	}

	// Validate Scan window
	if err := ValidateScanParameters(&c.Scan); err != nil {
		return err
	}

	// Validate Network configuration
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	return nil
}

// -----------------------------------------------------------------------------

// ValidateScanParameters checks a scan window for internal consistency. Also
// used by the server when parameters are updated at runtime.
func ValidateScanParameters(p *models.MScanParameters) error {
	if p.MinPercentChange >= p.MaxPercentChange {
		return fmt.Errorf("min percent change (%.2f) must be below max (%.2f)", p.MinPercentChange, p.MaxPercentChange)
	}
	if p.MinVolumeRatio < 0 {
		return fmt.Errorf("min volume ratio cannot be negative")
	}
	if p.MinPrice >= p.MaxPrice {
		return fmt.Errorf("min price (%.2f) must be below max price (%.2f)", p.MinPrice, p.MaxPrice)
	}
	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
