package config

import (
	"os"
	"path/filepath"
	"testing"

	"breakout-scanner/src/models"
)

// -----------------------------------------------------------------------------

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalYAML = `
name: scanner-test
host: 127.0.0.1
port: 8090
log_level: INFO
stream:
  simulate: true
`

// -----------------------------------------------------------------------------

func TestNewConfigAppliesDefaults(t *testing.T) {
	cfg, err := NewConfig(writeConfigFile(t, minimalYAML))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Scan.MinPercentChange != 8.0 || cfg.Scan.MaxPercentChange != 13.0 {
		t.Errorf("scan defaults not applied: %+v", cfg.Scan)
	}
	if cfg.Scan.MinVolumeRatio != 2.5 {
		t.Errorf("min volume ratio default = %.2f, want 2.5", cfg.Scan.MinVolumeRatio)
	}
	if cfg.Stream.ReconnectDelaySeconds != 5 {
		t.Errorf("reconnect delay default = %d, want 5", cfg.Stream.ReconnectDelaySeconds)
	}
	if cfg.Alerting.InterAlertDelayMs != 500 {
		t.Errorf("inter-alert delay default = %d, want 500", cfg.Alerting.InterAlertDelayMs)
	}
	if cfg.Alerting.CooldownMinutes != 60 {
		t.Errorf("cooldown default = %d, want 60", cfg.Alerting.CooldownMinutes)
	}
	if cfg.Alerting.CriticalPercentChange != 11.0 || cfg.Alerting.CriticalVolumeMultiplier != 1.5 {
		t.Errorf("critical tier defaults not applied: %+v", cfg.Alerting)
	}
}

// -----------------------------------------------------------------------------

func TestNewConfigValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing name", `
host: 127.0.0.1
port: 8090
stream:
  simulate: true
`},
		{"privileged port", `
name: x
host: 127.0.0.1
port: 80
stream:
  simulate: true
`},
		{"no stream url without simulation", `
name: x
host: 127.0.0.1
port: 8090
reference:
  base_url: https://ref.test
`},
		{"inverted scan window", `
name: x
host: 127.0.0.1
port: 8090
stream:
  simulate: true
scan:
  min_percent_change: 13
  max_percent_change: 8
  min_price: 2
  max_price: 2000
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewConfig(writeConfigFile(t, tt.yaml)); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

// -----------------------------------------------------------------------------

func TestValidateScanParameters(t *testing.T) {
	good := models.DefaultScanParameters()
	if err := ValidateScanParameters(&good); err != nil {
		t.Errorf("default parameters must validate: %v", err)
	}

	bad := good
	bad.MinPrice = 3000
	if err := ValidateScanParameters(&bad); err == nil {
		t.Error("expected error for min price above max price")
	}

	neg := good
	neg.MinVolumeRatio = -1
	if err := ValidateScanParameters(&neg); err == nil {
		t.Error("expected error for negative volume ratio")
	}
}

// -----------------------------------------------------------------------------

func TestConfigSaveRoundTrip(t *testing.T) {
	cfg, err := NewConfig(writeConfigFile(t, minimalYAML))
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "saved.yaml")
	if err := cfg.Save(out); err != nil {
		t.Fatal(err)
	}

	again, err := NewConfig(out)
	if err != nil {
		t.Fatal(err)
	}
	if again.Name != cfg.Name || again.Scan.MinVolumeRatio != cfg.Scan.MinVolumeRatio {
		t.Error("saved config did not round-trip")
	}
}
