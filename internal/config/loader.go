package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultCooldown              = 5 * time.Minute
	defaultInterval              = 30 * time.Second
	defaultDisconnectProbability = 0.05
	defaultDedupWindow           = 2 * time.Second
	defaultToastTTL              = 5 * time.Second
	defaultPort                  = "8088"
)

// Default returns the product configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// LoadConfig loads configuration from a YAML file. An empty path yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if err := loadYAML(path, cfg); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	setDefaults(cfg)

	if port := os.Getenv("API_PORT"); port != "" {
		cfg.API.Port = port
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadYAML loads a YAML file into a struct
func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

// DefaultThresholds returns the product bands
func DefaultThresholds() Thresholds {
	return Thresholds{
		Temperature: MetricThreshold{Critical: 30, Warning: 27, MinDelta: 0.5},
		Humidity:    MetricThreshold{Critical: 70, Warning: 65, MinDelta: 1},
		Capacity:    MetricThreshold{Critical: 90, Warning: 75, MinDelta: 0.5},
	}
}

// setDefaults fills zero values. Thresholds read from a file were already
// overlaid field by field in Thresholds.UnmarshalYAML; this covers the
// no-file and programmatic cases.
func setDefaults(cfg *Config) {
	defaults := DefaultThresholds()
	if cfg.Thresholds.Temperature == (MetricThreshold{}) {
		cfg.Thresholds.Temperature = defaults.Temperature
	}
	if cfg.Thresholds.Humidity == (MetricThreshold{}) {
		cfg.Thresholds.Humidity = defaults.Humidity
	}
	if cfg.Thresholds.Capacity == (MetricThreshold{}) {
		cfg.Thresholds.Capacity = defaults.Capacity
	}
	if cfg.Alerts.Cooldown == 0 {
		cfg.Alerts.Cooldown = defaultCooldown
	}
	if cfg.Simulator.Interval == 0 {
		cfg.Simulator.Interval = defaultInterval
	}
	if cfg.Simulator.DisconnectProbability == nil {
		p := defaultDisconnectProbability
		cfg.Simulator.DisconnectProbability = &p
	}
	if len(cfg.Simulator.Silos) == 0 {
		cfg.Simulator.Silos = defaultSilos()
	}
	if cfg.Notifier.DedupWindow == 0 {
		cfg.Notifier.DedupWindow = defaultDedupWindow
	}
	if cfg.Notifier.ToastTTL == 0 {
		cfg.Notifier.ToastTTL = defaultToastTTL
	}
	if cfg.API.Port == "" {
		cfg.API.Port = defaultPort
	}
}

func defaultSilos() []SiloSeed {
	return []SiloSeed{
		{ID: "1", Name: "Silo 1 - Corn", Product: "Corn", Location: "Warehouse - Sector 08/10", Capacity: 85, Temperature: 25, Humidity: 60, Weight: 45},
		{ID: "2", Name: "Silo 2 - Soybean", Product: "Soybean", Location: "Warehouse - Sector 04/10", Capacity: 92, Temperature: 22, Humidity: 55, Weight: 38},
		{ID: "3", Name: "Silo 3 - Wheat", Product: "Wheat", Location: "Warehouse - Sector 06/10", Capacity: 45, Temperature: 20, Humidity: 50, Weight: 28},
	}
}

// ValidateConfig validates the configuration
func ValidateConfig(cfg *Config) error {
	metrics := map[string]MetricThreshold{
		"temperature": cfg.Thresholds.Temperature,
		"humidity":    cfg.Thresholds.Humidity,
		"capacity":    cfg.Thresholds.Capacity,
	}
	for name, t := range metrics {
		if t.Warning >= t.Critical {
			return fmt.Errorf("thresholds.%s: warning (%v) must be below critical (%v)", name, t.Warning, t.Critical)
		}
		if t.MinDelta < 0 {
			return fmt.Errorf("thresholds.%s: min_delta must not be negative", name)
		}
	}

	if cfg.Alerts.Cooldown <= 0 {
		return fmt.Errorf("alerts.cooldown must be positive")
	}

	if cfg.Simulator.Interval <= 0 {
		return fmt.Errorf("simulator.interval must be positive")
	}
	if p := cfg.Simulator.DisconnectProbability; p != nil && (*p < 0 || *p > 1) {
		return fmt.Errorf("simulator.disconnect_probability must be between 0 and 1")
	}

	seen := make(map[string]struct{}, len(cfg.Simulator.Silos))
	for i, silo := range cfg.Simulator.Silos {
		if silo.ID == "" {
			return fmt.Errorf("simulator.silos[%d]: id is required", i)
		}
		if _, dup := seen[silo.ID]; dup {
			return fmt.Errorf("simulator.silos[%d]: duplicate id %s", i, silo.ID)
		}
		seen[silo.ID] = struct{}{}
	}

	if cfg.Notifier.DedupWindow < 0 {
		return fmt.Errorf("notifier.dedup_window must not be negative")
	}
	if cfg.Notifier.ToastTTL <= 0 {
		return fmt.Errorf("notifier.toast_ttl must be positive")
	}

	for name, channel := range cfg.Notifier.Channels {
		if channel.Type != "apprise" {
			return fmt.Errorf("channel %s: only 'apprise' type is supported", name)
		}
		if channel.URLEnv == "" {
			return fmt.Errorf("channel %s: url_env is required", name)
		}
	}

	return nil
}
