package config

import (
	"fmt"
	"time"

	"github.com/automabit/silowatch/internal/types"
	"gopkg.in/yaml.v3"
)

// Config represents the complete silowatch configuration
type Config struct {
	Thresholds Thresholds      `yaml:"thresholds"`
	Alerts     AlertBehavior   `yaml:"alerts"`
	Simulator  SimulatorConfig `yaml:"simulator"`
	Notifier   NotifierConfig  `yaml:"notifier"`
	API        APIConfig       `yaml:"api"`
}

// MetricThreshold defines the bands for one metric. Warning must be below
// Critical; MinDelta is the smallest change between two readings that is
// worth reacting to.
type MetricThreshold struct {
	Critical float64 `yaml:"critical"`
	Warning  float64 `yaml:"warning"`
	MinDelta float64 `yaml:"min_delta"`
}

// Thresholds holds the bands for every metric
type Thresholds struct {
	Temperature MetricThreshold `yaml:"temperature"`
	Humidity    MetricThreshold `yaml:"humidity"`
	Capacity    MetricThreshold `yaml:"capacity"`
}

// thresholdOverride holds the fields a config file actually sets, so an
// explicit zero can be told apart from an omitted field
type thresholdOverride struct {
	Critical *float64 `yaml:"critical"`
	Warning  *float64 `yaml:"warning"`
	MinDelta *float64 `yaml:"min_delta"`
}

// UnmarshalYAML overlays the configured fields on the product bands, one
// field at a time.
func (t *Thresholds) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]thresholdOverride
	if err := node.Decode(&raw); err != nil {
		return err
	}

	out := DefaultThresholds()
	for name, o := range raw {
		var target *MetricThreshold
		switch types.Metric(name) {
		case types.MetricTemperature:
			target = &out.Temperature
		case types.MetricHumidity:
			target = &out.Humidity
		case types.MetricCapacity:
			target = &out.Capacity
		default:
			return fmt.Errorf("thresholds: unknown metric %q", name)
		}
		if o.Critical != nil {
			target.Critical = *o.Critical
		}
		if o.Warning != nil {
			target.Warning = *o.Warning
		}
		if o.MinDelta != nil {
			target.MinDelta = *o.MinDelta
		}
	}

	*t = out
	return nil
}

// For returns the thresholds of a metric.
func (t Thresholds) For(m types.Metric) MetricThreshold {
	switch m {
	case types.MetricHumidity:
		return t.Humidity
	case types.MetricCapacity:
		return t.Capacity
	default:
		return t.Temperature
	}
}

// AlertBehavior defines alert suppression settings
type AlertBehavior struct {
	Cooldown time.Duration `yaml:"cooldown"`
}

// SimulatorConfig defines the simulated sensor feed
type SimulatorConfig struct {
	Enabled               *bool         `yaml:"enabled,omitempty"`
	Interval              time.Duration `yaml:"interval"`
	DisconnectProbability *float64      `yaml:"disconnect_probability,omitempty"`
	Seed                  int64         `yaml:"seed,omitempty"`
	Silos                 []SiloSeed    `yaml:"silos"`
}

// SiloSeed is the initial reading of a simulated silo
type SiloSeed struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Product     string  `yaml:"product,omitempty"`
	Location    string  `yaml:"location,omitempty"`
	Temperature float64 `yaml:"temperature"`
	Humidity    float64 `yaml:"humidity"`
	Capacity    float64 `yaml:"capacity"`
	Weight      float64 `yaml:"weight"`
}

// NotifierConfig defines toast behaviour and outbound channels
type NotifierConfig struct {
	DedupWindow time.Duration            `yaml:"dedup_window"`
	ToastTTL    time.Duration            `yaml:"toast_ttl"`
	Channels    map[string]ChannelConfig `yaml:"channels,omitempty"`
}

// ChannelConfig defines an outbound notification channel
type ChannelConfig struct {
	Type           string   `yaml:"type"`
	URLEnv         string   `yaml:"url_env"`
	SeverityFilter []string `yaml:"severity_filter,omitempty"`
}

// APIConfig defines the HTTP listener
type APIConfig struct {
	Port string `yaml:"port"`
}

// SimulatorEnabled reports whether the built-in simulated feed should run.
func (c *Config) SimulatorEnabled() bool {
	return c.Simulator.Enabled == nil || *c.Simulator.Enabled
}
