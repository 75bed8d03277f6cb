package types

import (
	"encoding/json"
	"time"
)

// Metric names one of the three continuous silo readings
type Metric string

const (
	MetricTemperature Metric = "temperature"
	MetricHumidity    Metric = "humidity"
	MetricCapacity    Metric = "capacity"
)

// Metrics lists the metrics in evaluation order.
var Metrics = []Metric{MetricTemperature, MetricHumidity, MetricCapacity}

// Unit returns the display unit of a metric
func (m Metric) Unit() string {
	if m == MetricTemperature {
		return "°C"
	}
	return "%"
}

// Kind identifies an alert condition on a silo
type Kind string

const (
	KindTemperatureCritical Kind = "temperature_critical"
	KindTemperatureWarning  Kind = "temperature_warning"
	KindHumidityCritical    Kind = "humidity_critical"
	KindHumidityWarning     Kind = "humidity_warning"
	KindCapacityCritical    Kind = "capacity_critical"
	KindCapacityWarning     Kind = "capacity_warning"
	KindDisconnected        Kind = "disconnected"
)

// Severity is the band a metric value falls into
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// KindFor returns the alert kind for a metric at a given severity.
func KindFor(m Metric, sev Severity) Kind {
	return Kind(string(m) + "_" + string(sev))
}

// Category is the display category handed to a notification sink
type Category string

const (
	CategorySuccess  Category = "success"
	CategoryError    Category = "error"
	CategoryWarning  Category = "warning"
	CategoryInfo     Category = "info"
	CategoryCritical Category = "critical"
)

// Category maps an alert kind to the category it is displayed with.
func (k Kind) Category() Category {
	switch k {
	case KindTemperatureCritical, KindHumidityCritical, KindCapacityCritical:
		return CategoryCritical
	case KindTemperatureWarning, KindHumidityWarning, KindCapacityWarning:
		return CategoryWarning
	case KindDisconnected:
		return CategoryError
	}
	return CategoryInfo
}

// Notification is a request to show one alert to the user
type Notification struct {
	SiloID   string    `json:"silo_id"`
	SiloName string    `json:"silo_name"`
	Kind     Kind      `json:"kind"`
	Category Category  `json:"category"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Value    *float64  `json:"value,omitempty"`
	Unit     string    `json:"unit,omitempty"`
	At       time.Time `json:"at"`
}

// Alert is a condition currently present on a silo, independent of when it
// started or whether it was notified.
type Alert struct {
	ID       string   `json:"id"`
	SiloID   string   `json:"silo_id"`
	SiloName string   `json:"silo_name"`
	Metric   Metric   `json:"metric"`
	Severity Severity `json:"severity"`
	Value    float64  `json:"value"`
	Unit     string   `json:"unit"`
	Message  string   `json:"message"`
}

// Status summarizes a silo's readings
type Status string

const (
	StatusNormal    Status = "normal"
	StatusAttention Status = "attention"
	StatusAlert     Status = "alert"
)

// SiloStatus is a silo reading together with its derived status
type SiloStatus struct {
	Silo
	Status Status `json:"status"`
}

// UnmarshalJSON decodes the silo leniently and keeps the status. Without it
// the embedded Silo's decoder would be promoted and drop the status.
func (s *SiloStatus) UnmarshalJSON(data []byte) error {
	var silo Silo
	if err := json.Unmarshal(data, &silo); err != nil {
		return err
	}
	var aux struct {
		Status Status `json:"status"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = SiloStatus{Silo: silo, Status: aux.Status}
	return nil
}
