package evaluator

import (
	"fmt"

	"github.com/automabit/silowatch/internal/config"
	"github.com/automabit/silowatch/internal/types"
)

var alertDescriptions = map[types.Kind]string{
	types.KindTemperatureCritical: "%s shows a temperature of %s%s. Immediate inspection required.",
	types.KindTemperatureWarning:  "%s shows a temperature of %s%s. Monitoring recommended.",
	types.KindHumidityCritical:    "%s shows humidity of %s%s. Risk of product spoilage.",
	types.KindHumidityWarning:     "%s shows humidity of %s%s. Check the ventilation system.",
	types.KindCapacityCritical:    "%s is at %s%s capacity. Urgent unloading recommended.",
	types.KindCapacityWarning:     "%s is at %s%s capacity. Consider scheduling an unload.",
}

// Classify derives the overall status of a silo from its current readings.
// Absent metrics do not contribute.
func Classify(silo types.Silo, t config.Thresholds) types.Status {
	status := types.StatusNormal
	for _, m := range types.Metrics {
		v := silo.Value(m)
		if v == nil {
			continue
		}
		sev, ok := band(*v, t.For(m))
		if !ok {
			continue
		}
		if sev == types.SeverityCritical {
			return types.StatusAlert
		}
		status = types.StatusAttention
	}
	return status
}

// ActiveAlerts lists every metric currently inside a warning or critical
// band. Unlike Evaluate it looks at absolute values only.
func ActiveAlerts(silos []types.Silo, t config.Thresholds) []types.Alert {
	alerts := make([]types.Alert, 0)
	for _, silo := range silos {
		for _, m := range types.Metrics {
			v := silo.Value(m)
			if v == nil {
				continue
			}
			sev, ok := band(*v, t.For(m))
			if !ok {
				continue
			}
			kind := types.KindFor(m, sev)
			alerts = append(alerts, types.Alert{
				ID:       fmt.Sprintf("%s-%s", m, silo.ID),
				SiloID:   silo.ID,
				SiloName: silo.Name,
				Metric:   m,
				Severity: sev,
				Value:    *v,
				Unit:     m.Unit(),
				Message:  fmt.Sprintf(alertDescriptions[kind], silo.Name, types.FormatValue(*v), m.Unit()),
			})
		}
	}
	return alerts
}

// Statuses pairs each silo with its derived status
func Statuses(silos []types.Silo, t config.Thresholds) []types.SiloStatus {
	out := make([]types.SiloStatus, 0, len(silos))
	for _, silo := range silos {
		out = append(out, types.SiloStatus{Silo: silo, Status: Classify(silo, t)})
	}
	return out
}
