// Package metrics exposes dashboard state as Prometheus collectors.
package metrics

import (
	"github.com/kavach/kavach/internal/alerter"
	"github.com/kavach/kavach/internal/registry"
	"github.com/kavach/kavach/internal/types"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the dashboard core
type Metrics struct {
	Alerts         *prometheus.GaugeVec
	ActionsTotal   *prometheus.CounterVec
	RejectedTotal  *prometheus.CounterVec
	Markers        *prometheus.GaugeVec
	TroopsOnline   prometheus.Gauge
	ZoomPercent    prometheus.Gauge
	SOSActivations prometheus.Counter
	SOSActive      prometheus.Gauge
}

// New registers and returns dashboard metrics on the given registerer
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Alerts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "kavach",
			Subsystem: "alerts",
			Name:      "current",
			Help:      "Alerts currently held, by status.",
		}, []string{"status"}),
		ActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kavach",
			Subsystem: "alerts",
			Name:      "actions_total",
			Help:      "Successful alert operations by action.",
		}, []string{"action"}),
		RejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kavach",
			Name:      "rejected_operations_total",
			Help:      "Operations rejected without changing state, by action and error code.",
		}, []string{"action", "code"}),
		Markers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "kavach",
			Subsystem: "map",
			Name:      "markers",
			Help:      "Markers currently on the tactical map, by kind.",
		}, []string{"kind"}),
		TroopsOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kavach",
			Subsystem: "map",
			Name:      "troops_online",
			Help:      "Troop markers not reported offline.",
		}),
		ZoomPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kavach",
			Subsystem: "map",
			Name:      "zoom_percent",
			Help:      "Current map zoom level.",
		}),
		SOSActivations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kavach",
			Subsystem: "sos",
			Name:      "activations_total",
			Help:      "Emergency beacon activations.",
		}),
		SOSActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kavach",
			Subsystem: "sos",
			Name:      "active",
			Help:      "1 while the emergency beacon is active.",
		}),
	}

	reg.MustRegister(
		m.Alerts,
		m.ActionsTotal,
		m.RejectedTotal,
		m.Markers,
		m.TroopsOnline,
		m.ZoomPercent,
		m.SOSActivations,
		m.SOSActive,
	)

	return m
}

// ObserveAlerts sets the per-status gauges from a snapshot
func (m *Metrics) ObserveAlerts(s alerter.AlertSnapshot) {
	for status, n := range s.CountByStatus() {
		m.Alerts.WithLabelValues(string(status)).Set(float64(n))
	}
}

// ObserveMarkers sets the marker gauges from a snapshot
func (m *Metrics) ObserveMarkers(s registry.Snapshot) {
	c := s.Counts()
	m.Markers.WithLabelValues(string(types.KindTroop)).Set(float64(c.Troops))
	m.Markers.WithLabelValues(string(types.KindThreat)).Set(float64(c.Threats))
	m.TroopsOnline.Set(float64(c.TroopsOnline))
}

// ObserveBeacon tracks beacon activations and the active flag
func (m *Metrics) ObserveBeacon(s alerter.BeaconState, activated bool) {
	if activated {
		m.SOSActivations.Inc()
	}
	if s.Active {
		m.SOSActive.Set(1)
	} else {
		m.SOSActive.Set(0)
	}
}

// Action counts a successful operation
func (m *Metrics) Action(action string) {
	m.ActionsTotal.WithLabelValues(action).Inc()
}

// Rejected counts a failed operation
func (m *Metrics) Rejected(action string, err error) {
	code := string(types.CodeOf(err))
	if code == "" {
		code = "UNKNOWN"
	}
	m.RejectedTotal.WithLabelValues(action, code).Inc()
}

// Zoom records the current zoom level
func (m *Metrics) Zoom(percent int) {
	m.ZoomPercent.Set(float64(percent))
}
