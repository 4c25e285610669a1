package metrics

import (
	"testing"

	"github.com/kavach/kavach/internal/alerter"
	"github.com/kavach/kavach/internal/registry"
	"github.com/kavach/kavach/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func TestNewRegistersCollectors(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Action("acknowledge")
	m.Rejected("resolve", types.NotFound("alert", "X"))
	m.Zoom(50)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() = %v", err)
	}
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"kavach_alerts_actions_total",
		"kavach_rejected_operations_total",
		"kavach_map_zoom_percent",
		"kavach_map_troops_online",
		"kavach_sos_activations_total",
		"kavach_sos_active",
	} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}

func TestObserveAlerts(t *testing.T) {
	t.Parallel()
	m := New(prometheus.NewRegistry())
	s := alerter.NewStore(zerolog.Nop())

	for _, id := range []string{"A1", "A2", "A3"} {
		if err := s.Ingest(types.Alert{ID: id, Type: types.AlertSystem, Severity: types.SeverityLow, Title: "t"}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Acknowledge("A1"); err != nil {
		t.Fatal(err)
	}
	m.ObserveAlerts(s.Snapshot())

	tests := []struct {
		status string
		want   float64
	}{
		{"active", 2},
		{"acknowledged", 1},
		{"resolved", 0},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.Alerts.WithLabelValues(tt.status)); got != tt.want {
			t.Errorf("alerts{status=%q} = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestObserveMarkers(t *testing.T) {
	t.Parallel()
	m := New(prometheus.NewRegistry())
	r := registry.New(zerolog.Nop())

	for _, mk := range []types.Marker{
		{ID: "T1", Kind: types.KindTroop, TroopStatus: types.TroopActive},
		{ID: "T2", Kind: types.KindTroop, TroopStatus: types.TroopOffline},
		{ID: "H1", Kind: types.KindThreat, ThreatType: types.ThreatWeapon, Severity: types.SeverityCritical},
	} {
		if err := r.Upsert(mk); err != nil {
			t.Fatal(err)
		}
	}
	m.ObserveMarkers(r.Snapshot())

	if got := testutil.ToFloat64(m.Markers.WithLabelValues("troop")); got != 2 {
		t.Errorf("markers{kind=troop} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Markers.WithLabelValues("threat")); got != 1 {
		t.Errorf("markers{kind=threat} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.TroopsOnline); got != 1 {
		t.Errorf("troops_online = %v, want 1", got)
	}
}

func TestObserveBeacon(t *testing.T) {
	t.Parallel()
	m := New(prometheus.NewRegistry())

	m.ObserveBeacon(alerter.BeaconState{Active: true, Recording: true}, true)
	m.ObserveBeacon(alerter.BeaconState{Active: true}, false)
	if got := testutil.ToFloat64(m.SOSActive); got != 1 {
		t.Errorf("sos_active = %v, want 1", got)
	}
	m.ObserveBeacon(alerter.BeaconState{}, false)

	if got := testutil.ToFloat64(m.SOSActivations); got != 1 {
		t.Errorf("sos_activations_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SOSActive); got != 0 {
		t.Errorf("sos_active = %v, want 0", got)
	}
}

func TestRejectedCodes(t *testing.T) {
	t.Parallel()
	m := New(prometheus.NewRegistry())

	m.Rejected("acknowledge", types.NotFound("alert", "X9"))
	m.Rejected("acknowledge", types.NotFound("alert", "X8"))
	m.Rejected("resolve", types.InvalidTransition("A1", types.StatusActive, types.StatusResolved))
	m.Rejected("seed", errUnknown{})

	if got := testutil.ToFloat64(m.RejectedTotal.WithLabelValues("acknowledge", "NOT_FOUND")); got != 2 {
		t.Errorf("rejected{acknowledge,NOT_FOUND} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RejectedTotal.WithLabelValues("resolve", "INVALID_TRANSITION")); got != 1 {
		t.Errorf("rejected{resolve,INVALID_TRANSITION} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RejectedTotal.WithLabelValues("seed", "UNKNOWN")); got != 1 {
		t.Errorf("rejected{seed,UNKNOWN} = %v, want 1", got)
	}
}

type errUnknown struct{}

func (errUnknown) Error() string { return "unknown" }
