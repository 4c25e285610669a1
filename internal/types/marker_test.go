package types

import (
	"errors"
	"testing"
)

func TestCheckKindFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		m       Marker
		wantErr bool
	}{
		{"troop with status", Marker{ID: "T1", Kind: KindTroop, TroopStatus: TroopActive}, false},
		{"troop without status", Marker{ID: "T1", Kind: KindTroop}, true},
		{"troop with severity", Marker{ID: "T1", Kind: KindTroop, TroopStatus: TroopActive, Severity: SeverityHigh}, true},
		{"threat complete", Marker{ID: "H1", Kind: KindThreat, ThreatType: ThreatWeapon, Severity: SeverityCritical}, false},
		{"threat without severity", Marker{ID: "H1", Kind: KindThreat, ThreatType: ThreatWeapon}, true},
		{"threat without type", Marker{ID: "H1", Kind: KindThreat, Severity: SeverityLow}, true},
		{"threat with troop status", Marker{ID: "H1", Kind: KindThreat, ThreatType: ThreatVehicle, Severity: SeverityLow, TroopStatus: TroopSOS}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.m.CheckKindFields()
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckKindFields() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLayer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		layer  Layer
		troop  bool
		threat bool
	}{
		{LayerAll, true, true},
		{LayerTroops, true, false},
		{LayerThreats, false, true},
		{Layer("vehicles"), false, false},
	}
	for _, tt := range tests {
		if got := tt.layer.Includes(KindTroop); got != tt.troop {
			t.Errorf("%q.Includes(troop) = %v, want %v", tt.layer, got, tt.troop)
		}
		if got := tt.layer.Includes(KindThreat); got != tt.threat {
			t.Errorf("%q.Includes(threat) = %v, want %v", tt.layer, got, tt.threat)
		}
	}

	if l, err := ParseLayer(""); err != nil || l != LayerAll {
		t.Errorf("ParseLayer(\"\") = %q, %v, want all, nil", l, err)
	}
	if _, err := ParseLayer("vehicles"); !errors.Is(err, ErrInvalid) {
		t.Errorf("ParseLayer(vehicles) error = %v, want ErrInvalid", err)
	}
}

func TestClampZoom(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want int }{
		{-50, MinZoom},
		{0, MinZoom},
		{9, MinZoom},
		{10, 10},
		{55, 55},
		{100, 100},
		{101, MaxZoom},
		{1000, MaxZoom},
	}
	for _, tt := range tests {
		if got := ClampZoom(tt.in); got != tt.want {
			t.Errorf("ClampZoom(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
