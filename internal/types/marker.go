package types

import (
	"errors"
	"time"
)

// MarkerKind is the entity class shown on the tactical map
type MarkerKind string

const (
	KindTroop  MarkerKind = "troop"
	KindThreat MarkerKind = "threat"
)

// TroopStatus is the reported state of a friendly unit
type TroopStatus string

const (
	TroopActive  TroopStatus = "active"
	TroopStandby TroopStatus = "standby"
	TroopSOS     TroopStatus = "sos"
	TroopOffline TroopStatus = "offline"
)

// ThreatType classifies a hostile contact
type ThreatType string

const (
	ThreatIntrusion ThreatType = "intrusion"
	ThreatWeapon    ThreatType = "weapon"
	ThreatVehicle   ThreatType = "vehicle"
	ThreatUnknown   ThreatType = "unknown"
)

// Position is a WGS84 point in decimal degrees
type Position struct {
	Latitude  float64 `yaml:"lat" json:"lat" validate:"gte=-90,lte=90"`
	Longitude float64 `yaml:"lng" json:"lng" validate:"gte=-180,lte=180"`
}

// Marker is a positioned troop or threat. Markers are replaced wholesale, never edited.
type Marker struct {
	ID       string     `yaml:"id" json:"id" validate:"required"`
	Kind     MarkerKind `yaml:"kind" json:"kind" validate:"oneof=troop threat"`
	Position Position   `yaml:"position" json:"position"`
	Label    string     `yaml:"label" json:"label"`

	// troop fields
	Unit        string      `yaml:"unit,omitempty" json:"unit,omitempty"`
	TroopStatus TroopStatus `yaml:"status,omitempty" json:"status,omitempty" validate:"omitempty,oneof=active standby sos offline"`

	// threat fields
	ThreatType ThreatType `yaml:"type,omitempty" json:"type,omitempty" validate:"omitempty,oneof=intrusion weapon vehicle unknown"`
	Severity   Severity   `yaml:"severity,omitempty" json:"severity,omitempty" validate:"omitempty,oneof=low medium high critical"`
	ObservedAt time.Time  `yaml:"observed_at,omitempty" json:"observed_at,omitempty"`
}

// CheckKindFields enforces the kind-dependent half of a marker: troops carry a
// status and no threat data, threats carry a type and severity and no status.
func (m Marker) CheckKindFields() error {
	var errs []error
	switch m.Kind {
	case KindTroop:
		if m.TroopStatus == "" {
			errs = append(errs, errors.New("troop marker requires status"))
		}
		if m.ThreatType != "" || m.Severity != "" {
			errs = append(errs, errors.New("troop marker cannot carry threat type or severity"))
		}
	case KindThreat:
		if m.ThreatType == "" {
			errs = append(errs, errors.New("threat marker requires type"))
		}
		if m.Severity == "" {
			errs = append(errs, errors.New("threat marker requires severity"))
		}
		if m.TroopStatus != "" {
			errs = append(errs, errors.New("threat marker cannot carry troop status"))
		}
	}
	return errors.Join(errs...)
}

// Layer selects which marker kinds are visible
type Layer string

const (
	LayerAll     Layer = "all"
	LayerTroops  Layer = "troops"
	LayerThreats Layer = "threats"
)

// ParseLayer converts user input into a Layer. Empty input means all.
func ParseLayer(s string) (Layer, error) {
	switch l := Layer(s); l {
	case "":
		return LayerAll, nil
	case LayerAll, LayerTroops, LayerThreats:
		return l, nil
	}
	return "", Invalidf("unknown layer %q", s)
}

// Includes reports whether markers of kind k are visible on the layer
func (l Layer) Includes(k MarkerKind) bool {
	switch l {
	case LayerAll:
		return true
	case LayerTroops:
		return k == KindTroop
	case LayerThreats:
		return k == KindThreat
	}
	return false
}
