package types

import "time"

// AlertType classifies what raised an alert
type AlertType string

const (
	AlertIntrusion AlertType = "intrusion"
	AlertWeapon    AlertType = "weapon"
	AlertVehicle   AlertType = "vehicle"
	AlertSOS       AlertType = "sos"
	AlertSystem    AlertType = "system"
)

// Valid reports whether t is a known alert type
func (t AlertType) Valid() bool {
	switch t {
	case AlertIntrusion, AlertWeapon, AlertVehicle, AlertSOS, AlertSystem:
		return true
	}
	return false
}

// Severity is shared by alerts, threat markers and feed threat levels
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is a known severity
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Rank orders severities from 0 (low) to 3 (critical). Unknown values rank -1.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	}
	return -1
}

// AlertStatus is the lifecycle position of an alert.
//
// The lifecycle is strictly linear: active -> acknowledged -> resolved.
// There is no way back and resolved is terminal; an alert can only leave
// the store by being dismissed.
type AlertStatus string

const (
	StatusActive       AlertStatus = "active"
	StatusAcknowledged AlertStatus = "acknowledged"
	StatusResolved     AlertStatus = "resolved"
)

// Valid reports whether s is a known status
func (s AlertStatus) Valid() bool {
	switch s {
	case StatusActive, StatusAcknowledged, StatusResolved:
		return true
	}
	return false
}

// Next returns the only status reachable from s, or false if s is terminal
func (s AlertStatus) Next() (AlertStatus, bool) {
	switch s {
	case StatusActive:
		return StatusAcknowledged, true
	case StatusAcknowledged:
		return StatusResolved, true
	}
	return "", false
}

// CheckTransition validates a status change for the alert with the given id
func CheckTransition(id string, from, to AlertStatus) error {
	next, ok := from.Next()
	if !ok || next != to {
		return InvalidTransition(id, from, to)
	}
	return nil
}

// Alert is a security or operational event awaiting operator attention
type Alert struct {
	ID          string      `yaml:"id" json:"id" validate:"required"`
	Type        AlertType   `yaml:"type" json:"type" validate:"oneof=intrusion weapon vehicle sos system"`
	Severity    Severity    `yaml:"severity" json:"severity" validate:"oneof=low medium high critical"`
	Title       string      `yaml:"title" json:"title" validate:"required"`
	Description string      `yaml:"description" json:"description"`
	Location    string      `yaml:"location" json:"location"`
	Timestamp   time.Time   `yaml:"timestamp" json:"timestamp"`
	Status      AlertStatus `yaml:"status" json:"status" validate:"oneof=active acknowledged resolved"`
	Source      string      `yaml:"source" json:"source"`
}

// AlertFilter selects alerts by status, or all of them
type AlertFilter string

const (
	FilterAll          AlertFilter = "all"
	FilterActive       AlertFilter = AlertFilter(StatusActive)
	FilterAcknowledged AlertFilter = AlertFilter(StatusAcknowledged)
	FilterResolved     AlertFilter = AlertFilter(StatusResolved)
)

// ParseAlertFilter converts user input into an AlertFilter. Empty input means all.
func ParseAlertFilter(s string) (AlertFilter, error) {
	switch f := AlertFilter(s); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterActive, FilterAcknowledged, FilterResolved:
		return f, nil
	}
	return "", Invalidf("unknown alert filter %q", s)
}

// Matches reports whether the alert passes the filter
func (f AlertFilter) Matches(a Alert) bool {
	return f == FilterAll || AlertStatus(f) == a.Status
}
