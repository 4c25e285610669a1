package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kavach/kavach/internal/alerter"
	"github.com/kavach/kavach/internal/feeds"
	"github.com/kavach/kavach/internal/projector"
	"github.com/kavach/kavach/internal/types"
	"github.com/kavach/kavach/internal/validate"
	"gopkg.in/yaml.v3"
)

// File names inside a configuration directory
const (
	DashboardFile = "dashboard.yaml"
	SeedFile      = "seed.yaml"
)

// Default zoom settings
const (
	DefaultZoomPercent = 50
	DefaultZoomStep    = 10
	DefaultBufferSize  = 1000
)

// LoadConfigDir loads all configuration files from a directory
func LoadConfigDir(dir string) (*Config, error) {
	cfg := &Config{}

	// Load dashboard.yaml
	if err := loadYAML(filepath.Join(dir, DashboardFile), &cfg.Dashboard); err != nil {
		return nil, fmt.Errorf("loading %s: %w", DashboardFile, err)
	}

	// Load seed.yaml (optional)
	seedPath := filepath.Join(dir, SeedFile)
	if _, err := os.Stat(seedPath); err == nil {
		if err := loadYAML(seedPath, &cfg.Seed); err != nil {
			return nil, fmt.Errorf("loading %s: %w", SeedFile, err)
		}
	}

	ApplyDefaults(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration with every default applied and no seed data
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unset fields. The frame is defaulted as a whole when its
// base scale is unset.
func ApplyDefaults(cfg *Config) {
	d := &cfg.Dashboard
	if d.Logging.Level == "" {
		d.Logging.Level = "info"
	}
	if d.Logging.Format == "" {
		d.Logging.Format = "json"
	}
	if d.Frame.BaseScale == 0 {
		d.Frame = projector.DefaultFrame()
	}
	if d.Viewport.ZoomPercent == 0 {
		d.Viewport.ZoomPercent = DefaultZoomPercent
	}
	if d.Viewport.ZoomStep == 0 {
		d.Viewport.ZoomStep = DefaultZoomStep
	}
	if d.Viewport.Layer == "" {
		d.Viewport.Layer = types.LayerAll
	}
	if d.Viewport.AlertFilter == "" {
		d.Viewport.AlertFilter = types.FilterAll
	}
	if d.SOS.AutoReset == 0 {
		d.SOS.AutoReset = alerter.DefaultAutoReset
	}
	if d.Audit.BufferSize == 0 {
		d.Audit.BufferSize = DefaultBufferSize
	}

	for i := range cfg.Seed.Alerts {
		if cfg.Seed.Alerts[i].Status == "" {
			cfg.Seed.Alerts[i].Status = types.StatusActive
		}
	}
	for i := range cfg.Seed.Feeds {
		f := &cfg.Seed.Feeds[i]
		if f.Status == "" {
			f.Status = feeds.StatusLive
		}
		if f.ThreatLevel == "" {
			f.ThreatLevel = types.SeverityLow
		}
	}
}

// loadYAML loads a YAML file into a struct
func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

// ValidateConfig validates the configuration and reports every problem found
func ValidateConfig(cfg *Config) error {
	var errs []error

	if err := validate.Struct(cfg.Dashboard); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", DashboardFile, err))
	}
	if err := validate.Struct(cfg.Seed); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", SeedFile, err))
	}

	alertIDs := make(map[string]bool, len(cfg.Seed.Alerts))
	for _, a := range cfg.Seed.Alerts {
		if alertIDs[a.ID] {
			errs = append(errs, fmt.Errorf("%s: alert %s defined twice", SeedFile, a.ID))
		}
		alertIDs[a.ID] = true
	}

	// troops and threats share one marker namespace
	markerIDs := make(map[string]bool, len(cfg.Seed.Troops)+len(cfg.Seed.Threats))
	for _, t := range cfg.Seed.Troops {
		if markerIDs[t.ID] {
			errs = append(errs, fmt.Errorf("%s: marker %s defined twice", SeedFile, t.ID))
		}
		markerIDs[t.ID] = true
	}
	for _, t := range cfg.Seed.Threats {
		if markerIDs[t.ID] {
			errs = append(errs, fmt.Errorf("%s: marker %s defined twice", SeedFile, t.ID))
		}
		markerIDs[t.ID] = true
	}

	feedIDs := make(map[string]bool, len(cfg.Seed.Feeds))
	for _, f := range cfg.Seed.Feeds {
		if feedIDs[f.ID] {
			errs = append(errs, fmt.Errorf("%s: feed %s defined twice", SeedFile, f.ID))
		}
		feedIDs[f.ID] = true
	}

	return errors.Join(errs...)
}

// BuildAlerts turns the seeded alerts into store records relative to now
func (s Seed) BuildAlerts(now time.Time) []types.Alert {
	out := make([]types.Alert, 0, len(s.Alerts))
	for _, r := range s.Alerts {
		a := r.Alert
		switch {
		case r.Age > 0:
			a.Timestamp = now.Add(-r.Age)
		case a.Timestamp.IsZero():
			a.Timestamp = now
		}
		out = append(out, a)
	}
	return out
}

// BuildMarkers turns the seeded troops and threats into markers, troops first
func (s Seed) BuildMarkers(now time.Time) []types.Marker {
	out := make([]types.Marker, 0, len(s.Troops)+len(s.Threats))
	for _, t := range s.Troops {
		out = append(out, types.Marker{
			ID:          t.ID,
			Kind:        types.KindTroop,
			Position:    t.Position,
			Label:       t.Name,
			Unit:        t.Unit,
			TroopStatus: t.Status,
			ObservedAt:  now,
		})
	}
	for _, t := range s.Threats {
		out = append(out, types.Marker{
			ID:         t.ID,
			Kind:       types.KindThreat,
			Position:   t.Position,
			Label:      string(t.Type),
			ThreatType: t.Type,
			Severity:   t.Severity,
			ObservedAt: now.Add(-t.Age),
		})
	}
	return out
}
