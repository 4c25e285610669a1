package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kavach/kavach/internal/projector"
	"github.com/kavach/kavach/internal/types"
)

func TestLoadConfigDirValid(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigDir("testdata/valid")
	if err != nil {
		t.Fatalf("LoadConfigDir() = %v", err)
	}

	d := cfg.Dashboard
	if d.Logging.Format != "console" {
		t.Errorf("Logging.Format = %q, want console", d.Logging.Format)
	}
	if d.Frame != projector.DefaultFrame() {
		t.Errorf("Frame = %+v, want %+v", d.Frame, projector.DefaultFrame())
	}
	if d.SOS.AutoReset != 60*time.Second {
		t.Errorf("SOS.AutoReset = %v, want 60s", d.SOS.AutoReset)
	}
	if d.SOS.Location != "Forward Base Alpha" {
		t.Errorf("SOS.Location = %q", d.SOS.Location)
	}

	s := cfg.Seed
	if len(s.Alerts) != 4 || len(s.Troops) != 3 || len(s.Threats) != 2 || len(s.Feeds) != 4 {
		t.Fatalf("seed counts = %d alerts, %d troops, %d threats, %d feeds",
			len(s.Alerts), len(s.Troops), len(s.Threats), len(s.Feeds))
	}
	if s.Alerts[1].Status != types.StatusAcknowledged {
		t.Errorf("ALT002 status = %q, want acknowledged", s.Alerts[1].Status)
	}
	if s.Alerts[0].Age != 5*time.Minute {
		t.Errorf("ALT001 age = %v, want 5m", s.Alerts[0].Age)
	}
	if s.Troops[2].Position != (types.Position{Latitude: 24.9, Longitude: 74.9}) {
		t.Errorf("Charlie-3 position = %+v", s.Troops[2].Position)
	}
	if got := s.Feeds[0].DetectedObjects; len(got) != 2 || got[1] != "Rifle" {
		t.Errorf("CAM-007 detections = %v", got)
	}
}

func TestLoadConfigDirDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigDir("testdata/minimal")
	if err != nil {
		t.Fatalf("LoadConfigDir() = %v", err)
	}

	d := cfg.Dashboard
	if d.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", d.Logging.Level)
	}
	if d.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", d.Logging.Format)
	}
	if d.Frame != projector.DefaultFrame() {
		t.Errorf("Frame = %+v, want default", d.Frame)
	}
	if d.Viewport.ZoomPercent != DefaultZoomPercent || d.Viewport.ZoomStep != DefaultZoomStep {
		t.Errorf("Viewport = %+v", d.Viewport)
	}
	if d.Viewport.Layer != types.LayerAll || d.Viewport.AlertFilter != types.FilterAll {
		t.Errorf("Viewport = %+v, want all/all", d.Viewport)
	}
	if d.Audit.BufferSize != DefaultBufferSize {
		t.Errorf("Audit.BufferSize = %d, want %d", d.Audit.BufferSize, DefaultBufferSize)
	}
	if len(cfg.Seed.Alerts) != 0 {
		t.Errorf("seed alerts = %d, want 0 without seed.yaml", len(cfg.Seed.Alerts))
	}
}

func TestLoadConfigDirInvalid(t *testing.T) {
	t.Parallel()

	_, err := LoadConfigDir("testdata/invalid")
	if err == nil {
		t.Fatal("LoadConfigDir() = nil, want validation error")
	}
	msg := err.Error()
	for _, want := range []string{
		"level must be one of",
		"origin_lat must be less than or equal to 90",
		"zoom_percent must be less than or equal to 100",
		"layer must be one of",
		"type must be one of",
		"name is required",
		"lng must be less than or equal to 180",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error missing %q:\n%s", want, msg)
		}
	}
}

func TestLoadConfigDirDuplicates(t *testing.T) {
	t.Parallel()

	_, err := LoadConfigDir("testdata/duplicates")
	if err == nil {
		t.Fatal("LoadConfigDir() = nil, want duplicate error")
	}
	for _, want := range []string{"alert A1 defined twice", "marker M1 defined twice"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q: %v", want, err)
		}
	}
}

func TestLoadConfigDirMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadConfigDir(t.TempDir())
	if err == nil || !strings.Contains(err.Error(), DashboardFile) {
		t.Fatalf("LoadConfigDir(empty) = %v, want error naming %s", err, DashboardFile)
	}
}

func TestLoadConfigDirMalformedSeed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, DashboardFile), []byte("logging: {level: info}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, SeedFile), []byte("alerts: [\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfigDir(dir)
	if err == nil || !strings.Contains(err.Error(), SeedFile) {
		t.Fatalf("LoadConfigDir() = %v, want error naming %s", err, SeedFile)
	}
}

func TestSeedBuild(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigDir("testdata/valid")
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	alerts := cfg.Seed.BuildAlerts(now)
	if got, want := alerts[0].Timestamp, now.Add(-5*time.Minute); !got.Equal(want) {
		t.Errorf("ALT001 timestamp = %v, want %v", got, want)
	}
	if alerts[3].ID != "ALT004" || alerts[3].Status != types.StatusActive {
		t.Errorf("ALT004 = %+v", alerts[3])
	}

	markers := cfg.Seed.BuildMarkers(now)
	if len(markers) != 5 {
		t.Fatalf("markers = %d, want 5", len(markers))
	}
	if m := markers[0]; m.Kind != types.KindTroop || m.Label != "Alpha-1" || m.TroopStatus != types.TroopActive {
		t.Errorf("first marker = %+v, want troop Alpha-1", m)
	}
	if m := markers[4]; m.Kind != types.KindThreat || m.ThreatType != types.ThreatWeapon || m.Severity != types.SeverityCritical {
		t.Errorf("last marker = %+v, want critical weapon threat", m)
	}
	for _, m := range markers {
		if err := m.CheckKindFields(); err != nil {
			t.Errorf("marker %s: %v", m.ID, err)
		}
	}
}

func TestBuildAlertsExplicitTimestamp(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	now := ts.Add(time.Hour)
	s := Seed{Alerts: []AlertRecord{
		{Alert: types.Alert{ID: "A", Timestamp: ts}},
		{Alert: types.Alert{ID: "B"}},
		{Alert: types.Alert{ID: "C", Timestamp: ts}, Age: time.Minute},
	}}

	got := s.BuildAlerts(now)
	if !got[0].Timestamp.Equal(ts) {
		t.Errorf("A timestamp = %v, want %v", got[0].Timestamp, ts)
	}
	if !got[1].Timestamp.Equal(now) {
		t.Errorf("B timestamp = %v, want now", got[1].Timestamp)
	}
	if !got[2].Timestamp.Equal(now.Add(-time.Minute)) {
		t.Errorf("C timestamp = %v, age should win", got[2].Timestamp)
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()
	if err := ValidateConfig(Default()); err != nil {
		t.Errorf("ValidateConfig(Default()) = %v", err)
	}
}
