package config

import (
	"time"

	"github.com/kavach/kavach/internal/feeds"
	"github.com/kavach/kavach/internal/projector"
	"github.com/kavach/kavach/internal/types"
)

// Config is everything loaded from a configuration directory
type Config struct {
	Dashboard DashboardConfig
	Seed      Seed
}

// DashboardConfig holds the settings in dashboard.yaml
type DashboardConfig struct {
	Logging  LoggingConfig   `yaml:"logging"`
	Frame    projector.Frame `yaml:"frame"`
	Viewport ViewportConfig  `yaml:"viewport"`
	SOS      SOSConfig       `yaml:"sos"`
	Audit    AuditConfig     `yaml:"audit"`
}

// LoggingConfig selects the zerolog level and writer
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"` // json or console
}

// ViewportConfig is the initial view state of a session
type ViewportConfig struct {
	ZoomPercent int               `yaml:"zoom_percent" validate:"gte=10,lte=100"`
	ZoomStep    int               `yaml:"zoom_step" validate:"gte=1,lte=90"`
	Layer       types.Layer       `yaml:"layer" validate:"oneof=all troops threats"`
	AlertFilter types.AlertFilter `yaml:"alert_filter" validate:"oneof=all active acknowledged resolved"`
}

// SOSConfig configures the emergency beacon
type SOSConfig struct {
	AutoReset time.Duration `yaml:"auto_reset" validate:"gt=0"`
	Operator  string        `yaml:"operator"`
	Location  string        `yaml:"location"`
}

// AuditConfig sizes the in-memory activity log
type AuditConfig struct {
	BufferSize int `yaml:"buffer_size" validate:"gte=1"`
}

// Seed is the demo data in seed.yaml. It is fixture data for demos and tests.
type Seed struct {
	Alerts  []AlertRecord  `yaml:"alerts" validate:"dive"`
	Troops  []TroopRecord  `yaml:"troops" validate:"dive"`
	Threats []ThreatRecord `yaml:"threats" validate:"dive"`
	Feeds   []feeds.Feed   `yaml:"feeds" validate:"dive"`
}

// AlertRecord is a seeded alert. Age, when set, places the timestamp relative
// to load time and wins over an explicit timestamp.
type AlertRecord struct {
	types.Alert `yaml:",inline"`
	Age         time.Duration `yaml:"age,omitempty" validate:"gte=0"`
}

// TroopRecord is a seeded friendly unit
type TroopRecord struct {
	ID       string            `yaml:"id" validate:"required"`
	Name     string            `yaml:"name" validate:"required"`
	Position types.Position    `yaml:"position"`
	Status   types.TroopStatus `yaml:"status" validate:"oneof=active standby sos offline"`
	Unit     string            `yaml:"unit"`
}

// ThreatRecord is a seeded hostile contact
type ThreatRecord struct {
	ID       string           `yaml:"id" validate:"required"`
	Position types.Position   `yaml:"position"`
	Type     types.ThreatType `yaml:"type" validate:"oneof=intrusion weapon vehicle unknown"`
	Severity types.Severity   `yaml:"severity" validate:"oneof=low medium high critical"`
	Age      time.Duration    `yaml:"age,omitempty" validate:"gte=0"`
}
