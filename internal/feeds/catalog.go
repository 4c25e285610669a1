// Package feeds keeps metadata about the camera feeds on the dashboard. No
// video is handled here; only what the operator sees next to each feed.
package feeds

import (
	"sort"
	"sync"

	"github.com/kavach/kavach/internal/types"
	"github.com/kavach/kavach/internal/validate"
	"github.com/rs/zerolog"
)

// Status is the transport state reported for a feed
type Status string

const (
	StatusLive      Status = "live"
	StatusOffline   Status = "offline"
	StatusRecording Status = "recording"
)

// Feed describes one camera feed
type Feed struct {
	ID              string         `yaml:"id" json:"id" validate:"required"`
	Title           string         `yaml:"title" json:"title" validate:"required"`
	Location        string         `yaml:"location" json:"location"`
	Status          Status         `yaml:"status" json:"status" validate:"oneof=live offline recording"`
	ThreatLevel     types.Severity `yaml:"threat_level" json:"threat_level" validate:"oneof=low medium high critical"`
	DetectedObjects []string       `yaml:"detected_objects,omitempty" json:"detected_objects,omitempty"`
}

func (f Feed) clone() Feed {
	if f.DetectedObjects != nil {
		f.DetectedObjects = append([]string(nil), f.DetectedObjects...)
	}
	return f
}

// Catalog holds feed metadata keyed by feed id
type Catalog struct {
	logger zerolog.Logger
	mu     sync.RWMutex
	feeds  map[string]Feed
}

// NewCatalog creates an empty catalog
func NewCatalog(logger zerolog.Logger) *Catalog {
	return &Catalog{
		logger: logger.With().Str("component", "feeds").Logger(),
		feeds:  make(map[string]Feed),
	}
}

// Put stores a copy of f, replacing any feed with the same id.
// Missing status and threat level default to live and low.
func (c *Catalog) Put(f Feed) error {
	if f.Status == "" {
		f.Status = StatusLive
	}
	if f.ThreatLevel == "" {
		f.ThreatLevel = types.SeverityLow
	}
	if err := validate.Struct(f); err != nil {
		return types.Invalid("feed", f.ID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.feeds[f.ID] = f.clone()
	c.logger.Debug().Str("feed_id", f.ID).Str("status", string(f.Status)).Msg("Feed registered")
	return nil
}

// Get returns a copy of the feed with the given id
func (c *Catalog) Get(id string) (Feed, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.feeds[id]
	if !ok {
		return Feed{}, false
	}
	return f.clone(), true
}

// SetStatus updates the transport status of a feed
func (c *Catalog) SetStatus(id string, status Status) error {
	switch status {
	case StatusLive, StatusOffline, StatusRecording:
	default:
		return types.Invalidf("unknown feed status %q", status)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.feeds[id]
	if !ok {
		return types.NotFound("feed", id)
	}
	prev := f.Status
	f.Status = status
	c.feeds[id] = f

	c.logger.Info().
		Str("feed_id", id).
		Str("from", string(prev)).
		Str("to", string(status)).
		Msg("Feed status changed")
	return nil
}

// SetDetections replaces the detected object labels and threat level of a feed
func (c *Catalog) SetDetections(id string, level types.Severity, objects []string) error {
	if !level.Valid() {
		return types.Invalidf("unknown threat level %q", level)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.feeds[id]
	if !ok {
		return types.NotFound("feed", id)
	}
	f.ThreatLevel = level
	f.DetectedObjects = append([]string(nil), objects...)
	c.feeds[id] = f

	c.logger.Debug().
		Str("feed_id", id).
		Str("threat_level", string(level)).
		Strs("objects", objects).
		Msg("Feed detections updated")
	return nil
}

// List returns every feed sorted by id
func (c *Catalog) List() []Feed {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Feed, 0, len(c.feeds))
	for _, f := range c.feeds {
		out = append(out, f.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Elevated returns feeds whose threat level is above low, highest first
func (c *Catalog) Elevated() []Feed {
	all := c.List()
	out := all[:0]
	for _, f := range all {
		if f.ThreatLevel.Rank() > types.SeverityLow.Rank() {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ThreatLevel.Rank() > out[j].ThreatLevel.Rank() })
	return out
}
