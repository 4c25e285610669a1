// Package dashboard is the operator-facing surface of the core. A Session
// combines the alert store, the entity registry, the projector and the
// per-operator view state, and turns every rejected action into a toast.
package dashboard

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kavach/kavach/internal/alerter"
	"github.com/kavach/kavach/internal/audit"
	"github.com/kavach/kavach/internal/config"
	"github.com/kavach/kavach/internal/feeds"
	"github.com/kavach/kavach/internal/metrics"
	"github.com/kavach/kavach/internal/notifier"
	"github.com/kavach/kavach/internal/projector"
	"github.com/kavach/kavach/internal/registry"
	"github.com/kavach/kavach/internal/snapshot"
	"github.com/kavach/kavach/internal/types"
	"github.com/rs/zerolog"
)

// EventKind names the part of the dashboard that changed
type EventKind string

const (
	EventAlerts   EventKind = "alerts"
	EventMarkers  EventKind = "markers"
	EventViewport EventKind = "viewport"
	EventBeacon   EventKind = "beacon"
	EventFeeds    EventKind = "feeds"
)

// Event tells subscribers which view to re-read. Version is the new version
// of that part.
type Event struct {
	Kind    EventKind
	Version uint64
}

// PlacedMarker is a visible marker with its screen position
type PlacedMarker struct {
	Marker types.Marker
	Point  projector.Point
}

// Summary is the key-metric row at the top of the dashboard
type Summary struct {
	ActiveAlerts  int
	TotalAlerts   int
	Troops        int
	TroopsOnline  int
	TroopsSOS     int
	Threats       int
	ElevatedFeeds int
	SOSActive     bool
}

// Options configures a new session
type Options struct {
	Frame        projector.Frame
	Viewport     types.Viewport
	ZoomStep     int
	SOSAutoReset time.Duration
	// SOSLocation is used when an activation does not name a location
	SOSLocation string
}

// DefaultOptions returns the default frame at 50% zoom with everything visible
func DefaultOptions() Options {
	return Options{
		Frame: projector.DefaultFrame(),
		Viewport: types.Viewport{
			ZoomPercent: config.DefaultZoomPercent,
			Layer:       types.LayerAll,
			AlertFilter: types.FilterAll,
		},
		ZoomStep:     config.DefaultZoomStep,
		SOSAutoReset: alerter.DefaultAutoReset,
	}
}

// OptionsFromConfig maps dashboard.yaml onto session options
func OptionsFromConfig(cfg config.DashboardConfig) Options {
	return Options{
		Frame: cfg.Frame,
		Viewport: types.Viewport{
			ZoomPercent: cfg.Viewport.ZoomPercent,
			Layer:       cfg.Viewport.Layer,
			AlertFilter: cfg.Viewport.AlertFilter,
		},
		ZoomStep:     cfg.Viewport.ZoomStep,
		SOSAutoReset: cfg.SOS.AutoReset,
		SOSLocation:  cfg.SOS.Location,
	}
}

// Session is one operator's dashboard
type Session struct {
	logger   zerolog.Logger
	alerts   *alerter.Store
	markers  *registry.Registry
	feeds    *feeds.Catalog
	beacon   *alerter.Beacon
	frame    projector.Frame
	zoomStep int
	sosLoc   string

	notifier atomic.Pointer[notifier.Notifier]
	metrics  atomic.Pointer[metrics.Metrics]
	audit    atomic.Pointer[audit.LogBuffer]

	viewMu      sync.RWMutex
	viewport    types.Viewport
	viewVersion uint64

	beaconVersion atomic.Uint64
	feedVersion   atomic.Uint64
	hub           snapshot.Hub[Event]
	unsubscribe   []func()
}

// New creates a session with empty stores
func New(logger zerolog.Logger, opts Options) *Session {
	def := DefaultOptions()
	if opts.Frame.BaseScale == 0 {
		opts.Frame = def.Frame
	}
	if opts.Viewport.ZoomPercent == 0 {
		opts.Viewport.ZoomPercent = def.Viewport.ZoomPercent
	}
	if opts.Viewport.Layer == "" {
		opts.Viewport.Layer = types.LayerAll
	}
	if opts.Viewport.AlertFilter == "" {
		opts.Viewport.AlertFilter = types.FilterAll
	}
	if opts.ZoomStep <= 0 {
		opts.ZoomStep = def.ZoomStep
	}
	opts.Viewport.ZoomPercent = types.ClampZoom(opts.Viewport.ZoomPercent)

	s := &Session{
		logger:   logger.With().Str("component", "dashboard").Logger(),
		alerts:   alerter.NewStore(logger),
		markers:  registry.New(logger),
		feeds:    feeds.NewCatalog(logger),
		frame:    opts.Frame,
		zoomStep: opts.ZoomStep,
		sosLoc:   opts.SOSLocation,
		viewport: opts.Viewport,
	}
	s.beacon = alerter.NewBeacon(logger, opts.SOSAutoReset, s.onBeacon)
	s.notifier.Store(notifier.NewNotifier(logger, nil))

	s.unsubscribe = append(s.unsubscribe,
		s.alerts.Subscribe(func(snap alerter.AlertSnapshot) {
			if m := s.metrics.Load(); m != nil {
				m.ObserveAlerts(snap)
			}
			s.hub.Publish(Event{Kind: EventAlerts, Version: snap.Version()})
		}),
		s.markers.Subscribe(func(snap registry.Snapshot) {
			if m := s.metrics.Load(); m != nil {
				m.ObserveMarkers(snap)
			}
			s.hub.Publish(Event{Kind: EventMarkers, Version: snap.Version()})
		}),
	)

	return s
}

// NewFromConfig creates a session from a loaded configuration and ingests its seed data
func NewFromConfig(logger zerolog.Logger, cfg *config.Config, now time.Time) (*Session, error) {
	s := New(logger, OptionsFromConfig(cfg.Dashboard))
	if err := s.Seed(cfg.Seed, now); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// SetNotifier replaces the toast notifier
func (s *Session) SetNotifier(n *notifier.Notifier) {
	if n != nil {
		s.notifier.Store(n)
	}
}

// SetMetrics attaches Prometheus collectors and records the current state
func (s *Session) SetMetrics(m *metrics.Metrics) {
	s.metrics.Store(m)
	if m == nil {
		return
	}
	m.ObserveAlerts(s.alerts.Snapshot())
	m.ObserveMarkers(s.markers.Snapshot())
	m.ObserveBeacon(s.beacon.State(), false)
	m.Zoom(s.Viewport().ZoomPercent)
}

// SetAuditLog attaches the log buffer that backs RecentActivity
func (s *Session) SetAuditLog(lb *audit.LogBuffer) {
	s.audit.Store(lb)
}

// Subscribe registers fn for change events. fn runs on the writer's goroutine
// after the change is visible to readers, and must not block.
func (s *Session) Subscribe(fn func(Event)) (cancel func()) {
	return s.hub.Subscribe(fn)
}

// Close stops the beacon timer and detaches from the stores
func (s *Session) Close() {
	s.beacon.Stop()
	for _, fn := range s.unsubscribe {
		fn()
	}
	s.unsubscribe = nil
}

// Seed loads fixture data. Every record is attempted and all failures are returned together.
func (s *Session) Seed(seed config.Seed, now time.Time) error {
	var errs []error
	for _, a := range seed.BuildAlerts(now) {
		if err := s.alerts.Ingest(a); err != nil {
			errs = append(errs, err)
		}
	}
	for _, m := range seed.BuildMarkers(now) {
		if err := s.markers.Upsert(m); err != nil {
			errs = append(errs, err)
		}
	}
	for _, f := range seed.Feeds {
		if err := s.feeds.Put(f); err != nil {
			errs = append(errs, err)
		}
	}

	s.logger.Info().
		Int("alerts", s.alerts.Len()).
		Int("markers", s.markers.Snapshot().Len()).
		Int("feeds", len(s.feeds.List())).
		Int("failed", len(errs)).
		Msg("Seed data loaded")
	return errors.Join(errs...)
}

// ListAlerts returns the alerts matching filter in ingestion order
func (s *Session) ListAlerts(filter types.AlertFilter) []types.Alert {
	return s.alerts.Filter(filter)
}

// VisibleAlerts applies the session's current alert filter
func (s *Session) VisibleAlerts() []types.Alert {
	return s.alerts.Filter(s.Viewport().AlertFilter)
}

// Alert returns the alert with the given id
func (s *Session) Alert(id string) (types.Alert, bool) {
	return s.alerts.Get(id)
}

// ActiveAlertCount counts alerts still awaiting acknowledgement
func (s *Session) ActiveAlertCount() int {
	return s.alerts.ActiveCount()
}

// ListMarkers returns the markers on layer
func (s *Session) ListMarkers(layer types.Layer) []types.Marker {
	return s.markers.ByLayer(layer)
}

// VisibleMarkers applies the session's current layer
func (s *Session) VisibleMarkers() []types.Marker {
	return s.markers.ByLayer(s.Viewport().Layer)
}

// Project places pos on screen for the zoom of vp
func (s *Session) Project(pos types.Position, vp types.Viewport) (projector.Point, error) {
	return projector.Project(pos, s.frame, vp.ZoomPercent)
}

// PlaceMarkers projects every visible marker at the current zoom. Markers whose
// position cannot be projected are skipped.
func (s *Session) PlaceMarkers() []PlacedMarker {
	vp := s.Viewport()
	visible := s.markers.ByLayer(vp.Layer)
	out := make([]PlacedMarker, 0, len(visible))
	for _, m := range visible {
		p, err := projector.Project(m.Position, s.frame, vp.ZoomPercent)
		if err != nil {
			s.logger.Debug().Err(err).Str("marker_id", m.ID).Msg("Marker not placed")
			continue
		}
		out = append(out, PlacedMarker{Marker: m, Point: p})
	}
	return out
}

// Viewport returns the current view state
func (s *Session) Viewport() types.Viewport {
	s.viewMu.RLock()
	defer s.viewMu.RUnlock()
	return s.viewport
}

// Frame returns the projection frame
func (s *Session) Frame() projector.Frame {
	return s.frame
}

// Summary derives the key metrics from the current snapshots
func (s *Session) Summary() Summary {
	alerts := s.alerts.Snapshot()
	counts := s.markers.Snapshot().Counts()
	return Summary{
		ActiveAlerts:  alerts.ActiveCount(),
		TotalAlerts:   alerts.Len(),
		Troops:        counts.Troops,
		TroopsOnline:  counts.TroopsOnline,
		TroopsSOS:     counts.TroopsSOS,
		Threats:       counts.Threats,
		ElevatedFeeds: len(s.feeds.Elevated()),
		SOSActive:     s.beacon.State().Active,
	}
}

// Feeds lists camera feed metadata sorted by id
func (s *Session) Feeds() []feeds.Feed {
	return s.feeds.List()
}

// Beacon returns the emergency beacon state
func (s *Session) Beacon() alerter.BeaconState {
	return s.beacon.State()
}

// RecentActivity returns the last n operator actions from the audit log
func (s *Session) RecentActivity(n int) []audit.Entry {
	lb := s.audit.Load()
	if lb == nil {
		return nil
	}
	return lb.Actions(n)
}

// IngestAlert adds a new alert and announces it when it is high or critical
func (s *Session) IngestAlert(a types.Alert) error {
	if err := s.alerts.Ingest(a); err != nil {
		return s.reject("ingest", err)
	}
	s.succeeded("ingest")
	if stored, ok := s.alerts.Get(a.ID); ok {
		s.notifier.Load().AlertRaised(stored)
	}
	return nil
}

// AcknowledgeAlert moves an active alert to acknowledged
func (s *Session) AcknowledgeAlert(id string) (types.Alert, error) {
	a, err := s.alerts.Acknowledge(id)
	if err != nil {
		return types.Alert{}, s.reject("acknowledge", err)
	}
	s.succeeded("acknowledge")
	return a, nil
}

// ResolveAlert moves an acknowledged alert to resolved
func (s *Session) ResolveAlert(id string) (types.Alert, error) {
	a, err := s.alerts.Resolve(id)
	if err != nil {
		return types.Alert{}, s.reject("resolve", err)
	}
	s.succeeded("resolve")
	return a, nil
}

// DismissAlert removes an alert in any status
func (s *Session) DismissAlert(id string) (types.Alert, error) {
	a, err := s.alerts.Dismiss(id)
	if err != nil {
		return types.Alert{}, s.reject("dismiss", err)
	}
	s.succeeded("dismiss")
	return a, nil
}

// UpsertMarker inserts or replaces a marker
func (s *Session) UpsertMarker(m types.Marker) error {
	if err := s.markers.Upsert(m); err != nil {
		return s.reject("upsert_marker", err)
	}
	return nil
}

// RemoveMarker deletes a marker. Removing an unknown id reports false.
func (s *Session) RemoveMarker(id string) bool {
	return s.markers.Remove(id)
}

// RegisterFeed adds or replaces camera feed metadata
func (s *Session) RegisterFeed(f feeds.Feed) error {
	if err := s.feeds.Put(f); err != nil {
		return s.reject("register_feed", err)
	}
	s.feedsChanged()
	return nil
}

// SetFeedStatus updates the transport status of a feed
func (s *Session) SetFeedStatus(id string, status feeds.Status) error {
	if err := s.feeds.SetStatus(id, status); err != nil {
		return s.reject("feed_status", err)
	}
	s.feedsChanged()
	return nil
}

// UpdateFeedDetections records what the detector currently sees on a feed
func (s *Session) UpdateFeedDetections(id string, level types.Severity, objects []string) error {
	if err := s.feeds.SetDetections(id, level, objects); err != nil {
		return s.reject("feed_detections", err)
	}
	s.feedsChanged()
	return nil
}

// SetZoom stores percent clamped into [MinZoom, MaxZoom] and returns the stored value
func (s *Session) SetZoom(percent int) int {
	return s.updateViewport(func(vp *types.Viewport) {
		vp.ZoomPercent = types.ClampZoom(percent)
	}).ZoomPercent
}

// ZoomIn raises the zoom by one step
func (s *Session) ZoomIn() int {
	return s.updateViewport(func(vp *types.Viewport) {
		vp.ZoomPercent = types.ClampZoom(vp.ZoomPercent + s.zoomStep)
	}).ZoomPercent
}

// ZoomOut lowers the zoom by one step
func (s *Session) ZoomOut() int {
	return s.updateViewport(func(vp *types.Viewport) {
		vp.ZoomPercent = types.ClampZoom(vp.ZoomPercent - s.zoomStep)
	}).ZoomPercent
}

// SetLayer selects which markers are visible
func (s *Session) SetLayer(layer types.Layer) error {
	l, err := types.ParseLayer(string(layer))
	if err != nil {
		return s.reject("set_layer", err)
	}
	s.updateViewport(func(vp *types.Viewport) { vp.Layer = l })
	return nil
}

// SetAlertFilter selects which alerts are visible
func (s *Session) SetAlertFilter(filter types.AlertFilter) error {
	f, err := types.ParseAlertFilter(string(filter))
	if err != nil {
		return s.reject("set_alert_filter", err)
	}
	s.updateViewport(func(vp *types.Viewport) { vp.AlertFilter = f })
	return nil
}

// ActivateSOS raises the emergency beacon and files a critical SOS alert. If
// the alert cannot be filed the beacon is dropped again and the error returned.
func (s *Session) ActivateSOS(req alerter.BeaconRequest) (alerter.BeaconState, error) {
	if req.Location == "" {
		req.Location = s.sosLoc
	}
	if req.AlertID == "" {
		req.AlertID = alerter.NewSOSAlertID()
	}
	if _, ok := s.alerts.Get(req.AlertID); ok {
		return alerter.BeaconState{}, s.reject("sos_activate", types.DuplicateID("alert", req.AlertID))
	}
	state, err := s.beacon.Activate(req)
	if err != nil {
		return alerter.BeaconState{}, s.reject("sos_activate", err)
	}

	alert := types.Alert{
		ID:          state.AlertID,
		Type:        types.AlertSOS,
		Severity:    types.SeverityCritical,
		Title:       "SOS Signal",
		Description: "Emergency beacon activated, location shared with command center",
		Location:    state.Location,
		Timestamp:   state.ActivatedAt,
		Status:      types.StatusActive,
		Source:      "Operator Console",
	}
	if state.Operator != "" {
		alert.Source = state.Operator
	}
	if err := s.alerts.Ingest(alert); err != nil {
		s.logger.Error().Err(err).Str("alert_id", alert.ID).Msg("Failed to file SOS alert")
		if _, derr := s.beacon.Deactivate(); derr != nil {
			s.logger.Error().Err(derr).Msg("Failed to drop beacon after SOS alert was rejected")
		}
		return alerter.BeaconState{}, s.reject("sos_activate", err)
	}
	s.succeeded("sos_activate")
	return state, nil
}

// DeactivateSOS cancels the emergency beacon. The SOS alert stays in the store
// and follows the normal lifecycle.
func (s *Session) DeactivateSOS() (alerter.BeaconState, error) {
	state, err := s.beacon.Deactivate()
	if err != nil {
		return alerter.BeaconState{}, s.reject("sos_deactivate", err)
	}
	s.succeeded("sos_deactivate")
	return state, nil
}

func (s *Session) updateViewport(mutate func(*types.Viewport)) types.Viewport {
	s.viewMu.Lock()
	prev := s.viewport
	mutate(&s.viewport)
	vp := s.viewport
	changed := vp != prev
	if changed {
		s.viewVersion++
	}
	version := s.viewVersion
	s.viewMu.Unlock()

	if !changed {
		return vp
	}
	if m := s.metrics.Load(); m != nil {
		m.Zoom(vp.ZoomPercent)
	}
	s.logger.Debug().
		Int("zoom", vp.ZoomPercent).
		Str("layer", string(vp.Layer)).
		Str("alert_filter", string(vp.AlertFilter)).
		Msg("Viewport changed")
	s.hub.Publish(Event{Kind: EventViewport, Version: version})
	return vp
}

func (s *Session) onBeacon(state alerter.BeaconState) {
	if m := s.metrics.Load(); m != nil {
		m.ObserveBeacon(state, state.Active && state.Recording)
	}
	s.notifier.Load().BeaconChanged(state)
	s.hub.Publish(Event{Kind: EventBeacon, Version: s.beaconVersion.Add(1)})
}

func (s *Session) feedsChanged() {
	s.hub.Publish(Event{Kind: EventFeeds, Version: s.feedVersion.Add(1)})
}

func (s *Session) succeeded(action string) {
	if m := s.metrics.Load(); m != nil {
		m.Action(action)
	}
}

func (s *Session) reject(action string, err error) error {
	if m := s.metrics.Load(); m != nil {
		m.Rejected(action, err)
	}
	s.notifier.Load().Rejected(action, err)
	return err
}
