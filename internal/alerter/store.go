package alerter

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/kavach/kavach/internal/snapshot"
	"github.com/kavach/kavach/internal/types"
	"github.com/kavach/kavach/internal/validate"
	"github.com/rs/zerolog"
)

// AlertSnapshot is an immutable view of the alert collection at one version
type AlertSnapshot struct {
	set *snapshot.Set[types.Alert]
}

// Version increases with every successful mutation
func (s AlertSnapshot) Version() uint64 {
	return s.set.Version()
}

// Len returns the total number of alerts
func (s AlertSnapshot) Len() int {
	return s.set.Len()
}

// Get returns the alert with the given id
func (s AlertSnapshot) Get(id string) (types.Alert, bool) {
	return s.set.Get(id)
}

// Filter returns the alerts matching f in insertion order
func (s AlertSnapshot) Filter(f types.AlertFilter) []types.Alert {
	if f == types.FilterAll {
		return s.set.Items()
	}
	return s.set.Select(f.Matches)
}

// ActiveCount counts alerts with status active
func (s AlertSnapshot) ActiveCount() int {
	return s.set.Count(types.FilterActive.Matches)
}

// CountByStatus returns the number of alerts in each status
func (s AlertSnapshot) CountByStatus() map[types.AlertStatus]int {
	counts := map[types.AlertStatus]int{
		types.StatusActive:       0,
		types.StatusAcknowledged: 0,
		types.StatusResolved:     0,
	}
	for _, a := range s.set.Items() {
		counts[a.Status]++
	}
	return counts
}

// Store is the single source of truth for alerts and their lifecycle.
// Writers are serialized; readers work on lock-free snapshots.
type Store struct {
	logger  zerolog.Logger
	now     func() time.Time
	mu      sync.Mutex
	current atomic.Pointer[snapshot.Set[types.Alert]]
	hub     snapshot.Hub[AlertSnapshot]
}

// NewStore creates an empty alert store
func NewStore(logger zerolog.Logger) *Store {
	s := &Store{
		logger: logger.With().Str("component", "alert-store").Logger(),
		now:    time.Now,
	}
	s.current.Store(snapshot.Empty[types.Alert]())
	return s
}

// Snapshot returns the current immutable view
func (s *Store) Snapshot() AlertSnapshot {
	return AlertSnapshot{set: s.current.Load()}
}

// Subscribe registers fn to receive every new snapshot after a successful mutation
func (s *Store) Subscribe(fn func(AlertSnapshot)) (cancel func()) {
	return s.hub.Subscribe(fn)
}

// Filter returns a read-only, insertion-ordered view of alerts matching f
func (s *Store) Filter(f types.AlertFilter) []types.Alert {
	return s.Snapshot().Filter(f)
}

// ActiveCount is derived from the current snapshot on every call
func (s *Store) ActiveCount() int {
	return s.Snapshot().ActiveCount()
}

// Get returns the alert with the given id
func (s *Store) Get(id string) (types.Alert, bool) {
	return s.Snapshot().Get(id)
}

// Len returns the total number of alerts
func (s *Store) Len() int {
	return s.Snapshot().Len()
}

// Ingest adds a new alert. A missing status defaults to active and a missing
// timestamp to now. A dismissed id may be ingested again.
func (s *Store) Ingest(a types.Alert) error {
	if a.Status == "" {
		a.Status = types.StatusActive
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = s.now()
	}
	if err := validate.Struct(a); err != nil {
		s.logger.Debug().Err(err).Str("alert_id", a.ID).Msg("Rejected invalid alert")
		return types.Invalid("alert", a.ID, err)
	}

	_, err := s.apply(func(cur *snapshot.Set[types.Alert]) (*snapshot.Set[types.Alert], error) {
		if cur.Has(a.ID) {
			return nil, types.DuplicateID("alert", a.ID)
		}
		return cur.Put(a.ID, a), nil
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("alert_id", a.ID).Msg("Ingest rejected")
		return err
	}

	s.logger.Info().
		Str("action", "ingest").
		Str("alert_id", a.ID).
		Str("type", string(a.Type)).
		Str("severity", string(a.Severity)).
		Str("status", string(a.Status)).
		Msg("Alert ingested")
	return nil
}

// Acknowledge moves an active alert to acknowledged
func (s *Store) Acknowledge(id string) (types.Alert, error) {
	return s.transition("acknowledge", id, types.StatusAcknowledged)
}

// Resolve moves an acknowledged alert to resolved. Active alerts must be
// acknowledged first.
func (s *Store) Resolve(id string) (types.Alert, error) {
	return s.transition("resolve", id, types.StatusResolved)
}

// Dismiss removes an alert regardless of status. There is no undo.
func (s *Store) Dismiss(id string) (types.Alert, error) {
	var removed types.Alert
	_, err := s.apply(func(cur *snapshot.Set[types.Alert]) (*snapshot.Set[types.Alert], error) {
		a, ok := cur.Get(id)
		if !ok {
			return nil, types.NotFound("alert", id)
		}
		removed = a
		next, _ := cur.Remove(id)
		return next, nil
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("alert_id", id).Msg("Dismiss rejected")
		return types.Alert{}, err
	}

	s.logger.Info().
		Str("action", "dismiss").
		Str("alert_id", id).
		Str("status", string(removed.Status)).
		Msg("Alert dismissed")
	return removed, nil
}

func (s *Store) transition(action, id string, to types.AlertStatus) (types.Alert, error) {
	var (
		updated types.Alert
		from    types.AlertStatus
	)
	_, err := s.apply(func(cur *snapshot.Set[types.Alert]) (*snapshot.Set[types.Alert], error) {
		a, ok := cur.Get(id)
		if !ok {
			return nil, types.NotFound("alert", id)
		}
		if err := types.CheckTransition(id, a.Status, to); err != nil {
			return nil, err
		}
		from = a.Status
		a.Status = to
		updated = a
		return cur.Put(id, a), nil
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("action", action).Str("alert_id", id).Msg("Transition rejected")
		return types.Alert{}, err
	}

	s.logger.Info().
		Str("action", action).
		Str("alert_id", id).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("Alert status changed")
	return updated, nil
}

// apply runs mutate against the current set under the writer lock, installs the
// result and then notifies subscribers outside the lock. Nothing is installed or
// published when mutate fails.
func (s *Store) apply(mutate func(*snapshot.Set[types.Alert]) (*snapshot.Set[types.Alert], error)) (AlertSnapshot, error) {
	s.mu.Lock()
	next, err := mutate(s.current.Load())
	if err == nil {
		s.current.Store(next)
	}
	s.mu.Unlock()

	if err != nil {
		return AlertSnapshot{}, err
	}
	snap := AlertSnapshot{set: next}
	s.hub.Publish(snap)
	return snap, nil
}
