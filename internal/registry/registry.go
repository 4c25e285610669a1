// Package registry holds the troop and threat markers shown on the tactical map.
package registry

import (
	"sync"
	"sync/atomic"

	"github.com/kavach/kavach/internal/snapshot"
	"github.com/kavach/kavach/internal/types"
	"github.com/kavach/kavach/internal/validate"
	"github.com/rs/zerolog"
)

// Counts summarises the markers by kind
type Counts struct {
	Troops       int
	TroopsOnline int
	TroopsSOS    int
	Threats      int
}

// Snapshot is an immutable view of the markers at one version
type Snapshot struct {
	set *snapshot.Set[types.Marker]
}

// Version increases with every successful mutation
func (s Snapshot) Version() uint64 {
	return s.set.Version()
}

// Len returns the total number of markers
func (s Snapshot) Len() int {
	return s.set.Len()
}

// Get returns the marker with the given id
func (s Snapshot) Get(id string) (types.Marker, bool) {
	return s.set.Get(id)
}

// ByLayer returns the markers visible on layer, in insertion order
func (s Snapshot) ByLayer(layer types.Layer) []types.Marker {
	if layer == types.LayerAll {
		return s.set.Items()
	}
	return s.set.Select(func(m types.Marker) bool { return layer.Includes(m.Kind) })
}

// Counts tallies markers by kind and troop status
func (s Snapshot) Counts() Counts {
	var c Counts
	for _, m := range s.set.Items() {
		switch m.Kind {
		case types.KindTroop:
			c.Troops++
			if m.TroopStatus != types.TroopOffline {
				c.TroopsOnline++
			}
			if m.TroopStatus == types.TroopSOS {
				c.TroopsSOS++
			}
		case types.KindThreat:
			c.Threats++
		}
	}
	return c
}

// Registry owns the current marker set
type Registry struct {
	logger  zerolog.Logger
	mu      sync.Mutex
	current atomic.Pointer[snapshot.Set[types.Marker]]
	hub     snapshot.Hub[Snapshot]
}

// New creates an empty registry
func New(logger zerolog.Logger) *Registry {
	r := &Registry{logger: logger.With().Str("component", "entity-registry").Logger()}
	r.current.Store(snapshot.Empty[types.Marker]())
	return r
}

// Snapshot returns the current immutable view
func (r *Registry) Snapshot() Snapshot {
	return Snapshot{set: r.current.Load()}
}

// Subscribe registers fn to receive every new snapshot after a mutation
func (r *Registry) Subscribe(fn func(Snapshot)) (cancel func()) {
	return r.hub.Subscribe(fn)
}

// ByLayer returns the markers of the requested kind, or all of them
func (r *Registry) ByLayer(layer types.Layer) []types.Marker {
	return r.Snapshot().ByLayer(layer)
}

// Get returns the marker with the given id
func (r *Registry) Get(id string) (types.Marker, bool) {
	return r.Snapshot().Get(id)
}

// Upsert inserts m, or replaces the marker with the same id in place
func (r *Registry) Upsert(m types.Marker) error {
	if err := validateMarker(m); err != nil {
		r.logger.Debug().Err(err).Str("marker_id", m.ID).Msg("Rejected invalid marker")
		return types.Invalid("marker", m.ID, err)
	}

	r.mu.Lock()
	cur := r.current.Load()
	replaced := cur.Has(m.ID)
	next := cur.Put(m.ID, m)
	r.current.Store(next)
	r.mu.Unlock()

	r.logger.Debug().
		Str("action", "upsert").
		Str("marker_id", m.ID).
		Str("kind", string(m.Kind)).
		Bool("replaced", replaced).
		Msg("Marker stored")
	r.hub.Publish(Snapshot{set: next})
	return nil
}

// Remove deletes the marker with the given id. Removing an unknown id is a
// no-op and reports false.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	next, ok := r.current.Load().Remove(id)
	if ok {
		r.current.Store(next)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	r.logger.Debug().Str("action", "remove").Str("marker_id", id).Msg("Marker removed")
	r.hub.Publish(Snapshot{set: next})
	return true
}

func validateMarker(m types.Marker) error {
	if err := validate.Struct(m); err != nil {
		return err
	}
	return m.CheckKindFields()
}
