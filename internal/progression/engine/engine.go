// Package engine composes the progression core behind a single facade.
//
// The engine owns the two monotonic sources — the received-item stream and
// the checked-location set — behind a single-writer mutex. Queries take one
// consistent snapshot and recompute derived state from it; nothing cached
// can go stale because nothing derived survives across state growth.
package engine

import (
	"errors"
	"sort"
	"sync"

	"github.com/louisbranch/shattered.front/internal/progression/domain"
	"github.com/louisbranch/shattered.front/internal/progression/location"
	"github.com/louisbranch/shattered.front/internal/progression/rules"
	"github.com/louisbranch/shattered.front/internal/progression/tech"
)

// DiagnosticSink receives recoverable accumulation findings. Implementations
// must not block; the engine calls it while holding no locks.
type DiagnosticSink func(code, message string)

// Config assembles an engine from the session-setup collaborator's output.
type Config struct {
	Hierarchy     *rules.Hierarchy
	Catalog       *tech.Catalog
	Codec         location.Codec
	Options       tech.Options
	SchemaVersion int
	// Locations lists every location id present in the world.
	Locations []domain.LocationID
	// Diagnostics is optional; nil discards findings.
	Diagnostics DiagnosticSink
}

// Engine is the progression facade. All methods are safe for concurrent
// use: mutations serialize against snapshot reads.
type Engine struct {
	hierarchy     *rules.Hierarchy
	catalog       *tech.Catalog
	codec         location.Codec
	opts          tech.Options
	schemaVersion int
	diagnostics   DiagnosticSink

	// locationsByMission indexes the world's locations per mission,
	// objective order preserved.
	locationsByMission map[domain.MissionID][]domain.LocationID

	mu       sync.RWMutex
	received []domain.ReceivedItem
	checked  map[domain.LocationID]bool
}

// New builds an engine over an immutable hierarchy and catalog.
func New(cfg Config) (*Engine, error) {
	if cfg.Hierarchy == nil {
		return nil, errors.New("hierarchy is required")
	}
	if cfg.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	e := &Engine{
		hierarchy:          cfg.Hierarchy,
		catalog:            cfg.Catalog,
		codec:              cfg.Codec,
		opts:               cfg.Options,
		schemaVersion:      cfg.SchemaVersion,
		diagnostics:        cfg.Diagnostics,
		locationsByMission: make(map[domain.MissionID][]domain.LocationID),
		checked:            make(map[domain.LocationID]bool),
	}
	for _, id := range cfg.Locations {
		mission, _ := cfg.Codec.Decode(id)
		e.locationsByMission[mission] = append(e.locationsByMission[mission], id)
	}
	for _, ids := range e.locationsByMission {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return e, nil
}

// ApplyItems appends received items to the monotonic stream.
func (e *Engine) ApplyItems(items ...domain.ReceivedItem) {
	if len(items) == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.received = append(e.received, items...)
}

// MarkLocations records checked locations. Re-marking is idempotent.
func (e *Engine) MarkLocations(ids ...domain.LocationID) {
	if len(ids) == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, id := range ids {
		e.checked[id] = true
	}
}

// ItemCount returns the length of the received stream.
func (e *Engine) ItemCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.received)
}

// ReceivedCount returns the received copies of one item.
func (e *Engine) ReceivedCount(item domain.ItemID) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	count := 0
	for _, event := range e.received {
		if event.Item == item {
			count++
		}
	}
	return count
}

// snapshotState copies the monotonic sources under the read lock.
func (e *Engine) snapshotState() (domain.Snapshot, []domain.ReceivedItem) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snap := domain.NewSnapshot()
	snap.ReceivedCounts = domain.CountItems(e.received)
	for mission := range e.locationsByMission {
		if e.checked[e.codec.VictoryLocation(mission)] {
			snap.Completed[mission] = true
		}
	}
	items := append([]domain.ReceivedItem(nil), e.received...)
	return snap, items
}

// Snapshot returns one consistent view of completed missions and received
// counts.
func (e *Engine) Snapshot() domain.Snapshot {
	snap, _ := e.snapshotState()
	return snap
}

// IsMissionCompleted reports whether a mission's victory location has been
// checked.
func (e *Engine) IsMissionCompleted(mission domain.MissionID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.checked[e.codec.VictoryLocation(mission)]
}

// MissionsCompleted counts completed missions across the world.
func (e *Engine) MissionsCompleted() int {
	snap, _ := e.snapshotState()
	return len(snap.Completed)
}

// IsMissionAccessible reports whether a mission is currently reachable.
func (e *Engine) IsMissionAccessible(mission domain.MissionID) bool {
	snap, _ := e.snapshotState()
	return e.hierarchy.IsMissionAccessible(mission, snap)
}

// AccessibleNodes returns the currently reachable missions, layouts per
// campaign, and campaigns, all against one snapshot.
func (e *Engine) AccessibleNodes() ([]domain.MissionID, map[int][]int, []int) {
	snap, _ := e.snapshotState()
	return e.hierarchy.AccessibleNodes(snap)
}

// UnfinishedMissions returns the accessible missions that still hold at
// least one unchecked objective location.
func (e *Engine) UnfinishedMissions() []domain.MissionID {
	snap, _ := e.snapshotState()
	accessible, _, _ := e.hierarchy.AccessibleNodes(snap)

	e.mu.RLock()
	defer e.mu.RUnlock()

	var unfinished []domain.MissionID
	for _, mission := range accessible {
		for _, id := range e.locationsByMission[mission] {
			if !e.checked[id] {
				unfinished = append(unfinished, mission)
				break
			}
		}
	}
	return unfinished
}

// UncollectedObjectives returns the objective indexes of a mission's
// unchecked locations, in objective order.
func (e *Engine) UncollectedObjectives(mission domain.MissionID) []domain.ObjectiveIndex {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var objectives []domain.ObjectiveIndex
	for _, id := range e.locationsByMission[mission] {
		if e.checked[id] {
			continue
		}
		_, objective := e.codec.Decode(id)
		objectives = append(objectives, objective)
	}
	return objectives
}

// TechState folds the received stream into per-faction technology state.
// Recoverable findings are forwarded to the diagnostic sink.
func (e *Engine) TechState() tech.State {
	snap, items := e.snapshotState()
	state, diagnostics := e.catalog.Accumulate(items, e.schemaVersion,
		len(snap.Completed), e.hierarchy.MissionCount(), e.opts)
	if e.diagnostics != nil {
		for _, diagnostic := range diagnostics {
			e.diagnostics(diagnostic.Code, diagnostic.Message)
		}
	}
	return state
}

// BlendedLevel computes the commander level from item state and completed
// missions.
func (e *Engine) BlendedLevel() int {
	snap, items := e.snapshotState()
	state, _ := e.catalog.Accumulate(items, e.schemaVersion,
		len(snap.Completed), e.hierarchy.MissionCount(), e.opts)
	return tech.BlendedLevel(state, len(snap.Completed), e.opts)
}

// Codec exposes the location codec for collaborators that need to turn raw
// identifiers back into mission/objective pairs.
func (e *Engine) Codec() location.Codec {
	return e.codec
}
