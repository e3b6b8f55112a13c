// Package storage defines the persistence interfaces for the tracker: the
// append-only received-event journal, the checked-location set, and the
// telemetry log. Implementations live in subpackages.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/shattered.front/internal/progression/domain"
)

// ErrNotFound indicates a missing record.
var ErrNotFound = errors.New("record not found")

// ReceivedEvent is one persisted entry of the item journal.
type ReceivedEvent struct {
	// Seq is the journal sequence number (starts at 1). Assigned by
	// storage on append.
	Seq uint64
	// Item, Sender, Location, and Flags mirror the wire record.
	Item     domain.ItemID
	Sender   int
	Location domain.LocationID
	Flags    int
	// Timestamp is when the event was persisted.
	Timestamp time.Time
}

// Received converts the journal entry back into the wire record.
func (e ReceivedEvent) Received() domain.ReceivedItem {
	return domain.ReceivedItem{
		Item:     e.Item,
		Sender:   e.Sender,
		Location: e.Location,
		Flags:    e.Flags,
	}
}

// EventStore persists the append-only received-item journal.
type EventStore interface {
	// AppendEvents appends events in order and assigns sequence numbers.
	AppendEvents(ctx context.Context, events []ReceivedEvent) error
	// ListEvents returns up to limit events with Seq > afterSeq, in
	// sequence order.
	ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]ReceivedEvent, error)
	// CountEvents returns the journal length.
	CountEvents(ctx context.Context) (uint64, error)
}

// LocationStore persists the monotonic checked-location set.
type LocationStore interface {
	// MarkLocations records locations as checked. Re-marking is idempotent.
	MarkLocations(ctx context.Context, ids []domain.LocationID) error
	// ListLocations returns all checked locations in ascending id order.
	ListLocations(ctx context.Context) ([]domain.LocationID, error)
}

// TelemetryEvent is one operational diagnostic record.
type TelemetryEvent struct {
	Timestamp time.Time
	Severity  string
	Code      string
	Message   string
}

// TelemetryStore persists operational diagnostics.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, event TelemetryEvent) error
}
