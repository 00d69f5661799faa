// Package aggregate provides the shared bookkeeping embedded by event-sourced
// aggregates: identity, stream version, and uncommitted-event tracking.
//
// Aggregates fold their own state; the root only records which new facts have
// not yet been persisted and at which stream version the aggregate was loaded,
// so repositories can append with an optimistic concurrency check and clear
// the pending list after a successful save.
package aggregate

import (
	"github.com/fieldside/scorebook/internal/domain/event"
)

// Root tracks stream identity and uncommitted events for one aggregate.
type Root struct {
	id            string
	gameID        string
	aggregateType event.AggregateType
	version       uint64
	uncommitted   []event.Payload
}

// NewRoot creates bookkeeping for a fresh (never persisted) aggregate.
func NewRoot(aggregateType event.AggregateType, id, gameID string) Root {
	return Root{
		id:            id,
		gameID:        gameID,
		aggregateType: aggregateType,
	}
}

// RehydratedRoot creates bookkeeping for an aggregate loaded from a stream.
// version is the raw stream length, including markers and undone events, so a
// subsequent save appends at the position every reader agrees on.
func RehydratedRoot(aggregateType event.AggregateType, id, gameID string, version uint64) Root {
	root := NewRoot(aggregateType, id, gameID)
	root.version = version
	return root
}

// ID returns the stream identifier.
func (r *Root) ID() string { return r.id }

// GameID returns the owning game identifier.
func (r *Root) GameID() string { return r.gameID }

// AggregateType returns the stream's owning aggregate kind.
func (r *Root) AggregateType() event.AggregateType { return r.aggregateType }

// Version returns the stream version the aggregate was loaded at, advanced by
// MarkSaved after each successful append.
func (r *Root) Version() uint64 { return r.version }

// Uncommitted returns the payloads produced since load, oldest first.
func (r *Root) Uncommitted() []event.Payload {
	out := make([]event.Payload, len(r.uncommitted))
	copy(out, r.uncommitted)
	return out
}

// HasUncommitted reports whether a save would append anything.
func (r *Root) HasUncommitted() bool { return len(r.uncommitted) > 0 }

// Track adds a new fact to the pending list. Callers fold the payload into
// their state first; Track never validates.
func (r *Root) Track(payload event.Payload) {
	r.uncommitted = append(r.uncommitted, payload)
}

// MarkSaved records that the stream now extends through version and clears
// the pending list. Clearing is a correctness precondition: a retried save
// must not append the same facts twice.
func (r *Root) MarkSaved(version uint64) {
	r.version = version
	r.uncommitted = nil
}
