package storage

import (
	"context"
	"time"

	"github.com/fieldside/scorebook/internal/domain/event"
	apperrors "github.com/fieldside/scorebook/internal/platform/errors"
)

// AnyVersion skips the optimistic concurrency check on append.
const AnyVersion int64 = -1

// ErrVersionConflict indicates an append's expected version did not match the
// stream's actual version. Callers distinguish this from infrastructure
// failures to decide between abort and reload-and-retry.
var ErrVersionConflict = apperrors.New(apperrors.CodeConcurrencyConflict, "event stream version conflict")

// ErrNotFound indicates a requested persistence record is missing. Stream
// reads never return it: absent streams read as empty sequences.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// EventStore is the append-only journal boundary. Each append call is atomic
// per stream: either every event in the batch becomes visible or none does.
type EventStore interface {
	// Append appends payloads to the named stream, assigning contiguous
	// versions continuing from the stream's current length and stamping each
	// record with the store clock. When expectedVersion is not AnyVersion and
	// does not match the stream's current version, Append fails with
	// ErrVersionConflict and records nothing. An empty batch is a no-op.
	Append(ctx context.Context, streamID string, aggregateType event.AggregateType, gameID string, expectedVersion int64, payloads []event.Payload) ([]event.Event, error)

	// GetEvents returns a stream's events in ascending version order.
	// fromVersion is exclusive: only events with version > fromVersion are
	// returned. A missing stream reads as an empty sequence.
	GetEvents(ctx context.Context, streamID string, fromVersion uint64) ([]event.Event, error)

	// GetGameEvents returns every event across the streams logically owned by
	// one game, ordered oldest first by timestamp (version, then stream id,
	// break ties).
	GetGameEvents(ctx context.Context, gameID string) ([]event.Event, error)

	// GetAllEvents returns every event across every stream, optionally
	// filtered to events at or after since.
	GetAllEvents(ctx context.Context, since *time.Time) ([]event.Event, error)

	// GetEventsByType returns every event of one type, independent of stream.
	GetEventsByType(ctx context.Context, eventType event.Type) ([]event.Event, error)

	// GetEventsByGameID returns a game's events filtered to the given
	// aggregate kinds. An empty filter matches every kind.
	GetEventsByGameID(ctx context.Context, gameID string, aggregateTypes []event.AggregateType) ([]event.Event, error)
}
