// Package memory provides an in-process event journal. State lives in an
// explicit store instance created by New and discarded with it, keeping tests
// isolated from each other.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fieldside/scorebook/internal/domain/event"
	apperrors "github.com/fieldside/scorebook/internal/platform/errors"
	"github.com/fieldside/scorebook/internal/storage"
)

// Store is an in-memory EventStore implementation.
type Store struct {
	mu       sync.RWMutex
	streams  map[string][]event.Event
	registry *event.Registry
	clock    func() time.Time
}

// Option configures store behavior.
type Option func(*Store)

// WithClock injects the timestamp source used on append. Tests use stepped
// clocks to make cross-stream ordering deterministic.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New creates an empty in-memory journal validating against registry.
func New(registry *event.Registry, opts ...Option) *Store {
	s := &Store{
		streams:  make(map[string][]event.Event),
		registry: registry,
		clock:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Append implements storage.EventStore. The batch is validated in full before
// any record becomes visible, so a mid-batch fault leaves the stream
// untouched.
func (s *Store) Append(ctx context.Context, streamID string, aggregateType event.AggregateType, gameID string, expectedVersion int64, payloads []event.Payload) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(payloads) == 0 {
		return nil, nil
	}
	for _, payload := range payloads {
		if err := s.registry.ValidateForAppend(streamID, aggregateType, gameID, payload); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := uint64(len(s.streams[streamID]))
	if expectedVersion != storage.AnyVersion && uint64(expectedVersion) != current {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeConcurrencyConflict, "event stream version conflict", map[string]string{
			"streamId": streamID,
		}, storage.ErrVersionConflict)
	}

	timestamp := s.clock().UTC().Truncate(time.Millisecond)
	appended := make([]event.Event, 0, len(payloads))
	for i, payload := range payloads {
		appended = append(appended, event.Event{
			StreamID:      streamID,
			AggregateType: aggregateType,
			GameID:        gameID,
			Type:          payload.EventType(),
			Version:       current + uint64(i) + 1,
			Timestamp:     timestamp,
			Payload:       payload,
		})
	}
	s.streams[streamID] = append(s.streams[streamID], appended...)

	out := make([]event.Event, len(appended))
	copy(out, appended)
	return out, nil
}

// GetEvents implements storage.EventStore.
func (s *Store) GetEvents(ctx context.Context, streamID string, fromVersion uint64) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	stream := s.streams[streamID]
	out := make([]event.Event, 0, len(stream))
	for _, evt := range stream {
		if evt.Version > fromVersion {
			out = append(out, evt)
		}
	}
	return out, nil
}

// GetGameEvents implements storage.EventStore.
func (s *Store) GetGameEvents(ctx context.Context, gameID string) ([]event.Event, error) {
	return s.collect(ctx, func(evt event.Event) bool {
		return evt.GameID == gameID
	})
}

// GetAllEvents implements storage.EventStore.
func (s *Store) GetAllEvents(ctx context.Context, since *time.Time) ([]event.Event, error) {
	return s.collect(ctx, func(evt event.Event) bool {
		return since == nil || !evt.Timestamp.Before(since.UTC())
	})
}

// GetEventsByType implements storage.EventStore.
func (s *Store) GetEventsByType(ctx context.Context, eventType event.Type) ([]event.Event, error) {
	return s.collect(ctx, func(evt event.Event) bool {
		return evt.Type == eventType
	})
}

// GetEventsByGameID implements storage.EventStore.
func (s *Store) GetEventsByGameID(ctx context.Context, gameID string, aggregateTypes []event.AggregateType) ([]event.Event, error) {
	wanted := make(map[event.AggregateType]bool, len(aggregateTypes))
	for _, aggregateType := range aggregateTypes {
		wanted[aggregateType] = true
	}
	return s.collect(ctx, func(evt event.Event) bool {
		if evt.GameID != gameID {
			return false
		}
		return len(wanted) == 0 || wanted[evt.AggregateType]
	})
}

func (s *Store) collect(ctx context.Context, match func(event.Event) bool) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]event.Event, 0)
	for _, stream := range s.streams {
		for _, evt := range stream {
			if match(evt) {
				out = append(out, evt)
			}
		}
	}
	event.SortAscending(out)
	return out, nil
}
