package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fieldside/scorebook/internal/domain/event"
	apperrors "github.com/fieldside/scorebook/internal/platform/errors"
	"github.com/fieldside/scorebook/internal/storage"
)

// Append implements storage.EventStore. The whole batch is written inside one
// transaction so a mid-batch fault leaves the stream untouched.
func (s *Store) Append(ctx context.Context, streamID string, aggregateType event.AggregateType, gameID string, expectedVersion int64, payloads []event.Payload) ([]event.Event, error) {
	if len(payloads) == 0 {
		return nil, nil
	}
	encoded := make([][]byte, len(payloads))
	for i, payload := range payloads {
		if err := s.registry.ValidateForAppend(streamID, aggregateType, gameID, payload); err != nil {
			return nil, err
		}
		data, err := s.registry.EncodePayload(payload)
		if err != nil {
			return nil, err
		}
		encoded[i] = data
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageAppendFailed, "begin append transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current uint64
	row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM events WHERE stream_id = ?`, streamID)
	if err := row.Scan(&current); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageAppendFailed, "read stream version", err)
	}
	if expectedVersion != storage.AnyVersion && uint64(expectedVersion) != current {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeConcurrencyConflict, "event stream version conflict", map[string]string{
			"streamId": streamID,
		}, storage.ErrVersionConflict)
	}

	timestamp := s.clock().UTC().Truncate(time.Millisecond)
	appended := make([]event.Event, 0, len(payloads))
	for i, payload := range payloads {
		evt := event.Event{
			StreamID:      streamID,
			AggregateType: aggregateType,
			GameID:        gameID,
			Type:          payload.EventType(),
			Version:       current + uint64(i) + 1,
			Timestamp:     timestamp,
			Payload:       payload,
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO events (stream_id, version, aggregate_type, game_id, event_type, timestamp, payload_json)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			evt.StreamID, evt.Version, string(evt.AggregateType), evt.GameID,
			string(evt.Type), toMillis(evt.Timestamp), encoded[i],
		)
		if err != nil {
			return nil, apperrors.WrapWithMetadata(apperrors.CodeStorageAppendFailed, "insert event", map[string]string{
				"streamId":  streamID,
				"eventType": string(evt.Type),
			}, err)
		}
		appended = append(appended, evt)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageAppendFailed, "commit append transaction", err)
	}
	return appended, nil
}

// GetEvents implements storage.EventStore.
func (s *Store) GetEvents(ctx context.Context, streamID string, fromVersion uint64) ([]event.Event, error) {
	return s.query(ctx, `
		SELECT stream_id, version, aggregate_type, game_id, event_type, timestamp, payload_json
		FROM events
		WHERE stream_id = ? AND version > ?
		ORDER BY version`, streamID, fromVersion)
}

// GetGameEvents implements storage.EventStore.
func (s *Store) GetGameEvents(ctx context.Context, gameID string) ([]event.Event, error) {
	return s.query(ctx, `
		SELECT stream_id, version, aggregate_type, game_id, event_type, timestamp, payload_json
		FROM events
		WHERE game_id = ?
		ORDER BY timestamp, version, stream_id`, gameID)
}

// GetAllEvents implements storage.EventStore.
func (s *Store) GetAllEvents(ctx context.Context, since *time.Time) ([]event.Event, error) {
	if since != nil {
		return s.query(ctx, `
			SELECT stream_id, version, aggregate_type, game_id, event_type, timestamp, payload_json
			FROM events
			WHERE timestamp >= ?
			ORDER BY timestamp, version, stream_id`, toMillis(*since))
	}
	return s.query(ctx, `
		SELECT stream_id, version, aggregate_type, game_id, event_type, timestamp, payload_json
		FROM events
		ORDER BY timestamp, version, stream_id`)
}

// GetEventsByType implements storage.EventStore.
func (s *Store) GetEventsByType(ctx context.Context, eventType event.Type) ([]event.Event, error) {
	return s.query(ctx, `
		SELECT stream_id, version, aggregate_type, game_id, event_type, timestamp, payload_json
		FROM events
		WHERE event_type = ?
		ORDER BY timestamp, version, stream_id`, string(eventType))
}

// GetEventsByGameID implements storage.EventStore.
func (s *Store) GetEventsByGameID(ctx context.Context, gameID string, aggregateTypes []event.AggregateType) ([]event.Event, error) {
	if len(aggregateTypes) == 0 {
		return s.GetGameEvents(ctx, gameID)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(aggregateTypes)), ", ")
	args := make([]any, 0, len(aggregateTypes)+1)
	args = append(args, gameID)
	for _, aggregateType := range aggregateTypes {
		args = append(args, string(aggregateType))
	}
	return s.query(ctx, fmt.Sprintf(`
		SELECT stream_id, version, aggregate_type, game_id, event_type, timestamp, payload_json
		FROM events
		WHERE game_id = ? AND aggregate_type IN (%s)
		ORDER BY timestamp, version, stream_id`, placeholders), args...)
}

func (s *Store) query(ctx context.Context, sqlQuery string, args ...any) ([]event.Event, error) {
	rows, err := s.sqlDB.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageLoadFailed, "query events", err)
	}
	defer rows.Close()

	out := make([]event.Event, 0)
	for rows.Next() {
		evt, err := scanEvent(rows, s.registry)
		if err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageLoadFailed, "iterate event rows", err)
	}
	return out, nil
}

func scanEvent(rows *sql.Rows, registry *event.Registry) (event.Event, error) {
	var (
		evt           event.Event
		aggregateType string
		eventType     string
		timestamp     int64
		payloadJSON   []byte
	)
	if err := rows.Scan(&evt.StreamID, &evt.Version, &aggregateType, &evt.GameID, &eventType, &timestamp, &payloadJSON); err != nil {
		return event.Event{}, apperrors.Wrap(apperrors.CodeStorageLoadFailed, "scan event row", err)
	}
	evt.AggregateType = event.AggregateType(aggregateType)
	evt.Type = event.Type(eventType)
	evt.Timestamp = fromMillis(timestamp)

	payload, err := registry.DecodePayload(evt.Type, payloadJSON)
	if err != nil {
		return event.Event{}, err
	}
	evt.Payload = payload
	return evt, nil
}
