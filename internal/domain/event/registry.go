package event

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/fieldside/scorebook/internal/platform/errors"
)

// Definition describes one registered event type.
type Definition struct {
	// Type is the registered event type.
	Type Type
	// Owner restricts the type to streams of one aggregate kind.
	// Empty means the type may appear on any stream (markers).
	Owner AggregateType
	// Marker reports whether the event alters replay visibility instead of
	// folding into aggregate state.
	Marker bool
	// New returns an empty payload for decoding.
	New func() Payload
}

// Registry owns the closed set of event types the store will accept, and the
// codec that round-trips payloads through their persisted JSON form.
type Registry struct {
	defs map[Type]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[Type]Definition)}
}

// Register adds a definition. Re-registering a type is an error.
func (r *Registry) Register(def Definition) error {
	if !def.Type.IsValid() {
		return apperrors.New(apperrors.CodeEventInvalid, "event type is required")
	}
	if def.New == nil {
		return apperrors.New(apperrors.CodeEventInvalid, fmt.Sprintf("event type %s requires a payload constructor", def.Type))
	}
	if _, exists := r.defs[def.Type]; exists {
		return apperrors.New(apperrors.CodeEventInvalid, fmt.Sprintf("event type %s is already registered", def.Type))
	}
	r.defs[def.Type] = def
	return nil
}

// Definition returns the definition for a type.
func (r *Registry) Definition(t Type) (Definition, bool) {
	def, ok := r.defs[t]
	return def, ok
}

// IsMarker reports whether the type is a registered marker event.
func (r *Registry) IsMarker(t Type) bool {
	def, ok := r.defs[t]
	return ok && def.Marker
}

// ValidateForAppend checks an event's envelope and payload before the store
// assigns a version. The returned error carries a user-opaque code; messages
// name the offending field.
func (r *Registry) ValidateForAppend(streamID string, aggregateType AggregateType, gameID string, payload Payload) error {
	if strings.TrimSpace(streamID) == "" {
		return apperrors.New(apperrors.CodeEventInvalid, "stream id is required")
	}
	if !aggregateType.IsValid() {
		return apperrors.WithMetadata(apperrors.CodeEventInvalid, "aggregate type is invalid", map[string]string{
			"aggregateType": string(aggregateType),
		})
	}
	if strings.TrimSpace(gameID) == "" {
		return apperrors.New(apperrors.CodeEventInvalid, "game id is required")
	}
	if payload == nil {
		return apperrors.New(apperrors.CodeEventInvalid, "event payload is required")
	}
	def, ok := r.defs[payload.EventType()]
	if !ok {
		return apperrors.WithMetadata(apperrors.CodeEventTypeUnknown, "event type is not registered", map[string]string{
			"eventType": string(payload.EventType()),
		})
	}
	if def.Owner != "" && def.Owner != aggregateType {
		return apperrors.WithMetadata(apperrors.CodeEventInvalid, "event type does not belong to aggregate", map[string]string{
			"eventType":     string(payload.EventType()),
			"aggregateType": string(aggregateType),
		})
	}
	return nil
}

// EncodePayload serializes a payload to its persisted JSON form.
func (r *Registry) EncodePayload(payload Payload) ([]byte, error) {
	if payload == nil {
		return nil, apperrors.New(apperrors.CodeEventInvalid, "event payload is required")
	}
	if _, ok := r.defs[payload.EventType()]; !ok {
		return nil, apperrors.WithMetadata(apperrors.CodeEventTypeUnknown, "event type is not registered", map[string]string{
			"eventType": string(payload.EventType()),
		})
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeEventInvalid, "marshal event payload", err)
	}
	return data, nil
}

// DecodePayload deserializes a persisted payload. Unknown types fail loudly
// rather than degrading into an untyped record.
func (r *Registry) DecodePayload(t Type, data []byte) (Payload, error) {
	def, ok := r.defs[t]
	if !ok {
		return nil, apperrors.WithMetadata(apperrors.CodeEventTypeUnknown, "event type is not registered", map[string]string{
			"eventType": string(t),
		})
	}
	payload := def.New()
	if len(data) > 0 {
		if err := json.Unmarshal(data, payload); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeEventInvalid, fmt.Sprintf("unmarshal %s payload", t), err)
		}
	}
	return deref(payload), nil
}

// deref converts the pointer produced for json.Unmarshal back into the value
// form the rest of the core dispatches on.
func deref(p Payload) Payload {
	switch v := p.(type) {
	case *GameStarted:
		return *v
	case *GameCompleted:
		return *v
	case *AtBatCompleted:
		return *v
	case *LineupCreated:
		return *v
	case *PlayerAddedToLineup:
		return *v
	case *PlayerSubstituted:
		return *v
	case *InningStateCreated:
		return *v
	case *HalfInningEnded:
		return *v
	case *ActionUndone:
		return *v
	case *ActionRedone:
		return *v
	default:
		return p
	}
}

// DefaultRegistry returns a registry with every built-in event type.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	builtin := []Definition{
		{Type: TypeGameStarted, Owner: AggregateGame, New: func() Payload { return &GameStarted{} }},
		{Type: TypeGameCompleted, Owner: AggregateGame, New: func() Payload { return &GameCompleted{} }},
		{Type: TypeAtBatCompleted, Owner: AggregateGame, New: func() Payload { return &AtBatCompleted{} }},
		{Type: TypeLineupCreated, Owner: AggregateTeamLineup, New: func() Payload { return &LineupCreated{} }},
		{Type: TypePlayerAddedToLineup, Owner: AggregateTeamLineup, New: func() Payload { return &PlayerAddedToLineup{} }},
		{Type: TypePlayerSubstituted, Owner: AggregateTeamLineup, New: func() Payload { return &PlayerSubstituted{} }},
		{Type: TypeInningStateCreated, Owner: AggregateInningState, New: func() Payload { return &InningStateCreated{} }},
		{Type: TypeHalfInningEnded, Owner: AggregateInningState, New: func() Payload { return &HalfInningEnded{} }},
		{Type: TypeActionUndone, Marker: true, New: func() Payload { return &ActionUndone{} }},
		{Type: TypeActionRedone, Marker: true, New: func() Payload { return &ActionRedone{} }},
	}
	for _, def := range builtin {
		if err := r.Register(def); err != nil {
			// Built-in definitions are static; a failure here is a programming error.
			panic(err)
		}
	}
	return r
}
