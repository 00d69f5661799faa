// Package inning models the InningState aggregate: inning number and which
// half is being played. The top-half flag is a pointer so an undetermined
// value is distinguishable from either half; the read-model builder fails
// fast on nil rather than defaulting it.
package inning

import (
	"github.com/fieldside/scorebook/internal/domain/aggregate"
	"github.com/fieldside/scorebook/internal/domain/event"
	apperrors "github.com/fieldside/scorebook/internal/platform/errors"
)

// State captures the observable inning state derived from the stream.
type State struct {
	ID      string
	GameID  string
	Inning  int
	TopHalf *bool
}

// Fold applies a single event to inning state. Pure and deterministic.
func Fold(s State, evt event.Event) (State, error) {
	switch evt.Payload.(type) {
	case event.InningStateCreated:
		if s.Inning != 0 {
			return s, apperrors.New(apperrors.CodeInningAlreadyCreated, "inning tracking already exists for this game")
		}
		top := true
		s.ID = evt.StreamID
		s.GameID = evt.GameID
		s.Inning = 1
		s.TopHalf = &top
		return s, nil
	case event.HalfInningEnded:
		if s.Inning == 0 || s.TopHalf == nil {
			return s, apperrors.New(apperrors.CodeInningNotCreated, "inning tracking has not been created")
		}
		if *s.TopHalf {
			bottom := false
			s.TopHalf = &bottom
		} else {
			top := true
			s.TopHalf = &top
			s.Inning++
		}
		return s, nil
	default:
		return s, apperrors.WithMetadata(apperrors.CodeEventInvalid, "unexpected event type for inning aggregate", map[string]string{
			"eventType": string(evt.Type),
		})
	}
}

// InningState is the aggregate wrapper.
type InningState struct {
	aggregate.Root
	state State
}

// New creates a fresh inning aggregate for a not-yet-persisted stream.
func New(id, gameID string) *InningState {
	return &InningState{Root: aggregate.NewRoot(event.AggregateInningState, id, gameID)}
}

// Rehydrate rebuilds inning state from its effective history.
func Rehydrate(id, gameID string, history []event.Event, streamVersion uint64) (*InningState, error) {
	i := &InningState{Root: aggregate.RehydratedRoot(event.AggregateInningState, id, gameID, streamVersion)}
	for _, evt := range history {
		next, err := Fold(i.state, evt)
		if err != nil {
			return nil, err
		}
		i.state = next
	}
	return i, nil
}

// State returns a copy of the observable inning state.
func (i *InningState) State() State { return i.state }

// Create records the start of inning tracking: top of the first inning.
func (i *InningState) Create() error {
	return i.record(event.InningStateCreated{})
}

// EndHalf records the end of the current half-inning.
func (i *InningState) EndHalf() error {
	return i.record(event.HalfInningEnded{})
}

// BattingSide returns which side is batting. The away team bats in the top
// half. ok is false when the half is undetermined.
func (i *InningState) BattingSide() (side event.TeamSide, ok bool) {
	if i.state.TopHalf == nil {
		return "", false
	}
	if *i.state.TopHalf {
		return event.SideAway, true
	}
	return event.SideHome, true
}

func (i *InningState) record(payload event.Payload) error {
	next, err := Fold(i.state, event.Event{
		StreamID:      i.ID(),
		AggregateType: event.AggregateInningState,
		GameID:        i.GameID(),
		Type:          payload.EventType(),
		Payload:       payload,
	})
	if err != nil {
		return err
	}
	i.state = next
	i.Track(payload)
	return nil
}
