// Package lineup models the TeamLineup aggregate: one side's batting order
// and substitution history for a game.
package lineup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fieldside/scorebook/internal/domain/aggregate"
	"github.com/fieldside/scorebook/internal/domain/event"
	apperrors "github.com/fieldside/scorebook/internal/platform/errors"
)

// MaxSlots bounds the batting order. Slow-pitch rosters commonly bat more
// than the nine fielding positions.
const MaxSlots = 15

// Player is the occupant of one batting slot.
type Player struct {
	ID   string
	Name string
}

// State captures the observable lineup state derived from the stream.
type State struct {
	ID       string
	GameID   string
	Side     event.TeamSide
	TeamName string
	Slots    map[int]Player
}

// Fold applies a single event to lineup state. Pure and deterministic.
func Fold(s State, evt event.Event) (State, error) {
	switch p := evt.Payload.(type) {
	case event.LineupCreated:
		if s.TeamName != "" {
			return s, apperrors.New(apperrors.CodeLineupAlreadyCreated, "lineup has already been created")
		}
		if !p.Side.IsValid() {
			return s, apperrors.New(apperrors.CodeEventInvalid, fmt.Sprintf("unknown team side %q", p.Side))
		}
		s.ID = evt.StreamID
		s.GameID = evt.GameID
		s.Side = p.Side
		s.TeamName = p.TeamName
		s.Slots = make(map[int]Player)
		return s, nil
	case event.PlayerAddedToLineup:
		if s.TeamName == "" {
			return s, apperrors.New(apperrors.CodeLineupNotCreated, "lineup has not been created")
		}
		if p.Slot < 1 || p.Slot > MaxSlots {
			return s, apperrors.WithMetadata(apperrors.CodeLineupSlotInvalid,
				fmt.Sprintf("batting slot must be between 1 and %d", MaxSlots),
				map[string]string{"slot": fmt.Sprintf("%d", p.Slot)})
		}
		if _, occupied := s.Slots[p.Slot]; occupied {
			return s, apperrors.New(apperrors.CodeLineupSlotOccupied, fmt.Sprintf("batting slot %d is already occupied", p.Slot))
		}
		next := cloneSlots(s.Slots)
		next[p.Slot] = Player{ID: p.PlayerID, Name: p.PlayerName}
		s.Slots = next
		return s, nil
	case event.PlayerSubstituted:
		if s.TeamName == "" {
			return s, apperrors.New(apperrors.CodeLineupNotCreated, "lineup has not been created")
		}
		current, occupied := s.Slots[p.Slot]
		if !occupied {
			return s, apperrors.New(apperrors.CodeLineupSlotVacant, fmt.Sprintf("batting slot %d is vacant", p.Slot))
		}
		if current.ID != p.OutgoingPlayerID {
			return s, apperrors.WithMetadata(apperrors.CodeLineupPlayerMismatch,
				"outgoing player does not occupy the slot",
				map[string]string{"slot": fmt.Sprintf("%d", p.Slot), "occupant": current.ID})
		}
		next := cloneSlots(s.Slots)
		next[p.Slot] = Player{ID: p.IncomingPlayerID, Name: p.IncomingName}
		s.Slots = next
		return s, nil
	default:
		return s, apperrors.WithMetadata(apperrors.CodeEventInvalid, "unexpected event type for lineup aggregate", map[string]string{
			"eventType": string(evt.Type),
		})
	}
}

func cloneSlots(slots map[int]Player) map[int]Player {
	next := make(map[int]Player, len(slots)+1)
	for slot, player := range slots {
		next[slot] = player
	}
	return next
}

// TeamLineup is the aggregate wrapper.
type TeamLineup struct {
	aggregate.Root
	state State
}

// New creates a fresh lineup aggregate for a not-yet-persisted stream.
func New(id, gameID string) *TeamLineup {
	return &TeamLineup{Root: aggregate.NewRoot(event.AggregateTeamLineup, id, gameID)}
}

// Rehydrate rebuilds a lineup from its effective history.
func Rehydrate(id, gameID string, history []event.Event, streamVersion uint64) (*TeamLineup, error) {
	l := &TeamLineup{Root: aggregate.RehydratedRoot(event.AggregateTeamLineup, id, gameID, streamVersion)}
	for _, evt := range history {
		next, err := Fold(l.state, evt)
		if err != nil {
			return nil, err
		}
		l.state = next
	}
	return l, nil
}

// State returns a copy of the observable lineup state.
func (l *TeamLineup) State() State { return l.state }

// Create records the lineup's creation for one side of the game.
func (l *TeamLineup) Create(side event.TeamSide, teamName string) error {
	if strings.TrimSpace(teamName) == "" {
		return apperrors.New(apperrors.CodeGameTeamNameEmpty, "team name is required")
	}
	return l.record(event.LineupCreated{Side: side, TeamName: teamName})
}

// AddPlayer records a player taking a vacant batting slot.
func (l *TeamLineup) AddPlayer(slot int, playerID, playerName string) error {
	if strings.TrimSpace(playerID) == "" {
		return apperrors.New(apperrors.CodeLineupPlayerEmpty, "player id is required")
	}
	return l.record(event.PlayerAddedToLineup{Slot: slot, PlayerID: playerID, PlayerName: playerName})
}

// Substitute records a substitution into an occupied batting slot.
func (l *TeamLineup) Substitute(slot int, outgoingPlayerID, incomingPlayerID, incomingName string) error {
	if strings.TrimSpace(incomingPlayerID) == "" {
		return apperrors.New(apperrors.CodeLineupPlayerEmpty, "incoming player id is required")
	}
	return l.record(event.PlayerSubstituted{
		Slot:             slot,
		OutgoingPlayerID: outgoingPlayerID,
		IncomingPlayerID: incomingPlayerID,
		IncomingName:     incomingName,
	})
}

// Player returns the occupant of a slot.
func (l *TeamLineup) Player(slot int) (Player, bool) {
	player, ok := l.state.Slots[slot]
	return player, ok
}

// OccupiedSlots returns the occupied batting slots in ascending order.
func (l *TeamLineup) OccupiedSlots() []int {
	slots := make([]int, 0, len(l.state.Slots))
	for slot := range l.state.Slots {
		slots = append(slots, slot)
	}
	sort.Ints(slots)
	return slots
}

// NextSlot returns the batting slot due after the given one, wrapping to the
// top of the order. An empty lineup is due at slot 1 by convention so the
// derivation is always total.
func (l *TeamLineup) NextSlot(after int) int {
	slots := l.OccupiedSlots()
	if len(slots) == 0 {
		return 1
	}
	for _, slot := range slots {
		if slot > after {
			return slot
		}
	}
	return slots[0]
}

func (l *TeamLineup) record(payload event.Payload) error {
	next, err := Fold(l.state, event.Event{
		StreamID:      l.ID(),
		AggregateType: event.AggregateTeamLineup,
		GameID:        l.GameID(),
		Type:          payload.EventType(),
		Payload:       payload,
	})
	if err != nil {
		return err
	}
	l.state = next
	l.Track(payload)
	return nil
}
