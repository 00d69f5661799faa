// Package game models the Game aggregate: lifecycle, score, and the last
// batting slot seen per side. State is fully determined by folding the game
// stream's events in version order.
package game

import (
	"fmt"
	"strings"

	"github.com/fieldside/scorebook/internal/domain/aggregate"
	"github.com/fieldside/scorebook/internal/domain/event"
	apperrors "github.com/fieldside/scorebook/internal/platform/errors"
)

// Status describes the game lifecycle.
type Status string

const (
	// StatusInProgress means the game has started and accepts at-bats.
	StatusInProgress Status = "in_progress"
	// StatusCompleted means the game has ended; no further scoring facts apply.
	StatusCompleted Status = "completed"
)

// State captures the observable game state derived from the stream.
type State struct {
	ID           string
	Status       Status
	HomeTeam     string
	AwayTeam     string
	HomeScore    int
	AwayScore    int
	HomeLastSlot int // last batting slot that completed an at-bat, 0 if none
	AwayLastSlot int
}

// Fold applies a single event to game state. It is pure and deterministic:
// the same ordered events always produce the same state.
func Fold(s State, evt event.Event) (State, error) {
	switch p := evt.Payload.(type) {
	case event.GameStarted:
		if s.Status != "" {
			return s, apperrors.New(apperrors.CodeGameAlreadyStarted, "game has already started")
		}
		s.ID = evt.StreamID
		s.Status = StatusInProgress
		s.HomeTeam = p.HomeTeam
		s.AwayTeam = p.AwayTeam
		return s, nil
	case event.AtBatCompleted:
		if s.Status == "" {
			return s, apperrors.New(apperrors.CodeGameNotStarted, "game has not started")
		}
		if s.Status == StatusCompleted {
			return s, apperrors.New(apperrors.CodeGameAlreadyCompleted, "game is already completed")
		}
		switch p.Side {
		case event.SideHome:
			s.HomeScore += p.RunsScored
			s.HomeLastSlot = p.BattingSlot
		case event.SideAway:
			s.AwayScore += p.RunsScored
			s.AwayLastSlot = p.BattingSlot
		default:
			return s, apperrors.New(apperrors.CodeEventInvalid, fmt.Sprintf("unknown team side %q", p.Side))
		}
		return s, nil
	case event.GameCompleted:
		if s.Status == "" {
			return s, apperrors.New(apperrors.CodeGameNotStarted, "game has not started")
		}
		if s.Status == StatusCompleted {
			return s, apperrors.New(apperrors.CodeGameAlreadyCompleted, "game is already completed")
		}
		s.Status = StatusCompleted
		return s, nil
	default:
		return s, apperrors.WithMetadata(apperrors.CodeEventInvalid, "unexpected event type for game aggregate", map[string]string{
			"eventType": string(evt.Type),
		})
	}
}

// Game is the aggregate wrapper: folded state plus uncommitted-event tracking.
type Game struct {
	aggregate.Root
	state State
}

// New creates a fresh game aggregate for a not-yet-persisted stream.
// The game's stream id doubles as the game id.
func New(id string) *Game {
	return &Game{Root: aggregate.NewRoot(event.AggregateGame, id, id)}
}

// Rehydrate rebuilds a game from its effective history. streamVersion is the
// raw stream length (markers and undone events included).
func Rehydrate(id string, history []event.Event, streamVersion uint64) (*Game, error) {
	g := &Game{Root: aggregate.RehydratedRoot(event.AggregateGame, id, id, streamVersion)}
	for _, evt := range history {
		next, err := Fold(g.state, evt)
		if err != nil {
			return nil, err
		}
		g.state = next
	}
	return g, nil
}

// State returns a copy of the observable game state.
func (g *Game) State() State { return g.state }

// Start records the beginning of a game between two named teams.
func (g *Game) Start(homeTeam, awayTeam string) error {
	if strings.TrimSpace(homeTeam) == "" || strings.TrimSpace(awayTeam) == "" {
		return apperrors.New(apperrors.CodeGameTeamNameEmpty, "both team names are required")
	}
	return g.record(event.GameStarted{HomeTeam: homeTeam, AwayTeam: awayTeam})
}

// RecordAtBat records a finished plate appearance.
func (g *Game) RecordAtBat(side event.TeamSide, slot int, playerID string, result event.AtBatResult, runsScored, outs int) error {
	if !side.IsValid() {
		return apperrors.New(apperrors.CodeEventInvalid, fmt.Sprintf("unknown team side %q", side))
	}
	if slot < 1 {
		return apperrors.New(apperrors.CodeLineupSlotInvalid, "batting slot must be 1 or greater")
	}
	if runsScored < 0 || outs < 0 {
		return apperrors.New(apperrors.CodeEventInvalid, "runs and outs cannot be negative")
	}
	return g.record(event.AtBatCompleted{
		Side:        side,
		BattingSlot: slot,
		PlayerID:    playerID,
		Result:      result,
		RunsScored:  runsScored,
		Outs:        outs,
	})
}

// Complete records the end of the game at the current score.
func (g *Game) Complete() error {
	return g.record(event.GameCompleted{HomeScore: g.state.HomeScore, AwayScore: g.state.AwayScore})
}

// record folds the payload into state before tracking it, so an invalid
// command never leaves a pending event behind.
func (g *Game) record(payload event.Payload) error {
	next, err := Fold(g.state, event.Event{
		StreamID:      g.ID(),
		AggregateType: event.AggregateGame,
		GameID:        g.GameID(),
		Type:          payload.EventType(),
		Payload:       payload,
	})
	if err != nil {
		return err
	}
	g.state = next
	g.Track(payload)
	return nil
}
