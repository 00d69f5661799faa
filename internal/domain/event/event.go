package event

import (
	"sort"
	"strings"
	"time"
)

// AggregateType identifies which repository owns a stream.
type AggregateType string

const (
	// AggregateGame owns the game lifecycle and at-bat streams.
	AggregateGame AggregateType = "Game"
	// AggregateTeamLineup owns batting-order and substitution streams.
	AggregateTeamLineup AggregateType = "TeamLineup"
	// AggregateInningState owns inning progression streams.
	AggregateInningState AggregateType = "InningState"
)

// IsValid reports whether the aggregate type is one of the known kinds.
func (a AggregateType) IsValid() bool {
	switch a {
	case AggregateGame, AggregateTeamLineup, AggregateInningState:
		return true
	}
	return false
}

// Type identifies the kind of a scorebook event.
type Type string

// Game stream events.
const (
	// TypeGameStarted records the start of a game.
	TypeGameStarted Type = "game.started"
	// TypeGameCompleted records the completion of a game.
	TypeGameCompleted Type = "game.completed"
	// TypeAtBatCompleted records a finished plate appearance.
	TypeAtBatCompleted Type = "at_bat.completed"
)

// TeamLineup stream events.
const (
	// TypeLineupCreated records the creation of a team lineup.
	TypeLineupCreated Type = "lineup.created"
	// TypePlayerAddedToLineup records a player taking a batting slot.
	TypePlayerAddedToLineup Type = "lineup.player_added"
	// TypePlayerSubstituted records a substitution into an occupied slot.
	TypePlayerSubstituted Type = "lineup.player_substituted"
)

// InningState stream events.
const (
	// TypeInningStateCreated records the creation of inning tracking for a game.
	TypeInningStateCreated Type = "inning.state_created"
	// TypeHalfInningEnded records the end of the current half-inning.
	TypeHalfInningEnded Type = "inning.half_ended"
)

// Marker events. Markers may appear on any stream and never fold into
// aggregate state; they alter which earlier events replay sees.
const (
	// TypeActionUndone marks an earlier event as logically reversed.
	TypeActionUndone Type = "action.undone"
	// TypeActionRedone re-admits a previously undone event into replay.
	TypeActionRedone Type = "action.redone"
)

// IsValid reports whether the event type is usable.
func (t Type) IsValid() bool {
	return strings.TrimSpace(string(t)) != ""
}

// Domain returns the domain prefix of the event type (e.g., "game", "lineup").
func (t Type) Domain() string {
	for i, c := range t {
		if c == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}

// TeamSide identifies which team a fact belongs to. The away side bats in the
// top half of an inning, the home side in the bottom half.
type TeamSide string

const (
	// SideHome is the home team.
	SideHome TeamSide = "home"
	// SideAway is the away team.
	SideAway TeamSide = "away"
)

// IsValid reports whether the side is home or away.
func (s TeamSide) IsValid() bool {
	return s == SideHome || s == SideAway
}

// Event represents an immutable record in a stream.
type Event struct {
	// StreamID identifies the owning stream.
	StreamID string
	// AggregateType tags which repository owns the stream.
	AggregateType AggregateType
	// GameID groups streams logically owned by one game.
	GameID string
	// Type identifies the payload shape.
	Type Type
	// Version is the 1-based sequence number within the stream.
	// Assigned by storage on append.
	Version uint64
	// Timestamp is when the event was recorded (UTC, millisecond precision).
	// Assigned by storage on append; used for cross-stream ordering.
	Timestamp time.Time
	// Payload holds the event-specific data.
	Payload Payload
}

// Ref returns the reference used by undo/redo markers to address this event.
func (e Event) Ref() EventRef {
	return EventRef{StreamID: e.StreamID, Version: e.Version, Type: e.Type}
}

// Less orders events by timestamp ascending, breaking ties by stream version
// and finally by stream id so the order is total and deterministic.
func Less(a, b Event) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	if a.Version != b.Version {
		return a.Version < b.Version
	}
	return a.StreamID < b.StreamID
}

// SortAscending sorts events oldest-first using Less.
func SortAscending(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return Less(events[i], events[j])
	})
}
