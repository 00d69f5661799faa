package event

// Payload is the closed set of event-specific data shapes. Every event kind
// has exactly one payload struct; replay logic dispatches on the concrete
// type instead of matching strings at runtime.
type Payload interface {
	EventType() Type
}

// AtBatResult classifies how a plate appearance ended.
type AtBatResult string

const (
	ResultSingle  AtBatResult = "single"
	ResultDouble  AtBatResult = "double"
	ResultTriple  AtBatResult = "triple"
	ResultHomeRun AtBatResult = "home_run"
	ResultWalk    AtBatResult = "walk"
	ResultOut     AtBatResult = "out"
)

// GameStarted records the start of a game between two named teams.
type GameStarted struct {
	HomeTeam string `json:"homeTeam"`
	AwayTeam string `json:"awayTeam"`
}

func (GameStarted) EventType() Type { return TypeGameStarted }

// GameCompleted records the final score of a finished game.
type GameCompleted struct {
	HomeScore int `json:"homeScore"`
	AwayScore int `json:"awayScore"`
}

func (GameCompleted) EventType() Type { return TypeGameCompleted }

// AtBatCompleted records a finished plate appearance for one batting slot.
type AtBatCompleted struct {
	Side        TeamSide    `json:"side"`
	BattingSlot int         `json:"battingSlot"`
	PlayerID    string      `json:"playerId"`
	Result      AtBatResult `json:"result"`
	RunsScored  int         `json:"runsScored"`
	Outs        int         `json:"outs"`
}

func (AtBatCompleted) EventType() Type { return TypeAtBatCompleted }

// LineupCreated records the creation of a team lineup for one side of a game.
type LineupCreated struct {
	Side     TeamSide `json:"side"`
	TeamName string   `json:"teamName"`
}

func (LineupCreated) EventType() Type { return TypeLineupCreated }

// PlayerAddedToLineup records a player taking a vacant batting slot.
type PlayerAddedToLineup struct {
	Slot       int    `json:"slot"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

func (PlayerAddedToLineup) EventType() Type { return TypePlayerAddedToLineup }

// PlayerSubstituted records a substitution into an occupied batting slot.
type PlayerSubstituted struct {
	Slot             int    `json:"slot"`
	OutgoingPlayerID string `json:"outgoingPlayerId"`
	IncomingPlayerID string `json:"incomingPlayerId"`
	IncomingName     string `json:"incomingName"`
}

func (PlayerSubstituted) EventType() Type { return TypePlayerSubstituted }

// InningStateCreated records the creation of inning tracking for a game.
// The game begins in the top of the first inning with no outs.
type InningStateCreated struct{}

func (InningStateCreated) EventType() Type { return TypeInningStateCreated }

// HalfInningEnded records the end of the current half-inning. Ending the
// bottom half advances the inning number.
type HalfInningEnded struct{}

func (HalfInningEnded) EventType() Type { return TypeHalfInningEnded }

// EventRef addresses one event in one stream. Markers carry refs so reversal
// survives replay without mutating the referenced record.
type EventRef struct {
	StreamID string `json:"streamId"`
	Version  uint64 `json:"version"`
	Type     Type   `json:"type"`
}

// ActionUndone marks the referenced event as logically reversed.
type ActionUndone struct {
	Ref EventRef `json:"ref"`
}

func (ActionUndone) EventType() Type { return TypeActionUndone }

// ActionRedone re-admits the referenced (previously undone) event into replay.
type ActionRedone struct {
	Ref EventRef `json:"ref"`
}

func (ActionRedone) EventType() Type { return TypeActionRedone }
