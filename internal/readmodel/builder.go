// Package readmodel assembles the composite game-state snapshot spanning the
// game, inning, and lineup aggregates. The batter derivation lives here once
// so every caller agrees on whose turn it is.
package readmodel

import (
	"context"

	"github.com/fieldside/scorebook/internal/domain/event"
	"github.com/fieldside/scorebook/internal/domain/game"
	"github.com/fieldside/scorebook/internal/domain/inning"
	"github.com/fieldside/scorebook/internal/domain/lineup"
	apperrors "github.com/fieldside/scorebook/internal/platform/errors"
)

// InningLoader is the read-only inning access the builder needs.
type InningLoader interface {
	FindByGame(ctx context.Context, gameID string) (*inning.InningState, error)
}

// LineupLoader is the read-only lineup access the builder needs.
type LineupLoader interface {
	FindByGame(ctx context.Context, gameID string) ([]*lineup.TeamLineup, error)
}

// SlotEntry is one occupied batting slot in a lineup snapshot.
type SlotEntry struct {
	Slot   int
	Player lineup.Player
}

// TeamSnapshot is one side's view within the composite snapshot.
type TeamSnapshot struct {
	Name   string
	Score  int
	Lineup []SlotEntry
}

// GameStateSnapshot is the derived, read-only aggregation of one game, its
// inning state, and both lineups. It is built on demand and never persisted.
type GameStateSnapshot struct {
	GameID             string
	Status             game.Status
	Home               TeamSnapshot
	Away               TeamSnapshot
	Inning             int
	TopHalf            bool
	BattingSide        event.TeamSide
	CurrentBattingSlot int
	// CurrentBatter is nil when the derived slot is vacant; that is a valid
	// transitional state, not an error.
	CurrentBatter *lineup.Player
}

type buildConfig struct {
	inningState  *inning.InningState
	slotOverride *int
}

// BuildOption customizes a single Build call.
type BuildOption func(*buildConfig)

// WithInningState supplies a pre-loaded inning aggregate, skipping the
// repository load. Callers that just mutated inning state use this to build
// against their in-memory copy.
func WithInningState(i *inning.InningState) BuildOption {
	return func(c *buildConfig) { c.inningState = i }
}

// WithBattingSlotOverride pins the current batting slot instead of deriving
// it, so a snapshot can show the batter who just completed an at-bat before
// the order advances.
func WithBattingSlotOverride(slot int) BuildOption {
	return func(c *buildConfig) { c.slotOverride = &slot }
}

// Builder composes game-state snapshots.
type Builder struct {
	innings InningLoader
	lineups LineupLoader
}

// NewBuilder creates a builder over the given loaders.
func NewBuilder(innings InningLoader, lineups LineupLoader) *Builder {
	return &Builder{innings: innings, lineups: lineups}
}

// Build assembles the snapshot for a loaded game. The inning's top-half flag
// must be determined; an unset flag means an upstream aggregate defect and
// Build refuses to default it.
func (b *Builder) Build(ctx context.Context, g *game.Game, opts ...BuildOption) (*GameStateSnapshot, error) {
	if g == nil {
		return nil, apperrors.New(apperrors.CodeGameNotFound, "game is required to build a snapshot")
	}
	var cfg buildConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	gameID := g.GameID()
	inningState := cfg.inningState
	if inningState == nil {
		loaded, err := b.innings.FindByGame(ctx, gameID)
		if err != nil {
			return nil, err
		}
		inningState = loaded
	}
	if inningState == nil || inningState.State().TopHalf == nil {
		return nil, apperrors.WithMetadata(apperrors.CodeSnapshotInconsistent,
			"inning state has no determined half", map[string]string{"gameId": gameID})
	}

	lineups, err := b.lineups.FindByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	var home, away *lineup.TeamLineup
	for _, l := range lineups {
		switch l.State().Side {
		case event.SideHome:
			home = l
		case event.SideAway:
			away = l
		}
	}

	gs := g.State()
	is := inningState.State()
	topHalf := *is.TopHalf

	battingSide := event.SideHome
	battingLineup := home
	lastSlot := gs.HomeLastSlot
	if topHalf {
		battingSide = event.SideAway
		battingLineup = away
		lastSlot = gs.AwayLastSlot
	}

	slot := 1
	if cfg.slotOverride != nil {
		slot = *cfg.slotOverride
	} else if battingLineup != nil {
		slot = battingLineup.NextSlot(lastSlot)
	}

	var batter *lineup.Player
	if battingLineup != nil {
		if player, ok := battingLineup.Player(slot); ok {
			batter = &player
		}
	}

	return &GameStateSnapshot{
		GameID:             gameID,
		Status:             gs.Status,
		Home:               teamSnapshot(gs.HomeTeam, gs.HomeScore, home),
		Away:               teamSnapshot(gs.AwayTeam, gs.AwayScore, away),
		Inning:             is.Inning,
		TopHalf:            topHalf,
		BattingSide:        battingSide,
		CurrentBattingSlot: slot,
		CurrentBatter:      batter,
	}, nil
}

func teamSnapshot(name string, score int, l *lineup.TeamLineup) TeamSnapshot {
	snap := TeamSnapshot{Name: name, Score: score}
	if l == nil {
		return snap
	}
	if teamName := l.State().TeamName; teamName != "" {
		snap.Name = teamName
	}
	for _, slot := range l.OccupiedSlots() {
		player, _ := l.Player(slot)
		snap.Lineup = append(snap.Lineup, SlotEntry{Slot: slot, Player: player})
	}
	return snap
}
