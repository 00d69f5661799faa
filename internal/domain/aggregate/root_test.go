package aggregate

import (
	"testing"

	"github.com/fieldside/scorebook/internal/domain/event"
)

func TestTrackAndMarkSaved(t *testing.T) {
	root := NewRoot(event.AggregateGame, "game-1", "game-1")
	if root.HasUncommitted() || root.Version() != 0 {
		t.Fatalf("expected fresh root, got version %d", root.Version())
	}

	root.Track(event.GameStarted{HomeTeam: "Cardinals", AwayTeam: "Blue Sox"})
	root.Track(event.AtBatCompleted{Side: event.SideAway, BattingSlot: 1, PlayerID: "p-1", Result: event.ResultSingle})
	if got := len(root.Uncommitted()); got != 2 {
		t.Fatalf("expected 2 pending events, got %d", got)
	}

	root.MarkSaved(2)
	if root.HasUncommitted() {
		t.Fatal("expected MarkSaved to clear pending events")
	}
	if root.Version() != 2 {
		t.Fatalf("expected version 2 after save, got %d", root.Version())
	}
}

func TestUncommittedReturnsCopy(t *testing.T) {
	root := RehydratedRoot(event.AggregateTeamLineup, "lineup-1", "game-1", 3)
	root.Track(event.LineupCreated{Side: event.SideAway, TeamName: "Blue Sox"})

	pending := root.Uncommitted()
	pending[0] = event.HalfInningEnded{}
	if _, ok := root.Uncommitted()[0].(event.LineupCreated); !ok {
		t.Fatal("expected mutation of the returned slice not to affect the root")
	}
}
