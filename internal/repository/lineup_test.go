package repository

import (
	"context"
	"testing"

	"github.com/fieldside/scorebook/internal/domain/event"
	"github.com/fieldside/scorebook/internal/domain/game"
	"github.com/fieldside/scorebook/internal/domain/lineup"
	apperrors "github.com/fieldside/scorebook/internal/platform/errors"
	"github.com/fieldside/scorebook/internal/platform/logging"
	"github.com/fieldside/scorebook/internal/storage/memory"
)

func newLineupFixture(t *testing.T) (*TeamLineupRepository, *GameRepository, *memory.Store) {
	t.Helper()
	store := memory.New(event.DefaultRegistry())
	games := NewGameRepository(store, logging.Nop())
	return NewTeamLineupRepository(store, games, logging.Nop()), games, store
}

func startGame(t *testing.T, games *GameRepository, id string) {
	t.Helper()
	g := game.New(id)
	if err := g.Start("Cardinals", "Blue Sox"); err != nil {
		t.Fatalf("start game: %v", err)
	}
	if err := games.Save(context.Background(), g); err != nil {
		t.Fatalf("save game: %v", err)
	}
}

func TestLineupRepositoryRoundTrip(t *testing.T) {
	repo, games, _ := newLineupFixture(t)
	ctx := context.Background()
	startGame(t, games, "game-1")

	l := lineup.New("lineup-away", "game-1")
	if err := l.Create(event.SideAway, "Blue Sox"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := l.AddPlayer(1, "p-1", "Ada"); err != nil {
		t.Fatalf("add player: %v", err)
	}
	if err := l.AddPlayer(2, "p-2", "Grace"); err != nil {
		t.Fatalf("add player: %v", err)
	}
	if err := repo.Save(ctx, l); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.FindByID(ctx, "lineup-away")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a lineup")
	}
	if got := loaded.OccupiedSlots(); len(got) != 2 {
		t.Fatalf("expected 2 occupied slots, got %v", got)
	}
	player, ok := loaded.Player(1)
	if !ok || player.Name != "Ada" {
		t.Fatalf("expected Ada in slot 1, got %+v", player)
	}
}

func TestLineupRepositoryRejectsUnknownGame(t *testing.T) {
	repo, _, _ := newLineupFixture(t)

	l := lineup.New("lineup-away", "missing-game")
	if err := l.Create(event.SideAway, "Blue Sox"); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := repo.Save(context.Background(), l)
	if apperrors.CodeOf(err) != apperrors.CodeGameNotFound {
		t.Fatalf("expected game-not-found, got %v", err)
	}
}

func TestLineupRepositoryFindByGameAndSide(t *testing.T) {
	repo, games, _ := newLineupFixture(t)
	ctx := context.Background()
	startGame(t, games, "game-1")

	away := lineup.New("lineup-away", "game-1")
	if err := away.Create(event.SideAway, "Blue Sox"); err != nil {
		t.Fatalf("create away: %v", err)
	}
	if err := repo.Save(ctx, away); err != nil {
		t.Fatalf("save away: %v", err)
	}
	home := lineup.New("lineup-home", "game-1")
	if err := home.Create(event.SideHome, "Cardinals"); err != nil {
		t.Fatalf("create home: %v", err)
	}
	if err := repo.Save(ctx, home); err != nil {
		t.Fatalf("save home: %v", err)
	}

	both, err := repo.FindByGame(ctx, "game-1")
	if err != nil {
		t.Fatalf("find by game: %v", err)
	}
	if len(both) != 2 {
		t.Fatalf("expected both lineups, got %d", len(both))
	}

	found, err := repo.FindByGameAndSide(ctx, "game-1", event.SideHome)
	if err != nil {
		t.Fatalf("find by side: %v", err)
	}
	if found == nil || found.State().TeamName != "Cardinals" {
		t.Fatalf("expected home lineup, got %+v", found)
	}

	absent, err := repo.FindByGameAndSide(ctx, "game-2", event.SideHome)
	if err != nil {
		t.Fatalf("find absent side: %v", err)
	}
	if absent != nil {
		t.Fatalf("expected nil for absent game, got %+v", absent)
	}
}

func TestLineupRepositorySkipsUndoneSubstitution(t *testing.T) {
	repo, games, store := newLineupFixture(t)
	ctx := context.Background()
	startGame(t, games, "game-1")

	l := lineup.New("lineup-away", "game-1")
	if err := l.Create(event.SideAway, "Blue Sox"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := l.AddPlayer(1, "p-1", "Ada"); err != nil {
		t.Fatalf("add player: %v", err)
	}
	if err := l.Substitute(1, "p-1", "p-9", "Edith"); err != nil {
		t.Fatalf("substitute: %v", err)
	}
	if err := repo.Save(ctx, l); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := store.Append(ctx, "lineup-away", event.AggregateTeamLineup, "game-1", 3, []event.Payload{
		event.ActionUndone{Ref: event.EventRef{StreamID: "lineup-away", Version: 3, Type: event.TypePlayerSubstituted}},
	}); err != nil {
		t.Fatalf("append undo marker: %v", err)
	}

	loaded, err := repo.FindByID(ctx, "lineup-away")
	if err != nil {
		t.Fatalf("find after undo: %v", err)
	}
	player, ok := loaded.Player(1)
	if !ok || player.ID != "p-1" {
		t.Fatalf("expected substitution to be invisible, got %+v", player)
	}
}
