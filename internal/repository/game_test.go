package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/fieldside/scorebook/internal/domain/event"
	"github.com/fieldside/scorebook/internal/domain/game"
	"github.com/fieldside/scorebook/internal/platform/logging"
	"github.com/fieldside/scorebook/internal/storage"
	"github.com/fieldside/scorebook/internal/storage/memory"
)

func newGameRepository() (*GameRepository, *memory.Store) {
	store := memory.New(event.DefaultRegistry())
	return NewGameRepository(store, logging.Nop()), store
}

func TestGameRepositoryRoundTrip(t *testing.T) {
	repo, _ := newGameRepository()
	ctx := context.Background()

	g := game.New("game-1")
	if err := g.Start("Cardinals", "Blue Sox"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := g.RecordAtBat(event.SideAway, 1, "p-1", event.ResultSingle, 0, 0); err != nil {
		t.Fatalf("record at-bat: %v", err)
	}
	if err := repo.Save(ctx, g); err != nil {
		t.Fatalf("save: %v", err)
	}
	if g.HasUncommitted() {
		t.Fatal("expected save to clear uncommitted events")
	}
	if g.Version() != 2 {
		t.Fatalf("expected version 2 after save, got %d", g.Version())
	}

	loaded, err := repo.FindByID(ctx, "game-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a game")
	}
	state := loaded.State()
	if state.Status != game.StatusInProgress || state.HomeTeam != "Cardinals" || state.AwayLastSlot != 1 {
		t.Fatalf("unexpected state after reload: %+v", state)
	}
	if loaded.Version() != 2 {
		t.Fatalf("expected loaded version 2, got %d", loaded.Version())
	}
}

func TestGameRepositoryFindAbsentReturnsNil(t *testing.T) {
	repo, _ := newGameRepository()

	g, err := repo.FindByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("find absent: %v", err)
	}
	if g != nil {
		t.Fatalf("expected nil for absent game, got %+v", g)
	}
}

func TestGameRepositorySaveNothingPendingIsNoOp(t *testing.T) {
	repo, _ := newGameRepository()

	g := game.New("game-1")
	if err := repo.Save(context.Background(), g); err != nil {
		t.Fatalf("save without pending events: %v", err)
	}
	exists, err := repo.Exists(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("expected no stream after empty save")
	}
}

func TestGameRepositoryConcurrentSaveConflicts(t *testing.T) {
	repo, _ := newGameRepository()
	ctx := context.Background()

	g := game.New("game-1")
	if err := g.Start("Cardinals", "Blue Sox"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := repo.Save(ctx, g); err != nil {
		t.Fatalf("initial save: %v", err)
	}

	first, err := repo.FindByID(ctx, "game-1")
	if err != nil {
		t.Fatalf("load first copy: %v", err)
	}
	second, err := repo.FindByID(ctx, "game-1")
	if err != nil {
		t.Fatalf("load second copy: %v", err)
	}

	if err := first.RecordAtBat(event.SideAway, 1, "p-1", event.ResultSingle, 0, 0); err != nil {
		t.Fatalf("record on first copy: %v", err)
	}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save first copy: %v", err)
	}

	if err := second.RecordAtBat(event.SideAway, 1, "p-1", event.ResultWalk, 0, 0); err != nil {
		t.Fatalf("record on second copy: %v", err)
	}
	err = repo.Save(ctx, second)
	if !errors.Is(err, storage.ErrVersionConflict) {
		t.Fatalf("expected version conflict for stale save, got %v", err)
	}

	// Reload and retry succeeds at the advanced version.
	retry, err := repo.FindByID(ctx, "game-1")
	if err != nil {
		t.Fatalf("reload after conflict: %v", err)
	}
	if err := retry.RecordAtBat(event.SideAway, 2, "p-2", event.ResultWalk, 0, 0); err != nil {
		t.Fatalf("record after reload: %v", err)
	}
	if err := repo.Save(ctx, retry); err != nil {
		t.Fatalf("retry save: %v", err)
	}
}

func TestGameRepositorySkipsUndoneEventsOnLoad(t *testing.T) {
	repo, store := newGameRepository()
	ctx := context.Background()

	g := game.New("game-1")
	if err := g.Start("Cardinals", "Blue Sox"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := g.RecordAtBat(event.SideHome, 1, "p-1", event.ResultHomeRun, 1, 0); err != nil {
		t.Fatalf("record at-bat: %v", err)
	}
	if err := repo.Save(ctx, g); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Undo the home run with a marker appended to the same stream.
	if _, err := store.Append(ctx, "game-1", event.AggregateGame, "game-1", 2, []event.Payload{
		event.ActionUndone{Ref: event.EventRef{StreamID: "game-1", Version: 2, Type: event.TypeAtBatCompleted}},
	}); err != nil {
		t.Fatalf("append undo marker: %v", err)
	}

	loaded, err := repo.FindByID(ctx, "game-1")
	if err != nil {
		t.Fatalf("find after undo: %v", err)
	}
	state := loaded.State()
	if state.HomeScore != 0 || state.HomeLastSlot != 0 {
		t.Fatalf("expected undone at-bat to be invisible, got %+v", state)
	}
	if loaded.Version() != 3 {
		t.Fatalf("expected raw version 3 including the marker, got %d", loaded.Version())
	}
}
