package inning

import (
	"errors"
	"testing"

	"github.com/fieldside/scorebook/internal/domain/event"
	apperrors "github.com/fieldside/scorebook/internal/platform/errors"
)

func TestCreateStartsTopOfFirst(t *testing.T) {
	i := New("inning-1", "game-1")
	if err := i.Create(); err != nil {
		t.Fatalf("create: %v", err)
	}

	state := i.State()
	if state.Inning != 1 {
		t.Fatalf("expected inning 1, got %d", state.Inning)
	}
	if state.TopHalf == nil || !*state.TopHalf {
		t.Fatal("expected top half after creation")
	}
	side, ok := i.BattingSide()
	if !ok || side != event.SideAway {
		t.Fatalf("expected away side batting in the top half, got %s ok=%v", side, ok)
	}
}

func TestEndHalfProgression(t *testing.T) {
	i := New("inning-1", "game-1")
	if err := i.Create(); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := i.EndHalf(); err != nil {
		t.Fatalf("end top half: %v", err)
	}
	state := i.State()
	if state.Inning != 1 || state.TopHalf == nil || *state.TopHalf {
		t.Fatalf("expected bottom of inning 1, got %+v", state)
	}
	side, _ := i.BattingSide()
	if side != event.SideHome {
		t.Fatalf("expected home side batting in the bottom half, got %s", side)
	}

	if err := i.EndHalf(); err != nil {
		t.Fatalf("end bottom half: %v", err)
	}
	state = i.State()
	if state.Inning != 2 || state.TopHalf == nil || !*state.TopHalf {
		t.Fatalf("expected top of inning 2, got %+v", state)
	}
}

func TestEndHalfRequiresCreation(t *testing.T) {
	i := New("inning-1", "game-1")
	if err := i.EndHalf(); !errors.Is(err, apperrors.New(apperrors.CodeInningNotCreated, "")) {
		t.Fatalf("expected not-created error, got %v", err)
	}
}

func TestBattingSideUndeterminedBeforeCreation(t *testing.T) {
	i := New("inning-1", "game-1")
	if _, ok := i.BattingSide(); ok {
		t.Fatal("expected batting side to be undetermined before creation")
	}
}
