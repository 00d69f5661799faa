package lineup

import (
	"errors"
	"testing"

	"github.com/fieldside/scorebook/internal/domain/event"
	apperrors "github.com/fieldside/scorebook/internal/platform/errors"
)

func newTestLineup(t *testing.T) *TeamLineup {
	t.Helper()
	l := New("lineup-away", "game-1")
	if err := l.Create(event.SideAway, "Blue Sox"); err != nil {
		t.Fatalf("create lineup: %v", err)
	}
	return l
}

func TestAddPlayerAndSlotRules(t *testing.T) {
	l := newTestLineup(t)

	if err := l.AddPlayer(1, "p-1", "Rivera"); err != nil {
		t.Fatalf("add player: %v", err)
	}
	if err := l.AddPlayer(1, "p-2", "Okafor"); !errors.Is(err, apperrors.New(apperrors.CodeLineupSlotOccupied, "")) {
		t.Fatalf("expected occupied-slot error, got %v", err)
	}
	if err := l.AddPlayer(0, "p-2", "Okafor"); !errors.Is(err, apperrors.New(apperrors.CodeLineupSlotInvalid, "")) {
		t.Fatalf("expected invalid-slot error, got %v", err)
	}
	if err := l.AddPlayer(MaxSlots+1, "p-2", "Okafor"); !errors.Is(err, apperrors.New(apperrors.CodeLineupSlotInvalid, "")) {
		t.Fatalf("expected invalid-slot error above max, got %v", err)
	}
	player, ok := l.Player(1)
	if !ok || player.ID != "p-1" {
		t.Fatalf("expected slot 1 occupied by p-1, got %+v ok=%v", player, ok)
	}
}

func TestSubstituteRequiresMatchingOccupant(t *testing.T) {
	l := newTestLineup(t)
	if err := l.AddPlayer(4, "p-4", "Dawson"); err != nil {
		t.Fatalf("add player: %v", err)
	}

	if err := l.Substitute(5, "p-4", "p-9", "Marsh"); !errors.Is(err, apperrors.New(apperrors.CodeLineupSlotVacant, "")) {
		t.Fatalf("expected vacant-slot error, got %v", err)
	}
	if err := l.Substitute(4, "p-wrong", "p-9", "Marsh"); !errors.Is(err, apperrors.New(apperrors.CodeLineupPlayerMismatch, "")) {
		t.Fatalf("expected player-mismatch error, got %v", err)
	}
	if err := l.Substitute(4, "p-4", "p-9", "Marsh"); err != nil {
		t.Fatalf("substitute: %v", err)
	}
	player, _ := l.Player(4)
	if player.ID != "p-9" || player.Name != "Marsh" {
		t.Fatalf("expected incoming player in slot 4, got %+v", player)
	}
}

func TestNextSlotWrapsOrder(t *testing.T) {
	l := newTestLineup(t)
	for slot, id := range map[int]string{2: "p-2", 5: "p-5", 9: "p-9"} {
		if err := l.AddPlayer(slot, id, id); err != nil {
			t.Fatalf("add player to slot %d: %v", slot, err)
		}
	}

	if got := l.NextSlot(0); got != 2 {
		t.Fatalf("expected first occupied slot 2, got %d", got)
	}
	if got := l.NextSlot(2); got != 5 {
		t.Fatalf("expected slot 5 after 2, got %d", got)
	}
	if got := l.NextSlot(9); got != 2 {
		t.Fatalf("expected wrap to slot 2 after 9, got %d", got)
	}
}

func TestNextSlotEmptyLineup(t *testing.T) {
	l := newTestLineup(t)
	if got := l.NextSlot(0); got != 1 {
		t.Fatalf("expected slot 1 for empty lineup, got %d", got)
	}
}

func TestFoldRejectsForeignEvent(t *testing.T) {
	_, err := Fold(State{}, event.Event{
		StreamID: "lineup-1",
		GameID:   "game-1",
		Type:     event.TypeGameStarted,
		Payload:  event.GameStarted{HomeTeam: "A", AwayTeam: "B"},
	})
	if !errors.Is(err, apperrors.New(apperrors.CodeEventInvalid, "")) {
		t.Fatalf("expected invalid-event error, got %v", err)
	}
}
