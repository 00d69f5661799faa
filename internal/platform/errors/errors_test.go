package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeConcurrencyConflict, "stream moved")
	if !errors.Is(err, New(CodeConcurrencyConflict, "other message")) {
		t.Fatal("expected errors with the same code to match")
	}
	if errors.Is(err, New(CodeNotFound, "stream moved")) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(CodeStorageSaveFailed, "failed to save", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Error() != "failed to save" {
		t.Fatalf("expected wrapper message, got %q", err.Error())
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", New(CodeSnapshotInconsistent, "bad snapshot"))
	if got := CodeOf(wrapped); got != CodeSnapshotInconsistent {
		t.Fatalf("expected CodeSnapshotInconsistent, got %s", got)
	}
	if got := CodeOf(fmt.Errorf("plain")); got != CodeUnknown {
		t.Fatalf("expected CodeUnknown for plain error, got %s", got)
	}
}
