package id

import "testing"

func TestNewShape(t *testing.T) {
	value := New()
	if len(value) != 26 {
		t.Fatalf("expected 26-character id, got %d (%q)", len(value), value)
	}
	for _, c := range value {
		if (c < 'a' || c > 'z') && (c < '2' || c > '7') {
			t.Fatalf("expected lowercase base32 characters, got %q", value)
		}
	}
}

func TestNewUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		value := New()
		if seen[value] {
			t.Fatalf("expected unique ids, got duplicate %q", value)
		}
		seen[value] = true
	}
}
