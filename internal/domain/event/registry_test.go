package event

import (
	"testing"
	"time"
)

func TestValidateForAppendRejectsForeignAggregate(t *testing.T) {
	registry := DefaultRegistry()

	err := registry.ValidateForAppend("lineup-1", AggregateTeamLineup, "game-1", GameStarted{HomeTeam: "Blue", AwayTeam: "Red"})
	if err == nil {
		t.Fatal("expected error for game event on lineup stream")
	}

	err = registry.ValidateForAppend("", AggregateGame, "game-1", GameStarted{})
	if err == nil {
		t.Fatal("expected error for empty stream id")
	}
}

func TestValidateForAppendAllowsMarkersOnAnyStream(t *testing.T) {
	registry := DefaultRegistry()
	marker := ActionUndone{Ref: EventRef{StreamID: "game-1", Version: 2, Type: TypeAtBatCompleted}}

	for _, aggregateType := range []AggregateType{AggregateGame, AggregateTeamLineup, AggregateInningState} {
		if err := registry.ValidateForAppend("stream-1", aggregateType, "game-1", marker); err != nil {
			t.Fatalf("expected marker to be valid on %s stream: %v", aggregateType, err)
		}
	}
}

func TestPayloadCodecRoundTrip(t *testing.T) {
	registry := DefaultRegistry()
	original := AtBatCompleted{
		Side:        SideAway,
		BattingSlot: 4,
		PlayerID:    "player-9",
		Result:      ResultDouble,
		RunsScored:  1,
	}

	data, err := registry.EncodePayload(original)
	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}
	decoded, err := registry.DecodePayload(TypeAtBatCompleted, data)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	atBat, ok := decoded.(AtBatCompleted)
	if !ok {
		t.Fatalf("expected AtBatCompleted value, got %T", decoded)
	}
	if atBat != original {
		t.Fatalf("expected round-tripped payload to match: %+v vs %+v", atBat, original)
	}
}

func TestDecodeUnknownTypeFails(t *testing.T) {
	registry := DefaultRegistry()
	if _, err := registry.DecodePayload(Type("game.teleported"), []byte(`{}`)); err == nil {
		t.Fatal("expected unknown event type to fail decoding")
	}
}

func TestRegisterDuplicateFails(t *testing.T) {
	registry := DefaultRegistry()
	err := registry.Register(Definition{
		Type:  TypeGameStarted,
		Owner: AggregateGame,
		New:   func() Payload { return &GameStarted{} },
	})
	if err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestSortAscendingTieBreaks(t *testing.T) {
	ts := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	events := []Event{
		{StreamID: "b", Version: 2, Timestamp: ts},
		{StreamID: "a", Version: 2, Timestamp: ts},
		{StreamID: "a", Version: 1, Timestamp: ts.Add(-time.Second)},
	}
	SortAscending(events)
	if events[0].Version != 1 {
		t.Fatalf("expected oldest event first, got version %d", events[0].Version)
	}
	if events[1].StreamID != "a" || events[2].StreamID != "b" {
		t.Fatal("expected stream id to break equal timestamp and version")
	}
}

func TestMarkerDetection(t *testing.T) {
	registry := DefaultRegistry()
	if !registry.IsMarker(TypeActionUndone) || !registry.IsMarker(TypeActionRedone) {
		t.Fatal("expected undo/redo markers to be markers")
	}
	if registry.IsMarker(TypeAtBatCompleted) {
		t.Fatal("expected at-bat event not to be a marker")
	}
	if _, err := registry.DecodePayload("nope", nil); err == nil {
		t.Fatal("expected decode of unknown type to return an error")
	}
}
