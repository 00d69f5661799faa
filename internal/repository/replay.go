// Package repository loads and saves aggregates against the event journal.
//
// Loading replays a stream's effective history: undo and redo markers are
// applied to decide which events fold into state, then stripped. Saving
// appends the aggregate's uncommitted payloads with an optimistic concurrency
// check at the raw stream version the aggregate was loaded at.
package repository

import (
	"sort"

	"github.com/fieldside/scorebook/internal/domain/event"
)

// EffectiveEvents returns the events of a single stream that fold into
// aggregate state. Markers flip the visibility of the event they reference;
// when several markers reference the same event the latest one wins. Markers
// themselves never fold.
func EffectiveEvents(stream []event.Event) []event.Event {
	excluded := make(map[uint64]bool)
	for _, evt := range stream {
		switch p := evt.Payload.(type) {
		case event.ActionUndone:
			if p.Ref.StreamID == evt.StreamID {
				excluded[p.Ref.Version] = true
			}
		case event.ActionRedone:
			if p.Ref.StreamID == evt.StreamID {
				excluded[p.Ref.Version] = false
			}
		}
	}

	out := make([]event.Event, 0, len(stream))
	for _, evt := range stream {
		switch evt.Payload.(type) {
		case event.ActionUndone, event.ActionRedone:
			continue
		}
		if excluded[evt.Version] {
			continue
		}
		out = append(out, evt)
	}
	return out
}

// rawVersion returns the stream length implied by its newest event. Streams
// read from version zero, so the newest version is the length.
func rawVersion(stream []event.Event) uint64 {
	if len(stream) == 0 {
		return 0
	}
	return stream[len(stream)-1].Version
}

// groupByStream splits a cross-stream read back into per-stream slices keyed
// by stream id. Events within each slice keep ascending version order.
func groupByStream(events []event.Event) map[string][]event.Event {
	grouped := make(map[string][]event.Event)
	for _, evt := range events {
		grouped[evt.StreamID] = append(grouped[evt.StreamID], evt)
	}
	for id, stream := range grouped {
		sort.Slice(stream, func(i, j int) bool { return stream[i].Version < stream[j].Version })
		grouped[id] = stream
	}
	return grouped
}
