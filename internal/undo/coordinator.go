// Package undo coordinates logical reversal of scorekeeping actions across a
// game's streams. Undo never deletes: each reversal appends a marker event
// referencing the original, and replay excludes marked events.
package undo

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fieldside/scorebook/internal/domain/event"
	"github.com/fieldside/scorebook/internal/domain/game"
	apperrors "github.com/fieldside/scorebook/internal/platform/errors"
	"github.com/fieldside/scorebook/internal/platform/logging"
	"github.com/fieldside/scorebook/internal/readmodel"
	"github.com/fieldside/scorebook/internal/storage"
)

const tracerName = "github.com/fieldside/scorebook/internal/undo"

// Config holds coordinator policy. The dangerous list is configuration, not
// code: deployments decide which reversals need explicit confirmation.
type Config struct {
	DangerousEventTypes []event.Type
}

// DefaultConfig returns the evidenced dangerous set: half-inning transitions
// and game completion, the reversals that ripple across aggregates.
func DefaultConfig() Config {
	return Config{
		DangerousEventTypes: []event.Type{
			event.TypeHalfInningEnded,
			event.TypeGameCompleted,
		},
	}
}

// Options customizes a single undo or redo call.
type Options struct {
	// ActionLimit bounds how many actions to reverse or reapply.
	// Zero or negative means one.
	ActionLimit int
	// ConfirmDangerous acknowledges reversal of dangerous event types.
	ConfirmDangerous bool
}

func (o Options) limit() int {
	if o.ActionLimit < 1 {
		return 1
	}
	return o.ActionLimit
}

// Result reports the outcome of an undo or redo.
type Result struct {
	// ActionsApplied is how many events were actually reversed or reapplied.
	// It may be lower than the requested limit when fewer are eligible.
	ActionsApplied int
	// ConfirmationRequired is true when a dangerous event was selected
	// without confirmation. Nothing was mutated. This is a normal outcome,
	// not an error.
	ConfirmationRequired bool
	// DangerousTypes lists the event types that triggered the confirmation
	// gate, for prompting.
	DangerousTypes []event.Type
	// Snapshot is the composite read model after the operation. Nil when
	// confirmation is required.
	Snapshot *readmodel.GameStateSnapshot
}

// GameLoader is the read-only game access the coordinator needs to rebuild
// the snapshot after mutating history.
type GameLoader interface {
	FindByID(ctx context.Context, id string) (*game.Game, error)
}

// Coordinator implements cross-aggregate undo and redo over one journal.
type Coordinator struct {
	store     storage.EventStore
	games     GameLoader
	builder   *readmodel.Builder
	cfg       Config
	dangerous map[event.Type]bool
	logger    logging.Logger
	tracer    trace.Tracer
}

// NewCoordinator creates a coordinator. A zero-value Config falls back to the
// default dangerous set.
func NewCoordinator(store storage.EventStore, games GameLoader, builder *readmodel.Builder, cfg Config, logger logging.Logger) *Coordinator {
	if len(cfg.DangerousEventTypes) == 0 {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	dangerous := make(map[event.Type]bool, len(cfg.DangerousEventTypes))
	for _, t := range cfg.DangerousEventTypes {
		dangerous[t] = true
	}
	return &Coordinator{
		store:     store,
		games:     games,
		builder:   builder,
		cfg:       cfg,
		dangerous: dangerous,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
	}
}

// Undo reverses the most recent eligible actions in the game's combined
// history by appending undo markers to the original events' streams.
func (c *Coordinator) Undo(ctx context.Context, gameID string, opts Options) (Result, error) {
	return c.run(ctx, "undo", gameID, opts, selectUndoCandidates, func(evt event.Event) event.Payload {
		return event.ActionUndone{Ref: evt.Ref()}
	})
}

// Redo reapplies the most recently undone actions by appending redo markers,
// re-admitting the originals into replay. Any forward event recorded after
// the newest undo empties the redo-eligible set.
func (c *Coordinator) Redo(ctx context.Context, gameID string, opts Options) (Result, error) {
	return c.run(ctx, "redo", gameID, opts, selectRedoCandidates, func(evt event.Event) event.Payload {
		return event.ActionRedone{Ref: evt.Ref()}
	})
}

type selectFunc func(history []event.Event) []event.Event

func (c *Coordinator) run(ctx context.Context, operation, gameID string, opts Options, selectCandidates selectFunc, marker func(event.Event) event.Payload) (Result, error) {
	ctx, span := c.tracer.Start(ctx, "scorebook."+operation, trace.WithAttributes(
		attribute.String("scorebook.game_id", gameID),
		attribute.Int("scorebook.action_limit", opts.limit()),
	))
	defer span.End()

	started := time.Now()
	c.logger.Info(operation+" requested", "gameId", gameID, "actionLimit", opts.limit())

	result, err := c.apply(ctx, gameID, opts, selectCandidates, marker)
	duration := time.Since(started)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, operation+" failed")
		c.logger.Error(operation+" failed", "gameId", gameID, "duration", duration, "error", err)
		return Result{}, err
	}

	span.SetAttributes(
		attribute.Int("scorebook.actions_applied", result.ActionsApplied),
		attribute.Bool("scorebook.confirmation_required", result.ConfirmationRequired),
	)
	c.logger.Info(operation+" completed",
		"gameId", gameID,
		"actionsApplied", result.ActionsApplied,
		"confirmationRequired", result.ConfirmationRequired,
		"duration", duration,
	)
	return result, nil
}

func (c *Coordinator) apply(ctx context.Context, gameID string, opts Options, selectCandidates selectFunc, marker func(event.Event) event.Payload) (Result, error) {
	history, err := c.store.GetGameEvents(ctx, gameID)
	if err != nil {
		return Result{}, apperrors.WrapWithMetadata(apperrors.CodeStorageLoadFailed, "load combined game history", map[string]string{
			"gameId": gameID,
		}, err)
	}

	candidates := selectCandidates(history)
	if len(candidates) > opts.limit() {
		candidates = candidates[:opts.limit()]
	}

	if !opts.ConfirmDangerous {
		if dangerous := c.dangerousAmong(candidates); len(dangerous) > 0 {
			return Result{ConfirmationRequired: true, DangerousTypes: dangerous}, nil
		}
	}

	if err := c.appendMarkers(ctx, history, candidates, marker); err != nil {
		return Result{}, err
	}

	snapshot, err := c.snapshot(ctx, gameID)
	if err != nil {
		return Result{}, err
	}
	return Result{ActionsApplied: len(candidates), Snapshot: snapshot}, nil
}

// appendMarkers writes one marker per selected event to the event's own
// stream, one append per stream. A failure after an earlier stream already
// committed is compensated by reversing the committed markers, so the game
// never settles half-applied.
func (c *Coordinator) appendMarkers(ctx context.Context, history, selected []event.Event, marker func(event.Event) event.Payload) error {
	if len(selected) == 0 {
		return nil
	}
	versions := streamVersions(history)

	byStream := make(map[string][]event.Event)
	order := make([]string, 0)
	for _, evt := range selected {
		if _, seen := byStream[evt.StreamID]; !seen {
			order = append(order, evt.StreamID)
		}
		byStream[evt.StreamID] = append(byStream[evt.StreamID], evt)
	}
	sort.Strings(order)

	committed := make([][]event.Event, 0, len(order))
	for _, streamID := range order {
		events := byStream[streamID]
		payloads := make([]event.Payload, 0, len(events))
		for _, evt := range events {
			payloads = append(payloads, marker(evt))
		}
		appended, err := c.store.Append(ctx, streamID, events[0].AggregateType, events[0].GameID, int64(versions[streamID]), payloads)
		if err != nil {
			c.compensate(ctx, committed)
			return apperrors.WrapWithMetadata(apperrors.CodeStorageAppendFailed, "append reversal markers", map[string]string{
				"streamId": streamID,
			}, err)
		}
		committed = append(committed, appended)
	}
	return nil
}

// compensate reverses marker batches that committed before a later stream
// failed: an undo marker is neutralized by a redo marker for the same
// reference, and vice versa. Compensation is best-effort; a failure here is
// logged and surfaced to the operator through the original error.
func (c *Coordinator) compensate(ctx context.Context, committed [][]event.Event) {
	for _, batch := range committed {
		payloads := make([]event.Payload, 0, len(batch))
		for _, evt := range batch {
			switch p := evt.Payload.(type) {
			case event.ActionUndone:
				payloads = append(payloads, event.ActionRedone{Ref: p.Ref})
			case event.ActionRedone:
				payloads = append(payloads, event.ActionUndone{Ref: p.Ref})
			}
		}
		if len(payloads) == 0 {
			continue
		}
		first := batch[0]
		if _, err := c.store.Append(ctx, first.StreamID, first.AggregateType, first.GameID, storage.AnyVersion, payloads); err != nil {
			c.logger.Warn("compensation append failed; history left partially reversed",
				"streamId", first.StreamID, "gameId", first.GameID, "error", err)
		}
	}
}

func (c *Coordinator) snapshot(ctx context.Context, gameID string) (*readmodel.GameStateSnapshot, error) {
	g, err := c.games.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, apperrors.WithMetadata(apperrors.CodeGameNotFound, "game has no recorded history", map[string]string{
			"gameId": gameID,
		})
	}
	return c.builder.Build(ctx, g)
}

func (c *Coordinator) dangerousAmong(selected []event.Event) []event.Type {
	seen := make(map[event.Type]bool)
	out := make([]event.Type, 0)
	for _, evt := range selected {
		if c.dangerous[evt.Type] && !seen[evt.Type] {
			seen[evt.Type] = true
			out = append(out, evt.Type)
		}
	}
	return out
}

// refKey identifies one original event across the combined history.
type refKey struct {
	streamID string
	version  uint64
}

// markerStates resolves the net visibility of every referenced event: the
// latest marker per reference wins.
func markerStates(history []event.Event) map[refKey]bool {
	undone := make(map[refKey]bool)
	for _, evt := range history {
		switch p := evt.Payload.(type) {
		case event.ActionUndone:
			if p.Ref.StreamID == evt.StreamID {
				undone[refKey{p.Ref.StreamID, p.Ref.Version}] = true
			}
		case event.ActionRedone:
			if p.Ref.StreamID == evt.StreamID {
				undone[refKey{p.Ref.StreamID, p.Ref.Version}] = false
			}
		}
	}
	return undone
}

func isMarker(evt event.Event) bool {
	switch evt.Payload.(type) {
	case event.ActionUndone, event.ActionRedone:
		return true
	}
	return false
}

func sortDescending(events []event.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return event.Less(events[j], events[i])
	})
}

// selectUndoCandidates returns the not-yet-undone forward events, most recent
// first (timestamp descending, version descending on ties).
func selectUndoCandidates(history []event.Event) []event.Event {
	undone := markerStates(history)
	out := make([]event.Event, 0)
	for _, evt := range history {
		if isMarker(evt) {
			continue
		}
		if undone[refKey{evt.StreamID, evt.Version}] {
			continue
		}
		out = append(out, evt)
	}
	sortDescending(out)
	return out
}

// selectRedoCandidates returns the currently-undone events ordered by their
// newest undo marker, most recent first. A forward event recorded after the
// newest undo marker invalidates the whole redo set.
func selectRedoCandidates(history []event.Event) []event.Event {
	undone := markerStates(history)

	originals := make(map[refKey]event.Event)
	newestUndo := make(map[refKey]event.Event)
	for _, evt := range history {
		if p, ok := evt.Payload.(event.ActionUndone); ok && p.Ref.StreamID == evt.StreamID {
			key := refKey{p.Ref.StreamID, p.Ref.Version}
			if existing, ok := newestUndo[key]; !ok || event.Less(existing, evt) {
				newestUndo[key] = evt
			}
			continue
		}
		if !isMarker(evt) {
			originals[refKey{evt.StreamID, evt.Version}] = evt
		}
	}

	var latestUndoMarker *event.Event
	for key, markerEvt := range newestUndo {
		if !undone[key] {
			continue
		}
		m := markerEvt
		if latestUndoMarker == nil || event.Less(*latestUndoMarker, m) {
			latestUndoMarker = &m
		}
	}
	if latestUndoMarker == nil {
		return nil
	}

	// Standard redo semantics: a new forward action invalidates pending redo.
	for _, evt := range history {
		if !isMarker(evt) && event.Less(*latestUndoMarker, evt) {
			return nil
		}
	}

	type candidate struct {
		original event.Event
		marker   event.Event
	}
	candidates := make([]candidate, 0)
	for key, markerEvt := range newestUndo {
		if !undone[key] {
			continue
		}
		original, ok := originals[key]
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{original: original, marker: markerEvt})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return event.Less(candidates[j].marker, candidates[i].marker)
	})

	out := make([]event.Event, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, cand.original)
	}
	return out
}

// streamVersions returns each stream's raw length from the combined history.
func streamVersions(history []event.Event) map[string]uint64 {
	versions := make(map[string]uint64)
	for _, evt := range history {
		if evt.Version > versions[evt.StreamID] {
			versions[evt.StreamID] = evt.Version
		}
	}
	return versions
}
