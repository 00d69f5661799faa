package repository

import (
	"context"
	"sort"

	"github.com/fieldside/scorebook/internal/domain/event"
	"github.com/fieldside/scorebook/internal/domain/inning"
	apperrors "github.com/fieldside/scorebook/internal/platform/errors"
	"github.com/fieldside/scorebook/internal/platform/logging"
	"github.com/fieldside/scorebook/internal/storage"
)

// InningStateRepository loads and saves InningState aggregates.
type InningStateRepository struct {
	store  storage.EventStore
	games  GameReader
	logger logging.Logger
}

// NewInningStateRepository creates an inning repository over the given journal.
func NewInningStateRepository(store storage.EventStore, games GameReader, logger logging.Logger) *InningStateRepository {
	if logger == nil {
		logger = logging.Nop()
	}
	return &InningStateRepository{store: store, games: games, logger: logger}
}

// FindByID rehydrates inning state from its effective history. An empty
// stream returns (nil, nil).
func (r *InningStateRepository) FindByID(ctx context.Context, id string) (*inning.InningState, error) {
	stream, err := r.store.GetEvents(ctx, id, 0)
	if err != nil {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeStorageLoadFailed, "load inning stream", map[string]string{
			"inningId": id,
		}, err)
	}
	if len(stream) == 0 {
		return nil, nil
	}
	return rehydrateInning(id, stream)
}

// Exists reports whether the inning stream has any recorded events.
func (r *InningStateRepository) Exists(ctx context.Context, id string) (bool, error) {
	stream, err := r.store.GetEvents(ctx, id, 0)
	if err != nil {
		return false, apperrors.WrapWithMetadata(apperrors.CodeStorageLoadFailed, "load inning stream", map[string]string{
			"inningId": id,
		}, err)
	}
	return len(stream) > 0, nil
}

// FindByGame returns the game's inning tracking, or (nil, nil) when none has
// been created. A game has at most one inning stream; when the journal holds
// more the lowest stream id wins so reads stay deterministic.
func (r *InningStateRepository) FindByGame(ctx context.Context, gameID string) (*inning.InningState, error) {
	events, err := r.store.GetEventsByGameID(ctx, gameID, []event.AggregateType{event.AggregateInningState})
	if err != nil {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeStorageLoadFailed, "load game inning state", map[string]string{
			"gameId": gameID,
		}, err)
	}
	if len(events) == 0 {
		return nil, nil
	}
	grouped := groupByStream(events)
	ids := make([]string, 0, len(grouped))
	for id := range grouped {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return rehydrateInning(ids[0], grouped[ids[0]])
}

// Save appends the inning state's uncommitted events. A brand-new stream is
// only accepted when its game already exists.
func (r *InningStateRepository) Save(ctx context.Context, i *inning.InningState) error {
	if i == nil || !i.HasUncommitted() {
		return nil
	}
	if i.Version() == 0 && r.games != nil {
		exists, err := r.games.Exists(ctx, i.GameID())
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.WithMetadata(apperrors.CodeGameNotFound, "inning state references an unknown game", map[string]string{
				"gameId": i.GameID(),
			})
		}
	}
	appended, err := r.store.Append(ctx, i.ID(), event.AggregateInningState, i.GameID(), int64(i.Version()), i.Uncommitted())
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeConcurrencyConflict {
			r.logger.Warn("inning save lost concurrency race", "inningId", i.ID(), "version", i.Version())
			return err
		}
		return apperrors.WrapWithMetadata(apperrors.CodeStorageSaveFailed, "save inning state", map[string]string{
			"inningId": i.ID(),
		}, err)
	}
	i.MarkSaved(appended[len(appended)-1].Version)
	r.logger.Debug("inning state saved", "inningId", i.ID(), "events", len(appended), "version", i.Version())
	return nil
}

func rehydrateInning(id string, stream []event.Event) (*inning.InningState, error) {
	gameID := stream[0].GameID
	return inning.Rehydrate(id, gameID, EffectiveEvents(stream), rawVersion(stream))
}
