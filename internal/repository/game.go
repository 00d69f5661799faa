package repository

import (
	"context"
	"strconv"

	"github.com/fieldside/scorebook/internal/domain/event"
	"github.com/fieldside/scorebook/internal/domain/game"
	apperrors "github.com/fieldside/scorebook/internal/platform/errors"
	"github.com/fieldside/scorebook/internal/platform/logging"
	"github.com/fieldside/scorebook/internal/storage"
)

// GameRepository loads and saves Game aggregates.
type GameRepository struct {
	store  storage.EventStore
	logger logging.Logger
}

// NewGameRepository creates a game repository over the given journal.
func NewGameRepository(store storage.EventStore, logger logging.Logger) *GameRepository {
	if logger == nil {
		logger = logging.Nop()
	}
	return &GameRepository{store: store, logger: logger}
}

// FindByID rehydrates a game from its effective history. An empty stream
// returns (nil, nil): absence is an answer, not a failure.
func (r *GameRepository) FindByID(ctx context.Context, id string) (*game.Game, error) {
	stream, err := r.store.GetEvents(ctx, id, 0)
	if err != nil {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeStorageLoadFailed, "load game stream", map[string]string{
			"gameId": id,
		}, err)
	}
	if len(stream) == 0 {
		return nil, nil
	}
	g, err := game.Rehydrate(id, EffectiveEvents(stream), rawVersion(stream))
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Exists reports whether the game has any recorded events.
func (r *GameRepository) Exists(ctx context.Context, id string) (bool, error) {
	stream, err := r.store.GetEvents(ctx, id, 0)
	if err != nil {
		return false, apperrors.WrapWithMetadata(apperrors.CodeStorageLoadFailed, "load game stream", map[string]string{
			"gameId": id,
		}, err)
	}
	return len(stream) > 0, nil
}

// Save appends the game's uncommitted events at the version it was loaded at.
// A concurrent writer surfaces as storage.ErrVersionConflict; callers reload
// and retry. Saving with nothing pending is a no-op.
func (r *GameRepository) Save(ctx context.Context, g *game.Game) error {
	if g == nil || !g.HasUncommitted() {
		return nil
	}
	pending := g.Uncommitted()
	appended, err := r.store.Append(ctx, g.ID(), event.AggregateGame, g.GameID(), int64(g.Version()), pending)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeConcurrencyConflict {
			r.logger.Warn("game save lost concurrency race", "gameId", g.GameID(), "version", g.Version())
			return err
		}
		metadata := map[string]string{"gameId": g.GameID()}
		// Best-effort reload for diagnostics; a secondary failure must not
		// mask the original error.
		if reloaded, loadErr := r.FindByID(ctx, g.ID()); loadErr != nil {
			r.logger.Warn("could not reload game for save-failure context", "gameId", g.GameID(), "error", loadErr)
		} else if reloaded != nil {
			metadata["status"] = string(reloaded.State().Status)
			metadata["version"] = strconv.FormatUint(reloaded.Version(), 10)
		}
		return apperrors.WrapWithMetadata(apperrors.CodeStorageSaveFailed, "save game", metadata, err)
	}
	g.MarkSaved(appended[len(appended)-1].Version)
	r.logger.Debug("game saved", "gameId", g.GameID(), "events", len(appended), "version", g.Version())
	return nil
}
