package repository

import (
	"context"
	"sort"

	"github.com/fieldside/scorebook/internal/domain/event"
	"github.com/fieldside/scorebook/internal/domain/lineup"
	apperrors "github.com/fieldside/scorebook/internal/platform/errors"
	"github.com/fieldside/scorebook/internal/platform/logging"
	"github.com/fieldside/scorebook/internal/storage"
)

// GameReader is the read-only view of games the lineup repository needs to
// validate cross-aggregate references.
type GameReader interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// TeamLineupRepository loads and saves TeamLineup aggregates.
type TeamLineupRepository struct {
	store  storage.EventStore
	games  GameReader
	logger logging.Logger
}

// NewTeamLineupRepository creates a lineup repository over the given journal.
// games validates that a lineup's game exists before its first save.
func NewTeamLineupRepository(store storage.EventStore, games GameReader, logger logging.Logger) *TeamLineupRepository {
	if logger == nil {
		logger = logging.Nop()
	}
	return &TeamLineupRepository{store: store, games: games, logger: logger}
}

// FindByID rehydrates a lineup from its effective history. An empty stream
// returns (nil, nil).
func (r *TeamLineupRepository) FindByID(ctx context.Context, id string) (*lineup.TeamLineup, error) {
	stream, err := r.store.GetEvents(ctx, id, 0)
	if err != nil {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeStorageLoadFailed, "load lineup stream", map[string]string{
			"lineupId": id,
		}, err)
	}
	if len(stream) == 0 {
		return nil, nil
	}
	return rehydrateLineup(id, stream)
}

// Exists reports whether the lineup has any recorded events.
func (r *TeamLineupRepository) Exists(ctx context.Context, id string) (bool, error) {
	stream, err := r.store.GetEvents(ctx, id, 0)
	if err != nil {
		return false, apperrors.WrapWithMetadata(apperrors.CodeStorageLoadFailed, "load lineup stream", map[string]string{
			"lineupId": id,
		}, err)
	}
	return len(stream) > 0, nil
}

// FindByGame returns both lineups of a game, or fewer when not every side has
// been created yet. Results are ordered by stream id for determinism.
func (r *TeamLineupRepository) FindByGame(ctx context.Context, gameID string) ([]*lineup.TeamLineup, error) {
	events, err := r.store.GetEventsByGameID(ctx, gameID, []event.AggregateType{event.AggregateTeamLineup})
	if err != nil {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeStorageLoadFailed, "load game lineups", map[string]string{
			"gameId": gameID,
		}, err)
	}
	grouped := groupByStream(events)
	ids := make([]string, 0, len(grouped))
	for id := range grouped {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*lineup.TeamLineup, 0, len(ids))
	for _, id := range ids {
		l, err := rehydrateLineup(id, grouped[id])
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// FindByGameAndSide returns the lineup batting for one side of a game, or
// (nil, nil) when that side has no lineup yet.
func (r *TeamLineupRepository) FindByGameAndSide(ctx context.Context, gameID string, side event.TeamSide) (*lineup.TeamLineup, error) {
	lineups, err := r.FindByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	for _, l := range lineups {
		if l.State().Side == side {
			return l, nil
		}
	}
	return nil, nil
}

// Save appends the lineup's uncommitted events. A brand-new lineup is only
// accepted when its game already exists; later saves skip the check because
// the reference was validated at creation.
func (r *TeamLineupRepository) Save(ctx context.Context, l *lineup.TeamLineup) error {
	if l == nil || !l.HasUncommitted() {
		return nil
	}
	if l.Version() == 0 && r.games != nil {
		exists, err := r.games.Exists(ctx, l.GameID())
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.WithMetadata(apperrors.CodeGameNotFound, "lineup references an unknown game", map[string]string{
				"gameId": l.GameID(),
			})
		}
	}
	appended, err := r.store.Append(ctx, l.ID(), event.AggregateTeamLineup, l.GameID(), int64(l.Version()), l.Uncommitted())
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeConcurrencyConflict {
			r.logger.Warn("lineup save lost concurrency race", "lineupId", l.ID(), "version", l.Version())
			return err
		}
		return apperrors.WrapWithMetadata(apperrors.CodeStorageSaveFailed, "save lineup", map[string]string{
			"lineupId": l.ID(),
		}, err)
	}
	l.MarkSaved(appended[len(appended)-1].Version)
	r.logger.Debug("lineup saved", "lineupId", l.ID(), "events", len(appended), "version", l.Version())
	return nil
}

func rehydrateLineup(id string, stream []event.Event) (*lineup.TeamLineup, error) {
	gameID := stream[0].GameID
	return lineup.Rehydrate(id, gameID, EffectiveEvents(stream), rawVersion(stream))
}
