// Package scorebook parses scorebook command flags and runs the journal
// inspection tool: it prints a game's event history and rebuilt snapshot, and
// can apply undo/redo operations against the journal.
package scorebook

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fieldside/scorebook/internal/domain/event"
	"github.com/fieldside/scorebook/internal/domain/game"
	"github.com/fieldside/scorebook/internal/domain/inning"
	"github.com/fieldside/scorebook/internal/domain/lineup"
	entrypoint "github.com/fieldside/scorebook/internal/platform/cmd"
	"github.com/fieldside/scorebook/internal/platform/id"
	"github.com/fieldside/scorebook/internal/platform/logging"
	"github.com/fieldside/scorebook/internal/readmodel"
	"github.com/fieldside/scorebook/internal/repository"
	"github.com/fieldside/scorebook/internal/storage/sqlite"
	"github.com/fieldside/scorebook/internal/undo"
)

// Config holds scorebook command configuration.
type Config struct {
	StorePath           string   `env:"SCOREBOOK_STORE_PATH" envDefault:"scorebook.db"`
	GameID              string   `env:"SCOREBOOK_GAME_ID"`
	Operation           string   `env:"SCOREBOOK_OPERATION"`
	ActionLimit         int      `env:"SCOREBOOK_ACTION_LIMIT" envDefault:"1"`
	ConfirmDangerous    bool     `env:"SCOREBOOK_CONFIRM_DANGEROUS"`
	DangerousEventTypes []string `env:"SCOREBOOK_DANGEROUS_EVENT_TYPES" envSeparator:","`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.StorePath, "store", cfg.StorePath, "Path to the sqlite event journal")
	fs.StringVar(&cfg.GameID, "game", cfg.GameID, "Game id to inspect")
	fs.StringVar(&cfg.Operation, "op", cfg.Operation, "Optional operation to apply: seed, undo, or redo")
	fs.IntVar(&cfg.ActionLimit, "limit", cfg.ActionLimit, "How many actions to undo or redo")
	fs.BoolVar(&cfg.ConfirmDangerous, "confirm", cfg.ConfirmDangerous, "Confirm reversal of dangerous events")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DangerousTypes converts the configured dangerous event-type list. An empty
// configuration falls back to the coordinator default.
func (c Config) DangerousTypes() []event.Type {
	out := make([]event.Type, 0, len(c.DangerousEventTypes))
	for _, raw := range c.DangerousEventTypes {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			out = append(out, event.Type(trimmed))
		}
	}
	return out
}

// Run executes the scorebook command against the configured journal.
func Run(ctx context.Context, cfg Config) error {
	if strings.TrimSpace(cfg.GameID) == "" && !strings.EqualFold(strings.TrimSpace(cfg.Operation), "seed") {
		return fmt.Errorf("a game id is required (-game or SCOREBOOK_GAME_ID)")
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceScorebook, func(ctx context.Context) error {
		return run(ctx, cfg, os.Stdout)
	})
}

func run(ctx context.Context, cfg Config, out io.Writer) error {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	store, err := sqlite.Open(cfg.StorePath, event.DefaultRegistry())
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() { _ = store.Close() }()

	games := repository.NewGameRepository(store, logger)
	innings := repository.NewInningStateRepository(store, games, logger)
	lineups := repository.NewTeamLineupRepository(store, games, logger)
	builder := readmodel.NewBuilder(innings, lineups)
	coordinator := undo.NewCoordinator(store, games, builder, undo.Config{
		DangerousEventTypes: cfg.DangerousTypes(),
	}, logger)

	switch strings.ToLower(strings.TrimSpace(cfg.Operation)) {
	case "":
		// Inspection only.
	case "seed":
		gameID, err := seedDemoGame(ctx, cfg.GameID, games, innings, lineups)
		if err != nil {
			return err
		}
		cfg.GameID = gameID
		fmt.Fprintf(out, "seeded demo game %s\n", gameID)
	case "undo", "redo":
		opts := undo.Options{ActionLimit: cfg.ActionLimit, ConfirmDangerous: cfg.ConfirmDangerous}
		var result undo.Result
		if strings.EqualFold(cfg.Operation, "undo") {
			result, err = coordinator.Undo(ctx, cfg.GameID, opts)
		} else {
			result, err = coordinator.Redo(ctx, cfg.GameID, opts)
		}
		if err != nil {
			return err
		}
		if result.ConfirmationRequired {
			fmt.Fprintf(out, "confirmation required: reversal touches %v (re-run with -confirm)\n", result.DangerousTypes)
			return nil
		}
		fmt.Fprintf(out, "%s applied %d action(s)\n", strings.ToLower(cfg.Operation), result.ActionsApplied)
	default:
		return fmt.Errorf("unknown operation %q (want seed, undo, or redo)", cfg.Operation)
	}

	return printGame(ctx, cfg.GameID, store, games, builder, out)
}

// seedDemoGame records a small complete fixture: a started game, inning
// tracking, both lineups, and a few at-bats. A provided game id is reused so
// scripted runs stay addressable; otherwise one is generated.
func seedDemoGame(ctx context.Context, gameID string, games *repository.GameRepository, innings *repository.InningStateRepository, lineups *repository.TeamLineupRepository) (string, error) {
	if strings.TrimSpace(gameID) == "" {
		gameID = id.New()
	}

	g := game.New(gameID)
	if err := g.Start("Cardinals", "Blue Sox"); err != nil {
		return "", err
	}
	if err := games.Save(ctx, g); err != nil {
		return "", err
	}

	i := inning.New(id.New(), gameID)
	if err := i.Create(); err != nil {
		return "", err
	}
	if err := innings.Save(ctx, i); err != nil {
		return "", err
	}

	type seedPlayer struct {
		slot int
		name string
	}
	sides := []struct {
		side    event.TeamSide
		team    string
		players []seedPlayer
	}{
		{event.SideAway, "Blue Sox", []seedPlayer{{1, "Ada"}, {2, "Grace"}, {3, "Edith"}}},
		{event.SideHome, "Cardinals", []seedPlayer{{1, "Jean"}, {2, "Mary"}, {3, "Kat"}}},
	}
	batting := make(map[event.TeamSide][]string)
	for _, s := range sides {
		l := lineup.New(id.New(), gameID)
		if err := l.Create(s.side, s.team); err != nil {
			return "", err
		}
		for _, p := range s.players {
			playerID := id.New()
			if err := l.AddPlayer(p.slot, playerID, p.name); err != nil {
				return "", err
			}
			batting[s.side] = append(batting[s.side], playerID)
		}
		if err := lineups.Save(ctx, l); err != nil {
			return "", err
		}
	}

	away := batting[event.SideAway]
	if err := g.RecordAtBat(event.SideAway, 1, away[0], event.ResultSingle, 0, 0); err != nil {
		return "", err
	}
	if err := g.RecordAtBat(event.SideAway, 2, away[1], event.ResultHomeRun, 2, 0); err != nil {
		return "", err
	}
	if err := g.RecordAtBat(event.SideAway, 3, away[2], event.ResultOut, 0, 1); err != nil {
		return "", err
	}
	if err := games.Save(ctx, g); err != nil {
		return "", err
	}
	return gameID, nil
}

func printGame(ctx context.Context, gameID string, store *sqlite.Store, games *repository.GameRepository, builder *readmodel.Builder, out io.Writer) error {
	history, err := store.GetGameEvents(ctx, gameID)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Fprintf(out, "game %s has no recorded events\n", gameID)
		return nil
	}

	fmt.Fprintf(out, "history for game %s (%d events):\n", gameID, len(history))
	for _, evt := range history {
		fmt.Fprintf(out, "  %s  %-12s v%-3d %s\n",
			evt.Timestamp.Format("2006-01-02 15:04:05.000"), evt.AggregateType, evt.Version, evt.Type)
	}

	g, err := games.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if g == nil {
		return nil
	}
	snapshot, err := builder.Build(ctx, g)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "snapshot:\n")
	fmt.Fprintf(out, "  %s %d - %s %d (%s)\n",
		snapshot.Home.Name, snapshot.Home.Score, snapshot.Away.Name, snapshot.Away.Score, snapshot.Status)
	half := "bottom"
	if snapshot.TopHalf {
		half = "top"
	}
	fmt.Fprintf(out, "  %s of inning %d, %s batting, slot %d\n",
		half, snapshot.Inning, snapshot.BattingSide, snapshot.CurrentBattingSlot)
	if snapshot.CurrentBatter != nil {
		fmt.Fprintf(out, "  at bat: %s (%s)\n", snapshot.CurrentBatter.Name, snapshot.CurrentBatter.ID)
	} else {
		fmt.Fprintf(out, "  at bat: slot vacant\n")
	}
	return nil
}
