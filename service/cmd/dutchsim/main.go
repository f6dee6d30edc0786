// Command dutchsim plays batches of Dutch matches between automated seats and
// reports the outcome. With DUTCH_REDIS_URL set every action is published to
// the historian; with DUTCH_DATABASE_URL set every result is stored.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/dutch/service/internal/cache"
	"github.com/jason-s-yu/dutch/service/internal/config"
	"github.com/jason-s-yu/dutch/service/internal/database"
	"github.com/jason-s-yu/dutch/service/internal/game"
	"github.com/jason-s-yu/dutch/service/internal/runner"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		logrus.WithError(err).Error("simulation failed")
		os.Exit(1)
	}
}

type options struct {
	envFile  string
	games    int
	players  int
	seed     uint64
	provider string
	report   bool
	set      map[string]bool
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("dutchsim", flag.ContinueOnError)
	opts := options{set: map[string]bool{}}
	fs.StringVar(&opts.envFile, "env", ".env", "optional .env file")
	fs.IntVar(&opts.games, "games", 0, "matches to play (default DUTCH_SIM_GAMES)")
	fs.IntVar(&opts.players, "players", 0, "seats per match (default DUTCH_SIM_PLAYERS)")
	fs.Uint64Var(&opts.seed, "seed", 0, "batch seed (default DUTCH_SIM_SEED)")
	fs.StringVar(&opts.provider, "provider", "random", "seat policy: random or first")
	fs.BoolVar(&opts.report, "json", false, "write the summary as JSON to stdout")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// withDefaults fills unset flags from cfg.
func (o options) withDefaults(cfg config.Config) options {
	if !o.set["games"] {
		o.games = cfg.SimGames
	}
	if !o.set["players"] {
		o.players = cfg.SimPlayers
	}
	if !o.set["seed"] {
		o.seed = cfg.SimSeed
	}
	return o
}

func newProvider(name string, seed uint64) (runner.ActionProvider, error) {
	switch name {
	case "random":
		return runner.NewRandomProvider(seed), nil
	case "first":
		return runner.FirstLegalProvider{}, nil
	}
	return nil, fmt.Errorf("unknown provider %q", name)
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}
	opts = opts.withDefaults(cfg)
	log := cfg.NewLogger()

	provider, err := newProvider(opts.provider, opts.seed)
	if err != nil {
		return err
	}

	tableOpts := game.Options{Logger: log}
	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		tableOpts.History = cache.NewHistorian(rdb, cfg.HistoryTTL)
		log.Info("publishing action history to redis")
	}
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store := database.NewResultStore(pool)
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		tableOpts.Results = store
		log.Info("storing results in postgres")
	}

	r := runner.New(provider, runner.Config{
		Players: opts.players,
		Rules:   cfg.Rules,
		Table:   tableOpts,
		OnGameComplete: func(gs runner.GameSummary) {
			log.WithFields(logrus.Fields{
				"game_id":   gs.GameID,
				"reason":    gs.Result.Reason.String(),
				"winners":   gs.Result.Winners,
				"turns":     gs.Turns,
				"actions":   gs.ActionCount,
				"fallbacks": gs.FallbackCount,
			}).Debug("game complete")
		},
	})

	log.WithFields(logrus.Fields{
		"games":    opts.games,
		"players":  opts.players,
		"seed":     opts.seed,
		"provider": opts.provider,
	}).Info("starting simulation")

	sum, err := r.RunGames(ctx, opts.games, opts.seed)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"games_completed":  sum.GamesCompleted,
		"total_actions":    sum.TotalActions,
		"total_rejections": sum.TotalRejections,
		"total_fallbacks":  sum.TotalFallbacks,
		"action_limits":    sum.ActionLimitHits,
		"draws":            sum.Draws,
		"wins":             sum.Wins,
		"reasons":          sum.Reasons,
	}).Info("simulation complete")

	if opts.report {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}
	return nil
}
