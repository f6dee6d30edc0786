// Package config loads host configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/dutch/engine"
)

// Prefix is prepended to every variable name.
const Prefix = "DUTCH_"

// Config holds everything the host processes need.
type Config struct {
	LogLevel  logrus.Level
	LogFormat string // "text" or "json"

	WindowDuration time.Duration // same-rank window timer; 0 closes only on advance
	TurnDuration   time.Duration // per-turn timeout; 0 disables

	Rules engine.HouseRules

	RedisURL    string
	HistoryTTL  time.Duration // expiry of each game's action list; 0 keeps it
	DatabaseURL string

	SimGames   int
	SimPlayers int
	SimSeed    uint64
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel:       logrus.InfoLevel,
		LogFormat:      "text",
		WindowDuration: 3 * time.Second,
		TurnDuration:   0,
		Rules:          engine.DefaultHouseRules(),
		HistoryTTL:     24 * time.Hour,
		SimGames:       100,
		SimPlayers:     4,
		SimSeed:        1,
	}
}

// Load reads the given .env files (".env" when none are named) and then the
// process environment. Process variables win over file values. Missing
// files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	fileVals := map[string]string{}
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", f, err)
		}
		for k, v := range vals {
			fileVals[k] = v
		}
	}
	return FromLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVals[key]
		return v, ok
	})
}

// FromLookup builds a Config from an arbitrary variable source.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	p := parser{lookup: lookup}

	if v, ok := p.get("LOG_LEVEL"); ok {
		lvl, err := logrus.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("%sLOG_LEVEL: %w", Prefix, err)
		}
		cfg.LogLevel = lvl
	}
	if v, ok := p.get("LOG_FORMAT"); ok {
		switch v = strings.ToLower(v); v {
		case "text", "json":
			cfg.LogFormat = v
		default:
			return Config{}, fmt.Errorf("%sLOG_FORMAT: unknown format %q", Prefix, v)
		}
	}

	p.duration("WINDOW_DURATION", &cfg.WindowDuration)
	p.duration("TURN_DURATION", &cfg.TurnDuration)

	r := &cfg.Rules
	p.int("HAND_SIZE", &r.HandSize)
	p.int("INITIAL_PEEK_COUNT", &r.InitialPeekCount)
	p.int("PENALTY_DRAW_COUNT", &r.PenaltyDrawCount)
	p.bool("ALLOW_DRAW_FROM_DISCARD", &r.AllowDrawFromDiscard)
	p.bool("COLLECT_SAME_RANK", &r.CollectSameRank)
	p.bool("POWERS_REQUIRE_DECK_DRAW", &r.PowersRequireDeckDraw)
	p.bool("LOCK_CALLER_HAND", &r.LockCallerHand)
	p.int("FINAL_ROUND_MIN_ROUND", &r.FinalRoundMinRound)
	p.int("MAX_GAME_TURNS", &r.MaxGameTurns)
	p.int("FALSE_CALL_PENALTY", &r.FalseCallPenalty)
	p.bool("FLIP_INITIAL_DISCARD", &r.FlipInitialDiscard)

	if v, ok := p.get("REDIS_URL"); ok {
		cfg.RedisURL = v
	}
	p.duration("HISTORY_TTL", &cfg.HistoryTTL)
	if v, ok := p.get("DATABASE_URL"); ok {
		cfg.DatabaseURL = v
	}

	p.int("SIM_GAMES", &cfg.SimGames)
	p.int("SIM_PLAYERS", &cfg.SimPlayers)
	if v, ok := p.get("SIM_SEED"); ok && p.err == nil {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			p.err = fmt.Errorf("%sSIM_SEED: %w", Prefix, err)
		}
		cfg.SimSeed = seed
	}

	if p.err != nil {
		return Config{}, p.err
	}
	if cfg.SimPlayers < engine.MinPlayers || cfg.SimPlayers > engine.MaxPlayers {
		return Config{}, fmt.Errorf("%sSIM_PLAYERS: %d outside %d-%d", Prefix, cfg.SimPlayers, engine.MinPlayers, engine.MaxPlayers)
	}
	return cfg, nil
}

// NewLogger builds the process logger described by cfg.
func (c Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(c.LogLevel)
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

// parser accumulates the first error so each field can be read in one line.
type parser struct {
	lookup func(string) (string, bool)
	err    error
}

func (p *parser) get(name string) (string, bool) {
	v, ok := p.lookup(Prefix + name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (p *parser) int(name string, dst *int) {
	v, ok := p.get(name)
	if !ok || p.err != nil {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.err = fmt.Errorf("%s%s: %w", Prefix, name, err)
		return
	}
	*dst = n
}

func (p *parser) bool(name string, dst *bool) {
	v, ok := p.get(name)
	if !ok || p.err != nil {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.err = fmt.Errorf("%s%s: %w", Prefix, name, err)
		return
	}
	*dst = b
}

// duration accepts Go duration strings ("1500ms", "3s") or bare milliseconds.
func (p *parser) duration(name string, dst *time.Duration) {
	v, ok := p.get(name)
	if !ok || p.err != nil {
		return
	}
	if ms, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(ms) * time.Millisecond
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.err = fmt.Errorf("%s%s: %w", Prefix, name, err)
		return
	}
	*dst = d
}
