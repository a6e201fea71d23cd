// Command guandansim drives the engine end to end with four
// LegalMinimumBeater seats and no host adapter attached — development
// and test tooling, not part of the core engine.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"guandan/internal/bot"
	"guandan/internal/config"
	"guandan/internal/domain"
	"guandan/internal/engine"
)

type CLI struct {
	Matches       int    `default:"1" help:"Number of matches to simulate"`
	Seed          int64  `default:"0" help:"RNG seed (0 derives one from wall-clock time)"`
	StartingLevel string `default:"2" help:"Starting team level (2..A)"`
	ConfigPath    string `help:"Path to an engine tunables JSON file" type:"path"`
	Verbose       bool   `short:"v" help:"Log every engine event"`
}

func main() {
	var cli CLI
	kong.Parse(&cli)

	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel})
	if cli.Verbose {
		logger = log.NewWithOptions(os.Stderr, log.Options{Level: log.DebugLevel})
	}

	if cli.ConfigPath != "" {
		if err := config.Load(cli.ConfigPath); err != nil {
			logger.Warn("falling back to default engine tunables", "error", err)
		}
	}
	cfg := config.Get()

	seed := cli.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	startLevel := cfg.StartingLevelRank()
	if lvl, ok := domain.ParseRankToken(cli.StartingLevel); ok {
		startLevel = lvl
	}

	fmt.Printf("simulating %d match(es), seed=%d, starting level=%s\n", cli.Matches, seed, rankToken(startLevel))

	for m := 0; m < cli.Matches; m++ {
		matchSeed := seed + int64(m)
		winner, deals := runMatch(matchSeed, startLevel, cfg, logger)
		fmt.Printf("match %d: seed=%d team %d wins after %d deal(s)\n", m+1, matchSeed, winner, deals)
	}
}

// runMatch plays one match to completion against a real clock, logging
// through sink and blocking until MatchFinished fires.
func runMatch(seed int64, startLevel domain.Rank, cfg config.EngineConfig, logger *log.Logger) (winningTeam, deals int) {
	clock := quartz.NewReal()
	done := make(chan int, 1)
	dealCount := 0

	sink := engine.SinkFunc(func(ev engine.Event) {
		switch ev.Kind {
		case engine.EventDealFinished:
			dealCount++
			logger.Debug("deal finished", "placements", ev.Placements)
		case engine.EventMatchFinished:
			done <- ev.WinningTeam
		default:
			logger.Debug("event", "kind", ev.Kind, "seat", ev.Seat)
		}
	})

	e := engine.New(seed, clock, sink)
	e.SetStartingLevel(startLevel)
	min, max := cfg.ThinkDelayBounds()
	e.SetThinkDelay(min, max)

	beater := bot.LegalMinimumBeater{}
	for s := engine.Seat(0); s < 4; s++ {
		e.SetPolicies(s, beater, beater)
	}

	e.NewMatch(seed)
	e.NewDeal()

	winningTeam = <-done
	return winningTeam, dealCount
}

func rankToken(r domain.Rank) string {
	return domain.RankToken(r)
}
