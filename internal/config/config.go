// Package config loads engine tunables — think-delay bounds, the
// starting level, and the RNG seed — the ambient, non-gameplay knobs a
// host adapter or the simulator CLI wires into a freshly constructed
// engine.Engine.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"guandan/internal/domain"
)

// EngineConfig holds the tunables a host passes to engine.New/SetThinkDelay.
type EngineConfig struct {
	// RNGSeed is the configured seed for the engine's shuffle RNG. Load
	// stores it as read (zero stays zero); the simulator CLI takes its
	// seed from its own --seed flag and does not read this field.
	RNGSeed int64 `json:"rng_seed"`

	// StartingLevel is the team level both teams begin a match at, as a
	// face rank token ("2".."A"); defaults to "2".
	StartingLevel string `json:"starting_level"`

	ThinkDelayMinMS int `json:"think_delay_min_ms"`
	ThinkDelayMaxMS int `json:"think_delay_max_ms"`
}

func defaults() EngineConfig {
	return EngineConfig{
		StartingLevel:   "2",
		ThinkDelayMinMS: 400,
		ThinkDelayMaxMS: 1500,
	}
}

var (
	cfg      EngineConfig
	loadOnce sync.Once
	loadErr  error
)

// Load reads path once per process and caches the result; a missing or
// malformed file is non-fatal — it logs through the returned error but
// Get still returns usable defaults.
func Load(path string) error {
	loadOnce.Do(func() {
		cfg = defaults()
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("config: read %s: %w", path, err)
			return
		}
		var c EngineConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("config: unmarshal %s: %w", path, err)
			return
		}
		if c.StartingLevel == "" {
			c.StartingLevel = cfg.StartingLevel
		}
		if c.ThinkDelayMinMS == 0 {
			c.ThinkDelayMinMS = cfg.ThinkDelayMinMS
		}
		if c.ThinkDelayMaxMS == 0 {
			c.ThinkDelayMaxMS = cfg.ThinkDelayMaxMS
		}
		cfg = c
	})
	return loadErr
}

// Get returns the loaded configuration, or defaults if Load was never
// called.
func Get() EngineConfig {
	if cfg == (EngineConfig{}) {
		return defaults()
	}
	return cfg
}

// ThinkDelayBounds converts the millisecond fields to time.Duration for
// engine.Engine.SetThinkDelay.
func (c EngineConfig) ThinkDelayBounds() (min, max time.Duration) {
	return time.Duration(c.ThinkDelayMinMS) * time.Millisecond, time.Duration(c.ThinkDelayMaxMS) * time.Millisecond
}

// StartingLevelRank parses StartingLevel, falling back to Rank2 if it is
// empty or unrecognized.
func (c EngineConfig) StartingLevelRank() domain.Rank {
	if r, ok := domain.ParseRankToken(c.StartingLevel); ok {
		return r
	}
	return domain.Rank2
}
