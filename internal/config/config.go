// Package config loads muse's configuration from TOML files and resolves
// the per-user data directory the catalogue and supervisor live under.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	appName        = "muse"
	catalogueFile  = "muse.db"
	identityFile   = "muse.pid"
	configFileName = "config.toml"
)

// WeightPair is a (listen_weight, skip_weight) pair for one scoring regime.
type WeightPair struct {
	Listen float64 `koanf:"listen"`
	Skip   float64 `koanf:"skip"`
}

// ScoringConfig mirrors ScoringContext (spec.md §4.3). Zero values mean
// "not set"; Resolve fills in the documented defaults.
type ScoringConfig struct {
	TouchThreshold   int        `koanf:"touch_threshold"`
	SmallThreshold   int        `koanf:"small_threshold"`
	BigThreshold     int        `koanf:"big_threshold"`
	Early            WeightPair `koanf:"early"`
	Learning         WeightPair `koanf:"learning"`
	Stable           WeightPair `koanf:"stable"`
	DampeningBase    float64    `koanf:"dampening_base"`
	LoveMultiplier   float64    `koanf:"love_multiplier"`
	CorrectionFactor float64    `koanf:"correction_factor"`
}

// Resolve returns a copy with every zero field replaced by the spec's
// documented default.
func (c ScoringConfig) Resolve() ScoringConfig {
	if c.TouchThreshold == 0 {
		c.TouchThreshold = 30
	}
	if c.SmallThreshold == 0 {
		c.SmallThreshold = 5
	}
	if c.BigThreshold == 0 {
		c.BigThreshold = 15
	}
	if c.Early == (WeightPair{}) {
		c.Early = WeightPair{Listen: 4, Skip: 1}
	}
	if c.Learning == (WeightPair{}) {
		c.Learning = WeightPair{Listen: 2, Skip: 2}
	}
	if c.Stable == (WeightPair{}) {
		c.Stable = WeightPair{Listen: 1, Skip: 4}
	}
	if c.DampeningBase == 0 {
		c.DampeningBase = 1.2
	}
	if c.LoveMultiplier == 0 {
		c.LoveMultiplier = 2.0
	}
	if c.CorrectionFactor == 0 {
		c.CorrectionFactor = 1.1
	}
	return c
}

// QueueConfig mirrors QueueConfig (spec.md §4.4).
type QueueConfig struct {
	MinLength        int     `koanf:"min_length"`
	MaxLength        int     `koanf:"max_length"`
	DiversityFactor  float64 `koanf:"diversity_factor"`
	ExplorationRatio float64 `koanf:"exploration_ratio"`
}

// Resolve returns a copy with zero fields replaced by spec defaults.
func (c QueueConfig) Resolve() QueueConfig {
	if c.MinLength == 0 {
		c.MinLength = 9
	}
	if c.MaxLength == 0 {
		c.MaxLength = 27
	}
	if c.DiversityFactor == 0 {
		c.DiversityFactor = 0.7
	}
	if c.ExplorationRatio == 0 {
		c.ExplorationRatio = 0.3
	}
	return c
}

// TrackerConfig holds BehaviorTracker timing thresholds (spec.md §4.6).
type TrackerConfig struct {
	ListenRatio       float64 `koanf:"listen_ratio"`        // fraction of duration that counts as a listen
	MinListenSeconds  float64 `koanf:"min_listen_seconds"`  // floor used when duration is unknown
	TouchDelaySeconds float64 `koanf:"touch_delay_seconds"` // elapsed time before a same-song touch is tracked
	RetryDelaySeconds float64 `koanf:"retry_delay_seconds"` // sleep between iterations after a non-fatal error
}

// Resolve returns a copy with zero fields replaced by spec defaults.
func (c TrackerConfig) Resolve() TrackerConfig {
	if c.ListenRatio == 0 {
		c.ListenRatio = 0.8
	}
	if c.MinListenSeconds == 0 {
		c.MinListenSeconds = 30
	}
	if c.TouchDelaySeconds == 0 {
		c.TouchDelaySeconds = 3
	}
	if c.RetryDelaySeconds == 0 {
		c.RetryDelaySeconds = 1
	}
	return c
}

// MPDConfig holds connection settings for the MPD transport.
type MPDConfig struct {
	Address string `koanf:"address"` // host:port, default 127.0.0.1:6600
}

// Config is muse's top-level configuration.
type Config struct {
	Scoring ScoringConfig `koanf:"scoring"`
	Queue   QueueConfig   `koanf:"queue"`
	Tracker TrackerConfig `koanf:"tracker"`
	MPD     MPDConfig     `koanf:"mpd"`

	// PlayerConfigPaths overrides the default search locations for the
	// player's own config file (used by PathMapper root discovery).
	PlayerConfigPaths []string `koanf:"player_config_paths"`
}

// Load reads config.toml from the platform config directory (if present)
// and layers in any local ./config.toml, then resolves defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	for _, path := range configPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.Scoring = cfg.Scoring.Resolve()
	cfg.Queue = cfg.Queue.Resolve()
	cfg.Tracker = cfg.Tracker.Resolve()
	if cfg.MPD.Address == "" {
		cfg.MPD.Address = "127.0.0.1:6600"
	}
	for i, p := range cfg.PlayerConfigPaths {
		cfg.PlayerConfigPaths[i] = ExpandHome(p)
	}

	return cfg, nil
}

func configPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appName, configFileName))
	}
	paths = append(paths, configFileName)
	return paths
}

// DataDir returns (creating if needed) the per-user data directory muse's
// catalogue and identity file live under.
func DataDir() (string, error) {
	path, err := xdg.DataFile(filepath.Join(appName, catalogueFile))
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// CataloguePath returns the path to the SQLite catalogue file.
func CataloguePath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, catalogueFile), nil
}

// IdentityFilePath returns the path to the tracker's PID identity file.
func IdentityFilePath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, identityFile), nil
}

// ExpandHome expands a leading "~" to the user's home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
