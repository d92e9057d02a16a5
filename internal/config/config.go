package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/archetype"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/signals"
)

// #region types
// Config is the explicit configuration handed to every pipeline entry point.
// Core packages read it; they never consult the environment themselves.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Flags     FlagsConfig     `yaml:"flags"`
	Archetype ArchetypeConfig `yaml:"archetype"`
	Boost     BoostConfig     `yaml:"boost"`
}

type ServerConfig struct {
	Addr             string `yaml:"addr"`              // gRPC listen address, e.g. ":50061"
	SessionDB        string `yaml:"session_db"`        // SQLite path for smoothed vectors
	CollaboratorAddr string `yaml:"collaborator_addr"` // search + generation service; empty disables Turn
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | console
}

type FlagsConfig struct {
	EnableRerank         bool `yaml:"enable_rerank"`
	RerankCandidateLimit int  `yaml:"rerank_candidate_limit"`
	ModelsRegistrySot    bool `yaml:"models_registry_sot"`
	RetrievalTopK        int  `yaml:"retrieval_top_k"`
}

type ArchetypeConfig struct {
	SmoothingFactor float64 `yaml:"smoothing_factor"`
	ConfidenceMin   float64 `yaml:"confidence_min"` // min winner-runnerUp margin for a primary archetype
}

type BoostConfig struct {
	Strong float64 `yaml:"strong"`
	Medium float64 `yaml:"medium"`
	Light  float64 `yaml:"light"`
}

// Tiers converts the boost settings for the signal producer.
func (b BoostConfig) Tiers() signals.Tiers {
	return signals.Tiers{Strong: b.Strong, Medium: b.Medium, Light: b.Light}
}

// #endregion types

// #region defaults
const (
	DefaultAddr                 = ":50061"
	DefaultSessionDB            = "perazzi-sessions.db"
	DefaultRerankCandidateLimit = 60
	DefaultRetrievalTopK        = 12
	DefaultConfidenceMin        = 0.08

	minRerankCandidateLimit = 1
	maxRerankCandidateLimit = 200
)

// Default returns the documented defaults.
func Default() Config {
	tiers := signals.DefaultTiers()
	return Config{
		Server: ServerConfig{
			Addr:      DefaultAddr,
			SessionDB: DefaultSessionDB,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Flags: FlagsConfig{
			EnableRerank:         false,
			RerankCandidateLimit: DefaultRerankCandidateLimit,
			ModelsRegistrySot:    true,
			RetrievalTopK:        DefaultRetrievalTopK,
		},
		Archetype: ArchetypeConfig{
			SmoothingFactor: archetype.DefaultSmoothingFactor,
			ConfidenceMin:   DefaultConfidenceMin,
		},
		Boost: BoostConfig{
			Strong: tiers.Strong,
			Medium: tiers.Medium,
			Light:  tiers.Light,
		},
	}
}

// #endregion defaults

// #region load
// Load reads a YAML file over the defaults. Keys absent from the file keep
// their default. A missing file yields the defaults and no error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve layers defaults, the optional YAML file at path and the environment,
// then replaces out-of-range numbers with their defaults.
func Resolve(path string, lookup LookupFunc) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return Config{}, err
		}
	}
	ApplyEnv(&cfg, lookup)
	Sanitize(&cfg)
	return cfg, nil
}

// #endregion load

// #region sanitize
// Sanitize replaces misconfigured numeric values with their documented
// defaults. It never fails; structural problems are Validate's concern.
func Sanitize(cfg *Config) {
	def := Default()
	if !archetype.ValidSmoothingFactor(cfg.Archetype.SmoothingFactor) {
		cfg.Archetype.SmoothingFactor = def.Archetype.SmoothingFactor
	}
	if !inUnitRange(cfg.Archetype.ConfidenceMin) {
		cfg.Archetype.ConfidenceMin = def.Archetype.ConfidenceMin
	}
	if cfg.Flags.RerankCandidateLimit < minRerankCandidateLimit || cfg.Flags.RerankCandidateLimit > maxRerankCandidateLimit {
		cfg.Flags.RerankCandidateLimit = def.Flags.RerankCandidateLimit
	}
	if cfg.Flags.RetrievalTopK < 1 {
		cfg.Flags.RetrievalTopK = def.Flags.RetrievalTopK
	}
	if !validBoost(cfg.Boost.Strong) {
		cfg.Boost.Strong = def.Boost.Strong
	}
	if !validBoost(cfg.Boost.Medium) {
		cfg.Boost.Medium = def.Boost.Medium
	}
	if !validBoost(cfg.Boost.Light) {
		cfg.Boost.Light = def.Boost.Light
	}
}

// #endregion sanitize
