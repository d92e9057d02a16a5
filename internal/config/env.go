package config

import (
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/archetype"
)

// #region keys
const (
	EnvSmoothingFactor      = "PERAZZI_ARCHETYPE_SMOOTHING"
	EnvConfidenceMin        = "PERAZZI_ARCHETYPE_CONFIDENCE_MIN"
	EnvEnableRerank         = "PERAZZI_ENABLE_RERANK"
	EnvRerankCandidateLimit = "PERAZZI_RERANK_CANDIDATE_LIMIT"
	EnvModelsRegistrySot    = "PERAZZI_MODELS_REGISTRY_SOT"
	EnvBoostStrong          = "PERAZZI_BOOST_TIER_STRONG"
	EnvBoostMedium          = "PERAZZI_BOOST_TIER_MEDIUM"
	EnvBoostLight           = "PERAZZI_BOOST_TIER_LIGHT"
	EnvGRPCAddr             = "PERAZZI_GRPC_ADDR"
	EnvSessionDB            = "PERAZZI_SESSION_DB"
	EnvLogLevel             = "PERAZZI_LOG_LEVEL"
	EnvLogFormat            = "PERAZZI_LOG_FORMAT"
	EnvCollaboratorAddr     = "PERAZZI_COLLABORATOR_ADDR"
)

// #endregion keys

// #region apply
// LookupFunc has the shape of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// MapLookup serves keys from m.
func MapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// ApplyEnv overlays set environment keys on cfg. A set but malformed or
// out-of-range value yields the key's documented default. nil lookup reads
// the process environment.
func ApplyEnv(cfg *Config, lookup LookupFunc) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	def := Default()

	if raw, ok := get(lookup, EnvSmoothingFactor); ok {
		cfg.Archetype.SmoothingFactor = archetype.ParseSmoothingFactor(raw)
	}
	if raw, ok := get(lookup, EnvConfidenceMin); ok {
		cfg.Archetype.ConfidenceMin = parseFloat(raw, def.Archetype.ConfidenceMin, inUnitRange)
	}
	if raw, ok := get(lookup, EnvEnableRerank); ok {
		cfg.Flags.EnableRerank = ParseBool(raw, def.Flags.EnableRerank)
	}
	if raw, ok := get(lookup, EnvRerankCandidateLimit); ok {
		cfg.Flags.RerankCandidateLimit = parseInt(raw, def.Flags.RerankCandidateLimit, minRerankCandidateLimit, maxRerankCandidateLimit)
	}
	if raw, ok := get(lookup, EnvModelsRegistrySot); ok {
		cfg.Flags.ModelsRegistrySot = ParseBool(raw, def.Flags.ModelsRegistrySot)
	}
	if raw, ok := get(lookup, EnvBoostStrong); ok {
		cfg.Boost.Strong = parseFloat(raw, def.Boost.Strong, validBoost)
	}
	if raw, ok := get(lookup, EnvBoostMedium); ok {
		cfg.Boost.Medium = parseFloat(raw, def.Boost.Medium, validBoost)
	}
	if raw, ok := get(lookup, EnvBoostLight); ok {
		cfg.Boost.Light = parseFloat(raw, def.Boost.Light, validBoost)
	}
	if raw, ok := get(lookup, EnvGRPCAddr); ok {
		cfg.Server.Addr = raw
	}
	if raw, ok := get(lookup, EnvSessionDB); ok {
		cfg.Server.SessionDB = raw
	}
	if raw, ok := get(lookup, EnvCollaboratorAddr); ok {
		cfg.Server.CollaboratorAddr = raw
	}
	if raw, ok := get(lookup, EnvLogLevel); ok {
		cfg.Logging.Level = strings.ToLower(raw)
	}
	if raw, ok := get(lookup, EnvLogFormat); ok {
		cfg.Logging.Format = strings.ToLower(raw)
	}
}

// FromEnv is Resolve without a config file.
func FromEnv(lookup LookupFunc) Config {
	cfg := Default()
	ApplyEnv(&cfg, lookup)
	Sanitize(&cfg)
	return cfg
}

// get treats blank values as unset.
func get(lookup LookupFunc, key string) (string, bool) {
	raw, ok := lookup(key)
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}

// #endregion apply

// #region parsing
// ParseBool accepts 1/true/yes/on and 0/false/no/off, case-insensitively.
// Anything else returns def.
func ParseBool(raw string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func parseFloat(raw string, def float64, valid func(float64) bool) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !valid(v) {
		return def
	}
	return v
}

func parseInt(raw string, def, lo, hi int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return def
	}
	return v
}

func inUnitRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

func validBoost(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// #endregion parsing
