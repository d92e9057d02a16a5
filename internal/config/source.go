package config

// #region source
// Source yields the configuration for the next call. Implementations read at
// call time so updated settings apply without a restart.
type Source interface {
	Current() Config
}

// StaticSource always returns the same Config.
type StaticSource struct {
	Config Config
}

func (s StaticSource) Current() Config { return s.Config }

// EnvSource overlays the environment on Base at every call.
type EnvSource struct {
	Base   Config
	Lookup LookupFunc // nil reads the process environment
}

// NewEnvSource returns an EnvSource over the defaults.
func NewEnvSource() EnvSource {
	return EnvSource{Base: Default()}
}

func (s EnvSource) Current() Config {
	cfg := s.Base
	ApplyEnv(&cfg, s.Lookup)
	Sanitize(&cfg)
	return cfg
}

// #endregion source
