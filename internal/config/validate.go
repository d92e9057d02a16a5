package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks structural settings that cannot fall back silently.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}
	if strings.TrimSpace(cfg.Server.SessionDB) == "" {
		return errors.New("server.session_db must be set")
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q must be json or console", cfg.Logging.Format)
	}

	if cfg.Flags.RerankCandidateLimit < minRerankCandidateLimit || cfg.Flags.RerankCandidateLimit > maxRerankCandidateLimit {
		return fmt.Errorf("flags.rerank_candidate_limit %d out of range [%d,%d]",
			cfg.Flags.RerankCandidateLimit, minRerankCandidateLimit, maxRerankCandidateLimit)
	}
	return nil
}
