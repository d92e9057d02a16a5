package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// #region new
// New builds a zap logger. JSON uses the production config, console the
// development config; both honour opts.Level.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		var err error
		if level, err = zapcore.ParseLevel(opts.Level); err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
	}

	var cfg zap.Config
	switch opts.Format {
	case "", "json":
		cfg = zap.NewProductionConfig()
	case "console":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("logging: unknown format %q", opts.Format)
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build: %w", err)
	}
	return logger, nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// #endregion new

// #region log-turn
// LogTurn writes one structured line summarising rec.
func LogTurn(l *zap.Logger, rec TurnRecord) {
	OrNop(l).Info("turn",
		zap.String("turn_id", rec.TurnID),
		zap.String("session_id", rec.SessionID),
		zap.String("version_id", rec.VersionID),
		zap.Int("user_text_len", rec.UserTextLen),
		zap.String("retrieve_reason", rec.RetrieveReason),
		zap.Int("chunk_count", rec.ChunkCount),
		zap.String("sot_reason", rec.SotReason),
		zap.String("evidence_mode", rec.EvidenceMode),
		zap.Strings("reasons", rec.Reasons),
		zap.Bool("replaced_with_block", rec.ReplacedWithBlock),
		zap.Bool("label_injected", rec.LabelInjected),
		zap.Bool("qualifier_injected", rec.QualifierInjected),
		zap.String("winner", rec.Winner),
		zap.String("runner_up", rec.RunnerUp),
		zap.String("primary", rec.Primary),
		zap.Bool("smoothed", rec.Smoothed),
		zap.Bool("eval_passed", rec.EvalPassed),
	)
}

// #endregion log-turn
