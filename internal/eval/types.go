package eval

// #region eval-config
// EvalConfig holds thresholds for post-smoothing validation.
type EvalConfig struct {
	SumTolerance float64 // reject if |sum-1| exceeds this
	MaxDrift     float64 // warn if L1 distance from previous exceeds this
}

// DefaultEvalConfig returns the stock thresholds.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		SumTolerance: 1e-6,
		MaxDrift:     0.5,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of post-smoothing validation.
type EvalResult struct {
	Passed  bool         `json:"passed"`
	Metrics []EvalMetric `json:"metrics"`
	Reason  string       `json:"reason"`
}

// #endregion eval-result
