package eval

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/archetype"
)

// #region eval-harness
// EvalHarness checks a freshly smoothed archetype vector before the caller
// persists it. A failed result means the caller keeps the previous vector.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run validates next against the distribution invariants. previous only
// feeds the informational drift metric.
func (h *EvalHarness) Run(previous, next archetype.Vector) EvalResult {
	var metrics []EvalMetric
	var failReasons []string

	// 1. Every component finite
	nonFinite := 0
	for _, k := range archetype.Keys {
		x := next.Get(k)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			nonFinite++
		}
	}
	metrics = append(metrics, EvalMetric{Name: "finite", Value: float64(nonFinite), Pass: nonFinite == 0})
	if nonFinite > 0 {
		failReasons = append(failReasons, fmt.Sprintf("%d non-finite components", nonFinite))
	}

	// 2. No negative weight
	minVal := math.Inf(1)
	for _, k := range archetype.Keys {
		minVal = math.Min(minVal, next.Get(k))
	}
	minPass := !(minVal < 0)
	metrics = append(metrics, EvalMetric{Name: "min_component", Value: minVal, Pass: minPass})
	if !minPass {
		failReasons = append(failReasons, fmt.Sprintf("negative component %.4f", minVal))
	}

	// 3. Sums to one
	sum := vectorSum(next)
	sumPass := math.Abs(sum-1) <= h.config.SumTolerance
	metrics = append(metrics, EvalMetric{Name: "sum", Value: sum, Pass: sumPass})
	if !sumPass {
		failReasons = append(failReasons, fmt.Sprintf("sum %.6f deviates from 1 by more than %g", sum, h.config.SumTolerance))
	}

	// 4. Drift: informational only, never fails
	drift := l1Distance(previous, next)
	metrics = append(metrics, EvalMetric{Name: "drift", Value: drift, Pass: drift <= h.config.MaxDrift})

	reason := "all checks passed"
	if len(failReasons) > 0 {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return EvalResult{
		Passed:  len(failReasons) == 0,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness

// #region helpers
func vectorSum(v archetype.Vector) float64 {
	var sum float64
	for _, k := range archetype.Keys {
		sum += v.Get(k)
	}
	return sum
}

func l1Distance(a, b archetype.Vector) float64 {
	var d float64
	for _, k := range archetype.Keys {
		d += math.Abs(a.Get(k) - b.Get(k))
	}
	return d
}

// #endregion helpers
