package archetype

import "math"

// #region neutral
// uniformWeight is the neutral per-persona weight (1 / len(Keys)).
const uniformWeight = 0.2

// NeutralVector is the session starting point: equal weight on every persona.
func NeutralVector() Vector {
	return Vector{
		Loyalist: uniformWeight,
		Prestige: uniformWeight,
		Analyst:  uniformWeight,
		Achiever: uniformWeight,
		Legacy:   uniformWeight,
	}
}

// UniformScores is the fallback distribution.
func UniformScores() Scores {
	s := make(Scores, len(Keys))
	for _, k := range Keys {
		s[k] = uniformWeight
	}
	return s
}

// #endregion neutral

// #region conversions
// VectorFromMap reads a loosely-typed vector (lower-case or canonical keys).
// Missing or unknown fields are treated as zero.
func VectorFromMap(m map[string]float64) Vector {
	var v Vector
	for name, x := range m {
		if k, ok := ParseKey(name); ok {
			v.Set(k, x)
		}
	}
	return v
}

// VectorToScores maps the lower-case vector fields onto canonical score keys.
func VectorToScores(v Vector) Scores {
	s := make(Scores, len(Keys))
	for _, k := range Keys {
		s[k] = v.Get(k)
	}
	return s
}

// ScoresToVector is the inverse of VectorToScores; missing keys become zero.
func ScoresToVector(s Scores) Vector {
	var v Vector
	for _, k := range Keys {
		v.Set(k, s[k])
	}
	return v
}

// #endregion conversions

// #region normalize
// NormalizeScoresOrFallback rescales scores to sum to 1. Negative and
// non-finite entries count as zero; when nothing positive remains the uniform
// distribution is returned.
func NormalizeScoresOrFallback(s Scores) Scores {
	var sum float64
	for _, k := range Keys {
		sum += usable(s[k])
	}
	if sum <= 0 || math.IsInf(sum, 0) || math.IsNaN(sum) {
		return UniformScores()
	}
	out := make(Scores, len(Keys))
	for _, k := range Keys {
		out[k] = usable(s[k]) / sum
	}
	return out
}

// NormalizeVector is NormalizeScoresOrFallback over a Vector.
func NormalizeVector(v Vector) Vector {
	return ScoresToVector(NormalizeScoresOrFallback(VectorToScores(v)))
}

func usable(x float64) float64 {
	if x <= 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

// #endregion normalize

// #region winner
// PickWinnerAndRunnerUp scans Keys once. The first key to reach a value keeps
// it, so ties resolve in enumeration order.
func PickWinnerAndRunnerUp(s Scores) (winner, runnerUp Key) {
	best, second := math.Inf(-1), math.Inf(-1)
	for _, k := range Keys {
		x := s[k]
		switch {
		case x > best:
			runnerUp, second = winner, best
			winner, best = k, x
		case x > second:
			runnerUp, second = k, x
		}
	}
	return winner, runnerUp
}

// Margin returns score(winner) - score(runnerUp).
func Margin(s Scores, winner, runnerUp Key) float64 {
	return s[winner] - s[runnerUp]
}

// #endregion winner

// #region classification
// BuildDecision returns nil when the breakdown carries neither signals nor
// reasoning, so callers do not emit empty diagnostics.
func BuildDecision(b Breakdown, winner, runnerUp Key) *Decision {
	if len(b.Signals) == 0 && b.Reasoning == "" {
		return nil
	}
	return &Decision{
		Winner:    winner,
		RunnerUp:  runnerUp,
		Signals:   append([]string(nil), b.Signals...),
		Reasoning: b.Reasoning,
	}
}

// BuildClassification derives the per-turn read model from a breakdown.
func BuildClassification(b Breakdown) Classification {
	scores := NormalizeScoresOrFallback(VectorToScores(b.Vector))
	winner, runnerUp := PickWinnerAndRunnerUp(scores)

	var primary *Key
	if b.Primary != nil {
		if k, ok := ParseKey(string(*b.Primary)); ok {
			primary = &k
		}
	}

	return Classification{
		Archetype:       primary,
		ArchetypeScores: scores,
		Decision:        BuildDecision(b, winner, runnerUp),
	}
}

// #endregion classification
