package archetype

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

// #region key-tests
func TestParseKey(t *testing.T) {
	cases := []struct {
		in   string
		want Key
		ok   bool
	}{
		{"Loyalist", Loyalist, true},
		{"prestige", Prestige, true},
		{"Legacy", Legacy, true},
		{"LEGACY", "", false},
		{"collector", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseKey(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

// #endregion key-tests

// #region conversion-tests
func TestVectorToScores_MapsLowerCaseFields(t *testing.T) {
	v := Vector{Loyalist: 1, Analyst: 2.5}
	got := VectorToScores(v)
	want := Scores{Loyalist: 1, Prestige: 0, Analyst: 2.5, Achiever: 0, Legacy: 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("scores mismatch (-want +got):\n%s", diff)
	}
}

func TestVectorFromMap_MissingFieldsAreZero(t *testing.T) {
	v := VectorFromMap(map[string]float64{"prestige": 0.4, "Legacy": 0.1, "mystery": 9})
	assert.Equal(t, Vector{Prestige: 0.4, Legacy: 0.1}, v)
}

func TestVector_JSONUsesLowerCaseFields(t *testing.T) {
	raw, err := json.Marshal(Vector{Loyalist: 0.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"loyalist":0.5,"prestige":0,"analyst":0,"achiever":0,"legacy":0}`, string(raw))
}

// #endregion conversion-tests

// #region normalize-tests
func TestNormalizeScoresOrFallback_AllZeroIsUniform(t *testing.T) {
	got := NormalizeScoresOrFallback(Scores{Loyalist: 0, Prestige: 0, Analyst: 0, Achiever: 0, Legacy: 0})
	for _, k := range Keys {
		assert.Equal(t, 0.2, got[k], "key %s", k)
	}
}

func TestNormalizeScoresOrFallback_Rescales(t *testing.T) {
	got := NormalizeScoresOrFallback(Scores{Loyalist: 1, Analyst: 3})
	want := Scores{Loyalist: 0.25, Prestige: 0, Analyst: 0.75, Achiever: 0, Legacy: 0}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Fatalf("normalized mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeScoresOrFallback_IgnoresUnusableEntries(t *testing.T) {
	got := NormalizeScoresOrFallback(Scores{
		Loyalist: -4,
		Prestige: math.NaN(),
		Analyst:  math.Inf(1),
		Achiever: 2,
	})
	assert.Equal(t, 1.0, got[Achiever])
	assert.Equal(t, 0.0, got[Loyalist])
	assert.Equal(t, 0.0, got[Prestige])
	assert.Equal(t, 0.0, got[Analyst])
}

func TestNormalizeScoresOrFallback_AllNegativeIsUniform(t *testing.T) {
	got := NormalizeScoresOrFallback(Scores{Loyalist: -1, Legacy: -2})
	assert.Equal(t, UniformScores(), got)
}

func TestNormalizeVector_SumsToOne(t *testing.T) {
	v := NormalizeVector(Vector{Loyalist: 3, Prestige: 1.5, Legacy: 0.5})
	var sum float64
	for _, k := range Keys {
		sum += v.Get(k)
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.InDelta(t, 0.6, v.Loyalist, 1e-12)
}

// #endregion normalize-tests

// #region winner-tests
func TestPickWinnerAndRunnerUp_TieBreakFollowsEnumerationOrder(t *testing.T) {
	winner, runnerUp := PickWinnerAndRunnerUp(Scores{
		Loyalist: 0.3, Prestige: 0.3, Analyst: 0.1, Achiever: 0.2, Legacy: 0.1,
	})
	assert.Equal(t, Loyalist, winner)
	assert.Equal(t, Prestige, runnerUp)
}

func TestPickWinnerAndRunnerUp_Cases(t *testing.T) {
	cases := []struct {
		name     string
		scores   Scores
		winner   Key
		runnerUp Key
	}{
		{"clear winner last", Scores{Loyalist: 0.1, Prestige: 0.1, Analyst: 0.1, Achiever: 0.2, Legacy: 0.5}, Legacy, Achiever},
		{"runner-up before winner", Scores{Loyalist: 0.4, Prestige: 0.1, Analyst: 0.5}, Analyst, Loyalist},
		{"uniform", UniformScores(), Loyalist, Prestige},
		{"tie for second", Scores{Loyalist: 0.1, Prestige: 0.2, Analyst: 0.2, Achiever: 0.5}, Achiever, Prestige},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, r := PickWinnerAndRunnerUp(tc.scores)
			assert.Equal(t, tc.winner, w)
			assert.Equal(t, tc.runnerUp, r)
		})
	}
}

// #endregion winner-tests

// #region classification-tests
func TestBuildDecision_NilWithoutDiagnostics(t *testing.T) {
	assert.Nil(t, BuildDecision(Breakdown{Vector: NeutralVector()}, Loyalist, Prestige))
}

func TestBuildDecision_CarriesSignalsAndReasoning(t *testing.T) {
	d := BuildDecision(Breakdown{Signals: []string{"Analyst:strong:specs"}}, Analyst, Legacy)
	require.NotNil(t, d)
	assert.Equal(t, Analyst, d.Winner)
	assert.Equal(t, Legacy, d.RunnerUp)
	assert.Equal(t, []string{"Analyst:strong:specs"}, d.Signals)
}

func TestBuildClassification(t *testing.T) {
	primary := Prestige
	c := BuildClassification(Breakdown{
		Primary:   &primary,
		Vector:    Vector{Prestige: 3, Legacy: 1},
		Reasoning: "engraving and bespoke options",
	})
	require.NotNil(t, c.Archetype)
	assert.Equal(t, Prestige, *c.Archetype)
	assert.InDelta(t, 0.75, c.ArchetypeScores[Prestige], 1e-12)
	require.NotNil(t, c.Decision)
	assert.Equal(t, Prestige, c.Decision.Winner)
	assert.Equal(t, Legacy, c.Decision.RunnerUp)
}

func TestBuildClassification_EmptyBreakdown(t *testing.T) {
	c := BuildClassification(Breakdown{})
	assert.Nil(t, c.Archetype)
	assert.Nil(t, c.Decision)
	assert.Equal(t, UniformScores(), c.ArchetypeScores)

	raw, err := json.Marshal(c)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "archetypeDecision")
	assert.Contains(t, string(raw), `"archetype":null`)
}

func TestBuildClassification_InvalidPrimaryDropped(t *testing.T) {
	bogus := Key("Collector")
	c := BuildClassification(Breakdown{Primary: &bogus})
	assert.Nil(t, c.Archetype)
}

// #endregion classification-tests

// #region smoothing-tests
func TestSmoothUpdate_AlphaOneKeepsPrevious(t *testing.T) {
	neutral := NeutralVector()
	next := SmoothUpdate(neutral, Vector{Prestige: 0.8, Legacy: 0.2}, 1)
	assert.Equal(t, neutral.Prestige, next.Prestige)
	assert.Equal(t, neutral, next)
}

func TestSmoothUpdate_AlphaZeroTakesDelta(t *testing.T) {
	next := SmoothUpdate(NeutralVector(), Vector{Prestige: 0.8, Legacy: 0.2}, 0)
	assert.Greater(t, next.Prestige, 0.5)
	assert.Equal(t, 0.8, next.Prestige)
}

func TestSmoothUpdate_ConvexCombination(t *testing.T) {
	next := SmoothUpdate(NeutralVector(), Vector{Analyst: 1}, 0.75)
	want := Vector{Loyalist: 0.15, Prestige: 0.15, Analyst: 0.4, Achiever: 0.15, Legacy: 0.15}
	if diff := cmp.Diff(want, next, approx); diff != "" {
		t.Fatalf("smoothed mismatch (-want +got):\n%s", diff)
	}
}

func TestSmoothUpdate_InvalidAlphaUsesDefault(t *testing.T) {
	prev, delta := NeutralVector(), Vector{Analyst: 1}
	want := SmoothUpdate(prev, delta, DefaultSmoothingFactor)
	for _, alpha := range []float64{-0.5, 1.2, math.NaN()} {
		assert.Equal(t, want, SmoothUpdate(prev, delta, alpha), "alpha %v", alpha)
	}
}

func TestParseSmoothingFactor(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"", 0.75},
		{"-0.5", 0.75},
		{"1.2", 0.75},
		{"abc", 0.75},
		{"NaN", 0.75},
		{"0", 0},
		{"1", 1},
		{" 0.6 ", 0.6},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseSmoothingFactor(tc.raw))
		})
	}
}

// #endregion smoothing-tests
