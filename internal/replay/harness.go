package replay

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/archetype"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/config"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/orchestrator"
)

// #region types

// ReplayResult captures the outcome of replaying one recorded turn.
type ReplayResult struct {
	TurnID            string           `json:"turn_id"`
	RetrieveReason    string           `json:"retrieve_reason"`
	Blocked           bool             `json:"blocked"`
	LabelInjected     bool             `json:"label_injected"`
	QualifierInjected bool             `json:"qualifier_injected"`
	Smoothed          bool             `json:"smoothed"`
	Winner            archetype.Key    `json:"winner"`
	Primary           *archetype.Key   `json:"primary"`
	Vector            archetype.Vector `json:"vector"` // carried into the next turn
	Text              string           `json:"text"`
	Mismatches        []string         `json:"mismatches,omitempty"`
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalTurns  int              `json:"total_turns"`
	Blocked     int              `json:"blocked"`
	Labeled     int              `json:"labeled"`
	Qualified   int              `json:"qualified"`
	Smoothed    int              `json:"smoothed"`
	Mismatches  int              `json:"mismatches"`
	FinalVector archetype.Vector `json:"final_vector"`
}

// #endregion types

// #region replay

// Replay runs every fixture turn through a stateless pipeline. The recorded
// model output stands in for generation, and each turn's smoothed vector is
// handed to the next turn as context, the way a chat client would.
func Replay(ctx context.Context, f *Fixture, logger *zap.Logger) ([]ReplayResult, error) {
	var raw string
	gen := orchestrator.GeneratorFunc(func(context.Context, orchestrator.GenerateRequest) (string, error) {
		return raw, nil
	})
	p, err := orchestrator.New(config.StaticSource{Config: f.Config.ToConfig()}, orchestrator.Deps{
		Generator: gen,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("replay pipeline: %w", err)
	}

	current := archetype.NeutralVector()
	if f.StartVector != nil {
		current = archetype.NormalizeVector(*f.StartVector)
	}

	results := make([]ReplayResult, 0, len(f.Turns))
	for _, turn := range f.Turns {
		raw = turn.RawOutput
		vec := current
		res, err := p.Turn(ctx, orchestrator.TurnInput{
			UserText: turn.UserText,
			Context: orchestrator.TurnContext{
				PageURL:         turn.PageURL,
				ModelSlug:       turn.ModelSlug,
				Archetype:       turn.Archetype,
				ArchetypeVector: &vec,
			},
			EvidenceMode: turn.EvidenceMode,
		})
		if err != nil {
			return results, fmt.Errorf("replay turn %s: %w", turn.TurnID, err)
		}

		winner, _ := archetype.PickWinnerAndRunnerUp(res.Classification.ArchetypeScores)
		r := ReplayResult{
			TurnID:            turn.TurnID,
			RetrieveReason:    res.Retrieval.Decision.Reason,
			Blocked:           res.Validation.ReplacedWithBlock,
			LabelInjected:     res.Validation.LabelInjected,
			QualifierInjected: res.Validation.QualifierInjected,
			Smoothed:          res.Smoothed,
			Winner:            winner,
			Primary:           res.Classification.Archetype,
			Vector:            res.Vector,
			Text:              res.Text,
		}
		r.Mismatches = compare(turn.Expect, r)
		results = append(results, r)
		current = res.Vector
	}
	return results, nil
}

// compare lists every expectation the result does not meet.
func compare(want FixtureExpect, got ReplayResult) []string {
	var out []string
	if want.RetrieveReason != "" && want.RetrieveReason != got.RetrieveReason {
		out = append(out, fmt.Sprintf("retrieve_reason: want %s, got %s", want.RetrieveReason, got.RetrieveReason))
	}
	checkBool := func(name string, want *bool, got bool) {
		if want != nil && *want != got {
			out = append(out, fmt.Sprintf("%s: want %t, got %t", name, *want, got))
		}
	}
	checkBool("blocked", want.Blocked, got.Blocked)
	checkBool("label_injected", want.LabelInjected, got.LabelInjected)
	checkBool("qualifier_injected", want.QualifierInjected, got.QualifierInjected)
	if want.Winner != "" {
		if k, ok := archetype.ParseKey(want.Winner); !ok || k != got.Winner {
			out = append(out, fmt.Sprintf("winner: want %s, got %s", want.Winner, got.Winner))
		}
	}
	if want.Primary != nil {
		gotPrimary := ""
		if got.Primary != nil {
			gotPrimary = string(*got.Primary)
		}
		wantPrimary := *want.Primary
		if k, ok := archetype.ParseKey(wantPrimary); ok {
			wantPrimary = string(k)
		}
		if wantPrimary != gotPrimary {
			out = append(out, fmt.Sprintf("primary: want %q, got %q", wantPrimary, gotPrimary))
		}
	}
	return out
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult) ReplaySummary {
	s := ReplaySummary{
		TotalTurns:  len(results),
		FinalVector: archetype.NeutralVector(),
	}
	for _, r := range results {
		if r.Blocked {
			s.Blocked++
		}
		if r.LabelInjected {
			s.Labeled++
		}
		if r.QualifierInjected {
			s.Qualified++
		}
		if r.Smoothed {
			s.Smoothed++
		}
		s.Mismatches += len(r.Mismatches)
	}
	if len(results) > 0 {
		s.FinalVector = results[len(results)-1].Vector
	}
	return s
}

// #endregion replay
