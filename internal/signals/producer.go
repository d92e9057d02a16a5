package signals

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/archetype"
)

// #region producer
// Producer turns one user message and its page context into a raw archetype
// vector. It holds no per-turn state and is safe for concurrent use.
type Producer struct {
	tiers Tiers
}

// NewProducer creates a Producer weighting hits by tiers.
func NewProducer(tiers Tiers) *Producer {
	return &Producer{tiers: tiers}
}

// #endregion producer

// #region produce
// Produce scores input against the lexicon. A turn with no hits yields a zero
// vector and no signals; callers skip smoothing for it.
func (p *Producer) Produce(input ProduceInput) archetype.Breakdown {
	hits := Match(input)

	var b archetype.Breakdown
	if k, ok := archetype.ParseKey(strings.TrimSpace(input.Archetype)); ok {
		b.Primary = &k
	}
	if len(hits) == 0 {
		return b
	}

	b.Signals = make([]string, 0, len(hits))
	for _, h := range hits {
		b.Vector.Add(h.Archetype, p.tiers.Weight(h.Tier))
		b.Signals = append(b.Signals, h.Tag())
	}
	b.Reasoning = reasoning(b.Vector, len(hits))
	return b
}

// Match returns every lexicon and page-context hit for input in table order.
// Each entry fires at most once per turn.
func Match(input ProduceInput) []Hit {
	var hits []Hit

	for _, ph := range phrases {
		if ph.re.MatchString(input.UserText) {
			hits = append(hits, Hit{Archetype: ph.Archetype, Tier: ph.Tier, ID: ph.ID})
		}
	}
	for _, tok := range tokenize(input.UserText) {
		if kw, ok := keywords[tok]; ok {
			hits = append(hits, Hit{Archetype: kw.Archetype, Tier: kw.Tier, ID: tok})
		}
	}

	url := strings.ToLower(input.PageURL)
	if url != "" {
		for _, r := range pageRules {
			if strings.Contains(url, r.Fragment) {
				hits = append(hits, Hit{Archetype: r.Archetype, Tier: r.Tier, ID: r.ID})
			}
		}
	}
	if input.ModelSlug != "" && slugPrestige.MatchString(input.ModelSlug) {
		hits = append(hits, Hit{Archetype: archetype.Prestige, Tier: TierLight, ID: "slug_grade"})
	}
	return hits
}

// #endregion produce

// #region reasoning
func reasoning(v archetype.Vector, n int) string {
	leader, _ := archetype.PickWinnerAndRunnerUp(archetype.VectorToScores(v))
	noun := "signals"
	if n == 1 {
		noun = "signal"
	}
	return fmt.Sprintf("%d lexicon %s; strongest pull toward %s (%.2f)", n, noun, leader, v.Get(leader))
}

// #endregion reasoning
