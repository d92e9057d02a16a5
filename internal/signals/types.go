package signals

import "github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/archetype"

// #region tiers
// Tier grades how strongly a lexicon hit indicates its archetype.
type Tier string

const (
	TierStrong Tier = "strong"
	TierMedium Tier = "medium"
	TierLight  Tier = "light"
)

// Tiers maps each tier to the weight a hit adds to the raw vector.
type Tiers struct {
	Strong float64
	Medium float64
	Light  float64
}

// DefaultTiers returns the stock boost weights.
func DefaultTiers() Tiers {
	return Tiers{
		Strong: 3,
		Medium: 1.5,
		Light:  0.5,
	}
}

// Weight returns the boost for tier; unknown tiers weigh nothing.
func (t Tiers) Weight(tier Tier) float64 {
	switch tier {
	case TierStrong:
		return t.Strong
	case TierMedium:
		return t.Medium
	case TierLight:
		return t.Light
	}
	return 0
}

// #endregion tiers

// #region input
// ProduceInput is the per-turn text and page context the producer reads.
type ProduceInput struct {
	UserText  string
	PageURL   string
	ModelSlug string
	Archetype string // explicit caller override, may be empty
}

// #endregion input

// #region hit
// Hit is one matched lexicon or page-context entry.
type Hit struct {
	Archetype archetype.Key
	Tier      Tier
	ID        string
}

// Tag renders the hit as "<Archetype>:<tier>:<id>".
func (h Hit) Tag() string {
	return string(h.Archetype) + ":" + string(h.Tier) + ":" + h.ID
}

// #endregion hit
