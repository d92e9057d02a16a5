package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/archetype"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/config"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string            `json:"description"`
	StartVector *archetype.Vector `json:"start_vector,omitempty"` // nil starts neutral
	Config      FixtureConfig     `json:"config"`
	Turns       []FixtureTurn     `json:"turns"`
}

// FixtureConfig overrides selected settings on top of config.Default().
type FixtureConfig struct {
	SmoothingFactor   *float64 `json:"smoothing_factor,omitempty"`
	ConfidenceMin     *float64 `json:"confidence_min,omitempty"`
	ModelsRegistrySot *bool    `json:"models_registry_sot,omitempty"`
	BoostStrong       *float64 `json:"boost_strong,omitempty"`
	BoostMedium       *float64 `json:"boost_medium,omitempty"`
	BoostLight        *float64 `json:"boost_light,omitempty"`
}

// FixtureTurn is one recorded user message and the model output it received.
type FixtureTurn struct {
	TurnID       string        `json:"turn_id"`
	UserText     string        `json:"user_text"`
	PageURL      string        `json:"page_url,omitempty"`
	ModelSlug    string        `json:"model_slug,omitempty"`
	Archetype    string        `json:"archetype,omitempty"`
	RawOutput    string        `json:"raw_output"`
	EvidenceMode string        `json:"evidence_mode,omitempty"`
	Expect       FixtureExpect `json:"expect"`
}

// FixtureExpect lists the outcomes to check. Absent fields are not checked.
// Primary set to "" expects no primary archetype.
type FixtureExpect struct {
	RetrieveReason    string  `json:"retrieve_reason,omitempty"`
	Blocked           *bool   `json:"blocked,omitempty"`
	LabelInjected     *bool   `json:"label_injected,omitempty"`
	QualifierInjected *bool   `json:"qualifier_injected,omitempty"`
	Winner            string  `json:"winner,omitempty"`
	Primary           *string `json:"primary,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToConfig applies the overrides to the defaults. Out-of-range values fall
// back the same way they do for environment settings.
func (fc FixtureConfig) ToConfig() config.Config {
	cfg := config.Default()
	if fc.SmoothingFactor != nil {
		cfg.Archetype.SmoothingFactor = *fc.SmoothingFactor
	}
	if fc.ConfidenceMin != nil {
		cfg.Archetype.ConfidenceMin = *fc.ConfidenceMin
	}
	if fc.ModelsRegistrySot != nil {
		cfg.Flags.ModelsRegistrySot = *fc.ModelsRegistrySot
	}
	if fc.BoostStrong != nil {
		cfg.Boost.Strong = *fc.BoostStrong
	}
	if fc.BoostMedium != nil {
		cfg.Boost.Medium = *fc.BoostMedium
	}
	if fc.BoostLight != nil {
		cfg.Boost.Light = *fc.BoostLight
	}
	config.Sanitize(&cfg)
	return cfg
}

// #endregion fixture-loader
