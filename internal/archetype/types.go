package archetype

// #region key
// Key names one of the five fixed personas.
type Key string

const (
	Loyalist Key = "Loyalist"
	Prestige Key = "Prestige"
	Analyst  Key = "Analyst"
	Achiever Key = "Achiever"
	Legacy   Key = "Legacy"
)

// Keys is the fixed enumeration order. Tie-breaks depend on it.
var Keys = [...]Key{Loyalist, Prestige, Analyst, Achiever, Legacy}

// ParseKey accepts canonical or lower-case names.
func ParseKey(s string) (Key, bool) {
	for _, k := range Keys {
		if s == string(k) || s == fieldName(k) {
			return k, true
		}
	}
	return "", false
}

func fieldName(k Key) string {
	switch k {
	case Loyalist:
		return "loyalist"
	case Prestige:
		return "prestige"
	case Analyst:
		return "analyst"
	case Achiever:
		return "achiever"
	case Legacy:
		return "legacy"
	}
	return ""
}

// #endregion key

// #region vector
// Vector holds one signal strength per persona, keyed by lower-case field name
// on the wire. It is either a raw per-turn delta or the smoothed session estimate.
type Vector struct {
	Loyalist float64 `json:"loyalist"`
	Prestige float64 `json:"prestige"`
	Analyst  float64 `json:"analyst"`
	Achiever float64 `json:"achiever"`
	Legacy   float64 `json:"legacy"`
}

// Get returns the component for k.
func (v Vector) Get(k Key) float64 {
	switch k {
	case Loyalist:
		return v.Loyalist
	case Prestige:
		return v.Prestige
	case Analyst:
		return v.Analyst
	case Achiever:
		return v.Achiever
	case Legacy:
		return v.Legacy
	}
	return 0
}

// Set assigns the component for k. Unknown keys are ignored.
func (v *Vector) Set(k Key, x float64) {
	switch k {
	case Loyalist:
		v.Loyalist = x
	case Prestige:
		v.Prestige = x
	case Analyst:
		v.Analyst = x
	case Achiever:
		v.Achiever = x
	case Legacy:
		v.Legacy = x
	}
}

// Add increments the component for k.
func (v *Vector) Add(k Key, x float64) {
	v.Set(k, v.Get(k)+x)
}

// IsZero reports whether every component is zero.
func (v Vector) IsZero() bool {
	return v == Vector{}
}

// #endregion vector

// #region scores
// Scores maps canonical persona names to a weight.
type Scores map[Key]float64

// #endregion scores

// #region breakdown
// Breakdown is the per-turn inference output that classification reads.
type Breakdown struct {
	Primary   *Key     `json:"primary,omitempty"`
	Vector    Vector   `json:"vector"`
	Signals   []string `json:"signals,omitempty"`
	Reasoning string   `json:"reasoning,omitempty"`
}

// #endregion breakdown

// #region decision
// Decision carries winner/runner-up diagnostics for one classification.
type Decision struct {
	Winner    Key      `json:"winner"`
	RunnerUp  Key      `json:"runnerUp"`
	Signals   []string `json:"signals,omitempty"`
	Reasoning string   `json:"reasoning,omitempty"`
}

// #endregion decision

// #region classification
// Classification is the derived read model for one turn.
type Classification struct {
	Archetype       *Key      `json:"archetype"`
	ArchetypeScores Scores    `json:"archetypeScores"`
	Decision        *Decision `json:"archetypeDecision,omitempty"`
}

// #endregion classification
