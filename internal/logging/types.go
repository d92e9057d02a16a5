package logging

import "time"

// #region turn-record
// TurnRecord captures the policy outcomes of one assistant turn.
// Serialized as JSON into turn_log.record_json for replay and audit.
// Raw user and model text are deliberately absent; lengths stand in for them.
type TurnRecord struct {
	TurnID    string    `json:"turn_id"`
	SessionID string    `json:"session_id,omitempty"`
	VersionID string    `json:"version_id,omitempty"` // committed session version, if any
	CreatedAt time.Time `json:"created_at"`

	UserTextLen int `json:"user_text_len"`
	RawTextLen  int `json:"raw_text_len"`

	// Retrieval
	RetrieveReason string `json:"retrieve_reason"`
	Retrieved      bool   `json:"retrieved"`
	ChunkCount     int    `json:"chunk_count"`
	SotReason      string `json:"sot_reason,omitempty"`
	SearchError    string `json:"search_error,omitempty"`
	EvidenceMode   string `json:"evidence_mode"`

	// Post-validation
	Reasons           []string `json:"reasons"`
	ReplacedWithBlock bool     `json:"replaced_with_block"`
	LabelInjected     bool     `json:"label_injected"`
	QualifierInjected bool     `json:"qualifier_injected"`
	RuleID            string   `json:"rule_id,omitempty"`

	// Archetype
	Winner        string   `json:"winner,omitempty"`
	RunnerUp      string   `json:"runner_up,omitempty"`
	Primary       string   `json:"primary,omitempty"`
	Signals       []string `json:"signals,omitempty"`
	Smoothed      bool     `json:"smoothed"`
	EvalPassed    bool     `json:"eval_passed"`
	EvalReason    string   `json:"eval_reason,omitempty"`
	SmoothingUsed float64  `json:"smoothing_factor"`
}

// #endregion turn-record

// #region options
// Options selects the logger's level and encoding.
type Options struct {
	Level  string // debug | info | warn | error
	Format string // json | console
}

// #endregion options
