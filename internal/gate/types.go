package gate

import "github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/evidence"

// #region blocked-reason
// BlockedReason enumerates the categories that replace output with a canned refusal.
type BlockedReason string

const (
	BlockedPricing     BlockedReason = "pricing"
	BlockedGunsmithing BlockedReason = "gunsmithing"
	BlockedLegal       BlockedReason = "legal"
	BlockedSystemMeta  BlockedReason = "system_meta"
)

// BlockedReasons lists every category in scan priority order.
var BlockedReasons = []BlockedReason{
	BlockedPricing,
	BlockedGunsmithing,
	BlockedLegal,
	BlockedSystemMeta,
}

// #endregion blocked-reason

// #region reason-tags
// Reason tags appended to Result.Reasons.
const (
	reasonBlockedPrefix    = "blocked:"
	ReasonUnsourcedClaim   = "qualifier:unsourced_claim"
	ReasonGeneralUnsourced = "label:general_unsourced"
)

// BlockedReasonTag returns the Result.Reasons entry for a blocked category.
func BlockedReasonTag(r BlockedReason) string {
	return reasonBlockedPrefix + string(r)
}

// #endregion reason-tags

// #region options
// Options carries the per-request inputs that steer validation.
type Options struct {
	EvidenceMode evidence.Mode
}

// #endregion options

// #region result
// Result is the output of one PostValidate pass.
// ReplacedWithBlock is exclusive with LabelInjected and QualifierInjected.
type Result struct {
	Text              string   `json:"text"`
	Triggered         bool     `json:"triggered"`
	Reasons           []string `json:"reasons"`
	ReplacedWithBlock bool     `json:"replacedWithBlock"`
	LabelInjected     bool     `json:"labelInjected"`
	QualifierInjected bool     `json:"qualifierInjected"`
	RuleID            string   `json:"ruleId,omitempty"` // blocking rule that fired, for diagnostics
}

// #endregion result

// #region block-hit
// BlockHit identifies the first blocking rule that matched a text.
type BlockHit struct {
	Reason BlockedReason
	RuleID string
}

// #endregion block-hit
