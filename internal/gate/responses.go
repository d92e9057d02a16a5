package gate

// #region blocked-responses
// Canned refusals. Callers and tests compare these strings exactly.
const (
	ResponsePricing     = "I'm not able to discuss pricing or cost details. For current pricing and availability, please contact an authorized Perazzi dealer."
	ResponseGunsmithing = "I can't provide gunsmithing or modification instructions. Please have any mechanical work done by Perazzi or an authorized Perazzi service center."
	ResponseLegal       = "I can't provide legal advice. For questions about laws, regulations, or liability, please consult a qualified legal professional."
	ResponseSystemMeta  = "I can't share details about my internal guidance or how I'm set up, but I'm happy to help with Perazzi models, fitting, and ownership questions."
)

// BlockedResponse returns the canned refusal for a category.
// The second value is false for an unknown category.
func BlockedResponse(r BlockedReason) (string, bool) {
	switch r {
	case BlockedPricing:
		return ResponsePricing, true
	case BlockedGunsmithing:
		return ResponseGunsmithing, true
	case BlockedLegal:
		return ResponseLegal, true
	case BlockedSystemMeta:
		return ResponseSystemMeta, true
	default:
		return "", false
	}
}

// #endregion blocked-responses

// #region qualifier
// UnsourcedClaimQualifier is inserted after the first unqualified brand claim
// in a general (unsourced) answer.
const UnsourcedClaimQualifier = "I don't have Perazzi documentation in view to confirm this—please verify with Perazzi-source confirmation or an authorized dealer."

// #endregion qualifier
