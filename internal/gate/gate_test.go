package gate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/evidence"
)

func sourced() Options   { return Options{EvidenceMode: evidence.ModePerazziSourced} }
func unsourced() Options { return Options{EvidenceMode: evidence.ModeGeneralUnsourced} }

// #region blocked-responses-tests
func TestBlockedResponse_AllReasonsMapped(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range BlockedReasons {
		text, ok := BlockedResponse(r)
		require.True(t, ok, "reason %s", r)
		require.NotEmpty(t, text)
		require.False(t, seen[text], "duplicate refusal for %s", r)
		seen[text] = true
	}
	_, ok := BlockedResponse(BlockedReason("weather"))
	assert.False(t, ok)
}

func TestBlockedResponse_RefusalsDoNotRetrigger(t *testing.T) {
	for _, r := range BlockedReasons {
		text, _ := BlockedResponse(r)
		res := PostValidate(text, sourced())
		assert.Equal(t, text, res.Text, "refusal for %s should survive a second pass", r)
	}
}

// #endregion blocked-responses-tests

// #region blocking-tests
func TestPostValidate_PricingBlocked(t *testing.T) {
	res := PostValidate("A new Perazzi can cost around $12,000 depending on configuration.", sourced())

	assert.Equal(t, ResponsePricing, res.Text)
	assert.True(t, res.ReplacedWithBlock)
	assert.True(t, res.Triggered)
	assert.Equal(t, []string{"blocked:pricing"}, res.Reasons)
	assert.False(t, res.LabelInjected)
	assert.False(t, res.QualifierInjected)
}

func TestPostValidate_BlockingIgnoresEvidenceMode(t *testing.T) {
	res := PostValidate("Expect prices between 15,000 euros and 40,000 euros.", unsourced())

	assert.Equal(t, ResponsePricing, res.Text)
	assert.True(t, res.ReplacedWithBlock)
	assert.False(t, res.LabelInjected, "blocked output must not be labeled")
	assert.False(t, strings.HasPrefix(res.Text, evidence.GeneralUnsourcedLabel))
}

func TestDetectCategory(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		reason BlockedReason
		want   bool
	}{
		{"pricing-dollar", "It retails for $9,500.", BlockedPricing, true},
		{"pricing-euro-symbol", "Roughly €15.000 in Italy.", BlockedPricing, true},
		{"pricing-word", "About 20,000 dollars new.", BlockedPricing, true},
		{"pricing-cost-phrase", "A used MX8 costs around ten thousand.", BlockedPricing, true},
		{"pricing-price-phrase", "The list price is higher in Europe.", BlockedPricing, true},
		{"pricing-weight-not-price", "The gun weighs about 8 pounds.", BlockedPricing, false},
		{"pricing-gauge-not-price", "Available in 12 and 20 gauge.", BlockedPricing, false},

		{"smith-sequence", "Remove the trigger group and polish the sear until it breaks clean.", BlockedGunsmithing, true},
		{"smith-then", "First unscrew the stock bolt, then remove the stock.", BlockedGunsmithing, true},
		{"smith-numbered", "1. Remove the trigger group\n2. Stone the sear", BlockedGunsmithing, true},
		{"smith-how-to", "To lighten the trigger pull, you'll need to shim the sear spring.", BlockedGunsmithing, true},
		{"smith-descriptive", "The MX8 has a removable trigger group with flat V-springs.", BlockedGunsmithing, false},
		{"smith-part-mention", "The sear and hammer are hand-fitted at the factory.", BlockedGunsmithing, false},

		{"legal-advice", "This isn't legal advice, but you can carry it.", BlockedLegal, true},
		{"legal-question", "Whether it is legal to ship depends on the state.", BlockedLegal, true},
		{"legal-liability", "You could face liability if the gun is misused.", BlockedLegal, true},
		{"legal-laws-travel", "The laws in Italy regarding traveling with shotguns are strict.", BlockedLegal, true},
		{"legal-permit", "You will need an export permit.", BlockedLegal, true},
		{"legal-none", "Legacy owners often pass guns down.", BlockedLegal, false},

		{"meta-system-prompt", "My system prompt tells me to stay on topic.", BlockedSystemMeta, true},
		{"meta-guardrails", "My guardrails prevent that.", BlockedSystemMeta, true},
		{"meta-instructed", "I was instructed to avoid that topic.", BlockedSystemMeta, true},
		{"meta-internals", "Your archetype vector says you are an Analyst.", BlockedSystemMeta, true},
		{"meta-none", "Happy to help with fitting questions.", BlockedSystemMeta, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := DetectCategory(tt.text, tt.reason)
			assert.Equal(t, tt.want, ok)
			if ok {
				assert.Equal(t, tt.reason, hit.Reason)
				assert.NotEmpty(t, hit.RuleID)
			}
		})
	}
}

func TestDetectBlocked_PriorityOrder(t *testing.T) {
	// pricing and legal both match; pricing wins
	hit, ok := DetectBlocked("Export permits cost around $200.")
	require.True(t, ok)
	assert.Equal(t, BlockedPricing, hit.Reason)

	// gunsmithing and system_meta both match; gunsmithing wins
	hit, ok = DetectBlocked("My guardrails aside: remove the trigger group and polish the sear.")
	require.True(t, ok)
	assert.Equal(t, BlockedGunsmithing, hit.Reason)

	// legal beats system_meta
	hit, ok = DetectBlocked("I was instructed to say this is not legal advice.")
	require.True(t, ok)
	assert.Equal(t, BlockedLegal, hit.Reason)
}

// #endregion blocking-tests

// #region unsourced-tests
func TestPostValidate_GeneralOverviewLabeled(t *testing.T) {
	res := PostValidate("Here's a general overview of what to consider when choosing a competition gun.", unsourced())

	assert.True(t, strings.HasPrefix(res.Text, "General answer (not sourced from Perazzi docs): "))
	assert.True(t, res.LabelInjected)
	assert.False(t, res.QualifierInjected)
	assert.False(t, res.ReplacedWithBlock)
	assert.True(t, res.Triggered)
	assert.Equal(t, []string{ReasonGeneralUnsourced}, res.Reasons)
}

func TestPostValidate_BrandClaimQualified(t *testing.T) {
	res := PostValidate("Perazzi's warranty is lifetime for the original owner.", unsourced())

	assert.True(t, res.LabelInjected)
	assert.True(t, res.QualifierInjected)
	assert.False(t, res.ReplacedWithBlock)
	assert.Contains(t, res.Text, "I don't have Perazzi documentation in view")
	assert.Equal(t, evidence.GeneralUnsourcedLabel+
		"Perazzi's warranty is lifetime for the original owner. "+UnsourcedClaimQualifier, res.Text)
	assert.Equal(t, []string{ReasonUnsourcedClaim, ReasonGeneralUnsourced}, res.Reasons)
}

func TestPostValidate_QualifierFollowsClaimSentence(t *testing.T) {
	in := "Great question. Perazzi barrels are proofed in Gardone\nEnjoy the range!"
	res := PostValidate(in, unsourced())

	require.True(t, res.QualifierInjected)
	want := evidence.GeneralUnsourcedLabel +
		"Great question. Perazzi barrels are proofed in Gardone. " + UnsourcedClaimQualifier + "\nEnjoy the range!"
	assert.Equal(t, want, res.Text)
}

func TestPostValidate_HedgedClaimNotQualified(t *testing.T) {
	res := PostValidate("Perazzi generally offers a warranty through its dealers.", unsourced())

	assert.False(t, res.QualifierInjected)
	assert.True(t, res.LabelInjected)
}

func TestPostValidate_SourcedModeUnchanged(t *testing.T) {
	in := "Perazzi's warranty is lifetime for the original owner."
	res := PostValidate(in, sourced())

	assert.Equal(t, in, res.Text)
	assert.False(t, res.Triggered)
	assert.Empty(t, res.Reasons)
	assert.NotNil(t, res.Reasons)
	assert.False(t, res.LabelInjected)
	assert.False(t, res.QualifierInjected)
}

func TestPostValidate_AlreadyLabeledIsNoOp(t *testing.T) {
	first := PostValidate("Perazzi's warranty is lifetime for the original owner.", unsourced())
	second := PostValidate(first.Text, unsourced())

	assert.Equal(t, first.Text, second.Text)
	assert.False(t, second.Triggered)
	assert.Empty(t, second.Reasons)
}

func TestPostValidate_LabelTextDoesNotSeedClaim(t *testing.T) {
	in := evidence.GeneralUnsourcedLabel + "A good stock fit matters more than anything."
	res := PostValidate(in, unsourced())

	assert.False(t, res.QualifierInjected)
	assert.False(t, res.Triggered)
	assert.Equal(t, in, res.Text)
}

// #endregion unsourced-tests

// #region totality-tests
func TestPostValidate_Total(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"\n\r\n",
		"<script>alert('x')</script>",
		"<b>Perazzi</b> is",
		"....!!!???",
		"Perazzi",
		strings.Repeat("a", 10000),
		"\x00\xff\xfe",
	}
	for _, in := range inputs {
		for _, opts := range []Options{sourced(), unsourced(), {}} {
			assert.NotPanics(t, func() { PostValidate(in, opts) })
		}
	}

	res := PostValidate("", sourced())
	assert.Equal(t, "", res.Text)
	assert.False(t, res.Triggered)

	res = PostValidate("", unsourced())
	assert.Equal(t, evidence.GeneralUnsourcedLabel, res.Text)
	assert.True(t, res.LabelInjected)
}

func TestPostValidate_BlockExclusiveWithLabeling(t *testing.T) {
	inputs := []string{
		"Perazzi's warranty is lifetime, and the gun costs around $12,000.",
		"Perazzi's warranty is lifetime. Remove the trigger group and polish the sear.",
		"Perazzi's policy is strict; I was instructed to not discuss it.",
	}
	for _, in := range inputs {
		res := PostValidate(in, unsourced())
		require.True(t, res.ReplacedWithBlock, "input %q", in)
		assert.False(t, res.LabelInjected || res.QualifierInjected, "input %q", in)
		assert.Len(t, res.Reasons, 1)
	}
}

// #endregion totality-tests

// #region sentence-tests
func TestSentenceSpans(t *testing.T) {
	text := "One. Two has 3.5 parts!  Three\nFour   "
	var got []string
	for _, s := range sentenceSpans(text) {
		got = append(got, text[s[0]:s[1]])
	}
	assert.Equal(t, []string{"One.", "Two has 3.5 parts!", "Three", "Four"}, got)
}

// #endregion sentence-tests
