package gate

import (
	"strings"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/evidence"
)

// #region post-validate
// PostValidate runs the guardrail chain over raw model output.
//
//  1. Blocking scan (any evidence mode): pricing, gunsmithing, legal, system_meta.
//     The first hit replaces the text with its canned refusal and returns.
//  2. Unsourced handling (general_unsourced only): qualify the first unhedged
//     brand claim, then enforce the general-answer label on the first line.
//  3. Otherwise the text is returned unchanged.
//
// PostValidate is total over all strings and performs no I/O.
func PostValidate(raw string, opts Options) Result {
	if hit, ok := DetectBlocked(raw); ok {
		text, _ := BlockedResponse(hit.Reason)
		return Result{
			Text:              text,
			Triggered:         true,
			Reasons:           []string{BlockedReasonTag(hit.Reason)},
			ReplacedWithBlock: true,
			RuleID:            hit.RuleID,
		}
	}

	if opts.EvidenceMode != evidence.ModeGeneralUnsourced {
		return Result{Text: raw, Reasons: []string{}}
	}

	res := Result{Text: raw, Reasons: []string{}}

	if qualified, ok := InsertUnsourcedQualifier(res.Text); ok {
		res.Text = qualified
		res.QualifierInjected = true
		res.Reasons = append(res.Reasons, ReasonUnsourcedClaim)
	}

	labeled := evidence.EnsureGeneralUnsourcedLabelFirstLine(res.Text)
	if labeled != res.Text {
		res.Text = labeled
		res.LabelInjected = true
		res.Reasons = append(res.Reasons, ReasonGeneralUnsourced)
	}

	res.Triggered = res.QualifierInjected || res.LabelInjected
	return res
}

// #endregion post-validate

// #region detect-blocked
// DetectBlocked scans text against the blocking groups in priority order and
// returns the first rule that matches.
func DetectBlocked(text string) (BlockHit, bool) {
	for _, reason := range BlockedReasons {
		if hit, ok := DetectCategory(text, reason); ok {
			return hit, true
		}
	}
	return BlockHit{}, false
}

// DetectCategory scans text against a single blocking category.
func DetectCategory(text string, reason BlockedReason) (BlockHit, bool) {
	if text == "" {
		return BlockHit{}, false
	}
	for _, g := range blockGroups {
		if g.Reason != reason {
			continue
		}
		for _, r := range g.Rules {
			if r.re.MatchString(text) {
				return BlockHit{Reason: reason, RuleID: r.ID}, true
			}
		}
	}
	return BlockHit{}, false
}

// #endregion detect-blocked

// #region unsourced-claim
// FindUnsourcedClaim returns the byte span of the first sentence that states a
// brand fact without hedging. Label text is masked so it cannot seed a match.
func FindUnsourcedClaim(text string) (start, end int, ok bool) {
	masked := maskLabel(text)
	for _, span := range sentenceSpans(masked) {
		sentence := masked[span[0]:span[1]]
		if !claimBrandRe.MatchString(sentence) || !claimTopicRe.MatchString(sentence) {
			continue
		}
		if hedgeRe.MatchString(sentence) {
			continue
		}
		return span[0], span[1], true
	}
	return 0, 0, false
}

// InsertUnsourcedQualifier places UnsourcedClaimQualifier right after the first
// unsourced claim. Text that already carries the qualifier is left alone.
func InsertUnsourcedQualifier(text string) (string, bool) {
	if strings.Contains(text, UnsourcedClaimQualifier) {
		return text, false
	}
	_, end, ok := FindUnsourcedClaim(text)
	if !ok {
		return text, false
	}

	var b strings.Builder
	b.Grow(len(text) + len(UnsourcedClaimQualifier) + 2)
	b.WriteString(text[:end])
	if !endsSentence(text[:end]) {
		b.WriteByte('.')
	}
	b.WriteByte(' ')
	b.WriteString(UnsourcedClaimQualifier)
	b.WriteString(text[end:])
	return b.String(), true
}

// #endregion unsourced-claim

// #region helpers
// sentenceSpans splits text into [start, end) spans that end after a run of
// terminal punctuation, before a newline, or at end of text. Leading spaces
// are excluded from each span.
func sentenceSpans(text string) [][2]int {
	var spans [][2]int
	start := -1
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == '\n' || c == '\r':
			if start >= 0 {
				spans = append(spans, [2]int{start, trimSpanEnd(text, start, i)})
				start = -1
			}
			i++
		case c == '.' || c == '!' || c == '?':
			if start < 0 {
				start = i
			}
			j := i
			for j < len(text) && (text[j] == '.' || text[j] == '!' || text[j] == '?') {
				j++
			}
			if j == len(text) || text[j] == ' ' || text[j] == '\t' || text[j] == '\n' || text[j] == '\r' {
				spans = append(spans, [2]int{start, j})
				start = -1
			}
			i = j
		case c == ' ' || c == '\t':
			i++
		default:
			if start < 0 {
				start = i
			}
			i++
		}
	}
	if start >= 0 {
		spans = append(spans, [2]int{start, trimSpanEnd(text, start, len(text))})
	}
	return spans
}

func trimSpanEnd(text string, start, end int) int {
	for end > start && (text[end-1] == ' ' || text[end-1] == '\t') {
		end--
	}
	return end
}

func endsSentence(s string) bool {
	s = strings.TrimRight(s, " \t")
	if s == "" {
		return true
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

// maskLabel blanks out label occurrences without shifting byte offsets.
func maskLabel(text string) string {
	label := strings.TrimSpace(evidence.GeneralUnsourcedLabel)
	if !strings.Contains(text, label) {
		return text
	}
	return strings.ReplaceAll(text, label, strings.Repeat(" ", len(label)))
}

// #endregion helpers
