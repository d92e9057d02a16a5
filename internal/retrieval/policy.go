package retrieval

import (
	"net/url"
	"regexp"
	"strings"
)

// #region policy-table
type policyRule struct {
	Reason   string
	Retrieve bool
	PageURL  bool // also match against the page path
	Patterns []string
	res      []*regexp.Regexp
}

// policyRules run in order after the empty-text check; first match wins.
// Domain signals precede pleasantries so "thanks, tell me about the MX8"
// still retrieves.
var policyRules = compilePolicy([]policyRule{
	{
		Reason: ReasonUIMeta,
		Patterns: []string{
			`^\s*(?:please\s+)?(?:reset|clear|restart|delete|wipe)\b.{0,30}\b(?:chat|conversation|history|session|thread|messages)\b`,
			`^\s*(?:please\s+)?(?:start\s+over|new\s+chat|reset|clear|restart)\s*[.!]*\s*$`,
			`^\s*(?:please\s+)?(?:go\s+(?:back|home)|back|home|close(?:\s+(?:this|the\s+chat))?|minimi[sz]e|scroll\s+(?:up|down)|open\s+(?:the\s+)?menu)\s*[.!]*\s*$`,
		},
	},
	{
		Reason: ReasonChatMeta,
		Patterns: []string{
			`\b(?:make|keep)\s+(?:that|it|this|your\s+(?:answer|response|reply))\s+(?:shorter|longer|simpler|briefer|clearer|more\s+\w+|less\s+\w+)\b`,
			`^\s*(?:please\s+)?(?:rephrase|reword|summari[sz]e|shorten|simplify|translate|elaborate)(?:\s+(?:that|it|this|your\s+(?:last\s+)?(?:answer|response|reply)))?(?:\s+(?:please|again|for\s+me))?\s*[.!?]*\s*$`,
			`\btranslate\s+(?:that|it|this)\b`,
			`\b(?:say|explain|put)\s+(?:that|it)\s+(?:again|differently|more\s+simply|another\s+way)\b`,
		},
	},
	{
		Reason:   ReasonDomainSignal,
		Retrieve: true,
		PageURL:  true,
		Patterns: []string{
			`\bperazzi\b`,
			`\b(?:mx\s?-?\d{1,4}[a-z]*|high[\s-]*tech|hts|tm\s?-?1|dc\s?-?12|mirage|sco|sc2|sc3|sho)\b`,
			`\b\d{2}\s?(?:ga|gauge)\b|\b\d{2,3}\s?bore\b`,
			`\b(?:gauge|barrels?|chokes?|triggers?|ribs?|stocks?|forends?|receivers?|actions?|engraving|fitting|fit|sporting|trap|skeet|clays?|shotguns?|over[\s-]?unders?|o/u|warranty|service|dealers?|bespoke|walnut|models?|specs?)\b`,
		},
	},
	{
		Reason: ReasonPleasantry,
		Patterns: []string{
			`^\s*(?:(?:hi|hello|hey|howdy|greetings|good\s+(?:morning|afternoon|evening|day)|thanks?|thank\s+you|thx|ty|cheers|ok(?:ay)?|cool|great|awesome|perfect|nice|got\s+it|sounds\s+good|bye|goodbye|see\s+you)(?:\s+(?:so|very)\s+much)?(?:\s+(?:again|there))?[\s,.!?]*)+$`,
		},
	},
})

func compilePolicy(rules []policyRule) []policyRule {
	for i := range rules {
		for _, p := range rules[i].Patterns {
			rules[i].res = append(rules[i].res, regexp.MustCompile(`(?i)`+p))
		}
	}
	return rules
}

func (r policyRule) matches(text, page string) bool {
	for _, re := range r.res {
		if re.MatchString(text) || (r.PageURL && page != "" && re.MatchString(page)) {
			return true
		}
	}
	return false
}

// #endregion policy-table

// #region should-retrieve
// ShouldRetrieve decides whether a message warrants document retrieval.
// Unmatched messages retrieve: a stray chunk is cheaper than an unsourced answer.
func ShouldRetrieve(in Input) Decision {
	if strings.TrimSpace(in.UserText) == "" {
		return Decision{Retrieve: false, Reason: ReasonEmptyUserText}
	}
	page := pagePath(in.PageURL)
	for _, r := range policyRules {
		if r.matches(in.UserText, page) {
			return Decision{Retrieve: r.Retrieve, Reason: r.Reason}
		}
	}
	return Decision{Retrieve: true, Reason: ReasonDefault}
}

// pagePath strips scheme and host so the site's own domain name is not read
// as a domain signal. Separators become spaces.
func pagePath(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		raw = u.Path
	}
	return strings.NewReplacer("/", " ", "-", " ", "_", " ").Replace(raw)
}

// #endregion should-retrieve
