package gate

import "regexp"

// #region rule
type rule struct {
	ID      string
	Reason  BlockedReason
	Pattern string
	re      *regexp.Regexp
}

type ruleGroup struct {
	Reason BlockedReason
	Rules  []rule
}

// #endregion rule

// #region vocab
const (
	// modification verbs that make a sentence an instruction
	smithVerbs = `(?:remove|disassemble|detach|unscrew|loosen|polish|stone|file|grind|bend|shim|cut|drill|lighten|weaken|shorten|swap\s+out|replace)`
	// internal parts whose modification is gunsmithing work
	smithParts = `(?:trigger(?:\s+group)?s?|sears?|hammers?|(?:main|hammer|sear|trigger|ejector)\s*springs?|springs?|firing\s+pins?|ejectors?|hinge\s+pins?|locking\s+(?:lugs?|bolts?)|top\s+lever|stock\s+bolt|safety|barrels?|action|choke\s+tubes?)`
	currency   = `(?:usd|eur|euros?|dollars?|gbp|sterling)`
)

// #endregion vocab

// #region rule-defs
// ruleDefs returns the blocking rules grouped in scan priority order.
func ruleDefs() []ruleGroup {
	return []ruleGroup{
		{Reason: BlockedPricing, Rules: []rule{
			{ID: "currency_symbol_amount", Pattern: `[$€£]\s?\d`},
			{ID: "currency_word_amount", Pattern: `\b\d[\d,.]*\s*` + currency + `\b`},
			{ID: "cost_phrase", Pattern: `\bcosts?\s+(?:around|about|roughly|approximately|upwards\s+of|between|from|over|under|less\s+than|more\s+than|at\s+least|[$€£]|\d)`},
			{ID: "price_phrase", Pattern: `\b(?:prices?|priced|pricing|msrp|list\s+price|retail\s+price)\s+(?:is|are|of|at|around|from|starts?|starting|ranges?|range|between|runs?)\b`},
		}},
		{Reason: BlockedGunsmithing, Rules: []rule{
			{ID: "sequenced_steps", Pattern: `\b` + smithVerbs + `\s+(?:the\s+|your\s+|its\s+)?` + smithParts + `\b[^.!?\n]{0,80}?(?:,?\s*(?:and\s+)?then|;|[.!]\s*(?:next|then|now|after\s+that),?|,?\s+and)\s+(?:carefully\s+|gently\s+)?` + smithVerbs + `\b`},
			{ID: "numbered_steps", Pattern: `(?m)^\s*(?:step\s*\d+\s*[:.)-]?|\d+[.)])\s*` + smithVerbs + `\b[^\n]*?\b` + smithParts + `\b`},
			{ID: "how_to_modify", Pattern: `\bto\s+(?:lighten|adjust|reduce|modify|tune|change)\s+(?:the\s+|your\s+)?(?:trigger\s+pull|pull\s+weight|trigger|sear|hammer|springs?)\b[^.!?\n]{0,60}?,\s*(?:you(?:'ll|\s+will)?\s+(?:need\s+to|should|can|must)\s+|simply\s+|just\s+)?` + smithVerbs + `\b`},
		}},
		{Reason: BlockedLegal, Rules: []rule{
			{ID: "legal_advice", Pattern: `\blegal\s+advice\b`},
			{ID: "legality_question", Pattern: `\b(?:is\s+it|it\s+is|it's|is\s+this)\s+(?:legal|illegal|lawful|unlawful)\b`},
			{ID: "legal_activity", Pattern: `\b(?:legally|lawfully)\s+(?:transport|carry|ship|own|import|export|travel|sell|buy|transfer|possess)\b`},
			{ID: "liability", Pattern: `\b(?:liability|liable|lawsuits?|litigation|indemnif\w*)\b`},
			{ID: "jurisdiction_rules", Pattern: `\b(?:laws?|regulations?|statutes?)\s+(?:in|for|regarding|governing|on|about)\s+(?:\w+\s+){0,3}?(?:transport\w*|carry\w*|ship\w*|own\w*|import\w*|export\w*|travel\w*|possess\w*|purchas\w*)`},
			{ID: "trade_permits", Pattern: `\b(?:import|export)\s+(?:permits?|licen[cs]es?|restrictions?|controls?)\b`},
		}},
		{Reason: BlockedSystemMeta, Rules: []rule{
			{ID: "prompt_disclosure", Pattern: `\b(?:system|developer|hidden|internal)\s+(?:prompts?|messages?|instructions?)\b`},
			{ID: "guardrail_mention", Pattern: `\bguardrails?\b`},
			{ID: "instructed_to", Pattern: `\b(?:i\s+(?:was|am|have\s+been)|i'm|i've\s+been)\s+(?:instructed|programmed|told|configured)\s+(?:to|not\s+to)\b`},
			{ID: "my_instructions", Pattern: `\bmy\s+(?:instructions|guidelines|rules|configuration|prompt)\s+(?:say|says|state|states|tell|require|prevent|are|is)\b`},
			{ID: "pipeline_internals", Pattern: `\b(?:evidence\s+mode|retrieval\s+(?:policy|pipeline)|post-?validat\w*|archetype\s+(?:vector|scores?|classification))\b`},
		}},
	}
}

// #endregion rule-defs

// #region compile
// compileGroups compiles every pattern case-insensitively. The patterns are
// static, so a compile failure is a programming error.
func compileGroups(groups []ruleGroup) []ruleGroup {
	for gi := range groups {
		for ri := range groups[gi].Rules {
			r := &groups[gi].Rules[ri]
			r.Reason = groups[gi].Reason
			r.re = regexp.MustCompile(`(?i)` + r.Pattern)
		}
	}
	return groups
}

var blockGroups = compileGroups(ruleDefs())

// #endregion compile

// #region claim-patterns
var (
	claimBrandRe = regexp.MustCompile(`(?i)\bperazzi(?:'s|’s)?\b[^.!?\n]{0,80}?\b(?:is|are|has|have|offers?|includes?|provides?|covers?|comes?\s+with|uses?|requires?|guarantees?|will|won't|does\s+not|doesn't|never|always)\b`)
	claimTopicRe = regexp.MustCompile(`(?i)\b(?:warrant(?:y|ies)|guarantee[sd]?|lifetime|polic(?:y|ies)|service\s+intervals?|spec(?:s|ification|ifications)?|weighs?|weight|barrel\s+lengths?|chokes?|trigger|rib|stock|made\s+(?:in|of|from)|manufactured|handmade|hand-built|production|delivery|lead\s+times?|wait(?:ing)?\s+times?|returns?|refunds?|fitting|proof(?:ed)?|certified|certification)\b`)
	hedgeRe      = regexp.MustCompile(`(?i)\b(?:generally|typically|usually|often|may|might|can\s+vary|varies|vary|i\s+believe|i\s+think|reportedly|likely|possibly|perhaps|in\s+my\s+understanding)\b`)
)

// #endregion claim-patterns
