package signals

import (
	"regexp"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/archetype"
)

// #region phrase-table
type phrase struct {
	ID        string
	Archetype archetype.Key
	Tier      Tier
	Pattern   string
	re        *regexp.Regexp
}

// phrases are multi-word cues matched against the raw user text.
var phrases = compilePhrases([]phrase{
	{ID: "always_shot", Archetype: archetype.Loyalist, Tier: TierStrong,
		Pattern: `\b(?:always|only)\s+(?:shot|shoot|owned)\s+(?:a\s+)?perazzis?\b`},
	{ID: "long_owner", Archetype: archetype.Loyalist, Tier: TierMedium,
		Pattern: `\b(?:had|owned|shot)\s+(?:my|our|a)\s+\w+\s+for\s+\d+\s+years\b`},

	{ID: "gold_inlay", Archetype: archetype.Prestige, Tier: TierStrong,
		Pattern: `\bgold\s+(?:inlays?|lines?)\b`},
	{ID: "wood_grade", Archetype: archetype.Prestige, Tier: TierMedium,
		Pattern: `\b(?:grade|upgraded?)\s+(?:\d+\s+)?(?:walnut|wood|stock)\b`},
	{ID: "sco_grade", Archetype: archetype.Prestige, Tier: TierMedium,
		Pattern: `\bsco\b`},

	{ID: "point_of_impact", Archetype: archetype.Analyst, Tier: TierStrong,
		Pattern: `\bpoint\s+of\s+impact\b|\bpoi\b`},
	{ID: "rib_geometry", Archetype: archetype.Analyst, Tier: TierStrong,
		Pattern: `\brib\s+(?:height|profile|taper)\b`},
	{ID: "trigger_pull", Archetype: archetype.Analyst, Tier: TierMedium,
		Pattern: `\btrigger\s+(?:pull|weight)\b`},
	{ID: "difference", Archetype: archetype.Analyst, Tier: TierMedium,
		Pattern: `\bwhat(?:'s|\s+is)\s+the\s+difference\b|\bhow\s+(?:does|do)\b.{0,40}\bcompare\b`},

	{ID: "break_count", Archetype: archetype.Achiever, Tier: TierStrong,
		Pattern: `\b(?:ran|run|broke|break)\s+\d{2,3}\b`},
	{ID: "win_event", Archetype: archetype.Achiever, Tier: TierStrong,
		Pattern: `\b(?:win|won|winning)\b.{0,30}\b(?:shoot|event|title|class)\b`},
	{ID: "next_level", Archetype: archetype.Achiever, Tier: TierMedium,
		Pattern: `\bnext\s+level\b|\bcompetitive\s+edge\b`},

	{ID: "pass_down", Archetype: archetype.Legacy, Tier: TierStrong,
		Pattern: `\bpass(?:ed|ing)?\s+(?:it\s+|them\s+)?(?:down|on)\b`},
	{ID: "my_kids", Archetype: archetype.Legacy, Tier: TierMedium,
		Pattern: `\bmy\s+(?:son|daughter|kids|children)\b`},
	{ID: "founder", Archetype: archetype.Legacy, Tier: TierLight,
		Pattern: `\bdaniele\s+perazzi\b|\bfounded\s+in\s+1957\b`},
})

func compilePhrases(defs []phrase) []phrase {
	for i := range defs {
		defs[i].re = regexp.MustCompile(`(?i)` + defs[i].Pattern)
	}
	return defs
}

// #endregion phrase-table

// #region keyword-table
type keyword struct {
	Archetype archetype.Key
	Tier      Tier
}

// keywords are single tokens matched after stopword filtering.
var keywords = map[string]keyword{
	"loyal":     {archetype.Loyalist, TierStrong},
	"loyalty":   {archetype.Loyalist, TierStrong},
	"service":   {archetype.Loyalist, TierMedium},
	"servicing": {archetype.Loyalist, TierMedium},
	"refurbish": {archetype.Loyalist, TierMedium},
	"dealer":    {archetype.Loyalist, TierLight},
	"owned":     {archetype.Loyalist, TierLight},

	"engraving":  {archetype.Prestige, TierStrong},
	"engraved":   {archetype.Prestige, TierStrong},
	"bespoke":    {archetype.Prestige, TierStrong},
	"sideplates": {archetype.Prestige, TierStrong},
	"exclusive":  {archetype.Prestige, TierMedium},
	"luxury":     {archetype.Prestige, TierMedium},
	"custom":     {archetype.Prestige, TierMedium},
	"walnut":     {archetype.Prestige, TierLight},
	"finish":     {archetype.Prestige, TierLight},

	"specs":          {archetype.Analyst, TierStrong},
	"specifications": {archetype.Analyst, TierStrong},
	"convergence":    {archetype.Analyst, TierStrong},
	"constriction":   {archetype.Analyst, TierStrong},
	"geometry":       {archetype.Analyst, TierMedium},
	"compare":        {archetype.Analyst, TierMedium},
	"versus":         {archetype.Analyst, TierMedium},
	"weight":         {archetype.Analyst, TierLight},
	"balance":        {archetype.Analyst, TierLight},

	"competition": {archetype.Achiever, TierStrong},
	"olympic":     {archetype.Achiever, TierStrong},
	"olympics":    {archetype.Achiever, TierStrong},
	"nationals":   {archetype.Achiever, TierStrong},
	"podium":      {archetype.Achiever, TierStrong},
	"tournament":  {archetype.Achiever, TierMedium},
	"score":       {archetype.Achiever, TierMedium},
	"scores":      {archetype.Achiever, TierMedium},
	"performance": {archetype.Achiever, TierLight},
	"improve":     {archetype.Achiever, TierLight},
	"training":    {archetype.Achiever, TierLight},

	"heirloom":      {archetype.Legacy, TierStrong},
	"inherited":     {archetype.Legacy, TierStrong},
	"grandson":      {archetype.Legacy, TierStrong},
	"granddaughter": {archetype.Legacy, TierStrong},
	"generations":   {archetype.Legacy, TierStrong},
	"heritage":      {archetype.Legacy, TierMedium},
	"history":       {archetype.Legacy, TierMedium},
	"tradition":     {archetype.Legacy, TierMedium},
	"family":        {archetype.Legacy, TierLight},
}

// #endregion keyword-table

// #region page-context
type pageRule struct {
	ID        string
	Archetype archetype.Key
	Tier      Tier
	Fragment  string // matched against the lower-cased page URL
}

var pageRules = []pageRule{
	{"page_bespoke", archetype.Prestige, TierMedium, "/bespoke"},
	{"page_engraving", archetype.Prestige, TierMedium, "/engraving"},
	{"page_competition", archetype.Achiever, TierMedium, "/competition"},
	{"page_champions", archetype.Achiever, TierMedium, "/champions"},
	{"page_heritage", archetype.Legacy, TierMedium, "/heritage"},
	{"page_history", archetype.Legacy, TierLight, "/history"},
	{"page_specs", archetype.Analyst, TierLight, "/specs"},
	{"page_models", archetype.Analyst, TierLight, "/models/"},
	{"page_service", archetype.Loyalist, TierLight, "/service"},
}

// slugPrestige marks model slugs for engraved grades (e.g. "mx8-sco", "hts-sc3").
var slugPrestige = regexp.MustCompile(`(?i)\b(?:sco|sc2|sc3|extra)\b`)

// #endregion page-context
