package retrieval

import (
	"regexp"
	"strings"
)

// #region registry-detection
// ModelsRegistryFilename is the canonical model-specification dataset file.
const ModelsRegistryFilename = "perazzi_models_registry.json"

// IsModelsRegistryChunk reports whether chunk came from the models registry.
func IsModelsRegistryChunk(chunk RetrievedChunk) bool {
	p := strings.ToLower(strings.ReplaceAll(chunk.SourcePath, `\`, "/"))
	return strings.HasSuffix(p, ModelsRegistryFilename)
}

var specFactPatterns = compileSpecPatterns([]string{
	`\bplatforms?\b`,
	`\bgauges?\b|\b\d{2}\s?(?:ga|gauge)\b`,
	`\bbarrels?\b`,
	`\btrigger\s*(?:groups?|assembl(?:y|ies))\b`,
	`\bribs?\b`,
	`\bdisciplines?\b|\b(?:sporting|trap|skeet|live\s+pigeon|helice)\b`,
	`\bconfigurations?\b|\bconfigur(?:e|ed|able)\b`,
	`\bspecs?\b|\bspecifications?\b`,
})

func compileSpecPatterns(defs []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(defs))
	for i, p := range defs {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// IsModelSpecFactQuery reports whether text asks for model specification facts.
func IsModelSpecFactQuery(text string) bool {
	for _, re := range specFactPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// #endregion registry-detection

// #region registry-sot
// ApplyModelsRegistrySot moves registry chunks ahead of all others for spec
// queries. Relative order inside each partition is preserved. Every
// non-applied outcome returns the input chunks untouched.
func ApplyModelsRegistrySot(in SotInput) SotResult {
	res := SotResult{
		TotalChunkCountBefore: len(in.Chunks),
		TotalChunkCountAfter:  len(in.Chunks),
		Chunks:                in.Chunks,
	}

	switch {
	case !in.RetrievalAttempted:
		res.Reason = SotRetrievalSkipped
		return res
	case !in.Enabled:
		res.Reason = SotDisabled
		return res
	case !in.ModelSpecFactQuery:
		res.Reason = SotNotSpecQuery
		return res
	}

	var registry, rest []RetrievedChunk
	for _, c := range in.Chunks {
		if IsModelsRegistryChunk(c) {
			registry = append(registry, c)
		} else {
			rest = append(rest, c)
		}
	}
	res.RegistryChunkCount = len(registry)
	if len(registry) == 0 {
		res.Reason = SotNoRegistryChunks
		return res
	}

	ordered := make([]RetrievedChunk, 0, len(in.Chunks))
	ordered = append(ordered, registry...)
	ordered = append(ordered, rest...)

	res.Applied = true
	res.Reason = SotAppliedRegistryFirst
	res.Chunks = ordered
	res.TotalChunkCountAfter = len(ordered)
	return res
}

// #endregion registry-sot
