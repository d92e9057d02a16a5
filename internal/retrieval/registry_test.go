package retrieval

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tenChunks() []RetrievedChunk {
	chunks := make([]RetrievedChunk, 10)
	for i := range chunks {
		chunks[i] = RetrievedChunk{ID: fmt.Sprintf("c%d", i), SourcePath: fmt.Sprintf("docs/page-%d.md", i), Content: "x"}
	}
	chunks[2].SourcePath = "data/" + ModelsRegistryFilename
	chunks[7].SourcePath = `C:\corpus\DATA\Perazzi_Models_Registry.JSON`
	return chunks
}

func ids(chunks []RetrievedChunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.ID
	}
	return out
}

func TestApplyModelsRegistrySot_ReordersRegistryFirst(t *testing.T) {
	res := ApplyModelsRegistrySot(SotInput{
		Enabled:            true,
		ModelSpecFactQuery: true,
		RetrievalAttempted: true,
		Chunks:             tenChunks(),
	})

	assert.True(t, res.Applied)
	assert.Equal(t, SotAppliedRegistryFirst, res.Reason)
	assert.Equal(t, 2, res.RegistryChunkCount)
	assert.Equal(t, 10, res.TotalChunkCountBefore)
	assert.Equal(t, 10, res.TotalChunkCountAfter)

	want := []string{"c2", "c7", "c0", "c1", "c3", "c4", "c5", "c6", "c8", "c9"}
	if diff := cmp.Diff(want, ids(res.Chunks)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyModelsRegistrySot_DecisionChain(t *testing.T) {
	plain := []RetrievedChunk{{ID: "a", SourcePath: "docs/a.md"}}
	cases := []struct {
		name   string
		in     SotInput
		reason string
	}{
		{"skipped wins over everything", SotInput{Enabled: false, ModelSpecFactQuery: false, RetrievalAttempted: false, Chunks: tenChunks()}, SotRetrievalSkipped},
		{"disabled", SotInput{Enabled: false, ModelSpecFactQuery: true, RetrievalAttempted: true, Chunks: tenChunks()}, SotDisabled},
		{"not spec query", SotInput{Enabled: true, ModelSpecFactQuery: false, RetrievalAttempted: true, Chunks: tenChunks()}, SotNotSpecQuery},
		{"no registry chunks", SotInput{Enabled: true, ModelSpecFactQuery: true, RetrievalAttempted: true, Chunks: plain}, SotNoRegistryChunks},
		{"empty chunks", SotInput{Enabled: true, ModelSpecFactQuery: true, RetrievalAttempted: true}, SotNoRegistryChunks},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := ApplyModelsRegistrySot(tc.in)
			assert.False(t, res.Applied)
			assert.Equal(t, tc.reason, res.Reason)
			assert.Equal(t, ids(tc.in.Chunks), ids(res.Chunks))
			assert.Equal(t, len(tc.in.Chunks), res.TotalChunkCountAfter)
		})
	}
}

func TestApplyModelsRegistrySot_DoesNotMutateInput(t *testing.T) {
	in := tenChunks()
	before := ids(in)
	res := ApplyModelsRegistrySot(SotInput{Enabled: true, ModelSpecFactQuery: true, RetrievalAttempted: true, Chunks: in})
	require.True(t, res.Applied)
	assert.Equal(t, before, ids(in))
}

func TestIsModelsRegistryChunk(t *testing.T) {
	cases := map[string]bool{
		"perazzi_models_registry.json":             true,
		"/srv/corpus/perazzi_models_registry.json": true,
		`corpus\data\perazzi_models_registry.json`: true,
		"PERAZZI_MODELS_REGISTRY.JSON":             true,
		"perazzi_models_registry.json.bak":         false,
		"docs/perazzi_models_registry.md":          false,
		"":                                         false,
	}
	for path, want := range cases {
		assert.Equal(t, want, IsModelsRegistryChunk(RetrievedChunk{SourcePath: path}), path)
	}
}

func TestIsModelSpecFactQuery(t *testing.T) {
	yes := []string{
		"What platform is the MX2000 built on?",
		"Does it come in 28 gauge?",
		"barrel length options",
		"Can I swap the trigger group?",
		"what rib does the HTS use",
		"best model for the sporting discipline",
		"available configurations",
		"MX8 specs",
	}
	for _, q := range yes {
		assert.True(t, IsModelSpecFactQuery(q), q)
	}
	no := []string{"tell me about the company history", "thanks!", "", "who engraves the SCO guns"}
	for _, q := range no {
		assert.False(t, IsModelSpecFactQuery(q), q)
	}
}
