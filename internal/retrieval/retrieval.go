package retrieval

import (
	"context"
	"fmt"
)

// #region searcher
// SearchRequest is what the retriever asks of the external search subsystem.
type SearchRequest struct {
	Query                string `json:"query"`
	PageURL              string `json:"pageUrl,omitempty"`
	TopK                 int    `json:"topK"`
	Rerank               bool   `json:"rerank"`
	RerankCandidateLimit int    `json:"rerankCandidateLimit,omitempty"`
}

// Searcher abstracts the document search subsystem.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) ([]RetrievedChunk, error)
}

// #endregion searcher

// #region retriever
// Retriever orchestrates policy-gated retrieval with registry-first ordering.
type Retriever struct {
	searcher Searcher
	config   RetrievalConfig
}

// NewRetriever creates a Retriever over searcher.
func NewRetriever(searcher Searcher, config RetrievalConfig) *Retriever {
	return &Retriever{searcher: searcher, config: config}
}

// #endregion retriever

// #region retrieve
// Retrieve runs the retrieval pipeline:
//  1. Policy: skip search for empty, UI/meta and pleasantry messages
//  2. Search: forward the query with TopK and rerank settings
//  3. Consistency: drop empty, overlong and duplicate chunks
//  4. Registry SOT: registry chunks first for model-spec questions
//
// A search failure returns the partial result (policy decision filled in)
// with the wrapped error.
func (r *Retriever) Retrieve(ctx context.Context, in Input) (Result, error) {
	result := Result{
		Decision:           ShouldRetrieve(in),
		ModelSpecFactQuery: IsModelSpecFactQuery(in.UserText),
	}

	if !result.Decision.Retrieve || r.searcher == nil {
		result.Sot = r.applySot(result.ModelSpecFactQuery, false, nil)
		return result, nil
	}

	req := SearchRequest{
		Query:   in.UserText,
		PageURL: in.PageURL,
		TopK:    r.config.TopK,
		Rerank:  r.config.Rerank,
	}
	if req.Rerank {
		req.RerankCandidateLimit = r.config.RerankCandidateLimit
	}

	chunks, err := r.searcher.Search(ctx, req)
	if err != nil {
		return result, fmt.Errorf("retrieval search: %w", err)
	}
	result.SearchedCount = len(chunks)

	valid := r.consistencyCheck(chunks)
	result.DroppedCount = len(chunks) - len(valid)

	result.Sot = r.applySot(result.ModelSpecFactQuery, true, valid)
	result.Chunks = result.Sot.Chunks
	return result, nil
}

func (r *Retriever) applySot(specQuery, attempted bool, chunks []RetrievedChunk) SotResult {
	return ApplyModelsRegistrySot(SotInput{
		Enabled:            r.config.ModelsRegistrySot,
		ModelSpecFactQuery: specQuery,
		RetrievalAttempted: attempted,
		Chunks:             chunks,
	})
}

// #endregion retrieve

// #region consistency-check
// consistencyCheck validates retrieved chunks against basic constraints:
//   - Non-empty content
//   - Content within MaxChunkLen
//   - No duplicate IDs
func (r *Retriever) consistencyCheck(chunks []RetrievedChunk) []RetrievedChunk {
	seen := make(map[string]bool)
	var valid []RetrievedChunk

	for _, c := range chunks {
		if c.Content == "" {
			continue
		}
		if r.config.MaxChunkLen > 0 && len(c.Content) > r.config.MaxChunkLen {
			continue
		}
		if c.ID != "" && seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		valid = append(valid, c)
	}

	return valid
}

// #endregion consistency-check
