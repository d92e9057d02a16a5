package retrieval

// #region config
// RetrievalConfig holds the search knobs the retriever forwards to the
// external search subsystem and the registry-ordering switch.
type RetrievalConfig struct {
	TopK                 int  // max chunks requested from search
	Rerank               bool // ask the searcher to rerank candidates
	RerankCandidateLimit int  // candidate pool size when reranking
	MaxChunkLen          int  // max chars per chunk; 0 disables the check
	ModelsRegistrySot    bool // registry-first ordering for spec queries
}

// DefaultConfig returns the stock retrieval settings.
func DefaultConfig() RetrievalConfig {
	return RetrievalConfig{
		TopK:                 12,
		Rerank:               false,
		RerankCandidateLimit: 60,
		MaxChunkLen:          8000,
		ModelsRegistrySot:    true,
	}
}

// #endregion config

// #region chunk
// RetrievedChunk is one evidence fragment returned by the search subsystem.
// Only SourcePath is interpreted here; Content is opaque.
type RetrievedChunk struct {
	ID         string  `json:"id"`
	SourcePath string  `json:"sourcePath"`
	Content    string  `json:"content,omitempty"`
	Score      float64 `json:"score,omitempty"`
}

// #endregion chunk

// #region policy-types
// Input is the per-message data the retrieval policy reads.
type Input struct {
	UserText string `json:"userText"`
	PageURL  string `json:"pageUrl,omitempty"`
}

// Decision reports whether to retrieve and the policy category that decided.
type Decision struct {
	Retrieve bool   `json:"retrieve"`
	Reason   string `json:"reason"`
}

const (
	ReasonEmptyUserText = "empty_user_text"
	ReasonUIMeta        = "ui_meta"
	ReasonChatMeta      = "chat_meta"
	ReasonDomainSignal  = "domain_signal"
	ReasonPleasantry    = "pleasantry"
	ReasonDefault       = "default"
)

// #endregion policy-types

// #region sot-types
// SotInput feeds the models-registry source-of-truth policy.
type SotInput struct {
	Enabled            bool
	ModelSpecFactQuery bool
	RetrievalAttempted bool
	Chunks             []RetrievedChunk
}

// SotResult is the outcome of ApplyModelsRegistrySot. Chunks is always the
// list the caller should use, reordered only when Applied.
type SotResult struct {
	Applied               bool             `json:"applied"`
	Reason                string           `json:"reason"`
	RegistryChunkCount    int              `json:"registryChunkCount"`
	TotalChunkCountBefore int              `json:"totalChunkCountBefore"`
	TotalChunkCountAfter  int              `json:"totalChunkCountAfter"`
	Chunks                []RetrievedChunk `json:"chunks"`
}

const (
	SotRetrievalSkipped     = "retrieval_skipped"
	SotDisabled             = "disabled:env_flag"
	SotNotSpecQuery         = "not_applicable:query_classifier"
	SotNoRegistryChunks     = "not_applicable:no_registry_chunks"
	SotAppliedRegistryFirst = "applied:registry_first"
)

// #endregion sot-types

// #region result
// Result captures one retrieval-augmented turn as seen by the orchestrator.
type Result struct {
	Decision           Decision         `json:"decision"`
	ModelSpecFactQuery bool             `json:"modelSpecFactQuery"`
	SearchedCount      int              `json:"searchedCount"` // chunks returned by search
	DroppedCount       int              `json:"droppedCount"`  // removed by the consistency check
	Sot                SotResult        `json:"sot"`
	Chunks             []RetrievedChunk `json:"chunks"`
}

// #endregion result
