package orchestrator

// #region imports
import (
	"context"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/archetype"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/eval"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/evidence"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/gate"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/logging"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/retrieval"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/session"
)

// #endregion

// #region turn-context

// TurnContext is the conversation context the chat client sends with a message.
// Every field is optional.
type TurnContext struct {
	PageURL         string            `json:"pageUrl,omitempty"`
	ModelSlug       string            `json:"modelSlug,omitempty"`
	Mode            string            `json:"mode,omitempty"`
	Locale          string            `json:"locale,omitempty"`
	Archetype       string            `json:"archetype,omitempty"`
	ArchetypeVector *archetype.Vector `json:"archetypeVector,omitempty"`
	TextVerbosity   string            `json:"textVerbosity,omitempty"`
}

// #endregion

// #region turn-input

// TurnInput is one user message. EvidenceMode, when set, overrides the mode
// derived from retrieval.
type TurnInput struct {
	SessionID    string      `json:"sessionId,omitempty"`
	UserText     string      `json:"userText"`
	Context      TurnContext `json:"context"`
	EvidenceMode string      `json:"evidenceMode,omitempty"`
}

// #endregion

// #region turn-result

// TurnResult is everything the response layer and analytics need from a turn.
type TurnResult struct {
	TurnID         string                   `json:"turnId"`
	Text           string                   `json:"text"`
	Validation     gate.Result              `json:"validation"`
	Retrieval      retrieval.Result         `json:"retrieval"`
	EvidenceMode   evidence.Mode            `json:"evidenceMode"`
	Classification archetype.Classification `json:"classification"`
	Vector         archetype.Vector         `json:"archetypeVector"` // smoothed vector for the next turn
	Smoothed       bool                     `json:"smoothed"`
	Eval           *eval.EvalResult         `json:"eval,omitempty"`
	VersionID      string                   `json:"versionId,omitempty"`
}

// #endregion

// #region interfaces

// GenerateRequest is what the pipeline hands the language model collaborator.
type GenerateRequest struct {
	TurnID       string
	UserText     string
	Context      TurnContext
	Chunks       []retrieval.RetrievedChunk
	EvidenceMode evidence.Mode
	Archetype    *archetype.Key
}

// Generator abstracts the external language-model call.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req GenerateRequest) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	return f(ctx, req)
}

// VectorStore persists the smoothed vector between turns.
type VectorStore interface {
	Current(ctx context.Context, sessionID string) (session.Record, error)
	Commit(ctx context.Context, rec session.Record) error
}

// TurnJournal records per-turn outcomes.
type TurnJournal interface {
	RecordTurn(ctx context.Context, rec logging.TurnRecord) error
}

// #endregion
