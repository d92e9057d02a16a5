package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/archetype"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/orchestrator"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/retrieval"
)

// #region messages
// PostValidateRequest is the PostValidate request body.
type PostValidateRequest struct {
	Text         string `json:"text"`
	EvidenceMode string `json:"evidenceMode"`
}

// RetrieveResponse is the ShouldRetrieve response body.
type RetrieveResponse struct {
	retrieval.Decision
	ModelSpecFactQuery bool `json:"modelSpecFactQuery"`
}

// SotRequest is the ApplyModelsRegistrySot request body. Absent Enabled uses
// the configured flag; absent ModelSpecFactQuery classifies UserText.
type SotRequest struct {
	Enabled            *bool                      `json:"enabled,omitempty"`
	ModelSpecFactQuery *bool                      `json:"modelSpecFactQuery,omitempty"`
	RetrievalAttempted bool                       `json:"retrievalAttempted"`
	UserText           string                     `json:"userText,omitempty"`
	Chunks             []retrieval.RetrievedChunk `json:"chunks"`
}

// ClassifyRequest is the Classify request body.
type ClassifyRequest struct {
	Breakdown archetype.Breakdown `json:"breakdown"`
}

// SmoothRequest is the SmoothUpdate request body. Absent Previous is the
// neutral vector; absent SmoothingFactor uses the configured one.
type SmoothRequest struct {
	Previous        *archetype.Vector `json:"previous,omitempty"`
	Delta           archetype.Vector  `json:"delta"`
	SmoothingFactor *float64          `json:"smoothingFactor,omitempty"`
}

// SmoothResponse is the SmoothUpdate response body.
type SmoothResponse struct {
	Vector          archetype.Vector `json:"vector"`
	SmoothingFactor float64          `json:"smoothingFactor"`
}

// searchResponse is the collaborator Search response body.
type searchResponse struct {
	Chunks []retrieval.RetrievedChunk `json:"chunks"`
}

// generateWire is the collaborator Generate request body.
type generateWire struct {
	TurnID       string                     `json:"turnId"`
	UserText     string                     `json:"userText"`
	Context      orchestrator.TurnContext   `json:"context"`
	Chunks       []retrieval.RetrievedChunk `json:"chunks"`
	EvidenceMode string                     `json:"evidenceMode"`
	Archetype    *archetype.Key             `json:"archetype,omitempty"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// #endregion messages

// #region codec
// decode reads a Struct into v through its JSON form. A field of the wrong
// JSON type (e.g. a number where text is expected) is an error.
func decode(msg *structpb.Struct, v any) error {
	if msg == nil {
		msg = &structpb.Struct{}
	}
	b, err := protojson.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal struct: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// encode converts v to a Struct through its JSON form.
func encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("unmarshal struct: %w", err)
	}
	return out, nil
}

// #endregion codec
