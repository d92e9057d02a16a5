package codec

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/orchestrator"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/retrieval"
)

// CollaboratorClient calls the external search and generation service. It
// satisfies both retrieval.Searcher and orchestrator.Generator.
type CollaboratorClient struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

var (
	_ retrieval.Searcher     = (*CollaboratorClient)(nil)
	_ orchestrator.Generator = (*CollaboratorClient)(nil)
)

// NewCollaboratorClient connects to the collaborator at addr.
func NewCollaboratorClient(addr string) (*CollaboratorClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &CollaboratorClient{conn: conn, cc: conn}, nil
}

// NewCollaboratorClientWithConn creates a client over an existing connection.
func NewCollaboratorClientWithConn(cc grpc.ClientConnInterface) *CollaboratorClient {
	return &CollaboratorClient{cc: cc}
}

func (c *CollaboratorClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Search runs a corpus search.
func (c *CollaboratorClient) Search(ctx context.Context, req retrieval.SearchRequest) ([]retrieval.RetrievedChunk, error) {
	var out searchResponse
	if err := call(ctx, c.cc, MethodSearch, req, &out); err != nil {
		return nil, fmt.Errorf("search rpc: %w", err)
	}
	return out.Chunks, nil
}

// Generate asks the language model for a reply.
func (c *CollaboratorClient) Generate(ctx context.Context, req orchestrator.GenerateRequest) (string, error) {
	in := generateWire{
		TurnID:       req.TurnID,
		UserText:     req.UserText,
		Context:      req.Context,
		Chunks:       req.Chunks,
		EvidenceMode: string(req.EvidenceMode),
		Archetype:    req.Archetype,
	}
	var out generateResponse
	if err := call(ctx, c.cc, MethodGenerate, in, &out); err != nil {
		return "", fmt.Errorf("generate rpc: %w", err)
	}
	return out.Text, nil
}
