package codec

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/archetype"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/gate"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/orchestrator"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/retrieval"
)

// #region client
// Client wraps a connection to the pipeline service.
type Client struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// NewClient connects to the pipeline service at addr.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, cc: conn}, nil
}

// NewClientWithConn creates a Client over an existing connection (for testing).
func NewClientWithConn(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Close closes the connection if the Client owns it.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// #endregion client

// #region methods
func (c *Client) PostValidate(ctx context.Context, text, evidenceMode string) (gate.Result, error) {
	var out gate.Result
	err := call(ctx, c.cc, MethodPostValidate, PostValidateRequest{Text: text, EvidenceMode: evidenceMode}, &out)
	if err != nil {
		return gate.Result{}, fmt.Errorf("post validate rpc: %w", err)
	}
	return out, nil
}

func (c *Client) ShouldRetrieve(ctx context.Context, in retrieval.Input) (RetrieveResponse, error) {
	var out RetrieveResponse
	if err := call(ctx, c.cc, MethodShouldRetrieve, in, &out); err != nil {
		return RetrieveResponse{}, fmt.Errorf("should retrieve rpc: %w", err)
	}
	return out, nil
}

func (c *Client) ApplyModelsRegistrySot(ctx context.Context, in SotRequest) (retrieval.SotResult, error) {
	var out retrieval.SotResult
	if err := call(ctx, c.cc, MethodApplyModelsRegistrySot, in, &out); err != nil {
		return retrieval.SotResult{}, fmt.Errorf("models registry sot rpc: %w", err)
	}
	return out, nil
}

func (c *Client) Classify(ctx context.Context, b archetype.Breakdown) (archetype.Classification, error) {
	var out archetype.Classification
	if err := call(ctx, c.cc, MethodClassify, ClassifyRequest{Breakdown: b}, &out); err != nil {
		return archetype.Classification{}, fmt.Errorf("classify rpc: %w", err)
	}
	return out, nil
}

func (c *Client) SmoothUpdate(ctx context.Context, in SmoothRequest) (SmoothResponse, error) {
	var out SmoothResponse
	if err := call(ctx, c.cc, MethodSmoothUpdate, in, &out); err != nil {
		return SmoothResponse{}, fmt.Errorf("smooth update rpc: %w", err)
	}
	return out, nil
}

func (c *Client) Turn(ctx context.Context, in orchestrator.TurnInput) (orchestrator.TurnResult, error) {
	var out orchestrator.TurnResult
	if err := call(ctx, c.cc, MethodTurn, in, &out); err != nil {
		return orchestrator.TurnResult{}, fmt.Errorf("turn rpc: %w", err)
	}
	return out, nil
}

// #endregion methods

// call encodes in, invokes method and decodes the reply into out.
func call(ctx context.Context, cc grpc.ClientConnInterface, method string, in, out any) error {
	req, err := encode(in)
	if err != nil {
		return err
	}
	resp := new(structpb.Struct)
	if err := cc.Invoke(ctx, method, req, resp); err != nil {
		return err
	}
	return decode(resp, out)
}
