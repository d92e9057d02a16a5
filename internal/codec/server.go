package codec

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/archetype"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/config"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/evidence"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/gate"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/logging"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/orchestrator"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/retrieval"
)

// #region server
// Server exposes the pure pipeline operations over gRPC. Turn is served only
// when a Pipeline is configured.
type Server struct {
	source   config.Source
	pipeline *orchestrator.Pipeline
	log      *zap.Logger
}

var _ PipelineServer = (*Server)(nil)

// NewServer creates a Server. pipeline may be nil.
func NewServer(source config.Source, pipeline *orchestrator.Pipeline, logger *zap.Logger) *Server {
	if source == nil {
		source = config.StaticSource{Config: config.Default()}
	}
	return &Server{source: source, pipeline: pipeline, log: logging.OrNop(logger)}
}

// NewGRPCServer builds a grpc.Server carrying the pipeline service and the
// standard health service, with request logging.
func NewGRPCServer(impl PipelineServer, logger *zap.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(UnaryLogger(logger))}, opts...)
	gs := grpc.NewServer(opts...)
	RegisterPipelineServer(gs, impl)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus(PipelineServiceName, healthpb.HealthCheckResponse_SERVING)
	return gs, hs
}

// UnaryLogger logs each unary call at debug level, and failures at warn.
func UnaryLogger(logger *zap.Logger) grpc.UnaryServerInterceptor {
	log := logging.OrNop(logger)
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("elapsed", time.Since(start)),
		}
		if err != nil {
			log.Warn("rpc failed", append(fields, zap.Error(err))...)
		} else {
			log.Debug("rpc", fields...)
		}
		return resp, err
	}
}

// #endregion server

// #region methods
func (s *Server) PostValidate(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in PostValidateRequest
	if err := decode(req, &in); err != nil {
		return nil, invalid("PostValidate", err)
	}
	res := gate.PostValidate(in.Text, gate.Options{EvidenceMode: evidence.ParseMode(in.EvidenceMode)})
	return reply(res)
}

func (s *Server) ShouldRetrieve(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in retrieval.Input
	if err := decode(req, &in); err != nil {
		return nil, invalid("ShouldRetrieve", err)
	}
	return reply(RetrieveResponse{
		Decision:           retrieval.ShouldRetrieve(in),
		ModelSpecFactQuery: retrieval.IsModelSpecFactQuery(in.UserText),
	})
}

func (s *Server) ApplyModelsRegistrySot(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in SotRequest
	if err := decode(req, &in); err != nil {
		return nil, invalid("ApplyModelsRegistrySot", err)
	}
	enabled := s.source.Current().Flags.ModelsRegistrySot
	if in.Enabled != nil {
		enabled = *in.Enabled
	}
	specQuery := retrieval.IsModelSpecFactQuery(in.UserText)
	if in.ModelSpecFactQuery != nil {
		specQuery = *in.ModelSpecFactQuery
	}
	return reply(retrieval.ApplyModelsRegistrySot(retrieval.SotInput{
		Enabled:            enabled,
		ModelSpecFactQuery: specQuery,
		RetrievalAttempted: in.RetrievalAttempted,
		Chunks:             in.Chunks,
	}))
}

func (s *Server) Classify(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in ClassifyRequest
	if err := decode(req, &in); err != nil {
		return nil, invalid("Classify", err)
	}
	return reply(archetype.BuildClassification(in.Breakdown))
}

func (s *Server) SmoothUpdate(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in SmoothRequest
	if err := decode(req, &in); err != nil {
		return nil, invalid("SmoothUpdate", err)
	}
	alpha := s.source.Current().Archetype.SmoothingFactor
	if in.SmoothingFactor != nil {
		alpha = *in.SmoothingFactor
	}
	if !archetype.ValidSmoothingFactor(alpha) {
		alpha = archetype.DefaultSmoothingFactor
	}
	previous := archetype.NeutralVector()
	if in.Previous != nil {
		previous = *in.Previous
	}
	return reply(SmoothResponse{
		Vector:          archetype.SmoothUpdate(previous, in.Delta, alpha),
		SmoothingFactor: alpha,
	})
}

func (s *Server) Turn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.pipeline == nil {
		return nil, status.Error(codes.Unimplemented, "turn: no collaborator configured")
	}
	var in orchestrator.TurnInput
	if err := decode(req, &in); err != nil {
		return nil, invalid("Turn", err)
	}
	res, err := s.pipeline.Turn(ctx, in)
	if err != nil {
		if ctx.Err() != nil {
			return nil, status.FromContextError(ctx.Err()).Err()
		}
		return nil, status.Errorf(codes.Internal, "turn: %v", err)
	}
	return reply(res)
}

// #endregion methods

// #region helpers
func invalid(method string, err error) error {
	return status.Errorf(codes.InvalidArgument, "%s: %v", method, err)
}

func reply(v any) (*structpb.Struct, error) {
	out, err := encode(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "%v", err)
	}
	return out, nil
}

// #endregion helpers
