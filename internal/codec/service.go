package codec

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Messages on both services are google.protobuf.Struct values carrying the
// JSON shapes of the pipeline types, so no generated stubs are needed.

// #region pipeline-service
const (
	PipelineServiceName = "perazzi.guardrails.v1.Pipeline"

	MethodPostValidate           = "/" + PipelineServiceName + "/PostValidate"
	MethodShouldRetrieve         = "/" + PipelineServiceName + "/ShouldRetrieve"
	MethodApplyModelsRegistrySot = "/" + PipelineServiceName + "/ApplyModelsRegistrySot"
	MethodClassify               = "/" + PipelineServiceName + "/Classify"
	MethodSmoothUpdate           = "/" + PipelineServiceName + "/SmoothUpdate"
	MethodTurn                   = "/" + PipelineServiceName + "/Turn"
)

// PipelineServer is the server API for the guardrail pipeline service.
type PipelineServer interface {
	PostValidate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ShouldRetrieve(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ApplyModelsRegistrySot(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Classify(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SmoothUpdate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Turn(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// PipelineServiceDesc describes the pipeline service for grpc.Server.
var PipelineServiceDesc = grpc.ServiceDesc{
	ServiceName: PipelineServiceName,
	HandlerType: (*PipelineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PostValidate", Handler: unaryHandler(MethodPostValidate, PipelineServer.PostValidate)},
		{MethodName: "ShouldRetrieve", Handler: unaryHandler(MethodShouldRetrieve, PipelineServer.ShouldRetrieve)},
		{MethodName: "ApplyModelsRegistrySot", Handler: unaryHandler(MethodApplyModelsRegistrySot, PipelineServer.ApplyModelsRegistrySot)},
		{MethodName: "Classify", Handler: unaryHandler(MethodClassify, PipelineServer.Classify)},
		{MethodName: "SmoothUpdate", Handler: unaryHandler(MethodSmoothUpdate, PipelineServer.SmoothUpdate)},
		{MethodName: "Turn", Handler: unaryHandler(MethodTurn, PipelineServer.Turn)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "perazzi/guardrails/v1/pipeline.proto",
}

// RegisterPipelineServer registers srv on s.
func RegisterPipelineServer(s grpc.ServiceRegistrar, srv PipelineServer) {
	s.RegisterService(&PipelineServiceDesc, srv)
}

// #endregion pipeline-service

// #region collaborator-service
const (
	CollaboratorServiceName = "perazzi.assist.v1.Collaborator"

	MethodSearch   = "/" + CollaboratorServiceName + "/Search"
	MethodGenerate = "/" + CollaboratorServiceName + "/Generate"
)

// CollaboratorServer is implemented by the external search + language-model
// service the pipeline calls out to.
type CollaboratorServer interface {
	Search(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Generate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// CollaboratorServiceDesc describes the collaborator service for grpc.Server.
var CollaboratorServiceDesc = grpc.ServiceDesc{
	ServiceName: CollaboratorServiceName,
	HandlerType: (*CollaboratorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Search", Handler: unaryHandler(MethodSearch, CollaboratorServer.Search)},
		{MethodName: "Generate", Handler: unaryHandler(MethodGenerate, CollaboratorServer.Generate)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "perazzi/assist/v1/collaborator.proto",
}

// RegisterCollaboratorServer registers srv on s.
func RegisterCollaboratorServer(s grpc.ServiceRegistrar, srv CollaboratorServer) {
	s.RegisterService(&CollaboratorServiceDesc, srv)
}

// #endregion collaborator-service

// #region handler
// unaryHandler adapts a method expression on server interface S to a
// grpc.MethodHandler, honouring any configured interceptor.
func unaryHandler[S any](fullMethod string, call func(S, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(S), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(S), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// #endregion handler
