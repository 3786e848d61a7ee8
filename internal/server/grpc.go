package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/anemortalkid/kaleido/foundation/kaleido"
	"github.com/anemortalkid/kaleido/pkg/core/cache"
)

const (
	// ParserServiceName is the fully qualified gRPC service name
	ParserServiceName = "kaleido.v1.ParserService"

	// ParseMethod is the full method name of Parse
	ParseMethod = "/" + ParserServiceName + "/Parse"
)

// ParserServer is the server API for the parser service
type ParserServer interface {
	// Parse parses the source held in the request and returns its units,
	// diagnostics and statistics
	Parse(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
}

// ParserServiceDesc describes the parser service. The request and response
// are well-known types, so no generated code is involved.
var ParserServiceDesc = grpc.ServiceDesc{
	ServiceName: ParserServiceName,
	HandlerType: (*ParserServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Parse",
			Handler:    parseHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "kaleido/v1/parser.proto",
}

// RegisterParserServer registers srv on s
func RegisterParserServer(s grpc.ServiceRegistrar, srv ParserServer) {
	s.RegisterService(&ParserServiceDesc, srv)
}

func parseHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ParserServer).Parse(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ParseMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ParserServer).Parse(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// parserService implements ParserServer on top of the engine. Successful
// results are cached by source when results is non-nil.
type parserService struct {
	engine  *kaleido.Engine
	results *cache.Cache[*kaleido.Result]
}

// Parse implements ParserServer. Engine errors are returned as foundation
// errors; the error interceptor maps them to status codes.
func (s *parserService) Parse(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	parse := func() (*kaleido.Result, error) {
		return s.engine.ParseString(ctx, req.GetValue())
	}

	var result *kaleido.Result
	var err error
	if s.results != nil {
		result, err = s.results.GetOrSet(cache.Key(req.GetValue()), parse)
	} else {
		result, err = parse()
	}
	if err != nil {
		return nil, err
	}

	resp, err := structpb.NewStruct(resultMap(result))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode result: %v", err)
	}
	return resp, nil
}
