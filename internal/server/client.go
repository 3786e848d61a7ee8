package server

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	mdwerror "github.com/anemortalkid/kaleido/foundation/core/error"
	"github.com/anemortalkid/kaleido/foundation/kaleido"
	coreGrpc "github.com/anemortalkid/kaleido/pkg/core/grpc"
)

// Client calls a remote ParserService
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to the parser service at target
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	conn, err := coreGrpc.Dial(coreGrpc.DefaultClientConfig(target), opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// NewClient wraps an existing connection
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

// Parse sends src to the server and decodes the units and diagnostics it
// returns. Fatal errors keep their gRPC status and carry the matching
// error code.
func (c *Client) Parse(ctx context.Context, src string) (*kaleido.Result, error) {
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, ParseMethod, wrapperspb.String(src), resp); err != nil {
		return nil, fromStatus(err)
	}

	result, err := resultFromMap(resp.AsMap())
	if err != nil {
		return nil, fmt.Errorf("invalid parse response: %w", err)
	}
	return result, nil
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// fromStatus wraps a gRPC status error in a coded error
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	code := mdwerror.CodeNetworkError
	switch st.Code() {
	case codes.InvalidArgument:
		code = mdwerror.CodeInvalidInput
	case codes.ResourceExhausted:
		code = mdwerror.CodeTooManyErrors
	case codes.Canceled:
		code = mdwerror.CodeCanceled
	case codes.Internal, codes.Unknown:
		code = mdwerror.CodeInternal
	}

	return mdwerror.Wrap(err, "remote parse failed").
		WithCode(code).
		WithOperation("server.Client.Parse").
		WithDetail("grpc_code", st.Code().String())
}
