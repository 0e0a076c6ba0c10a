package remote

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/vcalearn/internal/oracle"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// maxBatch bounds the words sent in one call.
const maxBatch = 4096

// #region client-struct
// Client is a membership oracle backed by a remote membership service.
type Client struct {
	conn   *grpc.ClientConn
	client MembershipServiceClient
}
// #endregion client-struct

// #region constructor
// NewClient connects to a membership service at addr.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return NewClientWithConn(conn), nil
}

// NewClientWithConn wraps an existing connection. The client owns it.
func NewClientWithConn(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn, client: NewMembershipServiceClient(conn)}
}

// NewClientWithService creates a Client with an injected service implementation.
// Used for testing without a real gRPC connection.
func NewClientWithService(svc MembershipServiceClient) *Client {
	return &Client{client: svc}
}
// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
// #endregion close

// #region answer
// Answer implements oracle.MembershipOracle.
func (c *Client) Answer(ctx context.Context, queries []oracle.Query) ([]bool, error) {
	out := make([]bool, 0, len(queries))
	for start := 0; start < len(queries); start += maxBatch {
		end := start + maxBatch
		if end > len(queries) {
			end = len(queries)
		}
		req := &structpb.ListValue{Values: make([]*structpb.Value, end-start)}
		for i, q := range queries[start:end] {
			req.Values[i] = structpb.NewStringValue(q.Word().Key())
		}
		resp, err := c.client.Query(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("query rpc: %w", err)
		}
		if len(resp.GetValues()) != end-start {
			return nil, fmt.Errorf("query rpc: %d answers for %d words", len(resp.GetValues()), end-start)
		}
		for i, v := range resp.GetValues() {
			b, ok := v.GetKind().(*structpb.Value_BoolValue)
			if !ok {
				return nil, fmt.Errorf("query rpc: answer %d is not a bool", start+i)
			}
			out = append(out, b.BoolValue)
		}
	}
	return out, nil
}
// #endregion answer
