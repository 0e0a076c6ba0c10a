package remote

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region service-desc
// The membership service exchanges well-known protobuf types so that no
// generated code is needed: the request is a list of words, each a string
// of whitespace separated symbols, and the response a list of booleans in
// request order.
const (
	serviceName = "vcalearn.Membership"
	queryMethod = "/vcalearn.Membership/Query"
)

// MembershipServer is implemented by membership oracle servers.
type MembershipServer interface {
	Query(ctx context.Context, words *structpb.ListValue) (*structpb.ListValue, error)
}

// MembershipServiceClient is the client side of the membership service.
type MembershipServiceClient interface {
	Query(ctx context.Context, words *structpb.ListValue, opts ...grpc.CallOption) (*structpb.ListValue, error)
}

var membershipServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*MembershipServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Query", Handler: queryHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vcalearn/membership",
}

// RegisterMembershipServer attaches srv to a gRPC server.
func RegisterMembershipServer(s grpc.ServiceRegistrar, srv MembershipServer) {
	s.RegisterService(&membershipServiceDesc, srv)
}

func queryHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.ListValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MembershipServer).Query(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: queryMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MembershipServer).Query(ctx, req.(*structpb.ListValue))
	}
	return interceptor(ctx, in, info, handler)
}
// #endregion service-desc

// #region service-client
type membershipServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewMembershipServiceClient wraps a connection.
func NewMembershipServiceClient(cc grpc.ClientConnInterface) MembershipServiceClient {
	return &membershipServiceClient{cc: cc}
}

func (c *membershipServiceClient) Query(ctx context.Context, words *structpb.ListValue, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, queryMethod, words, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
// #endregion service-client
