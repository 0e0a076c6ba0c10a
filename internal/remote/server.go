package remote

import (
	"context"
	"log"

	"github.com/danielpatrickdp/vcalearn/internal/oracle"
	"github.com/danielpatrickdp/vcalearn/internal/vca"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region server
// Server answers membership queries over gRPC with a local oracle.
type Server struct {
	oracle   oracle.MembershipOracle
	alphabet *vca.Alphabet
}

func NewServer(o oracle.MembershipOracle, alphabet *vca.Alphabet) *Server {
	return &Server{oracle: o, alphabet: alphabet}
}

// Query implements MembershipServer.
func (s *Server) Query(ctx context.Context, words *structpb.ListValue) (*structpb.ListValue, error) {
	queries := make([]oracle.Query, len(words.GetValues()))
	for i, v := range words.GetValues() {
		sv, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "word %d is not a string", i)
		}
		w, err := s.alphabet.ParseWord(sv.StringValue)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "word %d: %v", i, err)
		}
		queries[i] = oracle.Query{Prefix: w}
	}

	answers, err := s.oracle.Answer(ctx, queries)
	if err != nil {
		log.Printf("[REMOTE] batch of %d failed: %v", len(queries), err)
		return nil, status.Errorf(codes.Internal, "membership: %v", err)
	}
	out := &structpb.ListValue{Values: make([]*structpb.Value, len(answers))}
	for i, a := range answers {
		out.Values[i] = structpb.NewBoolValue(a)
	}
	return out, nil
}
// #endregion server
