package remote

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/danielpatrickdp/vcalearn/internal/oracle"
	"github.com/danielpatrickdp/vcalearn/internal/vca"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region helpers
func testAlphabet(t *testing.T) *vca.Alphabet {
	t.Helper()
	a, err := vca.NewAlphabet([]vca.Symbol{"a"}, []vca.Symbol{"b"}, nil)
	if err != nil {
		t.Fatalf("NewAlphabet: %v", err)
	}
	return a
}

func anbn(t *testing.T, alphabet *vca.Alphabet) *vca.VCA {
	t.Helper()
	v := vca.New(alphabet, 1)
	q0 := v.AddLocation(false)
	up := v.AddLocation(false)
	down := v.AddLocation(true)
	for _, err := range []error{
		v.SetSuccessor(q0, 0, "a", up),
		v.SetSuccessor(up, 1, "a", up),
		v.SetSuccessor(up, 1, "b", down),
		v.SetSuccessor(down, 1, "b", down),
	} {
		if err != nil {
			t.Fatalf("SetSuccessor: %v", err)
		}
	}
	return v
}

// startServer serves an anbn oracle over an in-memory listener.
func startServer(t *testing.T) *Client {
	t.Helper()
	alphabet := testAlphabet(t)
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterMembershipServer(srv, NewServer(oracle.NewAutomatonOracle(anbn(t, alphabet)), alphabet))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c := NewClientWithConn(conn)
	t.Cleanup(func() { c.Close() })
	return c
}

type mockService struct {
	resp *structpb.ListValue
	err  error
	got  *structpb.ListValue
}

func (m *mockService) Query(_ context.Context, in *structpb.ListValue, _ ...grpc.CallOption) (*structpb.ListValue, error) {
	m.got = in
	return m.resp, m.err
}
// #endregion helpers

// #region round-trip-tests
func TestClient_RoundTrip(t *testing.T) {
	c := startServer(t)
	got, err := c.Answer(context.Background(), []oracle.Query{
		{Prefix: vca.ParseWord("a"), Suffix: vca.ParseWord("b")},
		{Prefix: vca.ParseWord("a a b")},
		{Prefix: vca.Word{}},
		{Prefix: vca.ParseWord("a a"), Suffix: vca.ParseWord("b b")},
	})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	want := []bool{true, false, false, true}
	if len(got) != len(want) {
		t.Fatalf("got %d answers, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("answer %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestServer_RejectsUnknownSymbols(t *testing.T) {
	c := startServer(t)
	_, err := c.Answer(context.Background(), []oracle.Query{{Prefix: vca.ParseWord("a z")}})
	if err == nil {
		t.Fatal("expected error for unknown symbol")
	}
	if status.Code(errors.Unwrap(err)) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}
// #endregion round-trip-tests

// #region mock-tests
func TestClient_SendsWordKeys(t *testing.T) {
	m := &mockService{resp: &structpb.ListValue{Values: []*structpb.Value{
		structpb.NewBoolValue(true), structpb.NewBoolValue(false),
	}}}
	c := NewClientWithService(m)
	got, err := c.Answer(context.Background(), []oracle.Query{
		{Prefix: vca.ParseWord("a"), Suffix: vca.ParseWord("b")},
		{},
	})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !got[0] || got[1] {
		t.Errorf("unexpected answers %v", got)
	}
	if m.got.GetValues()[0].GetStringValue() != "a b" || m.got.GetValues()[1].GetStringValue() != "" {
		t.Errorf("unexpected request %v", m.got)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close without connection: %v", err)
	}
}

func TestClient_ShortResponse(t *testing.T) {
	c := NewClientWithService(&mockService{resp: &structpb.ListValue{}})
	if _, err := c.Answer(context.Background(), []oracle.Query{{}}); err == nil {
		t.Fatal("expected error for missing answers")
	}
}

func TestClient_RPCError(t *testing.T) {
	c := NewClientWithService(&mockService{err: errors.New("connection refused")})
	if _, err := c.Answer(context.Background(), []oracle.Query{{}}); err == nil {
		t.Fatal("expected error")
	}
}
// #endregion mock-tests
