package protocol_test

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/nexusdb/nexusdb-driver-go/internal/common"
	"github.com/nexusdb/nexusdb-driver-go/internal/protocol"
)

func TestOptionsRoundTrip(t *testing.T) {
	infer := true
	size := int32(50)
	timeout := 30 * time.Second
	opts := common.Options{Infer: &infer, PrefetchSize: &size, TransactionTimeout: &timeout}

	body := protocol.MarshalOptions(opts)
	got, err := protocol.UnmarshalOptions(body)
	if err != nil {
		t.Fatalf("UnmarshalOptions: %v", err)
	}
	if got.Infer == nil || *got.Infer != true {
		t.Fatalf("Infer = %v, want true", got.Infer)
	}
	if got.PrefetchSize == nil || *got.PrefetchSize != 50 {
		t.Fatalf("PrefetchSize = %v, want 50", got.PrefetchSize)
	}
	if got.TransactionTimeout == nil || *got.TransactionTimeout != 30*time.Second {
		t.Fatalf("TransactionTimeout = %v, want 30s", got.TransactionTimeout)
	}
	if got.Explain != nil {
		t.Fatalf("Explain should remain unset, got %v", got.Explain)
	}
}

// mockCoreDatabaseManagerServer is a minimal CoreDatabaseManagerServer for
// tests, in the teacher's mockAlertServer style: keeps an in-memory set of
// database names and answers from it.
type mockCoreDatabaseManagerServer struct {
	databases map[string]bool
}

func (s *mockCoreDatabaseManagerServer) Contains(_ context.Context, req *protocol.NameReq) (*protocol.ContainsRes, error) {
	return &protocol.ContainsRes{Contains: s.databases[req.Name]}, nil
}

func (s *mockCoreDatabaseManagerServer) Create(_ context.Context, req *protocol.NameReq) (*protocol.CreateRes, error) {
	s.databases[req.Name] = true
	return &protocol.CreateRes{}, nil
}

func (s *mockCoreDatabaseManagerServer) All(_ context.Context, _ *protocol.AllReq) (*protocol.AllRes, error) {
	res := &protocol.AllRes{}
	for name := range s.databases {
		res.Databases = append(res.Databases, common.DatabaseInfo{Name: name})
	}
	return res, nil
}

func startInsecureServer(t *testing.T, register func(*grpc.Server)) string {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	gs := grpc.NewServer()
	register(gs)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = gs.Serve(lis)
	}()

	t.Cleanup(func() {
		gs.GracefulStop()
		<-done
	})

	return lis.Addr().String()
}

func dialInsecure(t *testing.T, addr string) *grpc.ClientConn {
	t.Helper()
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestCoreDatabaseManagerContainsAndCreate(t *testing.T) {
	svc := &mockCoreDatabaseManagerServer{databases: map[string]bool{}}
	addr := startInsecureServer(t, func(gs *grpc.Server) {
		protocol.RegisterCoreDatabaseManagerServer(gs, svc)
	})

	conn := dialInsecure(t, addr)
	client := protocol.NewCoreDatabaseManagerClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	contains, err := client.Contains(ctx, &protocol.NameReq{Name: "social_network"})
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if contains.Contains {
		t.Fatalf("Contains = true before Create")
	}

	if _, err := client.Create(ctx, &protocol.NameReq{Name: "social_network"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	contains, err = client.Contains(ctx, &protocol.NameReq{Name: "social_network"})
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !contains.Contains {
		t.Fatalf("Contains = false after Create")
	}

	all, err := client.All(ctx, &protocol.AllReq{})
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all.Databases) != 1 || all.Databases[0].Name != "social_network" {
		t.Fatalf("All = %+v, want one database named social_network", all.Databases)
	}
}

// mockTransactionServer echoes each Req back as a Res with the same ReqID,
// exercising the bidi stream frame plumbing end to end.
type mockTransactionServer struct{}

func (s *mockTransactionServer) Transact(stream protocol.TransactionStreamServer) error {
	for {
		frame, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		for _, req := range frame.Reqs {
			if err := stream.Send(&protocol.ServerFrame{Res: &protocol.Res{ReqID: req.ReqID, OK: true, Payload: req.Payload}}); err != nil {
				return err
			}
		}
	}
}

func TestTransactionStreamEchoesRequests(t *testing.T) {
	addr := startInsecureServer(t, func(gs *grpc.Server) {
		protocol.RegisterTransactionServer(gs, &mockTransactionServer{})
	})

	conn := dialInsecure(t, addr)
	client := protocol.NewTransactionClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.Transact(ctx)
	if err != nil {
		t.Fatalf("Transact: %v", err)
	}

	reqID := common.NewRequestID()
	if err := stream.Send(&protocol.ClientFrame{Reqs: []protocol.Req{{ReqID: reqID, Payload: []byte("ping")}}}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	frame, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if frame.Res == nil {
		t.Fatalf("expected a Res frame, got %+v", frame)
	}
	if frame.Res.ReqID != reqID {
		t.Fatalf("ReqID = %v, want %v", frame.Res.ReqID, reqID)
	}
	if string(frame.Res.Payload) != "ping" {
		t.Fatalf("Payload = %q, want %q", frame.Res.Payload, "ping")
	}

	if err := stream.CloseSend(); err != nil {
		t.Fatalf("CloseSend: %v", err)
	}
}
