package cluster

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"

	"github.com/nexusdb/nexusdb-driver-go/internal/common"
	"github.com/nexusdb/nexusdb-driver-go/internal/protocol"
	"github.com/nexusdb/nexusdb-driver-go/internal/rpc"
	"github.com/nexusdb/nexusdb-driver-go/internal/runtime"
)

// fakeServerManager implements protocol.ServerManagerServer, advertising a
// fixed topology list.
type fakeServerManager struct {
	topology []string
}

func (s *fakeServerManager) ServersAll(context.Context, *protocol.ServersAllReq) (*protocol.ServersAllRes, error) {
	return &protocol.ServersAllRes{Servers: s.topology}, nil
}

func startServerManagerFakeServer(t *testing.T, topology []string) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	gs := grpc.NewServer()
	protocol.RegisterServerManagerServer(gs, &fakeServerManager{topology: topology})
	done := make(chan struct{})
	go func() { defer close(done); _ = gs.Serve(lis) }()
	t.Cleanup(func() { gs.GracefulStop(); <-done })
	return lis.Addr().String()
}

// TestNewClusterConnectionDiscoversTopologyFromAnySeed exercises topology
// discovery: giving several seed addresses, only one of which is
// reachable, still succeeds and resolves every server named in that seed's
// advertised topology.
func TestNewClusterConnectionDiscoversTopologyFromAnySeed(t *testing.T) {
	addr1 := startServerManagerFakeServer(t, nil)
	addr2 := startServerManagerFakeServer(t, nil)

	// A third server advertises a topology naming both real addresses; a
	// seed probe against it should resolve both into ServerConnections.
	fakeTopology := []string{addr1, addr2}
	addr1WithTopology := startServerManagerFakeServer(t, fakeTopology)

	rt := runtime.New()
	t.Cleanup(rt.ForceClose)

	seedA, _ := common.ParseAddress(addr1WithTopology)
	unreachable, _ := common.ParseAddress("127.0.0.1:1")

	dial := func(ctx context.Context, addr common.Address) (*rpc.Channel, error) {
		return rpc.OpenPlaintext(ctx, addr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cc, err := NewClusterConnection(ctx, rt, []common.Address{unreachable, seedA}, dial, nil)
	if err != nil {
		t.Fatalf("NewClusterConnection: %v", err)
	}
	t.Cleanup(cc.ForceClose)

	servers := cc.Servers()
	if len(servers) != 2 {
		t.Fatalf("Servers() has %d entries, want 2: %v", len(servers), servers)
	}

	addr1Parsed, _ := common.ParseAddress(addr1)
	if _, ok := cc.ServerAt(addr1Parsed); !ok {
		t.Errorf("ServerAt(%s) not found", addr1)
	}
	addr2Parsed, _ := common.ParseAddress(addr2)
	if _, ok := cc.ServerAt(addr2Parsed); !ok {
		t.Errorf("ServerAt(%s) not found", addr2)
	}
}

func TestNewClusterConnectionFailsWhenNoSeedReachable(t *testing.T) {
	rt := runtime.New()
	t.Cleanup(rt.ForceClose)

	unreachable1, _ := common.ParseAddress("127.0.0.1:1")
	unreachable2, _ := common.ParseAddress("127.0.0.1:2")

	dial := func(ctx context.Context, addr common.Address) (*rpc.Channel, error) {
		return rpc.OpenPlaintext(ctx, addr)
	}

	_, err := NewClusterConnection(context.Background(), rt, []common.Address{unreachable1, unreachable2}, dial, nil)
	if err == nil {
		t.Fatalf("NewClusterConnection succeeded with no reachable seeds")
	}
	connErr, ok := err.(*common.ClusterUnableToConnectError)
	if !ok {
		t.Fatalf("err = %v (%T), want *common.ClusterUnableToConnectError", err, err)
	}
	if len(connErr.Addresses) != 2 {
		t.Errorf("Addresses has %d entries, want 2", len(connErr.Addresses))
	}
}

// TestClusterConnectionForceCloseIsIdempotent covers the BackgroundRuntime's
// sync.Once-guarded shutdown, exercised through ClusterConnection.
func TestClusterConnectionForceCloseIsIdempotent(t *testing.T) {
	target := startServerManagerFakeServer(t, nil)
	seedListener := startServerManagerFakeServer(t, []string{target})

	rt := runtime.New()
	dial := func(ctx context.Context, addr common.Address) (*rpc.Channel, error) {
		return rpc.OpenPlaintext(ctx, addr)
	}
	seed, _ := common.ParseAddress(seedListener)

	cc, err := NewClusterConnection(context.Background(), rt, []common.Address{seed}, dial, nil)
	if err != nil {
		t.Fatalf("NewClusterConnection: %v", err)
	}

	cc.ForceClose()
	cc.ForceClose() // must not panic or block
}
