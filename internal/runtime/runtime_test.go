package runtime_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nexusdb/nexusdb-driver-go/internal/common"
	"github.com/nexusdb/nexusdb-driver-go/internal/runtime"
)

func TestSpawnRunsTask(t *testing.T) {
	r := runtime.New()
	defer r.ForceClose()

	var ran atomic.Bool
	done := make(chan struct{})
	if err := r.Spawn(func(ctx context.Context) {
		ran.Store(true)
		close(done)
	}); err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("spawned task did not run")
	}
	if !ran.Load() {
		t.Fatal("task did not set ran")
	}
}

func TestForceCloseCancelsContextAndIsIdempotent(t *testing.T) {
	r := runtime.New()

	cancelled := make(chan struct{})
	if err := r.Spawn(func(ctx context.Context) {
		<-ctx.Done()
		close(cancelled)
	}); err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	r.ForceClose()
	r.ForceClose() // must not panic or block forever

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("spawned task was not cancelled")
	}

	if r.IsOpen() {
		t.Fatal("IsOpen = true after ForceClose")
	}
}

func TestSpawnAfterCloseFails(t *testing.T) {
	r := runtime.New()
	r.ForceClose()

	err := r.Spawn(func(ctx context.Context) {})
	if !errors.Is(err, common.ErrClientIsClosed) {
		t.Fatalf("Spawn after close = %v, want ErrClientIsClosed", err)
	}
}

func TestBlockOnAfterCloseFails(t *testing.T) {
	r := runtime.New()
	r.ForceClose()

	err := r.BlockOn(func(ctx context.Context) error { return nil })
	if !errors.Is(err, common.ErrClientIsClosed) {
		t.Fatalf("BlockOn after close = %v, want ErrClientIsClosed", err)
	}
}
