package cluster

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nexusdb/nexusdb-driver-go/internal/common"
)

func TestTransmitterSubmitFIFOOrder(t *testing.T) {
	tx := newTransmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tx.run(ctx)

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tx.submit(context.Background(), func(ctx context.Context) (any, error) {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return i, nil
			}, true)
			if err != nil {
				t.Errorf("submit %d: %v", i, err)
			}
		}()
	}
	wg.Wait()
	if len(order) != 20 {
		t.Fatalf("len(order) = %d, want 20", len(order))
	}
}

func TestTransmitterSubmitReturnsValueAndError(t *testing.T) {
	tx := newTransmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tx.run(ctx)

	v, err := tx.submit(context.Background(), func(ctx context.Context) (any, error) {
		return "ok", nil
	}, true)
	if err != nil || v != "ok" {
		t.Fatalf("submit = (%v, %v), want (ok, nil)", v, err)
	}

	wantErr := errors.New("boom")
	_, err = tx.submit(context.Background(), func(ctx context.Context) (any, error) {
		return nil, wantErr
	}, true)
	if !errors.Is(err, wantErr) {
		t.Fatalf("submit err = %v, want %v", err, wantErr)
	}
}

func TestTransmitterShutdownFailsPendingJobs(t *testing.T) {
	tx := newTransmitter()
	ctx, cancel := context.WithCancel(context.Background())
	go tx.run(ctx)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = tx.submit(context.Background(), func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return nil, nil
		}, true)
	}()
	<-started

	done := make(chan struct{})
	var result any
	var resultErr error
	go func() {
		result, resultErr = tx.submit(context.Background(), func(ctx context.Context) (any, error) {
			return "never runs", nil
		}, false)
		close(done)
	}()

	// Give the second submit a chance to buffer before shutdown.
	time.Sleep(20 * time.Millisecond)
	cancel()
	close(release)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("blocking submit never returned after shutdown")
	}
	if !errors.Is(resultErr, common.ErrClientIsClosed) {
		t.Fatalf("result = (%v, %v), want (_, ErrClientIsClosed)", result, resultErr)
	}

	if _, err := tx.submit(context.Background(), func(ctx context.Context) (any, error) {
		return nil, nil
	}, true); !errors.Is(err, common.ErrClientIsClosed) {
		t.Fatalf("submit after shutdown = %v, want ErrClientIsClosed", err)
	}
}
