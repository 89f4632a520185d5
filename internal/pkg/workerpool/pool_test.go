package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_RunsTasksAndReportsErrors(t *testing.T) {
	p := New(3, 16)
	var ran atomic.Int32
	var mu sync.Mutex
	var errs []error
	p.OnError = func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	done := p.Run(context.Background())
	boom := errors.New("boom")
	for i := 0; i < 10; i++ {
		i := i
		if err := p.TrySubmit(func(context.Context) error {
			ran.Add(1)
			if i == 0 {
				return boom
			}
			return nil
		}); err != nil {
			t.Fatalf("unexpected submit err: %v", err)
		}
	}
	p.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("workers did not stop")
	}

	if ran.Load() != 10 {
		t.Fatalf("expected 10 tasks, got %d", ran.Load())
	}
	if len(errs) != 1 || !errors.Is(errs[0], boom) {
		t.Fatalf("expected one boom error, got %v", errs)
	}
}

func TestPool_QueueFullAndClosed(t *testing.T) {
	p := New(1, 1)
	block := func(context.Context) error { return nil }

	if err := p.TrySubmit(block); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := p.TrySubmit(block); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}

	p.Close()
	if err := p.TrySubmit(block); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	p.Close()
}

func TestPool_StopsOnContextCancel(t *testing.T) {
	p := New(2, 0)
	ctx, cancel := context.WithCancel(context.Background())
	done := p.Run(ctx)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("workers did not stop after cancel")
	}
}
