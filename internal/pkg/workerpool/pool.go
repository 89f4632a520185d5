package workerpool

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrQueueFull = errors.New("worker pool queue full")
	ErrClosed    = errors.New("worker pool closed")
)

type Task func(ctx context.Context) error

// Pool runs submitted tasks on a fixed number of goroutines. Task errors go to
// the OnError hook.
type Pool struct {
	workers int
	tasks   chan Task
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool

	OnError func(err error)
}

func New(workers, buffer int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Pool{
		workers: workers,
		tasks:   make(chan Task, buffer),
	}
}

// TrySubmit enqueues t without blocking.
func (p *Pool) TrySubmit(t Task) error {
	if p == nil || t == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.tasks <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops intake. Queued tasks still run unless the Run context ends first.
func (p *Pool) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.tasks)
}

// Run starts the workers and returns a channel closed once all of them exit.
func (p *Pool) Run(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if p == nil {
		close(done)
		return done
	}

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-p.tasks:
					if !ok {
						return
					}
					if err := t(ctx); err != nil && p.OnError != nil {
						p.OnError(err)
					}
				}
			}
		}()
	}

	go func() {
		p.wg.Wait()
		close(done)
	}()

	return done
}
