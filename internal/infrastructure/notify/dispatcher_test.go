package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"skill-swap/internal/domain/swap"
	"skill-swap/internal/pkg/workerpool"

	"github.com/google/uuid"
)

type fakePublisher struct {
	mu        sync.Mutex
	available bool
	err       error
	published [][]byte
}

func (p *fakePublisher) Available() bool { return p.available }

func (p *fakePublisher) Publish(_ context.Context, _ string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, payload)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

type fakeLocal struct {
	mu  sync.Mutex
	got map[uuid.UUID][][]byte
}

func (l *fakeLocal) SendToUser(userID uuid.UUID, payload []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.got == nil {
		l.got = map[uuid.UUID][][]byte{}
	}
	l.got[userID] = append(l.got[userID], payload)
}

func (l *fakeLocal) count(userID uuid.UUID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.got[userID])
}

type relayState bool

func (s relayState) Listening() bool { return bool(s) }

func event(target uuid.UUID) swap.Event {
	return swap.Event{
		Type:       swap.EventProposed,
		Target:     target,
		Actor:      uuid.New(),
		SwapID:     uuid.New(),
		Status:     swap.StatusPending,
		OccurredAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestDispatcher_PublishesWhenRedisAvailable(t *testing.T) {
	pub := &fakePublisher{available: true}
	local := &fakeLocal{}
	d := NewDispatcher(nil, pub, local, "swaps:events", nil).WithRelay(relayState(true))

	target := uuid.New()
	d.Emit(context.Background(), event(target))

	if pub.count() != 1 {
		t.Fatalf("expected 1 published event, got %d", pub.count())
	}
	if got := local.count(target); got != 0 {
		t.Fatalf("expected no local delivery while the relay listens, got %d", got)
	}

	var env Envelope
	if err := json.Unmarshal(pub.published[0], &env); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if env.Type != swap.EventProposed || env.Target != target {
		t.Fatalf("expected proposed event for %s, got %+v", target, env)
	}
}

func TestDispatcher_FallsBackToLocalHub(t *testing.T) {
	pub := &fakePublisher{available: true, err: errors.New("conn reset")}
	local := &fakeLocal{}
	d := NewDispatcher(nil, pub, local, "swaps:events", nil)

	target := uuid.New()
	d.Emit(context.Background(), event(target))
	if got := local.count(target); got != 1 {
		t.Fatalf("expected local delivery after publish failure, got %d", got)
	}

	pub.available = false
	pub.err = nil
	d.Emit(context.Background(), event(target))
	if got := local.count(target); got != 2 {
		t.Fatalf("expected local delivery without redis, got %d", got)
	}
	if pub.count() != 0 {
		t.Fatalf("expected nothing published, got %d", pub.count())
	}
}

func TestDispatcher_DeliversLocallyWhenRelayDown(t *testing.T) {
	pub := &fakePublisher{available: true}
	local := &fakeLocal{}
	d := NewDispatcher(nil, pub, local, "swaps:events", nil).WithRelay(relayState(false))

	target := uuid.New()
	d.Emit(context.Background(), event(target))

	if pub.count() != 1 {
		t.Fatalf("expected the event still published for other instances, got %d", pub.count())
	}
	if got := local.count(target); got != 1 {
		t.Fatalf("expected local delivery while the relay is down, got %d", got)
	}
}

func TestDispatcher_AsyncThroughPool(t *testing.T) {
	pool := workerpool.New(2, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := pool.Run(ctx)

	local := &fakeLocal{}
	d := NewDispatcher(pool, nil, local, "swaps:events", nil)
	target := uuid.New()
	for i := 0; i < 3; i++ {
		d.Emit(context.Background(), event(target))
	}
	pool.Close()
	<-done

	if got := local.count(target); got != 3 {
		t.Fatalf("expected 3 deliveries, got %d", got)
	}
}

func TestDispatcher_IgnoresNilTarget(t *testing.T) {
	local := &fakeLocal{}
	d := NewDispatcher(nil, nil, local, "c", nil)
	d.Emit(context.Background(), event(uuid.Nil))
	if got := local.count(uuid.Nil); got != 0 {
		t.Fatalf("expected nil target dropped, got %d", got)
	}
}

type fakeSubscription struct {
	ch  chan []byte
	err error
}

func (s fakeSubscription) Available() bool { return true }

func (s fakeSubscription) Subscribe(context.Context, string) (<-chan []byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ch, nil
}

func TestRelay_ForwardsToTarget(t *testing.T) {
	ch := make(chan []byte, 2)
	local := &fakeLocal{}
	r := NewRelay(fakeSubscription{ch: ch}, local, "c", nil)

	target := uuid.New()
	b, err := json.Marshal(EnvelopeFrom(event(target)))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ch <- []byte("not json")
	ch <- b
	close(ch)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := local.count(target); got != 1 {
		t.Fatalf("expected 1 forwarded event, got %d", got)
	}
	if r.Listening() {
		t.Fatalf("expected relay to stop listening after the subscription closed")
	}
}

func TestRelay_ListeningWhileSubscribed(t *testing.T) {
	ch := make(chan []byte)
	r := NewRelay(fakeSubscription{ch: ch}, &fakeLocal{}, "c", nil)

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for !r.Listening() {
		if time.Now().After(deadline) {
			t.Fatalf("expected relay to report listening")
		}
		time.Sleep(5 * time.Millisecond)
	}

	close(ch)
	if err := <-done; err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if r.Listening() {
		t.Fatalf("expected relay to stop listening")
	}
}

func TestRelay_SubscribeFailureLeavesDispatcherLocal(t *testing.T) {
	local := &fakeLocal{}
	r := NewRelay(fakeSubscription{err: errors.New("NOAUTH")}, local, "c", nil)
	if err := r.Run(context.Background()); err == nil {
		t.Fatalf("expected subscribe error")
	}
	if r.Listening() {
		t.Fatalf("expected relay not listening")
	}

	pub := &fakePublisher{available: true}
	d := NewDispatcher(nil, pub, local, "c", nil).WithRelay(r)
	target := uuid.New()
	d.Emit(context.Background(), event(target))
	if got := local.count(target); got != 1 {
		t.Fatalf("expected local delivery, got %d", got)
	}
}
