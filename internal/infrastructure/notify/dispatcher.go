package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"skill-swap/internal/domain/swap"
	"skill-swap/internal/pkg/workerpool"

	"github.com/google/uuid"
)

// Envelope is the wire form of a swap event, shared by Redis and websocket clients.
type Envelope struct {
	Type       swap.EventType `json:"type"`
	Target     uuid.UUID      `json:"target_user_id"`
	Actor      uuid.UUID      `json:"actor_user_id"`
	SwapID     uuid.UUID      `json:"swap_id"`
	Status     swap.Status    `json:"status"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func EnvelopeFrom(ev swap.Event) Envelope {
	return Envelope{
		Type:       ev.Type,
		Target:     ev.Target,
		Actor:      ev.Actor,
		SwapID:     ev.SwapID,
		Status:     ev.Status,
		OccurredAt: ev.OccurredAt,
	}
}

type Publisher interface {
	Available() bool
	Publish(ctx context.Context, channel string, payload []byte) error
}

type LocalDelivery interface {
	SendToUser(userID uuid.UUID, payload []byte)
}

// RelayState reports whether this instance receives what it publishes.
type RelayState interface {
	Listening() bool
}

// Dispatcher emits events off the request path. Each event is published to
// Redis so every instance can push it. It is also handed to the local hub
// whenever publishing fails or this instance's relay is not subscribed.
type Dispatcher struct {
	pool      *workerpool.Pool
	publisher Publisher
	local     LocalDelivery
	relay     RelayState
	channel   string
	timeout   time.Duration
	logger    *log.Logger
}

func NewDispatcher(pool *workerpool.Pool, publisher Publisher, local LocalDelivery, channel string, logger *log.Logger) *Dispatcher {
	d := &Dispatcher{
		pool:      pool,
		publisher: publisher,
		local:     local,
		channel:   channel,
		timeout:   3 * time.Second,
		logger:    logger,
	}
	if pool != nil && pool.OnError == nil {
		pool.OnError = func(err error) {
			d.logf("[Notify] delivery failed err=%v", err)
		}
	}
	return d
}

// WithRelay makes delivery depend on the relay that reads the publish channel.
func (d *Dispatcher) WithRelay(r RelayState) *Dispatcher {
	d.relay = r
	return d
}

// Emit never blocks and never fails the caller. Dropped events are logged.
func (d *Dispatcher) Emit(_ context.Context, ev swap.Event) {
	if d == nil || ev.Target == uuid.Nil {
		return
	}
	task := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()
		return d.deliver(ctx, ev)
	}
	if d.pool == nil {
		if err := task(context.Background()); err != nil {
			d.logf("[Notify] delivery failed type=%s swap_id=%s err=%v", ev.Type, ev.SwapID, err)
		}
		return
	}
	if err := d.pool.TrySubmit(task); err != nil {
		d.logf("[Notify] event dropped type=%s swap_id=%s target=%s err=%v", ev.Type, ev.SwapID, ev.Target, err)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev swap.Event) error {
	payload, err := json.Marshal(EnvelopeFrom(ev))
	if err != nil {
		return err
	}

	if d.publisher != nil && d.publisher.Available() {
		err := d.publisher.Publish(ctx, d.channel, payload)
		switch {
		case err != nil:
			d.logf("[Notify] publish failed, delivering locally type=%s err=%v", ev.Type, err)
		case d.relay == nil || d.relay.Listening():
			return nil
		}
	}
	if d.local != nil {
		d.local.SendToUser(ev.Target, payload)
	}
	return nil
}

func (d *Dispatcher) logf(format string, args ...any) {
	if d.logger != nil {
		d.logger.Printf(format, args...)
	}
}
