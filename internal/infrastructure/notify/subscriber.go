package notify

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
)

type Subscription interface {
	Available() bool
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// Relay forwards events published by any instance to the sockets held by this one.
type Relay struct {
	sub     Subscription
	local   LocalDelivery
	channel string
	logger  *log.Logger

	listening atomic.Bool
}

func NewRelay(sub Subscription, local LocalDelivery, channel string, logger *log.Logger) *Relay {
	return &Relay{sub: sub, local: local, channel: channel, logger: logger}
}

// Run blocks until ctx ends. Without Redis it returns immediately.
func (r *Relay) Run(ctx context.Context) error {
	if r == nil || r.sub == nil || !r.sub.Available() || r.local == nil {
		return nil
	}

	msgs, err := r.sub.Subscribe(ctx, r.channel)
	if err != nil {
		return err
	}
	r.listening.Store(true)
	defer r.listening.Store(false)
	if r.logger != nil {
		r.logger.Printf("[Notify] relay subscribed channel=%s", r.channel)
	}

	for payload := range msgs {
		var env Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			if r.logger != nil {
				r.logger.Printf("[Notify] bad envelope err=%v", err)
			}
			continue
		}
		r.local.SendToUser(env.Target, payload)
	}
	return nil
}

// Listening reports whether events published to Redis currently reach this
// instance's sockets.
func (r *Relay) Listening() bool {
	return r != nil && r.listening.Load()
}
