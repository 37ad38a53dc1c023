package chat

import (
	"context"
	"sync"

	"github.com/traveller-vtt/dv/pkg/core"
)

// Outbox collects outgoing chat until the transport drains it.
type Outbox struct {
	mu    sync.Mutex
	items []core.Outgoing
}

// NewOutbox creates an empty outbox.
func NewOutbox() *Outbox {
	return &Outbox{
		items: make([]core.Outgoing, 0),
	}
}

// Send queues a message. It never fails.
func (o *Outbox) Send(_ context.Context, msg core.Outgoing) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = append(o.items, msg)
	return nil
}

// Len returns the number of queued messages.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.items)
}

// Drain returns all queued messages and empties the outbox.
func (o *Outbox) Drain() []core.Outgoing {
	o.mu.Lock()
	defer o.mu.Unlock()
	result := o.items
	o.items = make([]core.Outgoing, 0, cap(o.items))
	return result
}

// Broadcast is a message for everyone.
func Broadcast(speaker, delivery, html string) core.Outgoing {
	return core.Outgoing{Speaker: speaker, Delivery: delivery, HTML: html}
}

// Whisper is a message for a single player.
func Whisper(speaker, playerID, html string) core.Outgoing {
	return core.Outgoing{Speaker: speaker, Target: playerID, Delivery: core.DeliveryWhisper, HTML: html}
}
