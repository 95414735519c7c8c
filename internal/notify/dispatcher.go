// Package notify delivers human readable events out of band.
package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fareroute/backend-go/internal/models"
)

// Deliverer sends one event somewhere. It may block.
type Deliverer interface {
	Deliver(ctx context.Context, channel models.Channel, text string) error
}

type event struct {
	channel models.Channel
	text    string
}

// Dispatcher is an asynchronous NotificationSink. Events are queued on a
// bounded buffer and handed to the Deliverer by a single worker, at most once.
// A full buffer drops the event.
type Dispatcher struct {
	deliverer Deliverer
	timeout   time.Duration
	queue     chan event
	done      chan struct{}

	mu     sync.RWMutex
	closed bool

	delivered atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
}

var _ models.NotificationSink = (*Dispatcher)(nil)

// NewDispatcher starts the worker. timeout bounds each delivery.
func NewDispatcher(deliverer Deliverer, buffer int, timeout time.Duration) *Dispatcher {
	if buffer <= 0 {
		buffer = 1
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	d := &Dispatcher{
		deliverer: deliverer,
		timeout:   timeout,
		queue:     make(chan event, buffer),
		done:      make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) Emit(channel models.Channel, text string) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		return
	}

	select {
	case d.queue <- event{channel: channel, text: text}:
	default:
		d.dropped.Add(1)
		log.Warn().Str("channel", string(channel)).Msg("Notification queue full, dropping event")
	}
}

// Close stops accepting events and waits for queued ones to be delivered or
// for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns delivery counters.
func (d *Dispatcher) Stats() map[string]uint64 {
	return map[string]uint64{
		"delivered": d.delivered.Load(),
		"failed":    d.failed.Load(),
		"dropped":   d.dropped.Load(),
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.deliverer.Deliver(ctx, ev.channel, ev.text)
		cancel()

		if err != nil {
			d.failed.Add(1)
			log.Error().Err(err).Str("channel", string(ev.channel)).Msg("Notification delivery failed")
			continue
		}
		d.delivered.Add(1)
	}
}
