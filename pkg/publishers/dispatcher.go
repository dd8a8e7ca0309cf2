package publishers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samvad-hq/samvad-mirror-gateway/internal/domain"
	"github.com/samvad-hq/samvad-mirror-gateway/internal/logger"
)

const (
	defaultQueueSize      = 256
	defaultPublishTimeout = 5 * time.Second
)

// Dispatcher decouples resolve reporting from delivery. Observe never blocks:
// reports are queued and published by a single background worker, and
// reports arriving while the queue is full are dropped and counted.
type Dispatcher struct {
	fanout         *Fanout
	queue          chan Event
	log            logger.Logger
	publishTimeout time.Duration

	mu     sync.RWMutex
	closed bool

	dropped   atomic.Int64
	published atomic.Int64
	done      chan struct{}

	releaseOnce sync.Once
	releaseErr  error
}

// NewDispatcher starts a worker that publishes queued events through fanout.
func NewDispatcher(fanout *Fanout, queueSize int, log logger.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	d := &Dispatcher{
		fanout:         fanout,
		queue:          make(chan Event, queueSize),
		log:            logger.Ensure(log),
		publishTimeout: defaultPublishTimeout,
		done:           make(chan struct{}),
	}
	go d.run()
	return d
}

// Observe queues a report for delivery.
func (d *Dispatcher) Observe(report domain.ResolveReport) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped.Add(1)
		return
	}

	select {
	case d.queue <- NewEvent(report):
	default:
		n := d.dropped.Add(1)
		d.log.WarnObj("telemetry queue full, dropping report", "telemetry_drop", map[string]any{
			"path":    report.Path,
			"dropped": n,
		})
	}
}

// Sinks returns the number of publishers events are delivered to.
func (d *Dispatcher) Sinks() int { return d.fanout.Size() }

// Dropped returns how many reports were discarded.
func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }

// Published returns how many events reached at least one publisher.
func (d *Dispatcher) Published() int64 { return d.published.Load() }

func (d *Dispatcher) run() {
	defer close(d.done)
	for evt := range d.queue {
		d.publish(evt)
	}
}

func (d *Dispatcher) publish(evt Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.publishTimeout)
	defer cancel()

	n, err := d.fanout.Publish(ctx, evt)
	if n > 0 {
		d.published.Add(1)
	}
	if err != nil {
		d.log.WarnObj("telemetry publish failed", "telemetry_error", map[string]any{
			"event_id":  evt.ID,
			"delivered": n,
			"error":     err.Error(),
		})
	}
}

// Close stops accepting reports, waits for queued events to drain and then
// releases the publishers. It returns ctx.Err() if the drain does not finish
// in time.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	d.releaseOnce.Do(func() { d.releaseErr = d.fanout.Close() })
	return d.releaseErr
}
