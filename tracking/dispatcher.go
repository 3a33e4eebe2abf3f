// Package tracking sends view and share events off the caller's path. Events
// are queued and delivered by a fixed pool of workers; delivery failures are
// logged and dropped.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrDispatcherClosed is returned by Enqueue after Shutdown.
var ErrDispatcherClosed = errors.New("tracking dispatcher closed")

// Kind is the event being reported.
type Kind string

const (
	KindView  Kind = "view"
	KindShare Kind = "share"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindView || k == KindShare
}

// Tracker delivers events for one media service. service.Feed satisfies it.
type Tracker interface {
	TrackView(ctx context.Context, slug string) error
	TrackShare(ctx context.Context, slug string) error
}

// Event is one queued tracking call.
type Event struct {
	Kind Kind
	Slug string
	Feed Tracker
}

// Config controls the dispatcher's concurrency.
type Config struct {
	QueueSize int
	Workers   int
	// Timeout bounds each delivery. Defaults to 10s.
	Timeout time.Duration
}

// Stats counts delivered and failed events.
type Stats struct {
	Delivered int64
	Failed    int64
}

// Dispatcher runs a worker pool that delivers tracking events.
type Dispatcher struct {
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan Event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once

	delivered atomic.Int64
	failed    atomic.Int64
}

// NewDispatcher starts cfg.Workers workers.
func NewDispatcher(cfg Config, logger *slog.Logger) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		logger:  logger,
		timeout: cfg.Timeout,
		queue:   make(chan Event, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	d.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go d.worker()
	}
	return d
}

// Enqueue queues ev, blocking while the queue is full.
func (d *Dispatcher) Enqueue(ctx context.Context, ev Event) error {
	if !ev.Kind.Valid() {
		return fmt.Errorf("tracking: unknown event kind %q", ev.Kind)
	}
	if ev.Feed == nil {
		return errors.New("tracking: event has no feed")
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case d.queue <- ev:
		return nil
	}
}

// Shutdown stops accepting events and waits for queued ones to be delivered.
// If ctx expires first, in-flight deliveries are canceled.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		d.cancel()
		return ctx.Err()
	case <-done:
		d.cancel()
		return nil
	}
}

// Stats returns delivery counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{Delivered: d.delivered.Load(), Failed: d.failed.Load()}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for ev := range d.queue {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev Event) {
	ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
	defer cancel()

	var err error
	switch ev.Kind {
	case KindView:
		err = ev.Feed.TrackView(ctx, ev.Slug)
	case KindShare:
		err = ev.Feed.TrackShare(ctx, ev.Slug)
	}

	if err != nil {
		d.failed.Add(1)
		d.logger.Error("tracking event failed", "kind", ev.Kind, "slug", ev.Slug, "error", err)
		return
	}
	d.delivered.Add(1)
	d.logger.Debug("tracking event delivered", "kind", ev.Kind, "slug", ev.Slug)
}
