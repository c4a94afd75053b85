// Package dispatch delivers build-finished notifications to a handler on a
// bounded pool of worker goroutines.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cicd-ai-toolkit/build-tracer/pkg/build"
)

var (
	// ErrQueueFull is returned when no queue slot is free
	ErrQueueFull = errors.New("dispatch queue is full")
	// ErrStopped is returned after Stop
	ErrStopped = errors.New("dispatcher is stopped")
	// ErrDuplicate is returned for a build delivered again within the dedupe window
	ErrDuplicate = errors.New("build already dispatched")
)

// Handler processes one notification. Implementations must not panic; the
// dispatcher recovers anyway so a worker never dies.
type Handler interface {
	BuildFinished(ctx context.Context, b *build.Build)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, b *build.Build)

// BuildFinished calls f.
func (f HandlerFunc) BuildFinished(ctx context.Context, b *build.Build) { f(ctx, b) }

// Options sizes a Dispatcher.
type Options struct {
	Workers   int
	QueueSize int
	// DedupeTTL suppresses repeated deliveries of the same build id; 0 disables
	DedupeTTL time.Duration
}

// Dispatcher manages a pool of goroutines handling notifications
type Dispatcher struct {
	handler Handler
	workers int
	tasks   chan *build.Build
	recent  *recentBuilds

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup

	activeJobs atomic.Int32
	handled    atomic.Int64
}

// New creates a dispatcher. Call Start before submitting.
func New(handler Handler, opts Options) (*Dispatcher, error) {
	if opts.Workers <= 0 {
		return nil, fmt.Errorf("workers must be positive, got %d", opts.Workers)
	}
	if opts.QueueSize <= 0 {
		return nil, fmt.Errorf("queue size must be positive, got %d", opts.QueueSize)
	}

	d := &Dispatcher{
		handler: handler,
		workers: opts.Workers,
		tasks:   make(chan *build.Build, opts.QueueSize),
	}
	if opts.DedupeTTL > 0 {
		d.recent = newRecentBuilds(opts.QueueSize*16, opts.DedupeTTL)
	}
	return d, nil
}

// Start starts the workers. ctx is handed to every handler call.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
}

// worker processes notifications until the queue is closed and drained
func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()

	for b := range d.tasks {
		d.activeJobs.Add(1)
		func() {
			// Ensure counter decrements even if the handler panics
			defer d.activeJobs.Add(-1)
			defer func() {
				_ = recover()
			}()
			d.handler.BuildFinished(ctx, b)
		}()
		d.handled.Add(1)
	}
}

// Submit queues a notification without blocking.
func (d *Dispatcher) Submit(b *build.Build) error {
	if b == nil {
		return fmt.Errorf("nil build")
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}

	if d.recent != nil && !d.recent.add(b.BuildID) {
		return ErrDuplicate
	}

	select {
	case d.tasks <- b:
		return nil
	default:
		if d.recent != nil {
			// allow a redelivery once there is room again
			d.recent.remove(b.BuildID)
		}
		return ErrQueueFull
	}
}

// Stop stops accepting notifications, lets workers drain the queue and
// waits for them. Safe to call multiple times.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.tasks)
	d.mu.Unlock()

	d.wg.Wait()
}

// ActiveJobs returns the number of notifications being handled right now
func (d *Dispatcher) ActiveJobs() int {
	return int(d.activeJobs.Load())
}

// QueueSize returns the number of queued notifications
func (d *Dispatcher) QueueSize() int {
	return len(d.tasks)
}

// Handled returns the number of notifications handled so far
func (d *Dispatcher) Handled() int64 {
	return d.handled.Load()
}
