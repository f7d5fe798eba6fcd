// Package async runs fire-and-forget tasks on a fixed set of workers fed by a
// bounded queue.
package async

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

var (
	// ErrQueueFull is returned by Submit when the queue has no free slot.
	ErrQueueFull = errors.New("async: queue full")
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("async: pool closed")
)

// Task is a named unit of work. Name is used only for logging.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Pool executes submitted tasks on a fixed number of workers.
type Pool struct {
	workers int
	queue   chan Task
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

type Option func(*Pool)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) {
		p.logger = logger
	}
}

// New creates a pool; call Start before submitting.
func New(workers, queueSize int, opts ...Option) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	p := &Pool{
		workers: workers,
		queue:   make(chan Task, queueSize),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the workers. Tasks run with a context derived from ctx that
// is cancelled by Close once the queue has drained.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work(ctx)
	}
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting tasks, waits for queued tasks to finish and stops the
// workers.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *Pool) work(ctx context.Context) {
	defer p.wg.Done()
	for task := range p.queue {
		if err := p.run(ctx, task); err != nil {
			p.logger.ErrorContext(ctx, "async task failed",
				"task", task.Name,
				"error", err,
			)
		}
	}
}

func (p *Pool) run(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return task.Run(ctx)
}
