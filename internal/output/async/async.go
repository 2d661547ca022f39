package async

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crimson-sun/ctngresults/internal/model"
	"github.com/crimson-sun/ctngresults/internal/output"
)

const (
	defaultBufferSize   = 1024
	defaultDrainTimeout = 5 * time.Second
)

// ErrDrainTimeout is returned by Close when queued entries were still being
// written after the drain timeout. The inner output is left open.
var ErrDrainTimeout = errors.New("async output: drain timed out")

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets the channel buffer capacity. Default: 1024.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithOnError sets the callback invoked when the inner output fails.
// Default: logs a warning.
func WithOnError(f func(error)) Option {
	return func(a *Async) { a.errFunc = f }
}

// WithDropOnFull makes writes return immediately, dropping the entry, when
// the buffer is full instead of blocking.
func WithDropOnFull() Option {
	return func(a *Async) { a.dropOnFull = true }
}

// WithDrainTimeout bounds how long Close waits for queued entries. Default: 5s.
func WithDrainTimeout(d time.Duration) Option {
	return func(a *Async) { a.drainTimeout = d }
}

// WithLogger sets the logger for dropped entries and the default error callback.
func WithLogger(l *zap.Logger) Option {
	return func(a *Async) { a.logger = l }
}

// op is one deferred write against the inner output.
type op struct {
	kind string
	fn   func(ctx context.Context, o output.Output) error
}

// Async decouples the run from a slow report destination via a buffered
// channel. A background goroutine drains the channel into the wrapped output.
// Errors from the inner output go to errFunc, not to the caller.
type Async struct {
	inner        output.Output
	ch           chan op
	done         chan struct{}
	errFunc      func(error)
	logger       *zap.Logger
	bufSize      int
	drainTimeout time.Duration
	dropOnFull   bool
	closeOnce    sync.Once
}

// New wraps inner and starts the drain goroutine.
func New(inner output.Output, opts ...Option) *Async {
	a := &Async{
		inner:        inner,
		bufSize:      defaultBufferSize,
		drainTimeout: defaultDrainTimeout,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.errFunc == nil {
		a.errFunc = func(err error) { a.logger.Warn("async output write error", zap.Error(err)) }
	}
	a.ch = make(chan op, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

func (a *Async) WriteOutcome(_ context.Context, o model.FileOutcome) error {
	return a.enqueue(op{kind: "outcome", fn: func(ctx context.Context, out output.Output) error {
		return out.WriteOutcome(ctx, o)
	}})
}

func (a *Async) WriteValue(_ context.Context, v model.FileValue) error {
	return a.enqueue(op{kind: "value", fn: func(ctx context.Context, out output.Output) error {
		return out.WriteValue(ctx, v)
	}})
}

func (a *Async) WriteNoFiles(_ context.Context, dir string) error {
	return a.enqueue(op{kind: "no_files", fn: func(ctx context.Context, out output.Output) error {
		return out.WriteNoFiles(ctx, dir)
	}})
}

// enqueue blocks while the buffer is full unless drop-on-full is set.
func (a *Async) enqueue(o op) error {
	if a.dropOnFull {
		select {
		case a.ch <- o:
		default:
			a.logger.Warn("async output buffer full, dropping entry", zap.String("kind", o.kind))
		}
		return nil
	}
	a.ch <- o
	return nil
}

// Close stops accepting entries and waits for the queue to drain, then
// closes the inner output. If the drain outlasts the timeout, the inner
// output is not closed, since the drain goroutine may still be writing to it.
func (a *Async) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.ch)
		t := time.NewTimer(a.drainTimeout)
		defer t.Stop()
		select {
		case <-a.done:
			err = a.inner.Close()
		case <-t.C:
			a.logger.Warn("async output drain timed out, leaving inner output open")
			err = ErrDrainTimeout
		}
	})
	return err
}

func (a *Async) drain() {
	defer close(a.done)
	for o := range a.ch {
		if err := o.fn(context.Background(), a.inner); err != nil {
			a.errFunc(err)
		}
	}
}
