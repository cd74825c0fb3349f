package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ironsheep/vision-demo-mcp/internal/cverr"
)

// Step is one labelled stage of a pipeline.
type Step struct {
	Label string        `json:"label"`
	Delay time.Duration `json:"delay"`
}

// Progress is published when a step starts.
type Progress struct {
	// Label is the step's status text.
	Label string `json:"label"`

	// Percent is 100*(Index+1)/Total. It is exactly 100 for the last step.
	Percent float64 `json:"percent"`

	// Index is the zero-based step index.
	Index int `json:"index"`

	// Total is the number of steps in the run.
	Total int `json:"total"`
}

// Observer receives progress events in step order.
type Observer interface {
	OnProgress(Progress)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Progress)

func (f ObserverFunc) OnProgress(p Progress) { f(p) }

// Gate is the "processing" flag of a session.
type Gate interface {
	// Begin sets the flag and reports true, or reports false when it is
	// already set.
	Begin() bool

	// End clears the flag.
	End()
}

// Flag is a Gate backed by a mutex-guarded bool. The zero value is ready
// to use.
type Flag struct {
	mu   sync.Mutex
	busy bool
}

func (f *Flag) Begin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return false
	}
	f.busy = true
	return true
}

func (f *Flag) End() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

// Busy reports whether the flag is set.
func (f *Flag) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// SleepFunc suspends for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep waits for d on a timer. It returns ctx.Err() if the context ends
// first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Runner executes pipeline definitions.
type Runner struct {
	sleep  SleepFunc
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithSleep replaces the suspension function.
func WithSleep(fn SleepFunc) Option {
	return func(r *Runner) {
		if fn != nil {
			r.sleep = fn
		}
	}
}

// WithLogger sets the logger used for run lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner returns a runner that sleeps on real timers and logs to
// slog.Default unless configured otherwise.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		sleep:  Sleep,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes def under gate.
//
// Progress is reported to obs (which may be nil) before each step's delay.
// produce is called once after the last step; its error, a panic inside it,
// or a context cancellation during a delay is returned as a
// cverr.KindProcessing error carrying def.FailureMessage. The gate is
// released on every path.
func (r *Runner) Run(ctx context.Context, def Definition, gate Gate, obs Observer, produce func() error) (err error) {
	if !gate.Begin() {
		r.logger.Debug("pipeline skipped, another run is in flight", "pipeline", def.Name)
		return cverr.New(cverr.KindSkipped, def.Name, "a pipeline is already running")
	}
	defer gate.End()

	defer func() {
		if rec := recover(); rec != nil {
			err = cverr.Wrap(cverr.KindProcessing, def.Name, def.FailureMessage, fmt.Errorf("panic: %v", rec))
		}
		if err != nil {
			r.logger.Warn("pipeline failed", "pipeline", def.Name, "error", err)
		}
	}()

	start := time.Now()
	r.logger.Info("pipeline started", "pipeline", def.Name, "steps", len(def.Steps))

	n := len(def.Steps)
	for i, step := range def.Steps {
		p := Progress{
			Label:   step.Label,
			Percent: float64(i+1) * 100 / float64(n),
			Index:   i,
			Total:   n,
		}
		if obs != nil {
			obs.OnProgress(p)
		}
		r.logger.Debug("pipeline step", "pipeline", def.Name, "step", step.Label, "percent", p.Percent)

		if err := r.sleep(ctx, step.Delay); err != nil {
			return cverr.Wrap(cverr.KindProcessing, def.Name, def.FailureMessage, err)
		}
	}

	if produce != nil {
		if err := produce(); err != nil {
			return cverr.Wrap(cverr.KindProcessing, def.Name, def.FailureMessage, err)
		}
	}

	r.logger.Info("pipeline finished", "pipeline", def.Name, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
