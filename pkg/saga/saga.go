// Package saga runs a sequence of remote calls that must succeed together.
//
// The library API has no multi-record transactions: filing a book under new
// categories and removing old ones are separate calls. A Saga runs the steps in
// order; when one fails, the compensations of the steps already done run
// in reverse order, best effort, and the failure is returned.
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/libadmin/pkg/logger"
	"github.com/xiebiao/libadmin/pkg/metrics"
)

// Step is one action with its undo. Either may be nil.
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// StepError reports which step failed and whether undoing the earlier ones
// failed too.
type StepError struct {
	Step       string
	Index      int
	Err        error
	Compensate error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("saga step %d (%s) failed: %v", e.Index, e.Step, e.Err)
	if e.Compensate != nil {
		msg += fmt.Sprintf("; compensation failed: %v", e.Compensate)
	}
	return msg
}

func (e *StepError) Unwrap() error { return e.Err }

// Saga is single-use and not safe for concurrent Execute calls.
type Saga struct {
	name     string
	steps    []Step
	executed []Step
	timeout  time.Duration
	log      *zap.Logger
}

// Option configures a Saga.
type Option func(*Saga)

// WithTimeout bounds the forward steps. Compensations get their own budget
// of the same length, detached from the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(s *Saga) { s.timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Saga) { s.log = l }
}

// New creates an empty saga.
func New(name string, opts ...Option) *Saga {
	s := &Saga{name: name, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.OrNop(s.log).With(zap.String("saga", name))
	return s
}

// AddStep appends a step. Steps run in the order they were added.
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, Step{Name: name, Action: action, Compensate: compensate})
	return s
}

// Len is the number of steps.
func (s *Saga) Len() int { return len(s.steps) }

// Execute runs every step. On failure it compensates and returns a
// *StepError wrapping the step's error.
func (s *Saga) Execute(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		err := ctx.Err()
		if err == nil && step.Action != nil {
			err = step.Action(ctx)
		}
		if err != nil {
			compErr := s.compensate(context.WithoutCancel(ctx))
			s.record("failed")
			s.log.Warn("saga step failed",
				zap.Int("step", i),
				zap.String("name", step.Name),
				zap.Error(err),
				zap.NamedError("compensation", compErr))
			return &StepError{Step: step.Name, Index: i, Err: err, Compensate: compErr}
		}
		s.executed = append(s.executed, step)
	}

	s.record("succeeded")
	return nil
}

// compensate undoes executed steps in reverse order and keeps going past
// failures.
func (s *Saga) compensate(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var errs []error
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}
		metrics.IncCounter(metrics.SagaCompensationsTotal)
		if err := step.Compensate(ctx); err != nil {
			s.log.Error("saga compensation failed", zap.String("name", step.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", step.Name, err))
		}
	}
	s.executed = nil
	return errors.Join(errs...)
}

func (s *Saga) record(result string) {
	metrics.IncCounterVec(metrics.SagaExecutionsTotal, map[string]string{"name": s.name, "result": result})
}
