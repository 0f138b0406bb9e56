package listview

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/libadmin/pkg/logger"
)

// Auditor records mutations confirmed by the server.
type Auditor interface {
	Record(ctx context.Context, actor, screen, op string, ids ...int64)
}

// Env is what every screen of one console session shares.
type Env struct {
	Debounce time.Duration
	Timeout  time.Duration
	Logger   *zap.Logger
	Auditor  Auditor
	// Actor is the signed-in user, stamped on audit records.
	Actor string
	// OnError sees failed fetches of every screen in the session.
	OnError func(error)
	// Now is the clock used for date rules. Nil means time.Now.
	Now func() time.Time
}

// Configure fills the session-wide settings into opts.
func Configure[T any](env Env, opts Options[T]) Options[T] {
	if opts.Debounce == 0 {
		opts.Debounce = env.Debounce
	}
	if opts.Timeout == 0 {
		opts.Timeout = env.Timeout
	}
	if opts.Logger == nil {
		opts.Logger = env.Logger
	}
	if opts.OnError == nil {
		opts.OnError = env.OnError
	}
	return opts
}

// Record forwards a mutation to the auditor, if any.
func (e Env) Record(ctx context.Context, screen, op string, ids ...int64) {
	if e.Auditor == nil {
		return
	}
	e.Auditor.Record(ctx, e.Actor, screen, op, ids...)
}

// Clock returns the current time.
func (e Env) Clock() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Log returns the session logger.
func (e Env) Log() *zap.Logger {
	return logger.OrNop(e.Logger)
}
