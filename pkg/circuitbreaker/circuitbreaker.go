// Package circuitbreaker guards calls to the library API.
//
// The breaker has three states. CLOSED lets every call through and counts
// outcomes inside a rolling interval; once ReadyToTrip says so it turns
// OPEN and rejects calls with ErrOpenState until Timeout elapses. It then
// turns HALF_OPEN and lets up to MaxRequests trial requests through: one success
// closes it again, one failure reopens it.
//
// Only failures that say something about the health of the remote side
// count. Config.IsSuccessful decides that; a 404 or a validation error from
// the API is a healthy answer.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State of a breaker.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config of a breaker. Zero fields take the defaults of DefaultConfig.
type Config struct {
	// MaxRequests is the number of trial requests allowed while HALF_OPEN.
	MaxRequests uint32
	// Interval is the CLOSED-state window after which counts reset.
	Interval time.Duration
	// Timeout is how long the breaker stays OPEN.
	Timeout time.Duration
	// ReadyToTrip decides, after a failure, whether to open.
	ReadyToTrip func(counts Counts) bool
	// IsSuccessful classifies the error returned by a call. nil counts as
	// success when unset.
	IsSuccessful func(err error) bool
}

// DefaultConfig opens after five consecutive failures and tries again
// after thirty seconds.
func DefaultConfig() Config {
	return Config{
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: ConsecutiveFailures(5),
	}
}

// ConsecutiveFailures trips after n failures in a row.
func ConsecutiveFailures(n uint32) func(Counts) bool {
	return func(c Counts) bool { return c.ConsecutiveFailures >= n }
}

// Counts are the outcomes seen in the current window.
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// FailureRate is failures over requests, zero when idle.
func (c Counts) FailureRate() float64 {
	if c.Requests == 0 {
		return 0
	}
	return float64(c.TotalFailures) / float64(c.Requests)
}

func (c *Counts) reset() { *c = Counts{} }

func (c *Counts) success() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) failure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// ErrOpenState is returned without calling through while the breaker
// rejects calls.
var ErrOpenState = errors.New("circuit breaker is open")

// StateChangeFunc observes transitions. It runs under the breaker's lock
// and must not call back into it.
type StateChangeFunc func(name string, from, to State)

// CircuitBreaker is safe for concurrent use.
type CircuitBreaker struct {
	name         string
	maxRequests  uint32
	interval     time.Duration
	timeout      time.Duration
	readyToTrip  func(Counts) bool
	isSuccessful func(error) bool
	now          func() time.Time

	mu            sync.Mutex
	state         State
	generation    uint64
	counts        Counts
	expiry        time.Time
	onStateChange StateChangeFunc
}

// New creates a CLOSED breaker.
func New(name string, cfg Config) *CircuitBreaker {
	def := DefaultConfig()
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = def.MaxRequests
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.ReadyToTrip == nil {
		cfg.ReadyToTrip = def.ReadyToTrip
	}
	if cfg.IsSuccessful == nil {
		cfg.IsSuccessful = func(err error) bool { return err == nil }
	}

	cb := &CircuitBreaker{
		name:         name,
		maxRequests:  cfg.MaxRequests,
		interval:     cfg.Interval,
		timeout:      cfg.Timeout,
		readyToTrip:  cfg.ReadyToTrip,
		isSuccessful: cfg.IsSuccessful,
		now:          time.Now,
		state:        StateClosed,
	}
	cb.expiry = cb.now().Add(cb.interval)
	return cb
}

// Name of the breaker.
func (cb *CircuitBreaker) Name() string { return cb.name }

// OnStateChange installs fn as the transition observer.
func (cb *CircuitBreaker) OnStateChange(fn StateChangeFunc) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Execute runs fn unless the breaker rejects the call. fn's error is
// returned unchanged. A context cancelled by the caller is not held against
// the remote side.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	generation, err := cb.beforeRequest()
	if err != nil {
		return err
	}

	err = fn(ctx)

	switch {
	case err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()):
		cb.release(generation)
	default:
		cb.afterRequest(generation, cb.isSuccessful(err))
	}
	return err
}

func (cb *CircuitBreaker) beforeRequest() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, generation := cb.currentState(cb.now())
	switch {
	case state == StateOpen:
		return generation, ErrOpenState
	case state == StateHalfOpen && cb.counts.Requests >= cb.maxRequests:
		return generation, ErrOpenState
	}
	cb.counts.Requests++
	return generation, nil
}

func (cb *CircuitBreaker) afterRequest(before uint64, success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()
	state, generation := cb.currentState(now)
	if generation != before {
		return
	}

	if success {
		cb.counts.success()
		if state == StateHalfOpen {
			cb.setState(StateClosed, now)
		}
		return
	}

	cb.counts.failure()
	switch state {
	case StateClosed:
		if cb.readyToTrip(cb.counts) {
			cb.setState(StateOpen, now)
		}
	case StateHalfOpen:
		cb.setState(StateOpen, now)
	}
}

// release gives back the slot of a call whose outcome says nothing.
func (cb *CircuitBreaker) release(before uint64) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.generation == before && cb.counts.Requests > 0 {
		cb.counts.Requests--
	}
}

func (cb *CircuitBreaker) currentState(now time.Time) (State, uint64) {
	switch cb.state {
	case StateClosed:
		if !cb.expiry.IsZero() && cb.expiry.Before(now) {
			cb.counts.reset()
			cb.expiry = now.Add(cb.interval)
		}
	case StateOpen:
		if cb.expiry.Before(now) {
			cb.setState(StateHalfOpen, now)
		}
	}
	return cb.state, cb.generation
}

func (cb *CircuitBreaker) setState(state State, now time.Time) {
	if cb.state == state {
		return
	}

	prev := cb.state
	cb.state = state
	cb.generation++
	cb.counts.reset()

	switch state {
	case StateClosed:
		cb.expiry = now.Add(cb.interval)
	case StateOpen:
		cb.expiry = now.Add(cb.timeout)
	case StateHalfOpen:
		cb.expiry = time.Time{}
	}

	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, prev, state)
	}
}

// State returns the current state, applying any pending timeout.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	state, _ := cb.currentState(cb.now())
	return state
}

// Counts returns a copy of the current window's counts.
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.counts
}
