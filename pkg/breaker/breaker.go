package breaker

import (
	"sync"
	"time"
)

// State represents the current state of the circuit breaker.
type State int

const (
	// StateClosed allows calls to pass through.
	StateClosed State = iota
	// StateOpen blocks calls until the cool-down elapses.
	StateOpen
	// StateHalfOpen allows a single trial call to test recovery.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

const (
	// DefaultFailureThreshold opens the circuit after this many consecutive failures.
	DefaultFailureThreshold = 5
	// DefaultCooldown is how long the circuit stays open before probing recovery.
	DefaultCooldown = 30 * time.Second
)

// CircuitBreaker tracks the health of a single downstream dependency.
// It opens after a number of consecutive failures, blocks calls while open,
// and after the cool-down admits exactly one trial call: trial success closes
// the circuit, trial failure reopens it. Safe for concurrent use.
type CircuitBreaker struct {
	mu sync.Mutex

	failureThreshold int
	cooldown         time.Duration

	state           State
	failures        int
	lastFailureTime time.Time
	trialInFlight   bool

	// now is overridable for deterministic cool-down tests.
	now func() time.Time
}

// New creates a circuit breaker. Non-positive arguments fall back to the
// package defaults.
func New(failureThreshold int, cooldown time.Duration) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = DefaultFailureThreshold
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}

	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		cooldown:         cooldown,
		state:            StateClosed,
		now:              time.Now,
	}
}

// Allow reports whether a call should be issued right now.
// While open it returns false until the cool-down elapses, then transitions to
// half-open and admits a single trial; concurrent callers during the trial are
// rejected until the trial settles.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true

	case StateOpen:
		if cb.now().Sub(cb.lastFailureTime) > cb.cooldown {
			cb.state = StateHalfOpen
			cb.trialInFlight = true
			return true
		}
		return false

	case StateHalfOpen:
		if cb.trialInFlight {
			return false
		}
		cb.trialInFlight = true
		return true

	default:
		return false
	}
}

// RecordSuccess records a successful call and may close the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures = 0

	case StateHalfOpen:
		cb.state = StateClosed
		cb.failures = 0
		cb.trialInFlight = false
	}
}

// RecordFailure records a failed call and may open the circuit.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailureTime = cb.now()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.failureThreshold {
			cb.state = StateOpen
		}

	case StateHalfOpen:
		cb.state = StateOpen
		cb.failures = cb.failureThreshold
		cb.trialInFlight = false
	}
}

// State returns the current state, accounting for an elapsed cool-down.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && cb.now().Sub(cb.lastFailureTime) > cb.cooldown {
		return StateHalfOpen
	}
	return cb.state
}

// Reset returns the circuit breaker to the closed state.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = StateClosed
	cb.failures = 0
	cb.trialInFlight = false
	cb.lastFailureTime = time.Time{}
}

// Stats provides visibility into breaker state for logs and monitoring.
type Stats struct {
	State           string
	Failures        int
	LastFailureTime time.Time
}

// Stats returns a snapshot of the breaker counters.
func (cb *CircuitBreaker) Stats() Stats {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return Stats{
		State:           cb.state.String(),
		Failures:        cb.failures,
		LastFailureTime: cb.lastFailureTime,
	}
}

// SetClock overrides the breaker clock. Intended for tests.
func (cb *CircuitBreaker) SetClock(now func() time.Time) {
	if now == nil {
		return
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.now = now
}
