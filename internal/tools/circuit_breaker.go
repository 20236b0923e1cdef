package tools

import (
	"errors"
	"log"
	"sync"
	"time"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker open")
	ErrTooManyRequests = errors.New("too many probes in half-open state")
)

// CircuitState is the current mode of the breaker.
type CircuitState int

const (
	StateClosed   CircuitState = iota // normal operation
	StateOpen                         // upstream failing, reject calls
	StateHalfOpen                     // probing whether upstream recovered
)

func (s CircuitState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Stats is a point-in-time snapshot of breaker counters.
type Stats struct {
	State      CircuitState
	Requests   int64
	Successes  int64
	Failures   int64
	Rejections int64
}

// CircuitBreaker shields the LLM endpoint from hammering while it is down.
// After failureThreshold consecutive failures it opens and rejects calls
// until openFor has elapsed, then lets a few probes through before closing.
type CircuitBreaker struct {
	mu sync.RWMutex

	state        CircuitState
	failures     int // consecutive failures while closed
	probeSuccess int // consecutive successes while half-open
	probesInUse  int
	lastFailure  time.Time

	failureThreshold int
	recoverySuccess  int // probe successes needed to close
	maxProbes        int
	openFor          time.Duration

	stats Stats
}

// NewCircuitBreaker creates a breaker that opens after failureThreshold
// consecutive failures and stays open for openFor.
func NewCircuitBreaker(failureThreshold int, openFor time.Duration) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 3
	}
	if openFor < time.Second {
		openFor = 5 * time.Minute
	}
	cb := &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: failureThreshold,
		recoverySuccess:  3,
		maxProbes:        3,
		openFor:          openFor,
	}
	log.Printf("[CircuitBreaker] Initialized: threshold=%d failures, open_for=%s", failureThreshold, openFor)
	return cb
}

// Call runs fn through the breaker, recording its outcome.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if err := cb.admit(); err != nil {
		return err
	}
	err := fn()
	cb.record(err)
	return err
}

// IsOpen reports whether calls are currently being rejected. It also
// drives the open to half-open transition once the cooldown elapses.
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.maybeHalfOpen()
	return cb.state == StateOpen
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.maybeHalfOpen()
	return cb.state
}

// Snapshot returns current counters.
func (cb *CircuitBreaker) Snapshot() Stats {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	s := cb.stats
	s.State = cb.state
	return s
}

// maybeHalfOpen transitions open -> half-open after the cooldown.
// Caller must hold cb.mu.
func (cb *CircuitBreaker) maybeHalfOpen() {
	if cb.state == StateOpen && time.Since(cb.lastFailure) > cb.openFor {
		cb.state = StateHalfOpen
		cb.probeSuccess = 0
		cb.probesInUse = 0
		log.Printf("[CircuitBreaker] State: open -> half-open (cooldown elapsed, probing)")
	}
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.stats.Requests++
	cb.maybeHalfOpen()

	switch cb.state {
	case StateOpen:
		cb.stats.Rejections++
		return ErrCircuitOpen
	case StateHalfOpen:
		if cb.probesInUse >= cb.maxProbes {
			cb.stats.Rejections++
			return ErrTooManyRequests
		}
		cb.probesInUse++
	}
	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen && cb.probesInUse > 0 {
		cb.probesInUse--
	}

	if err != nil {
		cb.stats.Failures++
		cb.failures++
		cb.probeSuccess = 0
		cb.lastFailure = time.Now()

		switch cb.state {
		case StateClosed:
			if cb.failures >= cb.failureThreshold {
				cb.state = StateOpen
				log.Printf("[CircuitBreaker] State: closed -> open (%d consecutive failures)", cb.failures)
			}
		case StateHalfOpen:
			cb.state = StateOpen
			log.Printf("[CircuitBreaker] State: half-open -> open (probe failed)")
		}
		return
	}

	cb.stats.Successes++
	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.probeSuccess++
		if cb.probeSuccess >= cb.recoverySuccess {
			cb.state = StateClosed
			cb.failures = 0
			log.Printf("[CircuitBreaker] State: half-open -> closed (upstream recovered)")
		}
	}
}
