package resilience

import (
	"context"
	"sync"
	"time"

	"thumbs/utils/errors"
)

// CircuitBreakerState represents the state of the circuit breaker
type CircuitBreakerState string

const (
	StateClosed   CircuitBreakerState = "closed"
	StateOpen     CircuitBreakerState = "open"
	StateHalfOpen CircuitBreakerState = "half_open"
)

// CircuitBreakerConfig holds the configuration for the circuit breaker
type CircuitBreakerConfig struct {
	FailureThreshold int           `json:"failure_threshold"`
	ResetTimeout     time.Duration `json:"reset_timeout"`
	// IsFailure decides whether an error returned by the operation counts against the
	// breaker. Nil counts every error.
	IsFailure func(error) bool `json:"-"`
}

// DefaultCircuitBreakerConfig returns default configuration
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
	}
}

// SimpleCircuitBreaker opens after FailureThreshold consecutive failures and lets a single
// probe through once ResetTimeout has elapsed.
type SimpleCircuitBreaker struct {
	config          *CircuitBreakerConfig
	state           CircuitBreakerState
	failureCount    int
	lastFailureTime time.Time
	probing         bool
	now             func() time.Time
	mutex           sync.Mutex
}

// NewSimpleCircuitBreaker creates a new circuit breaker instance
func NewSimpleCircuitBreaker(config *CircuitBreakerConfig) *SimpleCircuitBreaker {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}

	return &SimpleCircuitBreaker{
		config: config,
		state:  StateClosed,
		now:    time.Now,
	}
}

// Execute runs the operation with circuit breaker protection. It returns
// errors.ErrCircuitOpen without calling operation while the breaker is open.
func (cb *SimpleCircuitBreaker) Execute(ctx context.Context, operation func(context.Context) error) error {
	if err := cb.acquire(); err != nil {
		return err
	}

	err := operation(ctx)

	if err != nil && cb.countsAsFailure(err) {
		cb.onFailure()
		return err
	}

	cb.onSuccess()
	return err
}

func (cb *SimpleCircuitBreaker) countsAsFailure(err error) bool {
	if cb.config.IsFailure == nil {
		return true
	}
	return cb.config.IsFailure(err)
}

func (cb *SimpleCircuitBreaker) acquire() error {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if cb.state == StateOpen && cb.now().Sub(cb.lastFailureTime) >= cb.config.ResetTimeout {
		cb.state = StateHalfOpen
	}

	switch cb.state {
	case StateClosed:
		return nil
	case StateHalfOpen:
		if cb.probing {
			return errors.ErrCircuitOpen
		}
		cb.probing = true
		return nil
	default:
		return errors.ErrCircuitOpen
	}
}

// GetState returns the current state
func (cb *SimpleCircuitBreaker) GetState() CircuitBreakerState {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

// GetFailureCount returns the current failure count
func (cb *SimpleCircuitBreaker) GetFailureCount() int {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.failureCount
}

// Reset resets the circuit breaker to initial state
func (cb *SimpleCircuitBreaker) Reset() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.state = StateClosed
	cb.failureCount = 0
	cb.probing = false
	cb.lastFailureTime = time.Time{}
}

func (cb *SimpleCircuitBreaker) onSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.state = StateClosed
	cb.failureCount = 0
	cb.probing = false
}

func (cb *SimpleCircuitBreaker) onFailure() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failureCount++
	cb.lastFailureTime = cb.now()

	switch cb.state {
	case StateClosed:
		if cb.failureCount >= cb.config.FailureThreshold {
			cb.state = StateOpen
		}
	case StateHalfOpen:
		cb.state = StateOpen
		cb.probing = false
	}
}
