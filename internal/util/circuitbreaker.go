package util

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type CircuitState int

const (
	CircuitStateClosed CircuitState = iota
	CircuitStateOpen
	CircuitStateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitStateOpen:
		return "open"
	case CircuitStateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// CircuitBreakerOptions configures a breaker. HealthCheck is optional: without it
// an open circuit turns half-open once its timeout passes; with it the
// circuit waits for a successful health check instead.
type CircuitBreakerOptions struct {
	Name                string
	FailureThreshold    int
	ResetTimeout        time.Duration
	HealthCheckInterval time.Duration
	HealthCheck         func() bool
}

// CircuitBreaker stops calls to a collaborator after consecutive service
// failures. An open circuit only rejects new calls; it never retries on its own.
type CircuitBreaker struct {
	opts   CircuitBreakerOptions
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	state    CircuitState
	failures int
	retryAt  time.Time
	checkAt  time.Time
	checking bool
}

type CircuitBreakerStatus struct {
	State         CircuitState
	FailureCount  int
	NextRetryTime *time.Time
}

func NewCircuitBreaker(opts CircuitBreakerOptions, logger *zap.Logger) *CircuitBreaker {
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CircuitBreaker{
		opts:   opts,
		logger: logger.With(zap.String("circuit", opts.Name)),
		now:    time.Now,
	}
}

// Allow reports whether a call may go through right now.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != CircuitStateOpen {
		return true
	}
	now := cb.now()
	switch {
	case cb.opts.HealthCheck == nil:
		if !now.Before(cb.retryAt) {
			cb.setState(CircuitStateHalfOpen)
			return true
		}
	case !cb.checking && !now.Before(cb.checkAt):
		cb.checking = true
		go cb.healthCheck()
	}
	return false
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	if cb.state != CircuitStateClosed {
		cb.setState(CircuitStateClosed)
	}
}

// RecordFailure counts a service failure. A positive timeout replaces the
// configured reset timeout for this trip.
func (cb *CircuitBreaker) RecordFailure(timeout time.Duration) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	if timeout <= 0 {
		timeout = cb.opts.ResetTimeout
	}
	cb.logger.Warn("Circuit failure recorded",
		zap.Int("count", cb.failures),
		zap.Int("threshold", cb.opts.FailureThreshold),
	)
	if cb.state != CircuitStateHalfOpen && cb.failures < cb.opts.FailureThreshold {
		return
	}

	now := cb.now()
	cb.retryAt = now.Add(timeout)
	cb.checkAt = now.Add(cb.opts.HealthCheckInterval)
	cb.setState(CircuitStateOpen)
}

func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.retryAt = time.Time{}
	cb.setState(CircuitStateClosed)
}

func (cb *CircuitBreaker) Status() CircuitBreakerStatus {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	status := CircuitBreakerStatus{State: cb.state, FailureCount: cb.failures}
	if cb.state == CircuitStateOpen {
		retryAt := cb.retryAt
		status.NextRetryTime = &retryAt
	}
	return status
}

func (cb *CircuitBreaker) healthCheck() {
	healthy := cb.opts.HealthCheck()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.checking = false
	if cb.state != CircuitStateOpen {
		return
	}
	if healthy {
		cb.setState(CircuitStateHalfOpen)
		return
	}
	cb.checkAt = cb.now().Add(cb.opts.HealthCheckInterval)
	cb.logger.Warn("Circuit health check failed")
}

// setState expects cb.mu to be held.
func (cb *CircuitBreaker) setState(next CircuitState) {
	if cb.state == next {
		return
	}
	cb.logger.Info("Circuit state changed",
		zap.Stringer("from", cb.state),
		zap.Stringer("to", next),
		zap.Int("failures", cb.failures),
	)
	cb.state = next
}
