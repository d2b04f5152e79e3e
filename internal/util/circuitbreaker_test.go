package util

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(opts CircuitBreakerOptions) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(opts, zap.NewNop())
	cb.now = clock.now
	return cb, clock
}

func TestCircuitOpensAtThreshold(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerOptions{Name: "t", FailureThreshold: 2, ResetTimeout: time.Minute})

	cb.RecordFailure(0)
	assert.True(t, cb.Allow())
	cb.RecordFailure(0)
	assert.False(t, cb.Allow())

	status := cb.Status()
	assert.Equal(t, CircuitStateOpen, status.State)
	require.NotNil(t, status.NextRetryTime)
	assert.Equal(t, clock.t.Add(time.Minute), *status.NextRetryTime)
}

func TestCircuitHalfOpensAfterTimeout(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerOptions{FailureThreshold: 1, ResetTimeout: time.Minute})
	cb.RecordFailure(0)

	clock.advance(59 * time.Second)
	assert.False(t, cb.Allow())
	clock.advance(time.Second)
	assert.True(t, cb.Allow())
	assert.Equal(t, CircuitStateHalfOpen, cb.Status().State)

	// one failure while half-open trips it again
	cb.RecordFailure(0)
	assert.Equal(t, CircuitStateOpen, cb.Status().State)

	clock.advance(time.Minute)
	require.True(t, cb.Allow())
	cb.RecordSuccess()
	assert.Equal(t, CircuitStateClosed, cb.Status().State)
	assert.Zero(t, cb.Status().FailureCount)
}

func TestCircuitCustomTimeout(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerOptions{FailureThreshold: 1, ResetTimeout: time.Minute})
	cb.RecordFailure(10 * time.Minute)

	clock.advance(5 * time.Minute)
	assert.False(t, cb.Allow())
	clock.advance(5 * time.Minute)
	assert.True(t, cb.Allow())
}

func TestCircuitHealthCheckHalfOpens(t *testing.T) {
	var calls atomic.Int32
	cb, clock := newTestBreaker(CircuitBreakerOptions{
		FailureThreshold:    1,
		ResetTimeout:        time.Minute,
		HealthCheckInterval: time.Second,
		HealthCheck: func() bool {
			calls.Add(1)
			return true
		},
	})
	cb.RecordFailure(0)

	assert.False(t, cb.Allow())
	clock.advance(time.Second)
	assert.False(t, cb.Allow())

	assert.Eventually(t, func() bool {
		return cb.Status().State == CircuitStateHalfOpen
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, cb.Allow())
}

func TestCircuitReset(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerOptions{FailureThreshold: 1, ResetTimeout: time.Hour})
	cb.RecordFailure(0)
	require.False(t, cb.Allow())

	cb.Reset()
	assert.True(t, cb.Allow())
	assert.Nil(t, cb.Status().NextRetryTime)
	assert.Equal(t, "closed", cb.Status().State.String())
}
