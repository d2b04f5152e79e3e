package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kapu/courtside-go/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRateLimiter_Returns429AfterBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.5, Burst: 2, CleanupInterval: time.Minute}, zap.NewNop())
	defer rl.Stop()

	calls := 0
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/games", nil)
		req.RemoteAddr = "10.0.0.1:5123"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, "2", rec.Header().Get("Retry-After"))
		}
	}

	assert.Equal(t, []int{200, 200, 429}, codes)
	assert.Equal(t, 2, calls)
}

func TestRateLimiter_KeysByClientIP(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.1, Burst: 1, CleanupInterval: time.Minute}, zap.NewNop())
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1", "10.0.0.1:2"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 2, rl.Count())
}

func TestRateLimiter_CleanupDropsIdleClients(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1, CleanupInterval: time.Minute}, zap.NewNop())
	defer rl.Stop()

	rl.limiterFor("10.0.0.1")
	rl.limiterFor("10.0.0.2")
	require.Equal(t, 2, rl.Count())

	rl.cleanup(time.Now().Add(3 * time.Minute))
	assert.Equal(t, 0, rl.Count())
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1}, zap.NewNop())
	rl.Stop()
	rl.Stop()
}

func TestAccessLogRecordsRoutePattern(t *testing.T) {
	rec := &recordingRecorder{}
	env := newTestEnv()
	env.deps.Recorder = rec

	env.do(t, http.MethodGet, "/api/games?date=2024-11-01", "")
	env.do(t, http.MethodGet, "/api/does-not-exist", "")

	require.Len(t, rec.requests, 2)
	assert.Equal(t, "/api/games GET 200", rec.requests[0])
	assert.True(t, strings.HasSuffix(rec.requests[1], "GET 404"), rec.requests[1])
}

type recordingRecorder struct {
	metrics.Nop
	requests []string
}

func (r *recordingRecorder) RecordHTTPRequest(route, method string, status int) {
	r.requests = append(r.requests, fmt.Sprintf("%s %s %d", route, method, status))
}
