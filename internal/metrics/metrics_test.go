package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordUpstream("balldontlie", OutcomeOK)
	c.RecordUpstream("balldontlie", OutcomeOK)
	c.RecordUpstream("x", OutcomeError)
	c.RecordPost(PostDuplicate)

	if got := testutil.ToFloat64(c.upstream.WithLabelValues("balldontlie", OutcomeOK)); got != 2 {
		t.Errorf("balldontlie ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.posts.WithLabelValues(PostDuplicate)); got != 1 {
		t.Errorf("duplicate posts = %v, want 1", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordHTTPRequest("/api/games", http.MethodGet, 200)
	c.RecordAILatency(1500 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body, _ := io.ReadAll(w.Result().Body)
	for _, name := range []string{"courtside_http_requests_total", "courtside_ai_latency_seconds"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("response should contain %s", name)
		}
	}
}

func TestNopSatisfiesRecorder(t *testing.T) {
	var r Recorder = Nop{}
	r.RecordPost(PostSent)
}
