package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/kapu/courtside-go/internal/domain"
	apperrors "github.com/kapu/courtside-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeProxy answers like the courtside proxy, including the once-per-day
// mention ledger keyed by handle and subject.
type fakeProxy struct {
	mu      sync.Mutex
	report  string
	aiFail  int
	calls   map[string]int
	posted  map[string]bool
	lastReq domain.PostTextRequest
}

func newFakeProxy(report string) *fakeProxy {
	return &fakeProxy{report: report, calls: map[string]int{}, posted: map[string]bool{}}
}

func (p *fakeProxy) count(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[path]
}

func (p *fakeProxy) setReport(report string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.report = report
}

func (p *fakeProxy) failAI(status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.aiFail = status
}

func (p *fakeProxy) lastPost() domain.PostTextRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastReq
}

func (p *fakeProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[r.URL.Path]++

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/players/search":
		if strings.Contains(strings.ToLower(r.URL.Query().Get("q")), "lebron") {
			_, _ = w.Write([]byte(`{"data":[{"id":237,"first_name":"LeBron","last_name":"James","position":"F",
				"team":{"id":14,"full_name":"Los Angeles Lakers","abbreviation":"LAL"}}],"meta":{"total":1}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[],"meta":{"total":0}}`))

	case "/api/games":
		_, _ = fmt.Fprintf(w, `{"date":%q,"data":[{"id":1,"status":"Final","home":"Los Angeles Lakers","home_abbr":"LAL","visitor":"Phoenix Suns","visitor_abbr":"PHX"}]}`,
			r.URL.Query().Get("date"))

	case "/api/players/profile":
		_, _ = w.Write([]byte(`{"player":{"id":237,"first_name":"LeBron","last_name":"James"},"season":2024,"averages":{"pts":23.7}}`))

	case "/api/ai/on-this-day":
		if p.aiFail != 0 {
			w.WriteHeader(p.aiFail)
			_, _ = w.Write([]byte(`{"ok":false,"error":"model unavailable"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(domain.OnThisDayResponse{Report: p.report, Date: "November 4"})

	case "/api/x/post-text":
		var req domain.PostTextRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		p.lastReq = req
		key := strings.ToLower(req.Handle) + "|" + strings.ToLower(req.Subject)
		if p.posted[key] {
			w.WriteHeader(http.StatusConflict)
			_, _ = fmt.Fprintf(w, `{"ok":false,"error":"Already posted a mention to @%s about %s today"}`, req.Handle, req.Subject)
			return
		}
		p.posted[key] = true
		_, _ = fmt.Fprintf(w, `{"ok":true,"tweet_id":"1850000000000000000","text":%q}`, req.Text)

	default:
		http.NotFound(w, r)
	}
}

func newTestSession(t *testing.T, proxy *fakeProxy) (*Session, *recordingView) {
	t.Helper()
	storage, err := OpenBadgerStorage("")
	require.NoError(t, err)
	return newTestSessionWith(t, proxy, storage)
}

func newTestSessionWith(t *testing.T, handler http.Handler, storage Storage) (*Session, *recordingView) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	view := &recordingView{}
	s := NewSession(NewAPIClient(srv.URL, 2*time.Second, zap.NewNop()), storage, view, zap.NewNop())
	s.now = func() time.Time { return time.Date(2024, 11, 5, 1, 30, 0, 0, time.UTC) }
	s.reports.now = s.now
	t.Cleanup(func() { _ = s.Close() })
	return s, view
}

func TestSession_LeBronFlow(t *testing.T) {
	proxy := newFakeProxy("On Nov 4, 2008, LeBron dropped 41 on the Suns.")
	s, view := newTestSession(t, proxy)
	ctx := context.Background()

	rows, err := s.Search(ctx, "LeBron")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Found 1 player.", s.Status())

	fav, err := s.ToggleFavoriteRow(0)
	require.NoError(t, err)
	assert.True(t, fav)
	assert.Equal(t, "✅ Set LeBron James as favorite!", s.Status())
	assert.Equal(t, "LJ", view.lastPanel().Initials)
	assert.True(t, view.lastRows()[0].IsFavorite)

	report, err := s.ReportFavorite(ctx)
	require.NoError(t, err)
	assert.Equal(t, "On Nov 4, 2008, LeBron dropped 41 on the Suns.", report)

	result, err := s.Tweet(ctx, "@CourtFan")
	require.NoError(t, err)
	assert.Equal(t, "1850000000000000000", result.TweetID)
	assert.Equal(t, "Posted mention! (ID: 1850000000000000000)", s.Status())
	assert.Equal(t, domain.PostTextRequest{
		Text:    "@CourtFan On Nov 4, 2008, LeBron dropped 41 on the Suns.",
		Handle:  "CourtFan",
		Subject: "LeBron James",
	}, proxy.lastPost())

	_, err = s.Tweet(ctx, "courtfan")
	var conflict *apperrors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.True(t, strings.HasPrefix(s.Status(), "X post error (HTTP 409): Already posted"), s.Status())

	label, disabled := s.PostControl().Snapshot()
	assert.Equal(t, "Send it to me", label)
	assert.False(t, disabled)
}

func TestSession_SearchEmptyQueryMakesNoCall(t *testing.T) {
	proxy := newFakeProxy("")
	s, _ := newTestSession(t, proxy)

	_, err := s.Search(context.Background(), "   ")
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Type a name to search.", s.Status())
	assert.Zero(t, proxy.count("/api/players/search"))

	rows, err := s.Search(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, "No players found.", s.Status())
}

func TestSession_ReportIsCappedAndPlaceholdered(t *testing.T) {
	proxy := newFakeProxy(strings.Repeat("word ", 100))
	s, _ := newTestSession(t, proxy)
	ctx := context.Background()

	report, err := s.GenerateReport(ctx, "LeBron James", nil)
	require.NoError(t, err)
	assert.Equal(t, 200, utf8.RuneCountInString(report))
	assert.True(t, strings.HasSuffix(report, "…"))

	proxy.setReport("   ")
	report, err = s.GenerateReport(ctx, "LeBron James", nil)
	require.NoError(t, err)
	assert.Equal(t, "No report returned.", report)
	assert.Equal(t, "No report returned.", s.Report().Text)
}

func TestSession_MentionIsCapped(t *testing.T) {
	proxy := newFakeProxy(strings.Repeat("ábc ", 60))
	s, _ := newTestSession(t, proxy)
	ctx := context.Background()

	_, err := s.GenerateReport(ctx, "Somebody", nil)
	require.NoError(t, err)

	_, err = s.Tweet(ctx, "@abcdefghijklmno")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(proxy.lastPost().Text, "@abcdefghijklmno "))
	assert.LessOrEqual(t, utf8.RuneCountInString(proxy.lastPost().Text), 280)
}

func TestSession_TweetWithoutReportMakesNoCall(t *testing.T) {
	proxy := newFakeProxy("")
	s, _ := newTestSession(t, proxy)

	_, err := s.Tweet(context.Background(), "@fan")
	require.Error(t, err)
	assert.Equal(t, "No report to tweet yet.", s.Status())
	assert.Zero(t, proxy.count("/api/x/post-text"))
}

func TestSession_InvalidHandlesRejected(t *testing.T) {
	proxy := newFakeProxy("A report.")
	s, _ := newTestSession(t, proxy)
	ctx := context.Background()
	_, err := s.GenerateReport(ctx, "LeBron James", nil)
	require.NoError(t, err)

	for _, handle := range []string{"", "@", "bad handle", "abcdefghijklmnop", "semi;colon"} {
		_, err := s.Tweet(ctx, handle)
		var verr *apperrors.ValidationError
		require.ErrorAs(t, err, &verr, handle)
		assert.Equal(t, "Enter a valid X handle (e.g., @yourname).", s.Status())
	}
	assert.Zero(t, proxy.count("/api/x/post-text"))
}

func TestSession_ReportFailureClearsText(t *testing.T) {
	proxy := newFakeProxy("First report.")
	s, _ := newTestSession(t, proxy)
	ctx := context.Background()

	_, err := s.GenerateReport(ctx, "LeBron James", nil)
	require.NoError(t, err)

	proxy.failAI(http.StatusInternalServerError)
	_, err = s.GenerateReport(ctx, "LeBron James", nil)
	require.Error(t, err)
	assert.Equal(t, "AI error: HTTP 500", s.Status())
	assert.Empty(t, s.Report().Text)

	_, err = s.Tweet(ctx, "@fan")
	require.Error(t, err)
	assert.Equal(t, "No report to tweet yet.", s.Status())
}

func TestSession_ReportFavoriteRequiresFavorite(t *testing.T) {
	s, _ := newTestSession(t, newFakeProxy("x"))

	_, err := s.ReportFavorite(context.Background())
	require.Error(t, err)
	assert.Equal(t, "No favorite set.", s.Status())

	_, err = s.ReportRow(context.Background(), 3)
	require.Error(t, err)
	assert.Equal(t, "No row 4 in the last search.", s.Status())
}

func TestSession_GamesDefaultsToEasternDay(t *testing.T) {
	s, _ := newTestSession(t, newFakeProxy(""))

	listing, err := s.Games(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "2024-11-04", listing.Date)
	assert.Equal(t, "Showing 1 game for 2024-11-04.", s.Status())

	_, err = s.Games(context.Background(), "11/04/2024")
	require.Error(t, err)
}

func TestSession_Profile(t *testing.T) {
	s, _ := newTestSession(t, newFakeProxy(""))

	profile, err := s.Profile(context.Background(), "LeBron James")
	require.NoError(t, err)
	require.NotNil(t, profile.Averages)
	assert.InDelta(t, 23.7, profile.Averages.Points, 0.001)
	assert.Equal(t, "2024 season averages for LeBron James.", s.Status())
}

func TestSession_ProfileProxyTimeout(t *testing.T) {
	proxy := newFakeProxy("")
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/players/profile" {
			proxy.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusGatewayTimeout)
		_, _ = w.Write([]byte(`{"ok":false,"error":"player profile lookup timed out after 12s","code":"TIMEOUT_ERROR"}`))
	})
	s, _ := newTestSessionWith(t, handler, NewMemoryStorage())

	_, err := s.Profile(context.Background(), "LeBron James")
	require.Error(t, err)

	var timeout *apperrors.TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, http.StatusGatewayTimeout, apperrors.StatusOf(err))
	assert.Equal(t, "player profile lookup timed out after 12s", timeout.Message)
	assert.Equal(t, "Timed out.", s.Status())
}

func TestSession_ProfileProxyNotFound(t *testing.T) {
	proxy := newFakeProxy("")
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/players/profile" {
			proxy.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"ok":false,"error":"player not found: Nobody","code":"NOT_FOUND_ERROR"}`))
	})
	s, _ := newTestSessionWith(t, handler, NewMemoryStorage())

	_, err := s.Profile(context.Background(), "Nobody")
	var notFound *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "No players found.", s.Status())
}

// brokenStorage fails writes or removals on demand.
type brokenStorage struct {
	*MemoryStorage
	failSet    bool
	failRemove bool
}

func (b *brokenStorage) SetItem(key, value string) error {
	if b.failSet {
		return errors.New("disk full")
	}
	return b.MemoryStorage.SetItem(key, value)
}

func (b *brokenStorage) RemoveItem(key string) error {
	if b.failRemove {
		return errors.New("read-only")
	}
	return b.MemoryStorage.RemoveItem(key)
}

func TestSession_ToggleFavoriteStorageFailure(t *testing.T) {
	t.Run("set not persisted", func(t *testing.T) {
		storage := &brokenStorage{MemoryStorage: NewMemoryStorage(), failSet: true}
		s, _ := newTestSessionWith(t, newFakeProxy(""), storage)
		_, err := s.Search(context.Background(), "LeBron")
		require.NoError(t, err)

		fav, err := s.ToggleFavoriteRow(0)
		assert.False(t, fav)
		assert.True(t, apperrors.Is(err, apperrors.CodeCache))
		assert.Equal(t, "Could not save favorite.", s.Status())
		_, ok := s.Favorites().Get()
		assert.False(t, ok)
	})

	t.Run("remove not persisted", func(t *testing.T) {
		storage := &brokenStorage{MemoryStorage: NewMemoryStorage()}
		s, _ := newTestSessionWith(t, newFakeProxy(""), storage)
		_, err := s.Search(context.Background(), "LeBron")
		require.NoError(t, err)
		fav, err := s.ToggleFavoriteRow(0)
		require.NoError(t, err)
		require.True(t, fav)

		storage.failRemove = true
		fav, err = s.ToggleFavoriteRow(0)
		assert.True(t, fav)
		assert.True(t, apperrors.Is(err, apperrors.CodeCache))
		assert.Equal(t, "Could not save favorite.", s.Status())
		assert.NotContains(t, s.Status(), "Removed")
	})
}

func TestSession_ResetClearsFavoriteAndReport(t *testing.T) {
	proxy := newFakeProxy("A report.")
	s, view := newTestSession(t, proxy)
	ctx := context.Background()

	_, err := s.Search(ctx, "lebron")
	require.NoError(t, err)
	_, err = s.ToggleFavoriteRow(0)
	require.NoError(t, err)
	_, err = s.ReportRow(ctx, 0)
	require.NoError(t, err)

	s.Reset()
	_, ok := s.Favorites().Get()
	assert.False(t, ok)
	assert.Empty(t, s.Report().Text)
	assert.Empty(t, s.Reconciler().Results())
	assert.True(t, view.lastPanel().Empty)
}
