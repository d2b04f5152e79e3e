package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/kapu/courtside-go/internal/constants"
	"github.com/kapu/courtside-go/internal/domain"
	apperrors "github.com/kapu/courtside-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type controlSnapshot struct {
	label    string
	disabled bool
}

// newComposerWithReport returns a composer whose pipeline already holds a
// report about LeBron James.
func newComposerWithReport(api PostAPI) *PostComposer {
	reports := NewReportPipeline(nil, zap.NewNop())
	reports.state = ReportState{Text: "LeBron scored 41 vs PHX.", SubjectName: "LeBron James"}
	return NewPostComposer(api, reports, zap.NewNop())
}

func TestPostComposedControlLifecycle(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc // nil: the server is closed before posting
		kind    string
	}{
		{
			name: "success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"ok":true,"tweet_id":"42","text":"x"}`))
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"ok":false,"error":"X is down"}`))
			},
			kind: apperrors.CodeUpstream,
		},
		{
			name: "ok false",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"ok":false,"error":"rejected"}`))
			},
			kind: apperrors.CodeUpstream,
		},
		{
			name: "transport",
			kind: apperrors.CodeTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				mu       sync.Mutex
				inFlight []controlSnapshot
				composer *PostComposer
			)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				label, disabled := composer.Control().Snapshot()
				mu.Lock()
				inFlight = append(inFlight, controlSnapshot{label, disabled})
				mu.Unlock()
				tt.handler(w, r)
			}))
			if tt.handler == nil {
				srv.Close()
			} else {
				t.Cleanup(srv.Close)
			}

			composer = newComposerWithReport(NewAPIClient(srv.URL, time.Second, zap.NewNop()))
			text, err := composer.ComposeMention("@CourtFan")
			require.NoError(t, err)

			result, err := composer.PostComposed(context.Background(), "@CourtFan", text)
			if tt.kind == "" {
				require.NoError(t, err)
				assert.Equal(t, "42", result.TweetID)
			} else {
				assert.Equal(t, tt.kind, apperrors.KindOf(err), "got %v", err)
			}

			mu.Lock()
			defer mu.Unlock()
			if tt.handler != nil {
				require.Len(t, inFlight, 1)
				assert.Equal(t, controlSnapshot{constants.Messages.PostingLabel, true}, inFlight[0])
			}

			label, disabled := composer.Control().Snapshot()
			assert.Equal(t, constants.Messages.TweetButtonLabel, label)
			assert.False(t, disabled)
		})
	}
}

// snapshotPoster records the control state seen while PostText runs.
type snapshotPoster struct {
	composer *PostComposer
	seen     controlSnapshot
	req      domain.PostTextRequest
	err      error
}

func (p *snapshotPoster) PostText(_ context.Context, req domain.PostTextRequest) (*domain.PostResult, error) {
	p.req = req
	p.seen.label, p.seen.disabled = p.composer.Control().Snapshot()
	if p.err != nil {
		return nil, p.err
	}
	return &domain.PostResult{OK: true, TweetID: "7", Text: req.Text}, nil
}

func TestPostComposedDisablesControlWhileInFlight(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ok", nil},
		{"transport", apperrors.NewTransportError("X post", errors.New("connection reset"))},
		{"upstream", apperrors.NewUpstreamError("X post", http.StatusInternalServerError, "boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poster := &snapshotPoster{err: tt.err}
			composer := newComposerWithReport(poster)
			poster.composer = composer

			_, err := composer.PostComposed(context.Background(), "@CourtFan", "@CourtFan hello")
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, controlSnapshot{constants.Messages.PostingLabel, true}, poster.seen)
			assert.Equal(t, "CourtFan", poster.req.Handle)
			assert.Equal(t, "LeBron James", poster.req.Subject)

			label, disabled := composer.Control().Snapshot()
			assert.Equal(t, constants.Messages.TweetButtonLabel, label)
			assert.False(t, disabled)
		})
	}
}
