package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kapu/courtside-go/internal/domain"
	"github.com/kapu/courtside-go/internal/metrics"
	"github.com/kapu/courtside-go/internal/service/social"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type PlayerSearcher interface {
	SearchPlayers(ctx context.Context, query string, perPage int) (*domain.PlayerSearchResult, error)
}

type GameLister interface {
	ListGames(ctx context.Context, date string) (*domain.GameListing, error)
}

type ProfileLookup interface {
	Profile(ctx context.Context, name string, season int) (*domain.PlayerProfile, error)
}

type ReportGenerator interface {
	OnThisDay(ctx context.Context, name, monthDay string) (string, error)
}

// PostPublisher posts through the daily ledger.
type PostPublisher interface {
	PostText(ctx context.Context, req domain.PostTextRequest) (*domain.PostResult, error)
	Mention(ctx context.Context, req domain.MentionRequest) (*domain.PostResult, error)
}

// Deps is everything the router serves. Recorder, Gatherer, Limiter and
// StaticDir are optional.
type Deps struct {
	Players   PlayerSearcher
	Games     GameLister
	Profiles  ProfileLookup
	Reports   ReportGenerator
	X         social.Poster
	Publisher PostPublisher

	Recorder       metrics.Recorder
	Gatherer       prometheus.Gatherer
	Limiter        *RateLimiter
	AllowedOrigins []string
	StaticDir      string

	// Checks back /readyz; each returns nil when its backend answers.
	Checks map[string]func(context.Context) error

	Logger *zap.Logger
	Now    func() time.Time
}

func NewRouter(deps Deps) http.Handler {
	if deps.Recorder == nil {
		deps.Recorder = metrics.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	h := &handlers{
		players:   deps.Players,
		games:     deps.Games,
		profiles:  deps.Profiles,
		reports:   deps.Reports,
		x:         deps.X,
		publisher: deps.Publisher,
		recorder:  deps.Recorder,
		validate:  newRequestValidator(),
		staticDir: deps.StaticDir,
		checks:    deps.Checks,
		logger:    deps.Logger,
		now:       deps.Now,
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(accessLog(deps.Logger, deps.Recorder))
	r.Use(chimw.Recoverer)

	if len(deps.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: deps.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"Retry-After"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", h.ready)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/api", func(r chi.Router) {
		if deps.Limiter != nil {
			r.Use(deps.Limiter.Middleware)
		}

		r.Get("/players/search", h.searchPlayers)
		r.Get("/players/profile", h.playerProfile)
		r.Get("/games", h.listGames)

		r.Post("/ai/on-this-day", h.onThisDay)

		r.Get("/x/health", h.xHealth)
		r.Get("/x/validate-handle", h.validateHandle)
		r.Post("/x/post-text", h.postText)
		r.Post("/x/on-this-day-mention", h.mention)
	})

	r.NotFound(h.fallback)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"ok": false, "error": "method not allowed"})
	})

	return r
}
