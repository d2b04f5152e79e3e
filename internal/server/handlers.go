package server

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kapu/courtside-go/internal/compose"
	"github.com/kapu/courtside-go/internal/constants"
	"github.com/kapu/courtside-go/internal/domain"
	"github.com/kapu/courtside-go/internal/metrics"
	"github.com/kapu/courtside-go/internal/service/balldontlie"
	"github.com/kapu/courtside-go/internal/service/social"
	"github.com/kapu/courtside-go/internal/util"
	apperrors "github.com/kapu/courtside-go/pkg/errors"
	"go.uber.org/zap"
)

type handlers struct {
	players   PlayerSearcher
	games     GameLister
	profiles  ProfileLookup
	reports   ReportGenerator
	x         social.Poster
	publisher PostPublisher
	recorder  metrics.Recorder
	validate  *requestValidator
	staticDir string
	checks    map[string]func(context.Context) error
	logger    *zap.Logger
	now       func() time.Time
}

func (h *handlers) searchPlayers(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusOK, domain.PlayerSearchResult{Data: []domain.Player{}})
		return
	}

	result, err := h.players.SearchPlayers(r.Context(), q, constants.TextLimits.PlayerSearchPage)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if result.Data == nil {
		result.Data = []domain.Player{}
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) listGames(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		date = util.DayET(h.now())
	} else if _, err := util.ParseDay(date); err != nil {
		h.writeError(w, r, apperrors.NewValidationError("date must look like 2006-01-02", "date", date))
		return
	}

	listing, err := h.games.ListGames(r.Context(), date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *handlers) playerProfile(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		h.writeError(w, r, apperrors.NewValidationError("name required", "name", name))
		return
	}

	season := balldontlie.CurrentSeason(util.ToET(h.now()))
	if raw := strings.TrimSpace(r.URL.Query().Get("season")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1946 {
			h.writeError(w, r, apperrors.NewValidationError("season must be a year like 2024", "season", raw))
			return
		}
		season = parsed
	}

	profile, err := h.profiles.Profile(r.Context(), name, season)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// onThisDay renders the requested day as "January 2". An explicit date is a
// calendar day and is used as is; tz only decides what "today" means.
func (h *handlers) onThisDay(w http.ResponseWriter, r *http.Request) {
	var req domain.OnThisDayRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := h.validate.Validate(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	loc := util.EasternLocation()
	if req.TZ != "" {
		tz, err := time.LoadLocation(req.TZ)
		if err != nil {
			h.writeError(w, r, apperrors.NewValidationError("tz must be an IANA time zone", "tz", req.TZ))
			return
		}
		loc = tz
	}

	day := h.now().In(loc)
	if req.Date != "" {
		parsed, err := time.ParseInLocation(util.DateLayout, req.Date, loc)
		if err != nil {
			h.writeError(w, r, apperrors.NewValidationError("date must look like 2006-01-02", "date", req.Date))
			return
		}
		day = parsed
	}
	monthDay := util.MonthDay(day, loc)

	start := time.Now()
	report, err := h.reports.OnThisDay(r.Context(), req.Name, monthDay)
	h.recorder.RecordAILatency(time.Since(start))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, domain.OnThisDayResponse{Report: report, Date: monthDay})
}

// xHealth answers 400 rather than 500 when credentials are missing: the proxy
// works, X is simply not set up.
func (h *handlers) xHealth(w http.ResponseWriter, r *http.Request) {
	if h.x == nil || !h.x.Configured() {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"ok":      false,
			"stage":   "config",
			"missing": h.missingX(),
		})
		return
	}

	me, err := h.x.Me(r.Context())
	if err != nil {
		h.logger.Warn("X auth check failed", zap.Error(err))
		body := errorBody(err)
		body["stage"] = "auth"
		writeJSON(w, http.StatusInternalServerError, body)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "user": me})
}

func (h *handlers) validateHandle(w http.ResponseWriter, r *http.Request) {
	if h.x == nil || !h.x.Configured() {
		h.writeError(w, r, apperrors.NewConfigurationError("X client not configured", h.missingX()))
		return
	}

	handle := compose.SanitizeHandle(r.URL.Query().Get("handle"))
	if handle == "" {
		h.writeError(w, r, apperrors.NewValidationError("handle required", "handle", ""))
		return
	}

	user, err := h.x.UserByUsername(r.Context(), handle)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "user": user})
}

func (h *handlers) postText(w http.ResponseWriter, r *http.Request) {
	var req domain.PostTextRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.publisher.PostText(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) mention(w http.ResponseWriter, r *http.Request) {
	var req domain.MentionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := h.validate.Validate(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.publisher.Mention(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// fallback serves the static client. Unknown /api paths stay JSON 404s; any
// other HTML GET that matches no file gets index.html.
func (h *handlers) fallback(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") || h.staticDir == "" {
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "not found"})
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"ok": false, "error": "method not allowed"})
		return
	}

	rel := filepath.FromSlash(filepath.Clean("/" + r.URL.Path))
	candidate := filepath.Join(h.staticDir, rel)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		http.ServeFile(w, r, candidate)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		index := filepath.Join(h.staticDir, "index.html")
		if _, err := os.Stat(index); err == nil {
			http.ServeFile(w, r, index)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "not found"})
}

// ready runs every backend check under a short deadline. Any failure is a 503.
func (h *handlers) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.String("check", name), zap.Error(err))
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	writeJSON(w, status, map[string]any{"ok": status == http.StatusOK, "checks": results})
}

func (h *handlers) missingX() []string {
	if h.x == nil {
		return []string{"X_API_KEY", "X_API_SECRET", "X_ACCESS_TOKEN", "X_ACCESS_SECRET"}
	}
	return h.x.Missing()
}
