package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kapu/courtside-go/internal/constants"
	"github.com/kapu/courtside-go/internal/domain"
	"github.com/kapu/courtside-go/internal/util"
	apperrors "github.com/kapu/courtside-go/pkg/errors"
	"go.uber.org/zap"
)

// API is the proxy surface a session uses.
type API interface {
	ReportAPI
	PostAPI
	SearchPlayers(ctx context.Context, query string) (*domain.PlayerSearchResult, error)
	ListGames(ctx context.Context, date string) (*domain.GameListing, error)
	Profile(ctx context.Context, name string, season int) (*domain.PlayerProfile, error)
}

// Session owns all client state for one user: the favorite, the last search
// results, the last report and the status line. Operations never leave the
// status stale; errors are returned as well so callers can branch on kind.
type Session struct {
	api        API
	storage    Storage
	favorites  *FavoriteStore
	reconciler *Reconciler
	reports    *ReportPipeline
	composer   *PostComposer
	logger     *zap.Logger
	now        func() time.Time

	status string
}

func NewSession(api API, storage Storage, view View, logger *zap.Logger) *Session {
	favorites := NewFavoriteStore(storage, logger)
	reports := NewReportPipeline(api, logger)
	return &Session{
		api:        api,
		storage:    storage,
		favorites:  favorites,
		reconciler: NewReconciler(favorites, view),
		reports:    reports,
		composer:   NewPostComposer(api, reports, logger),
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Session) Status() string {
	return s.status
}

func (s *Session) Favorites() *FavoriteStore {
	return s.favorites
}

func (s *Session) Reconciler() *Reconciler {
	return s.reconciler
}

func (s *Session) Report() ReportState {
	return s.reports.State()
}

func (s *Session) PostControl() *Control {
	return s.composer.Control()
}

func (s *Session) fail(op Op, err error) error {
	s.status = StatusMessage(op, err)
	return err
}

// Search replaces the result set. An empty query is rejected without a call.
func (s *Session) Search(ctx context.Context, query string) ([]RowView, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, s.fail(OpSearch, apperrors.NewValidationError(constants.Messages.EmptyQuery, "q", query))
	}

	s.status = "Searching…"
	result, err := s.api.SearchPlayers(ctx, query)
	if err != nil {
		s.reconciler.SetResults(nil)
		return nil, s.fail(OpSearch, err)
	}

	rows := s.reconciler.SetResults(result.Data)
	switch len(rows) {
	case 0:
		s.status = "No players found."
	case 1:
		s.status = "Found 1 player."
	default:
		s.status = fmt.Sprintf("Found %d players.", len(rows))
	}
	return rows, nil
}

// Games lists games for date (YYYY-MM-DD), today in Eastern time when empty.
func (s *Session) Games(ctx context.Context, date string) (*domain.GameListing, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = util.DayET(s.now())
	}
	if _, err := util.ParseDay(date); err != nil {
		return nil, s.fail(OpGames, apperrors.NewValidationError("Pick a date like 2024-11-04.", "date", date))
	}

	s.status = "Loading games…"
	listing, err := s.api.ListGames(ctx, date)
	if err != nil {
		return nil, s.fail(OpGames, err)
	}

	switch n := len(listing.Data); n {
	case 0:
		s.status = fmt.Sprintf("No NBA games for %s.", date)
	case 1:
		s.status = fmt.Sprintf("Showing 1 game for %s.", date)
	default:
		s.status = fmt.Sprintf("Showing %d games for %s.", n, date)
	}
	return listing, nil
}

// ToggleFavoriteRow stars or unstars the i-th row (zero-based) of the last
// search. Reports whether the row is the favorite afterwards. A toggle that
// storage did not keep is an error and leaves the favorite as it was.
func (s *Session) ToggleFavoriteRow(i int) (bool, error) {
	player, err := s.row(i)
	if err != nil {
		return false, s.fail(OpFavorite, err)
	}

	record := domain.FavoriteFromPlayer(player)
	before := s.favorites.IsFavorite(record.ID)
	s.favorites.Toggle(record)
	after := s.favorites.IsFavorite(record.ID)
	if after == before {
		return before, s.fail(OpFavorite, apperrors.NewCacheError("Could not save favorite", "toggle", constants.FavoriteStorageKey, nil))
	}
	if after {
		s.status = fmt.Sprintf("✅ Set %s as favorite!", record.Name)
		return true, nil
	}
	s.status = fmt.Sprintf("Removed %s from favorites.", record.Name)
	return false, nil
}

func (s *Session) ClearFavorite() {
	s.favorites.Clear()
	s.status = "Favorite cleared."
}

// ReportRow generates a report for the i-th row of the last search.
func (s *Session) ReportRow(ctx context.Context, i int) (string, error) {
	player, err := s.row(i)
	if err != nil {
		return "", s.fail(OpReport, err)
	}
	return s.GenerateReport(ctx, player.FullName(), nil)
}

func (s *Session) ReportFavorite(ctx context.Context) (string, error) {
	fav, ok := s.favorites.Get()
	if !ok {
		return "", s.fail(OpReport, apperrors.NewValidationError("No favorite set.", "favorite", nil))
	}
	return s.GenerateReport(ctx, fav.Name, nil)
}

// GenerateReport runs the report pipeline for any subject; date nil means today.
func (s *Session) GenerateReport(ctx context.Context, subject string, date *time.Time) (string, error) {
	s.status = fmt.Sprintf("Generating “On This Day” for %s…", strings.TrimSpace(subject))
	text, err := s.reports.Generate(ctx, subject, date)
	if err != nil {
		return "", s.fail(OpReport, err)
	}
	s.status = text
	return text, nil
}

// Tweet mentions handle with the last report.
func (s *Session) Tweet(ctx context.Context, handle string) (*domain.PostResult, error) {
	result, err := s.composer.Tweet(ctx, handle)
	if err != nil {
		return nil, s.fail(OpPost, err)
	}
	s.status = fmt.Sprintf("Posted mention! (ID: %s)", result.TweetID)
	return result, nil
}

// Profile fetches current-season averages for name.
func (s *Session) Profile(ctx context.Context, name string) (*domain.PlayerProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, s.fail(OpProfile, apperrors.NewValidationError(constants.Messages.EmptyQuery, "name", name))
	}

	s.status = fmt.Sprintf("Looking up %s…", name)
	profile, err := s.api.Profile(ctx, name, 0)
	if err != nil {
		return nil, s.fail(OpProfile, err)
	}

	if profile.Averages == nil {
		s.status = fmt.Sprintf("No %d season averages for %s.", profile.Season, name)
	} else {
		s.status = fmt.Sprintf("%d season averages for %s.", profile.Season, name)
	}
	return profile, nil
}

// Reset drops all session state, the stored favorite included.
func (s *Session) Reset() {
	s.reconciler.SetResults(nil)
	s.favorites.Clear()
	s.reports.Reset()
	s.status = ""
}

func (s *Session) Close() error {
	s.reconciler.Close()
	return s.storage.Close()
}

func (s *Session) row(i int) (*domain.Player, error) {
	players := s.reconciler.Results()
	if i < 0 || i >= len(players) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("No row %d in the last search.", i+1), "row", i+1)
	}
	return &players[i], nil
}
