package balldontlie

import (
	"context"
	"errors"
	"time"

	"github.com/kapu/courtside-go/internal/constants"
	"github.com/kapu/courtside-go/internal/domain"
	apperrors "github.com/kapu/courtside-go/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// PlayerSource is the part of Client the profile lookup needs.
type PlayerSource interface {
	LookupPlayerID(ctx context.Context, name string) (domain.PlayerID, error)
	GetPlayer(ctx context.Context, id domain.PlayerID) (*domain.Player, error)
	SeasonAverages(ctx context.Context, id domain.PlayerID, season int) (*domain.SeasonAverages, error)
}

type ProfileService struct {
	source PlayerSource
	budget time.Duration
	logger *zap.Logger
}

func NewProfileService(source PlayerSource, budget time.Duration, logger *zap.Logger) *ProfileService {
	if budget <= 0 {
		budget = constants.APIConfig.ProfileLookupBudget
	}
	return &ProfileService{source: source, budget: budget, logger: logger}
}

// Profile resolves name to an id, then fetches details and season averages
// concurrently. The whole lookup shares one deadline; running out of it is a
// TimeoutError, never a transport error.
func (s *ProfileService) Profile(ctx context.Context, name string, season int) (*domain.PlayerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()

	id, err := s.source.LookupPlayerID(ctx, name)
	if err != nil {
		return nil, s.wrap(ctx, err)
	}

	profile := &domain.PlayerProfile{Season: season}

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		player, err := s.source.GetPlayer(ctx, id)
		if err != nil {
			return err
		}
		profile.Player = player
		return nil
	})
	p.Go(func(ctx context.Context) error {
		averages, err := s.source.SeasonAverages(ctx, id, season)
		if err != nil {
			return err
		}
		profile.Averages = averages
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, s.wrap(ctx, err)
	}

	s.logger.Debug("Player profile resolved",
		zap.String("name", name),
		zap.String("id", id.String()),
		zap.Int("season", season),
		zap.Bool("has_averages", profile.Averages != nil),
	)
	return profile, nil
}

func (s *ProfileService) wrap(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || apperrors.Is(err, apperrors.CodeTimeout) {
		s.logger.Warn("Player profile lookup timed out", zap.Duration("budget", s.budget))
		return apperrors.NewTimeoutError("player profile lookup", s.budget, err)
	}
	return err
}

// CurrentSeason is the season year in progress at t: seasons start in October.
func CurrentSeason(t time.Time) int {
	if t.Month() >= time.October {
		return t.Year()
	}
	return t.Year() - 1
}
