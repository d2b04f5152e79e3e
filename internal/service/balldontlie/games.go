package balldontlie

import (
	"context"
	"net/url"
	"strconv"

	"github.com/kapu/courtside-go/internal/constants"
	"github.com/kapu/courtside-go/internal/domain"
	"github.com/kapu/courtside-go/internal/metrics"
	"go.uber.org/zap"
)

type apiGame struct {
	ID               int          `json:"id"`
	Date             string       `json:"date"`
	Status           string       `json:"status"`
	HomeTeam         *domain.Team `json:"home_team"`
	VisitorTeam      *domain.Team `json:"visitor_team"`
	HomeTeamScore    *int         `json:"home_team_score"`
	VisitorTeamScore *int         `json:"visitor_team_score"`
}

func (g apiGame) flatten() domain.Game {
	game := domain.Game{
		ID:           g.ID,
		Date:         g.Date,
		Status:       g.Status,
		HomeScore:    g.HomeTeamScore,
		VisitorScore: g.VisitorTeamScore,
	}
	if g.HomeTeam != nil {
		game.Home = g.HomeTeam.FullName
		game.HomeAbbr = g.HomeTeam.Abbreviation
	}
	if g.VisitorTeam != nil {
		game.Visitor = g.VisitorTeam.FullName
		game.VisitorAbbr = g.VisitorTeam.Abbreviation
	}
	return game
}

// ListGames returns the games on date (YYYY-MM-DD). Listings are memoized for
// five minutes per date; a date without games yields an empty listing.
func (c *Client) ListGames(ctx context.Context, date string) (*domain.GameListing, error) {
	if c.games != nil {
		if listing, ok := c.games.GetGames(ctx, date); ok {
			c.recorder.RecordUpstream(collaborator, metrics.OutcomeCached)
			return listing, nil
		}
	}

	params := url.Values{}
	params.Set("per_page", strconv.Itoa(constants.TextLimits.GamesListingPage))
	params.Add("dates[]", date)

	var envelope struct {
		Data []apiGame      `json:"data"`
		Meta map[string]any `json:"meta"`
	}
	if err := c.getJSON(ctx, "/games", params, &envelope); err != nil {
		return nil, err
	}

	listing := &domain.GameListing{
		Date: date,
		Data: make([]domain.Game, 0, len(envelope.Data)),
		Meta: envelope.Meta,
	}
	if listing.Meta == nil {
		listing.Meta = map[string]any{}
	}
	for _, g := range envelope.Data {
		listing.Data = append(listing.Data, g.flatten())
	}

	if c.games != nil {
		c.games.SetGames(ctx, date, listing, constants.CacheTTL.GamesListing)
	}
	c.logger.Debug("Games listing fetched", zap.String("date", date), zap.Int("games", len(listing.Data)))

	return listing, nil
}
