package balldontlie

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/kapu/courtside-go/internal/constants"
	"github.com/kapu/courtside-go/internal/domain"
	apperrors "github.com/kapu/courtside-go/pkg/errors"
)

// SearchPlayers returns up to perPage players matching query. An empty query
// returns an empty result without calling upstream.
func (c *Client) SearchPlayers(ctx context.Context, query string, perPage int) (*domain.PlayerSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &domain.PlayerSearchResult{Data: []domain.Player{}}, nil
	}
	if perPage <= 0 {
		perPage = constants.TextLimits.PlayerSearchPage
	}

	params := url.Values{}
	params.Set("search", query)
	params.Set("per_page", strconv.Itoa(perPage))

	var result domain.PlayerSearchResult
	if err := c.getJSON(ctx, "/players", params, &result); err != nil {
		return nil, err
	}
	if result.Data == nil {
		result.Data = []domain.Player{}
	}
	return &result, nil
}

func (c *Client) GetPlayer(ctx context.Context, id domain.PlayerID) (*domain.Player, error) {
	var envelope struct {
		Data *domain.Player `json:"data"`
	}
	if err := c.getJSON(ctx, "/players/"+url.PathEscape(id.String()), nil, &envelope); err != nil {
		if apperrors.StatusOf(err) == 404 {
			return nil, apperrors.NewNotFoundError("player", id.String())
		}
		return nil, err
	}
	if envelope.Data == nil {
		return nil, apperrors.NewNotFoundError("player", id.String())
	}
	return envelope.Data, nil
}

// LookupPlayerID resolves a display name to a player id. A two-part name is
// searched by first and last name; an exact full-name match wins over the
// first result.
func (c *Client) LookupPlayerID(ctx context.Context, name string) (domain.PlayerID, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", apperrors.NewValidationError("name required", "name", name)
	}

	params := url.Values{}
	params.Set("per_page", strconv.Itoa(constants.TextLimits.PlayerSearchPage))
	if first, last, ok := strings.Cut(name, " "); ok {
		params.Set("first_name", first)
		params.Set("last_name", last)
	} else {
		params.Set("search", name)
	}

	var result domain.PlayerSearchResult
	if err := c.getJSON(ctx, "/players", params, &result); err != nil {
		return "", err
	}
	if len(result.Data) == 0 {
		return "", apperrors.NewNotFoundError("player", name)
	}

	for i := range result.Data {
		if strings.EqualFold(result.Data[i].FullName(), name) {
			return result.Data[i].ID, nil
		}
	}
	return result.Data[0].ID, nil
}

// SeasonAverages returns the player's averages for season, nil when the
// player has none for that season.
func (c *Client) SeasonAverages(ctx context.Context, id domain.PlayerID, season int) (*domain.SeasonAverages, error) {
	params := url.Values{}
	params.Set("season", strconv.Itoa(season))
	params.Set("player_id", id.String())

	var envelope struct {
		Data []domain.SeasonAverages `json:"data"`
	}
	if err := c.getJSON(ctx, "/season_averages", params, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Data) == 0 {
		return nil, nil
	}
	return &envelope.Data[0], nil
}
