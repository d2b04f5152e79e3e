package domain

import "strings"

// FavoriteRecord is the single pinned player persisted by the client.
type FavoriteRecord struct {
	ID       PlayerID `json:"id"`
	Name     string   `json:"name"`
	Team     string   `json:"team"`
	Position string   `json:"position"`
}

// WithDefaults returns a copy whose empty display fields carry their defaults.
func (f FavoriteRecord) WithDefaults() FavoriteRecord {
	f.ID = NormalizeID(string(f.ID))
	if strings.TrimSpace(f.Team) == "" {
		f.Team = "-"
	}
	if strings.TrimSpace(f.Position) == "" {
		f.Position = "-"
	}
	return f
}

// FavoriteFromPlayer projects a search row into a favorite record.
func FavoriteFromPlayer(p *Player) FavoriteRecord {
	return FavoriteRecord{
		ID:       p.ID,
		Name:     p.FullName(),
		Team:     p.Team.Display(),
		Position: p.DisplayPosition(),
	}.WithDefaults()
}
