package domain

// Game is the flattened game row served by /api/games.
type Game struct {
	ID           int    `json:"id"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	Home         string `json:"home"`
	HomeAbbr     string `json:"home_abbr"`
	HomeScore    *int   `json:"home_score"`
	Visitor      string `json:"visitor"`
	VisitorAbbr  string `json:"visitor_abbr"`
	VisitorScore *int   `json:"visitor_score"`
}

// Matchup renders "VIS @ HOME", preferring abbreviations.
func (g *Game) Matchup() string {
	visitor := g.VisitorAbbr
	if visitor == "" {
		visitor = g.Visitor
	}
	home := g.HomeAbbr
	if home == "" {
		home = g.Home
	}
	return visitor + " @ " + home
}

// HasScore reports whether both sides of the score pair are present.
func (g *Game) HasScore() bool {
	return g.HomeScore != nil && g.VisitorScore != nil
}

type GameListing struct {
	Date string         `json:"date"`
	Data []Game         `json:"data"`
	Meta map[string]any `json:"meta"`
}
