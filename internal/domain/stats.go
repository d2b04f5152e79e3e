package domain

// SeasonAverages is the per-season stat bundle for one player.
type SeasonAverages struct {
	PlayerID    PlayerID `json:"player_id"`
	Season      int      `json:"season"`
	GamesPlayed int      `json:"games_played"`
	Minutes     string   `json:"min"`
	Points      float64  `json:"pts"`
	Rebounds    float64  `json:"reb"`
	Assists     float64  `json:"ast"`
	Steals      float64  `json:"stl"`
	Blocks      float64  `json:"blk"`
	Turnovers   float64  `json:"turnover"`
	FGPct       float64  `json:"fg_pct"`
	FG3Pct      float64  `json:"fg3_pct"`
	FTPct       float64  `json:"ft_pct"`
}

// PlayerProfile joins a player with one season's averages (absent when the
// player did not play that season).
type PlayerProfile struct {
	Player   *Player         `json:"player"`
	Season   int             `json:"season"`
	Averages *SeasonAverages `json:"averages"`
}
