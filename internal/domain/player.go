package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// PlayerID is a player identifier normalized to its string form. It decodes from
// either a JSON number or a JSON string so numeric and string ids compare equal.
type PlayerID string

func (id *PlayerID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NormalizeID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("player id: %w", err)
	}
	*id = NormalizeID(n.String())
	return nil
}

func (id PlayerID) String() string {
	return string(id)
}

// NormalizeID trims an identifier; numeric ids keep their decimal spelling.
func NormalizeID(raw string) PlayerID {
	return PlayerID(strings.TrimSpace(raw))
}

// Team mirrors the balldontlie team object.
type Team struct {
	ID           int    `json:"id"`
	Conference   string `json:"conference,omitempty"`
	Division     string `json:"division,omitempty"`
	City         string `json:"city,omitempty"`
	Name         string `json:"name,omitempty"`
	FullName     string `json:"full_name"`
	Abbreviation string `json:"abbreviation"`
}

// Display renders "Full Name (ABBR)", or "-" for a missing team.
func (t *Team) Display() string {
	if t == nil || t.FullName == "" {
		return "-"
	}
	if t.Abbreviation == "" {
		return t.FullName
	}
	return fmt.Sprintf("%s (%s)", t.FullName, t.Abbreviation)
}

// Player is one search result row.
type Player struct {
	ID           PlayerID `json:"id"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Position     string   `json:"position,omitempty"`
	Height       string   `json:"height,omitempty"`
	Weight       string   `json:"weight,omitempty"`
	JerseyNumber string   `json:"jersey_number,omitempty"`
	College      string   `json:"college,omitempty"`
	Country      string   `json:"country,omitempty"`
	Team         *Team    `json:"team,omitempty"`
}

func (p *Player) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// DisplayPosition returns the position or "-".
func (p *Player) DisplayPosition() string {
	if strings.TrimSpace(p.Position) == "" {
		return "-"
	}
	return p.Position
}

// PageMeta carries the pagination block returned by balldontlie.
type PageMeta struct {
	NextCursor *int `json:"next_cursor,omitempty"`
	PerPage    int  `json:"per_page,omitempty"`
	Total      int  `json:"total"`
}

type PlayerSearchResult struct {
	Data []Player `json:"data"`
	Meta PageMeta `json:"meta"`
}
