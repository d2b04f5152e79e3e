package adapter

import (
	"fmt"
	"io"
	"sync"
	"unicode/utf8"

	"github.com/kapu/courtside-go/internal/client"
	"github.com/kapu/courtside-go/internal/domain"
	"go.uber.org/zap"
)

// HelpEntry is one line of the help screen.
type HelpEntry struct {
	Usage       string
	Description string
}

type gameLine struct {
	Matchup string
	Score   string
	Status  string
}

type profileView struct {
	Name     string
	Team     string
	Position string
	Season   int
	Averages *domain.SeasonAverages
}

type reportView struct {
	Subject string
	Text    string
	Runes   int
}

// Presenter renders session state as terminal text. It implements
// client.View, so favorite and row changes are printed as they happen.
type Presenter struct {
	mu     sync.Mutex
	out    io.Writer
	logger *zap.Logger
}

func NewPresenter(out io.Writer, logger *zap.Logger) *Presenter {
	return &Presenter{out: out, logger: logger}
}

func (p *Presenter) ShowFavoritePanel(panel client.FavoritePanel) {
	p.render("favorite.tmpl", panel)
}

func (p *Presenter) ShowRows(rows []client.RowView) {
	if len(rows) == 0 {
		return
	}
	p.render("rows.tmpl", rows)
}

func (p *Presenter) ShowGames(listing *domain.GameListing) {
	if listing == nil || len(listing.Data) == 0 {
		return
	}
	lines := make([]gameLine, 0, len(listing.Data))
	for i := range listing.Data {
		g := &listing.Data[i]
		line := gameLine{Matchup: g.Matchup(), Status: g.Status}
		if g.HasScore() {
			line.Score = fmt.Sprintf("%d-%d", *g.VisitorScore, *g.HomeScore)
		}
		lines = append(lines, line)
	}
	p.render("games.tmpl", struct {
		Date  string
		Games []gameLine
	}{Date: listing.Date, Games: lines})
}

func (p *Presenter) ShowProfile(profile *domain.PlayerProfile) {
	if profile == nil || profile.Player == nil {
		return
	}
	p.render("profile.tmpl", profileView{
		Name:     profile.Player.FullName(),
		Team:     profile.Player.Team.Display(),
		Position: profile.Player.DisplayPosition(),
		Season:   profile.Season,
		Averages: profile.Averages,
	})
}

func (p *Presenter) ShowReport(state client.ReportState) {
	if state.Text == "" {
		return
	}
	p.render("report.tmpl", reportView{
		Subject: state.SubjectName,
		Text:    state.Text,
		Runes:   utf8.RuneCountInString(state.Text),
	})
}

func (p *Presenter) ShowHelp(entries []HelpEntry) {
	p.render("help.tmpl", entries)
}

// ShowStatus prints the status line, if any.
func (p *Presenter) ShowStatus(status string) {
	if status == "" {
		return
	}
	p.println("» " + status)
}

func (p *Presenter) render(name string, data any) {
	text, err := renderView(name, data)
	if err != nil {
		p.logger.Error("Failed to render template", zap.String("template", name), zap.Error(err))
		return
	}
	p.println(text)
}

func (p *Presenter) println(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := fmt.Fprintln(p.out, text); err != nil {
		p.logger.Warn("Failed to write output", zap.Error(err))
	}
}
