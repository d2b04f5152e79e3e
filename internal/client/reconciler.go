package client

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/kapu/courtside-go/internal/domain"
)

// Action names a control a view exposes next to a player.
type Action string

const (
	ActionToggleFavorite Action = "toggle-favorite"
	ActionRemoveFavorite Action = "remove-favorite"
	ActionAIReport       Action = "ai-report"
)

// FavoritePanel is the rendered favorite card. Empty carries the call to
// action instead of a player.
type FavoritePanel struct {
	Empty        bool
	CallToAction string
	Initials     string
	Name         string
	Subtitle     string
	Actions      []Action
}

// RowView is one search result row as displayed.
type RowView struct {
	Index      int
	ID         domain.PlayerID
	Name       string
	Team       string
	Position   string
	IsFavorite bool
	Actions    []Action
}

// View receives every render. Implementations replace what they showed before.
type View interface {
	ShowFavoritePanel(panel FavoritePanel)
	ShowRows(rows []RowView)
}

const emptyPanelCallToAction = "Search for a player and set a favorite."

// Reconciler keeps the favorite panel and the result rows in step with the
// favorite store. It subscribes once; any mutation re-renders both views
// against the last result set before the mutating call returns.
type Reconciler struct {
	store *FavoriteStore
	view  View

	mu          sync.Mutex
	players     []domain.Player
	unsubscribe func()
}

func NewReconciler(store *FavoriteStore, view View) *Reconciler {
	r := &Reconciler{store: store, view: view}
	r.unsubscribe = store.Subscribe(func(*domain.FavoriteRecord) {
		r.Refresh()
	})
	return r
}

// SetResults replaces the last known result set and renders it.
func (r *Reconciler) SetResults(players []domain.Player) []RowView {
	r.mu.Lock()
	r.players = append([]domain.Player(nil), players...)
	r.mu.Unlock()

	rows := r.RenderRows(players)
	if r.view != nil {
		r.view.ShowRows(rows)
	}
	return rows
}

// Results returns the last known result set.
func (r *Reconciler) Results() []domain.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Player(nil), r.players...)
}

// Refresh renders both views from current state and publishes them.
func (r *Reconciler) Refresh() {
	panel := r.RenderFavoritePanel()
	rows := r.RenderRows(r.Results())
	if r.view != nil {
		r.view.ShowFavoritePanel(panel)
		r.view.ShowRows(rows)
	}
}

func (r *Reconciler) RenderFavoritePanel() FavoritePanel {
	fav, ok := r.store.Get()
	if !ok {
		return FavoritePanel{Empty: true, CallToAction: emptyPanelCallToAction}
	}
	return FavoritePanel{
		Initials: Initials(fav.Name),
		Name:     fav.Name,
		Subtitle: fav.Team + " • " + fav.Position,
		Actions:  []Action{ActionRemoveFavorite, ActionAIReport},
	}
}

// RenderRows decorates players in input order.
func (r *Reconciler) RenderRows(players []domain.Player) []RowView {
	var favID domain.PlayerID
	if fav, ok := r.store.Get(); ok {
		favID = fav.ID
	}

	rows := make([]RowView, 0, len(players))
	for i := range players {
		p := &players[i]
		id := domain.NormalizeID(string(p.ID))
		rows = append(rows, RowView{
			Index:      i,
			ID:         id,
			Name:       p.FullName(),
			Team:       p.Team.Display(),
			Position:   p.DisplayPosition(),
			IsFavorite: favID != "" && id == favID,
			Actions:    []Action{ActionToggleFavorite, ActionAIReport},
		})
	}
	return rows
}

func (r *Reconciler) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
}

// Initials takes the first letter of the first two words of name, uppercased.
// A missing word contributes nothing.
func Initials(name string) string {
	var b strings.Builder
	for i, word := range strings.Fields(name) {
		if i == 2 {
			break
		}
		first, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(first))
	}
	return b.String()
}
