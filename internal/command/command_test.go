package command

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kapu/courtside-go/internal/adapter"
	"github.com/kapu/courtside-go/internal/client"
	"github.com/kapu/courtside-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingCommand struct {
	name   string
	params []map[string]any
	err    error
}

func (c *recordingCommand) Name() string        { return c.name }
func (c *recordingCommand) Usage() string       { return c.name }
func (c *recordingCommand) Description() string { return c.name }

func (c *recordingCommand) Execute(_ context.Context, params map[string]any) error {
	c.params = append(c.params, params)
	return c.err
}

func TestRegistry_ExecuteIsCaseInsensitive(t *testing.T) {
	registry := NewRegistry()
	cmd := &recordingCommand{name: "Search"}
	registry.Register(cmd)
	registry.Register(nil)

	require.NoError(t, registry.Execute(context.Background(), "SEARCH", map[string]any{"query": "x"}))
	assert.Len(t, cmd.params, 1)
	assert.Equal(t, 1, registry.Count())

	err := registry.Execute(context.Background(), "dance", nil)
	assert.ErrorIs(t, err, ErrUnknownCommand)

	var nilRegistry *Registry
	assert.Error(t, nilRegistry.Execute(context.Background(), "search", nil))
	assert.Zero(t, nilRegistry.Count())
}

func TestDispatcher_NormalizesAndSkipsUnknown(t *testing.T) {
	registry := NewRegistry()
	fav := &recordingCommand{name: "fav"}
	games := &recordingCommand{name: "games"}
	registry.Register(fav)
	registry.Register(games)

	original := map[string]any{"row": 2}
	dispatcher := NewSequentialDispatcher(registry, Normalize)
	n, err := dispatcher.Publish(context.Background(),
		CommandEvent{Type: domain.CommandFavorite, Params: original},
		CommandEvent{Type: domain.CommandUnknown},
		CommandEvent{Type: domain.CommandUnfav},
		CommandEvent{Type: domain.CommandGames},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Len(t, fav.params, 2)
	assert.Equal(t, map[string]any{"row": 2, "action": "toggle"}, fav.params[0])
	assert.Equal(t, map[string]any{"action": "clear"}, fav.params[1])
	assert.Equal(t, map[string]any{"row": 2}, original, "event params are not mutated")
	assert.Len(t, games.params, 1)
}

func TestDispatcher_StopsOnError(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&recordingCommand{name: "search", err: errors.New("boom")})
	games := &recordingCommand{name: "games"}
	registry.Register(games)

	n, err := NewSequentialDispatcher(registry, Normalize).Publish(context.Background(),
		CommandEvent{Type: domain.CommandSearch},
		CommandEvent{Type: domain.CommandGames},
	)
	assert.Error(t, err)
	assert.Zero(t, n)
	assert.Empty(t, games.params)
}

func proxyStub(t *testing.T) string {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/players/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":237,"first_name":"LeBron","last_name":"James","position":"F"}],"meta":{"total":1}}`))
	})
	mux.HandleFunc("/api/ai/on-this-day", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"report":"Big night.","date":"November 4"}`))
	})
	mux.HandleFunc("/api/x/post-text", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"tweet_id":"42","text":"@fan Big night."}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestCommands_EndToEnd(t *testing.T) {
	var out bytes.Buffer
	presenter := adapter.NewPresenter(&out, zap.NewNop())
	api := client.NewAPIClient(proxyStub(t), time.Second, zap.NewNop())
	session := client.NewSession(api, client.NewMemoryStorage(), presenter, zap.NewNop())
	defer session.Close()

	quit := false
	deps := &Dependencies{
		Session:   session,
		Presenter: presenter,
		Registry:  NewRegistry(),
		Quit:      func() { quit = true },
		Logger:    zap.NewNop(),
	}
	RegisterAll(deps)
	assert.Equal(t, 9, deps.Registry.Count())

	parser := adapter.NewCommandParser("/")
	dispatcher := NewSequentialDispatcher(deps.Registry, Normalize)
	run := func(line string) {
		parsed := parser.ParseLine(line)
		_, err := dispatcher.Publish(context.Background(), CommandEvent{Type: parsed.Type, Params: parsed.Params})
		require.NoError(t, err, line)
	}

	run("search lebron")
	assert.Contains(t, out.String(), "☆ 1. LeBron James · - · F")
	assert.Contains(t, out.String(), "» Found 1 player.")

	run("fav 1")
	assert.Contains(t, out.String(), "★ [LJ] LeBron James")
	assert.Contains(t, out.String(), "★ 1. LeBron James")

	run("report")
	assert.Contains(t, out.String(), "On This Day · LeBron James\nBig night.")

	run("tweet @fan")
	assert.Contains(t, out.String(), "» Posted mention! (ID: 42)")

	run("unfav")
	assert.Contains(t, out.String(), "» Favorite cleared.")
	_, ok := session.Favorites().Get()
	assert.False(t, ok)

	out.Reset()
	run("help")
	assert.Contains(t, out.String(), "tweet @handle")

	run("quit")
	assert.True(t, quit)
}
