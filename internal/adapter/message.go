package adapter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kapu/courtside-go/internal/domain"
	"github.com/kapu/courtside-go/internal/util"
)

var controlCharsPattern = regexp.MustCompile(`[\x00-\x1F\x7F]`)

const maxArgumentRunes = 100

// CommandParser turns one input line into a command. The prefix is optional
// so "/search curry" and "search curry" are the same command.
type CommandParser struct {
	prefix string
}

func NewCommandParser(prefix string) *CommandParser {
	return &CommandParser{prefix: prefix}
}

// ParsedCommand represents a parsed command
type ParsedCommand struct {
	Type       domain.CommandType
	Params     map[string]any
	RawMessage string
}

// ParseLine parses a line typed at the prompt. Row numbers are one-based on
// input and zero-based in Params["row"].
func (p *CommandParser) ParseLine(line string) *ParsedCommand {
	text := strings.TrimSpace(controlCharsPattern.ReplaceAllString(line, " "))
	if text == "" {
		return p.unknown("")
	}

	commandText := text
	if p.prefix != "" {
		commandText = strings.TrimSpace(strings.TrimPrefix(text, p.prefix))
	}

	parts := strings.Fields(commandText)
	if len(parts) == 0 {
		return p.unknown(text)
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]
	rest := sanitizeArgument(strings.Join(args, " "))

	switch {
	case util.Contains([]string{"search", "s", "find"}, command):
		return p.command(domain.CommandSearch, map[string]any{"query": rest}, text)

	case util.Contains([]string{"games", "g", "scores"}, command):
		params := map[string]any{}
		if len(args) > 0 {
			params["date"] = args[0]
		}
		return p.command(domain.CommandGames, params, text)

	case util.Contains([]string{"fav", "favorite", "star"}, command):
		row, ok := parseRow(args)
		if !ok {
			return p.command(domain.CommandShow, map[string]any{}, text)
		}
		return p.command(domain.CommandFavorite, map[string]any{"row": row}, text)

	case util.Contains([]string{"unfav", "unfavorite", "clear"}, command):
		return p.command(domain.CommandUnfav, map[string]any{}, text)

	case util.Contains([]string{"report", "r", "onthisday", "otd"}, command):
		return p.parseReport(args, rest, text)

	case util.Contains([]string{"tweet", "post", "send"}, command):
		params := map[string]any{}
		if len(args) > 0 {
			params["handle"] = args[0]
		}
		return p.command(domain.CommandTweet, params, text)

	case util.Contains([]string{"profile", "p", "stats"}, command):
		return p.command(domain.CommandProfile, map[string]any{"name": rest}, text)

	case util.Contains([]string{"show", "ls", "list"}, command):
		return p.command(domain.CommandShow, map[string]any{}, text)

	case util.Contains([]string{"help", "h", "?"}, command):
		return p.command(domain.CommandHelp, map[string]any{}, text)

	case util.Contains([]string{"quit", "exit", "q"}, command):
		return p.command(domain.CommandQuit, map[string]any{}, text)
	}

	return p.unknown(text)
}

// parseReport accepts "report" (favorite), "report 2" (row) or "report <name>".
func (p *CommandParser) parseReport(args []string, rest, text string) *ParsedCommand {
	if len(args) == 0 {
		return p.command(domain.CommandReport, map[string]any{"target": "favorite"}, text)
	}
	if row, ok := parseRow(args); ok && len(args) == 1 {
		return p.command(domain.CommandReport, map[string]any{"target": "row", "row": row}, text)
	}
	return p.command(domain.CommandReport, map[string]any{"target": "name", "name": rest}, text)
}

func (p *CommandParser) command(t domain.CommandType, params map[string]any, raw string) *ParsedCommand {
	return &ParsedCommand{Type: t, Params: params, RawMessage: raw}
}

func (p *CommandParser) unknown(text string) *ParsedCommand {
	return &ParsedCommand{
		Type:       domain.CommandUnknown,
		Params:     make(map[string]any),
		RawMessage: text,
	}
}

func parseRow(args []string) (int, bool) {
	if len(args) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

func sanitizeArgument(input string) string {
	runes := []rune(util.CollapseWhitespace(input))
	if len(runes) > maxArgumentRunes {
		runes = runes[:maxArgumentRunes]
	}
	return strings.TrimSpace(string(runes))
}
