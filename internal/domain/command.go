package domain

// CommandType names a terminal client command.
type CommandType string

const (
	CommandSearch   CommandType = "search"
	CommandGames    CommandType = "games"
	CommandFavorite CommandType = "favorite"
	CommandUnfav    CommandType = "unfavorite"
	CommandReport   CommandType = "report"
	CommandTweet    CommandType = "tweet"
	CommandProfile  CommandType = "profile"
	CommandShow     CommandType = "show"
	CommandHelp     CommandType = "help"
	CommandQuit     CommandType = "quit"
	CommandUnknown  CommandType = "unknown"
)

func (c CommandType) String() string {
	return string(c)
}

func (c CommandType) IsValid() bool {
	switch c {
	case CommandSearch, CommandGames, CommandFavorite, CommandUnfav, CommandReport,
		CommandTweet, CommandProfile, CommandShow, CommandHelp, CommandQuit:
		return true
	default:
		return false
	}
}
