package constants

import "time"

var CacheTTL = struct {
	GamesListing time.Duration
}{
	GamesListing: 5 * time.Minute,
}

var TextLimits = struct {
	ReportMaxRunes   int
	ReportKeepRunes  int
	MentionMaxRunes  int
	MentionKeepRunes int
	ServerTweetMax   int
	ServerTweetKeep  int
	HandleMaxRunes   int
	PlayerSearchPage int
	GamesListingPage int
}{
	ReportMaxRunes:   200,
	ReportKeepRunes:  199,
	MentionMaxRunes:  280,
	MentionKeepRunes: 279,
	ServerTweetMax:   280,
	ServerTweetKeep:  277,
	HandleMaxRunes:   15,
	PlayerSearchPage: 25,
	GamesListingPage: 100,
}

var Messages = struct {
	NoReport         string
	NoReportToTweet  string
	InvalidHandle    string
	EmptyQuery       string
	PostingLabel     string
	TweetButtonLabel string
}{
	NoReport:         "No report returned.",
	NoReportToTweet:  "No report to tweet yet.",
	InvalidHandle:    "Enter a valid X handle (e.g., @yourname).",
	EmptyQuery:       "Type a name to search.",
	PostingLabel:     "Posting to X…",
	TweetButtonLabel: "Send it to me",
}

var APIConfig = struct {
	BallDontLieBaseURL  string
	BallDontLieTimeout  time.Duration
	ProfileLookupBudget time.Duration
	XBaseURL            string
	XTokenURL           string
	XTimeout            time.Duration
	AIGenerateTimeout   time.Duration
	ClientTimeout       time.Duration
}{
	BallDontLieBaseURL:  "https://api.balldontlie.io/v1",
	BallDontLieTimeout:  10 * time.Second,
	ProfileLookupBudget: 12 * time.Second,
	XBaseURL:            "https://api.twitter.com/2",
	XTokenURL:           "https://api.twitter.com/oauth2/token",
	XTimeout:            15 * time.Second,
	AIGenerateTimeout:   45 * time.Second,
	ClientTimeout:       60 * time.Second,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
}{
	FailureThreshold:    3,
	ResetTimeout:        30 * time.Second,
	RateLimitTimeout:    10 * time.Minute,
	HealthCheckInterval: 5 * time.Minute,
}

var DedupConfig = struct {
	Retention     time.Duration
	SweepInterval time.Duration
	KeyPrefix     string
}{
	Retention:     48 * time.Hour,
	SweepInterval: 1 * time.Hour,
	KeyPrefix:     "courtside:posted:",
}

// FavoriteStorageKey is the single key the favorite record is persisted under.
const FavoriteStorageKey = "nba.favorite.player"

// DefaultTimeZone anchors "today" for games, reports and the post ledger.
const DefaultTimeZone = "America/New_York"
