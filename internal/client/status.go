package client

import (
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/kapu/courtside-go/pkg/errors"
)

// Op names the user action a status line describes.
type Op string

const (
	OpSearch   Op = "search"
	OpGames    Op = "games"
	OpProfile  Op = "profile"
	OpFavorite Op = "favorite"
	OpReport   Op = "report"
	OpPost     Op = "post"
)

// StatusMessage picks the user-facing wording for err by its kind and the
// action that failed.
func StatusMessage(op Op, err error) string {
	if err == nil {
		return ""
	}

	var (
		cfgErr    *apperrors.ConfigurationError
		upstream  *apperrors.UpstreamError
		conflict  *apperrors.ConflictError
		parseErr  *apperrors.ParseError
		timeout   *apperrors.TimeoutError
		transport *apperrors.TransportError
		notFound  *apperrors.NotFoundError
		cacheErr  *apperrors.CacheError
	)

	switch {
	case errors.As(err, &cfgErr):
		if len(cfgErr.Missing) == 0 {
			return cfgErr.Message + "."
		}
		return fmt.Sprintf("%s (missing %s).", cfgErr.Message, strings.Join(cfgErr.Missing, ", "))

	case errors.As(err, &conflict):
		return fmt.Sprintf("X post error (HTTP %d): %s.", conflict.StatusCode, conflict.Message)

	case errors.As(err, &upstream):
		switch op {
		case OpReport:
			return fmt.Sprintf("AI error: HTTP %d", upstream.StatusCode)
		case OpPost:
			return fmt.Sprintf("X post error (HTTP %d).", upstream.StatusCode)
		default:
			return fmt.Sprintf("Error: HTTP %d", upstream.StatusCode)
		}

	case errors.As(err, &parseErr):
		if op != OpReport {
			return "Parse error."
		}
		body := parseErr.Excerpt
		if body == "" {
			body = "(empty)"
		}
		return "Parse error. Body was:\n" + body

	case errors.As(err, &timeout):
		if timeout.After <= 0 {
			return "Timed out."
		}
		return fmt.Sprintf("Timed out after %s.", timeout.After)

	case errors.As(err, &transport):
		switch op {
		case OpReport:
			return "Network error (request failed before reaching server)."
		case OpPost:
			return "Network error while posting."
		default:
			return "Network error."
		}

	case errors.As(err, &notFound):
		if op == OpSearch || op == OpProfile {
			return "No players found."
		}
		return notFound.Message + "."

	case errors.As(err, &cacheErr):
		return cacheErr.Message + "."
	}

	return apperrors.MessageOf(err)
}
