// Package compose holds the text rules shared by the terminal client and the
// proxy: report normalization, mention composition and handle validation.
package compose

import (
	"regexp"
	"strings"

	"github.com/kapu/courtside-go/internal/constants"
	"github.com/kapu/courtside-go/internal/util"
	apperrors "github.com/kapu/courtside-go/pkg/errors"
)

var (
	handlePattern    = regexp.MustCompile(`^\w{1,15}$`)
	nonWordChars     = regexp.MustCompile(`[^\w]`)
	spaceBeforeBreak = regexp.MustCompile(`\s+\n`)
	doubleSpace      = regexp.MustCompile(`\s{2,}`)
	lineBreak        = regexp.MustCompile(`\r?\n`)
	sectionHeader    = regexp.MustCompile(`(?i)^\s*(Notable game|Fun facts|Quick context)`)
)

// NormalizeReport collapses whitespace and caps the report at 200 runes, the
// last of which is the ellipsis when the text was cut.
func NormalizeReport(raw string) string {
	return util.CapRunes(
		util.CollapseWhitespace(raw),
		constants.TextLimits.ReportMaxRunes,
		constants.TextLimits.ReportKeepRunes,
	)
}

// ReportOrPlaceholder normalizes raw and substitutes the "no report" text when
// nothing is left.
func ReportOrPlaceholder(raw string) string {
	if report := NormalizeReport(raw); report != "" {
		return report
	}
	return constants.Messages.NoReport
}

// ValidateHandle strips leading "@" characters and requires 1 to 15 word
// characters. Invalid input is rejected, never rewritten.
func ValidateHandle(raw string) (string, error) {
	handle := strings.TrimLeft(strings.TrimSpace(raw), "@")
	if !handlePattern.MatchString(handle) {
		return "", apperrors.NewValidationError(constants.Messages.InvalidHandle, "handle", raw)
	}
	return handle, nil
}

// SanitizeHandle is the lenient form used by the handle lookup endpoint: it
// drops every non-word character and keeps at most 15 runes.
func SanitizeHandle(raw string) string {
	handle := strings.TrimLeft(strings.TrimSpace(raw), "@")
	handle = nonWordChars.ReplaceAllString(handle, "")
	if len(handle) > constants.TextLimits.HandleMaxRunes {
		handle = handle[:constants.TextLimits.HandleMaxRunes]
	}
	return handle
}

// ComposeMention builds "@handle report", collapsed and capped at 280 runes.
func ComposeMention(handle, report string) (string, error) {
	if strings.TrimSpace(report) == "" {
		return "", apperrors.NewValidationError(constants.Messages.NoReportToTweet, "report", "")
	}
	valid, err := ValidateHandle(handle)
	if err != nil {
		return "", err
	}

	text := util.CollapseWhitespace("@" + valid + " " + report)
	return util.CapRunes(
		text,
		constants.TextLimits.MentionMaxRunes,
		constants.TextLimits.MentionKeepRunes,
	), nil
}

// ToTweetLength is the proxy's last guard before posting: whitespace before a
// line break is dropped and text over 280 runes keeps its first 277.
func ToTweetLength(s string) string {
	s = strings.TrimSpace(spaceBeforeBreak.ReplaceAllString(s, "\n"))
	return util.CapRunes(s, constants.TextLimits.ServerTweetMax, constants.TextLimits.ServerTweetKeep)
}

// StripSectionHeaders removes "Notable game", "Fun facts" and "Quick context"
// lines and joins the rest into one line.
func StripSectionHeaders(report string) string {
	lines := lineBreak.Split(report, -1)
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" || sectionHeader.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(doubleSpace.ReplaceAllString(strings.Join(kept, " "), " "))
}
