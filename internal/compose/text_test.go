package compose

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kapu/courtside-go/internal/constants"
	apperrors "github.com/kapu/courtside-go/pkg/errors"
)

func TestNormalizeReport(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"collapses whitespace", "  LeBron\n\n scored   40\t", "LeBron scored 40"},
		{"empty stays empty", "   \n ", ""},
		{"exactly 200 kept", strings.Repeat("a", 200), strings.Repeat("a", 200)},
		{"201 truncated", strings.Repeat("a", 201), strings.Repeat("a", 199) + "…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeReport(tt.raw); got != tt.want {
				t.Fatalf("NormalizeReport() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeReportNeverExceedsCap(t *testing.T) {
	inputs := []string{
		strings.Repeat("word ", 120),
		strings.Repeat("가", 500),
		strings.Repeat("é\n", 300),
	}
	for _, in := range inputs {
		out := NormalizeReport(in)
		body := strings.TrimSuffix(out, "…")
		if utf8.RuneCountInString(body) > 200 {
			t.Fatalf("report body has %d runes", utf8.RuneCountInString(body))
		}
		if strings.Count(out, "…") > 1 {
			t.Fatalf("more than one truncation marker in %q", out)
		}
	}
}

func TestReportOrPlaceholder(t *testing.T) {
	if got := ReportOrPlaceholder(" \n "); got != "No report returned." {
		t.Fatalf("expected placeholder, got %q", got)
	}
	if got := ReportOrPlaceholder("Kobe 81"); got != "Kobe 81" {
		t.Fatalf("unexpected report %q", got)
	}
}

func TestValidateHandle(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"@yourname", "yourname", false},
		{"@@nba_fan", "nba_fan", false},
		{" user123 ", "user123", false},
		{"abcdefghijklmno", "abcdefghijklmno", false},
		{"abcdefghijklmnop", "", true},
		{"@", "", true},
		{"", "", true},
		{"bad-name", "", true},
		{"has space", "", true},
		{"emoji🏀", "", true},
	}

	for _, tt := range tests {
		got, err := ValidateHandle(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ValidateHandle(%q) expected error, got %q", tt.raw, got)
				continue
			}
			if !apperrors.Is(err, apperrors.CodeValidation) {
				t.Errorf("ValidateHandle(%q) error kind = %s", tt.raw, apperrors.KindOf(err))
			}
			if err.Error() != constants.Messages.InvalidHandle {
				t.Errorf("ValidateHandle(%q) message = %q", tt.raw, err.Error())
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ValidateHandle(%q) = %q, %v; want %q", tt.raw, got, err, tt.want)
		}
	}
}

func TestSanitizeHandle(t *testing.T) {
	if got := SanitizeHandle("@bad-name!"); got != "badname" {
		t.Fatalf("SanitizeHandle = %q", got)
	}
	if got := SanitizeHandle("@abcdefghijklmnopqrst"); got != "abcdefghijklmno" {
		t.Fatalf("SanitizeHandle long = %q", got)
	}
	if got := SanitizeHandle("@@@"); got != "" {
		t.Fatalf("SanitizeHandle empty = %q", got)
	}
}

func TestComposeMention(t *testing.T) {
	text, err := ComposeMention("@fan", "  Jordan   hit the shot ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "@fan Jordan hit the shot" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestComposeMentionCapsLength(t *testing.T) {
	report := strings.Repeat("x", 400)
	text, err := ComposeMention("fan", report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(text, "@fan ") {
		t.Fatalf("mention prefix missing: %q", text[:10])
	}
	if utf8.RuneCountInString(text) != 280 {
		t.Fatalf("expected 280 runes, got %d", utf8.RuneCountInString(text))
	}
	if !strings.HasSuffix(text, "…") || strings.Count(text, "…") != 1 {
		t.Fatalf("expected a single trailing marker")
	}
}

func TestComposeMentionRequiresReport(t *testing.T) {
	_, err := ComposeMention("fan", "  ")
	if err == nil || err.Error() != "No report to tweet yet." {
		t.Fatalf("expected no-report error, got %v", err)
	}
}

func TestComposeMentionRejectsInvalidHandle(t *testing.T) {
	for _, h := range []string{"way_too_long_handle", "bad.handle", ""} {
		if _, err := ComposeMention(h, "report"); !apperrors.Is(err, apperrors.CodeValidation) {
			t.Errorf("handle %q: expected validation error, got %v", h, err)
		}
	}
}

func TestToTweetLength(t *testing.T) {
	if got := ToTweetLength("  line one   \nline two  "); got != "line one\nline two" {
		t.Fatalf("ToTweetLength = %q", got)
	}
	long := ToTweetLength(strings.Repeat("z", 281))
	if utf8.RuneCountInString(long) != 278 || !strings.HasSuffix(long, "…") {
		t.Fatalf("expected 277 runes plus marker, got %d", utf8.RuneCountInString(long))
	}
	exact := strings.Repeat("z", 280)
	if ToTweetLength(exact) != exact {
		t.Fatal("280 runes should be kept as is")
	}
}

func TestStripSectionHeaders(t *testing.T) {
	in := "Notable game: vs BOS\nLeBron scored 40\n\nFun facts\n  and grabbed 10  boards\nquick context: finals"
	if got := StripSectionHeaders(in); got != "LeBron scored 40 and grabbed 10 boards" {
		t.Fatalf("StripSectionHeaders = %q", got)
	}
}
