package prompt

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	rulesTemplate   = "blurb_rules.tmpl"
	subjectTemplate = "blurb_subject.tmpl"
)

// Blurb is a report prompt split into the standing rules and the per-request
// subject. Providers that support system instructions send them apart.
type Blurb struct {
	Rules   string
	Subject string
}

// String joins both halves for providers that only take a single message.
func (b Blurb) String() string {
	return b.Rules + "\n\n" + b.Subject
}

type blurbData struct {
	Player   string
	MonthDay string
	MaxChars int
}

// PromptBuilder renders report prompts from the embedded templates.
type PromptBuilder struct {
	set *template.Template
	err error
}

func NewPromptBuilder() *PromptBuilder {
	set, err := template.New("prompts").Option("missingkey=error").ParseFS(templateFS, "templates/*.tmpl")
	return &PromptBuilder{set: set, err: err}
}

// OnThisDay builds the prompt for a one-line blurb about player on monthDay
// ("January 2"), capped at maxChars characters.
func (pb *PromptBuilder) OnThisDay(player, monthDay string, maxChars int) (Blurb, error) {
	if pb.err != nil {
		return Blurb{}, fmt.Errorf("load prompt templates: %w", pb.err)
	}
	data := blurbData{
		Player:   strings.TrimSpace(player),
		MonthDay: strings.TrimSpace(monthDay),
		MaxChars: maxChars,
	}

	rules, err := pb.execute(rulesTemplate, data)
	if err != nil {
		return Blurb{}, err
	}
	subject, err := pb.execute(subjectTemplate, data)
	if err != nil {
		return Blurb{}, err
	}
	return Blurb{Rules: rules, Subject: subject}, nil
}

func (pb *PromptBuilder) execute(name string, data any) (string, error) {
	var sb strings.Builder
	if err := pb.set.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return strings.TrimSpace(sb.String()), nil
}
