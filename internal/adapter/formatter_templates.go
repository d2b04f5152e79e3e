package adapter

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var viewTemplateFS embed.FS

var viewFuncs = template.FuncMap{
	// one-based row numbers
	"add": func(a, b int) int { return a + b },
	"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
	"one": func(v float64) string { return fmt.Sprintf("%.1f", v) },
}

var viewTemplates = template.Must(template.New("view").Funcs(viewFuncs).ParseFS(viewTemplateFS, "templates/*.tmpl"))

// renderView executes one view template and drops trailing newlines.
func renderView(name string, data any) (string, error) {
	var sb strings.Builder
	if err := viewTemplates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
