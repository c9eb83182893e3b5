package wizard

import (
	"strings"

	"charm.land/glamour/v2"

	"github.com/alf-academy/enroll/internal/enrollment"
	"github.com/alf-academy/enroll/internal/submission"
	"github.com/alf-academy/enroll/internal/template"
)

// confirmationMarkdown fills the thank-you template for an accepted form.
func confirmationMarkdown(tpl string, f *enrollment.Form, r *submission.Receipt) string {
	if tpl == "" {
		tpl = template.DefaultConfirmation
	}
	id := ""
	if r != nil {
		id = r.ID
	}
	return template.Render(tpl, template.VariablesFor(f, id))
}

// renderConfirmation renders the thank-you page with glamour, falling back
// to the raw markdown.
func renderConfirmation(content string, width int) string {
	if width > 120 {
		width = 120
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSuffix(rendered, "\n")
}
