package wizard

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/alf-academy/enroll/internal/tui/theme"
)

// renderHintBar renders a hint bar with the given key-description pairs.
// Example: renderHintBar("tab", "next field", "enter", "continue")
// Returns: "tab next field • enter continue"
func renderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}

	s := theme.Current().S()
	var sb strings.Builder
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			sb.WriteString(" " + s.HintSeparator.Render("•") + " ")
		}
		sb.WriteString(s.HintKey.Render(pairs[i]) + " " + s.HintDesc.Render(pairs[i+1]))
	}
	return sb.String()
}

const progressCells = 30

// renderProgress draws a gradient bar for pct (0-100) followed by the
// percentage.
func renderProgress(pct int) string {
	t := theme.Current()
	filled := pct * progressCells / 100

	var sb strings.Builder
	for i := 0; i < progressCells; i++ {
		if i >= filled {
			sb.WriteString(t.S().ProgressEmpty.Render("░"))
			continue
		}
		color := theme.InterpolateColor(t.Primary, t.Secondary, float64(i)/float64(progressCells))
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
	}
	sb.WriteString(" ")
	sb.WriteString(t.S().Label.Render(fmt.Sprintf("%d%%", pct)))
	return sb.String()
}
