package wizard

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/alf-academy/enroll/internal/tui/theme"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Normal state (enabled)
	ButtonDisabled                    // Disabled state (grayed out)
	ButtonFocused                     // Focused/highlighted state
)

// Button represents a single button in the button bar.
type Button struct {
	Label string
	State ButtonState
}

// ButtonBar lays out a row of buttons, centered.
type ButtonBar struct {
	buttons []Button
	width   int
}

// NewButtonBar creates a new button bar with the given buttons.
func NewButtonBar(buttons []Button) *ButtonBar {
	return &ButtonBar{
		buttons: buttons,
		width:   60,
	}
}

// SetWidth updates the width for the button bar.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

// Render renders the button bar with proper spacing and styling.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}

	s := theme.Current().S()
	rendered := make([]string, 0, len(b.buttons))
	for _, btn := range b.buttons {
		switch btn.State {
		case ButtonDisabled:
			rendered = append(rendered, s.ButtonDisabled.Render(btn.Label))
		case ButtonFocused:
			rendered = append(rendered, s.ButtonFocused.Render(btn.Label))
		default:
			rendered = append(rendered, s.ButtonNormal.Render(btn.Label))
		}
	}

	return lipgloss.PlaceHorizontal(b.width, lipgloss.Center, strings.Join(rendered, ""))
}

// CreateBackNextButtons builds the Back / Next pair. focused is -1 when
// neither button has focus, 0 for Back and 1 for Next.
func CreateBackNextButtons(backEnabled, nextEnabled bool, nextLabel string, focused int) []Button {
	state := func(enabled bool, idx int) ButtonState {
		switch {
		case !enabled:
			return ButtonDisabled
		case focused == idx:
			return ButtonFocused
		default:
			return ButtonNormal
		}
	}
	return []Button{
		{Label: "← Back", State: state(backEnabled, 0)},
		{Label: nextLabel, State: state(nextEnabled, 1)},
	}
}
