package wizard

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/alf-academy/enroll/internal/enrollment"
	"github.com/alf-academy/enroll/internal/tui/theme"
)

const (
	labelWidth       = 22
	maxInlineOptions = 5
)

var fieldLabels = map[enrollment.Field]string{
	enrollment.FieldFirstName:           "First Name",
	enrollment.FieldLastName:            "Last Name",
	enrollment.FieldEmail:               "Email",
	enrollment.FieldCountryCode:         "Phone Country Code",
	enrollment.FieldPhoneNumber:         "Phone Number",
	enrollment.FieldCountry:             "Country",
	enrollment.FieldCity:                "City (optional)",
	enrollment.FieldReferralCode:        "Referral Code",
	enrollment.FieldLearningInterest:    "Learning Interest",
	enrollment.FieldLearningOther:       "Interest Details",
	enrollment.FieldNumberOfStudents:    "Number of Students",
	enrollment.FieldTeacherPreference:   "Teacher Preference",
	enrollment.FieldReferralSource:      "How did you hear?",
	enrollment.FieldReferralSourceOther: "Referral Details",
	enrollment.FieldDate:                "Trial Date",
	enrollment.FieldStartTime:           "Start Time",
	enrollment.FieldEndTime:             "End Time",
}

var placeholders = map[enrollment.Field]string{
	enrollment.FieldFirstName:           "At least 3 characters",
	enrollment.FieldLastName:            "At least 3 characters",
	enrollment.FieldEmail:               "name@example.com",
	enrollment.FieldCountryCode:         "us",
	enrollment.FieldPhoneNumber:         "555 010 2030",
	enrollment.FieldCountry:             "United States",
	enrollment.FieldLearningOther:       "What would you like to learn?",
	enrollment.FieldReferralSourceOther: "Tell us where you heard about us",
	enrollment.FieldDate:                "YYYY-MM-DD",
}

// extraFields are shown on a step although no rule checks them.
var extraFields = map[enrollment.Step][]enrollment.Field{
	enrollment.StepContact: {enrollment.FieldCity, enrollment.FieldReferralCode},
}

// otherParents maps a free-text detail field to the choice that reveals it.
var otherParents = map[enrollment.Field]enrollment.Field{
	enrollment.FieldLearningOther:       enrollment.FieldLearningInterest,
	enrollment.FieldReferralSourceOther: enrollment.FieldReferralSource,
}

func labelFor(f enrollment.Field) string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// fieldInput edits one form field, either as free text or as a choice
// cycled with the arrow keys.
type fieldInput struct {
	field    enrollment.Field
	label    string
	options  []string
	selected int
	text     textinput.Model
}

func newTextInput(field enrollment.Field, value string) *fieldInput {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholders[field]
	ti.SetStyles(inputStyles())
	ti.SetWidth(40)
	ti.SetValue(value)
	return &fieldInput{field: field, label: labelFor(field), text: ti, selected: -1}
}

func newChoiceInput(field enrollment.Field, options []string, value string) *fieldInput {
	in := &fieldInput{field: field, label: labelFor(field), options: options, selected: -1}
	for i, o := range options {
		if o == value {
			in.selected = i
			break
		}
	}
	return in
}

func inputStyles() textinput.Styles {
	t := theme.Current()
	return textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Secondary)),
		},
		Blurred: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
		},
		Cursor: textinput.CursorStyle{
			Color: lipgloss.Color(t.Primary),
			Shape: tea.CursorBar,
			Blink: true,
		},
	}
}

func (in *fieldInput) isChoice() bool {
	return in.options != nil
}

// Value returns the current input as it should be stored in the form.
func (in *fieldInput) Value() string {
	if in.isChoice() {
		if in.selected < 0 || in.selected >= len(in.options) {
			return ""
		}
		return in.options[in.selected]
	}
	return in.text.Value()
}

// cycle moves a choice by delta, wrapping. An unset choice starts at the
// first option going right and the last going left.
func (in *fieldInput) cycle(delta int) {
	if !in.isChoice() || len(in.options) == 0 {
		return
	}
	if in.selected < 0 {
		if delta > 0 {
			in.selected = 0
		} else {
			in.selected = len(in.options) - 1
		}
		return
	}
	n := len(in.options)
	in.selected = ((in.selected+delta)%n + n) % n
}

func (in *fieldInput) focus() tea.Cmd {
	if in.isChoice() {
		return nil
	}
	return in.text.Focus()
}

func (in *fieldInput) blur() {
	if !in.isChoice() {
		in.text.Blur()
	}
}

func (in *fieldInput) setWidth(w int) {
	if !in.isChoice() {
		in.text.SetWidth(w)
	}
}

func (in *fieldInput) update(msg tea.Msg) tea.Cmd {
	if in.isChoice() {
		return nil
	}
	var cmd tea.Cmd
	in.text, cmd = in.text.Update(msg)
	return cmd
}

func (in *fieldInput) view(focused bool) string {
	s := theme.Current().S()

	labelStyle := s.Label
	marker := "  "
	if focused {
		labelStyle = s.LabelFocused
		marker = "› "
	}
	label := labelStyle.Width(labelWidth).Render(marker + in.label)

	if !in.isChoice() {
		return label + in.text.View()
	}

	if len(in.options) > maxInlineOptions {
		current := s.Placeholder.Render("choose with ← →")
		if v := in.Value(); v != "" {
			current = s.ChoiceSelected.Render(" " + v + " ")
		}
		return label + fmt.Sprintf("‹ %s › %s", current, s.Placeholder.Render(fmt.Sprintf("%d/%d", in.selected+1, len(in.options))))
	}

	parts := make([]string, 0, len(in.options))
	for i, o := range in.options {
		if i == in.selected {
			parts = append(parts, s.ChoiceSelected.Render(" "+o+" "))
		} else {
			parts = append(parts, s.Choice.Render(" "+o+" "))
		}
	}
	row := strings.Join(parts, " ")
	if focused {
		row = fmt.Sprintf("‹ %s ›", row)
	}
	return label + row
}
