package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/alf-academy/enroll/internal/auth"
	"github.com/alf-academy/enroll/internal/drafts"
	"github.com/alf-academy/enroll/internal/enrollment"
	"github.com/alf-academy/enroll/internal/logger"
	"github.com/alf-academy/enroll/internal/submission"
	"github.com/alf-academy/enroll/internal/tui/theme"
)

// Submitter sends a form snapshot to the student API.
type Submitter interface {
	Submit(ctx context.Context, f *enrollment.Form) (*submission.Receipt, error)
}

// DraftSaver keeps forms whose submission failed.
type DraftSaver interface {
	SaveForm(name string, f *enrollment.Form, reason string) (string, error)
}

// Options configures the wizard.
type Options struct {
	Navigator *enrollment.Navigator
	Submitter Submitter
	// Drafts is optional; without it failed submissions are not saved.
	Drafts DraftSaver
	// Confirmation is the thank-you markdown template; empty uses the
	// built-in one.
	Confirmation string
	Now          func() time.Time
}

// Result summarizes a wizard session.
type Result struct {
	Cancelled bool
	// Receipts holds one entry per accepted submission, in order, and
	// Accepted the form that was sent for each.
	Receipts  []*submission.Receipt
	Accepted  []*enrollment.Form
	DraftPath string
}

// submitDoneMsg carries the outcome of a submission back to Update.
type submitDoneMsg struct {
	form    *enrollment.Form
	receipt *submission.Receipt
	err     error
}

// Model is the enrollment wizard: Contact → Preferences → Schedule, then a
// confirmation view.
type Model struct {
	ctx       context.Context
	nav       *enrollment.Navigator
	submitter Submitter
	drafts    DraftSaver
	now       func() time.Time
	thanksTpl string

	inputs []*fieldInput
	// focus indexes inputs; len(inputs) is the button bar.
	focus  int
	button int

	alert      string
	notice     string
	submitting bool
	spinner    spinner.Model

	accepted     *enrollment.Form
	receipt      *submission.Receipt
	confirmation string

	result Result
	width  int
	height int
}

// New creates the wizard model.
func New(ctx context.Context, opts Options) (*Model, error) {
	if opts.Navigator == nil {
		return nil, errors.New("navigator is required")
	}
	if opts.Submitter == nil {
		return nil, errors.New("submitter is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Current().Primary))

	m := &Model{
		ctx:       ctx,
		nav:       opts.Navigator,
		submitter: opts.Submitter,
		drafts:    opts.Drafts,
		now:       opts.Now,
		thanksTpl: opts.Confirmation,
		spinner:   s,
		width:     100,
		height:    40,
	}
	m.buildInputs()
	return m, nil
}

// Run shows the wizard until the user quits.
func Run(ctx context.Context, opts Options) (*Result, error) {
	m, err := New(ctx, opts)
	if err != nil {
		return nil, err
	}

	finalModel, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}
	wiz, ok := finalModel.(*Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}
	return &wiz.result, nil
}

// Result returns the session summary so far.
func (m *Model) Result() Result {
	return m.result
}

// Init focuses the first field.
func (m *Model) Init() tea.Cmd {
	return m.setFocus(0)
}

// buildInputs recreates the inputs for the current step from the form.
// Focus stays on the same field when it is still shown.
func (m *Model) buildInputs() tea.Cmd {
	var focused enrollment.Field
	if m.focus < len(m.inputs) {
		focused = m.inputs[m.focus].field
	}

	step := m.nav.Step()
	form := m.nav.Form()
	m.inputs = nil
	if step == enrollment.StepSubmitted {
		return nil
	}

	def, _ := m.nav.Validator().Definition(step)
	fields := append(def.Fields(), extraFields[step]...)
	for _, f := range fields {
		if f == enrollment.FieldEndTime {
			continue
		}
		if parent, ok := otherParents[f]; ok && form.Get(parent) != enrollment.OptionOther {
			continue
		}
		switch {
		case f == enrollment.FieldStartTime:
			m.inputs = append(m.inputs, newChoiceInput(f, m.nav.Validator().Slots(), form.Get(f)))
		case f != enrollment.FieldCountry && enrollment.OptionsFor(f) != nil:
			m.inputs = append(m.inputs, newChoiceInput(f, enrollment.OptionsFor(f), form.Get(f)))
		default:
			m.inputs = append(m.inputs, newTextInput(f, form.Get(f)))
		}
	}
	m.resizeInputs()

	idx := 0
	for i, in := range m.inputs {
		if in.field == focused {
			idx = i
		}
	}
	return m.setFocus(idx)
}

func (m *Model) resizeInputs() {
	w := m.contentWidth() - labelWidth - 2
	if w < 20 {
		w = 20
	}
	for _, in := range m.inputs {
		in.setWidth(w)
	}
}

func (m *Model) setFocus(idx int) tea.Cmd {
	if idx < 0 {
		idx = len(m.inputs)
	}
	if idx > len(m.inputs) {
		idx = 0
	}
	for _, in := range m.inputs {
		in.blur()
	}
	m.focus = idx
	if idx == len(m.inputs) {
		m.button = 1
		return nil
	}
	return m.inputs[idx].focus()
}

func (m *Model) focusField(f enrollment.Field) tea.Cmd {
	if f == enrollment.FieldEndTime {
		f = enrollment.FieldStartTime
	}
	for i, in := range m.inputs {
		if in.field == f {
			return m.setFocus(i)
		}
	}
	return nil
}

// commit writes an input back to the form and shows what the form kept.
// Revealing or hiding an "Other" detail field rebuilds the step.
func (m *Model) commit(in *fieldInput) tea.Cmd {
	form := m.nav.Form()
	before := form.Get(in.field)
	if err := form.Set(in.field, in.Value()); err != nil {
		logger.Warn("Ignoring write to %s: %v", in.field, err)
		return nil
	}
	// Set may store something else, e.g. a fresh code for a cleared referral.
	if stored := form.Get(in.field); !in.isChoice() && stored != in.Value() {
		in.text.SetValue(stored)
	}
	for _, parent := range otherParents {
		if parent == in.field && (before == enrollment.OptionOther) != (in.Value() == enrollment.OptionOther) {
			return m.buildInputs()
		}
	}
	return nil
}

// Update handles messages for the wizard.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeInputs()
		if m.receipt != nil {
			m.confirmation = renderConfirmation(confirmationMarkdown(m.thanksTpl, m.accepted, m.receipt), m.contentWidth())
		}
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case submitDoneMsg:
		return m, m.finishSubmit(msg)

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	}

	if m.focus < len(m.inputs) {
		return m, m.inputs[m.focus].update(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		m.result.Cancelled = m.nav.Step() != enrollment.StepSubmitted
		return tea.Quit
	}
	if m.nav.Step() == enrollment.StepSubmitted {
		switch key {
		case "enter", "n":
			m.nav.Restart()
			m.receipt = nil
			m.accepted = nil
			m.notice = ""
			return m.buildInputs()
		case "q", "esc":
			return tea.Quit
		}
		return nil
	}

	onButtons := m.focus == len(m.inputs)
	switch key {
	case "esc":
		return m.back()
	case "tab", "down":
		return m.setFocus(m.focus + 1)
	case "shift+tab", "up":
		return m.setFocus(m.focus - 1)
	case "ctrl+s":
		m.saveDraft("saved from the wizard")
		return nil
	case "enter":
		if onButtons && m.button == 0 {
			if m.nav.Step() == enrollment.StepContact {
				return nil
			}
			return m.back()
		}
		return m.advance()
	case "left", "right":
		delta := 1
		if key == "left" {
			delta = -1
		}
		if onButtons {
			m.button = (m.button + 1) % 2
			return nil
		}
		if in := m.inputs[m.focus]; in.isChoice() {
			in.cycle(delta)
			m.alert = ""
			return m.commit(in)
		}
	}

	if onButtons {
		return nil
	}
	in := m.inputs[m.focus]
	cmd := in.update(msg)
	if in.isChoice() {
		return cmd
	}
	if in.Value() != m.nav.Form().Get(in.field) {
		m.alert = ""
	}
	return tea.Batch(cmd, m.commit(in))
}

func (m *Model) back() tea.Cmd {
	if m.nav.Back() {
		m.alert = ""
		m.focus = 0
		m.inputs = nil
		return m.buildInputs()
	}
	if m.nav.Step() == enrollment.StepContact && !m.submitting {
		m.result.Cancelled = true
		return tea.Quit
	}
	return nil
}

// advance validates the current step and moves on, or submits from the
// schedule step.
func (m *Model) advance() tea.Cmd {
	if m.nav.Step() == enrollment.StepSchedule {
		return m.submit()
	}
	res := m.nav.Next()
	if !res.Valid {
		return m.showResult(res)
	}
	m.alert = ""
	m.focus = 0
	m.inputs = nil
	return m.buildInputs()
}

func (m *Model) showResult(res enrollment.Result) tea.Cmd {
	m.alert = res.Prompt()
	if res.Step != m.nav.Step() {
		m.alert = fmt.Sprintf("%s (on the %s step)", m.alert, res.Step)
		return nil
	}
	return m.focusField(res.Field)
}

// submit starts a submission. While one is running every other action stays
// available and a second submit is ignored.
func (m *Model) submit() tea.Cmd {
	if m.submitting {
		return nil
	}
	if res := m.nav.Next(); !res.Valid {
		return m.showResult(res)
	}
	snapshot, err := m.nav.BeginSubmit()
	if err != nil {
		var ve *enrollment.ValidationError
		if errors.As(err, &ve) {
			return m.showResult(ve.Result)
		}
		m.alert = err.Error()
		return nil
	}

	m.submitting = true
	m.alert = ""
	m.notice = ""
	ctx, submitter := m.ctx, m.submitter
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			receipt, err := submitter.Submit(ctx, snapshot)
			return submitDoneMsg{form: snapshot, receipt: receipt, err: err}
		},
	)
}

func (m *Model) finishSubmit(msg submitDoneMsg) tea.Cmd {
	m.submitting = false
	m.nav.EndSubmit(msg.err)

	if msg.err != nil {
		m.alert = describe(msg.err)
		if !enrollment.IsValidationError(msg.err) {
			m.saveDraft(msg.err.Error())
		}
		return nil
	}

	m.accepted = msg.form
	m.receipt = msg.receipt
	m.result.Receipts = append(m.result.Receipts, msg.receipt)
	m.result.Accepted = append(m.result.Accepted, msg.form)
	m.confirmation = renderConfirmation(confirmationMarkdown(m.thanksTpl, m.accepted, m.receipt), m.contentWidth())
	m.alert = ""
	m.notice = ""
	return m.buildInputs()
}

func (m *Model) saveDraft(reason string) {
	if m.drafts == nil {
		return
	}
	form := m.nav.Form()
	path, err := m.drafts.SaveForm(drafts.NameFor(form, m.now()), form, reason)
	if err != nil {
		logger.Warn("Failed to save draft: %v", err)
		m.notice = "Could not save a draft: " + err.Error()
		return
	}
	m.result.DraftPath = path
	m.notice = "Draft saved to " + path
}

// describe renders a submission error for the alert line.
func describe(err error) string {
	var ve *enrollment.ValidationError
	var apiErr *submission.APIError
	var te *submission.TransportError
	switch {
	case errors.As(err, &ve):
		return ve.Prompt()
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.As(err, &te):
		return te.Error()
	case errors.Is(err, auth.ErrNoSession):
		return "Not logged in. Run `enroll login` and submit again."
	case errors.Is(err, enrollment.ErrSubmissionInFlight):
		return err.Error()
	default:
		return "Failed to submit form: " + err.Error()
	}
}

func (m *Model) contentWidth() int {
	w := m.width - 10
	if w < 60 {
		w = 60
	}
	if w > 100 {
		w = 100
	}
	return w - 6
}

// View renders the wizard UI.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	content := m.renderModal(m.renderContent())

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// renderContent renders everything inside the modal frame.
func (m *Model) renderContent() string {
	s := theme.Current().S()
	step := m.nav.Step()

	var sections []string
	if step == enrollment.StepSubmitted {
		sections = append(sections,
			s.ModalTitle.Render("Student Enrollment - Submitted"),
			renderProgress(step.Progress()),
			"",
			m.confirmation,
			"",
			renderHintBar("enter", "enroll another student", "q", "quit"),
		)
		return strings.Join(sections, "\n")
	}

	title := fmt.Sprintf("Student Enrollment - Step %d of %d: %s", int(step), len(enrollment.Steps), stepTitle(m.nav.Validator(), step))
	sections = append(sections, s.ModalTitle.Render(title), renderProgress(step.Progress()), "")

	for i, in := range m.inputs {
		sections = append(sections, in.view(i == m.focus))
	}
	if step == enrollment.StepSchedule {
		end := m.nav.Form().Get(enrollment.FieldEndTime)
		if end == "" {
			end = "pick a start time"
		}
		sections = append(sections,
			s.Label.Width(labelWidth).Render("  "+labelFor(enrollment.FieldEndTime))+
				s.Derived.Render(fmt.Sprintf("%s (%d minute trial)", end, int(enrollment.SessionLength/time.Minute))))
	}

	sections = append(sections, "")
	if m.submitting {
		sections = append(sections, m.spinner.View()+" Submitting enrollment...")
	}
	if m.alert != "" {
		sections = append(sections, s.Alert.Render(m.alert))
	}
	if m.notice != "" {
		sections = append(sections, s.Notice.Render(m.notice))
	}

	nextLabel := "Next →"
	nextEnabled := true
	if step == enrollment.StepSchedule {
		nextLabel = "Submit"
		if m.submitting {
			nextLabel = "Submitting..."
			nextEnabled = false
		}
	}
	focused := -1
	if m.focus == len(m.inputs) {
		focused = m.button
	}
	bar := NewButtonBar(CreateBackNextButtons(step != enrollment.StepContact, nextEnabled, nextLabel, focused))
	bar.SetWidth(m.contentWidth())
	sections = append(sections, "", bar.Render(), "",
		renderHintBar("tab", "next field", "← →", "choose", "enter", "continue", "esc", "back", "ctrl+s", "save draft"))

	return strings.Join(sections, "\n")
}

func stepTitle(v *enrollment.Validator, step enrollment.Step) string {
	if def, ok := v.Definition(step); ok && def.Title != "" {
		return def.Title
	}
	return step.String()
}

// renderModal wraps content in the centered modal container.
func (m *Model) renderModal(content string) string {
	modal := theme.Current().S().ModalContainer.Width(m.contentWidth() + 6).Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}
