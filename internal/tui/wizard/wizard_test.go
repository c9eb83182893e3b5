package wizard

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alf-academy/enroll/internal/enrollment"
	"github.com/alf-academy/enroll/internal/submission"
	"github.com/alf-academy/enroll/internal/tui/testfixtures"
)

func newModel(t *testing.T, nav *enrollment.Navigator, sub *testfixtures.MockSubmitter, d *testfixtures.MockDrafts) *Model {
	t.Helper()
	opts := Options{
		Navigator: nav,
		Submitter: sub,
		Now:       func() time.Time { return testfixtures.FixedTime },
	}
	if d != nil {
		opts.Drafts = d
	}
	m, err := New(context.Background(), opts)
	require.NoError(t, err)
	m.Update(tea.WindowSizeMsg{Width: testfixtures.TestTermWidth, Height: testfixtures.TestTermHeight})
	return m
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(testfixtures.Key(k))
	}
	return cmd
}

func typeText(m *Model, s string) {
	for _, msg := range testfixtures.Type(s) {
		m.Update(msg)
	}
}

// collect runs cmd and every command of a batch it returns.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// finish delivers the outcome of a submit command to the model.
func finish(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for _, msg := range collect(cmd) {
		if done, ok := msg.(submitDoneMsg); ok {
			m.Update(done)
			return
		}
	}
	t.Fatal("submit command produced no result")
}

func fields(m *Model) []enrollment.Field {
	out := make([]enrollment.Field, 0, len(m.inputs))
	for _, in := range m.inputs {
		out = append(out, in.field)
	}
	return out
}

func contactNavigator() *enrollment.Navigator {
	return enrollment.NewNavigator(testfixtures.EmptyForm(), testfixtures.Validator())
}

func preferencesNavigator(t *testing.T) *enrollment.Navigator {
	t.Helper()
	form := testfixtures.EmptyForm()
	require.NoError(t, form.Load(testfixtures.ContactValues))
	nav := enrollment.NewNavigator(form, testfixtures.Validator())
	require.True(t, nav.Next().Valid)
	return nav
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(context.Background(), Options{Submitter: testfixtures.NewMockSubmitter()})
	assert.Error(t, err)

	_, err = New(context.Background(), Options{Navigator: contactNavigator()})
	assert.Error(t, err)
}

func TestContactStepLayout(t *testing.T) {
	m := newModel(t, contactNavigator(), testfixtures.NewMockSubmitter(), nil)

	assert.Equal(t, []enrollment.Field{
		enrollment.FieldFirstName,
		enrollment.FieldLastName,
		enrollment.FieldEmail,
		enrollment.FieldCountryCode,
		enrollment.FieldPhoneNumber,
		enrollment.FieldCountry,
		enrollment.FieldCity,
		enrollment.FieldReferralCode,
	}, fields(m))
	assert.Equal(t, 0, m.focus)

	out := testfixtures.PlainText(m.renderContent())
	assert.Contains(t, out, "Student Enrollment - Step 1 of 3: Contact")
	assert.Contains(t, out, "First Name")
	assert.Contains(t, out, "ALF-REFID-", "the generated referral code is prefilled")
}

func TestTypingWritesForm(t *testing.T) {
	nav := contactNavigator()
	m := newModel(t, nav, testfixtures.NewMockSubmitter(), nil)

	typeText(m, "Amina")
	press(m, "tab")
	typeText(m, "Yusuf")

	assert.Equal(t, "Amina", nav.Form().Get(enrollment.FieldFirstName))
	assert.Equal(t, "Yusuf", nav.Form().Get(enrollment.FieldLastName))
	assert.Equal(t, 1, m.focus)
}

func TestClearedReferralCodeShowsNewCode(t *testing.T) {
	nav := contactNavigator()
	m := newModel(t, nav, testfixtures.NewMockSubmitter(), nil)
	m.focusField(enrollment.FieldReferralCode)
	in := m.inputs[m.focus]
	require.Equal(t, enrollment.FieldReferralCode, in.field)

	for range len(in.Value()) {
		press(m, "backspace")
	}

	code := nav.Form().Get(enrollment.FieldReferralCode)
	assert.NotEmpty(t, code)
	assert.Equal(t, code, in.Value(), "the input shows the regenerated code")
}

func TestFocusWraps(t *testing.T) {
	m := newModel(t, contactNavigator(), testfixtures.NewMockSubmitter(), nil)

	press(m, "shift+tab")
	assert.Equal(t, len(m.inputs), m.focus, "shift+tab from the first field lands on the buttons")

	press(m, "tab")
	assert.Equal(t, 0, m.focus)
}

func TestNextBlockedOnShortName(t *testing.T) {
	nav := contactNavigator()
	m := newModel(t, nav, testfixtures.NewMockSubmitter(), nil)

	typeText(m, "Al")
	press(m, "tab", "enter")

	assert.Equal(t, enrollment.StepContact, nav.Step())
	assert.Equal(t, "Please fill in the First Name (minimum 3 characters) field correctly: must be at least 3 characters.", m.alert)
	assert.Equal(t, 0, m.focus, "focus jumps to the offending field")

	typeText(m, "x")
	assert.Empty(t, m.alert, "editing clears the alert")
}

func TestNextAdvancesToPreferences(t *testing.T) {
	nav := preferencesNavigator(t)
	nav.Back()
	m := newModel(t, nav, testfixtures.NewMockSubmitter(), nil)

	press(m, "enter")

	assert.Equal(t, enrollment.StepPreferences, nav.Step())
	assert.Equal(t, []enrollment.Field{
		enrollment.FieldLearningInterest,
		enrollment.FieldNumberOfStudents,
		enrollment.FieldTeacherPreference,
		enrollment.FieldReferralSource,
	}, fields(m), "detail fields stay hidden until Other is chosen")
	assert.Contains(t, testfixtures.PlainText(m.renderContent()), "Step 2 of 3: Learning Preferences")
}

func TestChoiceCyclingRevealsOtherDetails(t *testing.T) {
	nav := preferencesNavigator(t)
	m := newModel(t, nav, testfixtures.NewMockSubmitter(), nil)
	form := nav.Form()

	press(m, "right")
	assert.Equal(t, "Quran", form.Get(enrollment.FieldLearningInterest))

	press(m, "left")
	assert.Equal(t, enrollment.OptionOther, form.Get(enrollment.FieldLearningInterest))
	assert.Contains(t, fields(m), enrollment.FieldLearningOther)
	assert.Equal(t, 0, m.focus, "focus stays on the choice")

	press(m, "right")
	assert.Equal(t, "Quran", form.Get(enrollment.FieldLearningInterest))
	assert.NotContains(t, fields(m), enrollment.FieldLearningOther)
}

func TestOtherDetailsRequired(t *testing.T) {
	nav := preferencesNavigator(t)
	require.NoError(t, nav.Form().Load(testfixtures.PreferenceValues))
	require.NoError(t, nav.Form().Set(enrollment.FieldReferralSource, enrollment.OptionOther))
	m := newModel(t, nav, testfixtures.NewMockSubmitter(), nil)

	press(m, "enter")

	assert.Equal(t, enrollment.StepPreferences, nav.Step())
	assert.Contains(t, m.alert, "Referral Details")
	require.Less(t, m.focus, len(m.inputs))
	assert.Equal(t, enrollment.FieldReferralSourceOther, m.inputs[m.focus].field)

	typeText(m, "Radio")
	press(m, "enter")
	assert.Equal(t, enrollment.StepSchedule, nav.Step())
}

func TestEscGoesBackThenCancels(t *testing.T) {
	nav := preferencesNavigator(t)
	m := newModel(t, nav, testfixtures.NewMockSubmitter(), nil)

	press(m, "esc")
	assert.Equal(t, enrollment.StepContact, nav.Step())
	assert.Equal(t, "Amina", nav.Form().Get(enrollment.FieldFirstName), "going back keeps input")

	cmd := press(m, "esc")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.Result().Cancelled)
}

func TestBackButtonDisabledOnContact(t *testing.T) {
	m := newModel(t, contactNavigator(), testfixtures.NewMockSubmitter(), nil)

	press(m, "shift+tab", "left")
	require.Equal(t, 0, m.button)

	assert.Nil(t, press(m, "enter"))
	assert.False(t, m.Result().Cancelled)
}

func TestScheduleShowsDerivedEndTime(t *testing.T) {
	m := newModel(t, testfixtures.ScheduleNavigator(), testfixtures.NewMockSubmitter(), nil)

	out := testfixtures.PlainText(m.renderContent())
	assert.Contains(t, out, "Step 3 of 3: Schedule")
	assert.Contains(t, out, "12:00 PM (30 minute trial)")
	assert.Contains(t, out, "Submit")

	press(m, "tab", "right")
	assert.Equal(t, "12:00 PM", m.nav.Form().Get(enrollment.FieldStartTime))
	assert.Equal(t, "12:30 PM", m.nav.Form().Get(enrollment.FieldEndTime))
}

func TestSubmitSuccess(t *testing.T) {
	nav := testfixtures.ScheduleNavigator()
	sub := testfixtures.NewMockSubmitter()
	m := newModel(t, nav, sub, nil)

	cmd := press(m, "enter")
	require.NotNil(t, cmd)
	assert.True(t, m.submitting)
	assert.True(t, nav.InFlight())
	assert.Contains(t, testfixtures.PlainText(m.renderContent()), "Submitting enrollment...")

	finish(t, m, cmd)

	assert.False(t, m.submitting)
	assert.False(t, nav.InFlight())
	assert.Equal(t, enrollment.StepSubmitted, nav.Step())
	assert.Empty(t, nav.Form().Get(enrollment.FieldFirstName), "the form is cleared")
	require.Len(t, m.Result().Receipts, 1)
	assert.Equal(t, "stu_1", m.Result().Receipts[0].ID)
	require.Len(t, m.Result().Accepted, 1)
	assert.Equal(t, "United States", m.Result().Accepted[0].Get(enrollment.FieldCountry))
	assert.Equal(t, 1, sub.Calls())
	assert.Equal(t, "Amina", sub.Submitted[0].Get(enrollment.FieldFirstName))

	out := testfixtures.PlainText(m.renderContent())
	assert.Contains(t, out, "Thank you, Amina!")
	assert.Contains(t, out, "amina@example.com")
	assert.Contains(t, out, "stu_1")

	press(m, "enter")
	assert.Equal(t, enrollment.StepContact, nav.Step(), "enter starts another enrollment")
	assert.NotEmpty(t, m.inputs)
}

func TestSubmitFailureKeepsFormAndSavesDraft(t *testing.T) {
	nav := testfixtures.ScheduleNavigator()
	sub := testfixtures.NewMockSubmitter()
	sub.Err = &submission.APIError{StatusCode: 409, Message: "Email already registered"}
	d := testfixtures.NewMockDrafts()
	m := newModel(t, nav, sub, d)

	finish(t, m, press(m, "enter"))

	assert.Equal(t, enrollment.StepSchedule, nav.Step())
	assert.Equal(t, "Amina", nav.Form().Get(enrollment.FieldFirstName))
	assert.Equal(t, "Email already registered", m.alert)
	assert.False(t, nav.InFlight())

	require.Equal(t, 1, d.Count())
	assert.Equal(t, "Amina Yusuf", d.Saved[0].Name)
	assert.Equal(t, "Email already registered", d.Saved[0].Reason)
	assert.Equal(t, "drafts/1.yaml", m.Result().DraftPath)
	assert.Contains(t, testfixtures.PlainText(m.renderContent()), "Draft saved to drafts/1.yaml")

	sub.Err = nil
	finish(t, m, press(m, "enter"))
	assert.Equal(t, enrollment.StepSubmitted, nav.Step(), "a retry after failure is allowed")
	assert.Equal(t, 2, sub.Calls())
}

func TestSubmitTransportError(t *testing.T) {
	sub := testfixtures.NewMockSubmitter()
	sub.Err = &submission.TransportError{Err: context.DeadlineExceeded}
	m := newModel(t, testfixtures.ScheduleNavigator(), sub, nil)

	finish(t, m, press(m, "enter"))

	assert.True(t, strings.HasPrefix(m.alert, "Failed to submit form:"), m.alert)
}

func TestSubmitBlockedByValidation(t *testing.T) {
	nav := testfixtures.ScheduleNavigator()
	require.NoError(t, nav.Form().Set(enrollment.FieldDate, "2026-10-01"))
	sub := testfixtures.NewMockSubmitter()
	m := newModel(t, nav, sub, nil)

	press(m, "enter")

	assert.Contains(t, m.alert, "Trial Date")
	assert.False(t, nav.InFlight())
	assert.Equal(t, 0, sub.Calls())
}

func TestEditsAllowedWhileSubmitting(t *testing.T) {
	nav := testfixtures.ScheduleNavigator()
	sub := testfixtures.NewMockSubmitter()
	m := newModel(t, nav, sub, nil)
	require.Equal(t, enrollment.FieldDate, m.inputs[m.focus].field)

	cmd := press(m, "enter")
	require.True(t, m.submitting)
	assert.Contains(t, testfixtures.PlainText(m.renderContent()), "Submitting...")

	assert.Nil(t, press(m, "enter"), "a second submit is ignored")

	typeText(m, "x")
	assert.Equal(t, "2026-10-20x", nav.Form().Get(enrollment.FieldDate), "edits land in the live form")

	press(m, "esc")
	assert.Equal(t, enrollment.StepPreferences, nav.Step(), "back works while sending")
	assert.True(t, nav.InFlight())

	finish(t, m, cmd)
	assert.Equal(t, 1, sub.Calls())
	assert.Equal(t, "2026-10-20", sub.Submitted[0].Get(enrollment.FieldDate), "the request used the snapshot")
	assert.Equal(t, enrollment.StepSubmitted, nav.Step())
}

func TestFailureWhileOnEarlierStepKeepsEdits(t *testing.T) {
	nav := testfixtures.ScheduleNavigator()
	sub := testfixtures.NewMockSubmitter()
	sub.Err = &submission.APIError{StatusCode: 500, Message: "Server returned 500"}
	d := testfixtures.NewMockDrafts()
	m := newModel(t, nav, sub, d)

	cmd := press(m, "enter")
	press(m, "esc")
	require.Equal(t, enrollment.StepPreferences, nav.Step())

	finish(t, m, cmd)
	assert.Equal(t, enrollment.StepPreferences, nav.Step())
	assert.Equal(t, "Server returned 500", m.alert)
	assert.False(t, nav.InFlight())
	assert.Equal(t, 1, d.Count())
}

func TestEscOnContactDoesNotQuitWhileSubmitting(t *testing.T) {
	nav := testfixtures.ScheduleNavigator()
	sub := testfixtures.NewMockSubmitter()
	m := newModel(t, nav, sub, nil)

	cmd := press(m, "enter")
	press(m, "esc", "esc")
	require.Equal(t, enrollment.StepContact, nav.Step())

	assert.Nil(t, press(m, "esc"))
	assert.False(t, m.Result().Cancelled)

	finish(t, m, cmd)
	assert.Equal(t, enrollment.StepSubmitted, nav.Step())
}

func TestScheduleStepShowsFullProgress(t *testing.T) {
	m := newModel(t, testfixtures.ScheduleNavigator(), testfixtures.NewMockSubmitter(), nil)
	assert.Contains(t, testfixtures.PlainText(m.renderContent()), "100%")
}

func TestCtrlCCancels(t *testing.T) {
	m := newModel(t, contactNavigator(), testfixtures.NewMockSubmitter(), nil)

	cmd := press(m, "ctrl+c")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.Result().Cancelled)
}

func TestCtrlSSavesDraft(t *testing.T) {
	nav := preferencesNavigator(t)
	d := testfixtures.NewMockDrafts()
	m := newModel(t, nav, testfixtures.NewMockSubmitter(), d)

	press(m, "ctrl+s")

	require.Equal(t, 1, d.Count())
	assert.Equal(t, "saved from the wizard", d.Saved[0].Reason)
	assert.Equal(t, enrollment.StepPreferences, nav.Step())
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"api", &submission.APIError{StatusCode: 500, Message: "Server returned 500"}, "Server returned 500"},
		{"in flight", enrollment.ErrSubmissionInFlight, enrollment.ErrSubmissionInFlight.Error()},
		{"other", context.Canceled, "Failed to submit form: context canceled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.err))
		})
	}
}
