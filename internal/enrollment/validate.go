package enrollment

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	minNameLength  = 3
	maxPhoneDigits = 15
)

// Result is the outcome of validating one step. On failure it names the
// first offending field.
type Result struct {
	Step    Step   `json:"step"`
	Valid   bool   `json:"valid"`
	Field   Field  `json:"field,omitempty"`
	Label   string `json:"label,omitempty"`
	Message string `json:"message,omitempty"`
}

// Prompt is the sentence shown to the user for a failed result.
func (r Result) Prompt() string {
	if r.Valid {
		return ""
	}
	return fmt.Sprintf("Please fill in the %s field correctly: %s.", r.Label, r.Message)
}

// Err returns a *ValidationError for a failed result and nil otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Result: r}
}

// ValidationError reports a field that is missing or malformed.
type ValidationError struct {
	Result
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s step: %s %s", strings.ToLower(e.Step.String()), e.Label, e.Message)
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Rule checks one field. Check returns a short message on failure and ""
// when the value is acceptable.
type Rule struct {
	Field Field
	Label string
	Check func(value string, f *Form) string
}

// StepDefinition is one row of the wizard table: a step and its rules in
// the order they are reported.
type StepDefinition struct {
	Step  Step
	Title string
	Rules []Rule
}

// Fields returns the distinct fields the step's rules cover.
func (d StepDefinition) Fields() []Field {
	var out []Field
	seen := make(map[Field]bool)
	for _, r := range d.Rules {
		if !seen[r.Field] {
			seen[r.Field] = true
			out = append(out, r.Field)
		}
	}
	return out
}

// Policy holds the validation choices that differ between deployments.
type Policy struct {
	// OtherDetailsRequired makes the free-text detail mandatory when an
	// "Other" option is chosen.
	OtherDetailsRequired bool
}

// ValidatorOptions configures a Validator.
type ValidatorOptions struct {
	Policy   Policy
	Slots    []string
	Location *time.Location
	Now      func() time.Time
}

// Validator checks steps against the wizard table.
type Validator struct {
	policy Policy
	slots  []string
	loc    *time.Location
	now    func() time.Time
	steps  []StepDefinition
}

// NewValidator builds the wizard table. Empty slots mean DefaultSlots.
func NewValidator(opts ValidatorOptions) (*Validator, error) {
	v := &Validator{
		policy: opts.Policy,
		loc:    opts.Location,
		now:    opts.Now,
	}
	if v.loc == nil {
		v.loc = time.UTC
	}
	if v.now == nil {
		v.now = time.Now
	}

	slots := opts.Slots
	if len(slots) == 0 {
		slots = DefaultSlots()
	}
	normalized, err := NormalizeSlots(slots)
	if err != nil {
		return nil, fmt.Errorf("time slots: %w", err)
	}
	v.slots = normalized
	v.steps = v.buildTable()
	return v, nil
}

// Slots returns the bookable start times.
func (v *Validator) Slots() []string {
	return append([]string(nil), v.slots...)
}

// Location returns the zone used for date checks.
func (v *Validator) Location() *time.Location {
	return v.loc
}

// Now returns the validator's current time.
func (v *Validator) Now() time.Time {
	return v.now()
}

// Policy returns the active policy.
func (v *Validator) Policy() Policy {
	return v.policy
}

// Definition returns the table row for step.
func (v *Validator) Definition(step Step) (StepDefinition, bool) {
	for _, d := range v.steps {
		if d.Step == step {
			return d, true
		}
	}
	return StepDefinition{}, false
}

// Validate checks one step and reports the first failing rule. Steps
// without rules, including StepSubmitted, are always valid.
func (v *Validator) Validate(f *Form, step Step) Result {
	def, ok := v.Definition(step)
	if !ok {
		return Result{Step: step, Valid: true}
	}
	for _, rule := range def.Rules {
		if msg := rule.Check(f.Get(rule.Field), f); msg != "" {
			return Result{
				Step:    step,
				Field:   rule.Field,
				Label:   rule.Label,
				Message: msg,
			}
		}
	}
	return Result{Step: step, Valid: true}
}

// ValidateAll checks every input step in order and returns the first
// failure, or a valid result for the last step.
func (v *Validator) ValidateAll(f *Form) Result {
	var res Result
	for _, step := range Steps {
		res = v.Validate(f, step)
		if !res.Valid {
			return res
		}
	}
	return res
}

func (v *Validator) buildTable() []StepDefinition {
	return []StepDefinition{
		{
			Step:  StepContact,
			Title: "Contact",
			Rules: []Rule{
				{FieldFirstName, "First Name (minimum 3 characters)", checkName},
				{FieldLastName, "Last Name (minimum 3 characters)", checkName},
				{FieldEmail, "Email", checkRequired},
				{FieldEmail, "Email Format", checkEmail},
				{FieldCountryCode, "Country Code", checkCountryCode},
				{FieldPhoneNumber, "Phone Number", checkPhone},
				{FieldCountry, "Country", checkCountry},
			},
		},
		{
			Step:  StepPreferences,
			Title: "Learning Preferences",
			Rules: []Rule{
				{FieldLearningInterest, "Learning Interest", checkOneOf(LearningInterests)},
				{FieldLearningOther, "Learning Interest Details", v.checkOtherDetails(FieldLearningInterest)},
				{FieldNumberOfStudents, "Number of Students", checkStudents},
				{FieldTeacherPreference, "Teacher Preference", checkOneOf(TeacherPreferences)},
				{FieldReferralSource, "Referral Source", checkOneOf(ReferralSources)},
				{FieldReferralSourceOther, "Referral Details", v.checkOtherDetails(FieldReferralSource)},
			},
		},
		{
			Step:  StepSchedule,
			Title: "Schedule",
			Rules: []Rule{
				{FieldDate, "Trial Date", v.checkDate},
				{FieldStartTime, "Start Time", v.checkStart},
				{FieldEndTime, "End Time", checkEnd},
			},
		},
	}
}

func checkRequired(value string, _ *Form) string {
	if strings.TrimSpace(value) == "" {
		return "is required"
	}
	return ""
}

func checkName(value string, f *Form) string {
	if msg := checkRequired(value, f); msg != "" {
		return msg
	}
	if len([]rune(strings.TrimSpace(value))) < minNameLength {
		return fmt.Sprintf("must be at least %d characters", minNameLength)
	}
	return ""
}

func checkEmail(value string, _ *Form) string {
	if !emailPattern.MatchString(strings.TrimSpace(value)) {
		return "must look like name@example.com"
	}
	return ""
}

func checkCountryCode(value string, f *Form) string {
	if msg := checkRequired(value, f); msg != "" {
		return msg
	}
	if _, ok := LookupCountryCode(value); !ok {
		return fmt.Sprintf("unknown country code %q", value)
	}
	return ""
}

func checkPhone(value string, f *Form) string {
	if msg := checkRequired(value, f); msg != "" {
		return msg
	}
	digits := PhoneDigits(value)
	if digits == "" {
		return "must contain digits"
	}
	if len(digits) > maxPhoneDigits {
		return fmt.Sprintf("must have at most %d digits", maxPhoneDigits)
	}
	return ""
}

func checkCountry(value string, f *Form) string {
	if msg := checkRequired(value, f); msg != "" {
		return msg
	}
	if _, ok := LookupCountry(value); ok {
		return ""
	}
	if s := SuggestCountry(value); s != "" {
		return fmt.Sprintf("unknown country %q, did you mean %s?", value, s)
	}
	return fmt.Sprintf("unknown country %q", value)
}

func checkOneOf(options []string) func(string, *Form) string {
	return func(value string, _ *Form) string {
		if strings.TrimSpace(value) == "" {
			return "is required"
		}
		if !IsOption(options, value) {
			return "must be one of " + strings.Join(options, ", ")
		}
		return ""
	}
}

func checkStudents(value string, f *Form) string {
	if msg := checkRequired(value, f); msg != "" {
		return msg
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 || n > len(StudentCounts) {
		return fmt.Sprintf("must be between 1 and %d", len(StudentCounts))
	}
	return ""
}

func (v *Validator) checkOtherDetails(parent Field) func(string, *Form) string {
	return func(value string, f *Form) string {
		if !v.policy.OtherDetailsRequired || f.Get(parent) != OptionOther {
			return ""
		}
		return checkRequired(value, f)
	}
}

func (v *Validator) checkDate(value string, f *Form) string {
	if msg := checkRequired(value, f); msg != "" {
		return msg
	}
	day, err := ParseDate(value, v.loc)
	if err != nil {
		return "must be a date like 2025-01-31"
	}
	if IsPastDate(day, v.now(), v.loc) {
		return "cannot be in the past"
	}
	return ""
}

func (v *Validator) checkStart(value string, f *Form) string {
	if msg := checkRequired(value, f); msg != "" {
		return msg
	}
	m, err := ParseSlot(value)
	if err != nil || !IsOption(v.slots, FormatSlot(m)) {
		return "must be one of the available times"
	}
	return ""
}

func checkEnd(value string, f *Form) string {
	if msg := checkRequired(value, f); msg != "" {
		return msg
	}
	want, err := EndTime(f.Get(FieldStartTime))
	if err != nil {
		return "needs a valid start time"
	}
	got, err := ParseSlot(value)
	if err != nil || FormatSlot(got) != want {
		return fmt.Sprintf("must be %s", want)
	}
	return ""
}

// PhoneDigits strips everything but ASCII digits.
func PhoneDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
