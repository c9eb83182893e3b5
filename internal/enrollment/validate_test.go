package enrollment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AllStepsValid(t *testing.T) {
	v := newTestValidator(t, true)
	f := newTestForm()
	fillValid(t, f)

	for _, step := range Steps {
		res := v.Validate(f, step)
		assert.True(t, res.Valid, "step %s: %s", step, res.Prompt())
	}
	assert.True(t, v.ValidateAll(f).Valid)
	assert.True(t, v.Validate(f, StepSubmitted).Valid)
}

func TestValidate_ShortNameNamesTheField(t *testing.T) {
	v := newTestValidator(t, true)
	f := newTestForm()
	fillValid(t, f)
	require.NoError(t, f.Set(FieldFirstName, "Al"))

	res := v.Validate(f, StepContact)

	assert.False(t, res.Valid)
	assert.Equal(t, FieldFirstName, res.Field)
	assert.Contains(t, res.Prompt(), "First Name (minimum 3 characters)")
	assert.Equal(t, "Please fill in the First Name (minimum 3 characters) field correctly: must be at least 3 characters.", res.Prompt())
}

func TestValidate_AnyISOCountry(t *testing.T) {
	v := newTestValidator(t, true)

	tests := []struct {
		code    string
		country string
	}{
		{"at", "Austria"},
		{"ph", "Philippines"},
		{"ru", "Russia"},
		{"af", "Afghanistan"},
		{"AX", "Åland Islands"},
		{"ci", "Ivory Coast"},
	}

	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			f := newTestForm()
			fillValid(t, f)
			require.NoError(t, f.Set(FieldCountryCode, tt.code))
			require.NoError(t, f.Set(FieldCountry, tt.country))

			res := v.Validate(f, StepContact)
			assert.True(t, res.Valid, res.Prompt())
		})
	}
}

func TestValidate_UnknownCountryCode(t *testing.T) {
	v := newTestValidator(t, true)
	f := newTestForm()
	fillValid(t, f)
	require.NoError(t, f.Set(FieldCountryCode, "usa"))

	res := v.Validate(f, StepContact)
	assert.False(t, res.Valid)
	assert.Equal(t, FieldCountryCode, res.Field)
}

func TestValidate_NameLengthIgnoresPadding(t *testing.T) {
	v := newTestValidator(t, true)
	f := newTestForm()
	fillValid(t, f)
	require.NoError(t, f.Set(FieldLastName, "  Al  "))

	res := v.Validate(f, StepContact)
	assert.Equal(t, FieldLastName, res.Field)
}

func TestValidate_Email(t *testing.T) {
	v := newTestValidator(t, true)

	tests := []struct {
		email string
		label string
	}{
		{"", "Email"},
		{"   ", "Email"},
		{"user@", "Email Format"},
		{"user@example", "Email Format"},
		{"us er@example.com", "Email Format"},
		{"@example.com", "Email Format"},
		{"user@@example.com", "Email Format"},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			f := newTestForm()
			fillValid(t, f)
			require.NoError(t, f.Set(FieldEmail, tt.email))

			res := v.Validate(f, StepContact)
			assert.False(t, res.Valid)
			assert.Equal(t, FieldEmail, res.Field)
			assert.Equal(t, tt.label, res.Label)
		})
	}
}

func TestValidate_ReportsFirstFailureInOrder(t *testing.T) {
	v := newTestValidator(t, true)
	f := newTestForm()

	res := v.Validate(f, StepContact)
	assert.Equal(t, FieldFirstName, res.Field)

	require.NoError(t, f.Set(FieldFirstName, "Amina"))
	require.NoError(t, f.Set(FieldLastName, "Yusuf"))
	res = v.Validate(f, StepContact)
	assert.Equal(t, FieldEmail, res.Field)
	assert.Equal(t, "is required", res.Message)
}

func TestValidate_Phone(t *testing.T) {
	v := newTestValidator(t, true)
	f := newTestForm()
	fillValid(t, f)

	require.NoError(t, f.Set(FieldPhoneNumber, "call me"))
	assert.Equal(t, FieldPhoneNumber, v.Validate(f, StepContact).Field)

	require.NoError(t, f.Set(FieldPhoneNumber, "1234567890123456"))
	assert.Equal(t, FieldPhoneNumber, v.Validate(f, StepContact).Field)

	require.NoError(t, f.Set(FieldPhoneNumber, "555-0100"))
	assert.True(t, v.Validate(f, StepContact).Valid)
}

func TestValidate_CountrySuggestion(t *testing.T) {
	v := newTestValidator(t, true)
	f := newTestForm()
	fillValid(t, f)
	require.NoError(t, f.Set(FieldCountry, "Untied States"))

	res := v.Validate(f, StepContact)
	assert.Equal(t, FieldCountry, res.Field)
	assert.Contains(t, res.Message, "did you mean United States?")
}

func TestValidate_LearningInterestRequired(t *testing.T) {
	v := newTestValidator(t, true)
	f := newTestForm()
	fillValid(t, f)
	require.NoError(t, f.Set(FieldLearningInterest, ""))

	res := v.Validate(f, StepPreferences)
	assert.False(t, res.Valid)
	assert.Equal(t, FieldLearningInterest, res.Field)
	assert.Equal(t, "Learning Interest", res.Label)
}

func TestValidate_NumberOfStudents(t *testing.T) {
	v := newTestValidator(t, true)
	for _, n := range []string{"0", "6", "two", "-1"} {
		f := newTestForm()
		fillValid(t, f)
		require.NoError(t, f.Set(FieldNumberOfStudents, n))
		assert.Equal(t, FieldNumberOfStudents, v.Validate(f, StepPreferences).Field, n)
	}
}

func TestValidate_OtherDetailsPolicy(t *testing.T) {
	tests := []struct {
		name     string
		required bool
		parent   Field
		detail   Field
		wantOK   bool
	}{
		{"interest required", true, FieldLearningInterest, FieldLearningOther, false},
		{"interest optional", false, FieldLearningInterest, FieldLearningOther, true},
		{"referral required", true, FieldReferralSource, FieldReferralSourceOther, false},
		{"referral optional", false, FieldReferralSource, FieldReferralSourceOther, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestValidator(t, tt.required)
			f := newTestForm()
			fillValid(t, f)
			require.NoError(t, f.Set(tt.parent, OptionOther))

			res := v.Validate(f, StepPreferences)
			assert.Equal(t, tt.wantOK, res.Valid)
			if !tt.wantOK {
				assert.Equal(t, tt.detail, res.Field)
			}

			require.NoError(t, f.Set(tt.detail, "Tajweed"))
			assert.True(t, v.Validate(f, StepPreferences).Valid)
		})
	}
}

func TestValidate_Schedule(t *testing.T) {
	v := newTestValidator(t, true)

	t.Run("past date", func(t *testing.T) {
		f := newTestForm()
		fillValid(t, f)
		require.NoError(t, f.Set(FieldDate, "2026-10-15"))
		res := v.Validate(f, StepSchedule)
		assert.Equal(t, FieldDate, res.Field)
		assert.Equal(t, "cannot be in the past", res.Message)
	})

	t.Run("today", func(t *testing.T) {
		f := newTestForm()
		fillValid(t, f)
		require.NoError(t, f.Set(FieldDate, "2026-10-16"))
		assert.True(t, v.Validate(f, StepSchedule).Valid)
	})

	t.Run("malformed date", func(t *testing.T) {
		f := newTestForm()
		fillValid(t, f)
		require.NoError(t, f.Set(FieldDate, "16/10/2026"))
		assert.Equal(t, FieldDate, v.Validate(f, StepSchedule).Field)
	})

	t.Run("start outside slots", func(t *testing.T) {
		f := newTestForm()
		fillValid(t, f)
		require.NoError(t, f.Set(FieldStartTime, "08:00 PM"))
		res := v.Validate(f, StepSchedule)
		assert.Equal(t, FieldStartTime, res.Field)
	})

	t.Run("short start label", func(t *testing.T) {
		f := newTestForm()
		fillValid(t, f)
		require.NoError(t, f.Set(FieldStartTime, "9:30 am"))
		assert.True(t, v.Validate(f, StepSchedule).Valid)
		assert.Equal(t, "10:00 AM", f.Get(FieldEndTime))
	})
}

func TestValidator_CustomSlots(t *testing.T) {
	v, err := NewValidator(ValidatorOptions{Slots: []string{"11:45 pm"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"11:45 PM"}, v.Slots())

	_, err = NewValidator(ValidatorOptions{Slots: []string{"later"}})
	assert.Error(t, err)
}

func TestResult_Err(t *testing.T) {
	assert.NoError(t, Result{Valid: true}.Err())

	err := Result{Step: StepPreferences, Field: FieldReferralSource, Label: "Referral Source", Message: "is required"}.Err()
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "preferences step: Referral Source is required", err.Error())
}

func TestStepDefinition_Fields(t *testing.T) {
	v := newTestValidator(t, true)
	def, ok := v.Definition(StepContact)
	require.True(t, ok)
	assert.Equal(t, []Field{FieldFirstName, FieldLastName, FieldEmail, FieldCountryCode, FieldPhoneNumber, FieldCountry}, def.Fields())

	_, ok = v.Definition(StepSubmitted)
	assert.False(t, ok)
}

func TestPhoneDigits(t *testing.T) {
	assert.Equal(t, "15550102030", PhoneDigits("+1 (555) 010-2030"))
	assert.Equal(t, "", PhoneDigits("n/a"))
	assert.Equal(t, "21", PhoneDigits("١2٣1"), "only ASCII digits are kept")
}
