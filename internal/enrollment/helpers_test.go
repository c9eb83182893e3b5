package enrollment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.October, 16, 15, 4, 0, 0, time.UTC)

func fixedIntN(v int) func(int) int {
	return func(int) int { return v }
}

func newTestForm() *Form {
	return NewForm(Defaults{Country: "United States", IntN: fixedIntN(2345)})
}

func newTestValidator(t *testing.T, required bool) *Validator {
	t.Helper()
	v, err := NewValidator(ValidatorOptions{
		Policy:   Policy{OtherDetailsRequired: required},
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return v
}

// fillValid populates every step with acceptable values.
func fillValid(t *testing.T, f *Form) {
	t.Helper()
	values := map[Field]string{
		FieldFirstName:         "Amina",
		FieldLastName:          "Yusuf",
		FieldEmail:             "Amina.Yusuf@Example.com ",
		FieldPhoneNumber:       "+1 (555) 010-2030",
		FieldCountryCode:       "us",
		FieldCountry:           "United States",
		FieldCity:              "Chicago",
		FieldLearningInterest:  "Quran",
		FieldNumberOfStudents:  "2",
		FieldTeacherPreference: "Female",
		FieldReferralSource:    "Friend",
		FieldDate:              "2026-10-20",
		FieldStartTime:         "11:30 AM",
	}
	require.NoError(t, f.Load(values))
}
