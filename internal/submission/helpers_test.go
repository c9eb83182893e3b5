package submission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alf-academy/enroll/internal/enrollment"
)

var testNow = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

var est = time.FixedZone("EST", -5*60*60)

func newValidator(t *testing.T, slots ...string) *enrollment.Validator {
	t.Helper()
	v, err := enrollment.NewValidator(enrollment.ValidatorOptions{
		Policy:   enrollment.Policy{OtherDetailsRequired: true},
		Slots:    slots,
		Location: est,
		Now:      func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return v
}

func validForm(t *testing.T) *enrollment.Form {
	t.Helper()
	f := enrollment.NewForm(enrollment.Defaults{
		Country: "United States",
		IntN:    func(int) int { return 2345 },
	})
	require.NoError(t, f.Load(map[enrollment.Field]string{
		enrollment.FieldFirstName:         " Amina ",
		enrollment.FieldLastName:          "Yusuf",
		enrollment.FieldEmail:             "Amina.Yusuf@Example.COM",
		enrollment.FieldPhoneNumber:       "+1 (555) 010-2030",
		enrollment.FieldCountryCode:       "US",
		enrollment.FieldCity:              "<b>Chicago</b>",
		enrollment.FieldLearningInterest:  "Quran",
		enrollment.FieldNumberOfStudents:  "2",
		enrollment.FieldTeacherPreference: "Female",
		enrollment.FieldReferralSource:    "Friend",
		enrollment.FieldDate:              "2026-10-20",
		enrollment.FieldStartTime:         "11:30 AM",
	}))
	return f
}
