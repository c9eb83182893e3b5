package testfixtures

import (
	"time"

	"github.com/alf-academy/enroll/internal/enrollment"
)

// FixedTime is "now" for every TUI test.
var FixedTime = time.Date(2026, time.October, 16, 10, 30, 0, 0, time.UTC)

// Validator returns a validator pinned to FixedTime in UTC with the
// default slots and mandatory "Other" details.
func Validator() *enrollment.Validator {
	v, err := enrollment.NewValidator(enrollment.ValidatorOptions{
		Policy:   enrollment.Policy{OtherDetailsRequired: true},
		Location: time.UTC,
		Now:      func() time.Time { return FixedTime },
	})
	if err != nil {
		panic(err)
	}
	return v
}

// EmptyForm returns a fresh form with a predictable referral code.
func EmptyForm() *enrollment.Form {
	return enrollment.NewForm(enrollment.Defaults{
		Country: "United States",
		IntN:    func(int) int { return 4242 },
	})
}

// ContactValues fill the contact step.
var ContactValues = map[enrollment.Field]string{
	enrollment.FieldFirstName:   "Amina",
	enrollment.FieldLastName:    "Yusuf",
	enrollment.FieldEmail:       "amina@example.com",
	enrollment.FieldPhoneNumber: "555 010 2030",
	enrollment.FieldCountryCode: "us",
	enrollment.FieldCountry:     "United States",
}

// PreferenceValues fill the preferences step.
var PreferenceValues = map[enrollment.Field]string{
	enrollment.FieldLearningInterest:  "Quran",
	enrollment.FieldNumberOfStudents:  "2",
	enrollment.FieldTeacherPreference: "Female",
	enrollment.FieldReferralSource:    "Friend",
}

// ScheduleValues fill the schedule step.
var ScheduleValues = map[enrollment.Field]string{
	enrollment.FieldDate:      "2026-10-20",
	enrollment.FieldStartTime: "11:30 AM",
}

// FullForm returns a form that passes every step.
func FullForm() *enrollment.Form {
	f := EmptyForm()
	for _, values := range []map[enrollment.Field]string{ContactValues, PreferenceValues, ScheduleValues} {
		if err := f.Load(values); err != nil {
			panic(err)
		}
	}
	return f
}

// ScheduleNavigator returns a navigator on the schedule step with a
// complete form.
func ScheduleNavigator() *enrollment.Navigator {
	nav := enrollment.NewNavigator(FullForm(), Validator())
	if res := nav.Seek(); !res.Valid {
		panic(res.Err())
	}
	return nav
}
