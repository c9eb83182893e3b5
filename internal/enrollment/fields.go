// Package enrollment holds the registration wizard's state, the per-step
// validation table and the navigator that moves between steps.
package enrollment

import "fmt"

// Field names a form field. Values match the payload keys where one exists.
type Field string

const (
	FieldFirstName           Field = "firstName"
	FieldLastName            Field = "lastName"
	FieldEmail               Field = "email"
	FieldPhoneNumber         Field = "phoneNumber"
	FieldCountryCode         Field = "countryCode"
	FieldCountry             Field = "country"
	FieldCity                Field = "city"
	FieldReferralCode        Field = "referralCode"
	FieldLearningInterest    Field = "learningInterest"
	FieldLearningOther       Field = "learningInterestOther"
	FieldNumberOfStudents    Field = "numberOfStudents"
	FieldTeacherPreference   Field = "teacherPreference"
	FieldReferralSource      Field = "referralSource"
	FieldReferralSourceOther Field = "referralSourceOther"
	FieldDate                Field = "date"
	FieldStartTime           Field = "startTime"
	FieldEndTime             Field = "endTime"
)

// Fields lists every field in wizard order.
var Fields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPhoneNumber,
	FieldCountryCode,
	FieldCountry,
	FieldCity,
	FieldReferralCode,
	FieldLearningInterest,
	FieldLearningOther,
	FieldNumberOfStudents,
	FieldTeacherPreference,
	FieldReferralSource,
	FieldReferralSourceOther,
	FieldDate,
	FieldStartTime,
	FieldEndTime,
}

// ParseField resolves a field name.
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field %q", name)
}

// Step is a wizard position.
type Step int

const (
	StepContact Step = iota + 1
	StepPreferences
	StepSchedule
	StepSubmitted
)

// Steps lists the steps that carry input, in order.
var Steps = []Step{StepContact, StepPreferences, StepSchedule}

func (s Step) String() string {
	switch s {
	case StepContact:
		return "Contact"
	case StepPreferences:
		return "Preferences"
	case StepSchedule:
		return "Schedule"
	case StepSubmitted:
		return "Submitted"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// Progress returns the completion percentage shown above the wizard.
func (s Step) Progress() int {
	if s >= StepSubmitted {
		return 100
	}
	if s < StepContact {
		return 0
	}
	return int(s) * 100 / len(Steps)
}
