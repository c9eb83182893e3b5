package submission

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/alf-academy/enroll/internal/enrollment"
)

// isoMillis is the timestamp layout the student API stores.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Fixed values for fields the client does not choose.
const (
	EvaluationPending = "PENDING"
	StatusActive      = "Active"
	SystemUser        = "SYSTEM"
)

var sanitizer = bluemonday.StrictPolicy()

// Payload is the JSON body of POST /student.
type Payload struct {
	ID                      string `json:"id"`
	FirstName               string `json:"firstName"`
	LastName                string `json:"lastName"`
	Email                   string `json:"email"`
	PhoneNumber             int64  `json:"phoneNumber"`
	Country                 string `json:"country"`
	CountryCode             string `json:"countryCode"`
	City                    string `json:"city"`
	LearningInterest        string `json:"learningInterest"`
	LearningInterestDetails string `json:"learningInterestDetails,omitempty"`
	NumberOfStudents        int    `json:"numberOfStudents"`
	PreferredTeacher        string `json:"preferredTeacher"`
	PreferredFromTime       string `json:"preferredFromTime"`
	PreferredToTime         string `json:"preferredToTime"`
	ReferralSource          string `json:"referralSource"`
	ReferralDetails         string `json:"referralDetails"`
	StartDate               string `json:"startDate"`
	EndDate                 string `json:"endDate"`
	EvaluationStatus        string `json:"evaluationStatus"`
	// The student API spells this key without the second "e".
	ReferenceID   string `json:"refernceId"`
	Status        string `json:"status"`
	CreatedBy     string `json:"createdBy"`
	LastUpdatedBy string `json:"lastUpdatedBy"`
	TimeZone      string `json:"timeZone"`
}

// BuildPayload converts a validated form into the wire payload. The date and
// slot are interpreted in loc and sent as UTC; zone is reported verbatim.
func BuildPayload(f *enrollment.Form, id string, loc *time.Location, zone string) (*Payload, error) {
	if loc == nil {
		loc = time.UTC
	}

	phone, err := strconv.ParseInt(enrollment.PhoneDigits(f.Get(enrollment.FieldPhoneNumber)), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("phone number: %w", err)
	}
	students, err := strconv.Atoi(strings.TrimSpace(f.Get(enrollment.FieldNumberOfStudents)))
	if err != nil {
		return nil, fmt.Errorf("number of students: %w", err)
	}

	start := f.Get(enrollment.FieldStartTime)
	from, to, err := enrollment.Window(f.Get(enrollment.FieldDate), start, loc)
	if err != nil {
		return nil, fmt.Errorf("trial window: %w", err)
	}
	startSlot, err := enrollment.ParseSlot(start)
	if err != nil {
		return nil, fmt.Errorf("start time: %w", err)
	}
	fromLabel := enrollment.FormatSlot(startSlot)
	toLabel, err := enrollment.EndTime(fromLabel)
	if err != nil {
		return nil, fmt.Errorf("end time: %w", err)
	}

	referralCode := strings.TrimSpace(f.Get(enrollment.FieldReferralCode))
	referralDetails := clean(f.Get(enrollment.FieldReferralSourceOther))
	if referralDetails == "" {
		referralDetails = referralCode
	}

	var interestDetails string
	if f.Get(enrollment.FieldLearningInterest) == enrollment.OptionOther {
		interestDetails = clean(f.Get(enrollment.FieldLearningOther))
	}

	return &Payload{
		ID:                      id,
		FirstName:               strings.TrimSpace(f.Get(enrollment.FieldFirstName)),
		LastName:                strings.TrimSpace(f.Get(enrollment.FieldLastName)),
		Email:                   strings.ToLower(strings.TrimSpace(f.Get(enrollment.FieldEmail))),
		PhoneNumber:             phone,
		Country:                 strings.TrimSpace(f.Get(enrollment.FieldCountry)),
		CountryCode:             strings.ToLower(strings.TrimSpace(f.Get(enrollment.FieldCountryCode))),
		City:                    clean(f.Get(enrollment.FieldCity)),
		LearningInterest:        f.Get(enrollment.FieldLearningInterest),
		LearningInterestDetails: interestDetails,
		NumberOfStudents:        students,
		PreferredTeacher:        f.Get(enrollment.FieldTeacherPreference),
		PreferredFromTime:       fromLabel,
		PreferredToTime:         toLabel,
		ReferralSource:          f.Get(enrollment.FieldReferralSource),
		ReferralDetails:         referralDetails,
		StartDate:               from.UTC().Format(isoMillis),
		EndDate:                 to.UTC().Format(isoMillis),
		EvaluationStatus:        EvaluationPending,
		ReferenceID:             referralCode,
		Status:                  StatusActive,
		CreatedBy:               SystemUser,
		LastUpdatedBy:           SystemUser,
		TimeZone:                zone,
	}, nil
}

// clean strips markup from free text. The sanitizer HTML-escapes what it
// keeps, which is undone since the result travels as JSON, not HTML.
func clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(sanitizer.Sanitize(strings.TrimSpace(s))))
}
