package template

import (
	"fmt"
	"os"
	"strings"

	"github.com/alf-academy/enroll/internal/enrollment"
	"github.com/alf-academy/enroll/internal/logger"
)

// Variables holds the data to be injected into template placeholders.
type Variables struct {
	FirstName string // Trimmed first name
	LastName  string // Trimmed last name
	Email     string // Normalized (lower case) email
	Date      string // Trial date, YYYY-MM-DD
	StartTime string // Trial start slot
	EndTime   string // Derived end time
	Interest  string // Learning interest, or its details when "Other"
	Students  string // Number of students
	Teacher   string // Teacher preference
	Reference string // Referral code
	StudentID string // Id returned by the API (empty if none)
}

// Render replaces {{variable}} placeholders in template with actual values.
// Supports the following variables:
// - {{first_name}}, {{last_name}}, {{email}}
// - {{date}}, {{start_time}}, {{end_time}}
// - {{interest}}, {{students}}, {{teacher}}
// - {{reference}} - Referral code
// - {{student_id}} - Id assigned by the API (empty if none)
// - {{student_id_line}} - A "Student ID" list item, or nothing
func Render(template string, vars Variables) string {
	idLine := ""
	if vars.StudentID != "" {
		idLine = fmt.Sprintf("- **Student ID:** `%s`\n", vars.StudentID)
	}

	replacements := map[string]string{
		"{{first_name}}":      vars.FirstName,
		"{{last_name}}":       vars.LastName,
		"{{email}}":           vars.Email,
		"{{date}}":            vars.Date,
		"{{start_time}}":      vars.StartTime,
		"{{end_time}}":        vars.EndTime,
		"{{interest}}":        vars.Interest,
		"{{students}}":        vars.Students,
		"{{teacher}}":         vars.Teacher,
		"{{reference}}":       vars.Reference,
		"{{student_id}}":      vars.StudentID,
		"{{student_id_line}}": idLine,
	}

	result := template
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// VariablesFor collects the placeholders for an accepted form.
func VariablesFor(f *enrollment.Form, studentID string) Variables {
	interest := f.Get(enrollment.FieldLearningInterest)
	if d := strings.TrimSpace(f.Get(enrollment.FieldLearningOther)); interest == enrollment.OptionOther && d != "" {
		interest = d
	}
	return Variables{
		FirstName: strings.TrimSpace(f.Get(enrollment.FieldFirstName)),
		LastName:  strings.TrimSpace(f.Get(enrollment.FieldLastName)),
		Email:     strings.ToLower(strings.TrimSpace(f.Get(enrollment.FieldEmail))),
		Date:      f.Get(enrollment.FieldDate),
		StartTime: f.Get(enrollment.FieldStartTime),
		EndTime:   f.Get(enrollment.FieldEndTime),
		Interest:  interest,
		Students:  f.Get(enrollment.FieldNumberOfStudents),
		Teacher:   f.Get(enrollment.FieldTeacherPreference),
		Reference: f.Get(enrollment.FieldReferralCode),
		StudentID: studentID,
	}
}

// LoadFromFile loads a template from a file.
// If the file doesn't exist or can't be read, returns an error.
func LoadFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template file %s: %w", path, err)
	}
	return string(data), nil
}

// GetTemplate returns the template content.
// If customPath is non-empty, loads from that file.
// Otherwise returns the default embedded template.
func GetTemplate(customPath string) (string, error) {
	if customPath == "" {
		return DefaultConfirmation, nil
	}
	logger.Debug("Loading confirmation template: %s", customPath)
	return LoadFromFile(customPath)
}
