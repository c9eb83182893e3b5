package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alf-academy/enroll/internal/enrollment"
)

var optionsFlags struct {
	json bool
}

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Show the accepted values for choice fields",
	RunE:  runOptions,
}

func init() {
	optionsCmd.Flags().BoolVar(&optionsFlags.json, "json", false, "Print as JSON")
}

// optionSet is the listing printed by the options command.
type optionSet struct {
	LearningInterests  []string `json:"learningInterests"`
	NumberOfStudents   []string `json:"numberOfStudents"`
	TeacherPreferences []string `json:"teacherPreferences"`
	ReferralSources    []string `json:"referralSources"`
	TimeSlots          []string `json:"timeSlots"`
	Countries          []string `json:"countries"`
}

func currentOptions(v *enrollment.Validator) optionSet {
	all := enrollment.Countries()
	countries := make([]string, 0, len(all))
	for _, c := range all {
		countries = append(countries, fmt.Sprintf("%s (%s)", c.Name, c.Code))
	}
	return optionSet{
		LearningInterests:  enrollment.LearningInterests,
		NumberOfStudents:   enrollment.StudentCounts,
		TeacherPreferences: enrollment.TeacherPreferences,
		ReferralSources:    enrollment.ReferralSources,
		TimeSlots:          v.Slots(),
		Countries:          countries,
	}
}

func runOptions(cmd *cobra.Command, args []string) error {
	v, err := newValidator(cfg)
	if err != nil {
		return err
	}
	set := currentOptions(v)
	out := cmd.OutOrStdout()

	if optionsFlags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(set)
	}

	for _, group := range []struct {
		title  string
		values []string
	}{
		{"Learning interest", set.LearningInterests},
		{"Number of students", set.NumberOfStudents},
		{"Teacher preference", set.TeacherPreferences},
		{"Referral source", set.ReferralSources},
		{"Time slots", set.TimeSlots},
		{"Countries", set.Countries},
	} {
		fmt.Fprintf(out, "%s:\n  %s\n\n", group.title, strings.Join(group.values, ", "))
	}
	return nil
}
