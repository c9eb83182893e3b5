package enrollment

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/samber/lo"
)

// OptionOther is the choice that asks for free-text details.
const OptionOther = "Other"

var (
	LearningInterests  = []string{"Quran", "Islamic Studies", "Arabic", OptionOther}
	TeacherPreferences = []string{"Male", "Female", "Either"}
	ReferralSources    = []string{"Friend", "Social Media", "E-Mail", "Google", OptionOther}
	StudentCounts      = []string{"1", "2", "3", "4", "5"}
)

// Country is an entry of the ISO 3166-1 country table.
type Country struct {
	Code string `json:"code"` // ISO 3166-1 alpha-2, lower case
	Name string `json:"name"`
}

// countryAliases maps other common spellings to a table name.
var countryAliases = map[string]string{
	"usa":                      "United States",
	"united states of america": "United States",
	"uk":                       "United Kingdom",
	"great britain":            "United Kingdom",
	"russian federation":       "Russia",
	"ivory coast":              "Côte d'Ivoire",
	"cote d'ivoire":            "Côte d'Ivoire",
	"czech republic":           "Czechia",
	"türkiye":                  "Turkey",
	"turkiye":                  "Turkey",
	"vatican city":             "Holy See",
	"swaziland":                "Eswatini",
	"burma":                    "Myanmar",
	"cape verde":               "Cabo Verde",
	"east timor":               "Timor-Leste",
	"macedonia":                "North Macedonia",
	"republic of korea":        "South Korea",
	"korea":                    "South Korea",
	"drc":                      "Congo (Democratic Republic)",
	"state of palestine":       "Palestine",
	"viet nam":                 "Vietnam",
}

// Countries returns a copy of the country table sorted by name.
func Countries() []Country {
	out := make([]Country, len(countries))
	copy(out, countries)
	return out
}

// CountryNames returns the display names of all known countries.
func CountryNames() []string {
	return lo.Map(countries, func(c Country, _ int) string { return c.Name })
}

// LookupCountry finds a country by name, common alias or ISO code,
// ignoring case.
func LookupCountry(s string) (Country, bool) {
	s = strings.TrimSpace(s)
	if name, ok := countryAliases[strings.ToLower(s)]; ok {
		s = name
	}
	return lo.Find(countries, func(c Country) bool {
		return strings.EqualFold(c.Name, s) || strings.EqualFold(c.Code, s)
	})
}

// LookupCountryCode finds a country by its ISO 3166-1 alpha-2 code,
// ignoring case.
func LookupCountryCode(code string) (Country, bool) {
	code = strings.TrimSpace(code)
	return lo.Find(countries, func(c Country) bool {
		return strings.EqualFold(c.Code, code)
	})
}

// SuggestCountry returns the known country closest to s by edit distance, or
// "" when nothing is close enough to be a plausible typo.
func SuggestCountry(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	best, bestDist := "", -1
	for _, c := range countries {
		d := levenshtein.ComputeDistance(s, strings.ToLower(c.Name))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c.Name, d
		}
	}

	limit := len(s) / 3
	if limit < 2 {
		limit = 2
	}
	if bestDist > limit {
		return ""
	}
	return best
}

// IsOption reports whether v is one of options.
func IsOption(options []string, v string) bool {
	return lo.Contains(options, v)
}

// OptionsFor returns the fixed choices of an enumerated field, or nil for
// free-form fields.
func OptionsFor(f Field) []string {
	switch f {
	case FieldLearningInterest:
		return LearningInterests
	case FieldTeacherPreference:
		return TeacherPreferences
	case FieldReferralSource:
		return ReferralSources
	case FieldNumberOfStudents:
		return StudentCounts
	case FieldCountry:
		return CountryNames()
	default:
		return nil
	}
}
