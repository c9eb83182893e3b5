package enrollment

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// DefaultReferralPrefix is used when Defaults.ReferralPrefix is empty.
const DefaultReferralPrefix = "ALF-REFID"

// Defaults configures a new Form.
type Defaults struct {
	Country        string
	ReferralPrefix string
	// IntN returns a value in [0, n). Tests pin it; nil uses math/rand/v2.
	IntN func(n int) int
}

// Form is the wizard's single source of truth: every field value plus the
// current step. Writes are unconstrained; validation happens at step
// boundaries.
type Form struct {
	defaults Defaults
	values   map[Field]string
	step     Step
}

// NewForm returns a form at StepContact populated with defaults.
func NewForm(d Defaults) *Form {
	if d.ReferralPrefix == "" {
		d.ReferralPrefix = DefaultReferralPrefix
	}
	if d.IntN == nil {
		d.IntN = rand.IntN
	}
	f := &Form{defaults: d}
	f.Reset()
	return f
}

// Reset discards all input and returns the form to its defaults.
func (f *Form) Reset() {
	f.values = make(map[Field]string, len(Fields))
	f.step = StepContact
	f.values[FieldReferralCode] = f.newReferralCode()
	if f.defaults.Country != "" {
		_ = f.Set(FieldCountry, f.defaults.Country)
	}
}

// Step returns the current wizard step.
func (f *Form) Step() Step {
	return f.step
}

// Get returns the raw value of a field.
func (f *Form) Get(field Field) string {
	return f.values[field]
}

// Set writes a field. It fails only for unknown or derived fields; the value
// itself is not checked. Some writes have knock-on effects: the start time
// recomputes the end time, a known country fills an empty phone country
// code, and clearing the referral code generates a fresh one.
func (f *Form) Set(field Field, value string) error {
	if _, err := ParseField(string(field)); err != nil {
		return err
	}

	switch field {
	case FieldEndTime:
		return fmt.Errorf("%s is derived from %s", FieldEndTime, FieldStartTime)

	case FieldStartTime:
		f.values[FieldStartTime] = value
		end, err := EndTime(value)
		if err != nil {
			end = ""
		}
		f.values[FieldEndTime] = end

	case FieldCountry:
		f.values[FieldCountry] = value
		if c, ok := LookupCountry(value); ok && f.values[FieldCountryCode] == "" {
			f.values[FieldCountryCode] = c.Code
		}

	case FieldReferralCode:
		if strings.TrimSpace(value) == "" {
			value = f.newReferralCode()
		}
		f.values[FieldReferralCode] = value

	default:
		f.values[field] = value
	}
	return nil
}

// Values returns a copy of every non-empty field.
func (f *Form) Values() map[Field]string {
	out := make(map[Field]string, len(f.values))
	for k, v := range f.values {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Load writes every entry of values through Set, skipping derived fields.
func (f *Form) Load(values map[Field]string) error {
	for field := range values {
		if _, err := ParseField(string(field)); err != nil {
			return err
		}
	}
	// Fields order puts the phone country code ahead of the country, so an
	// explicit code is never replaced by the country's default.
	for _, field := range Fields {
		v, ok := values[field]
		if !ok || field == FieldEndTime {
			continue
		}
		if err := f.Set(field, v); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an independent copy of the form.
func (f *Form) Clone() *Form {
	c := &Form{
		defaults: f.defaults,
		values:   make(map[Field]string, len(f.values)),
		step:     f.step,
	}
	for k, v := range f.values {
		c.values[k] = v
	}
	return c
}

func (f *Form) newReferralCode() string {
	return fmt.Sprintf("%s-%d", f.defaults.ReferralPrefix, 10000+f.defaults.IntN(90000))
}
