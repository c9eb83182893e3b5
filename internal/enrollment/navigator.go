package enrollment

import (
	"errors"
	"sync/atomic"
)

var (
	// ErrSubmissionInFlight is returned when a submission is already running.
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	// ErrNotFinalStep is returned when submitting before the schedule step.
	ErrNotFinalStep = errors.New("submit is only available on the schedule step")
)

// Navigator moves a Form through Contact → Preferences → Schedule →
// Submitted. Forward moves are gated by the Validator; backward moves never
// are. The schedule step's forward action is a submission, bracketed by
// BeginSubmit and EndSubmit.
type Navigator struct {
	form      *Form
	validator *Validator
	inFlight  atomic.Bool
}

// NewNavigator wraps form, starting wherever the form's step is.
func NewNavigator(form *Form, validator *Validator) *Navigator {
	return &Navigator{form: form, validator: validator}
}

// Form returns the live form.
func (n *Navigator) Form() *Form {
	return n.form
}

// Validator returns the validator gating forward moves.
func (n *Navigator) Validator() *Validator {
	return n.validator
}

// Step returns the current step.
func (n *Navigator) Step() Step {
	return n.form.step
}

// Next validates the current step and advances on success. On the schedule
// step it only validates: the forward action there is a submission.
func (n *Navigator) Next() Result {
	step := n.form.step
	res := n.validator.Validate(n.form, step)
	if !res.Valid {
		return res
	}
	if step == StepContact || step == StepPreferences {
		n.form.step = step + 1
	}
	return res
}

// Back moves to the previous step without validation. It reports false on
// the first step and after submission. A running submission does not block
// it.
func (n *Navigator) Back() bool {
	if n.form.step <= StepContact || n.form.step >= StepSubmitted {
		return false
	}
	n.form.step--
	return true
}

// InFlight reports whether a submission is running; the submit control is
// disabled while it is.
func (n *Navigator) InFlight() bool {
	return n.inFlight.Load()
}

// BeginSubmit claims the single submission slot and returns a snapshot of
// the form for the sender, so edits made while the request is running do
// not race with it. All three steps are re-validated first.
func (n *Navigator) BeginSubmit() (*Form, error) {
	if n.form.step != StepSchedule {
		return nil, ErrNotFinalStep
	}
	if !n.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	if res := n.validator.ValidateAll(n.form); !res.Valid {
		n.inFlight.Store(false)
		return nil, res.Err()
	}
	return n.form.Clone(), nil
}

// EndSubmit releases the submission slot. A nil err clears the form and
// moves to StepSubmitted; any error leaves the form untouched so the user
// can correct it and retry.
func (n *Navigator) EndSubmit(err error) {
	defer n.inFlight.Store(false)
	if err != nil {
		return
	}
	n.form.Reset()
	n.form.step = StepSubmitted
}

// Restart returns a submitted wizard to the first step with a fresh form.
func (n *Navigator) Restart() {
	if n.inFlight.Load() {
		return
	}
	n.form.Reset()
}

// Seek moves forward through every step that validates and stops at the
// schedule step or on the first failure, which it returns.
func (n *Navigator) Seek() Result {
	for {
		step := n.form.step
		res := n.Next()
		if !res.Valid || n.form.step == step {
			return res
		}
	}
}
