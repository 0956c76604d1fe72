package game

import (
	"errors"
	"math"
)

// State is the observable verdict on the current arrangement.
type State string

const (
	StateSuccess           State = "success"
	StateSilentMismatch    State = "silent_mismatch"
	StateInvalidExpression State = "invalid_expression"
)

// Tolerance absorbs floating-point error when comparing both sides.
const Tolerance = 1e-9

const (
	msgSuccess = "Success!"
	msgInvalid = "Invalid expression!"
)

// Outcome is what the presentation layer renders after every interaction.
type Outcome struct {
	State   State    `json:"state"`
	Message string   `json:"message"`
	Left    *float64 `json:"left,omitempty"`
	Right   *float64 `json:"right,omitempty"`
	Err     error    `json:"-"`
}

// Report runs flatten → split → evaluate → compare over the model.
func Report(e *Equation) Outcome {
	toks, err := Flatten(e)
	if err != nil {
		return invalid(err)
	}
	left, right, err := Split(toks)
	if errors.Is(err, ErrIncomplete) {
		return Outcome{State: StateSilentMismatch, Err: err}
	}
	if err != nil {
		return invalid(err)
	}
	l, err := Evaluate(left)
	if err != nil {
		return invalid(err)
	}
	r, err := Evaluate(right)
	if err != nil {
		return invalid(err)
	}
	out := Outcome{Left: &l, Right: &r}
	if math.Abs(l-r) < Tolerance {
		out.State, out.Message = StateSuccess, msgSuccess
	} else {
		out.State = StateSilentMismatch
	}
	return out
}

func invalid(err error) Outcome {
	return Outcome{State: StateInvalidExpression, Message: msgInvalid, Err: err}
}
