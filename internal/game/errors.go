package game

import "errors"

// Pipeline errors. Each is wrapped with detail via fmt.Errorf("%w: ...").
var (
	ErrStructural = errors.New("structural error")
	ErrEvaluation = errors.New("evaluation error")
	ErrIncomplete = errors.New("no equality placed")
)

// Interaction errors returned by Game entry points.
var (
	ErrNotHolding      = errors.New("no operator held")
	ErrIllegalTarget   = errors.New("illegal drop target")
	ErrUnknownOperator = errors.New("unknown operator")
	ErrUnknownSlot     = errors.New("unknown slot")
	ErrUnknownNumber   = errors.New("unknown number")
	ErrUnknownSymbol   = errors.New("unknown symbol")
	ErrEqualityFixed   = errors.New("equality can only be relocated")
	ErrBadDigits       = errors.New("invalid digits")
)
