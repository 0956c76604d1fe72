// internal/game/types.go
//
// Core type definitions for the equation puzzle engine.
// Defines:
//   - Symbol/Class: operator tiles and the class that decides where they may go.
//   - Number: one puzzle operand with its original digit and optional unary wrap.
//   - Slot: the recursive placement position (empty, or a group hosting an operator).
//   - Operator: a placed operator instance living in exactly one group.

package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Symbol is the face value of an operator tile.
type Symbol string

const (
	SymAdd   Symbol = "+"
	SymSub   Symbol = "-"
	SymMul   Symbol = "×"
	SymDiv   Symbol = "÷"
	SymPow   Symbol = "^"
	SymSqrt  Symbol = "√"
	SymFact  Symbol = "!"
	SymEq    Symbol = "="
	SymOpen  Symbol = "("
	SymClose Symbol = ")"
)

// Palette lists the tiles a player can pull new operators from.
// The equality operator is not a tile: a single instance exists per game.
var Palette = []Symbol{SymAdd, SymSub, SymMul, SymDiv, SymPow, SymSqrt, SymFact}

// Class groups symbols by placement behavior.
type Class int

const (
	ClassNone Class = iota
	ClassUnary
	ClassBinary
	ClassEquality
)

func (c Class) String() string {
	switch c {
	case ClassUnary:
		return "unary"
	case ClassBinary:
		return "binary"
	case ClassEquality:
		return "equality"
	}
	return ""
}

// ParseClass maps "unary" | "binary" | "equality" to a Class.
func ParseClass(s string) (Class, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unary":
		return ClassUnary, nil
	case "binary":
		return ClassBinary, nil
	case "equality":
		return ClassEquality, nil
	}
	return ClassNone, fmt.Errorf("%w: class %q", ErrUnknownSymbol, s)
}

// Class reports the placement class of s, or ClassNone for grouping markers
// and unknown symbols.
func (s Symbol) Class() Class {
	switch s {
	case SymSqrt, SymFact:
		return ClassUnary
	case SymAdd, SymSub, SymMul, SymDiv, SymPow:
		return ClassBinary
	case SymEq:
		return ClassEquality
	}
	return ClassNone
}

// ParseSymbol normalizes user input into a Symbol.
// ASCII aliases are accepted for the symbols that are awkward to type.
func ParseSymbol(s string) (Symbol, error) {
	switch strings.TrimSpace(s) {
	case "+":
		return SymAdd, nil
	case "-", "−":
		return SymSub, nil
	case "×", "*", "x":
		return SymMul, nil
	case "÷", "/":
		return SymDiv, nil
	case "^", "**":
		return SymPow, nil
	case "√", "sqrt":
		return SymSqrt, nil
	case "!":
		return SymFact, nil
	case "=":
		return SymEq, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSymbol, s)
}

// Number is one operand of the puzzle.
type Number struct {
	ID       int
	Original int
	Unary    Symbol // empty while current == original
}

// Transformed reports whether a unary operator is applied.
func (n *Number) Transformed() bool { return n.Unary != "" }

// String renders the current value the way the player sees it.
func (n *Number) String() string {
	v := strconv.Itoa(n.Original)
	switch n.Unary {
	case SymSqrt:
		return "√" + v
	case SymFact:
		return v + "!"
	}
	return v
}

// SlotID addresses a slot for drops; stable for the lifetime of the slot.
type SlotID int

// OperatorID addresses a placed operator instance.
type OperatorID int

// NoPosition marks a nested slot that has no top-level index.
const NoPosition = -1

// Slot is either empty (Left == nil) or a group (Left, Op, Right).
// A group whose operator was removed while descendants still hold operators
// stays in place with Op == nil.
type Slot struct {
	ID    SlotID
	Pos   int
	Op    *Operator
	Left  *Slot
	Right *Slot

	parent *Slot
}

// IsEmpty reports whether the slot can receive an operator.
func (s *Slot) IsEmpty() bool { return s.Left == nil }

// Operator is a placed binary or equality instance.
type Operator struct {
	ID     OperatorID
	Symbol Symbol

	host *Slot // group node holding this operator
}

// Class is shorthand for o.Symbol.Class().
func (o *Operator) Class() Class { return o.Symbol.Class() }
