// internal/game/model.go
//
// Equation model: the authoritative tree of slots, numbers and operators.
// Responsibilities:
//   - Build the initial Slot, Number, Slot, ..., Slot alternation.
//   - Insert operators into empty slots (the slot node becomes a group in place,
//     so its ID and top-level position survive).
//   - Remove operators and collapse groups that no longer hold any operator.
//   - Apply and revert unary transforms on numbers.
//
// No legality checks happen here; see rules.go.

package game

import "fmt"

// Equation owns the slot trees and numbers of one puzzle.
type Equation struct {
	Numbers []*Number
	Slots   []*Slot // top-level, len(Numbers)+1

	equality *Operator
	nextSlot SlotID
	nextOp   OperatorID
}

// NewEquation lays out the numbers between empty slots and places the
// equality operator in the middle top-level slot.
func NewEquation(numbers []int) (*Equation, error) {
	if len(numbers) == 0 {
		return nil, fmt.Errorf("%w: no numbers", ErrBadDigits)
	}
	e := &Equation{}
	for i, v := range numbers {
		if v < 0 {
			return nil, fmt.Errorf("%w: negative value %d", ErrBadDigits, v)
		}
		e.Numbers = append(e.Numbers, &Number{ID: i, Original: v})
	}
	for i := 0; i <= len(numbers); i++ {
		e.Slots = append(e.Slots, e.newSlot(i, nil))
	}
	e.equality = e.InsertOperator(e.Slots[len(numbers)/2], SymEq)
	return e, nil
}

func (e *Equation) newSlot(pos int, parent *Slot) *Slot {
	s := &Slot{ID: e.nextSlot, Pos: pos, parent: parent}
	e.nextSlot++
	return s
}

// Equality returns the single equality instance.
func (e *Equation) Equality() *Operator { return e.equality }

// InsertOperator turns the target slot into a group hosting a new operator.
func (e *Equation) InsertOperator(target *Slot, sym Symbol) *Operator {
	op := &Operator{ID: e.nextOp, Symbol: sym}
	e.nextOp++
	e.attach(target, op)
	return op
}

// attach hosts op in target. Target must be empty or a hollow group.
func (e *Equation) attach(target *Slot, op *Operator) {
	if target.IsEmpty() {
		target.Left = e.newSlot(NoPosition, target)
		target.Right = e.newSlot(NoPosition, target)
	}
	target.Op = op
	op.host = target
}

// RemoveOperator detaches a binary operator. The equality instance is refused;
// it only moves through relocation.
func (e *Equation) RemoveOperator(op *Operator) error {
	if op == e.equality {
		return ErrEqualityFixed
	}
	if op.host == nil {
		return fmt.Errorf("%w: %d not placed", ErrUnknownOperator, op.ID)
	}
	e.detach(op)
	return nil
}

// detach removes op from its group. A group left without any operator in its
// subtree collapses back to an empty slot, and so does every hollow ancestor
// that ends up empty as a result.
func (e *Equation) detach(op *Operator) {
	g := op.host
	op.host = nil
	if g == nil {
		return
	}
	g.Op = nil
	for s := g; s != nil && s.Op == nil && !s.IsEmpty(); s = s.parent {
		if countOperators(s) > 0 {
			break
		}
		s.Left, s.Right = nil, nil
	}
}

func countOperators(s *Slot) int {
	if s == nil || s.IsEmpty() {
		return 0
	}
	n := countOperators(s.Left) + countOperators(s.Right)
	if s.Op != nil {
		n++
	}
	return n
}

// ApplyUnary wraps the number's value. It is a no-op (false) when the number
// is already transformed or sym is not unary.
func (e *Equation) ApplyUnary(n *Number, sym Symbol) bool {
	if n.Transformed() || sym.Class() != ClassUnary {
		return false
	}
	n.Unary = sym
	return true
}

// Revert restores the original value and reports whether anything changed.
func (e *Equation) Revert(n *Number) bool {
	if !n.Transformed() {
		return false
	}
	n.Unary = ""
	return true
}

// walk visits every reachable slot depth-first, left to right.
func (e *Equation) walk(fn func(*Slot)) {
	var visit func(*Slot)
	visit = func(s *Slot) {
		if s == nil {
			return
		}
		fn(s)
		visit(s.Left)
		visit(s.Right)
	}
	for _, s := range e.Slots {
		visit(s)
	}
}

// SlotByID finds a reachable slot.
func (e *Equation) SlotByID(id SlotID) (*Slot, bool) {
	var found *Slot
	e.walk(func(s *Slot) {
		if s.ID == id {
			found = s
		}
	})
	return found, found != nil
}

// OperatorByID finds a placed operator.
func (e *Equation) OperatorByID(id OperatorID) (*Operator, bool) {
	var found *Operator
	e.walk(func(s *Slot) {
		if s.Op != nil && s.Op.ID == id {
			found = s.Op
		}
	})
	return found, found != nil
}

// NumberByID returns the number at index id.
func (e *Equation) NumberByID(id int) (*Number, bool) {
	if id < 0 || id >= len(e.Numbers) {
		return nil, false
	}
	return e.Numbers[id], true
}

// attached reports whether s is still reachable from a top-level slot.
func (e *Equation) attached(s *Slot) bool {
	for s.parent != nil {
		if s.parent.Left != s && s.parent.Right != s {
			return false
		}
		s = s.parent
	}
	return s.Pos >= 0 && s.Pos < len(e.Slots) && e.Slots[s.Pos] == s
}

// within reports whether s lies in the subtree rooted at root.
func within(root, s *Slot) bool {
	for ; s != nil; s = s.parent {
		if s == root {
			return true
		}
	}
	return false
}
