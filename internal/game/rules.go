// internal/game/rules.go
//
// Placement rules: which targets accept which operator class, and what a drop
// does to the model.
//
//   unary    → a Number whose value is untouched; applies the transform.
//   binary   → any empty Slot; a placed instance is detached first.
//   equality → any empty Slot outside the group it currently occupies;
//              the single instance is relocated, never deleted.

package game

import "fmt"

// TargetKind distinguishes numbers from slots as drop targets.
type TargetKind string

const (
	TargetSlot   TargetKind = "slot"
	TargetNumber TargetKind = "number"
)

// Target addresses a drop location.
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   int        `json:"id"`
}

// Held is the tile currently picked up. Op is nil for a palette tile.
type Held struct {
	Symbol Symbol
	Op     *Operator
}

// Class of the held tile.
func (h Held) Class() Class { return h.Symbol.Class() }

// Eligible lists the legal drop targets for a tile of the given class.
// It never mutates the model.
func (e *Equation) Eligible(c Class) []Target {
	out := []Target{}
	switch c {
	case ClassUnary:
		for _, n := range e.Numbers {
			if !n.Transformed() {
				out = append(out, Target{Kind: TargetNumber, ID: n.ID})
			}
		}
	case ClassBinary, ClassEquality:
		e.walk(func(s *Slot) {
			if e.acceptsSlot(c, s) {
				out = append(out, Target{Kind: TargetSlot, ID: int(s.ID)})
			}
		})
	}
	return out
}

func (e *Equation) acceptsSlot(c Class, s *Slot) bool {
	if !s.IsEmpty() {
		return false
	}
	if c == ClassEquality && e.equality.host != nil && within(e.equality.host, s) {
		return false
	}
	return true
}

// Drop applies the held tile to the target.
func (e *Equation) Drop(h Held, t Target) error {
	c := h.Class()
	switch c {
	case ClassUnary:
		if t.Kind != TargetNumber {
			return fmt.Errorf("%w: %s needs a number", ErrIllegalTarget, h.Symbol)
		}
		n, ok := e.NumberByID(t.ID)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownNumber, t.ID)
		}
		if !e.ApplyUnary(n, h.Symbol) {
			return fmt.Errorf("%w: number %d already transformed", ErrIllegalTarget, n.ID)
		}
		return nil

	case ClassBinary, ClassEquality:
		if t.Kind != TargetSlot {
			return fmt.Errorf("%w: %s needs a slot", ErrIllegalTarget, h.Symbol)
		}
		s, ok := e.SlotByID(SlotID(t.ID))
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownSlot, t.ID)
		}
		if !e.acceptsSlot(c, s) {
			return fmt.Errorf("%w: slot %d", ErrIllegalTarget, s.ID)
		}
		if h.Op == nil {
			if c == ClassEquality {
				return fmt.Errorf("%w: equality is not a palette tile", ErrUnknownSymbol)
			}
			e.InsertOperator(s, h.Symbol)
			return nil
		}
		e.detach(h.Op)
		// Detaching may have collapsed the group that contained s; the
		// collapsed slot takes its place.
		for !e.attached(s) {
			s = s.parent
		}
		e.attach(s, h.Op)
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownSymbol, h.Symbol)
}
