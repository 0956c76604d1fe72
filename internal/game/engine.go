// internal/game/engine.go
//
// Game: one player's puzzle session and the four interaction entry points.
// Responsibilities:
//   - Create games over given (or freshly drawn) digits.
//   - Track the Idle/Holding pick-up state.
//   - Apply pick-up, drop, tap-remove and tap-revert; every accepted mutation
//     re-runs the full evaluation pipeline before returning.
//   - Serialize all access with one mutex (single writer per game).
//
// Notes:
//   - Digits come from the digits package when none are supplied.
//   - IDs are UUIDv4 strings used to correlate server state.
package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/equate/internal/digits"
)

// Game holds the state of a single puzzle session.
type Game struct {
	ID        string
	Digits    []int
	CreatedAt time.Time

	mu       sync.Mutex
	eq       *Equation
	held     *Held
	outcome  Outcome
	moves    int
	solvedAt time.Time
	claimed  bool
}

// New constructs a game. If withDigits is empty, random digits are drawn.
func New(withDigits []int) (*Game, error) {
	ds := withDigits
	if len(ds) == 0 {
		ds = digits.Default(digits.DefaultCount)
	}
	eq, err := NewEquation(ds)
	if err != nil {
		return nil, err
	}
	g := &Game{
		ID:        uuid.NewString(),
		Digits:    append([]int(nil), ds...),
		CreatedAt: time.Now().UTC(),
		eq:        eq,
	}
	g.evaluate()
	return g, nil
}

// evaluate re-runs the pipeline. Caller holds g.mu (or owns g exclusively).
func (g *Game) evaluate() Outcome {
	g.outcome = Report(g.eq)
	if g.outcome.State == StateSuccess && g.solvedAt.IsZero() {
		g.solvedAt = time.Now().UTC()
	}
	return g.outcome
}

// PickUpSymbol takes a fresh tile from the palette.
func (g *Game) PickUpSymbol(sym Symbol) (Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if sym.Class() == ClassNone || sym.Class() == ClassEquality {
		return g.outcome, fmt.Errorf("%w: %q is not a palette tile", ErrUnknownSymbol, sym)
	}
	g.held = &Held{Symbol: sym}
	return g.outcome, nil
}

// PickUp takes hold of an operator already placed in the equation.
func (g *Game) PickUp(id OperatorID) (Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	op, ok := g.eq.OperatorByID(id)
	if !ok {
		return g.outcome, fmt.Errorf("%w: %d", ErrUnknownOperator, id)
	}
	g.held = &Held{Symbol: op.Symbol, Op: op}
	return g.outcome, nil
}

// Cancel releases the held tile without changing the model.
func (g *Game) Cancel() Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.held = nil
	return g.outcome
}

// Drop releases the held tile onto target. The hold ends whether or not the
// drop was legal.
func (g *Game) Drop(t Target) (Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held == nil {
		return g.outcome, ErrNotHolding
	}
	h := *g.held
	g.held = nil
	if err := g.eq.Drop(h, t); err != nil {
		return g.outcome, err
	}
	g.moves++
	return g.evaluate(), nil
}

// Remove deletes a placed binary operator. The equality operator stays put.
func (g *Game) Remove(id OperatorID) (Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	op, ok := g.eq.OperatorByID(id)
	if !ok {
		return g.outcome, fmt.Errorf("%w: %d", ErrUnknownOperator, id)
	}
	if err := g.eq.RemoveOperator(op); err != nil {
		return g.outcome, err
	}
	if g.held != nil && g.held.Op == op {
		g.held = nil
	}
	g.moves++
	return g.evaluate(), nil
}

// Revert drops the unary transform from a number, if any.
func (g *Game) Revert(numberID int) (Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.eq.NumberByID(numberID)
	if !ok {
		return g.outcome, fmt.Errorf("%w: %d", ErrUnknownNumber, numberID)
	}
	if !g.eq.Revert(n) {
		return g.outcome, nil
	}
	g.moves++
	return g.evaluate(), nil
}

// Outcome returns the verdict of the last evaluation.
func (g *Game) Outcome() Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.outcome
}

// Holding reports the class of the held tile, ClassNone when idle.
func (g *Game) Holding() Class {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held == nil {
		return ClassNone
	}
	return g.held.Class()
}

// Eligibility lists legal drop targets for a class without touching the model.
func (g *Game) Eligibility(c Class) []Target {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.eq.Eligible(c)
}

// Tokens returns the current flattened equation.
func (g *Game) Tokens() []Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	toks, _ := Flatten(g.eq)
	return toks
}

// Moves counts accepted mutations.
func (g *Game) Moves() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.moves
}

// Solve describes the first time a game reached Success.
type Solve struct {
	Moves     int
	Elapsed   time.Duration
	Statement string
}

// ClaimSolve returns the solve details exactly once, after the game has first
// reached Success. Later calls report false.
func (g *Game) ClaimSolve() (Solve, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.claimed || g.solvedAt.IsZero() {
		return Solve{}, false
	}
	g.claimed = true
	toks, _ := Flatten(g.eq)
	return Solve{
		Moves:     g.moves,
		Elapsed:   g.solvedAt.Sub(g.CreatedAt),
		Statement: JoinTokens(toks),
	}, true
}
