package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGame(t *testing.T, ds ...int) *Game {
	t.Helper()
	g, err := New(ds)
	require.NoError(t, err)
	return g
}

// place drops a palette tile into the top-level slot at pos.
func place(t *testing.T, g *Game, sym Symbol, pos int) Outcome {
	t.Helper()
	_, err := g.PickUpSymbol(sym)
	require.NoError(t, err)
	out, err := g.Drop(slotTarget(g.eq.Slots[pos]))
	require.NoError(t, err)
	return out
}

func moveEquality(t *testing.T, g *Game, pos int) Outcome {
	t.Helper()
	_, err := g.PickUp(g.eq.Equality().ID)
	require.NoError(t, err)
	out, err := g.Drop(slotTarget(g.eq.Slots[pos]))
	require.NoError(t, err)
	return out
}

func topLevelCount(g *Game) int { return len(g.Snapshot().Slots) }

func TestNew_RandomDigitsWhenNoneGiven(t *testing.T) {
	g := mustGame(t)
	assert.Len(t, g.Digits, 4)
	for _, d := range g.Digits {
		assert.GreaterOrEqual(t, d, 1)
		assert.LessOrEqual(t, d, 9)
	}
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, 5, topLevelCount(g))
}

func TestScenario_ProductBeforeSumMismatch(t *testing.T) {
	g := mustGame(t, 1, 2, 3, 4)

	moveEquality(t, g, 3)
	place(t, g, SymAdd, 1)
	out := place(t, g, SymMul, 2)

	assert.Equal(t, []string{"1", "+", "2", "×", "3", "=", "4"}, TokenStrings(g.Tokens()))
	assert.Equal(t, StateSilentMismatch, out.State)
	assert.Empty(t, out.Message)
	require.NotNil(t, out.Left)
	require.NotNil(t, out.Right)
	assert.InDelta(t, 7, *out.Left, Tolerance)
	assert.InDelta(t, 4, *out.Right, Tolerance)
}

func TestScenario_SquareRootSuccess(t *testing.T) {
	g := mustGame(t, 4, 3, 2, 1)

	_, err := g.PickUpSymbol(SymSqrt)
	require.NoError(t, err)
	_, err = g.Drop(numberTarget(0))
	require.NoError(t, err)

	moveEquality(t, g, 1)
	place(t, g, SymSub, 2)
	out := place(t, g, SymAdd, 3)

	assert.Equal(t, "√4=3-2+1", JoinTokens(g.Tokens()))
	assert.Equal(t, StateSuccess, out.State)
	assert.Equal(t, "Success!", out.Message)
}

func TestScenario_SignAfterOperatorSuccess(t *testing.T) {
	g := mustGame(t, 4, 2, 2, 1)
	moveEquality(t, g, 2)
	place(t, g, SymDiv, 1)

	drop := func(sym Symbol, s *Slot) Outcome {
		t.Helper()
		_, err := g.PickUpSymbol(sym)
		require.NoError(t, err)
		out, err := g.Drop(slotTarget(s))
		require.NoError(t, err)
		return out
	}
	drop(SymSub, g.eq.Slots[1].Right)
	drop(SymSub, g.eq.Slots[2].Right)
	out := place(t, g, SymMul, 3)

	assert.Equal(t, "4÷-2=-2×1", JoinTokens(g.Tokens()))
	assert.Equal(t, StateSuccess, out.State, out.Err)
	require.NotNil(t, out.Left)
	assert.InDelta(t, -2, *out.Left, Tolerance)
}

func TestScenario_FactorialOutOfRange(t *testing.T) {
	g := mustGame(t, 21, 1, 2, 3)

	_, err := g.PickUpSymbol(SymFact)
	require.NoError(t, err)
	out, err := g.Drop(numberTarget(0))
	require.NoError(t, err)

	assert.Equal(t, StateInvalidExpression, out.State)
	assert.Equal(t, "Invalid expression!", out.Message)
	assert.True(t, errors.Is(out.Err, ErrEvaluation))
	assert.Nil(t, out.Left)
}

func TestScenario_NoEqualityIsSilent(t *testing.T) {
	g := mustGame(t, 1, 2, 3, 4)
	g.eq.detach(g.eq.Equality())

	out := Report(g.eq)
	assert.Equal(t, StateSilentMismatch, out.State)
	assert.Empty(t, out.Message)
	assert.ErrorIs(t, out.Err, ErrIncomplete)
}

func TestRemove_EqualityIsNoop(t *testing.T) {
	g := mustGame(t, 2, 2)
	before := g.Snapshot()

	out, err := g.Remove(g.eq.Equality().ID)
	assert.ErrorIs(t, err, ErrEqualityFixed)
	assert.Equal(t, before.Outcome, out)
	assert.Equal(t, before, g.Snapshot())
}

func TestRemove_BinaryReevaluates(t *testing.T) {
	g := mustGame(t, 2, 2, 4)
	moveEquality(t, g, 2)
	place(t, g, SymAdd, 1)
	require.Equal(t, StateSuccess, g.Outcome().State, "2+2=4")

	op := g.eq.Slots[1].Op
	out, err := g.Remove(op.ID)
	require.NoError(t, err)
	assert.Equal(t, StateSilentMismatch, out.State, "22=4")
	assert.Equal(t, 4, topLevelCount(g))

	_, err = g.Remove(op.ID)
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

func TestUnaryTwice_LeavesNumberUnchanged(t *testing.T) {
	g := mustGame(t, 9, 3)

	_, _ = g.PickUpSymbol(SymSqrt)
	first, err := g.Drop(numberTarget(0))
	require.NoError(t, err)
	require.Equal(t, StateSuccess, first.State, "√9=3")

	_, _ = g.PickUpSymbol(SymFact)
	second, err := g.Drop(numberTarget(0))
	assert.ErrorIs(t, err, ErrIllegalTarget)
	assert.Equal(t, first, second)
	assert.Equal(t, "√9", g.Snapshot().Numbers[0].Display)
}

func TestRevertThenApply_MatchesSingleApply(t *testing.T) {
	g := mustGame(t, 9, 3)
	_, _ = g.PickUpSymbol(SymSqrt)
	_, err := g.Drop(numberTarget(0))
	require.NoError(t, err)
	applied := g.Snapshot()

	out, err := g.Revert(0)
	require.NoError(t, err)
	assert.Equal(t, StateSilentMismatch, out.State)

	_, _ = g.PickUpSymbol(SymSqrt)
	_, err = g.Drop(numberTarget(0))
	require.NoError(t, err)

	again := g.Snapshot()
	assert.Equal(t, applied.Numbers, again.Numbers)
	assert.Equal(t, applied.Slots, again.Slots)
	assert.Equal(t, applied.Outcome, again.Outcome)
}

func TestRevert_UnknownAndUnchanged(t *testing.T) {
	g := mustGame(t, 1, 1)
	_, err := g.Revert(5)
	assert.ErrorIs(t, err, ErrUnknownNumber)

	_, err = g.Revert(0)
	assert.NoError(t, err)
	assert.Equal(t, 0, g.Moves())
}

func TestHoldingLifecycle(t *testing.T) {
	g := mustGame(t, 1, 2, 3, 4)
	assert.Equal(t, ClassNone, g.Holding())

	_, err := g.Drop(slotTarget(g.eq.Slots[0]))
	assert.ErrorIs(t, err, ErrNotHolding)

	_, err = g.PickUpSymbol(SymEq)
	assert.ErrorIs(t, err, ErrUnknownSymbol)
	_, err = g.PickUpSymbol(SymOpen)
	assert.ErrorIs(t, err, ErrUnknownSymbol)

	_, err = g.PickUpSymbol(SymPow)
	require.NoError(t, err)
	assert.Equal(t, ClassBinary, g.Holding())
	g.Cancel()
	assert.Equal(t, ClassNone, g.Holding())

	_, err = g.PickUpSymbol(SymSqrt)
	require.NoError(t, err)
	_, err = g.Drop(slotTarget(g.eq.Slots[0]))
	assert.ErrorIs(t, err, ErrIllegalTarget)
	assert.Equal(t, ClassNone, g.Holding(), "an illegal drop still releases the tile")

	_, err = g.PickUp(OperatorID(42))
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

func TestSlotInvariant_HoldsAcrossMutations(t *testing.T) {
	g := mustGame(t, 1, 2, 3, 4)
	steps := []func(){
		func() { place(t, g, SymAdd, 0) },
		func() { moveEquality(t, g, 4) },
		func() { place(t, g, SymMul, 2) },
		func() {
			_, _ = g.PickUpSymbol(SymDiv)
			_, _ = g.Drop(slotTarget(g.eq.Slots[0].Left))
		},
		func() { _, _ = g.Remove(g.eq.Slots[0].Op.ID) },
		func() { moveEquality(t, g, 1) },
	}
	for _, step := range steps {
		step()
		assert.Equal(t, 5, topLevelCount(g))
		eqs := 0
		for _, tok := range g.Tokens() {
			if tok.Symbol == SymEq {
				eqs++
			}
		}
		assert.Equal(t, 1, eqs)
	}
}

func TestOutcome_Idempotent(t *testing.T) {
	g := mustGame(t, 1, 2, 3, 4)
	place(t, g, SymDiv, 1)
	first := Report(g.eq)
	assert.Equal(t, first, Report(g.eq))
	assert.Equal(t, first, g.Outcome())
}

func TestClaimSolve_Once(t *testing.T) {
	g := mustGame(t, 3, 3)
	s, ok := g.ClaimSolve()
	require.True(t, ok, "3=3 is solved from the start")
	assert.Equal(t, 0, s.Moves)
	assert.Equal(t, "3=3", s.Statement)
	_, ok = g.ClaimSolve()
	assert.False(t, ok)

	g2 := mustGame(t, 1, 2, 3)
	_, ok = g2.ClaimSolve()
	assert.False(t, ok, "1=23")

	moveEquality(t, g2, 2)
	out := place(t, g2, SymAdd, 1)
	require.Equal(t, StateSuccess, out.State)

	s, ok = g2.ClaimSolve()
	require.True(t, ok)
	assert.Equal(t, "1+2=3", s.Statement)
	assert.Equal(t, 2, s.Moves)
	assert.GreaterOrEqual(t, s.Elapsed.Nanoseconds(), int64(0))
}

func TestEligibility_ThroughGame(t *testing.T) {
	g := mustGame(t, 1, 2, 3, 4)
	assert.Len(t, g.Eligibility(ClassEquality), 4)
	assert.Len(t, g.Eligibility(ClassUnary), 4)
}
