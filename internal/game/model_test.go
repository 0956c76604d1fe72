package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEquation(t *testing.T, ds ...int) *Equation {
	t.Helper()
	e, err := NewEquation(ds)
	require.NoError(t, err)
	return e
}

func TestNewEquation_Layout(t *testing.T) {
	e := mustEquation(t, 1, 2, 3, 4)

	require.Len(t, e.Slots, 5)
	require.Len(t, e.Numbers, 4)
	for i, s := range e.Slots {
		assert.Equal(t, i, s.Pos)
	}
	assert.Same(t, e.Slots[2], e.Equality().host)

	toks, err := Flatten(e)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "=", "3", "4"}, TokenStrings(toks))
}

func TestNewEquation_OddCountPlacesEqualityInMiddle(t *testing.T) {
	e := mustEquation(t, 1, 2, 3)
	assert.Same(t, e.Slots[1], e.Equality().host)
}

func TestNewEquation_Rejects(t *testing.T) {
	_, err := NewEquation(nil)
	assert.ErrorIs(t, err, ErrBadDigits)

	_, err = NewEquation([]int{1, -2})
	assert.ErrorIs(t, err, ErrBadDigits)
}

func TestInsertRemove_RoundTrip(t *testing.T) {
	e := mustEquation(t, 1, 2, 3, 4)
	before := slotView(e.Slots[1])

	op := e.InsertOperator(e.Slots[1], SymAdd)
	require.False(t, e.Slots[1].IsEmpty())
	assert.Equal(t, 1, e.Slots[1].Pos, "group keeps the position of the slot it replaced")
	assert.Len(t, e.Slots, 5)

	require.NoError(t, e.RemoveOperator(op))
	assert.Equal(t, before, slotView(e.Slots[1]))
	assert.Len(t, e.Slots, 5)
}

func TestRemove_HollowGroupKeepsDescendants(t *testing.T) {
	e := mustEquation(t, 1, 2, 3, 4)
	top := e.Slots[0]
	plus := e.InsertOperator(top, SymAdd)
	times := e.InsertOperator(top.Left, SymMul)

	require.NoError(t, e.RemoveOperator(plus))
	assert.False(t, top.IsEmpty(), "group with a nested operator must survive")
	assert.Nil(t, top.Op)

	toks, _ := Flatten(e)
	assert.Equal(t, []string{"×", "1", "2", "=", "3", "4"}, TokenStrings(toks))

	require.NoError(t, e.RemoveOperator(times))
	assert.True(t, top.IsEmpty(), "hollow group collapses once its last operator leaves")
	assert.Equal(t, 0, top.Pos)
}

func TestRemove_NestedGroupCollapsesOnlyItself(t *testing.T) {
	e := mustEquation(t, 1, 2, 3, 4)
	top := e.Slots[3]
	e.InsertOperator(top, SymAdd)
	inner := e.InsertOperator(top.Right, SymSub)

	require.NoError(t, e.RemoveOperator(inner))
	assert.True(t, top.Right.IsEmpty())
	assert.NotNil(t, top.Op)
	assert.Equal(t, NoPosition, top.Right.Pos)
}

func TestRemoveOperator_EqualityRefused(t *testing.T) {
	e := mustEquation(t, 1, 2, 3, 4)
	before := slotView(e.Slots[2])

	err := e.RemoveOperator(e.Equality())
	assert.ErrorIs(t, err, ErrEqualityFixed)
	assert.Equal(t, before, slotView(e.Slots[2]))
}

func TestApplyUnary_DoesNotCompose(t *testing.T) {
	e := mustEquation(t, 4, 3, 2, 1)
	n := e.Numbers[0]

	assert.True(t, e.ApplyUnary(n, SymSqrt))
	assert.False(t, e.ApplyUnary(n, SymFact))
	assert.False(t, e.ApplyUnary(n, SymSqrt))
	assert.Equal(t, "√4", n.String())
}

func TestApplyUnary_RejectsNonUnary(t *testing.T) {
	e := mustEquation(t, 4)
	assert.False(t, e.ApplyUnary(e.Numbers[0], SymAdd))
	assert.False(t, e.Numbers[0].Transformed())
}

func TestRevertThenApply_ReproducesState(t *testing.T) {
	e := mustEquation(t, 3, 3)
	n := e.Numbers[1]

	require.True(t, e.ApplyUnary(n, SymFact))
	once := *n

	assert.True(t, e.Revert(n))
	assert.False(t, e.Revert(n), "nothing left to revert")
	require.True(t, e.ApplyUnary(n, SymFact))
	assert.Equal(t, once, *n)
}

func TestLookups(t *testing.T) {
	e := mustEquation(t, 1, 2)
	op := e.InsertOperator(e.Slots[0], SymPow)

	got, ok := e.OperatorByID(op.ID)
	require.True(t, ok)
	assert.Same(t, op, got)

	s, ok := e.SlotByID(e.Slots[0].Left.ID)
	require.True(t, ok)
	assert.Same(t, e.Slots[0].Left, s)

	_, ok = e.SlotByID(9999)
	assert.False(t, ok)
	_, ok = e.NumberByID(2)
	assert.False(t, ok)
}
