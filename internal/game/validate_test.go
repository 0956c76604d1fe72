package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	left, right, err := Split(tk("√4", "=", "3", "-", "2", "+", "1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"√4"}, TokenStrings(left))
	assert.Equal(t, []string{"3", "-", "2", "+", "1"}, TokenStrings(right))
}

func TestSplit_Errors(t *testing.T) {
	tests := []struct {
		name string
		toks []Token
		want error
	}{
		{"no equality", tk("1", "+", "2"), ErrIncomplete},
		{"two equalities", tk("1", "=", "1", "=", "1"), ErrStructural},
		{"unbalanced left", tk("(", "1", "=", "1"), ErrStructural},
		{"close before open", tk("1", "=", ")", "1", "("), ErrStructural},
		{"factorial fault without equality", tk("21!", "+", "1"), ErrEvaluation},
		{"factorial fault beats structure", tk("21!", "=", "1", "=", "2"), ErrEvaluation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Split(tt.toks)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFlatten_DepthFirstInOrder(t *testing.T) {
	e := mustEquation(t, 1, 2, 3, 4)
	top := e.Slots[0]
	e.InsertOperator(top, SymAdd)
	e.InsertOperator(top.Left, SymMul)
	e.InsertOperator(top.Right, SymSub)
	e.InsertOperator(top.Right.Left, SymPow)
	e.ApplyUnary(e.Numbers[3], SymFact)

	toks, err := Flatten(e)
	require.NoError(t, err)
	assert.Equal(t, []string{"×", "+", "^", "-", "1", "2", "=", "3", "4!"}, TokenStrings(toks))
	assert.Equal(t, "×+^-12=34!", JoinTokens(toks))
}

func TestFlatten_BrokenLayout(t *testing.T) {
	e := mustEquation(t, 1, 2)
	e.Slots = e.Slots[:2]
	_, err := Flatten(e)
	assert.ErrorIs(t, err, ErrStructural)
}
