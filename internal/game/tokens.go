// internal/game/tokens.go
//
// Tokenizer: flattens the equation into the ordered token stream that the
// validator and evaluator work on.
//
// For each top-level position: the in-order walk of that slot's tree (left
// subtree, operator, right subtree), then the following number. Unary effects
// travel inside the number token.

package game

import (
	"fmt"
	"strings"
)

// TokenKind classifies a token.
type TokenKind int

const (
	TokNumber TokenKind = iota
	TokOperator
	TokOpen
	TokClose
)

// Token is one element of the flattened equation.
type Token struct {
	Kind   TokenKind
	Symbol Symbol // operator or grouping marker
	Value  int    // original digit for numbers
	Unary  Symbol // unary wrap for numbers
}

// NumberToken builds a number token from a model number.
func NumberToken(n *Number) Token {
	return Token{Kind: TokNumber, Value: n.Original, Unary: n.Unary}
}

// OpToken builds an operator or grouping token.
func OpToken(s Symbol) Token {
	switch s {
	case SymOpen:
		return Token{Kind: TokOpen, Symbol: s}
	case SymClose:
		return Token{Kind: TokClose, Symbol: s}
	}
	return Token{Kind: TokOperator, Symbol: s}
}

func (t Token) String() string {
	if t.Kind == TokNumber {
		n := Number{Original: t.Value, Unary: t.Unary}
		return n.String()
	}
	return string(t.Symbol)
}

// Flatten linearizes the equation. It fails only if the top-level layout no
// longer alternates slots and numbers.
func Flatten(e *Equation) ([]Token, error) {
	if len(e.Slots) != len(e.Numbers)+1 {
		return nil, fmt.Errorf("%w: %d slots for %d numbers", ErrStructural, len(e.Slots), len(e.Numbers))
	}
	var out []Token
	for i, s := range e.Slots {
		out = appendSlot(out, s)
		if i < len(e.Numbers) {
			out = append(out, NumberToken(e.Numbers[i]))
		}
	}
	return out, nil
}

func appendSlot(out []Token, s *Slot) []Token {
	if s == nil || s.IsEmpty() {
		return out
	}
	out = appendSlot(out, s.Left)
	if s.Op != nil {
		out = append(out, OpToken(s.Op.Symbol))
	}
	return appendSlot(out, s.Right)
}

// JoinTokens renders tokens as the player reads them, e.g. "√4=3-2+1".
func JoinTokens(toks []Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.String())
	}
	return b.String()
}

// TokenStrings renders each token separately.
func TokenStrings(toks []Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.String()
	}
	return out
}
