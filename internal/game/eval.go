// internal/game/eval.go
//
// Evaluator for one side of the equation.
//
// The token span is first folded into operands (adjacent plain digits join into
// a multi-digit literal, e.g. 1 2 → 12), then reduced by precedence climbing:
//
//	+ -   lowest, left-associative
//	× ÷   left-associative
//	^     highest, right-associative
//
// Any operand may carry a sign, including after a binary operator (4÷-2) and
// chained (+-2). Two identical signs in a row are rejected (1--2, ++2), and so
// is a sign directly in front of a power chain (-2^2, write (-2)^2).
// Every intermediate value must stay finite.

package game

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxFactorial is the largest operand accepted by "!".
const MaxFactorial = 20

type operand struct {
	kind  TokenKind
	sym   Symbol
	value float64
}

// Evaluate reduces a span of tokens to a number.
func Evaluate(span []Token) (float64, error) {
	if len(span) == 0 {
		return 0, fmt.Errorf("%w: empty side", ErrEvaluation)
	}
	items, err := fold(span)
	if err != nil {
		return 0, err
	}
	p := &evaluator{items: items}
	v, err := p.expr(1, "")
	if err != nil {
		return 0, err
	}
	if p.pos < len(p.items) {
		return 0, fmt.Errorf("%w: unexpected %q", ErrEvaluation, p.items[p.pos].sym)
	}
	return v, nil
}

// fold merges runs of number tokens into single operands.
func fold(span []Token) ([]operand, error) {
	out := make([]operand, 0, len(span))
	for i := 0; i < len(span); {
		t := span[i]
		if t.Kind != TokNumber {
			out = append(out, operand{kind: t.Kind, sym: t.Symbol})
			i++
			continue
		}
		j := i
		for j < len(span) && span[j].Kind == TokNumber {
			j++
		}
		v, err := literal(span[i:j])
		if err != nil {
			return nil, err
		}
		out = append(out, operand{kind: TokNumber, value: v})
		i = j
	}
	return out, nil
}

func literal(run []Token) (float64, error) {
	if len(run) == 1 {
		return numberValue(run[0])
	}
	var b strings.Builder
	for _, t := range run {
		if t.Unary != "" {
			return 0, fmt.Errorf("%w: %s cannot join adjacent digits", ErrEvaluation, t)
		}
		b.WriteString(strconv.Itoa(t.Value))
	}
	lit := b.String()
	if len(lit) > 1 && lit[0] == '0' {
		return 0, fmt.Errorf("%w: leading zero in %s", ErrEvaluation, lit)
	}
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEvaluation, err)
	}
	return v, nil
}

// numberValue resolves a number token, including its unary wrap.
func numberValue(t Token) (float64, error) {
	v := float64(t.Value)
	switch t.Unary {
	case "":
		return v, nil
	case SymSqrt:
		return finite(math.Sqrt(v))
	case SymFact:
		return factorial(t.Value)
	}
	return 0, fmt.Errorf("%w: unknown unary %q", ErrEvaluation, t.Unary)
}

func factorial(n int) (float64, error) {
	if n < 0 || n > MaxFactorial {
		return 0, fmt.Errorf("%w: %d! outside [0,%d]", ErrEvaluation, n, MaxFactorial)
	}
	r := 1.0
	for i := 2; i <= n; i++ {
		r *= float64(i)
	}
	return r, nil
}

func finite(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: non-finite result", ErrEvaluation)
	}
	return v, nil
}

func precedence(s Symbol) int {
	switch s {
	case SymAdd, SymSub:
		return 1
	case SymMul, SymDiv:
		return 2
	case SymPow:
		return 3
	}
	return 0
}

type evaluator struct {
	items []operand
	pos   int
}

func (p *evaluator) peek() (operand, bool) {
	if p.pos >= len(p.items) {
		return operand{}, false
	}
	return p.items[p.pos], true
}

// expr parses an expression whose operators bind at least minPrec. prev is
// the sign or operator immediately before it, empty at the start of a span.
func (p *evaluator) expr(minPrec int, prev Symbol) (float64, error) {
	lhs, err := p.signed(prev)
	if err != nil {
		return 0, err
	}
	for {
		it, ok := p.peek()
		if !ok || it.kind != TokOperator {
			return lhs, nil
		}
		prec := precedence(it.sym)
		if prec == 0 || prec < minPrec {
			return lhs, nil
		}
		p.pos++
		next := prec + 1
		if it.sym == SymPow {
			next = prec
		}
		rhs, err := p.expr(next, it.sym)
		if err != nil {
			return 0, err
		}
		if lhs, err = apply(it.sym, lhs, rhs); err != nil {
			return 0, err
		}
	}
}

// signed parses an operand with any number of leading signs.
func (p *evaluator) signed(prev Symbol) (float64, error) {
	it, ok := p.peek()
	if !ok {
		return 0, fmt.Errorf("%w: missing operand", ErrEvaluation)
	}
	if it.kind != TokOperator || (it.sym != SymAdd && it.sym != SymSub) {
		return p.primary()
	}
	if it.sym == prev {
		return 0, fmt.Errorf("%w: %q%q is not an operator", ErrEvaluation, prev, it.sym)
	}
	p.pos++
	v, err := p.signed(it.sym)
	if err != nil {
		return 0, err
	}
	if next, ok := p.peek(); ok && next.kind == TokOperator && next.sym == SymPow {
		return 0, fmt.Errorf("%w: sign before ^ needs grouping", ErrEvaluation)
	}
	if it.sym == SymSub {
		v = -v
	}
	return v, nil
}

func (p *evaluator) primary() (float64, error) {
	it, ok := p.peek()
	if !ok {
		return 0, fmt.Errorf("%w: missing operand", ErrEvaluation)
	}
	switch it.kind {
	case TokNumber:
		p.pos++
		return it.value, nil
	case TokOpen:
		p.pos++
		v, err := p.expr(1, "")
		if err != nil {
			return 0, err
		}
		if c, ok := p.peek(); !ok || c.kind != TokClose {
			return 0, fmt.Errorf("%w: missing )", ErrEvaluation)
		}
		p.pos++
		return v, nil
	}
	return 0, fmt.Errorf("%w: operator %q without operand", ErrEvaluation, it.sym)
}

func apply(op Symbol, a, b float64) (float64, error) {
	switch op {
	case SymAdd:
		return finite(a + b)
	case SymSub:
		return finite(a - b)
	case SymMul:
		return finite(a * b)
	case SymDiv:
		return finite(a / b)
	case SymPow:
		return finite(math.Pow(a, b))
	}
	return 0, fmt.Errorf("%w: unknown operator %q", ErrEvaluation, op)
}
