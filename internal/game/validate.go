package game

import "fmt"

// Split checks the token stream's structure and divides it at the equality.
//
// Number domain faults are reported first so that a bad factorial surfaces
// even while the equation is still incomplete. Then:
//   - no equality   → ErrIncomplete
//   - several       → ErrStructural
//   - each side must have balanced grouping markers → else ErrStructural
func Split(toks []Token) (left, right []Token, err error) {
	for _, t := range toks {
		if t.Kind == TokNumber {
			if _, err := numberValue(t); err != nil {
				return nil, nil, err
			}
		}
	}

	eqAt, eqCount := -1, 0
	for i, t := range toks {
		if t.Kind == TokOperator && t.Symbol == SymEq {
			eqCount++
			if eqAt < 0 {
				eqAt = i
			}
		}
	}
	switch {
	case eqCount == 0:
		return nil, nil, ErrIncomplete
	case eqCount > 1:
		return nil, nil, fmt.Errorf("%w: %d equality operators", ErrStructural, eqCount)
	}

	left, right = toks[:eqAt], toks[eqAt+1:]
	if !balanced(left) {
		return nil, nil, fmt.Errorf("%w: unbalanced left side", ErrStructural)
	}
	if !balanced(right) {
		return nil, nil, fmt.Errorf("%w: unbalanced right side", ErrStructural)
	}
	return left, right, nil
}

func balanced(span []Token) bool {
	depth := 0
	for _, t := range span {
		switch t.Kind {
		case TokOpen:
			depth++
		case TokClose:
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
