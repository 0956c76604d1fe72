// internal/digits/digits.go
//
// Provides the digits a puzzle is built from.
//
// Responsibilities:
//   - Draw uniform random digits in [1,9] (crypto/rand).
//   - Parse fixed digit sequences such as "4321" or "4,3,2,1".
//   - Optionally pin every new puzzle to a fixed sequence (PUZZLE_DIGITS),
//     which is handy for local testing and demos.
//
// Initialization behavior (Init):
//   1. If PUZZLE_DIGITS is set, it is parsed once and returned by Default.
//   2. Otherwise Default draws fresh random digits each call.
//
// Environment variables:
//   PUZZLE_DIGITS=4321

package digits

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"sync"
)

const (
	// DefaultCount is the number of operands in a standard puzzle.
	DefaultCount = 4
	// MaxCount bounds puzzle size; the layout is designed for a handful of digits.
	MaxCount = 9

	minDigit = 1
	maxDigit = 9
)

var (
	initOnce   sync.Once
	fixed      []int
	initialErr error
)

// Init reads PUZZLE_DIGITS exactly once.
func Init() error {
	initOnce.Do(func() {
		raw := os.Getenv("PUZZLE_DIGITS")
		if raw == "" {
			return
		}
		fixed, initialErr = Parse(raw)
	})
	return initialErr
}

// Default returns the pinned sequence when configured, otherwise count random digits.
func Default(count int) []int {
	if len(fixed) > 0 {
		return append([]int(nil), fixed...)
	}
	return Random(count)
}

// Random draws count digits uniformly from [1,9].
// A count outside [1,MaxCount] falls back to DefaultCount.
func Random(count int) []int {
	if count <= 0 || count > MaxCount {
		count = DefaultCount
	}
	out := make([]int, count)
	span := big.NewInt(maxDigit - minDigit + 1)
	for i := range out {
		n, err := rand.Int(rand.Reader, span)
		if err != nil {
			out[i] = minDigit
			continue
		}
		out[i] = int(n.Int64()) + minDigit
	}
	return out
}

// Parse accepts either a run of digits ("4321") or a comma/space separated
// list ("4,3,2,1"). Each value must be a single digit 0–9.
func Parse(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("digits: empty sequence")
	}
	var parts []string
	if strings.ContainsAny(s, ", ") {
		parts = strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	} else {
		parts = strings.Split(s, "")
	}
	if len(parts) > MaxCount {
		return nil, fmt.Errorf("digits: at most %d values, got %d", MaxCount, len(parts))
	}
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > maxDigit {
			return nil, fmt.Errorf("digits: %q is not a digit", p)
		}
		out = append(out, v)
	}
	return out, nil
}

// Valid reports whether every value is a digit and the count is playable.
func Valid(ds []int) bool {
	if len(ds) == 0 || len(ds) > MaxCount {
		return false
	}
	for _, d := range ds {
		if d < 0 || d > maxDigit {
			return false
		}
	}
	return true
}
