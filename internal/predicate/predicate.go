// Package predicate compiles the threshold expressions that decide
// which measurement transitions are tracked deeper. The grammar is a
// closed comparison form, never a general evaluator:
//
//	n OP p [+ K | - K]
//
// where n is the new measurement, p the previous one, OP one of
// > >= < <= == != and K a non-negative integer constant.
package predicate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Func reports whether the transition from previous to new qualifies
// for deeper investigation. Implementations must be pure.
type Func func(newValue, previousValue int64) bool

// Default is the expression compiled when none is supplied.
const Default = "n > p"

// ErrInvalidExpression is returned for text outside the grammar.
var ErrInvalidExpression = errors.New("invalid threshold expression")

var exprPattern = regexp.MustCompile(`^n\s*(>=|<=|==|!=|>|<)\s*p\s*(?:([+-])\s*(\d+)\s*)?$`)

// Compile parses a threshold expression into a predicate.
func Compile(expr string) (Func, error) {
	match := exprPattern.FindStringSubmatch(strings.TrimSpace(expr))
	if match == nil {
		return nil, fmt.Errorf("%w: %q (examples: %q, \"n > p + 100000\")",
			ErrInvalidExpression, expr, Default)
	}

	var offset int64

	if match[3] != "" {
		value, convErr := strconv.ParseInt(match[3], 10, 64)
		if convErr != nil {
			return nil, fmt.Errorf("%w: offset in %q: %w", ErrInvalidExpression, expr, convErr)
		}

		if match[2] == "-" {
			value = -value
		}

		offset = value
	}

	switch match[1] {
	case ">":
		return func(n, p int64) bool { return n > p+offset }, nil
	case ">=":
		return func(n, p int64) bool { return n >= p+offset }, nil
	case "<":
		return func(n, p int64) bool { return n < p+offset }, nil
	case "<=":
		return func(n, p int64) bool { return n <= p+offset }, nil
	case "==":
		return func(n, p int64) bool { return n == p+offset }, nil
	case "!=":
		return func(n, p int64) bool { return n != p+offset }, nil
	}

	// Unreachable: the pattern admits only the operators above.
	return nil, fmt.Errorf("%w: %q", ErrInvalidExpression, expr)
}
