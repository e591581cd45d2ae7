package rewrite

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/mlabgo/pkg/token"
)

// ErrInvalidRule is returned when a rule is constructed without exactly one
// of a template or an evaluator.
var ErrInvalidRule = errors.New("rewrite: rule needs exactly one of template or evaluator")

// RuleError reports a rule that matched but could not produce a
// replacement.
type RuleError struct {
	Rule string
	Pos  token.Position
	Err  error
}

func (e *RuleError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("rewrite error at line %d, column %d: rule %s: %v", e.Pos.Line, e.Pos.Column, e.Rule, e.Err)
	}
	return fmt.Sprintf("rewrite error: rule %s: %v", e.Rule, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }
