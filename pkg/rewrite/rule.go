package rewrite

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/mlabgo/pkg/ast"
)

// Evaluator computes a replacement for a matched node. The returned node
// takes the matched node's position.
type Evaluator func(b Bindings, n ast.Node) (ast.Node, error)

// Def describes a rule. Exactly one of Template and Eval must be set.
type Def struct {
	Name        string
	Group       string
	Description string
	Pattern     *Pattern
	Template    *Template
	Eval        Evaluator
}

// Rule is a validated rewrite rule.
type Rule struct {
	def Def
}

// NewRule validates d and returns the rule.
func NewRule(d Def) (*Rule, error) {
	if d.Name == "" {
		return nil, errors.New("rewrite: rule needs a name")
	}
	if d.Pattern == nil {
		return nil, fmt.Errorf("rewrite: rule %s has no pattern", d.Name)
	}
	if (d.Template == nil) == (d.Eval == nil) {
		return nil, fmt.Errorf("%w (rule %s)", ErrInvalidRule, d.Name)
	}
	if err := d.Pattern.validate(); err != nil {
		return nil, fmt.Errorf("rewrite: rule %s: %w", d.Name, err)
	}
	return &Rule{def: d}, nil
}

// MustRule is NewRule for rule tables known to be valid.
func MustRule(d Def) *Rule {
	r, err := NewRule(d)
	if err != nil {
		panic(err)
	}
	return r
}

// Name returns the rule name, e.g. "fold-arith".
func (r *Rule) Name() string { return r.def.Name }

// Group returns the rule set the rule belongs to, e.g. "folding".
func (r *Rule) Group() string { return r.def.Group }

// Description returns a human-readable description.
func (r *Rule) Description() string { return r.def.Description }

// Pattern returns the rule's pattern.
func (r *Rule) Pattern() *Pattern { return r.def.Pattern }

// HasEvaluator reports whether the rule computes its replacement in code.
func (r *Rule) HasEvaluator() bool { return r.def.Eval != nil }

// rewrite returns the replacement for n, or ok=false when the pattern does
// not match.
func (r *Rule) rewrite(n ast.Node) (out ast.Node, ok bool, err error) {
	b, ok := r.def.Pattern.Match(n)
	if !ok {
		return nil, false, nil
	}
	if r.def.Template != nil {
		out, err = r.def.Template.Build(b, n.Pos())
	} else {
		out, err = r.def.Eval(b, n)
		if err == nil && out == nil {
			err = errors.New("evaluator returned no node")
		}
		if err == nil {
			out, err = ast.Build(out.Kind(), n.Pos(), out.Values())
		}
	}
	if err != nil {
		return nil, true, &RuleError{Rule: r.def.Name, Pos: n.Pos(), Err: err}
	}
	return out, true, nil
}
