package rewrite

import (
	"log/slog"

	"github.com/leapstack-labs/mlabgo/pkg/ast"
)

// Engine applies an ordered list of rules to syntax trees. An Engine holds
// no per-run state and may be shared between goroutines.
type Engine struct {
	rules  []*Rule
	logger *slog.Logger
	trace  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for rule tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTrace logs every rule application at debug level.
func WithTrace(on bool) Option {
	return func(e *Engine) { e.trace = on }
}

// New creates an engine. Earlier rules take priority.
func New(rules []*Rule, opts ...Option) *Engine {
	e := &Engine{
		rules:  rules,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns the engine's rules in priority order.
func (e *Engine) Rules() []*Rule { return e.rules }

// Apply rewrites the tree rooted at n. Nodes that no rule touches are
// shared with the input.
func (e *Engine) Apply(n ast.Node) (ast.Node, error) {
	if n == nil {
		return nil, nil
	}
	for _, r := range e.rules {
		out, ok, err := r.rewrite(n)
		if err != nil {
			return nil, err
		}
		if ok {
			if e.trace {
				e.logger.Debug("rewrite",
					slog.String("rule", r.Name()),
					slog.String("kind", n.Kind().String()),
					slog.Int("line", n.Pos().Line))
			}
			n = out
			break
		}
	}
	return e.applyChildren(n)
}

// ApplyList rewrites each node of a list.
func (e *Engine) ApplyList(ns []ast.Node) ([]ast.Node, error) {
	out, _, err := e.applyList(ns)
	return out, err
}

// ApplyProgram rewrites every top-level statement of p.
func (e *Engine) ApplyProgram(p *ast.Program) (*ast.Program, error) {
	body, err := e.ApplyList(p.Body)
	if err != nil {
		return nil, err
	}
	return &ast.Program{Body: body}, nil
}

func (e *Engine) applyChildren(n ast.Node) (ast.Node, error) {
	vals := n.Values()
	changed := false
	for i, f := range ast.Schema(n.Kind()) {
		switch f.Kind {
		case ast.FieldNode:
			c, err := e.Apply(vals[i].Node)
			if err != nil {
				return nil, err
			}
			if c != vals[i].Node {
				vals[i].Node = c
				changed = true
			}
		case ast.FieldList:
			l, ch, err := e.applyList(vals[i].List)
			if err != nil {
				return nil, err
			}
			if ch {
				vals[i].List = l
				changed = true
			}
		}
	}
	if !changed {
		return n, nil
	}
	return ast.Build(n.Kind(), n.Pos(), vals)
}

func (e *Engine) applyList(ns []ast.Node) ([]ast.Node, bool, error) {
	if ns == nil {
		return nil, false, nil
	}
	out := make([]ast.Node, len(ns))
	changed := false
	for i, n := range ns {
		c, err := e.Apply(n)
		if err != nil {
			return nil, false, err
		}
		out[i] = c
		if c != n {
			changed = true
		}
	}
	if !changed {
		return ns, false, nil
	}
	return out, true, nil
}
