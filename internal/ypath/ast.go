package ypath

import "github.com/fyyaml/fy/internal/document"

// expr is one node of the parsed expression tree (spec.md §4.8). Eval
// transforms an input walk-result into an output walk-result
// (spec.md §4.9): every node type is a pure function of its input
// list plus the executor's fixed document/anchor context.
type expr interface {
	eval(ex *executor, in []Result) ([]Result, error)
}

// rootExpr anchors at the document root, discarding any current input
// (produced by a leading '/').
type rootExpr struct{}

func (rootExpr) eval(ex *executor, _ []Result) ([]Result, error) {
	if ex.doc.Root == nil {
		return nil, nil
	}
	return []Result{nodeResult(ex.doc.Root)}, nil
}

// selfExpr ('.') passes its input through unchanged.
type selfExpr struct{}

func (selfExpr) eval(_ *executor, in []Result) ([]Result, error) { return in, nil }

// parentExpr ('..') replaces each input node with its parent, if any.
type parentExpr struct{}

func (parentExpr) eval(_ *executor, in []Result) ([]Result, error) {
	var out []Result
	for _, r := range in {
		if r.Node == nil {
			continue
		}
		if p := r.Node.Parent(); p != nil {
			out = append(out, nodeResult(p))
		}
	}
	return out, nil
}

// fieldExpr navigates into a mapping's value by key literal.
type fieldExpr struct{ name string }

func (f fieldExpr) eval(_ *executor, in []Result) ([]Result, error) {
	var out []Result
	for _, r := range in {
		if r.Node == nil || !r.Node.IsMapping() {
			continue
		}
		if v, ok := r.Node.MapGet(f.name); ok {
			out = append(out, nodeResult(v))
		}
	}
	return out, nil
}

// indexExpr navigates into a sequence by position.
type indexExpr struct{ idx int }

func (ix indexExpr) eval(_ *executor, in []Result) ([]Result, error) {
	var out []Result
	for _, r := range in {
		if r.Node == nil || !r.Node.IsSequence() {
			continue
		}
		if ix.idx >= 0 && ix.idx < len(r.Node.Items) {
			out = append(out, nodeResult(r.Node.Items[ix.idx]))
		}
	}
	return out, nil
}

// wildcardExpr ('*') expands every direct child of each input node:
// sequence items, or mapping values.
type wildcardExpr struct{}

func (wildcardExpr) eval(_ *executor, in []Result) ([]Result, error) {
	var out []Result
	for _, r := range in {
		if r.Node == nil {
			continue
		}
		switch r.Node.Kind {
		case document.SequenceKind:
			for _, it := range r.Node.Items {
				out = append(out, nodeResult(it))
			}
		case document.MappingKind:
			for _, p := range r.Node.Pairs {
				out = append(out, nodeResult(p.Value))
			}
		}
	}
	return out, nil
}

// recursiveExpr ('**') collects every sequence item and mapping value
// below each input node, depth-first, pre-order; mapping keys are not
// included.
type recursiveExpr struct{}

func (recursiveExpr) eval(_ *executor, in []Result) ([]Result, error) {
	var out []Result
	var walk func(n *document.Node)
	walk = func(n *document.Node) {
		switch n.Kind {
		case document.SequenceKind:
			for _, it := range n.Items {
				out = append(out, nodeResult(it))
				walk(it)
			}
		case document.MappingKind:
			for _, p := range n.Pairs {
				out = append(out, nodeResult(p.Value))
				walk(p.Value)
			}
		}
	}
	for _, r := range in {
		if r.Node != nil {
			walk(r.Node)
		}
	}
	return out, nil
}

// aliasExpr ('*name') resolves an anchor name against the document's
// anchor table, independent of the current input context — mirrors
// the YAML alias syntax reused as a path atom.
type aliasExpr struct{ name string }

func (a aliasExpr) eval(ex *executor, _ []Result) ([]Result, error) {
	n, ok := ex.doc.Resolve(a.name)
	if !ok {
		return nil, &document.ErrUnresolvedAlias{Name: a.name}
	}
	return []Result{nodeResult(n)}, nil
}

// chainExpr runs each step in turn, feeding one step's output list as
// the next step's input (spec.md §4.9 "chain feeds left's outputs as
// right's inputs and unions").
type chainExpr struct{ steps []expr }

func (c chainExpr) eval(ex *executor, in []Result) ([]Result, error) {
	cur := in
	for _, step := range c.steps {
		out, err := step.eval(ex, cur)
		if err != nil {
			return nil, err
		}
		cur = out
	}
	return cur, nil
}

// multiExpr evaluates every part independently against the same
// input and concatenates the results in declaration order (the ','
// sequence operator, precedence level 8).
type multiExpr struct{ parts []expr }

func (m multiExpr) eval(ex *executor, in []Result) ([]Result, error) {
	var out []Result
	for _, p := range m.parts {
		r, err := p.eval(ex, in)
		if err != nil {
			return nil, err
		}
		out = append(out, r...)
	}
	return out, nil
}

// filterExpr applies pred to each candidate in the input independently,
// keeping the candidate (not the predicate's own result) when pred is
// truthy for it.
type filterExpr struct{ pred expr }

func (f filterExpr) eval(ex *executor, in []Result) ([]Result, error) {
	var out []Result
	for _, cand := range in {
		res, err := f.pred.eval(ex, []Result{cand})
		if err != nil {
			return nil, err
		}
		if truthy(res) {
			out = append(out, cand)
		}
	}
	return out, nil
}

// typeFilterExpr keeps only nodes whose Kind matches a named type
// ("seq", "map", "scalar").
type typeFilterExpr struct{ kind string }

func (t typeFilterExpr) eval(_ *executor, in []Result) ([]Result, error) {
	var want document.Kind
	switch t.kind {
	case "seq", "sequence":
		want = document.SequenceKind
	case "map", "mapping":
		want = document.MappingKind
	case "scalar":
		want = document.ScalarKind
	default:
		return nil, nil
	}
	var out []Result
	for _, r := range in {
		if r.Node != nil && r.Node.Kind == want {
			out = append(out, r)
		}
	}
	return out, nil
}

// uniqueFilterExpr deduplicates by node identity, preserving the first
// occurrence's position.
type uniqueFilterExpr struct{}

func (uniqueFilterExpr) eval(_ *executor, in []Result) ([]Result, error) {
	seen := make(map[*document.Node]bool, len(in))
	var out []Result
	for _, r := range in {
		if r.Node == nil || seen[r.Node] {
			continue
		}
		seen[r.Node] = true
		out = append(out, r)
	}
	return out, nil
}

// currentExpr ('@') refers to the candidate being tested inside a
// filter predicate.
type currentExpr struct{}

func (currentExpr) eval(_ *executor, in []Result) ([]Result, error) { return in, nil }

// literalExpr is a number/string constant from scalar-expression mode.
type literalExpr struct{ val interface{} }

func (l literalExpr) eval(_ *executor, _ []Result) ([]Result, error) {
	return []Result{litResult(l.val)}, nil
}

// binaryExpr covers arithmetic, comparison and logical operators
// (precedence levels 4-7).
type binaryExpr struct {
	op          tokKind
	left, right expr
}

func (b binaryExpr) eval(ex *executor, in []Result) ([]Result, error) {
	switch b.op {
	case tokAndAnd:
		l, err := b.left.eval(ex, in)
		if err != nil || !truthy(l) {
			return nil, err
		}
		return b.right.eval(ex, in)
	case tokOrOr:
		l, err := b.left.eval(ex, in)
		if err != nil {
			return nil, err
		}
		if truthy(l) {
			return l, nil
		}
		return b.right.eval(ex, in)
	}

	l, err := b.left.eval(ex, in)
	if err != nil {
		return nil, err
	}
	r, err := b.right.eval(ex, in)
	if err != nil {
		return nil, err
	}
	lv, lok := firstValue(ex, l)
	rv, rok := firstValue(ex, r)
	if !lok || !rok {
		return nil, nil
	}

	switch b.op {
	case tokEq, tokNe, tokLt, tokLe, tokGt, tokGe:
		ok, err := compareValues(b.op, lv, rv)
		if err != nil {
			return nil, err
		}
		return []Result{litResult(ok)}, nil
	case tokPlus, tokMinus:
		lf, lfok := toFloat(lv)
		rf, rfok := toFloat(rv)
		if !lfok || !rfok {
			return nil, nil
		}
		if b.op == tokPlus {
			return []Result{litResult(lf + rf)}, nil
		}
		return []Result{litResult(lf - rf)}, nil
	case tokStar, tokSlash:
		lf, lfok := toFloat(lv)
		rf, rfok := toFloat(rv)
		if !lfok || !rfok {
			return nil, nil
		}
		if b.op == tokStar {
			return []Result{litResult(lf * rf)}, nil
		}
		if rf == 0 {
			return nil, nil
		}
		return []Result{litResult(lf / rf)}, nil
	}
	return nil, nil
}
