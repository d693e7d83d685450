package ypath

import (
	"fmt"
	"strconv"

	"github.com/fyyaml/fy/internal/document"
	"github.com/fyyaml/fy/internal/resolve"
	"github.com/fyyaml/fy/internal/token"
)

// Result is one member of a walk-result list (spec.md §4.9): either a
// node reference, or a literal scalar produced by an arithmetic,
// comparison, or logical sub-expression.
type Result struct {
	Node *document.Node
	Lit  interface{}
}

func nodeResult(n *document.Node) Result { return Result{Node: n} }
func litResult(v interface{}) Result     { return Result{Lit: v} }

// IsNode reports whether r carries a document node rather than a bare
// literal value.
func (r Result) IsNode() bool { return r.Node != nil }

// executor holds the fixed context (document, resolution mode) a
// compiled expression tree is evaluated against.
type executor struct {
	doc  *document.Document
	mode token.Mode
}

// valueOf coerces a Result to a comparable Go value: a node's scalar
// literal is resolved via the core schema ladder (so `1` compares
// equal to numeric 1, not the string "1"); non-scalar nodes compare
// as their kind name.
func valueOf(ex *executor, r Result) interface{} {
	if r.Node == nil {
		return r.Lit
	}
	switch r.Node.Kind {
	case document.ScalarKind:
		_, v, err := resolve.Resolve(ex.mode, r.Node.Tag, r.Node.Value)
		if err != nil {
			return r.Node.Value
		}
		return v
	case document.SequenceKind:
		return "seq"
	case document.MappingKind:
		return "map"
	}
	return nil
}

func firstValue(ex *executor, rs []Result) (interface{}, bool) {
	if len(rs) == 0 {
		return nil, false
	}
	return valueOf(ex, rs[0]), true
}

// truthy reports whether a result list should count as "true" in a
// logical/predicate context: non-empty and, when the sole result is a
// boolean literal, that boolean itself.
func truthy(rs []Result) bool {
	if len(rs) == 0 {
		return false
	}
	if b, ok := rs[0].Lit.(bool); ok && rs[0].Node == nil {
		return b
	}
	return true
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}

func compareValues(op tokKind, a, b interface{}) (bool, error) {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch op {
			case tokEq:
				return af == bf, nil
			case tokNe:
				return af != bf, nil
			case tokLt:
				return af < bf, nil
			case tokLe:
				return af <= bf, nil
			case tokGt:
				return af > bf, nil
			case tokGe:
				return af >= bf, nil
			}
		}
	}
	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			switch op {
			case tokEq:
				return ab == bb, nil
			case tokNe:
				return ab != bb, nil
			}
		}
	}
	as := fmt.Sprint(a)
	bs := fmt.Sprint(b)
	switch op {
	case tokEq:
		return as == bs, nil
	case tokNe:
		return as != bs, nil
	case tokLt:
		return as < bs, nil
	case tokLe:
		return as <= bs, nil
	case tokGt:
		return as > bs, nil
	case tokGe:
		return as >= bs, nil
	}
	return false, fmt.Errorf("ypath: unsupported comparison operator %v", op)
}
