package ypath

import (
	"fmt"
	"strconv"
	"strings"
)

// parser is a recursive-descent / precedence-climbing parser over the
// token set produced by lexer, implementing the eight precedence
// levels of spec.md §4.8, tightest to loosest:
//
//  1. atomic & '.', '..', '/'
//  2. filters ('[?(...)]', type filters)
//  3. unary recursive descent '**'
//  4. multiplicative '*', '/' (no operator is parsed at this level)
//  5. additive '+', '-'
//  6. comparisons
//  7. logical '&&' then '||'
//  8. sequence ','
type parser struct {
	lx  *lexer
	cur token
}

func newParser(src string) (*parser, error) {
	p := &parser{lx: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	t, err := p.lx.next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *parser) expect(k tokKind, what string) error {
	if p.cur.kind != k {
		return fmt.Errorf("ypath: expected %s, got %q", what, p.cur.text)
	}
	return p.advance()
}

// Parse parses src as a complete path expression.
func parse(src string) (expr, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	e, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, fmt.Errorf("ypath: unexpected trailing input %q", p.cur.text)
	}
	return e, nil
}

// parseSequence: level 8, the loosest — comma-separated union.
func (p *parser) parseSequence() (expr, error) {
	first, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokComma {
		return first, nil
	}
	parts := []expr{first}
	for p.cur.kind == tokComma {
		if err := p.advance(); err != nil {
			return nil, err
		}
		next, err := p.parseLogicalOr()
		if err != nil {
			return nil, err
		}
		parts = append(parts, next)
	}
	return multiExpr{parts: parts}, nil
}

// parseLogicalOr: level 7b.
func (p *parser) parseLogicalOr() (expr, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokOrOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = binaryExpr{op: tokOrOr, left: left, right: right}
	}
	return left, nil
}

// parseLogicalAnd: level 7a.
func (p *parser) parseLogicalAnd() (expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokAndAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = binaryExpr{op: tokAndAnd, left: left, right: right}
	}
	return left, nil
}

var comparisonOps = map[tokKind]bool{tokEq: true, tokNe: true, tokLt: true, tokLe: true, tokGt: true, tokGe: true}

// parseComparison: level 6.
func (p *parser) parseComparison() (expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if comparisonOps[p.cur.kind] {
		op := p.cur.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return binaryExpr{op: op, left: left, right: right}, nil
	}
	return left, nil
}

// parseAdditive: level 5.
func (p *parser) parseAdditive() (expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		op := p.cur.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = binaryExpr{op: op, left: left, right: right}
	}
	return left, nil
}

// parseMultiplicative: level 4. No '*' or '/' operator is parsed here,
// inside a predicate or outside one: '*' is read only as a wildcard or
// alias atom and '/' only as a navigation step, so the parser never
// builds a multiplicative binaryExpr.
func (p *parser) parseMultiplicative() (expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return left, nil
}

// parseUnary: level 3, recursive-descent '**', then falls through to
// the atomic/navigation chain (level 1/2).
func (p *parser) parseUnary() (expr, error) {
	return p.parseChain()
}

// parseChain: levels 1-2, the navigational spine. A chain is a
// sequence of steps joined by '/' or consisting of '.'/'..' atoms,
// each optionally followed by one or more '[...]' filters.
func (p *parser) parseChain() (expr, error) {
	var steps []expr
	anchoredAtRoot := false

	for {
		switch p.cur.kind {
		case tokSlash:
			if len(steps) == 0 {
				anchoredAtRoot = true
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		case tokDot:
			if err := p.advance(); err != nil {
				return nil, err
			}
			steps = append(steps, selfExpr{})
			continue
		case tokDotDot:
			if err := p.advance(); err != nil {
				return nil, err
			}
			steps = append(steps, parentExpr{})
			continue
		}

		atom, ok, err := p.tryParseAtom()
		if err != nil {
			return nil, err
		}
		if !ok {
			goto done
		}
		for p.cur.kind == tokLBracket {
			pred, err := p.parseFilter()
			if err != nil {
				return nil, err
			}
			atom = chainExpr{steps: []expr{atom, pred}}
		}
		steps = append(steps, atom)

		if p.cur.kind != tokSlash && p.cur.kind != tokDot && p.cur.kind != tokDotDot {
			goto done
		}
	}
done:
	if anchoredAtRoot {
		steps = append([]expr{rootExpr{}}, steps...)
	}
	if len(steps) == 0 {
		return selfExpr{}, nil
	}
	if len(steps) == 1 {
		return steps[0], nil
	}
	return chainExpr{steps: steps}, nil
}

// tryParseAtom parses one primary: an identifier/index/alias, '*',
// '**', '@', a literal, or a parenthesised subexpression. Returns
// ok=false without consuming input when the current token cannot
// start an atom (used to detect the end of a chain).
func (p *parser) tryParseAtom() (expr, bool, error) {
	switch p.cur.kind {
	case tokIdent:
		text := p.cur.text
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		if strings.HasPrefix(text, "*") {
			return aliasExpr{name: text[1:]}, true, nil
		}
		if n, err := strconv.Atoi(text); err == nil {
			return indexExpr{idx: n}, true, nil
		}
		return fieldExpr{name: text}, true, nil
	case tokNumber:
		text := p.cur.text
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		if n, err := strconv.Atoi(text); err == nil {
			return literalExpr{val: float64(n)}, true, nil
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, false, fmt.Errorf("ypath: invalid number %q", text)
		}
		return literalExpr{val: f}, true, nil
	case tokString:
		text := p.cur.text
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		return literalExpr{val: text}, true, nil
	case tokStar:
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		return wildcardExpr{}, true, nil
	case tokStarStar:
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		return recursiveExpr{}, true, nil
	case tokAt:
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		return currentExpr{}, true, nil
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		inner, err := p.parseSequence()
		if err != nil {
			return nil, false, err
		}
		if err := p.expect(tokRParen, "')'"); err != nil {
			return nil, false, err
		}
		return inner, true, nil
	}
	return nil, false, nil
}

// parseFilter parses a '[...]' suffix: a '[?(expr)]' predicate, a
// bare "unique" filter, a type-name filter, or a numeric index filter.
func (p *parser) parseFilter() (expr, error) {
	if err := p.expect(tokLBracket, "'['"); err != nil {
		return nil, err
	}
	if p.cur.kind == tokQuestion {
		if err := p.advance(); err != nil {
			return nil, err
		}
		// Scalar mode must be active before the '(' is consumed: expect's
		// advance() immediately scans the first token of the predicate
		// body.
		p.lx.enterScalar()
		if err := p.expect(tokLParen, "'('"); err != nil {
			return nil, err
		}
		inner, err := p.parseSequence()
		if err != nil {
			return nil, err
		}
		p.lx.exitScalar()
		if err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		if err := p.expect(tokRBracket, "']'"); err != nil {
			return nil, err
		}
		return filterExpr{pred: inner}, nil
	}
	if p.cur.kind == tokIdent {
		text := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expect(tokRBracket, "']'"); err != nil {
			return nil, err
		}
		if n, err := strconv.Atoi(text); err == nil {
			return indexExpr{idx: n}, nil
		}
		if text == "unique" {
			return uniqueFilterExpr{}, nil
		}
		return typeFilterExpr{kind: text}, nil
	}
	return nil, fmt.Errorf("ypath: malformed filter near %q", p.cur.text)
}
