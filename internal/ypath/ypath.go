package ypath

import (
	"github.com/fyyaml/fy/internal/document"
	"github.com/fyyaml/fy/internal/token"
)

// Program is a compiled path expression, reusable across documents.
type Program struct {
	root expr
	src  string
}

// String returns the original source text the program was compiled
// from.
func (p *Program) String() string { return p.src }

// Compile parses src into a reusable Program (spec.md §4.8).
func Compile(src string) (*Program, error) {
	root, err := parse(src)
	if err != nil {
		return nil, err
	}
	return &Program{root: root, src: src}, nil
}

// Execute walks p's expression tree in post-order over doc
// (spec.md §4.9), seeded with the document root as the initial
// context so a bare (non-rooted) expression still has somewhere to
// start navigating from.
func (p *Program) Execute(doc *document.Document, mode token.Mode) ([]Result, error) {
	ex := &executor{doc: doc, mode: mode}
	var seed []Result
	if doc.Root != nil {
		seed = []Result{nodeResult(doc.Root)}
	}
	return p.root.eval(ex, seed)
}

// Execute compiles and runs expr against doc in one step.
func Execute(doc *document.Document, mode token.Mode, expr string) ([]Result, error) {
	p, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	return p.Execute(doc, mode)
}
