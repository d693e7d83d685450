package fy

import "github.com/fyyaml/fy/internal/ypath"

// PathProgram is a compiled path expression (spec.md §4.8-§4.9), ready
// to run against any Document parsed under a compatible Mode.
type PathProgram = ypath.Program

// PathResult is one match produced by running a PathProgram: either a
// reference to a tree Node, or a literal scalar produced by a
// comparison or arithmetic expression.
type PathResult = ypath.Result

// CompilePath parses a path expression once so it can be run
// repeatedly against multiple documents.
func CompilePath(expr string) (*PathProgram, error) {
	return ypath.Compile(expr)
}

// RunPath compiles and immediately executes expr against doc.
//
// A compiled PathProgram's own Execute(doc, mode) method (inherited
// through the PathProgram alias) is cheaper for repeated evaluation
// of the same expression.
func RunPath(doc *Document, mode Mode, expr string) ([]PathResult, error) {
	return ypath.Execute(doc, mode, expr)
}
