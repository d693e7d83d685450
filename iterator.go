package fy

import "github.com/fyyaml/fy/internal/document"

// Iterator replays a Document as an event stream, or walks its nodes
// depth-first, without recursion (spec.md §4.6).
type Iterator = document.Iterator

// Scope selects how much stream/document envelope an Iterator
// synthesises around a document's body.
type Scope = document.Scope

const (
	ScopeFull     = document.ScopeFull
	ScopeDocument = document.ScopeDocument
	ScopeBody     = document.ScopeBody
)

// NewIterator creates an Iterator over doc.
func NewIterator(doc *Document, scope Scope) *Iterator {
	return document.NewIterator(doc, scope)
}
