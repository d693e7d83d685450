// Package document implements the in-memory tree model described in
// spec.md §3 (Node, Document) and §4.4 (the document builder, in both
// push and pull modes). A Document owns its Nodes and an anchor table
// for O(1) alias resolution; Nodes know their owning Document and
// parent so Path (§3) can be derived without a separate traversal.
package document

import (
	"fmt"

	"github.com/fyyaml/fy/internal/token"
	"github.com/google/uuid"
)

// Kind is a node's shape.
type Kind int8

const (
	ScalarKind Kind = iota
	SequenceKind
	MappingKind
)

func (k Kind) String() string {
	switch k {
	case ScalarKind:
		return "scalar"
	case SequenceKind:
		return "sequence"
	case MappingKind:
		return "mapping"
	}
	return "unknown"
}

// Pair is one key/value entry of a mapping, kept in insertion order so
// round-tripping preserves source order (spec.md §8 round-trip law).
type Pair struct {
	Key   *Node
	Value *Node
}

// Node is one tree node: scalar, sequence or mapping.
type Node struct {
	doc    *Document
	parent *Node

	Kind Kind
	Tag  string
	Anchor string

	Style       token.ScalarStyle
	Collection  token.CollectionStyle

	// ScalarKind payload.
	Value string

	// SequenceKind payload.
	Items []*Node

	// MappingKind payload, insertion ordered.
	Pairs []Pair

	Comments token.CommentAtoms

	StartMark, EndMark token.Mark
}

// Document returns the owning Document.
func (n *Node) Document() *Document { return n.doc }

// Parent returns the node's parent, or nil at the document root.
func (n *Node) Parent() *Node { return n.parent }

// IsScalar, IsSequence, IsMapping are Kind convenience predicates.
func (n *Node) IsScalar() bool   { return n.Kind == ScalarKind }
func (n *Node) IsSequence() bool { return n.Kind == SequenceKind }
func (n *Node) IsMapping() bool  { return n.Kind == MappingKind }

// MapGet looks up a mapping's value by a scalar key's literal text,
// returning (nil, false) if absent or if n is not a mapping.
func (n *Node) MapGet(key string) (*Node, bool) {
	if n.Kind != MappingKind {
		return nil, false
	}
	for _, p := range n.Pairs {
		if p.Key != nil && p.Key.Kind == ScalarKind && p.Key.Value == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Equal reports structural YAML equality: same Kind, same Value for
// scalars, same Items in order for sequences, and same Pairs in order
// for mappings. Tags are not compared; callers wanting tag-strict
// equality compare Tag themselves. Anchors, styles and comments are
// presentation detail and are not compared either (spec.md §9
// supplemented feature).
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Kind != o.Kind {
		return false
	}
	switch n.Kind {
	case ScalarKind:
		return n.Value == o.Value
	case SequenceKind:
		if len(n.Items) != len(o.Items) {
			return false
		}
		for i := range n.Items {
			if !n.Items[i].Equal(o.Items[i]) {
				return false
			}
		}
		return true
	case MappingKind:
		if len(n.Pairs) != len(o.Pairs) {
			return false
		}
		for i := range n.Pairs {
			if !n.Pairs[i].Key.Equal(o.Pairs[i].Key) || !n.Pairs[i].Value.Equal(o.Pairs[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// PathComponent is one step of a Path: either a mapping key (Field
// set) or a sequence index (Field empty, Index valid).
type PathComponent struct {
	Field string
	Index int
	IsKey bool // true when Field addresses a key node itself, not its value
}

// Path returns the component chain from the document root to n.
func (n *Node) Path() []PathComponent {
	var rev []PathComponent
	cur := n
	for cur != nil && cur.parent != nil {
		p := cur.parent
		switch p.Kind {
		case SequenceKind:
			for i, it := range p.Items {
				if it == cur {
					rev = append(rev, PathComponent{Index: i})
					break
				}
			}
		case MappingKind:
			for _, pair := range p.Pairs {
				if pair.Value == cur {
					rev = append(rev, PathComponent{Field: pair.Key.Value})
					break
				}
				if pair.Key == cur {
					rev = append(rev, PathComponent{Field: pair.Key.Value, IsKey: true})
					break
				}
			}
		}
		cur = p
	}
	out := make([]PathComponent, len(rev))
	for i, c := range rev {
		out[len(rev)-1-i] = c
	}
	return out
}

// Document is a single parsed YAML document: its root node plus the
// anchor table needed to resolve aliases in O(1) and the version/tag
// directive state that produced it.
type Document struct {
	Root  *Node
	State token.DocumentState

	anchors map[string]*Node

	// Implicit records whether this document lacked an explicit "---".
	Implicit bool
}

// New creates an empty Document.
func New() *Document {
	return &Document{anchors: map[string]*Node{}}
}

// NewNode allocates a Node owned by d.
func (d *Document) NewNode(kind Kind) *Node {
	return &Node{doc: d, Kind: kind}
}

// Bind records (or, per spec.md §9's anchor-redefinition decision,
// re-records) the node addressed by an anchor name. A later binding
// shadows an earlier one for any alias resolved after the rebind;
// aliases already resolved against the earlier node keep their
// original pointer since Document.Resolve copies the pointer at
// resolution time, not by name.
func (d *Document) Bind(name string, n *Node) {
	if name == "" {
		return
	}
	d.anchors[name] = n
}

// Resolve looks up the node currently bound to an anchor name.
func (d *Document) Resolve(name string) (*Node, bool) {
	n, ok := d.anchors[name]
	return n, ok
}

// MintAnchor assigns n a fresh, collision-free anchor name and binds
// it, returning the name. If n already has an anchor, that anchor is
// (re-)bound and returned unchanged. This is for trees assembled
// programmatically rather than parsed, where a caller wants to alias
// a node it never gave an explicit anchor to.
func (d *Document) MintAnchor(n *Node) string {
	if n.Anchor == "" {
		n.Anchor = "fy" + uuid.NewString()[:8]
	}
	d.Bind(n.Anchor, n)
	return n.Anchor
}

// ErrUnresolvedAlias is returned by the builder when an ALIAS event
// names an anchor with no current binding.
type ErrUnresolvedAlias struct {
	Name string
	Mark token.Mark
}

func (e *ErrUnresolvedAlias) Error() string {
	return fmt.Sprintf("%s: unresolved alias *%s", e.Mark, e.Name)
}

// ErrDuplicateKey is returned by the builder in strict mode when a
// mapping defines the same key literal twice (spec.md §9 open
// question a, default resolution: strict).
type ErrDuplicateKey struct {
	Key  string
	Mark token.Mark
}

func (e *ErrDuplicateKey) Error() string {
	return fmt.Sprintf("%s: duplicate mapping key %q", e.Mark, e.Key)
}
