package document

import (
	"github.com/fyyaml/fy/internal/token"
)

// eventSource is satisfied by *parser.Parser; kept as an interface
// here so the document package does not import parser (avoiding an
// import cycle with packages that sit above both).
type eventSource interface {
	Next() (*token.Event, error)
}

// frame is one level of the builder's collection stack.
type frame struct {
	node       *Node
	pendingKey *Node // mapping only: key awaiting its value
}

// Builder implements the push-mode document builder of spec.md §4.4:
// Feed is called once per event and the builder maintains its own
// explicit stack, so a caller can drive it from any event source
// (a live parser, a recorded event log, or the iterator replaying an
// existing tree).
type Builder struct {
	Mode   token.Mode
	Strict bool // reject duplicate mapping keys; when false every pair is kept, duplicates included

	doc   *Document
	stack []frame
	done  bool
}

// NewBuilder creates a Builder for a fresh Document.
func NewBuilder(mode token.Mode) *Builder {
	return &Builder{Mode: mode, Strict: true, doc: New()}
}

// Document returns the document under construction (or completed).
func (b *Builder) Document() *Document { return b.doc }

// Done reports whether the builder has completed its document (seen
// its DOCUMENT-END event).
func (b *Builder) Done() bool { return b.done }

// Feed advances the builder by one event (spec.md §4.4 "push mode").
func (b *Builder) Feed(ev *token.Event) error {
	switch ev.Kind {
	case token.StreamStartEvent, token.DocumentStartEvent, token.StreamEndEvent:
		return nil
	case token.DocumentEndEvent:
		b.done = true
		return nil
	case token.AliasEvent:
		n, ok := b.doc.Resolve(string(ev.Anchor))
		if !ok {
			return &ErrUnresolvedAlias{Name: string(ev.Anchor), Mark: ev.StartMark}
		}
		return b.attach(n)
	case token.ScalarEvent:
		n := b.doc.NewNode(ScalarKind)
		n.Tag = string(ev.Tag)
		n.Anchor = string(ev.Anchor)
		n.Value = string(ev.Value)
		n.Style = ev.Style
		n.StartMark, n.EndMark = ev.StartMark, ev.EndMark
		n.Comments = token.CommentAtoms{Top: ev.HeadComment, Right: ev.LineComment, Bottom: ev.FootComment}
		if n.Anchor != "" {
			b.doc.Bind(n.Anchor, n)
		}
		return b.attach(n)
	case token.SequenceStartEvent:
		n := b.doc.NewNode(SequenceKind)
		n.Tag = string(ev.Tag)
		n.Anchor = string(ev.Anchor)
		n.Collection = ev.Collection
		n.StartMark = ev.StartMark
		if n.Anchor != "" {
			b.doc.Bind(n.Anchor, n)
		}
		return b.open(n)
	case token.SequenceEndEvent:
		return b.close(ev.EndMark)
	case token.MappingStartEvent:
		n := b.doc.NewNode(MappingKind)
		n.Tag = string(ev.Tag)
		n.Anchor = string(ev.Anchor)
		n.Collection = ev.Collection
		n.StartMark = ev.StartMark
		if n.Anchor != "" {
			b.doc.Bind(n.Anchor, n)
		}
		return b.open(n)
	case token.MappingEndEvent:
		return b.close(ev.EndMark)
	}
	return nil
}

// attach hangs a completed node (scalar, alias target, or a closed
// collection re-entered via open/close) off the current frame.
func (b *Builder) attach(n *Node) error {
	if len(b.stack) == 0 {
		b.doc.Root = n
		return nil
	}
	top := &b.stack[len(b.stack)-1]
	switch top.node.Kind {
	case SequenceKind:
		n.parent = top.node
		top.node.Items = append(top.node.Items, n)
	case MappingKind:
		if top.pendingKey == nil {
			n.parent = top.node
			top.pendingKey = n
		} else {
			n.parent = top.node
			key := top.pendingKey
			top.pendingKey = nil
			if b.Strict {
				for _, existing := range top.node.Pairs {
					if existing.Key.Equal(key) {
						return &ErrDuplicateKey{Key: key.Value, Mark: key.StartMark}
					}
				}
			}
			top.node.Pairs = append(top.node.Pairs, Pair{Key: key, Value: n})
		}
	}
	return nil
}

func (b *Builder) open(n *Node) error {
	if err := b.attach(n); err != nil {
		return err
	}
	b.stack = append(b.stack, frame{node: n})
	return nil
}

func (b *Builder) close(end token.Mark) error {
	if len(b.stack) == 0 {
		return nil
	}
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	top.node.EndMark = end
	if len(b.stack) == 0 {
		b.doc.Root = top.node
	}
	return nil
}

// Build drives the builder in pull mode: it calls src.Next()
// repeatedly until a full document has been read (or an error/EOF
// occurs), returning the assembled Document.
func Build(src eventSource, mode token.Mode, strict bool) (*Document, error) {
	b := NewBuilder(mode)
	b.Strict = strict
	for {
		ev, err := src.Next()
		if err != nil {
			return nil, err
		}
		if ev == nil {
			break
		}
		if err := b.Feed(ev); err != nil {
			return nil, err
		}
		if ev.Kind == token.StreamEndEvent {
			break
		}
		if b.done {
			break
		}
	}
	return b.Document(), nil
}
