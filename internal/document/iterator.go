package document

import "github.com/fyyaml/fy/internal/token"

// streamPhase tracks the iterator's position relative to the
// stream/document envelope events (spec.md §4.6: "masked by a
// configuration flag that restricts to body-only, body+document, or
// full stream").
type streamPhase int

const (
	phaseStreamStart streamPhase = iota
	phaseDocumentStart
	phaseBody
	phaseDocumentEnd
	phaseStreamEnd
	phaseDone
)

// Scope selects how much of the stream envelope GenerateNext
// synthesises around a document's body.
type Scope int

const (
	// ScopeFull emits stream-start/end and document-start/end around
	// the body (the default: a standalone replay of one document).
	ScopeFull Scope = iota
	// ScopeDocument emits document-start/end but not stream-start/end
	// (for attaching to a parser that already owns the stream frame).
	ScopeDocument
	// ScopeBody emits only the node events, no envelope at all.
	ScopeBody
)

// iterFrame is one level of the generator's explicit cursor stack
// (spec.md §4.6 "internal cursor is a position (node, child-index,
// phase) stack"), replacing what would otherwise be call-stack
// recursion over the tree.
type iterFrame struct {
	node       *Node
	childIndex int
	keyPhase   bool // mapping only: next event is the pair's key, not its value
	started    bool // START event for this frame already produced
}

// Iterator replays a Document as a token.Event stream in exactly the
// order that would have produced it (spec.md §4.6), or walks its nodes
// depth-first without synthesising events. Events are owned by the
// iterator; GenerateNext reuses its return value across calls only in
// the sense that callers must not retain a *token.Event past the next
// call (mirrors spec.md's "freed events may be recycled").
type Iterator struct {
	doc   *Document
	scope Scope
	phase streamPhase
	stack []iterFrame

	nodeStack []*Node // NodeNext's independent cursor (plain preorder stack)
}

// NewIterator creates an Iterator over doc.
func NewIterator(doc *Document, scope Scope) *Iterator {
	return &Iterator{doc: doc, scope: scope}
}

// GenerateNext synthesises the next event of the replay, or returns
// (nil, nil) once the configured scope is exhausted.
func (it *Iterator) GenerateNext() (*token.Event, error) {
	switch it.phase {
	case phaseStreamStart:
		it.phase = phaseDocumentStart
		if it.scope == ScopeFull {
			return &token.Event{Kind: token.StreamStartEvent}, nil
		}
		fallthrough
	case phaseDocumentStart:
		it.phase = phaseBody
		if it.scope != ScopeBody {
			ev := &token.Event{Kind: token.DocumentStartEvent}
			if it.doc != nil {
				ev.VersionDirective = it.doc.State.Version
				ev.TagDirectives = it.doc.State.TagDirectives
			}
			return ev, nil
		}
		fallthrough
	case phaseBody:
		if it.doc == nil || it.doc.Root == nil {
			it.phase = phaseDocumentEnd
			return it.GenerateNext()
		}
		if it.stack == nil {
			it.stack = []iterFrame{{node: it.doc.Root}}
		}
		ev, done, err := it.stepBody()
		if err != nil {
			return nil, err
		}
		if done {
			it.phase = phaseDocumentEnd
			if ev != nil {
				return ev, nil
			}
			return it.GenerateNext()
		}
		return ev, nil
	case phaseDocumentEnd:
		it.phase = phaseStreamEnd
		if it.scope != ScopeBody {
			return &token.Event{Kind: token.DocumentEndEvent}, nil
		}
		fallthrough
	case phaseStreamEnd:
		it.phase = phaseDone
		if it.scope == ScopeFull {
			return &token.Event{Kind: token.StreamEndEvent}, nil
		}
		return nil, nil
	}
	return nil, nil
}

// stepBody advances the tree-walking cursor by exactly one event.
// done reports that the root's closing event has just been produced
// (or there was nothing to produce).
func (it *Iterator) stepBody() (*token.Event, bool, error) {
	if len(it.stack) == 0 {
		return nil, true, nil
	}
	top := &it.stack[len(it.stack)-1]

	if !top.started {
		top.started = true
		switch top.node.Kind {
		case ScalarKind:
			ev := nodeScalarEvent(top.node)
			it.popFrame()
			return ev, len(it.stack) == 0, nil
		case SequenceKind:
			return nodeCollectionStartEvent(top.node, token.SequenceStartEvent), false, nil
		case MappingKind:
			top.keyPhase = true
			return nodeCollectionStartEvent(top.node, token.MappingStartEvent), false, nil
		}
	}

	switch top.node.Kind {
	case SequenceKind:
		if top.childIndex < len(top.node.Items) {
			child := top.node.Items[top.childIndex]
			top.childIndex++
			it.stack = append(it.stack, iterFrame{node: child})
			return it.stepBody()
		}
		ev := &token.Event{Kind: token.SequenceEndEvent, EndMark: top.node.EndMark}
		it.popFrame()
		return ev, len(it.stack) == 0, nil
	case MappingKind:
		if top.childIndex < len(top.node.Pairs) {
			pair := top.node.Pairs[top.childIndex]
			if top.keyPhase {
				top.keyPhase = false
				it.stack = append(it.stack, iterFrame{node: pair.Key})
				return it.stepBody()
			}
			top.childIndex++
			top.keyPhase = true
			it.stack = append(it.stack, iterFrame{node: pair.Value})
			return it.stepBody()
		}
		ev := &token.Event{Kind: token.MappingEndEvent, EndMark: top.node.EndMark}
		it.popFrame()
		return ev, len(it.stack) == 0, nil
	}
	return nil, true, nil
}

func (it *Iterator) popFrame() {
	it.stack = it.stack[:len(it.stack)-1]
}

func nodeScalarEvent(n *Node) *token.Event {
	return &token.Event{
		Kind:      token.ScalarEvent,
		StartMark: n.StartMark, EndMark: n.EndMark,
		Anchor: []byte(n.Anchor),
		Tag:    []byte(n.Tag),
		Value:  []byte(n.Value),
		Style:  n.Style,
		HeadComment: n.Comments.Top,
		LineComment: n.Comments.Right,
		FootComment: n.Comments.Bottom,
	}
}

func nodeCollectionStartEvent(n *Node, kind token.EventKind) *token.Event {
	return &token.Event{
		Kind:      kind,
		StartMark: n.StartMark,
		Anchor:    []byte(n.Anchor),
		Tag:       []byte(n.Tag),
		Collection: n.Collection,
		HeadComment: n.Comments.Top,
		LineComment: n.Comments.Right,
		FootComment: n.Comments.Bottom,
	}
}

// NodeNext performs a depth-first, document-order visit of nodes only
// (spec.md §4.6 node_next), independent of GenerateNext's cursor. The
// explicit stack holds nodes still awaiting a visit, pushed in reverse
// child order so the leftmost child pops first.
func (it *Iterator) NodeNext() (*Node, error) {
	if it.nodeStack == nil {
		if it.doc == nil || it.doc.Root == nil {
			return nil, nil
		}
		it.nodeStack = []*Node{it.doc.Root}
	}
	if len(it.nodeStack) == 0 {
		return nil, nil
	}
	n := it.nodeStack[len(it.nodeStack)-1]
	it.nodeStack = it.nodeStack[:len(it.nodeStack)-1]

	switch n.Kind {
	case SequenceKind:
		for i := len(n.Items) - 1; i >= 0; i-- {
			it.nodeStack = append(it.nodeStack, n.Items[i])
		}
	case MappingKind:
		for i := len(n.Pairs) - 1; i >= 0; i-- {
			it.nodeStack = append(it.nodeStack, n.Pairs[i].Value, n.Pairs[i].Key)
		}
	}
	return n, nil
}
