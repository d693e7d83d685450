// Package parser drives the scanner's token stream through the
// explicit state machine described in spec.md §4.3, producing the
// canonical event sequence consumed by the document builder, composer
// and iterator. States are named and stacked rather than encoded in
// the Go call stack, mirroring the scanner's own explicit-state
// design.
package parser

import (
	"fmt"

	"github.com/fyyaml/fy/internal/resolve"
	"github.com/fyyaml/fy/internal/scanner"
	"github.com/fyyaml/fy/internal/token"
)

// State names one node of the parser's state machine.
type State int

const (
	StreamStartState State = iota
	ImplicitDocumentStartState
	DocumentStartState
	DocumentContentState
	DocumentEndState
	BlockNodeState
	BlockNodeOrIndentlessSequenceState
	FlowNodeState
	BlockSequenceFirstEntryState
	BlockSequenceEntryState
	IndentlessSequenceEntryState
	BlockMappingFirstKeyState
	BlockMappingKeyState
	BlockMappingValueState
	FlowSequenceFirstEntryState
	FlowSequenceEntryState
	FlowSequenceEntryMappingKeyState
	FlowSequenceEntryMappingValueState
	FlowSequenceEntryMappingEndState
	FlowMappingFirstKeyState
	FlowMappingKeyState
	FlowMappingValueState
	FlowMappingEmptyValueState
	EndState
)

func (s State) String() string {
	names := [...]string{
		"stream-start", "implicit-document-start", "document-start",
		"document-content", "document-end", "block-node",
		"block-node-or-indentless-sequence", "flow-node",
		"block-sequence-first-entry", "block-sequence-entry",
		"indentless-sequence-entry", "block-mapping-first-key",
		"block-mapping-key", "block-mapping-value",
		"flow-sequence-first-entry", "flow-sequence-entry",
		"flow-sequence-entry-mapping-key", "flow-sequence-entry-mapping-value",
		"flow-sequence-entry-mapping-end", "flow-mapping-first-key",
		"flow-mapping-key", "flow-mapping-value", "flow-mapping-empty-value",
		"end",
	}
	if int(s) < 0 || int(s) >= len(names) {
		return "unknown"
	}
	return names[s]
}

// Error is a grammar-level error with a source mark.
type Error struct {
	Mark    token.Mark
	Problem string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Mark, e.Problem)
}

func errAt(mark token.Mark, format string, args ...interface{}) error {
	return &Error{Mark: mark, Problem: fmt.Sprintf(format, args...)}
}

// Parser turns a scanner's token stream into events.
type Parser struct {
	s    *scanner.Scanner
	Mode token.Mode

	state  State
	states []State
	marks  []token.Mark

	docState *token.DocumentState

	anchors map[string]bool // names seen bound so far, for redefinition-shadow bookkeeping

	streamEndProduced bool

	pending []*token.Token // one-token lookahead buffer
}

// New creates a Parser reading tokens from s.
func New(s *scanner.Scanner, mode token.Mode) *Parser {
	return &Parser{s: s, Mode: mode, anchors: map[string]bool{}}
}

func (p *Parser) peek() (*token.Token, error) {
	if len(p.pending) > 0 {
		return p.pending[0], nil
	}
	t, err := p.s.Next()
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}
	p.pending = append(p.pending, t)
	return t, nil
}

func (p *Parser) skip() {
	if len(p.pending) > 0 {
		p.pending = p.pending[1:]
	}
}

func (p *Parser) push(s State) { p.states = append(p.states, s) }

func (p *Parser) pop() State {
	n := len(p.states) - 1
	s := p.states[n]
	p.states = p.states[:n]
	return s
}

// Next produces the next event, or nil, nil at the natural end of the
// stream (after STREAM-END has already been returned once).
func (p *Parser) Next() (*token.Event, error) {
	if p.streamEndProduced && p.state == EndState {
		return nil, nil
	}
	return p.stateMachine()
}

func (p *Parser) stateMachine() (*token.Event, error) {
	switch p.state {
	case StreamStartState:
		return p.parseStreamStart()
	case ImplicitDocumentStartState:
		return p.parseDocumentStart(true)
	case DocumentStartState:
		return p.parseDocumentStart(false)
	case DocumentContentState:
		return p.parseDocumentContent()
	case DocumentEndState:
		return p.parseDocumentEnd()
	case BlockNodeState:
		return p.parseNode(true, false)
	case BlockNodeOrIndentlessSequenceState:
		return p.parseNode(true, true)
	case FlowNodeState:
		return p.parseNode(false, false)
	case BlockSequenceFirstEntryState:
		return p.parseBlockSequenceEntry(true)
	case BlockSequenceEntryState:
		return p.parseBlockSequenceEntry(false)
	case IndentlessSequenceEntryState:
		return p.parseIndentlessSequenceEntry()
	case BlockMappingFirstKeyState:
		return p.parseBlockMappingKey(true)
	case BlockMappingKeyState:
		return p.parseBlockMappingKey(false)
	case BlockMappingValueState:
		return p.parseBlockMappingValue()
	case FlowSequenceFirstEntryState:
		return p.parseFlowSequenceEntry(true)
	case FlowSequenceEntryState:
		return p.parseFlowSequenceEntry(false)
	case FlowSequenceEntryMappingKeyState:
		return p.parseFlowSequenceEntryMappingKey()
	case FlowSequenceEntryMappingValueState:
		return p.parseFlowSequenceEntryMappingValue()
	case FlowSequenceEntryMappingEndState:
		return p.parseFlowSequenceEntryMappingEnd()
	case FlowMappingFirstKeyState:
		return p.parseFlowMappingKey(true)
	case FlowMappingKeyState:
		return p.parseFlowMappingKey(false)
	case FlowMappingValueState:
		return p.parseFlowMappingValue(false)
	case FlowMappingEmptyValueState:
		return p.parseFlowMappingValue(true)
	case EndState:
		return nil, nil
	}
	return nil, errAt(token.Mark{}, "parser in unknown state %v", p.state)
}

func (p *Parser) parseStreamStart() (*token.Event, error) {
	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	if t == nil || t.Kind != token.StreamStartToken {
		return nil, errAt(token.Mark{}, "expected STREAM-START")
	}
	p.skip()
	p.state = ImplicitDocumentStartState
	return &token.Event{Kind: token.StreamStartEvent, StartMark: t.StartMark, EndMark: t.EndMark, Encoding: t.Encoding}, nil
}

func (p *Parser) parseDocumentStart(implicit bool) (*token.Event, error) {
	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	for t != nil && t.Kind == token.DocumentEndToken {
		p.skip()
		t, err = p.peek()
		if err != nil {
			return nil, err
		}
	}
	if t != nil && t.Kind == token.StreamEndToken {
		p.skip()
		p.state = EndState
		p.streamEndProduced = true
		return &token.Event{Kind: token.StreamEndEvent, StartMark: t.StartMark, EndMark: t.EndMark}, nil
	}

	if t != nil && (t.Kind == token.VersionDirectiveToken || t.Kind == token.TagDirectiveToken || t.Kind == token.DocumentStartToken) {
		return p.parseExplicitDocumentStart()
	}
	if implicit {
		p.docState = &token.DocumentState{}
		p.push(DocumentEndState)
		p.state = BlockNodeState
		start := token.Mark{}
		if t != nil {
			start = t.StartMark
		}
		return &token.Event{Kind: token.DocumentStartEvent, StartMark: start, EndMark: start, Implicit: true}, nil
	}
	return p.parseExplicitDocumentStart()
}

func (p *Parser) parseExplicitDocumentStart() (*token.Event, error) {
	ds := &token.DocumentState{}
	start := token.Mark{}
	for {
		t, err := p.peek()
		if err != nil {
			return nil, err
		}
		if t == nil {
			break
		}
		switch t.Kind {
		case token.VersionDirectiveToken:
			ds.Version = &token.VersionDirective{Major: t.Major, Minor: t.Minor}
			p.skip()
			continue
		case token.TagDirectiveToken:
			ds.TagDirectives = append(ds.TagDirectives, token.TagDirective{Handle: t.Value, Prefix: t.Prefix})
			p.skip()
			continue
		}
		break
	}
	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	if t == nil || t.Kind != token.DocumentStartToken {
		m := token.Mark{}
		if t != nil {
			m = t.StartMark
		}
		return nil, errAt(m, "expected DOCUMENT-START")
	}
	start = t.StartMark
	p.skip()
	p.docState = ds
	p.push(DocumentEndState)
	p.state = DocumentContentState
	return &token.Event{
		Kind: token.DocumentStartEvent, StartMark: start, EndMark: start,
		VersionDirective: ds.Version, TagDirectives: ds.TagDirectives, Implicit: false,
	}, nil
}

func (p *Parser) parseDocumentContent() (*token.Event, error) {
	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	if t != nil {
		switch t.Kind {
		case token.VersionDirectiveToken, token.TagDirectiveToken, token.DocumentStartToken,
			token.DocumentEndToken, token.StreamEndToken:
			p.state = p.pop()
			return p.emptyScalar(t.StartMark)
		}
	}
	p.state = BlockNodeState
	return p.parseNode(true, false)
}

func (p *Parser) parseDocumentEnd() (*token.Event, error) {
	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	implicit := true
	start := token.Mark{}
	if t != nil {
		start = t.StartMark
	}
	if t != nil && t.Kind == token.DocumentEndToken {
		implicit = false
		p.skip()
	}
	p.state = ImplicitDocumentStartState
	return &token.Event{Kind: token.DocumentEndEvent, StartMark: start, EndMark: start, Implicit: implicit}, nil
}

func (p *Parser) emptyScalar(mark token.Mark) (*token.Event, error) {
	return &token.Event{Kind: token.ScalarEvent, StartMark: mark, EndMark: mark, Implicit: true, Style: token.PlainScalarStyle}, nil
}

// parseNode implements PARSE_BLOCK_NODE / PARSE_BLOCK_NODE_OR_INDENTLESS_SEQUENCE
// / PARSE_FLOW_NODE, consuming any leading ANCHOR and/or TAG tokens and
// dispatching on the following token kind.
func (p *Parser) parseNode(block, indentlessOK bool) (*token.Event, error) {
	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errAt(token.Mark{}, "unexpected end of stream while parsing a node")
	}

	start := t.StartMark
	var anchor, tag []byte
	var tagExplicit bool

	if t.Kind == token.AliasToken {
		p.skip()
		p.state = p.pop()
		return &token.Event{Kind: token.AliasEvent, StartMark: start, EndMark: t.EndMark, Anchor: t.Value}, nil
	}

	if t.Kind == token.AnchorToken {
		anchor = t.Value
		p.anchors[string(anchor)] = true
		p.skip()
		t, err = p.peek()
		if err != nil {
			return nil, err
		}
		if t != nil && t.Kind == token.TagToken {
			tag = p.resolveTagToken(t)
			tagExplicit = true
			p.skip()
			t, err = p.peek()
			if err != nil {
				return nil, err
			}
		}
	} else if t.Kind == token.TagToken {
		tag = p.resolveTagToken(t)
		tagExplicit = true
		p.skip()
		t, err = p.peek()
		if err != nil {
			return nil, err
		}
		if t != nil && t.Kind == token.AnchorToken {
			anchor = t.Value
			p.anchors[string(anchor)] = true
			p.skip()
			t, err = p.peek()
			if err != nil {
				return nil, err
			}
		}
	}

	if t == nil {
		return nil, errAt(start, "unexpected end of stream while parsing a node")
	}

	switch {
	case t.Kind == token.ScalarToken:
		p.skip()
		implicit := !tagExplicit
		rtag, _, rerr := resolve.Resolve(p.Mode, string(tag), string(t.Value))
		if rerr == nil && !tagExplicit {
			tag = []byte(rtag)
		}
		p.state = p.pop()
		return &token.Event{
			Kind: token.ScalarEvent, StartMark: start, EndMark: t.EndMark,
			Anchor: anchor, Tag: tag, Value: t.Value, Style: t.Style,
			Implicit: implicit && t.Style == token.PlainScalarStyle,
			QuotedImplicit: implicit && t.Style != token.PlainScalarStyle,
		}, nil

	case t.Kind == token.FlowSequenceStartToken:
		p.state = FlowSequenceFirstEntryState
		return &token.Event{Kind: token.SequenceStartEvent, StartMark: start, EndMark: t.EndMark, Anchor: anchor, Tag: tag, Implicit: !tagExplicit, Collection: token.FlowCollectionStyle}, nil

	case t.Kind == token.FlowMappingStartToken:
		p.state = FlowMappingFirstKeyState
		return &token.Event{Kind: token.MappingStartEvent, StartMark: start, EndMark: t.EndMark, Anchor: anchor, Tag: tag, Implicit: !tagExplicit, Collection: token.FlowCollectionStyle}, nil

	case block && t.Kind == token.BlockSequenceStartToken:
		p.state = BlockSequenceFirstEntryState
		return &token.Event{Kind: token.SequenceStartEvent, StartMark: start, EndMark: t.EndMark, Anchor: anchor, Tag: tag, Implicit: !tagExplicit, Collection: token.BlockCollectionStyle}, nil

	case block && indentlessOK && t.Kind == token.BlockEntryToken:
		p.state = IndentlessSequenceEntryState
		return &token.Event{Kind: token.SequenceStartEvent, StartMark: start, EndMark: t.EndMark, Anchor: anchor, Tag: tag, Implicit: !tagExplicit, Collection: token.BlockCollectionStyle}, nil

	case block && t.Kind == token.BlockMappingStartToken:
		p.state = BlockMappingFirstKeyState
		return &token.Event{Kind: token.MappingStartEvent, StartMark: start, EndMark: t.EndMark, Anchor: anchor, Tag: tag, Implicit: !tagExplicit, Collection: token.BlockCollectionStyle}, nil

	case len(anchor) > 0 || len(tag) > 0:
		p.state = p.pop()
		return &token.Event{Kind: token.ScalarEvent, StartMark: start, EndMark: start, Anchor: anchor, Tag: tag, Implicit: !tagExplicit, Style: token.PlainScalarStyle}, nil
	}
	return nil, errAt(start, "did not find expected node content")
}

func (p *Parser) resolveTagToken(t *token.Token) []byte {
	handle := string(t.Value)
	if prefix, ok := p.handlePrefix(handle, t.Directive); ok {
		return []byte(prefix + string(t.Suffix))
	}
	return append(append([]byte(nil), t.Value...), t.Suffix...)
}

func (p *Parser) handlePrefix(handle string, directive *token.Token) (string, bool) {
	if directive != nil && string(directive.Value) == handle {
		return string(directive.Prefix), true
	}
	if p.docState != nil {
		if prefix, ok := p.docState.Handle(handle); ok {
			return prefix, true
		}
	}
	switch handle {
	case "!":
		return "!", true
	case "!!":
		return "tag:yaml.org,2002:", true
	}
	return "", false
}

func (p *Parser) parseBlockSequenceEntry(first bool) (*token.Event, error) {
	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	if first {
		p.marks = append(p.marks, t.StartMark)
	}
	if t != nil && t.Kind == token.BlockEntryToken {
		p.skip()
		nt, err := p.peek()
		if err != nil {
			return nil, err
		}
		if nt != nil && nt.Kind != token.BlockEntryToken && nt.Kind != token.BlockEndToken {
			p.push(BlockSequenceEntryState)
			return p.parseNode(true, false)
		}
		p.state = BlockSequenceEntryState
		return p.emptyScalar(t.EndMark)
	}
	if t != nil && t.Kind == token.BlockEndToken {
		p.skip()
		p.popMark()
		p.state = p.pop()
		return &token.Event{Kind: token.SequenceEndEvent, StartMark: t.StartMark, EndMark: t.EndMark}, nil
	}
	m := token.Mark{}
	if t != nil {
		m = t.StartMark
	}
	return nil, errAt(m, "did not find expected '-' indicator")
}

func (p *Parser) popMark() {
	if len(p.marks) > 0 {
		p.marks = p.marks[:len(p.marks)-1]
	}
}

func (p *Parser) parseIndentlessSequenceEntry() (*token.Event, error) {
	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	if t != nil && t.Kind == token.BlockEntryToken {
		p.skip()
		nt, err := p.peek()
		if err != nil {
			return nil, err
		}
		switch {
		case nt == nil:
		case nt.Kind != token.BlockEntryToken && nt.Kind != token.KeyToken && nt.Kind != token.ValueToken && nt.Kind != token.BlockEndToken:
			p.push(IndentlessSequenceEntryState)
			return p.parseNode(true, false)
		}
		p.state = IndentlessSequenceEntryState
		return p.emptyScalar(t.EndMark)
	}
	m := token.Mark{}
	if t != nil {
		m = t.StartMark
	}
	p.state = p.pop()
	return &token.Event{Kind: token.SequenceEndEvent, StartMark: m, EndMark: m}, nil
}

func (p *Parser) parseBlockMappingKey(first bool) (*token.Event, error) {
	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	if first {
		p.marks = append(p.marks, t.StartMark)
	}
	if t != nil && t.Kind == token.KeyToken {
		p.skip()
		nt, err := p.peek()
		if err != nil {
			return nil, err
		}
		if nt != nil && nt.Kind != token.KeyToken && nt.Kind != token.ValueToken && nt.Kind != token.BlockEndToken {
			p.push(BlockMappingValueState)
			return p.parseNode(true, true)
		}
		p.state = BlockMappingValueState
		return p.emptyScalar(t.EndMark)
	}
	if t != nil && t.Kind == token.BlockEndToken {
		p.skip()
		p.popMark()
		p.state = p.pop()
		return &token.Event{Kind: token.MappingEndEvent, StartMark: t.StartMark, EndMark: t.EndMark}, nil
	}
	m := token.Mark{}
	if t != nil {
		m = t.StartMark
	}
	return nil, errAt(m, "did not find expected key")
}

func (p *Parser) parseBlockMappingValue() (*token.Event, error) {
	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	if t != nil && t.Kind == token.ValueToken {
		p.skip()
		nt, err := p.peek()
		if err != nil {
			return nil, err
		}
		if nt != nil && nt.Kind != token.KeyToken && nt.Kind != token.ValueToken && nt.Kind != token.BlockEndToken {
			p.push(BlockMappingKeyState)
			return p.parseNode(true, true)
		}
		p.state = BlockMappingKeyState
		return p.emptyScalar(t.EndMark)
	}
	m := token.Mark{}
	if t != nil {
		m = t.StartMark
	}
	p.state = BlockMappingKeyState
	return p.emptyScalar(m)
}

func (p *Parser) parseFlowSequenceEntry(first bool) (*token.Event, error) {
	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	if first {
		p.skip()
		t, err = p.peek()
		if err != nil {
			return nil, err
		}
	} else {
		if t != nil && t.Kind == token.FlowEntryToken {
			p.skip()
			t, err = p.peek()
			if err != nil {
				return nil, err
			}
		} else if t != nil && t.Kind != token.FlowSequenceEndToken {
			return nil, errAt(t.StartMark, "did not find expected ',' or ']'")
		}
	}
	if t != nil && t.Kind == token.FlowSequenceEndToken {
		p.skip()
		p.state = p.pop()
		return &token.Event{Kind: token.SequenceEndEvent, StartMark: t.StartMark, EndMark: t.EndMark}, nil
	}
	if t != nil && t.Kind == token.KeyToken {
		p.state = FlowSequenceEntryMappingKeyState
		p.skip()
		return &token.Event{Kind: token.MappingStartEvent, StartMark: t.StartMark, EndMark: t.EndMark, Implicit: true}, nil
	}
	p.push(FlowSequenceEntryState)
	return p.parseNode(false, false)
}

func (p *Parser) parseFlowSequenceEntryMappingKey() (*token.Event, error) {
	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	if t != nil && t.Kind != token.ValueToken && t.Kind != token.FlowEntryToken && t.Kind != token.FlowSequenceEndToken {
		p.push(FlowSequenceEntryMappingValueState)
		return p.parseNode(false, false)
	}
	m := token.Mark{}
	if t != nil {
		m = t.StartMark
	}
	p.state = FlowSequenceEntryMappingValueState
	return p.emptyScalar(m)
}

func (p *Parser) parseFlowSequenceEntryMappingValue() (*token.Event, error) {
	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	if t != nil && t.Kind == token.ValueToken {
		p.skip()
		nt, err := p.peek()
		if err != nil {
			return nil, err
		}
		if nt != nil && nt.Kind != token.FlowEntryToken && nt.Kind != token.FlowSequenceEndToken {
			p.push(FlowSequenceEntryMappingEndState)
			return p.parseNode(false, false)
		}
	}
	m := token.Mark{}
	if t != nil {
		m = t.StartMark
	}
	p.state = FlowSequenceEntryMappingEndState
	return p.emptyScalar(m)
}

func (p *Parser) parseFlowSequenceEntryMappingEnd() (*token.Event, error) {
	p.state = FlowSequenceEntryState
	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	m := token.Mark{}
	if t != nil {
		m = t.StartMark
	}
	return &token.Event{Kind: token.MappingEndEvent, StartMark: m, EndMark: m}, nil
}

func (p *Parser) parseFlowMappingKey(first bool) (*token.Event, error) {
	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	if first {
		p.skip()
		t, err = p.peek()
		if err != nil {
			return nil, err
		}
	} else {
		if t != nil && t.Kind == token.FlowEntryToken {
			p.skip()
			t, err = p.peek()
			if err != nil {
				return nil, err
			}
		} else if t != nil && t.Kind != token.FlowMappingEndToken {
			return nil, errAt(t.StartMark, "did not find expected ',' or '}'")
		}
	}
	if t != nil && t.Kind == token.FlowMappingEndToken {
		p.skip()
		p.state = p.pop()
		return &token.Event{Kind: token.MappingEndEvent, StartMark: t.StartMark, EndMark: t.EndMark}, nil
	}
	if t != nil && t.Kind == token.KeyToken {
		p.skip()
		nt, err := p.peek()
		if err != nil {
			return nil, err
		}
		if nt != nil && nt.Kind != token.ValueToken && nt.Kind != token.FlowEntryToken && nt.Kind != token.FlowMappingEndToken {
			p.push(FlowMappingValueState)
			return p.parseNode(false, false)
		}
		p.state = FlowMappingValueState
		return p.emptyScalar(t.EndMark)
	}
	p.push(FlowMappingEmptyValueState)
	return p.parseNode(false, false)
}

func (p *Parser) parseFlowMappingValue(empty bool) (*token.Event, error) {
	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	if empty {
		m := token.Mark{}
		if t != nil {
			m = t.StartMark
		}
		p.state = FlowMappingKeyState
		return p.emptyScalar(m)
	}
	if t != nil && t.Kind == token.ValueToken {
		p.skip()
		nt, err := p.peek()
		if err != nil {
			return nil, err
		}
		if nt != nil && nt.Kind != token.FlowEntryToken && nt.Kind != token.FlowMappingEndToken {
			p.push(FlowMappingKeyState)
			return p.parseNode(false, false)
		}
	}
	m := token.Mark{}
	if t != nil {
		m = t.StartMark
	}
	p.state = FlowMappingKeyState
	return p.emptyScalar(m)
}
