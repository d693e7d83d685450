// Package emitter renders a stream of token.Event values back into
// YAML bytes (spec.md §4.7). Its shape mirrors the parser: an explicit
// state machine (rather than recursion) drives per-event output
// decisions, with a short lookahead queue so a START event can see
// enough of what follows it to decide block-vs-flow and plain-vs-quoted
// before writing anything.
package emitter

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/fyyaml/fy/internal/token"
)

type emitterState int

const (
	emitStreamStartState emitterState = iota

	emitFirstDocumentStartState
	emitDocumentStartState
	emitDocumentContentState
	emitDocumentEndState
	emitFlowSequenceFirstItemState
	emitFlowSequenceItemState
	emitFlowSequenceTrailItemState
	emitFlowMappingFirstKeyState
	emitFlowMappingKeyState
	emitFlowMappingTrailKeyState
	emitFlowMappingSimpleValueState
	emitFlowMappingValueState
	emitBlockSequenceFirstItemState
	emitBlockSequenceItemState
	emitBlockMappingFirstKeyState
	emitBlockMappingKeyState
	emitBlockMappingSimpleValueState
	emitBlockMappingValueState
	emitEndState
)

// Option configures an Emitter (functional-options style).
type Option func(*Emitter)

// WithIndent sets the block indentation width (default 2).
func WithIndent(n int) Option {
	return func(e *Emitter) {
		if n > 1 {
			e.indent = n
		}
	}
}

// WithWidth sets the preferred output line width; <= 0 disables
// width-based folding of plain/folded scalars.
func WithWidth(n int) Option {
	return func(e *Emitter) { e.width = n }
}

// WithFlow forces every collection to flow style regardless of the
// style recorded on its node/event.
func WithFlow(flow bool) Option {
	return func(e *Emitter) { e.forceFlow = flow }
}

// WithMode records the YAML/JSON dialect on the Emitter. Scalar style
// and tag output do not consult it: a tag is written whenever the
// event carries one and is not marked implicit.
func WithMode(mode token.Mode) Option {
	return func(e *Emitter) { e.mode = mode }
}

// Emitter is a single-use, single-stream event sink.
type Emitter struct {
	writer io.Writer

	indent    int
	width     int
	forceFlow bool
	mode      token.Mode
	encoding  token.Encoding

	state  emitterState
	states []emitterState

	eventsQueue []token.Event
	eventsHead  int

	indentStack []int
	indentLevel int

	flowLevel int

	rootContext      bool
	simpleKeyContext bool

	line, column      int
	lastCharWhitespace bool
	lastCharIndent     bool
	openEnded          bool
	footIndent         int

	headComment    []byte
	lineComment    []byte
	footComment    []byte
	tailComment    []byte
	keyLineComment []byte

	tagDirectives []token.TagDirective

	anchorData struct {
		anchor []byte
		alias  bool
	}
	tagData struct {
		handle string
		suffix string
		verbatim string
	}
	scalarData struct {
		value               []byte
		multiline           bool
		flowPlainAllowed    bool
		blockPlainAllowed   bool
		singleQuotedAllowed bool
		blockAllowed        bool
		style               token.ScalarStyle
	}
}

// New creates an Emitter writing to w.
func New(w io.Writer, opts ...Option) *Emitter {
	e := &Emitter{
		writer:           w,
		indent:           2,
		width:            80,
		lastCharIndent:   true,
		footIndent:       -1,
		states:           make([]emitterState, 0, token.InitialStackSize),
		eventsQueue:      make([]token.Event, 0, token.InitialQueueSize),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Emit queues event and drains whatever is now fully bufferable. final
// marks the end of the stream: it suppresses the trailing "..." an
// open-ended last document would otherwise get at STREAM-END.
func (e *Emitter) Emit(event *token.Event, final bool) error {
	if final {
		e.openEnded = false
	}
	e.eventsQueue = append(e.eventsQueue, *event)
	for e.readyToEmit() {
		if err := e.analyzeEvent(&e.eventsQueue[e.eventsHead]); err != nil {
			return err
		}
		if err := e.stateMachine(&e.eventsQueue[e.eventsHead]); err != nil {
			return err
		}
		e.eventsHead++
	}
	return nil
}

// readyToEmit reports whether enough lookahead has accumulated to
// process the head event: START events need to see their first child
// (or matching END, for an empty collection) to decide style.
func (e *Emitter) readyToEmit() bool {
	if e.eventsHead == len(e.eventsQueue) {
		return false
	}
	var accumulate int
	switch e.eventsQueue[e.eventsHead].Kind {
	case token.DocumentStartEvent:
		accumulate = 1
	case token.SequenceStartEvent:
		accumulate = 2
	case token.MappingStartEvent:
		accumulate = 3
	default:
		return true
	}
	if len(e.eventsQueue)-e.eventsHead > accumulate {
		return true
	}
	var level int
	for i := e.eventsHead; i < len(e.eventsQueue); i++ {
		switch e.eventsQueue[i].Kind {
		case token.StreamStartEvent, token.DocumentStartEvent, token.SequenceStartEvent, token.MappingStartEvent:
			level++
		case token.StreamEndEvent, token.DocumentEndEvent, token.SequenceEndEvent, token.MappingEndEvent:
			level--
		}
		if level == 0 {
			return true
		}
	}
	return false
}

func (e *Emitter) push(s emitterState) { e.states = append(e.states, s) }

func (e *Emitter) pop() emitterState {
	n := len(e.states) - 1
	s := e.states[n]
	e.states = e.states[:n]
	return s
}

func (e *Emitter) increaseIndent(flow, indentless bool) {
	e.indentStack = append(e.indentStack, e.indentLevel)
	if e.indentLevel < 0 {
		if flow {
			e.indentLevel = e.indent
		} else {
			e.indentLevel = 0
		}
		return
	}
	if !indentless {
		if len(e.states) > 0 && e.states[len(e.states)-1] == emitBlockSequenceItemState {
			e.indentLevel += 2
		} else {
			e.indentLevel = e.indent * ((e.indentLevel + e.indent) / e.indent)
		}
	}
}

func (e *Emitter) restoreIndent() {
	n := len(e.indentStack) - 1
	e.indentLevel = e.indentStack[n]
	e.indentStack = e.indentStack[:n]
}

func appendTagDirective(e *Emitter, td token.TagDirective, allowDuplicates bool) error {
	for _, existing := range e.tagDirectives {
		if bytes.Equal(existing.Handle, td.Handle) {
			if allowDuplicates {
				return nil
			}
			return errors.New("fy: duplicate %TAG directive")
		}
	}
	e.tagDirectives = append(e.tagDirectives, token.TagDirective{
		Handle: append([]byte(nil), td.Handle...),
		Prefix: append([]byte(nil), td.Prefix...),
	})
	return nil
}

// --- low-level byte primitives ---

func (e *Emitter) put(b byte) error {
	if _, err := e.writer.Write([]byte{b}); err != nil {
		return fmt.Errorf("fy: emit write: %w", err)
	}
	e.column++
	e.lastCharWhitespace = b == ' '
	e.lastCharIndent = false
	return nil
}

func (e *Emitter) putBreak() error {
	if _, err := e.writer.Write([]byte{'\n'}); err != nil {
		return fmt.Errorf("fy: emit write: %w", err)
	}
	e.column = 0
	e.line++
	e.lastCharIndent = true
	return nil
}

func (e *Emitter) writeStr(s string) error {
	if _, err := io.WriteString(e.writer, s); err != nil {
		return fmt.Errorf("fy: emit write: %w", err)
	}
	e.column += len([]rune(s))
	if len(s) > 0 {
		e.lastCharWhitespace = s[len(s)-1] == ' '
		e.lastCharIndent = false
	}
	return nil
}

func (e *Emitter) writeIndent() error {
	indent := e.indentLevel
	if indent < 0 {
		indent = 0
	}
	if !e.lastCharIndent || e.column > indent || (e.column == indent && !e.lastCharWhitespace) {
		if err := e.putBreak(); err != nil {
			return err
		}
	}
	if e.footIndent == indent {
		if err := e.putBreak(); err != nil {
			return err
		}
	}
	for e.column < indent {
		if err := e.put(' '); err != nil {
			return err
		}
	}
	e.lastCharWhitespace = true
	e.footIndent = -1
	return nil
}

// writeAll writes b verbatim, without touching column/whitespace
// bookkeeping beyond a flat column bump (used for multi-byte runs
// whose content the caller has already classified).
func (e *Emitter) writeAll(b []byte) error {
	if _, err := e.writer.Write(b); err != nil {
		return fmt.Errorf("fy: emit write: %w", err)
	}
	e.column += len(b)
	return nil
}

// write copies the single code point at the front of value, returning
// its byte width.
func (e *Emitter) write(value []byte) (int, error) {
	w := token.Width(value[0])
	if w == 0 {
		w = 1
	}
	if err := e.writeAll(value[:w]); err != nil {
		return 0, err
	}
	return w, nil
}

// writeBreak normalises the line break at the front of value to '\n'
// and returns its original byte width.
func (e *Emitter) writeBreak(value []byte) (int, error) {
	if value[0] == '\n' {
		if err := e.putBreak(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	w := token.Width(value[0])
	if w == 0 {
		w = 1
	}
	if err := e.putBreak(); err != nil {
		return 0, err
	}
	return w, nil
}

func (e *Emitter) writeIndicator(indicator string, needWhitespace, isWhitespace, isIndention bool) error {
	if needWhitespace && !e.lastCharWhitespace {
		if err := e.put(' '); err != nil {
			return err
		}
	}
	if err := e.writeStr(indicator); err != nil {
		return err
	}
	e.lastCharWhitespace = isWhitespace
	e.lastCharIndent = e.lastCharIndent && isIndention
	e.openEnded = false
	return nil
}
