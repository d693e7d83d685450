//
// Copyright (c) 2011-2019 Canonical Ltd
// Copyright (c) 2006-2010 Kirill Simonov
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package token defines the shared vocabulary of the core: marks, atoms,
// tokens, events and document state, as produced by the scanner and
// consumed by the parser, builder, composer and emitter.
package token

import "fmt"

// Mark is a byte-offset, line, column position attached to every token
// and event.
type Mark struct {
	Index  int
	Line   int
	Column int
}

func (m Mark) String() string {
	return fmt.Sprintf("line %d, column %d", m.Line+1, m.Column+1)
}

// LessEq reports whether m precedes or equals other in byte order.
func (m Mark) LessEq(other Mark) bool {
	return m.Index <= other.Index
}

// Encoding is the stream encoding detected by the input reader.
type Encoding int

const (
	AnyEncoding Encoding = iota
	UTF8Encoding
	UTF16LEEncoding
	UTF16BEEncoding
	UTF32LEEncoding
	UTF32BEEncoding
)

// LineBreak names a line-break convention. The input reader does not
// consult it: CR, LF and CRLF always collapse to one break.
type LineBreak int

const (
	AnyBreak LineBreak = iota
	CRBreak
	LFBreak
	CRLFBreak
)

// Mode selects the YAML version / JSON compatibility dialect in effect.
type Mode int

const (
	ModeYAML11 Mode = iota
	ModeYAML12
	ModeYAML13
	ModeJSON
)

func (m Mode) String() string {
	switch m {
	case ModeYAML11:
		return "yaml1.1"
	case ModeYAML12:
		return "yaml1.2"
	case ModeYAML13:
		return "yaml1.3"
	case ModeJSON:
		return "json"
	}
	return "unknown"
}

// ScalarStyle is one of the five scalar presentation styles, plus the
// two auxiliary atom styles (uri, comment) used internally by tokens
// that are not themselves scalars.
type ScalarStyle int8

const (
	AnyScalarStyle ScalarStyle = iota
	PlainScalarStyle
	SingleQuotedScalarStyle
	DoubleQuotedScalarStyle
	LiteralScalarStyle
	FoldedScalarStyle
	URIStyle
	CommentStyle
)

func (s ScalarStyle) String() string {
	switch s {
	case PlainScalarStyle:
		return "plain"
	case SingleQuotedScalarStyle:
		return "single-quoted"
	case DoubleQuotedScalarStyle:
		return "double-quoted"
	case LiteralScalarStyle:
		return "literal"
	case FoldedScalarStyle:
		return "folded"
	case URIStyle:
		return "uri"
	case CommentStyle:
		return "comment"
	}
	return "any"
}

// CollectionStyle covers both sequence and mapping presentation.
type CollectionStyle int8

const (
	AnyCollectionStyle CollectionStyle = iota
	BlockCollectionStyle
	FlowCollectionStyle
)

// Chomp is the trailing-newline handling mode of a block scalar.
type Chomp int8

const (
	ClipChomp Chomp = iota // default: single trailing break kept
	StripChomp              // '-': no trailing break
	KeepChomp               // '+': all trailing breaks kept
)

// Kind enumerates token kinds, partitioned as described in spec.md §3.
type Kind int

const (
	NoToken Kind = iota

	StreamStartToken
	StreamEndToken

	VersionDirectiveToken
	TagDirectiveToken
	DocumentStartToken
	DocumentEndToken

	BlockSequenceStartToken
	BlockMappingStartToken
	BlockEndToken

	FlowSequenceStartToken
	FlowSequenceEndToken
	FlowMappingStartToken
	FlowMappingEndToken

	BlockEntryToken
	FlowEntryToken
	KeyToken
	ValueToken

	AliasToken
	AnchorToken
	TagToken
	ScalarToken
)

func (k Kind) String() string {
	switch k {
	case NoToken:
		return "NO_TOKEN"
	case StreamStartToken:
		return "STREAM_START"
	case StreamEndToken:
		return "STREAM_END"
	case VersionDirectiveToken:
		return "VERSION_DIRECTIVE"
	case TagDirectiveToken:
		return "TAG_DIRECTIVE"
	case DocumentStartToken:
		return "DOCUMENT_START"
	case DocumentEndToken:
		return "DOCUMENT_END"
	case BlockSequenceStartToken:
		return "BLOCK_SEQUENCE_START"
	case BlockMappingStartToken:
		return "BLOCK_MAPPING_START"
	case BlockEndToken:
		return "BLOCK_END"
	case FlowSequenceStartToken:
		return "FLOW_SEQUENCE_START"
	case FlowSequenceEndToken:
		return "FLOW_SEQUENCE_END"
	case FlowMappingStartToken:
		return "FLOW_MAPPING_START"
	case FlowMappingEndToken:
		return "FLOW_MAPPING_END"
	case BlockEntryToken:
		return "BLOCK_ENTRY"
	case FlowEntryToken:
		return "FLOW_ENTRY"
	case KeyToken:
		return "KEY"
	case ValueToken:
		return "VALUE"
	case AliasToken:
		return "ALIAS"
	case AnchorToken:
		return "ANCHOR"
	case TagToken:
		return "TAG"
	case ScalarToken:
		return "SCALAR"
	}
	return "<unknown token>"
}

// CommentAtoms is the optional 3-slot comment attachment on a token:
// top (head), right (line) and bottom (foot).
type CommentAtoms struct {
	Top    []byte
	Right  []byte
	Bottom []byte
}

// Token is a tagged record: kind, source marks, optional comments and
// a kind-specific payload. Tokens carry a reference count (Retain,
// Release, Event.Attach); the scanner and parser do not update it.
type Token struct {
	Kind                 Kind
	StartMark, EndMark   Mark
	refs                 int

	Comments *CommentAtoms

	// ANCHOR, ALIAS, SCALAR, TAG_DIRECTIVE handle payload.
	Value []byte

	// TAG_TOKEN suffix, or verbatim tag body.
	Suffix []byte

	// TAG_DIRECTIVE prefix.
	Prefix []byte

	// SCALAR_TOKEN styling.
	Style  ScalarStyle
	Chomp  Chomp
	IndentIncrement int

	// Atom flags (spec.md §3 Atom).
	DirectOutput     bool
	StorageHintValid bool
	Empty            bool

	// STREAM_START_TOKEN.
	Encoding Encoding

	// VERSION_DIRECTIVE_TOKEN.
	Major, Minor int8

	// TAG_TOKEN: back-reference to the tag-directive token whose
	// prefix resolves this tag's handle. Nil for verbatim/primary/
	// secondary handles that aren't backed by an explicit directive.
	Directive *Token
}

// Retain increments the token's reference count.
func (t *Token) Retain() *Token {
	if t != nil {
		t.refs++
	}
	return t
}

// Release decrements the token's reference count. Tokens are not
// pooled across parser instances (spec.md §9: recycling is an
// allocator optimisation, not a contract), so Release does nothing
// beyond that bookkeeping.
func (t *Token) Release() {
	if t == nil {
		return
	}
	t.refs--
}

// VersionDirective is the parsed form of a %YAML directive.
type VersionDirective struct {
	Major, Minor int8
}

// TagDirective is a %TAG directive: handle -> prefix.
type TagDirective struct {
	Handle []byte
	Prefix []byte
}

// SimpleKey is a scanner-only candidate for promotion to a KEY token.
type SimpleKey struct {
	Possible    bool
	Required    bool
	TokenNumber int
	Mark        Mark
	FlowLevel   int
}

// EventKind enumerates the canonical parser output (spec.md §3 Event).
type EventKind int8

const (
	NoEvent EventKind = iota
	StreamStartEvent
	StreamEndEvent
	DocumentStartEvent
	DocumentEndEvent
	AliasEvent
	ScalarEvent
	SequenceStartEvent
	SequenceEndEvent
	MappingStartEvent
	MappingEndEvent
)

var eventNames = [...]string{
	NoEvent:             "none",
	StreamStartEvent:    "stream-start",
	StreamEndEvent:      "stream-end",
	DocumentStartEvent:  "document-start",
	DocumentEndEvent:    "document-end",
	AliasEvent:          "alias",
	ScalarEvent:         "scalar",
	SequenceStartEvent:  "sequence-start",
	SequenceEndEvent:    "sequence-end",
	MappingStartEvent:   "mapping-start",
	MappingEndEvent:     "mapping-end",
}

func (e EventKind) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return fmt.Sprintf("unknown event %d", e)
	}
	return eventNames[e]
}

// DocumentState is the effective tag-directive set and YAML version at
// a point in the stream (spec.md §3 Document state).
type DocumentState struct {
	Version        *VersionDirective
	TagDirectives  []TagDirective
}

// Handle looks up the prefix bound to handle in this document state,
// falling back to the default handles ("!" and "!!") when not
// explicitly overridden.
func (ds *DocumentState) Handle(handle string) (string, bool) {
	if ds != nil {
		for i := range ds.TagDirectives {
			if string(ds.TagDirectives[i].Handle) == handle {
				return string(ds.TagDirectives[i].Prefix), true
			}
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

// Event is the discriminated union described in spec.md §3. Only the
// fields relevant to Kind are populated.
type Event struct {
	Kind               EventKind
	StartMark, EndMark Mark

	Encoding Encoding

	VersionDirective *VersionDirective
	TagDirectives    []TagDirective

	HeadComment []byte
	LineComment []byte
	FootComment []byte

	Anchor []byte
	Tag    []byte
	Value  []byte

	Implicit       bool
	QuotedImplicit bool

	Style      ScalarStyle
	Collection CollectionStyle // SEQUENCE-START/MAPPING-START only

	// Tokens backing this event, retained for their lifetime so the
	// underlying atom bytes stay valid for callers that hold onto an
	// Event after the scanner's queue has advanced.
	tokens []*Token
}

// Attach retains t and records it as backing this event.
func (e *Event) Attach(t *Token) {
	if t == nil {
		return
	}
	t.Retain()
	e.tokens = append(e.tokens, t)
}

// Release drops the event's references to its backing tokens.
func (e *Event) Release() {
	for _, t := range e.tokens {
		t.Release()
	}
	e.tokens = nil
}

// Core schema tags (spec.md glossary: Tag).
const (
	NullTag      = "tag:yaml.org,2002:null"
	BoolTag      = "tag:yaml.org,2002:bool"
	StrTag       = "tag:yaml.org,2002:str"
	IntTag       = "tag:yaml.org,2002:int"
	FloatTag     = "tag:yaml.org,2002:float"
	TimestampTag = "tag:yaml.org,2002:timestamp"
	SeqTag       = "tag:yaml.org,2002:seq"
	MapTag       = "tag:yaml.org,2002:map"
	BinaryTag    = "tag:yaml.org,2002:binary"
	MergeTag     = "tag:yaml.org,2002:merge"

	DefaultScalarTag   = StrTag
	DefaultSequenceTag = SeqTag
	DefaultMappingTag  = MapTag
)

const (
	InputRawBufferSize = 512
	InputBufferSize    = InputRawBufferSize * 3
	InitialStackSize   = 16
	InitialQueueSize   = 16
)

const longTagPrefix = "tag:yaml.org,2002:"

// LongTag expands a "!!foo" shorthand tag to its full
// "tag:yaml.org,2002:foo" form. Tags already in long form, verbatim
// URIs, or the empty (implicit) tag pass through unchanged.
func LongTag(tag string) string {
	if len(tag) > 2 && tag[0] == '!' && tag[1] == '!' {
		return longTagPrefix + tag[2:]
	}
	return tag
}

// ShortTag collapses a "tag:yaml.org,2002:foo" core-schema tag to its
// "!!foo" shorthand, used when rendering diagnostics and when emitting
// tags in their conventional short form.
func ShortTag(tag string) string {
	if len(tag) > len(longTagPrefix) && tag[:len(longTagPrefix)] == longTagPrefix {
		return "!!" + tag[len(longTagPrefix):]
	}
	return tag
}
