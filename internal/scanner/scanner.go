// Package scanner turns a byte stream into a lazily-produced token
// queue (spec.md §4.2). It tracks block indentation, flow-level
// nesting and simple-key candidates, promoting a candidate to a KEY
// token (inserted before it in the queue) when a colon validates it
// within the allowed window.
package scanner

import (
	"fmt"

	"github.com/fyyaml/fy/internal/input"
	"github.com/fyyaml/fy/internal/token"
)

// Error is a lexical error with a source mark (spec.md §7).
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

// Bounds-safe byte-class helpers. Unlike the token package's char
// classifiers (which index a slice directly and assume the caller has
// already checked length), these operate on a single already-fetched
// byte where 0 means EOF, so scan loops never slice past the end of
// the input buffer.
func isAlphaByte(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b == '_' || b == '-'
}

func isDigitByte(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHexByte(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'A' && b <= 'F' || b >= 'a' && b <= 'f'
}

// isBlankZByte treats only the ASCII break forms; NEL/LS/PS are rare
// in anchor/tag/directive names (which are themselves ASCII-only per
// the YAML grammar) so the 3-byte break lookahead isn't needed here.
func isBlankZByte(b byte) bool {
	return b == 0 || b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// indentLevel is one entry of the block-indentation stack, with a flag
// recording whether the scanner synthesised a BLOCK-MAPPING-START at
// this level (spec.md §4.2 invariant on the indent stack).
type indentLevel struct {
	column         int
	syntheticBlock bool
}

// Scanner is the lazily-driven tokenizer.
type Scanner struct {
	r    *input.Reader
	Mode token.Mode

	streamStartProduced bool
	streamEndProduced   bool

	flowLevel int

	tokens       []*token.Token
	tokensHead   int
	tokensParsed int

	indent  int
	indents []indentLevel

	simpleKeyAllowed bool
	simpleKeys       []token.SimpleKey

	lastTagDirective *token.Token // most recently scanned TAG_DIRECTIVE token, for TAG token back-reference

	done bool
}

// New creates a Scanner reading from in.
func New(in *input.Input, mode token.Mode) *Scanner {
	return &Scanner{r: input.NewReader(in), Mode: mode}
}

// Next returns the next token, producing STREAM-START first and
// STREAM-END once at EOF.
func (s *Scanner) Next() (*token.Token, error) {
	if err := s.fetchMoreTokens(); err != nil {
		return nil, err
	}
	if len(s.tokens) == s.tokensHead {
		return nil, nil
	}
	t := s.tokens[s.tokensHead]
	s.tokensHead++
	s.tokensParsed++
	return t, nil
}

func (s *Scanner) queue(t *token.Token) {
	s.tokens = append(s.tokens, t)
}

// insertBefore splices t into the queue immediately before the token
// at absolute index pos (spec.md §9: simple-key promotion requires a
// positional insert).
func (s *Scanner) insertBefore(pos int, t *token.Token) {
	rel := pos - s.tokensHead
	s.tokens = append(s.tokens, nil)
	copy(s.tokens[rel+1:], s.tokens[rel:])
	s.tokens[rel] = t
}

func (s *Scanner) fetchMoreTokens() error {
	needMoreTokens := func() bool {
		if s.done {
			return false
		}
		if len(s.tokens) == s.tokensHead {
			return true
		}
		s.staleSimpleKeys()
		for i := range s.simpleKeys {
			sk := &s.simpleKeys[i]
			if sk.Possible && sk.TokenNumber == s.tokensParsed+(len(s.tokens)-s.tokensHead) {
				return true
			}
		}
		return false
	}
	for needMoreTokens() {
		if err := s.fetchNextToken(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scanner) staleSimpleKeys() {
	for i := range s.simpleKeys {
		sk := &s.simpleKeys[i]
		if sk.Possible && sk.Mark.Line < s.r.Mark().Line {
			if sk.Required {
				return
			}
			sk.Possible = false
		}
	}
}

func (s *Scanner) fetchNextToken() error {
	if !s.streamStartProduced {
		s.fetchStreamStart()
		return nil
	}
	if err := s.scanToNextToken(); err != nil {
		return err
	}
	s.staleSimpleKeys()
	s.unrollIndent(s.r.Mark().Column)

	if s.r.AtEOF() {
		return s.fetchStreamEnd()
	}

	mark := s.r.Mark()
	switch {
	case mark.Column == 0 && s.r.StrEq("---") && followedByBlank(s.r, 3):
		return s.fetchDocumentIndicator(token.DocumentStartToken)
	case mark.Column == 0 && s.r.StrEq("...") && followedByBlank(s.r, 3):
		return s.fetchDocumentIndicator(token.DocumentEndToken)
	case mark.Column == 0 && s.r.Byte(0) == '%':
		return s.fetchDirective()
	case s.r.Byte(0) == '[':
		return s.fetchFlowCollectionStart(token.FlowSequenceStartToken)
	case s.r.Byte(0) == '{':
		return s.fetchFlowCollectionStart(token.FlowMappingStartToken)
	case s.r.Byte(0) == ']':
		return s.fetchFlowCollectionEnd(token.FlowSequenceEndToken)
	case s.r.Byte(0) == '}':
		return s.fetchFlowCollectionEnd(token.FlowMappingEndToken)
	case s.r.Byte(0) == ',':
		return s.fetchFlowEntry()
	case s.r.Byte(0) == '-' && followedByBlank(s.r, 1):
		return s.fetchBlockEntry()
	case s.r.Byte(0) == '?' && (s.flowLevel > 0 || followedByBlank(s.r, 1)):
		return s.fetchKey()
	case s.r.Byte(0) == ':' && (s.flowLevel > 0 || followedByBlank(s.r, 1)):
		return s.fetchValue()
	case s.r.Byte(0) == '*':
		return s.fetchAnchorOrAlias(token.AliasToken)
	case s.r.Byte(0) == '&':
		return s.fetchAnchorOrAlias(token.AnchorToken)
	case s.r.Byte(0) == '!':
		return s.fetchTag()
	case s.r.Byte(0) == '|' && s.flowLevel == 0:
		return s.fetchBlockScalar(true)
	case s.r.Byte(0) == '>' && s.flowLevel == 0:
		return s.fetchBlockScalar(false)
	case s.r.Byte(0) == '\'':
		return s.fetchFlowScalar(true)
	case s.r.Byte(0) == '"':
		return s.fetchFlowScalar(false)
	case s.isPlainStart():
		return s.fetchPlainScalar()
	}
	return errAt(mark, "found character %q that cannot start any token", s.r.Byte(0))
}

func followedByBlank(r *input.Reader, offset int) bool {
	b := r.Byte(offset)
	return b == 0 || b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func (s *Scanner) isPlainStart() bool {
	b := s.r.Byte(0)
	if token.IsIndicator(b) {
		switch b {
		case '-', '?', ':':
			return followedByBlank(s.r, 1) == false
		}
		return false
	}
	return b != 0
}

func (s *Scanner) fetchStreamStart() {
	s.indent = -1
	s.simpleKeyAllowed = true
	s.streamStartProduced = true
	s.queue(&token.Token{Kind: token.StreamStartToken, Encoding: token.UTF8Encoding})
}

func (s *Scanner) fetchStreamEnd() error {
	s.unrollIndent(-1)
	s.simpleKeyAllowed = false
	s.simpleKeys = nil
	mark := s.r.Mark()
	s.queue(&token.Token{Kind: token.StreamEndToken, StartMark: mark, EndMark: mark})
	s.streamEndProduced = true
	s.done = true
	return nil
}

func (s *Scanner) savePossibleSimpleKey() error {
	required := s.flowLevel == 0 && s.indent == s.r.Mark().Column
	if s.simpleKeyAllowed {
		s.removeStaleSimpleKeyForLevel()
		s.simpleKeys = append(s.simpleKeys, token.SimpleKey{
			Possible:    true,
			Required:    required,
			TokenNumber: s.tokensParsed + (len(s.tokens) - s.tokensHead),
			Mark:        s.r.Mark(),
			FlowLevel:   s.flowLevel,
		})
	}
	return nil
}

func (s *Scanner) removeStaleSimpleKeyForLevel() {
	for i := len(s.simpleKeys) - 1; i >= 0; i-- {
		if s.simpleKeys[i].FlowLevel == s.flowLevel {
			s.simpleKeys = append(s.simpleKeys[:i], s.simpleKeys[i+1:]...)
			return
		}
	}
}

func (s *Scanner) removeSimpleKey() {
	s.removeStaleSimpleKeyForLevel()
}

func (s *Scanner) increaseFlowLevel() {
	s.simpleKeys = append(s.simpleKeys, token.SimpleKey{})
	s.flowLevel++
}

func (s *Scanner) decreaseFlowLevel() {
	if s.flowLevel > 0 {
		s.flowLevel--
		if len(s.simpleKeys) > 0 {
			s.simpleKeys = s.simpleKeys[:len(s.simpleKeys)-1]
		}
	}
}

// rollIndent pushes a new indentation level and, for a mapping key
// position, synthesises a BLOCK-MAPPING-START (spec.md §4.2: "a flag
// per level indicating whether the scanner synthesised a block-mapping
// start at that indent").
func (s *Scanner) rollIndent(column, tokenNumber int, kind token.Kind, mark token.Mark) {
	if s.flowLevel > 0 {
		return
	}
	if s.indent < column {
		s.indents = append(s.indents, indentLevel{column: s.indent, syntheticBlock: kind == token.BlockMappingStartToken})
		s.indent = column
		t := &token.Token{Kind: kind, StartMark: mark, EndMark: mark}
		if tokenNumber < 0 {
			s.queue(t)
		} else {
			s.insertBefore(tokenNumber, t)
		}
	}
}

func (s *Scanner) unrollIndent(column int) {
	if s.flowLevel > 0 {
		return
	}
	mark := s.r.Mark()
	for s.indent > column {
		s.queue(&token.Token{Kind: token.BlockEndToken, StartMark: mark, EndMark: mark})
		last := s.indents[len(s.indents)-1]
		s.indent = last.column
		s.indents = s.indents[:len(s.indents)-1]
	}
}

func (s *Scanner) fetchDocumentIndicator(kind token.Kind) error {
	s.unrollIndent(-1)
	s.removeAllSimpleKeys()
	s.simpleKeyAllowed = false
	mark := s.r.Mark()
	s.r.Advance(3)
	s.queue(&token.Token{Kind: kind, StartMark: mark, EndMark: s.r.Mark()})
	return nil
}

func (s *Scanner) removeAllSimpleKeys() {
	s.simpleKeys = s.simpleKeys[:0]
}

func (s *Scanner) fetchFlowCollectionStart(kind token.Kind) error {
	if err := s.savePossibleSimpleKey(); err != nil {
		return err
	}
	s.increaseFlowLevel()
	s.simpleKeyAllowed = true
	mark := s.r.Mark()
	s.r.Advance(1)
	s.queue(&token.Token{Kind: kind, StartMark: mark, EndMark: s.r.Mark()})
	return nil
}

func (s *Scanner) fetchFlowCollectionEnd(kind token.Kind) error {
	s.removeSimpleKey()
	s.decreaseFlowLevel()
	s.simpleKeyAllowed = false
	mark := s.r.Mark()
	s.r.Advance(1)
	s.queue(&token.Token{Kind: kind, StartMark: mark, EndMark: s.r.Mark()})
	return nil
}

func (s *Scanner) fetchFlowEntry() error {
	s.removeSimpleKey()
	s.simpleKeyAllowed = true
	mark := s.r.Mark()
	s.r.Advance(1)
	s.queue(&token.Token{Kind: token.FlowEntryToken, StartMark: mark, EndMark: s.r.Mark()})
	return nil
}

func (s *Scanner) fetchBlockEntry() error {
	if s.flowLevel == 0 {
		if !s.simpleKeyAllowed {
			return errAt(s.r.Mark(), "block sequence entries are not allowed in this context")
		}
		s.rollIndent(s.r.Mark().Column, -1, token.BlockSequenceStartToken, s.r.Mark())
	}
	s.removeSimpleKey()
	s.simpleKeyAllowed = true
	mark := s.r.Mark()
	s.r.Advance(1)
	s.queue(&token.Token{Kind: token.BlockEntryToken, StartMark: mark, EndMark: s.r.Mark()})
	return nil
}

func (s *Scanner) fetchKey() error {
	if s.flowLevel == 0 {
		if !s.simpleKeyAllowed {
			return errAt(s.r.Mark(), "mapping keys are not allowed in this context")
		}
		s.rollIndent(s.r.Mark().Column, -1, token.BlockMappingStartToken, s.r.Mark())
	}
	s.removeSimpleKey()
	s.simpleKeyAllowed = s.flowLevel == 0
	mark := s.r.Mark()
	s.r.Advance(1)
	s.queue(&token.Token{Kind: token.KeyToken, StartMark: mark, EndMark: s.r.Mark()})
	return nil
}

func (s *Scanner) fetchValue() error {
	for i := len(s.simpleKeys) - 1; i >= 0; i-- {
		sk := &s.simpleKeys[i]
		if sk.FlowLevel != s.flowLevel {
			continue
		}
		if sk.Possible {
			sk.Possible = false
			s.rollIndent(sk.Mark.Column, sk.TokenNumber, token.BlockMappingStartToken, sk.Mark)
			s.insertBefore(sk.TokenNumber, &token.Token{Kind: token.KeyToken, StartMark: sk.Mark, EndMark: sk.Mark})
			s.simpleKeyAllowed = false
			mark := s.r.Mark()
			s.r.Advance(1)
			s.queue(&token.Token{Kind: token.ValueToken, StartMark: mark, EndMark: s.r.Mark()})
			return nil
		}
		break
	}
	if s.flowLevel == 0 {
		if !s.simpleKeyAllowed {
			return errAt(s.r.Mark(), "mapping values are not allowed in this context")
		}
		s.rollIndent(s.r.Mark().Column, -1, token.BlockMappingStartToken, s.r.Mark())
	}
	s.simpleKeyAllowed = s.flowLevel == 0
	mark := s.r.Mark()
	s.r.Advance(1)
	s.queue(&token.Token{Kind: token.ValueToken, StartMark: mark, EndMark: s.r.Mark()})
	return nil
}

// scanToNextToken skips whitespace, line breaks and comments, and
// re-allows a simple key after a line break in block context. Comment
// text is discarded: no comment atoms are attached to any token.
func (s *Scanner) scanToNextToken() error {
	for {
		for s.r.Byte(0) == ' ' || (s.flowLevel == 0 && false) {
			s.r.Advance(1)
		}
		if s.r.Byte(0) == '\t' {
			// Tabs are skipped as blanks everywhere, indentation
			// included; no tab check or warning is made here.
			s.r.Advance(1)
			continue
		}
		if s.r.Byte(0) == '#' {
			for !isBreakOrZ(s.r, 0) {
				s.r.Advance(1)
			}
		}
		if isBreak(s.r) {
			s.r.Advance(1)
			if s.flowLevel == 0 {
				s.simpleKeyAllowed = true
			}
			continue
		}
		break
	}
	return nil
}

func isBreak(r *input.Reader) bool {
	b := r.Byte(0)
	return b == '\n' || b == '\r'
}

func isBreakOrZ(r *input.Reader, offset int) bool {
	b := r.Byte(offset)
	return b == 0 || b == '\n' || b == '\r'
}
