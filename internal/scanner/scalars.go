package scanner

import (
	"github.com/fyyaml/fy/internal/token"
)

func (s *Scanner) fetchBlockScalar(literal bool) error {
	s.removeSimpleKey()
	s.simpleKeyAllowed = true
	t, err := s.scanBlockScalar(literal)
	if err != nil {
		return err
	}
	s.queue(t)
	return nil
}

func (s *Scanner) fetchFlowScalar(single bool) error {
	if err := s.savePossibleSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = false
	t, err := s.scanFlowScalar(single)
	if err != nil {
		return err
	}
	s.queue(t)
	return nil
}

func (s *Scanner) fetchPlainScalar() error {
	if err := s.savePossibleSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = false
	t, err := s.scanPlainScalar()
	if err != nil {
		return err
	}
	s.queue(t)
	return nil
}

// scanBlockScalar implements the literal/folded block scalar grammar:
// header (indicator, optional chomp/indent indicators in either
// order), then content lines whose folding follows spec.md §4.7's
// rule set (single break -> space, double break -> paragraph break,
// leading blank line stays literal).
func (s *Scanner) scanBlockScalar(literal bool) (*token.Token, error) {
	start := s.r.Mark()
	s.r.Advance(1) // '|' or '>'

	chomp := token.ClipChomp
	chompSet := false
	increment := 0

	readChomp := func() {
		if s.r.Byte(0) == '+' {
			chomp = token.KeepChomp
			chompSet = true
			s.r.Advance(1)
		} else if s.r.Byte(0) == '-' {
			chomp = token.StripChomp
			chompSet = true
			s.r.Advance(1)
		}
	}
	readIndent := func() error {
		if isDigitByte(s.r.Byte(0)) {
			if s.r.Byte(0) == '0' {
				return errAt(start, "found an indentation indicator equal to 0")
			}
			increment = int(s.r.Byte(0) - '0')
			s.r.Advance(1)
		}
		return nil
	}
	if s.r.Byte(0) == '+' || s.r.Byte(0) == '-' {
		readChomp()
		if err := readIndent(); err != nil {
			return nil, err
		}
	} else if isDigitByte(s.r.Byte(0)) {
		if err := readIndent(); err != nil {
			return nil, err
		}
		readChomp()
	}
	_ = chompSet

	s.skipBlanks()
	if s.r.Byte(0) == '#' {
		s.skipToEOL()
	}
	if !isBreakOrZ(s.r, 0) {
		return nil, errAt(s.r.Mark(), "did not find expected comment or line break")
	}
	if isBreak(s.r) {
		s.advanceBreak()
	}

	end := s.r.Mark()
	indent := 0
	if increment > 0 {
		if s.indent >= 0 {
			indent = s.indent + increment
		} else {
			indent = increment
		}
	}

	var out, leadingBreak, trailingBreaks []byte
	indent = s.scanBlockScalarBreaks(indent, increment > 0, &trailingBreaks, &end)

	leadingBlank, trailingBlank := false, false
	for s.r.Mark().Column == indent && s.r.Byte(0) != 0 {
		trailingBlank = s.r.Byte(0) == ' ' || s.r.Byte(0) == '\t'
		if !literal && !leadingBlank && !trailingBlank && len(leadingBreak) > 0 && leadingBreak[0] == '\n' {
			if len(trailingBreaks) == 0 {
				out = append(out, ' ')
			}
		} else {
			out = append(out, leadingBreak...)
		}
		leadingBreak = leadingBreak[:0]
		out = append(out, trailingBreaks...)
		trailingBreaks = trailingBreaks[:0]

		leadingBlank = s.r.Byte(0) == ' ' || s.r.Byte(0) == '\t'
		for !isBreakOrZ(s.r, 0) {
			from := s.r.Pos()
			s.r.Advance(1)
			out = append(out, s.r.Slice(from)...)
		}
		leadingBreak = s.consumeBreakInto(leadingBreak)
		indent = s.scanBlockScalarBreaks(indent, increment > 0, &trailingBreaks, &end)
	}

	if chomp != token.StripChomp {
		out = append(out, leadingBreak...)
	}
	if chomp == token.KeepChomp {
		out = append(out, trailingBreaks...)
	}

	style := token.LiteralScalarStyle
	if !literal {
		style = token.FoldedScalarStyle
	}
	return &token.Token{
		Kind:      token.ScalarToken,
		StartMark: start,
		EndMark:   end,
		Value:     out,
		Style:     style,
		Chomp:     chomp,
		IndentIncrement: increment,
	}, nil
}

func (s *Scanner) advanceBreak() {
	if s.r.Byte(0) == '\r' && s.r.Byte(1) == '\n' {
		s.r.Advance(2)
		return
	}
	s.r.Advance(1)
}

func (s *Scanner) consumeBreakInto(buf []byte) []byte {
	if s.r.Byte(0) == '\r' && s.r.Byte(1) == '\n' {
		buf = append(buf, '\n')
		s.r.Advance(2)
		return buf
	}
	buf = append(buf, '\n')
	s.r.Advance(1)
	return buf
}

// scanBlockScalarBreaks consumes indentation spaces and line breaks,
// discovering the block's indentation level the first time a
// non-empty line is seen if it wasn't given explicitly.
func (s *Scanner) scanBlockScalarBreaks(indent int, explicit bool, breaks *[]byte, end *token.Mark) int {
	*end = s.r.Mark()
	maxIndent := 0
	for {
		for (indent == 0 || s.r.Mark().Column < indent) && s.r.Byte(0) == ' ' {
			s.r.Advance(1)
		}
		if s.r.Mark().Column > maxIndent {
			maxIndent = s.r.Mark().Column
		}
		if isBreak(s.r) {
			*breaks = s.consumeBreakInto(*breaks)
			*end = s.r.Mark()
			continue
		}
		break
	}
	if !explicit && indent == 0 {
		if maxIndent > s.indent {
			indent = maxIndent
		} else {
			indent = s.indent + 1
		}
		if indent < 1 {
			indent = 1
		}
	}
	return indent
}

// scanFlowScalar implements single- and double-quoted scalars,
// including JSON/YAML-1.1-plus escapes in the double-quoted case and
// the doubled-quote escape in the single-quoted case.
func (s *Scanner) scanFlowScalar(single bool) (*token.Token, error) {
	start := s.r.Mark()
	quote := byte('\'')
	if !single {
		quote = '"'
	}
	s.r.Advance(1)

	var out []byte
	for {
		if s.r.Byte(0) == 0 {
			return nil, errAt(s.r.Mark(), "found unexpected end of stream while scanning a quoted scalar")
		}
		for !isBlankZByte(s.r.Byte(0)) && s.r.Byte(0) != quote && !(s.r.Byte(0) == '\\' && !single) {
			out = append(out, s.r.Byte(0))
			s.r.Advance(1)
		}
		switch {
		case s.r.Byte(0) == quote && single && s.r.Byte(1) == '\'':
			out = append(out, '\'')
			s.r.Advance(2)
			continue
		case s.r.Byte(0) == quote:
			s.r.Advance(1)
			return &token.Token{
				Kind:         token.ScalarToken,
				StartMark:    start,
				EndMark:      s.r.Mark(),
				Value:        out,
				Style:        styleFor(single),
				DirectOutput: true,
			}, nil
		case !single && s.r.Byte(0) == '\\' && (s.r.Byte(1) == '\n' || s.r.Byte(1) == '\r'):
			s.r.Advance(1)
			s.advanceBreak()
			out = s.scanFlowScalarFoldBreaks(out)
			continue
		case !single && s.r.Byte(0) == '\\':
			var err error
			out, err = s.scanEscape(out)
			if err != nil {
				return nil, err
			}
			continue
		case isBlankZByte(s.r.Byte(0)) && s.r.Byte(0) != 0:
			out = s.scanFlowScalarFoldBreaks(out)
			continue
		default:
			return nil, errAt(s.r.Mark(), "found unexpected end of stream while scanning a quoted scalar")
		}
	}
}

func styleFor(single bool) token.ScalarStyle {
	if single {
		return token.SingleQuotedScalarStyle
	}
	return token.DoubleQuotedScalarStyle
}

// scanFlowScalarFoldBreaks consumes a run of blanks/line-breaks inside
// a flow scalar and folds it per the YAML line-folding rule: a single
// break becomes a space, multiple breaks become N-1 literal breaks.
func (s *Scanner) scanFlowScalarFoldBreaks(out []byte) []byte {
	var breaks [][]byte
	sawBreak := false
	for isBlankZByte(s.r.Byte(0)) && s.r.Byte(0) != 0 {
		if s.r.Byte(0) == ' ' || s.r.Byte(0) == '\t' {
			s.r.Advance(1)
			continue
		}
		sawBreak = true
		var b []byte
		b = s.consumeBreakInto(b)
		breaks = append(breaks, b)
	}
	if !sawBreak {
		out = append(out, ' ')
		return out
	}
	if len(breaks) == 1 {
		out = append(out, ' ')
		return out
	}
	for _, b := range breaks[1:] {
		out = append(out, b...)
	}
	return out
}

func (s *Scanner) scanEscape(out []byte) ([]byte, error) {
	s.r.Advance(1) // '\\'
	c := s.r.Byte(0)
	simple := map[byte]byte{
		'0': 0, 'a': '\a', 'b': '\b', 't': '\t', 'n': '\n', 'v': '\v',
		'f': '\f', 'r': '\r', 'e': 0x1B, ' ': ' ', '"': '"', '\'': '\'',
		'\\': '\\', '/': '/', 'N': 0xC2, '_': 0xC2, 'L': 0xE2, 'P': 0xE2,
	}
	switch c {
	case 'N':
		out = append(out, 0xC2, 0x85)
		s.r.Advance(1)
		return out, nil
	case '_':
		out = append(out, 0xC2, 0xA0)
		s.r.Advance(1)
		return out, nil
	case 'L':
		out = append(out, 0xE2, 0x80, 0xA8)
		s.r.Advance(1)
		return out, nil
	case 'P':
		out = append(out, 0xE2, 0x80, 0xA9)
		s.r.Advance(1)
		return out, nil
	case 'x', 'u', 'U':
		n := map[byte]int{'x': 2, 'u': 4, 'U': 8}[c]
		s.r.Advance(1)
		var v rune
		for i := 0; i < n; i++ {
			if !isHexByte(s.r.Byte(0)) {
				return nil, errAt(s.r.Mark(), "did not find expected hexadecimal number")
			}
			v = v<<4 | rune(hexVal(s.r.Byte(0)))
			s.r.Advance(1)
		}
		out = appendRune(out, v)
		return out, nil
	default:
		if v, ok := simple[c]; ok {
			out = append(out, v)
			s.r.Advance(1)
			return out, nil
		}
		return nil, errAt(s.r.Mark(), "found unknown escape character %q", c)
	}
}

func appendRune(out []byte, v rune) []byte {
	switch {
	case v <= 0x7F:
		return append(out, byte(v))
	case v <= 0x7FF:
		return append(out, byte(0xC0+(v>>6)), byte(0x80+(v&0x3F)))
	case v <= 0xFFFF:
		return append(out, byte(0xE0+(v>>12)), byte(0x80+((v>>6)&0x3F)), byte(0x80+(v&0x3F)))
	default:
		return append(out, byte(0xF0+(v>>18)), byte(0x80+((v>>12)&0x3F)), byte(0x80+((v>>6)&0x3F)), byte(0x80+(v&0x3F)))
	}
}

// scanPlainScalar implements the plain (unquoted) scalar grammar: runs
// until an indicator that ends a plain scalar in the current context
// (": " / ",]}" in flow context, or a line whose next non-blank
// column drops below the enclosing indent).
func (s *Scanner) scanPlainScalar() (*token.Token, error) {
	start := s.r.Mark()
	var out, whitespace, leadingBreak []byte
	var trailingBreaks [][]byte
	indent := s.indent + 1
	end := start

	for {
		if s.r.Byte(0) == '#' && len(whitespace) > 0 {
			break
		}
		for {
			b := s.r.Byte(0)
			if isBlankZByte(b) {
				break
			}
			if b == ':' && (s.flowLevel > 0 || isBlankZByte(s.r.Byte(1))) {
				break
			}
			if s.flowLevel > 0 && (b == ',' || b == '[' || b == ']' || b == '{' || b == '}') {
				break
			}
			out = append(out, whitespace...)
			whitespace = whitespace[:0]
			if len(trailingBreaks) == 0 {
				if len(leadingBreak) > 0 {
					out = append(out, ' ')
				}
			} else {
				for _, br := range trailingBreaks {
					out = append(out, br...)
				}
			}
			leadingBreak = leadingBreak[:0]
			trailingBreaks = trailingBreaks[:0]
			from := s.r.Pos()
			s.r.Advance(1)
			out = append(out, s.r.Slice(from)...)
			end = s.r.Mark()
		}
		if s.r.Byte(0) == ':' && isBlankZByte(s.r.Byte(1)) {
			break
		}
		if !(s.r.Byte(0) == ' ' || s.r.Byte(0) == '\t' || isBreak(s.r)) {
			break
		}
		whitespace = whitespace[:0]
		for s.r.Byte(0) == ' ' || s.r.Byte(0) == '\t' {
			whitespace = append(whitespace, s.r.Byte(0))
			s.r.Advance(1)
		}
		if isBreak(s.r) {
			whitespace = whitespace[:0]
			if len(leadingBreak) == 0 {
				leadingBreak = s.consumeBreakInto(leadingBreak)
			} else {
				trailingBreaks = append(trailingBreaks, s.consumeBreakInto(nil))
			}
			for s.r.Mark().Column >= indent && (s.r.Byte(0) == ' ') {
				s.r.Advance(1)
			}
			if s.r.Mark().Column < indent && s.flowLevel == 0 {
				break
			}
			continue
		}
		if len(whitespace) == 0 {
			break
		}
	}
	return &token.Token{
		Kind:      token.ScalarToken,
		StartMark: start,
		EndMark:   end,
		Value:     out,
		Style:     token.PlainScalarStyle,
		Empty:     len(out) == 0,
	}, nil
}
