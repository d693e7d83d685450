package scanner

import (
	"github.com/fyyaml/fy/internal/token"
)

func (s *Scanner) fetchDirective() error {
	s.unrollIndent(-1)
	s.removeAllSimpleKeys()
	s.simpleKeyAllowed = false

	start := s.r.Mark()
	s.r.Advance(1) // '%'
	name := s.scanName()

	switch string(name) {
	case "YAML":
		return s.scanVersionDirective(start)
	case "TAG":
		return s.scanTagDirective(start)
	default:
		// Unknown directive: consume to EOL and drop it, matching
		// libyaml's "reserved directive" tolerance.
		s.skipToEOL()
		return nil
	}
}

func (s *Scanner) scanName() []byte {
	from := s.r.Pos()
	for !isBlankZByte(s.r.Byte(0)) {
		s.r.Advance(1)
	}
	return s.r.Slice(from)
}

func (s *Scanner) skipBlanks() {
	for s.r.Byte(0) == ' ' || s.r.Byte(0) == '\t' {
		s.r.Advance(1)
	}
}

func (s *Scanner) skipToEOL() {
	for !isBreakOrZ(s.r, 0) {
		s.r.Advance(1)
	}
}

func (s *Scanner) scanVersionDirective(start token.Mark) error {
	s.skipBlanks()
	majorFrom := s.r.Pos()
	for isDigitByte(s.r.Byte(0)) {
		s.r.Advance(1)
	}
	major := parseInt(s.r.Slice(majorFrom))
	if s.r.Byte(0) != '.' {
		return errAt(s.r.Mark(), "expected a digit or '.' character")
	}
	s.r.Advance(1)
	minorFrom := s.r.Pos()
	for isDigitByte(s.r.Byte(0)) {
		s.r.Advance(1)
	}
	minor := parseInt(s.r.Slice(minorFrom))
	s.skipBlanks()
	s.skipToEOL()
	s.queue(&token.Token{
		Kind:      token.VersionDirectiveToken,
		StartMark: start,
		EndMark:   s.r.Mark(),
		Major:     int8(major),
		Minor:     int8(minor),
	})
	return nil
}

func parseInt(b []byte) int {
	n := 0
	for _, c := range b {
		n = n*10 + int(c-'0')
	}
	return n
}

func (s *Scanner) scanTagDirective(start token.Mark) error {
	s.skipBlanks()
	handleFrom := s.r.Pos()
	if s.r.Byte(0) != '!' {
		return errAt(s.r.Mark(), "expected a tag handle")
	}
	s.r.Advance(1)
	for isAlphaByte(s.r.Byte(0)) {
		s.r.Advance(1)
	}
	if s.r.Byte(0) == '!' {
		s.r.Advance(1)
	}
	handle := append([]byte(nil), s.r.Slice(handleFrom)...)
	s.skipBlanks()
	prefixFrom := s.r.Pos()
	for !isBlankZByte(s.r.Byte(0)) {
		s.r.Advance(1)
	}
	prefix := append([]byte(nil), s.r.Slice(prefixFrom)...)
	s.skipBlanks()
	s.skipToEOL()
	t := &token.Token{
		Kind:      token.TagDirectiveToken,
		StartMark: start,
		EndMark:   s.r.Mark(),
		Value:     handle,
		Prefix:    prefix,
	}
	s.lastTagDirective = t
	s.queue(t)
	return nil
}

func (s *Scanner) fetchAnchorOrAlias(kind token.Kind) error {
	if err := s.savePossibleSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = false
	start := s.r.Mark()
	s.r.Advance(1) // '&' or '*'
	nameFrom := s.r.Pos()
	for isAlphaByte(s.r.Byte(0)) {
		s.r.Advance(1)
	}
	if s.r.Pos() == nameFrom {
		return errAt(s.r.Mark(), "expected an anchor/alias name")
	}
	name := append([]byte(nil), s.r.Slice(nameFrom)...)
	s.queue(&token.Token{Kind: kind, StartMark: start, EndMark: s.r.Mark(), Value: name})
	return nil
}

func (s *Scanner) fetchTag() error {
	if err := s.savePossibleSimpleKey(); err != nil {
		return err
	}
	s.simpleKeyAllowed = false
	start := s.r.Mark()
	s.r.Advance(1) // '!'

	var handle, suffix []byte
	switch {
	case s.r.Byte(0) == '<':
		s.r.Advance(1)
		uriFrom := s.r.Pos()
		for s.r.Byte(0) != '>' {
			if isBreakOrZ(s.r, 0) {
				return errAt(s.r.Mark(), "unexpected end of verbatim tag")
			}
			s.r.Advance(1)
		}
		suffix = unescapeURI(s.r.Slice(uriFrom))
		s.r.Advance(1) // '>'
	case s.r.Byte(0) == '!' || isAlphaByte(s.r.Byte(0)):
		handleFrom := s.r.Pos()
		if s.r.Byte(0) == '!' {
			s.r.Advance(1)
		}
		for isAlphaByte(s.r.Byte(0)) {
			s.r.Advance(1)
		}
		if s.r.Byte(0) == '!' {
			s.r.Advance(1)
			handle = append([]byte(nil), s.r.Slice(handleFrom)...)
			suffixFrom := s.r.Pos()
			for isTagChar(s.r.Byte(0)) {
				s.r.Advance(1)
			}
			suffix = unescapeURI(s.r.Slice(suffixFrom))
		} else {
			// No closing '!': this was the "!" primary handle and
			// everything scanned so far is actually the suffix.
			handle = []byte("!")
			suffix = unescapeURI(s.r.Slice(handleFrom))
		}
	default:
		handle = []byte("!")
	}
	t := &token.Token{
		Kind:      token.TagToken,
		StartMark: start,
		EndMark:   s.r.Mark(),
		Value:     handle,
		Suffix:    suffix,
		Directive: s.lastTagDirective,
	}
	s.queue(t)
	return nil
}

func isTagChar(b byte) bool {
	if isBlankZByte(b) {
		return false
	}
	switch b {
	case ',', '[', ']', '{', '}':
		return false
	}
	return true
}

func unescapeURI(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] == '%' && i+2 < len(b) && isHexByte(b[i+1]) && isHexByte(b[i+2]) {
			out = append(out, byte(hexVal(b[i+1])<<4|hexVal(b[i+2])))
			i += 2
			continue
		}
		out = append(out, b[i])
	}
	return out
}

func hexVal(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10
	}
	return 0
}
