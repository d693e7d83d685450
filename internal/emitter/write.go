package emitter

import "github.com/fyyaml/fy/internal/token"

func writeAnchor(e *Emitter, value []byte) error {
	if err := e.writeAll(value); err != nil {
		return err
	}
	e.lastCharWhitespace = false
	e.lastCharIndent = false
	return nil
}

func writeTagHandle(e *Emitter, value []byte) error {
	if !e.lastCharWhitespace {
		if err := e.put(' '); err != nil {
			return err
		}
	}
	if err := e.writeAll(value); err != nil {
		return err
	}
	e.lastCharWhitespace = false
	e.lastCharIndent = false
	return nil
}

func writeTagContent(e *Emitter, value []byte, needWhitespace bool) error {
	if needWhitespace && !e.lastCharWhitespace {
		if err := e.put(' '); err != nil {
			return err
		}
	}
	for len(value) > 0 {
		var mustWrite bool
		switch value[0] {
		case ';', '/', '?', ':', '@', '&', '=', '+', '$', ',', '_', '.', '~', '*', '\'', '(', ')', '[', ']':
			mustWrite = true
		default:
			mustWrite = token.IsAlpha(value, 0)
		}
		if mustWrite {
			n, err := e.write(value)
			if err != nil {
				return err
			}
			value = value[n:]
			continue
		}
		w := token.Width(value[0])
		if w == 0 {
			w = 1
		}
		for k := 0; k < w; k++ {
			octet := value[k]
			if err := e.put('%'); err != nil {
				return err
			}
			c := octet >> 4
			if c < 10 {
				c += '0'
			} else {
				c += 'A' - 10
			}
			if err := e.put(c); err != nil {
				return err
			}
			c = octet & 0x0f
			if c < 10 {
				c += '0'
			} else {
				c += 'A' - 10
			}
			if err := e.put(c); err != nil {
				return err
			}
		}
		value = value[w:]
	}
	e.lastCharWhitespace = false
	e.lastCharIndent = false
	return nil
}

func writePlainScalar(e *Emitter, value []byte, allowBreaks bool) error {
	totalLen := len(value)
	if totalLen > 0 && !e.lastCharWhitespace {
		if err := e.put(' '); err != nil {
			return err
		}
	}

	spaces := false
	breaks := false
	for len(value) > 0 {
		if token.IsSpace(value, 0) {
			w := token.Width(value[0])
			nextIsSpace := len(value) > w && token.IsSpace(value, w)
			if allowBreaks && !spaces && e.column > e.width && !nextIsSpace {
				if err := e.writeIndent(); err != nil {
					return err
				}
			} else {
				var err error
				w, err = e.write(value)
				if err != nil {
					return err
				}
			}
			value = value[w:]
			spaces = true
			continue
		}
		if token.IsBreak(value, 0) {
			if !breaks && value[0] == '\n' {
				if err := e.putBreak(); err != nil {
					return err
				}
			}
			w, err := e.writeBreak(value)
			if err != nil {
				return err
			}
			value = value[w:]
			breaks = true
			continue
		}
		if breaks {
			if err := e.writeIndent(); err != nil {
				return err
			}
		}
		w, err := e.write(value)
		if err != nil {
			return err
		}
		value = value[w:]
		e.lastCharIndent = false
		spaces = false
		breaks = false
	}

	if totalLen > 0 {
		e.lastCharWhitespace = false
	}
	e.lastCharIndent = false
	if e.rootContext {
		e.openEnded = true
	}
	return nil
}

func writeSingleQuotedScalar(e *Emitter, value []byte, allowBreaks bool) error {
	if err := e.writeIndicator("'", true, false, false); err != nil {
		return err
	}

	spaces := false
	breaks := false
	count := 0
	for len(value) > 0 {
		count++
		w := token.Width(value[0])
		if w == 0 {
			w = 1
		}
		hasMore := len(value) > w
		if token.IsSpace(value, 0) {
			if allowBreaks && !spaces && e.column > e.width && count > 1 && hasMore && !token.IsSpace(value, w) {
				if err := e.writeIndent(); err != nil {
					return err
				}
			} else {
				var err error
				w, err = e.write(value)
				if err != nil {
					return err
				}
			}
			spaces = true
			value = value[w:]
			continue
		}
		if token.IsBreak(value, 0) {
			if !breaks && value[0] == '\n' {
				if err := e.putBreak(); err != nil {
					return err
				}
			}
			var err error
			w, err = e.writeBreak(value)
			if err != nil {
				return err
			}
			breaks = true
			value = value[w:]
			continue
		}
		if breaks {
			if err := e.writeIndent(); err != nil {
				return err
			}
		}
		if value[0] == '\'' {
			if err := e.put('\''); err != nil {
				return err
			}
		}
		n, err := e.write(value)
		if err != nil {
			return err
		}
		value = value[n:]
		e.lastCharIndent = false
		spaces = false
		breaks = false
	}
	if err := e.writeIndicator("'", false, false, false); err != nil {
		return err
	}
	e.lastCharWhitespace = false
	e.lastCharIndent = false
	return nil
}

func writeDoubleQuotedScalar(e *Emitter, value []byte, allowBreaks bool) error {
	spaces := false
	if err := e.writeIndicator("\"", true, false, false); err != nil {
		return err
	}
	isBOM := len(value) >= 3 && token.IsBOM(value)
	count := 0
	for len(value) > 0 {
		count++
		if !token.IsPrintable(value) || isBOM || token.IsBreak(value, 0) || value[0] == '"' || value[0] == '\\' {
			var err error
			value, err = writeDoubleQuotedEscapedChar(e, value)
			if err != nil {
				return err
			}
			spaces = false
			continue
		}
		if token.IsSpace(value, 0) {
			w := token.Width(value[0])
			if allowBreaks && !spaces && e.column > e.width && count > 1 && len(value) > w {
				if err := e.writeIndent(); err != nil {
					return err
				}
				if token.IsSpace(value, w) {
					if err := e.put('\\'); err != nil {
						return err
					}
				}
			} else {
				var err error
				w, err = e.write(value)
				if err != nil {
					return err
				}
			}
			value = value[w:]
			spaces = true
			continue
		}
		n, err := e.write(value)
		if err != nil {
			return err
		}
		value = value[n:]
		spaces = false
	}
	if err := e.writeIndicator("\"", false, false, false); err != nil {
		return err
	}
	e.lastCharWhitespace = false
	e.lastCharIndent = false
	return nil
}

func writeDoubleQuotedEscapedChar(e *Emitter, value []byte) ([]byte, error) {
	octet := value[0]
	var v rune
	var w int
	switch {
	case octet&0x80 == 0x00:
		w, v = 1, rune(octet&0x7F)
	case octet&0xE0 == 0xC0:
		w, v = 2, rune(octet&0x1F)
	case octet&0xF0 == 0xE0:
		w, v = 3, rune(octet&0x0F)
	case octet&0xF8 == 0xF0:
		w, v = 4, rune(octet&0x07)
	default:
		w, v = 1, rune(octet)
	}
	for k := 1; k < w && k < len(value); k++ {
		v = (v << 6) + (rune(value[k]) & 0x3F)
	}
	value = value[w:]

	if err := e.put('\\'); err != nil {
		return nil, err
	}

	var err error
	switch v {
	case 0x00:
		err = e.put('0')
	case 0x07:
		err = e.put('a')
	case 0x08:
		err = e.put('b')
	case 0x09:
		err = e.put('t')
	case 0x0A:
		err = e.put('n')
	case 0x0b:
		err = e.put('v')
	case 0x0c:
		err = e.put('f')
	case 0x0d:
		err = e.put('r')
	case 0x1b:
		err = e.put('e')
	case 0x22:
		err = e.put('"')
	case 0x5c:
		err = e.put('\\')
	case 0x85:
		err = e.put('N')
	case 0xA0:
		err = e.put('_')
	case 0x2028:
		err = e.put('L')
	case 0x2029:
		err = e.put('P')
	default:
		var hexw int
		switch {
		case v <= 0xFF:
			err = e.put('x')
			hexw = 2
		case v <= 0xFFFF:
			err = e.put('u')
			hexw = 4
		default:
			err = e.put('U')
			hexw = 8
		}
		if err != nil {
			return nil, err
		}
		for k := (hexw - 1) * 4; err == nil && k >= 0; k -= 4 {
			digit := byte((v >> uint(k)) & 0x0F)
			if digit < 10 {
				err = e.put(digit + '0')
			} else {
				err = e.put(digit + 'A' - 10)
			}
		}
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func writeBlockScalarHints(e *Emitter, value []byte) error {
	if token.IsSpace(value, 0) || (len(value) > 0 && token.IsBreak(value, 0)) {
		indentHint := string('0' + byte(e.indent))
		if err := e.writeIndicator(indentHint, false, false, false); err != nil {
			return err
		}
	}

	e.openEnded = false

	var chompHint byte
	if len(value) == 0 {
		chompHint = '-'
	} else {
		i := len(value) - 1
		for i > 0 && value[i]&0xC0 == 0x80 {
			i--
		}
		switch {
		case !token.IsBreak(value, i):
			chompHint = '-'
		case i == 0:
			chompHint = '+'
			e.openEnded = true
		default:
			i--
			for i > 0 && value[i]&0xC0 == 0x80 {
				i--
			}
			if token.IsBreak(value, i) {
				chompHint = '+'
				e.openEnded = true
			}
		}
	}
	if chompHint != 0 {
		if err := e.writeIndicator(string(chompHint), false, false, false); err != nil {
			return err
		}
	}
	return nil
}

func writeLiteralScalar(e *Emitter, value []byte) error {
	if err := e.writeIndicator("|", true, false, false); err != nil {
		return err
	}
	if err := writeBlockScalarHints(e, value); err != nil {
		return err
	}
	if err := processLineComment(e); err != nil {
		return err
	}
	e.lastCharWhitespace = true
	breaks := true
	for len(value) > 0 {
		if token.IsBreak(value, 0) {
			w, err := e.writeBreak(value)
			if err != nil {
				return err
			}
			breaks = true
			value = value[w:]
			continue
		}
		if breaks {
			if err := e.writeIndent(); err != nil {
				return err
			}
		}
		w, err := e.write(value)
		if err != nil {
			return err
		}
		value = value[w:]
		e.lastCharIndent = false
		breaks = false
	}
	return nil
}

func writeFoldedScalar(e *Emitter, value []byte) error {
	if err := e.writeIndicator(">", true, false, false); err != nil {
		return err
	}
	if err := writeBlockScalarHints(e, value); err != nil {
		return err
	}
	if err := processLineComment(e); err != nil {
		return err
	}

	e.lastCharWhitespace = true
	breaks := true
	leadingSpaces := true
	for len(value) > 0 {
		w := token.Width(value[0])
		if w == 0 {
			w = 1
		}
		if token.IsBreak(value, 0) {
			if !breaks && !leadingSpaces && value[0] == '\n' {
				k := 0
				for k < len(value) && token.IsBreak(value, k) {
					kw := token.Width(value[k])
					if kw == 0 {
						kw = 1
					}
					k += kw
				}
				if k >= len(value) || !token.IsBlankZ(value, k) {
					if err := e.putBreak(); err != nil {
						return err
					}
				}
			}
			var err error
			w, err = e.writeBreak(value)
			if err != nil {
				return err
			}
			value = value[w:]
			breaks = true
			continue
		}
		if breaks {
			if err := e.writeIndent(); err != nil {
				return err
			}
			leadingSpaces = token.IsBlank(value, 0)
		}
		nextIsSpace := len(value) > w && token.IsSpace(value, w)
		if !breaks && token.IsSpace(value, 0) && !nextIsSpace && e.column > e.width {
			if err := e.writeIndent(); err != nil {
				return err
			}
		} else {
			var err error
			w, err = e.write(value)
			if err != nil {
				return err
			}
		}
		value = value[w:]
		e.lastCharIndent = false
		breaks = false
	}
	return nil
}

func writeComment(e *Emitter, comment []byte) error {
	breaks := false
	pound := false
	for len(comment) > 0 {
		if token.IsBreak(comment, 0) {
			n, err := e.writeBreak(comment)
			if err != nil {
				return err
			}
			comment = comment[n:]
			breaks = true
			pound = false
			continue
		}
		if breaks {
			if err := e.writeIndent(); err != nil {
				return err
			}
		}
		if !pound {
			if comment[0] != '#' {
				if err := e.writeAll([]byte("# ")); err != nil {
					return err
				}
			}
			pound = true
		}
		n, err := e.write(comment)
		if err != nil {
			return err
		}
		comment = comment[n:]
		e.lastCharIndent = false
		breaks = false
	}
	if !breaks {
		if err := e.putBreak(); err != nil {
			return err
		}
	}
	e.lastCharWhitespace = true
	return nil
}
