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

package token

// IsAlpha reports whether b[i] is alphanumeric, '_' or '-'.
func IsAlpha(b []byte, i int) bool {
	return b[i] >= '0' && b[i] <= '9' || b[i] >= 'A' && b[i] <= 'Z' || b[i] >= 'a' && b[i] <= 'z' || b[i] == '_' || b[i] == '-'
}

func IsDigit(b []byte, i int) bool {
	return b[i] >= '0' && b[i] <= '9'
}

func AsDigit(b []byte, i int) int {
	return int(b[i]) - '0'
}

func IsHex(b []byte, i int) bool {
	return b[i] >= '0' && b[i] <= '9' || b[i] >= 'A' && b[i] <= 'F' || b[i] >= 'a' && b[i] <= 'f'
}

func AsHex(b []byte, i int) int {
	bi := b[i]
	if bi >= 'A' && bi <= 'F' {
		return int(bi) - 'A' + 10
	}
	if bi >= 'a' && bi <= 'f' {
		return int(bi) - 'a' + 10
	}
	return int(bi) - '0'
}

// IsPrintable reports whether the code point starting at b[0] can be
// emitted unescaped per the YAML [printable] production.
func IsPrintable(b []byte) bool {
	return (b[0] == 0x0A) ||
		(b[0] >= 0x20 && b[0] <= 0x7E) ||
		(b[0] == 0xC2 && b[0+1] >= 0xA0) ||
		(b[0] > 0xC2 && b[0] < 0xED) ||
		(b[0] == 0xED && b[0+1] < 0xA0) ||
		(b[0] == 0xEE) ||
		(b[0] == 0xEF &&
			!(b[0+1] == 0xBB && b[0+2] == 0xBF) &&
			!(b[0+1] == 0xBF && (b[0+2] == 0xBE || b[0+2] == 0xBF)))
}

func IsZ(b []byte, i int) bool {
	return b[i] == 0x00
}

func IsBOM(b []byte) bool {
	return len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF
}

func IsSpace(b []byte, i int) bool {
	return b[i] == ' '
}

func IsTab(b []byte, i int) bool {
	return b[i] == '\t'
}

func IsBlank(b []byte, i int) bool {
	return b[i] == ' ' || b[i] == '\t'
}

func Blank(b byte) bool {
	return b == ' ' || b == '\t'
}

// IsBreak reports whether b[i] begins a line break: CR, LF, NEL, LS or PS.
func IsBreak(b []byte, i int) bool {
	return b[i] == '\r' ||
		b[i] == '\n' ||
		b[i] == 0xC2 && b[i+1] == 0x85 ||
		b[i] == 0xE2 && b[i+1] == 0x80 && b[i+2] == 0xA8 ||
		b[i] == 0xE2 && b[i+1] == 0x80 && b[i+2] == 0xA9
}

func Break(b []byte) bool {
	return b[0] == '\r' ||
		b[0] == '\n' ||
		b[0] == 0xC2 && b[1] == 0x85 ||
		b[0] == 0xE2 && b[1] == 0x80 && b[2] == 0xA8 ||
		b[0] == 0xE2 && b[1] == 0x80 && b[2] == 0xA9
}

func IsCRLF(b []byte, i int) bool {
	return b[i] == '\r' && b[i+1] == '\n'
}

func IsBreakZ(b []byte, i int) bool {
	return IsBreak(b, i) || b[i] == 0
}

func IsSpaceZ(b []byte, i int) bool {
	return b[i] == ' ' || IsBreakZ(b, i)
}

func IsBlankZ(b []byte, i int) bool {
	return b[i] == ' ' || b[i] == '\t' || IsBreakZ(b, i)
}

func BlankZ(b []byte) bool {
	return b[0] == ' ' || b[0] == '\t' ||
		b[0] == '\r' || b[0] == '\n' ||
		b[0] == 0xC2 && b[1] == 0x85 ||
		b[0] == 0xE2 && b[1] == 0x80 && b[2] == 0xA8 ||
		b[0] == 0xE2 && b[1] == 0x80 && b[2] == 0xA9 ||
		b[0] == 0
}

// Width returns the UTF-8 byte width of the code point starting with b,
// or 0 if b is not a valid leading byte.
func Width(b byte) int {
	if b&0x80 == 0x00 {
		return 1
	}
	if b&0xE0 == 0xC0 {
		return 2
	}
	if b&0xF0 == 0xE0 {
		return 3
	}
	if b&0xF8 == 0xF0 {
		return 4
	}
	return 0
}

// IsIndicator reports whether r is one of the YAML reserved indicator
// characters (spec.md glossary: Indicator).
func IsIndicator(r byte) bool {
	switch r {
	case '-', '?', ':', ',', '[', ']', '{', '}', '#', '&', '*', '!', '|', '>', '\'', '"', '%', '@', '`':
		return true
	}
	return false
}
