// Package input implements the byte-source abstraction that sits under
// the scanner: a single-consumer cursor over a reference-counted Input,
// with BOM/encoding detection, line-break mode tracking, and tab-aware
// column bookkeeping (spec.md §4.1).
package input

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"github.com/fyyaml/fy/internal/token"
)

// Kind identifies how an Input's bytes are sourced.
type Kind int

const (
	FileBacked Kind = iota
	StreamBacked
	MemoryBorrowed
	OwnedBuffer
)

// Input is a reference-counted byte source with a generation counter,
// bumped on every lifecycle transition (e.g. rewinding a stream-backed
// input for reuse) so that callers caching derived text (e.g. a node's
// decoded scalar) can detect staleness.
type Input struct {
	kind       Kind
	reader     io.Reader
	buf        []byte // fully materialised bytes, for Memory/Owned/File
	refs       int
	generation int

	LineBreak token.LineBreak
	JSONMode  bool
	Encoding  token.Encoding
}

// NewFromBytes wraps a caller-owned byte slice without copying
// (memory-borrowed); the caller must not mutate it while the Input is
// in use.
func NewFromBytes(b []byte) *Input {
	return &Input{kind: MemoryBorrowed, buf: b, Encoding: token.UTF8Encoding}
}

// NewOwned copies b so the Input may outlive the caller's slice.
func NewOwned(b []byte) *Input {
	own := make([]byte, len(b))
	copy(own, b)
	return &Input{kind: OwnedBuffer, buf: own, Encoding: token.UTF8Encoding}
}

// NewFromReader reads and transcodes r fully into an owned UTF-8
// buffer, detecting a BOM and selecting the matching decoder from
// golang.org/x/text/encoding/unicode and .../unicode/utf32 (spec.md §6:
// "Recognises BOM and selects UTF-8/UTF-16LE/UTF-16BE/UTF-32LE/
// UTF-32BE"). kind distinguishes file-backed from generic stream-backed
// sources for diagnostic purposes only; both are read eagerly here,
// matching the teacher's "fully-loaded inputs never block" guarantee
// (spec.md §5).
func NewFromReader(r io.Reader, kind Kind) (*Input, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("fy: input read: %w", err)
	}
	enc, dec := detectEncoding(raw)
	out := raw
	if dec != nil {
		out, err = io.ReadAll(transform.NewReader(bytes.NewReader(raw), dec))
		if err != nil {
			return nil, fmt.Errorf("fy: input transcode: %w", err)
		}
	} else if token.IsBOM(raw) {
		out = raw[3:]
	}
	return &Input{kind: kind, buf: out, Encoding: enc}, nil
}

func detectEncoding(raw []byte) (token.Encoding, transform.Transformer) {
	switch {
	case len(raw) >= 4 && raw[0] == 0xFF && raw[1] == 0xFE && raw[2] == 0x00 && raw[3] == 0x00:
		return token.UTF32LEEncoding, utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM).NewDecoder()
	case len(raw) >= 4 && raw[0] == 0x00 && raw[1] == 0x00 && raw[2] == 0xFE && raw[3] == 0xFF:
		return token.UTF32BEEncoding, utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM).NewDecoder()
	case len(raw) >= 2 && raw[0] == 0xFF && raw[1] == 0xFE:
		return token.UTF16LEEncoding, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
	case len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF:
		return token.UTF16BEEncoding, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	default:
		return token.UTF8Encoding, nil
	}
}

// Retain increments the reference count.
func (in *Input) Retain() *Input {
	if in != nil {
		in.refs++
	}
	return in
}

// Release decrements the reference count.
func (in *Input) Release() {
	if in != nil {
		in.refs--
	}
}

// Generation returns the current invalidation generation.
func (in *Input) Generation() int { return in.generation }

// Bump increments the generation counter, invalidating any cached text
// derived from this Input's bytes at an earlier generation.
func (in *Input) Bump() { in.generation++ }

// Bytes returns the full underlying byte slice. The scanner treats it
// as append-only from its own point of view; slices taken from it
// (atoms) remain valid for the Input's lifetime.
func (in *Input) Bytes() []byte { return in.buf }

const (
	codeEOF     rune = -1
	codeInvalid rune = -2
	codePartial rune = -3
)

// Reader is the single-consumer cursor over an Input described in
// spec.md §4.1.
type Reader struct {
	in  *Input
	pos int // byte offset of the next unread character

	TabWidth int // configured tab width; defaults to 8

	mark       token.Mark
	nonTabCol  int // column ignoring tab expansion, used for indentation heuristics
}

// ErrInvalidUTF8 describes malformed UTF-8 input. PeekAt reports such
// input as codeInvalid and Advance steps over an invalid byte as one
// character; neither returns this error.
var ErrInvalidUTF8 = errors.New("fy: invalid UTF-8 sequence")

// NewReader creates a cursor at the start of in.
func NewReader(in *Input) *Reader {
	return &Reader{in: in.Retain(), TabWidth: 8}
}

func (r *Reader) buf() []byte { return r.in.buf }

// PeekAt returns the code point at the given forward offset from the
// cursor, or one of codeEOF/codeInvalid/codePartial.
func (r *Reader) PeekAt(offset int) (rune, int) {
	b := r.buf()
	i := r.pos
	for offset > 0 {
		if i >= len(b) {
			return codeEOF, 0
		}
		w := token.Width(b[i])
		if w == 0 {
			return codeInvalid, 0
		}
		if i+w > len(b) {
			return codePartial, 0
		}
		i += w
		offset--
	}
	if i >= len(b) {
		return codeEOF, 0
	}
	w := token.Width(b[i])
	if w == 0 {
		return codeInvalid, 0
	}
	if i+w > len(b) {
		return codePartial, 0
	}
	var v rune
	switch w {
	case 1:
		v = rune(b[i])
	case 2:
		v = rune(b[i]&0x1F)<<6 | rune(b[i+1]&0x3F)
	case 3:
		v = rune(b[i]&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
	case 4:
		v = rune(b[i]&0x07)<<18 | rune(b[i+1]&0x3F)<<12 | rune(b[i+2]&0x3F)<<6 | rune(b[i+3]&0x3F)
	}
	return v, w
}

// StrEq reports whether the literal appears at the current cursor
// position.
func (r *Reader) StrEq(literal string) bool {
	b := r.buf()
	if r.pos+len(literal) > len(b) {
		return false
	}
	return string(b[r.pos:r.pos+len(literal)]) == literal
}

// Byte returns the raw byte at the given forward offset, or 0 at EOF.
// Used by the scanner's indicator checks, which operate byte-wise
// since all YAML indicators are ASCII.
func (r *Reader) Byte(offset int) byte {
	b := r.buf()
	if r.pos+offset >= len(b) {
		return 0
	}
	return b[r.pos+offset]
}

// Bytes exposes the raw remaining buffer from the cursor, read-only.
func (r *Reader) Bytes() []byte { return r.buf()[r.pos:] }

// Pos returns the current byte offset.
func (r *Reader) Pos() int { return r.pos }

// Slice returns in.Bytes()[from:r.pos], an atom-backing slice.
func (r *Reader) Slice(from int) []byte { return r.buf()[from:r.pos] }

// Mark returns the current position mark.
func (r *Reader) Mark() token.Mark { return r.mark }

// Advance moves the cursor forward by count code points, updating the
// line/column mark. CR, LF and CRLF all collapse to one logical break
// whatever in.LineBreak is set to. Tabs advance to the
// next multiple of TabWidth while nonTabCol tracks the untabbed column
// in parallel, used by the scanner's lenient indentation heuristic.
func (r *Reader) Advance(count int) {
	b := r.buf()
	for ; count > 0; count-- {
		if r.pos >= len(b) {
			return
		}
		w := token.Width(b[r.pos])
		if w == 0 {
			w = 1
		}
		switch {
		case token.IsCRLF(b, r.pos):
			r.pos += 2
			r.mark.Index += 2
			r.mark.Line++
			r.mark.Column = 0
			r.nonTabCol = 0
			continue
		case token.IsBreak(b, r.pos):
			r.pos += w
			r.mark.Index += w
			r.mark.Line++
			r.mark.Column = 0
			r.nonTabCol = 0
			continue
		case b[r.pos] == '\t':
			r.pos++
			r.mark.Index++
			r.mark.Column = ((r.mark.Column / r.tabWidth()) + 1) * r.tabWidth()
			r.nonTabCol++
			continue
		default:
			r.pos += w
			r.mark.Index += w
			r.mark.Column++
			r.nonTabCol++
		}
	}
}

func (r *Reader) tabWidth() int {
	if r.TabWidth <= 0 {
		return 8
	}
	return r.TabWidth
}

// NonTabColumn returns the column as if tabs advanced by one, used to
// preserve the exact indentation formula under the lenient tab policy
// (spec.md §9 open question b).
func (r *Reader) NonTabColumn() int { return r.nonTabCol }

// AtEOF reports whether the cursor has consumed the entire buffer.
func (r *Reader) AtEOF() bool { return r.pos >= len(r.buf()) }
