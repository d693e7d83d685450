package emitter

import "github.com/fyyaml/fy/internal/token"

// checkEmptySequence reports whether the head of the lookahead queue is
// an empty sequence (SEQUENCE_START immediately followed by its END).
func checkEmptySequence(e *Emitter) bool {
	if len(e.eventsQueue)-e.eventsHead < 2 {
		return false
	}
	return e.eventsQueue[e.eventsHead].Kind == token.SequenceStartEvent &&
		e.eventsQueue[e.eventsHead+1].Kind == token.SequenceEndEvent
}

// checkEmptyMapping reports whether the head of the lookahead queue is
// an empty mapping.
func checkEmptyMapping(e *Emitter) bool {
	if len(e.eventsQueue)-e.eventsHead < 2 {
		return false
	}
	return e.eventsQueue[e.eventsHead].Kind == token.MappingStartEvent &&
		e.eventsQueue[e.eventsHead+1].Kind == token.MappingEndEvent
}

// checkSimpleKey reports whether the node at the head of the queue is
// short and plain enough to serve as a flow/block mapping key without
// "? "/explicit-key notation (spec.md §4.7 simple-key width limit).
func checkSimpleKey(e *Emitter) bool {
	length := 0
	switch e.eventsQueue[e.eventsHead].Kind {
	case token.AliasEvent:
		length += len(e.anchorData.anchor)
	case token.ScalarEvent:
		if e.scalarData.multiline {
			return false
		}
		length += len(e.anchorData.anchor) +
			len(e.tagData.handle) +
			len(e.tagData.suffix) +
			len(e.scalarData.value)
	case token.SequenceStartEvent:
		if !checkEmptySequence(e) {
			return false
		}
		length += len(e.anchorData.anchor) + len(e.tagData.handle) + len(e.tagData.suffix)
	case token.MappingStartEvent:
		if !checkEmptyMapping(e) {
			return false
		}
		length += len(e.anchorData.anchor) + len(e.tagData.handle) + len(e.tagData.suffix)
	default:
		return false
	}
	return length <= 128
}

// The functions below classify a scalar's literal bytes into the
// styles it is safe to emit in, mirroring the restrictions spec.md
// §4.7 places on each style: plain scalars cannot start with an
// indicator or contain ": "/" #", block scalars cannot represent
// leading/trailing blank lines losslessly in every chomp mode, and so
// on. analyzeScalar combines these into the scalarData populated
// before a SCALAR event is written.

func isSpecialCharacter(b byte) bool {
	if b == 0 || b == '\n' {
		return true
	}
	return b < 0x20 || b == 0x7f
}

func isBlankZ(b byte) bool {
	switch b {
	case ' ', '\t', 0, '\n':
		return true
	}
	return false
}

func isDocumentIndicator(s []byte) bool {
	if len(s) < 3 {
		return false
	}
	head := string(s[:3])
	if head != "---" && head != "..." {
		return false
	}
	return len(s) == 3 || isBlankZ(s[3])
}

// analyzeScalar fills e.scalarData from the literal value v.
func (e *Emitter) analyzeScalar(v []byte) {
	sd := &e.scalarData
	sd.value = v

	if len(v) == 0 {
		sd.flowPlainAllowed = true
		sd.blockPlainAllowed = true
		sd.singleQuotedAllowed = true
		sd.blockAllowed = false
		return
	}

	var (
		blockIndicators   bool
		flowIndicators    bool
		lineBreaks        bool
		specialCharacters bool

		leadingSpace  bool
		leadingBreak  bool
		trailingSpace bool
		trailingBreak bool
		breakSpace    bool
		spaceBreak    bool
	)

	if isDocumentIndicator(v) {
		blockIndicators = true
		flowIndicators = true
	}

	preceededByWhitespace := true
	followedByWhitespace := len(v) == 1 || isBlankZ(v[1])

	previousSpace := false
	previousBreak := false

	for i := 0; i < len(v); i++ {
		c := v[i]
		if i == 0 {
			switch c {
			case '#', ',', '[', ']', '{', '}', '&', '*', '!', '|', '>', '\'', '"', '%', '@', '`':
				flowIndicators = true
				blockIndicators = true
			case '?', ':':
				flowIndicators = true
				if followedByWhitespace {
					blockIndicators = true
				}
			case '-':
				if followedByWhitespace {
					flowIndicators = true
					blockIndicators = true
				}
			}
		} else {
			switch c {
			case ',', '?', '[', ']', '{', '}':
				flowIndicators = true
			case ':':
				flowIndicators = true
				if followedByWhitespace {
					blockIndicators = true
				}
			case '#':
				if preceededByWhitespace {
					flowIndicators = true
					blockIndicators = true
				}
			}
		}

		switch {
		case c == '\n':
			lineBreaks = true
		case isSpecialCharacter(c):
			specialCharacters = true
		}

		switch {
		case c == ' ':
			if i == 0 {
				leadingSpace = true
			}
			if i == len(v)-1 {
				trailingSpace = true
			}
			if previousBreak {
				breakSpace = true
			}
			previousSpace = true
			previousBreak = false
		case c == '\n':
			if i == 0 {
				leadingBreak = true
			}
			if i == len(v)-1 {
				trailingBreak = true
			}
			if previousSpace {
				spaceBreak = true
			}
			previousSpace = false
			previousBreak = true
		default:
			previousSpace = false
			previousBreak = false
		}

		preceededByWhitespace = isBlankZ(c)
		if i+2 <= len(v) {
			followedByWhitespace = i+2 >= len(v) || isBlankZ(v[i+2])
		}
	}

	sd.multiline = lineBreaks

	sd.flowPlainAllowed = true
	sd.blockPlainAllowed = true
	sd.singleQuotedAllowed = true
	sd.blockAllowed = true

	if leadingSpace || leadingBreak || trailingSpace || trailingBreak {
		sd.flowPlainAllowed = false
		sd.blockPlainAllowed = false
	}
	if trailingSpace {
		sd.blockAllowed = false
	}
	if breakSpace {
		sd.flowPlainAllowed = false
		sd.blockPlainAllowed = false
		sd.singleQuotedAllowed = false
	}
	if spaceBreak || specialCharacters {
		sd.flowPlainAllowed = false
		sd.blockPlainAllowed = false
		sd.singleQuotedAllowed = false
		sd.blockAllowed = false
	}
	if lineBreaks {
		sd.flowPlainAllowed = false
		sd.blockPlainAllowed = false
	}
	if flowIndicators {
		sd.flowPlainAllowed = false
	}
	if blockIndicators {
		sd.blockPlainAllowed = false
	}
}
