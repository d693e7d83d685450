package emitter

import "github.com/fyyaml/fy/internal/token"

func processLineComment(e *Emitter) error {
	if len(e.lineComment) == 0 {
		return nil
	}
	if !e.lastCharWhitespace {
		if err := e.put(' '); err != nil {
			return err
		}
	}
	if err := writeComment(e, e.lineComment); err != nil {
		return err
	}
	e.lineComment = e.lineComment[:0]
	return nil
}

func processAnchor(e *Emitter) error {
	if e.anchorData.anchor == nil {
		return nil
	}
	c := "&"
	if e.anchorData.alias {
		c = "*"
	}
	if err := e.writeIndicator(c, true, false, false); err != nil {
		return err
	}
	return writeAnchor(e, e.anchorData.anchor)
}

func processTag(e *Emitter) error {
	if len(e.tagData.handle) == 0 && len(e.tagData.suffix) == 0 {
		return nil
	}
	if len(e.tagData.handle) > 0 {
		if err := writeTagHandle(e, []byte(e.tagData.handle)); err != nil {
			return err
		}
		if len(e.tagData.suffix) > 0 {
			if err := writeTagContent(e, []byte(e.tagData.suffix), false); err != nil {
				return err
			}
		}
		return nil
	}
	if err := e.writeIndicator("!<", true, false, false); err != nil {
		return err
	}
	if err := writeTagContent(e, []byte(e.tagData.suffix), false); err != nil {
		return err
	}
	return e.writeIndicator(">", false, false, false)
}

func processScalar(e *Emitter) error {
	switch e.scalarData.style {
	case token.PlainScalarStyle:
		return writePlainScalar(e, e.scalarData.value, !e.simpleKeyContext)
	case token.SingleQuotedScalarStyle:
		return writeSingleQuotedScalar(e, e.scalarData.value, !e.simpleKeyContext)
	case token.DoubleQuotedScalarStyle:
		return writeDoubleQuotedScalar(e, e.scalarData.value, !e.simpleKeyContext)
	case token.LiteralScalarStyle:
		return writeLiteralScalar(e, e.scalarData.value)
	case token.FoldedScalarStyle:
		return writeFoldedScalar(e, e.scalarData.value)
	}
	panic("fy: unknown scalar style")
}

func processHeadComment(e *Emitter) error {
	if len(e.tailComment) > 0 {
		if err := e.writeIndent(); err != nil {
			return err
		}
		if err := writeComment(e, e.tailComment); err != nil {
			return err
		}
		e.tailComment = e.tailComment[:0]
		e.footIndent = e.indentLevel
		if e.footIndent < 0 {
			e.footIndent = 0
		}
	}

	if len(e.headComment) == 0 {
		return nil
	}
	if err := e.writeIndent(); err != nil {
		return err
	}
	if err := writeComment(e, e.headComment); err != nil {
		return err
	}
	e.headComment = e.headComment[:0]
	return nil
}

func processFootComment(e *Emitter) error {
	if len(e.footComment) == 0 {
		return nil
	}
	if err := e.writeIndent(); err != nil {
		return err
	}
	if err := writeComment(e, e.footComment); err != nil {
		return err
	}
	e.footComment = e.footComment[:0]
	e.footIndent = e.indentLevel
	if e.footIndent < 0 {
		e.footIndent = 0
	}
	return nil
}
