package emitter

import (
	"fmt"

	"github.com/fyyaml/fy/internal/token"
)

// defaultTagDirectives are the implicit "!" and "!!" handles every
// document carries even without an explicit %TAG directive.
var defaultTagDirectives = []token.TagDirective{
	{Handle: []byte("!"), Prefix: []byte("!")},
	{Handle: []byte("!!"), Prefix: []byte("tag:yaml.org,2002:")},
}

func (e *Emitter) stateMachine(ev *token.Event) error {
	switch e.state {
	case emitStreamStartState:
		return e.emitStreamStart(ev)
	case emitFirstDocumentStartState:
		return e.emitDocumentStart(ev, true)
	case emitDocumentStartState:
		return e.emitDocumentStart(ev, false)
	case emitDocumentContentState:
		return e.emitDocumentContent(ev)
	case emitDocumentEndState:
		return e.emitDocumentEnd(ev)
	case emitFlowSequenceFirstItemState:
		return e.emitFlowSequenceItem(ev, true, false)
	case emitFlowSequenceTrailItemState:
		return e.emitFlowSequenceItem(ev, false, true)
	case emitFlowSequenceItemState:
		return e.emitFlowSequenceItem(ev, false, false)
	case emitFlowMappingFirstKeyState:
		return e.emitFlowMappingKey(ev, true, false)
	case emitFlowMappingTrailKeyState:
		return e.emitFlowMappingKey(ev, false, true)
	case emitFlowMappingKeyState:
		return e.emitFlowMappingKey(ev, false, false)
	case emitFlowMappingSimpleValueState:
		return e.emitFlowMappingValue(ev, true)
	case emitFlowMappingValueState:
		return e.emitFlowMappingValue(ev, false)
	case emitBlockSequenceFirstItemState:
		return e.emitBlockSequenceItem(ev, true)
	case emitBlockSequenceItemState:
		return e.emitBlockSequenceItem(ev, false)
	case emitBlockMappingFirstKeyState:
		return e.emitBlockMappingKey(ev, true)
	case emitBlockMappingKeyState:
		return e.emitBlockMappingKey(ev, false)
	case emitBlockMappingSimpleValueState:
		return e.emitBlockMappingValue(ev, true)
	case emitBlockMappingValueState:
		return e.emitBlockMappingValue(ev, false)
	case emitEndState:
		return fmt.Errorf("fy: expected nothing after STREAM-END")
	}
	panic("fy: invalid emitter state")
}

func (e *Emitter) emitStreamStart(ev *token.Event) error {
	if ev.Kind != token.StreamStartEvent {
		return fmt.Errorf("fy: expected STREAM-START")
	}
	if e.encoding == token.AnyEncoding {
		e.encoding = ev.Encoding
		if e.encoding == token.AnyEncoding {
			e.encoding = token.UTF8Encoding
		}
	}
	if e.indent < 2 || e.indent > 9 {
		e.indent = 2
	}
	if e.width > 0 && e.width <= e.indent*2 {
		e.width = 80
	}
	if e.width <= 0 {
		e.width = 1<<31 - 1
	}

	e.indentLevel = -1
	e.line = 0
	e.column = 0
	e.lastCharWhitespace = true
	e.lastCharIndent = true
	e.footIndent = -1

	if e.encoding != token.UTF8Encoding {
		if err := e.writeAll([]byte("\xEF\xBB\xBF")); err != nil {
			return err
		}
	}
	e.state = emitFirstDocumentStartState
	return nil
}

func (e *Emitter) emitDocumentStart(ev *token.Event, first bool) error {
	if ev.Kind == token.DocumentStartEvent {
		return e.emitDocumentStartEvent(ev, first)
	}
	if ev.Kind == token.StreamEndEvent {
		if e.openEnded {
			if err := e.writeIndicator("...", true, false, false); err != nil {
				return err
			}
			if err := e.writeIndent(); err != nil {
				return err
			}
		}
		e.state = emitEndState
		return nil
	}
	return fmt.Errorf("fy: expected DOCUMENT-START or STREAM-END")
}

func (e *Emitter) emitDocumentStartEvent(ev *token.Event, first bool) error {
	if ev.VersionDirective != nil {
		if err := analyzeVersionDirective(ev.VersionDirective); err != nil {
			return err
		}
	}
	for i := range ev.TagDirectives {
		if err := analyzeTagDirective(&ev.TagDirectives[i]); err != nil {
			return err
		}
		if err := appendTagDirective(e, ev.TagDirectives[i], false); err != nil {
			return err
		}
	}
	for _, td := range defaultTagDirectives {
		if err := appendTagDirective(e, td, true); err != nil {
			return err
		}
	}

	implicit := ev.Implicit
	if !first {
		implicit = false
	}

	if e.openEnded && (ev.VersionDirective != nil || len(ev.TagDirectives) > 0) {
		if err := e.writeIndicator("...", true, false, false); err != nil {
			return err
		}
		if err := e.writeIndent(); err != nil {
			return err
		}
	}

	if ev.VersionDirective != nil {
		implicit = false
		directive := fmt.Sprintf("%%YAML %d.%d", ev.VersionDirective.Major, ev.VersionDirective.Minor)
		if err := e.writeIndicator(directive, true, false, false); err != nil {
			return err
		}
		if err := e.writeIndent(); err != nil {
			return err
		}
	}

	if len(ev.TagDirectives) > 0 {
		implicit = false
		for i := range ev.TagDirectives {
			td := &ev.TagDirectives[i]
			if err := e.writeIndicator("%TAG", true, false, false); err != nil {
				return err
			}
			if err := writeTagHandle(e, td.Handle); err != nil {
				return err
			}
			if err := writeTagContent(e, td.Prefix, true); err != nil {
				return err
			}
			if err := e.writeIndent(); err != nil {
				return err
			}
		}
	}

	if !implicit {
		if err := e.writeIndent(); err != nil {
			return err
		}
		if err := e.writeIndicator("---", true, false, false); err != nil {
			return err
		}
		if err := e.writeIndent(); err != nil {
			return err
		}
	}

	if len(e.headComment) > 0 {
		if err := processHeadComment(e); err != nil {
			return err
		}
		if err := e.putBreak(); err != nil {
			return err
		}
	}

	e.state = emitDocumentContentState
	return nil
}

// selectScalarStyle picks the scalar style ultimately written, falling
// back through the ladder any requested style's safety flags forbid.
func (e *Emitter) selectScalarStyle(ev *token.Event) error {
	noTag := len(e.tagData.handle) == 0 && len(e.tagData.suffix) == 0
	if noTag && !ev.Implicit && !ev.QuotedImplicit {
		return fmt.Errorf("fy: neither tag nor implicit flags are specified")
	}

	style := ev.Style
	if style == token.AnyScalarStyle {
		style = token.PlainScalarStyle
	}
	if e.simpleKeyContext && e.scalarData.multiline {
		style = token.DoubleQuotedScalarStyle
	}

	if style == token.PlainScalarStyle {
		if e.flowLevel > 0 && !e.scalarData.flowPlainAllowed ||
			e.flowLevel == 0 && !e.scalarData.blockPlainAllowed {
			style = token.SingleQuotedScalarStyle
		}
		if len(e.scalarData.value) == 0 && (e.flowLevel > 0 || e.simpleKeyContext) {
			style = token.SingleQuotedScalarStyle
		}
		if noTag && !ev.Implicit {
			style = token.SingleQuotedScalarStyle
		}
	}
	if style == token.SingleQuotedScalarStyle && !e.scalarData.singleQuotedAllowed {
		style = token.DoubleQuotedScalarStyle
	}
	if (style == token.LiteralScalarStyle || style == token.FoldedScalarStyle) &&
		(!e.scalarData.blockAllowed || e.flowLevel > 0 || e.simpleKeyContext) {
		style = token.DoubleQuotedScalarStyle
	}

	if noTag && !ev.QuotedImplicit && style != token.PlainScalarStyle {
		e.tagData.handle = "!"
	}
	e.scalarData.style = style
	return nil
}

func (e *Emitter) emitDocumentContent(ev *token.Event) error {
	e.push(emitDocumentEndState)
	if err := processHeadComment(e); err != nil {
		return err
	}
	if err := e.emitNode(ev, true, false); err != nil {
		return err
	}
	if err := processLineComment(e); err != nil {
		return err
	}
	return processFootComment(e)
}

func (e *Emitter) emitDocumentEnd(ev *token.Event) error {
	if ev.Kind != token.DocumentEndEvent {
		return fmt.Errorf("fy: expected DOCUMENT-END")
	}
	e.footIndent = 0
	if err := processFootComment(e); err != nil {
		return err
	}
	e.footIndent = -1
	if err := e.writeIndent(); err != nil {
		return err
	}
	if !ev.Implicit {
		if err := e.writeIndicator("...", true, false, false); err != nil {
			return err
		}
		if err := e.writeIndent(); err != nil {
			return err
		}
	}
	e.state = emitDocumentStartState
	e.tagDirectives = e.tagDirectives[:0]
	return nil
}

func (e *Emitter) emitFlowSequenceItem(ev *token.Event, first, trail bool) error {
	if first {
		if err := e.writeIndicator("[", true, true, false); err != nil {
			return err
		}
		e.increaseIndent(true, false)
		e.flowLevel++
	}

	if ev.Kind == token.SequenceEndEvent {
		e.flowLevel--
		e.restoreIndent()
		if e.column == 0 {
			if err := e.writeIndent(); err != nil {
				return err
			}
		}
		if err := e.writeIndicator("]", false, false, false); err != nil {
			return err
		}
		if err := processLineComment(e); err != nil {
			return err
		}
		if err := processFootComment(e); err != nil {
			return err
		}
		e.state = e.pop()
		return nil
	}

	if !first && !trail {
		if err := e.writeIndicator(",", false, false, false); err != nil {
			return err
		}
	}

	if err := processHeadComment(e); err != nil {
		return err
	}
	if e.column == 0 || e.column > e.width {
		if err := e.writeIndent(); err != nil {
			return err
		}
	}
	if len(e.lineComment)+len(e.footComment)+len(e.tailComment) > 0 {
		e.push(emitFlowSequenceTrailItemState)
	} else {
		e.push(emitFlowSequenceItemState)
	}
	if err := e.emitNode(ev, false, false); err != nil {
		return err
	}
	if len(e.lineComment)+len(e.footComment)+len(e.tailComment) > 0 {
		if err := e.writeIndicator(",", false, false, false); err != nil {
			return err
		}
	}
	if err := processLineComment(e); err != nil {
		return err
	}
	return processFootComment(e)
}

func (e *Emitter) emitFlowMappingKey(ev *token.Event, first, trail bool) error {
	if first {
		if err := e.writeIndicator("{", true, true, false); err != nil {
			return err
		}
		e.increaseIndent(true, false)
		e.flowLevel++
	}

	if ev.Kind == token.MappingEndEvent {
		if len(e.headComment)+len(e.footComment)+len(e.tailComment) > 0 && !first && !trail {
			if err := e.writeIndicator(",", false, false, false); err != nil {
				return err
			}
		}
		if err := processHeadComment(e); err != nil {
			return err
		}
		e.flowLevel--
		e.restoreIndent()
		if err := e.writeIndicator("}", false, false, false); err != nil {
			return err
		}
		if err := processLineComment(e); err != nil {
			return err
		}
		if err := processFootComment(e); err != nil {
			return err
		}
		e.state = e.pop()
		return nil
	}

	if !first && !trail {
		if err := e.writeIndicator(",", false, false, false); err != nil {
			return err
		}
	}

	if err := processHeadComment(e); err != nil {
		return err
	}
	if e.column == 0 || e.column > e.width {
		if err := e.writeIndent(); err != nil {
			return err
		}
	}

	if checkSimpleKey(e) {
		e.push(emitFlowMappingSimpleValueState)
		return e.emitNode(ev, false, true)
	}
	if err := e.writeIndicator("?", true, false, false); err != nil {
		return err
	}
	e.push(emitFlowMappingValueState)
	return e.emitNode(ev, false, false)
}

func (e *Emitter) emitFlowMappingValue(ev *token.Event, simple bool) error {
	if simple {
		if err := e.writeIndicator(":", false, false, false); err != nil {
			return err
		}
	} else {
		if e.column > e.width {
			if err := e.writeIndent(); err != nil {
				return err
			}
		}
		if err := e.writeIndicator(":", true, false, false); err != nil {
			return err
		}
	}
	if len(e.lineComment)+len(e.footComment)+len(e.tailComment) > 0 {
		e.push(emitFlowMappingTrailKeyState)
	} else {
		e.push(emitFlowMappingKeyState)
	}
	if err := e.emitNode(ev, false, false); err != nil {
		return err
	}
	if len(e.lineComment)+len(e.footComment)+len(e.tailComment) > 0 {
		if err := e.writeIndicator(",", false, false, false); err != nil {
			return err
		}
	}
	if err := processLineComment(e); err != nil {
		return err
	}
	return processFootComment(e)
}

func (e *Emitter) emitBlockSequenceItem(ev *token.Event, first bool) error {
	if first {
		e.increaseIndent(false, false)
	}
	if ev.Kind == token.SequenceEndEvent {
		e.restoreIndent()
		e.state = e.pop()
		return nil
	}
	if err := processHeadComment(e); err != nil {
		return err
	}
	if err := e.writeIndent(); err != nil {
		return err
	}
	if err := e.writeIndicator("-", true, false, true); err != nil {
		return err
	}
	e.push(emitBlockSequenceItemState)
	if err := e.emitNode(ev, false, false); err != nil {
		return err
	}
	if err := processLineComment(e); err != nil {
		return err
	}
	return processFootComment(e)
}

func (e *Emitter) emitBlockMappingKey(ev *token.Event, first bool) error {
	if first {
		e.increaseIndent(false, false)
	}
	if err := processHeadComment(e); err != nil {
		return err
	}
	if ev.Kind == token.MappingEndEvent {
		e.restoreIndent()
		e.state = e.pop()
		return nil
	}
	if err := e.writeIndent(); err != nil {
		return err
	}
	if len(e.lineComment) > 0 {
		e.keyLineComment = e.lineComment
		e.lineComment = nil
	}
	if checkSimpleKey(e) {
		e.push(emitBlockMappingSimpleValueState)
		return e.emitNode(ev, false, true)
	}
	if err := e.writeIndicator("?", true, false, true); err != nil {
		return err
	}
	e.push(emitBlockMappingValueState)
	return e.emitNode(ev, false, false)
}

func (e *Emitter) emitBlockMappingValue(ev *token.Event, simple bool) error {
	if simple {
		if err := e.writeIndicator(":", false, false, false); err != nil {
			return err
		}
	} else {
		if err := e.writeIndent(); err != nil {
			return err
		}
		if err := e.writeIndicator(":", true, false, true); err != nil {
			return err
		}
	}
	if len(e.keyLineComment) > 0 {
		switch {
		case ev.Kind == token.ScalarEvent:
			if len(e.lineComment) == 0 {
				e.lineComment = e.keyLineComment
				e.keyLineComment = nil
			}
		case ev.Collection != token.FlowCollectionStyle &&
			(ev.Kind == token.MappingStartEvent || ev.Kind == token.SequenceStartEvent):
			e.lineComment, e.keyLineComment = e.keyLineComment, e.lineComment
			if err := processLineComment(e); err != nil {
				return err
			}
			e.lineComment, e.keyLineComment = e.keyLineComment, e.lineComment
		}
	}
	e.push(emitBlockMappingKeyState)
	if err := e.emitNode(ev, false, false); err != nil {
		return err
	}
	if err := processLineComment(e); err != nil {
		return err
	}
	return processFootComment(e)
}

func (e *Emitter) emitNode(ev *token.Event, root, simpleKey bool) error {
	e.rootContext = root
	e.simpleKeyContext = simpleKey

	switch ev.Kind {
	case token.AliasEvent:
		return e.emitAlias(ev)
	case token.ScalarEvent:
		return e.emitScalar(ev)
	case token.SequenceStartEvent:
		return e.emitSequenceStart(ev)
	case token.MappingStartEvent:
		return e.emitMappingStart(ev)
	default:
		return fmt.Errorf("fy: expected SCALAR, SEQUENCE-START, MAPPING-START, or ALIAS, got %v", ev.Kind)
	}
}

func (e *Emitter) emitAlias(ev *token.Event) error {
	if err := processAnchor(e); err != nil {
		return err
	}
	e.state = e.pop()
	return nil
}

func (e *Emitter) emitScalar(ev *token.Event) error {
	if err := e.selectScalarStyle(ev); err != nil {
		return err
	}
	if err := processAnchor(e); err != nil {
		return err
	}
	if err := processTag(e); err != nil {
		return err
	}
	e.increaseIndent(true, false)
	if err := processScalar(e); err != nil {
		return err
	}
	e.restoreIndent()
	e.state = e.pop()
	return nil
}

func (e *Emitter) emitSequenceStart(ev *token.Event) error {
	if err := processAnchor(e); err != nil {
		return err
	}
	if err := processTag(e); err != nil {
		return err
	}
	if e.flowLevel > 0 || e.forceFlow || ev.Collection == token.FlowCollectionStyle || checkEmptySequence(e) {
		e.state = emitFlowSequenceFirstItemState
	} else {
		e.state = emitBlockSequenceFirstItemState
	}
	return nil
}

func (e *Emitter) emitMappingStart(ev *token.Event) error {
	if err := processAnchor(e); err != nil {
		return err
	}
	if err := processTag(e); err != nil {
		return err
	}
	if e.flowLevel > 0 || e.forceFlow || ev.Collection == token.FlowCollectionStyle || checkEmptyMapping(e) {
		e.state = emitFlowMappingFirstKeyState
	} else {
		e.state = emitBlockMappingFirstKeyState
	}
	return nil
}
