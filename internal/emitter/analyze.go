package emitter

import (
	"bytes"
	"errors"

	"github.com/fyyaml/fy/internal/token"
)

func analyzeAnchor(e *Emitter, anchor []byte, alias bool) error {
	if len(anchor) == 0 {
		if alias {
			return errors.New("fy: alias value must not be empty")
		}
		return errors.New("fy: anchor value must not be empty")
	}
	for _, b := range anchor {
		if !token.IsAlpha([]byte{b}, 0) {
			if alias {
				return errors.New("fy: alias value must contain alphanumerical characters only")
			}
			return errors.New("fy: anchor value must contain alphanumerical characters only")
		}
	}
	e.anchorData.anchor = anchor
	e.anchorData.alias = alias
	return nil
}

func analyzeTag(e *Emitter, tag []byte) error {
	if len(tag) == 0 {
		return errors.New("fy: tag value must not be empty")
	}
	for _, td := range e.tagDirectives {
		if bytes.HasPrefix(tag, td.Prefix) {
			e.tagData.handle = string(td.Handle)
			e.tagData.suffix = string(tag[len(td.Prefix):])
			return nil
		}
	}
	e.tagData.suffix = string(tag)
	return nil
}

func analyzeVersionDirective(vd *token.VersionDirective) error {
	if vd.Major != 1 || (vd.Minor != 1 && vd.Minor != 2 && vd.Minor != 3) {
		return errors.New("fy: incompatible %YAML directive")
	}
	return nil
}

func analyzeTagDirective(td *token.TagDirective) error {
	if len(td.Handle) == 0 {
		return errors.New("fy: tag handle must not be empty")
	}
	if td.Handle[0] != '!' {
		return errors.New("fy: tag handle must start with '!'")
	}
	if td.Handle[len(td.Handle)-1] != '!' {
		return errors.New("fy: tag handle must end with '!'")
	}
	for i := 1; i < len(td.Handle)-1; i++ {
		if !token.IsAlpha(td.Handle, i) {
			return errors.New("fy: tag handle must contain alphanumerical characters only")
		}
	}
	if len(td.Prefix) == 0 {
		return errors.New("fy: tag prefix must not be empty")
	}
	return nil
}

// analyzeEvent resets the per-event anchor/tag/scalar scratch fields
// and repopulates them from ev, classifying a SCALAR event's literal
// text via analyzeScalar.
func (e *Emitter) analyzeEvent(ev *token.Event) error {
	e.anchorData.anchor = nil
	e.tagData.handle = ""
	e.tagData.suffix = ""
	e.scalarData.value = nil

	if len(ev.HeadComment) > 0 {
		e.headComment = ev.HeadComment
	}
	if len(ev.LineComment) > 0 {
		e.lineComment = ev.LineComment
	}
	if len(ev.FootComment) > 0 {
		e.footComment = ev.FootComment
	}

	switch ev.Kind {
	case token.AliasEvent:
		if err := analyzeAnchor(e, ev.Anchor, true); err != nil {
			return err
		}
	case token.ScalarEvent:
		if len(ev.Anchor) > 0 {
			if err := analyzeAnchor(e, ev.Anchor, false); err != nil {
				return err
			}
		}
		if len(ev.Tag) > 0 && !ev.Implicit && !ev.QuotedImplicit {
			if err := analyzeTag(e, ev.Tag); err != nil {
				return err
			}
		}
		e.analyzeScalar(ev.Value)
	case token.SequenceStartEvent, token.MappingStartEvent:
		if len(ev.Anchor) > 0 {
			if err := analyzeAnchor(e, ev.Anchor, false); err != nil {
				return err
			}
		}
		if len(ev.Tag) > 0 && !ev.Implicit {
			if err := analyzeTag(e, ev.Tag); err != nil {
				return err
			}
		}
	case token.DocumentStartEvent:
		if ev.VersionDirective != nil {
			if err := analyzeVersionDirective(ev.VersionDirective); err != nil {
				return err
			}
		}
		for i := range ev.TagDirectives {
			if err := analyzeTagDirective(&ev.TagDirectives[i]); err != nil {
				return err
			}
		}
	}
	return nil
}
