package fy

import (
	"io"

	"github.com/fyyaml/fy/internal/document"
	"github.com/fyyaml/fy/internal/emitter"
	"github.com/fyyaml/fy/internal/token"
)

// Emitter renders events, or a whole Document, back to YAML bytes
// (spec.md §4.7).
type Emitter struct {
	cfg config
	e   *emitter.Emitter
}

// NewEmitter creates an Emitter writing to w.
func NewEmitter(w io.Writer, opts ...Option) *Emitter {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	eopts := []emitter.Option{
		emitter.WithIndent(cfg.indent),
		emitter.WithWidth(cfg.width),
		emitter.WithMode(cfg.mode),
	}
	if cfg.flow == FlowFlow || cfg.flow == FlowOneline {
		eopts = append(eopts, emitter.WithFlow(true))
	} else if cfg.flow == FlowBlock {
		eopts = append(eopts, emitter.WithFlow(false))
	}
	return &Emitter{cfg: cfg, e: emitter.New(w, eopts...)}
}

// Emit queues and (once enough lookahead is available) writes one
// event. final marks the end of the stream so a still-open previous
// document isn't forced to emit a trailing "...".
func (em *Emitter) Emit(ev *token.Event, final bool) error {
	if err := em.e.Emit(ev, final); err != nil {
		em.cfg.logger.errorf("emitter", err)
		return newError(SyntacticError, ev.StartMark, err)
	}
	return nil
}

// EmitDocument walks doc with a document.Iterator and emits the
// resulting event stream in full-stream scope, producing a standalone
// YAML document.
func (em *Emitter) EmitDocument(doc *Document) error {
	return em.emitScoped(doc, document.ScopeFull)
}

// EmitDocuments emits docs as one multi-document stream, with a single
// shared stream-start/stream-end envelope.
func (em *Emitter) EmitDocuments(docs []*Document) error {
	if err := em.Emit(&token.Event{Kind: token.StreamStartEvent}, false); err != nil {
		return err
	}
	for _, doc := range docs {
		if err := em.emitScoped(doc, document.ScopeDocument); err != nil {
			return err
		}
	}
	return em.Emit(&token.Event{Kind: token.StreamEndEvent}, true)
}

func (em *Emitter) emitScoped(doc *Document, scope document.Scope) error {
	it := document.NewIterator(doc, scope)
	for {
		ev, err := it.GenerateNext()
		if err != nil {
			return newError(ResourceError, token.Mark{}, err)
		}
		if ev == nil {
			return nil
		}
		final := ev.Kind == token.StreamEndEvent
		if err := em.Emit(ev, final); err != nil {
			return err
		}
	}
}
