package fy

import (
	"github.com/fyyaml/fy/internal/document"
	"github.com/fyyaml/fy/internal/token"
)

// ComposerResult is the composer callback's four-valued return
// (spec.md §4.5, §9 design note: "do not overload booleans").
type ComposerResult int

const (
	ComposerContinue ComposerResult = iota
	ComposerStop
	ComposerStartSkip
	ComposerStopSkip
)

// ComposerCallback is invoked once per event with the composer's live
// path at the moment of the call.
type ComposerCallback func(ev *token.Event, path []document.PathComponent) ComposerResult

// composerFrame is one level of the composer's position stack,
// mirroring document.Builder's frame but tracking path bookkeeping
// instead of building nodes.
type composerFrame struct {
	kind        document.Kind
	index       int
	awaitingKey bool
	pendingKey  string
}

// Composer maintains the live Path alongside a user callback while
// streaming a Parser's events (spec.md §4.5). It never itself builds a
// Document; RequestSubtree attaches an internal document.Builder for
// callers that want lazy DOM construction of one subtree while the
// rest of the stream stays purely event-driven.
type Composer struct {
	cfg config

	stack []composerFrame
	path  []document.PathComponent

	skipDepth int

	building   *document.Builder
	buildDepth int
	onSubtree  func(*Document)
}

// NewComposer creates a Composer.
func NewComposer(opts ...Option) *Composer {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Composer{cfg: cfg}
}

// RequestSubtree asks the composer to lazily build a Document for the
// subtree rooted at the event currently being dispatched to the
// callback, delivering it via onDone once the matching END event has
// been consumed. Must be called from within the ComposerCallback
// handling a SEQUENCE-START or MAPPING-START event.
func (c *Composer) RequestSubtree(onDone func(*Document)) {
	c.building = document.NewBuilder(c.cfg.mode)
	c.building.Strict = c.cfg.strict
	c.buildDepth = 0
	c.onSubtree = onDone
}

// Run drives p's event stream through the composer until the stream
// ends or cb returns ComposerStop/ComposerStopSkip at the top level.
func (c *Composer) Run(p *Parser, cb ComposerCallback) error {
	for {
		ev, err := p.Next()
		if err != nil {
			return err
		}
		if ev == nil {
			return nil
		}
		stop, err := c.dispatch(ev, cb)
		if err != nil {
			return err
		}
		if stop || ev.Kind == token.StreamEndEvent {
			return nil
		}
	}
}

func (c *Composer) top() *composerFrame {
	if len(c.stack) == 0 {
		return nil
	}
	return &c.stack[len(c.stack)-1]
}

// component computes the path component describing ev's position
// relative to the current top frame (its parent), the same
// parent-relative scheme document.Node.Path uses.
func (c *Composer) component(ev *token.Event) (document.PathComponent, bool) {
	f := c.top()
	if f == nil {
		return document.PathComponent{}, false
	}
	if f.kind == document.SequenceKind {
		return document.PathComponent{Index: f.index}, true
	}
	if f.awaitingKey {
		key := ""
		if ev.Kind == token.ScalarEvent {
			key = string(ev.Value)
		}
		return document.PathComponent{Field: key, IsKey: true}, true
	}
	return document.PathComponent{Field: f.pendingKey}, true
}

// advance records that the current top frame's child (just fully
// processed) is done, moving a sequence's index forward or a
// mapping's key/value half-step forward.
func (c *Composer) advance(ev *token.Event) {
	f := c.top()
	if f == nil {
		return
	}
	if f.kind == document.SequenceKind {
		f.index++
		return
	}
	if f.awaitingKey {
		key := ""
		if ev.Kind == token.ScalarEvent {
			key = string(ev.Value)
		}
		f.pendingKey = key
		f.awaitingKey = false
		return
	}
	f.awaitingKey = true
	f.pendingKey = ""
}

func (c *Composer) dispatch(ev *token.Event, cb ComposerCallback) (bool, error) {
	if c.building != nil {
		if err := c.building.Feed(ev); err != nil {
			return false, err
		}
	}

	switch ev.Kind {
	case token.SequenceStartEvent, token.MappingStartEvent:
		comp, ok := c.component(ev)
		if ok {
			c.path = append(c.path, comp)
		}
		wasBuilding := c.building != nil
		result := ComposerContinue
		if !wasBuilding {
			result = c.invoke(ev, cb)
		}
		if !wasBuilding && c.building != nil {
			// cb just called RequestSubtree for this very START event:
			// it is the subtree's root and must be fed so the delegate
			// builder opens it, not just its descendants.
			if err := c.building.Feed(ev); err != nil {
				return false, err
			}
		}
		kind := document.SequenceKind
		if ev.Kind == token.MappingStartEvent {
			kind = document.MappingKind
		}
		c.stack = append(c.stack, composerFrame{kind: kind, awaitingKey: kind == document.MappingKind})
		if c.building != nil {
			c.buildDepth++
		}
		return c.applyResult(ev, result)

	case token.SequenceEndEvent, token.MappingEndEvent:
		result := ComposerContinue
		if c.building == nil {
			result = c.invoke(ev, cb)
		}
		if len(c.stack) > 0 {
			c.stack = c.stack[:len(c.stack)-1]
		}
		if c.building != nil {
			c.buildDepth--
			if c.buildDepth <= 0 {
				doc := c.building.Document()
				onDone := c.onSubtree
				c.building, c.onSubtree, c.buildDepth = nil, nil, 0
				if onDone != nil {
					onDone(doc)
				}
			}
		}
		if len(c.path) > 0 {
			c.path = c.path[:len(c.path)-1]
		}
		c.advance(ev)
		return c.applyResult(ev, result)

	case token.ScalarEvent, token.AliasEvent:
		comp, ok := c.component(ev)
		result := ComposerContinue
		if c.building == nil {
			if ok {
				c.path = append(c.path, comp)
			}
			result = c.invoke(ev, cb)
			if ok {
				c.path = c.path[:len(c.path)-1]
			}
		}
		c.advance(ev)
		return c.applyResult(ev, result)

	default:
		if c.building == nil {
			result := cb(ev, c.path)
			return c.applyResult(ev, result)
		}
		return false, nil
	}
}

func (c *Composer) invoke(ev *token.Event, cb ComposerCallback) ComposerResult {
	if c.skipDepth > 0 {
		if ev.Kind == token.SequenceStartEvent || ev.Kind == token.MappingStartEvent {
			c.skipDepth++
		}
		return ComposerContinue
	}
	return cb(ev, c.path)
}

// applyResult interprets the callback's four-valued result: Continue
// is a no-op, Stop ends the run, StartSkip enters skip mode (events
// still flow through path bookkeeping but not to cb until the
// matching END), StopSkip both starts a skip and ends the run once it
// closes — modelled here simply as an immediate stop, since there is
// no further callback invocation left to skip past.
func (c *Composer) applyResult(ev *token.Event, result ComposerResult) (bool, error) {
	switch result {
	case ComposerStop:
		return true, nil
	case ComposerStopSkip:
		return true, nil
	case ComposerStartSkip:
		if ev.Kind == token.SequenceStartEvent || ev.Kind == token.MappingStartEvent {
			c.skipDepth = 1
		}
		return false, nil
	}
	if c.skipDepth > 0 && (ev.Kind == token.SequenceEndEvent || ev.Kind == token.MappingEndEvent) {
		c.skipDepth--
	}
	return false, nil
}
