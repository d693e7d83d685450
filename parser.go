package fy

import (
	"bytes"
	"io"

	"github.com/fyyaml/fy/internal/document"
	"github.com/fyyaml/fy/internal/input"
	"github.com/fyyaml/fy/internal/parser"
	"github.com/fyyaml/fy/internal/scanner"
	"github.com/fyyaml/fy/internal/token"
)

// Document is the in-memory tree produced by a Parser and consumed by
// an Emitter/Composer/Iterator.
type Document = document.Document

// Node is one tree node of a Document (scalar, sequence, or mapping).
type Node = document.Node

// NodeKind is a Node's shape.
type NodeKind = document.Kind

const (
	ScalarKind   = document.ScalarKind
	SequenceKind = document.SequenceKind
	MappingKind  = document.MappingKind
)

// Parser reads YAML bytes and drives the internal input/scanner/
// parser chain to produce events and, on request, whole Documents
// (spec.md §4.1-§4.4). It is single-use and not safe for concurrent
// calls (spec.md §5).
type Parser struct {
	cfg config
	p   *parser.Parser
}

// NewParser creates a Parser reading b, fully buffered in memory
// (spec.md §4.1: BOM-sniffed, transcoded to UTF-8 internally).
func NewParser(b []byte, opts ...Option) *Parser {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	in, err := input.NewFromReader(bytes.NewReader(b), input.OwnedBuffer)
	if err != nil {
		in = input.NewFromBytes(b)
	}
	sc := scanner.New(in, cfg.mode)
	return &Parser{cfg: cfg, p: parser.New(sc, cfg.mode)}
}

// NewParserFromReader creates a Parser over r, read fully into memory
// before scanning begins.
func NewParserFromReader(r io.Reader, opts ...Option) (*Parser, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, newError(ResourceError, token.Mark{}, err)
	}
	return NewParser(buf.Bytes(), opts...), nil
}

// Next returns the next event, or (nil, nil) once the stream is
// exhausted (spec.md §4.3).
func (p *Parser) Next() (*token.Event, error) {
	ev, err := p.p.Next()
	if err != nil {
		p.cfg.logger.errorf("parser", err)
		return nil, wrapParseErr(err)
	}
	return ev, nil
}

// Documents returns one Document per call, nil (with nil error) at
// end of stream (spec.md §4.4 "pull mode"). Each call drives the
// builder over this Parser's event stream until a document completes.
func (p *Parser) Documents() DocumentIterFunc {
	return func() (*Document, error) {
		doc, err := document.Build(p, p.cfg.mode, p.cfg.strict)
		if err != nil {
			return nil, wrapParseErr(err)
		}
		if doc == nil || doc.Root == nil {
			return nil, nil
		}
		return doc, nil
	}
}

// DocumentIterFunc is returned by Parser.Documents; call it repeatedly
// until it returns (nil, nil).
type DocumentIterFunc func() (*Document, error)

// ParseDocument parses exactly one document from b.
func ParseDocument(b []byte, opts ...Option) (*Document, error) {
	p := NewParser(b, opts...)
	next := p.Documents()
	return next()
}

// ParseAll parses every document in a multi-document stream.
func ParseAll(b []byte, opts ...Option) ([]*Document, error) {
	p := NewParser(b, opts...)
	next := p.Documents()
	var docs []*Document
	for {
		doc, err := next()
		if err != nil {
			return docs, err
		}
		if doc == nil {
			return docs, nil
		}
		docs = append(docs, doc)
	}
}

func wrapParseErr(err error) error {
	switch e := err.(type) {
	case *scanner.Error:
		return newErrorAt(LexicalError, e.Mark, err)
	case *parser.Error:
		return newErrorAt(SyntacticError, e.Mark, err)
	case *document.ErrUnresolvedAlias:
		return newErrorAt(SemanticError, e.Mark, err)
	case *document.ErrDuplicateKey:
		return newErrorAt(SemanticError, e.Mark, err)
	}
	return newError(ResourceError, token.Mark{}, err)
}

func newErrorAt(kind ErrorKind, mark token.Mark, err error) *Error {
	return &Error{Mark: mark, Kind: kind, Msg: err.Error(), Err: err}
}
