package fy

import (
	"fmt"

	"github.com/fyyaml/fy/internal/token"
)

// ErrorKind classifies a user-visible failure (spec.md §7).
type ErrorKind int

const (
	LexicalError ErrorKind = iota
	SyntacticError
	SemanticError
	ResourceError
	ComposerError
)

func (k ErrorKind) String() string {
	switch k {
	case LexicalError:
		return "lexical"
	case SyntacticError:
		return "syntactic"
	case SemanticError:
		return "semantic"
	case ResourceError:
		return "resource"
	case ComposerError:
		return "composer"
	}
	return "unknown"
}

// Error is the single error type every user-visible failure surfaces
// as (mirrors the teacher's `*yaml.TypeError`/wrapped-error
// convention): a source Mark, an ErrorKind, a message, and an optional
// wrapped cause for errors.Is/errors.As.
type Error struct {
	Mark token.Mark
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Mark == (token.Mark{}) {
		return fmt.Sprintf("fy: %s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("fy: %s: %s: %s", e.Mark, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, mark token.Mark, err error) *Error {
	return &Error{Mark: mark, Kind: kind, Msg: err.Error(), Err: err}
}
