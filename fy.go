// Package fy is the public surface of the fy YAML processor: Parser,
// Emitter, Composer and Document iterator over the internal scanner/
// parser/document/emitter engine, plus the ypath query language
// (spec.md §4.5-§4.9, §6).
package fy

import "github.com/fyyaml/fy/internal/token"

// Mode selects the YAML version / JSON-compatibility dialect a
// Parser or Emitter operates under.
type Mode = token.Mode

const (
	YAML11 = token.ModeYAML11
	YAML12 = token.ModeYAML12
	YAML13 = token.ModeYAML13
	JSON   = token.ModeJSON
)

// FlowStyle selects how the emitter picks block vs flow presentation
// for collections (spec.md §4.7).
type FlowStyle int

const (
	FlowAny FlowStyle = iota
	FlowBlock
	FlowFlow
	FlowOneline
)
