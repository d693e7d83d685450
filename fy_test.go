package fy

import (
	"bytes"
	"testing"

	"github.com/fyyaml/fy/internal/document"
	"github.com/fyyaml/fy/internal/token"
	"github.com/stretchr/testify/require"
)

func TestParseDocumentAndAll(t *testing.T) {
	doc, err := ParseDocument([]byte("name: alice\nage: 30\n"))
	require.NoError(t, err)
	require.NotNil(t, doc.Root)
	require.True(t, doc.Root.IsMapping())

	docs, err := ParseAll([]byte("a: 1\n---\nb: 2\n"))
	require.NoError(t, err)
	require.Len(t, docs, 2)
}

func TestParseAllDuplicateKeyError(t *testing.T) {
	_, err := ParseAll([]byte("a: 1\na: 2\n"))
	require.Error(t, err)
	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, SemanticError, ferr.Kind)
	var dup *document.ErrDuplicateKey
	require.ErrorAs(t, err, &dup)
}

func TestEmitterRoundTrip(t *testing.T) {
	docs, err := ParseAll([]byte("name: alice\nage: 30\n"))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	var buf bytes.Buffer
	em := NewEmitter(&buf)
	require.NoError(t, em.EmitDocument(docs[0]))

	out, err := ParseDocument(buf.Bytes())
	require.NoError(t, err)
	require.True(t, out.Root.Equal(docs[0].Root))
}

func TestEmitterMultiDocumentStream(t *testing.T) {
	docs, err := ParseAll([]byte("a: 1\n---\nb: 2\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	em := NewEmitter(&buf)
	require.NoError(t, em.EmitDocuments(docs))

	out, err := ParseAll(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, out, 2)
}

func TestComposerTracksPath(t *testing.T) {
	p := NewParser([]byte("users:\n  - name: alice\n  - name: bob\n"))
	c := NewComposer()

	var scalarPaths [][]document.PathComponent
	err := c.Run(p, func(ev *token.Event, path []document.PathComponent) ComposerResult {
		if ev.Kind == token.ScalarEvent {
			cp := make([]document.PathComponent, len(path))
			copy(cp, path)
			scalarPaths = append(scalarPaths, cp)
		}
		return ComposerContinue
	})
	require.NoError(t, err)
	require.NotEmpty(t, scalarPaths)

	last := scalarPaths[len(scalarPaths)-1]
	require.Len(t, last, 3)
	require.Equal(t, "users", last[0].Field)
	require.Equal(t, 1, last[1].Index)
	require.Equal(t, "name", last[2].Field)
	require.False(t, last[2].IsKey)
}

func TestComposerStopsEarly(t *testing.T) {
	p := NewParser([]byte("a: 1\nb: 2\nc: 3\n"))
	c := NewComposer()

	var seen int
	err := c.Run(p, func(ev *token.Event, path []document.PathComponent) ComposerResult {
		if ev.Kind == token.ScalarEvent {
			seen++
			if seen == 2 {
				return ComposerStop
			}
		}
		return ComposerContinue
	})
	require.NoError(t, err)
	require.Equal(t, 2, seen)
}

func TestComposerRequestSubtree(t *testing.T) {
	p := NewParser([]byte("a:\n  x: 1\n  y: 2\nb: 3\n"))
	c := NewComposer()

	var subtree *Document
	err := c.Run(p, func(ev *token.Event, path []document.PathComponent) ComposerResult {
		if ev.Kind == token.MappingStartEvent && len(path) > 0 && path[len(path)-1].Field == "a" {
			c.RequestSubtree(func(d *Document) { subtree = d })
		}
		return ComposerContinue
	})
	require.NoError(t, err)
	require.NotNil(t, subtree)
	require.True(t, subtree.Root.IsMapping())
	v, ok := subtree.Root.MapGet("x")
	require.True(t, ok)
	require.Equal(t, "1", v.Value)
}

func TestCompileAndRunPath(t *testing.T) {
	doc, err := ParseDocument([]byte("users:\n  - name: alice\n  - name: bob\n"))
	require.NoError(t, err)

	prog, err := CompilePath("/users/*/name")
	require.NoError(t, err)
	rs, err := prog.Execute(doc, YAML12)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	require.Equal(t, "alice", rs[0].Node.Value)

	rs2, err := RunPath(doc, YAML12, "/users/0/name")
	require.NoError(t, err)
	require.Len(t, rs2, 1)
	require.Equal(t, "alice", rs2[0].Node.Value)
}

func TestIteratorWalksDocument(t *testing.T) {
	doc, err := ParseDocument([]byte("a: 1\nb: 2\n"))
	require.NoError(t, err)

	it := NewIterator(doc, ScopeBody)
	var values []string
	for {
		n, err := it.NodeNext()
		require.NoError(t, err)
		if n == nil {
			break
		}
		if n.Kind == ScalarKind {
			values = append(values, n.Value)
		}
	}
	require.Equal(t, []string{"a", "1", "b", "2"}, values)
}
