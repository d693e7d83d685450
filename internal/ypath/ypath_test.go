package ypath

import (
	"testing"

	"github.com/fyyaml/fy/internal/document"
	"github.com/fyyaml/fy/internal/input"
	"github.com/fyyaml/fy/internal/parser"
	"github.com/fyyaml/fy/internal/scanner"
	"github.com/fyyaml/fy/internal/token"
	"github.com/stretchr/testify/require"
)

func mustBuild(t *testing.T, src string) *document.Document {
	t.Helper()
	in := input.NewFromBytes([]byte(src))
	sc := scanner.New(in, token.ModeYAML12)
	p := parser.New(sc, token.ModeYAML12)
	doc, err := document.Build(p, token.ModeYAML12, true)
	require.NoError(t, err)
	return doc
}

func TestExecuteFieldNavigation(t *testing.T) {
	doc := mustBuild(t, "name: alice\nage: 30\n")
	rs, err := Execute(doc, token.ModeYAML12, "/name")
	require.NoError(t, err)
	require.Len(t, rs, 1)
	require.Equal(t, "alice", rs[0].Node.Value)
}

func TestExecuteIndexNavigation(t *testing.T) {
	doc := mustBuild(t, "users:\n  - name: alice\n  - name: bob\n")
	rs, err := Execute(doc, token.ModeYAML12, "/users/0/name")
	require.NoError(t, err)
	require.Len(t, rs, 1)
	require.Equal(t, "alice", rs[0].Node.Value)

	rs, err = Execute(doc, token.ModeYAML12, "/users/1/name")
	require.NoError(t, err)
	require.Len(t, rs, 1)
	require.Equal(t, "bob", rs[0].Node.Value)
}

func TestExecuteWildcard(t *testing.T) {
	doc := mustBuild(t, "users:\n  - name: alice\n  - name: bob\n")
	rs, err := Execute(doc, token.ModeYAML12, "/users/*/name")
	require.NoError(t, err)
	require.Len(t, rs, 2)
	require.Equal(t, "alice", rs[0].Node.Value)
	require.Equal(t, "bob", rs[1].Node.Value)
}

func TestExecuteRecursiveDescent(t *testing.T) {
	doc := mustBuild(t, "a:\n  b:\n    c: 1\n")
	rs, err := Execute(doc, token.ModeYAML12, "/**")
	require.NoError(t, err)
	require.True(t, len(rs) >= 3)
}

func TestExecuteAliasLookup(t *testing.T) {
	doc := mustBuild(t, "base: &anchor\n  x: 1\nother: *anchor\n")
	rs, err := Execute(doc, token.ModeYAML12, "*anchor")
	require.NoError(t, err)
	require.Len(t, rs, 1)
	require.True(t, rs[0].Node.IsMapping())
}

func TestExecuteUnresolvedAlias(t *testing.T) {
	doc := mustBuild(t, "a: 1\n")
	_, err := Execute(doc, token.ModeYAML12, "*missing")
	require.Error(t, err)
	var unresolved *document.ErrUnresolvedAlias
	require.ErrorAs(t, err, &unresolved)
	require.Equal(t, "missing", unresolved.Name)
}

func TestExecuteFilterPredicate(t *testing.T) {
	doc := mustBuild(t, "users:\n  - name: alice\n    age: 30\n  - name: bob\n    age: 25\n")
	rs, err := Execute(doc, token.ModeYAML12, "/users/*[?(age>26)]/name")
	require.NoError(t, err)
	require.Len(t, rs, 1)
	require.Equal(t, "alice", rs[0].Node.Value)
}

func TestExecuteTypeFilter(t *testing.T) {
	doc := mustBuild(t, "items:\n  - a\n  - [1, 2]\n  - b: 1\n")
	rs, err := Execute(doc, token.ModeYAML12, "/items/*[scalar]")
	require.NoError(t, err)
	require.Len(t, rs, 1)
	require.Equal(t, "a", rs[0].Node.Value)

	rs, err = Execute(doc, token.ModeYAML12, "/items/*[seq]")
	require.NoError(t, err)
	require.Len(t, rs, 1)
	require.True(t, rs[0].Node.IsSequence())

	rs, err = Execute(doc, token.ModeYAML12, "/items/*[map]")
	require.NoError(t, err)
	require.Len(t, rs, 1)
	require.True(t, rs[0].Node.IsMapping())
}

func TestExecuteUniqueFilter(t *testing.T) {
	doc := mustBuild(t, "items:\n  - a\n  - a\n  - b\n")
	rs, err := Execute(doc, token.ModeYAML12, "/items/*[unique]")
	require.NoError(t, err)
	require.Len(t, rs, 3)
}

func TestExecuteLogicalCombinators(t *testing.T) {
	doc := mustBuild(t, "users:\n  - name: alice\n    age: 30\n  - name: bob\n    age: 25\n  - name: carl\n    age: 40\n")
	rs, err := Execute(doc, token.ModeYAML12, "/users/*[?(age>26 && age<35)]/name")
	require.NoError(t, err)
	require.Len(t, rs, 1)
	require.Equal(t, "alice", rs[0].Node.Value)

	rs, err = Execute(doc, token.ModeYAML12, "/users/*[?(age==25 || age==40)]/name")
	require.NoError(t, err)
	require.Len(t, rs, 2)
	require.Equal(t, "bob", rs[0].Node.Value)
	require.Equal(t, "carl", rs[1].Node.Value)
}

func TestExecuteSequenceCombinator(t *testing.T) {
	doc := mustBuild(t, "name: alice\nage: 30\n")
	rs, err := Execute(doc, token.ModeYAML12, "/name,/age")
	require.NoError(t, err)
	require.Len(t, rs, 2)
	require.Equal(t, "alice", rs[0].Node.Value)
	require.Equal(t, "30", rs[1].Node.Value)
}

func TestCompileReusable(t *testing.T) {
	doc1 := mustBuild(t, "name: alice\n")
	doc2 := mustBuild(t, "name: bob\n")
	prog, err := Compile("/name")
	require.NoError(t, err)
	require.Equal(t, "/name", prog.String())

	rs, err := prog.Execute(doc1, token.ModeYAML12)
	require.NoError(t, err)
	require.Equal(t, "alice", rs[0].Node.Value)

	rs, err = prog.Execute(doc2, token.ModeYAML12)
	require.NoError(t, err)
	require.Equal(t, "bob", rs[0].Node.Value)
}
