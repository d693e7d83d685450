package document

import (
	"testing"

	"github.com/fyyaml/fy/internal/token"
	"github.com/stretchr/testify/require"
)

func buildSample(t *testing.T) *Document {
	t.Helper()
	b := NewBuilder(token.ModeYAML12)
	for _, ev := range wrapDocument(
		mapStart(),
		scalar("", "a"), scalar("", "1"),
		scalar("", "b"), scalar("", "2"),
		mapEnd(),
	) {
		require.NoError(t, b.Feed(ev))
	}
	return b.Document()
}

func TestIteratorGenerateNextScopeBody(t *testing.T) {
	doc := buildSample(t)
	it := NewIterator(doc, ScopeBody)
	var kinds []token.EventKind
	for {
		ev, err := it.GenerateNext()
		require.NoError(t, err)
		if ev == nil {
			break
		}
		kinds = append(kinds, ev.Kind)
	}
	require.Equal(t, []token.EventKind{
		token.MappingStartEvent,
		token.ScalarEvent, token.ScalarEvent,
		token.ScalarEvent, token.ScalarEvent,
		token.MappingEndEvent,
	}, kinds)
}

func TestIteratorGenerateNextScopeFull(t *testing.T) {
	doc := buildSample(t)
	it := NewIterator(doc, ScopeFull)
	var kinds []token.EventKind
	for {
		ev, err := it.GenerateNext()
		require.NoError(t, err)
		if ev == nil {
			break
		}
		kinds = append(kinds, ev.Kind)
	}
	require.Equal(t, token.StreamStartEvent, kinds[0])
	require.Equal(t, token.DocumentStartEvent, kinds[1])
	require.Equal(t, token.DocumentEndEvent, kinds[len(kinds)-2])
	require.Equal(t, token.StreamEndEvent, kinds[len(kinds)-1])
}

func TestIteratorNodeNextDocumentOrder(t *testing.T) {
	doc := buildSample(t)
	it := NewIterator(doc, ScopeBody)
	var values []string
	for {
		n, err := it.NodeNext()
		require.NoError(t, err)
		if n == nil {
			break
		}
		if n.IsScalar() {
			values = append(values, n.Value)
		}
	}
	require.Equal(t, []string{"a", "1", "b", "2"}, values)
}
