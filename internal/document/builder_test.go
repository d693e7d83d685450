package document

import (
	"testing"

	"github.com/fyyaml/fy/internal/token"
	"github.com/stretchr/testify/require"
)

// eventQueue is a canned eventSource for driving Build in pull mode
// without a real scanner/parser.
type eventQueue struct {
	events []*token.Event
	pos    int
}

func (q *eventQueue) Next() (*token.Event, error) {
	if q.pos >= len(q.events) {
		return nil, nil
	}
	ev := q.events[q.pos]
	q.pos++
	return ev, nil
}

func scalar(anchor, value string) *token.Event {
	return &token.Event{Kind: token.ScalarEvent, Anchor: []byte(anchor), Value: []byte(value), Tag: []byte("!!str")}
}

func mapStart() *token.Event { return &token.Event{Kind: token.MappingStartEvent} }
func mapEnd() *token.Event   { return &token.Event{Kind: token.MappingEndEvent} }

func alias(anchor string) *token.Event {
	return &token.Event{Kind: token.AliasEvent, Anchor: []byte(anchor)}
}

func wrapDocument(body ...*token.Event) []*token.Event {
	out := []*token.Event{{Kind: token.StreamStartEvent}, {Kind: token.DocumentStartEvent}}
	out = append(out, body...)
	out = append(out, &token.Event{Kind: token.DocumentEndEvent}, &token.Event{Kind: token.StreamEndEvent})
	return out
}

func TestBuilderPushMode(t *testing.T) {
	b := NewBuilder(token.ModeYAML12)
	for _, ev := range wrapDocument(
		mapStart(),
		scalar("", "a"), scalar("", "1"),
		mapEnd(),
	) {
		require.NoError(t, b.Feed(ev))
	}
	require.True(t, b.Done())
	doc := b.Document()
	require.NotNil(t, doc.Root)
	require.True(t, doc.Root.IsMapping())
	require.Len(t, doc.Root.Pairs, 1)
	require.Equal(t, "a", doc.Root.Pairs[0].Key.Value)
	require.Equal(t, "1", doc.Root.Pairs[0].Value.Value)
}

func TestBuilderPullMode(t *testing.T) {
	q := &eventQueue{events: wrapDocument(
		mapStart(),
		scalar("", "k"), scalar("", "v"),
		mapEnd(),
	)}
	doc, err := Build(q, token.ModeYAML12, true)
	require.NoError(t, err)
	require.NotNil(t, doc.Root)
	require.Equal(t, "v", doc.Root.Pairs[0].Value.Value)
}

func TestBuilderRejectsDuplicateKeys(t *testing.T) {
	b := NewBuilder(token.ModeYAML12)
	b.Strict = true
	events := wrapDocument(
		mapStart(),
		scalar("", "a"), scalar("", "1"),
		scalar("", "a"), scalar("", "2"),
		mapEnd(),
	)
	var lastErr error
	for _, ev := range events {
		if err := b.Feed(ev); err != nil {
			lastErr = err
			break
		}
	}
	require.Error(t, lastErr)
	var dup *ErrDuplicateKey
	require.ErrorAs(t, lastErr, &dup)
	require.Equal(t, "a", dup.Key)
}

func TestBuilderAllowsDuplicateKeysWhenNotStrict(t *testing.T) {
	b := NewBuilder(token.ModeYAML12)
	b.Strict = false
	for _, ev := range wrapDocument(
		mapStart(),
		scalar("", "a"), scalar("", "1"),
		scalar("", "a"), scalar("", "2"),
		mapEnd(),
	) {
		require.NoError(t, b.Feed(ev))
	}
	require.Len(t, b.Document().Root.Pairs, 2)
}

func TestBuilderAnchorAliasResolution(t *testing.T) {
	b := NewBuilder(token.ModeYAML12)
	for _, ev := range wrapDocument(
		mapStart(),
		scalar("", "first"), scalar("x", "hello"),
		scalar("", "second"), alias("x"),
		mapEnd(),
	) {
		require.NoError(t, b.Feed(ev))
	}
	doc := b.Document()
	require.Same(t, doc.Root.Pairs[0].Value, doc.Root.Pairs[1].Value)
}

func TestBuilderUnresolvedAlias(t *testing.T) {
	b := NewBuilder(token.ModeYAML12)
	var lastErr error
	for _, ev := range wrapDocument(
		mapStart(),
		scalar("", "a"), alias("missing"),
		mapEnd(),
	) {
		if err := b.Feed(ev); err != nil {
			lastErr = err
			break
		}
	}
	require.Error(t, lastErr)
	var unresolved *ErrUnresolvedAlias
	require.ErrorAs(t, lastErr, &unresolved)
	require.Equal(t, "missing", unresolved.Name)
}
