package fuzz

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/fyyaml/fy"
	"github.com/stretchr/testify/require"
	yamlv3 "gopkg.in/yaml.v3"
)

// testData seeds the fuzzer with YAML quirks (scalars, flow/block
// mixes, anchors, tags, BOM-prefixed UTF-16, comments) that have
// tripped up the parser in the past.
var testData = []string{
	`{}`,
	`v: hi`,
	`v: true`,
	`v: 10`,
	`v: 0b10`,
	`v: 0xA`,
	`v: 4294967296`,
	`v: 0.1`,
	`v: .1`,
	`v: .Inf`,
	`v: -.Inf`,
	`v: -10`,
	`v: -.1`,
	`123`,
	`canonical: 6.8523e+5`,
	`expo: 685.230_15e+03`,
	`fixed: 685_230.15`,
	`neginf: -.inf`,
	`empty:`,
	`canonical: ~`,
	`english: null`,
	`~: null key`,
	`seq: [A,B]`,
	`seq: [A,B,C,]`,
	`seq: [A,1,C]`,
	"seq:\n - A\n - B",
	"seq:\n - A\n - B\n - C",
	"seq:\n - A\n - 1\n - C",
	"scalar: | # Comment\n\n literal\n\n \ttext\n\n",
	"scalar: > # Comment\n\n folded\n line\n \n next\n line\n  * one\n  * two\n\n last\n line\n\n",
	"a: {b: c}",
	"a: {b: c, 1: d}",
	"a: [b,c,d]",
	"int_max: 2147483647",
	"int_min: -2147483648",
	"int_overflow: 9223372036854775808",
	"int_underflow: -9223372036854775809",
	"'1': '\"2\"'",
	"v:\n- A\n- 'B\n\n  C'\n",
	"v: !!float '1.1'",
	"v: !!float 0",
	"v: !!float -1",
	"v: !!null ''",
	"%TAG !y! tag:yaml.org,2002:\n---\nv: !y!int '1'",
	"v: ! test",
	"a: &x 1\nb: &y 2\nc: *x\nd: *y\n",
	"a: &a {c: 1}\nb: *a",
	"a: &a [1, 2]\nb: *a",
	"foo: ''",
	"foo: null",
	"a: {b: https://github.com/go-yaml/yaml}",
	"a: [https://github.com/go-yaml/yaml]",
	"a: 3s",
	"a: <foo>",
	"a: 1:1\n",
	"a: !!binary gIGC\n",
	"a: !!binary |\n  " + strings.Repeat("kJCQ", 17) + "kJ\n  CQ\n",
	"a: !!binary |\n  " + strings.Repeat("A", 70) + "\n  ==\n",
	"a: 2015-01-01\n",
	"a: 2015-02-24T18:19:39.12Z\n",
	"a: 2015-2-3T3:4:5Z",
	"a: 2015-02-24t18:19:39Z\n",
	"a: 2015-02-24 18:19:39\n",
	"a: !!str 2015-01-01",
	"a: !!timestamp \"2015-01-01\"",
	"a: !!timestamp 2015-01-01",
	"a: \"2015-01-01\"",
	"\xff\xfe\xf1\x00o\x00\xf1\x00o\x00:\x00 \x00v\x00e\x00r\x00y\x00 \x00y\x00e\x00s\x00\n\x00",
	"\xfe\xff\x00\xf1\x00o\x00\xf1\x00o\x00:\x00 \x00v\x00e\x00r\x00y\x00 \x00y\x00e\x00s\x00\n",
	"a: 123456e1\n",
	"a: 123456E1\n",
	"First occurrence: &anchor Foo\nSecond occurrence: *anchor\nOverride anchor: &anchor Bar\nReuse anchor: *anchor\n",
	"---\nhello\n...\n}not yaml",
	"true\n#" + strings.Repeat(" ", 512*3),
	"true #" + strings.Repeat(" ", 512*3),
	"a: b\r\nc:\r\n- d\r\n- e\r\n",
	"\n0:\n<<:\n  {}:\n",
}

// FuzzRoundTrip checks two properties against random and seeded
// input: that fy rejects input no more often than gopkg.in/yaml.v3
// does (acceptance compatibility, spec.md §8), and that emitting a
// parsed document and re-parsing the result yields a structurally
// identical tree (the round-trip law, spec.md §8).
func FuzzRoundTrip(f *testing.F) {
	for _, s := range testData {
		f.Add(s)
	}
	f.Fuzz(testRoundTrip)
}

func testRoundTrip(t *testing.T, data string) {
	t.Helper()

	v3Err := decodeAllV3(data)
	fyDocs, fyErr := fy.ParseAll([]byte(data))

	if v3Err == nil {
		require.NoError(t, fyErr, "fy rejected input yaml.v3 accepted: %q", data)
	}
	if fyErr != nil {
		return
	}

	var buf bytes.Buffer
	em := fy.NewEmitter(&buf)
	require.NoError(t, em.EmitDocuments(fyDocs))

	reDocs, err := fy.ParseAll(buf.Bytes())
	require.NoError(t, err, "re-parsing fy's own emitted output failed: %q", buf.String())
	require.Equal(t, len(fyDocs), len(reDocs), "document count changed across round trip")
	for i := range fyDocs {
		require.True(t, fyDocs[i].Root.Equal(reDocs[i].Root), "round trip changed document %d structurally", i)
	}
}

func decodeAllV3(data string) error {
	dec := yamlv3.NewDecoder(strings.NewReader(data))
	for {
		var v any
		err := dec.Decode(&v)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
