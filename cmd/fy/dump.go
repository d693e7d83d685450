package main

import (
	"fmt"
	"io"

	"github.com/fyyaml/fy"
	"github.com/fyyaml/fy/internal/token"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [file]",
	Short: "Print the parsed node tree in a debug textual form",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDump,
}

func runDump(cmd *cobra.Command, args []string) error {
	b, err := readInput(args)
	if err != nil {
		return err
	}
	opts, err := commonOptions()
	if err != nil {
		return err
	}
	docs, err := fy.ParseAll(b, opts...)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for i, doc := range docs {
		fmt.Fprintf(out, "--- document %d\n", i)
		dumpNode(out, doc.Root, 0)
	}
	return nil
}

func dumpNode(w io.Writer, n *fy.Node, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	if n == nil {
		fmt.Fprintf(w, "%s<nil>\n", indent)
		return
	}
	anchor := ""
	if n.Anchor != "" {
		anchor = " &" + n.Anchor
	}
	tag := token.ShortTag(n.Tag)
	switch n.Kind {
	case fy.ScalarKind:
		fmt.Fprintf(w, "%sscalar %s%s %q\n", indent, tag, anchor, n.Value)
	case fy.SequenceKind:
		fmt.Fprintf(w, "%ssequence %s%s\n", indent, tag, anchor)
		for _, item := range n.Items {
			dumpNode(w, item, depth+1)
		}
	case fy.MappingKind:
		fmt.Fprintf(w, "%smapping %s%s\n", indent, tag, anchor)
		for _, pair := range n.Pairs {
			fmt.Fprintf(w, "%s  key:\n", indent)
			dumpNode(w, pair.Key, depth+2)
			fmt.Fprintf(w, "%s  value:\n", indent)
			dumpNode(w, pair.Value, depth+2)
		}
	}
}
