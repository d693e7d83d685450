package main

import (
	"fmt"

	"github.com/fyyaml/fy"
	"github.com/fyyaml/fy/internal/document"
	"github.com/fyyaml/fy/internal/token"
	"github.com/spf13/cobra"
)

var composeCmd = &cobra.Command{
	Use:   "compose [file]",
	Short: "Stream events through a path-tracking callback and trace each event's live path",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCompose,
}

func runCompose(cmd *cobra.Command, args []string) error {
	b, err := readInput(args)
	if err != nil {
		return err
	}
	opts, err := commonOptions()
	if err != nil {
		return err
	}
	p := fy.NewParser(b, opts...)
	c := fy.NewComposer(opts...)
	out := cmd.OutOrStdout()
	cb := func(ev *token.Event, path []document.PathComponent) fy.ComposerResult {
		if !flagQuiet {
			fmt.Fprintf(out, "%-16s %s\n", ev.Kind, formatPath(path))
		}
		return fy.ComposerContinue
	}
	return c.Run(p, cb)
}

func formatPath(path []document.PathComponent) string {
	s := "/"
	for _, c := range path {
		if c.IsKey {
			s += fmt.Sprintf("<key:%s>/", c.Field)
			continue
		}
		if c.Field != "" {
			s += c.Field + "/"
			continue
		}
		s += fmt.Sprintf("%d/", c.Index)
	}
	return s
}
