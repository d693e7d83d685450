package main

import (
	"fmt"

	"github.com/fyyaml/fy"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a YAML stream and report success or the first error",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
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
	if !flagQuiet {
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d document(s)\n", len(docs))
	}
	return nil
}
