package main

import (
	"os"

	"github.com/fyyaml/fy"
	"github.com/spf13/cobra"
)

var emitCmd = &cobra.Command{
	Use:   "emit [file]",
	Short: "Parse a YAML stream and re-emit it, normalising style per --flow/--indent/--width",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEmit,
}

func runEmit(cmd *cobra.Command, args []string) error {
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
	em := fy.NewEmitter(os.Stdout, opts...)
	if err := em.EmitDocuments(docs); err != nil {
		return err
	}
	return nil
}
