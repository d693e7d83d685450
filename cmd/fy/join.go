package main

import (
	"os"

	"github.com/fyyaml/fy"
	"github.com/spf13/cobra"
)

var joinCmd = &cobra.Command{
	Use:   "join file...",
	Short: "Concatenate documents from multiple sources into a single multi-document stream",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runJoin,
}

func runJoin(cmd *cobra.Command, args []string) error {
	opts, err := commonOptions()
	if err != nil {
		return err
	}
	var all []*fy.Document
	for _, path := range args {
		b, err := readInput([]string{path})
		if err != nil {
			return err
		}
		docs, err := fy.ParseAll(b, opts...)
		if err != nil {
			return err
		}
		all = append(all, docs...)
	}
	em := fy.NewEmitter(os.Stdout, opts...)
	return em.EmitDocuments(all)
}
