package main

import (
	"fmt"
	"os"

	"github.com/fyyaml/fy"
	"github.com/spf13/cobra"
)

var flagPathExpr string

var pathCmd = &cobra.Command{
	Use:   "path [file]",
	Short: "Evaluate a ypath expression against the first document and print each match",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPath,
}

func init() {
	pathCmd.Flags().StringVar(&flagPathExpr, "expr", "", "ypath expression (required)")
}

func runPath(cmd *cobra.Command, args []string) error {
	if flagPathExpr == "" {
		return usageErrf("--expr is required")
	}
	b, err := readInput(args)
	if err != nil {
		return err
	}
	opts, err := commonOptions()
	if err != nil {
		return err
	}
	doc, err := fy.ParseDocument(b, opts...)
	if err != nil {
		return err
	}
	if doc == nil {
		return usageErrf("input contains no documents")
	}
	mode, err := parseMode()
	if err != nil {
		return err
	}
	results, err := fy.RunPath(doc, mode, flagPathExpr)
	if err != nil {
		return err
	}
	em := fy.NewEmitter(os.Stdout, opts...)
	for _, r := range results {
		if r.IsNode() {
			if err := em.EmitDocument(&fy.Document{Root: r.Node}); err != nil {
				return err
			}
			continue
		}
		if !flagQuiet {
			fmt.Fprintln(cmd.OutOrStdout(), r.Lit)
		}
	}
	return nil
}
