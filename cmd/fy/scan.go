package main

import (
	"fmt"

	"github.com/fyyaml/fy"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan [file]",
	Short: "Print the raw event stream produced by the parser, one event per line",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	b, err := readInput(args)
	if err != nil {
		return err
	}
	opts, err := commonOptions()
	if err != nil {
		return err
	}
	p := fy.NewParser(b, opts...)
	out := cmd.OutOrStdout()
	for {
		ev, err := p.Next()
		if err != nil {
			return err
		}
		if ev == nil {
			return nil
		}
		if len(ev.Value) > 0 {
			fmt.Fprintf(out, "%-16s %s %q\n", ev.Kind, ev.StartMark, ev.Value)
		} else {
			fmt.Fprintf(out, "%-16s %s\n", ev.Kind, ev.StartMark)
		}
	}
}
