package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fyyaml/fy"
	"github.com/spf13/cobra"
)

// exitCode mirrors spec.md §6: 0 success, 1 parse/validation error, 2
// usage error, 3 I/O error.
type exitCode int

const (
	exitOK         exitCode = 0
	exitParseError exitCode = 1
	exitUsageError exitCode = 2
	exitIOError    exitCode = 3
)

// cliError carries an explicit exit code through cobra's plain error
// return, the way a wrapped sentinel threads a status code back to
// main in a typical cobra CLI.
type cliError struct {
	code exitCode
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func usageErrf(format string, a ...interface{}) error {
	return &cliError{code: exitUsageError, err: fmt.Errorf(format, a...)}
}

func ioErr(err error) error {
	return &cliError{code: exitIOError, err: err}
}

var (
	flagMode    string
	flagIndent  int
	flagWidth   int
	flagFlow    string
	flagResolve bool
	flagColor   string
	flagQuiet   bool
	flagStrict  bool
)

var rootCmd = &cobra.Command{
	Use:           "fy",
	Short:         "fy reads, writes and queries YAML documents",
	Long:          "fy is a full-fidelity YAML 1.1/1.2/1.3 and JSON processor: parse, emit, compose, join, path-query, and debug-dump YAML streams.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagMode, "mode", "yaml1.2", "dialect: yaml1.1|yaml1.2|yaml1.3|json")
	pf.IntVar(&flagIndent, "indent", 2, "block indentation width")
	pf.IntVar(&flagWidth, "width", 80, "preferred line width (<=0 disables folding)")
	pf.StringVar(&flagFlow, "flow", "any", "collection style: any|block|flow|flow-oneline")
	pf.BoolVar(&flagResolve, "resolve", true, "resolve core-schema tags on parse")
	pf.StringVar(&flagColor, "color", "auto", "colorize diagnostics: auto|on|off")
	pf.BoolVar(&flagQuiet, "quiet", false, "suppress non-error output")
	pf.BoolVar(&flagStrict, "strict", true, "reject duplicate mapping keys")

	rootCmd.AddCommand(parseCmd, emitCmd, composeCmd, pathCmd, joinCmd, dumpCmd, scanCmd)
}

func parseMode() (fy.Mode, error) {
	switch flagMode {
	case "yaml1.1":
		return fy.YAML11, nil
	case "yaml1.2":
		return fy.YAML12, nil
	case "yaml1.3":
		return fy.YAML13, nil
	case "json":
		return fy.JSON, nil
	}
	return 0, usageErrf("invalid --mode %q", flagMode)
}

func parseFlow() (fy.FlowStyle, error) {
	switch flagFlow {
	case "any":
		return fy.FlowAny, nil
	case "block":
		return fy.FlowBlock, nil
	case "flow":
		return fy.FlowFlow, nil
	case "flow-oneline":
		return fy.FlowOneline, nil
	}
	return 0, usageErrf("invalid --flow %q", flagFlow)
}

// commonOptions builds the fy.Option set shared by every subcommand
// from the persistent flags.
func commonOptions() ([]fy.Option, error) {
	mode, err := parseMode()
	if err != nil {
		return nil, err
	}
	flow, err := parseFlow()
	if err != nil {
		return nil, err
	}
	opts := []fy.Option{
		fy.WithMode(mode),
		fy.WithIndent(flagIndent),
		fy.WithWidth(flagWidth),
		fy.WithFlow(flow),
		fy.WithResolve(flagResolve),
		fy.WithStrict(flagStrict),
	}
	if !flagQuiet {
		opts = append(opts, fy.WithLogger(fy.NewWriterLogger(os.Stderr)))
	}
	return opts, nil
}

// readInput reads args[0], or stdin when no path (or "-") is given.
func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, ioErr(err)
		}
		return b, nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return nil, ioErr(err)
	}
	return b, nil
}

func asExitCode(err error) exitCode {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	var fe *fy.Error
	if errors.As(err, &fe) {
		return exitParseError
	}
	return exitParseError
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "fy:", err)
	}
	os.Exit(int(asExitCode(err)))
}
