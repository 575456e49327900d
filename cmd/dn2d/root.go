// Command dn2d is a thin demonstration harness wiring the lexer, parser,
// and analyzer together and exercising the CLI surface described by the
// core's external interfaces. It owns no compiler logic of its own.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// exportTarget is the three-way "none|print|<path>" dump destination
// shared by --lex-as-json and --ast-as-json.
type exportTarget struct {
	raw string
}

func (e *exportTarget) String() string { return e.raw }
func (e *exportTarget) Set(s string) error {
	e.raw = s
	return nil
}
func (e *exportTarget) Type() string { return "none|print|path" }

// handle writes jsonStr to the configured destination: discarded for
// "none", printed between banner lines to w for "print", or written to
// the named file for any other value.
func (e *exportTarget) handle(w io.Writer, jsonStr string) error {
	switch e.raw {
	case "", "none":
		return nil
	case "print":
		fmt.Fprintln(w, "______ Print as Json ______")
		fmt.Fprintf(w, "\n%s\n\n", jsonStr)
		fmt.Fprintln(w, "____________________________")
		return nil
	default:
		if err := os.WriteFile(e.raw, []byte(jsonStr), 0o644); err != nil {
			return oops.In("cli").Hint("could not write JSON dump").Wrap(err)
		}
		return nil
	}
}

// newRootCmd builds the dn2d root command: a single positional source
// path plus the two JSON-dump flags.
func newRootCmd() *cobra.Command {
	lexDump := &exportTarget{raw: "none"}
	astDump := &exportTarget{raw: "none"}

	cmd := &cobra.Command{
		Use:   "dn2d <source-file>",
		Short: "Datalog with Negation to differential dataflow",
		Long: `dn2d compiles a Datalog-with-negation source program into an
ordered, stratified execution plan for a differential-dataflow backend.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args[0], lexDump, astDump)
		},
	}

	cmd.Flags().Var(lexDump, "lex-as-json", "dump the token stream: none|print|<path>")
	cmd.Flags().Var(astDump, "ast-as-json", "dump the parsed program: none|print|<path>")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}
