package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/dn2d-project/dn2d/internal/analyzer"
	"github.com/dn2d-project/dn2d/internal/ast"
	"github.com/dn2d-project/dn2d/internal/diagnostics"
	"github.com/dn2d-project/dn2d/internal/lexer"
	"github.com/dn2d-project/dn2d/internal/parser"
)

// tokenJSON is the --lex-as-json dump shape. lexer.Token carries no
// MarshalJSON of its own: the token stream is a pipeline-internal
// artifact discarded after parsing, so the CLI boundary owns the
// serialization.
type tokenJSON struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
	Span string `json:"span"`
}

func dumpTokens(tokens []lexer.Token) string {
	out := make([]tokenJSON, len(tokens))
	for i, t := range tokens {
		out[i] = tokenJSON{Kind: t.Kind.String(), Text: t.String(), Span: t.Span.String()}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		// Marshaling a closed, fully-enumerated token slice cannot fail.
		panic(err)
	}
	return string(data)
}

func dumpProgram(program *ast.Program) string {
	data, err := json.MarshalIndent(program, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(data)
}

// runCompile drives the lexer -> parser -> analyzer pipeline for a
// single source file. Fatal lex/parse errors are logged and return a
// non-nil error (exit code 1); validation errors are rendered to stderr
// and also return non-nil; success prints a stratum summary and
// returns nil.
func runCompile(cmd *cobra.Command, path string, lexDump, astDump *exportTarget) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return oops.In("cli").With("path", path).Hint("could not read source file").Wrap(err)
	}
	sourceText := string(source)

	p, err := parser.New(sourceText, lexer.New(sourceText))
	if err != nil {
		slog.Error("lexing failed", "path", path, "error", err)
		return oops.In("lexer").With("path", path).Wrap(err)
	}
	if err := lexDump.handle(cmd.OutOrStdout(), dumpTokens(p.Tokens())); err != nil {
		return err
	}

	program, err := p.ParseProgram()
	if err != nil {
		slog.Error("parsing failed", "path", path, "error", err)
		return oops.In("parser").With("path", path).Wrap(err)
	}
	if err := astDump.handle(cmd.OutOrStdout(), dumpProgram(program)); err != nil {
		return err
	}

	ordered, validationErrs := analyzer.Analyze(program)
	if len(validationErrs) > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), diagnostics.Render(sourceText, validationErrs))
		return oops.In("analyzer").With("path", path).
			Errorf("%d validation error(s)", len(validationErrs))
	}

	cmd.Printf("Compiled %s: %d input(s), %d stratum/strata, %d output(s)\n",
		path, len(ordered.Inputs), len(ordered.Strata), len(ordered.Outputs))
	for i, s := range ordered.Strata {
		kind := "non-recursive"
		if s.IsRecursive {
			kind = "recursive"
		}
		cmd.Printf("  stratum %d [%s]: %v\n", i, kind, s.RelationNames)
	}
	return nil
}
