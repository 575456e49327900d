package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSource(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestRootCmd_CompilesValidProgram(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "prog.dl", `.iterate {
reach(x,y) :- edge(x,y).
reach(x,z) :- edge(x,y), reach(y,z).
}`)

	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v (output: %s)", err, out.String())
	}
	if !strings.Contains(out.String(), "recursive") {
		t.Errorf("expected stratum summary mentioning 'recursive', got %q", out.String())
	}
}

func TestRootCmd_ValidationFailureExitsNonZero(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "prog.dl", `reach(x,y) :- edge(x,y).
reach(x,z) :- edge(x,y), reach(y,z).`)

	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{path})

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected an error for an unstratifiable program, got none")
	}
}

func TestRootCmd_LexAsJsonPrint(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "prog.dl", `.read users(id) from "u.csv" as "csv".`)

	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--lex-as-json", "print", path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Print as Json") {
		t.Errorf("expected print banner in output, got %q", out.String())
	}
}

func TestRootCmd_AstAsJsonFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "prog.dl", `a(x) :- b(x).`)
	astPath := filepath.Join(dir, "ast.json")

	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--ast-as-json", astPath, path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(astPath)
	if err != nil {
		t.Fatalf("expected ast dump file to exist: %v", err)
	}
	if !strings.Contains(string(data), "statements") {
		t.Errorf("expected dumped AST to contain 'statements', got %q", data)
	}
}

func TestRootCmd_MissingFile(t *testing.T) {
	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "does-not-exist.dl")})

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected an error for a missing source file")
	}
}
