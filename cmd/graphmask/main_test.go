package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runPrint(t *testing.T, extra ...string) string {
	t.Helper()
	out := filepath.Join(t.TempDir(), "schema.graphql")
	args := append([]string{
		"print",
		"-schema.file", filepath.Join("testdata", "phonology.graphql"),
		"-out", out,
	}, extra...)
	if err := run(args); err != nil {
		t.Fatalf("run %v: %v", args, err)
	}
	sdl, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return string(sdl)
}

func TestRunCommandDispatch(t *testing.T) {
	if err := run(nil); err == nil {
		t.Fatal("expected error for missing command")
	}
	if err := run([]string{"bogus"}); err == nil {
		t.Fatal("expected error for unknown command")
	}
	if err := run([]string{"help"}); err != nil {
		t.Fatalf("help: %v", err)
	}
	if err := run([]string{"help", "serve"}); err != nil {
		t.Fatalf("help serve: %v", err)
	}
	if err := run([]string{"help", "bogus"}); err == nil {
		t.Fatal("expected error for unknown help topic")
	}
}

func TestPrintUnmasked(t *testing.T) {
	sdl := runPrint(t)
	for _, want := range []string{"type Query", "phonemes", "diagnostics", "admin"} {
		if !strings.Contains(sdl, want) {
			t.Fatalf("expected %q in output:\n%s", want, sdl)
		}
	}
}

func TestPrintHidesTagged(t *testing.T) {
	sdl := runPrint(t, "-mask.tag", "internal")
	if strings.Contains(sdl, "diagnostics") {
		t.Fatalf("tagged field should be hidden:\n%s", sdl)
	}
	if !strings.Contains(sdl, "phonemes") {
		t.Fatalf("untagged field should remain:\n%s", sdl)
	}
}

func TestPrintRoleMasking(t *testing.T) {
	// Without the role the gated field is hidden; pruning removes the type
	// only it referenced.
	sdl := runPrint(t, "-mask.role-tag", "role", "-mask.prune")
	if strings.Contains(sdl, "admin") {
		t.Fatalf("role-gated field should be hidden:\n%s", sdl)
	}
	if strings.Contains(sdl, "AdminPanel") {
		t.Fatalf("orphaned type should be pruned:\n%s", sdl)
	}

	sdl = runPrint(t, "-mask.role-tag", "role", "-mask.prune", "-mask.role", "admin")
	if !strings.Contains(sdl, "admin: AdminPanel") {
		t.Fatalf("expected role-gated field for matching role:\n%s", sdl)
	}
}

func TestPrintRequiresSchemaFile(t *testing.T) {
	if err := run([]string{"print"}); err == nil {
		t.Fatal("expected error when -schema.file is missing")
	}
}
