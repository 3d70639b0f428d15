package language

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/inkpot/lexicon/datadir"
	"github.com/inkpot/lexicon/document"
	"github.com/inkpot/lexicon/editor"
)

// writeFile writes a fixture under root, creating parent directories.
func writeFile(t *testing.T, root, rel, data string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestApplyMergesLayers(t *testing.T) {
	system := t.TempDir()
	user := t.TempDir()

	writeFile(t, system, "inkpot/languages/cpp.yaml", `
lexer: 1
styles:
  0: 10
  1: 11
`)
	writeFile(t, user, "inkpot/languages/cpp.yaml", `
lexer: cpp
styles:
  1: 99
identifiers:
  20: [a, b]
substyles:
  20: [50, 51]
`)

	r := NewResolver(datadir.New(
		datadir.Layer{Root: system, Source: datadir.SourceSystem},
		datadir.Layer{Root: user, Source: datadir.SourceUser},
	))
	rec := editor.NewRecorder()

	got, err := r.Apply(rec, "cpp")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	expected := StyleMap{
		0:   10,
		1:   99,
		128: 50,
		129: 51,
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Apply() = %v, want %v", got, expected)
	}

	expectedCommands := []string{
		"free-substyles",
		"set-lexer 1",
		"set-lexer-language cpp",
		"allocate-substyles class=20 count=2 start=128",
		"set-identifiers 128 a",
		"set-identifiers 129 b",
	}
	if !reflect.DeepEqual(rec.Commands, expectedCommands) {
		t.Errorf("commands = %v, want %v", rec.Commands, expectedCommands)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "inkpot/languages/go.yaml", `
lexer: go
identifiers:
  20: [println]
substyles:
  20: [42]
`)

	r := NewResolver(datadir.New(datadir.Layer{Root: root, Source: datadir.SourceSystem}))
	rec := editor.NewRecorder()

	first, err := r.Apply(rec, "go")
	if err != nil {
		t.Fatalf("first Apply() error = %v", err)
	}
	second, err := r.Apply(rec, "go")
	if err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Apply() differs: %v then %v", first, second)
	}
}

func TestApplyCommandOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "inkpot/languages/c.yaml", `
lexer: 3
properties:
  styling.within.preprocessor: "1"
  fold: "1"
keywords:
  1: int
  0: if else
identifiers:
  20: [printf]
comments:
  line: "//"
  block: ["/*", "*/"]
styles:
  0: 10
substyles:
  20: [50]
`)

	r := NewResolver(datadir.New(datadir.Layer{Root: root, Source: datadir.SourceSystem}))
	rec := editor.NewRecorder()

	got, err := r.Apply(rec, "c")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	expectedCommands := []string{
		"free-substyles",
		"set-lexer 3",
		"set-property fold=1",
		"set-property styling.within.preprocessor=1",
		"set-keywords 0 if else",
		"set-keywords 1 int",
		"allocate-substyles class=20 count=1 start=128",
		"set-identifiers 128 printf",
		"set-comment-line //",
		"set-comment-block /* */",
	}
	if !reflect.DeepEqual(rec.Commands, expectedCommands) {
		t.Errorf("commands = %v, want %v", rec.Commands, expectedCommands)
	}

	expected := StyleMap{0: 10, 128: 50}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Apply() = %v, want %v", got, expected)
	}
}

func TestApplyEmptyCommentTokens(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "inkpot/languages/sh.yaml", `
lexer: 1
comments:
  line: ""
  block: ["", ""]
`)

	r := NewResolver(datadir.New(datadir.Layer{Root: root, Source: datadir.SourceSystem}))
	rec := editor.NewRecorder()

	if _, err := r.Apply(rec, "sh"); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	// Defined-but-empty tokens are still issued; only absent ones are skipped.
	expectedCommands := []string{
		"free-substyles",
		"set-lexer 1",
		"set-comment-line ",
		"set-comment-block  ",
	}
	if !reflect.DeepEqual(rec.Commands, expectedCommands) {
		t.Errorf("commands = %v, want %v", rec.Commands, expectedCommands)
	}
}

func TestApplyAllocatesFreshRangePerLayer(t *testing.T) {
	system := t.TempDir()
	user := t.TempDir()

	writeFile(t, system, "inkpot/languages/cpp.yaml", `
lexer: 1
identifiers:
  20: [one]
substyles:
  20: [50]
`)
	writeFile(t, user, "inkpot/languages/cpp.yaml", `
lexer: 1
identifiers:
  20: [two]
substyles:
  20: [51]
`)

	r := NewResolver(datadir.New(
		datadir.Layer{Root: system, Source: datadir.SourceSystem},
		datadir.Layer{Root: user, Source: datadir.SourceUser},
	))
	rec := editor.NewRecorder()

	got, err := r.Apply(rec, "cpp")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	// Each layer allocates its own range; the user layer does not reuse the
	// system layer's substyle 128.
	expected := StyleMap{128: 50, 129: 51}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Apply() = %v, want %v", got, expected)
	}
}

func TestApplySkipsSubstylesWithoutAllocation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "inkpot/languages/cpp.yaml", `
lexer: 1
identifiers:
  20: [printf]
substyles:
  21: [60]
`)

	r := NewResolver(datadir.New(datadir.Layer{Root: root, Source: datadir.SourceSystem}))

	got, err := r.Apply(editor.NewRecorder(), "cpp")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Apply() = %v, want empty map", got)
	}
}

func TestApplyUnknownLanguage(t *testing.T) {
	r := NewResolver(datadir.New(datadir.Layer{Root: t.TempDir(), Source: datadir.SourceSystem}))
	rec := editor.NewRecorder()

	got, err := r.Apply(rec, "fortran")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Apply() = %v, want empty map", got)
	}

	// The editor is still reset even when no layer defines the language.
	expected := []string{"free-substyles"}
	if !reflect.DeepEqual(rec.Commands, expected) {
		t.Errorf("commands = %v, want %v", rec.Commands, expected)
	}
}

func TestApplySkipsBrokenLayer(t *testing.T) {
	system := t.TempDir()
	user := t.TempDir()

	writeFile(t, system, "inkpot/languages/go.yaml", "lexer: [broken\n")
	writeFile(t, user, "inkpot/languages/go.yaml", "lexer: go\nstyles:\n  0: 7\n")

	r := NewResolver(datadir.New(
		datadir.Layer{Root: system, Source: datadir.SourceSystem},
		datadir.Layer{Root: user, Source: datadir.SourceUser},
	))

	got, err := r.Apply(editor.NewRecorder(), "go")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !reflect.DeepEqual(got, StyleMap{0: 7}) {
		t.Errorf("Apply() = %v, want {0: 7}", got)
	}
}

func TestApplySchemaErrorAborts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "inkpot/languages/go.yaml", "styles:\n  0: 7\n")

	r := NewResolver(datadir.New(datadir.Layer{Root: root, Source: datadir.SourceSystem}))

	_, err := r.Apply(editor.NewRecorder(), "go")
	if !errors.Is(err, document.ErrSchema) {
		t.Errorf("Apply() error = %v, want schema error", err)
	}
}

func TestApplyTOMLDocument(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "inkpot/languages/rust.toml", `
lexer = "rust"

[styles]
0 = 4
`)

	r := NewResolver(datadir.New(datadir.Layer{Root: root, Source: datadir.SourceSystem}))
	rec := editor.NewRecorder()

	got, err := r.Apply(rec, "rust")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !reflect.DeepEqual(got, StyleMap{0: 4}) {
		t.Errorf("Apply() = %v, want {0: 4}", got)
	}
	if rec.Commands[1] != "set-lexer-language rust" {
		t.Errorf("commands = %v, want set-lexer-language rust second", rec.Commands)
	}
}

func TestApplyCustomApp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "myapp/languages/go.yaml", "lexer: go\n")

	r := NewResolver(
		datadir.New(datadir.Layer{Root: root, Source: datadir.SourceSystem}),
		WithApp("myapp"),
	)
	rec := editor.NewRecorder()

	if _, err := r.Apply(rec, "go"); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(rec.Commands) != 2 {
		t.Errorf("commands = %v, want reset plus lexer selection", rec.Commands)
	}
}
