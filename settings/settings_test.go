package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/inkpot/lexicon/document"
)

func TestDefault(t *testing.T) {
	s := Default()

	if s.TabWidth != 4 {
		t.Errorf("TabWidth = %d, want 4", s.TabWidth)
	}
	if !s.LineNumbers {
		t.Error("LineNumbers = false, want true")
	}
	if s.WrapLines {
		t.Error("WrapLines = true, want false")
	}
	if s.LineLimitColumn != 80 {
		t.Errorf("LineLimitColumn = %d, want 80", s.LineLimitColumn)
	}
	if s.Style != "default" {
		t.Errorf("Style = %q, want default", s.Style)
	}
	if s.FontFamily != "Noto Sans Mono" {
		t.Errorf("FontFamily = %q, want Noto Sans Mono", s.FontFamily)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "settings.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s != Default() {
		t.Errorf("Load() = %+v, want defaults", s)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	data := "tabWidth = 8\nwrapLines = true\nstyle = \"dark\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.TabWidth != 8 {
		t.Errorf("TabWidth = %d, want 8", s.TabWidth)
	}
	if !s.WrapLines {
		t.Error("WrapLines = false, want true")
	}
	if s.Style != "dark" {
		t.Errorf("Style = %q, want dark", s.Style)
	}

	// Keys the file doesn't set keep their defaults.
	if !s.LineNumbers {
		t.Error("LineNumbers = false, want default true")
	}
	if s.FontSize != 12 {
		t.Errorf("FontSize = %d, want default 12", s.FontSize)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, []byte("tabWidth = \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if !document.IsParse(err) {
		t.Fatalf("Load() error = %v, want *ParseError", err)
	}
	if s != Default() {
		t.Errorf("Load() = %+v, want defaults on parse failure", s)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inkpot", "settings.toml")

	s := Default()
	s.TabWidth = 2
	s.TabsToSpaces = true
	s.Style = "solarized"

	if err := s.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded != s {
		t.Errorf("round trip = %+v, want %+v", loaded, s)
	}
}

func TestSaveReplacesPreviousFileAndDropsBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")

	first := Default()
	if err := first.Save(path); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}

	second := Default()
	second.TabWidth = 3
	if err := second.Save(path); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.TabWidth != 3 {
		t.Errorf("TabWidth = %d, want 3", loaded.TabWidth)
	}

	if _, err := os.Stat(path + ".bak"); !os.IsNotExist(err) {
		t.Error("backup file left behind after successful save")
	}
}

func TestSaveRestoresBackupWhenWriteFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")

	first := Default()
	first.TabWidth = 6
	if err := first.Save(path); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}

	writeFile = func(string, []byte, os.FileMode) error {
		return errors.New("disk full")
	}
	defer func() { writeFile = os.WriteFile }()

	second := Default()
	second.TabWidth = 9
	if err := second.Save(path); err == nil {
		t.Fatal("Save() error = nil, want write failure")
	}

	// The previous file comes back from the backup untouched.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() after failed save error = %v", err)
	}
	if loaded.TabWidth != 6 {
		t.Errorf("TabWidth = %d, want original 6", loaded.TabWidth)
	}
	if _, err := os.Stat(path + ".bak"); !os.IsNotExist(err) {
		t.Error("backup file left behind after restore")
	}
}
