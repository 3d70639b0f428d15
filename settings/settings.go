// Package settings persists the editor settings document.
//
// Settings load leniently: a missing file yields the defaults, and keys
// absent from the file keep their default values. Saving writes TOML and
// guards the previous file with a backup that is restored if the write
// fails.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/inkpot/lexicon/document"
)

// writeFile is replaced in tests to inject write failures.
var writeFile = os.WriteFile

// Settings holds the persisted editor preferences.
type Settings struct {
	TabWidth                     int    `toml:"tabWidth"`
	TabsToSpaces                 bool   `toml:"tabsToSpaces"`
	LineHighlighting             bool   `toml:"lineHighlighting"`
	LineHighlightingMode         int    `toml:"lineHighlightingMode"`
	LineNumbers                  bool   `toml:"lineNumbers"`
	FoldMargin                   bool   `toml:"foldMargin"`
	BookmarkMargin               bool   `toml:"bookmarkMargin"`
	IndentGuidesShow             bool   `toml:"indentGuidesShow"`
	IndentGuidesMode             int    `toml:"indentGuidesMode"`
	WhiteSpaceVisible            bool   `toml:"whiteSpaceVisible"`
	EOLVisible                   bool   `toml:"EOLVisible"`
	LineLimitShow                bool   `toml:"lineLimitShow"`
	LineLimitMode                int    `toml:"lineLimitMode"`
	LineLimitColumn              int    `toml:"lineLimitColumn"`
	WrapLines                    bool   `toml:"wrapLines"`
	BracesHighlighting           bool   `toml:"bracesHighlighting"`
	FullPathInTitle              bool   `toml:"fullPathInTitle"`
	CompactLangMenu              bool   `toml:"compactLangMenu"`
	Toolbar                      bool   `toml:"toolbar"`
	ToolbarIconSizeMultiplier    int    `toml:"toolbarIconSizeMultiplier"`
	OpenWindowsInStack           bool   `toml:"openWindowsInStack"`
	HighlightTrailingWhitespace  bool   `toml:"highlightTrailingWhitespace"`
	TrimTrailingWhitespaceOnSave bool   `toml:"trimTrailingWhitespaceOnSave"`
	AppendFinalNewline           bool   `toml:"appendNLAtTheEndIfNotPresent"`
	Style                        string `toml:"style"`
	UseEditorconfig              bool   `toml:"useEditorconfig"`
	AlwaysOpenInNewWindow        bool   `toml:"alwaysOpenInNewWindow"`
	UseCustomFont                bool   `toml:"useCustomFont"`
	FontFamily                   string `toml:"fontFamily"`
	FontSize                     int    `toml:"fontSize"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		TabWidth:                  4,
		LineHighlighting:          true,
		LineNumbers:               true,
		FoldMargin:                true,
		BookmarkMargin:            true,
		IndentGuidesShow:          true,
		IndentGuidesMode:          1,
		LineLimitMode:             1,
		LineLimitColumn:           80,
		BracesHighlighting:        true,
		FullPathInTitle:           true,
		CompactLangMenu:           true,
		Toolbar:                   true,
		ToolbarIconSizeMultiplier: 3,
		OpenWindowsInStack:        true,
		AppendFinalNewline:        true,
		Style:                     "default",
		UseEditorconfig:           true,
		FontFamily:                "Noto Sans Mono",
		FontSize:                  12,
	}
}

// Load reads settings from path. A missing file yields the defaults; keys
// the file doesn't set keep their default values. Malformed TOML is
// reported as a *document.ParseError.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("reading settings %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &s); err != nil {
		pe := &document.ParseError{
			Path:    path,
			Message: err.Error(),
			Err:     err,
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			pe.Line, pe.Column = derr.Position()
		}
		return Default(), pe
	}

	return s, nil
}

// Save writes the settings to path as TOML. An existing file is renamed
// aside first and restored if the write fails; on success the backup is
// removed.
func (s Settings) Save(path string) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating settings directory: %w", err)
		}
	}

	backup := path + ".bak"
	hadPrevious := false
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, backup); err != nil {
			return fmt.Errorf("backing up settings: %w", err)
		}
		hadPrevious = true
	}

	if err := writeFile(path, data, 0o644); err != nil {
		if hadPrevious {
			_ = os.Rename(backup, path)
		}
		return fmt.Errorf("writing settings %s: %w", path, err)
	}

	if hadPrevious {
		_ = os.Remove(backup)
	}
	return nil
}
