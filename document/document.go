// Package document loads structured configuration documents into a
// format-neutral tree.
//
// A loaded document is a map[string]any whose values are scalars (string,
// int64, float64, bool, nil), []any sequences, or nested map[string]any
// mappings. Mapping keys are always presented as strings; a numeric key
// keeps its literal text ("20" for the key 20), so schemas with integer
// keys behave identically across YAML, TOML and JSON sources.
package document

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// extensions lists the understood file extensions in the order LoadFirst
// tries them. Matching is exact: uppercase variants are not documents.
var extensions = []string{".yaml", ".yml", ".toml", ".json"}

// maxNestingDepth caps container nesting in parsed documents.
const maxNestingDepth = 1000

// errNesting reports a document nested past maxNestingDepth.
func errNesting(path string) *ParseError {
	return &ParseError{
		Path:    path,
		Message: fmt.Sprintf("nesting exceeds %d levels", maxNestingDepth),
	}
}

// Extensions returns the file extensions Load understands, in the order
// LoadFirst tries them.
func Extensions() []string {
	out := make([]string, len(extensions))
	copy(out, extensions)
	return out
}

// Stem strips a supported document extension from a file name, reporting
// whether the extension was recognized. Like Load, it only recognizes the
// exact lowercase extensions.
func Stem(file string) (string, bool) {
	ext := filepath.Ext(file)
	for _, want := range extensions {
		if ext == want {
			return strings.TrimSuffix(file, ext), true
		}
	}
	return "", false
}

// FileSystem is the read surface documents are loaded through. It narrows
// fs.FS to what the loaders need, so tests can substitute fstest.MapFS or
// any other in-memory tree.
type FileSystem interface {
	fs.FS
	// ReadFile returns the contents of the named file.
	ReadFile(name string) ([]byte, error)
}

// OSFS is the FileSystem backed by the operating system.
type OSFS struct{}

// Open opens the named file.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile returns the contents of the named file.
func (OSFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// DefaultFS returns the operating system FileSystem.
func DefaultFS() FileSystem {
	return OSFS{}
}

// Load reads and parses the document at path. The parser is chosen by file
// extension. A missing file is reported as ErrNotFound, malformed input as
// a *ParseError, and structural problems (such as non-scalar mapping keys)
// as a *SchemaError.
func Load(fsys FileSystem, path string) (map[string]any, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("reading document %s: %w", path, err)
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return parseYAML(path, data)
	case ".toml":
		return parseTOML(path, data)
	case ".json":
		return parseJSON(path, data)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// LoadFirst tries base+ext for every understood extension in order and
// loads the first file that exists. It returns the loaded tree and the path
// that was used. When no candidate exists the error wraps ErrNotFound.
func LoadFirst(fsys FileSystem, base string) (map[string]any, string, error) {
	for _, ext := range extensions {
		path := base + ext
		doc, err := Load(fsys, path)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, path, err
		}
		return doc, path, nil
	}
	return nil, "", fmt.Errorf("%s.*: %w", base, ErrNotFound)
}
