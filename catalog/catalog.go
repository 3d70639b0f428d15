// Package catalog builds the in-memory language catalog from layered
// languages documents.
//
// Each data directory layer may carry a languages document
// (<root>/<app>/languages.yaml, or a .toml/.json variant) mapping language
// ids to a display name and a list of file extensions. Load folds the
// layers lowest precedence first: extension bindings and display names from
// later layers overwrite earlier ones and are never removed, while the
// ordered list of known language ids grows append-only in order of first
// appearance.
package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/inkpot/lexicon/datadir"
	"github.com/inkpot/lexicon/document"
)

const (
	// DefaultApp is the application directory segment under each layer root.
	DefaultApp = "inkpot"

	// DefaultFallback is the language id reported for unknown extensions.
	DefaultFallback = "text"
)

// Entry describes one catalog language.
type Entry struct {
	// ID is the language identifier.
	ID string

	// DisplayName is the human-readable name shown in menus.
	DisplayName string

	// Extensions lists the file extensions bound by the defining layer.
	Extensions []string
}

// Catalog is the language catalog built from layered languages documents.
type Catalog struct {
	mu       sync.RWMutex
	dirs     datadir.Dirs
	fsys     document.FileSystem
	log      *zap.Logger
	app      string
	fallback string

	extIndex map[string]string
	names    map[string]string
	exts     map[string][]string
	ids      []string
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithFS sets the file system documents are read from.
func WithFS(fsys document.FileSystem) Option {
	return func(c *Catalog) {
		c.fsys = fsys
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Catalog) {
		c.log = log
	}
}

// WithApp sets the application directory segment under each layer root.
func WithApp(app string) Option {
	return func(c *Catalog) {
		c.app = app
	}
}

// WithFallback sets the language id returned for unknown extensions.
func WithFallback(id string) Option {
	return func(c *Catalog) {
		c.fallback = id
	}
}

// New creates an empty catalog over the given data directory layers.
func New(dirs datadir.Dirs, opts ...Option) *Catalog {
	c := &Catalog{
		dirs:     dirs,
		fsys:     document.DefaultFS(),
		log:      zap.NewNop(),
		app:      DefaultApp,
		fallback: DefaultFallback,
		extIndex: make(map[string]string),
		names:    make(map[string]string),
		exts:     make(map[string][]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load rebuilds the catalog from the layered languages documents. Layers
// whose document is absent or unparseable are skipped; a document that
// parses but violates the catalog schema aborts the load.
func (c *Catalog) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.extIndex = make(map[string]string)
	c.names = make(map[string]string)
	c.exts = make(map[string][]string)
	c.ids = nil

	for _, layer := range c.dirs.Layers() {
		base := filepath.Join(layer.Root, c.app, "languages")

		doc, path, err := document.LoadFirst(c.fsys, base)
		switch {
		case errors.Is(err, document.ErrNotFound):
			c.log.Debug("catalog layer absent",
				zap.String("layer", layer.Source.String()),
				zap.String("root", layer.Root))
			continue
		case document.IsParse(err):
			c.log.Warn("skipping unparseable catalog document",
				zap.String("layer", layer.Source.String()),
				zap.String("path", path),
				zap.Error(err))
			continue
		case err != nil:
			return fmt.Errorf("loading language catalog: %w", err)
		}

		if err := c.fold(path, doc); err != nil {
			return fmt.Errorf("loading language catalog: %w", err)
		}
		c.log.Debug("catalog layer loaded",
			zap.String("layer", layer.Source.String()),
			zap.String("path", path),
			zap.Int("entries", len(doc)))
	}

	c.log.Info("language catalog loaded",
		zap.Int("languages", len(c.ids)),
		zap.Int("extensions", len(c.extIndex)))
	return nil
}

// fold merges one layer's catalog document into the accumulated state.
// Entries are processed in sorted id order so folding is deterministic.
func (c *Catalog) fold(path string, doc map[string]any) error {
	ids := make([]string, 0, len(doc))
	for id := range doc {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		entry, ok := doc[id].(map[string]any)
		if !ok {
			return &document.SchemaError{Path: path, Field: id, Reason: "language entry is not a mapping"}
		}

		name, ok := entry["name"].(string)
		if !ok {
			return &document.SchemaError{Path: path, Field: id + ".name", Reason: fmt.Sprintf("expected string, got %T", entry["name"])}
		}

		rawExts, ok := entry["extensions"].([]any)
		if !ok {
			return &document.SchemaError{Path: path, Field: id + ".extensions", Reason: fmt.Sprintf("expected sequence, got %T", entry["extensions"])}
		}

		exts := make([]string, 0, len(rawExts))
		for _, raw := range rawExts {
			ext, ok := document.String(raw)
			if !ok {
				return &document.SchemaError{Path: path, Field: id + ".extensions", Reason: fmt.Sprintf("expected scalar extension, got %T", raw)}
			}
			c.extIndex[ext] = id
			exts = append(exts, ext)
		}

		c.names[id] = name
		c.exts[id] = exts
		if !c.known(id) {
			c.ids = append(c.ids, id)
		}
	}

	return nil
}

// known reports whether id is already in the ordered list.
func (c *Catalog) known(id string) bool {
	for _, existing := range c.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// LanguageForExtension returns the language id bound to a file extension.
// Unknown extensions report the fallback id and false, never an error.
func (c *Catalog) LanguageForExtension(ext string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if id, ok := c.extIndex[ext]; ok {
		return id, true
	}
	return c.fallback, false
}

// Languages returns a copy of the known language ids. The order is first
// appearance across layers unless SortAlphabetically was called.
func (c *Catalog) Languages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// DisplayName returns the display name for a language id.
func (c *Catalog) DisplayName(id string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	name, ok := c.names[id]
	return name, ok
}

// Entry returns the full catalog entry for a language id.
func (c *Catalog) Entry(id string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	name, ok := c.names[id]
	if !ok {
		return Entry{}, false
	}

	exts := make([]string, len(c.exts[id]))
	copy(exts, c.exts[id])
	return Entry{ID: id, DisplayName: name, Extensions: exts}, true
}

// Len returns the number of known languages.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.ids)
}

// SortAlphabetically sorts the language id list in place. The catalog keeps
// first-appearance order until this is called.
func (c *Catalog) SortAlphabetically() {
	c.mu.Lock()
	defer c.mu.Unlock()

	sort.Strings(c.ids)
}
