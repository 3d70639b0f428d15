// Package styler loads visual style themes from layered data directories.
//
// A theme document (<root>/<app>/styles/<name>.yaml, or a .toml/.json
// variant) defines rendering attributes per visual style id plus defaults
// that unset fields inherit. Themes lay over each other like every other
// layered document: later layers override individual fields of individual
// styles.
package styler

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"

	colorful "github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"

	"github.com/inkpot/lexicon/datadir"
	"github.com/inkpot/lexicon/document"
	"github.com/inkpot/lexicon/language"
)

const defaultApp = "inkpot"

// Style describes the rendering of one visual style id. Colors are
// normalized "#rrggbb" strings; empty means unset.
type Style struct {
	Foreground string
	Background string
	Bold       bool
	Italic     bool
	Underline  bool
}

// Theme is a resolved set of visual styles keyed by style id.
type Theme struct {
	// Name is the display name, defaulting to the theme's document name.
	Name string

	// Defaults is the style unset fields and unknown ids inherit.
	Defaults Style

	styles map[int]Style
}

// Style returns the resolved style for a visual style id. Ids the theme
// doesn't define get the defaults.
func (t *Theme) Style(id int) Style {
	if s, ok := t.styles[id]; ok {
		return s
	}
	return t.Defaults
}

// StyleIDs returns the defined style ids in ascending order.
func (t *Theme) StyleIDs() []int {
	ids := make([]int, 0, len(t.styles))
	for id := range t.styles {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Stylize resolves a style map produced by the language resolver into
// concrete visual styles per lexical style id.
func (t *Theme) Stylize(sm language.StyleMap) map[int]Style {
	out := make(map[int]Style, len(sm))
	for lexical, visual := range sm {
		out[lexical] = t.Style(visual)
	}
	return out
}

// Loader loads themes by name across the data directory layers.
type Loader struct {
	dirs datadir.Dirs
	fsys document.FileSystem
	log  *zap.Logger
	app  string
}

// Option configures a Loader.
type Option func(*Loader)

// WithFS sets the file system themes are read from.
func WithFS(fsys document.FileSystem) Option {
	return func(l *Loader) {
		l.fsys = fsys
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) {
		l.log = log
	}
}

// WithApp sets the application directory segment under each layer root.
func WithApp(app string) Option {
	return func(l *Loader) {
		l.app = app
	}
}

// NewLoader creates a theme loader over the given data directory layers.
func NewLoader(dirs datadir.Dirs, opts ...Option) *Loader {
	l := &Loader{
		dirs: dirs,
		fsys: document.DefaultFS(),
		log:  zap.NewNop(),
		app:  defaultApp,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load folds the named theme document across every layer and resolves it.
// The document trees are merged field by field before parsing, so a layer
// can override a single color of a single style. A theme no layer defines
// reports ErrNotFound.
func (l *Loader) Load(name string) (*Theme, error) {
	var merged map[string]any
	found := false

	for _, layer := range l.dirs.Layers() {
		base := filepath.Join(layer.Root, l.app, "styles", name)

		doc, path, err := document.LoadFirst(l.fsys, base)
		switch {
		case errors.Is(err, document.ErrNotFound):
			l.log.Debug("theme layer absent",
				zap.String("theme", name),
				zap.String("layer", layer.Source.String()))
			continue
		case document.IsParse(err):
			l.log.Warn("skipping unparseable theme document",
				zap.String("theme", name),
				zap.String("path", path),
				zap.Error(err))
			continue
		case err != nil:
			return nil, fmt.Errorf("loading theme %s: %w", name, err)
		}

		merged = document.Merge(merged, doc)
		found = true
	}

	if !found {
		return nil, fmt.Errorf("theme %s: %w", name, document.ErrNotFound)
	}

	theme, err := parseTheme(name, merged)
	if err != nil {
		return nil, fmt.Errorf("loading theme %s: %w", name, err)
	}

	l.log.Info("theme loaded",
		zap.String("theme", theme.Name),
		zap.Int("styles", len(theme.styles)))
	return theme, nil
}

// List returns the theme names found across every layer's styles
// directory, deduplicated and sorted. Layers without one are skipped.
func (l *Loader) List() []string {
	seen := make(map[string]bool)
	for _, layer := range l.dirs.Layers() {
		dir := filepath.Join(layer.Root, l.app, "styles")

		entries, err := fs.ReadDir(l.fsys, dir)
		if err != nil {
			l.log.Debug("styles directory absent",
				zap.String("layer", layer.Source.String()),
				zap.String("dir", dir))
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if name, ok := document.Stem(entry.Name()); ok {
				seen[name] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parseTheme validates a merged theme tree.
func parseTheme(name string, doc map[string]any) (*Theme, error) {
	t := &Theme{Name: name, styles: make(map[int]Style)}
	if display, ok := doc["name"].(string); ok {
		t.Name = display
	}

	base := Style{}
	if raw, ok := doc["defaults"]; ok {
		var err error
		base, err = parseStyle("defaults", raw, Style{})
		if err != nil {
			return nil, err
		}
	}
	t.Defaults = withFallback(base)

	if raw, ok := doc["styles"]; ok {
		styles, ok := raw.(map[string]any)
		if !ok {
			return nil, &document.SchemaError{Field: "styles", Reason: "expected mapping"}
		}
		for key, val := range styles {
			id, err := strconv.Atoi(key)
			if err != nil {
				return nil, &document.SchemaError{Field: "styles." + key, Reason: "expected integer key"}
			}
			s, err := parseStyle("styles."+key, val, base)
			if err != nil {
				return nil, err
			}
			t.styles[id] = withFallback(s)
		}
	}

	return t, nil
}

// parseStyle validates one style definition, layering it over base.
func parseStyle(field string, raw any, base Style) (Style, error) {
	def, ok := raw.(map[string]any)
	if !ok {
		return Style{}, &document.SchemaError{Field: field, Reason: "expected mapping"}
	}

	style := base
	if v, ok := def["foreground"]; ok {
		color, err := parseColor(field+".foreground", v)
		if err != nil {
			return Style{}, err
		}
		style.Foreground = color
	}
	if v, ok := def["background"]; ok {
		color, err := parseColor(field+".background", v)
		if err != nil {
			return Style{}, err
		}
		style.Background = color
	}

	for attr, dst := range map[string]*bool{
		"bold":      &style.Bold,
		"italic":    &style.Italic,
		"underline": &style.Underline,
	} {
		v, ok := def[attr]
		if !ok {
			continue
		}
		b, ok := v.(bool)
		if !ok {
			return Style{}, &document.SchemaError{Field: field + "." + attr, Reason: "expected boolean"}
		}
		*dst = b
	}

	return style, nil
}

// parseColor normalizes a hex color to its "#rrggbb" form.
func parseColor(field string, v any) (string, error) {
	text, ok := document.String(v)
	if !ok {
		return "", &document.SchemaError{Field: field, Reason: "expected color string"}
	}
	c, err := colorful.Hex(text)
	if err != nil {
		return "", &document.SchemaError{Field: field, Reason: fmt.Sprintf("invalid color %q", text)}
	}
	return c.Hex(), nil
}

// withFallback picks a readable foreground when only the background is set:
// black on light backgrounds, white on dark ones.
func withFallback(s Style) Style {
	if s.Foreground != "" || s.Background == "" {
		return s
	}
	bg, err := colorful.Hex(s.Background)
	if err != nil {
		return s
	}
	if _, _, light := bg.Hsl(); light > 0.5 {
		s.Foreground = "#000000"
	} else {
		s.Foreground = "#ffffff"
	}
	return s
}
