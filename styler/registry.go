package styler

import (
	"sort"
	"sync"
)

// DefaultThemeName is the name of the builtin fallback theme.
const DefaultThemeName = "default"

// DefaultTheme returns the builtin fallback theme: plain black on white
// with no per-style overrides. It is always available, even with empty
// data directories.
func DefaultTheme() *Theme {
	return &Theme{
		Name: DefaultThemeName,
		Defaults: Style{
			Foreground: "#000000",
			Background: "#ffffff",
		},
		styles: make(map[int]Style),
	}
}

// Registry tracks the themes available to an editor session. Themes load
// lazily through the Loader and stay cached until Reload; the builtin
// default theme is always registered and starts out current.
type Registry struct {
	mu      sync.RWMutex
	loader  *Loader
	themes  map[string]*Theme
	current string
}

// NewRegistry creates a registry over the given loader.
func NewRegistry(loader *Loader) *Registry {
	builtin := DefaultTheme()
	return &Registry{
		loader:  loader,
		themes:  map[string]*Theme{builtin.Name: builtin},
		current: builtin.Name,
	}
}

// Get returns a theme by name, loading and caching it on first use.
func (r *Registry) Get(name string) (*Theme, error) {
	r.mu.RLock()
	t, ok := r.themes[name]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}

	t, err := r.loader.Load(name)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.themes[name] = t
	r.mu.Unlock()
	return t, nil
}

// Current returns the active theme. It never fails: when the active theme
// cannot be loaded the builtin default is returned instead.
func (r *Registry) Current() *Theme {
	r.mu.RLock()
	name := r.current
	t, ok := r.themes[name]
	r.mu.RUnlock()
	if ok {
		return t
	}

	t, err := r.Get(name)
	if err != nil {
		return DefaultTheme()
	}
	return t
}

// CurrentName returns the name the active theme was selected under.
func (r *Registry) CurrentName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.current
}

// SetCurrent switches the active theme, loading it first so a bad name
// leaves the selection untouched.
func (r *Registry) SetCurrent(name string) error {
	if _, err := r.Get(name); err != nil {
		return err
	}

	r.mu.Lock()
	r.current = name
	r.mu.Unlock()
	return nil
}

// Names returns the builtin theme plus every theme document discovered in
// the data directories, sorted.
func (r *Registry) Names() []string {
	names := r.loader.List()
	for _, name := range names {
		if name == DefaultThemeName {
			return names
		}
	}
	names = append(names, DefaultThemeName)
	sort.Strings(names)
	return names
}

// Reload drops every cached theme so later lookups reread the data
// directories. The current selection is kept and reloads lazily.
func (r *Registry) Reload() {
	builtin := DefaultTheme()

	r.mu.Lock()
	r.themes = map[string]*Theme{builtin.Name: builtin}
	r.mu.Unlock()
}
