// Package datadir enumerates the data directory layers that language and
// style documents are resolved against.
//
// Layers are ordered lowest precedence first. A document found in a later
// layer overrides, key by key, what earlier layers defined. The standard
// order is system, user, system-override, user-override.
package datadir

import (
	"os"
	"path/filepath"
)

// Source indicates which class of data directory a layer belongs to.
type Source uint8

const (
	// SourceSystem is packaged system data (lowest precedence).
	SourceSystem Source = iota
	// SourceUser is per-user installed data.
	SourceUser
	// SourceSystemOverride is locally installed system data.
	SourceSystemOverride
	// SourceUserOverride is the user's own configuration (highest precedence).
	SourceUserOverride
)

// String returns a human-readable name for the source.
func (s Source) String() string {
	switch s {
	case SourceSystem:
		return "system"
	case SourceUser:
		return "user"
	case SourceSystemOverride:
		return "system-override"
	case SourceUserOverride:
		return "user-override"
	default:
		return "unknown"
	}
}

// Layer is a single data directory root with its precedence class.
type Layer struct {
	// Root is the directory path.
	Root string

	// Source indicates which class of directory this is.
	Source Source
}

// Dirs is an ordered list of data directory layers, lowest precedence
// first. The zero value is an empty list.
type Dirs struct {
	layers []Layer
}

// New creates a Dirs from explicit layers, kept in the given order.
func New(layers ...Layer) Dirs {
	d := Dirs{layers: make([]Layer, len(layers))}
	copy(d.layers, layers)
	return d
}

// FromRoots builds a Dirs from bare root paths in ascending precedence
// order. Sources are assigned positionally; extra roots beyond the four
// standard classes are all treated as user overrides.
func FromRoots(roots ...string) Dirs {
	layers := make([]Layer, 0, len(roots))
	for i, root := range roots {
		src := Source(i)
		if src > SourceUserOverride {
			src = SourceUserOverride
		}
		layers = append(layers, Layer{Root: root, Source: src})
	}
	return Dirs{layers: layers}
}

// Default returns the platform data directories in ascending precedence
// order: packaged system data, the XDG user data directory, locally
// installed system data, and the XDG configuration directory.
func Default() Dirs {
	return Dirs{layers: []Layer{
		{Root: "/usr/share", Source: SourceSystem},
		{Root: userDataDir(), Source: SourceUser},
		{Root: "/usr/local/share", Source: SourceSystemOverride},
		{Root: userConfigDir(), Source: SourceUserOverride},
	}}
}

// Len returns the number of layers.
func (d Dirs) Len() int {
	return len(d.layers)
}

// Layers returns a copy of the layers, lowest precedence first.
func (d Dirs) Layers() []Layer {
	out := make([]Layer, len(d.layers))
	copy(out, d.layers)
	return out
}

// ForEach invokes fn once per layer, lowest precedence first.
func (d Dirs) ForEach(fn func(Layer)) {
	for _, l := range d.layers {
		fn(l)
	}
}

// userDataDir returns the per-user data directory.
func userDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return xdg
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share")
}

// userConfigDir returns the per-user configuration directory.
func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}
