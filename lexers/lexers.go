// Package lexers loads external lexer libraries from layered data
// directories.
//
// Every layer may carry a lexer directory (scintilla/lexers by default);
// each regular file in it is handed to the editor as a lexer library to
// load. Layers without the directory are skipped.
package lexers

import (
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/inkpot/lexicon/datadir"
	"github.com/inkpot/lexicon/document"
	"github.com/inkpot/lexicon/editor"
)

// DefaultDir is the lexer directory relative to each layer root.
const DefaultDir = "scintilla/lexers"

// Loader sweeps the layered lexer directories.
type Loader struct {
	dirs datadir.Dirs
	fsys document.FileSystem
	log  *zap.Logger
	dir  string
}

// Option configures a Loader.
type Option func(*Loader)

// WithFS sets the file system the sweep reads from.
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

// WithDir sets the lexer directory relative to each layer root.
func WithDir(dir string) Option {
	return func(l *Loader) {
		l.dir = dir
	}
}

// NewLoader creates a loader over the given data directory layers.
func NewLoader(dirs datadir.Dirs, opts ...Option) *Loader {
	l := &Loader{
		dirs: dirs,
		fsys: document.DefaultFS(),
		log:  zap.NewNop(),
		dir:  DefaultDir,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load walks every layer's lexer directory in precedence order and issues
// one load command per regular file, in name order. It returns the number
// of libraries loaded.
func (l *Loader) Load(ed editor.Editor) int {
	loaded := 0
	for _, layer := range l.dirs.Layers() {
		dir := filepath.Join(layer.Root, l.dir)

		entries, err := fs.ReadDir(l.fsys, dir)
		if err != nil {
			l.log.Debug("lexer directory absent",
				zap.String("layer", layer.Source.String()),
				zap.String("dir", dir))
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			ed.LoadLexerLibrary(path)
			loaded++
		}
	}

	l.log.Info("external lexers loaded", zap.Int("count", loaded))
	return loaded
}
