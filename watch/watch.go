// Package watch monitors layered data directories for changes to language
// catalogs, language specs, themes, and lexer libraries.
//
// A Watcher observes every existing layer directory and classifies raw file
// system notifications into domain events, so callers can reload exactly the
// configuration a change affects instead of rescanning everything.
package watch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/inkpot/lexicon/catalog"
	"github.com/inkpot/lexicon/datadir"
	"github.com/inkpot/lexicon/document"
	"github.com/inkpot/lexicon/lexers"
)

// Common errors returned by watcher operations.
var (
	ErrStarted = errors.New("watcher already started")
	ErrClosed  = errors.New("watcher is closed")
)

// Kind classifies what a change affects.
type Kind uint8

const (
	// KindCatalog marks a change to a layer's language catalog document.
	KindCatalog Kind = iota
	// KindLanguage marks a change to a single language spec document.
	KindLanguage
	// KindTheme marks a change to a theme document.
	KindTheme
	// KindLexers marks a change under a layer's lexer library directory.
	KindLexers
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindCatalog:
		return "catalog"
	case KindLanguage:
		return "language"
	case KindTheme:
		return "theme"
	case KindLexers:
		return "lexers"
	default:
		return "unknown"
	}
}

// Op represents the type of file system operation.
type Op uint32

const (
	// OpCreate indicates a file or directory was created.
	OpCreate Op = 1 << iota
	// OpWrite indicates a file was written to.
	OpWrite
	// OpRemove indicates a file or directory was removed.
	OpRemove
	// OpRename indicates a file or directory was renamed.
	OpRename
	// OpChmod indicates file permissions were changed.
	OpChmod
)

// String returns a human-readable representation of the operation.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpWrite:
		return "WRITE"
	case OpRemove:
		return "REMOVE"
	case OpRename:
		return "RENAME"
	case OpChmod:
		return "CHMOD"
	default:
		return "UNKNOWN"
	}
}

// Has returns true if the operation includes the given op.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event describes a change inside one of the watched data layers.
type Event struct {
	// Kind classifies what the change affects.
	Kind Kind

	// Source is the layer the change happened in.
	Source datadir.Source

	// Language is the language id, for KindLanguage events.
	Language string

	// Theme is the theme name, for KindTheme events.
	Theme string

	// Path is the path of the affected file.
	Path string

	// Op is the operation that occurred.
	Op Op

	// Timestamp is when the event was observed.
	Timestamp time.Time
}

const defaultBufferSize = 100

// Watcher turns file system notifications from the data layers into Events.
//
// All configuration is fixed at construction time. Start spawns the single
// internal goroutine; Stop shuts it down and closes both channels. Events
// that arrive while the channel is full are dropped.
type Watcher struct {
	mu sync.Mutex

	dirs    datadir.Dirs
	log     *zap.Logger
	app     string
	lexDir  string
	bufSize int

	fw     *fsnotify.Watcher
	events chan Event
	errs   chan error

	started bool
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger used for skipped directories and drops.
func WithLogger(log *zap.Logger) Option {
	return func(w *Watcher) {
		if log != nil {
			w.log = log
		}
	}
}

// WithApp overrides the application directory segment.
func WithApp(app string) Option {
	return func(w *Watcher) {
		if app != "" {
			w.app = app
		}
	}
}

// WithLexersDir overrides the lexer library directory relative to each root.
func WithLexersDir(dir string) Option {
	return func(w *Watcher) {
		if dir != "" {
			w.lexDir = dir
		}
	}
}

// WithBufferSize sets the event and error channel buffer size.
func WithBufferSize(size int) Option {
	return func(w *Watcher) {
		w.bufSize = size
	}
}

// New creates a watcher over the given layer stack. The watcher does not
// observe anything until Start is called.
func New(dirs datadir.Dirs, opts ...Option) *Watcher {
	w := &Watcher{
		dirs:    dirs,
		log:     zap.NewNop(),
		app:     catalog.DefaultApp,
		lexDir:  lexers.DefaultDir,
		bufSize: defaultBufferSize,
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.bufSize <= 0 {
		w.bufSize = defaultBufferSize
	}
	w.events = make(chan Event, w.bufSize)
	w.errs = make(chan error, w.bufSize)
	return w
}

// Events returns the channel of classified events.
// The channel is closed when the watcher is stopped.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of watcher errors.
// The channel is closed when the watcher is stopped.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Start registers every existing layer directory with the underlying
// fsnotify watcher and spawns the processing goroutine. Layers or
// subdirectories that do not exist are skipped; a languages or styles
// directory created later is picked up automatically.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.started {
		return ErrStarted
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fw = fw

	watched := 0
	w.dirs.ForEach(func(l datadir.Layer) {
		for _, dir := range w.layerDirs(l.Root) {
			if _, err := os.Stat(dir); err != nil {
				continue
			}
			if err := fw.Add(dir); err != nil {
				w.log.Debug("watch failed",
					zap.String("dir", dir),
					zap.Error(err))
				continue
			}
			watched++
		}
	})
	w.log.Info("watching data directories", zap.Int("count", watched))

	w.started = true
	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop shuts the watcher down and closes the event and error channels.
// It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	started := w.started
	close(w.closeCh)
	w.mu.Unlock()

	if !started {
		close(w.events)
		close(w.errs)
		return nil
	}

	w.wg.Wait()
	err := w.fw.Close()
	close(w.events)
	close(w.errs)
	return err
}

// layerDirs lists the directories observed under a single layer root.
func (w *Watcher) layerDirs(root string) []string {
	app := filepath.Join(root, w.app)
	return []string{
		app,
		filepath.Join(app, "languages"),
		filepath.Join(app, "styles"),
		filepath.Join(root, w.lexDir),
	}
}

// loop handles incoming fsnotify events until Stop is called.
func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case fe, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handle(fe)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		}
	}
}

// handle converts and dispatches a single fsnotify event.
func (w *Watcher) handle(fe fsnotify.Event) {
	op := convertOp(fe.Op)
	if op == 0 {
		return
	}

	// Skip editor temp files and other dotfiles.
	base := filepath.Base(fe.Name)
	if len(base) > 0 && base[0] == '.' {
		return
	}

	if op.Has(OpCreate) {
		if info, err := os.Stat(fe.Name); err == nil && info.IsDir() {
			// A languages or styles directory appearing after Start.
			if w.wantDir(fe.Name) {
				_ = w.fw.Add(fe.Name)
			}
			return
		}
	}

	ev, ok := w.classify(fe.Name)
	if !ok {
		return
	}
	ev.Op = op
	ev.Timestamp = time.Now()
	w.send(ev)
}

// classify maps a changed path onto the layer layout. The second return is
// false for paths that name neither a catalog, language, theme, nor lexer
// file. When layer roots nest, the deepest matching root wins.
func (w *Watcher) classify(path string) (Event, bool) {
	var (
		best    Event
		bestLen = -1
		found   bool
	)
	w.dirs.ForEach(func(l datadir.Layer) {
		ev, ok := w.classifyIn(l, path)
		if ok && len(l.Root) > bestLen {
			best, bestLen, found = ev, len(l.Root), true
		}
	})
	return best, found
}

func (w *Watcher) classifyIn(l datadir.Layer, path string) (Event, bool) {
	rel, err := filepath.Rel(l.Root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return Event{}, false
	}

	ev := Event{Source: l.Source, Path: path}

	if sub, ok := underDir(rel, w.lexDir); ok {
		if strings.ContainsRune(sub, filepath.Separator) {
			return Event{}, false
		}
		ev.Kind = KindLexers
		return ev, true
	}

	sub, ok := underDir(rel, w.app)
	if !ok {
		return Event{}, false
	}

	if !strings.ContainsRune(sub, filepath.Separator) {
		name, ok := document.Stem(sub)
		if !ok || name != "languages" {
			return Event{}, false
		}
		ev.Kind = KindCatalog
		return ev, true
	}

	dir, file := filepath.Split(sub)
	name, ok := document.Stem(file)
	if !ok {
		return Event{}, false
	}
	switch filepath.Clean(dir) {
	case "languages":
		ev.Kind = KindLanguage
		ev.Language = name
		return ev, true
	case "styles":
		ev.Kind = KindTheme
		ev.Theme = name
		return ev, true
	}
	return Event{}, false
}

// wantDir reports whether path is one of the directories the watcher
// observes for some layer.
func (w *Watcher) wantDir(path string) bool {
	clean := filepath.Clean(path)
	found := false
	w.dirs.ForEach(func(l datadir.Layer) {
		for _, dir := range w.layerDirs(l.Root) {
			if clean == dir {
				found = true
			}
		}
	})
	return found
}

// send delivers an event, dropping it when the channel is full.
func (w *Watcher) send(ev Event) {
	select {
	case w.events <- ev:
	default:
		w.log.Debug("event channel full, dropping event",
			zap.Stringer("kind", ev.Kind),
			zap.String("path", ev.Path))
	}
}

func (w *Watcher) sendError(err error) {
	select {
	case w.errs <- err:
	default:
	}
}

// convertOp converts fsnotify.Op to watch.Op.
func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	if fsOp.Has(fsnotify.Chmod) {
		op |= OpChmod
	}
	return op
}

// underDir strips a relative directory prefix from rel, returning the
// remainder.
func underDir(rel, prefix string) (string, bool) {
	prefix = filepath.Clean(prefix)
	if rel == prefix {
		return "", false
	}
	pre := prefix + string(filepath.Separator)
	if !strings.HasPrefix(rel, pre) {
		return "", false
	}
	return rel[len(pre):], true
}
