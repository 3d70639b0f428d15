package language

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/inkpot/lexicon/datadir"
	"github.com/inkpot/lexicon/document"
	"github.com/inkpot/lexicon/editor"
)

const defaultApp = "inkpot"

// Resolver applies layered language documents to an editor.
type Resolver struct {
	dirs datadir.Dirs
	fsys document.FileSystem
	log  *zap.Logger
	app  string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFS sets the file system documents are read from.
func WithFS(fsys document.FileSystem) Option {
	return func(r *Resolver) {
		r.fsys = fsys
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Resolver) {
		r.log = log
	}
}

// WithApp sets the application directory segment under each layer root.
func WithApp(app string) Option {
	return func(r *Resolver) {
		r.app = app
	}
}

// NewResolver creates a resolver over the given data directory layers.
func NewResolver(dirs datadir.Dirs, opts ...Option) *Resolver {
	r := &Resolver{
		dirs: dirs,
		fsys: document.DefaultFS(),
		log:  zap.NewNop(),
		app:  defaultApp,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Apply resolves lang across every layer and drives ed through the
// resulting commands.
//
// The editor's substyles are freed exactly once, before any layer is
// applied, so repeated resolutions are idempotent with respect to substyle
// allocation. Every layer with a document then reapplies its commands in
// order; each identifier group allocates a fresh substyle range, also when
// an earlier layer already covered the same lexical class. Layers whose
// document is absent or unparseable are skipped, schema violations abort.
//
// The returned style map folds the per-layer maps, later layers winning
// per key. A language no layer defines yields an empty map, not an error.
func (r *Resolver) Apply(ed editor.Editor, lang string) (StyleMap, error) {
	ed.FreeSubstyles()

	merged := make(StyleMap)
	for _, layer := range r.dirs.Layers() {
		base := filepath.Join(layer.Root, r.app, "languages", lang)

		doc, path, err := document.LoadFirst(r.fsys, base)
		switch {
		case errors.Is(err, document.ErrNotFound):
			r.log.Debug("language layer absent",
				zap.String("language", lang),
				zap.String("layer", layer.Source.String()))
			continue
		case document.IsParse(err):
			r.log.Warn("skipping unparseable language document",
				zap.String("language", lang),
				zap.String("path", path),
				zap.Error(err))
			continue
		case err != nil:
			return nil, fmt.Errorf("resolving language %s: %w", lang, err)
		}

		spec, err := ParseSpec(path, doc)
		if err != nil {
			return nil, fmt.Errorf("resolving language %s: %w", lang, err)
		}

		layerMap := applyLayer(ed, spec)
		merged = merged.Merge(layerMap)
		r.log.Debug("language layer applied",
			zap.String("language", lang),
			zap.String("path", path),
			zap.Stringer("lexer", spec.Lexer),
			zap.Int("styles", len(layerMap)))
	}

	return merged, nil
}

// applyLayer drives ed with one layer's spec and returns that layer's style
// map: the direct style entries plus one entry per substyle position whose
// class received an identifier allocation in this layer.
func applyLayer(ed editor.Editor, spec *Spec) StyleMap {
	spec.Lexer.Apply(ed)

	for _, p := range spec.Properties {
		ed.SetProperty(p.Name, p.Value)
	}
	for _, k := range spec.Keywords {
		ed.SetKeywords(k.Set, k.Words)
	}

	starts := make(map[int]int, len(spec.Identifiers))
	for _, group := range spec.Identifiers {
		start := ed.AllocateSubstyles(group.Class, len(group.Lists))
		starts[group.Class] = start
		for i, words := range group.Lists {
			ed.SetIdentifiers(start+i, words)
		}
	}

	if spec.Comments.HasLine {
		ed.SetCommentLine(spec.Comments.Line)
	}
	if spec.Comments.HasBlock {
		ed.SetCommentBlock(spec.Comments.BlockStart, spec.Comments.BlockEnd)
	}

	sm := make(StyleMap, len(spec.Styles))
	for id, visual := range spec.Styles {
		sm[id] = visual
	}
	for _, group := range spec.Substyles {
		start, ok := starts[group.Class]
		if !ok {
			continue
		}
		for i, visual := range group.Styles {
			sm[start+i] = visual
		}
	}

	return sm
}
