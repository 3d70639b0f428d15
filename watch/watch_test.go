package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/inkpot/lexicon/datadir"
)

func testDirs() datadir.Dirs {
	return datadir.New(
		datadir.Layer{Root: "/sys", Source: datadir.SourceSystem},
		datadir.Layer{Root: "/usr", Source: datadir.SourceUser},
	)
}

func TestClassify(t *testing.T) {
	w := New(testDirs())

	tests := []struct {
		name         string
		path         string
		wantOK       bool
		wantKind     Kind
		wantSource   datadir.Source
		wantLanguage string
		wantTheme    string
	}{
		{
			name:       "catalog yaml",
			path:       "/sys/inkpot/languages.yaml",
			wantOK:     true,
			wantKind:   KindCatalog,
			wantSource: datadir.SourceSystem,
		},
		{
			name:       "catalog toml in user layer",
			path:       "/usr/inkpot/languages.toml",
			wantOK:     true,
			wantKind:   KindCatalog,
			wantSource: datadir.SourceUser,
		},
		{
			name:         "language spec",
			path:         "/sys/inkpot/languages/cpp.yaml",
			wantOK:       true,
			wantKind:     KindLanguage,
			wantSource:   datadir.SourceSystem,
			wantLanguage: "cpp",
		},
		{
			name:         "language spec json",
			path:         "/usr/inkpot/languages/rust.json",
			wantOK:       true,
			wantKind:     KindLanguage,
			wantSource:   datadir.SourceUser,
			wantLanguage: "rust",
		},
		{
			name:       "theme",
			path:       "/sys/inkpot/styles/dark.yml",
			wantOK:     true,
			wantKind:   KindTheme,
			wantSource: datadir.SourceSystem,
			wantTheme:  "dark",
		},
		{
			name:       "lexer library",
			path:       "/sys/scintilla/lexers/liblexilla.so",
			wantOK:     true,
			wantKind:   KindLexers,
			wantSource: datadir.SourceSystem,
		},
		{
			name:   "wrong app segment",
			path:   "/sys/other/languages.yaml",
			wantOK: false,
		},
		{
			name:   "outside every root",
			path:   "/elsewhere/inkpot/languages.yaml",
			wantOK: false,
		},
		{
			name:   "unsupported extension",
			path:   "/sys/inkpot/languages/cpp.txt",
			wantOK: false,
		},
		{
			name:   "nested too deep",
			path:   "/sys/inkpot/languages/sub/cpp.yaml",
			wantOK: false,
		},
		{
			name:   "unrelated document next to catalog",
			path:   "/sys/inkpot/notes.yaml",
			wantOK: false,
		},
		{
			name:   "nested lexer path",
			path:   "/sys/scintilla/lexers/sub/lib.so",
			wantOK: false,
		},
		{
			name:   "languages directory itself",
			path:   "/sys/inkpot/languages",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := w.classify(tt.path)
			if ok != tt.wantOK {
				t.Fatalf("classify(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}
			if ev.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", ev.Kind, tt.wantKind)
			}
			if ev.Source != tt.wantSource {
				t.Errorf("Source = %v, want %v", ev.Source, tt.wantSource)
			}
			if ev.Language != tt.wantLanguage {
				t.Errorf("Language = %q, want %q", ev.Language, tt.wantLanguage)
			}
			if ev.Theme != tt.wantTheme {
				t.Errorf("Theme = %q, want %q", ev.Theme, tt.wantTheme)
			}
			if ev.Path != tt.path {
				t.Errorf("Path = %q, want %q", ev.Path, tt.path)
			}
		})
	}
}

func TestClassifyCustomAppAndLexersDir(t *testing.T) {
	w := New(testDirs(), WithApp("koder"), WithLexersDir("lib/lexers"))

	ev, ok := w.classify("/sys/koder/languages/go.yaml")
	if !ok || ev.Kind != KindLanguage || ev.Language != "go" {
		t.Errorf("classify language = %+v, %v; want KindLanguage go", ev, ok)
	}

	ev, ok = w.classify("/usr/lib/lexers/libcpp.so")
	if !ok || ev.Kind != KindLexers || ev.Source != datadir.SourceUser {
		t.Errorf("classify lexer = %+v, %v; want KindLexers user", ev, ok)
	}

	if _, ok := w.classify("/sys/inkpot/languages.yaml"); ok {
		t.Error("default app path should not classify with custom app")
	}
}

func TestHandleDeliversEvent(t *testing.T) {
	w := New(testDirs())

	w.handle(fsnotify.Event{Name: "/sys/inkpot/languages/go.yaml", Op: fsnotify.Write})

	select {
	case ev := <-w.Events():
		if ev.Kind != KindLanguage {
			t.Errorf("Kind = %v, want %v", ev.Kind, KindLanguage)
		}
		if ev.Language != "go" {
			t.Errorf("Language = %q, want %q", ev.Language, "go")
		}
		if !ev.Op.Has(OpWrite) {
			t.Errorf("Op = %v, want write", ev.Op)
		}
		if ev.Timestamp.IsZero() {
			t.Error("Timestamp should not be zero")
		}
	default:
		t.Fatal("no event delivered")
	}
}

func TestHandleIgnores(t *testing.T) {
	w := New(testDirs())

	tests := []struct {
		name  string
		event fsnotify.Event
	}{
		{
			name:  "hidden file",
			event: fsnotify.Event{Name: "/sys/inkpot/languages/.go.yaml.swp", Op: fsnotify.Write},
		},
		{
			name:  "unclassifiable path",
			event: fsnotify.Event{Name: "/sys/README.md", Op: fsnotify.Write},
		},
		{
			name:  "unknown operation",
			event: fsnotify.Event{Name: "/sys/inkpot/languages.yaml", Op: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w.handle(tt.event)
			select {
			case ev := <-w.Events():
				t.Errorf("unexpected event %+v", ev)
			default:
			}
		})
	}
}

func TestHandleDropsWhenFull(t *testing.T) {
	w := New(testDirs(), WithBufferSize(1))

	w.handle(fsnotify.Event{Name: "/sys/inkpot/languages/go.yaml", Op: fsnotify.Write})
	w.handle(fsnotify.Event{Name: "/sys/inkpot/languages/rust.yaml", Op: fsnotify.Write})

	ev := <-w.Events()
	if ev.Language != "go" {
		t.Errorf("Language = %q, want %q (first event kept)", ev.Language, "go")
	}
	select {
	case ev := <-w.Events():
		t.Errorf("second event should have been dropped, got %+v", ev)
	default:
	}
}

func TestStartStop(t *testing.T) {
	sysRoot := t.TempDir()
	usrRoot := t.TempDir()
	langDir := filepath.Join(sysRoot, "inkpot", "languages")
	if err := os.MkdirAll(langDir, 0o755); err != nil {
		t.Fatalf("MkdirAll error = %v", err)
	}

	dirs := datadir.New(
		datadir.Layer{Root: sysRoot, Source: datadir.SourceSystem},
		datadir.Layer{Root: usrRoot, Source: datadir.SourceUser},
	)
	w := New(dirs)
	if err := w.Start(); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(langDir, "go.yaml"), []byte("lexer: 1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}

	got := false
	timeout := time.After(2 * time.Second)
waitLoop:
	for {
		select {
		case ev := <-w.Events():
			if ev.Kind == KindLanguage && ev.Language == "go" {
				got = true
				break waitLoop
			}
		case <-timeout:
			break waitLoop
		}
	}
	if !got {
		t.Error("timeout waiting for language event")
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop again error = %v", err)
	}

	for {
		if _, ok := <-w.Events(); !ok {
			break
		}
	}
}

func TestStartTwice(t *testing.T) {
	dirs := datadir.New(datadir.Layer{Root: t.TempDir(), Source: datadir.SourceSystem})
	w := New(dirs)
	if err := w.Start(); err != nil {
		t.Fatalf("Start error = %v", err)
	}
	defer w.Stop()

	if err := w.Start(); err != ErrStarted {
		t.Errorf("second Start error = %v, want ErrStarted", err)
	}
}

func TestStartAfterStop(t *testing.T) {
	w := New(testDirs())
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop error = %v", err)
	}
	if err := w.Start(); err != ErrClosed {
		t.Errorf("Start after Stop error = %v, want ErrClosed", err)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindCatalog, "catalog"},
		{KindLanguage, "language"},
		{KindTheme, "theme"},
		{KindLexers, "lexers"},
		{Kind(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpChmod, "CHMOD"},
		{OpCreate | OpWrite, "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op.String() = %q, want %q", got, tt.want)
		}
	}
}
