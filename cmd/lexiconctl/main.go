// Package main is the entry point for lexiconctl, a command line tool for
// inspecting layered syntax highlighting configuration.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/inkpot/lexicon/catalog"
	"github.com/inkpot/lexicon/datadir"
	"github.com/inkpot/lexicon/editor"
	"github.com/inkpot/lexicon/language"
	"github.com/inkpot/lexicon/lexers"
	"github.com/inkpot/lexicon/settings"
	"github.com/inkpot/lexicon/styler"
	"github.com/inkpot/lexicon/watch"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		dataFlag    = flag.String("data", "", "comma-separated layer roots (default: platform data directories)")
		appFlag     = flag.String("app", catalog.DefaultApp, "application directory segment under each root")
		verbose     = flag.Bool("verbose", false, "verbose logging")
		showVersion = flag.Bool("version", false, "show version information")
	)
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("lexiconctl %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return 0
	}

	var err error
	var l *zap.Logger
	if *verbose {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	zap.ReplaceGlobals(l)
	defer l.Sync() //nolint:errcheck

	dirs := dataDirs(*dataFlag)

	args := flag.Args()
	if len(args) == 0 {
		usage()
		return 2
	}

	switch args[0] {
	case "languages":
		return runLanguages(dirs, *appFlag, l, args[1:])
	case "resolve":
		return runResolve(dirs, *appFlag, l, args[1:])
	case "styles":
		return runStyles(dirs, *appFlag, l, args[1:])
	case "lexers":
		return runLexers(dirs, l)
	case "settings":
		return runSettings(*appFlag, args[1:])
	case "watch":
		return runWatch(dirs, *appFlag, l)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		usage()
		return 2
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "lexiconctl - inspect layered syntax highlighting configuration\n\n")
	fmt.Fprintf(os.Stderr, "Usage: lexiconctl [options] <command> [args]\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nCommands:\n")
	fmt.Fprintf(os.Stderr, "  languages [-sort]   List the languages in the catalog\n")
	fmt.Fprintf(os.Stderr, "  resolve <id>        Dry-run a language resolution, printing editor commands\n")
	fmt.Fprintf(os.Stderr, "  styles [name]       List themes, or print one resolved\n")
	fmt.Fprintf(os.Stderr, "  lexers              Dry-run the lexer library sweep\n")
	fmt.Fprintf(os.Stderr, "  settings [-file f]  Print the effective editor settings\n")
	fmt.Fprintf(os.Stderr, "  watch               Stream data directory change events until interrupted\n")
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  lexiconctl languages -sort\n")
	fmt.Fprintf(os.Stderr, "  lexiconctl -data ./testdata resolve cpp\n")
	fmt.Fprintf(os.Stderr, "  lexiconctl styles dark\n")
}

// dataDirs builds the layer stack from the -data flag, falling back to the
// platform defaults when the flag is empty.
func dataDirs(value string) datadir.Dirs {
	if value == "" {
		return datadir.Default()
	}
	var roots []string
	for _, root := range strings.Split(value, ",") {
		if root = strings.TrimSpace(root); root != "" {
			roots = append(roots, root)
		}
	}
	return datadir.FromRoots(roots...)
}

func runLanguages(dirs datadir.Dirs, app string, l *zap.Logger, args []string) int {
	fs := flag.NewFlagSet("languages", flag.ExitOnError)
	alpha := fs.Bool("sort", false, "sort alphabetically by language id")
	_ = fs.Parse(args)

	cat := catalog.New(dirs, catalog.WithApp(app), catalog.WithLogger(l))
	if err := cat.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *alpha {
		cat.SortAlphabetically()
	}

	for _, id := range cat.Languages() {
		entry, ok := cat.Entry(id)
		if !ok {
			continue
		}
		fmt.Printf("%-16s %-24s %s\n", entry.ID, entry.DisplayName, strings.Join(entry.Extensions, " "))
	}
	return 0
}

func runResolve(dirs datadir.Dirs, app string, l *zap.Logger, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: lexiconctl resolve <language-id>")
		return 2
	}

	rec := editor.NewRecorder()
	res := language.NewResolver(dirs, language.WithApp(app), language.WithLogger(l))
	sm, err := res.Apply(rec, args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	for _, cmd := range rec.Commands {
		fmt.Println(cmd)
	}

	ids := make([]int, 0, len(sm))
	for id := range sm {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fmt.Printf("style %d -> %d\n", id, sm[id])
	}
	return 0
}

func runStyles(dirs datadir.Dirs, app string, l *zap.Logger, args []string) int {
	loader := styler.NewLoader(dirs, styler.WithApp(app), styler.WithLogger(l))

	if len(args) == 0 {
		for _, name := range styler.NewRegistry(loader).Names() {
			fmt.Println(name)
		}
		return 0
	}
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: lexiconctl styles [name]")
		return 2
	}

	theme, err := loader.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("theme %s\n", theme.Name)
	fmt.Printf("default %s\n", formatStyle(theme.Defaults))
	for _, id := range theme.StyleIDs() {
		fmt.Printf("%7d %s\n", id, formatStyle(theme.Style(id)))
	}
	return 0
}

func formatStyle(s styler.Style) string {
	out := fmt.Sprintf("fg=%s bg=%s", s.Foreground, s.Background)
	if s.Bold {
		out += " bold"
	}
	if s.Italic {
		out += " italic"
	}
	if s.Underline {
		out += " underline"
	}
	return out
}

func runLexers(dirs datadir.Dirs, l *zap.Logger) int {
	rec := editor.NewRecorder()
	loader := lexers.NewLoader(dirs, lexers.WithLogger(l))
	count := loader.Load(rec)

	for _, cmd := range rec.Commands {
		fmt.Println(cmd)
	}
	fmt.Printf("%d lexer libraries\n", count)
	return 0
}

// runSettings prints the effective settings document, defaults filled in.
func runSettings(app string, args []string) int {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	file := fs.String("file", "", "settings file (default: <user-config-dir>/<app>/settings.toml)")
	_ = fs.Parse(args)

	path := *file
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		path = filepath.Join(dir, app, "settings.toml")
	}

	s, err := settings.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	data, err := toml.Marshal(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	os.Stdout.Write(data)
	return 0
}

func runWatch(dirs datadir.Dirs, app string, l *zap.Logger) int {
	w := watch.New(dirs, watch.WithApp(app), watch.WithLogger(l))
	if err := w.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer w.Stop()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-signals:
			return 0
		case ev, ok := <-w.Events():
			if !ok {
				return 0
			}
			line := fmt.Sprintf("%s %s %s %s", ev.Timestamp.Format("15:04:05"), ev.Op, ev.Kind, ev.Path)
			switch ev.Kind {
			case watch.KindLanguage:
				line += " language=" + ev.Language
			case watch.KindTheme:
				line += " theme=" + ev.Theme
			}
			fmt.Println(line)
		case err, ok := <-w.Errors():
			if !ok {
				return 0
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
}
