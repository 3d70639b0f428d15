package editor

import "fmt"

// SubstyleBase is the first substyle id a Recorder hands out, matching the
// region Scintilla reserves for allocated substyles.
const SubstyleBase = 128

// Recorder is an Editor that records every command instead of applying it.
// Tests assert against the recorded command log, and the CLI uses it for
// dry runs.
type Recorder struct {
	// Commands holds one formatted entry per received command, in order.
	Commands []string

	next int
}

var _ Editor = (*Recorder)(nil)

// NewRecorder creates a Recorder with an empty command log.
func NewRecorder() *Recorder {
	return &Recorder{next: SubstyleBase}
}

// Reset clears the command log and the substyle allocation cursor.
func (r *Recorder) Reset() {
	r.Commands = nil
	r.next = SubstyleBase
}

func (r *Recorder) record(format string, args ...any) {
	r.Commands = append(r.Commands, fmt.Sprintf(format, args...))
}

// FreeSubstyles releases allocated substyles and rewinds the allocator.
func (r *Recorder) FreeSubstyles() {
	r.next = SubstyleBase
	r.record("free-substyles")
}

// SetLexer records a lexer selection by id.
func (r *Recorder) SetLexer(id int) {
	r.record("set-lexer %d", id)
}

// SetLexerByName records a lexer selection by name.
func (r *Recorder) SetLexerByName(name string) {
	r.record("set-lexer-language %s", name)
}

// SetProperty records a property assignment.
func (r *Recorder) SetProperty(name, value string) {
	r.record("set-property %s=%s", name, value)
}

// SetKeywords records a keyword set installation.
func (r *Recorder) SetKeywords(set int, words string) {
	r.record("set-keywords %d %s", set, words)
}

// AllocateSubstyles reserves the next count substyle ids for class.
func (r *Recorder) AllocateSubstyles(class, count int) int {
	start := r.next
	if count > 0 {
		r.next += count
	}
	r.record("allocate-substyles class=%d count=%d start=%d", class, count, start)
	return start
}

// SetIdentifiers records an identifier list installation.
func (r *Recorder) SetIdentifiers(substyle int, words string) {
	r.record("set-identifiers %d %s", substyle, words)
}

// SetCommentLine records the line comment token.
func (r *Recorder) SetCommentLine(token string) {
	r.record("set-comment-line %s", token)
}

// SetCommentBlock records the block comment tokens.
func (r *Recorder) SetCommentBlock(open, close string) {
	r.record("set-comment-block %s %s", open, close)
}

// LoadLexerLibrary records an external lexer load.
func (r *Recorder) LoadLexerLibrary(path string) {
	r.record("load-lexer-library %s", path)
}
