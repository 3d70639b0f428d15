// Package editor defines the command surface the language subsystem drives
// a text editing component through.
//
// Commands are fire and forget: the host editor applies them without
// reporting results. The one exception is AllocateSubstyles, which returns
// the start of the reserved substyle range so callers can address the
// individual substyles inside it.
package editor

// Editor is the command interface implemented by the host text editor.
type Editor interface {
	// FreeSubstyles releases every allocated substyle range.
	FreeSubstyles()

	// SetLexer selects a lexer by numeric id.
	SetLexer(id int)

	// SetLexerByName selects a lexer by symbolic name.
	SetLexerByName(name string)

	// SetProperty sets a lexer property.
	SetProperty(name, value string)

	// SetKeywords installs a space-separated keyword list into the numbered
	// keyword set.
	SetKeywords(set int, words string)

	// AllocateSubstyles reserves count contiguous substyles for the lexical
	// class and returns the first substyle id of the range.
	AllocateSubstyles(class, count int) int

	// SetIdentifiers installs the space-separated identifier list styled by
	// the given substyle.
	SetIdentifiers(substyle int, words string)

	// SetCommentLine registers the line comment token.
	SetCommentLine(token string)

	// SetCommentBlock registers the block comment open and close tokens.
	SetCommentBlock(open, close string)

	// LoadLexerLibrary loads an external lexer library from path.
	LoadLexerLibrary(path string)
}
