// Package language loads per-language documents from layered data
// directories and resolves them against an editor.
//
// A language document names the lexer, its properties and keyword sets,
// comment tokens, identifier groups that receive allocated substyles, and
// the mapping from lexical style ids to visual style ids. One document may
// exist per layer; the resolver applies every layer in precedence order and
// folds the per-layer style maps into one.
package language

import (
	"sort"
	"strconv"

	"github.com/inkpot/lexicon/document"
	"github.com/inkpot/lexicon/editor"
)

// LexerSelector identifies the lexer a language uses, either by numeric id
// or by symbolic name. The variant is decided once, when the document is
// parsed: a scalar that reads as an integer selects by id, any other string
// selects by name.
type LexerSelector struct {
	name   string
	id     int
	byName bool
}

// LexerByID creates a selector for a numeric lexer id.
func LexerByID(id int) LexerSelector {
	return LexerSelector{id: id}
}

// LexerByName creates a selector for a symbolic lexer name.
func LexerByName(name string) LexerSelector {
	return LexerSelector{name: name, byName: true}
}

// ID returns the numeric id, if the selector carries one.
func (s LexerSelector) ID() (int, bool) {
	return s.id, !s.byName
}

// Name returns the symbolic name, if the selector carries one.
func (s LexerSelector) Name() (string, bool) {
	return s.name, s.byName
}

// Apply issues the matching lexer selection command.
func (s LexerSelector) Apply(ed editor.Editor) {
	if s.byName {
		ed.SetLexerByName(s.name)
	} else {
		ed.SetLexer(s.id)
	}
}

// String returns the id or name as text.
func (s LexerSelector) String() string {
	if s.byName {
		return s.name
	}
	return strconv.Itoa(s.id)
}

// Property is a named lexer property.
type Property struct {
	Name  string
	Value string
}

// KeywordSet is a keyword list bound to a numbered keyword set.
type KeywordSet struct {
	Set   int
	Words string
}

// IdentifierGroup binds identifier lists to a lexical class. Each list
// receives its own substyle from the range allocated for the class.
type IdentifierGroup struct {
	Class int
	Lists []string
}

// SubstyleGroup assigns visual styles to the substyles of a lexical class,
// positionally: the i-th style goes to the i-th allocated substyle.
type SubstyleGroup struct {
	Class  int
	Styles []int
}

// Comments holds the comment tokens of a language. The Has flags record
// whether the document defined the token at all; a defined token may be
// empty and is still registered.
type Comments struct {
	Line       string
	HasLine    bool
	BlockStart string
	BlockEnd   string
	HasBlock   bool
}

// Spec is the parsed form of one layer's language document. Slices are
// sorted by their numeric key so application order is deterministic.
type Spec struct {
	Lexer       LexerSelector
	Properties  []Property
	Keywords    []KeywordSet
	Identifiers []IdentifierGroup
	Comments    Comments
	Styles      map[int]int
	Substyles   []SubstyleGroup
}

// ParseSpec validates a document tree against the language schema. The
// lexer field is required; sections with a tolerated shape mismatch
// (non-mapping properties, non-sequence identifier values) are skipped,
// everything else wrong-shaped is a schema error.
func ParseSpec(path string, doc map[string]any) (*Spec, error) {
	spec := &Spec{Styles: make(map[int]int)}

	lexer, ok := doc["lexer"]
	if !ok {
		return nil, &document.SchemaError{Path: path, Field: "lexer", Reason: "missing"}
	}
	if id, ok := document.Int(lexer); ok {
		spec.Lexer = LexerByID(id)
	} else if name, ok := lexer.(string); ok {
		spec.Lexer = LexerByName(name)
	} else {
		return nil, &document.SchemaError{Path: path, Field: "lexer", Reason: "expected integer id or name"}
	}

	if props, ok := doc["properties"].(map[string]any); ok {
		for name, raw := range props {
			value, ok := document.String(raw)
			if !ok {
				return nil, &document.SchemaError{Path: path, Field: "properties." + name, Reason: "expected scalar value"}
			}
			spec.Properties = append(spec.Properties, Property{Name: name, Value: value})
		}
		sort.Slice(spec.Properties, func(i, j int) bool {
			return spec.Properties[i].Name < spec.Properties[j].Name
		})
	}

	if keywords, ok := doc["keywords"].(map[string]any); ok {
		for key, raw := range keywords {
			set, err := intKey(path, "keywords", key)
			if err != nil {
				return nil, err
			}
			words, ok := document.String(raw)
			if !ok {
				return nil, &document.SchemaError{Path: path, Field: "keywords." + key, Reason: "expected scalar keyword list"}
			}
			spec.Keywords = append(spec.Keywords, KeywordSet{Set: set, Words: words})
		}
		sort.Slice(spec.Keywords, func(i, j int) bool {
			return spec.Keywords[i].Set < spec.Keywords[j].Set
		})
	}

	if identifiers, ok := doc["identifiers"].(map[string]any); ok {
		for key, raw := range identifiers {
			seq, ok := raw.([]any)
			if !ok {
				// Non-sequence identifier values are tolerated.
				continue
			}
			class, err := intKey(path, "identifiers", key)
			if err != nil {
				return nil, err
			}
			lists := make([]string, 0, len(seq))
			for _, item := range seq {
				words, ok := document.String(item)
				if !ok {
					return nil, &document.SchemaError{Path: path, Field: "identifiers." + key, Reason: "expected scalar identifier list"}
				}
				lists = append(lists, words)
			}
			spec.Identifiers = append(spec.Identifiers, IdentifierGroup{Class: class, Lists: lists})
		}
		sort.Slice(spec.Identifiers, func(i, j int) bool {
			return spec.Identifiers[i].Class < spec.Identifiers[j].Class
		})
	}

	if comments, ok := doc["comments"].(map[string]any); ok {
		if line, ok := document.String(comments["line"]); ok {
			spec.Comments.Line = line
			spec.Comments.HasLine = true
		}
		if block, ok := comments["block"].([]any); ok && len(block) == 2 {
			open, okOpen := document.String(block[0])
			end, okEnd := document.String(block[1])
			if okOpen && okEnd {
				spec.Comments.BlockStart = open
				spec.Comments.BlockEnd = end
				spec.Comments.HasBlock = true
			}
		}
	}

	if raw, ok := doc["styles"]; ok {
		styles, ok := raw.(map[string]any)
		if !ok {
			return nil, &document.SchemaError{Path: path, Field: "styles", Reason: "expected mapping"}
		}
		for key, val := range styles {
			id, err := intKey(path, "styles", key)
			if err != nil {
				return nil, err
			}
			visual, ok := document.Int(val)
			if !ok {
				return nil, &document.SchemaError{Path: path, Field: "styles." + key, Reason: "expected integer style id"}
			}
			spec.Styles[id] = visual
		}
	}

	if substyles, ok := doc["substyles"].(map[string]any); ok {
		for key, raw := range substyles {
			seq, ok := raw.([]any)
			if !ok {
				// Non-sequence substyle values are tolerated.
				continue
			}
			class, err := intKey(path, "substyles", key)
			if err != nil {
				return nil, err
			}
			styles := make([]int, 0, len(seq))
			for _, item := range seq {
				visual, ok := document.Int(item)
				if !ok {
					return nil, &document.SchemaError{Path: path, Field: "substyles." + key, Reason: "expected integer style id"}
				}
				styles = append(styles, visual)
			}
			spec.Substyles = append(spec.Substyles, SubstyleGroup{Class: class, Styles: styles})
		}
		sort.Slice(spec.Substyles, func(i, j int) bool {
			return spec.Substyles[i].Class < spec.Substyles[j].Class
		})
	}

	return spec, nil
}

// intKey converts a mapping key to its integer form.
func intKey(path, field, key string) (int, error) {
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0, &document.SchemaError{Path: path, Field: field + "." + key, Reason: "expected integer key"}
	}
	return n, nil
}
