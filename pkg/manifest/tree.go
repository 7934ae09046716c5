package manifest

import (
	stderrors "errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cargomanifest/pkg/errors"
)

// Tree is a parsed descriptor whose top-level values are not yet decoded.
type Tree struct {
	md   toml.MetaData
	root map[string]toml.Primitive
}

// ParseTree parses TOML text. On failure it returns an
// [errors.ErrCodeSyntax] error wrapping a *SyntaxError that locates the
// problem in file.
func ParseTree(text, file string) (*Tree, error) {
	var root map[string]toml.Primitive
	md, err := toml.Decode(text, &root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSyntax, newSyntaxError(text, file, err), "could not parse input TOML")
	}
	if root == nil {
		root = map[string]toml.Primitive{}
	}
	return &Tree{md: md, root: root}, nil
}

// Keys returns the top-level keys in document order.
func (t *Tree) Keys() []string {
	var keys []string
	seen := make(map[string]bool, len(t.root))
	for _, k := range t.md.Keys() {
		if len(k) == 0 || seen[k[0]] {
			continue
		}
		seen[k[0]] = true
		keys = append(keys, k[0])
	}
	return keys
}

// Has reports whether key is set at the top level.
func (t *Tree) Has(key string) bool {
	_, ok := t.root[key]
	return ok
}

// Decode decodes the top-level value at key into v. It reports whether
// the key was present.
func (t *Tree) Decode(key string, v any) (bool, error) {
	p, ok := t.root[key]
	if !ok {
		return false, nil
	}
	return true, t.decodePrimitive(p, v)
}

func (t *Tree) decodePrimitive(p toml.Primitive, v any) error {
	if err := t.md.PrimitiveDecode(p, v); err != nil {
		return errors.Wrap(errors.ErrCodeDecode, err, "descriptor does not match the manifest format")
	}
	return nil
}

// undecoded returns the dotted keys nothing has decoded so far.
func (t *Tree) undecoded() []toml.Key { return t.md.Undecoded() }

// Diagnostic is one located syntax problem. Lines and columns are
// one-based; EndLine and EndCol are zero when the problem sits on a single
// character.
type Diagnostic struct {
	Line    int
	Col     int
	EndLine int
	EndCol  int
	Message string
}

// SyntaxError reports TOML text that does not parse.
type SyntaxError struct {
	File        string
	Diagnostics []Diagnostic
}

// Error formats every diagnostic as "file:line:col msg" or
// "file:line:col-line:col msg".
func (e *SyntaxError) Error() string {
	lines := make([]string, 0, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		lines = append(lines, e.format(d))
	}
	return strings.Join(lines, "\n")
}

func (e *SyntaxError) format(d Diagnostic) string {
	if d.Line == 0 {
		return fmt.Sprintf("%s: %s", e.File, d.Message)
	}
	pos := fmt.Sprintf("%s:%d:%d", e.File, d.Line, d.Col)
	if d.EndLine > 0 && (d.EndLine != d.Line || d.EndCol != d.Col) {
		pos += fmt.Sprintf("-%d:%d", d.EndLine, d.EndCol)
	}
	return pos + " " + d.Message
}

func newSyntaxError(text, file string, err error) *SyntaxError {
	var perr toml.ParseError
	if !stderrors.As(err, &perr) {
		return &SyntaxError{File: file, Diagnostics: []Diagnostic{{Message: err.Error()}}}
	}

	msg := perr.Message
	if msg == "" {
		msg = perr.Error()
	}
	d := Diagnostic{Message: msg}
	d.Line, d.Col = lineCol(text, perr.Position.Start)
	if end := lastRuneStart(text, perr.Position.Start, perr.Position.Len); end > perr.Position.Start {
		d.EndLine, d.EndCol = lineCol(text, end)
	}
	return &SyntaxError{File: file, Diagnostics: []Diagnostic{d}}
}

// lastRuneStart returns the offset of the first byte of the last rune in
// text[start:start+n].
func lastRuneStart(text string, start, n int) int {
	end := max(0, min(start+n, len(text)))
	if end <= start {
		return start
	}
	_, size := utf8.DecodeLastRuneInString(text[start:end])
	return end - size
}

// lineCol converts a byte offset into a one-based line and column. Columns
// count characters, not bytes.
func lineCol(text string, offset int) (line, col int) {
	offset = max(0, min(offset, len(text)))
	before := text[:offset]
	line = strings.Count(before, "\n") + 1
	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		before = before[i+1:]
	}
	return line, utf8.RuneCountInString(before) + 1
}
