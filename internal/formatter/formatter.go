package formatter

import (
	"io"
	"strings"
)

const indentUnit = "  "

// Formatter writes document lines to an output stream, tracking the current
// indentation depth. Keys and values must arrive already quoted; the
// formatter only knows about line shapes.
type Formatter struct {
	w     io.Writer
	depth int
}

// New returns a new formatter that writes to w at depth zero.
func New(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

// Indent descends one nesting level.
func (f *Formatter) Indent() { f.depth++ }

// Outdent ascends one nesting level.
func (f *Formatter) Outdent() { f.depth-- }

// KeyValue writes a `key = value` line.
func (f *Formatter) KeyValue(key, value string) error {
	return f.line(key + " = " + value)
}

// BareKey writes a key alone on its line, opening a nested block.
func (f *Formatter) BareKey(key string) error {
	return f.line(key)
}

// Item writes a `= value` array element line.
func (f *Formatter) Item(value string) error {
	return f.line("= " + value)
}

// Marker writes the bare `=` opening a table-array element.
func (f *Formatter) Marker() error {
	return f.line("=")
}

// Multiline writes a `key = """hint` opener followed by the block's lines one
// level deeper. Blank lines inside the block are written truly empty, with no
// indentation.
func (f *Formatter) Multiline(key, hint, text string) error {
	if err := f.line(key + ` = """` + hint); err != nil {
		return err
	}
	f.Indent()
	defer f.Outdent()
	for _, ln := range strings.Split(text, "\n") {
		if ln == "" {
			if err := f.newline(); err != nil {
				return err
			}
			continue
		}
		if err := f.line(ln); err != nil {
			return err
		}
	}
	return nil
}

func (f *Formatter) line(s string) error {
	for range f.depth {
		if _, err := io.WriteString(f.w, indentUnit); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(f.w, s); err != nil {
		return err
	}
	return f.newline()
}

func (f *Formatter) newline() error {
	_, err := io.WriteString(f.w, "\n")
	return err
}
