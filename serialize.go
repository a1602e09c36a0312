package conl

import (
	"bytes"
	"strings"

	"github.com/KimNorgaard/go-conl/internal/formatter"
)

// Serialize renders a document tree in canonical form: two-space indent
// units, LF line endings, a single trailing newline, scalars quoted exactly
// when their text would not survive re-reading. It is total, and its output
// always parses back.
//
// The grammar cannot express an empty array, table-array or multi-line
// block, so entries holding one are omitted. An empty nested table is
// written as its bare key alone, which is how it reads back.
func Serialize(t *Table) []byte {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail.
	_ = writeTable(formatter.New(&buf), t)
	return buf.Bytes()
}

func writeTable(f *formatter.Formatter, t *Table) error {
	for key, val := range t.All() {
		if err := writeEntry(f, key, val); err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(f *formatter.Formatter, key string, val Value) error {
	k := quoteScalar(key)
	switch v := val.(type) {
	case Scalar:
		return f.KeyValue(k, quoteScalar(string(v)))
	case Multiline:
		if v.Text == "" {
			return nil
		}
		return f.Multiline(k, v.Hint, v.Text)
	case Array:
		if len(v) == 0 {
			return nil
		}
		if err := f.BareKey(k); err != nil {
			return err
		}
		f.Indent()
		for _, item := range v {
			if err := f.Item(quoteScalar(item)); err != nil {
				return err
			}
		}
		f.Outdent()
		return nil
	case TableArray:
		if len(v) == 0 {
			return nil
		}
		if err := f.BareKey(k); err != nil {
			return err
		}
		f.Indent()
		for _, elem := range v {
			if err := f.Marker(); err != nil {
				return err
			}
			f.Indent()
			if err := writeTable(f, elem); err != nil {
				return err
			}
			f.Outdent()
		}
		f.Outdent()
		return nil
	case *Table:
		if err := f.BareKey(k); err != nil {
			return err
		}
		f.Indent()
		if err := writeTable(f, v); err != nil {
			return err
		}
		f.Outdent()
		return nil
	default:
		return nil
	}
}

// quoteScalar returns s quoted and escaped when its text would not survive
// re-reading verbatim, and s itself otherwise.
func quoteScalar(s string) string {
	if !needsQuoting(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// needsQuoting reports whether s would be misread if emitted bare: empty
// strings, leading or trailing whitespace, a leading quote, or a ';', '=',
// newline or carriage return anywhere.
func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	switch s[0] {
	case ' ', '\t', '"':
		return true
	}
	switch s[len(s)-1] {
	case ' ', '\t':
		return true
	}
	return strings.ContainsAny(s, ";=\n\r")
}
