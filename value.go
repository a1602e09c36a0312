package conl

import "iter"

// Value is a node in a parsed document tree. The concrete types are Scalar,
// Multiline, Array, Table and TableArray.
type Value interface {
	value()
}

// Scalar is a single-line string value. Quoting in the source is a lexical
// artifact; a Scalar holds the decoded text.
type Scalar string

// Multiline is a text block opened by `key = """hint`. Hint is opaque and
// carried through untouched. Text holds the block's lines joined by \n with
// leading and trailing blank lines trimmed; interior blank lines survive.
// Content lines shed their own leading whitespace when read, so a
// well-formed Text has no line starting with a space or tab, and at least
// one non-blank line.
type Multiline struct {
	Hint string
	Text string
}

// Array is an ordered list of scalar strings.
type Array []string

// TableArray is an ordered list of tables.
type TableArray []*Table

// Table is an ordered collection of key/value entries. Keys keep the
// position of their first insertion; setting an existing key replaces its
// value in place. The zero value is ready to use.
type Table struct {
	keys   []string
	values map[string]Value
}

func (Scalar) value()     {}
func (Multiline) value()  {}
func (Array) value()      {}
func (TableArray) value() {}
func (*Table) value()     {}

// Set inserts or replaces the value for key. Later writes win; the key keeps
// its original position.
func (t *Table) Set(key string, v Value) {
	if t.values == nil {
		t.values = make(map[string]Value)
	}
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = v
}

// Get returns the value for key.
func (t *Table) Get(key string) (Value, bool) {
	v, ok := t.values[key]
	return v, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.keys)
}

// All iterates entries in insertion order.
func (t *Table) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range t.keys {
			if !yield(k, t.values[k]) {
				return
			}
		}
	}
}
