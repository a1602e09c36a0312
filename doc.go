/*
Package conl provides an idiomatic Go interface for parsing and encoding
CONL, a line-oriented configuration format. The library's API is designed
to be familiar to Go developers, closely mirroring the standard
`encoding/json` package.

A CONL document is a table: one `key = value` pair per line, with nesting
expressed by two-space indentation. A key on a line of its own opens a
nested block, which may hold another table, a list of `= value` items, or
a list of tables separated by bare `=` markers. Values needing verbatim
newlines use a `"""` multi-line block.

The package offers two primary workflows depending on the use case:

1. Data-Oriented Decoding and Encoding

For the common task of converting CONL data into Go structs (and vice
versa), the Marshal and Unmarshal functions provide a simple and direct
API.

Example of unmarshaling into a struct:

	var data = []byte("name = conl\nversion = 1.0")

	type Config struct {
		Name    string  `conl:"name"`
		Version float64 `conl:"version"`
	}

	var cfg Config
	if err := conl.Unmarshal(data, &cfg); err != nil {
		// handle error
	}
	// cfg is now populated with {Name: "conl", Version: 1.0}

2. Document Manipulation

For tooling that inspects or rewrites documents, such as formatters and
migration scripts, the Parse function returns the document as a *Table
tree that preserves key order. The tree can be modified in place and
rendered back to bytes with Serialize.

Example of a rewrite:

	doc, err := conl.Parse(input)
	if err != nil {
		// handle error
	}

	doc.Set("year", conl.Scalar("2016"))

	output := conl.Serialize(doc)

Serialize emits a canonical rendering: keys in tree order, two-space
indentation, and scalars quoted only when the grammar requires it.
Serializing the result of Parse normalizes a document, and serializing
the same tree twice yields identical bytes.

Customization is available via struct field tags (e.g., `conl:"key,omitempty"`)
and by implementing the conl.Marshaler and conl.Unmarshaler interfaces.
Types whose encoding is a single scalar can implement encoding.TextMarshaler
and encoding.TextUnmarshaler instead.
*/
package conl
