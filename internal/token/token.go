package token

// Kind classifies a physical line of input.
type Kind string

// Line is one classified physical line. Key, Value and Hint hold raw text;
// quoted scalars are decoded later, by the parser, so that lexical errors can
// be reported with the line number kept here.
type Line struct {
	Kind   Kind
	Key    string // raw key text (KEYVAL, BAREKEY, MULTILINE)
	Value  string // raw value text (KEYVAL) or item text (ITEM)
	Hint   string // text following the """ opener (MULTILINE)
	Depth  int    // leading spaces / 2
	Number int    // 1-based physical line number
	Raw    string // the line verbatim, minus any trailing \r
}

const (
	// BLANK lines are transparent everywhere except inside multi-line
	// blocks, where they are preserved.
	BLANK Kind = "BLANK"

	// KEYVAL is a `key = value` line, split on the first unquoted " = ".
	KEYVAL Kind = "KEYVAL"

	// BAREKEY is a key alone on its line, introducing a nested block.
	BAREKEY Kind = "BAREKEY"

	// ITEM is a line whose content starts with `=`: an array element when
	// a value follows, or a table-array element marker when bare.
	ITEM Kind = "ITEM"

	// MULTILINE is a `key = """hint` opener.
	MULTILINE Kind = "MULTILINE"
)

// IsMarker reports whether the line is a bare `=` table-array marker rather
// than a valued array item.
func (l Line) IsMarker() bool {
	return l.Kind == ITEM && l.Value == ""
}
