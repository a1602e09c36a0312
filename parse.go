package conl

import (
	"fmt"
	"strings"

	"github.com/KimNorgaard/go-conl/internal/lexer"
	"github.com/KimNorgaard/go-conl/internal/token"
)

// Parse reads a whole document and returns its root table. A document is a
// table at depth zero; nested blocks hang off bare keys, with the first
// non-blank child line fixing each block's shape.
//
// The first lexical or structural failure aborts the parse with a
// *ParseError carrying the offending 1-based line number. Malformed input
// never panics.
func Parse(data []byte) (*Table, error) {
	return parse(data, defaultMaxDepth)
}

func parse(data []byte, maxDepth int) (*Table, error) {
	p := &parser{lines: lexer.ScanLines(data), maxDepth: maxDepth}
	tbl, _, err := p.parseTable(0, 0)
	if err != nil {
		return nil, err
	}
	return tbl, nil
}

type parser struct {
	lines    []token.Line
	maxDepth int
}

// parseTable consumes lines at exactly depth and returns the table plus the
// index of the first line it did not consume. Blank lines are transparent; a
// shallower line ends the table; a deeper one is structural garbage, since
// every legal descent is consumed by a nested block before control returns
// here.
func (p *parser) parseTable(i, depth int) (*Table, int, error) {
	tbl := &Table{}
	for i < len(p.lines) {
		ln := p.lines[i]
		if ln.Kind == token.BLANK {
			i++
			continue
		}
		if ln.Depth < depth {
			return tbl, i, nil
		}
		if ln.Depth > depth {
			return nil, i, errAt(ln.Number, "unexpected indent")
		}

		switch ln.Kind {
		case token.KEYVAL:
			key, err := decodeScalar(ln.Key, ln.Number)
			if err != nil {
				return nil, i, err
			}
			val, err := decodeScalar(ln.Value, ln.Number)
			if err != nil {
				return nil, i, err
			}
			tbl.Set(key, Scalar(val))
			i++
		case token.MULTILINE:
			key, err := decodeScalar(ln.Key, ln.Number)
			if err != nil {
				return nil, i, err
			}
			text, next, err := p.readMultiline(i, depth)
			if err != nil {
				return nil, i, err
			}
			tbl.Set(key, Multiline{Hint: ln.Hint, Text: text})
			i = next
		case token.BAREKEY:
			key, err := decodeScalar(ln.Key, ln.Number)
			if err != nil {
				return nil, i, err
			}
			val, next, err := p.parseBlock(i+1, depth+1)
			if err != nil {
				return nil, i, err
			}
			tbl.Set(key, val)
			i = next
		default: // token.ITEM
			return nil, i, errAt(ln.Number, "expected key = value, found array item")
		}
	}
	return tbl, len(p.lines), nil
}

// parseBlock parses the children of a bare key. The next non-blank line at
// the block's depth fixes the shape once for the whole block: a valued item
// means an array, a lone `=` a table-array, anything else a table. A key
// with no children reads as an empty table.
func (p *parser) parseBlock(i, depth int) (Value, int, error) {
	j := i
	for j < len(p.lines) && p.lines[j].Kind == token.BLANK {
		j++
	}
	if j >= len(p.lines) || p.lines[j].Depth < depth {
		return &Table{}, j, nil
	}
	if depth >= p.maxDepth {
		return nil, i, errAt(p.lines[j].Number, "maximum nesting depth exceeded")
	}
	ln := p.lines[j]
	switch {
	case ln.IsMarker():
		return p.parseTableArray(j, depth)
	case ln.Kind == token.ITEM:
		return p.parseArray(j, depth)
	default:
		return p.parseTable(j, depth)
	}
}

// parseArray consumes consecutive `= value` lines at exactly depth.
func (p *parser) parseArray(i, depth int) (Array, int, error) {
	arr := Array{}
	for i < len(p.lines) {
		ln := p.lines[i]
		if ln.Kind == token.BLANK {
			i++
			continue
		}
		if ln.Depth < depth {
			return arr, i, nil
		}
		if ln.Depth > depth {
			return nil, i, errAt(ln.Number, "unexpected indent")
		}
		if ln.Kind != token.ITEM {
			return nil, i, errAt(ln.Number, "expected array item")
		}
		if ln.IsMarker() {
			return nil, i, errAt(ln.Number, "expected value after '='")
		}
		item, err := decodeScalar(ln.Value, ln.Number)
		if err != nil {
			return nil, i, err
		}
		arr = append(arr, item)
		i++
	}
	return arr, len(p.lines), nil
}

// parseTableArray consumes `=` markers at exactly depth, each opening an
// element table one level deeper.
func (p *parser) parseTableArray(i, depth int) (TableArray, int, error) {
	ta := TableArray{}
	for i < len(p.lines) {
		ln := p.lines[i]
		if ln.Kind == token.BLANK {
			i++
			continue
		}
		if ln.Depth < depth {
			return ta, i, nil
		}
		if ln.Depth > depth {
			return nil, i, errAt(ln.Number, "unexpected indent")
		}
		if !ln.IsMarker() {
			return nil, i, errAt(ln.Number, "expected '=' element marker")
		}
		elem, next, err := p.parseTable(i+1, depth+1)
		if err != nil {
			return nil, i, err
		}
		ta = append(ta, elem)
		i = next
	}
	return ta, len(p.lines), nil
}

// readMultiline consumes the block opened by the `"""` line at index i.
// Content lines are trimmed of their own leading whitespace; blank lines
// inside the block are preserved verbatim; grammar disambiguation does not
// apply. The block ends at the first non-blank line at the opener's depth or
// shallower, or at end of input. Leading and trailing blank lines are
// trimmed from the result; a block with no content at all is unterminated.
func (p *parser) readMultiline(i, depth int) (string, int, error) {
	opener := p.lines[i]
	var content []string
	j := i + 1
	for ; j < len(p.lines); j++ {
		ln := p.lines[j]
		if ln.Kind == token.BLANK {
			content = append(content, "")
			continue
		}
		if ln.Depth <= depth {
			break
		}
		// Trailing carriage returns are dropped, matching CRLF handling.
		text := strings.TrimLeft(ln.Raw, " \t")
		content = append(content, strings.TrimRight(text, "\r"))
	}
	start, end := 0, len(content)
	for start < end && content[start] == "" {
		start++
	}
	for end > start && content[end-1] == "" {
		end--
	}
	if start == end {
		return "", j, errAt(opener.Number, "unterminated multi-line block")
	}
	return strings.Join(content[start:end], "\n"), j, nil
}

// decodeScalar decodes surrounding quotes and the escape sequences \\ \" \n
// \r \t from raw scalar text. Unquoted text passes through verbatim.
func decodeScalar(s string, line int) (string, error) {
	if !strings.HasPrefix(s, `"`) {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 1; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			if i != len(s)-1 {
				return "", errAt(line, "unexpected characters after closing quote")
			}
			return b.String(), nil
		case '\\':
			i++
			if i >= len(s) {
				return "", errAt(line, "unterminated quoted value")
			}
			switch s[i] {
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			default:
				return "", errAt(line, fmt.Sprintf("invalid escape sequence \\%c", s[i]))
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", errAt(line, "unterminated quoted value")
}

func errAt(line int, msg string) *ParseError {
	return &ParseError{Line: line, Message: msg}
}
