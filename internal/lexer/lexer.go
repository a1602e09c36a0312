package lexer

import (
	"strings"

	"github.com/KimNorgaard/go-conl/internal/token"
)

// ScanLines splits src into physical lines and classifies each one. The
// classification is context-free: lines inside multi-line blocks are re-read
// verbatim by the parser via Line.Raw, so whatever kind they received here is
// ignored there.
func ScanLines(src []byte) []token.Line {
	raw := strings.Split(string(src), "\n")
	// A trailing newline yields a final empty element that is a line
	// terminator, not a line.
	if n := len(raw); n > 0 && raw[n-1] == "" {
		raw = raw[:n-1]
	}
	lines := make([]token.Line, 0, len(raw))
	for i, r := range raw {
		r = strings.TrimSuffix(r, "\r")
		ln := classify(r)
		ln.Number = i + 1
		ln.Raw = r
		lines = append(lines, ln)
	}
	return lines
}

func classify(raw string) token.Line {
	if strings.TrimSpace(raw) == "" {
		return token.Line{Kind: token.BLANK}
	}
	indent := indentSpaces(raw)
	depth := indent / 2
	content := raw[indent:]

	// Items are checked before the key split so that a quoted item
	// containing " = " is not mistaken for a key/value line. Unquoted
	// keys can never begin with '=': the serializer quotes them.
	if rest, ok := strings.CutPrefix(strings.TrimSpace(content), "="); ok {
		return token.Line{Kind: token.ITEM, Value: strings.TrimSpace(rest), Depth: depth}
	}

	key, value, found := splitKeyValue(content)
	if !found {
		return token.Line{Kind: token.BAREKEY, Key: key, Depth: depth}
	}
	if rest, ok := strings.CutPrefix(value, `"""`); ok {
		return token.Line{Kind: token.MULTILINE, Key: key, Hint: strings.TrimSpace(rest), Depth: depth}
	}
	return token.Line{Kind: token.KEYVAL, Key: key, Value: value, Depth: depth}
}

// splitKeyValue splits line content on the first " = " separator outside a
// quoted key. Content arrives with its trailing spaces: `k = ` is a key with
// an empty value while `k =` is a bare key. found is false when there is no
// separator. Key and value come back trimmed but otherwise raw; quotes are
// decoded by the parser, which reports lexical errors with line numbers.
func splitKeyValue(s string) (key, value string, found bool) {
	if strings.HasPrefix(s, `"`) {
		end, ok := closingQuote(s)
		if !ok {
			// Unterminated quoted key. Hand the whole line to the
			// parser as a bare key; decoding it reports the error.
			return strings.TrimSpace(s), "", false
		}
		if after, ok := strings.CutPrefix(s[end+1:], " = "); ok {
			return s[:end+1], strings.TrimSpace(after), true
		}
		return strings.TrimSpace(s), "", false
	}
	i := strings.Index(s, " = ")
	if i < 0 {
		return strings.TrimSpace(s), "", false
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+3:]), true
}

// closingQuote returns the index of the quote closing the one at s[0].
func closingQuote(s string) (int, bool) {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i, true
		}
	}
	return 0, false
}

// indentSpaces counts leading spaces. Tabs are not indentation; a tab begins
// content.
func indentSpaces(s string) int {
	n := 0
	for n < len(s) && s[n] == ' ' {
		n++
	}
	return n
}
