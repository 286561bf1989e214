package includes

import (
	"strings"

	"github.com/lefeck/exjson/exjerrors"
)

// Context is the syntactic position an include site occupies, derived
// from the punctuation immediately preceding it.
type Context int

const (
	// ContextObjectMember follows '{' or ',' inside an object; requires a
	// property name.
	ContextObjectMember Context = iota
	// ContextArrayElement follows '[' or ',' inside an array; forbids a
	// property name.
	ContextArrayElement
	// ContextBareValue follows ':' in value position; forbids a property name.
	ContextBareValue
)

// Site is one include occurrence located in the text, with its textual
// span and syntactic context.
type Site struct {
	Directive Directive
	Context   Context
	Start     int // byte offset of '#' in "#INCLUDE"
	End       int // byte offset one past the closing '>'
}

// Scan finds every bare "#INCLUDE <...>" occurrence in text (which has
// already had its comments stripped, per phase P1) and classifies each
// one's syntactic context by tracking bracket depth from the start of
// the buffer.
func Scan(text []byte) ([]Site, error) {
	var sites []Site
	tracker := newBracketTracker()

	i := 0
	n := len(text)
	for i < n {
		c := text[i]
		if c == '"' {
			j := skipStringAt(text, i)
			tracker.consume(text[i:j])
			i = j
			continue
		}
		if c == '#' && strings.HasPrefix(string(text[i:min(i+8, n)]), "#INCLUDE") {
			site, next, err := scanOne(text, i, tracker)
			if err != nil {
				return nil, err
			}
			if site != nil {
				sites = append(sites, *site)
			}
			tracker.consume(text[i:next])
			i = next
			continue
		}
		tracker.consume(text[i : i+1])
		i++
	}
	return sites, nil
}

func scanOne(text []byte, start int, tracker *bracketTracker) (*Site, int, error) {
	n := len(text)
	j := start + len("#INCLUDE")
	for j < n && isSpace(text[j]) {
		j++
	}
	if j >= n || text[j] != '<' {
		// Not actually a directive occurrence (stray "#INCLUDE" text);
		// treat the marker itself as ordinary text.
		return nil, start + len("#INCLUDE"), nil
	}
	k := j + 1
	for k < n && text[k] != '>' {
		k++
	}
	if k >= n {
		return nil, j + 1, nil
	}
	raw := string(text[start : k+1])
	body := string(text[j+1 : k])

	directive, err := parseBody(raw, body)
	if err != nil {
		return nil, 0, err
	}

	ctx := classify(tracker, text, start)
	if ctx == ContextObjectMember && directive.PropertyName == "" {
		return nil, 0, exjerrors.NewMissingPropertyName().
			WithDirective(raw).WithLine(lineOf(text, start))
	}
	if ctx != ContextObjectMember && directive.PropertyName != "" {
		return nil, 0, exjerrors.NewUnexpectedPropertyName(directive.PropertyName).
			WithDirective(raw).WithLine(lineOf(text, start))
	}

	return &Site{Directive: directive, Context: ctx, Start: start, End: k + 1}, k + 1, nil
}

// classify inspects the nearest non-whitespace byte preceding pos, and
// the bracket-tracker's current top-of-stack, to determine the site's
// syntactic context.
func classify(tracker *bracketTracker, text []byte, pos int) Context {
	prev := precedingNonSpace(text, pos)
	switch prev {
	case '{':
		return ContextObjectMember
	case '[':
		return ContextArrayElement
	case ':':
		return ContextBareValue
	case ',':
		if tracker.top() == bracketArray {
			return ContextArrayElement
		}
		return ContextObjectMember
	default:
		return ContextBareValue
	}
}

func precedingNonSpace(text []byte, pos int) byte {
	for i := pos - 1; i >= 0; i-- {
		if !isSpace(text[i]) {
			return text[i]
		}
	}
	return 0
}

func lineOf(text []byte, pos int) int {
	line := 1
	for i := 0; i < pos && i < len(text); i++ {
		if text[i] == '\n' {
			line++
		}
	}
	return line
}

func skipStringAt(text []byte, i int) int {
	n := len(text)
	i++
	for i < n {
		switch text[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

type bracketKind byte

const (
	bracketObject bracketKind = 'O'
	bracketArray  bracketKind = 'A'
)

// bracketTracker maintains the stack of enclosing '{'/'[' containers as
// text is consumed left to right, skipping content inside strings.
type bracketTracker struct {
	stack []bracketKind
}

func newBracketTracker() *bracketTracker {
	return &bracketTracker{}
}

func (t *bracketTracker) top() bracketKind {
	if len(t.stack) == 0 {
		return 0
	}
	return t.stack[len(t.stack)-1]
}

// consume updates the stack for a chunk of text known not to start mid-string.
func (t *bracketTracker) consume(chunk []byte) {
	for _, c := range chunk {
		switch c {
		case '{':
			t.stack = append(t.stack, bracketObject)
		case '[':
			t.stack = append(t.stack, bracketArray)
		case '}', ']':
			if len(t.stack) > 0 {
				t.stack = t.stack[:len(t.stack)-1]
			}
		}
	}
}
