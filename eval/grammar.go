// Package eval implements phase P5: a depth-first, pre-order walk of the
// parsed document tree that recognizes and evaluates the `$`-prefixed
// expression sublanguage, embedded inside
// string values or appearing as a bare KindRawExpr value.
package eval

import (
	"strconv"
	"strings"

	"github.com/lefeck/exjson/exjerrors"
)

// literalKind distinguishes the three LITERAL forms the grammar allows as
// call arguments, plus the keyword form `.add(days=N, ...)` needs.
type literalKind int

const (
	litString literalKind = iota
	litInt
	litNull
)

type literal struct {
	kind literalKind
	key  string // non-empty for a "key=value" chain-method argument
	str  string
	num  int64
}

type call struct {
	name  string
	args  []literal
	chain []methodCall
}

type methodCall struct {
	name string
	args []literal
}

type pathSegment struct {
	name  string
	index *int
}

type pathRef struct {
	scope    string // "root", "parent", "this"
	segments []pathSegment
}

// expr is either a call or a pathRef.
type expr struct {
	call *call
	path *pathRef
}

// parseExprAt attempts to parse an expression starting at s[start] == '$'.
// ok is false if s[start] is not actually the start of a recognized
// expression prefix (in which case '$' should be treated as a literal
// character). Once a prefix is recognized, any further grammar violation
// is a fatal ExpressionError.
func parseExprAt(s string, start int) (e expr, next int, ok bool, err error) {
	if start >= len(s) || s[start] != '$' {
		return expr{}, start, false, nil
	}
	rest := s[start+1:]
	switch {
	case strings.HasPrefix(rest, "."):
		c, n, err := parseCall(s, start+2)
		if err != nil {
			return expr{}, start, true, err
		}
		return expr{call: &c}, n, true, nil
	case strings.HasPrefix(rest, "root."):
		p, n, err := parsePath(s, "root", start+1+len("root."))
		if err != nil {
			return expr{}, start, true, err
		}
		return expr{path: &p}, n, true, nil
	case strings.HasPrefix(rest, "parent."):
		p, n, err := parsePath(s, "parent", start+1+len("parent."))
		if err != nil {
			return expr{}, start, true, err
		}
		return expr{path: &p}, n, true, nil
	case strings.HasPrefix(rest, "this."):
		p, n, err := parsePath(s, "this", start+1+len("this."))
		if err != nil {
			return expr{}, start, true, err
		}
		return expr{path: &p}, n, true, nil
	default:
		return expr{}, start, false, nil
	}
}

func parseCall(s string, pos int) (call, int, error) {
	name, pos := scanIdent(s, pos)
	if name == "" {
		return call{}, pos, exjerrors.NewExpressionError("expected function name at position %d", pos)
	}
	if pos >= len(s) || s[pos] != '(' {
		return call{}, pos, exjerrors.NewExpressionError("expected '(' after function name %q", name)
	}
	args, pos, err := parseArgs(s, pos)
	if err != nil {
		return call{}, pos, err
	}
	c := call{name: name, args: args}
	for pos < len(s) && s[pos] == '.' {
		mname, p2 := scanIdent(s, pos+1)
		if mname == "" || p2 >= len(s) || s[p2] != '(' {
			break
		}
		margs, p3, err := parseArgs(s, p2)
		if err != nil {
			return call{}, p3, err
		}
		c.chain = append(c.chain, methodCall{name: mname, args: margs})
		pos = p3
	}
	return c, pos, nil
}

func parsePath(s, scope string, pos int) (pathRef, int, error) {
	var segs []pathSegment
	for {
		name, p := scanIdent(s, pos)
		if name == "" {
			return pathRef{}, pos, exjerrors.NewExpressionError("expected a path segment after %s.", scope)
		}
		pos = p
		seg := pathSegment{name: name}
		if pos < len(s) && s[pos] == '[' {
			end := strings.IndexByte(s[pos:], ']')
			if end < 0 {
				return pathRef{}, pos, exjerrors.NewExpressionError("unterminated '[' in path segment %q", name)
			}
			idxStr := s[pos+1 : pos+end]
			n, err := strconv.Atoi(idxStr)
			if err != nil {
				return pathRef{}, pos, exjerrors.NewExpressionError("invalid array index %q", idxStr)
			}
			seg.index = &n
			pos = pos + end + 1
		}
		segs = append(segs, seg)
		if pos < len(s) && s[pos] == '.' && pos+1 < len(s) && isIdentStart(s[pos+1]) {
			pos++
			continue
		}
		break
	}
	return pathRef{scope: scope, segments: segs}, pos, nil
}

func parseArgs(s string, pos int) ([]literal, int, error) {
	pos++ // consume '('
	var args []literal
	pos = skipSpaces(s, pos)
	if pos >= len(s) {
		return nil, pos, exjerrors.NewExpressionError("unterminated argument list")
	}
	if s[pos] == ')' {
		return args, pos + 1, nil
	}
	for {
		lit, p, err := parseLiteral(s, pos)
		if err != nil {
			return nil, p, err
		}
		args = append(args, lit)
		pos = skipSpaces(s, p)
		if pos >= len(s) {
			return nil, pos, exjerrors.NewExpressionError("unterminated argument list")
		}
		if s[pos] == ',' {
			pos = skipSpaces(s, pos+1)
			continue
		}
		if s[pos] == ')' {
			return args, pos + 1, nil
		}
		return nil, pos, exjerrors.NewExpressionError("expected ',' or ')' in argument list")
	}
}

func parseLiteral(s string, pos int) (literal, int, error) {
	pos = skipSpaces(s, pos)
	if pos >= len(s) {
		return literal{}, pos, exjerrors.NewExpressionError("unexpected end of expression")
	}
	// keyword form: ident '=' literal, used by chain method duration args.
	if isIdentStart(s[pos]) {
		name, p := scanIdent(s, pos)
		if p < len(s) && s[p] == '=' {
			inner, p2, err := parseLiteral(s, p+1)
			if err != nil {
				return literal{}, p2, err
			}
			inner.key = name
			return inner, p2, nil
		}
		if name == "null" {
			return literal{kind: litNull}, p, nil
		}
		return literal{}, p, exjerrors.NewExpressionError("unexpected identifier %q in argument list", name)
	}
	if s[pos] == '\'' {
		return parseQuotedLiteral(s, pos)
	}
	if s[pos] == '-' || (s[pos] >= '0' && s[pos] <= '9') {
		start := pos
		if s[pos] == '-' {
			pos++
		}
		for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
			pos++
		}
		n, err := strconv.ParseInt(s[start:pos], 10, 64)
		if err != nil {
			return literal{}, pos, exjerrors.NewExpressionError("invalid integer literal %q", s[start:pos])
		}
		return literal{kind: litInt, num: n}, pos, nil
	}
	return literal{}, pos, exjerrors.NewExpressionError("expected a literal argument at position %d", pos)
}

func parseQuotedLiteral(s string, pos int) (literal, int, error) {
	pos++ // opening quote
	var sb strings.Builder
	for pos < len(s) && s[pos] != '\'' {
		if s[pos] == '\\' && pos+1 < len(s) {
			pos++
		}
		sb.WriteByte(s[pos])
		pos++
	}
	if pos >= len(s) {
		return literal{}, pos, exjerrors.NewExpressionError("unterminated string literal in expression")
	}
	return literal{kind: litString, str: sb.String()}, pos + 1, nil
}

func scanIdent(s string, pos int) (string, int) {
	start := pos
	for pos < len(s) && isIdentByte(s[pos]) {
		pos++
	}
	return s[start:pos], pos
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentByte(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func skipSpaces(s string, pos int) int {
	for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t') {
		pos++
	}
	return pos
}
