package eval

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lefeck/exjson/document"
	"github.com/lefeck/exjson/exjerrors"
)

// Reader fetches the contents of a local file, used by the file_checksum()
// built-in. It mirrors the internal/includes.Reader shape so a Loader can
// hand the same implementation to both phases.
type Reader interface {
	Read(path string) ([]byte, error)
}

// Context carries the per-evaluation state a tree walk needs: the document
// root (for $root references), an optional file reader (file_checksum()),
// a clock (so tests can pin now()'s output), and the sequence() counters.
type Context struct {
	root      *document.Value
	reader    Reader
	clock     func() time.Time
	sequences *sequenceRegistry
	nonceSeq  int64
}

// NewContext builds an evaluation Context rooted at root.
func NewContext(root *document.Value, reader Reader, clock func() time.Time) *Context {
	if clock == nil {
		clock = time.Now
	}
	return &Context{root: root, reader: reader, clock: clock, sequences: newSequenceRegistry()}
}

func (c *Context) nonce() string {
	c.nonceSeq++
	return fmt.Sprintf("%d-%d", c.clock().UnixNano(), c.nonceSeq)
}

// Evaluate performs phase P5 over doc in place: every $-expression, whether
// a bare KindRawExpr value or embedded inside a string, is replaced by its
// evaluated result.
func Evaluate(doc *document.Value, reader Reader) error {
	return NewContext(doc, reader, nil).Walk(doc)
}

// Walk evaluates v and everything beneath it, in place, using c's state
// (root, reader, clock, sequence counters).
func (c *Context) Walk(v *document.Value) error {
	return c.walk(v)
}

func (c *Context) walk(v *document.Value) error {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case document.KindRawExpr:
		if err := c.evalSole(v); err != nil {
			return err
		}
	case document.KindString:
		if isSoleExpr(v.Str) {
			if err := c.evalSole(v); err != nil {
				return err
			}
		} else if err := c.evalEmbedded(v); err != nil {
			return err
		}
	}
	switch v.Kind {
	case document.KindArray:
		for _, e := range v.Array {
			if err := c.walk(e); err != nil {
				return err
			}
		}
	case document.KindObject:
		for i := 0; i < v.Object.Len(); i++ {
			if err := c.walk(v.Object.ValueAt(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

// isSoleExpr reports whether s is entirely one $-expression, as opposed to
// an expression embedded in surrounding text.
func isSoleExpr(s string) bool {
	if len(s) == 0 || s[0] != '$' {
		return false
	}
	_, next, ok, err := parseExprAt(s, 0)
	return err == nil && ok && next == len(s)
}

// evalSole evaluates a string/raw-expression value whose entire text is one
// expression. The value, whether a bare (unquoted) KindRawExpr or a quoted
// KindString, takes on the result's native type.
func (c *Context) evalSole(v *document.Value) error {
	bare := v.Kind == document.KindRawExpr
	e, next, ok, err := parseExprAt(v.Str, 0)
	if err != nil {
		return err
	}
	if !ok || next != len(v.Str) {
		// A bare $ token that isn't actually a recognized expression is
		// left as literal text.
		if bare {
			v.Kind = document.KindString
		}
		return nil
	}
	if e.call != nil {
		res, err := c.evalCall(*e.call)
		if err != nil {
			return err
		}
		applyNative(v, res)
		return nil
	}
	target, resolved := resolvePath(c.root, v, *e.path)
	if !resolved {
		if bare {
			v.Kind = document.KindString
		}
		return nil
	}
	graftFrom(v, target)
	return nil
}

// evalEmbedded scans a string value for $-expressions mixed in with
// literal text, substituting each one's stringified result and leaving
// unresolved path references (and non-expression '$' characters) untouched.
func (c *Context) evalEmbedded(v *document.Value) error {
	s := v.Str
	var sb strings.Builder
	i := 0
	changed := false
	for i < len(s) {
		if s[i] != '$' {
			sb.WriteByte(s[i])
			i++
			continue
		}
		e, next, ok, err := parseExprAt(s, i)
		if err != nil {
			return err
		}
		if !ok {
			sb.WriteByte(s[i])
			i++
			continue
		}
		if e.call != nil {
			res, err := c.evalCall(*e.call)
			if err != nil {
				return err
			}
			sb.WriteString(stringify(res))
			i = next
			changed = true
			continue
		}
		target, resolved := resolvePath(c.root, v, *e.path)
		if !resolved {
			sb.WriteString(s[i:next])
			i = next
			continue
		}
		txt, ok2 := scalarText(target)
		if !ok2 {
			sb.WriteString(s[i:next])
			i = next
			continue
		}
		sb.WriteString(txt)
		i = next
		changed = true
	}
	if changed {
		v.Str = sb.String()
	}
	return nil
}

func (c *Context) evalCall(call call) (interface{}, error) {
	var res interface{}
	var err error
	if fn, ok := lookupCustom(call.name); ok {
		args := make([]interface{}, len(call.args))
		for i, a := range call.args {
			args[i] = literalToGo(a)
		}
		res, err = fn(args...)
		if err != nil {
			return nil, exjerrors.NewExpressionError("%s", err).WithFunction(call.name)
		}
	} else {
		res, err = c.callBuiltin(call.name, call.args)
		if err != nil {
			return nil, err
		}
	}
	for _, m := range call.chain {
		res, err = applyChainMethod(res, m)
		if err != nil {
			return nil, err
		}
	}
	return finalizeResult(res), nil
}

func literalToGo(a literal) interface{} {
	switch a.kind {
	case litString:
		return a.str
	case litInt:
		return a.num
	default:
		return nil
	}
}

// applyNative overwrites v's scalar fields with res's Go type, used when an
// entire string/raw-expression value is one function call.
func applyNative(v *document.Value, res interface{}) {
	switch t := res.(type) {
	case string:
		v.Kind = document.KindString
		v.Str = t
	case int64:
		v.Kind = document.KindNumber
		v.Num = document.IntNumber(t)
	case int:
		v.Kind = document.KindNumber
		v.Num = document.IntNumber(int64(t))
	case float64:
		v.Kind = document.KindNumber
		v.Num = document.FloatNumber(t)
	case bool:
		v.Kind = document.KindBool
		v.Bool = t
	case nil:
		v.Kind = document.KindNull
	default:
		v.Kind = document.KindString
		v.Str = fmt.Sprint(t)
	}
}

// graftFrom replaces v's content with target's, reparenting target's
// children to v so the tree's Parent() links stay consistent.
func graftFrom(v, target *document.Value) {
	v.Kind = target.Kind
	v.Bool = target.Bool
	v.Num = target.Num
	v.Str = target.Str
	v.Array = target.Array
	v.Object = target.Object
	switch v.Kind {
	case document.KindArray:
		for _, e := range v.Array {
			e.SetParent(v)
		}
	case document.KindObject:
		for i := 0; i < v.Object.Len(); i++ {
			v.Object.ValueAt(i).SetParent(v)
		}
	}
}

func stringify(res interface{}) string {
	switch t := res.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case nil:
		return "null"
	default:
		return fmt.Sprint(t)
	}
}
