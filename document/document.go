// Package document defines the in-memory tree produced by the loader:
// null, boolean, number, string, ordered array, and ordered object, each
// tagged with the Origin it was parsed from.
package document

import (
	"bytes"
	"fmt"
	"strconv"
)

// Kind discriminates the type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	// KindRawExpr holds a bare (unquoted) "$..." token found in value
	// position, e.g. `"id": $.sequence('A')`. It is resolved into a typed
	// Value during expression evaluation (phase P5) and never appears in
	// a fully-evaluated document.
	KindRawExpr
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindRawExpr:
		return "raw-expression"
	default:
		return "unknown"
	}
}

// Number carries either an integer or a real value, remembering which the
// source text used so re-serialization doesn't introduce a decimal point
// into what was an integer literal.
type Number struct {
	IsInt bool
	Int   int64
	Float float64
}

// Float64 returns the numeric value as a float64 regardless of storage form.
func (n Number) Float64() float64 {
	if n.IsInt {
		return float64(n.Int)
	}
	return n.Float
}

func (n Number) String() string {
	if n.IsInt {
		return strconv.FormatInt(n.Int, 10)
	}
	return strconv.FormatFloat(n.Float, 'g', -1, 64)
}

// IntNumber builds an integer Number.
func IntNumber(v int64) Number { return Number{IsInt: true, Int: v} }

// FloatNumber builds a real Number.
func FloatNumber(v float64) Number { return Number{IsInt: false, Float: v} }

// Value is one node of a Document tree.
type Value struct {
	Kind Kind

	Bool   bool
	Num    Number
	Str    string // string content, or the raw token text for KindRawExpr
	Array  []*Value
	Object *Object

	// Line and Column locate this value's starting position in the
	// spliced text that was handed to the strict JSON parser (1-based).
	Line   int
	Column int

	// Origin is the buffer this value was parsed from. Parsing runs on the
	// spliced text, so values that came from an included document carry
	// the host document's Origin.
	Origin Origin

	parent *Value
}

// Null, True, False return freshly built leaf values.
func Null() *Value        { return &Value{Kind: KindNull} }
func Bool(b bool) *Value  { return &Value{Kind: KindBool, Bool: b} }
func Str(s string) *Value { return &Value{Kind: KindString, Str: s} }
func Int(v int64) *Value  { return &Value{Kind: KindNumber, Num: IntNumber(v)} }
func Float(v float64) *Value {
	return &Value{Kind: KindNumber, Num: FloatNumber(v)}
}

// NewArray wraps elements into an array Value, wiring parent links.
func NewArray(elems []*Value) *Value {
	v := &Value{Kind: KindArray, Array: elems}
	for _, e := range elems {
		e.parent = v
	}
	return v
}

// NewObject wraps an Object into an object Value, wiring parent links.
func NewObject(o *Object) *Value {
	v := &Value{Kind: KindObject, Object: o}
	for _, child := range o.vals {
		child.parent = v
	}
	return v
}

// Parent returns the enclosing container Value, or nil at the document root.
func (v *Value) Parent() *Value { return v.parent }

// SetParent attaches v beneath parent; used by the resolver/evaluator when
// grafting values produced outside the normal parse walk.
func (v *Value) SetParent(parent *Value) { v.parent = parent }

// IsNull reports whether the value is the JSON null literal.
func (v *Value) IsNull() bool { return v.Kind == KindNull }

// Object is an ordered string-keyed map: iteration and JSON re-marshaling
// both respect insertion order (significant for round-trip reporting,
// not evaluation
// semantics).
type Object struct {
	keys  []string
	index map[string]int
	vals  []*Value
}

// NewEmptyObject returns an Object with no members.
func NewEmptyObject() *Object {
	return &Object{index: make(map[string]int)}
}

// Set appends key/val, or overwrites val in place if key already exists.
func (o *Object) Set(key string, val *Value) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[key]; ok {
		o.vals[i] = val
		return
	}
	o.index[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.vals = append(o.vals, val)
}

// Get looks up key, reporting whether it is present.
func (o *Object) Get(key string) (*Value, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.vals[i], true
}

// Delete removes key, preserving the order of the remaining members.
func (o *Object) Delete(key string) {
	i, ok := o.index[key]
	if !ok {
		return
	}
	o.keys = append(o.keys[:i], o.keys[i+1:]...)
	o.vals = append(o.vals[:i], o.vals[i+1:]...)
	delete(o.index, key)
	for k, idx := range o.index {
		if idx > i {
			o.index[k] = idx - 1
		}
	}
}

// Keys returns the member names in insertion order.
func (o *Object) Keys() []string { return o.keys }

// Len returns the number of members.
func (o *Object) Len() int { return len(o.keys) }

// ValueAt returns the i'th member's value, in insertion order.
func (o *Object) ValueAt(i int) *Value { return o.vals[i] }

// KeyAt returns the i'th member's key, in insertion order.
func (o *Object) KeyAt(i int) string { return o.keys[i] }

// Interface converts the tree into plain Go values (map[string]any,
// []any, string, float64/int64, bool, nil) suitable for callers that
// don't care about member order.
func (v *Value) Interface() interface{} {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool
	case KindNumber:
		if v.Num.IsInt {
			return v.Num.Int
		}
		return v.Num.Float
	case KindString:
		return v.Str
	case KindArray:
		out := make([]interface{}, len(v.Array))
		for i, e := range v.Array {
			out[i] = e.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, v.Object.Len())
		for i := 0; i < v.Object.Len(); i++ {
			out[v.Object.KeyAt(i)] = v.Object.ValueAt(i).Interface()
		}
		return out
	default:
		return v.Str
	}
}

// MarshalJSON renders the value back to strict JSON text, preserving
// object member order.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) writeJSON(buf *bytes.Buffer) error {
	if v == nil {
		buf.WriteString("null")
		return nil
	}
	switch v.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		buf.WriteString(v.Num.String())
	case KindString:
		buf.WriteString(strconv.Quote(v.Str))
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.Array {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i := 0; i < v.Object.Len(); i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.Quote(v.Object.KeyAt(i)))
			buf.WriteByte(':')
			if err := v.Object.ValueAt(i).writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("document: cannot marshal %s value", v.Kind)
	}
	return nil
}
