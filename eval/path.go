package eval

import "github.com/lefeck/exjson/document"

// nearestObject walks v's parent chain (including v itself) up to the
// first enclosing object, skipping over intervening arrays.
func nearestObject(v *document.Value) *document.Value {
	for v != nil && v.Kind != document.KindObject {
		v = v.Parent()
	}
	return v
}

// resolvePath walks a $root/$parent/$this reference against the document
// tree, where referencing is the value the expression was found in.
// $this anchors at referencing's nearest enclosing object; $parent at
// that object's own nearest enclosing object. It returns ok=false (not
// an error) when any segment fails to resolve: an
// unresolved path reference is left as the original literal text rather
// than raising an ExpressionError.
func resolvePath(root, referencing *document.Value, p pathRef) (*document.Value, bool) {
	var cur *document.Value
	switch p.scope {
	case "root":
		cur = root
	case "this":
		cur = nearestObject(referencing)
	case "parent":
		this := nearestObject(referencing)
		if this != nil {
			cur = nearestObject(this.Parent())
		}
	default:
		return nil, false
	}
	for _, seg := range p.segments {
		if cur == nil {
			return nil, false
		}
		if cur.Kind != document.KindObject {
			return nil, false
		}
		next, ok := cur.Object.Get(seg.name)
		if !ok {
			return nil, false
		}
		if seg.index != nil {
			if next.Kind != document.KindArray {
				return nil, false
			}
			if *seg.index < 0 || *seg.index >= len(next.Array) {
				return nil, false
			}
			next = next.Array[*seg.index]
		}
		cur = next
	}
	return cur, true
}

// scalarText renders a resolved path target as the text to splice into a
// surrounding string; object/array targets aren't embeddable this way.
func scalarText(v *document.Value) (string, bool) {
	switch v.Kind {
	case document.KindString:
		return v.Str, true
	case document.KindNumber:
		return v.Num.String(), true
	case document.KindBool:
		if v.Bool {
			return "true", true
		}
		return "false", true
	case document.KindNull:
		return "null", true
	default:
		return "", false
	}
}
