// Package dump renders a resolved document.Value back out as YAML,
// preserving object member order via yaml.MapSlice.
package dump

import (
	"gopkg.in/yaml.v2"

	"github.com/lefeck/exjson/document"
)

// ToYAML converts v into its yaml.v2 representation and marshals it.
func ToYAML(v *document.Value) ([]byte, error) {
	return yaml.Marshal(toYAMLNode(v))
}

func toYAMLNode(v *document.Value) interface{} {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case document.KindNull:
		return nil
	case document.KindBool:
		return v.Bool
	case document.KindNumber:
		if v.Num.IsInt {
			return v.Num.Int
		}
		return v.Num.Float
	case document.KindString:
		return v.Str
	case document.KindArray:
		out := make([]interface{}, len(v.Array))
		for i, e := range v.Array {
			out[i] = toYAMLNode(e)
		}
		return out
	case document.KindObject:
		items := make(yaml.MapSlice, v.Object.Len())
		for i := 0; i < v.Object.Len(); i++ {
			items[i] = yaml.MapItem{
				Key:   v.Object.KeyAt(i),
				Value: toYAMLNode(v.Object.ValueAt(i)),
			}
		}
		return items
	default:
		return v.Str
	}
}
