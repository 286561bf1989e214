package document_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/lefeck/exjson/document"
)

func TestObjectPreservesInsertionOrder(t *testing.T) {
	t.Parallel()

	o := document.NewEmptyObject()
	o.Set("c", document.Int(3))
	o.Set("a", document.Int(1))
	o.Set("b", document.Int(2))
	assert.DeepEqual(t, o.Keys(), []string{"c", "a", "b"})
}

func TestObjectSetOverwritesInPlace(t *testing.T) {
	t.Parallel()

	o := document.NewEmptyObject()
	o.Set("a", document.Int(1))
	o.Set("a", document.Int(2))
	assert.Equal(t, o.Len(), 1)
	v, ok := o.Get("a")
	assert.Assert(t, ok)
	assert.Equal(t, v.Num.Int, int64(2))
}

func TestObjectDeletePreservesOrder(t *testing.T) {
	t.Parallel()

	o := document.NewEmptyObject()
	o.Set("a", document.Int(1))
	o.Set("b", document.Int(2))
	o.Set("c", document.Int(3))
	o.Delete("b")
	assert.DeepEqual(t, o.Keys(), []string{"a", "c"})
	_, ok := o.Get("b")
	assert.Assert(t, !ok)
}

func TestValueParentLinks(t *testing.T) {
	t.Parallel()

	child := document.Str("x")
	arr := document.NewArray([]*document.Value{child})
	assert.Equal(t, child.Parent(), arr)
}

func TestValueInterfaceConversion(t *testing.T) {
	t.Parallel()

	o := document.NewEmptyObject()
	o.Set("n", document.Int(5))
	v := document.NewObject(o)
	out := v.Interface().(map[string]interface{})
	assert.Equal(t, out["n"], int64(5))
}

func TestValueMarshalJSONPreservesOrder(t *testing.T) {
	t.Parallel()

	o := document.NewEmptyObject()
	o.Set("b", document.Str("2"))
	o.Set("a", document.Str("1"))
	v := document.NewObject(o)
	b, err := v.MarshalJSON()
	assert.NilError(t, err)
	assert.Equal(t, string(b), `{"b":"2","a":"1"}`)
}
