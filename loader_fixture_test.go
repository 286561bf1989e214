package exjson_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/lefeck/exjson"
)

func TestLoadSimpleFixtureFile(t *testing.T) {
	t.Parallel()

	doc, err := exjson.Load("testdata/simple.json")
	assert.NilError(t, err)
	name, _ := doc.Object.Get("Name")
	assert.Equal(t, name.Str, "S")
	count, _ := doc.Object.Get("Count")
	assert.Equal(t, count.Num.Int, int64(3))
}

func TestLoadFixtureResolvesRelativeInclude(t *testing.T) {
	t.Parallel()

	doc, err := exjson.Load("testdata/pipeline.json")
	assert.NilError(t, err)
	steps, ok := doc.Object.Get("Steps")
	assert.Assert(t, ok)
	assert.Equal(t, len(steps.Array), 3)
	assert.Equal(t, steps.Array[0].Str, "fetch")
}
