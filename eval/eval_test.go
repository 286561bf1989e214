package eval_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"

	"github.com/lefeck/exjson/document"
	"github.com/lefeck/exjson/eval"
	"github.com/lefeck/exjson/internal/jsonparse"
)

func parseDoc(t *testing.T, src string) *document.Value {
	t.Helper()
	v, err := jsonparse.Parse([]byte(src), document.InlineOrigin())
	assert.NilError(t, err)
	return v
}

func TestEvaluateMD5Literal(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `{"a":"$.md5('test string')"}`)
	assert.NilError(t, eval.Evaluate(doc, nil))
	a, _ := doc.Object.Get("a")
	assert.Equal(t, a.Str, "6f8db599de986fab7a21625b7916589c")
}

func TestEvaluateSequenceDeterministicOrder(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `[$.sequence('A'), $.sequence('A'), $.sequence('A'), $.sequence('A'), $.sequence('B')]`)
	assert.NilError(t, eval.Evaluate(doc, nil))
	assert.Equal(t, doc.Array[0].Num.Int, int64(1))
	assert.Equal(t, doc.Array[1].Num.Int, int64(2))
	assert.Equal(t, doc.Array[2].Num.Int, int64(3))
	assert.Equal(t, doc.Array[3].Num.Int, int64(4))
	assert.Equal(t, doc.Array[4].Num.Int, int64(1))
}

func TestEvaluateSequenceEmbeddedIsString(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `{"id":"A-$.sequence('A')"}`)
	assert.NilError(t, eval.Evaluate(doc, nil))
	id, _ := doc.Object.Get("id")
	require.Equal(t, document.KindString, id.Kind)
	require.Equal(t, "A-1", id.Str)
}

func TestEvaluateRootPathEmbedded(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `{"prefix":"A","x":"Z-$root.prefix"}`)
	assert.NilError(t, eval.Evaluate(doc, nil))
	x, _ := doc.Object.Get("x")
	assert.Equal(t, x.Str, "Z-A")
}

func TestEvaluateQuotedSolePathYieldsNativeType(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `{"count":3,"total":"$root.count"}`)
	assert.NilError(t, eval.Evaluate(doc, nil))
	total, _ := doc.Object.Get("total")
	assert.Equal(t, total.Kind, document.KindNumber)
	assert.Equal(t, total.Num.Int, int64(3))
}

func TestEvaluateBareSolePathYieldsNativeType(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `{"count":3,"total":$root.count}`)
	assert.NilError(t, eval.Evaluate(doc, nil))
	total, _ := doc.Object.Get("total")
	assert.Equal(t, total.Kind, document.KindNumber)
	assert.Equal(t, total.Num.Int, int64(3))
}

func TestEvaluateQuotedSoleCallYieldsNativeType(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `{"second":"$.sequence('B')"}`)
	assert.NilError(t, eval.Evaluate(doc, nil))
	second, _ := doc.Object.Get("second")
	assert.Equal(t, second.Kind, document.KindNumber)
	assert.Equal(t, second.Num.Int, int64(1))
}

func TestEvaluateBareSoleCallYieldsNativeType(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `{"id":$.sequence('A')}`)
	assert.NilError(t, eval.Evaluate(doc, nil))
	id, _ := doc.Object.Get("id")
	assert.Equal(t, id.Kind, document.KindNumber)
	assert.Equal(t, id.Num.Int, int64(1))
}

func TestEvaluateUnresolvedPathLeftLiteral(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `{"x":"$root.missing"}`)
	assert.NilError(t, eval.Evaluate(doc, nil))
	x, _ := doc.Object.Get("x")
	assert.Equal(t, x.Kind, document.KindString)
	assert.Equal(t, x.Str, "$root.missing")
}

func TestEvaluateThisAndParentScopes(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `{"parentName":"P","child":{"name":"C","ref":"$parent.parentName","self":"$this.name"}}`)
	assert.NilError(t, eval.Evaluate(doc, nil))
	child, _ := doc.Object.Get("child")
	ref, _ := child.Object.Get("ref")
	self, _ := child.Object.Get("self")
	assert.Equal(t, ref.Str, "P")
	assert.Equal(t, self.Str, "C")
}

func TestEvaluateUUIDProducesDistinctValues(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `["$.uuid()", "$.uuid()"]`)
	assert.NilError(t, eval.Evaluate(doc, nil))
	assert.Assert(t, doc.Array[0].Str != doc.Array[1].Str)
	assert.Equal(t, len(doc.Array[0].Str), 36)
}

func TestEvaluateNowWithFormat(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `{"today":"$.now('yyyy-MM-dd')"}`)
	clock := func() time.Time { return time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC) }
	c := eval.NewContext(doc, nil, clock)
	assert.NilError(t, c.Walk(doc))
	today, _ := doc.Object.Get("today")
	assert.Equal(t, today.Str, "2026-07-31")
}

func TestEvaluateNowDefaultFormatUsesPlusZeroOffsetInUTC(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `{"stamp":"$.now()"}`)
	clock := func() time.Time { return time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC) }
	c := eval.NewContext(doc, nil, clock)
	assert.NilError(t, c.Walk(doc))
	stamp, _ := doc.Object.Get("stamp")
	assert.Equal(t, stamp.Str, "2026-07-31T10:00:00+00:00")
}

func TestEvaluateNowUTCChain(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `{"stamp":"$.now().utc()"}`)
	loc := time.FixedZone("test", 3600)
	clock := func() time.Time { return time.Date(2026, 7, 31, 10, 0, 0, 0, loc) }
	c := eval.NewContext(doc, nil, clock)
	assert.NilError(t, c.Walk(doc))
	stamp, _ := doc.Object.Get("stamp")
	assert.Equal(t, stamp.Str, "2026-07-31T09:00:00-00:00")
}

func TestEvaluateAddDuration(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `{"later":"$.now().add(days=1, 'yyyy-MM-dd')"}`)
	clock := func() time.Time { return time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC) }
	c := eval.NewContext(doc, nil, clock)
	assert.NilError(t, c.Walk(doc))
	later, _ := doc.Object.Get("later")
	assert.Equal(t, later.Str, "2026-08-01")
}

func TestEvaluateCustomExtension(t *testing.T) {
	t.Parallel()

	eval.RegisterCustomScriptingExtension("shout", func(args ...interface{}) (interface{}, error) {
		s, _ := args[0].(string)
		return s + "!", nil
	})
	doc := parseDoc(t, `{"a":"$.shout('hi')"}`)
	assert.NilError(t, eval.Evaluate(doc, nil))
	a, _ := doc.Object.Get("a")
	assert.Equal(t, a.Str, "hi!")
}

func TestEvaluateUnknownFunctionErrors(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `{"a":"$.bogus()"}`)
	err := eval.Evaluate(doc, nil)
	require.Error(t, err)
}
