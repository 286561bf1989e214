package stripper_test

import (
	"strings"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/lefeck/exjson/internal/stripper"
)

func TestStripPreservesLength(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`{"a": 1}`,
		"{\n  // a comment\n  \"a\": 1\n}",
		"{\n  /* block\n  comment */\n  \"a\": 1\n}",
		`{"a": "// not a comment"}`,
		`{"a": "/* also not a comment */"}`,
	}
	for _, in := range inputs {
		out := stripper.Strip([]byte(in))
		assert.Equal(t, len(out), len(in))
	}
}

func TestStripBlanksLineComment(t *testing.T) {
	t.Parallel()

	in := "{\n  \"a\": 1 // trailing\n}"
	out := string(stripper.Strip([]byte(in)))
	assert.Assert(t, !strings.Contains(out, "trailing"))
	assert.Equal(t, strings.Count(out, "\n"), strings.Count(in, "\n"))
}

func TestStripBlanksBlockComment(t *testing.T) {
	t.Parallel()

	in := "{\n  /* hidden\n   text */\n  \"a\": 1\n}"
	out := string(stripper.Strip([]byte(in)))
	assert.Assert(t, !strings.Contains(out, "hidden"))
	assert.Equal(t, strings.Count(out, "\n"), strings.Count(in, "\n"))
}

func TestStripPreservesDirectiveInsideComment(t *testing.T) {
	t.Parallel()

	in := `{"a": /* #INCLUDE <b.json> */ 1}`
	out := string(stripper.Strip([]byte(in)))
	assert.Assert(t, strings.Contains(out, "#INCLUDE <b.json>"))
}

func TestStripIgnoresCommentMarkersInsideStrings(t *testing.T) {
	t.Parallel()

	in := `{"url": "http://example.com"}`
	out := string(stripper.Strip([]byte(in)))
	assert.Equal(t, out, in)
}
