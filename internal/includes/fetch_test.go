package includes_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/lefeck/exjson/internal/includes"
)

func TestFileReaderReadsFromDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.json")
	assert.NilError(t, os.WriteFile(path, []byte(`{"n":1}`), 0o644))

	b, err := includes.FileReader{}.Read(path)
	assert.NilError(t, err)
	assert.Equal(t, string(b), `{"n":1}`)
}

func TestFileReaderMissingFileErrors(t *testing.T) {
	t.Parallel()

	_, err := includes.FileReader{}.Read(filepath.Join(t.TempDir(), "missing.json"))
	assert.Assert(t, err != nil)
}

func TestHTTPFetcherReturnsBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["ok"]`))
	}))
	defer srv.Close()

	b, err := includes.HTTPFetcher{}.Fetch(srv.URL)
	assert.NilError(t, err)
	assert.Equal(t, string(b), `["ok"]`)
}

func TestHTTPFetcherErrorsOnNon2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := includes.HTTPFetcher{}.Fetch(srv.URL)
	assert.ErrorContains(t, err, "unexpected status")
}

// countingFetcher counts how many times Fetch actually runs the work,
// as opposed to how many times callers invoked it.
type countingFetcher struct {
	calls int32
}

func (c *countingFetcher) Fetch(url string) ([]byte, error) {
	atomic.AddInt32(&c.calls, 1)
	return []byte(url), nil
}

func TestSingleflightFetcherDedupsConcurrentCalls(t *testing.T) {
	t.Parallel()

	inner := &countingFetcher{}
	sf := &includes.SingleflightFetcher{Fetcher: inner}

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			b, err := sf.Fetch("https://example.test/same")
			assert.NilError(t, err)
			assert.Equal(t, string(b), "https://example.test/same")
		}()
	}
	wg.Wait()

	assert.Assert(t, inner.calls >= 1 && inner.calls <= n)
}

func TestDoublestarGlobberMatchesExtendedPatterns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	assert.NilError(t, os.MkdirAll(filepath.Join(dir, "a", "b"), 0o755))
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "a", "b", "one.json"), []byte("{}"), 0o644))
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "a", "two.json"), []byte("{}"), 0o644))

	matches, err := includes.DoublestarGlobber{}.Glob(dir, "**/*.json")
	assert.NilError(t, err)
	assert.Equal(t, len(matches), 2)
}
