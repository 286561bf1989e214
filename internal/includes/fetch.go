package includes

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/singleflight"
)

// FileReader is the default Reader, backed by the local filesystem.
type FileReader struct{}

// Read implements Reader.
func (FileReader) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// HTTPFetcher is the default Fetcher, backed by net/http.
type HTTPFetcher struct {
	Client *http.Client
}

// Fetch implements Fetcher.
func (f HTTPFetcher) Fetch(url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, &httpStatusError{url: url, status: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

type httpStatusError struct {
	url    string
	status int
}

func (e *httpStatusError) Error() string {
	return "fetch " + e.url + ": unexpected status " + http.StatusText(e.status)
}

// SingleflightFetcher wraps another Fetcher so that concurrent requests
// for the same URL share a single in-flight fetch. Results are not
// cached: once a fetch completes, a later request for the same URL
// fetches again.
type SingleflightFetcher struct {
	Fetcher Fetcher
	group   singleflight.Group
}

// Fetch implements Fetcher.
func (s *SingleflightFetcher) Fetch(url string) ([]byte, error) {
	v, err, _ := s.group.Do(url, func() (interface{}, error) {
		return s.Fetcher.Fetch(url)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// DoublestarGlobber implements Globber against the real filesystem using
// doublestar's extended glob syntax (`**`, brace sets, ...).
type DoublestarGlobber struct{}

// Glob implements Globber.
func (DoublestarGlobber) Glob(dir, pattern string) ([]string, error) {
	fsys := os.DirFS(dir)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = filepath.Join(dir, m)
	}
	return out, nil
}
