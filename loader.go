// Package exjson loads an "extended JSON" document: JSON with comments,
// #INCLUDE directives, and a small $-expression sublanguage, producing a
// strict document tree (see document.Value).
package exjson

import (
	"os"
	"time"

	"github.com/lefeck/exjson/document"
	"github.com/lefeck/exjson/eval"
	"github.com/lefeck/exjson/exjerrors"
	"github.com/lefeck/exjson/internal/includes"
	"github.com/lefeck/exjson/internal/jsonparse"
)

// Loader holds the configuration a Load/Loads call runs with. Load and
// Loads start from defaults that read files from the local filesystem,
// fetch URLs over HTTP and expand glob targets; a missing include with no
// default is omitted (or becomes null in value position) unless
// WithErrorOnMissing(true) makes it an IncludeNotFound error.
type Loader struct {
	fetcher        includes.Fetcher
	reader         includes.Reader
	globber        includes.Globber
	includesPath   string
	errorOnMissing bool
	maxIncludeDepth int
	clock          func() time.Time
}

// Option configures a Loader using the functional-options pattern.
type Option func(*Loader)

// WithIncludesPath sets the fallback directory used to resolve a relative
// include path when the including buffer has no file Origin of its own.
func WithIncludesPath(dir string) Option {
	return func(l *Loader) { l.includesPath = dir }
}

// WithErrorOnMissing makes an unresolvable include with no default value
// fatal (IncludeNotFound) instead of substituting null/omitting the site.
func WithErrorOnMissing(v bool) Option {
	return func(l *Loader) { l.errorOnMissing = v }
}

// WithFetcher overrides how URL include targets are retrieved. The
// default is an HTTPFetcher wrapped for request deduplication.
func WithFetcher(f includes.Fetcher) Option {
	return func(l *Loader) { l.fetcher = f }
}

// WithReader overrides how file include targets (and file_checksum()
// arguments) are retrieved. The default reads from the local filesystem.
func WithReader(r includes.Reader) Option {
	return func(l *Loader) { l.reader = r }
}

// WithGlobber overrides how a glob-pattern include target is expanded.
// Without one, glob metacharacters in a file target are left unexpanded.
func WithGlobber(g includes.Globber) Option {
	return func(l *Loader) { l.globber = g }
}

// WithMaxIncludeDepth bounds include nesting as a backstop beyond cycle
// detection. Zero (the default) means no extra limit.
func WithMaxIncludeDepth(n int) Option {
	return func(l *Loader) { l.maxIncludeDepth = n }
}

// WithClock overrides the clock that now() and the nonce of the
// no-argument hash built-ins read from; tests use this to pin
// deterministic output.
func WithClock(clock func() time.Time) Option {
	return func(l *Loader) { l.clock = clock }
}

func newLoader(opts []Option) *Loader {
	l := &Loader{
		fetcher: &includes.SingleflightFetcher{Fetcher: includes.HTTPFetcher{}},
		reader:  includes.FileReader{},
		globber: includes.DoublestarGlobber{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) resolveOptions() includes.Options {
	return includes.Options{
		Fetcher:        l.fetcher,
		Reader:         l.reader,
		Globber:        l.globber,
		IncludesPath:   l.includesPath,
		ErrorOnMissing: l.errorOnMissing,
		MaxDepth:       l.maxIncludeDepth,
	}
}

// run drives phases P1 through P5 over src, tagged with origin.
func (l *Loader) run(src []byte, origin document.Origin) (*document.Value, error) {
	spliced, err := includes.Resolve(src, origin, l.resolveOptions())
	if err != nil {
		return nil, err
	}
	doc, err := jsonparse.Parse(spliced, origin)
	if err != nil {
		if se, ok := err.(*jsonparse.SyntaxError); ok {
			return nil, exjerrors.NewJSONParseError(se.Message).
				WithOrigin(origin.String()).WithLine(se.Line).WithColumn(se.Column)
		}
		return nil, err
	}
	if err := eval.NewContext(doc, l.reader, l.clock).Walk(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Load reads path, runs the full extended-JSON pipeline, and returns the
// resulting document tree.
func Load(path string, opts ...Option) (*document.Value, error) {
	l := newLoader(opts)
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, exjerrors.NewIncludeNotFound(path).WithInnerError(err)
	}
	if l.includesPath == "" {
		l.includesPath = "."
	}
	return l.run(src, document.FileOrigin(path))
}

// Loads runs the full extended-JSON pipeline over text directly, tagging
// it with an Inline Origin.
func Loads(text string, opts ...Option) (*document.Value, error) {
	l := newLoader(opts)
	return l.run([]byte(text), document.InlineOrigin())
}
