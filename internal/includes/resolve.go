package includes

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lefeck/exjson/document"
	"github.com/lefeck/exjson/exjerrors"
	"github.com/lefeck/exjson/internal/stripper"
)

// Fetcher retrieves bytes for a URL target. Implementations may wrap a
// real HTTP client; the core never dials a socket itself.
type Fetcher interface {
	Fetch(url string) ([]byte, error)
}

// Reader retrieves bytes for a file-path target. Implementations may
// wrap the OS filesystem, an embedded FS, or a test double.
type Reader interface {
	Read(path string) ([]byte, error)
}

// Globber expands a glob pattern rooted at dir into matching file paths,
// backing the `Files:configs/*.json` supplemental glob-target feature.
type Globber interface {
	Glob(dir, pattern string) ([]string, error)
}

// Options configures include resolution (the load/loads parameters
// that bear on this subsystem).
type Options struct {
	Fetcher        Fetcher
	Reader         Reader
	Globber        Globber
	IncludesPath   string
	ErrorOnMissing bool
	// MaxDepth bounds include nesting as a backstop beyond cycle
	// detection (which only catches exact re-entry, not runaway depth
	// through distinct files). Zero means no extra limit.
	MaxDepth int
}

// Resolve runs phases P1-P3 on src: it strips comments, scans for
// include directives, and splices in their resolved bodies, recursing
// into each included buffer's own comments and includes before it is
// spliced into the parent. The returned text is ready for the strict
// JSON parser (phase P4); no include syntax remains in it.
func Resolve(src []byte, origin document.Origin, opts Options) ([]byte, error) {
	return resolve(src, origin, []document.Origin{origin}, opts, 0)
}

func resolve(src []byte, origin document.Origin, frame []document.Origin, opts Options, depth int) ([]byte, error) {
	if opts.MaxDepth > 0 && depth > opts.MaxDepth {
		return nil, exjerrors.NewIncludeRecursion(origin.String()).
			WithInnerError(fmt.Errorf("exceeded max include depth %d", opts.MaxDepth))
	}

	stripped := stripper.Strip(src)
	sites, err := Scan(stripped)
	if err != nil {
		if le, ok := err.(*exjerrors.LoadError); ok {
			return nil, le.WithOrigin(origin.String())
		}
		return nil, err
	}
	if len(sites) == 0 {
		return stripped, nil
	}

	var buf bytes.Buffer
	last := 0
	for _, site := range sites {
		buf.Write(stripped[last:site.Start])

		bodies, missing, err := resolveSite(site, origin, frame, opts, depth)
		if err != nil {
			return nil, err
		}

		insert, skip := spliceFor(site, stripped, bodies, missing)
		buf.Write(insert)
		last = site.End + skip
	}
	buf.Write(stripped[last:])
	return buf.Bytes(), nil
}

// resolveSite fetches, checksum-verifies, cycle-checks, and recursively
// resolves the body for one include site, returning the list of spliced
// sub-buffers to emit (more than one only for a glob target) and whether
// the site resolved to "missing" (no default, non-strict mode).
func resolveSite(site Site, origin document.Origin, frame []document.Origin, opts Options, depth int) ([][]byte, bool, error) {
	d := site.Directive

	targets, err := expandTarget(d.Target, origin, opts)
	if err != nil {
		return nil, false, err
	}

	var out [][]byte
	for _, t := range targets {
		body, childOrigin, fetchErr := fetchOne(t, origin, opts)
		if fetchErr != nil {
			if d.DefaultValue != "" {
				out = append(out, []byte(d.DefaultValue))
				continue
			}
			if opts.ErrorOnMissing {
				return nil, false, exjerrors.NewIncludeNotFound(t.Raw).
					WithDirective(d.Raw).WithInnerError(fetchErr)
			}
			return nil, true, nil
		}

		if d.Checksum != "" {
			sum := md5.Sum(body)
			got := hex.EncodeToString(sum[:])
			if !strings.EqualFold(got, d.Checksum) {
				return nil, false, exjerrors.NewChecksumMismatch(t.Raw, d.Checksum, got).
					WithDirective(d.Raw)
			}
		}

		for _, f := range frame {
			if f.Equal(childOrigin) {
				return nil, false, exjerrors.NewIncludeRecursion(childOrigin.String()).
					WithDirective(d.Raw)
			}
		}

		newFrame := append(append([]document.Origin{}, frame...), childOrigin)
		spliced, err := resolve(body, childOrigin, newFrame, opts, depth+1)
		if err != nil {
			return nil, false, err
		}
		out = append(out, spliced)
	}
	return out, false, nil
}

// fetchOne retrieves the bytes for a single, already-expanded target.
func fetchOne(t Target, origin document.Origin, opts Options) ([]byte, document.Origin, error) {
	switch t.Kind {
	case TargetURL:
		if opts.Fetcher == nil {
			return nil, document.Origin{}, fmt.Errorf("no fetcher configured for URL include %q", t.Raw)
		}
		body, err := opts.Fetcher.Fetch(t.Raw)
		return body, document.URLOrigin(t.Raw), err
	default:
		path := resolvePath(t.Raw, origin, opts)
		if opts.Reader == nil {
			return nil, document.Origin{}, fmt.Errorf("no reader configured for file include %q", t.Raw)
		}
		body, err := opts.Reader.Read(path)
		return body, document.FileOrigin(path), err
	}
}

// resolvePath applies the path-resolution precedence: the including
// file's own directory, then the caller-supplied includes_path, then the
// current working directory (left to the Reader if the path stays
// relative and none of the first two apply).
func resolvePath(raw string, origin document.Origin, opts Options) string {
	if filepath.IsAbs(raw) {
		return raw
	}
	if origin.Kind == document.OriginFile {
		return filepath.Join(filepath.Dir(origin.Path), raw)
	}
	if opts.IncludesPath != "" {
		return filepath.Join(opts.IncludesPath, raw)
	}
	return raw
}

// expandTarget returns the single target unchanged, unless it is a file
// path containing glob metacharacters, in which case it is expanded
// against a Globber into one target per match.
func expandTarget(t Target, origin document.Origin, opts Options) ([]Target, error) {
	if t.Kind != TargetFile || opts.Globber == nil || !strings.ContainsAny(t.Raw, "*?[") {
		return []Target{t}, nil
	}
	dir := filepath.Dir(resolvePath(t.Raw, origin, opts))
	pattern := filepath.Base(t.Raw)
	matches, err := opts.Globber.Glob(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("expanding include glob %q: %w", t.Raw, err)
	}
	targets := make([]Target, 0, len(matches))
	for _, m := range matches {
		targets = append(targets, Target{Kind: TargetFile, Raw: m})
	}
	return targets, nil
}

// spliceFor renders the text to insert in place of site's directive span,
// and how many extra bytes of stripped (beyond site.End) to swallow --
// used to eat a dangling comma when an object-member or array-element
// site resolves to "missing" and is omitted entirely in non-strict
// mode.
func spliceFor(site Site, stripped []byte, bodies [][]byte, missing bool) (insert []byte, extraSkip int) {
	if missing {
		if site.Context == ContextBareValue {
			return []byte("null"), 0
		}
		skip := 0
		k := site.End
		for k < len(stripped) && isSpace(stripped[k]) {
			k++
		}
		if k < len(stripped) && stripped[k] == ',' {
			skip = (k - site.End) + 1
		}
		return nil, skip
	}

	var buf bytes.Buffer
	switch site.Context {
	case ContextObjectMember:
		buf.WriteByte('"')
		buf.WriteString(site.Directive.PropertyName)
		buf.WriteString(`": `)
		writeBodies(&buf, bodies)
	case ContextArrayElement:
		writeBodies(&buf, bodies)
	case ContextBareValue:
		// expandTarget does not look at the context, so a glob target
		// here splices its matches as one array, as elsewhere.
		writeBodies(&buf, bodies)
	}

	if site.Context != ContextBareValue {
		next := nextNonSpace(stripped, site.End)
		if next != ',' && next != '}' && next != ']' && next != 0 {
			buf.WriteByte(',')
		}
	}
	return buf.Bytes(), 0
}

func writeBodies(buf *bytes.Buffer, bodies [][]byte) {
	if len(bodies) == 1 {
		buf.Write(bodies[0])
		return
	}
	buf.WriteByte('[')
	for i, b := range bodies {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
}

func nextNonSpace(text []byte, from int) byte {
	for k := from; k < len(text); k++ {
		if !isSpace(text[k]) {
			return text[k]
		}
	}
	return 0
}
