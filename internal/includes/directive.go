// Package includes implements phases P2 (scan) and P3 (resolve) of the
// pipeline: finding `#INCLUDE <...>` directives left bare in the
// comment-stripped text, parsing their wire grammar, and splicing in
// resolved bodies.
package includes

import (
	"strings"

	"github.com/lefeck/exjson/exjerrors"
)

// TargetKind distinguishes a file-path include target from a URL one.
type TargetKind int

const (
	TargetFile TargetKind = iota
	TargetURL
)

// Target is the resolved form of a directive's TARGET grammar production.
type Target struct {
	Kind TargetKind
	Raw  string // path or URL, exactly as written
}

// Directive is the parsed form of one `#INCLUDE <BODY>` occurrence:
//
//	BODY := [ NAME ':' ] TARGET [ '|' DEFAULT [ '|' CHECKSUM ] ]
type Directive struct {
	PropertyName string // NAME, empty if absent
	Target       Target
	DefaultValue string // raw JSON text, empty if absent
	Checksum     string // lowercase hex MD5, empty if absent

	Raw string // the full "#INCLUDE <...>" text, for error messages
}

// parseBody parses the text between '<' and '>' in a directive occurrence.
func parseBody(raw, body string) (Directive, error) {
	d := Directive{Raw: raw}

	rest := body

	if !hasURLScheme(rest) {
		if idx := strings.IndexByte(rest, ':'); idx >= 0 {
			name := rest[:idx]
			if isIdentifier(name) {
				d.PropertyName = name
				rest = rest[idx+1:]
			}
		}
	}

	target, rest := scanSegment(rest)
	target = strings.TrimSpace(target)
	if target == "" {
		return Directive{}, exjerrors.NewExpressionError("include directive has no target: %q", raw)
	}
	if hasURLScheme(target) {
		d.Target = Target{Kind: TargetURL, Raw: target}
	} else {
		d.Target = Target{Kind: TargetFile, Raw: target}
	}

	// scanSegment already consumed the separating '|' into its returned
	// index, so a non-empty rest here is the DEFAULT (and possibly
	// CHECKSUM) text directly, not prefixed by another '|'.
	if rest != "" {
		defaultSeg, remainder := scanSegment(rest)
		d.DefaultValue = strings.TrimSpace(defaultSeg)
		if remainder != "" {
			checksumSeg, _ := scanSegment(remainder)
			d.Checksum = strings.TrimSpace(checksumSeg)
		}
	}

	return d, nil
}

func hasURLScheme(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}

// scanSegment scans s up to the next top-level '|', tracking {}/[]
// nesting and "..."/'...' quoting so a DEFAULT value that is itself JSON
// (and thus may contain '|' inside a string or a nested container) isn't
// cut short. It returns the segment and whatever follows the terminating
// '|' (or the empty string, if s ran out first).
func scanSegment(s string) (segment, rest string) {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{', '[':
			depth++
		case '}', ']':
			depth--
		case '|':
			if depth <= 0 {
				return s[:i], s[i+1:]
			}
		}
	}
	return s, ""
}
