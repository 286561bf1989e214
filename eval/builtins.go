package eval

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lefeck/exjson/exjerrors"
)

// dateValue marks a still-chainable time.Time result from now(), as
// opposed to a plain string produced by a terminal built-in.
type dateValue time.Time

func (c *Context) callBuiltin(name string, args []literal) (interface{}, error) {
	switch name {
	case "uuid":
		return uuid.New().String(), nil
	case "md5":
		return hashOf(md5.Size, args, md5sum, c)
	case "sha1":
		return hashOf(sha1.Size, args, sha1sum, c)
	case "sha256":
		return hashOf(sha256.Size, args, sha256sum, c)
	case "sha512":
		return hashOf(sha512.Size, args, sha512sum, c)
	case "now":
		return c.builtinNow(args)
	case "file_checksum":
		return c.builtinFileChecksum(args)
	case "sequence":
		return c.builtinSequence(args)
	default:
		return nil, exjerrors.NewExpressionError("unknown function %q", name).WithFunction(name)
	}
}

func md5sum(b []byte) []byte    { s := md5.Sum(b); return s[:] }
func sha1sum(b []byte) []byte   { s := sha1.Sum(b); return s[:] }
func sha256sum(b []byte) []byte { s := sha256.Sum256(b); return s[:] }
func sha512sum(b []byte) []byte { s := sha512.Sum512(b); return s[:] }

// hashOf computes a digest over args[0] if present (a string argument),
// or over a per-evaluation nonce otherwise (md5(), sha1(), and so on
// with no argument).
func hashOf(_ int, args []literal, sum func([]byte) []byte, c *Context) (interface{}, error) {
	var input []byte
	if len(args) > 0 {
		if args[0].kind != litString {
			return nil, exjerrors.NewExpressionError("expected a string argument")
		}
		input = []byte(args[0].str)
	} else {
		input = []byte(c.nonce())
	}
	return hex.EncodeToString(sum(input)), nil
}

func (c *Context) builtinNow(args []literal) (interface{}, error) {
	t := c.clock()
	if len(args) == 0 {
		return dateValue(t), nil
	}
	if args[0].kind != litString {
		return nil, exjerrors.NewExpressionError("now() format argument must be a string")
	}
	return formatDate(t, args[0].str), nil
}

func (c *Context) builtinFileChecksum(args []literal) (interface{}, error) {
	if len(args) == 0 || args[0].kind != litString {
		return nil, exjerrors.NewExpressionError("file_checksum() requires a path argument")
	}
	path := args[0].str
	algo := "md5"
	if len(args) > 1 {
		if args[1].kind != litString {
			return nil, exjerrors.NewExpressionError("file_checksum() algo argument must be a string")
		}
		algo = args[1].str
	}
	if c.reader == nil {
		return nil, exjerrors.NewExpressionError("file_checksum() has no file reader configured")
	}
	data, err := c.reader.Read(path)
	if err != nil {
		return nil, exjerrors.NewExpressionError("file_checksum(): %s", err).WithFunction("file_checksum")
	}
	switch algo {
	case "md5":
		return hex.EncodeToString(md5sum(data)), nil
	case "sha1":
		return hex.EncodeToString(sha1sum(data)), nil
	case "sha256":
		return hex.EncodeToString(sha256sum(data)), nil
	case "sha512":
		return hex.EncodeToString(sha512sum(data)), nil
	default:
		return nil, exjerrors.NewExpressionError("unknown checksum algorithm %q", algo)
	}
}

func (c *Context) builtinSequence(args []literal) (interface{}, error) {
	if len(args) == 0 || args[0].kind != litString {
		return nil, exjerrors.NewExpressionError("sequence() requires a name argument")
	}
	name := args[0].str
	var format string
	hasFormat := false
	if len(args) > 1 && args[1].kind == litString {
		format = args[1].str
		hasFormat = true
	}
	step := int64(1)
	if len(args) > 2 && args[2].kind == litInt {
		step = args[2].num
	}
	v := c.sequences.Next(name, step)
	if hasFormat {
		return fmt.Sprintf(format, v), nil
	}
	return v, nil
}

// applyChainMethod applies one postfix .name(args) to the result of the
// preceding call or chain link.
func applyChainMethod(prev interface{}, m methodCall) (interface{}, error) {
	switch m.name {
	case "utc":
		t, ok := prev.(dateValue)
		if !ok {
			return nil, exjerrors.NewExpressionError(".utc() requires a datetime result")
		}
		return utcISO8601(time.Time(t).UTC()), nil
	case "add":
		t, ok := prev.(dateValue)
		if !ok {
			return nil, exjerrors.NewExpressionError(".add() requires a datetime result")
		}
		result := time.Time(t)
		format := ""
		hasFormat := false
		for _, a := range m.args {
			if a.key != "" {
				if a.kind != litInt {
					return nil, exjerrors.NewExpressionError(".add() duration %q must be an integer", a.key)
				}
				result = applyDuration(result, a.key, a.num)
				continue
			}
			if a.kind == litString {
				format = a.str
				hasFormat = true
			}
		}
		if hasFormat {
			return formatDate(result, format), nil
		}
		return nowISO8601(result), nil
	default:
		return nil, exjerrors.NewExpressionError("unknown chain method %q", m.name)
	}
}

// finalizeResult converts a still-chainable dateValue into its default
// string form, when no chain method consumed it.
func finalizeResult(v interface{}) interface{} {
	if d, ok := v.(dateValue); ok {
		return nowISO8601(time.Time(d))
	}
	return v
}
