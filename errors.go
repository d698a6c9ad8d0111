package apimodel

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeInvalidFormat = "invalid_format"
	CodeInvalidEnum   = "invalid_enum"
	CodeUnionMismatch = "union_mismatch"
	CodeValidator     = "validator_failed"
	CodeParseError    = "parse_error"
)

// rootPath is the JSON Pointer of the whole input. Root-level failures are
// recorded here.
const rootPath = "/"

// Issue represents a single construction failure at one location.
type Issue struct {
	Path    string // JSON Pointer (for example: /location/lng).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
}

// Issues is the aggregated report of one construction attempt. It implements
// error and preserves the order in which failures were recorded.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// childPath appends a field segment to a JSON Pointer.
func childPath(base, seg string) string {
	if base == "" || base == rootPath {
		return "/" + seg
	}
	return base + "/" + seg
}

// indexPath appends a sequence index segment to a JSON Pointer.
func indexPath(base string, i int) string {
	return childPath(base, strconv.Itoa(i))
}

// rebaseIssues re-homes a child report under the given base path, preserving
// full-path traceability to the root input.
func rebaseIssues(base string, child Issues) Issues {
	if base == "" || base == rootPath {
		return child
	}
	out := make(Issues, 0, len(child))
	for _, it := range child {
		p := it.Path
		switch {
		case p == "" || p == rootPath:
			p = base
		case p[0] == '/':
			p = base + p
		default:
			p = base + "/" + p
		}
		out = append(out, Issue{Path: p, Code: it.Code, Message: it.Message, Cause: it.Cause})
	}
	return out
}

// issueFromErr converts an arbitrary error into report entries at path. Child
// Issues are rebased; anything else becomes a single validator_failed entry.
func issueFromErr(path string, err error) Issues {
	if err == nil {
		return nil
	}
	if child, ok := AsIssues(err); ok {
		return rebaseIssues(path, child)
	}
	return Issues{{Path: path, Code: CodeValidator, Message: err.Error(), Cause: err}}
}

// SchemaError reports an invalid schema declaration. It is returned once by
// Build and wraps every problem found (duplicate names or aliases, missing
// types, validators attached to undeclared fields).
type SchemaError struct {
	Model string
	Err   error
}

func (e *SchemaError) Error() string {
	return "apimodel: invalid schema " + strconv.Quote(e.Model) + ": " + e.Err.Error()
}

func (e *SchemaError) Unwrap() error { return e.Err }

// ErrContextRequired is returned by the synchronous entry points when the
// schema carries at least one context validator. Such schemas must be
// constructed through ConstructCtx.
var ErrContextRequired = errors.New("apimodel: schema has context validators; use ConstructCtx")

// ErrMissingExtra is returned when a declared extra slot has no default and the
// caller supplied no value for it. Extras come from the caller's side channel,
// so this is a usage error rather than an input failure and never enters the
// aggregated report.
var ErrMissingExtra = errors.New("apimodel: missing extra value")
