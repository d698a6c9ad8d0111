package apimodel

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	js "github.com/reoring/apimodel/jsonschema"
)

// Type describes the coercion target of a field: how a raw value is converted,
// how the target is named in messages, and how it projects into JSON Schema.
// Types are immutable and safe to share between schemas.
type Type interface {
	// coerce converts v into the target type at the given location. Failures
	// are recorded as Issues so sibling locations still get evaluated; the
	// error return is reserved for hard aborts (cancellation, missing extras)
	// that discard the whole attempt.
	coerce(ctx context.Context, st *constructState, v any, path string) (any, Issues, error)
	// usesContext reports whether coercion can reach a context validator
	// (through a nested schema).
	usesContext() bool
	name() string
	schema() *js.Schema
}

// String declares a string target. Scalar raw values (numbers, bools) convert
// via their canonical text form; mappings and sequences are rejected.
func String() Type { return stringType{} }

// Int declares an integer target. Accepts integers, numeric strings, and
// floats (truncated toward zero).
func Int() Type { return intType{} }

// Float declares a float target. Accepts numbers and numeric strings.
func Float() Type { return floatType{} }

// Bool declares a bool target. Accepts bools, "true"/"false"-style strings,
// and 0/1 numbers.
func Bool() Type { return boolType{} }

// Time declares a timezone-aware instant target. Accepts time.Time, UNIX
// seconds (number or numeric string), and RFC3339/ISO-8601 strings; the result
// is normalized to UTC.
func Time() Type { return timeType{} }

// Duration declares a duration target. Accepts time.Duration, seconds as a
// number or numeric string, and Go duration strings such as "1h30m".
func Duration() Type { return durationType{} }

// Any declares a passthrough target; the raw value is kept as-is.
func Any() Type { return anyType{} }

// Literal declares a membership target: the raw value must equal one of the
// given values.
func Literal(values ...any) Type { return literalType{values: values} }

// Optional wraps a target so that nil coerces to nil without recursing.
func Optional(elem Type) Type { return optionalType{elem: elem} }

// SliceOf declares an ordered sequence target. Elements are coerced
// independently; one bad element does not stop evaluation of the rest, but any
// element failure fails the whole field.
func SliceOf(elem Type) Type { return sliceType{elem: elem} }

// MapOf declares a mapping target with coerced keys and values.
func MapOf(key, val Type) Type { return mapType{key: key, val: val} }

// UnionOf declares an ordered union target. Alternatives are attempted in
// declaration order; the first success wins.
func UnionOf(alts ...Type) Type { return unionType{alts: alts} }

// ModelOf declares a nested record target backed by an already-built schema.
func ModelOf(s *Schema) Type { return modelType{s: s} }

type (
	stringType   struct{}
	intType      struct{}
	floatType    struct{}
	boolType     struct{}
	timeType     struct{}
	durationType struct{}
	anyType      struct{}
	literalType  struct{ values []any }
	optionalType struct{ elem Type }
	sliceType    struct{ elem Type }
	mapType      struct{ key, val Type }
	unionType    struct{ alts []Type }
	modelType    struct{ s *Schema }
)

func (stringType) name() string   { return "string" }
func (intType) name() string      { return "int" }
func (floatType) name() string    { return "float" }
func (boolType) name() string     { return "bool" }
func (timeType) name() string     { return "time" }
func (durationType) name() string { return "duration" }
func (anyType) name() string      { return "any" }
func (literalType) name() string  { return "literal" }
func (t optionalType) name() string {
	return "optional[" + t.elem.name() + "]"
}
func (t sliceType) name() string { return "sequence[" + t.elem.name() + "]" }
func (t mapType) name() string   { return "mapping[" + t.key.name() + ", " + t.val.name() + "]" }
func (t unionType) name() string {
	n := "union["
	for i, a := range t.alts {
		if i > 0 {
			n += ", "
		}
		n += a.name()
	}
	return n + "]"
}
func (t modelType) name() string { return t.s.name }

func (stringType) usesContext() bool   { return false }
func (intType) usesContext() bool      { return false }
func (floatType) usesContext() bool    { return false }
func (boolType) usesContext() bool     { return false }
func (timeType) usesContext() bool     { return false }
func (durationType) usesContext() bool { return false }
func (anyType) usesContext() bool      { return false }
func (literalType) usesContext() bool  { return false }
func (t optionalType) usesContext() bool {
	return t.elem.usesContext()
}
func (t sliceType) usesContext() bool { return t.elem.usesContext() }
func (t mapType) usesContext() bool   { return t.key.usesContext() || t.val.usesContext() }
func (t unionType) usesContext() bool {
	for _, a := range t.alts {
		if a.usesContext() {
			return true
		}
	}
	return false
}
func (t modelType) usesContext() bool { return t.s.usesCtx }

func invalidType(path, want string, got any) Issues {
	return Issues{{Path: path, Code: CodeInvalidType, Message: fmt.Sprintf("expected %s, got %T", want, got)}}
}

func (stringType) coerce(_ context.Context, _ *constructState, v any, path string) (any, Issues, error) {
	s, err := toString(v)
	if err != nil {
		return nil, Issues{{Path: path, Code: CodeInvalidType, Message: err.Error(), Cause: err}}, nil
	}
	return s, nil, nil
}

func (intType) coerce(_ context.Context, _ *constructState, v any, path string) (any, Issues, error) {
	n, err := toInt64(v)
	if err != nil {
		return nil, Issues{{Path: path, Code: CodeInvalidType, Message: err.Error(), Cause: err}}, nil
	}
	return n, nil, nil
}

func (floatType) coerce(_ context.Context, _ *constructState, v any, path string) (any, Issues, error) {
	f, err := toFloat64(v)
	if err != nil {
		return nil, Issues{{Path: path, Code: CodeInvalidType, Message: err.Error(), Cause: err}}, nil
	}
	return f, nil, nil
}

func (boolType) coerce(_ context.Context, _ *constructState, v any, path string) (any, Issues, error) {
	b, err := toBool(v)
	if err != nil {
		return nil, Issues{{Path: path, Code: CodeInvalidType, Message: err.Error(), Cause: err}}, nil
	}
	return b, nil, nil
}

func (timeType) coerce(_ context.Context, _ *constructState, v any, path string) (any, Issues, error) {
	ts, err := toTime(v)
	if err != nil {
		return nil, Issues{{Path: path, Code: CodeInvalidFormat, Message: err.Error(), Cause: err}}, nil
	}
	return ts, nil, nil
}

func (durationType) coerce(_ context.Context, _ *constructState, v any, path string) (any, Issues, error) {
	d, err := toDuration(v)
	if err != nil {
		return nil, Issues{{Path: path, Code: CodeInvalidFormat, Message: err.Error(), Cause: err}}, nil
	}
	return d, nil, nil
}

func (anyType) coerce(_ context.Context, _ *constructState, v any, _ string) (any, Issues, error) {
	return v, nil, nil
}

func (t literalType) coerce(_ context.Context, _ *constructState, v any, path string) (any, Issues, error) {
	for _, want := range t.values {
		if equalScalar(v, want) {
			return want, nil, nil
		}
	}
	return nil, Issues{{Path: path, Code: CodeInvalidEnum, Message: fmt.Sprintf("expected one of %v, got %v", t.values, v)}}, nil
}

func (t optionalType) coerce(ctx context.Context, st *constructState, v any, path string) (any, Issues, error) {
	if v == nil {
		return nil, nil, nil
	}
	return t.elem.coerce(ctx, st, v, path)
}

func (t sliceType) coerce(ctx context.Context, st *constructState, v any, path string) (any, Issues, error) {
	elems, ok := asSequence(v)
	if !ok {
		return nil, invalidType(path, t.name(), v), nil
	}
	out := make([]any, 0, len(elems))
	var iss Issues
	for i, raw := range elems {
		cv, ciss, err := t.elem.coerce(ctx, st, raw, indexPath(path, i))
		if err != nil {
			return nil, nil, err
		}
		if len(ciss) > 0 {
			iss = AppendIssues(iss, ciss...)
			continue
		}
		out = append(out, cv)
	}
	if len(iss) > 0 {
		return nil, iss, nil
	}
	return out, nil, nil
}

func (t mapType) coerce(ctx context.Context, st *constructState, v any, path string) (any, Issues, error) {
	src, ok := v.(map[string]any)
	if !ok {
		return nil, invalidType(path, t.name(), v), nil
	}
	out := make(map[string]any, len(src))
	var iss Issues
	for _, k := range sortedKeys(src) {
		kp := childPath(path, k)
		ck, kiss, err := t.key.coerce(ctx, st, k, kp)
		if err != nil {
			return nil, nil, err
		}
		if len(kiss) > 0 {
			iss = AppendIssues(iss, kiss...)
			continue
		}
		cv, viss, err := t.val.coerce(ctx, st, src[k], kp)
		if err != nil {
			return nil, nil, err
		}
		if len(viss) > 0 {
			iss = AppendIssues(iss, viss...)
			continue
		}
		out[keyString(ck)] = cv
	}
	if len(iss) > 0 {
		return nil, iss, nil
	}
	return out, nil, nil
}

func (t unionType) coerce(ctx context.Context, st *constructState, v any, path string) (any, Issues, error) {
	var alts []error
	for _, a := range t.alts {
		cv, iss, err := a.coerce(ctx, st, v, path)
		if err != nil {
			return nil, nil, err
		}
		if len(iss) == 0 {
			return cv, nil, nil
		}
		alts = append(alts, fmt.Errorf("%s: %w", a.name(), iss))
	}
	return nil, Issues{{
		Path:    path,
		Code:    CodeUnionMismatch,
		Message: "no union alternative matched",
		Cause:   multierr.Combine(alts...),
	}}, nil
}

func (t modelType) coerce(ctx context.Context, st *constructState, v any, path string) (any, Issues, error) {
	if inst, ok := v.(*Instance); ok && inst.schema == t.s {
		return inst, nil, nil
	}
	src, ok := v.(map[string]any)
	if !ok {
		return nil, invalidType(path, "mapping", v), nil
	}
	// Extras propagate only where the nested schema re-declares them; the full
	// side channel is forwarded and the nested schema picks what it knows.
	inst, iss, err := t.s.constructValue(ctx, st, src)
	if err != nil {
		return nil, nil, err
	}
	if len(iss) > 0 {
		return nil, rebaseIssues(path, iss), nil
	}
	return inst, nil, nil
}
