package apimodel

import "context"

// FieldFunc is a synchronous field validator. It receives the already-coerced
// value and returns the (possibly replaced) value or an error.
type FieldFunc func(v any) (any, error)

// FieldCtxFunc is the context (suspension-capable) form of FieldFunc.
type FieldCtxFunc func(ctx context.Context, v any) (any, error)

// RootFunc is a synchronous root validator. It receives the whole working
// mapping and returns a replacement mapping or an error. Root-initial
// validators see the raw external-name mapping; root-final validators see the
// coerced internal-name mapping.
type RootFunc func(values map[string]any) (map[string]any, error)

// RootCtxFunc is the context (suspension-capable) form of RootFunc.
type RootCtxFunc func(ctx context.Context, values map[string]any) (map[string]any, error)

// fieldCheck is one tagged field validator entry. Exactly one of fn/fnCtx is
// set; fnCtx marks the entry as suspension-capable.
type fieldCheck struct {
	fn    FieldFunc
	fnCtx FieldCtxFunc
}

func (c fieldCheck) usesContext() bool { return c.fnCtx != nil }

func (c fieldCheck) run(ctx context.Context, v any) (any, error) {
	if c.fnCtx != nil {
		return c.fnCtx(ctx, v)
	}
	return c.fn(v)
}

// rootCheck is one tagged root validator entry.
type rootCheck struct {
	fn    RootFunc
	fnCtx RootCtxFunc
}

func (c rootCheck) usesContext() bool { return c.fnCtx != nil }

func (c rootCheck) run(ctx context.Context, values map[string]any) (map[string]any, error) {
	if c.fnCtx != nil {
		return c.fnCtx(ctx, values)
	}
	return c.fn(values)
}
