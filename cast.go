package apimodel

import "context"

// Cast coerces a single standalone value to the given target, outside any
// schema. Targets that can reach context validators (nested schemas) are
// rejected with ErrContextRequired.
func Cast(tp Type, v any) (any, error) {
	if tp.usesContext() {
		return nil, ErrContextRequired
	}
	return CastCtx(context.Background(), tp, v)
}

// CastCtx is the suspension-capable form of Cast.
func CastCtx(ctx context.Context, tp Type, v any) (any, error) {
	st := &constructState{}
	out, iss, err := tp.coerce(ctx, st, v, rootPath)
	if err != nil {
		return nil, err
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}
