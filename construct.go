package apimodel

import (
	"context"
	"fmt"
)

// Extras is the caller-supplied side channel for extra slots. Values are
// matched by declared extra name, never read from the input mapping.
type Extras map[string]any

// constructState is the per-attempt state threaded through coercion; it
// carries the caller's extras side channel down to nested schemas.
type constructState struct {
	extras Extras
}

// Construct runs the strictly synchronous construction path:
// root-initial validators, per-field coercion and validation in declaration
// order, root-final validators, extras injection. Every independent failure is
// aggregated into one Issues report. Schemas carrying context validators are
// rejected with ErrContextRequired.
func (s *Schema) Construct(in map[string]any, extras Extras) (*Instance, error) {
	if s.usesCtx {
		return nil, ErrContextRequired
	}
	return s.construct(context.Background(), in, extras)
}

// ConstructCtx runs the suspension-capable construction path. It awaits each
// context validator in place, preserving the same stage and declaration
// ordering as Construct. Cancellation abandons the attempt: no partial
// instance is produced and the partial report is discarded.
func (s *Schema) ConstructCtx(ctx context.Context, in map[string]any, extras Extras) (*Instance, error) {
	return s.construct(ctx, in, extras)
}

func (s *Schema) construct(ctx context.Context, in map[string]any, extras Extras) (*Instance, error) {
	st := &constructState{extras: extras}
	inst, iss, err := s.constructValue(ctx, st, in)
	if err != nil {
		return nil, err
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return inst, nil
}

// constructValue drives one construction attempt over one schema. Issue paths
// are relative to this schema's root; nested callers rebase them. The error
// return aborts the attempt outright (cancellation or a missing extra) and
// discards any partially accumulated report.
func (s *Schema) constructValue(ctx context.Context, st *constructState, in map[string]any) (*Instance, Issues, error) {
	// Start: resolve extra slots from the side channel before any validation.
	var extras map[string]any
	if len(s.extras) > 0 {
		extras = make(map[string]any, len(s.extras))
		for _, ex := range s.extras {
			if v, ok := st.extras[ex.name]; ok {
				extras[ex.name] = v
				continue
			}
			if ex.hasDefault {
				extras[ex.name] = ex.defaultValue
				continue
			}
			return nil, nil, fmt.Errorf("%w: %q for model %q", ErrMissingExtra, ex.name, s.name)
		}
	}

	working := make(map[string]any, len(in))
	for k, v := range in {
		working[k] = v
	}

	// RootInitial: the whole-input shape is unreliable after a failure here,
	// so this is the one stage that short-circuits.
	for _, rc := range s.rootInitial {
		next, err := s.runRoot(ctx, rc, working)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, nil, ctxErr
			}
			return nil, issueFromErr(rootPath, err), nil
		}
		working = next
	}

	var report Issues

	// FieldPass: every field is attempted regardless of earlier failures.
	values := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		raw, present := working[f.alias]
		if !present {
			if f.hasDefault {
				raw = f.defaultValue
			} else {
				if f.required {
					report = AppendIssues(report, Issue{
						Path:    childPath("", f.alias),
						Code:    CodeRequired,
						Message: "required field missing",
					})
				}
				continue
			}
		}

		fpath := childPath("", f.alias)
		v, ciss, err := f.tp.coerce(ctx, st, raw, fpath)
		if err != nil {
			return nil, nil, err
		}
		if len(ciss) > 0 {
			report = AppendIssues(report, ciss...)
			continue
		}

		v, ciss, err = s.runFieldChecks(ctx, f, v, fpath)
		if err != nil {
			return nil, nil, err
		}
		if len(ciss) > 0 {
			report = AppendIssues(report, ciss...)
			continue
		}
		values[f.name] = v
	}

	// RootFinal: failures are recorded at the root location; later root-final
	// validators still run.
	for _, rc := range s.rootFinal {
		next, err := s.runRoot(ctx, rc, values)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, nil, ctxErr
			}
			report = AppendIssues(report, issueFromErr(rootPath, err)...)
			continue
		}
		values = next
	}

	// Done: a non-empty report fails the attempt with the full ordered list.
	if len(report) > 0 {
		return nil, report, nil
	}
	return &Instance{schema: s, values: values, extras: extras}, nil, nil
}

// runFieldChecks applies the field's validators in attachment order. The first
// failure stops the remaining checks for this field; sibling fields are
// unaffected.
func (s *Schema) runFieldChecks(ctx context.Context, f *Field, v any, fpath string) (any, Issues, error) {
	for _, c := range f.checks {
		if c.usesContext() {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
		next, err := c.run(ctx, v)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, nil, ctxErr
			}
			return nil, issueFromErr(fpath, err), nil
		}
		v = next
	}
	return v, nil, nil
}

func (s *Schema) runRoot(ctx context.Context, rc rootCheck, values map[string]any) (map[string]any, error) {
	if rc.usesContext() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return rc.run(ctx, values)
}
