package apimodel

import (
	"fmt"

	"go.uber.org/multierr"
)

// Builder declares a record shape. Declaration order of fields and validators
// is preserved into the schema: it determines coercion order, validator
// execution order, and report order. A builder is single-use; Build freezes the
// declaration into an immutable Schema.
type Builder struct {
	name        string
	fields      []*Field
	byName      map[string]int
	extras      []*Extra
	rootInitial []rootCheck
	rootFinal   []rootCheck
	pending     []pendingCheck
	errs        []error
}

// pendingCheck is a validator attached by field name before Build resolves it.
type pendingCheck struct {
	field string
	check fieldCheck
}

// New starts the declaration of a record shape.
func New(name string) *Builder {
	return &Builder{name: name, byName: map[string]int{}}
}

// Field declares a field with its coercion target and returns a step for
// field-scoped options.
func (b *Builder) Field(name string, tp Type) *FieldStep {
	f := &Field{name: name, alias: name, tp: tp}
	if name == "" {
		b.errs = append(b.errs, fmt.Errorf("field with empty name"))
	} else if _, dup := b.byName[name]; dup {
		b.errs = append(b.errs, fmt.Errorf("duplicate field %q", name))
	} else {
		b.byName[name] = len(b.fields)
	}
	if tp == nil {
		b.errs = append(b.errs, fmt.Errorf("field %q: nil type", name))
	}
	b.fields = append(b.fields, f)
	return &FieldStep{b: b, f: f}
}

// FieldStep scopes builder options to the most recently declared field.
type FieldStep struct {
	b *Builder
	f *Field
}

// Alias sets the external (wire) name of the field.
func (fs *FieldStep) Alias(alias string) *FieldStep {
	fs.f.alias = alias
	return fs
}

// Required marks the field as required: absence with no default is a report
// entry tagged required.
func (fs *FieldStep) Required() *FieldStep {
	fs.f.required = true
	return fs
}

// Default declares the value used when the field is absent from the input. The
// default runs through coercion like any raw value.
func (fs *FieldStep) Default(v any) *FieldStep {
	fs.f.hasDefault = true
	fs.f.defaultValue = v
	return fs
}

// Hidden excludes the field from output projection. It still participates in
// construction.
func (fs *FieldStep) Hidden() *FieldStep {
	fs.f.hidden = true
	return fs
}

// Meta attaches open metadata to the field descriptor.
func (fs *FieldStep) Meta(key string, v any) *FieldStep {
	if fs.f.meta == nil {
		fs.f.meta = map[string]any{}
	}
	fs.f.meta[key] = v
	return fs
}

// Check attaches a synchronous validator to this field, in declaration order.
func (fs *FieldStep) Check(fn FieldFunc) *FieldStep {
	fs.f.checks = append(fs.f.checks, fieldCheck{fn: fn})
	return fs
}

// CheckCtx attaches a suspension-capable validator to this field. Schemas with
// any such validator must be constructed via ConstructCtx.
func (fs *FieldStep) CheckCtx(fn FieldCtxFunc) *FieldStep {
	fs.f.checks = append(fs.f.checks, fieldCheck{fnCtx: fn})
	return fs
}

// Builder pass-throughs so chains can continue from a field step.
func (fs *FieldStep) Field(name string, tp Type) *FieldStep { return fs.b.Field(name, tp) }
func (fs *FieldStep) Extra(name string) *ExtraStep          { return fs.b.Extra(name) }
func (fs *FieldStep) Build() (*Schema, error)               { return fs.b.Build() }
func (fs *FieldStep) MustBuild() *Schema                    { return fs.b.MustBuild() }
func (fs *FieldStep) PreRoot(fn RootFunc) *Builder          { return fs.b.PreRoot(fn) }
func (fs *FieldStep) PreRootCtx(fn RootCtxFunc) *Builder    { return fs.b.PreRootCtx(fn) }
func (fs *FieldStep) PostRoot(fn RootFunc) *Builder         { return fs.b.PostRoot(fn) }
func (fs *FieldStep) PostRootCtx(fn RootCtxFunc) *Builder   { return fs.b.PostRootCtx(fn) }

// ExtraStep scopes builder options to the most recently declared extra slot.
type ExtraStep struct {
	b *Builder
	e *Extra
}

// Extra declares an extra slot filled from the caller-supplied side channel.
// Without a default the caller must supply it at construction time.
func (b *Builder) Extra(name string) *ExtraStep {
	e := &Extra{name: name}
	for _, prev := range b.extras {
		if prev.name == name {
			b.errs = append(b.errs, fmt.Errorf("duplicate extra %q", name))
		}
	}
	b.extras = append(b.extras, e)
	return &ExtraStep{b: b, e: e}
}

// Default makes the extra optional, falling back to v.
func (es *ExtraStep) Default(v any) *ExtraStep {
	es.e.hasDefault = true
	es.e.defaultValue = v
	return es
}

// Builder pass-throughs so chains can continue from an extra step.
func (es *ExtraStep) Field(name string, tp Type) *FieldStep { return es.b.Field(name, tp) }
func (es *ExtraStep) Extra(name string) *ExtraStep          { return es.b.Extra(name) }
func (es *ExtraStep) Build() (*Schema, error)               { return es.b.Build() }
func (es *ExtraStep) MustBuild() *Schema                    { return es.b.MustBuild() }
func (es *ExtraStep) PreRoot(fn RootFunc) *Builder          { return es.b.PreRoot(fn) }
func (es *ExtraStep) PostRoot(fn RootFunc) *Builder         { return es.b.PostRoot(fn) }

// Check attaches a synchronous validator to the named field. Attaching to an
// undeclared name is a build error.
func (b *Builder) Check(field string, fn FieldFunc) *Builder {
	b.pending = append(b.pending, pendingCheck{field: field, check: fieldCheck{fn: fn}})
	return b
}

// CheckCtx attaches a suspension-capable validator to the named field.
func (b *Builder) CheckCtx(field string, fn FieldCtxFunc) *Builder {
	b.pending = append(b.pending, pendingCheck{field: field, check: fieldCheck{fnCtx: fn}})
	return b
}

// PreRoot attaches a root-initial validator: it transforms the raw
// external-name mapping before any field coercion, and its failure aborts the
// whole attempt.
func (b *Builder) PreRoot(fn RootFunc) *Builder {
	b.rootInitial = append(b.rootInitial, rootCheck{fn: fn})
	return b
}

// PreRootCtx is the suspension-capable form of PreRoot.
func (b *Builder) PreRootCtx(fn RootCtxFunc) *Builder {
	b.rootInitial = append(b.rootInitial, rootCheck{fnCtx: fn})
	return b
}

// PostRoot attaches a root-final validator over the fully coerced and
// field-validated internal-name mapping.
func (b *Builder) PostRoot(fn RootFunc) *Builder {
	b.rootFinal = append(b.rootFinal, rootCheck{fn: fn})
	return b
}

// PostRootCtx is the suspension-capable form of PostRoot.
func (b *Builder) PostRootCtx(fn RootCtxFunc) *Builder {
	b.rootFinal = append(b.rootFinal, rootCheck{fnCtx: fn})
	return b
}

// Build freezes the declaration. Every problem found is reported in one
// *SchemaError; a declaration error is fatal and never becomes a per-instance
// report entry.
func (b *Builder) Build() (*Schema, error) {
	errs := append([]error(nil), b.errs...)

	// alias collisions across the external namespace
	seenAlias := make(map[string]string, len(b.fields))
	for _, f := range b.fields {
		if other, dup := seenAlias[f.alias]; dup {
			errs = append(errs, fmt.Errorf("fields %q and %q collide on alias %q", other, f.name, f.alias))
			continue
		}
		seenAlias[f.alias] = f.name
	}

	// extras may not shadow declared fields
	for _, e := range b.extras {
		if _, clash := b.byName[e.name]; clash {
			errs = append(errs, fmt.Errorf("extra %q shadows a declared field", e.name))
		}
	}

	// resolve name-attached validators; orphans are declaration errors
	for _, pc := range b.pending {
		i, ok := b.byName[pc.field]
		if !ok {
			errs = append(errs, fmt.Errorf("validator attached to undeclared field %q", pc.field))
			continue
		}
		f := b.fields[i]
		f.checks = append(f.checks, pc.check)
	}

	if len(errs) > 0 {
		return nil, &SchemaError{Model: b.name, Err: multierr.Combine(errs...)}
	}

	s := &Schema{
		name:        b.name,
		fields:      append([]*Field(nil), b.fields...),
		byName:      make(map[string]int, len(b.fields)),
		byAlias:     make(map[string]int, len(b.fields)),
		extras:      append([]*Extra(nil), b.extras...),
		rootInitial: append([]rootCheck(nil), b.rootInitial...),
		rootFinal:   append([]rootCheck(nil), b.rootFinal...),
	}
	for i, f := range s.fields {
		s.byName[f.name] = i
		s.byAlias[f.alias] = i
	}
	s.usesCtx = schemaUsesContext(s)
	return s, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

func schemaUsesContext(s *Schema) bool {
	for _, rc := range s.rootInitial {
		if rc.usesContext() {
			return true
		}
	}
	for _, rc := range s.rootFinal {
		if rc.usesContext() {
			return true
		}
	}
	for _, f := range s.fields {
		for _, c := range f.checks {
			if c.usesContext() {
				return true
			}
		}
		if f.tp != nil && f.tp.usesContext() {
			return true
		}
	}
	return false
}
