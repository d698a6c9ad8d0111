package apimodel

// Field is the immutable descriptor of one declared attribute: internal name,
// external (wire) alias, coercion target, default or required marker, hidden
// flag, and the ordered validators attached to it.
type Field struct {
	name         string
	alias        string
	tp           Type
	required     bool
	hasDefault   bool
	defaultValue any
	hidden       bool
	checks       []fieldCheck
	meta         map[string]any
}

// Name returns the internal name.
func (f *Field) Name() string { return f.name }

// Alias returns the external (wire) name. It equals Name unless an alias was
// declared.
func (f *Field) Alias() string { return f.alias }

// Type returns the declared coercion target.
func (f *Field) Type() Type { return f.tp }

// Required reports whether the field must be present in the input.
func (f *Field) Required() bool { return f.required }

// Hidden reports whether the field is excluded from output projection.
func (f *Field) Hidden() bool { return f.hidden }

// Default returns the declared default value, if any.
func (f *Field) Default() (any, bool) { return f.defaultValue, f.hasDefault }

// Meta looks up open per-field metadata attached by the builder. Sub-shapes use
// it to carry field-descriptor variants without a dedicated type.
func (f *Field) Meta(key string) (any, bool) {
	v, ok := f.meta[key]
	return v, ok
}

// Extra is the descriptor of one extra slot: a named value injected from the
// caller's side channel at construction time. Extras are never read from the
// input mapping, never emitted by AsMap, and never appear in the aggregated
// report. An extra without a default is required from the caller.
type Extra struct {
	name         string
	hasDefault   bool
	defaultValue any
}

// Name returns the extra slot name.
func (e *Extra) Name() string { return e.name }

// Default returns the declared default value, if any.
func (e *Extra) Default() (any, bool) { return e.defaultValue, e.hasDefault }

// Required reports whether the caller must supply this extra.
func (e *Extra) Required() bool { return !e.hasDefault }

// Schema is the immutable descriptor of a record shape. It is built once per
// shape and safely shared across arbitrarily many concurrent construction
// attempts; nothing mutates it after Build.
type Schema struct {
	name        string
	fields      []*Field
	byName      map[string]int
	byAlias     map[string]int
	extras      []*Extra
	rootInitial []rootCheck
	rootFinal   []rootCheck
	usesCtx     bool
}

// Name returns the record shape name.
func (s *Schema) Name() string { return s.name }

// Fields returns the field table in declaration order. The slice is a copy;
// descriptors themselves are read-only.
func (s *Schema) Fields() []*Field {
	out := make([]*Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// FieldByName looks a field up by internal name.
func (s *Schema) FieldByName(name string) (*Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.fields[i], true
}

// Extras returns the declared extra slots in declaration order.
func (s *Schema) Extras() []*Extra {
	out := make([]*Extra, len(s.extras))
	copy(out, s.extras)
	return out
}

// UsesContext reports whether any validator reachable from this schema
// (including nested schemas) is suspension-capable. Such schemas reject the
// synchronous entry points with ErrContextRequired.
func (s *Schema) UsesContext() bool { return s.usesCtx }
