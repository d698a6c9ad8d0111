package apimodel

// Instance is one successfully constructed record: coerced field values keyed
// by internal name plus resolved extra slots. Instances are produced only by
// the construction entry points and are read-only thereafter.
type Instance struct {
	schema *Schema
	values map[string]any
	extras map[string]any
}

// Schema returns the record shape this instance was constructed from.
func (in *Instance) Schema() *Schema { return in.schema }

// Get returns a field value by internal name. ok is false for undeclared names
// and for optional fields absent from the input.
func (in *Instance) Get(name string) (any, bool) {
	if _, declared := in.schema.byName[name]; !declared {
		return nil, false
	}
	v, ok := in.values[name]
	return v, ok
}

// Extra returns a resolved extra-slot value by name.
func (in *Instance) Extra(name string) (any, bool) {
	v, ok := in.extras[name]
	return v, ok
}

// AsMap projects the instance back into the generic nested form: field values
// under their external names, hidden fields and extra slots omitted, nested
// instances recursed.
func (in *Instance) AsMap() map[string]any {
	out := make(map[string]any, len(in.values))
	for _, f := range in.schema.fields {
		if f.hidden {
			continue
		}
		v, ok := in.values[f.name]
		if !ok {
			continue
		}
		out[f.alias] = projectValue(v)
	}
	return out
}

func projectValue(v any) any {
	switch t := v.(type) {
	case *Instance:
		return t.AsMap()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = projectValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = projectValue(e)
		}
		return out
	default:
		return v
	}
}
