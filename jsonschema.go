package apimodel

import (
	js "github.com/reoring/apimodel/jsonschema"
)

// JSONSchema projects the record shape into a JSON Schema representation of
// its input form: every field under its external name, required list in
// declaration order. Extra slots never appear (they are not input).
func (s *Schema) JSONSchema() *js.Schema {
	props := make(map[string]*js.Schema, len(s.fields))
	var required []string
	for _, f := range s.fields {
		fs := f.tp.schema()
		if f.hasDefault {
			fs.Default = f.defaultValue
		}
		props[f.alias] = fs
		if f.required {
			required = append(required, f.alias)
		}
	}
	return &js.Schema{Type: "object", Properties: props, Required: required}
}

func (stringType) schema() *js.Schema   { return &js.Schema{Type: "string"} }
func (intType) schema() *js.Schema      { return &js.Schema{Type: "integer"} }
func (floatType) schema() *js.Schema    { return &js.Schema{Type: "number"} }
func (boolType) schema() *js.Schema     { return &js.Schema{Type: "boolean"} }
func (timeType) schema() *js.Schema     { return &js.Schema{Type: "string", Format: "date-time"} }
func (durationType) schema() *js.Schema { return &js.Schema{Type: "string", Format: "duration"} }
func (anyType) schema() *js.Schema      { return &js.Schema{} }

func (t literalType) schema() *js.Schema {
	return &js.Schema{Enum: append([]any(nil), t.values...)}
}

// Optional projects as its element; our minimal Schema does not model null
// unions, matching the runtime behavior where nil simply stays nil.
func (t optionalType) schema() *js.Schema { return t.elem.schema() }

func (t sliceType) schema() *js.Schema {
	return &js.Schema{Type: "array", Items: t.elem.schema()}
}

func (t mapType) schema() *js.Schema {
	return &js.Schema{Type: "object", AdditionalProperties: t.val.schema()}
}

func (t unionType) schema() *js.Schema {
	one := make([]*js.Schema, 0, len(t.alts))
	for _, a := range t.alts {
		one = append(one, a.schema())
	}
	return &js.Schema{OneOf: one}
}

func (t modelType) schema() *js.Schema { return t.s.JSONSchema() }
