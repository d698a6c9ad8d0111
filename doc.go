package apimodel

// Package apimodel converts loosely-typed nested input (maps, sequences,
// scalars of unknown shape) into strictly-typed, validated instances of
// declared record shapes, and reports every failure found in one pass:
//
// - Declaration via Builder (New(...).Field(...).Required()...Build())
//   producing an immutable Schema shared across construction attempts
// - Recursive coercion of scalars, optionals, unions, sequences, mappings,
//   and nested schemas
// - Ordered validators: root-initial -> per-field -> root-final, synchronous
//   or suspension-capable (context) variants
// - A stable error model via Issues (JSON Pointer, code, message, cause)
//
// Design policy:
// - Keep the whole engine API in the root package; put the JSON Schema
//   projection under jsonschema/.
// - The engine performs no I/O of its own; DecodeJSON/DecodeYAML are thin
//   producers of the generic input form.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  user := apimodel.New("User").
//      Field("id", apimodel.Int()).Required().
//      Field("name", apimodel.String()).Default("Anonymous").
//      MustBuild()
//
//  inst, err := user.Construct(map[string]any{"id": "123"}, nil)
//  out := inst.AsMap() // {"id": 123, "name": "Anonymous"}
