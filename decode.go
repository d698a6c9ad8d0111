package apimodel

import (
	"bytes"
	"context"
	"encoding/json"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// DecodeJSON decodes a JSON document into the generic mapping form the
// construction entry points consume. Numbers are preserved as json.Number so
// coercion decides their final width.
func DecodeJSON(b []byte) (map[string]any, error) {
	dec := gojson.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, Issues{{Path: rootPath, Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	m, ok := normalizeDecoded(v).(map[string]any)
	if !ok {
		return nil, Issues{{Path: rootPath, Code: CodeInvalidType, Message: "expected object"}}
	}
	return m, nil
}

// DecodeYAML decodes a YAML document into the generic mapping form. YAML is an
// alternate raw-input producer; construction semantics are identical.
func DecodeYAML(b []byte) (map[string]any, error) {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, Issues{{Path: rootPath, Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, Issues{{Path: rootPath, Code: CodeInvalidType, Message: "expected mapping"}}
	}
	return m, nil
}

// normalizeDecoded rewrites driver-specific number types to encoding/json's
// Number so the coercers switch on one representation.
func normalizeDecoded(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeDecoded(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeDecoded(e)
		}
		return t
	case gojson.Number:
		return json.Number(t)
	default:
		return v
	}
}

// ConstructJSON decodes a JSON document and constructs synchronously.
func (s *Schema) ConstructJSON(b []byte, extras Extras) (*Instance, error) {
	m, err := DecodeJSON(b)
	if err != nil {
		return nil, err
	}
	return s.Construct(m, extras)
}

// ConstructJSONCtx decodes a JSON document and constructs on the
// suspension-capable path.
func (s *Schema) ConstructJSONCtx(ctx context.Context, b []byte, extras Extras) (*Instance, error) {
	m, err := DecodeJSON(b)
	if err != nil {
		return nil, err
	}
	return s.ConstructCtx(ctx, m, extras)
}

// ConstructYAML decodes a YAML document and constructs synchronously.
func (s *Schema) ConstructYAML(b []byte, extras Extras) (*Instance, error) {
	m, err := DecodeYAML(b)
	if err != nil {
		return nil, err
	}
	return s.Construct(m, extras)
}

// ConstructYAMLCtx decodes a YAML document and constructs on the
// suspension-capable path.
func (s *Schema) ConstructYAMLCtx(ctx context.Context, b []byte, extras Extras) (*Instance, error) {
	m, err := DecodeYAML(b)
	if err != nil {
		return nil, err
	}
	return s.ConstructCtx(ctx, m, extras)
}
