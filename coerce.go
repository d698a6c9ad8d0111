package apimodel

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"
)

// Scalar conversions below implement the documented coercion rules: numeric
// strings become numbers, UNIX seconds or RFC3339/ISO-8601 strings become UTC
// instants, and scalars stringify through their canonical text form. Mappings
// and sequences never convert to scalars.

func toString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func toInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case float64:
		// truncate toward zero
		return int64(t), nil
	case json.Number:
		return numberToInt64(t)
	case string:
		return numberToInt64(json.Number(t))
	default:
		return 0, fmt.Errorf("expected int, got %T", v)
	}
}

func numberToInt64(n json.Number) (int64, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("expected int, got %q", n.String())
	}
	return int64(f), nil
}

func toFloat64(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected float, got %q", t.String())
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, fmt.Errorf("expected float, got %q", t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected float, got %T", v)
	}
}

func toBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		b, err := strconv.ParseBool(t)
		if err != nil {
			return false, fmt.Errorf("expected bool, got %q", t)
		}
		return b, nil
	case json.Number, int, int64, float64:
		f, err := toFloat64(t)
		if err != nil || (f != 0 && f != 1) {
			return false, fmt.Errorf("expected bool, got %v", v)
		}
		return f == 1, nil
	default:
		return false, fmt.Errorf("expected bool, got %T", v)
	}
}

// isoLayouts are the accepted textual time layouts, most specific first.
// Zone-less layouts are interpreted as UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case json.Number, int, int64, float64:
		f, err := toFloat64(t)
		if err != nil {
			return time.Time{}, err
		}
		return unixTime(f), nil
	case string:
		// numeric strings are UNIX timestamps
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return unixTime(f), nil
		}
		for _, layout := range isoLayouts {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("invalid time %q", t)
	default:
		return time.Time{}, fmt.Errorf("expected time, got %T", v)
	}
}

func unixTime(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC()
}

func toDuration(v any) (time.Duration, error) {
	switch t := v.(type) {
	case time.Duration:
		return t, nil
	case json.Number, int, int64, float64:
		f, err := toFloat64(t)
		if err != nil {
			return 0, err
		}
		return time.Duration(f * float64(time.Second)), nil
	case string:
		// seconds first, then Go duration notation
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return time.Duration(f * float64(time.Second)), nil
		}
		d, err := time.ParseDuration(t)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", t)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("expected duration, got %T", v)
	}
}

// equalScalar compares a raw value against a literal, normalizing numeric
// representations so json.Number(1) matches the literal 1.
func equalScalar(v, want any) bool {
	if v == nil || want == nil {
		return v == nil && want == nil
	}
	if vf, err1 := numericValue(v); err1 == nil {
		if wf, err2 := numericValue(want); err2 == nil {
			return vf == wf
		}
		return false
	}
	return v == want
}

func numericValue(v any) (float64, error) {
	switch t := v.(type) {
	case int, int64, float64, json.Number:
		return toFloat64(t)
	default:
		return 0, fmt.Errorf("not numeric: %T", v)
	}
}

// asSequence reports v as an ordered []any. Beyond the generic decoded form it
// accepts arbitrary slice/array kinds via reflection, excluding []byte which
// behaves as a scalar.
func asSequence(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []byte, string, nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if k := rv.Kind(); k != reflect.Slice && k != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// sortedKeys returns map keys in ascending order for deterministic issue order.
func sortedKeys(m map[string]any) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

func keyString(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}
