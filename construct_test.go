package apimodel_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	apimodel "github.com/reoring/apimodel"
)

func locationSchema(t *testing.T) *apimodel.Schema {
	t.Helper()
	return apimodel.New("Location").
		Field("lat", apimodel.Float()).Required().
		Field("lng", apimodel.Float()).Required().
		MustBuild()
}

func TestConstruct_CoercesAndAppliesDefaults(t *testing.T) {
	user := apimodel.New("User").
		Field("id", apimodel.Int()).Required().
		Field("name", apimodel.String()).Default("Anonymous").
		MustBuild()

	inst, err := user.Construct(map[string]any{"id": "123"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"id": int64(123), "name": "Anonymous"}
	if diff := cmp.Diff(want, inst.AsMap()); diff != "" {
		t.Errorf("AsMap mismatch (-want +got):\n%s", diff)
	}
}

func TestConstruct_SingleMalformedField(t *testing.T) {
	user := apimodel.New("User").
		Field("id", apimodel.Int()).Required().
		Field("name", apimodel.String()).Default("Anonymous").
		MustBuild()

	_, err := user.Construct(map[string]any{"id": "abc"}, nil)
	iss, ok := apimodel.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	if len(iss) != 1 {
		t.Fatalf("expected exactly one issue, got %d: %v", len(iss), iss)
	}
	if iss[0].Path != "/id" || iss[0].Code != apimodel.CodeInvalidType {
		t.Errorf("unexpected issue: %+v", iss[0])
	}
}

func TestConstruct_AggregatesIndependentFailuresInDeclarationOrder(t *testing.T) {
	s := apimodel.New("Multi").
		Field("a", apimodel.Int()).Required().
		Field("b", apimodel.Bool()).Required().
		Field("c", apimodel.Float()).Required().
		MustBuild()

	_, err := s.Construct(map[string]any{"a": "x", "b": "y", "c": "z"}, nil)
	iss, ok := apimodel.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	wantPaths := []string{"/a", "/b", "/c"}
	if len(iss) != len(wantPaths) {
		t.Fatalf("expected %d issues, got %d: %v", len(wantPaths), len(iss), iss)
	}
	for i, p := range wantPaths {
		if iss[i].Path != p {
			t.Errorf("issue %d: path = %q, want %q", i, iss[i].Path, p)
		}
	}
}

func TestConstruct_NestedFailurePathsArePrefixed(t *testing.T) {
	s := apimodel.New("Place").
		Field("numer", apimodel.Float()).Required().
		Field("location", apimodel.ModelOf(locationSchema(t))).Required().
		MustBuild()

	in := map[string]any{
		"numer":    "bad",
		"location": map[string]any{"lat": 4.2, "lng": "NY"},
	}
	_, err := s.Construct(in, nil)
	iss, ok := apimodel.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	if len(iss) != 2 {
		t.Fatalf("expected two issues, got %d: %v", len(iss), iss)
	}
	if iss[0].Path != "/numer" {
		t.Errorf("first issue path = %q, want /numer", iss[0].Path)
	}
	if iss[1].Path != "/location/lng" {
		t.Errorf("second issue path = %q, want /location/lng", iss[1].Path)
	}
}

func TestConstruct_MissingRequiredField(t *testing.T) {
	s := apimodel.New("Strict").
		Field("id", apimodel.Int()).Required().
		MustBuild()

	_, err := s.Construct(map[string]any{}, nil)
	iss, ok := apimodel.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	if len(iss) != 1 || iss[0].Path != "/id" || iss[0].Code != apimodel.CodeRequired {
		t.Fatalf("unexpected report: %v", iss)
	}
}

func TestConstruct_OptionalFieldAbsentIsNotAnError(t *testing.T) {
	s := apimodel.New("Loose").
		Field("id", apimodel.Int()).Required().
		Field("note", apimodel.String()).
		MustBuild()

	inst, err := s.Construct(map[string]any{"id": 1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := inst.Get("note"); ok {
		t.Errorf("expected note to be absent")
	}
	if diff := cmp.Diff(map[string]any{"id": int64(1)}, inst.AsMap()); diff != "" {
		t.Errorf("AsMap mismatch (-want +got):\n%s", diff)
	}
}

func TestConstruct_RootInitialFailureShortCircuits(t *testing.T) {
	s := apimodel.New("Guarded").
		Field("id", apimodel.Int()).Required().
		PreRoot(func(values map[string]any) (map[string]any, error) {
			return nil, errors.New("payload unusable")
		}).
		MustBuild()

	// the field failure must NOT be reported: root-initial aborts the attempt
	_, err := s.Construct(map[string]any{"id": "abc"}, nil)
	iss, ok := apimodel.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	if len(iss) != 1 {
		t.Fatalf("expected exactly one issue, got %d: %v", len(iss), iss)
	}
	if iss[0].Path != "/" || iss[0].Code != apimodel.CodeValidator {
		t.Errorf("unexpected issue: %+v", iss[0])
	}
}

func TestConstruct_RootInitialMayRewriteTheRawMapping(t *testing.T) {
	s := apimodel.New("Renamed").
		Field("name", apimodel.String()).Required().
		PreRoot(func(values map[string]any) (map[string]any, error) {
			if v, ok := values["userName"]; ok {
				values["name"] = v
				delete(values, "userName")
			}
			return values, nil
		}).
		MustBuild()

	inst, err := s.Construct(map[string]any{"userName": "ada"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := inst.Get("name"); v != "ada" {
		t.Errorf("name = %v, want ada", v)
	}
}

func TestConstruct_RootFinalSeesCoercedValuesAndMayReplace(t *testing.T) {
	s := apimodel.New("Summed").
		Field("a", apimodel.Int()).Required().
		Field("b", apimodel.Int()).Required().
		Field("sum", apimodel.Int()).
		PostRoot(func(values map[string]any) (map[string]any, error) {
			values["sum"] = values["a"].(int64) + values["b"].(int64)
			return values, nil
		}).
		MustBuild()

	inst, err := s.Construct(map[string]any{"a": "2", "b": 3}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := inst.Get("sum"); v != int64(5) {
		t.Errorf("sum = %v, want 5", v)
	}
}

func TestConstruct_RootFinalFailureDoesNotSuppressFieldFailures(t *testing.T) {
	s := apimodel.New("Checked").
		Field("a", apimodel.Int()).Required().
		Field("b", apimodel.Int()).Required().
		PostRoot(func(values map[string]any) (map[string]any, error) {
			return nil, errors.New("totals do not add up")
		}).
		MustBuild()

	_, err := s.Construct(map[string]any{"a": "x", "b": 1}, nil)
	iss, ok := apimodel.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	if len(iss) != 2 {
		t.Fatalf("expected two issues, got %d: %v", len(iss), iss)
	}
	if iss[0].Path != "/a" {
		t.Errorf("first issue path = %q, want /a", iss[0].Path)
	}
	if iss[1].Path != "/" || iss[1].Code != apimodel.CodeValidator {
		t.Errorf("unexpected root issue: %+v", iss[1])
	}
}

func TestConstruct_FieldCheckTransformsAndFailuresDoNotBlockSiblings(t *testing.T) {
	s := apimodel.New("Normalized").
		Field("email", apimodel.String()).Required().
		Check(func(v any) (any, error) {
			e := v.(string)
			if e == "" {
				return nil, errors.New("empty email")
			}
			return e + "@example.com", nil
		}).
		Field("age", apimodel.Int()).Required().
		Check(func(v any) (any, error) {
			if v.(int64) < 0 {
				return nil, fmt.Errorf("age out of range: %d", v)
			}
			return v, nil
		}).
		MustBuild()

	inst, err := s.Construct(map[string]any{"email": "ada", "age": 7}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := inst.Get("email"); v != "ada@example.com" {
		t.Errorf("email = %v", v)
	}

	_, err = s.Construct(map[string]any{"email": "", "age": -1}, nil)
	iss, ok := apimodel.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	if len(iss) != 2 || iss[0].Path != "/email" || iss[1].Path != "/age" {
		t.Fatalf("unexpected report: %v", iss)
	}
	for _, it := range iss {
		if it.Code != apimodel.CodeValidator {
			t.Errorf("code = %q, want %q", it.Code, apimodel.CodeValidator)
		}
	}
}

func TestConstruct_FieldChecksRunInAttachmentOrder(t *testing.T) {
	var order []string
	s := apimodel.New("Ordered").
		Field("v", apimodel.Int()).Required().
		Check(func(v any) (any, error) {
			order = append(order, "first")
			return v.(int64) + 1, nil
		}).
		Check(func(v any) (any, error) {
			order = append(order, "second")
			return v.(int64) * 10, nil
		}).
		MustBuild()

	inst, err := s.Construct(map[string]any{"v": 1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"first", "second"}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if v, _ := inst.Get("v"); v != int64(20) {
		t.Errorf("v = %v, want 20", v)
	}
}

func TestConstruct_AliasLooksUpWireNameAndProjectsBack(t *testing.T) {
	s := apimodel.New("Aliased").
		Field("userID", apimodel.Int()).Alias("user_id").Required().
		MustBuild()

	inst, err := s.Construct(map[string]any{"user_id": 7}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := inst.Get("userID"); v != int64(7) {
		t.Errorf("userID = %v", v)
	}
	if diff := cmp.Diff(map[string]any{"user_id": int64(7)}, inst.AsMap()); diff != "" {
		t.Errorf("AsMap mismatch (-want +got):\n%s", diff)
	}

	_, err = s.Construct(map[string]any{"user_id": "zz"}, nil)
	iss, _ := apimodel.AsIssues(err)
	if len(iss) != 1 || iss[0].Path != "/user_id" {
		t.Fatalf("expected failure at wire name /user_id, got %v", iss)
	}
}

func TestConstruct_HiddenFieldsConstructButDoNotProject(t *testing.T) {
	s := apimodel.New("Secretive").
		Field("id", apimodel.Int()).Required().
		Field("secret", apimodel.String()).Hidden().Default("hunter2").
		MustBuild()

	inst, err := s.Construct(map[string]any{"id": 1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := inst.Get("secret"); v != "hunter2" {
		t.Errorf("secret = %v", v)
	}
	if _, ok := inst.AsMap()["secret"]; ok {
		t.Errorf("hidden field leaked into AsMap")
	}
}

func TestConstruct_NestedInstancePassesThrough(t *testing.T) {
	loc := locationSchema(t)
	s := apimodel.New("Pin").
		Field("location", apimodel.ModelOf(loc)).Required().
		MustBuild()

	pre, err := loc.Construct(map[string]any{"lat": 1.0, "lng": 2.0}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inst, err := s.Construct(map[string]any{"location": pre}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := inst.Get("location")
	if got != any(pre) {
		t.Errorf("expected the prebuilt instance to pass through unchanged")
	}
}

func TestConstruct_NestedRoundTripThroughAsMap(t *testing.T) {
	s := apimodel.New("Place").
		Field("name", apimodel.String()).Required().
		Field("location", apimodel.ModelOf(locationSchema(t))).Required().
		MustBuild()

	in := map[string]any{
		"name":     "hq",
		"location": map[string]any{"lat": 4.2, "lng": 8.8},
	}
	inst, err := s.Construct(in, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(in, inst.AsMap()); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestConstruct_ExtrasComeFromTheSideChannelOnly(t *testing.T) {
	s := apimodel.New("Localized").
		Field("id", apimodel.Int()).Required().
		Extra("lang").
		Extra("region").Default("eu").
		MustBuild()

	// extras in the input mapping are ignored; only the side channel counts
	inst, err := s.Construct(map[string]any{"id": 1, "lang": "ignored"}, apimodel.Extras{"lang": "en"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := inst.Extra("lang"); v != "en" {
		t.Errorf("lang = %v, want en", v)
	}
	if v, _ := inst.Extra("region"); v != "eu" {
		t.Errorf("region = %v, want eu", v)
	}
	if _, ok := inst.AsMap()["lang"]; ok {
		t.Errorf("extra slot leaked into AsMap")
	}
}

func TestConstruct_MissingRequiredExtraIsAUsageError(t *testing.T) {
	s := apimodel.New("Localized").
		Field("id", apimodel.Int()).Required().
		Extra("lang").
		MustBuild()

	_, err := s.Construct(map[string]any{"id": 1}, nil)
	if !errors.Is(err, apimodel.ErrMissingExtra) {
		t.Fatalf("expected ErrMissingExtra, got %v", err)
	}
	if _, ok := apimodel.AsIssues(err); ok {
		t.Errorf("missing extra must not enter the aggregated report")
	}
}

func TestConstruct_ExtrasPropagateOnlyWhereRedeclared(t *testing.T) {
	child := apimodel.New("Child").
		Field("v", apimodel.Int()).Required().
		Extra("lang").Default("unset").
		MustBuild()
	parent := apimodel.New("Parent").
		Field("child", apimodel.ModelOf(child)).Required().
		Extra("lang").
		MustBuild()

	inst, err := parent.Construct(map[string]any{"child": map[string]any{"v": 1}}, apimodel.Extras{"lang": "en"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cv, _ := inst.Get("child")
	childInst := cv.(*apimodel.Instance)
	if v, _ := childInst.Extra("lang"); v != "en" {
		t.Errorf("redeclared extra did not propagate: %v", v)
	}

	plain := apimodel.New("Plain").
		Field("v", apimodel.Int()).Required().
		MustBuild()
	inst2, err := plain.Construct(map[string]any{"v": 1}, apimodel.Extras{"lang": "en"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := inst2.Extra("lang"); ok {
		t.Errorf("undeclared extra must not be injected")
	}
}
