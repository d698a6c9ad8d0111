package apimodel_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	apimodel "github.com/reoring/apimodel"
)

func TestIssues_ErrorSummarizesFirstFew(t *testing.T) {
	iss := apimodel.Issues{
		{Path: "/a", Code: apimodel.CodeInvalidType},
		{Path: "/b", Code: apimodel.CodeRequired},
	}
	got := iss.Error()
	if got != "invalid_type at /a; required at /b" {
		t.Errorf("Error() = %q", got)
	}

	long := apimodel.Issues{
		{Path: "/a", Code: apimodel.CodeRequired},
		{Path: "/b", Code: apimodel.CodeRequired},
		{Path: "/c", Code: apimodel.CodeRequired},
		{Path: "/d", Code: apimodel.CodeRequired},
		{Path: "/e", Code: apimodel.CodeRequired},
	}
	if got := long.Error(); !strings.Contains(got, "(total 5)") || strings.Contains(got, "/d") {
		t.Errorf("Error() = %q", got)
	}
}

func TestAsIssues_UnwrapsThroughWrapping(t *testing.T) {
	inner := apimodel.Issues{{Path: "/x", Code: apimodel.CodeInvalidType}}
	wrapped := fmt.Errorf("construct failed: %w", inner)
	iss, ok := apimodel.AsIssues(wrapped)
	if !ok || len(iss) != 1 || iss[0].Path != "/x" {
		t.Fatalf("AsIssues = %v, %v", iss, ok)
	}
	if _, ok := apimodel.AsIssues(errors.New("plain")); ok {
		t.Errorf("plain errors must not match")
	}
	if _, ok := apimodel.AsIssues(nil); ok {
		t.Errorf("nil must not match")
	}
}

func TestIssue_CausePreservesTheValidatorError(t *testing.T) {
	sentinel := errors.New("too short")
	s := apimodel.New("Pw").
		Field("pw", apimodel.String()).Required().
		Check(func(v any) (any, error) {
			if len(v.(string)) < 8 {
				return nil, sentinel
			}
			return v, nil
		}).
		MustBuild()
	_, err := s.Construct(map[string]any{"pw": "short"}, nil)
	iss, _ := apimodel.AsIssues(err)
	if len(iss) != 1 || !errors.Is(iss[0].Cause, sentinel) {
		t.Fatalf("issue = %+v", iss)
	}
	if iss[0].Message != "too short" {
		t.Errorf("message = %q", iss[0].Message)
	}
}

func TestFieldCheck_MayReturnAChildReport(t *testing.T) {
	s := apimodel.New("Doc").
		Field("meta", apimodel.MapOf(apimodel.String(), apimodel.Any())).Required().
		Check(func(v any) (any, error) {
			m := v.(map[string]any)
			if _, ok := m["version"]; !ok {
				return nil, apimodel.Issues{{Path: "/version", Code: apimodel.CodeRequired, Message: "required key missing"}}
			}
			return v, nil
		}).
		MustBuild()

	_, err := s.Construct(map[string]any{"meta": map[string]any{"author": "x"}}, nil)
	iss, _ := apimodel.AsIssues(err)
	if len(iss) != 1 || iss[0].Path != "/meta/version" || iss[0].Code != apimodel.CodeRequired {
		t.Fatalf("child report was not rebased: %+v", iss)
	}
}

func TestSchemaError_FormatAndUnwrap(t *testing.T) {
	_, err := apimodel.New("Broken").Field("x", nil).Build()
	var se *apimodel.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("error = %T", err)
	}
	if !strings.HasPrefix(se.Error(), `apimodel: invalid schema "Broken"`) {
		t.Errorf("Error() = %q", se.Error())
	}
	if se.Unwrap() == nil {
		t.Errorf("Unwrap() = nil")
	}
}
