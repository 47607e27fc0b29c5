package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
)

type storeBody struct {
	Name    string       `json:"name" validate:"required"`
	Address *addressBody `json:"address" validate:"required"`
}

type addressBody struct {
	City string `json:"city" validate:"required"`
}

type echoedBody struct {
	Name string `json:"name" validate:"required"`
}

func (echoedBody) ReadOnlyFields() []string { return []string{"status"} }

func jsonRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func errorDetails(t *testing.T, err error) map[string]any {
	t.Helper()
	target := pkgerrors.As(err)
	if target == nil {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if target.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %s", target.Code())
	}
	switch details := target.Details().(type) {
	case map[string]any:
		return details
	case map[string]string:
		out := make(map[string]any, len(details))
		for k, v := range details {
			out[k] = v
		}
		return out
	}
	return nil
}

func TestDecodeJSONBodyDropsReadOnlyKeys(t *testing.T) {
	var body echoedBody
	if err := DecodeJSONBody(jsonRequest(`{"name":"Rimi","status":"approved"}`), &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Name != "Rimi" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestDecodeJSONBodyNamesUnknownField(t *testing.T) {
	var body storeBody
	err := DecodeJSONBody(jsonRequest(`{"name":"Rimi","status":"approved"}`), &body)
	if got := errorDetails(t, err)["field"]; got != "status" {
		t.Fatalf("expected field status, got %v", got)
	}
}

func TestDecodeJSONBodyNamesMistypedField(t *testing.T) {
	var body storeBody
	err := DecodeJSONBody(jsonRequest(`{"name":42}`), &body)
	if got := errorDetails(t, err)["field"]; got != "name" {
		t.Fatalf("expected field name, got %v", got)
	}
}

func TestDecodeJSONBodyNestedValidationPath(t *testing.T) {
	var body storeBody
	err := DecodeJSONBody(jsonRequest(`{"name":"Rimi","address":{}}`), &body)
	if got := errorDetails(t, err)["address.city"]; got != "is required" {
		t.Fatalf("expected address.city is required, got %v", got)
	}
}

func TestDecodeJSONBodyRejectsEmptyAndTrailing(t *testing.T) {
	var body echoedBody
	if err := DecodeJSONBody(jsonRequest("  "), &body); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty body, got %v", err)
	}
	if err := DecodeJSONBody(jsonRequest(`{"name":"a"}{"name":"b"}`), &body); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for trailing object, got %v", err)
	}
}

func TestDecodeJSONBodyTooLarge(t *testing.T) {
	req := jsonRequest(`{"name":"` + strings.Repeat("x", 64) + `"}`)
	req.Body = http.MaxBytesReader(httptest.NewRecorder(), req.Body, 16)
	var body echoedBody
	err := DecodeJSONBody(req, &body)
	if got := errorDetails(t, err)["limit"]; got != int64(16) {
		t.Fatalf("expected limit 16, got %v", got)
	}
}

func TestSanitizeString(t *testing.T) {
	cases := map[string]struct {
		in   string
		max  int
		want string
	}{
		"trims and collapses": {in: "  oat \t  milk ", max: 0, want: "oat milk"},
		"cuts on runes":       {in: "Šaltibarščiai", max: 5, want: "Šalti"},
		"no trailing space":   {in: "pieno produktai", max: 6, want: "pieno"},
	}
	for name, tc := range cases {
		if got := SanitizeString(tc.in, tc.max); got != tc.want {
			t.Fatalf("%s: expected %q got %q", name, tc.want, got)
		}
	}
}

func TestParseQueryEnum(t *testing.T) {
	parse := func(raw string) (string, error) {
		if raw != "approved" {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "bad")
		}
		return raw, nil
	}

	got, err := ParseQueryEnum(httptest.NewRequest(http.MethodGet, "/?status=%20approved", nil), "status", parse)
	if err != nil || got == nil || *got != "approved" {
		t.Fatalf("unexpected result %v %v", got, err)
	}

	got, err = ParseQueryEnum(httptest.NewRequest(http.MethodGet, "/", nil), "status", parse)
	if err != nil || got != nil {
		t.Fatalf("expected nil filter, got %v %v", got, err)
	}

	_, err = ParseQueryEnum(httptest.NewRequest(http.MethodGet, "/?status=archived", nil), "status", parse)
	if field := errorDetails(t, err)["field"]; field != "status" {
		t.Fatalf("expected field status, got %v", field)
	}
}
