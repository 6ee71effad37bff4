package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/eyira/storefront/pkg/errors"
)

type sampleLine struct {
	Quantity int `json:"quantity" validate:"min=1"`
}

type sampleCart struct {
	Lines []sampleLine `json:"lines" validate:"required,dive"`
}

type sample struct {
	Name  string   `json:"name" validate:"required"`
	Items []string `json:"items" validate:"required,min=1"`
}

func TestDecodeJSONBodyValid(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"eyira","items":["a"],"extra":true}`))
	var dest sample
	if err := DecodeJSONBody(req, &dest); err != nil {
		t.Fatalf("expected unknown fields to be ignored, got %v", err)
	}
	if dest.Name != "eyira" || len(dest.Items) != 1 {
		t.Fatalf("unexpected decode result %+v", dest)
	}
}

func TestDecodeJSONBodyMalformed(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":`))
	var dest sample
	err := DecodeJSONBody(req, &dest)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyValidationDetails(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"eyira","items":[]}`))
	var dest sample
	err := DecodeJSONBody(req, &dest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected map details, got %T", typed.Details())
	}
	if details["items"] != "must be at least 1" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestDecodeJSONBodyDetailKeysFollowJSONPath(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"lines":[{"quantity":2},{"quantity":0}]}`))
	var dest sampleCart
	typed := pkgerrors.As(DecodeJSONBody(req, &dest))
	if typed == nil {
		t.Fatal("expected validation error")
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected map details, got %T", typed.Details())
	}
	if details["lines[1].quantity"] != "must be at least 1" {
		t.Fatalf("unexpected details %v", details)
	}
	for key := range details {
		if strings.Contains(key, "sampleCart") {
			t.Fatalf("type name leaked into detail key %q", key)
		}
	}
}
