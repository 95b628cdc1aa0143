package schema_test

import (
	"errors"
	"testing"

	"github.com/xraph/herald/schema"
)

const itemSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["id", "title"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "title": {"type": "string"}
  }
}`

func newValidator(t *testing.T) *schema.Validator {
	t.Helper()
	v := schema.New()
	if err := v.Register("item", []byte(itemSchema)); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestValidatePasses(t *testing.T) {
	v := newValidator(t)
	if err := v.Validate("item", []byte(`{"id":"42","title":"Map Pack","extra":1}`)); err != nil {
		t.Fatal("valid payload should pass, got:", err)
	}
}

func TestValidateMissingRequired(t *testing.T) {
	v := newValidator(t)
	err := v.Validate("item", []byte(`{"title":"Map Pack"}`))
	if !errors.Is(err, schema.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestValidateWrongType(t *testing.T) {
	v := newValidator(t)
	if err := v.Validate("item", []byte(`{"id":42,"title":"x"}`)); !errors.Is(err, schema.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestValidateMalformedJSON(t *testing.T) {
	v := newValidator(t)
	if err := v.Validate("item", []byte(`{"id":`)); !errors.Is(err, schema.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestValidateUnknownSchema(t *testing.T) {
	v := schema.New()
	if err := v.Validate("missing", []byte(`{}`)); !errors.Is(err, schema.ErrUnknownSchema) {
		t.Fatalf("expected ErrUnknownSchema, got %v", err)
	}
	if v.Has("missing") {
		t.Fatal("Has should be false")
	}
}

func TestRegisterRejectsBadSchema(t *testing.T) {
	v := schema.New()
	if err := v.Register("bad", []byte(`{"type": 12}`)); err == nil {
		t.Fatal("expected compile error")
	}
}
