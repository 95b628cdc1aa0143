// Package schema validates inbound payloads against named JSON Schemas.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var (
	// ErrUnknownSchema is returned when validating against an unregistered name.
	ErrUnknownSchema = errors.New("schema: unknown schema")

	// ErrInvalid is returned when a payload does not satisfy its schema.
	ErrInvalid = errors.New("schema: payload invalid")
)

// Validator holds compiled schemas keyed by name.
type Validator struct {
	mu      sync.RWMutex
	schemas map[string]*jsonschema.Schema
}

// New creates an empty validator.
func New() *Validator {
	return &Validator{schemas: make(map[string]*jsonschema.Schema)}
}

// Register compiles doc and stores it under name, replacing any previous
// schema with that name.
func (v *Validator) Register(name string, doc []byte) error {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("schema: parse %s: %w", name, err)
	}

	url := "herald://schema/" + name
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, parsed); err != nil {
		return fmt.Errorf("schema: add %s: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return fmt.Errorf("schema: compile %s: %w", name, err)
	}

	v.mu.Lock()
	v.schemas[name] = compiled
	v.mu.Unlock()
	return nil
}

// MustRegister is Register for schemas embedded at build time.
func (v *Validator) MustRegister(name string, doc []byte) {
	if err := v.Register(name, doc); err != nil {
		panic(err)
	}
}

// Validate checks a JSON document against the schema registered as name.
func (v *Validator) Validate(name string, body []byte) error {
	v.mu.RLock()
	s, ok := v.schemas[name]
	v.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := s.Validate(inst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Has reports whether name is registered.
func (v *Validator) Has(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.schemas[name]
	return ok
}
