package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidConfiguration marks widget configuration rejected by its schema.
var ErrInvalidConfiguration = errors.New("dashboard: invalid widget configuration")

// ConfigValidator checks an instance configuration against its definition.
type ConfigValidator interface {
	Validate(def WidgetDefinition, config map[string]any) error
}

// JSONSchemaValidator validates configuration with the JSON schema carried on
// the definition. Compiled schemas are cached by code and schema digest, so a
// manifest that replaces a definition gets its own entry.
type JSONSchemaValidator struct {
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{cache: map[string]*jsonschema.Schema{}}
}

// Validate returns an error wrapping ErrInvalidConfiguration when config does
// not satisfy the schema. A definition without a schema accepts anything.
func (v *JSONSchemaValidator) Validate(def WidgetDefinition, config map[string]any) error {
	if len(def.Schema) == 0 {
		return nil
	}
	schema, err := v.compile(def)
	if err != nil {
		return err
	}
	doc, err := asJSONDocument(config)
	if err == nil {
		err = schema.Validate(doc)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfiguration, def.Code, err)
	}
	return nil
}

// CheckSchema reports whether the definition's schema compiles.
func (v *JSONSchemaValidator) CheckSchema(def WidgetDefinition) error {
	if len(def.Schema) == 0 {
		return nil
	}
	_, err := v.compile(def)
	return err
}

func (v *JSONSchemaValidator) compile(def WidgetDefinition) (*jsonschema.Schema, error) {
	key := def.Code + "@" + digest(def.Schema)
	v.mu.RLock()
	schema, ok := v.cache[key]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}

	raw, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal schema %s: %w", def.Code, err)
	}
	url := def.Code + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", def.Code, err)
	}
	if schema, err = compiler.Compile(url); err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", def.Code, err)
	}

	v.mu.Lock()
	v.cache[key] = schema
	v.mu.Unlock()
	return schema, nil
}

// asJSONDocument round-trips config through encoding/json so Go values such
// as []string or int validate the way a decoded request body would.
func asJSONDocument(config map[string]any) (any, error) {
	if len(config) == 0 {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(config)
	if err != nil {
		return nil, err
	}
	var doc any
	err = json.Unmarshal(raw, &doc)
	return doc, err
}
