package storage

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Serializer encodes and decodes a store's data file. JSON is the default;
// YAML and TOML are for authors who want hand-editable data files.
type Serializer interface {
	// Ext is the file extension, with the leading dot.
	Ext() string
	Marshal(v any, pretty bool) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSON serializes with JSON. Pretty output is two-space indented.
var JSON Serializer = jsonSerializer{}

// YAML serializes with YAML; pretty is a no-op (YAML is always readable).
var YAML Serializer = yamlSerializer{}

// TOML serializes with TOML. Nested non-table values under dotted keys must
// be TOML-representable.
var TOML Serializer = tomlSerializer{}

type jsonSerializer struct{}

func (jsonSerializer) Ext() string { return ".json" }

func (jsonSerializer) Marshal(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

func (jsonSerializer) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode JSON: %w", err)
	}
	return nil
}

type yamlSerializer struct{}

func (yamlSerializer) Ext() string { return ".yaml" }

func (yamlSerializer) Marshal(v any, _ bool) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlSerializer) Unmarshal(data []byte, v any) error {
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode YAML: %w", err)
	}
	return nil
}

type tomlSerializer struct{}

func (tomlSerializer) Ext() string { return ".toml" }

func (tomlSerializer) Marshal(v any, _ bool) ([]byte, error) {
	return toml.Marshal(v)
}

func (tomlSerializer) Unmarshal(data []byte, v any) error {
	if err := toml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode TOML: %w", err)
	}
	return nil
}
