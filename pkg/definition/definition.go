// Package definition loads automaton definitions from YAML or JSON files.
//
// A definition file carries the same fields a user would type into a form.
// List fields may be written either as comma separated strings or as YAML/JSON
// lists; transitions may be a multi-line string or a list of rules:
//
//	kind: pda
//	states: [q0, q1]
//	alphabet: a,b
//	stack_alphabet: [A, Z]
//	transitions:
//	  - q0,a,Z->q0,AZ
//	  - q0,b,A->q1,ε
//	initial_state: q0
//	final_states: [q1]
//	inputs: [abb, aab]
package definition

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/automata/pkg/domain"
)

// Format names a file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension. Anything other than
// .json is read as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Document is a definition file: the automaton plus optional metadata and
// sample inputs to simulate.
type Document struct {
	domain.Definition `yaml:",inline" mapstructure:",squash"`

	Name        string   `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Inputs      []string `json:"inputs,omitempty" yaml:"inputs,omitempty" mapstructure:"inputs"`
}

// Option configures decoding.
type Option func(*options)

type options struct {
	strict bool
}

// WithStrict rejects keys that do not map to a Document field.
func WithStrict() Option {
	return func(o *options) {
		o.strict = true
	}
}

// Load reads and decodes the definition file at path.
func Load(path string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	doc, err := Parse(data, FormatFromPath(path), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a definition encoded in format.
func Parse(data []byte, format Format, opts ...Option) (*Document, error) {
	var raw map[string]any

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse definition json: %w", err)
		}
	case FormatYAML, "":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse definition yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown definition format %q", format)
	}

	return Decode(raw, opts...)
}

// Decode maps a generic key/value tree onto a Document. Keys match field
// names ignoring case and underscores, so "initialState" and
// "initial_state" are equivalent.
func Decode(raw map[string]any, opts ...Option) (*Document, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	input := make(map[string]any, len(raw))
	for k, v := range raw {
		if normalizeKey(k) == normalizeKey(domain.FieldTransitions) {
			v = joinList(v, "\n")
		}
		input[k] = v
	}

	var doc Document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       listToString,
		ErrorUnused:      o.strict,
		WeaklyTypedInput: true,
		MatchName: func(mapKey, fieldName string) bool {
			return normalizeKey(mapKey) == normalizeKey(fieldName)
		},
		Result: &doc,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(input); err != nil {
		return nil, fmt.Errorf("failed to decode definition: %w", err)
	}

	return &doc, nil
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}

// listToString lets list values fill the comma separated text fields.
func listToString(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String || from.Kind() != reflect.Slice {
		return data, nil
	}
	return joinList(data, ","), nil
}

func joinList(v any, sep string) any {
	items, ok := v.([]any)
	if !ok {
		return v
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprint(it)
	}
	return strings.Join(parts, sep)
}

// Encode renders doc in format. List fields are written in their raw text
// form.
func Encode(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML, "":
		return yaml.Marshal(doc)
	}
	return nil, fmt.Errorf("unknown definition format %q", format)
}
