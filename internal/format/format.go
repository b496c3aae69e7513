package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Language is the markup a document was written in
type Language string

// Standard is the API description standard a parsed document follows
type Standard string

const (
	JSON         Language = "json"
	YAML         Language = "yaml"
	Unrecognized Language = ""

	OpenAPI Standard = "openapi"
	Arazzo  Standard = "arazzo"
	None    Standard = ""
)

var (
	// ErrUnrecognizedMarkup is returned when text is neither JSON nor YAML
	ErrUnrecognizedMarkup = errors.New("not a recognised markup")
	// ErrUnrecognizedStandard is returned when a parsed object has no openapi or arazzo key
	ErrUnrecognizedStandard = errors.New("not a recognized standard")
	// ErrArazzoNotImplemented is returned for Arazzo documents
	ErrArazzoNotImplemented = errors.New("arazzo support yet to be implemented")
)

// DetectLanguage reports whether text is JSON or YAML.
// JSON is attempted first: every JSON document is also valid YAML, so the
// reverse order would classify JSON input as YAML.
func DetectLanguage(text []byte) Language {
	if len(bytes.TrimSpace(text)) == 0 {
		return Unrecognized
	}
	if json.Valid(text) {
		return JSON
	}
	var probe any
	if err := yaml.Unmarshal(text, &probe); err == nil {
		return YAML
	}
	return Unrecognized
}

// DetectStandard checks the top-level discriminator keys of a parsed document
func DetectStandard(obj any) Standard {
	m, ok := obj.(map[string]any)
	if !ok {
		return None
	}
	if _, ok := m["arazzo"]; ok {
		return Arazzo
	}
	if _, ok := m["openapi"]; ok {
		return OpenAPI
	}
	return None
}

// LanguageFromFilename maps a file extension to a language hint
func LanguageFromFilename(name string) Language {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return YAML
	case ".json":
		return JSON
	default:
		return Unrecognized
	}
}

// Parse decodes text in the given language into a generic tree.
// YAML mappings with non-string keys are normalized so the tree is
// always representable as JSON.
func Parse(text []byte, lang Language) (any, error) {
	switch lang {
	case JSON:
		var v any
		if err := json.Unmarshal(text, &v); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return v, nil
	case YAML:
		var v any
		if err := yaml.Unmarshal(text, &v); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		return normalize(v), nil
	default:
		return nil, ErrUnrecognizedMarkup
	}
}

// Classify runs language detection, parsing and standard detection in one
// pass. Only OpenAPI documents are accepted.
func Classify(text []byte) (Language, map[string]any, error) {
	lang := DetectLanguage(text)
	if lang == Unrecognized {
		return lang, nil, ErrUnrecognizedMarkup
	}
	obj, err := Parse(text, lang)
	if err != nil {
		return lang, nil, err
	}
	switch DetectStandard(obj) {
	case OpenAPI:
		return lang, obj.(map[string]any), nil
	case Arazzo:
		return lang, nil, ErrArazzoNotImplemented
	default:
		return lang, nil, ErrUnrecognizedStandard
	}
}

// ToJSON re-encodes a parsed tree as compact JSON
func ToJSON(obj any) ([]byte, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = normalize(item)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		for i, item := range val {
			val[i] = normalize(item)
		}
		return val
	default:
		return v
	}
}
