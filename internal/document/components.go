package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Kind names one of the component maps
type Kind string

const (
	KindSchemas         Kind = "schemas"
	KindResponses       Kind = "responses"
	KindParameters      Kind = "parameters"
	KindExamples        Kind = "examples"
	KindRequestBodies   Kind = "requestBodies"
	KindHeaders         Kind = "headers"
	KindSecuritySchemes Kind = "securitySchemes"
	KindLinks           Kind = "links"
	KindCallbacks       Kind = "callbacks"
)

// Kinds lists every component kind in document order
var Kinds = []Kind{
	KindSchemas, KindResponses, KindParameters, KindExamples, KindRequestBodies,
	KindHeaders, KindSecuritySchemes, KindLinks, KindCallbacks,
}

// ErrUnknownKind is returned for a kind outside Kinds
var ErrUnknownKind = errors.New("unknown component kind")

// Components holds reusable definitions keyed by name. Names may carry a
// "group/name" prefix which is preserved verbatim.
type Components struct {
	Schemas         map[string]Schema              `json:"schemas,omitempty"`
	Responses       map[string]ResponseOrRef       `json:"responses,omitempty"`
	Parameters      map[string]ParameterOrRef      `json:"parameters,omitempty"`
	Examples        map[string]any                 `json:"examples,omitempty"`
	RequestBodies   map[string]RequestBodyOrRef    `json:"requestBodies,omitempty"`
	Headers         map[string]any                 `json:"headers,omitempty"`
	SecuritySchemes map[string]SecuritySchemeOrRef `json:"securitySchemes,omitempty"`
	Links           map[string]any                 `json:"links,omitempty"`
	Callbacks       map[string]any                 `json:"callbacks,omitempty"`
	PathItems       map[string]*PathItem           `json:"pathItems,omitempty"`
	Extensions      map[string]any                 `json:"-"`
}

// ParseKind validates a kind name
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKind, s)
}

// Keys returns the sorted keys of one component map
func (c *Components) Keys(kind Kind) []string {
	if c == nil {
		return nil
	}
	var keys []string
	switch kind {
	case KindSchemas:
		keys = mapKeys(c.Schemas)
	case KindResponses:
		keys = mapKeys(c.Responses)
	case KindParameters:
		keys = mapKeys(c.Parameters)
	case KindExamples:
		keys = mapKeys(c.Examples)
	case KindRequestBodies:
		keys = mapKeys(c.RequestBodies)
	case KindHeaders:
		keys = mapKeys(c.Headers)
	case KindSecuritySchemes:
		keys = mapKeys(c.SecuritySchemes)
	case KindLinks:
		keys = mapKeys(c.Links)
	case KindCallbacks:
		keys = mapKeys(c.Callbacks)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the definition stored under key
func (c *Components) Get(kind Kind, key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	var (
		v  any
		ok bool
	)
	switch kind {
	case KindSchemas:
		v, ok = c.Schemas[key]
	case KindResponses:
		v, ok = c.Responses[key]
	case KindParameters:
		v, ok = c.Parameters[key]
	case KindExamples:
		v, ok = c.Examples[key]
	case KindRequestBodies:
		v, ok = c.RequestBodies[key]
	case KindHeaders:
		v, ok = c.Headers[key]
	case KindSecuritySchemes:
		v, ok = c.SecuritySchemes[key]
	case KindLinks:
		v, ok = c.Links[key]
	case KindCallbacks:
		v, ok = c.Callbacks[key]
	}
	return v, ok
}

// SetRaw decodes a JSON object and stores it under key, replacing any
// previous definition. The receiver is unchanged on error.
func (c *Components) SetRaw(kind Kind, key string, raw []byte) error {
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return err
	}
	if !isObject(probe) {
		return fmt.Errorf("%s %q: %w", kind, key, ErrMalformedNode)
	}

	switch kind {
	case KindSchemas:
		var v Schema
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		c.Schemas = put(c.Schemas, key, v)
	case KindResponses:
		var v ResponseOrRef
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		c.Responses = put(c.Responses, key, v)
	case KindParameters:
		var v ParameterOrRef
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		c.Parameters = put(c.Parameters, key, v)
	case KindRequestBodies:
		var v RequestBodyOrRef
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		c.RequestBodies = put(c.RequestBodies, key, v)
	case KindSecuritySchemes:
		var v SecuritySchemeOrRef
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		c.SecuritySchemes = put(c.SecuritySchemes, key, v)
	case KindExamples:
		c.Examples = put(c.Examples, key, probe)
	case KindHeaders:
		c.Headers = put(c.Headers, key, probe)
	case KindLinks:
		c.Links = put(c.Links, key, probe)
	case KindCallbacks:
		c.Callbacks = put(c.Callbacks, key, probe)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return nil
}

// Delete removes key and reports whether it existed
func (c *Components) Delete(kind Kind, key string) bool {
	if c == nil {
		return false
	}
	if _, ok := c.Get(kind, key); !ok {
		return false
	}
	switch kind {
	case KindSchemas:
		delete(c.Schemas, key)
	case KindResponses:
		delete(c.Responses, key)
	case KindParameters:
		delete(c.Parameters, key)
	case KindExamples:
		delete(c.Examples, key)
	case KindRequestBodies:
		delete(c.RequestBodies, key)
	case KindHeaders:
		delete(c.Headers, key)
	case KindSecuritySchemes:
		delete(c.SecuritySchemes, key)
	case KindLinks:
		delete(c.Links, key)
	case KindCallbacks:
		delete(c.Callbacks, key)
	}
	return true
}

// Count returns the number of definitions across all kinds
func (c *Components) Count() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, k := range Kinds {
		n += len(c.Keys(k))
	}
	return n
}

func put[V any](m map[string]V, key string, v V) map[string]V {
	if m == nil {
		m = make(map[string]V)
	}
	m[key] = v
	return m
}

func mapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
