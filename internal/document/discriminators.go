package document

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedNode is returned when a node is not an object
var ErrMalformedNode = errors.New("expected a $ref or an inline definition")

// IsReference reports whether node is an object carrying a string $ref
func IsReference(node any) bool {
	m, ok := node.(map[string]any)
	if !ok {
		return false
	}
	_, ok = m["$ref"].(string)
	return ok
}

// IsInlineParameter reports whether node is an object with a name field
func IsInlineParameter(node any) bool {
	return hasField(node, "name")
}

// IsInlineRequestBody reports whether node is an object with a content field
func IsInlineRequestBody(node any) bool {
	return hasField(node, "content")
}

func isObject(node any) bool {
	_, ok := node.(map[string]any)
	return ok
}

func hasField(node any, field string) bool {
	m, ok := node.(map[string]any)
	if !ok {
		return false
	}
	_, ok = m[field]
	return ok
}

// discriminate decodes raw and reports its $ref, with any sibling keys,
// when it is a reference. A reference always wins over inline fields. Any
// other object decodes as an inline definition even when it lacks the
// fields IsInlineParameter or IsInlineRequestBody look for; the runner
// reports such definitions when a request is built.
func discriminate(data []byte, kind string) (string, map[string]any, error) {
	var node any
	if err := json.Unmarshal(data, &node); err != nil {
		return "", nil, fmt.Errorf("%s: %w", kind, err)
	}
	if IsReference(node) {
		m := node.(map[string]any)
		var siblings map[string]any
		for k, v := range m {
			if k == "$ref" {
				continue
			}
			if siblings == nil {
				siblings = make(map[string]any)
			}
			siblings[k] = v
		}
		return m["$ref"].(string), siblings, nil
	}
	if isObject(node) {
		return "", nil, nil
	}
	return "", nil, fmt.Errorf("%s: %w", kind, ErrMalformedNode)
}
