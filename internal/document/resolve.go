package document

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-openapi/jsonpointer"
)

// ErrUnresolvedRef is returned for dangling, cyclic or foreign references
var ErrUnresolvedRef = errors.New("unresolved reference")

// maxRefDepth bounds how many references a chain may traverse
const maxRefDepth = 16

// RefName splits a local component reference into its kind and name.
// Only "#/components/<kind>/<name>" is accepted; escaped tokens are decoded
// and any tokens after the kind are joined back into a group/name key.
func RefName(ref string) (Kind, string, error) {
	if !strings.HasPrefix(ref, "#/") {
		return "", "", fmt.Errorf("%w: %s is not a local reference", ErrUnresolvedRef, ref)
	}
	ptr, err := jsonpointer.New(strings.TrimPrefix(ref, "#"))
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", ErrUnresolvedRef, ref, err)
	}
	tokens := ptr.DecodedTokens()
	if len(tokens) < 3 || tokens[0] != "components" {
		return "", "", fmt.Errorf("%w: %s is not a component reference", ErrUnresolvedRef, ref)
	}
	kind, err := ParseKind(tokens[1])
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", ErrUnresolvedRef, ref, err)
	}
	return kind, strings.Join(tokens[2:], "/"), nil
}

// ResolveParameter follows a parameter reference chain to its inline definition
func (c *Components) ResolveParameter(ref string) (*Parameter, error) {
	return follow(ref, KindParameters, func(name string) (ParameterOrRef, bool) {
		if c == nil {
			return ParameterOrRef{}, false
		}
		v, ok := c.Parameters[name]
		return v, ok
	}, func(v ParameterOrRef) (string, *Parameter) { return v.Ref, v.Value })
}

// ResolveRequestBody follows a request body reference chain
func (c *Components) ResolveRequestBody(ref string) (*RequestBody, error) {
	return follow(ref, KindRequestBodies, func(name string) (RequestBodyOrRef, bool) {
		if c == nil {
			return RequestBodyOrRef{}, false
		}
		v, ok := c.RequestBodies[name]
		return v, ok
	}, func(v RequestBodyOrRef) (string, *RequestBody) { return v.Ref, v.Value })
}

// ResolveResponse follows a response reference chain
func (c *Components) ResolveResponse(ref string) (*Response, error) {
	return follow(ref, KindResponses, func(name string) (ResponseOrRef, bool) {
		if c == nil {
			return ResponseOrRef{}, false
		}
		v, ok := c.Responses[name]
		return v, ok
	}, func(v ResponseOrRef) (string, *Response) { return v.Ref, v.Value })
}

// ResolveSecurityScheme follows a security scheme reference chain
func (c *Components) ResolveSecurityScheme(ref string) (*SecurityScheme, error) {
	return follow(ref, KindSecuritySchemes, func(name string) (SecuritySchemeOrRef, bool) {
		if c == nil {
			return SecuritySchemeOrRef{}, false
		}
		v, ok := c.SecuritySchemes[name]
		return v, ok
	}, func(v SecuritySchemeOrRef) (string, *SecurityScheme) { return v.Ref, v.Value })
}

func follow[U any, T any](ref string, kind Kind, lookup func(string) (U, bool), split func(U) (string, *T)) (*T, error) {
	seen := make(map[string]bool)
	for depth := 0; depth < maxRefDepth; depth++ {
		if seen[ref] {
			return nil, fmt.Errorf("%w: cycle at %s", ErrUnresolvedRef, ref)
		}
		seen[ref] = true

		k, name, err := RefName(ref)
		if err != nil {
			return nil, err
		}
		if k != kind {
			return nil, fmt.Errorf("%w: %s does not point into %s", ErrUnresolvedRef, ref, kind)
		}
		entry, ok := lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s not found", ErrUnresolvedRef, ref)
		}
		next, value := split(entry)
		if next == "" {
			if value == nil {
				return nil, fmt.Errorf("%w: %s is empty", ErrUnresolvedRef, ref)
			}
			return value, nil
		}
		ref = next
	}
	return nil, fmt.Errorf("%w: chain too deep at %s", ErrUnresolvedRef, ref)
}

// Resolve returns the inline parameter, following a reference if needed
func (p ParameterOrRef) Resolve(c *Components) (*Parameter, error) {
	if p.Ref == "" {
		if p.Value == nil {
			return nil, fmt.Errorf("%w: empty parameter", ErrUnresolvedRef)
		}
		return p.Value, nil
	}
	return c.ResolveParameter(p.Ref)
}

func (r RequestBodyOrRef) Resolve(c *Components) (*RequestBody, error) {
	if r.Ref == "" {
		if r.Value == nil {
			return nil, fmt.Errorf("%w: empty request body", ErrUnresolvedRef)
		}
		return r.Value, nil
	}
	return c.ResolveRequestBody(r.Ref)
}

func (r ResponseOrRef) Resolve(c *Components) (*Response, error) {
	if r.Ref == "" {
		if r.Value == nil {
			return nil, fmt.Errorf("%w: empty response", ErrUnresolvedRef)
		}
		return r.Value, nil
	}
	return c.ResolveResponse(r.Ref)
}

func (s SecuritySchemeOrRef) Resolve(c *Components) (*SecurityScheme, error) {
	if s.Ref == "" {
		if s.Value == nil {
			return nil, fmt.Errorf("%w: empty security scheme", ErrUnresolvedRef)
		}
		return s.Value, nil
	}
	return c.ResolveSecurityScheme(s.Ref)
}
