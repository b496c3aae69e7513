package document

import "encoding/json"

// ParameterOrRef holds either a reference or an inline parameter, never both.
// Siblings keeps keys written next to a $ref, such as summary or description.
type ParameterOrRef struct {
	Ref      string
	Siblings map[string]any
	Value    *Parameter
}

// RequestBodyOrRef holds either a reference or an inline request body
type RequestBodyOrRef struct {
	Ref      string
	Siblings map[string]any
	Value    *RequestBody
}

// ResponseOrRef holds either a reference or an inline response
type ResponseOrRef struct {
	Ref      string
	Siblings map[string]any
	Value    *Response
}

// SecuritySchemeOrRef holds either a reference or an inline security scheme
type SecuritySchemeOrRef struct {
	Ref      string
	Siblings map[string]any
	Value    *SecurityScheme
}

func (p ParameterOrRef) IsRef() bool      { return p.Ref != "" }
func (r RequestBodyOrRef) IsRef() bool    { return r.Ref != "" }
func (r ResponseOrRef) IsRef() bool       { return r.Ref != "" }
func (s SecuritySchemeOrRef) IsRef() bool { return s.Ref != "" }

func (p ParameterOrRef) MarshalJSON() ([]byte, error) {
	return marshalRefOr(p.Ref, p.Siblings, p.Value, p.Value == nil)
}

func (p *ParameterOrRef) UnmarshalJSON(data []byte) error {
	ref, siblings, err := discriminate(data, "parameter")
	if err != nil {
		return err
	}
	if ref != "" {
		*p = ParameterOrRef{Ref: ref, Siblings: siblings}
		return nil
	}
	var v Parameter
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = ParameterOrRef{Value: &v}
	return nil
}

func (r RequestBodyOrRef) MarshalJSON() ([]byte, error) {
	return marshalRefOr(r.Ref, r.Siblings, r.Value, r.Value == nil)
}

func (r *RequestBodyOrRef) UnmarshalJSON(data []byte) error {
	ref, siblings, err := discriminate(data, "requestBody")
	if err != nil {
		return err
	}
	if ref != "" {
		*r = RequestBodyOrRef{Ref: ref, Siblings: siblings}
		return nil
	}
	var v RequestBody
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = RequestBodyOrRef{Value: &v}
	return nil
}

func (r ResponseOrRef) MarshalJSON() ([]byte, error) {
	return marshalRefOr(r.Ref, r.Siblings, r.Value, r.Value == nil)
}

func (r *ResponseOrRef) UnmarshalJSON(data []byte) error {
	ref, siblings, err := discriminate(data, "response")
	if err != nil {
		return err
	}
	if ref != "" {
		*r = ResponseOrRef{Ref: ref, Siblings: siblings}
		return nil
	}
	var v Response
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = ResponseOrRef{Value: &v}
	return nil
}

func (s SecuritySchemeOrRef) MarshalJSON() ([]byte, error) {
	return marshalRefOr(s.Ref, s.Siblings, s.Value, s.Value == nil)
}

func (s *SecuritySchemeOrRef) UnmarshalJSON(data []byte) error {
	ref, siblings, err := discriminate(data, "securityScheme")
	if err != nil {
		return err
	}
	if ref != "" {
		*s = SecuritySchemeOrRef{Ref: ref, Siblings: siblings}
		return nil
	}
	var v SecurityScheme
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = SecuritySchemeOrRef{Value: &v}
	return nil
}

func marshalRefOr(ref string, siblings map[string]any, value any, isNil bool) ([]byte, error) {
	if ref != "" {
		node := make(map[string]any, len(siblings)+1)
		for k, v := range siblings {
			node[k] = v
		}
		node["$ref"] = ref
		return json.Marshal(node)
	}
	if isNil {
		return []byte("null"), nil
	}
	return json.Marshal(value)
}
