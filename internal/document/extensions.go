package document

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// Keys a type does not declare as a field, x-* extensions included, are
// kept in its Extensions map. Each type decodes through an alias to avoid
// recursion, collects the undeclared keys, and merges them back on encode.

// declared caches the JSON field names of each struct type
var declared sync.Map

func marshalWithExtensions(v any, ext map[string]any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(ext) == 0 {
		return data, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	for k, val := range ext {
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		m[k] = raw
	}
	return json.Marshal(m)
}

func fieldNames(t reflect.Type) map[string]struct{} {
	if v, ok := declared.Load(t); ok {
		return v.(map[string]struct{})
	}
	names := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		names[name] = struct{}{}
	}
	declared.Store(t, names)
	return names
}

// extractExtensions returns the keys of data that the struct type of v
// does not declare
func extractExtensions(data []byte, v any) map[string]any {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	known := fieldNames(reflect.TypeOf(v))
	var ext map[string]any
	for k, raw := range m {
		if _, ok := known[k]; ok {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		if ext == nil {
			ext = make(map[string]any)
		}
		ext[k] = v
	}
	return ext
}

func (d Document) MarshalJSON() ([]byte, error) {
	type alias Document
	a := alias(d)
	if a.Paths == nil {
		a.Paths = Paths{}
	}
	return marshalWithExtensions(a, d.Extensions)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	type alias Document
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*d = Document(a)
	if d.Paths == nil {
		d.Paths = Paths{}
	}
	d.Extensions = extractExtensions(data, a)
	return nil
}

func (i Info) MarshalJSON() ([]byte, error) {
	type alias Info
	return marshalWithExtensions(alias(i), i.Extensions)
}

func (i *Info) UnmarshalJSON(data []byte) error {
	type alias Info
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*i = Info(a)
	i.Extensions = extractExtensions(data, a)
	return nil
}

func (c Contact) MarshalJSON() ([]byte, error) {
	type alias Contact
	return marshalWithExtensions(alias(c), c.Extensions)
}

func (c *Contact) UnmarshalJSON(data []byte) error {
	type alias Contact
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = Contact(a)
	c.Extensions = extractExtensions(data, a)
	return nil
}

func (l License) MarshalJSON() ([]byte, error) {
	type alias License
	return marshalWithExtensions(alias(l), l.Extensions)
}

func (l *License) UnmarshalJSON(data []byte) error {
	type alias License
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*l = License(a)
	l.Extensions = extractExtensions(data, a)
	return nil
}

func (s Server) MarshalJSON() ([]byte, error) {
	type alias Server
	return marshalWithExtensions(alias(s), s.Extensions)
}

func (s *Server) UnmarshalJSON(data []byte) error {
	type alias Server
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = Server(a)
	s.Extensions = extractExtensions(data, a)
	return nil
}

func (v ServerVariable) MarshalJSON() ([]byte, error) {
	type alias ServerVariable
	return marshalWithExtensions(alias(v), v.Extensions)
}

func (v *ServerVariable) UnmarshalJSON(data []byte) error {
	type alias ServerVariable
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*v = ServerVariable(a)
	v.Extensions = extractExtensions(data, a)
	return nil
}

func (t Tag) MarshalJSON() ([]byte, error) {
	type alias Tag
	return marshalWithExtensions(alias(t), t.Extensions)
}

func (t *Tag) UnmarshalJSON(data []byte) error {
	type alias Tag
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*t = Tag(a)
	t.Extensions = extractExtensions(data, a)
	return nil
}

func (e ExternalDocs) MarshalJSON() ([]byte, error) {
	type alias ExternalDocs
	return marshalWithExtensions(alias(e), e.Extensions)
}

func (e *ExternalDocs) UnmarshalJSON(data []byte) error {
	type alias ExternalDocs
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*e = ExternalDocs(a)
	e.Extensions = extractExtensions(data, a)
	return nil
}

func (p PathItem) MarshalJSON() ([]byte, error) {
	type alias PathItem
	return marshalWithExtensions(alias(p), p.Extensions)
}

func (p *PathItem) UnmarshalJSON(data []byte) error {
	type alias PathItem
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = PathItem(a)
	p.Extensions = extractExtensions(data, a)
	return nil
}

func (o Operation) MarshalJSON() ([]byte, error) {
	type alias Operation
	return marshalWithExtensions(alias(o), o.Extensions)
}

func (o *Operation) UnmarshalJSON(data []byte) error {
	type alias Operation
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*o = Operation(a)
	o.Extensions = extractExtensions(data, a)
	return nil
}

func (p Parameter) MarshalJSON() ([]byte, error) {
	type alias Parameter
	return marshalWithExtensions(alias(p), p.Extensions)
}

func (p *Parameter) UnmarshalJSON(data []byte) error {
	type alias Parameter
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = Parameter(a)
	p.Extensions = extractExtensions(data, a)
	return nil
}

func (r RequestBody) MarshalJSON() ([]byte, error) {
	type alias RequestBody
	a := alias(r)
	if a.Content == nil {
		a.Content = map[string]MediaType{}
	}
	return marshalWithExtensions(a, r.Extensions)
}

func (r *RequestBody) UnmarshalJSON(data []byte) error {
	type alias RequestBody
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = RequestBody(a)
	r.Extensions = extractExtensions(data, a)
	return nil
}

func (r Response) MarshalJSON() ([]byte, error) {
	type alias Response
	return marshalWithExtensions(alias(r), r.Extensions)
}

func (r *Response) UnmarshalJSON(data []byte) error {
	type alias Response
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = Response(a)
	r.Extensions = extractExtensions(data, a)
	return nil
}

func (m MediaType) MarshalJSON() ([]byte, error) {
	type alias MediaType
	return marshalWithExtensions(alias(m), m.Extensions)
}

func (m *MediaType) UnmarshalJSON(data []byte) error {
	type alias MediaType
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*m = MediaType(a)
	m.Extensions = extractExtensions(data, a)
	return nil
}

func (c Components) MarshalJSON() ([]byte, error) {
	type alias Components
	return marshalWithExtensions(alias(c), c.Extensions)
}

func (c *Components) UnmarshalJSON(data []byte) error {
	type alias Components
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = Components(a)
	c.Extensions = extractExtensions(data, a)
	return nil
}

func (s SecurityScheme) MarshalJSON() ([]byte, error) {
	type alias SecurityScheme
	return marshalWithExtensions(alias(s), s.Extensions)
}

func (s *SecurityScheme) UnmarshalJSON(data []byte) error {
	type alias SecurityScheme
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = SecurityScheme(a)
	s.Extensions = extractExtensions(data, a)
	return nil
}

func (f OAuthFlow) MarshalJSON() ([]byte, error) {
	type alias OAuthFlow
	a := alias(f)
	if a.Scopes == nil {
		a.Scopes = map[string]string{}
	}
	return marshalWithExtensions(a, f.Extensions)
}

func (f *OAuthFlow) UnmarshalJSON(data []byte) error {
	type alias OAuthFlow
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*f = OAuthFlow(a)
	f.Extensions = extractExtensions(data, a)
	return nil
}

func (f OAuthFlows) MarshalJSON() ([]byte, error) {
	type alias OAuthFlows
	return marshalWithExtensions(alias(f), f.Extensions)
}

func (f *OAuthFlows) UnmarshalJSON(data []byte) error {
	type alias OAuthFlows
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*f = OAuthFlows(a)
	f.Extensions = extractExtensions(data, a)
	return nil
}
