package document

import (
	"strconv"
	"strings"

	"github.com/mohae/deepcopy"
)

// Methods lists the operation keys a path item may carry, in display order
var Methods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// Document is a parsed OpenAPI 3.x description. Keys the model does not
// declare land in Extensions and are written back on export.
type Document struct {
	OpenAPI           string                `json:"openapi"`
	Info              *Info                 `json:"info,omitempty"`
	JSONSchemaDialect string                `json:"jsonSchemaDialect,omitempty"`
	Servers           []Server              `json:"servers,omitempty"`
	Paths             Paths                 `json:"paths"`
	Webhooks          map[string]*PathItem  `json:"webhooks,omitempty"`
	Components        *Components           `json:"components,omitempty"`
	Security          []SecurityRequirement `json:"security,omitempty"`
	Tags              []Tag                 `json:"tags,omitempty"`
	ExternalDocs      *ExternalDocs         `json:"externalDocs,omitempty"`
	Extensions        map[string]any        `json:"-"`
}

// Info carries document metadata
type Info struct {
	Title          string         `json:"title"`
	Summary        string         `json:"summary,omitempty"`
	Description    string         `json:"description,omitempty"`
	TermsOfService string         `json:"termsOfService,omitempty"`
	Contact        *Contact       `json:"contact,omitempty"`
	License        *License       `json:"license,omitempty"`
	Version        string         `json:"version"`
	Extensions     map[string]any `json:"-"`
}

type Contact struct {
	Name       string         `json:"name,omitempty"`
	URL        string         `json:"url,omitempty"`
	Email      string         `json:"email,omitempty"`
	Extensions map[string]any `json:"-"`
}

type License struct {
	Name       string         `json:"name"`
	Identifier string         `json:"identifier,omitempty"`
	URL        string         `json:"url,omitempty"`
	Extensions map[string]any `json:"-"`
}

// Server is identified by its URL
type Server struct {
	URL         string                    `json:"url"`
	Description string                    `json:"description,omitempty"`
	Variables   map[string]ServerVariable `json:"variables,omitempty"`
	Extensions  map[string]any            `json:"-"`
}

type ServerVariable struct {
	Enum        []string       `json:"enum,omitempty"`
	Default     string         `json:"default"`
	Description string         `json:"description,omitempty"`
	Extensions  map[string]any `json:"-"`
}

type Tag struct {
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	ExternalDocs *ExternalDocs  `json:"externalDocs,omitempty"`
	Extensions   map[string]any `json:"-"`
}

type ExternalDocs struct {
	Description string         `json:"description,omitempty"`
	URL         string         `json:"url"`
	Extensions  map[string]any `json:"-"`
}

// SecurityRequirement maps scheme names to required scopes
type SecurityRequirement map[string][]string

// Paths maps a path template to its item
type Paths map[string]*PathItem

// PathItem holds the operations available on a single path
type PathItem struct {
	Ref         string           `json:"$ref,omitempty"`
	Summary     string           `json:"summary,omitempty"`
	Description string           `json:"description,omitempty"`
	Get         *Operation       `json:"get,omitempty"`
	Put         *Operation       `json:"put,omitempty"`
	Post        *Operation       `json:"post,omitempty"`
	Delete      *Operation       `json:"delete,omitempty"`
	Options     *Operation       `json:"options,omitempty"`
	Head        *Operation       `json:"head,omitempty"`
	Patch       *Operation       `json:"patch,omitempty"`
	Trace       *Operation       `json:"trace,omitempty"`
	Servers     []Server         `json:"servers,omitempty"`
	Parameters  []ParameterOrRef `json:"parameters,omitempty"`
	Extensions  map[string]any   `json:"-"`
}

// Operation describes a single API call on a path
type Operation struct {
	Tags         []string                 `json:"tags,omitempty"`
	Summary      string                   `json:"summary,omitempty"`
	Description  string                   `json:"description,omitempty"`
	ExternalDocs *ExternalDocs            `json:"externalDocs,omitempty"`
	OperationID  string                   `json:"operationId,omitempty"`
	Parameters   []ParameterOrRef         `json:"parameters,omitempty"`
	RequestBody  *RequestBodyOrRef        `json:"requestBody,omitempty"`
	Responses    map[string]ResponseOrRef `json:"responses,omitempty"`
	Callbacks    map[string]any           `json:"callbacks,omitempty"`
	Deprecated   bool                     `json:"deprecated,omitempty"`
	Security     []SecurityRequirement    `json:"security,omitempty"`
	Servers      []Server                 `json:"servers,omitempty"`
	Extensions   map[string]any           `json:"-"`
}

// Parameter is an inline parameter definition
type Parameter struct {
	Name            string               `json:"name"`
	In              string               `json:"in"`
	Description     string               `json:"description,omitempty"`
	Required        bool                 `json:"required,omitempty"`
	Deprecated      bool                 `json:"deprecated,omitempty"`
	AllowEmptyValue bool                 `json:"allowEmptyValue,omitempty"`
	Style           string               `json:"style,omitempty"`
	Explode         *bool                `json:"explode,omitempty"`
	AllowReserved   bool                 `json:"allowReserved,omitempty"`
	Schema          Schema               `json:"schema,omitempty"`
	Example         any                  `json:"example,omitempty"`
	Examples        map[string]any       `json:"examples,omitempty"`
	Content         map[string]MediaType `json:"content,omitempty"`
	Extensions      map[string]any       `json:"-"`
}

// RequestBody is an inline request body definition
type RequestBody struct {
	Description string               `json:"description,omitempty"`
	Content     map[string]MediaType `json:"content"`
	Required    bool                 `json:"required,omitempty"`
	Extensions  map[string]any       `json:"-"`
}

// Response is an inline response definition
type Response struct {
	Description string               `json:"description"`
	Headers     map[string]any       `json:"headers,omitempty"`
	Content     map[string]MediaType `json:"content,omitempty"`
	Links       map[string]any       `json:"links,omitempty"`
	Extensions  map[string]any       `json:"-"`
}

type MediaType struct {
	Schema     Schema         `json:"schema,omitempty"`
	Example    any            `json:"example,omitempty"`
	Examples   map[string]any `json:"examples,omitempty"`
	Encoding   map[string]any `json:"encoding,omitempty"`
	Extensions map[string]any `json:"-"`
}

// Schema is kept free-form; the editor never interprets it beyond display
type Schema map[string]any

// Clone returns a deep copy that shares no memory with d
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	return deepcopy.Copy(d).(*Document)
}

// Title returns the info title or an empty string
func (d *Document) Title() string {
	if d == nil || d.Info == nil {
		return ""
	}
	return d.Info.Title
}

// HasInfo reports whether both title and version are present
func (d *Document) HasInfo() bool {
	return d != nil && d.Info != nil && d.Info.Title != "" && d.Info.Version != ""
}

// ServerURLs returns the declared server URLs in order
func (d *Document) ServerURLs() []string {
	if d == nil {
		return nil
	}
	urls := make([]string, 0, len(d.Servers))
	for _, s := range d.Servers {
		urls = append(urls, s.URL)
	}
	return urls
}

// FindServer returns the index of the server with the given URL or -1
func (d *Document) FindServer(url string) int {
	for i, s := range d.Servers {
		if s.URL == url {
			return i
		}
	}
	return -1
}

// Operation looks up a path item and one of its operations
func (d *Document) Operation(path, method string) (*PathItem, *Operation) {
	if d == nil || d.Paths == nil {
		return nil, nil
	}
	item := d.Paths[path]
	if item == nil {
		return nil, nil
	}
	return item, item.Operation(method)
}

// Operation returns the operation for a method or nil
func (p *PathItem) Operation(method string) *Operation {
	if p == nil {
		return nil
	}
	if slot := p.slot(method); slot != nil {
		return *slot
	}
	return nil
}

// SetOperation stores op under method. A nil op removes it.
// Returns false for unknown methods.
func (p *PathItem) SetOperation(method string, op *Operation) bool {
	slot := p.slot(method)
	if slot == nil {
		return false
	}
	*slot = op
	return true
}

// Operations returns the methods present on the item in display order
func (p *PathItem) Operations() []string {
	var methods []string
	for _, m := range Methods {
		if p.Operation(m) != nil {
			methods = append(methods, m)
		}
	}
	return methods
}

// IsEmpty reports whether no operation remains on the item
func (p *PathItem) IsEmpty() bool {
	return len(p.Operations()) == 0
}

func (p *PathItem) slot(method string) **Operation {
	switch strings.ToLower(method) {
	case "get":
		return &p.Get
	case "put":
		return &p.Put
	case "post":
		return &p.Post
	case "delete":
		return &p.Delete
	case "options":
		return &p.Options
	case "head":
		return &p.Head
	case "patch":
		return &p.Patch
	case "trace":
		return &p.Trace
	}
	return nil
}

// IsValidMethod reports whether method names an operation slot
func IsValidMethod(method string) bool {
	var p PathItem
	return p.slot(method) != nil
}

// Response returns the declared response for a status code, falling back
// to the NXX range and then to "default"
func (o *Operation) Response(status int) (ResponseOrRef, bool) {
	if o == nil || o.Responses == nil {
		return ResponseOrRef{}, false
	}
	code := strconv.Itoa(status)
	if r, ok := o.Responses[code]; ok {
		return r, true
	}
	if len(code) == 3 {
		if r, ok := o.Responses[code[:1]+"XX"]; ok {
			return r, true
		}
	}
	r, ok := o.Responses["default"]
	return r, ok
}
