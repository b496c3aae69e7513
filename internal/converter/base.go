package converter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/runner"
)

// untaggedGroup collects operations without tags in grouped outputs
const untaggedGroup = "Default"

// maxSchemaDepth bounds schema walks through nested or cyclic references
const maxSchemaDepth = 32

// endpointRef is one operation with its parameters already resolved
type endpointRef struct {
	path      string
	method    string
	operation *document.Operation
	params    []*document.Parameter
}

// responseRow is a resolved response as shown in reference documents
type responseRow struct {
	code        string
	description string
	object      string
}

// collectEndpoints lists every operation ordered by path then method.
// Parameters that fail to resolve are skipped.
func collectEndpoints(doc *document.Document) []endpointRef {
	paths := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var out []endpointRef
	for _, p := range paths {
		item := doc.Paths[p]
		for _, method := range item.Operations() {
			op := item.Operation(method)
			params, err := runner.ResolveParameters(doc.Components, item, op)
			if err != nil {
				params = nil
			}
			out = append(out, endpointRef{path: p, method: method, operation: op, params: params})
		}
	}
	return out
}

// groupByTag buckets endpoints under every tag they carry
func groupByTag(endpoints []endpointRef) (map[string][]endpointRef, []string) {
	groups := make(map[string][]endpointRef)
	for _, ep := range endpoints {
		tags := ep.operation.Tags
		if len(tags) == 0 {
			tags = []string{untaggedGroup}
		}
		for _, tag := range tags {
			groups[tag] = append(groups[tag], ep)
		}
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return groups, names
}

// formatMethod returns a styled method string.
func formatMethod(method string) string {
	return strings.ToUpper(method)
}

// formatParameters returns a formatted parameter list.
func formatParameters(params []*document.Parameter) []string {
	out := make([]string, 0, len(params))
	for _, p := range params {
		required := ""
		if p.Required {
			required = " (required)"
		}
		line := fmt.Sprintf("%s (%s, %s)%s", p.Name, p.In, schemaLabel(p.Schema), required)
		if p.Description != "" {
			line += ": " + stripHTML(p.Description)
		}
		out = append(out, line)
	}
	return out
}

// resolvedResponses returns the declared responses sorted by status code
func resolvedResponses(doc *document.Document, op *document.Operation) []responseRow {
	codes := make([]string, 0, len(op.Responses))
	for code := range op.Responses {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	rows := make([]responseRow, 0, len(codes))
	for _, code := range codes {
		row := responseRow{code: code}
		resp, err := op.Responses[code].Resolve(doc.Components)
		if err != nil {
			row.description = op.Responses[code].Ref
			rows = append(rows, row)
			continue
		}
		row.description = stripHTML(resp.Description)
		if media, ok := preferredMedia(resp.Content); ok {
			row.object = schemaLabel(media.Schema)
		}
		rows = append(rows, row)
	}
	return rows
}

// formatResponses returns a formatted response list.
func formatResponses(rows []responseRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		line := fmt.Sprintf("%s: %s", r.code, r.description)
		if r.object != "" {
			line += " [" + r.object + "]"
		}
		out = append(out, line)
	}
	return out
}

// preferredMedia returns the JSON media type when present, otherwise the
// first one in name order
func preferredMedia(content map[string]document.MediaType) (document.MediaType, bool) {
	if m, ok := content["application/json"]; ok {
		return m, true
	}
	names := make([]string, 0, len(content))
	for name := range content {
		names = append(names, name)
	}
	if len(names) == 0 {
		return document.MediaType{}, false
	}
	sort.Strings(names)
	return content[names[0]], true
}

// schemaLabel is a short human-readable type for a schema
func schemaLabel(s document.Schema) string {
	if s == nil {
		return "string"
	}
	if ref, ok := s["$ref"].(string); ok {
		return extractRefName(ref)
	}
	t := schemaType(s)
	if t == "array" {
		if items, ok := asSchema(s["items"]); ok {
			return "[]" + schemaLabel(items)
		}
	}
	if f, ok := s["format"].(string); ok && f != "" {
		return fmt.Sprintf("%s (%s)", t, f)
	}
	return t
}

// schemaType returns the type keyword, taking the first entry of a type
// list. A schema with properties but no type is an object.
func schemaType(s document.Schema) string {
	switch t := s["type"].(type) {
	case string:
		return t
	case []any:
		for _, v := range t {
			if name, ok := v.(string); ok && name != "null" {
				return name
			}
		}
	}
	if _, ok := s["properties"]; ok {
		return "object"
	}
	return "string"
}

// resolveSchema follows $ref chains into components.schemas. Nullable
// anyOf/oneOf wrappers resolve to their first non-null member.
func resolveSchema(doc *document.Document, s document.Schema) document.Schema {
	for depth := 0; depth < maxSchemaDepth && s != nil; depth++ {
		if ref, ok := s["$ref"].(string); ok {
			kind, name, err := document.RefName(ref)
			if err != nil || kind != document.KindSchemas || doc.Components == nil {
				return s
			}
			next, ok := doc.Components.Schemas[name]
			if !ok {
				return s
			}
			s = next
			continue
		}
		if member, ok := nonNullMember(s); ok {
			s = member
			continue
		}
		return s
	}
	return s
}

func nonNullMember(s document.Schema) (document.Schema, bool) {
	for _, key := range []string{"anyOf", "oneOf"} {
		list, ok := s[key].([]any)
		if !ok {
			continue
		}
		for _, v := range list {
			member, ok := asSchema(v)
			if !ok {
				continue
			}
			if t, _ := member["type"].(string); t != "null" {
				return member, true
			}
		}
	}
	return nil, false
}

// asSchema accepts both the named map type and a plain decoded map
func asSchema(v any) (document.Schema, bool) {
	switch m := v.(type) {
	case document.Schema:
		return m, true
	case map[string]any:
		return document.Schema(m), true
	}
	return nil, false
}

// sortedProperties returns the property names of a schema in order
func sortedProperties(s document.Schema) ([]string, map[string]any) {
	props, ok := s["properties"].(map[string]any)
	if !ok {
		return nil, nil
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, props
}

func stripHTML(s string) string {
	result := s
	for {
		start := strings.Index(result, "<")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], ">")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+1:]
	}
	result = strings.ReplaceAll(result, "&amp;", "&")
	result = strings.ReplaceAll(result, "&lt;", "<")
	result = strings.ReplaceAll(result, "&gt;", ">")
	result = strings.ReplaceAll(result, "&quot;", "\"")
	result = strings.ReplaceAll(result, "&#39;", "'")
	result = strings.ReplaceAll(result, "\n\n", "\n")
	return strings.TrimSpace(result)
}

// extractRefName returns the component name of a reference, keeping any
// group prefix
func extractRefName(ref string) string {
	if _, name, err := document.RefName(ref); err == nil {
		return name
	}
	parts := strings.Split(ref, "/")
	return parts[len(parts)-1]
}
