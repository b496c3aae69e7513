package converter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/runner"
	"github.com/studiowebux/oasedit/internal/store"
)

// Organization strategies for .http export
const (
	OrganizeByTags  = "tags"
	OrganizeByPaths = "paths"
	OrganizeFlat    = "flat"
)

// HTTPOptions configures .http request file export
type HTTPOptions struct {
	OutputDir  string
	OrganizeBy string // tags, paths or flat
	Server     string // base URL override; empty means the first server
}

// ResponseField represents a field in a response schema
type ResponseField struct {
	Name        string
	Type        string
	Required    bool
	Description string
	Example     any
	Deprecated  bool
}

// WriteHTTPFiles writes one .http file per operation and returns how many
// were written
func WriteHTTPFiles(doc *document.Document, opts HTTPOptions) (int, error) {
	if doc == nil {
		return 0, store.ErrNoDocument
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	count := 0
	for _, ep := range collectEndpoints(doc) {
		dir, filename := getOutputPath(opts.OutputDir, ep.path, ep.method, ep.operation, opts.OrganizeBy)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return count, err
		}

		content := generateOperationHTTP(doc, ep, runner.BaseURL(doc, opts.Server))
		if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// OperationHTTP renders a single operation as .http text
func OperationHTTP(doc *document.Document, path, method, server string) (string, error) {
	if doc == nil {
		return "", store.ErrNoDocument
	}
	item, op := doc.Operation(path, method)
	if op == nil {
		return "", fmt.Errorf("%w: %s %s", runner.ErrOperationNotFound, formatMethod(method), path)
	}
	params, err := runner.ResolveParameters(doc.Components, item, op)
	if err != nil {
		return "", err
	}
	ep := endpointRef{path: path, method: strings.ToLower(method), operation: op, params: params}
	return generateOperationHTTP(doc, ep, runner.BaseURL(doc, server)), nil
}

// getOutputPath determines the output directory and filename
func getOutputPath(baseDir, path, method string, operation *document.Operation, organizeBy string) (string, string) {
	var dir string
	var filename string

	switch organizeBy {
	case OrganizeByTags:
		if len(operation.Tags) > 0 {
			dir = filepath.Join(baseDir, sanitizeFilename(operation.Tags[0]))
		} else {
			dir = filepath.Join(baseDir, "untagged")
		}
		filename = strings.ToLower(method) + "_" + sanitizeFilename(path) + ".http"

	case OrganizeByPaths:
		// Mirror the API path; parameter segments never become directories
		pathParts := strings.Split(strings.Trim(path, "/"), "/")
		dirParts := []string{}
		for _, part := range pathParts[:len(pathParts)-1] {
			if !strings.HasPrefix(part, "{") {
				dirParts = append(dirParts, part)
			}
		}
		dir = filepath.Join(append([]string{baseDir}, dirParts...)...)

		lastSegment := strings.NewReplacer("{", "", "}", "").Replace(pathParts[len(pathParts)-1])
		if lastSegment == "" {
			lastSegment = "root"
		}
		filename = strings.ToLower(method) + "_" + lastSegment + ".http"

	default:
		dir = baseDir
		filename = strings.ToLower(method) + "_" + sanitizeFilename(path) + ".http"
	}

	return dir, filename
}

// sanitizeFilename creates a safe filename from a path
func sanitizeFilename(path string) string {
	path = strings.Trim(path, "/")
	path = strings.NewReplacer("/", "_", "{", "", "}", "", " ", "_", ":", "_").Replace(path)
	if path == "" {
		path = "root"
	}
	return path
}

// generateOperationHTTP renders the documentation comments and the request
func generateOperationHTTP(doc *document.Document, ep endpointRef, baseURL string) string {
	var sb strings.Builder
	op := ep.operation
	method := formatMethod(ep.method)

	if baseURL != "" {
		sb.WriteString(fmt.Sprintf("@baseUrl = %s\n\n", baseURL))
	}

	if op.Summary != "" {
		sb.WriteString(fmt.Sprintf("### %s\n", op.Summary))
	} else {
		sb.WriteString(fmt.Sprintf("### %s %s\n", method, ep.path))
	}
	if op.Description != "" {
		sb.WriteString(fmt.Sprintf("# @description %s\n", strings.ReplaceAll(op.Description, "\n", " ")))
	}
	for _, tag := range op.Tags {
		sb.WriteString(fmt.Sprintf("# @tag %s\n", tag))
	}
	if op.Deprecated {
		sb.WriteString("# @deprecated\n")
	}

	for _, param := range ep.params {
		required := ""
		if param.Required {
			required = "required"
		}
		sb.WriteString(fmt.Sprintf("# @param %s {%s} %s - %s\n",
			param.Name, schemaLabel(param.Schema), required, param.Description))
	}

	for _, row := range resolvedResponses(doc, op) {
		sb.WriteString(fmt.Sprintf("# @response %s - %s\n", row.code, row.description))

		resp, err := op.Responses[row.code].Resolve(doc.Components)
		if err != nil {
			continue
		}
		for _, field := range extractResponseFields(doc, resp) {
			required := "optional"
			if field.Required {
				required = "required"
			}
			sb.WriteString(fmt.Sprintf("# @response-field %s {%s} %s", field.Name, field.Type, required))
			if field.Deprecated {
				sb.WriteString(" deprecated")
			}
			if field.Description != "" {
				sb.WriteString(fmt.Sprintf(" - %s", field.Description))
			}
			sb.WriteString("\n")

			if field.Example != nil {
				if data, err := json.Marshal(field.Example); err == nil {
					sb.WriteString(fmt.Sprintf("# @response-example %s %s\n", field.Name, data))
				}
			}
		}
	}

	sb.WriteString("\n")

	requestPath := ep.path
	var queryParams []string
	for _, param := range ep.params {
		switch param.In {
		case "path":
			requestPath = strings.ReplaceAll(requestPath, "{"+param.Name+"}", "{{"+param.Name+"}}")
		case "query":
			queryParams = append(queryParams, fmt.Sprintf("%s={{%s}}", param.Name, param.Name))
		}
	}

	fullURL := requestPath
	if baseURL != "" {
		fullURL = "{{baseUrl}}" + requestPath
	}
	if len(queryParams) > 0 {
		fullURL += "?" + strings.Join(queryParams, "&")
	}
	sb.WriteString(fmt.Sprintf("%s %s\n", method, fullURL))

	sb.WriteString("Content-Type: application/json\n")
	var cookies []string
	for _, param := range ep.params {
		switch param.In {
		case "header":
			sb.WriteString(fmt.Sprintf("%s: {{%s}}\n", param.Name, param.Name))
		case "cookie":
			cookies = append(cookies, fmt.Sprintf("%s={{%s}}", param.Name, param.Name))
		}
	}
	if len(cookies) > 0 {
		sb.WriteString("Cookie: " + strings.Join(cookies, "; ") + "\n")
	}

	if body, ok := requestBodyExample(doc, op); ok && method != "GET" {
		sb.WriteString("\n")
		sb.WriteString(body)
		sb.WriteString("\n")
	}

	return sb.String()
}

// requestBodyExample renders the declared example of the JSON request body,
// or one generated from its schema
func requestBodyExample(doc *document.Document, op *document.Operation) (string, bool) {
	if op.RequestBody == nil {
		return "", false
	}
	rb, err := op.RequestBody.Resolve(doc.Components)
	if err != nil {
		return "", false
	}
	content, ok := rb.Content["application/json"]
	if !ok {
		return "", false
	}

	var example any
	switch {
	case content.Example != nil:
		example = content.Example
	case content.Schema != nil:
		example = generateExampleFromSchema(doc, content.Schema, 0)
	default:
		return "{\n  \n}", true
	}
	data, err := json.MarshalIndent(example, "", "  ")
	if err != nil {
		return "", false
	}
	return string(data), true
}

// generateExampleFromSchema generates an example value from a JSON schema
func generateExampleFromSchema(doc *document.Document, schema document.Schema, depth int) any {
	if depth >= maxSchemaDepth {
		return nil
	}
	schema = resolveSchema(doc, schema)
	if example, ok := schema["example"]; ok {
		return example
	}

	switch schemaType(schema) {
	case "object":
		result := make(map[string]any)
		names, props := sortedProperties(schema)
		for _, name := range names {
			if prop, ok := asSchema(props[name]); ok {
				result[name] = generateExampleFromSchema(doc, prop, depth+1)
			}
		}
		return result

	case "array":
		if items, ok := asSchema(schema["items"]); ok {
			return []any{generateExampleFromSchema(doc, items, depth+1)}
		}
		return []any{}

	case "string":
		if enum, ok := schema["enum"].([]any); ok && len(enum) > 0 {
			return enum[0]
		}
		return "string"

	case "integer", "number":
		return 0

	case "boolean":
		return false

	default:
		return nil
	}
}

// extractResponseFields lists the leaf fields of a JSON response body using
// dot notation, with [] marking array elements
func extractResponseFields(doc *document.Document, response *document.Response) []ResponseField {
	var fields []ResponseField
	content, ok := response.Content["application/json"]
	if !ok || content.Schema == nil {
		return fields
	}
	extractFieldsRecursive(doc, resolveSchema(doc, content.Schema), "", &fields, 0)
	return fields
}

func extractFieldsRecursive(doc *document.Document, schema document.Schema, prefix string, fields *[]ResponseField, depth int) {
	if depth >= maxSchemaDepth {
		return
	}

	requiredFields := make(map[string]bool)
	if req, ok := schema["required"].([]any); ok {
		for _, r := range req {
			if name, ok := r.(string); ok {
				requiredFields[name] = true
			}
		}
	}

	names, props := sortedProperties(schema)
	for _, name := range names {
		propSchema, ok := asSchema(props[name])
		if !ok {
			continue
		}

		fullName := name
		if prefix != "" {
			fullName = prefix + "." + name
		}
		resolved := resolveSchema(doc, propSchema)

		nestedObject := hasProperties(resolved)
		var nestedItems document.Schema
		if schemaType(resolved) == "array" {
			if items, ok := asSchema(resolved["items"]); ok {
				items = resolveSchema(doc, items)
				if hasProperties(items) {
					nestedItems = items
				}
			}
		}

		switch {
		case nestedObject:
			extractFieldsRecursive(doc, resolved, fullName, fields, depth+1)
		case nestedItems != nil:
			extractFieldsRecursive(doc, nestedItems, fullName+"[]", fields, depth+1)
		default:
			*fields = append(*fields, ResponseField{
				Name:        fullName,
				Type:        getFieldType(resolved),
				Required:    requiredFields[name],
				Description: getString(propSchema, "description"),
				Example:     propSchema["example"],
				Deprecated:  getBool(propSchema, "deprecated") || getBool(resolved, "deprecated"),
			})
		}
	}
}

func hasProperties(schema document.Schema) bool {
	_, ok := schema["properties"].(map[string]any)
	return ok
}

// getFieldType gets a human-readable type description
func getFieldType(schema document.Schema) string {
	switch t := schemaType(schema); t {
	case "array":
		if items, ok := asSchema(schema["items"]); ok {
			return fmt.Sprintf("array<%s>", schemaLabel(items))
		}
		return "array"
	case "object":
		if addProps, ok := asSchema(schema["additionalProperties"]); ok {
			return fmt.Sprintf("object<string, %s>", schemaLabel(addProps))
		}
		return "object"
	default:
		return t
	}
}

func getString(schema document.Schema, key string) string {
	if val, ok := schema[key].(string); ok {
		return val
	}
	return ""
}

func getBool(schema document.Schema, key string) bool {
	if val, ok := schema[key].(bool); ok {
		return val
	}
	return false
}
