package converter

import (
	"fmt"
	"io"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/studiowebux/oasedit/internal/document"
)

// DocxConverter converts documents to Word (DOCX) format.
type DocxConverter struct{}

// NewDocxConverter creates a new DOCX converter.
func NewDocxConverter() *DocxConverter {
	return &DocxConverter{}
}

// Format returns the output format name.
func (c *DocxConverter) Format() string {
	return FormatDOCX
}

// Convert transforms a document to DOCX format.
func (c *DocxConverter) Convert(doc *document.Document, output io.Writer) error {
	out, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	c.addTitle(out, doc)
	c.addServers(out, doc)
	c.addPaths(out, doc)
	c.addSchemas(out, doc)
	c.addSecurity(out, doc)

	if err := out.Write(output); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

func (c *DocxConverter) addTitle(out *docx.RootDoc, doc *document.Document) {
	_, _ = out.AddHeading(doc.Title(), 0)
	if doc.Info == nil {
		return
	}
	out.AddParagraph(fmt.Sprintf("Version: %s", doc.Info.Version))
	if doc.Info.Description != "" {
		_, _ = out.AddHeading("Description", 1)
		out.AddParagraph(stripHTML(doc.Info.Description))
	}
	out.AddEmptyParagraph()
}

func (c *DocxConverter) addServers(out *docx.RootDoc, doc *document.Document) {
	if len(doc.Servers) == 0 {
		return
	}
	_, _ = out.AddHeading("Servers", 1)
	for _, server := range doc.Servers {
		text := server.URL
		if server.Description != "" {
			text = fmt.Sprintf("%s - %s", server.URL, server.Description)
		}
		out.AddParagraph("• " + text)
	}
	out.AddEmptyParagraph()
}

func (c *DocxConverter) addPaths(out *docx.RootDoc, doc *document.Document) {
	endpoints := collectEndpoints(doc)
	if len(endpoints) == 0 {
		return
	}
	_, _ = out.AddHeading("API Endpoints", 1)

	groups, tags := groupByTag(endpoints)
	for _, tag := range tags {
		_, _ = out.AddHeading(tag, 2)
		for _, ep := range groups[tag] {
			c.addOperation(out, doc, ep)
		}
	}
}

func (c *DocxConverter) addOperation(out *docx.RootDoc, doc *document.Document, ep endpointRef) {
	op := ep.operation
	_, _ = out.AddHeading(fmt.Sprintf("%s %s", formatMethod(ep.method), ep.path), 3)

	if op.Deprecated {
		out.AddParagraph("Deprecated")
	}
	if op.Summary != "" {
		out.AddParagraph(op.Summary)
	}
	if op.Description != "" {
		out.AddParagraph(stripHTML(op.Description))
	}

	if len(ep.params) > 0 {
		_, _ = out.AddHeading("Parameters", 4)
		for _, line := range formatParameters(ep.params) {
			out.AddParagraph("• " + line)
		}
	}

	if op.RequestBody != nil {
		if rb, err := op.RequestBody.Resolve(doc.Components); err == nil {
			_, _ = out.AddHeading("Request Body", 4)
			if rb.Description != "" {
				out.AddParagraph(stripHTML(rb.Description))
			}
			if media, ok := preferredMedia(rb.Content); ok {
				out.AddParagraph("• " + schemaLabel(media.Schema))
			}
		}
	}

	if rows := resolvedResponses(doc, op); len(rows) > 0 {
		_, _ = out.AddHeading("Responses", 4)
		for _, line := range formatResponses(rows) {
			out.AddParagraph("• " + line)
		}
	}

	out.AddEmptyParagraph()
}

func (c *DocxConverter) addSchemas(out *docx.RootDoc, doc *document.Document) {
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return
	}
	_, _ = out.AddHeading("Schemas", 1)
	for _, name := range doc.Components.Keys(document.KindSchemas) {
		schema := resolveSchema(doc, doc.Components.Schemas[name])
		_, _ = out.AddHeading(name, 2)
		if desc := getString(schema, "description"); desc != "" {
			out.AddParagraph(stripHTML(desc))
		}
		names, props := sortedProperties(schema)
		if len(names) == 0 {
			out.AddParagraph("Type: " + schemaLabel(doc.Components.Schemas[name]))
			continue
		}
		for _, prop := range names {
			s, _ := asSchema(props[prop])
			line := fmt.Sprintf("• %s (%s)", prop, schemaLabel(s))
			if desc := getString(s, "description"); desc != "" {
				line += ": " + stripHTML(desc)
			}
			out.AddParagraph(line)
		}
	}
	out.AddEmptyParagraph()
}

func (c *DocxConverter) addSecurity(out *docx.RootDoc, doc *document.Document) {
	if doc.Components == nil || len(doc.Components.SecuritySchemes) == 0 {
		return
	}
	_, _ = out.AddHeading("Security Schemes", 1)
	for _, name := range doc.Components.Keys(document.KindSecuritySchemes) {
		s, err := doc.Components.SecuritySchemes[name].Resolve(doc.Components)
		if err != nil {
			continue
		}
		out.AddParagraph(fmt.Sprintf("• %s (%s): %s", name, s.Type, schemeDetails(s)))
	}
}
