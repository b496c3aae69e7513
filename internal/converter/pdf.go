package converter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/studiowebux/oasedit/internal/document"
)

const (
	pdfPageWidth   = 190.0
	pdfMarginLeft  = 10.0
	pdfMarginTop   = 10.0
	pdfMarginRight = 10.0
	pdfLineHeight  = 5.0
)

var methodColors = map[string][3]int{
	"GET":     {97, 175, 254},
	"POST":    {73, 204, 144},
	"PUT":     {252, 161, 48},
	"DELETE":  {249, 62, 62},
	"PATCH":   {80, 227, 194},
	"HEAD":    {144, 97, 249},
	"OPTIONS": {128, 128, 128},
}

// PDFConverter renders a document as a PDF reference
type PDFConverter struct {
	pdf      *gofpdf.Fpdf
	tocItems []tocItem
}

type tocItem struct {
	title  string
	level  int
	linkID int
}

// NewPDFConverter creates a new PDF converter.
func NewPDFConverter() *PDFConverter {
	return &PDFConverter{}
}

// Format returns the output format name.
func (c *PDFConverter) Format() string {
	return FormatPDF
}

// Convert writes the title page, a linked table of contents, the servers,
// every endpoint grouped by tag, the schemas and the security schemes
func (c *PDFConverter) Convert(doc *document.Document, output io.Writer) error {
	c.pdf = gofpdf.New("P", "mm", "A4", "")
	c.pdf.SetMargins(pdfMarginLeft, pdfMarginTop, pdfMarginRight)
	c.pdf.SetDrawColor(180, 180, 180)
	c.tocItems = nil

	endpoints := collectEndpoints(doc)
	groups, tags := groupByTag(endpoints)

	// Links are created up front so the table of contents can point forward
	c.collectTOC(doc, groups, tags)
	c.addTitlePage(doc)
	c.addTableOfContents()
	c.addContent(doc, groups, tags)

	if err := c.pdf.Error(); err != nil {
		return err
	}
	return c.pdf.Output(output)
}

func (c *PDFConverter) addTOC(title string, level int) {
	c.tocItems = append(c.tocItems, tocItem{title: title, level: level, linkID: c.pdf.AddLink()})
}

func (c *PDFConverter) collectTOC(doc *document.Document, groups map[string][]endpointRef, tags []string) {
	c.addTOC("Overview", 1)
	if len(doc.Servers) > 0 {
		c.addTOC("Servers", 1)
	}
	c.addTOC("API Endpoints", 1)
	for _, tag := range tags {
		c.addTOC(tag, 2)
		for _, ep := range groups[tag] {
			c.addTOC(fmt.Sprintf("%s %s", formatMethod(ep.method), ep.path), 3)
		}
	}
	if doc.Components != nil && len(doc.Components.Schemas) > 0 {
		c.addTOC("Schemas", 1)
	}
	if doc.Components != nil && len(doc.Components.SecuritySchemes) > 0 {
		c.addTOC("Security Schemes", 1)
	}
}

func (c *PDFConverter) addTitlePage(doc *document.Document) {
	c.pdf.AddPage()

	c.pdf.SetFont("Arial", "B", 28)
	c.pdf.Ln(40)
	c.pdf.CellFormat(pdfPageWidth, 15, c.text(doc.Title()), "", 1, "C", false, 0, "")
	c.pdf.Ln(5)

	if doc.Info != nil {
		c.pdf.SetFont("Arial", "", 14)
		c.pdf.SetTextColor(100, 100, 100)
		c.pdf.CellFormat(pdfPageWidth, 8, c.text("Version "+doc.Info.Version), "", 1, "C", false, 0, "")
		c.pdf.SetTextColor(0, 0, 0)
		c.pdf.Ln(20)

		if doc.Info.Description != "" {
			c.pdf.SetFont("Arial", "", 11)
			c.pdf.MultiCell(pdfPageWidth, 6, c.text(stripHTML(doc.Info.Description)), "", "C", false)
		}
	}

	c.pdf.Ln(30)
	c.pdf.SetFont("Arial", "", 10)
	c.pdf.SetTextColor(128, 128, 128)
	c.pdf.CellFormat(pdfPageWidth, 6, "OpenAPI "+c.text(doc.OpenAPI), "", 1, "C", false, 0, "")
	c.pdf.SetTextColor(0, 0, 0)
}

func (c *PDFConverter) addTableOfContents() {
	c.pdf.AddPage()

	c.pdf.SetFont("Arial", "B", 20)
	c.pdf.CellFormat(pdfPageWidth, 10, "Table of Contents", "", 1, "", false, 0, "")
	c.pdf.Ln(8)

	for _, item := range c.tocItems {
		indent := float64(item.level-1) * 8

		switch item.level {
		case 1:
			c.pdf.SetFont("Arial", "B", 12)
		case 2:
			c.pdf.SetFont("Arial", "B", 10)
		default:
			c.pdf.SetFont("Arial", "", 9)
		}

		c.pdf.SetX(pdfMarginLeft + indent)
		title := item.title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		c.pdf.CellFormat(pdfPageWidth-indent, pdfLineHeight, c.text(title), "", 1, "", false, item.linkID, "")
	}
}

func (c *PDFConverter) addContent(doc *document.Document, groups map[string][]endpointRef, tags []string) {
	toc := 0
	next := func() {
		if toc < len(c.tocItems) {
			c.pdf.SetLink(c.tocItems[toc].linkID, -1, -1)
		}
		toc++
	}

	c.pdf.AddPage()
	next()
	c.addSectionHeader("Overview")
	c.addOverview(doc)

	if len(doc.Servers) > 0 {
		c.checkPageBreak(40)
		next()
		c.addSectionHeader("Servers")
		for _, server := range doc.Servers {
			c.pdf.SetFont("Arial", "B", 10)
			c.pdf.SetTextColor(0, 102, 204)
			c.pdf.CellFormat(pdfPageWidth, 6, c.text(server.URL), "", 1, "", false, 0, "")
			c.pdf.SetTextColor(0, 0, 0)
			if server.Description != "" {
				c.pdf.SetFont("Arial", "", 9)
				c.pdf.SetTextColor(100, 100, 100)
				c.pdf.MultiCell(pdfPageWidth, 4, c.text(server.Description), "", "", false)
				c.pdf.SetTextColor(0, 0, 0)
			}
			c.pdf.Ln(2)
		}
	}

	c.pdf.AddPage()
	next()
	c.addSectionHeader("API Endpoints")

	tagDescs := make(map[string]string)
	for _, t := range doc.Tags {
		tagDescs[t.Name] = t.Description
	}

	for _, tag := range tags {
		c.pdf.AddPage()
		next()

		c.pdf.SetFont("Arial", "B", 14)
		c.pdf.SetFillColor(240, 240, 240)
		c.pdf.CellFormat(pdfPageWidth, 8, c.text(tag), "", 1, "", true, 0, "")
		c.pdf.Ln(4)
		if desc := tagDescs[tag]; desc != "" {
			c.pdf.SetFont("Arial", "", 10)
			c.pdf.MultiCell(pdfPageWidth, 5, c.text(stripHTML(desc)), "", "", false)
			c.pdf.Ln(4)
		}

		for _, ep := range groups[tag] {
			c.checkPageBreak(50)
			next()
			c.addEndpoint(doc, ep)
		}
	}

	if doc.Components != nil && len(doc.Components.Schemas) > 0 {
		c.pdf.AddPage()
		next()
		c.addSectionHeader("Schemas")
		for _, name := range doc.Components.Keys(document.KindSchemas) {
			c.checkPageBreak(30)
			c.addComponentSchema(doc, name, doc.Components.Schemas[name])
		}
	}

	if doc.Components != nil && len(doc.Components.SecuritySchemes) > 0 {
		c.pdf.AddPage()
		next()
		c.addSectionHeader("Security Schemes")
		c.addSecuritySchemes(doc)
	}
}

func (c *PDFConverter) addOverview(doc *document.Document) {
	if doc.Info == nil {
		return
	}
	c.pdf.SetFont("Arial", "", 10)
	if doc.Info.Description != "" {
		c.pdf.MultiCell(pdfPageWidth, 5, c.text(stripHTML(doc.Info.Description)), "", "", false)
		c.pdf.Ln(4)
	}
	var rows [][]string
	if doc.Info.TermsOfService != "" {
		rows = append(rows, []string{"Terms of service", doc.Info.TermsOfService})
	}
	if ct := doc.Info.Contact; ct != nil {
		rows = append(rows, []string{"Contact", strings.TrimSpace(strings.Join([]string{ct.Name, ct.Email, ct.URL}, " "))})
	}
	if l := doc.Info.License; l != nil {
		rows = append(rows, []string{"License", strings.TrimSpace(l.Name + " " + l.URL)})
	}
	for _, row := range rows {
		c.addTableRow([]float64{45, 145}, row, []string{"L", "L"})
	}
	c.pdf.Ln(4)
}

func (c *PDFConverter) addSectionHeader(title string) {
	c.pdf.SetFont("Arial", "B", 18)
	c.pdf.CellFormat(pdfPageWidth, 10, title, "", 1, "", false, 0, "")
	c.pdf.Ln(4)
}

func (c *PDFConverter) addSubHeader(title string) {
	c.pdf.SetFont("Arial", "B", 10)
	c.pdf.SetTextColor(60, 60, 60)
	c.pdf.CellFormat(pdfPageWidth, 6, title, "", 1, "", false, 0, "")
	c.pdf.SetTextColor(0, 0, 0)
}

func (c *PDFConverter) addEndpoint(doc *document.Document, ep endpointRef) {
	op := ep.operation
	method := formatMethod(ep.method)

	color, ok := methodColors[method]
	if !ok {
		color = [3]int{128, 128, 128}
	}
	c.pdf.SetFont("Arial", "B", 11)
	c.pdf.SetFillColor(color[0], color[1], color[2])
	c.pdf.SetTextColor(255, 255, 255)
	methodWidth := float64(len(method)*3) + 8
	c.pdf.CellFormat(methodWidth, 7, method, "", 0, "C", true, 0, "")

	c.pdf.SetTextColor(0, 0, 0)
	c.pdf.CellFormat(pdfPageWidth-methodWidth, 7, c.text(" "+ep.path), "", 1, "", false, 0, "")
	c.pdf.Ln(2)

	if op.OperationID != "" {
		c.pdf.SetFont("Arial", "", 8)
		c.pdf.SetTextColor(128, 128, 128)
		c.pdf.CellFormat(pdfPageWidth, 4, c.text("Operation ID: "+op.OperationID), "", 1, "", false, 0, "")
		c.pdf.SetTextColor(0, 0, 0)
	}
	if op.Deprecated {
		c.pdf.SetFont("Arial", "I", 8)
		c.pdf.CellFormat(pdfPageWidth, 4, "Deprecated", "", 1, "", false, 0, "")
	}
	if op.Summary != "" {
		c.pdf.SetFont("Arial", "B", 10)
		c.pdf.MultiCell(pdfPageWidth, 5, c.text(stripHTML(op.Summary)), "", "", false)
	}
	if op.Description != "" {
		c.pdf.SetFont("Arial", "", 9)
		c.pdf.MultiCell(pdfPageWidth, 4, c.text(stripHTML(op.Description)), "", "", false)
	}
	c.pdf.Ln(2)

	if len(ep.params) > 0 {
		c.addSubHeader("Parameters")
		c.addParameterTable(ep.params)
	}
	if op.RequestBody != nil {
		if rb, err := op.RequestBody.Resolve(doc.Components); err == nil {
			c.addSubHeader("Request Body")
			c.addRequestBody(rb)
		}
	}
	if len(op.Responses) > 0 {
		c.addSubHeader("Responses")
		c.addResponseTable(resolvedResponses(doc, op))
	}

	c.pdf.Ln(2)
	c.pdf.SetDrawColor(220, 220, 220)
	c.pdf.Line(pdfMarginLeft, c.pdf.GetY(), pdfMarginLeft+pdfPageWidth, c.pdf.GetY())
	c.pdf.SetDrawColor(180, 180, 180)
	c.pdf.Ln(6)
}

func (c *PDFConverter) addTableHeader(colWidths []float64, headers []string) {
	c.pdf.SetFont("Arial", "B", 8)
	c.pdf.SetFillColor(245, 245, 245)
	for i, header := range headers {
		c.pdf.CellFormat(colWidths[i], 6, header, "1", 0, "", true, 0, "")
	}
	c.pdf.Ln(-1)
	c.pdf.SetFont("Arial", "", 8)
}

func (c *PDFConverter) addParameterTable(params []*document.Parameter) {
	colWidths := []float64{35, 20, 15, 50, 70}
	c.addTableHeader(colWidths, []string{"Name", "In", "Required", "Type", "Description"})

	for _, param := range params {
		required := "No"
		if param.Required || param.In == "path" {
			required = "Yes"
		}
		contents := []string{param.Name, param.In, required, schemaLabel(param.Schema), stripHTML(param.Description)}
		c.addTableRow(colWidths, contents, []string{"L", "L", "C", "L", "L"})
	}
	c.pdf.Ln(3)
}

func (c *PDFConverter) addRequestBody(rb *document.RequestBody) {
	if rb.Required {
		c.pdf.SetFont("Arial", "I", 9)
		c.pdf.SetTextColor(60, 60, 60)
		c.pdf.CellFormat(pdfPageWidth, 5, "Required", "", 1, "", false, 0, "")
		c.pdf.SetTextColor(0, 0, 0)
	}
	if rb.Description != "" {
		c.pdf.SetFont("Arial", "", 9)
		c.pdf.MultiCell(pdfPageWidth, 4, c.text(stripHTML(rb.Description)), "", "", false)
	}
	if len(rb.Content) == 0 {
		return
	}

	c.pdf.Ln(2)
	colWidths := []float64{60, 130}
	c.addTableHeader(colWidths, []string{"Content-Type", "Object"})

	contentTypes := make([]string, 0, len(rb.Content))
	for ct := range rb.Content {
		contentTypes = append(contentTypes, ct)
	}
	sort.Strings(contentTypes)

	var examples [][2]any
	for _, ct := range contentTypes {
		media := rb.Content[ct]
		c.addTableRow(colWidths, []string{ct, schemaLabel(media.Schema)}, []string{"L", "L"})
		if media.Example != nil {
			examples = append(examples, [2]any{ct, media.Example})
		}
	}

	if len(examples) > 0 {
		c.pdf.Ln(4)
		c.addSubHeader("Request Examples")
		for _, ex := range examples {
			c.addExample(ex[0].(string), ex[1])
		}
	}
	c.pdf.Ln(2)
}

func (c *PDFConverter) addResponseTable(rows []responseRow) {
	colWidths := []float64{25, 95, 70}
	c.addTableHeader(colWidths, []string{"Status", "Description", "Object"})
	for _, r := range rows {
		c.addTableRow(colWidths, []string{r.code, r.description, r.object}, []string{"C", "L", "L"})
	}
	c.pdf.Ln(3)
}

func (c *PDFConverter) addComponentSchema(doc *document.Document, name string, schema document.Schema) {
	c.pdf.SetFont("Arial", "B", 12)
	c.pdf.CellFormat(pdfPageWidth, 7, c.text(name), "", 1, "", false, 0, "")

	resolved := resolveSchema(doc, schema)
	if t := schemaType(resolved); t != "object" {
		c.pdf.SetFont("Arial", "", 9)
		c.pdf.CellFormat(pdfPageWidth, 5, c.text("Type: "+schemaLabel(schema)), "", 1, "", false, 0, "")
	}
	if desc := getString(resolved, "description"); desc != "" {
		c.pdf.SetFont("Arial", "", 9)
		c.pdf.SetTextColor(100, 100, 100)
		c.pdf.MultiCell(pdfPageWidth, 4, c.text(stripHTML(desc)), "", "", false)
		c.pdf.SetTextColor(0, 0, 0)
	}

	names, props := sortedProperties(resolved)
	if len(names) > 0 {
		c.pdf.Ln(2)
		colWidths := []float64{50, 50, 90}
		c.addTableHeader(colWidths, []string{"Name", "Type", "Description"})
		for _, propName := range names {
			prop, _ := asSchema(props[propName])
			c.addTableRow(colWidths, []string{propName, schemaLabel(prop), stripHTML(getString(prop, "description"))}, []string{"L", "L", "L"})
		}
	}
	c.pdf.Ln(6)
}

func (c *PDFConverter) addSecuritySchemes(doc *document.Document) {
	colWidths := []float64{45, 35, 110}
	c.addTableHeader(colWidths, []string{"Name", "Type", "Details"})
	for _, name := range doc.Components.Keys(document.KindSecuritySchemes) {
		s, err := doc.Components.SecuritySchemes[name].Resolve(doc.Components)
		if err != nil {
			continue
		}
		c.addTableRow(colWidths, []string{name, s.Type, schemeDetails(s)}, []string{"L", "L", "L"})
	}
}

// schemeDetails summarises the type-specific fields of a security scheme
func schemeDetails(s *document.SecurityScheme) string {
	var parts []string
	switch s.Type {
	case document.SchemeHTTP:
		parts = append(parts, "scheme: "+s.Scheme)
		if s.BearerFormat != "" {
			parts = append(parts, "format: "+s.BearerFormat)
		}
	case document.SchemeAPIKey:
		parts = append(parts, fmt.Sprintf("%s in %s", s.Name, s.In))
	case document.SchemeOAuth2:
		if s.Flows != nil {
			flows := s.Flows.Named()
			names := make([]string, 0, len(flows))
			for name := range flows {
				names = append(names, name)
			}
			sort.Strings(names)
			parts = append(parts, "flows: "+strings.Join(names, ", "))
		}
	case document.SchemeOpenIDConnect:
		parts = append(parts, s.OpenIDConnectURL)
	}
	if s.Description != "" {
		parts = append(parts, stripHTML(s.Description))
	}
	return strings.Join(parts, "; ")
}

func (c *PDFConverter) addTableRow(colWidths []float64, contents []string, aligns []string) {
	maxLines := 1
	for i, content := range contents {
		contents[i] = c.text(content)
		if lines := c.pdf.SplitLines([]byte(contents[i]), colWidths[i]); len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	rowHeight := float64(maxLines) * pdfLineHeight
	c.checkPageBreak(rowHeight)

	startX := c.pdf.GetX()
	startY := c.pdf.GetY()
	for i, content := range contents {
		align := ""
		if i < len(aligns) {
			align = aligns[i]
		}
		c.pdf.SetXY(startX, startY)
		c.pdf.MultiCell(colWidths[i], pdfLineHeight, content, "0", align, false)
		c.pdf.Rect(startX, startY, colWidths[i], rowHeight, "D")
		startX += colWidths[i]
	}
	c.pdf.SetXY(pdfMarginLeft, startY+rowHeight)
}

func (c *PDFConverter) addExample(title string, example any) {
	c.checkPageBreak(30)

	c.pdf.SetFont("Arial", "I", 9)
	c.pdf.SetTextColor(60, 60, 60)
	c.pdf.CellFormat(pdfPageWidth, 6, c.text("Example ("+title+"):"), "", 1, "", false, 0, "")

	c.pdf.SetFont("Courier", "", 8)
	c.pdf.SetTextColor(0, 0, 0)
	c.pdf.SetFillColor(250, 250, 250)

	content := fmt.Sprintf("%v", example)
	if b, err := json.MarshalIndent(example, "", "  "); err == nil {
		content = string(b)
	}
	c.checkPageBreak(float64(strings.Count(content, "\n")+1)*4 + 2)
	c.pdf.MultiCell(pdfPageWidth, 4, c.text(content), "1", "", true)
	c.pdf.Ln(4)
}

func (c *PDFConverter) checkPageBreak(height float64) {
	_, pageHeight := c.pdf.GetPageSize()
	_, _, _, bottomMargin := c.pdf.GetMargins()
	if c.pdf.GetY()+height > pageHeight-bottomMargin-10 {
		c.pdf.AddPage()
	}
}

// text converts UTF-8 to the code page of the core fonts
func (c *PDFConverter) text(s string) string {
	return c.pdf.UnicodeTranslatorFromDescriptor("")(s)
}
