package converter

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/store"
)

// Export formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

// ExportBaseName is the file name, without extension, offered for exports
const ExportBaseName = "openapi-schema"

// ErrUnknownFormat is returned for an export format outside Formats
var ErrUnknownFormat = errors.New("unknown export format")

// Converter writes a document in one output format
type Converter interface {
	Convert(doc *document.Document, w io.Writer) error
	Format() string
}

// Formats lists the supported export formats
func Formats() []string {
	return []string{FormatJSON, FormatYAML, FormatPDF, FormatDOCX}
}

// New returns the converter for format
func New(format string) (Converter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		return jsonConverter{}, nil
	case FormatYAML, "yml":
		return yamlConverter{}, nil
	case FormatPDF:
		return NewPDFConverter(), nil
	case FormatDOCX:
		return NewDocxConverter(), nil
	}
	return nil, fmt.Errorf("%w %q (expected one of %s)", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
}

// DefaultFilename returns openapi-schema.<ext> for format
func DefaultFilename(format string) string {
	c, err := New(format)
	if err != nil {
		return ExportBaseName
	}
	return ExportBaseName + "." + c.Format()
}

// Export writes doc to w in the given format
func Export(doc *document.Document, format string, w io.Writer) error {
	if doc == nil {
		return store.ErrNoDocument
	}
	c, err := New(format)
	if err != nil {
		return err
	}
	if err := c.Convert(doc, w); err != nil {
		return fmt.Errorf("failed to export %s: %w", c.Format(), err)
	}
	return nil
}

type jsonConverter struct{}

func (jsonConverter) Format() string { return FormatJSON }

func (jsonConverter) Convert(doc *document.Document, w io.Writer) error {
	data, err := doc.JSON()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

type yamlConverter struct{}

func (yamlConverter) Format() string { return FormatYAML }

func (yamlConverter) Convert(doc *document.Document, w io.Writer) error {
	data, err := doc.YAML()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
