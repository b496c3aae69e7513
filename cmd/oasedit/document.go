package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/studiowebux/oasedit/internal/converter"
	"github.com/studiowebux/oasedit/internal/editor"
	"github.com/studiowebux/oasedit/internal/filter"
	"github.com/studiowebux/oasedit/internal/store"
)

// Flags for import
var (
	importFallback string
)

// Flags for export
var (
	exportOutput     string
	exportOrganizeBy string
	exportServer     string
)

// Flags for info set
var (
	infoTitle          string
	infoVersion        string
	infoSummary        string
	infoDescription    string
	infoTermsOfService string
	infoContactName    string
	infoContactEmail   string
	infoContactURL     string
	infoLicenseName    string
	infoLicenseURL     string
)

var importCmd = &cobra.Command{
	Use:   "import <file|url|->",
	Short: "Replace the stored document with an OpenAPI document",
	Long: `Import an OpenAPI document from a file, a URL or stdin ("-").

The markup language is detected from the content; the file extension is only a hint.
Swagger 2.0 and Arazzo documents are rejected and the stored document is kept.

With a URL, --fallback names a file read when the fetch fails.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return importArg(cmd, args[0], importFallback)
	},
}

// importArg loads arg into the store and reports what was imported
func importArg(cmd *cobra.Command, arg, fallback string) error {
	src, err := converter.SourceFromArg(arg, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if fallback != "" {
		text, err := os.ReadFile(fallback)
		if err != nil {
			return fmt.Errorf("failed to read fallback: %w", err)
		}
		src.Text = text
	}

	lang, err := current.newImporter().Import(cmd.Context(), src)
	if err != nil {
		return err
	}
	doc := current.store.Get()
	fmt.Fprintf(cmd.ErrOrStderr(), "Imported %q (%s, OpenAPI %s)\n", doc.Title(), lang, doc.OpenAPI)
	return nil
}

var exportCmd = &cobra.Command{
	Use:   "export <json|yaml|pdf|docx|http>",
	Short: "Export the stored document",
	Long: `Export the stored document.

json and yaml write the document itself (openapi-schema.json / openapi-schema.yaml).
pdf and docx write a reference document. http writes one .http request file per operation
into a directory organized by tags, paths or flat.

Use -o - to write to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc := current.store.Get()
		if doc == nil {
			return store.ErrNoDocument
		}
		format := strings.ToLower(args[0])

		if format == "http" {
			dir := exportOutput
			if dir == "" {
				dir = "requests"
			}
			count, err := converter.WriteHTTPFiles(doc, converter.HTTPOptions{
				OutputDir:  dir,
				OrganizeBy: exportOrganizeBy,
				Server:     exportServer,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d request files to %s\n", count, dir)
			return nil
		}

		if _, err := converter.New(format); err != nil {
			return err
		}

		if exportOutput == "-" {
			return converter.Export(doc, format, cmd.OutOrStdout())
		}
		path := exportOutput
		if path == "" {
			path = converter.DefaultFilename(format)
		}
		return exportToFile(doc.Title(), format, path)
	},
}

func exportToFile(title, format, path string) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := converter.Export(current.store.Get(), format, f); err != nil {
		return err
	}
	current.log.Info().Str("format", format).Str("file", path).Str("title", title).Msg("document exported")
	fmt.Fprintf(os.Stderr, "Exported %s\n", path)
	return nil
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the stored document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current.store.Clear()
		fmt.Fprintln(cmd.ErrOrStderr(), "Document cleared")
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show document metadata",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := editor.NewInfoEditor(current.store).Info()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Title:       %s\n", info.Title)
		fmt.Fprintf(w, "Version:     %s\n", info.Version)
		printIf(w, "Summary", info.Summary)
		printIf(w, "Description", info.Description)
		printIf(w, "Terms", info.TermsOfService)
		if info.Contact != nil {
			printIf(w, "Contact", strings.TrimSpace(strings.Join([]string{info.Contact.Name, info.Contact.Email, info.Contact.URL}, " ")))
		}
		if info.License != nil {
			printIf(w, "License", strings.TrimSpace(info.License.Name+" "+info.License.URL))
		}
		return nil
	},
}

var infoSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update document metadata",
	Long: `Update document metadata. Only the flags given are changed.

Title and version cannot be emptied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		patch := editor.InfoPatch{
			Title:          changed(cmd, "title", infoTitle),
			Version:        changed(cmd, "version", infoVersion),
			Summary:        changed(cmd, "summary", infoSummary),
			Description:    changed(cmd, "description", infoDescription),
			TermsOfService: changed(cmd, "terms", infoTermsOfService),
			ContactName:    changed(cmd, "contact-name", infoContactName),
			ContactEmail:   changed(cmd, "contact-email", infoContactEmail),
			ContactURL:     changed(cmd, "contact-url", infoContactURL),
			LicenseName:    changed(cmd, "license-name", infoLicenseName),
			LicenseURL:     changed(cmd, "license-url", infoLicenseURL),
		}
		if err := editor.NewInfoEditor(current.store).UpdateInfo(patch); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Info updated")
		return nil
	},
}

var themeCmd = &cobra.Command{
	Use:   "theme [light|dark|toggle]",
	Short: "Show or change the color theme",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), current.theme.Get())
			return nil
		}
		if args[0] == "toggle" {
			fmt.Fprintln(cmd.OutOrStdout(), current.theme.Toggle())
			return nil
		}
		theme, err := store.ParseTheme(args[0])
		if err != nil {
			return err
		}
		if err := current.theme.Set(theme); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme)
		return nil
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <expression>",
	Short: "Evaluate a JMESPath expression against the document",
	Example: `  oasedit query 'keys(paths)'
  oasedit query 'components.schemas.Pet.required'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc := current.store.Get()
		if doc == nil {
			return store.ErrNoDocument
		}
		jp, err := filter.Compile(args[0])
		if err != nil {
			return err
		}
		raw, err := doc.JSON()
		if err != nil {
			return err
		}
		var tree any
		if err := json.Unmarshal(raw, &tree); err != nil {
			return fmt.Errorf("failed to decode document: %w", err)
		}
		res, err := jp.Search(tree)
		if err != nil {
			return fmt.Errorf("JMESPath search failed: %w", err)
		}
		out, err := filter.Indent(res)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFallback, "fallback", "", "file read when the URL cannot be fetched")

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file or directory (default openapi-schema.<ext>, requests/ for http)")
	exportCmd.Flags().StringVar(&exportOrganizeBy, "organize-by", converter.OrganizeByTags, "http: organization strategy (tags/paths/flat)")
	exportCmd.Flags().StringVar(&exportServer, "server", "", "http: base URL written to @baseUrl")

	f := infoSetCmd.Flags()
	f.StringVar(&infoTitle, "title", "", "document title")
	f.StringVar(&infoVersion, "version", "", "document version")
	f.StringVar(&infoSummary, "summary", "", "short summary")
	f.StringVar(&infoDescription, "description", "", "description (markdown)")
	f.StringVar(&infoTermsOfService, "terms", "", "terms of service URL")
	f.StringVar(&infoContactName, "contact-name", "", "contact name")
	f.StringVar(&infoContactEmail, "contact-email", "", "contact email")
	f.StringVar(&infoContactURL, "contact-url", "", "contact URL")
	f.StringVar(&infoLicenseName, "license-name", "", "license name")
	f.StringVar(&infoLicenseURL, "license-url", "", "license URL")
	infoCmd.AddCommand(infoSetCmd)
}

// changed returns a pointer to value when the flag was given
func changed(cmd *cobra.Command, name, value string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

func printIf(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "%-12s %s\n", label+":", value)
}
