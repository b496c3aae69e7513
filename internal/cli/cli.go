package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/studiowebux/oasedit/internal/config"
	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/filter"
	"github.com/studiowebux/oasedit/internal/runner"
	"github.com/studiowebux/oasedit/internal/store"
	"gopkg.in/yaml.v3"
)

// ErrRequestFailed is returned when the request errored or answered 4xx/5xx.
// The formatted result has already been written.
var ErrRequestFailed = errors.New("request failed")

// promptForVariable prompts the user to enter a value for a parameter
func promptForVariable(in io.Reader, out io.Writer, name string) (string, error) {
	fmt.Fprintf(out, "Enter value for '%s': ", name)
	reader := bufio.NewReader(in)
	value, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && value != "") {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// isInteractive checks if stdin is a terminal (not piped)
func isInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// ParseAssignments splits key=value pairs. A bare key maps to "".
func ParseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, _ := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid assignment %q (expected key=value)", pair)
		}
		out[key] = value
	}
	return out, nil
}

// RunOptions contains options for sending one operation in CLI mode
type RunOptions struct {
	Path         string
	Method       string
	Params       []string // name=value
	Credentials  []string // scheme=value
	Server       string
	Body         string
	OutputFormat string // json, yaml, text, body
	SavePath     string
	ShowFull     bool
	Filter       string // JMESPath filter expression
	Query        string // JMESPath query or $(bash command)
	Prompt       bool   // ask for missing required parameters on a terminal
	Highlight    bool
	Style        string // chroma style for highlighted bodies
}

// IO bundles the streams Run reads from and writes to
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run sends one operation of doc through r and prints the result
func Run(ctx context.Context, r *runner.Runner, doc *document.Document, opts RunOptions, streams IO) (*runner.Result, error) {
	if doc == nil {
		return nil, store.ErrNoDocument
	}
	method := strings.ToLower(opts.Method)
	item, op := doc.Operation(opts.Path, method)
	if op == nil {
		return nil, fmt.Errorf("%w: %s %s", runner.ErrOperationNotFound, strings.ToUpper(method), opts.Path)
	}

	params, err := ParseAssignments(opts.Params)
	if err != nil {
		return nil, err
	}
	creds, err := ParseAssignments(opts.Credentials)
	if err != nil {
		return nil, err
	}

	key := runner.Key(opts.Path, method)
	state := r.State()
	for name, value := range params {
		state.SetParam(key, name, value)
	}
	for scheme, value := range creds {
		state.SetCredential(scheme, value)
	}
	if opts.Server != "" {
		state.SetServer(key, opts.Server)
	}
	if opts.Body != "" {
		state.SetBody(key, opts.Body)
	}

	if opts.Prompt && isInteractive() {
		declared, err := runner.ResolveParameters(doc.Components, item, op)
		if err != nil {
			return nil, err
		}
		for _, p := range declared {
			if (!p.Required && p.In != "path") || params[p.Name] != "" {
				continue
			}
			value, err := promptForVariable(streams.In, streams.Err, p.Name)
			if err != nil {
				return nil, fmt.Errorf("failed to read input for '%s': %w", p.Name, err)
			}
			state.SetParam(key, p.Name, value)
		}
	}

	result := r.Send(ctx, opts.Path, method)
	for _, w := range result.Warnings {
		fmt.Fprintf(streams.Err, "Warning: %s\n", w)
	}

	if opts.Filter != "" || opts.Query != "" {
		filtered, err := filter.Apply(ctx, result.Body, opts.Filter, opts.Query)
		if err != nil {
			fmt.Fprintf(streams.Err, "Warning: filter/query error: %v\n", err)
		} else {
			result.Body = filtered
		}
	}

	if opts.OutputFormat == "" {
		opts.OutputFormat = defaultOutputFormat()
	}
	output, err := FormatOutput(result, opts.OutputFormat, opts.ShowFull)
	if err != nil {
		return result, fmt.Errorf("failed to format output: %w", err)
	}
	if opts.OutputFormat == "text" && !result.Failed() {
		if declared := runner.DeclaredResponse(doc, opts.Path, method, result.Status); declared != "" {
			output = strings.Replace(output, "\n", fmt.Sprintf(" (%s)\n", declared), 1)
		}
	}

	if opts.SavePath != "" {
		if err := os.WriteFile(opts.SavePath, []byte(output), config.FilePermissions); err != nil {
			return result, fmt.Errorf("failed to save response: %w", err)
		}
		fmt.Fprintf(streams.Err, "Response saved to %s\n", opts.SavePath)
	} else if err := writeOutput(streams.Out, output, result, opts); err != nil {
		return result, err
	}

	if result.Failed() || result.Status >= 400 {
		return result, ErrRequestFailed
	}
	return result, nil
}

// defaultOutputFormat shows only the body when stdout is piped
func defaultOutputFormat() string {
	stat, err := os.Stdout.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		return "body"
	}
	return "text"
}

// writeOutput prints output, highlighting a JSON or YAML body when asked
func writeOutput(w io.Writer, output string, result *runner.Result, opts RunOptions) error {
	lexer := ""
	switch {
	case opts.OutputFormat == "json":
		lexer = "json"
	case opts.OutputFormat == "yaml":
		lexer = "yaml"
	case opts.OutputFormat == "body" && result.Data != nil:
		lexer = "json"
	}
	if !opts.Highlight || lexer == "" {
		_, err := io.WriteString(w, output)
		return err
	}
	return Highlight(w, output, lexer, opts.Style)
}

// Highlight writes source with terminal colors
func Highlight(w io.Writer, source, lexer, style string) error {
	if style == "" {
		style = "monokai"
	}
	if err := quick.Highlight(w, source, lexer, "terminal256", style); err != nil {
		_, werr := io.WriteString(w, source)
		return werr
	}
	return nil
}

// StyleForTheme maps the stored theme to a chroma style
func StyleForTheme(theme store.Theme) string {
	if theme == store.ThemeDark {
		return "monokai"
	}
	return "github"
}

// FormatOutput formats the result based on the output format
func FormatOutput(result *runner.Result, format string, showFull bool) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil

	case "yaml":
		data, err := yaml.Marshal(result)
		if err != nil {
			return "", err
		}
		return string(data), nil

	case "body":
		return result.Body, nil

	default:
		var sb strings.Builder

		if result.Failed() {
			if result.Status > 0 {
				sb.WriteString(fmt.Sprintf("%s%d %s%s\n", getStatusColor(result.Status), result.Status, result.StatusText, colorReset))
			}
			sb.WriteString(fmt.Sprintf("%s %s\n", result.Method, result.URL))
			sb.WriteString(fmt.Sprintf("%sError: %s%s\n", colorRed, result.Error, colorReset))
			if result.Body != "" {
				sb.WriteString("\n" + result.Body + "\n")
			}
			return sb.String(), nil
		}

		statusColor := getStatusColor(result.Status)
		sb.WriteString(fmt.Sprintf("%s%d %s%s\n", statusColor, result.Status, result.StatusText, colorReset))
		sb.WriteString(fmt.Sprintf("Duration: %s | Size: %s\n",
			runner.FormatDuration(result.Duration),
			runner.FormatSize(result.ResponseSize)))

		if showFull {
			sb.WriteString(fmt.Sprintf("\n%s %s\n", result.Method, result.URL))
			if len(result.Headers) > 0 {
				sb.WriteString("\nHeaders:\n")
				names := make([]string, 0, len(result.Headers))
				for name := range result.Headers {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					sb.WriteString(fmt.Sprintf("  %s: %s\n", name, result.Headers[name]))
				}
			}
		}

		if result.Body != "" {
			if showFull {
				sb.WriteString("\nBody:\n")
			} else {
				sb.WriteString("\n")
			}
			sb.WriteString(prettyBody(result))
			sb.WriteString("\n")
		}

		return sb.String(), nil
	}
}

// prettyBody indents JSON bodies and leaves anything else untouched
func prettyBody(result *runner.Result) string {
	if result.Data == nil {
		return result.Body
	}
	data, err := json.MarshalIndent(result.Data, "", "  ")
	if err != nil {
		return result.Body
	}
	return string(data)
}

// ANSI color codes
const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
)

func getStatusColor(status int) string {
	if runner.IsSuccessStatus(status) {
		return colorGreen
	} else if status >= 400 {
		return colorRed
	}
	return colorYellow
}
