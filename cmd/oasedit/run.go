package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/studiowebux/oasedit/internal/cli"
	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/editor"
	"github.com/studiowebux/oasedit/internal/probe"
	"github.com/studiowebux/oasedit/internal/runner"
	"github.com/studiowebux/oasedit/internal/store"
	"github.com/studiowebux/oasedit/internal/types"
)

// Flags for run
var (
	flagParams      []string
	flagCredentials []string
	flagServer      string
	flagBody        string
	flagBodyFile    string
	flagOutput      string
	flagSave        string
	flagFull        bool
	flagFilter      string
	flagJMESQuery   string
	flagNoPrompt    bool
	flagNoColor     bool
)

// Flags for history
var (
	historyLimit int
	historyFull  bool
)

var runCmd = &cobra.Command{
	Use:   "run [method] [path]",
	Short: "Send an operation to a declared server",
	Long: `Send an operation of the stored document and print the response.

Parameters are given by name, credentials by security scheme name. Path parameters
and required parameters left out are prompted for on a terminal.
Without method and path an endpoint picker is shown.

Examples:
  oasedit run GET /pets/{petId} -p petId=7
  oasedit run post /pets -b '{"name":"Rex"}' -c bearerAuth=$TOKEN
  oasedit run GET /pets --query "[].name" -o body
  oasedit run GET /pets -s https://staging.example.com`,
	Args: cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc := current.store.Get()
		if doc == nil {
			return store.ErrNoDocument
		}

		method, path, err := pickOperation(args)
		if err != nil {
			return err
		}

		body := flagBody
		if flagBodyFile != "" {
			data, err := os.ReadFile(flagBodyFile)
			if err != nil {
				return fmt.Errorf("failed to read body: %w", err)
			}
			body = string(data)
		}

		r, err := current.newRunner()
		if err != nil {
			return err
		}

		_, err = cli.Run(cmd.Context(), r, doc, cli.RunOptions{
			Path:         path,
			Method:       method,
			Params:       flagParams,
			Credentials:  flagCredentials,
			Server:       flagServer,
			Body:         body,
			OutputFormat: flagOutput,
			SavePath:     flagSave,
			ShowFull:     flagFull,
			Filter:       flagFilter,
			Query:        flagJMESQuery,
			Prompt:       !flagNoPrompt,
			Highlight:    !flagNoColor && stdoutIsTerminal(),
			Style:        cli.StyleForTheme(current.theme.Get()),
		}, cli.IO{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()})
		return err
	},
}

func stdoutIsTerminal() bool {
	stat, err := os.Stdout.Stat()
	return err == nil && (stat.Mode()&os.ModeCharDevice) != 0
}

// pickOperation reads method and path from args, or asks for them
func pickOperation(args []string) (method, path string, err error) {
	switch len(args) {
	case 2:
		return strings.ToLower(args[0]), args[1], nil
	case 1:
		return "", "", fmt.Errorf("expected <method> <path>, got %q", args[0])
	}
	endpoints, err := editor.NewPathEditor(current.store).Endpoints()
	if err != nil {
		return "", "", err
	}
	value, err := cli.SelectOption("Select operation", cli.EndpointOptions(endpoints), 0)
	if err != nil {
		return "", "", err
	}
	return cli.SplitEndpoint(value)
}

var probeCmd = &cobra.Command{
	Use:   "probe [url]...",
	Short: "Check which declared servers answer",
	Long: `Probe every server of the stored document, or the URLs given, concurrently.

A server is live when it answers with anything but 404. ws:// and wss:// URLs are
probed with a websocket handshake. Variables are replaced by their defaults.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		urls := args
		if len(urls) == 0 {
			doc := current.store.Get()
			if doc == nil {
				return store.ErrNoDocument
			}
			for _, s := range doc.Servers {
				urls = append(urls, runner.ExpandServerURL(s))
			}
		}
		if len(urls) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No servers declared")
			return nil
		}

		w := cmd.OutOrStdout()
		statuses := current.newProber().Probe(cmd.Context(), urls, func(u probe.Update) {
			if u.Status == types.StatusChecking {
				return
			}
			fmt.Fprintf(w, "%-12s %s\n", u.Status, u.URL)
		})

		for _, s := range statuses {
			if s != types.StatusLive {
				return errors.New("some servers are unreachable")
			}
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [method path]",
	Short: "List sent requests",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected no arguments or <method> <path>")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if current.history == nil {
			return errors.New("history is disabled (history_enabled: false)")
		}
		var entries []types.HistoryEntry
		var err error
		if len(args) == 2 {
			entries, err = current.history.LoadForOperation(args[1], args[0])
			if historyLimit > 0 && len(entries) > historyLimit {
				entries = entries[:historyLimit]
			}
		} else {
			entries, err = current.history.Load(historyLimit)
		}
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, e := range entries {
			status := strconv.Itoa(e.ResponseStatus)
			if e.Error != "" {
				status = "ERR"
			}
			fmt.Fprintf(w, "%-5d %s  %-4s %-7s %s  %s\n", e.ID, e.Timestamp, status, e.Method, e.URL, runner.FormatDuration(e.Duration))
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one history entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if current.history == nil {
			return errors.New("history is disabled (history_enabled: false)")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		entry, err := current.history.Get(id)
		if err != nil {
			return err
		}
		if historyFull {
			return printJSON(cmd.OutOrStdout(), entry)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s %s\n", entry.Method, entry.URL)
		if entry.Error != "" {
			fmt.Fprintf(w, "Error: %s\n", entry.Error)
			return nil
		}
		fmt.Fprintf(w, "%d %s\n\n%s\n", entry.ResponseStatus, entry.ResponseStatusText, entry.ResponseBody)
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every history entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if current.history == nil {
			return nil
		}
		count, err := current.history.GetCount()
		if err != nil {
			return err
		}
		if err := current.history.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Deleted %d entries\n", count)
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one history entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if current.history == nil {
			return nil
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		return current.history.Delete(id)
	},
}

func authorizeURL(s *document.SecurityScheme) (string, error) {
	if authClientID == "" {
		return "", errors.New("--client-id is required")
	}
	return runner.AuthorizeURL(s, authClientID, authRedirectURL, authState)
}

func init() {
	f := runCmd.Flags()
	f.StringArrayVarP(&flagParams, "param", "p", nil, "parameter value (name=value), can be repeated")
	f.StringArrayVarP(&flagCredentials, "credential", "c", nil, "credential for a security scheme (scheme=value), can be repeated")
	f.StringVarP(&flagServer, "server", "s", "", "server URL (declared or any base URL)")
	f.StringVarP(&flagBody, "body", "b", "", "request body (JSON)")
	f.StringVar(&flagBodyFile, "body-file", "", "read the request body from a file")
	f.StringVarP(&flagOutput, "output", "o", "", "output format (text/json/yaml/body)")
	f.StringVar(&flagSave, "save", "", "save the formatted response to a file")
	f.BoolVarP(&flagFull, "full", "f", false, "show request line and headers")
	f.StringVar(&flagFilter, "filter", "", "JMESPath filter applied to the body")
	f.StringVar(&flagJMESQuery, "query", "", "JMESPath query or $(shell command) applied after the filter")
	f.BoolVar(&flagNoPrompt, "no-prompt", false, "never prompt for missing parameters")
	f.BoolVar(&flagNoColor, "no-color", false, "disable syntax highlighting")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries (0 = all)")
	historyShowCmd.Flags().BoolVar(&historyFull, "json", false, "print the whole entry as JSON")
	historyCmd.AddCommand(historyShowCmd, historyClearCmd, historyDeleteCmd)
}
