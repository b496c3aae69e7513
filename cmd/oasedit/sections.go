package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/studiowebux/oasedit/internal/cli"
	"github.com/studiowebux/oasedit/internal/converter"
	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/editor"
	"github.com/studiowebux/oasedit/internal/filter"
)

// Shared flags for list and payload commands
var (
	flagQuery       string
	flagMethod      string
	flagTags        []string
	flagPattern     string
	flagData        string
	flagDataFile    string
	flagDescription string
	flagSummary     string
)

// Flags for server variables
var (
	varDefault string
	varEnum    []string
)

// Flags for security schemes
var (
	schemeType         string
	schemeScheme       string
	schemeBearerFormat string
	schemeIn           string
	schemeParamName    string
	schemeOpenIDURL    string
	authClientID       string
	authRedirectURL    string
	authState          string
)

// readPayload returns --data, the --file contents, or stdin when neither is set
func readPayload(cmd *cobra.Command) ([]byte, error) {
	switch {
	case flagData != "":
		return []byte(flagData), nil
	case flagDataFile == "-":
		return io.ReadAll(cmd.InOrStdin())
	case flagDataFile != "":
		return os.ReadFile(flagDataFile)
	}
	return nil, fmt.Errorf("no definition given (use --data or --file)")
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// ---------------------------------------------------------------- servers

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List and edit servers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		servers, err := editor.NewServerEditor(current.store).List(flagQuery)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, s := range servers {
			fmt.Fprintf(w, "%s", s.URL)
			if s.Description != "" {
				fmt.Fprintf(w, "  %s", s.Description)
			}
			fmt.Fprintln(w)
			for _, name := range sortedKeys(s.Variables) {
				v := s.Variables[name]
				fmt.Fprintf(w, "    {%s} = %s", name, v.Default)
				if len(v.Enum) > 0 {
					fmt.Fprintf(w, " [%s]", strings.Join(v.Enum, ", "))
				}
				fmt.Fprintln(w)
			}
		}
		return nil
	},
}

var serversAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editor.NewServerEditor(current.store).Add(document.Server{URL: args[0], Description: flagDescription})
	},
}

var serversUpdateCmd = &cobra.Command{
	Use:   "update <url> <new-url>",
	Short: "Change a server URL and description",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ed := editor.NewServerEditor(current.store)
		doc := current.store.Get()
		server := document.Server{URL: args[1], Description: flagDescription}
		if doc != nil {
			if i := doc.FindServer(args[0]); i >= 0 {
				server.Variables = doc.Servers[i].Variables
				if !cmd.Flags().Changed("description") {
					server.Description = doc.Servers[i].Description
				}
			}
		}
		return ed.Update(args[0], server)
	},
}

var serversRemoveCmd = &cobra.Command{
	Use:   "remove <url>",
	Short: "Remove a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editor.NewServerEditor(current.store).Remove(args[0])
	},
}

var serversVarCmd = &cobra.Command{
	Use:   "var <url> <name>",
	Short: "Set a server URL variable",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editor.NewServerEditor(current.store).SetVariable(args[0], args[1], document.ServerVariable{
			Default:     varDefault,
			Enum:        varEnum,
			Description: flagDescription,
		})
	},
}

var serversUnsetVarCmd = &cobra.Command{
	Use:   "unset-var <url> <name>",
	Short: "Remove a server URL variable",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editor.NewServerEditor(current.store).RemoveVariable(args[0], args[1])
	},
}

var serversSelectCmd = &cobra.Command{
	Use:   "select",
	Short: "Pick a server interactively and print its expanded URL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		options := cli.ServerOptions(current.store.Get())
		value, err := cli.SelectOption("Select server", options, 0)
		if err != nil {
			return err
		}
		for _, o := range options {
			if o.Value == value {
				fmt.Fprintln(cmd.OutOrStdout(), o.Label)
			}
		}
		return nil
	},
}

// ---------------------------------------------------------------- paths

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "List and edit paths and operations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := editor.NewPathEditor(current.store).List(flagQuery, strings.ToLower(flagMethod))
		if err != nil {
			return err
		}
		var endpoints []editor.Endpoint
		for _, e := range entries {
			for _, op := range e.Operations {
				if flagMethod != "" && !strings.EqualFold(op.Method, flagMethod) {
					continue
				}
				endpoints = append(endpoints, op)
			}
		}
		endpoints = filter.ByPattern(filter.ByTags(endpoints, flagTags), flagPattern)

		w := cmd.OutOrStdout()
		for _, ep := range endpoints {
			line := fmt.Sprintf("%-7s %s", strings.ToUpper(ep.Method), ep.Path)
			if ep.Summary != "" {
				line += "  " + ep.Summary
			}
			if ep.Deprecated {
				line += "  (deprecated)"
			}
			fmt.Fprintln(w, line)
		}
		return nil
	},
}

var pathsShowCmd = &cobra.Command{
	Use:   "show <method> <path>",
	Short: "Print an operation as JSON",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := editor.NewPathEditor(current.store).Operation(args[1], strings.ToLower(args[0]))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), op)
	},
}

var pathsAddCmd = &cobra.Command{
	Use:   "add <method> <path>",
	Short: "Add an operation with a default 200 response",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editor.NewPathEditor(current.store).AddOperation(args[1], strings.ToLower(args[0]), flagSummary)
	},
}

var pathsUpdateCmd = &cobra.Command{
	Use:   "update <method> <path>",
	Short: "Replace an operation with a JSON definition",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readPayload(cmd)
		if err != nil {
			return err
		}
		return editor.NewPathEditor(current.store).UpdateOperationJSON(args[1], strings.ToLower(args[0]), data)
	},
}

var pathsRemoveCmd = &cobra.Command{
	Use:   "remove <method> <path>",
	Short: "Remove an operation (and the path once it has none left)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editor.NewPathEditor(current.store).RemoveOperation(args[1], strings.ToLower(args[0]))
	},
}

var pathsHTTPCmd = &cobra.Command{
	Use:   "http <method> <path>",
	Short: "Print an operation as a .http request",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc := current.store.Get()
		if doc == nil {
			return editor.ErrNoDocument
		}
		out, err := converter.OperationHTTP(doc, args[1], args[0], exportServer)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var pathsTagsCmd = &cobra.Command{
	Use:   "used-tags",
	Short: "List tags used by operations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoints, err := editor.NewPathEditor(current.store).Endpoints()
		if err != nil {
			return err
		}
		for _, tag := range filter.AllTags(endpoints) {
			fmt.Fprintln(cmd.OutOrStdout(), tag)
		}
		return nil
	},
}

// ---------------------------------------------------------------- components

var componentsCmd = &cobra.Command{
	Use:   "components <kind>",
	Short: "List and edit reusable components",
	Long: `List and edit reusable components.

Kinds: schemas, responses, parameters, examples, requestBodies, headers,
securitySchemes, links, callbacks.

Keys use the group/name convention; keys without a slash belong to the Root group.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := document.ParseKind(args[0])
		if err != nil {
			return err
		}
		groups, err := editor.NewComponentEditor(current.store).List(kind, flagQuery)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, g := range groups {
			fmt.Fprintf(w, "%s\n", g.Name)
			for _, item := range g.Items {
				fmt.Fprintf(w, "  %s", item.Name)
				if item.Description != "" {
					fmt.Fprintf(w, "  %s", item.Description)
				}
				fmt.Fprintln(w)
			}
		}
		return nil
	},
}

var componentsShowCmd = &cobra.Command{
	Use:   "show <kind> <key>",
	Short: "Print a component as JSON",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := document.ParseKind(args[0])
		if err != nil {
			return err
		}
		v, err := editor.NewComponentEditor(current.store).Get(kind, args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), v)
	},
}

var componentsAddCmd = &cobra.Command{
	Use:   "add <kind> <group> <name>",
	Short: "Add a component from a JSON definition (comments allowed)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := document.ParseKind(args[0])
		if err != nil {
			return err
		}
		data, err := readPayload(cmd)
		if err != nil {
			return err
		}
		return editor.NewComponentEditor(current.store).Add(kind, args[1], args[2], data)
	},
}

var componentsUpdateCmd = &cobra.Command{
	Use:   "update <kind> <key>",
	Short: "Replace a component with a JSON definition",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := document.ParseKind(args[0])
		if err != nil {
			return err
		}
		data, err := readPayload(cmd)
		if err != nil {
			return err
		}
		return editor.NewComponentEditor(current.store).Update(kind, args[1], data)
	},
}

var componentsRemoveCmd = &cobra.Command{
	Use:   "remove <kind> <key>",
	Short: "Remove a component",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := document.ParseKind(args[0])
		if err != nil {
			return err
		}
		return editor.NewComponentEditor(current.store).Remove(kind, args[1])
	},
}

// ---------------------------------------------------------------- tags

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List and edit tags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, err := editor.NewTagEditor(current.store).List(flagQuery)
		if err != nil {
			return err
		}
		for _, t := range tags {
			if t.Description != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", t.Name, t.Description)
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Name)
		}
		return nil
	},
}

var tagsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editor.NewTagEditor(current.store).Add(document.Tag{Name: args[0], Description: flagDescription})
	},
}

var tagsUpdateCmd = &cobra.Command{
	Use:   "update <name> <new-name>",
	Short: "Rename a tag (operations follow) and change its description",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag := document.Tag{Name: args[1], Description: flagDescription}
		if doc := current.store.Get(); doc != nil && !cmd.Flags().Changed("description") {
			for _, t := range doc.Tags {
				if t.Name == args[0] {
					tag.Description = t.Description
					tag.ExternalDocs = t.ExternalDocs
				}
			}
		}
		return editor.NewTagEditor(current.store).Update(args[0], tag)
	},
}

var tagsRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editor.NewTagEditor(current.store).Remove(args[0])
	},
}

// ---------------------------------------------------------------- security

var securityCmd = &cobra.Command{
	Use:   "security",
	Short: "List and edit security schemes and requirements",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemes, err := editor.NewSecurityEditor(current.store).List(flagQuery)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, s := range schemes {
			if s.Scheme.IsRef() {
				fmt.Fprintf(w, "%-20s -> %s\n", s.Name, s.Scheme.Ref)
				continue
			}
			fmt.Fprintf(w, "%-20s %s\n", s.Name, describeScheme(s.Scheme.Value))
		}
		return nil
	},
}

func describeScheme(s *document.SecurityScheme) string {
	if s == nil {
		return ""
	}
	switch s.Type {
	case document.SchemeHTTP:
		return fmt.Sprintf("http %s", s.Scheme)
	case document.SchemeAPIKey:
		return fmt.Sprintf("apiKey %s in %s", s.Name, s.In)
	case document.SchemeOpenIDConnect:
		return fmt.Sprintf("openIdConnect %s", s.OpenIDConnectURL)
	case document.SchemeOAuth2:
		var flows []string
		if s.Flows != nil {
			for name := range s.Flows.Named() {
				flows = append(flows, name)
			}
		}
		sort.Strings(flows)
		return fmt.Sprintf("oauth2 (%s)", strings.Join(flows, ", "))
	}
	return s.Type
}

// schemeFromFlags starts from the type template, or the JSON payload when given
func schemeFromFlags(cmd *cobra.Command) (document.SecurityScheme, error) {
	if flagData != "" || flagDataFile != "" {
		data, err := readPayload(cmd)
		if err != nil {
			return document.SecurityScheme{}, err
		}
		var s document.SecurityScheme
		if err := editor.DecodeJSON(data, &s); err != nil {
			return document.SecurityScheme{}, err
		}
		return s, nil
	}

	s, err := editor.Template(schemeType)
	if err != nil {
		return s, err
	}
	if cmd.Flags().Changed("scheme") {
		s.Scheme = schemeScheme
	}
	if schemeBearerFormat != "" {
		s.BearerFormat = schemeBearerFormat
	}
	if cmd.Flags().Changed("in") {
		s.In = schemeIn
	}
	if schemeParamName != "" {
		s.Name = schemeParamName
	}
	if schemeOpenIDURL != "" {
		s.OpenIDConnectURL = schemeOpenIDURL
	}
	if flagDescription != "" {
		s.Description = flagDescription
	}
	return s, nil
}

var securityAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a security scheme from a type template or JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := schemeFromFlags(cmd)
		if err != nil {
			return err
		}
		return editor.NewSecurityEditor(current.store).Add(args[0], s)
	},
}

var securityUpdateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Replace a security scheme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := schemeFromFlags(cmd)
		if err != nil {
			return err
		}
		return editor.NewSecurityEditor(current.store).Update(args[0], s)
	},
}

var securityRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a security scheme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editor.NewSecurityEditor(current.store).Remove(args[0])
	},
}

var securityRequireCmd = &cobra.Command{
	Use:   "require [scheme[:scope,scope]]...",
	Short: "Set document-level security requirements",
	Long: `Set document-level security requirements. Each argument is one alternative
requirement; join schemes that must be satisfied together with "+".

  oasedit security require bearerAuth
  oasedit security require "oauth:read,write" apiKey+session

Without arguments the requirements are printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ed := editor.NewSecurityEditor(current.store)
		if len(args) == 0 {
			reqs, err := ed.Requirements()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), reqs)
		}
		reqs := make([]document.SecurityRequirement, 0, len(args))
		for _, arg := range args {
			req := document.SecurityRequirement{}
			for _, part := range strings.Split(arg, "+") {
				name, scopes, _ := strings.Cut(part, ":")
				req[name] = []string{}
				if scopes != "" {
					req[name] = strings.Split(scopes, ",")
				}
			}
			reqs = append(reqs, req)
		}
		return ed.SetRequirements(reqs)
	},
}

var securityAuthorizeCmd = &cobra.Command{
	Use:   "authorize-url <name>",
	Short: "Print the authorization URL of an oauth2 scheme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := editor.NewSecurityEditor(current.store).Get(args[0])
		if err != nil {
			return err
		}
		u, err := authorizeURL(s)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), u)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{serversCmd, pathsCmd, componentsCmd, tagsCmd, securityCmd} {
		c.Flags().StringVarP(&flagQuery, "query", "q", "", "case-insensitive filter")
	}
	for _, c := range []*cobra.Command{pathsUpdateCmd, componentsAddCmd, componentsUpdateCmd, securityAddCmd, securityUpdateCmd} {
		c.Flags().StringVarP(&flagData, "data", "d", "", "JSON definition")
		c.Flags().StringVarP(&flagDataFile, "file", "f", "", "read the JSON definition from a file (- for stdin)")
	}
	for _, c := range []*cobra.Command{serversAddCmd, serversUpdateCmd, serversVarCmd, tagsAddCmd, tagsUpdateCmd, securityAddCmd, securityUpdateCmd} {
		c.Flags().StringVar(&flagDescription, "description", "", "description")
	}

	serversVarCmd.Flags().StringVar(&varDefault, "default", "", "default value")
	serversVarCmd.Flags().StringSliceVar(&varEnum, "enum", nil, "allowed values")
	serversCmd.AddCommand(serversAddCmd, serversUpdateCmd, serversRemoveCmd, serversVarCmd, serversUnsetVarCmd, serversSelectCmd)

	pathsCmd.Flags().StringVarP(&flagMethod, "method", "m", "", "only operations with this method")
	pathsCmd.Flags().StringSliceVarP(&flagTags, "tag", "t", nil, "only operations with any of these tags")
	pathsCmd.Flags().StringVar(&flagPattern, "pattern", "", "only paths matching a glob such as /pets/*")
	pathsAddCmd.Flags().StringVarP(&flagSummary, "summary", "s", "", "operation summary")
	pathsHTTPCmd.Flags().StringVar(&exportServer, "server", "", "base URL written to @baseUrl")
	pathsCmd.AddCommand(pathsShowCmd, pathsAddCmd, pathsUpdateCmd, pathsRemoveCmd, pathsHTTPCmd, pathsTagsCmd)

	componentsCmd.AddCommand(componentsShowCmd, componentsAddCmd, componentsUpdateCmd, componentsRemoveCmd)

	tagsCmd.AddCommand(tagsAddCmd, tagsUpdateCmd, tagsRemoveCmd)

	for _, c := range []*cobra.Command{securityAddCmd, securityUpdateCmd} {
		c.Flags().StringVar(&schemeType, "type", document.SchemeHTTP, "http, apiKey, oauth2 or openIdConnect")
		c.Flags().StringVar(&schemeScheme, "scheme", "", "http: bearer or basic")
		c.Flags().StringVar(&schemeBearerFormat, "bearer-format", "", "http bearer: token format hint")
		c.Flags().StringVar(&schemeIn, "in", "", "apiKey: header, query or cookie")
		c.Flags().StringVar(&schemeParamName, "param-name", "", "apiKey: header, query or cookie name")
		c.Flags().StringVar(&schemeOpenIDURL, "openid-url", "", "openIdConnect: discovery URL")
	}
	securityAuthorizeCmd.Flags().StringVar(&authClientID, "client-id", "", "oauth2 client id")
	securityAuthorizeCmd.Flags().StringVar(&authRedirectURL, "redirect-url", "", "redirect URL registered for the client")
	securityAuthorizeCmd.Flags().StringVar(&authState, "state", "oasedit", "opaque state value")
	securityCmd.AddCommand(securityAddCmd, securityUpdateCmd, securityRemoveCmd, securityRequireCmd, securityAuthorizeCmd)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
