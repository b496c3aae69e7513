// Package filter narrows and reshapes response bodies with JMESPath and
// selects endpoints by tag or path pattern.
package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jmespath/go-jmespath"
	"github.com/studiowebux/oasedit/internal/editor"
)

// ShellTimeout bounds a $(command) query
const ShellTimeout = 30 * time.Second

var shellPattern = regexp.MustCompile(`^\$\((.+)\)$`)

// Apply runs filter and then query over a JSON response body. Both are
// JMESPath expressions; a query written as $(command) is run by sh with
// the current text on stdin instead. Empty expressions are skipped.
func Apply(ctx context.Context, body, filter, query string) (string, error) {
	out := body
	if filter != "" {
		res, err := evalText(out, filter)
		if err != nil {
			return "", fmt.Errorf("failed to apply filter: %w", err)
		}
		out = res
	}
	if query == "" {
		return out, nil
	}

	if m := shellPattern.FindStringSubmatch(query); m != nil {
		res, err := runShell(ctx, out, m[1])
		if err != nil {
			return "", fmt.Errorf("failed to execute query shell command: %w", err)
		}
		return res, nil
	}
	res, err := evalText(out, query)
	if err != nil {
		return "", fmt.Errorf("failed to apply query: %w", err)
	}
	return res, nil
}

// Search evaluates a JMESPath expression against decoded JSON data
func Search(data any, expression string) (any, error) {
	jp, err := Compile(expression)
	if err != nil {
		return nil, err
	}
	res, err := jp.Search(data)
	if err != nil {
		return nil, fmt.Errorf("JMESPath search failed: %w", err)
	}
	return res, nil
}

// Compile parses an expression once for repeated searches
func Compile(expression string) (*jmespath.JMESPath, error) {
	jp, err := jmespath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}
	return jp, nil
}

// Indent renders a search result as indented JSON. A nil result is "null".
func Indent(v any) (string, error) {
	if v == nil {
		return "null", nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(out), nil
}

func evalText(text, expression string) (string, error) {
	var data any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}
	res, err := Search(data, expression)
	if err != nil {
		return "", err
	}
	return Indent(res)
}

func runShell(ctx context.Context, input, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ShellTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdin = strings.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := err.Error()
		if stderr.Len() > 0 {
			msg = strings.TrimSpace(stderr.String())
		}
		return "", fmt.Errorf("command '%s' failed: %s", command, msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// ByTags keeps endpoints carrying at least one of tags, compared
// case-insensitively. No tags keeps everything.
func ByTags(endpoints []editor.Endpoint, tags []string) []editor.Endpoint {
	if len(tags) == 0 {
		return endpoints
	}
	var out []editor.Endpoint
	for _, ep := range endpoints {
		if tagged(ep, tags) {
			out = append(out, ep)
		}
	}
	return out
}

// ByPattern keeps endpoints whose path matches a glob such as /pets/*
func ByPattern(endpoints []editor.Endpoint, pattern string) []editor.Endpoint {
	if pattern == "" {
		return endpoints
	}
	var out []editor.Endpoint
	for _, ep := range endpoints {
		if ok, err := path.Match(pattern, ep.Path); err == nil && ok {
			out = append(out, ep)
		}
	}
	return out
}

// AllTags returns the distinct tags across endpoints, sorted
func AllTags(endpoints []editor.Endpoint) []string {
	seen := make(map[string]struct{})
	for _, ep := range endpoints {
		for _, tag := range ep.Tags {
			seen[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func tagged(ep editor.Endpoint, tags []string) bool {
	for _, want := range tags {
		for _, tag := range ep.Tags {
			if strings.EqualFold(tag, want) {
				return true
			}
		}
	}
	return false
}
