package runner

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/studiowebux/oasedit/internal/document"
)

// BaseURL picks the server to send to: override when set, otherwise the
// first declared server. Variables are replaced by their defaults.
func BaseURL(doc *document.Document, override string) string {
	override = strings.TrimSpace(override)
	if override != "" {
		if doc != nil {
			if i := doc.FindServer(override); i >= 0 {
				return ExpandServerURL(doc.Servers[i])
			}
		}
		return override
	}
	if doc == nil || len(doc.Servers) == 0 {
		return ""
	}
	return ExpandServerURL(doc.Servers[0])
}

// ExpandServerURL substitutes {name} placeholders with variable defaults.
// Placeholders without a declared variable are left untouched.
func ExpandServerURL(s document.Server) string {
	srv := openapi3.Server{URL: s.URL}
	names, err := srv.ParameterNames()
	if err != nil {
		return s.URL
	}
	out := s.URL
	for _, name := range names {
		if v, ok := s.Variables[name]; ok {
			out = strings.ReplaceAll(out, "{"+name+"}", v.Default)
		}
	}
	return out
}

// BuildURL joins a relative path onto base. The base is treated as a
// directory and one leading slash is stripped from rel, so
// "https://api.example.com/v1" + "/users" gives
// "https://api.example.com/v1/users". An empty base returns rel unchanged.
func BuildURL(base, rel string) (string, error) {
	if base == "" {
		return rel, nil
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", base, err)
	}
	r, err := url.Parse("./" + strings.TrimPrefix(rel, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", rel, err)
	}
	return b.ResolveReference(r).String(), nil
}

// expandPath replaces {name} in a path template with escaped values
func expandPath(template string, params []*document.Parameter, values map[string]string) string {
	out := template
	for _, p := range params {
		if p.In != "path" {
			continue
		}
		if v := values[p.Name]; v != "" {
			out = strings.ReplaceAll(out, "{"+p.Name+"}", url.PathEscape(v))
		}
	}
	return out
}

// appendQuery adds query parameters in declaration order
func appendQuery(u *url.URL, params []*document.Parameter, values map[string]string) {
	var pairs []string
	if u.RawQuery != "" {
		pairs = append(pairs, u.RawQuery)
	}
	for _, p := range params {
		if p.In != "query" {
			continue
		}
		if v := values[p.Name]; v != "" {
			pairs = append(pairs, url.QueryEscape(p.Name)+"="+url.QueryEscape(v))
		}
	}
	u.RawQuery = strings.Join(pairs, "&")
}
