package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/studiowebux/oasedit/internal/runner"
	"github.com/studiowebux/oasedit/internal/store"
)

const (
	msgTimeout   = "Request timeout - check the server or raise request_timeout in the config file"
	msgCancelled = "Request cancelled"
	msgUntrusted = "TLS certificate verification failed - certificate is not trusted. Set tls_ca_file or tls_insecure in the config file"
)

// errorRule maps any of its needles to a hint
type errorRule struct {
	needles []string
	hint    string
}

// Rules are checked in order, the first match wins. Proxy errors often
// contain "connection refused" so they come first.
var requestErrorRules = []errorRule{
	{[]string{"context canceled", "context cancelled"}, msgCancelled},
	{[]string{"context deadline exceeded", "deadline exceeded", "client.timeout exceeded"}, msgTimeout},
	{[]string{"proxy"}, "Proxy connection failed - verify HTTP_PROXY and HTTPS_PROXY"},
	{[]string{"no such host", "dial tcp: lookup", "dns"}, "DNS resolution failed - verify hostname is correct and network is available"},
	{[]string{"connection refused"}, "Connection refused - check if server is running and port is correct"},
	{[]string{"connection reset"}, "Connection reset by server - server may have crashed or network issue occurred"},
	{[]string{"network is unreachable", "no route to host"}, "Network unreachable - check network connection and firewall settings"},
}

var tlsErrorRules = []errorRule{
	{[]string{"unknown authority", "certificate is not trusted"}, msgUntrusted},
	{[]string{"expired"}, "TLS certificate has expired - contact the server administrator or set tls_insecure"},
	{[]string{"certificate is valid for", "name mismatch", "doesn't match"}, "TLS hostname mismatch - certificate doesn't match the requested hostname"},
	{[]string{"bad certificate"}, "TLS bad certificate - check tls_cert_file and tls_key_file"},
	{[]string{"certificate required"}, "TLS client certificate required - set tls_cert_file and tls_key_file"},
	{[]string{"handshake"}, "TLS handshake failed - check TLS version compatibility and cipher suites"},
}

var trailingRules = []errorRule{
	{[]string{"stopped after", "redirect"}, "Too many redirects - check server configuration or URL"},
	{[]string{"invalid url", "unsupported protocol", "invalid server url"}, "Invalid URL - check the server URL and its variables"},
	{[]string{"eof"}, "Connection closed unexpectedly - server may have terminated the connection prematurely"},
	{[]string{"timeout", "timed out"}, msgTimeout},
}

func matchRule(rules []errorRule, errLower string) (string, bool) {
	for _, r := range rules {
		for _, n := range r.needles {
			if strings.Contains(errLower, n) {
				return r.hint, true
			}
		}
	}
	return "", false
}

// categorizeRequestError turns the error text of a failed send into an
// actionable message
func categorizeRequestError(errStr string) string {
	if errStr == "" {
		return ""
	}
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, strings.ToLower(runner.ErrMissingParameters.Error())) {
		return "Missing required parameters - fill them in the form (" + afterColon(errStr) + ")"
	}
	if strings.Contains(errLower, runner.ErrOperationNotFound.Error()) {
		return "Operation no longer exists in the document"
	}
	if strings.HasPrefix(errLower, strings.ToLower(runner.ErrNotJSON.Error())) {
		return "Response body is not JSON - the raw body is shown below"
	}
	if hint, ok := matchRule(requestErrorRules, errLower); ok {
		return hint
	}
	if strings.Contains(errLower, "tls") || strings.Contains(errLower, "x509") || strings.Contains(errLower, "certificate") {
		if hint, ok := matchRule(tlsErrorRules, errLower); ok {
			return hint
		}
		return "TLS error - check the tls_* settings: " + errStr
	}
	// "stopped after" and "redirect" must both be present
	if strings.Contains(errLower, "stopped after") && strings.Contains(errLower, "redirect") {
		return trailingRules[0].hint
	}
	if hint, ok := matchRule(trailingRules[1:], errLower); ok {
		return hint
	}
	return "Request failed: " + errStr
}

func afterColon(s string) string {
	if i := strings.LastIndex(s, ": "); i >= 0 {
		return s[i+2:]
	}
	return s
}

// categorizeError handles errors that never reached the result
func categorizeError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, store.ErrNoDocument):
		return "No document loaded - import one with: oasedit import <file|url>"
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	case errors.Is(err, context.Canceled):
		return msgCancelled
	}
	return categorizeRequestError(err.Error())
}
