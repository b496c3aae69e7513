package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/studiowebux/oasedit/internal/store"
)

func TestCategorizeRequestError(t *testing.T) {
	tests := []struct {
		name     string
		errStr   string
		wantText string
	}{
		{
			name:     "empty error",
			errStr:   "",
			wantText: "",
		},
		{
			name:     "body not JSON",
			errStr:   "response body is not JSON: invalid character '<' looking for beginning of value",
			wantText: "Response body is not JSON - the raw body is shown below",
		},
		{
			name:     "context deadline exceeded",
			errStr:   "Get \"http://example.com\": context deadline exceeded",
			wantText: msgTimeout,
		},
		{
			name:     "DNS lookup failure",
			errStr:   "dial tcp: lookup nonexistent.example.com: no such host",
			wantText: "DNS resolution failed - verify hostname is correct and network is available",
		},
		{
			name:     "connection refused",
			errStr:   "dial tcp 127.0.0.1:9999: connect: connection refused",
			wantText: "Connection refused - check if server is running and port is correct",
		},
		{
			name:     "connection reset",
			errStr:   "read tcp 127.0.0.1:8080->127.0.0.1:54321: read: connection reset by peer",
			wantText: "Connection reset by server - server may have crashed or network issue occurred",
		},
		{
			name:     "network unreachable",
			errStr:   "dial tcp: network is unreachable",
			wantText: "Network unreachable - check network connection and firewall settings",
		},
		{
			name:     "too many redirects",
			errStr:   "Get \"http://example.com\": stopped after 10 redirects",
			wantText: "Too many redirects - check server configuration or URL",
		},
		{
			name:     "invalid URL",
			errStr:   "unsupported protocol scheme",
			wantText: "Invalid URL - check the server URL and its variables",
		},
		{
			name:     "proxy error",
			errStr:   "proxyconnect tcp: dial tcp 127.0.0.1:8080: connect: connection refused",
			wantText: "Proxy connection failed - verify HTTP_PROXY and HTTPS_PROXY",
		},
		{
			name:     "EOF error",
			errStr:   "unexpected EOF",
			wantText: "Connection closed unexpectedly - server may have terminated the connection prematurely",
		},
		{
			name:     "generic timeout",
			errStr:   "i/o timeout",
			wantText: msgTimeout,
		},
		{
			name:     "context canceled",
			errStr:   "context canceled",
			wantText: msgCancelled,
		},
		{
			name:     "missing parameters",
			errStr:   "missing required parameters: petId, verbose",
			wantText: "Missing required parameters - fill them in the form (petId, verbose)",
		},
		{
			name:     "operation removed",
			errStr:   "operation not found: GET /pets",
			wantText: "Operation no longer exists in the document",
		},
		{
			name:     "unknown error",
			errStr:   "something went wrong",
			wantText: "Request failed: something went wrong",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := categorizeRequestError(tt.errStr)
			if got != tt.wantText {
				t.Errorf("Expected %q, got %q", tt.wantText, got)
			}
		})
	}
}

func TestCategorizeTLSError(t *testing.T) {
	tests := []struct {
		name     string
		errStr   string
		wantText string
	}{
		{
			name:     "unknown authority",
			errStr:   "x509: certificate signed by unknown authority",
			wantText: msgUntrusted,
		},
		{
			name:     "certificate expired",
			errStr:   "x509: certificate has expired or is not yet valid",
			wantText: "TLS certificate has expired - contact the server administrator or set tls_insecure",
		},
		{
			name:     "hostname mismatch",
			errStr:   "x509: certificate is valid for example.com, not example.org",
			wantText: "TLS hostname mismatch - certificate doesn't match the requested hostname",
		},
		{
			name:     "handshake failure",
			errStr:   "tls: handshake failure",
			wantText: "TLS handshake failed - check TLS version compatibility and cipher suites",
		},
		{
			name:     "bad certificate",
			errStr:   "tls: bad certificate",
			wantText: "TLS bad certificate - check tls_cert_file and tls_key_file",
		},
		{
			name:     "certificate required",
			errStr:   "tls: certificate required",
			wantText: "TLS client certificate required - set tls_cert_file and tls_key_file",
		},
		{
			name:     "generic TLS error",
			errStr:   "tls: some other error",
			wantText: "TLS error - check the tls_* settings: tls: some other error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := categorizeRequestError(tt.errStr)
			if got != tt.wantText {
				t.Errorf("Expected %q, got %q", tt.wantText, got)
			}
		})
	}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantText string
	}{
		{
			name:     "nil error",
			err:      nil,
			wantText: "",
		},
		{
			name:     "context deadline exceeded",
			err:      fmt.Errorf("send: %w", context.DeadlineExceeded),
			wantText: msgTimeout,
		},
		{
			name:     "context canceled",
			err:      context.Canceled,
			wantText: msgCancelled,
		},
		{
			name:     "no document",
			err:      fmt.Errorf("list: %w", store.ErrNoDocument),
			wantText: "No document loaded - import one with: oasedit import <file|url>",
		},
		{
			name:     "plain error",
			err:      errors.New("dial tcp: lookup nonexistent.example.com: no such host"),
			wantText: "DNS resolution failed - verify hostname is correct and network is available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := categorizeError(tt.err)
			if got != tt.wantText {
				t.Errorf("Expected %q, got %q", tt.wantText, got)
			}
		})
	}
}

func TestCategorizeErrorFormatsCorrectly(t *testing.T) {
	errorStrings := []string{
		"context deadline exceeded",
		"no such host",
		"connection refused",
		"x509: certificate signed by unknown authority",
	}

	for _, errStr := range errorStrings {
		got := categorizeRequestError(errStr)
		if strings.HasPrefix(got, "Request failed:") {
			t.Errorf("Expected a specific message for %q, got %q", errStr, got)
		}
	}
}
