package runner

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/types"
)

// Source provides the current document
type Source interface {
	Get() *document.Document
}

// Recorder stores executed requests
type Recorder interface {
	Save(entry *types.HistoryEntry) error
}

// TLSConfig configures client certificates and server verification
type TLSConfig struct {
	CertFile           string
	KeyFile            string
	CAFile             string
	InsecureSkipVerify bool
}

// Options configures a Runner. The zero value sends without a timeout,
// ignores missing parameters and keeps no history.
type Options struct {
	Timeout   time.Duration
	Missing   MissingPolicy
	TLS       *TLSConfig
	History   Recorder
	Transport http.RoundTripper
	Logger    zerolog.Logger
}

// Runner sends operations of the current document
type Runner struct {
	source  Source
	state   *WorkingState
	client  *http.Client
	missing MissingPolicy
	history Recorder
	log     zerolog.Logger
}

func New(source Source, opts Options) (*Runner, error) {
	client, err := buildHTTPClient(opts.Timeout, opts.TLS, opts.Transport)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}
	missing := opts.Missing
	if missing == "" {
		missing = MissingIgnore
	}
	return &Runner{
		source:  source,
		state:   NewWorkingState(),
		client:  client,
		missing: missing,
		history: opts.History,
		log:     opts.Logger,
	}, nil
}

func (r *Runner) State() *WorkingState {
	return r.state
}

// Send executes the operation with the inputs stored for it and keeps the
// result in the working state. Every failure is reported in Result.Error.
func (r *Runner) Send(ctx context.Context, path, method string) (result *Result) {
	key := Key(path, method)
	r.state.setBusy(key, true)
	defer func() {
		if p := recover(); p != nil {
			result = &Result{Method: strings.ToUpper(method), Error: fmt.Sprintf("request failed: %v", p)}
		}
		r.state.setResult(key, result)
		r.state.setBusy(key, false)
	}()

	doc := r.source.Get()
	prepared, err := Prepare(ctx, doc, path, method, r.state.Inputs(key), r.state.credentialsSnapshot(), r.missing)
	if err != nil {
		r.log.Warn().Err(err).Str("method", strings.ToUpper(method)).Str("path", path).Msg("request not sent")
		return &Result{Method: strings.ToUpper(method), Error: err.Error()}
	}
	for _, w := range prepared.Warnings {
		r.log.Warn().Str("method", prepared.Request.Method).Str("path", path).Msg(w)
	}

	result = r.execute(prepared)
	r.log.Debug().
		Str("method", result.Method).
		Str("url", result.URL).
		Int("status", result.Status).
		Int64("duration_ms", result.Duration).
		Msg("request completed")

	r.record(doc, path, prepared, result)
	return result
}

func (r *Runner) execute(p *Prepared) *Result {
	startTime := time.Now()
	resp, err := r.client.Do(p.Request)
	duration := time.Since(startTime).Milliseconds()

	result := &Result{
		Method:      p.Request.Method,
		URL:         p.Request.URL.String(),
		Duration:    duration,
		RequestSize: len(p.Body),
		Warnings:    p.Warnings,
	}
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()

	result.Status = resp.StatusCode
	result.StatusText = strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" ")

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read response body: %v", err)
		return result
	}

	result.Headers = flattenHeaders(resp.Header)
	result.Body = string(bodyBytes)
	result.ResponseSize = len(bodyBytes)
	data, err := decodeJSON(bodyBytes)
	if err != nil {
		result.Error = fmt.Sprintf("%v: %v", ErrNotJSON, err)
		return result
	}
	result.Data = data
	return result
}

func (r *Runner) record(doc *document.Document, path string, p *Prepared, result *Result) {
	if r.history == nil {
		return
	}
	entry := &types.HistoryEntry{
		DocumentTitle:      doc.Title(),
		Path:               path,
		Method:             p.Request.Method,
		URL:                p.Request.URL.String(),
		Headers:            flattenHeaders(p.Request.Header),
		Body:               string(p.Body),
		ResponseStatus:     result.Status,
		ResponseStatusText: result.StatusText,
		ResponseHeaders:    result.Headers,
		ResponseBody:       result.Body,
		Duration:           result.Duration,
		RequestSize:        result.RequestSize,
		ResponseSize:       result.ResponseSize,
		Error:              result.Error,
	}
	if err := r.history.Save(entry); err != nil {
		r.log.Warn().Err(err).Msg("failed to save history entry")
	}
}

func flattenHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for key, values := range h {
		headers[key] = strings.Join(values, ", ")
	}
	return headers
}

// decodeJSON parses a response body. An empty body decodes to nil.
func decodeJSON(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// buildHTTPClient creates an HTTP client with optional TLS/mTLS configuration.
// A zero timeout leaves the transport default in place.
func buildHTTPClient(timeout time.Duration, tlsConfig *TLSConfig, rt http.RoundTripper) (*http.Client, error) {
	if rt != nil {
		return &http.Client{Timeout: timeout, Transport: rt}, nil
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()

	if tlsConfig != nil {
		tlsCfg := &tls.Config{
			InsecureSkipVerify: tlsConfig.InsecureSkipVerify,
		}

		// Load client certificate if provided (for mTLS)
		if tlsConfig.CertFile != "" && tlsConfig.KeyFile != "" {
			cert, err := tls.LoadX509KeyPair(tlsConfig.CertFile, tlsConfig.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load client certificate: %w", err)
			}
			tlsCfg.Certificates = []tls.Certificate{cert}
		}

		if tlsConfig.CAFile != "" {
			caCert, err := os.ReadFile(tlsConfig.CAFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read CA certificate: %w", err)
			}
			caCertPool := x509.NewCertPool()
			if !caCertPool.AppendCertsFromPEM(caCert) {
				return nil, fmt.Errorf("failed to parse CA certificate")
			}
			tlsCfg.RootCAs = caCertPool
		}

		transport.TLSClientConfig = tlsCfg
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}

// FormatDuration formats duration in milliseconds to human-readable string
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := float64(ms) / 1000.0
	return fmt.Sprintf("%.2fs", seconds)
}

// FormatSize formats byte size to human-readable string
func FormatSize(bytes int) string {
	if bytes < 1024 {
		return fmt.Sprintf("%dB", bytes)
	}
	if bytes < 1024*1024 {
		return fmt.Sprintf("%.2fKB", float64(bytes)/1024.0)
	}
	return fmt.Sprintf("%.2fMB", float64(bytes)/(1024.0*1024.0))
}

// IsSuccessStatus returns true if status code is 2xx
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}

// IsClientErrorStatus returns true if status code is 4xx
func IsClientErrorStatus(status int) bool {
	return status >= 400 && status < 500
}

// IsServerErrorStatus returns true if status code is 5xx
func IsServerErrorStatus(status int) bool {
	return status >= 500 && status < 600
}

// DeclaredResponse returns the description documented for a status code
func DeclaredResponse(doc *document.Document, path, method string, status int) string {
	if doc == nil {
		return ""
	}
	_, op := doc.Operation(path, method)
	resp, ok := op.Response(status)
	if !ok {
		return ""
	}
	v, err := resp.Resolve(doc.Components)
	if err != nil {
		return ""
	}
	return v.Description
}
