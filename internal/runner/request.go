package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/store"
)

var (
	ErrOperationNotFound = errors.New("operation not found")
	ErrMissingParameters = errors.New("missing required parameters")
	ErrNotJSON           = errors.New("response body is not JSON")
)

// Prepared is a request ready to be sent
type Prepared struct {
	Request  *http.Request
	Body     []byte
	Warnings []string
}

// Prepare turns an operation and the user's inputs into an HTTP request
func Prepare(ctx context.Context, doc *document.Document, path, method string, in Inputs, creds map[string]string, policy MissingPolicy) (*Prepared, error) {
	if doc == nil {
		return nil, store.ErrNoDocument
	}
	item, op := doc.Operation(path, method)
	if op == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrOperationNotFound, strings.ToUpper(method), path)
	}

	params, warnings, err := resolveParameters(doc.Components, item, op)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve parameters: %w", err)
	}

	if missing := missingRequired(params, in.Params); len(missing) > 0 {
		switch policy {
		case MissingBlock:
			return nil, fmt.Errorf("%w: %s", ErrMissingParameters, strings.Join(missing, ", "))
		case MissingWarn:
			for _, name := range missing {
				warnings = append(warnings, fmt.Sprintf("missing required parameter %q", name))
			}
		}
	}

	full, err := BuildURL(BaseURL(doc, in.Server), expandPath(path, params, in.Params))
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(full)
	if err != nil {
		return nil, fmt.Errorf("invalid request URL %q: %w", full, err)
	}
	appendQuery(u, params, in.Params)

	m := strings.ToUpper(method)
	var body []byte
	if m != http.MethodGet {
		body, err = encodeBody(in.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode body: %w", err)
		}
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, m, u.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for _, p := range params {
		v := in.Params[p.Name]
		if v == "" {
			continue
		}
		switch p.In {
		case "header":
			req.Header.Set(p.Name, v)
		case "cookie":
			req.AddCookie(&http.Cookie{Name: p.Name, Value: v})
		}
	}

	applyCredentials(req, doc, op, creds)

	return &Prepared{Request: req, Body: body, Warnings: warnings}, nil
}

// encodeBody sends JSON text as-is and JSON-encodes anything else.
// A nil or empty body is not sent.
func encodeBody(v any) ([]byte, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if len(b) == 0 {
			return nil, nil
		}
		return b, nil
	case string:
		return encodeText([]byte(b))
	case []byte:
		return encodeText(b)
	}
	return json.Marshal(v)
}

func encodeText(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if json.Valid(b) {
		return b, nil
	}
	return json.Marshal(string(b))
}
