// Package probe checks whether the servers declared in a document answer.
// Each URL is probed once, concurrently, and reported as it settles.
package probe

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/studiowebux/oasedit/internal/types"
	"golang.org/x/sync/errgroup"
)

type Status = types.ServerStatus

// Update reports the status of the URL at Index
type Update struct {
	Index  int
	URL    string
	Status Status
}

// Options configures a Prober. A zero Timeout keeps the transport default.
type Options struct {
	Timeout   time.Duration
	Transport http.RoundTripper
	Logger    zerolog.Logger
}

type Prober struct {
	client  *http.Client
	dialer  *websocket.Dialer
	timeout time.Duration
	log     zerolog.Logger
}

func New(opts Options) *Prober {
	client := &http.Client{Transport: opts.Transport}
	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 45 * time.Second,
	}
	if opts.Timeout > 0 {
		dialer.HandshakeTimeout = opts.Timeout
	}
	return &Prober{client: client, dialer: dialer, timeout: opts.Timeout, log: opts.Logger}
}

// Probe reports every URL as checking, then probes all of them at once.
// onUpdate is called once per state change and never concurrently.
// The returned slice holds the settled status of each URL.
func (p *Prober) Probe(ctx context.Context, urls []string, onUpdate func(Update)) []Status {
	statuses := make([]Status, len(urls))
	var mu sync.Mutex
	report := func(i int, s Status) {
		mu.Lock()
		defer mu.Unlock()
		statuses[i] = s
		if onUpdate != nil {
			onUpdate(Update{Index: i, URL: urls[i], Status: s})
		}
	}

	for i := range urls {
		report(i, types.StatusChecking)
	}

	var g errgroup.Group
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			report(i, p.Check(ctx, u))
			return nil
		})
	}
	_ = g.Wait()

	return statuses
}

// Check probes one URL. Any response other than 404 counts as live.
func (p *Prober) Check(ctx context.Context, rawURL string) Status {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		p.log.Debug().Str("url", rawURL).Msg("server URL is not absolute")
		return types.StatusUnreachable
	}

	var status Status
	switch u.Scheme {
	case "ws", "wss":
		status = p.handshake(ctx, u.String())
	default:
		status = p.get(ctx, u.String())
	}
	p.log.Debug().Str("url", rawURL).Str("status", string(status)).Msg("probe settled")
	return status
}

func (p *Prober) get(ctx context.Context, target string) Status {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return types.StatusUnreachable
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return types.StatusUnreachable
	}
	resp.Body.Close()
	return classify(resp.StatusCode)
}

func (p *Prober) handshake(ctx context.Context, target string) Status {
	conn, resp, err := p.dialer.DialContext(ctx, target, nil)
	if err == nil {
		conn.Close()
		return types.StatusLive
	}
	if resp == nil {
		return types.StatusUnreachable
	}
	return classify(resp.StatusCode)
}

func classify(code int) Status {
	if code == http.StatusNotFound {
		return types.StatusUnreachable
	}
	return types.StatusLive
}
