package runner

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/studiowebux/oasedit/internal/document"
	"golang.org/x/oauth2"
)

// applyCredentials attaches captured secrets for the first security
// requirement that can be fully satisfied. Operation-level requirements
// replace document-level ones.
func applyCredentials(req *http.Request, doc *document.Document, op *document.Operation, creds map[string]string) {
	if len(creds) == 0 {
		return
	}
	reqs := op.Security
	if reqs == nil {
		reqs = doc.Security
	}

	for _, requirement := range reqs {
		schemes, ok := satisfy(doc.Components, requirement, creds)
		if !ok {
			continue
		}
		names := make([]string, 0, len(schemes))
		for name := range schemes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			applyScheme(req, schemes[name], creds[name])
		}
		return
	}
}

func satisfy(c *document.Components, requirement document.SecurityRequirement, creds map[string]string) (map[string]*document.SecurityScheme, bool) {
	out := make(map[string]*document.SecurityScheme, len(requirement))
	for name := range requirement {
		if _, ok := creds[name]; !ok {
			return nil, false
		}
		if c == nil {
			return nil, false
		}
		ref, ok := c.SecuritySchemes[name]
		if !ok {
			return nil, false
		}
		scheme, err := ref.Resolve(c)
		if err != nil {
			return nil, false
		}
		out[name] = scheme
	}
	return out, true
}

func applyScheme(req *http.Request, scheme *document.SecurityScheme, value string) {
	switch scheme.Type {
	case document.SchemeHTTP:
		switch strings.ToLower(scheme.Scheme) {
		case "basic":
			user, pass, _ := strings.Cut(value, ":")
			req.SetBasicAuth(user, pass)
		case "", "bearer":
			setBearer(req, value)
		default:
			req.Header.Set("Authorization", scheme.Scheme+" "+value)
		}
	case document.SchemeAPIKey:
		switch scheme.In {
		case "query":
			pair := url.QueryEscape(scheme.Name) + "=" + url.QueryEscape(value)
			if req.URL.RawQuery == "" {
				req.URL.RawQuery = pair
			} else {
				req.URL.RawQuery += "&" + pair
			}
		case "cookie":
			req.AddCookie(&http.Cookie{Name: scheme.Name, Value: value})
		default:
			req.Header.Set(scheme.Name, value)
		}
	case document.SchemeOAuth2, document.SchemeOpenIDConnect:
		setBearer(req, value)
	}
}

func setBearer(req *http.Request, token string) {
	t := &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
	t.SetAuthHeader(req)
}

// AuthorizeURL builds the URL a user opens to obtain a token for an oauth2
// scheme. The authorization code flow is preferred over the implicit one.
func AuthorizeURL(scheme *document.SecurityScheme, clientID, redirectURL, state string) (string, error) {
	if scheme == nil || scheme.Type != document.SchemeOAuth2 || scheme.Flows == nil {
		return "", fmt.Errorf("%w: not an oauth2 scheme", document.ErrInvalidScheme)
	}

	flow := scheme.Flows.AuthorizationCode
	var opts []oauth2.AuthCodeOption
	if flow == nil || flow.AuthorizationURL == "" {
		flow = scheme.Flows.Implicit
		opts = append(opts, oauth2.SetAuthURLParam("response_type", "token"))
	}
	if flow == nil || flow.AuthorizationURL == "" {
		return "", fmt.Errorf("%w: no authorization URL declared", document.ErrInvalidScheme)
	}

	scopes := make([]string, 0, len(flow.Scopes))
	for s := range flow.Scopes {
		scopes = append(scopes, s)
	}
	sort.Strings(scopes)

	cfg := oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURL,
		Scopes:      scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  flow.AuthorizationURL,
			TokenURL: flow.TokenURL,
		},
	}
	return cfg.AuthCodeURL(state, opts...), nil
}
