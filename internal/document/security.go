package document

import (
	"errors"
	"fmt"
	"strings"
)

// Security scheme types
const (
	SchemeHTTP          = "http"
	SchemeAPIKey        = "apiKey"
	SchemeOAuth2        = "oauth2"
	SchemeOpenIDConnect = "openIdConnect"
)

// SchemeTypes lists the supported security scheme types
var SchemeTypes = []string{SchemeHTTP, SchemeAPIKey, SchemeOAuth2, SchemeOpenIDConnect}

// ErrInvalidScheme is returned by SecurityScheme.Validate
var ErrInvalidScheme = errors.New("invalid security scheme")

// SecurityScheme is tagged by Type; only the fields for that type are meaningful
type SecurityScheme struct {
	Type             string         `json:"type"`
	Description      string         `json:"description,omitempty"`
	Name             string         `json:"name,omitempty"`
	In               string         `json:"in,omitempty"`
	Scheme           string         `json:"scheme,omitempty"`
	BearerFormat     string         `json:"bearerFormat,omitempty"`
	Flows            *OAuthFlows    `json:"flows,omitempty"`
	OpenIDConnectURL string         `json:"openIdConnectUrl,omitempty"`
	Extensions       map[string]any `json:"-"`
}

type OAuthFlows struct {
	Implicit          *OAuthFlow     `json:"implicit,omitempty"`
	Password          *OAuthFlow     `json:"password,omitempty"`
	ClientCredentials *OAuthFlow     `json:"clientCredentials,omitempty"`
	AuthorizationCode *OAuthFlow     `json:"authorizationCode,omitempty"`
	Extensions        map[string]any `json:"-"`
}

type OAuthFlow struct {
	AuthorizationURL string            `json:"authorizationUrl,omitempty"`
	TokenURL         string            `json:"tokenUrl,omitempty"`
	RefreshURL       string            `json:"refreshUrl,omitempty"`
	Scopes           map[string]string `json:"scopes"`
	Extensions       map[string]any    `json:"-"`
}

// IsKnownSchemeType reports whether t is one of SchemeTypes
func IsKnownSchemeType(t string) bool {
	for _, known := range SchemeTypes {
		if known == t {
			return true
		}
	}
	return false
}

// Validate reports the type-specific fields that are missing
func (s *SecurityScheme) Validate() error {
	var problems []string
	switch s.Type {
	case SchemeHTTP:
		if s.Scheme == "" {
			problems = append(problems, "http scheme requires scheme")
		}
	case SchemeAPIKey:
		if s.Name == "" {
			problems = append(problems, "apiKey scheme requires name")
		}
		switch s.In {
		case "query", "header", "cookie":
		default:
			problems = append(problems, "apiKey scheme requires in to be query, header or cookie")
		}
	case SchemeOAuth2:
		if s.Flows == nil || len(s.Flows.Named()) == 0 {
			problems = append(problems, "oauth2 scheme requires at least one flow")
		}
	case SchemeOpenIDConnect:
		if s.OpenIDConnectURL == "" {
			problems = append(problems, "openIdConnect scheme requires openIdConnectUrl")
		}
	case "":
		problems = append(problems, "type is required")
	default:
		problems = append(problems, fmt.Sprintf("unknown type %q", s.Type))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidScheme, strings.Join(problems, "; "))
	}
	return nil
}

// Named returns the declared flows keyed by their OpenAPI name
func (f *OAuthFlows) Named() map[string]*OAuthFlow {
	out := make(map[string]*OAuthFlow)
	if f == nil {
		return out
	}
	if f.Implicit != nil {
		out["implicit"] = f.Implicit
	}
	if f.Password != nil {
		out["password"] = f.Password
	}
	if f.ClientCredentials != nil {
		out["clientCredentials"] = f.ClientCredentials
	}
	if f.AuthorizationCode != nil {
		out["authorizationCode"] = f.AuthorizationCode
	}
	return out
}
