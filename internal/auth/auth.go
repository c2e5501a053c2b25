package auth

import (
	"fmt"
	"net/http"
	"os"
)

// TokenEnvVar holds the token for "bearer" auth when the config has none.
const TokenEnvVar = "WIKIEXTRACT_TOKEN"

// ApplyAuthHeaders sets request headers for authentication types that use them directly.
// Credentials must already be expanded. Digest and OAuth2 are handled by the
// client transport, so nothing is set for them here.
func ApplyAuthHeaders(req *http.Request, authType string, credentials map[string]string, token string) error {
	switch authType {
	case "none", "":
		return nil
	case "bearer":
		if token == "" {
			return fmt.Errorf("bearer authentication selected, but no token in credentials or %s", TokenEnvVar)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	case "basic", "ntlm":
		// The ntlmssp negotiator reads its credentials from the basic auth header.
		username, ok1 := credentials["username"]
		password, ok2 := credentials["password"]
		if !ok1 || !ok2 {
			return fmt.Errorf("%s authentication selected, but 'username' or 'password' not found in credentials", authType)
		}
		req.SetBasicAuth(username, password)
	case "digest", "oauth2":
		return nil
	default:
		return fmt.Errorf("unsupported authentication type configured: %s", authType)
	}
	return nil
}

// GetAPIToken retrieves the bearer token from the environment.
func GetAPIToken() string {
	return os.Getenv(TokenEnvVar)
}

// HeaderTransport applies ApplyAuthHeaders to every request before passing it on.
type HeaderTransport struct {
	AuthType    string
	Credentials map[string]string
	Token       string
	Next        http.RoundTripper
}

// RoundTrip implements http.RoundTripper. The caller's request is not modified.
func (t *HeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	authed := req.Clone(req.Context())
	if err := ApplyAuthHeaders(authed, t.AuthType, t.Credentials, t.Token); err != nil {
		return nil, err
	}
	return t.next().RoundTrip(authed)
}

func (t *HeaderTransport) next() http.RoundTripper {
	if t.Next != nil {
		return t.Next
	}
	return http.DefaultTransport
}
