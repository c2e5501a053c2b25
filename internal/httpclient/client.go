package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"wikiextract/internal/auth"
	"wikiextract/internal/config"
	"wikiextract/internal/logging"
	"wikiextract/internal/util"

	"github.com/Azure/go-ntlmssp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// NewClient creates the *http.Client used for lookups. TLS verification,
// HTTP/1.1 forcing and authentication come from cfg; credentials are expanded
// from the environment here. No overall request timeout is set.
func NewClient(cfg *config.Config) (*http.Client, error) {
	authType := strings.ToLower(cfg.Auth.Type)
	creds := util.ExpandEnvMap(cfg.Auth.Credentials)
	base := newBaseTransport(cfg)

	var transport http.RoundTripper = base
	switch authType {
	case "none", "":
	case "basic":
		if creds["username"] == "" || creds["password"] == "" {
			return nil, fmt.Errorf("basic authentication requires username and password in auth credentials")
		}
		transport = &auth.HeaderTransport{AuthType: authType, Credentials: creds, Next: base}

	case "bearer":
		token := creds["token"]
		if token == "" {
			token = auth.GetAPIToken()
		}
		if token == "" {
			return nil, fmt.Errorf("bearer authentication requires 'token' in auth credentials or the %s environment variable", auth.TokenEnvVar)
		}
		transport = &auth.HeaderTransport{AuthType: authType, Token: token, Next: base}

	case "ntlm":
		logging.Logf(logging.Debug, "Configuring NTLM transport for endpoint %s", cfg.Endpoint)
		if creds["username"] == "" || creds["password"] == "" {
			return nil, fmt.Errorf("ntlm authentication requires username and password in auth credentials")
		}
		// The negotiator picks the credentials up from the basic auth header.
		transport = &auth.HeaderTransport{
			AuthType:    authType,
			Credentials: creds,
			Next:        ntlmssp.Negotiator{RoundTripper: base},
		}

	case "digest":
		logging.Logf(logging.Debug, "Configuring Digest transport for endpoint %s", cfg.Endpoint)
		if creds["username"] == "" || creds["password"] == "" {
			return nil, fmt.Errorf("digest authentication requires username and password in auth credentials")
		}
		transport = &auth.DigestTransport{
			Username: creds["username"],
			Password: creds["password"],
			FipsMode: cfg.FipsMode,
			Next:     base,
		}

	case "oauth2":
		return newOAuth2Client(creds, base)

	default:
		return nil, fmt.Errorf("unsupported authentication type '%s' for client creation", authType)
	}

	return &http.Client{Transport: transport}, nil
}

func newBaseTransport(cfg *config.Config) *http.Transport {
	base := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.TLSSkipVerify,
		},
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if cfg.ForceHTTP1 {
		logging.Logf(logging.Info, "Forcing HTTP/1.1 for endpoint %s", cfg.Endpoint)
		base.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
		base.ForceAttemptHTTP2 = false
	}
	if cfg.TLSSkipVerify {
		logging.Logf(logging.Warning, "TLS certificate verification is DISABLED for endpoint %s", cfg.Endpoint)
	}
	return base
}

// newOAuth2Client returns a client that fetches and attaches client-credentials
// tokens, e.g. from the Wikimedia API Portal. Token requests use base as well.
func newOAuth2Client(creds map[string]string, base http.RoundTripper) (*http.Client, error) {
	clientID, clientSecret, tokenURL := creds["client_id"], creds["client_secret"], creds["token_url"]
	if clientID == "" || clientSecret == "" || tokenURL == "" {
		return nil, fmt.Errorf("oauth2 requires client_id, client_secret, and token_url in credentials")
	}
	oauthConfig := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       strings.Fields(creds["scope"]),
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Transport: base})
	return oauthConfig.Client(ctx), nil
}
