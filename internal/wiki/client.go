package wiki

import (
	"context"
	"net/http"

	"wikiextract/internal/logging"
)

// Fetcher performs a request and returns the raw response body.
type Fetcher interface {
	Fetch(req *http.Request) ([]byte, error)
}

// Client looks up article extracts against an endpoint template.
type Client struct {
	Endpoint  string
	UserAgent string
	IntroOnly bool
	PlainText bool
	Fetcher   Fetcher
}

// Lookup builds the request for phrase in lang, issues it once and interprets
// the response. Errors wrap ErrInvalidEndpoint, ErrLanguageNotFound or
// ErrNotFound.
func (c *Client) Lookup(ctx context.Context, lang, phrase string) (string, error) {
	params := Params{Phrase: phrase, IntroOnly: c.IntroOnly, PlainText: c.PlainText}
	req, err := BuildRequest(ctx, c.Endpoint, lang, params)
	if err != nil {
		return "", err
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	logging.Logf(logging.Info, "Looking up %q on %s", phrase, req.URL.Host)
	logging.Logf(logging.Debug, "Sending request: %s %s", req.Method, req.URL.String())

	body, err := c.Fetcher.Fetch(req)
	return Interpret(body, err)
}
