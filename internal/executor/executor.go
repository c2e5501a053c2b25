package executor

import (
	"fmt"
	"io"
	"net/http"

	"wikiextract/internal/logging"
	"wikiextract/internal/util"
)

// Executor sends a lookup request exactly once and hands back the body.
// There is no retry: any failure is final for the invocation.
type Executor struct {
	Client *http.Client
}

// New returns an Executor using client, or http.DefaultClient when client is nil.
func New(client *http.Client) *Executor {
	if client == nil {
		client = http.DefaultClient
	}
	return &Executor{Client: client}
}

// Fetch performs req and returns the full response body. Transport and
// body-read failures are returned as errors. A non-2xx status is not an error
// here; the body is returned for the caller to interpret.
func (e *Executor) Fetch(req *http.Request) ([]byte, error) {
	resp, err := e.Client.Do(req)
	if err != nil {
		logging.Logf(logging.Debug, "Request to %s failed: %v", req.URL.Host, err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body (status %d): %w", resp.StatusCode, err)
	}

	logging.Logf(logging.Debug, "Response Status: %d", resp.StatusCode)
	logging.Logf(logging.Debug, "Response Headers: %v", resp.Header)
	logging.Logf(logging.Debug, "Response Body Snippet: %s", util.Snippet(body))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Logf(logging.Warning, "%s answered with status %d", req.URL.Host, resp.StatusCode)
	}
	return body, nil
}
