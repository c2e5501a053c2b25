package wiki

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"wikiextract/internal/template"
)

// Params are the query parameters of an extracts lookup. Only the phrase and
// the two extract flags vary; format, action, prop and redirects are fixed.
type Params struct {
	Phrase    string
	IntroOnly bool
	PlainText bool
}

// DefaultParams requests the plain-text introduction of phrase.
func DefaultParams(phrase string) Params {
	return Params{Phrase: phrase, IntroOnly: true, PlainText: true}
}

// Values encodes p the way the Action API expects: booleans as "true"/"false"
// and redirects as the string "1".
func (p Params) Values() url.Values {
	v := url.Values{}
	v.Set("format", "json")
	v.Set("action", "query")
	v.Set("prop", "extracts")
	v.Set("exintro", strconv.FormatBool(p.IntroOnly))
	v.Set("explaintext", strconv.FormatBool(p.PlainText))
	v.Set("redirects", "1")
	v.Set("titles", p.Phrase)
	return v
}

// BuildRequest renders endpoint for lang and returns a GET request carrying
// params. It performs no I/O. Every failure wraps ErrInvalidEndpoint.
func BuildRequest(ctx context.Context, endpoint, lang string, params Params) (*http.Request, error) {
	if !IsValidLanguageCode(lang) {
		return nil, fmt.Errorf("%w: language code %q is not a valid host label", ErrInvalidEndpoint, lang)
	}

	rendered, err := template.RenderEndpoint(endpoint, lang)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}

	u, err := url.Parse(rendered)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: '%s' is not an absolute http(s) URL", ErrInvalidEndpoint, rendered)
	}

	// Keep any query parameters already present in the endpoint.
	q := u.Query()
	for k, vs := range params.Values() {
		q[k] = vs
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}
