package wiki

import (
	"fmt"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Interpret turns the outcome of the HTTP call into an extract.
//
// A transport error, or a body that is not valid UTF-8, yields
// ErrLanguageNotFound. A body that does not match
// {"query":{"pages":{"<id>":{"extract":"..."}}}} yields ErrNotFound, as does
// an empty pages object. Otherwise the extract of the first page in document
// order is returned exactly as sent.
func Interpret(body []byte, transportErr error) (string, error) {
	if transportErr != nil {
		return "", fmt.Errorf("%w: %v", ErrLanguageNotFound, transportErr)
	}
	if !utf8.Valid(body) {
		return "", fmt.Errorf("%w: response body is not valid UTF-8", ErrLanguageNotFound)
	}

	pages, err := decodePages(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	var (
		extract  string
		found    bool
		shapeErr error
	)
	// Every entry must carry an extract, even though only the first is used.
	pages.ForEach(func(key, page gjson.Result) bool {
		if !page.IsObject() {
			shapeErr = fmt.Errorf("page %q is not an object", key.String())
			return false
		}
		ex := page.Get("extract")
		if ex.Type != gjson.String {
			shapeErr = fmt.Errorf("page %q has no extract", key.String())
			return false
		}
		if !found {
			extract, found = ex.String(), true
		}
		return true
	})
	if shapeErr != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, shapeErr)
	}
	if !found {
		return "", fmt.Errorf("%w: no pages in response", ErrNotFound)
	}
	return extract, nil
}

// decodePages validates body and returns its query.pages object.
func decodePages(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("response is not valid JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return gjson.Result{}, fmt.Errorf("response is not a JSON object")
	}
	query := root.Get("query")
	if !query.IsObject() {
		return gjson.Result{}, fmt.Errorf("response has no query object")
	}
	pages := query.Get("pages")
	if !pages.IsObject() {
		return gjson.Result{}, fmt.Errorf("response has no query.pages object")
	}
	return pages, nil
}
