package wiki

import "errors"

// Lookup failures. Each is terminal for an invocation; callers wrap them with
// the underlying cause and test for them with errors.Is.
var (
	// ErrInvalidEndpoint means the request URL could not be built from the
	// endpoint template and language code. No network activity happened.
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	// ErrLanguageNotFound covers every transport failure. A language code
	// without a wiki shows up as a DNS or connect error, so the two are
	// reported the same way.
	ErrLanguageNotFound = errors.New("language not found")

	// ErrNotFound covers an undecodable payload as well as an empty page set.
	ErrNotFound = errors.New("not found")
)

// Message returns the line shown to the user for err.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrLanguageNotFound):
		return "That language does not exist."
	case errors.Is(err, ErrNotFound):
		return "Not found..."
	default:
		return err.Error()
	}
}
