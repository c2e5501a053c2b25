package util

import (
	"os"
	"regexp"
)

// snippetLen bounds the amount of a response body written to debug logs.
const snippetLen = 200

var windowsVarRe = regexp.MustCompile(`%([A-Za-z0-9_]+)%`)

// ExpandEnvUniversal expands both Unix-style ($VAR, ${VAR}) and Windows-style (%VAR%) environment variables.
// Unset variables expand to the empty string in both styles.
func ExpandEnvUniversal(s string) string {
	unixExpanded := os.ExpandEnv(s)
	return windowsVarRe.ReplaceAllStringFunc(unixExpanded, func(match string) string {
		value, _ := os.LookupEnv(match[1 : len(match)-1])
		return value
	})
}

// ExpandEnvMap returns a copy of m with every value passed through ExpandEnvUniversal.
// A nil map yields an empty, non-nil map.
func ExpandEnvMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = ExpandEnvUniversal(v)
	}
	return out
}

// Snippet returns a short prefix of a byte slice, useful for logging.
// The cut is made on a rune boundary.
func Snippet(b []byte) string {
	if len(b) <= snippetLen {
		return string(b)
	}
	runes := []rune(string(b))
	if len(runes) <= snippetLen {
		return string(b)
	}
	return string(runes[:snippetLen]) + "..."
}
