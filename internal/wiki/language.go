package wiki

import "regexp"

// LangEnvVar is the locale variable consulted when no language flag is given.
const LangEnvVar = "LANG"

// FallbackLanguage is used when nothing else selects a language.
const FallbackLanguage = "en"

// LookupEnvFunc matches os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

var languageCodeRe = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// IsValidLanguageCode reports whether code can stand as the host label of a
// language subdomain. It does not check that such a wiki exists.
func IsValidLanguageCode(code string) bool {
	return languageCodeRe.MatchString(code)
}

// ResolveLanguage picks the language code for a lookup. An explicit flag value
// wins; otherwise the first two bytes of LANG are used (e.g. "fr" from
// "fr_FR.UTF-8"); otherwise fallback, or FallbackLanguage when fallback is
// empty. A LANG value shorter than two bytes is ignored.
func ResolveLanguage(flagLang string, lookupEnv LookupEnvFunc, fallback string) string {
	if flagLang != "" {
		return flagLang
	}
	if lookupEnv != nil {
		if v, ok := lookupEnv(LangEnvVar); ok && len(v) >= 2 {
			return v[:2]
		}
	}
	if fallback != "" {
		return fallback
	}
	return FallbackLanguage
}
