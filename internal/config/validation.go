package config

import (
	"fmt"
	"net/url"
	"strings"

	"wikiextract/internal/template"
	"wikiextract/internal/wiki"
)

var (
	knownLogLevels = []string{"none", "error", "warn", "warning", "info", "debug"}
	knownAuthTypes = []string{"none", "basic", "bearer", "digest", "ntlm", "oauth2"}
)

// requiredCredentials lists the credential keys each auth type cannot do without.
// Bearer tokens may come from the environment instead, so none are required there.
var requiredCredentials = map[string][]string{
	"basic":  {"username", "password"},
	"digest": {"username", "password"},
	"ntlm":   {"username", "password"},
	"oauth2": {"client_id", "client_secret", "token_url"},
}

func isValidEnumValue(value string, allowedValues []string) bool {
	value = strings.ToLower(value)
	for _, allowed := range allowedValues {
		if value == allowed {
			return true
		}
	}
	return false
}

// ValidateConfigManually checks the whole configuration and reports every
// problem found, one per line.
func ValidateConfigManually(cfg *Config) error {
	var allErrors []string
	allErrors = append(allErrors, validateEndpoint("Config.Endpoint", cfg.Endpoint)...)
	if !wiki.IsValidLanguageCode(cfg.DefaultLanguage) {
		allErrors = append(allErrors, fmt.Sprintf("- Config.DefaultLanguage: '%s' is not a valid language code", cfg.DefaultLanguage))
	}
	allErrors = append(allErrors, validateLoggingConfig("Config.Logging", &cfg.Logging)...)
	allErrors = append(allErrors, validateAuthConfig("Config.Auth", &cfg.Auth)...)
	if len(allErrors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(allErrors, "\n"))
	}
	return nil
}

// validateEndpoint renders the template with the default language and checks
// that the result is an absolute http(s) URL.
func validateEndpoint(prefix, endpoint string) []string {
	rendered, err := template.RenderEndpoint(endpoint, DefaultLanguage)
	if err != nil {
		return []string{fmt.Sprintf("- %s: invalid template: %v", prefix, err)}
	}
	u, err := url.ParseRequestURI(rendered)
	if err != nil {
		return []string{fmt.Sprintf("- %s: invalid URL '%s': %v", prefix, rendered, err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return []string{fmt.Sprintf("- %s: scheme must be http or https, got '%s'", prefix, u.Scheme)}
	}
	if u.Host == "" {
		return []string{fmt.Sprintf("- %s: URL '%s' has no host", prefix, rendered)}
	}
	return nil
}

func validateLoggingConfig(prefix string, cfg *LoggingConfig) []string {
	if !isValidEnumValue(cfg.Level, knownLogLevels) {
		return []string{fmt.Sprintf("- %s.Level: invalid log level '%s', must be one of %v", prefix, cfg.Level, knownLogLevels)}
	}
	return nil
}

func validateAuthConfig(prefix string, cfg *AuthConfig) []string {
	var errs []string
	authType := strings.ToLower(cfg.Type)
	if !isValidEnumValue(authType, knownAuthTypes) {
		errs = append(errs, fmt.Sprintf("- %s.Type: invalid auth type '%s', must be one of %v", prefix, cfg.Type, knownAuthTypes))
		return errs
	}
	fields, needed := requiredCredentials[authType]
	if !needed {
		return errs
	}
	if cfg.Credentials == nil {
		return append(errs, fmt.Sprintf("- %s.Credentials: map is required for auth type '%s'", prefix, authType))
	}
	for _, field := range fields {
		if v, ok := cfg.Credentials[field]; !ok || v == "" {
			errs = append(errs, fmt.Sprintf("- %s.Credentials: missing or empty required key '%s' for auth type '%s'", prefix, field, authType))
		}
	}
	return errs
}
