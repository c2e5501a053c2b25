package config

// DefaultEndpoint is the per-language MediaWiki Action API endpoint of Wikipedia.
const DefaultEndpoint = "https://{{.Lang}}.wikipedia.org/w/api.php"

// DefaultLanguage is used when neither the flag nor LANG selects a language.
const DefaultLanguage = "en"

// Config holds the optional settings of a lookup. Every field has a usable
// default, so running without a configuration file is the normal case.
type Config struct {
	Endpoint        string        `yaml:"endpoint"`
	DefaultLanguage string        `yaml:"default_language"`
	UserAgent       string        `yaml:"user_agent,omitempty"`
	IntroOnly       bool          `yaml:"intro_only"`
	PlainText       bool          `yaml:"plain_text"`
	TLSSkipVerify   bool          `yaml:"tls_skip_verify,omitempty"`
	ForceHTTP1      bool          `yaml:"force_http1,omitempty"`
	FipsMode        bool          `yaml:"fips_mode,omitempty"`
	Logging         LoggingConfig `yaml:"logging"`
	Auth            AuthConfig    `yaml:"auth"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// AuthConfig selects how requests to the endpoint are authenticated.
// Credentials values may reference environment variables ($VAR, ${VAR}, %VAR%).
type AuthConfig struct {
	Type        string            `yaml:"type"`
	Credentials map[string]string `yaml:"credentials,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Endpoint:        DefaultEndpoint,
		DefaultLanguage: DefaultLanguage,
		IntroOnly:       true,
		PlainText:       true,
		Logging:         LoggingConfig{Level: "error"},
		Auth:            AuthConfig{Type: "none"},
	}
}
