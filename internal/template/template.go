package template

import (
	"bytes"
	"fmt"
	"text/template"

	"wikiextract/internal/logging"
)

// EndpointData is the data available to an endpoint template.
type EndpointData struct {
	Lang string
}

// Render evaluates a Go template string with the provided data.
// It returns an error if template parsing fails or if a referenced field or key
// is missing (Option("missingkey=error")).
func Render(templateName, tmplStr string, data any) (string, error) {
	if tmplStr == "" {
		return "", nil
	}

	tmpl, err := template.New(templateName).Option("missingkey=error").Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template '%s': %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		logging.Logf(logging.Debug, "Template '%s' data: %+v", templateName, data)
		return "", fmt.Errorf("failed to execute template '%s': %w", templateName, err)
	}
	return buf.String(), nil
}

// RenderEndpoint substitutes the language code into an endpoint template
// such as "https://{{.Lang}}.wikipedia.org/w/api.php".
func RenderEndpoint(tmplStr, lang string) (string, error) {
	return Render("endpoint", tmplStr, EndpointData{Lang: lang})
}
