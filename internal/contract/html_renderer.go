package contract

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"os"
)

//go:embed templates/agreement.html
var defaultTemplate string

// HTMLRenderer renders the loan agreement as a self-contained HTML document.
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer builds a renderer from the embedded agreement template, or
// from templatePath when one is configured.
func NewHTMLRenderer(templatePath string) (*HTMLRenderer, error) {
	src := defaultTemplate
	if templatePath != "" {
		raw, err := os.ReadFile(templatePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read contract template: %w", err)
		}
		src = string(raw)
	}
	tmpl, err := template.New("agreement").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// Render executes the template against the snapshot.
func (r *HTMLRenderer) Render(ctx context.Context, data Data) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, "", fmt.Errorf("failed to render contract: %w", err)
	}
	return buf.Bytes(), "text/html", nil
}
