// Package markdown convierte el texto almacenado de los mensajes en HTML
// seguro para mostrar: markdown, autolinks y segmentos de notación matemática.
package markdown

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

var (
	// $$...$$ primero para que no lo capture la variante de un solo $.
	blockMathRe  = regexp.MustCompile(`(?s)\$\$(.+?)\$\$`)
	inlineMathRe = regexp.MustCompile(`\$([^$\n]+)\$`)
)

// Renderer transforma markdown en HTML sanitizado. Es puro: sin estado mutable,
// seguro para uso concurrente.
type Renderer struct {
	md       goldmark.Markdown
	sanitize *bluemonday.Policy
}

func NewRenderer() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("span", "div", "code", "pre")

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify),
			// WithUnsafe deja pasar los spans de math; bluemonday sanitiza después.
			goldmark.WithRendererOptions(ghtml.WithHardWraps(), ghtml.WithUnsafe()),
		),
		sanitize: policy,
	}
}

// Render devuelve HTML seguro para el texto de un mensaje. Los segmentos
// $...$ y $$...$$ se preservan escapados dentro de spans/divs con clase "math"
// para que el cliente los tipografíe.
func (r *Renderer) Render(text string) (string, error) {
	text = extractMath(text)

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	return strings.TrimSpace(r.sanitize.Sanitize(buf.String())), nil
}

// extractMath reemplaza la notación matemática por HTML crudo antes de pasar
// por goldmark; el contenido queda escapado para que nunca inyecte markup.
func extractMath(text string) string {
	text = blockMathRe.ReplaceAllStringFunc(text, func(m string) string {
		inner := blockMathRe.FindStringSubmatch(m)[1]
		return `<div class="math">` + html.EscapeString(strings.TrimSpace(inner)) + `</div>`
	})
	return inlineMathRe.ReplaceAllStringFunc(text, func(m string) string {
		inner := inlineMathRe.FindStringSubmatch(m)[1]
		return `<span class="math">` + html.EscapeString(inner) + `</span>`
	})
}
