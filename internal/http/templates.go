package http

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// ParseTemplates carga las plantillas HTML embebidas. Cada página se
// ejecuta por su nombre de archivo ("index.html") y comparte los bloques
// definidos en layout.html.
func ParseTemplates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}
