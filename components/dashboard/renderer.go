package dashboard

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	template "github.com/goliatone/go-template"
)

// Renderer describes the template renderer contract needed by the controller.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

//go:embed templates/*.html
var embeddedTemplates embed.FS

// pageTemplates lists every template the controller renders.
var pageTemplates = []string{
	defaultLayoutTemplate,
	headerTemplate,
	sidebarTemplate,
	dialogTemplate,
	"widget_stats.html",
	"widget_quick_actions.html",
	"widget_alerts.html",
	"widget_chart.html",
}

// NewTemplateRenderer renders the embedded pharmacy templates. A non-empty
// dir replaces them with the templates found there; the directory must hold
// every page template.
func NewTemplateRenderer(dir ...string) (Renderer, error) {
	fsys, base, err := templateSource(dir...)
	if err != nil {
		return nil, err
	}
	return template.NewRenderer(
		template.WithFS(fsys),
		template.WithBaseDir(base),
		template.WithExtension(".html"),
	)
}

func templateSource(dir ...string) (fs.FS, string, error) {
	if len(dir) == 0 || dir[0] == "" {
		return embeddedTemplates, "templates", nil
	}
	root := filepath.Clean(dir[0])
	fsys := os.DirFS(filepath.Dir(root))
	base := filepath.Base(root)
	for _, name := range pageTemplates {
		if _, err := fs.Stat(fsys, base+"/"+name); err != nil {
			return nil, "", fmt.Errorf("dashboard: templates dir %s: %w", root, err)
		}
	}
	return fsys, base, nil
}
