package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/gofiber/fiber/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"home", "word", "video", "search", "channel", "error"}

type views struct {
	pages map[string]*template.Template
}

func loadViews() (*views, error) {
	funcs := template.FuncMap{
		// sanitized marks markup already cleaned by the adapter.
		"sanitized": func(s string) template.HTML { return template.HTML(s) },
		"inc":       func(n int) int { return n + 1 },
		"dec":       func(n int) int { return n - 1 },
	}

	v := &views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

func (s *server) render(c *fiber.Ctx, status int, name string, data any) error {
	t, ok := s.views.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.log.ErrorObj("template render failed", "web_render_error", map[string]any{
			"template": name,
			"error":    err.Error(),
		})
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}

	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}
