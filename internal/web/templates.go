package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/John-Robertt/recipebox/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"gallery", "detail", "grocery", "error"}

var funcs = template.FuncMap{
	"formatCalories": view.FormatCalories,
	"formatGrams":    view.FormatGrams,
	"formatValue":    view.FormatValue,
	"formatDate":     view.FormatDate,
	"storeLabel":     storeLabel,
}

// pages 是每个页面各自的模板集（layout + 页面），避免不同页面的 "content" 互相覆盖。
type pages map[string]*template.Template

func loadPages() (pages, error) {
	base, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, err
	}
	out := make(pages, len(pageNames))
	for _, name := range pageNames {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

func (p pages) render(w io.Writer, name string, data any) error {
	t, ok := p[name]
	if !ok {
		return fmt.Errorf("未知页面：%q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

func storeLabel(s string) string {
	switch strings.ToLower(s) {
	case "instacart":
		return "Instacart"
	case "walmart":
		return "Walmart"
	case "amazon":
		return "Amazon"
	}
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
