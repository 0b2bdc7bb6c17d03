// Package view renders terminal output from embedded text templates.
package view

import (
	"embed"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Engine renders named templates.
type Engine struct {
	templates *template.Template
	printer   *message.Printer
}

// NewEngine parses the embedded templates. locale is a BCP 47 tag used for
// money and number formatting; an unparseable tag falls back to English.
func NewEngine(locale string) (*Engine, error) {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.English
	}
	e := &Engine{printer: message.NewPrinter(tag)}
	funcMap := template.FuncMap{
		"money": e.Money,
		"number": func(v int) string {
			return e.printer.Sprintf("%d", v)
		},
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"pad": func(width int, s string) string {
			if len([]rune(s)) >= width {
				return s
			}
			return s + strings.Repeat(" ", width-len([]rune(s)))
		},
		"text": PlainText,
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	e.templates = tpl
	return e, nil
}

// Money formats v with two decimals and the locale's grouping.
func (e *Engine) Money(v float64) string {
	return e.printer.Sprintf("%.2f", v)
}

// Render executes a named template into w.
func (e *Engine) Render(w io.Writer, name string, data any) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	return e.templates.ExecuteTemplate(w, name, data)
}
