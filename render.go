package pubtheme

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/pubtheme/links"
	"github.com/eringen/pubtheme/views"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// renderPage renders body inside the layout, sweeps every anchor of the
// finished document and writes it with code.
func (a *App) renderPage(c echo.Context, code int, site views.Site, meta views.PageMeta, body templ.Component) error {
	var buf bytes.Buffer
	if err := views.Layout(site, meta, body).Render(c.Request().Context(), &buf); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	out, err := a.sweep(buf.String())
	if err != nil {
		return err
	}
	return c.HTMLBlob(code, []byte(out))
}

func (a *App) sweep(page string) (string, error) {
	doc, err := links.ParseDocument(page)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}
	links.Sweep(doc, a.Classifier)
	out, err := doc.HTML()
	if err != nil {
		return "", fmt.Errorf("serialize page: %w", err)
	}
	return out, nil
}
