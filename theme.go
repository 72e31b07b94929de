package pubtheme

import (
	"net/http"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/eringen/pubtheme/content"
)

const (
	themeKey   = "theme"
	themeDark  = "dark"
	themeLight = "light"
)

// isDark reports the visitor's theme, falling back to the publication's
// default when the visitor has not chosen one.
func (a *App) isDark(c echo.Context, pub content.Publication) bool {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return pub.DarkMode
	}
	switch sess.Values[themeKey] {
	case themeDark:
		return true
	case themeLight:
		return false
	}
	return pub.DarkMode
}

func (a *App) handleTheme(c echo.Context) error {
	pub, err := a.Source.Publication(c.Request().Context())
	if err != nil {
		c.Logger().Warnf("theme: publication unavailable: %v", err)
	}
	next := themeDark
	if a.isDark(c, pub) {
		next = themeLight
	}
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values[themeKey] = next
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	if c.Request().Header.Get("HX-Request") == "true" {
		c.Response().Header().Set("HX-Refresh", "true")
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusSeeOther, a.returnPath(c.Request().Referer()))
}
