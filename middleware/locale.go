package middleware

import (
	"strings"

	"pqr_flow_app_go/services/i18n"

	"github.com/labstack/echo/v4"
)

// Locale picks the language of generated documents.
// Priority:
// 1. Query param "lang"
// 2. Accept-Language header
// 3. defaultLang
func Locale(defaultLang string) echo.MiddlewareFunc {
	if !i18n.IsSupported(defaultLang) {
		defaultLang = "es"
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := strings.ToLower(strings.TrimSpace(c.QueryParam("lang")))
			if !i18n.IsSupported(lang) {
				lang = fromAcceptLanguage(c.Request().Header.Get("Accept-Language"))
			}
			if lang == "" {
				lang = defaultLang
			}

			c.Set("locale", lang)
			ctx := i18n.WithLocale(c.Request().Context(), lang)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// fromAcceptLanguage returns the first supported language of the header, in order
func fromAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		base := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if i18n.IsSupported(base) {
			return base
		}
	}
	return ""
}

// GetLocale returns the current locale from context
func GetLocale(c echo.Context) string {
	if lang, ok := c.Get("locale").(string); ok {
		return lang
	}
	return "es"
}
