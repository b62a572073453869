// Package i18n holds the texts printed on vouchers, case logs, reports,
// exports and recovery emails.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
)

//go:embed es.json en.json
var files embed.FS

// Supported lists the languages with a catalog. The first one is the fallback
// for keys a catalog lacks.
var Supported = []string{"es", "en"}

// Vars fills {name} placeholders
type Vars map[string]string

var (
	mu          sync.RWMutex
	catalogs    = map[string]map[string]string{}
	defaultLang = Supported[0]
)

// Load reads the embedded catalogs. Each file groups texts by document:
// {"voucher": {"title": "..."}} is looked up as "voucher.title".
func Load() error {
	loaded := make(map[string]map[string]string, len(Supported))
	for _, lang := range Supported {
		content, err := files.ReadFile(lang + ".json")
		if err != nil {
			return fmt.Errorf("failed to read locale %s: %w", lang, err)
		}
		var sections map[string]map[string]string
		if err := json.Unmarshal(content, &sections); err != nil {
			return fmt.Errorf("failed to parse locale %s: %w", lang, err)
		}

		catalog := make(map[string]string)
		for section, texts := range sections {
			for key, text := range texts {
				catalog[section+"."+key] = text
			}
		}
		loaded[lang] = catalog
	}

	mu.Lock()
	catalogs = loaded
	mu.Unlock()
	log.Printf("[I18N] Loaded %d locales", len(loaded))
	return nil
}

// IsSupported reports whether lang has a catalog
func IsSupported(lang string) bool {
	for _, l := range Supported {
		if l == lang {
			return true
		}
	}
	return false
}

// SetDefault changes the language used when a context carries none.
// Unsupported languages are ignored.
func SetDefault(lang string) {
	if !IsSupported(lang) {
		return
	}
	mu.Lock()
	defaultLang = lang
	mu.Unlock()
}

// T returns the text of key in the context language, then in the fallback
// language, then the key itself.
func T(ctx context.Context, key string, vars ...Vars) string {
	lang := GetLocale(ctx)

	mu.RLock()
	text, ok := catalogs[lang][key]
	if !ok {
		text, ok = catalogs[Supported[0]][key]
	}
	mu.RUnlock()
	if !ok {
		return key
	}

	for _, v := range vars {
		for name, value := range v {
			text = strings.ReplaceAll(text, "{"+name+"}", value)
		}
	}
	return text
}

type localeKey struct{}

// WithLocale returns a copy of ctx carrying lang
func WithLocale(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, localeKey{}, lang)
}

// GetLocale returns the language carried by ctx or the default one
func GetLocale(ctx context.Context) string {
	if lang, ok := ctx.Value(localeKey{}).(string); ok && lang != "" {
		return lang
	}
	mu.RLock()
	defer mu.RUnlock()
	return defaultLang
}
