package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	require.NoError(t, Load())

	es := WithLocale(context.Background(), "es")
	en := WithLocale(context.Background(), "en")
	assert.Equal(t, "Comprobante de Radicación", T(es, "voucher.title"))
	assert.NotEqual(t, T(es, "voucher.title"), T(en, "voucher.title"))
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	require.NoError(t, Load())

	mu.RLock()
	defer mu.RUnlock()
	for key := range catalogs["es"] {
		_, ok := catalogs["en"][key]
		assert.True(t, ok, "missing en text for %s", key)
	}
	assert.Equal(t, len(catalogs["es"]), len(catalogs["en"]))
}

func TestT(t *testing.T) {
	mu.Lock()
	previous := catalogs
	catalogs = map[string]map[string]string{
		"es": {"caselog.title": "Bitácora del caso {number}", "report.total": "Total de PQR"},
		"en": {"caselog.title": "Case log {number}"},
	}
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		catalogs = previous
		mu.Unlock()
	})

	en := WithLocale(context.Background(), "en")

	t.Run("Placeholders", func(t *testing.T) {
		assert.Equal(t, "Case log 2024-PQR-0001", T(en, "caselog.title", Vars{"number": "2024-PQR-0001"}))
		assert.Equal(t, "Case log {number}", T(en, "caselog.title", Vars{"other": "x"}))
	})

	t.Run("Falls back to Spanish", func(t *testing.T) {
		assert.Equal(t, "Total de PQR", T(en, "report.total"))
	})

	t.Run("Falls back to the key", func(t *testing.T) {
		assert.Equal(t, "report.missing", T(en, "report.missing"))
	})
}

func TestLocaleContext(t *testing.T) {
	assert.Equal(t, "es", GetLocale(context.Background()))
	assert.Equal(t, "en", GetLocale(WithLocale(context.Background(), "en")))

	t.Run("SetDefault ignores unsupported languages", func(t *testing.T) {
		t.Cleanup(func() { SetDefault("es") })
		SetDefault("fr")
		assert.Equal(t, "es", GetLocale(context.Background()))
		SetDefault("en")
		assert.Equal(t, "en", GetLocale(context.Background()))
	})

	assert.True(t, IsSupported("en"))
	assert.False(t, IsSupported("fr"))
}
