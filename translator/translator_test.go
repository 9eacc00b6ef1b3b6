package translator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/s0up4200/qbtlang/ts"
)

const germanCatalog = `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE TS>
<TS version="2.0" language="de">
<context>
    <name>MainWindow</name>
    <message>
        <source>&amp;Pause</source>
        <translation>&amp;Pausieren</translation>
    </message>
    <message>
        <source>%1 of %2</source>
        <translation>%1 von %2</translation>
    </message>
</context>
</TS>
`

func setupLangDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	data, err := os.ReadFile(filepath.Join("..", "ts", "testdata", "qbittorrent_uk.ts"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "qbittorrent_uk.ts"), data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "qbittorrent_de.ts"), []byte(germanCatalog), 0o644))
	return dir
}

func TestLocaleCandidates(t *testing.T) {
	tests := []struct {
		locale string
		want   []string
	}{
		{"uk", []string{"uk"}},
		{"uk_UA", []string{"uk_UA", "uk"}},
		{"pt-BR", []string{"pt-BR", "pt_BR", "pt"}},
		{"uk_UA.UTF-8", []string{"uk_UA.UTF-8", "uk_UA", "uk"}},
		{"uz@Latn", []string{"uz@Latn", "uz"}},
		{"sr_RS@latin", []string{"sr_RS@latin", "sr_RS", "sr"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, LocaleCandidates(tt.locale))
		})
	}
}

func TestIsRightToLeft(t *testing.T) {
	assert.True(t, IsRightToLeft("ar"))
	assert.True(t, IsRightToLeft("he_IL"))
	assert.False(t, IsRightToLeft("uk"))
	assert.False(t, IsRightToLeft(""))
}

func TestLoad(t *testing.T) {
	dir := setupLangDir(t)
	logger := zerolog.Nop()

	t.Run("region falls back to language", func(t *testing.T) {
		tr, err := Load(dir, "", "uk_UA", logger)
		require.NoError(t, err)
		assert.True(t, tr.Loaded())
		assert.Equal(t, filepath.Join(dir, "qbittorrent_uk.ts"), tr.Path())
		assert.Equal(t, "При&зупинити", tr.Translate("MainWindow", "&Pause", ""))
		assert.False(t, tr.RightToLeft())
	})

	t.Run("unknown locale passes source through", func(t *testing.T) {
		tr, err := Load(dir, DefaultPrefix, "fr", logger)
		require.NoError(t, err)
		assert.False(t, tr.Loaded())
		assert.Empty(t, tr.Path())
		assert.Equal(t, "&Pause", tr.Translate("MainWindow", "&Pause", ""))
		assert.Equal(t, "%n torrent(s)", tr.TranslatePlural("MainWindow", "%n torrent(s)", "", 3))
	})

	t.Run("script modifier is tried before stripping", func(t *testing.T) {
		latin := strings.ReplaceAll(germanCatalog, `language="de"`, `language="uz@Latn"`)
		latin = strings.ReplaceAll(latin, "&amp;Pausieren", "&amp;To'xtatish")
		cyrillic := strings.ReplaceAll(germanCatalog, `language="de"`, `language="uz"`)
		cyrillic = strings.ReplaceAll(cyrillic, "&amp;Pausieren", "&amp;Тўхтатиш")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "qbittorrent_uz@Latn.ts"), []byte(latin), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "qbittorrent_uz.ts"), []byte(cyrillic), 0o644))

		tr, err := Load(dir, "", "uz@Latn", logger)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "qbittorrent_uz@Latn.ts"), tr.Path())
		assert.Equal(t, "&To'xtatish", tr.Translate("MainWindow", "&Pause", ""))

		tr, err = Load(dir, "", "uz_UZ.UTF-8", logger)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "qbittorrent_uz.ts"), tr.Path())
	})

	t.Run("broken catalog is an error", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "qbittorrent_xx.ts"), []byte("<TS><context>"), 0o644))
		_, err := Load(dir, "", "xx", logger)
		require.Error(t, err)
		var de *ts.DecodeError
		assert.ErrorAs(t, err, &de)
	})
}

func TestLoadAll(t *testing.T) {
	dir := setupLangDir(t)

	b, err := LoadAll(context.Background(), dir, "", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"de", "uk"}, b.Languages())

	de, ok := b.Get("de")
	require.True(t, ok)
	assert.Equal(t, "&Pausieren", de.Translate("MainWindow", "&Pause", ""))

	assert.Equal(t, "При&зупинити", b.Resolve("uk_UA").Translate("MainWindow", "&Pause", ""))
	assert.False(t, b.Resolve("fr_FR").Loaded())
}

func TestLoadAllEmptyDir(t *testing.T) {
	_, err := LoadAll(context.Background(), t.TempDir(), "", zerolog.Nop())
	assert.ErrorIs(t, err, ErrNoCatalogs)
}

func TestBundleMatch(t *testing.T) {
	b, err := LoadAll(context.Background(), setupLangDir(t), "", zerolog.Nop())
	require.NoError(t, err)

	lang, conf := b.Match("uk-UA")
	assert.Equal(t, "uk", lang)
	assert.NotEqual(t, language.No, conf)

	lang, _ = b.Match("fr-FR,de;q=0.8")
	assert.Equal(t, "de", lang)

	lang, _ = b.Match("en-US")
	assert.Empty(t, lang)

	lang, conf = b.Match("not a tag!")
	assert.Empty(t, lang)
	assert.Equal(t, language.No, conf)
}

func TestBundlePrinter(t *testing.T) {
	b, err := LoadAll(context.Background(), setupLangDir(t), "", zerolog.Nop())
	require.NoError(t, err)

	p, err := b.Printer("de")
	require.NoError(t, err)
	assert.Equal(t, "%1 von %2", p.Sprintf("MainWindow|%1 of %2"))

	uk, err := b.Printer("uk")
	require.NoError(t, err)
	assert.Equal(t, "При&зупинити", uk.Sprintf("MainWindow|&Pause"))
}

func TestBundleTranslations(t *testing.T) {
	b, err := LoadAll(context.Background(), setupLangDir(t), "", zerolog.Nop())
	require.NoError(t, err)

	first, err := b.TextCatalog()
	require.NoError(t, err)
	second, err := b.TextCatalog()
	require.NoError(t, err)
	assert.Same(t, first, second, "catalog builder is built once")

	got, err := b.Translations(ts.Key{Context: "MainWindow", Source: "&Pause"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"de": "&Pausieren", "uk": "При&зупинити"}, got)

	got, err = b.Translations(ts.Key{Context: "MainWindow", Source: "%1 of %2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"de": "%1 von %2", "uk": "%1 of %2"}, got)
}

func TestLoadFile(t *testing.T) {
	dir := setupLangDir(t)

	tr, err := LoadFile(filepath.Join(dir, "qbittorrent_de.ts"))
	require.NoError(t, err)
	assert.True(t, tr.Loaded())
	assert.Equal(t, "de", tr.Locale())
	assert.Equal(t, "&Pausieren", tr.Translate("MainWindow", "&Pause", ""))

	_, err = LoadFile(filepath.Join(dir, "missing.ts"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
