// Package translator resolves a user locale to a translation catalog and
// answers lookups the way the application runtime does: a catalog for the
// exact locale is preferred, then its base language, and when nothing
// matches every lookup returns the English source text.
package translator

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/qbtlang/ts"
)

// DefaultPrefix is the file name prefix of qBittorrent catalogs.
const DefaultPrefix = "qbittorrent"

// rtlPrefixes lists locales rendered right to left.
var rtlPrefixes = []string{"ar", "he"}

// Translator answers lookups for one locale.
type Translator struct {
	locale  string
	path    string
	catalog *ts.Catalog
	index   *ts.Index
}

// Load finds <prefix>_<locale>.ts in dir, trying each of
// LocaleCandidates in turn. A locale without a catalog yields a pass-through
// translator; that is not an error.
func Load(dir, prefix, locale string, logger zerolog.Logger) (*Translator, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	t := &Translator{locale: locale, index: ts.NewIndex(nil)}

	for _, candidate := range LocaleCandidates(locale) {
		path := filepath.Join(dir, prefix+"_"+candidate+".ts")
		cat, err := ts.ParseFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("load %s: %w", path, err)
		}

		t.path = path
		t.catalog = cat
		t.index = ts.NewIndex(cat)
		logger.Debug().
			Str("locale", locale).
			Str("path", path).
			Int("messages", t.index.Len()).
			Msg("Locale recognized, using translation")
		return t, nil
	}

	logger.Debug().Str("locale", locale).Msg("Locale unrecognized, using default (en)")
	return t, nil
}

// LoadFile builds a translator from an explicit catalog path.
func LoadFile(path string) (*Translator, error) {
	cat, err := ts.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return New(cat, path), nil
}

// New wraps an already parsed catalog.
func New(cat *ts.Catalog, path string) *Translator {
	locale := ""
	if cat != nil {
		locale = cat.Language
	}
	return &Translator{
		locale:  locale,
		path:    path,
		catalog: cat,
		index:   ts.NewIndex(cat),
	}
}

// LocaleCandidates returns the lookup chain for a locale, most specific
// first: the locale as given, then without codeset or modifier, then its
// language part. "uk_UA.UTF-8" gives ["uk_UA.UTF-8", "uk_UA", "uk"] and
// "uz@Latn" gives ["uz@Latn", "uz"].
func LocaleCandidates(locale string) []string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return nil
	}

	var out []string
	add := func(c string) {
		if c != "" && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}

	add(locale)

	stripped := locale
	if i := strings.IndexAny(stripped, ".@"); i > 0 {
		stripped = stripped[:i]
	}
	add(stripped)

	normalized := strings.ReplaceAll(stripped, "-", "_")
	add(normalized)
	if i := strings.IndexByte(normalized, '_'); i > 0 {
		add(normalized[:i])
	}
	return out
}

// IsRightToLeft reports whether the locale uses a right-to-left layout.
func IsRightToLeft(locale string) bool {
	for _, p := range rtlPrefixes {
		if strings.HasPrefix(locale, p) {
			return true
		}
	}
	return false
}

// Locale returns the locale that was requested.
func (t *Translator) Locale() string {
	return t.locale
}

// Path returns the loaded catalog path, empty for the pass-through translator.
func (t *Translator) Path() string {
	return t.path
}

// Loaded reports whether a catalog backs this translator.
func (t *Translator) Loaded() bool {
	return t.catalog != nil
}

// Catalog returns the backing catalog, or nil.
func (t *Translator) Catalog() *ts.Catalog {
	return t.catalog
}

// Index returns the lookup table.
func (t *Translator) Index() *ts.Index {
	return t.index
}

// RightToLeft reports the layout direction for this translator's locale.
func (t *Translator) RightToLeft() bool {
	return IsRightToLeft(t.locale)
}

// Translate returns the translation or the source text.
func (t *Translator) Translate(context, source, comment string) string {
	return t.index.Translate(context, source, comment)
}

// TranslatePlural returns the numerus form for n or the source text.
func (t *Translator) TranslatePlural(context, source, comment string, n int) string {
	return t.index.TranslatePlural(context, source, comment, n)
}
