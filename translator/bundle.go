package translator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/s0up4200/qbtlang/ts"
)

// MaxConcurrentLoads bounds parallel catalog parsing.
const MaxConcurrentLoads = 8

// Bundle holds every catalog found in a directory, keyed by language.
// A Bundle is read-only after LoadAll returns.
type Bundle struct {
	translators map[string]*Translator
	languages   []string
	matcher     language.Matcher
	tags        []language.Tag

	textOnce    sync.Once
	textCatalog *catalog.Builder
	textErr     error
}

// LoadAll parses every <prefix>_*.ts file in dir concurrently.
func LoadAll(ctx context.Context, dir, prefix string, logger zerolog.Logger) (*Bundle, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	paths, err := filepath.Glob(filepath.Join(dir, prefix+"_*.ts"))
	if err != nil {
		return nil, fmt.Errorf("glob catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoCatalogs, dir)
	}
	sort.Strings(paths)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrentLoads)

	var mu sync.Mutex
	translators := make(map[string]*Translator, len(paths))

	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			cat, err := ts.ParseFile(path)
			if err != nil {
				return err
			}

			lang := languageFromPath(path, prefix)
			if lang == "" {
				lang = cat.Language
			}

			mu.Lock()
			translators[lang] = New(cat, path)
			mu.Unlock()

			logger.Debug().
				Str("language", lang).
				Str("path", path).
				Msg("Loaded catalog")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return NewBundle(translators), nil
}

// NewBundle builds a bundle from translators keyed by language.
func NewBundle(translators map[string]*Translator) *Bundle {
	b := &Bundle{translators: translators}

	for lang := range translators {
		b.languages = append(b.languages, lang)
	}
	sort.Strings(b.languages)

	// English source text is always available.
	b.tags = []language.Tag{language.English}
	for _, lang := range b.languages {
		tag, err := language.Parse(lang)
		if err != nil {
			tag = language.Und
		}
		b.tags = append(b.tags, tag)
	}
	b.matcher = language.NewMatcher(b.tags)

	return b
}

func languageFromPath(path, prefix string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.TrimPrefix(name, prefix+"_")
}

// Languages returns the loaded languages in sorted order.
func (b *Bundle) Languages() []string {
	return append([]string(nil), b.languages...)
}

// Get returns the translator for an exact language key.
func (b *Bundle) Get(lang string) (*Translator, bool) {
	t, ok := b.translators[lang]
	return t, ok
}

// Resolve walks the locale chain ("uk_UA" then "uk") and returns a
// pass-through translator when nothing matches.
func (b *Bundle) Resolve(locale string) *Translator {
	for _, candidate := range LocaleCandidates(locale) {
		if t, ok := b.translators[candidate]; ok {
			return t
		}
	}
	return &Translator{locale: locale, index: ts.NewIndex(nil)}
}

// Match picks the best loaded language for the preferred list, which may
// hold BCP 47 tags or Accept-Language values. It returns "" when English
// source text is the best match.
func (b *Bundle) Match(preferred ...string) (string, language.Confidence) {
	var want []language.Tag
	for _, p := range preferred {
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		want = append(want, tags...)
	}
	if len(want) == 0 {
		return "", language.No
	}

	_, idx, conf := b.matcher.Match(want...)
	if idx == 0 || conf == language.No {
		return "", conf
	}
	return b.languages[idx-1], conf
}

// TextCatalog registers every finished translation with an x/text catalog
// under ts.Key.String(). Percent signs are escaped so Qt placeholders such
// as %1 print verbatim through message.Printer. The builder is made once
// and shared by every Printer.
func (b *Bundle) TextCatalog() (*catalog.Builder, error) {
	b.textOnce.Do(func() {
		b.textCatalog, b.textErr = b.buildTextCatalog()
	})
	return b.textCatalog, b.textErr
}

func (b *Bundle) buildTextCatalog() (*catalog.Builder, error) {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))

	for i, lang := range b.languages {
		tag := b.tags[i+1]
		if tag == language.Und {
			continue
		}
		cat := b.translators[lang].Catalog()
		if cat == nil {
			continue
		}
		seen := make(map[ts.Key]struct{})
		for _, tuple := range cat.Tuples() {
			if _, dup := seen[tuple.Key]; dup {
				continue
			}
			seen[tuple.Key] = struct{}{}
			if !tuple.Finished || tuple.Translation == "" {
				continue
			}
			if err := builder.SetString(tag, tuple.Key.String(), escapePercent(tuple.Translation)); err != nil {
				return nil, fmt.Errorf("register %s %s: %w", lang, tuple.Key, err)
			}
		}
	}

	return builder, nil
}

func escapePercent(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}

// Printer returns a message printer for lang backed by TextCatalog.
func (b *Bundle) Printer(lang string) (*message.Printer, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, lang)
	}
	builder, err := b.TextCatalog()
	if err != nil {
		return nil, err
	}
	return message.NewPrinter(tag, message.Catalog(builder)), nil
}

// Translations renders the exact key in every loaded language through its
// Printer. Languages without a finished translation get the source text.
// Languages whose name is not a BCP 47 tag are left out.
func (b *Bundle) Translations(key ts.Key) (map[string]string, error) {
	out := make(map[string]string, len(b.languages))
	for _, lang := range b.languages {
		p, err := b.Printer(lang)
		if errors.Is(err, ErrUnknownLanguage) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[lang] = p.Sprintf(message.Key(key.String(), escapePercent(key.Source)))
	}
	return out, nil
}
