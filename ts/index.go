package ts

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

// Index is a read-only lookup table over a catalog. It is safe for
// concurrent use.
type Index struct {
	language language.Tag
	messages map[Key]Message
}

// NewIndex builds a lookup table. When a (context, source, comment) triple
// occurs more than once the first occurrence wins.
func NewIndex(c *Catalog) *Index {
	idx := &Index{
		language: language.Und,
		messages: make(map[Key]Message),
	}
	if c == nil {
		return idx
	}
	if tag, err := language.Parse(c.Language); err == nil {
		idx.language = tag
	}

	for _, ctx := range c.Contexts {
		for _, m := range ctx.Messages {
			k := Key{Context: ctx.Name, Source: m.Source, Comment: m.Comment}
			if _, exists := idx.messages[k]; exists {
				continue
			}
			idx.messages[k] = m
		}
	}
	return idx
}

// Language returns the catalog language, or language.Und.
func (i *Index) Language() language.Tag {
	return i.language
}

// Len returns the number of distinct keys.
func (i *Index) Len() int {
	return len(i.messages)
}

// Lookup returns the message stored under k.
func (i *Index) Lookup(k Key) (Message, bool) {
	m, ok := i.messages[k]
	return m, ok
}

// find applies the Qt fallback: exact key, then the same source without
// a disambiguation comment.
func (i *Index) find(context, source, comment string) (Message, bool) {
	if m, ok := i.messages[Key{Context: context, Source: source, Comment: comment}]; ok {
		return m, true
	}
	if comment != "" {
		if m, ok := i.messages[Key{Context: context, Source: source}]; ok {
			return m, true
		}
	}
	return Message{}, false
}

// Translate returns the finished translation for the triple or source.
func (i *Index) Translate(context, source, comment string) string {
	m, ok := i.find(context, source, comment)
	if !ok || !m.Finished() || m.Translation == "" {
		return source
	}
	return m.Translation
}

// Translated reports whether a finished translation exists for the triple.
func (i *Index) Translated(context, source, comment string) bool {
	m, ok := i.find(context, source, comment)
	return ok && m.Finished() && m.Translation != ""
}

// TranslatePlural picks the numerus form for n. Non-numerus messages behave
// like Translate.
func (i *Index) TranslatePlural(context, source, comment string, n int) string {
	m, ok := i.find(context, source, comment)
	if !ok || !m.Finished() {
		return source
	}
	if !m.Numerus {
		if m.Translation == "" {
			return source
		}
		return m.Translation
	}
	if len(m.NumerusForms) == 0 {
		return source
	}

	form := m.NumerusForms[pluralIndex(i.language, n, len(m.NumerusForms))]
	if form == "" {
		return source
	}
	return form
}

// categoryOrder is the order Qt lists numerus forms in: the categories a
// language uses, from zero upward, with "other" folded into the last slot.
var categoryOrder = []plural.Form{plural.Zero, plural.One, plural.Two, plural.Few, plural.Many}

func pluralIndex(tag language.Tag, n, forms int) int {
	if forms <= 1 {
		return 0
	}
	if n < 0 {
		n = -n
	}

	used := usedCategories(tag)
	got := plural.Cardinal.MatchPlural(tag, n, 0, 0, 0, 0)
	for idx, f := range used {
		if f == got {
			return min(idx, forms-1)
		}
	}
	return forms - 1
}

// usedCategories returns the integer plural categories a language
// distinguishes, probing a range of counts.
func usedCategories(tag language.Tag) []plural.Form {
	seen := map[plural.Form]bool{}
	for n := 0; n <= 200; n++ {
		seen[plural.Cardinal.MatchPlural(tag, n, 0, 0, 0, 0)] = true
	}

	var used []plural.Form
	for _, f := range categoryOrder {
		if seen[f] {
			used = append(used, f)
		}
	}
	return used
}
