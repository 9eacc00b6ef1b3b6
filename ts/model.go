package ts

import (
	"strconv"
	"strings"
)

// TranslationType is the value of the type attribute on <translation>.
type TranslationType string

const (
	// TypeFinished marks a translation without a type attribute.
	TypeFinished TranslationType = ""
	// TypeUnfinished marks a translation that has not been supplied or approved yet.
	TypeUnfinished TranslationType = "unfinished"
	// TypeObsolete marks a message whose source string no longer exists.
	TypeObsolete TranslationType = "obsolete"
	// TypeVanished is the Qt 5 spelling of an obsolete message.
	TypeVanished TranslationType = "vanished"
)

// Catalog is one parsed .ts document.
type Catalog struct {
	Version        string
	Language       string
	SourceLanguage string
	Contexts       []Context
	// DocTypeMissing is set by Decode when the document had no
	// <!DOCTYPE TS> declaration. Encode always writes one.
	DocTypeMissing bool
}

// Context groups the messages extracted from one UI class or module.
type Context struct {
	Name     string
	Messages []Message
}

// Location records where a source string was extracted from.
type Location struct {
	Filename string
	// Line is kept verbatim; lupdate may emit relative values such as "+3".
	Line string
}

// LineNumber returns the numeric line, if it parses.
func (l Location) LineNumber() (int, bool) {
	if l.Line == "" {
		return 0, false
	}
	n, err := strconv.Atoi(l.Line)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Relative reports whether the line is relative to the previous location.
func (l Location) Relative() bool {
	return strings.HasPrefix(l.Line, "+") || strings.HasPrefix(l.Line, "-")
}

// Attr is a message attribute the model has no field for, such as
// utf8="true" written by older lupdate versions.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Message is one translatable unit.
type Message struct {
	ID                string
	Attrs             []Attr
	Source            string
	Comment           string
	ExtraComment      string
	TranslatorComment string
	Locations         []Location
	Translation       string
	Type              TranslationType
	Numerus           bool
	NumerusForms      []string
}

// Finished reports whether the translation may be shown to users.
func (m Message) Finished() bool {
	return m.Type == TypeFinished
}

// Obsolete reports whether the message was dropped from the sources.
func (m Message) Obsolete() bool {
	return m.Type == TypeObsolete || m.Type == TypeVanished
}

// Key identifies a message for lookup.
type Key struct {
	Context string
	Source  string
	Comment string
}

func (k Key) String() string {
	if k.Comment == "" {
		return k.Context + "|" + k.Source
	}
	return k.Context + "|" + k.Source + "|" + k.Comment
}

// Tuple is the flattened form of a message used for round-trip comparison
// and exporters.
type Tuple struct {
	Key
	Translation string
	Finished    bool
}

// Tuples flattens the catalog in document order.
func (c *Catalog) Tuples() []Tuple {
	var out []Tuple
	for _, ctx := range c.Contexts {
		for _, m := range ctx.Messages {
			out = append(out, Tuple{
				Key:         Key{Context: ctx.Name, Source: m.Source, Comment: m.Comment},
				Translation: m.Translation,
				Finished:    m.Finished(),
			})
		}
	}
	return out
}

// Context returns the named context.
func (c *Catalog) Context(name string) (*Context, bool) {
	for i := range c.Contexts {
		if c.Contexts[i].Name == name {
			return &c.Contexts[i], true
		}
	}
	return nil, false
}

// Stats summarises translation progress.
type Stats struct {
	Contexts   int `json:"contexts"`
	Messages   int `json:"messages"`
	Finished   int `json:"finished"`
	Unfinished int `json:"unfinished"`
	Obsolete   int `json:"obsolete"`
}

// Completion returns the finished share of non-obsolete messages, 0..1.
func (s Stats) Completion() float64 {
	active := s.Messages - s.Obsolete
	if active <= 0 {
		return 0
	}
	return float64(s.Finished) / float64(active)
}

// Stats counts contexts and messages by status.
func (c *Catalog) Stats() Stats {
	s := Stats{Contexts: len(c.Contexts)}
	for _, ctx := range c.Contexts {
		for _, m := range ctx.Messages {
			s.Messages++
			switch {
			case m.Finished():
				s.Finished++
			case m.Obsolete():
				s.Obsolete++
			default:
				s.Unfinished++
			}
		}
	}
	return s
}

// Entry is a message paired with the name of its context.
type Entry struct {
	Context string
	Message
}

// Key returns the lookup key of the entry.
func (e Entry) Key() Key {
	return Key{Context: e.Context, Source: e.Source, Comment: e.Comment}
}

// Entries flattens the catalog into context-qualified messages.
func (c *Catalog) Entries() []Entry {
	var out []Entry
	for _, ctx := range c.Contexts {
		for _, m := range ctx.Messages {
			out = append(out, Entry{Context: ctx.Name, Message: m})
		}
	}
	return out
}
