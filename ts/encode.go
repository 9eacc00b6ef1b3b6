package ts

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const indentUnit = "    "

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
	"\r", "&#xd;",
)

// Encode writes c in the layout produced by lupdate.
func Encode(w io.Writer, c *Catalog) error {
	if c == nil {
		return ErrNilCatalog
	}

	e := &encoder{w: bufio.NewWriter(w)}
	e.line(0, `<?xml version="1.0" encoding="utf-8"?>`)
	e.line(0, "<!DOCTYPE TS>")

	root := "<TS"
	if c.Version != "" {
		root += ` version="` + escape(c.Version) + `"`
	}
	if c.Language != "" {
		root += ` language="` + escape(c.Language) + `"`
	}
	if c.SourceLanguage != "" {
		root += ` sourcelanguage="` + escape(c.SourceLanguage) + `"`
	}
	e.line(0, root+">")

	for _, ctx := range c.Contexts {
		e.line(0, "<context>")
		e.line(1, "<name>"+escape(ctx.Name)+"</name>")
		for _, m := range ctx.Messages {
			e.message(m)
		}
		e.line(0, "</context>")
	}
	e.line(0, "</TS>")

	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}

// WriteFile encodes c to path, replacing it atomically.
func WriteFile(path string, c *Catalog) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ts-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := Encode(tmp, c); err != nil {
		tmp.Close()
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

type encoder struct {
	w   *bufio.Writer
	err error
}

func (e *encoder) line(depth int, s string) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.WriteString(strings.Repeat(indentUnit, depth) + s + "\n")
}

func (e *encoder) message(m Message) {
	open := "<message"
	if m.ID != "" {
		open += ` id="` + escape(m.ID) + `"`
	}
	if m.Numerus {
		open += ` numerus="yes"`
	}
	for _, a := range m.Attrs {
		open += " " + a.Name + `="` + escape(a.Value) + `"`
	}
	e.line(1, open+">")

	for _, l := range m.Locations {
		loc := "<location"
		if l.Filename != "" {
			loc += ` filename="` + escape(l.Filename) + `"`
		}
		if l.Line != "" {
			loc += ` line="` + escape(l.Line) + `"`
		}
		e.line(2, loc+"/>")
	}

	e.line(2, "<source>"+escape(m.Source)+"</source>")
	if m.Comment != "" {
		e.line(2, "<comment>"+escape(m.Comment)+"</comment>")
	}
	if m.ExtraComment != "" {
		e.line(2, "<extracomment>"+escape(m.ExtraComment)+"</extracomment>")
	}
	if m.TranslatorComment != "" {
		e.line(2, "<translatorcomment>"+escape(m.TranslatorComment)+"</translatorcomment>")
	}

	open = "<translation"
	if m.Type != TypeFinished {
		open += ` type="` + escape(string(m.Type)) + `"`
	}
	open += ">"

	if m.Numerus {
		e.line(2, open)
		for _, form := range m.NumerusForms {
			e.line(3, "<numerusform>"+escape(form)+"</numerusform>")
		}
		e.line(2, "</translation>")
	} else {
		e.line(2, open+escape(m.Translation)+"</translation>")
	}

	e.line(1, "</message>")
}

func escape(s string) string {
	return textEscaper.Replace(s)
}
