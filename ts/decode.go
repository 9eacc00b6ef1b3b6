package ts

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

type xmlTS struct {
	XMLName        xml.Name
	Version        string       `xml:"version,attr"`
	Language       string       `xml:"language,attr"`
	SourceLanguage string       `xml:"sourcelanguage,attr"`
	Contexts       []xmlContext `xml:"context"`
}

type xmlContext struct {
	Name     string       `xml:"name"`
	Messages []xmlMessage `xml:"message"`
}

type xmlMessage struct {
	ID                string         `xml:"id,attr"`
	Numerus           string         `xml:"numerus,attr"`
	Attrs             []xml.Attr     `xml:",any,attr"`
	Locations         []xmlLocation  `xml:"location"`
	Source            string         `xml:"source"`
	Comment           string         `xml:"comment"`
	ExtraComment      string         `xml:"extracomment"`
	TranslatorComment string         `xml:"translatorcomment"`
	Translation       xmlTranslation `xml:"translation"`
}

type xmlLocation struct {
	Filename string `xml:"filename,attr"`
	Line     string `xml:"line,attr"`
}

type xmlTranslation struct {
	Type  string   `xml:"type,attr"`
	Text  string   `xml:",chardata"`
	Forms []string `xml:"numerusform"`
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseFile reads and decodes the catalog at path.
func ParseFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	cat, err := Decode(f)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Path = path
		}
		return nil, err
	}
	return cat, nil
}

// Decode parses a translation document from r.
func Decode(r io.Reader) (*Catalog, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	d := xml.NewDecoder(br)
	d.CharsetReader = charsetReader

	var (
		doc     xmlTS
		doctype bool
		root    *xml.StartElement
	)
	for root == nil {
		tok, err := d.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrEmptyDocument
			}
			return nil, decodeError(d, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			root = &t
		case xml.Directive:
			if isTSDocType(t) {
				doctype = true
			}
		}
	}
	if root.Name.Local != "TS" {
		return nil, fmt.Errorf("%w: found <%s>", ErrNotTS, root.Name.Local)
	}
	if err := d.DecodeElement(&doc, root); err != nil {
		return nil, decodeError(d, err)
	}

	// Only whitespace, comments and processing instructions may follow
	// the root element.
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, decodeError(d, err)
		}
		switch t := tok.(type) {
		case xml.Comment, xml.ProcInst:
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return nil, decodeError(d, ErrTrailingContent)
			}
		default:
			return nil, decodeError(d, ErrTrailingContent)
		}
	}

	cat := doc.catalog()
	cat.DocTypeMissing = !doctype
	return cat, nil
}

func decodeError(d *xml.Decoder, err error) *DecodeError {
	de := &DecodeError{Offset: d.InputOffset(), Err: err}
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		de.Line = se.Line
	}
	return de
}

func isTSDocType(dir xml.Directive) bool {
	fields := strings.Fields(string(dir))
	return len(fields) >= 2 && fields[0] == "DOCTYPE" && fields[1] == "TS"
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

func (doc *xmlTS) catalog() *Catalog {
	cat := &Catalog{
		Version:        doc.Version,
		Language:       doc.Language,
		SourceLanguage: doc.SourceLanguage,
		Contexts:       make([]Context, 0, len(doc.Contexts)),
	}

	for _, xc := range doc.Contexts {
		ctx := Context{
			Name:     xc.Name,
			Messages: make([]Message, 0, len(xc.Messages)),
		}
		for _, xm := range xc.Messages {
			ctx.Messages = append(ctx.Messages, xm.message())
		}
		cat.Contexts = append(cat.Contexts, ctx)
	}

	return cat
}

func (xm xmlMessage) message() Message {
	m := Message{
		ID:                xm.ID,
		Source:            xm.Source,
		Comment:           xm.Comment,
		ExtraComment:      xm.ExtraComment,
		TranslatorComment: xm.TranslatorComment,
		Type:              TranslationType(xm.Translation.Type),
		Numerus:           xm.Numerus == "yes",
	}

	for _, a := range xm.Attrs {
		m.Attrs = append(m.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
	}

	if len(xm.Locations) > 0 {
		m.Locations = make([]Location, 0, len(xm.Locations))
		for _, l := range xm.Locations {
			m.Locations = append(m.Locations, Location{Filename: l.Filename, Line: l.Line})
		}
	}

	if m.Numerus || len(xm.Translation.Forms) > 0 {
		m.Numerus = true
		m.NumerusForms = xm.Translation.Forms
		if len(m.NumerusForms) > 0 {
			m.Translation = m.NumerusForms[0]
		}
	} else {
		m.Translation = xm.Translation.Text
	}

	return m
}
