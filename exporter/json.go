package exporter

import (
	"encoding/json"
	"io"

	"github.com/s0up4200/qbtlang/ts"
)

// Document is the top-level JSON export.
type Document struct {
	Language string   `json:"language"`
	Version  string   `json:"version"`
	Stats    ts.Stats `json:"stats"`
	Messages []Item   `json:"messages"`
}

// JSON writes an indented Document.
type JSON struct{}

func NewJSON() *JSON { return &JSON{} }

func (e *JSON) Format() string { return "json" }

func (e *JSON) Export(w io.Writer, cat *ts.Catalog) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Document{
		Language: cat.Language,
		Version:  cat.Version,
		Stats:    cat.Stats(),
		Messages: Items(cat),
	})
}

// TS re-encodes the catalog in lupdate layout.
type TS struct{}

func NewTS() *TS { return &TS{} }

func (e *TS) Format() string { return "ts" }

func (e *TS) Export(w io.Writer, cat *ts.Catalog) error {
	return ts.Encode(w, cat)
}
