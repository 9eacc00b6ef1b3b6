// Package exporter writes catalogs in formats other tools can consume.
package exporter

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/s0up4200/qbtlang/ts"
)

// ErrUnknownFormat is returned by Registry.Export for unregistered formats.
var ErrUnknownFormat = errors.New("unknown export format")

// Status values written by the flat exporters.
const (
	StatusFinished   = "finished"
	StatusUnfinished = "unfinished"
	StatusObsolete   = "obsolete"
)

// Item is one flattened row of an export.
type Item struct {
	Key         string `json:"key"`
	Context     string `json:"context"`
	Source      string `json:"source"`
	Comment     string `json:"comment,omitempty"`
	Translation string `json:"translation"`
	Status      string `json:"status"`
}

// Exporter serialises a catalog.
type Exporter interface {
	Format() string
	Export(w io.Writer, cat *ts.Catalog) error
}

// Items flattens a catalog in document order. Translations that are not
// finished are exported empty so consumers never ship them.
func Items(cat *ts.Catalog) []Item {
	entries := cat.Entries()
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, ItemFromEntry(e))
	}
	return items
}

// ItemFromEntry flattens a single entry.
func ItemFromEntry(e ts.Entry) Item {
	item := Item{
		Key:     e.Key().String(),
		Context: e.Context,
		Source:  e.Source,
		Comment: e.Comment,
		Status:  status(e.Message),
	}
	if e.Finished() {
		item.Translation = e.Translation
	}
	return item
}

func status(m ts.Message) string {
	switch {
	case m.Finished():
		return StatusFinished
	case m.Obsolete():
		return StatusObsolete
	default:
		return StatusUnfinished
	}
}

// Registry maps format names to exporters.
type Registry struct {
	byFormat map[string]Exporter
}

// NewRegistry returns a registry holding the csv, json and ts exporters.
func NewRegistry() *Registry {
	r := &Registry{byFormat: map[string]Exporter{}}
	r.Register(NewCSV(','))
	r.Register(NewJSON())
	r.Register(NewTS())
	return r
}

// Register adds or replaces the exporter for its format.
func (r *Registry) Register(e Exporter) {
	r.byFormat[e.Format()] = e
}

// Get returns the exporter for format.
func (r *Registry) Get(format string) (Exporter, bool) {
	e, ok := r.byFormat[format]
	return e, ok
}

// Formats lists registered formats in sorted order.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.byFormat))
	for f := range r.byFormat {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Export writes cat to w using the named format.
func (r *Registry) Export(format string, w io.Writer, cat *ts.Catalog) error {
	if cat == nil {
		return ts.ErrNilCatalog
	}
	e, ok := r.Get(format)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	return e.Export(w, cat)
}
