package exporter

import (
	"encoding/csv"
	"io"

	"github.com/s0up4200/qbtlang/ts"
)

// CSV writes one row per message with a header line.
type CSV struct {
	comma rune
}

// NewCSV returns a CSV exporter using the given separator.
func NewCSV(comma rune) *CSV {
	if comma == 0 {
		comma = ','
	}
	return &CSV{comma: comma}
}

func (e *CSV) Format() string { return "csv" }

func (e *CSV) Export(w io.Writer, cat *ts.Catalog) error {
	cw := csv.NewWriter(w)
	cw.Comma = e.comma

	if err := cw.Write([]string{"key", "context", "source", "comment", "translation", "status"}); err != nil {
		return err
	}
	for _, it := range Items(cat) {
		if err := cw.Write([]string{it.Key, it.Context, it.Source, it.Comment, it.Translation, it.Status}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
