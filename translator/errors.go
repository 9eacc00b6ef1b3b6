package translator

import "errors"

var (
	// ErrNoCatalogs is returned when a directory holds no .ts files.
	ErrNoCatalogs = errors.New("no translation catalogs found")

	// ErrUnknownLanguage is returned when a bundle has no catalog for a language.
	ErrUnknownLanguage = errors.New("unknown language")
)
