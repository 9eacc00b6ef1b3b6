// Package filter selects catalog messages with expr-lang expressions such as
//
//	Unfinished and Context == "MainWindow"
//	Finished and not placeholdersMatch()
package filter

import (
	"context"

	"github.com/s0up4200/qbtlang/ts"
)

// EvaluateFilters compiles and evaluates a set of named expressions
func EvaluateFilters(ctx context.Context, filters map[string]string, entries []ts.Entry) (map[string][]ts.Entry, error) {
	manager := NewManager()
	defer manager.Close(context.Background())

	if err := manager.RegisterFilters(filters); err != nil {
		return nil, err
	}
	return manager.EvaluateAll(ctx, entries)
}
