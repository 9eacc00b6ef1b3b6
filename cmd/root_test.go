package cmd

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/qbtlang/config"
	"github.com/s0up4200/qbtlang/filter"
	"github.com/s0up4200/qbtlang/ts"
)

func TestSelectEntries(t *testing.T) {
	cfg = &config.Config{Filter: config.FilterConfig{
		DefaultExpression: "Finished",
		Presets: map[string]config.PresetConfig{
			"todo": {Expression: "Unfinished"},
		},
	}}
	t.Cleanup(func() { filterExpr, preset = "", "" })

	entries := []ts.Entry{
		{Context: "MainWindow", Message: ts.Message{Source: "&Pause", Translation: "При&зупинити"}},
		{Context: "MainWindow", Message: ts.Message{Source: "Greece", Type: ts.TypeUnfinished}},
		{Context: "AboutDlg", Message: ts.Message{Source: "Old", Translation: "Старе", Type: ts.TypeObsolete}},
	}
	ctx := context.Background()
	sources := func(es []ts.Entry) []string {
		var out []string
		for _, e := range es {
			out = append(out, e.Source)
		}
		return out
	}

	got, err := selectEntries(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, []string{"&Pause"}, sources(got), "default expression")

	preset = "todo"
	got, err = selectEntries(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, []string{"Greece"}, sources(got))

	filterExpr = "Obsolete"
	_, err = selectEntries(ctx, entries)
	assert.Error(t, err)

	preset = ""
	got, err = selectEntries(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, []string{"Old"}, sources(got))

	filterExpr, preset = "", "missing"
	_, err = selectEntries(ctx, entries)
	assert.ErrorContains(t, err, "not found")

	assert.Equal(t, map[string]string{"todo": "Unfinished"}, presetExpressions())
}

func TestSelectEntriesRejectsBadPreset(t *testing.T) {
	cfg = &config.Config{Filter: config.FilterConfig{
		Presets: map[string]config.PresetConfig{
			"todo":   {Expression: "Unfinished"},
			"broken": {Expression: "Unfinished and"},
		},
	}}
	t.Cleanup(func() { filterExpr, preset = "", "" })

	// The bad preset fails the command even when another one is used.
	preset = "todo"
	_, err := selectEntries(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestSetupLoggerLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	setupLogger(config.LoggingConfig{Level: "debug", Format: "json"})
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	setupLogger(config.LoggingConfig{Level: "error", Format: "console", Color: true})
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())
}

func TestCatalogPathsExplicit(t *testing.T) {
	paths, err := catalogPaths([]string{"b.ts", "a.ts"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.ts", "a.ts"}, paths)
}

func TestCatalogPathsFromDir(t *testing.T) {
	cfg = &config.Config{Catalogs: config.CatalogsConfig{Dir: "../ts/testdata", Prefix: "qbittorrent"}}

	paths, err := catalogPaths(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"../ts/testdata/qbittorrent_uk.ts"}, paths)

	cfg.Catalogs.Dir = t.TempDir()
	_, err = catalogPaths(nil)
	assert.Error(t, err)
}

func TestPrintPresetCounts(t *testing.T) {
	cfg = &config.Config{Filter: config.FilterConfig{
		Presets: map[string]config.PresetConfig{
			"todo":   {Expression: "Unfinished"},
			"broken": {Expression: `Context matches ("(" + Context)`},
		},
	}}
	cat := &ts.Catalog{Contexts: []ts.Context{{
		Name:     "MainWindow",
		Messages: []ts.Message{{Source: "Greece", Type: ts.TypeUnfinished}},
	}}}

	err := printPresetCounts(context.Background(), cat)
	var evalErr *filter.EvaluationError
	assert.ErrorAs(t, err, &evalErr, "runtime failures are reported, not counted as zero")

	delete(cfg.Filter.Presets, "broken")
	assert.NoError(t, printPresetCounts(context.Background(), cat))
}
