package store

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/qbtlang/ts"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "qbtlang.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fixture(t *testing.T) *ts.Catalog {
	t.Helper()
	cat, err := ts.ParseFile(filepath.Join("..", "ts", "testdata", "qbittorrent_uk.ts"))
	require.NoError(t, err)
	return cat
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestImportAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	info, err := s.ImportCatalog(ctx, fixture(t), "lang/qbittorrent_uk.ts")
	require.NoError(t, err)
	assert.NotEmpty(t, info.ID)
	assert.Equal(t, "uk", info.Language)
	assert.Equal(t, "2.0", info.Version)
	assert.Equal(t, 979, info.Messages)

	list, err := s.ListCatalogs(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, info.ID, list[0].ID)
	assert.Equal(t, 979, list[0].Messages)
	assert.Equal(t, info.ImportedAt, list[0].ImportedAt)

	none, err := s.ListCatalogs(ctx, "de")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestImportNilCatalog(t *testing.T) {
	s := openTestStore(t)
	_, err := s.ImportCatalog(context.Background(), nil, "")
	assert.ErrorIs(t, err, ts.ErrNilCatalog)
}

func TestLoadCatalogRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	cat := fixture(t)

	info, err := s.ImportCatalog(ctx, cat, "")
	require.NoError(t, err)

	got, err := s.LoadCatalog(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, cat.Language, got.Language)
	assert.Equal(t, cat.Version, got.Version)
	assert.Len(t, got.Contexts, len(cat.Contexts))
	assert.Equal(t, cat.Tuples(), got.Tuples())
	assert.Equal(t, cat.Contexts[0].Messages[0], got.Contexts[0].Messages[0])

	var want, have bytes.Buffer
	require.NoError(t, ts.Encode(&want, cat))
	require.NoError(t, ts.Encode(&have, got))
	assert.Equal(t, want.String(), have.String(), "utf8 attributes and ids survive the store")

	_, err = s.LoadCatalog(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTranslate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.ImportCatalog(ctx, fixture(t), "")
	require.NoError(t, err)

	tests := []struct {
		name string
		key  ts.Key
		want string
	}{
		{"finished", ts.Key{Context: "MainWindow", Source: "&Pause"}, "При&зупинити"},
		{"apostrophe", ts.Key{Context: "AboutDlg", Source: "Name:"}, "Ім'я:"},
		{"unfinished passes through", ts.Key{Context: "AddNewTorrentDialog", Source: "Unknown error"}, "Unknown error"},
		{"disambiguated", ts.Key{Context: "AddNewTorrentDialog", Source: "Other...", Comment: "Other save path..."}, "Інший..."},
		{"comment fallback", ts.Key{Context: "MainWindow", Source: "&Pause", Comment: "toolbar"}, "При&зупинити"},
		{"missing", ts.Key{Context: "Nope", Source: "Hello"}, "Hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Translate(ctx, "uk", tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := s.Translate(ctx, "de", ts.Key{Context: "MainWindow", Source: "&Pause"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "&Pause", got)
}

func TestTranslateUsesLatestImport(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	older := &ts.Catalog{Version: "2.0", Language: "de", Contexts: []ts.Context{{
		Name:     "MainWindow",
		Messages: []ts.Message{{Source: "&Pause", Translation: "Pause"}},
	}}}
	newer := &ts.Catalog{Version: "2.0", Language: "de", Contexts: []ts.Context{{
		Name:     "MainWindow",
		Messages: []ts.Message{{Source: "&Pause", Translation: "&Pausieren"}},
	}}}

	_, err := s.ImportCatalog(ctx, older, "")
	require.NoError(t, err)
	latest, err := s.ImportCatalog(ctx, newer, "")
	require.NoError(t, err)

	got, err := s.Translate(ctx, "de", ts.Key{Context: "MainWindow", Source: "&Pause"})
	require.NoError(t, err)
	assert.Equal(t, "&Pausieren", got)

	require.NoError(t, s.DeleteCatalog(ctx, latest.ID))
	got, err = s.Translate(ctx, "de", ts.Key{Context: "MainWindow", Source: "&Pause"})
	require.NoError(t, err)
	assert.Equal(t, "Pause", got)

	assert.ErrorIs(t, s.DeleteCatalog(ctx, latest.ID), ErrNotFound)
}

func TestRepeatedContextNamesStaySeparate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cat := &ts.Catalog{Version: "2.0", Language: "de", Contexts: []ts.Context{
		{Name: "A", Messages: []ts.Message{{Source: "one"}}},
		{Name: "A", Messages: []ts.Message{{Source: "two"}}},
	}}
	info, err := s.ImportCatalog(ctx, cat, "")
	require.NoError(t, err)

	got, err := s.LoadCatalog(ctx, info.ID)
	require.NoError(t, err)
	require.Len(t, got.Contexts, 2)
	assert.Equal(t, "two", got.Contexts[1].Messages[0].Source)
}

func TestNilStore(t *testing.T) {
	var s *Store
	_, err := s.ListCatalogs(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.NoError(t, s.Close())
}
