package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/qbtlang/config"
	"github.com/s0up4200/qbtlang/store"
	"github.com/s0up4200/qbtlang/ts"
)

const fixturePath = "../ts/testdata/qbittorrent_uk.ts"

func importFixture(t *testing.T) (*store.Store, store.CatalogInfo) {
	t.Helper()
	logger = zerolog.Nop()
	cfg = &config.Config{Store: config.StoreConfig{Path: filepath.Join(t.TempDir(), "qbtlang.db")}}

	db, err := store.Open(cfg.Store.Path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cat, err := ts.ParseFile(fixturePath)
	require.NoError(t, err)
	info, err := db.ImportCatalog(context.Background(), cat, fixturePath)
	require.NoError(t, err)
	return db, info
}

func TestTranslateFromStore(t *testing.T) {
	db, _ := importFixture(t)
	ctx := context.Background()
	pause := ts.Key{Context: "MainWindow", Source: "&Pause"}

	tests := []struct {
		locale string
		want   string
	}{
		{"uk", "При&зупинити"},
		{"uk_UA.UTF-8", "При&зупинити"},
		{"fr_FR", "&Pause"},
		{"", "&Pause"},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			got, err := translateFromStore(ctx, db, tt.locale, pause)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := lookupInStore(ctx, "uk", pause)
	require.NoError(t, err)
	assert.Equal(t, "При&зупинити", got)
}

func TestStoredCatalogExportAndDelete(t *testing.T) {
	db, info := importFixture(t)
	ctx := context.Background()

	cat, err := loadStoredCatalog(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, 979, cat.Stats().Messages)

	require.NoError(t, catalogsDeleteCmd.RunE(catalogsDeleteCmd, []string{info.ID}))

	list, err := db.ListCatalogs(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = loadStoredCatalog(ctx, info.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = catalogsDeleteCmd.RunE(catalogsDeleteCmd, []string{info.ID})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
