package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/qbtlang/store"
	"github.com/s0up4200/qbtlang/translator"
	"github.com/s0up4200/qbtlang/ts"
)

var catalogsLanguage string

var importCmd = &cobra.Command{
	Use:   "import [catalog.ts...]",
	Short: "Import catalogs into the sqlite store",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := catalogPaths(args)
		if err != nil {
			return err
		}

		db, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		for _, path := range paths {
			cat, err := ts.ParseFile(path)
			if err != nil {
				return err
			}
			info, err := db.ImportCatalog(ctx, cat, path)
			if err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}
			logger.Info().
				Str("id", info.ID).
				Str("language", info.Language).
				Int("messages", info.Messages).
				Msg("Imported catalog")
		}
		return nil
	},
}

var catalogsCmd = &cobra.Command{
	Use:   "catalogs",
	Short: "List catalogs in the sqlite store",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		list, err := db.ListCatalogs(context.Background(), catalogsLanguage)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No catalogs imported.")
			return nil
		}

		fmt.Println(strings.Repeat("━", 90))
		fmt.Printf("%-36s %-8s %-8s %9s  %s\n", "ID", "LANG", "VERSION", "MESSAGES", "IMPORTED")
		fmt.Println(strings.Repeat("━", 90))
		for _, c := range list {
			fmt.Printf("%-36s %-8s %-8s %9d  %s\n", c.ID, c.Language, c.Version, c.Messages, c.ImportedAt.Format("2006-01-02 15:04"))
		}
		fmt.Println(strings.Repeat("━", 90))
		return nil
	},
}

var catalogsDeleteCmd = &cobra.Command{
	Use:   "delete <id...>",
	Short: "Remove imported catalogs from the sqlite store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		for _, id := range args {
			if err := db.DeleteCatalog(context.Background(), id); err != nil {
				return err
			}
			logger.Info().Str("id", id).Msg("Deleted catalog")
		}
		return nil
	},
}

// lookupInStore opens the configured store for a single lookup.
func lookupInStore(ctx context.Context, locale string, key ts.Key) (string, error) {
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return key.Source, err
	}
	defer db.Close()
	return translateFromStore(ctx, db, locale, key)
}

// translateFromStore walks the locale chain against the newest import of
// each candidate language. No import at all means the source text.
func translateFromStore(ctx context.Context, db *store.Store, locale string, key ts.Key) (string, error) {
	for _, candidate := range translator.LocaleCandidates(locale) {
		out, err := db.Translate(ctx, candidate, key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		return out, err
	}
	logger.Debug().Str("locale", locale).Msg("No imported catalog for locale, using source text")
	return key.Source, nil
}

func loadStoredCatalog(ctx context.Context, id string) (*ts.Catalog, error) {
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.LoadCatalog(ctx, id)
}

func init() {
	catalogsCmd.AddCommand(catalogsDeleteCmd)
	catalogsCmd.Flags().StringVar(&catalogsLanguage, "language", "", "only list catalogs for this language")

	rootCmd.AddCommand(importCmd, catalogsCmd)
}
