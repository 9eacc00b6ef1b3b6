package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/qbtlang/exporter"
	"github.com/s0up4200/qbtlang/filter"
	"github.com/s0up4200/qbtlang/translator"
	"github.com/s0up4200/qbtlang/ts"
)

var (
	lookupContext string
	lookupComment string
	lookupCount   int
	lookupFile    string
	lookupStore   bool

	roundTrip bool

	exportFormat    string
	outputPath      string
	exportCatalogID string

	writeInPlace bool
	showAll      bool
	statsPresets bool
)

// catalogPaths returns explicit args, or every catalog in the configured dir.
func catalogPaths(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	p := cfg.Catalogs.Prefix
	if p == "" {
		p = translator.DefaultPrefix
	}
	paths, err := filepath.Glob(filepath.Join(cfg.Catalogs.Dir, p+"_*.ts"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", translator.ErrNoCatalogs, cfg.Catalogs.Dir)
	}
	sort.Strings(paths)
	return paths, nil
}

// catalogForCommand parses the single file argument or the catalog for the
// configured locale.
func catalogForCommand(args []string) (*ts.Catalog, string, error) {
	if len(args) == 1 {
		cat, err := ts.ParseFile(args[0])
		return cat, args[0], err
	}
	tr, err := translator.Load(cfg.Catalogs.Dir, cfg.Catalogs.Prefix, cfg.Catalogs.Locale, logger)
	if err != nil {
		return nil, "", err
	}
	if !tr.Loaded() {
		return nil, "", fmt.Errorf("%w: %s", translator.ErrUnknownLanguage, cfg.Catalogs.Locale)
	}
	return tr.Catalog(), tr.Path(), nil
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <source text>",
	Short: "Translate a source string for the configured locale",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if lookupStore {
			if cmd.Flags().Changed("count") {
				return fmt.Errorf("--count is not supported with --store")
			}
			out, err := lookupInStore(context.Background(), cfg.Catalogs.Locale,
				ts.Key{Context: lookupContext, Source: args[0], Comment: lookupComment})
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}

		var (
			tr  *translator.Translator
			err error
		)
		if lookupFile != "" {
			tr, err = translator.LoadFile(lookupFile)
		} else {
			tr, err = translator.Load(cfg.Catalogs.Dir, cfg.Catalogs.Prefix, cfg.Catalogs.Locale, logger)
		}
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("count") {
			fmt.Println(tr.TranslatePlural(lookupContext, args[0], lookupComment, lookupCount))
			return nil
		}
		fmt.Println(tr.Translate(lookupContext, args[0], lookupComment))
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [catalog.ts...]",
	Short: "Check catalogs for data-quality problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := catalogPaths(args)
		if err != nil {
			return err
		}

		failed := 0
		for _, path := range paths {
			cat, err := ts.ParseFile(path)
			if err != nil {
				fmt.Printf("✗ %s: %v\n", path, err)
				failed++
				continue
			}

			report := ts.Validate(cat)
			if roundTrip {
				if err := ts.VerifyRoundTrip(cat); err != nil {
					report.Issues = append(report.Issues, ts.Issue{
						Rule:     "round-trip",
						Severity: ts.SeverityError,
						Message:  err.Error(),
					})
				}
			}

			if report.OK() {
				fmt.Printf("✓ %s (%d warnings)\n", path, len(report.Warnings()))
			} else {
				fmt.Printf("✗ %s (%d errors, %d warnings)\n", path, len(report.Errors()), len(report.Warnings()))
				failed++
			}
			for _, issue := range report.Issues {
				fmt.Printf("  %s\n", issue)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d catalogs failed validation", failed, len(paths))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats [catalog.ts...]",
	Short: "Show translation progress per catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := catalogPaths(args)
		if err != nil {
			return err
		}

		fmt.Println(strings.Repeat("━", 72))
		fmt.Printf("%-32s %-8s %9s %9s %10s\n", "CATALOG", "LANG", "MESSAGES", "FINISHED", "COMPLETE")
		fmt.Println(strings.Repeat("━", 72))
		for _, path := range paths {
			cat, err := ts.ParseFile(path)
			if err != nil {
				return err
			}
			st := cat.Stats()
			fmt.Printf("%-32s %-8s %9d %9d %9.1f%%\n",
				filepath.Base(path), cat.Language, st.Messages, st.Finished, st.Completion()*100)

			if statsPresets {
				if err := printPresetCounts(context.Background(), cat); err != nil {
					return err
				}
			}
		}
		fmt.Println(strings.Repeat("━", 72))
		return nil
	},
}

// printPresetCounts shows how many messages each configured preset selects.
func printPresetCounts(ctx context.Context, cat *ts.Catalog) error {
	results, err := filter.EvaluateFilters(ctx, presetExpressions(), cat.Entries())
	if err != nil {
		return err
	}
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-30s %9d\n", name, len(results[name]))
	}
	return nil
}

var listCmd = &cobra.Command{
	Use:   "list [catalog.ts]",
	Short: "List messages matching a filter expression",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, path, err := catalogForCommand(args)
		if err != nil {
			return err
		}

		logger.Debug().Str("catalog", path).Str("filter", filterExpr).Str("preset", preset).Msg("Listing messages")

		entries, err := selectEntries(context.Background(), cat.Entries())
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No messages found matching the filter criteria.")
			return nil
		}

		fmt.Printf("Found %d messages:\n", len(entries))
		fmt.Println(strings.Repeat("-", 80))
		for _, e := range entries {
			item := exporter.ItemFromEntry(e)
			fmt.Printf("• [%s] %s", e.Context, e.Source)
			if e.Comment != "" {
				fmt.Printf(" (%s)", e.Comment)
			}
			fmt.Println()
			if item.Translation != "" {
				fmt.Printf("  → %s\n", item.Translation)
			}
			if showAll {
				fmt.Printf("  Status: %s\n", item.Status)
				for _, loc := range e.Locations {
					fmt.Printf("  Location: %s:%s\n", loc.Filename, loc.Line)
				}
			}
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [catalog.ts]",
	Short: "Export a catalog as csv, json or ts",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			cat *ts.Catalog
			err error
		)
		if exportCatalogID != "" {
			if len(args) > 0 {
				return fmt.Errorf("cannot use both a catalog file and --catalog-id")
			}
			cat, err = loadStoredCatalog(context.Background(), exportCatalogID)
		} else {
			cat, _, err = catalogForCommand(args)
		}
		if err != nil {
			return err
		}

		var w io.Writer = os.Stdout
		if outputPath != "" && outputPath != "-" {
			f, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			w = f
		}

		if err := exporter.NewRegistry().Export(exportFormat, w, cat); err != nil {
			return err
		}
		if outputPath != "" && outputPath != "-" {
			logger.Info().Str("format", exportFormat).Str("path", outputPath).Msg("Exported catalog")
		}
		return nil
	},
}

var fmtCmd = &cobra.Command{
	Use:   "fmt <catalog.ts...>",
	Short: "Re-serialize catalogs in lupdate layout",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			cat, err := ts.ParseFile(path)
			if err != nil {
				return err
			}
			if err := ts.VerifyRoundTrip(cat); err != nil {
				var rt *ts.RoundTripError
				if errors.As(err, &rt) {
					return fmt.Errorf("%s would change content: %w", path, err)
				}
				return err
			}

			if !writeInPlace {
				if err := ts.Encode(os.Stdout, cat); err != nil {
					return err
				}
				continue
			}
			if err := ts.WriteFile(path, cat); err != nil {
				return err
			}
			logger.Info().Str("path", path).Msg("Formatted catalog")
		}
		return nil
	},
}

func init() {
	lookupCmd.Flags().StringVarP(&lookupContext, "context", "c", "", "translation context, e.g. MainWindow")
	lookupCmd.Flags().StringVar(&lookupComment, "comment", "", "disambiguation comment")
	lookupCmd.Flags().IntVarP(&lookupCount, "count", "n", 1, "count for numerus messages")
	lookupCmd.Flags().StringVar(&lookupFile, "file", "", "look up in this catalog file instead of resolving the locale")
	lookupCmd.Flags().BoolVar(&lookupStore, "store", false, "look up in the newest imported catalog for the locale")
	lookupCmd.MarkFlagsMutuallyExclusive("file", "store")

	statsCmd.Flags().BoolVar(&statsPresets, "presets", false, "also count the messages each filter preset selects")

	validateCmd.Flags().BoolVar(&roundTrip, "round-trip", false, "also verify encode/decode round-trip")

	listCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression (e.g. 'Unfinished and Context == \"MainWindow\"')")
	listCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a filter preset from config")
	listCmd.Flags().BoolVarP(&showAll, "verbose", "v", false, "show status and locations")

	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "export format: csv, json or ts")
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportCatalogID, "catalog-id", "", "export an imported catalog from the sqlite store")

	fmtCmd.Flags().BoolVarP(&writeInPlace, "write", "w", false, "write result to the source file instead of stdout")

	rootCmd.AddCommand(lookupCmd, validateCmd, statsCmd, listCmd, exportCmd, fmtCmd)
}
