package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/qbtlang/config"
	"github.com/s0up4200/qbtlang/filter"
	"github.com/s0up4200/qbtlang/ts"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger

	// Command flags
	langDir    string
	locale     string
	prefix     string
	filterExpr string
	preset     string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "qbtlang",
	Short: "Inspect, validate and serve qBittorrent translation catalogs",
	Long: `qbtlang reads the Qt .ts catalogs qBittorrent ships its interface
translations in. It resolves a locale to a catalog the way the application
does, answers lookups, checks catalogs for problems, exports them and can
serve them over HTTP.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&langDir, "lang-dir", "", "directory holding the .ts catalogs")
	rootCmd.PersistentFlags().StringVarP(&locale, "locale", "l", "", "locale to translate into, e.g. uk_UA")
	rootCmd.PersistentFlags().StringVar(&prefix, "prefix", "", "catalog file name prefix")
}

// initializeApp loads the configuration and logger
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("lang-dir") {
		cfg.Catalogs.Dir = langDir
	}
	if cmd.Flags().Changed("locale") {
		cfg.Catalogs.Locale = locale
	}
	if cmd.Flags().Changed("prefix") {
		cfg.Catalogs.Prefix = prefix
	}

	logger = setupLogger(cfg.Logging)
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Color only when a person is watching
	color := cfg.Color && (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !color,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// newFilterManager compiles every configured preset; one bad expression
// fails the command
func newFilterManager() (*filter.Manager, error) {
	manager := filter.NewManager()
	if err := manager.RegisterFilters(presetExpressions()); err != nil {
		_ = manager.Close(context.Background())
		return nil, fmt.Errorf("invalid filter preset in config: %w", err)
	}
	return manager, nil
}

// selectEntries applies --preset or --filter, falling back to the
// configured default expression
func selectEntries(ctx context.Context, entries []ts.Entry) ([]ts.Entry, error) {
	if filterExpr != "" && preset != "" {
		return nil, fmt.Errorf("cannot use both --filter and --preset")
	}

	manager, err := newFilterManager()
	if err != nil {
		return nil, err
	}
	defer manager.Close(context.Background())

	if preset != "" {
		if _, ok := manager.GetFilter(preset); !ok {
			return nil, fmt.Errorf("preset '%s' not found in config", preset)
		}
		return manager.EvaluateFilter(ctx, preset, entries)
	}

	expression := filterExpr
	if expression == "" {
		expression = cfg.Filter.DefaultExpression
	}
	if strings.TrimSpace(expression) == "" {
		return entries, nil
	}

	compiled, err := manager.Compile(expression)
	if err != nil {
		return nil, err
	}
	return manager.Evaluate(ctx, compiled, entries)
}

func presetExpressions() map[string]string {
	out := make(map[string]string, len(cfg.Filter.Presets))
	for name, p := range cfg.Filter.Presets {
		out[name] = p.Expression
	}
	return out
}
