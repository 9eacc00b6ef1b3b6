package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"

	forceUpdate bool
)

// SetVersion records build metadata injected by the linker.
func SetVersion(v, built string) {
	version = v
	buildTime = built
	rootCmd.Version = v
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// Works without a config file.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("qbtlang %s (built %s, %s/%s)\n", version, buildTime, runtime.GOOS, runtime.GOARCH)
	},
}

var selfUpdateCmd = &cobra.Command{
	Use:   "self-update",
	Short: "Update qbtlang to the latest release",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		current, err := semver.ParseTolerant(version)
		if err != nil && !forceUpdate {
			return fmt.Errorf("running a development build (%s); use --force to replace it", version)
		}

		latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(cfg.Update.Repository))
		if err != nil {
			return fmt.Errorf("error occurred while detecting version: %w", err)
		}
		if !found {
			return fmt.Errorf("latest version for %s/%s could not be found in %s", runtime.GOOS, runtime.GOARCH, cfg.Update.Repository)
		}

		if !forceUpdate && latest.LessOrEqual(current.String()) {
			fmt.Printf("✓ Current version (%s) is the latest\n", version)
			return nil
		}

		exe, err := selfupdate.ExecutablePath()
		if err != nil {
			return fmt.Errorf("could not locate executable path: %w", err)
		}

		logger.Info().Str("from", version).Str("to", latest.Version()).Msg("Updating")
		if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
			return fmt.Errorf("error occurred while updating binary: %w", err)
		}

		fmt.Fprintf(os.Stdout, "✓ Successfully updated to version %s\n", latest.Version())
		return nil
	},
}

func init() {
	selfUpdateCmd.Flags().BoolVar(&forceUpdate, "force", false, "update even when already current or on a development build")

	rootCmd.AddCommand(versionCmd, selfUpdateCmd)
}
