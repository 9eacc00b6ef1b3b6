package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/qbtlang/qbittorrent"
	"github.com/s0up4200/qbtlang/translator"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Find the catalog matching a running qBittorrent's interface language",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.QBittorrent.Enabled {
			return fmt.Errorf("qbittorrent integration is disabled; set qbittorrent.enabled in config")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		fmt.Printf("Connecting to qBittorrent at %s...\n", cfg.QBittorrent.URL)
		client := qbittorrent.NewClient(cfg.QBittorrent.URL, cfg.QBittorrent.Username, cfg.QBittorrent.Password, logger)
		if err := client.Connect(ctx); err != nil {
			return err
		}

		info, err := client.Detect(ctx)
		if err != nil {
			return err
		}

		fmt.Println("✓ Connection successful!")
		fmt.Printf("- Version: %s\n", info.Version)
		fmt.Printf("- Locale: %s\n", info.Locale)

		tr, err := translator.Load(cfg.Catalogs.Dir, cfg.Catalogs.Prefix, info.Locale, logger)
		if err != nil {
			return err
		}
		if !tr.Loaded() {
			fmt.Println("- Catalog: none, the interface uses English source text")
			return nil
		}

		st := tr.Catalog().Stats()
		fmt.Printf("- Catalog: %s (%.1f%% complete)\n", tr.Path(), st.Completion()*100)
		if tr.RightToLeft() {
			fmt.Println("- Layout: right to left")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
