// Package qbittorrent reads the interface language of a running
// qBittorrent instance through its Web API.
//
// It wraps the autobrr/go-qbittorrent library so the rest of the program
// can pick the catalog that matches what a user actually sees.
//
// # Usage
//
//	client := qbittorrent.NewClient(url, username, password, logger)
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//
//	info, err := client.Detect(ctx)
//	// info.Locale is e.g. "uk" or "pt_BR"
package qbittorrent
