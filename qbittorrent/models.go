package qbittorrent

// Instance describes the qBittorrent instance a client talks to.
type Instance struct {
	URL     string `json:"url"`
	Version string `json:"version"`
	Locale  string `json:"locale"`
}
