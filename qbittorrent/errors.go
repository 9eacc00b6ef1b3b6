package qbittorrent

import "errors"

// Common errors returned by the qBittorrent client.
var (
	// ErrConnectionFailed is returned when login keeps failing.
	ErrConnectionFailed = errors.New("connection to qBittorrent failed")

	// ErrLocaleUnset is returned when the instance reports no locale.
	ErrLocaleUnset = errors.New("qBittorrent locale is not set")
)
