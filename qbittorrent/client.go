package qbittorrent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/autobrr/go-qbittorrent"
	"github.com/rs/zerolog"
)

// appAPI is the part of the go-qbittorrent client used here.
type appAPI interface {
	LoginCtx(ctx context.Context) error
	GetAppPreferencesCtx(ctx context.Context) (qbittorrent.AppPreferences, error)
	GetAppVersionCtx(ctx context.Context) (string, error)
}

// Client wraps the qBittorrent API client
type Client struct {
	api    appAPI
	url    string
	opts   clientOptions
	logger zerolog.Logger
}

// NewClient creates a new qBittorrent client. Call Connect before use.
func NewClient(url, username, password string, logger zerolog.Logger, opts ...Option) *Client {
	api := qbittorrent.NewClient(qbittorrent.Config{
		Host:     url,
		Username: username,
		Password: password,
	})
	return newClient(api, url, logger, opts...)
}

func newClient(api appAPI, url string, logger zerolog.Logger, opts ...Option) *Client {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{
		api:    api,
		url:    url,
		opts:   o,
		logger: logger.With().Str("component", "qbittorrent").Logger(),
	}
}

func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.opts.timeout)
}

// Connect logs in, retrying up to the configured number of times.
func (c *Client) Connect(ctx context.Context) error {
	var lastErr error
	for attempt := 0; attempt <= c.opts.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Debug().
				Int("attempt", attempt+1).
				Err(lastErr).
				Msg("Retrying qBittorrent login")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.opts.retryDelay):
			}
		}

		callCtx, cancel := c.callContext(ctx)
		lastErr = c.api.LoginCtx(callCtx)
		cancel()
		if lastErr == nil {
			c.logger.Debug().Str("url", c.url).Msg("Successfully connected to qBittorrent")
			return nil
		}
	}
	return fmt.Errorf("%w: %w", ErrConnectionFailed, lastErr)
}

// Locale returns the interface locale from the application preferences.
func (c *Client) Locale(ctx context.Context) (string, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	prefs, err := c.api.GetAppPreferencesCtx(callCtx)
	if err != nil {
		return "", fmt.Errorf("failed to get preferences: %w", err)
	}

	locale := strings.TrimSpace(prefs.Locale)
	if locale == "" {
		return "", ErrLocaleUnset
	}
	return locale, nil
}

// Version returns the application version, e.g. "v4.6.2".
func (c *Client) Version(ctx context.Context) (string, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	v, err := c.api.GetAppVersionCtx(callCtx)
	if err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}
	return strings.TrimSpace(v), nil
}

// Detect collects the version and locale of the instance.
func (c *Client) Detect(ctx context.Context) (Instance, error) {
	version, err := c.Version(ctx)
	if err != nil {
		return Instance{}, err
	}
	locale, err := c.Locale(ctx)
	if err != nil {
		return Instance{}, err
	}

	c.logger.Debug().
		Str("version", version).
		Str("locale", locale).
		Msg("Detected qBittorrent instance")

	return Instance{URL: c.url, Version: version, Locale: locale}, nil
}
