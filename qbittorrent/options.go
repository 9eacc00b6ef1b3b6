package qbittorrent

import "time"

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
}

func defaultOptions() clientOptions {
	return clientOptions{
		timeout:    10 * time.Second,
		maxRetries: 2,
		retryDelay: time.Second,
	}
}

// WithTimeout bounds each API call.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithMaxRetries sets how many times a failed login is retried.
func WithMaxRetries(retries int) Option {
	return func(o *clientOptions) {
		if retries >= 0 {
			o.maxRetries = retries
		}
	}
}

// WithRetryDelay sets the delay between login attempts.
func WithRetryDelay(delay time.Duration) Option {
	return func(o *clientOptions) {
		o.retryDelay = delay
	}
}
