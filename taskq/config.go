package taskq

import "time"

const defaultQueueSize = 128

type ObserveFunc func(name string, wait time.Duration, cost time.Duration)

type config struct {
	size     int
	observer ObserveFunc
}

type Option func(c *config)

func WithQueueSize(sz int) Option {
	return func(c *config) {
		c.size = sz
	}
}

func WithObserver(fn ObserveFunc) Option {
	return func(c *config) {
		c.observer = fn
	}
}

func applyOpts(opts ...Option) *config {
	c := &config{size: defaultQueueSize}
	for _, opt := range opts {
		opt(c)
	}
	if c.size < 0 {
		c.size = 0
	}
	return c
}
