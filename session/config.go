package session

import "time"

const defaultSessionTTL = 48 * time.Hour

type config struct {
	ttl   time.Duration
	nowFn func() time.Time
}

type Option func(c *config)

func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.ttl = ttl
	}
}

func WithClock(fn func() time.Time) Option {
	return func(c *config) {
		c.nowFn = fn
	}
}

func applyOpts(opts ...Option) *config {
	c := &config{ttl: defaultSessionTTL, nowFn: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.ttl <= 0 {
		c.ttl = defaultSessionTTL
	}
	return c
}
