package httpd

import (
	"crypto/tls"
	"time"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultIdleSleep        = 50 * time.Millisecond
	lingerTimeout           = 500 * time.Millisecond
	maxLingerBytes          = 1 << 20
)

type ObserveFunc func(handler string, method string, status int, cost time.Duration)

type config struct {
	handlers         []IHandler
	codecs           []Codec
	threshold        int64
	tlsConfig        *tls.Config
	handshakeTimeout time.Duration
	readTimeout      time.Duration
	observer         ObserveFunc
}

type Option func(c *config)

func WithHandlers(hs ...IHandler) Option {
	return func(c *config) {
		c.handlers = append(c.handlers, hs...)
	}
}

func WithCodecs(cs ...Codec) Option {
	return func(c *config) {
		c.codecs = cs
	}
}

func WithBufferThreshold(sz int64) Option {
	return func(c *config) {
		c.threshold = sz
	}
}

func WithTLSConfig(t *tls.Config) Option {
	return func(c *config) {
		c.tlsConfig = t
	}
}

// WithReadTimeout 为0时不限制读取请求的时长
func WithReadTimeout(t time.Duration) Option {
	return func(c *config) {
		c.readTimeout = t
	}
}

func WithObserver(fn ObserveFunc) Option {
	return func(c *config) {
		c.observer = fn
	}
}

func applyOpts(opts ...Option) *config {
	c := &config{
		codecs:           DefaultCodecs(),
		threshold:        DefaultBufferThreshold,
		handshakeTimeout: defaultHandshakeTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.threshold <= 0 {
		c.threshold = DefaultBufferThreshold
	}
	return c
}
