package api

type config struct {
	allowRegister bool
}

type Option func(c *config)

func WithAllowRegister(v bool) Option {
	return func(c *config) {
		c.allowRegister = v
	}
}

func applyOpts(opts ...Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
