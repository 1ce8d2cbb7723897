package webdav

const (
	defaultDavName    = "davbox"
	defaultMaxXMLBody = 1 << 20
)

type config struct {
	davName    string
	maxXMLBody int64
}

type Option func(c *config)

func WithDavName(name string) Option {
	return func(c *config) {
		c.davName = name
	}
}

func WithMaxXMLBody(sz int64) Option {
	return func(c *config) {
		c.maxXMLBody = sz
	}
}

func applyOpts(opts ...Option) *config {
	c := &config{
		davName:    defaultDavName,
		maxXMLBody: defaultMaxXMLBody,
	}
	for _, opt := range opts {
		opt(c)
	}
	if len(c.davName) == 0 {
		c.davName = defaultDavName
	}
	return c
}
