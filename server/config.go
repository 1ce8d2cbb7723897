package server

import (
	"github.com/xxxsen/davbox/dao"
	"github.com/xxxsen/davbox/filemgr"
	"github.com/xxxsen/davbox/session"
)

type config struct {
	tlsBind       string
	tlsCert       string
	tlsKey        string
	fmgr          filemgr.IFileManager
	userDao       dao.IUserDao
	st            *session.Store
	davName       string
	allowRegister bool
	enableMetrics bool
}

type Option func(c *config)

func WithTLS(bind string, cert string, key string) Option {
	return func(c *config) {
		c.tlsBind = bind
		c.tlsCert = cert
		c.tlsKey = key
	}
}

func WithFileManager(m filemgr.IFileManager) Option {
	return func(c *config) {
		c.fmgr = m
	}
}

func WithUserDao(d dao.IUserDao) Option {
	return func(c *config) {
		c.userDao = d
	}
}

func WithSessionStore(st *session.Store) Option {
	return func(c *config) {
		c.st = st
	}
}

func WithDavName(name string) Option {
	return func(c *config) {
		c.davName = name
	}
}

func WithAllowRegister(v bool) Option {
	return func(c *config) {
		c.allowRegister = v
	}
}

func WithEnableMetrics(v bool) Option {
	return func(c *config) {
		c.enableMetrics = v
	}
}

func applyOpts(opts ...Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
