package auth

import (
	"context"
	"fmt"

	"github.com/xxxsen/davbox/httpd"
	"github.com/xxxsen/davbox/session"
)

const (
	CookieAuthName = "cookie"
)

func init() {
	register(&cookieAuth{})
}

type cookieAuth struct {
}

func (c *cookieAuth) Name() string {
	return CookieAuthName
}

func (c *cookieAuth) IsMatchAuthType(r *httpd.Request) bool {
	_, ok := session.TokenFromCookie(r.Header.Get("Cookie"))
	return ok
}

func (c *cookieAuth) Auth(ctx context.Context, r *httpd.Request, st *session.Store) (*session.Session, error) {
	token, _ := session.TokenFromCookie(r.Header.Get("Cookie"))
	sess, ok := st.GetSession(r.RemoteIp(), token)
	if !ok {
		return nil, fmt.Errorf("session not found or expired")
	}
	return sess, nil
}
