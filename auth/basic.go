package auth

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/xxxsen/davbox/httpd"
	"github.com/xxxsen/davbox/session"
	"github.com/xxxsen/davbox/utils"
)

const (
	BasicAuthName = "basic"
)

// BasicChallenge 认证失败时返回的WWW-Authenticate
const BasicChallenge = `Basic realm="Dev", charset="UTF-8"`

func init() {
	register(&basicAuth{})
}

type basicAuth struct {
}

func (b *basicAuth) Name() string {
	return BasicAuthName
}

func (b *basicAuth) IsMatchAuthType(r *httpd.Request) bool {
	return strings.HasPrefix(r.Header.Get("Authorization"), "Basic ")
}

func (b *basicAuth) Auth(ctx context.Context, r *httpd.Request, st *session.Store) (*session.Session, error) {
	uak, usk, ok := ParseBasicAuth(r.Header.Get("Authorization"))
	if !ok {
		return nil, fmt.Errorf("no auth found")
	}
	sess, err := st.Authenticate(ctx, r.RemoteIp(), uak, utils.SHA512Hex(usk))
	if err != nil {
		return nil, fmt.Errorf("auth user failed, u:%s, err:%w", uak, err)
	}
	return sess, nil
}

func ParseBasicAuth(v string) (string, string, bool) {
	raw, ok := strings.CutPrefix(v, "Basic ")
	if !ok {
		return "", "", false
	}
	dec, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return "", "", false
	}
	u, p, ok := strings.Cut(string(dec), ":")
	if !ok || len(u) == 0 {
		return "", "", false
	}
	return u, p, true
}
