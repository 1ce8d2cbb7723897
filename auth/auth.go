package auth

import (
	"context"
	"errors"
	"sort"

	"github.com/xxxsen/davbox/httpd"
	"github.com/xxxsen/davbox/session"
)

var ErrNoAuth = errors.New("no auth info found")

type IAuth interface {
	Name() string
	IsMatchAuthType(r *httpd.Request) bool
	Auth(ctx context.Context, r *httpd.Request, st *session.Store) (*session.Session, error)
}

var mp = make(map[string]IAuth)

func register(fn IAuth) {
	mp[fn.Name()] = fn
}

func AuthList() []IAuth {
	rs := make([]IAuth, 0, len(mp))
	for _, v := range mp {
		rs = append(rs, v)
	}
	sort.Slice(rs, func(i, j int) bool {
		return rs[i].Name() < rs[j].Name()
	})
	return rs
}

type UserInfo struct {
	AuthType  string
	UserId    string
	SessionId string
}

// Authenticate 依次尝试匹配的认证方式, 返回第一个成功的结果
func Authenticate(ctx context.Context, r *httpd.Request, st *session.Store, ats ...IAuth) (*UserInfo, error) {
	if len(ats) == 0 {
		ats = AuthList()
	}
	var lastErr error = ErrNoAuth
	for _, at := range ats {
		if !at.IsMatchAuthType(r) {
			continue
		}
		sess, err := at.Auth(ctx, r, st)
		if err != nil {
			lastErr = err
			continue
		}
		return &UserInfo{AuthType: at.Name(), UserId: sess.UserId, SessionId: sess.Id}, nil
	}
	return nil, lastErr
}

type userInfoKeyType struct{}

var userInfoKey = userInfoKeyType{}

func SetUserInfo(ctx context.Context, u *UserInfo) context.Context {
	return context.WithValue(ctx, userInfoKey, u)
}

func GetUserInfo(ctx context.Context) (*UserInfo, bool) {
	v, ok := ctx.Value(userInfoKey).(*UserInfo)
	return v, ok
}
