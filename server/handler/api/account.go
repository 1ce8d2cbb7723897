package api

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/xxxsen/davbox/entity"
	"github.com/xxxsen/davbox/httpd"
	"github.com/xxxsen/davbox/server/httpkit"
	"github.com/xxxsen/davbox/server/model"
	"github.com/xxxsen/davbox/session"
	"github.com/xxxsen/davbox/utils"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const minUserIdLength = 3

var (
	emailPattern        = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	errRegisterDisabled = errors.New("Registration is disabled")
)

func (h *ApiHandler) handleRegister(ctx context.Context, r *httpd.Request) (*httpd.Response, error) {
	if !h.c.allowRegister {
		return httpkit.FailStatus(httpd.StatusForbidden, errRegisterDisabled), nil
	}
	req := &model.RegisterRequest{}
	if err := decodeBody(r, req); err != nil {
		return nil, err
	}
	if len(req.UserId) < minUserIdLength {
		return invalidData("The User ID has to be at least 3 characters long!"), nil
	}
	exist, err := h.userDao.GetUser(ctx, &entity.GetUserRequest{UserId: req.UserId})
	if err != nil {
		return nil, fmt.Errorf("check user id failed, err:%w", err)
	}
	if exist.Exist {
		return invalidData("This User ID is already taken!"), nil
	}
	if !emailPattern.MatchString(req.Email) {
		return invalidData("Invalid Email address!"), nil
	}
	exist, err = h.userDao.GetUser(ctx, &entity.GetUserRequest{Email: req.Email})
	if err != nil {
		return nil, fmt.Errorf("check email failed, err:%w", err)
	}
	if exist.Exist {
		return invalidData("This Email address is already taken!"), nil
	}
	if req.Passwd == nil {
		return invalidData("Failed to transmit password!"), nil
	}
	if _, err := h.userDao.CreateUser(ctx, &entity.CreateUserRequest{
		UserId:         req.UserId,
		Email:          req.Email,
		PasswordDigest: utils.SHA512Hex(*req.Passwd),
	}); err != nil {
		return nil, fmt.Errorf("create user failed, err:%w", err)
	}
	logutil.GetLogger(ctx).Info("register user succ", zap.String("user", req.UserId), zap.String("ip", r.RemoteIp()))
	return httpkit.SuccessJson(&model.RegisterResponse{UserId: req.UserId}), nil
}

func (h *ApiHandler) handleLogin(ctx context.Context, r *httpd.Request) (*httpd.Response, error) {
	req := &model.LoginRequest{}
	if err := decodeBody(r, req); err != nil {
		return nil, err
	}
	if len(req.UserId) == 0 {
		return invalidData("Please provide a User ID!"), nil
	}
	if req.Passwd == nil {
		return invalidData("Failed to transmit password!"), nil
	}
	sess, err := h.st.CreateSession(ctx, r.RemoteIp(), req.UserId, utils.SHA512Hex(*req.Passwd))
	if errors.Is(err, session.ErrBadCredential) {
		return invalidData("Could not login with these credentials!"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("create session failed, err:%w", err)
	}
	rsp := httpkit.SuccessJson(&model.LoginResponse{UserId: sess.UserId, Expire: sess.CreateAt.Add(sess.TTL).Unix()})
	rsp.Header.Set("Set-Cookie", session.SetCookie(sess.Id))
	return rsp, nil
}

func (h *ApiHandler) handleLogout(ctx context.Context, r *httpd.Request) (*httpd.Response, error) {
	if token, ok := session.TokenFromCookie(r.Header.Get("Cookie")); ok {
		h.st.RemoveSession(token)
	}
	rsp := httpkit.SuccessJson(nil)
	rsp.Header.Set("Set-Cookie", session.LogoutCookie())
	return rsp, nil
}
