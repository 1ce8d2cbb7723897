package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/xxxsen/davbox/entity"
	"github.com/xxxsen/davbox/utils"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

var ErrBadCredential = errors.New("bad credential")

type Session struct {
	Id       string
	Ip       string
	UserId   string
	CreateAt time.Time
	TTL      time.Duration
	secret   string
}

func (s *Session) Expired(now time.Time) bool {
	return now.Sub(s.CreateAt) >= s.TTL
}

type IUserVerifier interface {
	VerifyUser(ctx context.Context, req *entity.VerifyUserRequest) (*entity.VerifyUserResponse, error)
}

// Store 进程内的会话表, 过期会话只在查询时惰性清理
type Store struct {
	c        *config
	verifier IUserVerifier
	mu       sync.Mutex
	sessions map[string]*Session
}

func New(verifier IUserVerifier, opts ...Option) *Store {
	return &Store{
		c:        applyOpts(opts...),
		verifier: verifier,
		sessions: make(map[string]*Session),
	}
}

func (s *Store) newToken(ip string, userId string, now time.Time) string {
	return utils.SHA256Hex(userId + ip + strconv.FormatInt(now.UnixNano(), 10) + uuid.NewString())
}

// CreateSession 校验密码摘要(sha512 hex), 成功后生成新会话
func (s *Store) CreateSession(ctx context.Context, ip string, userId string, digest string) (*Session, error) {
	rsp, err := s.verifier.VerifyUser(ctx, &entity.VerifyUserRequest{UserId: userId, PasswordDigest: digest})
	if err != nil {
		return nil, fmt.Errorf("verify user failed, err:%w", err)
	}
	if !rsp.Ok {
		logutil.GetLogger(ctx).Info("verify user failed", zap.String("user", userId), zap.String("ip", ip))
		return nil, ErrBadCredential
	}
	now := s.c.nowFn()
	sess := &Session{
		Id:       s.newToken(ip, userId, now),
		Ip:       ip,
		UserId:   userId,
		CreateAt: now,
		TTL:      s.c.ttl,
		secret:   utils.SHA256Hex(digest),
	}
	s.mu.Lock()
	s.sessions[sess.Id] = sess
	s.mu.Unlock()
	return sess, nil
}

func (s *Store) GetSession(ip string, token string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, false
	}
	if sess.Expired(s.c.nowFn()) {
		delete(s.sessions, token)
		return nil, false
	}
	if sess.Ip != ip {
		return nil, false
	}
	return sess, true
}

// FindSession 查找同一用户同一ip下凭据一致且仍然有效的会话
func (s *Store) FindSession(ip string, userId string, digest string) (*Session, bool) {
	secret := utils.SHA256Hex(digest)
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.c.nowFn()
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			continue
		}
		if sess.Ip == ip && sess.UserId == userId && sess.secret == secret {
			return sess, true
		}
	}
	return nil, false
}

func (s *Store) RemoveSession(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Authenticate 复用同一用户同一ip的有效会话, 不存在时校验凭据并创建
func (s *Store) Authenticate(ctx context.Context, ip string, userId string, digest string) (*Session, error) {
	if sess, ok := s.FindSession(ip, userId, digest); ok {
		return sess, nil
	}
	return s.CreateSession(ctx, ip, userId, digest)
}
