package dao

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/xxxsen/davbox/entity"
	"github.com/xxxsen/davbox/taskq"

	"github.com/didi/gendry/builder"
	"github.com/xxxsen/common/database"
	"github.com/xxxsen/common/database/dbkit"
	"golang.org/x/crypto/bcrypt"
)

var passwordCost = bcrypt.DefaultCost

type IUserDao interface {
	CreateUser(ctx context.Context, req *entity.CreateUserRequest) (*entity.CreateUserResponse, error)
	GetUser(ctx context.Context, req *entity.GetUserRequest) (*entity.GetUserResponse, error)
	UpdatePassword(ctx context.Context, req *entity.UpdatePasswordRequest) (*entity.UpdatePasswordResponse, error)
	VerifyUser(ctx context.Context, req *entity.VerifyUserRequest) (*entity.VerifyUserResponse, error)
	CountUser(ctx context.Context) int64
}

type userDaoImpl struct {
	q *taskq.Queue
}

func NewUserDao(q *taskq.Queue) IUserDao {
	return &userDaoImpl{q: q}
}

func (u *userDaoImpl) table() string {
	return "user_tab"
}

// hashDigest 密码摘要为sha512 hex, 解码后刚好64字节, 不会超过bcrypt的72字节限制
func hashDigest(digest string) (string, error) {
	raw, err := hex.DecodeString(digest)
	if err != nil {
		return "", fmt.Errorf("invalid password digest, err:%w", err)
	}
	h, err := bcrypt.GenerateFromPassword(raw, passwordCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (u *userDaoImpl) CreateUser(ctx context.Context, req *entity.CreateUserRequest) (*entity.CreateUserResponse, error) {
	pwd, err := hashDigest(req.PasswordDigest)
	if err != nil {
		return nil, err
	}
	now := time.Now().UnixMilli()
	admin := 0
	if req.IsAdmin {
		admin = 1
	}
	data := []map[string]interface{}{
		{
			"user_id":  req.UserId,
			"email":    req.Email,
			"password": pwd,
			"is_admin": admin,
			"ctime":    now,
			"mtime":    now,
		},
	}
	sql, args, err := builder.BuildInsert(u.table(), data)
	if err != nil {
		return nil, err
	}
	if _, err := execTask(ctx, u.q, "create_user", sql, args); err != nil {
		return nil, err
	}
	return &entity.CreateUserResponse{}, nil
}

func (u *userDaoImpl) GetUser(ctx context.Context, req *entity.GetUserRequest) (*entity.GetUserResponse, error) {
	where := map[string]interface{}{
		"_limit": []uint{0, 1},
	}
	switch {
	case len(req.UserId) > 0:
		where["user_id"] = req.UserId
	case len(req.Email) > 0:
		where["email"] = req.Email
	default:
		return nil, fmt.Errorf("no user_id or email provided")
	}
	rs, err := taskq.Do(ctx, u.q, "get_user", func(ctx context.Context, db database.IDatabase) ([]*entity.UserItem, error) {
		rs := make([]*entity.UserItem, 0, 1)
		if err := dbkit.SimpleQuery(ctx, db, u.table(), where, &rs, dbkit.ScanWithTagName("json")); err != nil {
			return nil, err
		}
		return rs, nil
	})
	if err != nil {
		return nil, err
	}
	if len(rs) == 0 {
		return &entity.GetUserResponse{}, nil
	}
	return &entity.GetUserResponse{Item: rs[0], Exist: true}, nil
}

type countRow struct {
	Cnt int64 `json:"cnt"`
}

// CountUser 尽力而为的统计, 查询失败时返回-1
func (u *userDaoImpl) CountUser(ctx context.Context) int64 {
	return taskq.Submit(ctx, u.q, "count_user", func(ctx context.Context, db database.IDatabase) (int64, error) {
		sql, args, err := builder.BuildSelect(u.table(), nil, []string{"count(*) as cnt"})
		if err != nil {
			return 0, err
		}
		rows, err := db.QueryContext(ctx, sql, args...)
		if err != nil {
			return 0, err
		}
		defer rows.Close()
		rs := make([]*countRow, 0, 1)
		if err := dbkit.ScanRows(rows, &rs, dbkit.ScanWithTagName("json")); err != nil {
			return 0, err
		}
		if len(rs) == 0 {
			return 0, nil
		}
		return rs[0].Cnt, nil
	}).WaitOr(ctx, -1)
}

func (u *userDaoImpl) UpdatePassword(ctx context.Context, req *entity.UpdatePasswordRequest) (*entity.UpdatePasswordResponse, error) {
	pwd, err := hashDigest(req.PasswordDigest)
	if err != nil {
		return nil, err
	}
	where := map[string]interface{}{
		"user_id": req.UserId,
	}
	update := map[string]interface{}{
		"password": pwd,
		"mtime":    time.Now().UnixMilli(),
	}
	sql, args, err := builder.BuildUpdate(u.table(), where, update)
	if err != nil {
		return nil, err
	}
	cnt, err := execTask(ctx, u.q, "update_password", sql, args)
	if err != nil {
		return nil, err
	}
	if cnt == 0 {
		return nil, fmt.Errorf("user:%s not found", req.UserId)
	}
	return &entity.UpdatePasswordResponse{}, nil
}

// VerifyUser bcrypt比较放在调用方goroutine执行, 不占用storage worker
func (u *userDaoImpl) VerifyUser(ctx context.Context, req *entity.VerifyUserRequest) (*entity.VerifyUserResponse, error) {
	rsp, err := u.GetUser(ctx, &entity.GetUserRequest{UserId: req.UserId})
	if err != nil {
		return nil, err
	}
	if !rsp.Exist {
		return &entity.VerifyUserResponse{}, nil
	}
	raw, err := hex.DecodeString(req.PasswordDigest)
	if err != nil {
		return &entity.VerifyUserResponse{}, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rsp.Item.Password), raw); err != nil {
		return &entity.VerifyUserResponse{}, nil
	}
	return &entity.VerifyUserResponse{Ok: true}, nil
}
