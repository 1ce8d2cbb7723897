package cmd

import (
	"context"
	"fmt"

	"github.com/xxxsen/davbox/dao"
	"github.com/xxxsen/davbox/entity"
	"github.com/xxxsen/davbox/utils"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type userArgs struct {
	user  string
	email string
	pwd   string
	admin bool
}

func NewUserCmd(c *Context) *cobra.Command {
	userc := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	userc.AddCommand(newUserAddCmd(c), newUserPasswdCmd(c))
	return userc
}

func newUserAddCmd(c *Context) *cobra.Command {
	args := &userArgs{}
	subc := &cobra.Command{
		Use:   "add",
		Short: "Add a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withUserDao(c, func(ctx context.Context, d dao.IUserDao) error {
				return onUserAdd(ctx, d, args)
			})
		},
	}
	subc.Flags().StringVarP(&args.user, "user", "u", "", "user id")
	subc.Flags().StringVarP(&args.email, "email", "e", "", "email, default to <user>@localhost")
	subc.Flags().StringVarP(&args.pwd, "passwd", "p", "", "password")
	subc.Flags().BoolVar(&args.admin, "admin", false, "create as admin")
	return subc
}

func newUserPasswdCmd(c *Context) *cobra.Command {
	args := &userArgs{}
	subc := &cobra.Command{
		Use:   "passwd",
		Short: "Change user password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withUserDao(c, func(ctx context.Context, d dao.IUserDao) error {
				return onUserPasswd(ctx, d, args)
			})
		},
	}
	subc.Flags().StringVarP(&args.user, "user", "u", "", "user id")
	subc.Flags().StringVarP(&args.pwd, "passwd", "p", "", "new password")
	return subc
}

func withUserDao(c *Context, fn func(ctx context.Context, d dao.IUserDao) error) error {
	logger.Init("", "info", 0, 0, 0, true)
	q, err := openQueue(c.Config)
	if err != nil {
		return err
	}
	defer q.Close()
	return fn(context.Background(), dao.NewUserDao(q))
}

func checkUserArgs(args *userArgs) error {
	if len(args.user) == 0 {
		return fmt.Errorf("no user id found")
	}
	if len(args.pwd) == 0 {
		return fmt.Errorf("no password found")
	}
	return nil
}

func onUserAdd(ctx context.Context, d dao.IUserDao, args *userArgs) error {
	if err := checkUserArgs(args); err != nil {
		return err
	}
	email := args.email
	if len(email) == 0 {
		email = args.user + "@localhost"
	}
	if _, err := d.CreateUser(ctx, &entity.CreateUserRequest{
		UserId:         args.user,
		Email:          email,
		PasswordDigest: utils.SHA512Hex(args.pwd),
		IsAdmin:        args.admin,
	}); err != nil {
		return fmt.Errorf("create user failed, err:%w", err)
	}
	logutil.GetLogger(ctx).Info("create user succ", zap.String("user", args.user), zap.String("email", email), zap.Bool("admin", args.admin))
	return nil
}

func onUserPasswd(ctx context.Context, d dao.IUserDao, args *userArgs) error {
	if err := checkUserArgs(args); err != nil {
		return err
	}
	if _, err := d.UpdatePassword(ctx, &entity.UpdatePasswordRequest{
		UserId:         args.user,
		PasswordDigest: utils.SHA512Hex(args.pwd),
	}); err != nil {
		return fmt.Errorf("update password failed, err:%w", err)
	}
	logutil.GetLogger(ctx).Info("update password succ", zap.String("user", args.user))
	return nil
}

func init() {
	register(NewUserCmd)
}
