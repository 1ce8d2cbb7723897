package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xxxsen/davbox/blobio"
	"github.com/xxxsen/davbox/dao"
	"github.com/xxxsen/davbox/server"
	"github.com/xxxsen/davbox/session"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/idgen"
	"github.com/xxxsen/common/logger"
	"go.uber.org/zap"
)

func NewRunCmd(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the storage server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return onRun(c)
		},
	}
}

func onRun(c *Context) error {
	cfg := c.Config
	logitem := cfg.LogInfo
	logger := logger.Init(logitem.File, logitem.Level, int(logitem.FileCount), int(logitem.FileSize), int(logitem.KeepDays), logitem.Console)
	if err := idgen.Init(1); err != nil {
		return fmt.Errorf("init idgen failed, err:%w", err)
	}
	logger.Info("recv config", zap.Any("config", cfg))
	logger.Info("current available blobio", zap.Strings("list", blobio.List()))
	logger.Info("current use blobio impl", zap.String("name", cfg.BlobKind), zap.Int("rotate", cfg.RotateStream))
	logger.Info("current cache config")
	logger.Info("-- blob cache", zap.Bool("enable", cfg.BlobCache.Enable), zap.String("max_mem", humanize.IBytes(uint64(cfg.BlobCache.MaxMem))), zap.String("key_size_limit", humanize.IBytes(uint64(cfg.BlobCache.KeySizeLimit))))
	logger.Info("-- entry cache", zap.Bool("enable", cfg.EntryCache.Enable), zap.Int("size", cfg.EntryCache.Size), zap.Int64("ttl", cfg.EntryCache.TTL))
	q, err := openQueue(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := q.Close(); err != nil {
			logger.Error("close storage queue failed", zap.Error(err))
		}
	}()
	fmgr, err := buildFileManager(cfg, q)
	if err != nil {
		return err
	}
	userDao := dao.NewUserDao(q)
	if cnt := userDao.CountUser(context.Background()); cnt == 0 {
		logger.Warn("no user found, create one with 'user add' before login")
	} else {
		logger.Info("current user count", zap.Int64("count", cnt))
	}
	st := session.New(userDao, session.WithTTL(time.Duration(cfg.SessionTTL)*time.Second))
	svr, err := server.New(cfg.Bind,
		server.WithTLS(cfg.TLSBind, cfg.TLSCert, cfg.TLSKey),
		server.WithFileManager(fmgr),
		server.WithUserDao(userDao),
		server.WithSessionStore(st),
		server.WithDavName(cfg.DavName),
		server.WithAllowRegister(cfg.AllowRegister),
		server.WithEnableMetrics(cfg.EnableMetrics),
	)
	if err != nil {
		return fmt.Errorf("init server failed, err:%w", err)
	}
	logger.Info("init server succ, start it...", zap.Strings("handlers", svr.HandlerNames()))
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := svr.Run(ctx); err != nil {
		return fmt.Errorf("run server failed, err:%w", err)
	}
	logger.Info("server exit")
	return nil
}

func init() {
	register(NewRunCmd)
}
