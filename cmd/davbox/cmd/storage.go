package cmd

import (
	"fmt"
	"time"

	"github.com/xxxsen/davbox/blobio"
	_ "github.com/xxxsen/davbox/blobio/register"
	"github.com/xxxsen/davbox/config"
	"github.com/xxxsen/davbox/dao"
	"github.com/xxxsen/davbox/dao/cache"
	"github.com/xxxsen/davbox/db"
	"github.com/xxxsen/davbox/filemgr"
	"github.com/xxxsen/davbox/metrics"
	"github.com/xxxsen/davbox/taskq"
)

func openQueue(c *config.Config) (*taskq.Queue, error) {
	dbc, err := db.Open(c.DBFile)
	if err != nil {
		return nil, fmt.Errorf("open db failed, file:%s, err:%w", c.DBFile, err)
	}
	var opts []taskq.Option
	if c.EnableMetrics {
		opts = append(opts, taskq.WithObserver(metrics.ObserveTask))
	}
	return taskq.New(dbc, opts...), nil
}

func buildFileManager(c *config.Config, q *taskq.Queue) (filemgr.IFileManager, error) {
	bio, err := blobio.Create(c.BlobKind, c.BlobInfo)
	if err != nil {
		return nil, fmt.Errorf("init blob io failed, kind:%s, err:%w", c.BlobKind, err)
	}
	bio = blobio.NewRotateIO(bio, c.RotateStream)
	var bc filemgr.IBlobCache
	if c.BlobCache.Enable {
		bc, err = filemgr.NewBlobCache(&filemgr.BlobCacheConfig{
			MaxMem:       c.BlobCache.MaxMem,
			KeySizeLimit: c.BlobCache.KeySizeLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("create blob cache failed, err:%w", err)
		}
	}
	entryDao := dao.NewFileEntryDao(q)
	if c.EntryCache.Enable {
		entryDao = cache.NewFileEntryDao(entryDao, c.EntryCache.Size, time.Duration(c.EntryCache.TTL)*time.Second)
	}
	return filemgr.NewFileManager(entryDao, bio, bc), nil
}
