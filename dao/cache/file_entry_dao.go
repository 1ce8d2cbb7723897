package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/davbox/cacheapi"
	cachewrap "github.com/xxxsen/davbox/cacheapi/adaptor"
	"github.com/xxxsen/davbox/dao"
	"github.com/xxxsen/davbox/entity"
)

const (
	defaultEntryCacheSize = 10000
	defaultEntryCacheTTL  = 10 * time.Minute
)

// fileEntryDao 仅缓存按id查询的结果, ListEntry总是回源, 目录投影依赖它拿到最新数据
type fileEntryDao struct {
	dao.IFileEntryDao
	cache cacheapi.ICache[string, *entity.FileEntry]
}

func NewFileEntryDao(impl dao.IFileEntryDao, size int, ttl time.Duration) dao.IFileEntryDao {
	if size <= 0 {
		size = defaultEntryCacheSize
	}
	if ttl <= 0 {
		ttl = defaultEntryCacheTTL
	}
	return &fileEntryDao{
		IFileEntryDao: impl,
		cache:         cachewrap.WrapExpirableLru(lru.NewLRU[string, *entity.FileEntry](size, nil, ttl)),
	}
}

func (f *fileEntryDao) GetEntry(ctx context.Context, req *entity.GetEntryRequest) (*entity.GetEntryResponse, error) {
	m, err := cacheapi.LoadMany(ctx, f.cache, req.EntryIds, func(ctx context.Context, miss []string) (map[string]*entity.FileEntry, error) {
		rsp, err := f.IFileEntryDao.GetEntry(ctx, &entity.GetEntryRequest{EntryIds: miss})
		if err != nil {
			return nil, err
		}
		rs := make(map[string]*entity.FileEntry, len(rsp.List))
		for _, item := range rsp.List {
			rs[item.EntryId] = item
		}
		return rs, nil
	})
	if err != nil {
		return nil, err
	}
	rsp := &entity.GetEntryResponse{}
	for _, id := range req.EntryIds {
		if v, ok := m[id]; ok {
			rsp.List = append(rsp.List, v)
		}
	}
	return rsp, nil
}

func (f *fileEntryDao) UpdateEntry(ctx context.Context, req *entity.UpdateEntryRequest) (*entity.UpdateEntryResponse, error) {
	defer f.cache.Del(ctx, req.EntryId)
	return f.IFileEntryDao.UpdateEntry(ctx, req)
}

func (f *fileEntryDao) DeleteEntry(ctx context.Context, req *entity.DeleteEntryRequest) (*entity.DeleteEntryResponse, error) {
	defer cacheapi.DelMany(ctx, f.cache, req.EntryIds)
	return f.IFileEntryDao.DeleteEntry(ctx, req)
}
