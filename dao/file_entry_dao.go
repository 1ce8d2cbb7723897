package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xxxsen/davbox/entity"
	"github.com/xxxsen/davbox/taskq"
	"github.com/xxxsen/davbox/utils"

	"github.com/didi/gendry/builder"
	"github.com/xxxsen/common/database"
	"github.com/xxxsen/common/database/dbkit"
)

const (
	defaultListPageSize    = 512
	defaultDeleteBatchSize = 256
)

var ErrEntryNotFound = errors.New("entry not found")

type IFileEntryDao interface {
	CreateEntry(ctx context.Context, req *entity.CreateEntryRequest) (*entity.CreateEntryResponse, error)
	GetEntry(ctx context.Context, req *entity.GetEntryRequest) (*entity.GetEntryResponse, error)
	ListEntry(ctx context.Context, req *entity.ListEntryRequest) (*entity.ListEntryResponse, error)
	UpdateEntry(ctx context.Context, req *entity.UpdateEntryRequest) (*entity.UpdateEntryResponse, error)
	DeleteEntry(ctx context.Context, req *entity.DeleteEntryRequest) (*entity.DeleteEntryResponse, error)
}

type fileEntryDaoImpl struct {
	q *taskq.Queue
}

func NewFileEntryDao(q *taskq.Queue) IFileEntryDao {
	return &fileEntryDaoImpl{q: q}
}

func (f *fileEntryDaoImpl) table() string {
	return "file_entry_tab"
}

func (f *fileEntryDaoImpl) CreateEntry(ctx context.Context, req *entity.CreateEntryRequest) (*entity.CreateEntryResponse, error) {
	now := time.Now().UnixMilli()
	ent := &entity.FileEntry{
		EntryId:  utils.NewEntryId(),
		OwnerId:  req.OwnerId,
		FileKind: req.FileKind,
		ParentId: req.ParentId,
		FileName: req.FileName,
		Ctime:    now,
		Mtime:    now,
	}
	data := []map[string]interface{}{
		{
			"entry_id":  ent.EntryId,
			"owner_id":  ent.OwnerId,
			"file_kind": ent.FileKind,
			"parent_id": ent.ParentId,
			"file_name": ent.FileName,
			"ctime":     ent.Ctime,
			"mtime":     ent.Mtime,
		},
	}
	sql, args, err := builder.BuildInsert(f.table(), data)
	if err != nil {
		return nil, err
	}
	if _, err := execTask(ctx, f.q, "create_entry", sql, args); err != nil {
		return nil, err
	}
	return &entity.CreateEntryResponse{Entry: ent}, nil
}

func (f *fileEntryDaoImpl) GetEntry(ctx context.Context, req *entity.GetEntryRequest) (*entity.GetEntryResponse, error) {
	if len(req.EntryIds) == 0 {
		return &entity.GetEntryResponse{}, nil
	}
	where := map[string]interface{}{
		"entry_id in": req.EntryIds,
	}
	rs, err := taskq.Do(ctx, f.q, "get_entry", func(ctx context.Context, db database.IDatabase) ([]*entity.FileEntry, error) {
		rs := make([]*entity.FileEntry, 0, len(req.EntryIds))
		if err := dbkit.SimpleQuery(ctx, db, f.table(), where, &rs, dbkit.ScanWithTagName("json")); err != nil {
			return nil, err
		}
		return rs, nil
	})
	if err != nil {
		return nil, err
	}
	return &entity.GetEntryResponse{List: rs}, nil
}

func (f *fileEntryDaoImpl) ListEntry(ctx context.Context, req *entity.ListEntryRequest) (*entity.ListEntryResponse, error) {
	rs, err := taskq.Do(ctx, f.q, "list_entry", func(ctx context.Context, db database.IDatabase) ([]*entity.FileEntry, error) {
		return f.innerListAll(ctx, db, req.OwnerId)
	})
	if err != nil {
		return nil, err
	}
	return &entity.ListEntryResponse{List: rs}, nil
}

func (f *fileEntryDaoImpl) innerListAll(ctx context.Context, q database.IQueryer, owner string) ([]*entity.FileEntry, error) {
	var lastid uint64
	rs := make([]*entity.FileEntry, 0, defaultListPageSize)
	for {
		where := map[string]interface{}{
			"owner_id": owner,
			"id >":     lastid,
			"_orderby": "id asc",
			"_limit":   []uint{0, defaultListPageSize},
		}
		page := make([]*entity.FileEntry, 0, defaultListPageSize)
		if err := dbkit.SimpleQuery(ctx, q, f.table(), where, &page, dbkit.ScanWithTagName("json")); err != nil {
			return nil, err
		}
		rs = append(rs, page...)
		if len(page) < defaultListPageSize {
			break
		}
		lastid = page[len(page)-1].Id
	}
	return rs, nil
}

func (f *fileEntryDaoImpl) UpdateEntry(ctx context.Context, req *entity.UpdateEntryRequest) (*entity.UpdateEntryResponse, error) {
	update := map[string]interface{}{}
	if req.ParentId != nil {
		update["parent_id"] = *req.ParentId
	}
	if req.FileName != nil {
		update["file_name"] = *req.FileName
	}
	if req.Mtime != nil {
		update["mtime"] = *req.Mtime
	}
	if len(update) == 0 {
		return &entity.UpdateEntryResponse{}, nil
	}
	where := map[string]interface{}{
		"entry_id": req.EntryId,
	}
	sql, args, err := builder.BuildUpdate(f.table(), where, update)
	if err != nil {
		return nil, err
	}
	cnt, err := execTask(ctx, f.q, "update_entry", sql, args)
	if err != nil {
		return nil, err
	}
	if cnt == 0 {
		return nil, fmt.Errorf("update entry:%s failed, err:%w", req.EntryId, ErrEntryNotFound)
	}
	return &entity.UpdateEntryResponse{}, nil
}

func (f *fileEntryDaoImpl) DeleteEntry(ctx context.Context, req *entity.DeleteEntryRequest) (*entity.DeleteEntryResponse, error) {
	if len(req.EntryIds) == 0 {
		return &entity.DeleteEntryResponse{}, nil
	}
	_, err := taskq.Do(ctx, f.q, "delete_entry", func(ctx context.Context, db database.IDatabase) (struct{}, error) {
		err := db.OnTransation(ctx, func(ctx context.Context, qe database.IQueryExecer) error {
			for start := 0; start < len(req.EntryIds); start += defaultDeleteBatchSize {
				end := start + defaultDeleteBatchSize
				if end > len(req.EntryIds) {
					end = len(req.EntryIds)
				}
				where := map[string]interface{}{
					"entry_id in": req.EntryIds[start:end],
				}
				sql, args, err := builder.BuildDelete(f.table(), where)
				if err != nil {
					return err
				}
				if _, err := qe.ExecContext(ctx, sql, args...); err != nil {
					return err
				}
			}
			return nil
		})
		return struct{}{}, err
	})
	if err != nil {
		return nil, err
	}
	return &entity.DeleteEntryResponse{}, nil
}

// IsFolder 检查entry是否为目录, entry不存在时返回ErrEntryNotFound
func IsFolder(ctx context.Context, d IFileEntryDao, id string) (bool, error) {
	rsp, err := d.GetEntry(ctx, &entity.GetEntryRequest{EntryIds: []string{id}})
	if err != nil {
		return false, err
	}
	if len(rsp.List) == 0 {
		return false, ErrEntryNotFound
	}
	return rsp.List[0].IsFolder(), nil
}

func execTask(ctx context.Context, q *taskq.Queue, name string, sql string, args []interface{}) (int64, error) {
	return taskq.Do(ctx, q, name, func(ctx context.Context, db database.IDatabase) (int64, error) {
		rs, err := db.ExecContext(ctx, sql, args...)
		if err != nil {
			return 0, err
		}
		return rs.RowsAffected()
	})
}
