package db

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/database"
	"github.com/xxxsen/common/database/sqlite"
)

var sqllist = []struct {
	name string
	sql  string
}{
	{
		name: "init_user_tab",
		sql: `
CREATE TABLE IF NOT EXISTS user_tab (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id     TEXT NOT NULL,
    email       TEXT NOT NULL,
    password    TEXT NOT NULL,
    is_admin    INTEGER NOT NULL DEFAULT 0,
    ctime       INTEGER,
    mtime       INTEGER,
    UNIQUE (user_id),
    UNIQUE (email)
);
		`,
	},
	{
		name: "init_file_entry_tab",
		sql: `
CREATE TABLE IF NOT EXISTS file_entry_tab (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    entry_id    TEXT NOT NULL,
    owner_id    TEXT NOT NULL,
    file_kind   INTEGER NOT NULL,
    parent_id   TEXT NOT NULL,
    file_name   TEXT NOT NULL,
    ctime       INTEGER,
    mtime       INTEGER,
    UNIQUE (entry_id)
);
		`,
	},
	{
		name: "init_file_entry_owner_idx",
		sql:  `CREATE INDEX IF NOT EXISTS idx_file_entry_owner ON file_entry_tab (owner_id);`,
	},
	{
		name: "init_share_tab",
		sql: `
CREATE TABLE IF NOT EXISTS share_tab (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    share_id    TEXT NOT NULL,
    creator_id  TEXT NOT NULL,
    receiver_id TEXT NOT NULL,
    password    TEXT,
    expiration  INTEGER,
    UNIQUE (share_id)
);
		`,
	},
}

// Open 打开sqlite文件并初始化表结构, 返回的连接应当只交给storage queue持有
func Open(file string) (database.IDatabase, error) {
	ctx := context.Background()
	db, err := sqlite.New(file, func(db database.IDatabase) error {
		for _, item := range sqllist {
			if _, err := db.ExecContext(ctx, item.sql); err != nil {
				return fmt.Errorf("init sql failed, sql:%s, err:%w", item.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}
