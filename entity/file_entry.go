package entity

const (
	FileKindFile   = 0
	FileKindFolder = 1
)

// RootParentId 根目录下的entry的parent_id
const RootParentId = ""

type FileEntry struct {
	Id       uint64 `json:"id"`
	EntryId  string `json:"entry_id"`
	OwnerId  string `json:"owner_id"`
	FileKind int32  `json:"file_kind"`
	ParentId string `json:"parent_id"`
	FileName string `json:"file_name"`
	Ctime    int64  `json:"ctime"`
	Mtime    int64  `json:"mtime"`
}

func (f *FileEntry) IsFolder() bool {
	return f.FileKind == FileKindFolder
}

type CreateEntryRequest struct {
	OwnerId  string
	ParentId string
	FileName string
	FileKind int32
}

type CreateEntryResponse struct {
	Entry *FileEntry
}

type GetEntryRequest struct {
	EntryIds []string
}

type GetEntryResponse struct {
	List []*FileEntry
}

type ListEntryRequest struct {
	OwnerId string
}

type ListEntryResponse struct {
	List []*FileEntry
}

// UpdateEntryRequest 仅更新非nil的字段
type UpdateEntryRequest struct {
	EntryId  string
	ParentId *string
	FileName *string
	Mtime    *int64
}

type UpdateEntryResponse struct {
}

type DeleteEntryRequest struct {
	EntryIds []string
}

type DeleteEntryResponse struct {
}
