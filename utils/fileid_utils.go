package utils

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// NewEntryId 生成一个32位的hex串, 用于file entry id
func NewEntryId() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func EntryIdToHash(id string) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, xxhash.Sum64String(id))
	return buf
}

// EntryIdBucket 返回id所在的分桶目录名(2个hex字符)
func EntryIdBucket(id string) string {
	return hex.EncodeToString(EntryIdToHash(id))[:2]
}
