package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEntryId(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id := NewEntryId()
		assert.Equal(t, 32, len(id))
		assert.NotContains(t, id, "-")
		_, ok := seen[id]
		assert.False(t, ok)
		seen[id] = struct{}{}
	}
}

func TestEntryIdBucket(t *testing.T) {
	for i := 0; i < 20; i++ {
		id := NewEntryId()
		bk := EntryIdBucket(id)
		assert.Equal(t, 2, len(bk))
		assert.Equal(t, bk, EntryIdBucket(id))
		t.Logf("id:%s => bucket:%s", id, bk)
	}
}
