package local

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/davbox/blobio"
)

func TestLocalBlobIO(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	l, err := blobio.Create("local", map[string]interface{}{"dir": dir})
	require.NoError(t, err)
	require.NoError(t, l.Write(ctx, "k1", strings.NewReader("hi"), 2))
	assert.Error(t, l.Write(ctx, "k2", strings.NewReader("hi"), 3))
	_, err = l.Stat(ctx, "k2")
	assert.ErrorIs(t, err, blobio.ErrNotFound)

	info, err := l.Stat(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.Size)

	require.NoError(t, l.Copy(ctx, "k1", "k3"))
	rc, err := l.Read(ctx, "k3")
	require.NoError(t, err)
	raw, err := io.ReadAll(rc)
	require.NoError(t, err)
	_ = rc.Close()
	assert.Equal(t, "hi", string(raw))

	require.NoError(t, l.Delete(ctx, "k1"))
	require.NoError(t, l.Delete(ctx, "k1"))
	_, err = l.Read(ctx, "k1")
	assert.ErrorIs(t, err, blobio.ErrNotFound)
	assert.ErrorIs(t, l.Copy(ctx, "k1", "k4"), blobio.ErrNotFound)
	_, err = os.Stat(dir)
	assert.NoError(t, err)
}
