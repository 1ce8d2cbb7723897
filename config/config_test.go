package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	f := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(f, []byte(data), 0644))
	return f
}

func TestParseDefault(t *testing.T) {
	c, err := Parse(writeConfig(t, `{"bind": ":9000", "blob_kind": "mem", "blob_cache": {"enable": false}}`))
	require.NoError(t, err)
	assert.Equal(t, ":9000", c.Bind)
	assert.Equal(t, "mem", c.BlobKind)
	assert.Equal(t, int64(48*3600), c.SessionTTL)
	assert.Equal(t, "davbox", c.DavName)
	assert.False(t, c.BlobCache.Enable)
	assert.True(t, c.EntryCache.Enable)
	assert.False(t, c.AllowRegister)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse(writeConfig(t, `{"tls_bind": ":8443"}`))
	assert.Error(t, err)
	_, err = Parse(writeConfig(t, `{bad json`))
	assert.Error(t, err)
	_, err = Parse("/not/exist/config.json")
	assert.Error(t, err)
}
