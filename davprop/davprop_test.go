package davprop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xxxsen/davbox/blobio"
	"github.com/xxxsen/davbox/davxml"
	"github.com/xxxsen/davbox/entity"
	"github.com/xxxsen/davbox/vfs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	infos   map[string]*blobio.BlobInfo
	touched map[string]time.Time
}

func (f *fakeStore) StatContent(ctx context.Context, id string) (*blobio.BlobInfo, error) {
	if info, ok := f.infos[id]; ok {
		return info, nil
	}
	return &blobio.BlobInfo{}, nil
}

func (f *fakeStore) TouchEntry(ctx context.Context, id string, mtime time.Time) error {
	f.touched[id] = mtime
	return nil
}

func newFixture() (*Registry, *fakeStore, *vfs.Tree) {
	mtime := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	store := &fakeStore{
		infos: map[string]*blobio.BlobInfo{
			"f1": {Size: 2, Mtime: mtime},
			"f2": {Size: 10, Mtime: mtime},
		},
		touched: map[string]time.Time{},
	}
	ents := []*entity.FileEntry{
		{EntryId: "d1", OwnerId: "alice", FileKind: entity.FileKindFolder, FileName: "docs", Ctime: mtime.UnixMilli(), Mtime: mtime.UnixMilli()},
		{EntryId: "f1", OwnerId: "alice", FileKind: entity.FileKindFile, ParentId: "d1", FileName: "a.txt", Ctime: mtime.Add(-time.Hour).UnixMilli(), Mtime: mtime.UnixMilli()},
		{EntryId: "f2", OwnerId: "alice", FileKind: entity.FileKindFile, ParentId: "d1", FileName: "noext"},
	}
	return NewRegistry(store, "davbox"), store, vfs.Build("alice", ents)
}

func getText(t *testing.T, p IProperty, n *vfs.Node) string {
	frag, err := p.Get(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, p.Name(), frag.Name)
	assert.Equal(t, "D", frag.Namespace)
	return frag.TextContent()
}

func mustFind(t *testing.T, r *Registry, name string) IProperty {
	p, ok := r.Find(name)
	require.True(t, ok)
	return p
}

func TestRegistry(t *testing.T) {
	r, _, _ := newFixture()
	names := []string{}
	for _, p := range r.All() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"creationdate", "displayname", "resourcetype", "getcontentlength",
		"getcontenttype", "getlastmodified", "lockdiscovery", "supportedlock"}, names)
	_, ok := r.Find("quota")
	assert.False(t, ok)
}

func TestFileProps(t *testing.T) {
	r, _, tree := newFixture()
	n, ok := tree.Resolve("/docs/a.txt")
	require.True(t, ok)
	assert.Equal(t, "2024-05-06T06:08:09Z", getText(t, mustFind(t, r, "creationdate"), n))
	assert.Equal(t, "a.txt", getText(t, mustFind(t, r, "displayname"), n))
	assert.Equal(t, "2", getText(t, mustFind(t, r, "getcontentlength"), n))
	assert.Equal(t, "Mon, 06 May 2024 07:08:09 GMT", getText(t, mustFind(t, r, "getlastmodified"), n))
	rt, err := mustFind(t, r, "resourcetype").Get(context.Background(), n)
	require.NoError(t, err)
	assert.Empty(t, rt.Children)
	assert.True(t, mustFind(t, r, "getcontentlength").PossibleFor(n))
}

func TestFallbackToContentTime(t *testing.T) {
	r, _, tree := newFixture()
	n, _ := tree.Resolve("/docs/noext")
	assert.Equal(t, "2024-05-06T07:08:09Z", getText(t, mustFind(t, r, "creationdate"), n))
	assert.Equal(t, "application/octet-stream", getText(t, mustFind(t, r, "getcontenttype"), n))
}

func TestFolderProps(t *testing.T) {
	r, _, tree := newFixture()
	n, _ := tree.Resolve("/docs")
	assert.False(t, mustFind(t, r, "getcontentlength").PossibleFor(n))
	assert.False(t, mustFind(t, r, "getcontenttype").PossibleFor(n))
	rt, err := mustFind(t, r, "resourcetype").Get(context.Background(), n)
	require.NoError(t, err)
	require.Equal(t, 1, len(rt.Children))
	assert.Equal(t, "collection", rt.Children[0].Name)
}

func TestRootProps(t *testing.T) {
	r, _, tree := newFixture()
	root := tree.Root()
	assert.Equal(t, "davbox", getText(t, mustFind(t, r, "displayname"), root))
	assert.Equal(t, "", getText(t, mustFind(t, r, "creationdate"), root))
	assert.Equal(t, "", getText(t, mustFind(t, r, "getlastmodified"), root))
	assert.Equal(t, "", getText(t, mustFind(t, r, "lockdiscovery"), root))
	rt, err := mustFind(t, r, "resourcetype").Get(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, `<D:resourcetype><D:collection/></D:resourcetype>`, rt.String())
}

func TestSetLastModified(t *testing.T) {
	r, store, tree := newFixture()
	n, _ := tree.Resolve("/docs/a.txt")
	p := mustFind(t, r, "getlastmodified")
	require.True(t, p.Settable())
	val := davxml.NewElement("D", "getlastmodified", davxml.NewText(" Tue, 01 Oct 2024 10:00:00 GMT "))
	require.NoError(t, p.Set(context.Background(), n, val))
	assert.Equal(t, time.Date(2024, 10, 1, 10, 0, 0, 0, time.UTC), store.touched["f1"].UTC())

	err := p.Set(context.Background(), n, davxml.NewElement("D", "getlastmodified", davxml.NewText("yesterday")))
	assert.True(t, errors.Is(err, ErrInvalidValue))

	dn := mustFind(t, r, "displayname")
	assert.False(t, dn.Settable())
	assert.NoError(t, dn.Set(context.Background(), n, davxml.NewElement("D", "displayname", davxml.NewText("x"))))
}
