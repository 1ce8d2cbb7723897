package webdav

import (
	"context"
	"encoding/base64"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/davbox/blobio/mem"
	"github.com/xxxsen/davbox/dao"
	"github.com/xxxsen/davbox/davxml"
	"github.com/xxxsen/davbox/db"
	"github.com/xxxsen/davbox/entity"
	"github.com/xxxsen/davbox/filemgr"
	"github.com/xxxsen/davbox/httpd"
	"github.com/xxxsen/davbox/session"
	"github.com/xxxsen/davbox/taskq"
	"github.com/xxxsen/davbox/utils"
	"github.com/xxxsen/davbox/vfs"
)

const (
	testUser = "webdav_tester"
	testPwd  = "hello123"
)

var (
	dbfile = "/tmp/davbox_webdav_test.db"
	queue  *taskq.Queue
	fmgr   filemgr.IFileManager
	h      *WebdavHandler
)

func setup() {
	tearDown()
	dbc, err := db.Open(dbfile)
	if err != nil {
		panic(err)
	}
	queue = taskq.New(dbc)
	userDao := dao.NewUserDao(queue)
	if _, err := userDao.CreateUser(context.Background(), &entity.CreateUserRequest{
		UserId:         testUser,
		PasswordDigest: utils.SHA512Hex(testPwd),
	}); err != nil {
		panic(err)
	}
	fmgr = filemgr.NewFileManager(dao.NewFileEntryDao(queue), mem.New(), nil)
	h, err = New(fmgr, session.New(userDao))
	if err != nil {
		panic(err)
	}
}

func tearDown() {
	if queue != nil {
		_ = queue.Close()
	}
	_ = os.Remove(dbfile)
}

func TestMain(m *testing.M) {
	setup()
	code := m.Run()
	tearDown()
	if code != 0 {
		os.Exit(code)
	}
}

func basicAuth(user, pwd string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pwd))
}

func newRequest(method string, path string, body string, headers ...string) *httpd.Request {
	r := &httpd.Request{
		Method:        method,
		Target:        path,
		Path:          path,
		Version:       "HTTP/1.1",
		Header:        httpd.NewHeader(),
		ContentLength: -1,
		RemoteAddr:    "127.0.0.1:40000",
	}
	r.Header.Set("Host", "127.0.0.1:8080")
	r.Header.Set("Authorization", basicAuth(testUser, testPwd))
	for i := 0; i+1 < len(headers); i += 2 {
		r.Header.Set(headers[i], headers[i+1])
	}
	if len(body) > 0 {
		r.Body = []byte(body)
		r.ContentLength = int64(len(body))
	}
	return r
}

func doRequest(t *testing.T, r *httpd.Request) *httpd.Response {
	rsp, err := h.Handle(context.Background(), r)
	require.NoError(t, err)
	require.NotNil(t, rsp)
	return rsp
}

func parseMultistatus(t *testing.T, rsp *httpd.Response) *davxml.Fragment {
	require.Equal(t, httpd.StatusMultiStatus, rsp.Status)
	frag, err := davxml.Parse(string(rsp.Body))
	require.NoError(t, err)
	require.Equal(t, "multistatus", frag.Name)
	return frag
}

func findResponse(ms *davxml.Fragment, href string) *davxml.Fragment {
	for _, item := range ms.Elements() {
		if c := item.Child("href"); c != nil && c.TextContent() == href {
			return item
		}
	}
	return nil
}

func findProp(rsp *davxml.Fragment, name string) *davxml.Fragment {
	for _, ps := range rsp.Elements() {
		if ps.Name != "propstat" {
			continue
		}
		if prop := ps.Child("prop"); prop != nil {
			if item := prop.Child(name); item != nil {
				return item
			}
		}
	}
	return nil
}

func readAll(t *testing.T, rsp *httpd.Response) string {
	require.NotNil(t, rsp.File)
	defer rsp.File.Close()
	raw, err := io.ReadAll(rsp.File)
	require.NoError(t, err)
	return string(raw)
}

func loadTree(t *testing.T) *vfs.Tree {
	tree, err := vfs.Load(context.Background(), fmgr, testUser)
	require.NoError(t, err)
	return tree
}

func TestPropfindScenario(t *testing.T) {
	assert.Equal(t, httpd.StatusCreated, doRequest(t, newRequest(MethodMkcol, "/docs", "")).Status)
	assert.Equal(t, httpd.StatusCreated, doRequest(t, newRequest(MethodPut, "/docs/a.txt", "hi")).Status)

	ms := parseMultistatus(t, doRequest(t, newRequest(MethodPropfind, "/docs", "", "Depth", "1")))
	assert.Equal(t, 2, len(ms.Elements()))
	dir := findResponse(ms, "/docs/")
	require.NotNil(t, dir)
	assert.NotNil(t, findProp(dir, "resourcetype").Child("collection"))
	file := findResponse(ms, "/docs/a.txt")
	require.NotNil(t, file)
	assert.Equal(t, "2", findProp(file, "getcontentlength").TextContent())
	assert.Equal(t, "a.txt", findProp(file, "displayname").TextContent())

	//depth 0只返回自身
	ms = parseMultistatus(t, doRequest(t, newRequest(MethodPropfind, "/docs", "", "Depth", "0")))
	assert.Equal(t, 1, len(ms.Elements()))

	tree := loadTree(t)
	n, ok := tree.Resolve("/docs/a.txt")
	require.True(t, ok)
	assert.Equal(t, "docs", n.Parent().Name())
}

func TestPropfindExplicitProps(t *testing.T) {
	require.Equal(t, httpd.StatusCreated, doRequest(t, newRequest(MethodMkcol, "/explicit", "")).Status)
	body := `<?xml version="1.0" encoding="utf-8"?>
<D:propfind xmlns:D="DAV:" xmlns:Z="urn:test">
  <D:prop><D:getlastmodified/><Z:color/><D:getcontentlength/></D:prop>
</D:propfind>`
	ms := parseMultistatus(t, doRequest(t, newRequest(MethodPropfind, "/explicit", body, "Depth", "0", "Content-Type", "text/xml")))
	v, ok := ms.Attr("xmlns:Z")
	assert.True(t, ok)
	assert.Equal(t, "urn:test", v)
	rsp := ms.Elements()[0]
	propstats := rsp.Elements()[1:]
	require.Equal(t, 2, len(propstats))
	assert.Equal(t, "HTTP/1.1 200 OK", propstats[0].Child("status").TextContent())
	assert.Equal(t, "HTTP/1.1 404 Not Found", propstats[1].Child("status").TextContent())
	missing := propstats[1].Child("prop").Elements()
	require.Equal(t, 2, len(missing))
	assert.Equal(t, "Z:color", missing[0].QName())
	assert.Equal(t, "D:getcontentlength", missing[1].QName())
}

func TestPropfindNotFoundAndBadBody(t *testing.T) {
	assert.Equal(t, httpd.StatusNotFound, doRequest(t, newRequest(MethodPropfind, "/nothing/here", "")).Status)
	_, err := h.Handle(context.Background(), newRequest(MethodPropfind, "/", "<D:lockinfo xmlns:D=\"DAV:\"/>"))
	pe, ok := httpd.AsProtocolError(err)
	require.True(t, ok)
	assert.Equal(t, httpd.StatusBadRequest, pe.Status)
	_, err = h.Handle(context.Background(), newRequest(MethodPropfind, "/", "{}", "Content-Type", "application/json"))
	pe, ok = httpd.AsProtocolError(err)
	require.True(t, ok)
	assert.Equal(t, httpd.StatusUnsupportedMediaType, pe.Status)
}

func TestWrongPassword(t *testing.T) {
	for _, method := range []string{MethodPropfind, MethodMkcol, MethodPut, MethodGet} {
		for i := 0; i < 2; i++ {
			r := newRequest(method, "/wrong", "", "Authorization", basicAuth(testUser, "bad"))
			rsp := doRequest(t, r)
			assert.Equal(t, httpd.StatusUnauthorized, rsp.Status)
			assert.True(t, rsp.Header.Has("WWW-Authenticate"))
		}
	}
	r := newRequest(MethodPropfind, "/", "")
	r.Header.Del("Authorization")
	assert.Equal(t, httpd.StatusUnauthorized, doRequest(t, r).Status)
}

func TestMkcolPreconditions(t *testing.T) {
	assert.Equal(t, httpd.StatusMethodNotAllowed, doRequest(t, newRequest(MethodMkcol, "/", "")).Status)
	assert.Equal(t, httpd.StatusConflict, doRequest(t, newRequest(MethodMkcol, "/missing/child", "")).Status)
	assert.Equal(t, httpd.StatusUnsupportedMediaType, doRequest(t, newRequest(MethodMkcol, "/withbody", "<x/>")).Status)
}

func TestPutOverwriteAndGet(t *testing.T) {
	require.Equal(t, httpd.StatusCreated, doRequest(t, newRequest(MethodPut, "/note.txt", "first")).Status)
	before, ok := loadTree(t).Resolve("/note.txt")
	require.True(t, ok)
	require.Equal(t, httpd.StatusCreated, doRequest(t, newRequest(MethodPut, "/note.txt", "second")).Status)
	after, ok := loadTree(t).Resolve("/note.txt")
	require.True(t, ok)
	assert.Equal(t, before.Id(), after.Id())

	rsp := doRequest(t, newRequest(MethodGet, "/note.txt", ""))
	assert.Equal(t, httpd.StatusOK, rsp.Status)
	assert.Equal(t, "second", readAll(t, rsp))
	assert.Equal(t, `attachment; filename="note.txt"`, rsp.Header.Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rsp.Header.Get("Content-Type"), "text/plain"))

	rsp = doRequest(t, newRequest(MethodHead, "/note.txt", ""))
	assert.Equal(t, httpd.StatusOK, rsp.Status)
	assert.Equal(t, "6", rsp.Header.Get("Content-Length"))
	assert.Nil(t, rsp.File)

	assert.Equal(t, httpd.StatusMethodNotAllowed, doRequest(t, newRequest(MethodPut, "/", "x")).Status)
	assert.Equal(t, httpd.StatusConflict, doRequest(t, newRequest(MethodPut, "/nodir/x.txt", "x")).Status)
	assert.Equal(t, httpd.StatusNotFound, doRequest(t, newRequest(MethodGet, "/none.txt", "")).Status)
}

func TestGetFolder(t *testing.T) {
	require.Equal(t, httpd.StatusCreated, doRequest(t, newRequest(MethodMkcol, "/getdir", "")).Status)
	_, err := h.Handle(context.Background(), newRequest(MethodGet, "/getdir", ""))
	_, ok := httpd.AsProtocolError(err)
	assert.True(t, ok)
}

func TestDeleteCascade(t *testing.T) {
	require.Equal(t, httpd.StatusCreated, doRequest(t, newRequest(MethodMkcol, "/trash", "")).Status)
	require.Equal(t, httpd.StatusCreated, doRequest(t, newRequest(MethodMkcol, "/trash/sub", "")).Status)
	require.Equal(t, httpd.StatusCreated, doRequest(t, newRequest(MethodPut, "/trash/sub/f.bin", "abc")).Status)
	require.Equal(t, httpd.StatusCreated, doRequest(t, newRequest(MethodPut, "/trash/g.bin", "def")).Status)
	tree := loadTree(t)
	dir, ok := tree.Resolve("/trash")
	require.True(t, ok)
	ids := make([]string, 0, 4)
	for _, n := range dir.PostOrder() {
		ids = append(ids, n.Id())
	}
	require.Equal(t, 4, len(ids))

	assert.Equal(t, httpd.StatusNoContent, doRequest(t, newRequest(MethodDelete, "/trash", "")).Status)
	for _, p := range []string{"/trash", "/trash/sub", "/trash/sub/f.bin", "/trash/g.bin"} {
		assert.Equal(t, httpd.StatusNotFound, doRequest(t, newRequest(MethodPropfind, p, "")).Status)
	}
	tree = loadTree(t)
	for _, id := range ids {
		_, ok := tree.Get(id)
		assert.False(t, ok)
	}
	assert.Equal(t, httpd.StatusForbidden, doRequest(t, newRequest(MethodDelete, "/", "")).Status)
	assert.Equal(t, httpd.StatusNotFound, doRequest(t, newRequest(MethodDelete, "/trash", "")).Status)
}

func TestMoveThenGet(t *testing.T) {
	require.Equal(t, httpd.StatusCreated, doRequest(t, newRequest(MethodMkcol, "/mv", "")).Status)
	require.Equal(t, httpd.StatusCreated, doRequest(t, newRequest(MethodPut, "/mv/src.txt", "payload")).Status)
	rsp := doRequest(t, newRequest(MethodMove, "/mv/src.txt", "", "Destination", "http://127.0.0.1:8080/mv/dst.txt"))
	assert.Equal(t, httpd.StatusCreated, rsp.Status)
	assert.Equal(t, httpd.StatusNotFound, doRequest(t, newRequest(MethodGet, "/mv/src.txt", "")).Status)
	rsp = doRequest(t, newRequest(MethodGet, "/mv/dst.txt", ""))
	assert.Equal(t, "payload", readAll(t, rsp))

	//目标已存在
	require.Equal(t, httpd.StatusCreated, doRequest(t, newRequest(MethodPut, "/mv/other.txt", "other")).Status)
	rsp = doRequest(t, newRequest(MethodMove, "/mv/other.txt", "", "Destination", "/mv/dst.txt", "Overwrite", "F"))
	assert.Equal(t, httpd.StatusPreconditionFailed, rsp.Status)
	rsp = doRequest(t, newRequest(MethodMove, "/mv/other.txt", "", "Destination", "/mv/dst.txt"))
	assert.Equal(t, httpd.StatusNoContent, rsp.Status)
	rsp = doRequest(t, newRequest(MethodGet, "/mv/dst.txt", ""))
	assert.Equal(t, "other", readAll(t, rsp))

	//移动到自身内部
	assert.Equal(t, httpd.StatusForbidden, doRequest(t, newRequest(MethodMove, "/mv", "", "Destination", "/mv/inner")).Status)
	assert.Equal(t, httpd.StatusBadRequest, doRequest(t, newRequest(MethodMove, "/mv", "")).Status)
	assert.Equal(t, httpd.StatusConflict, doRequest(t, newRequest(MethodMove, "/mv", "", "Destination", "/nodir/mv")).Status)
}

func TestCopyFolder(t *testing.T) {
	require.Equal(t, httpd.StatusCreated, doRequest(t, newRequest(MethodMkcol, "/cpsrc", "")).Status)
	files := map[string]string{"a.txt": "aaa", "b.txt": "bbbb", "c.txt": "c"}
	for name, data := range files {
		require.Equal(t, httpd.StatusCreated, doRequest(t, newRequest(MethodPut, "/cpsrc/"+name, data)).Status)
	}
	rsp := doRequest(t, newRequest(MethodCopy, "/cpsrc", "", "Destination", "/cpdst"))
	assert.Equal(t, httpd.StatusCreated, rsp.Status)

	tree := loadTree(t)
	src, ok := tree.Resolve("/cpsrc")
	require.True(t, ok)
	dst, ok := tree.Resolve("/cpdst")
	require.True(t, ok)
	assert.Equal(t, len(files), len(src.Children()))
	assert.Equal(t, len(files), len(dst.Children()))
	seen := make(map[string]bool)
	for _, c := range src.Children() {
		seen[c.Id()] = true
	}
	for _, c := range dst.Children() {
		assert.False(t, seen[c.Id()])
		seen[c.Id()] = true
		rsp := doRequest(t, newRequest(MethodGet, "/cpdst/"+c.Name(), ""))
		assert.Equal(t, files[c.Name()], readAll(t, rsp))
	}
	for name, data := range files {
		rsp := doRequest(t, newRequest(MethodGet, "/cpsrc/"+name, ""))
		assert.Equal(t, data, readAll(t, rsp))
	}

	//depth 0只复制目录本身
	rsp = doRequest(t, newRequest(MethodCopy, "/cpsrc", "", "Destination", "/cpshallow", "Depth", "0"))
	assert.Equal(t, httpd.StatusCreated, rsp.Status)
	shallow, ok := loadTree(t).Resolve("/cpshallow")
	require.True(t, ok)
	assert.Equal(t, 0, len(shallow.Children()))
	assert.Equal(t, httpd.StatusForbidden, doRequest(t, newRequest(MethodCopy, "/cpsrc", "", "Destination", "/cpsrc")).Status)
}

func TestProppatch(t *testing.T) {
	require.Equal(t, httpd.StatusCreated, doRequest(t, newRequest(MethodPut, "/patch.txt", "x")).Status)
	body := `<?xml version="1.0"?>
<D:propertyupdate xmlns:D="DAV:">
  <D:set><D:prop><D:getlastmodified>Wed, 01 Jan 2020 10:00:00 GMT</D:getlastmodified></D:prop></D:set>
  <D:remove><D:prop><D:displayname/></D:prop></D:remove>
</D:propertyupdate>`
	ms := parseMultistatus(t, doRequest(t, newRequest(MethodProppatch, "/patch.txt", body, "Content-Type", "application/xml")))
	rsp := findResponse(ms, "/patch.txt")
	require.NotNil(t, rsp)
	assert.NotNil(t, findProp(rsp, "getlastmodified"))
	assert.NotNil(t, findProp(rsp, "displayname"))

	ms = parseMultistatus(t, doRequest(t, newRequest(MethodPropfind, "/patch.txt", "", "Depth", "0")))
	assert.Equal(t, "Wed, 01 Jan 2020 10:00:00 GMT", findProp(ms.Elements()[0], "getlastmodified").TextContent())

	bad := `<D:propertyupdate xmlns:D="DAV:"><D:set><D:prop><D:getlastmodified>yesterday</D:getlastmodified></D:prop></D:set></D:propertyupdate>`
	ms = parseMultistatus(t, doRequest(t, newRequest(MethodProppatch, "/patch.txt", bad)))
	ps := ms.Elements()[0].Elements()[1]
	assert.Equal(t, "HTTP/1.1 409 Conflict", ps.Child("status").TextContent())

	_, err := h.Handle(context.Background(), newRequest(MethodProppatch, "/patch.txt", `<D:propfind xmlns:D="DAV:"/>`))
	_, ok := httpd.AsProtocolError(err)
	assert.True(t, ok)
	assert.Equal(t, httpd.StatusForbidden, doRequest(t, newRequest(MethodProppatch, "/", "")).Status)
}

func TestOptionsAndLock(t *testing.T) {
	r := newRequest(MethodOptions, "/", "")
	r.Header.Del("Authorization")
	rsp := doRequest(t, r)
	assert.Equal(t, httpd.StatusNoContent, rsp.Status)
	assert.Equal(t, "1, 3", rsp.Header.Get("DAV"))
	assert.Contains(t, rsp.Header.Get("Allow"), MethodPropfind)

	rsp = doRequest(t, newRequest(MethodLock, "/", ""))
	assert.Equal(t, httpd.StatusMethodNotAllowed, rsp.Status)
	assert.True(t, rsp.Header.Has("Allow"))
	assert.True(t, rsp.Header.Has("DAV"))
}

func TestCanHandle(t *testing.T) {
	r := newRequest(MethodGet, "/", "")
	assert.True(t, h.CanHandle(r))
	r.Header.Del("Authorization")
	assert.False(t, h.CanHandle(r))
	assert.True(t, h.CanHandle(newRequest(MethodPropfind, "/", "")))
	assert.False(t, h.CanHandle(newRequest("POST", "/", "")))
}

func TestTransferIntoOwnSubtree(t *testing.T) {
	require.Equal(t, httpd.StatusCreated, doRequest(t, newRequest(MethodMkcol, "/loop", "")).Status)
	require.Equal(t, httpd.StatusCreated, doRequest(t, newRequest(MethodMkcol, "/loop/sub", "")).Status)
	for _, method := range []string{MethodMove, MethodCopy} {
		for _, dst := range []string{"/loop/sub/loop", "/loop/loop", "/loop/sub", "/loop"} {
			rsp := doRequest(t, newRequest(method, "/loop", "", "Destination", dst))
			assert.Equal(t, httpd.StatusForbidden, rsp.Status, method+" "+dst)
		}
	}
	//源仍然完整
	tree := loadTree(t)
	_, ok := tree.Resolve("/loop/sub")
	assert.True(t, ok)
	_, ok = tree.Resolve("/loop/sub/loop")
	assert.False(t, ok)
}

func TestWriteOnStaleTree(t *testing.T) {
	ctx := context.Background()
	require.Equal(t, httpd.StatusCreated, doRequest(t, newRequest(MethodMkcol, "/stale", "")).Status)
	require.Equal(t, httpd.StatusCreated, doRequest(t, newRequest(MethodPut, "/stale/f.txt", "old")).Status)
	snap := loadTree(t)
	old, ok := snap.Resolve("/stale/f.txt")
	require.True(t, ok)

	//快照之后文件被删除, PUT需要重新创建
	require.NoError(t, fmgr.RemoveEntries(ctx, []*entity.FileEntry{old.Entry}))
	rsp, err := h.handlePut(ctx, newRequest(MethodPut, "/stale/f.txt", "new"), snap)
	require.NoError(t, err)
	assert.Equal(t, httpd.StatusCreated, rsp.Status)
	now, ok := loadTree(t).Resolve("/stale/f.txt")
	require.True(t, ok)
	assert.NotEqual(t, old.Id(), now.Id())
	assert.Equal(t, "new", readAll(t, doRequest(t, newRequest(MethodGet, "/stale/f.txt", ""))))

	//快照之后父目录被删除
	require.Equal(t, httpd.StatusNoContent, doRequest(t, newRequest(MethodDelete, "/stale", "")).Status)
	rsp, err = h.handleMkcol(ctx, newRequest(MethodMkcol, "/stale/sub", ""), snap)
	require.NoError(t, err)
	assert.Equal(t, httpd.StatusConflict, rsp.Status)
	rsp, err = h.handlePut(ctx, newRequest(MethodPut, "/stale/g.txt", "g"), snap)
	require.NoError(t, err)
	assert.Equal(t, httpd.StatusConflict, rsp.Status)
	_, ok = loadTree(t).Resolve("/stale")
	assert.False(t, ok)
}
