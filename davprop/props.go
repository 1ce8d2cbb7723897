package davprop

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xxxsen/davbox/davxml"
	"github.com/xxxsen/davbox/httpd"
	"github.com/xxxsen/davbox/server/httpkit"
	"github.com/xxxsen/davbox/vfs"
)

const creationDateFormat = "2006-01-02T15:04:05Z"

// entryTime 优先使用记录上的时间, 没有时退回到内容的修改时间
func entryTime(ctx context.Context, store IEntryStore, n *vfs.Node, ms int64) (time.Time, error) {
	if ms > 0 {
		return time.UnixMilli(ms), nil
	}
	if n.IsFolder() {
		return time.Time{}, nil
	}
	info, err := store.StatContent(ctx, n.Id())
	if err != nil {
		return time.Time{}, fmt.Errorf("stat content failed, id:%s, err:%w", n.Id(), err)
	}
	return info.Mtime, nil
}

type creationDate struct {
	baseProp
	store IEntryStore
}

func (p *creationDate) PossibleFor(n *vfs.Node) bool {
	return true
}

func (p *creationDate) Get(ctx context.Context, n *vfs.Node) (*davxml.Fragment, error) {
	if n.IsRoot() {
		return p.element(), nil
	}
	t, err := entryTime(ctx, p.store, n, n.Entry.Ctime)
	if err != nil {
		return nil, err
	}
	if t.IsZero() {
		return p.element(), nil
	}
	return p.element(davxml.NewText(t.UTC().Format(creationDateFormat))), nil
}

type displayName struct {
	baseProp
	davName string
}

func (p *displayName) PossibleFor(n *vfs.Node) bool {
	return true
}

func (p *displayName) Get(ctx context.Context, n *vfs.Node) (*davxml.Fragment, error) {
	if n.IsRoot() {
		return p.element(davxml.NewText(p.davName)), nil
	}
	return p.element(davxml.NewText(n.Name())), nil
}

type resourceType struct {
	baseProp
}

func (p *resourceType) PossibleFor(n *vfs.Node) bool {
	return true
}

func (p *resourceType) Get(ctx context.Context, n *vfs.Node) (*davxml.Fragment, error) {
	if n.IsFolder() {
		return p.element(davxml.NewElement(Namespace, "collection")), nil
	}
	return p.element(), nil
}

type contentLength struct {
	baseProp
	store IEntryStore
}

func (p *contentLength) PossibleFor(n *vfs.Node) bool {
	return !n.IsFolder()
}

func (p *contentLength) Get(ctx context.Context, n *vfs.Node) (*davxml.Fragment, error) {
	if n.IsFolder() {
		return p.element(), nil
	}
	info, err := p.store.StatContent(ctx, n.Id())
	if err != nil {
		return nil, fmt.Errorf("stat content failed, id:%s, err:%w", n.Id(), err)
	}
	return p.element(davxml.NewText(strconv.FormatInt(info.Size, 10))), nil
}

type contentType struct {
	baseProp
}

func (p *contentType) PossibleFor(n *vfs.Node) bool {
	return !n.IsFolder()
}

func (p *contentType) Get(ctx context.Context, n *vfs.Node) (*davxml.Fragment, error) {
	if n.IsFolder() {
		return p.element(), nil
	}
	return p.element(davxml.NewText(httpkit.DetermineMimeType(n.Name()))), nil
}

type lastModified struct {
	baseProp
	store IEntryStore
}

func (p *lastModified) PossibleFor(n *vfs.Node) bool {
	return true
}

func (p *lastModified) Get(ctx context.Context, n *vfs.Node) (*davxml.Fragment, error) {
	if n.IsRoot() {
		return p.element(), nil
	}
	t, err := entryTime(ctx, p.store, n, n.Entry.Mtime)
	if err != nil {
		return nil, err
	}
	if t.IsZero() {
		return p.element(), nil
	}
	return p.element(davxml.NewText(httpd.FormatTime(t))), nil
}

func (p *lastModified) Settable() bool {
	return true
}

// Set 接受RFC1123格式的时间并写回记录的修改时间
func (p *lastModified) Set(ctx context.Context, n *vfs.Node, value *davxml.Fragment) error {
	if n.IsRoot() {
		return nil
	}
	raw := strings.TrimSpace(value.TextContent())
	t, err := time.Parse(httpd.TimeFormat, raw)
	if err != nil {
		return fmt.Errorf("parse time:%s failed, err:%w", raw, ErrInvalidValue)
	}
	return p.store.TouchEntry(ctx, n.Id(), t)
}

// emptyProp 锁相关属性, 始终为空
type emptyProp struct {
	baseProp
}

func (p *emptyProp) PossibleFor(n *vfs.Node) bool {
	return true
}

func (p *emptyProp) Get(ctx context.Context, n *vfs.Node) (*davxml.Fragment, error) {
	return p.element(), nil
}
