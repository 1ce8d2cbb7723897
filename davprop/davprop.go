package davprop

import (
	"context"
	"errors"
	"time"

	"github.com/xxxsen/davbox/blobio"
	"github.com/xxxsen/davbox/davxml"
	"github.com/xxxsen/davbox/vfs"
)

const Namespace = "D"

var ErrInvalidValue = errors.New("invalid property value")

// IProperty DAV属性, 无状态, 全局只读共享
type IProperty interface {
	Name() string
	Namespace() string
	PossibleFor(n *vfs.Node) bool
	// Get 返回完整的属性元素, 没有值时返回空元素
	Get(ctx context.Context, n *vfs.Node) (*davxml.Fragment, error)
	Settable() bool
	Set(ctx context.Context, n *vfs.Node, value *davxml.Fragment) error
}

type IEntryStore interface {
	StatContent(ctx context.Context, id string) (*blobio.BlobInfo, error)
	TouchEntry(ctx context.Context, id string, mtime time.Time) error
}

type Registry struct {
	props []IProperty
	index map[string]IProperty
}

// NewRegistry 固定的属性列表, allprop即返回全部
func NewRegistry(store IEntryStore, davName string) *Registry {
	props := []IProperty{
		&creationDate{baseProp: baseProp{name: "creationdate"}, store: store},
		&displayName{baseProp: baseProp{name: "displayname"}, davName: davName},
		&resourceType{baseProp: baseProp{name: "resourcetype"}},
		&contentLength{baseProp: baseProp{name: "getcontentlength"}, store: store},
		&contentType{baseProp: baseProp{name: "getcontenttype"}},
		&lastModified{baseProp: baseProp{name: "getlastmodified"}, store: store},
		&emptyProp{baseProp: baseProp{name: "lockdiscovery"}},
		&emptyProp{baseProp: baseProp{name: "supportedlock"}},
	}
	r := &Registry{props: props, index: make(map[string]IProperty, len(props))}
	for _, p := range props {
		r.index[p.Name()] = p
	}
	return r
}

func (r *Registry) All() []IProperty {
	return r.props
}

// Find 按本地名查找, 不区分命名空间前缀
func (r *Registry) Find(name string) (IProperty, bool) {
	p, ok := r.index[name]
	return p, ok
}

type baseProp struct {
	name string
}

func (b *baseProp) Name() string {
	return b.name
}

func (b *baseProp) Namespace() string {
	return Namespace
}

func (b *baseProp) Settable() bool {
	return false
}

func (b *baseProp) Set(ctx context.Context, n *vfs.Node, value *davxml.Fragment) error {
	return nil
}

func (b *baseProp) element(children ...*davxml.Fragment) *davxml.Fragment {
	return davxml.NewElement(Namespace, b.name, children...)
}
