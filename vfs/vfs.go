package vfs

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/xxxsen/davbox/entity"
)

// Node 投影树上的节点, 根节点Entry为nil
type Node struct {
	Entry    *entity.FileEntry
	name     string
	parent   *Node
	children []*Node
}

func (n *Node) Id() string {
	if n.Entry == nil {
		return entity.RootParentId
	}
	return n.Entry.EntryId
}

func (n *Node) Name() string {
	return n.name
}

func (n *Node) IsRoot() bool {
	return n.Entry == nil
}

func (n *Node) IsFolder() bool {
	return n.Entry == nil || n.Entry.IsFolder()
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) Children() []*Node {
	return n.children
}

// Segments 从根到当前节点的名字序列, 根节点为空
func (n *Node) Segments() []string {
	rs := make([]string, 0, 8)
	for c := n; c != nil && !c.IsRoot(); c = c.parent {
		rs = append(rs, c.name)
	}
	for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
		rs[i], rs[j] = rs[j], rs[i]
	}
	return rs
}

func (n *Node) Path() string {
	return "/" + strings.Join(n.Segments(), "/")
}

type WalkFunc func(n *Node, level int) error

// Walk 先序遍历, depth < 0 表示不限层级
func (n *Node) Walk(depth int, fn WalkFunc) error {
	return n.walk(0, depth, fn)
}

func (n *Node) walk(level int, depth int, fn WalkFunc) error {
	if err := fn(n, level); err != nil {
		return err
	}
	if depth >= 0 && level >= depth {
		return nil
	}
	for _, c := range n.children {
		if err := c.walk(level+1, depth, fn); err != nil {
			return err
		}
	}
	return nil
}

// PostOrder 子节点在前, 自身在最后, 用于递归删除
func (n *Node) PostOrder() []*Node {
	rs := make([]*Node, 0, 16)
	var visit func(c *Node)
	visit = func(c *Node) {
		for _, sub := range c.children {
			visit(sub)
		}
		rs = append(rs, c)
	}
	visit(n)
	return rs
}

// Tree 单次请求内使用的目录投影, 不跨请求复用
type Tree struct {
	owner string
	root  *Node
	nodes map[string]*Node
}

type IEntryLister interface {
	ListEntries(ctx context.Context, owner string) ([]*entity.FileEntry, error)
}

func Load(ctx context.Context, lister IEntryLister, owner string) (*Tree, error) {
	ents, err := lister.ListEntries(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("load entries failed, owner:%s, err:%w", owner, err)
	}
	return Build(owner, ents), nil
}

// Build 按parent_id挂载节点, 只保留从根可达且属于owner的entry
func Build(owner string, ents []*entity.FileEntry) *Tree {
	t := &Tree{
		owner: owner,
		root:  &Node{},
		nodes: make(map[string]*Node, len(ents)+1),
	}
	t.nodes[entity.RootParentId] = t.root
	byParent := make(map[string][]*entity.FileEntry, len(ents))
	for _, ent := range ents {
		if ent.OwnerId != owner || ent.EntryId == entity.RootParentId {
			continue
		}
		byParent[ent.ParentId] = append(byParent[ent.ParentId], ent)
	}
	queue := []*Node{t.root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !cur.IsFolder() {
			continue
		}
		for _, ent := range byParent[cur.Id()] {
			if _, ok := t.nodes[ent.EntryId]; ok {
				continue
			}
			n := &Node{Entry: ent, name: ent.FileName, parent: cur}
			t.nodes[ent.EntryId] = n
			cur.children = append(cur.children, n)
			queue = append(queue, n)
		}
		sortChildren(cur.children)
	}
	return t
}

func sortChildren(children []*Node) {
	sort.SliceStable(children, func(i, j int) bool {
		a, b := children[i], children[j]
		if a.IsFolder() != b.IsFolder() {
			return a.IsFolder()
		}
		return a.name < b.name
	})
}

func (t *Tree) Owner() string {
	return t.owner
}

func (t *Tree) Root() *Node {
	return t.root
}

func (t *Tree) Get(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Lookup 在目录的直接子节点中按名字查找, 区分大小写
func (t *Tree) Lookup(dir *Node, name string) (*Node, bool) {
	for _, c := range dir.children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

func (t *Tree) Resolve(p string) (*Node, bool) {
	return t.ResolveSegments(SplitPath(p))
}

func (t *Tree) ResolveSegments(items []string) (*Node, bool) {
	cur := t.root
	for _, item := range items {
		if !cur.IsFolder() {
			return nil, false
		}
		next, ok := t.Lookup(cur, item)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// ResolveParent 返回路径的父目录与最后一段名字, 根路径返回空名字
func (t *Tree) ResolveParent(p string) (*Node, string, bool) {
	items := SplitPath(p)
	if len(items) == 0 {
		return t.root, "", true
	}
	dir, ok := t.ResolveSegments(items[:len(items)-1])
	if !ok || !dir.IsFolder() {
		return nil, "", false
	}
	return dir, items[len(items)-1], true
}

// SplitPath 切分路径, 忽略空段与"."
func SplitPath(p string) []string {
	items := strings.Split(p, "/")
	rs := make([]string, 0, len(items))
	for _, item := range items {
		if len(item) == 0 || item == "." {
			continue
		}
		rs = append(rs, item)
	}
	return rs
}
