package davxml

import (
	"strings"
)

// Header 序列化时固定输出的xml声明
const Header = `<?xml version="1.0" encoding="utf-8" ?>` + "\n"

type Attr struct {
	Key   string
	Value string
}

// Fragment xml树的节点, 文本节点只有Text字段有效.
// Namespace只保存前缀, 不做xmlns解析
type Fragment struct {
	Name      string
	Namespace string
	Attrs     []Attr
	Children  []*Fragment
	Text      string
	IsText    bool
}

func NewElement(ns string, name string, children ...*Fragment) *Fragment {
	return &Fragment{
		Name:      name,
		Namespace: ns,
		Children:  children,
	}
}

func NewText(text string) *Fragment {
	return &Fragment{IsText: true, Text: text}
}

func (f *Fragment) QName() string {
	if len(f.Namespace) == 0 {
		return f.Name
	}
	return f.Namespace + ":" + f.Name
}

func (f *Fragment) AddChild(children ...*Fragment) *Fragment {
	f.Children = append(f.Children, children...)
	return f
}

// SetAttr 已存在的key原位覆盖, 否则追加到末尾
func (f *Fragment) SetAttr(k, v string) *Fragment {
	for i := range f.Attrs {
		if f.Attrs[i].Key == k {
			f.Attrs[i].Value = v
			return f
		}
	}
	f.Attrs = append(f.Attrs, Attr{Key: k, Value: v})
	return f
}

func (f *Fragment) Attr(k string) (string, bool) {
	for _, a := range f.Attrs {
		if a.Key == k {
			return a.Value, true
		}
	}
	return "", false
}

// Child 返回第一个本地名匹配的子元素
func (f *Fragment) Child(name string) *Fragment {
	for _, c := range f.Children {
		if !c.IsText && c.Name == name {
			return c
		}
	}
	return nil
}

func (f *Fragment) Elements() []*Fragment {
	rs := make([]*Fragment, 0, len(f.Children))
	for _, c := range f.Children {
		if !c.IsText {
			rs = append(rs, c)
		}
	}
	return rs
}

// TextContent 拼接直接子文本节点
func (f *Fragment) TextContent() string {
	if f.IsText {
		return f.Text
	}
	sb := strings.Builder{}
	for _, c := range f.Children {
		if c.IsText {
			sb.WriteString(c.Text)
		}
	}
	return sb.String()
}

func (f *Fragment) String() string {
	sb := &strings.Builder{}
	f.write(sb)
	return sb.String()
}

func (f *Fragment) write(sb *strings.Builder) {
	if f.IsText {
		sb.WriteString(escape(f.Text, false))
		return
	}
	sb.WriteByte('<')
	sb.WriteString(f.QName())
	for _, a := range f.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Key)
		sb.WriteString(`="`)
		sb.WriteString(escape(a.Value, true))
		sb.WriteByte('"')
	}
	if len(f.Children) == 0 {
		sb.WriteString("/>")
		return
	}
	sb.WriteByte('>')
	for _, c := range f.Children {
		c.write(sb)
	}
	sb.WriteString("</")
	sb.WriteString(f.QName())
	sb.WriteByte('>')
}

// Serialize 输出带xml声明的完整文档
func Serialize(f *Fragment) string {
	return Header + f.String()
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")
	unescaper   = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'", "&amp;", "&")
)

func escape(s string, attr bool) string {
	if attr {
		return attrEscaper.Replace(s)
	}
	return textEscaper.Replace(s)
}

func unescape(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return unescaper.Replace(s)
}
