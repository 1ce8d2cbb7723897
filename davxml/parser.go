package davxml

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrEmptyDocument = errors.New("empty xml document")

type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("xml syntax error at %d: %s", e.Pos, e.Msg)
}

// CloseTagError 遇到闭合标签时向上传递, 直到找到同名的祖先节点
type CloseTagError struct {
	Name string
}

func (e *CloseTagError) Error() string {
	return fmt.Sprintf("unexpected closing tag: %s", e.Name)
}

type parser struct {
	s   string
	pos int
}

// Parse 单遍递归下降解析. 输入结束时仍未闭合的元素视为隐式闭合
func Parse(text string) (*Fragment, error) {
	text = strings.NewReplacer("\r", " ", "\n", " ").Replace(text)
	p := &parser{s: text}
	for {
		p.skipWhitespace()
		if p.eof() {
			return nil, ErrEmptyDocument
		}
		if p.peek() != '<' {
			return nil, &SyntaxError{Pos: p.pos, Msg: "text is not allowed as root"}
		}
		if p.skipMarkup() {
			continue
		}
		break
	}
	root, err := p.readElement()
	if err != nil {
		return nil, err
	}
	return root, nil
}

func (p *parser) eof() bool {
	return p.pos >= len(p.s)
}

func (p *parser) peek() byte {
	return p.s[p.pos]
}

func (p *parser) hasPrefix(prefix string) bool {
	return strings.HasPrefix(p.s[p.pos:], prefix)
}

func (p *parser) skipWhitespace() {
	for !p.eof() && (p.peek() == ' ' || p.peek() == '\t') {
		p.pos++
	}
}

// skipUntil 跳过直到end之后, 找不到时直接跳到末尾
func (p *parser) skipUntil(end string) {
	idx := strings.Index(p.s[p.pos:], end)
	if idx < 0 {
		p.pos = len(p.s)
		return
	}
	p.pos += idx + len(end)
}

// skipMarkup 跳过声明/注释/doctype, 当前位置为'<'
func (p *parser) skipMarkup() bool {
	switch {
	case p.hasPrefix("<?"):
		p.skipUntil("?>")
	case p.hasPrefix("<!--"):
		p.skipUntil("-->")
	case p.hasPrefix("<![CDATA["):
		return false
	case p.hasPrefix("<!"):
		p.skipUntil(">")
	default:
		return false
	}
	return true
}

func (p *parser) readName() string {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if c == ' ' || c == '\t' || c == '>' || (c == '/' && p.pos > start) {
			break
		}
		p.pos++
	}
	return p.s[start:p.pos]
}

func splitName(name string) (string, string) {
	idx := strings.IndexByte(name, ':')
	if idx < 0 {
		return "", name
	}
	return name[:idx], name[idx+1:]
}

// readElement 当前位置为'<'. 返回的frag在出错时可能是已解析的部分
func (p *parser) readElement() (*Fragment, error) {
	p.pos++
	name := p.readName()
	if strings.HasPrefix(name, "/") {
		p.skipUntil(">")
		_, local := splitName(strings.TrimSpace(name[1:]))
		return nil, &CloseTagError{Name: local}
	}
	if len(name) == 0 {
		if p.eof() {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, &SyntaxError{Pos: p.pos, Msg: "empty tag name"}
	}
	ns, local := splitName(name)
	frag := NewElement(ns, local)
	if err := p.readAttrs(frag); err != nil {
		return frag, err
	}
	c := p.peek()
	p.pos++
	if c == '/' {
		if p.eof() || p.peek() != '>' {
			return frag, &SyntaxError{Pos: p.pos, Msg: "no > after / in self closing tag"}
		}
		p.pos++
		return frag, nil
	}
	return frag, p.readChildren(frag)
}

// readAttrs 读取到'/'或'>'为止(不消费), 引号内的空白不会切分属性
func (p *parser) readAttrs(frag *Fragment) error {
	for {
		p.skipWhitespace()
		if p.eof() {
			return io.ErrUnexpectedEOF
		}
		if c := p.peek(); c == '/' || c == '>' {
			return nil
		}
		start := p.pos
		var quote byte
		for !p.eof() {
			c := p.peek()
			if quote == 0 && (c == ' ' || c == '\t' || c == '/' || c == '>') {
				break
			}
			if c == '"' || c == '\'' {
				switch quote {
				case 0:
					quote = c
				case c:
					quote = 0
				}
			}
			p.pos++
		}
		prop := p.s[start:p.pos]
		k, v, ok := strings.Cut(prop, "=")
		if !ok {
			frag.SetAttr(prop, "")
			continue
		}
		frag.SetAttr(k, unescape(unquote(v)))
	}
}

// unquote 只去掉首尾成对的一组引号
func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

func (p *parser) readChildren(frag *Fragment) error {
	for {
		p.skipWhitespace()
		if p.eof() {
			return nil
		}
		if p.peek() != '<' {
			start := p.pos
			for !p.eof() && p.peek() != '<' {
				p.pos++
			}
			frag.AddChild(NewText(unescape(p.s[start:p.pos])))
			continue
		}
		if p.hasPrefix("<![CDATA[") {
			p.pos += len("<![CDATA[")
			idx := strings.Index(p.s[p.pos:], "]]>")
			if idx < 0 {
				frag.AddChild(NewText(p.s[p.pos:]))
				p.pos = len(p.s)
				continue
			}
			frag.AddChild(NewText(p.s[p.pos : p.pos+idx]))
			p.pos += idx + len("]]>")
			continue
		}
		if p.skipMarkup() {
			continue
		}
		child, err := p.readElement()
		var ce *CloseTagError
		switch {
		case err == nil:
			frag.AddChild(child)
		case errors.As(err, &ce):
			// 未闭合的子元素按隐式闭合保留
			if child != nil {
				frag.AddChild(child)
			}
			if ce.Name == frag.Name {
				return nil
			}
			return err
		case errors.Is(err, io.ErrUnexpectedEOF):
			if child != nil {
				frag.AddChild(child)
			}
			return nil
		default:
			return err
		}
	}
}
