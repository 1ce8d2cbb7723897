package httpd

import (
	"sort"
	"strings"
)

type headerItem struct {
	key   string
	value string
}

// Header 大小写不敏感, 同名只保留最后一次设置的值
type Header struct {
	items map[string]headerItem
}

func NewHeader() *Header {
	return &Header{items: make(map[string]headerItem)}
}

func (h *Header) Lookup(k string) (string, bool) {
	item, ok := h.items[strings.ToLower(k)]
	return item.value, ok
}

func (h *Header) Get(k string) string {
	v, _ := h.Lookup(k)
	return v
}

func (h *Header) Has(k string) bool {
	_, ok := h.items[strings.ToLower(k)]
	return ok
}

func (h *Header) Set(k string, v string) {
	h.items[strings.ToLower(k)] = headerItem{key: k, value: v}
}

func (h *Header) Del(k string) {
	delete(h.items, strings.ToLower(k))
}

func (h *Header) Len() int {
	return len(h.items)
}

// Merge 用other中的值覆盖当前值
func (h *Header) Merge(other *Header) {
	if other == nil {
		return
	}
	for lk, item := range other.items {
		h.items[lk] = item
	}
}

// Each 按key的小写字典序遍历, 保证输出稳定
func (h *Header) Each(fn func(k string, v string)) {
	keys := make([]string, 0, len(h.items))
	for lk := range h.items {
		keys = append(keys, lk)
	}
	sort.Strings(keys)
	for _, lk := range keys {
		item := h.items[lk]
		fn(item.key, item.value)
	}
}
