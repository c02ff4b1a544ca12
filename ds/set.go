package ds

import (
	"github.com/15mga/tempo/util"
)

// NewKSet 按加入顺序保存, 删除时用尾部元素补位, 遍历顺序因此只在删除后改变
func NewKSet[KT comparable, VT any](defCap int, getKey func(VT) KT) *KSet[KT, VT] {
	if defCap < 1 {
		defCap = 1
	}
	return &KSet[KT, VT]{
		items:    make([]VT, 0, defCap),
		keyToIdx: make(map[KT]int, defCap),
		defCap:   defCap,
		getKey:   getKey,
	}
}

type KSet[KT comparable, VT any] struct {
	items    []VT
	keyToIdx map[KT]int
	defCap   int
	getKey   func(VT) KT
}

func (s *KSet[KT, VT]) Count() int {
	return len(s.items)
}

func (s *KSet[KT, VT]) Add(item VT) *util.Err {
	key := s.getKey(item)
	if _, ok := s.keyToIdx[key]; ok {
		return util.NewErr(util.EcExist, util.M{
			"key": key,
		})
	}
	s.keyToIdx[key] = len(s.items)
	s.items = append(s.items, item)
	return nil
}

func (s *KSet[KT, VT]) Del(key KT) (val VT, exist bool) {
	idx, ok := s.keyToIdx[key]
	if !ok {
		return
	}
	val = s.items[idx]
	delete(s.keyToIdx, key)
	last := len(s.items) - 1
	if idx != last {
		tail := s.items[last]
		s.items[idx] = tail
		s.keyToIdx[s.getKey(tail)] = idx
	}
	s.items[last] = util.Default[VT]()
	s.items = s.items[:last]
	s.shrink()
	return val, true
}

// shrink 元素不足容量四分之一时减半, 不低于初始容量
func (s *KSet[KT, VT]) shrink() {
	c := cap(s.items)
	if c <= s.defCap || len(s.items) > c>>2 {
		return
	}
	n := c >> 1
	if n < s.defCap {
		n = s.defCap
	}
	items := make([]VT, len(s.items), n)
	copy(items, s.items)
	s.items = items
}

func (s *KSet[KT, VT]) Reset() {
	clear(s.items)
	s.items = s.items[:0]
	s.keyToIdx = make(map[KT]int, s.defCap)
}

func (s *KSet[KT, VT]) Get(key KT) (VT, bool) {
	idx, ok := s.keyToIdx[key]
	if !ok {
		return util.Default[VT](), false
	}
	return s.items[idx], true
}

func (s *KSet[KT, VT]) Has(key KT) bool {
	_, ok := s.keyToIdx[key]
	return ok
}

func (s *KSet[KT, VT]) Iter(fn func(VT)) {
	for _, item := range s.items {
		fn(item)
	}
}

// Snapshot 把当前元素复制到 buf[:0] 并返回, 之后的增删不影响返回值
func (s *KSet[KT, VT]) Snapshot(buf []VT) []VT {
	return append(buf[:0], s.items...)
}
