package ds

import (
	"strconv"
	"testing"

	"github.com/15mga/tempo/util"
	"github.com/stretchr/testify/assert"
)

type call struct {
	id   int64
	name string
}

func newCallSet(c int) *KSet[int64, *call] {
	return NewKSet[int64, *call](c, func(c *call) int64 {
		return c.id
	})
}

func ids(s *KSet[int64, *call]) []int64 {
	res := make([]int64, 0, s.Count())
	s.Iter(func(c *call) {
		res = append(res, c.id)
	})
	return res
}

func TestKSetAddDel(t *testing.T) {
	s := newCallSet(2)
	for i := int64(1); i <= 4; i++ {
		assert.Nil(t, s.Add(&call{id: i}))
	}
	err := s.Add(&call{id: 2})
	if assert.NotNil(t, err) {
		assert.Equal(t, util.EcExist, err.Code())
	}
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(s))

	// 尾部元素补到被删除的位置
	v, ok := s.Del(2)
	assert.True(t, ok)
	assert.Equal(t, int64(2), v.id)
	assert.Equal(t, []int64{1, 4, 3}, ids(s))

	_, ok = s.Del(2)
	assert.False(t, ok)
	assert.True(t, s.Has(4))
	c, ok := s.Get(4)
	assert.True(t, ok)
	assert.Equal(t, int64(4), c.id)

	v, ok = s.Del(3)
	assert.True(t, ok)
	assert.Equal(t, int64(3), v.id)
	assert.Equal(t, []int64{1, 4}, ids(s))
	_, ok = s.Get(3)
	assert.False(t, ok)
}

func TestKSetGrowShrink(t *testing.T) {
	s := newCallSet(4)
	for i := int64(0); i < 100; i++ {
		_ = s.Add(&call{id: i})
	}
	assert.Equal(t, 100, s.Count())
	assert.GreaterOrEqual(t, cap(s.items), 100)
	for i := int64(0); i < 98; i++ {
		s.Del(i)
	}
	assert.Equal(t, 2, s.Count())
	assert.Less(t, cap(s.items), 100)
	assert.GreaterOrEqual(t, cap(s.items), 4)
	assert.ElementsMatch(t, []int64{98, 99}, ids(s))
	for _, id := range []int64{98, 99} {
		c, ok := s.Get(id)
		assert.True(t, ok)
		assert.Equal(t, id, c.id)
	}
}

func TestKSetReset(t *testing.T) {
	s := newCallSet(4)
	_ = s.Add(&call{id: 1, name: "a"})
	_ = s.Add(&call{id: 2, name: "b"})
	s.Reset()
	assert.Equal(t, 0, s.Count())
	assert.False(t, s.Has(1))
	assert.Nil(t, s.Add(&call{id: 1}))
	assert.Equal(t, []int64{1}, ids(s))
}

func TestKSetSnapshot(t *testing.T) {
	s := newCallSet(4)
	for i := int64(1); i <= 3; i++ {
		_ = s.Add(&call{id: i})
	}
	buf := make([]*call, 0, 8)
	buf = append(buf, &call{id: 99})
	snap := s.Snapshot(buf)
	s.Del(1)
	_ = s.Add(&call{id: 4})
	if assert.Len(t, snap, 3) {
		assert.Equal(t, int64(1), snap[0].id)
		assert.Equal(t, int64(3), snap[2].id)
	}
	assert.Equal(t, []int64{3, 2, 4}, ids(s))
	assert.Empty(t, newCallSet(0).Snapshot(nil))
}

func BenchmarkKSet(b *testing.B) {
	count := 1 << 12
	calls := make([]*call, 0, count)
	for i := 0; i < count; i++ {
		calls = append(calls, &call{
			id:   int64(i),
			name: strconv.Itoa(i),
		})
	}
	b.ReportAllocs()
	for n := 0; n < b.N; n++ {
		s := newCallSet(64)
		for _, c := range calls {
			_ = s.Add(c)
		}
		for _, c := range s.Snapshot(nil) {
			s.Del(c.id)
		}
	}
}
