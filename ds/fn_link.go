package ds

import (
	"github.com/15mga/tempo/util"
)

func NewFnLink() *FnLink {
	return &FnLink{}
}

// FnLink 一次性回调队列, 执行期间加入的回调留到下一次
type FnLink struct {
	fns  []util.Fn
	swap []util.Fn
}

func (l *FnLink) Push(fn util.Fn) {
	l.fns = append(l.fns, fn)
}

func (l *FnLink) Count() int {
	return len(l.fns)
}

func (l *FnLink) InvokeAndReset() bool {
	if len(l.fns) == 0 {
		return false
	}
	fns := l.fns
	l.fns = l.swap[:0]
	for i, fn := range fns {
		fns[i] = nil
		fn.Invoke()
	}
	l.swap = fns[:0]
	return true
}
