package tracker

import (
	"github.com/15mga/tempo/coro"
	"github.com/15mga/tempo/util"
)

// trackedRoutine 在 inner 最后一次恢复结束后执行 onComplete, 不改变 inner 的挂起点.
// 被调度器直接取消时执行 onCancel
type trackedRoutine struct {
	inner      coro.IRoutine
	onComplete util.Fn
	onCancel   util.Fn
	finished   bool
}

func (r *trackedRoutine) Resume(dt float64) bool {
	ok := false
	defer func() {
		if !ok {
			// inner panic, 由调度器恢复并视为结束
			r.finish(r.onComplete)
		}
	}()
	done := r.inner.Resume(dt)
	ok = true
	if done {
		r.finish(r.onComplete)
	}
	return done
}

func (r *trackedRoutine) Cancel() {
	r.finish(r.onCancel)
	r.inner.Cancel()
}

func (r *trackedRoutine) finish(fn util.Fn) {
	if r.finished {
		return
	}
	r.finished = true
	fn.Invoke()
}

var _ coro.IRoutine = (*trackedRoutine)(nil)
