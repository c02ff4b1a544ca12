package coro

import (
	"github.com/15mga/tempo"
	"github.com/15mga/tempo/ds"
	"github.com/15mga/tempo/loop"
	"github.com/15mga/tempo/util"
)

const (
	SystemType = "coro"
)

type handleState uint8

const (
	stateRunning handleState = iota
	stateStopped
	stateDone
)

// Handle Runner 返回的例程句柄, 用于停止例程
type Handle struct {
	id       int64
	routine  IRoutine
	state    handleState
	resuming bool
}

func (h *Handle) Id() int64 {
	return h.id
}

func (h *Handle) Running() bool {
	return h.state == stateRunning
}

func (h *Handle) Stopped() bool {
	return h.state == stateStopped
}

func (h *Handle) Done() bool {
	return h.state == stateDone
}

type (
	runnerOption struct {
		cap int
	}
	RunnerOption func(o *runnerOption)
)

func RunnerCap(c int) RunnerOption {
	return func(o *runnerOption) {
		o.cap = c
	}
}

func NewRunner(opts ...RunnerOption) *Runner {
	o := &runnerOption{
		cap: 64,
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Runner{
		handles: ds.NewKSet[int64, *Handle](o.cap, func(h *Handle) int64 {
			return h.id
		}),
		buf: make([]*Handle, 0, o.cap),
	}
}

// Runner 协作式调度器, 非协程安全, 只能在帧循环协程中使用
type Runner struct {
	loop.System
	handles *ds.KSet[int64, *Handle]
	buf     []*Handle
	nextId  int64
}

func (r *Runner) Type() string {
	return SystemType
}

func (r *Runner) OnUpdate(dt float64) {
	r.Update(dt)
}

func (r *Runner) OnStop() {
	r.StopAll()
}

// Start 下一次 Update 时首次恢复
func (r *Runner) Start(routine IRoutine) *Handle {
	if routine == nil {
		tempo.Error2(util.EcNil, util.M{
			"routine": nil,
		})
		return nil
	}
	r.nextId++
	h := &Handle{
		id:      r.nextId,
		routine: routine,
	}
	_ = r.handles.Add(h)
	return h
}

// Stop 在例程当前挂起点结束它, 对已结束的句柄无效
func (r *Runner) Stop(h *Handle) {
	if h == nil || h.state != stateRunning {
		return
	}
	h.state = stateStopped
	r.handles.Del(h.id)
	if h.resuming {
		return
	}
	h.routine.Cancel()
}

func (r *Runner) StopAll() {
	if r.handles.Count() == 0 {
		return
	}
	for _, h := range r.handles.Snapshot(nil) {
		r.Stop(h)
	}
}

func (r *Runner) Count() int {
	return r.handles.Count()
}

func (r *Runner) Has(h *Handle) bool {
	if h == nil {
		return false
	}
	return r.handles.Has(h.id)
}

// Update 每个运行中的例程恢复一次, 本次 Update 中新启动的例程下一帧才恢复
func (r *Runner) Update(dt float64) {
	if r.handles.Count() == 0 {
		return
	}
	handles := r.handles.Snapshot(r.buf)
	r.buf = handles[:0]
	for i, h := range handles {
		handles[i] = nil
		r.resume(h, dt)
	}
}

func (r *Runner) resume(h *Handle, dt float64) {
	if h.state != stateRunning {
		return
	}
	h.resuming = true
	done := r.safeResume(h, dt)
	h.resuming = false
	switch h.state {
	case stateStopped:
		// 恢复期间被停止
		if !done {
			h.routine.Cancel()
		}
	case stateRunning:
		if done {
			h.state = stateDone
			r.handles.Del(h.id)
		}
	}
}

func (r *Runner) safeResume(h *Handle, dt float64) (done bool) {
	defer func() {
		if rc := recover(); rc != nil {
			tempo.Error(util.RecoverErr(rc, util.M{
				"handle": h.id,
			}))
			done = true
		}
	}()
	return h.routine.Resume(dt)
}
