package tracker

import (
	"math"
	"strconv"
	"sync/atomic"

	"github.com/15mga/tempo"
	"github.com/15mga/tempo/coro"
	"github.com/15mga/tempo/ds"
	"github.com/15mga/tempo/util"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

type Id = uuid.UUID

type (
	trackedTask struct {
		id     Id
		tid    int64
		handle *coro.Handle
	}
	deferredCall struct {
		id        Id
		remaining float64
		callback  util.Fn
	}
)

type (
	option struct {
		cap  int
		name string
	}
	Option func(o *option)
)

// Cap 两个注册表的初始容量
func Cap(c int) Option {
	return func(o *option) {
		o.cap = c
	}
}

// Name 指标中的 tracker 标签, 默认 tracker-<序号>
func Name(name string) Option {
	return func(o *option) {
		o.name = name
	}
}

var (
	_Shared atomic.Pointer[Tracker]
	_Seq    atomic.Int64
)

// SetShared 只有第一次设置生效
func SetShared(t *Tracker) bool {
	if t == nil {
		return false
	}
	return _Shared.CompareAndSwap(nil, t)
}

func Shared() *Tracker {
	return _Shared.Load()
}

func New(runner *coro.Runner, opts ...Option) *Tracker {
	o := &option{
		cap: 32,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.name == "" {
		o.name = "tracker-" + strconv.FormatInt(_Seq.Add(1), 10)
	}
	return &Tracker{
		name:      o.name,
		runner:    runner,
		tasksLive: _TasksLive.WithLabelValues(o.name),
		callsLive: _CallsLive.WithLabelValues(o.name),
		tasks: ds.NewKSet[Id, *trackedTask](o.cap, func(t *trackedTask) Id {
			return t.id
		}),
		calls: ds.NewKSet[Id, *deferredCall](o.cap, func(c *deferredCall) Id {
			return c.id
		}),
		scanBuf:    make([]*deferredCall, 0, o.cap),
		expiredBuf: make([]Id, 0, o.cap),
	}
}

// Tracker 跟踪任务与延迟调用, 非协程安全, 所有方法都应在帧循环协程中调用
type Tracker struct {
	name       string
	runner     *coro.Runner
	tasksLive  prometheus.Gauge
	callsLive  prometheus.Gauge
	tasks      *ds.KSet[Id, *trackedTask]
	calls      *ds.KSet[Id, *deferredCall]
	driver     *coro.Handle
	scanBuf    []*deferredCall
	expiredBuf []Id
}

func (t *Tracker) Name() string {
	return t.name
}

func (t *Tracker) Runner() *coro.Runner {
	return t.runner
}

// StartTrackedTask 包装 routine 并提交给调度器, 结束后自动移除
func (t *Tracker) StartTrackedTask(routine coro.IRoutine) Id {
	return t.start(routine)
}

// StartManagedTask 同 StartTrackedTask
func (t *Tracker) StartManagedTask(routine coro.IRoutine) Id {
	return t.start(routine)
}

func (t *Tracker) start(routine coro.IRoutine) Id {
	if routine == nil {
		tempo.Error2(util.EcNil, util.M{
			"routine": nil,
		})
		return uuid.Nil
	}
	id := uuid.New()
	task := &trackedTask{
		id: id,
	}
	task.tid = tempo.TC(0, util.M{
		"task": id.String(),
	}, false)
	task.handle = t.runner.Start(&trackedRoutine{
		inner: routine,
		onComplete: func() {
			t.remove(task, evtCompleted, "task completed")
		},
		onCancel: func() {
			// 调度器直接停止, 如 Runner.StopAll
			t.remove(task, evtStopped, "task stopped by runner")
		},
	})
	_ = t.tasks.Add(task)
	_TasksTotal.WithLabelValues(evtStarted).Inc()
	t.tasksLive.Inc()
	tempo.Debug("task started", util.M{
		"id": id.String(),
	})
	return id
}

func (t *Tracker) remove(task *trackedTask, evt, msg string) {
	cur, ok := t.tasks.Get(task.id)
	if !ok || cur != task {
		return
	}
	t.tasks.Del(task.id)
	_TasksTotal.WithLabelValues(evt).Inc()
	t.tasksLive.Dec()
	tempo.TI(task.tid, msg, util.M{
		"id": task.id.String(),
	})
}

// StopTrackedTask 未知 id 忽略
func (t *Tracker) StopTrackedTask(id Id) {
	task, ok := t.tasks.Del(id)
	if !ok {
		return
	}
	t.runner.Stop(task.handle)
	_TasksTotal.WithLabelValues(evtStopped).Inc()
	t.tasksLive.Dec()
	tempo.TI(task.tid, "task stopped", util.M{
		"id": id.String(),
	})
}

func (t *Tracker) AbortAllTrackedTasks() {
	count := t.tasks.Count()
	if count == 0 {
		return
	}
	tasks := t.tasks.Snapshot(nil)
	t.tasks.Reset()
	for _, task := range tasks {
		t.runner.Stop(task.handle)
	}
	_TasksTotal.WithLabelValues(evtStopped).Add(float64(count))
	t.tasksLive.Sub(float64(count))
	tempo.Debug("abort all tasks", util.M{
		"count": count,
	})
}

// AddDeferredCall secs 秒后调用 cb 一次, 负数按 0 处理, 最早在下一帧触发
func (t *Tracker) AddDeferredCall(secs float64, cb util.Fn) Id {
	if secs < 0 || math.IsNaN(secs) {
		secs = 0
	}
	id := uuid.New()
	_ = t.calls.Add(&deferredCall{
		id:        id,
		remaining: secs,
		callback:  cb,
	})
	_CallsTotal.WithLabelValues(evtAdded).Inc()
	t.callsLive.Inc()
	tempo.Debug("started deferred call", util.M{
		"id":   id.String(),
		"secs": secs,
	})
	return id
}

// CancelDeferredCall 未知 id 忽略, 取消后回调不会执行
func (t *Tracker) CancelDeferredCall(id Id) {
	if _, ok := t.calls.Del(id); !ok {
		return
	}
	_CallsTotal.WithLabelValues(evtCancelled).Inc()
	t.callsLive.Dec()
}

// AbortAllDeferredCalls 清空, 不执行任何回调
func (t *Tracker) AbortAllDeferredCalls() {
	count := t.calls.Count()
	if count == 0 {
		return
	}
	t.calls.Reset()
	_CallsTotal.WithLabelValues(evtCancelled).Add(float64(count))
	t.callsLive.Sub(float64(count))
	tempo.Debug("abort all deferred calls", util.M{
		"count": count,
	})
}

// Enable 启动每帧驱动, 驱动仍在运行时无效, 被调度器停止后会重新启动
func (t *Tracker) Enable() {
	if t.Enabled() {
		return
	}
	t.driver = t.runner.Start(coro.FnRoutine(func(dt float64) bool {
		t.tick(dt)
		return false
	}))
}

// Disable 停止每帧驱动, 注册表保留, 延迟调用不再计时
func (t *Tracker) Disable() {
	if t.driver == nil {
		return
	}
	t.runner.Stop(t.driver)
	t.driver = nil
}

func (t *Tracker) Enabled() bool {
	return t.driver != nil && t.driver.Running()
}

func (t *Tracker) tick(dt float64) {
	if t.calls.Count() == 0 {
		return
	}
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}

	calls := t.calls.Snapshot(t.scanBuf)
	expired := t.expiredBuf[:0]
	for i, call := range calls {
		calls[i] = nil
		call.remaining -= dt
		if call.remaining <= 0 {
			expired = append(expired, call.id)
		}
	}
	t.scanBuf = calls[:0]

	for _, id := range expired {
		call, ok := t.calls.Del(id)
		if !ok {
			continue
		}
		_CallsTotal.WithLabelValues(evtFired).Inc()
		t.callsLive.Dec()
		t.fire(call)
	}
	t.expiredBuf = expired[:0]
}

func (t *Tracker) fire(call *deferredCall) {
	if call.callback == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			tempo.Error(util.RecoverErr(r, util.M{
				"id": call.id.String(),
			}))
		}
	}()
	call.callback()
}

func (t *Tracker) HasTrackedTask(id Id) bool {
	return t.tasks.Has(id)
}

func (t *Tracker) HasDeferredCall(id Id) bool {
	return t.calls.Has(id)
}

// Remaining 延迟调用剩余秒数
func (t *Tracker) Remaining(id Id) (float64, bool) {
	call, ok := t.calls.Get(id)
	if !ok {
		return 0, false
	}
	return call.remaining, true
}

func (t *Tracker) TrackedCount() int {
	return t.tasks.Count()
}

func (t *Tracker) DeferredCount() int {
	return t.calls.Count()
}
