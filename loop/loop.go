package loop

import (
	"context"
	"sync"
	"time"

	"github.com/15mga/tempo"
	"github.com/15mga/tempo/ds"
	"github.com/15mga/tempo/util"
)

type (
	option struct {
		maxFrame      int64
		tickDur       time.Duration
		systems       []ISystem
		beforeDispose FnLoop
	}
	Option func(o *option)
	FnLoop func(*Loop)
)

func MaxFrame(frames int64) Option {
	return func(o *option) {
		o.maxFrame = frames
	}
}

// TickDur 帧间隔, 不大于 0 时保留默认值
func TickDur(dur time.Duration) Option {
	return func(o *option) {
		if dur <= 0 {
			tempo.Warn2(util.EcParamsErr, util.M{
				"dur": dur.String(),
			})
			return
		}
		o.tickDur = dur
	}
}

func Systems(systems ...ISystem) Option {
	return func(o *option) {
		o.systems = systems
	}
}

func BeforeDispose(fn FnLoop) Option {
	return func(o *option) {
		o.beforeDispose = fn
	}
}

func New(opts ...Option) *Loop {
	o := &option{
		tickDur: time.Millisecond * 16,
	}
	for _, opt := range opts {
		opt(o)
	}
	ctx, ccl := context.WithCancel(tempo.Ctx())
	c := 256
	l := &Loop{
		option:       o,
		systems:      o.systems,
		typeToSystem: make(map[string]ISystem, len(o.systems)),
		ctx:          ctx,
		ccl:          ccl,
		sign:         make(chan struct{}, 1),
		done:         make(chan struct{}),
		swap:         make([]util.Fn, 0, c),
		buffer:       make([]util.Fn, 0, c),
		before:       ds.NewFnLink(),
		after:        ds.NewFnLink(),
	}
	for _, system := range o.systems {
		l.typeToSystem[system.Type()] = system
	}
	return l
}

// Loop 帧循环, 所有 system 都在同一个协程中更新
type Loop struct {
	option       *option
	currFrame    int64
	totalFrameMs int64
	maxMs        int64
	deltaSecs    float64
	startTime    time.Time
	lastTick     time.Time
	systems      []ISystem
	typeToSystem map[string]ISystem
	before       *ds.FnLink
	after        *ds.FnLink
	ctx          context.Context
	ccl          context.CancelFunc
	mtx          sync.Mutex
	buffer       []util.Fn
	swap         []util.Fn
	sign         chan struct{}
	done         chan struct{}
	started      bool
	systemsOn    bool
}

func (l *Loop) Num() int64 {
	return l.currFrame
}

func (l *Loop) DeltaSecs() float64 {
	return l.deltaSecs
}

func (l *Loop) StartTime() time.Time {
	return l.startTime
}

// Before 每帧开始, system 更新前调用, 调用后清空
func (l *Loop) Before() *ds.FnLink {
	return l.before
}

// After 每帧末尾调用, 调用后清空
func (l *Loop) After() *ds.FnLink {
	return l.after
}

// GetSystem 注意协程安全
func (l *Loop) GetSystem(typ string) (ISystem, bool) {
	sys, ok := l.typeToSystem[typ]
	return sys, ok
}

// Done 循环协程退出后关闭
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) startSystems() {
	if l.systemsOn {
		return
	}
	l.systemsOn = true
	for _, system := range l.systems {
		system.OnStart(l)
		tempo.Info("start system", util.M{
			"type": system.Type(),
		})
	}
}

func (l *Loop) stopSystems() {
	if !l.systemsOn {
		return
	}
	l.systemsOn = false
	for i := len(l.systems) - 1; i >= 0; i-- {
		system := l.systems[i]
		tempo.Info("stop system", util.M{
			"type": system.Type(),
		})
		system.OnStop()
	}
}

// Start 启动循环协程, 按 tickDur 推进帧
func (l *Loop) Start() {
	if l.started {
		return
	}
	l.started = true
	completeCh := tempo.BeforeExitCh("stop loop")
	go func() {
		defer func() {
			if l.option.beforeDispose != nil {
				l.option.beforeDispose(l)
			}
			l.stopSystems()
			if l.currFrame > 0 {
				tempo.Info("frames", util.M{
					"total":   l.totalFrameMs,
					"average": l.totalFrameMs / l.currFrame,
					"max":     l.maxMs,
					"frames":  l.currFrame,
				})
			}
			close(l.done)
			close(completeCh)
		}()

		l.startTime = time.Now()
		l.lastTick = l.startTime
		l.startSystems()

		ctx := l.ctx
		ticker := time.NewTicker(l.option.tickDur)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				tempo.Debug("ctx done", nil)
				return
			case now := <-ticker.C:
				dt := now.Sub(l.lastTick).Seconds()
				l.lastTick = now
				l.Tick(dt)
				if l.option.maxFrame > 0 && l.currFrame >= l.option.maxFrame {
					return
				}
			case <-l.sign:
				l.drain()
			}
		}
	}()
}

func (l *Loop) Stop() {
	l.ccl()
}

// Tick 推进一帧, dt 为距上一帧的秒数. 未 Start 时可由宿主手动驱动
func (l *Loop) Tick(dt float64) {
	if dt < 0 {
		dt = 0
	}
	if !l.systemsOn {
		l.startSystems()
	}
	begin := time.Now()
	l.currFrame++
	l.deltaSecs = dt
	l.drain()
	l.before.InvokeAndReset()
	for _, s := range l.systems {
		s.OnUpdate(dt)
	}
	l.after.InvokeAndReset()
	frameDur := time.Since(begin)
	ms := frameDur.Milliseconds()
	l.totalFrameMs += ms
	if ms > l.maxMs {
		l.maxMs = ms
	}
	_TicksTotal.Inc()
	_TickDuration.Observe(frameDur.Seconds())
}

// Post 协程安全, fn 在循环协程中执行
func (l *Loop) Post(fn util.Fn) {
	if fn == nil {
		return
	}
	l.mtx.Lock()
	l.buffer = append(l.buffer, fn)
	l.mtx.Unlock()

	select {
	case l.sign <- struct{}{}:
	default:
	}
}

// Call 投递 fn 并等待其在循环协程中执行完毕
func (l *Loop) Call(ctx context.Context, fn util.Fn) *util.Err {
	select {
	case <-l.done:
		return util.NewErr(util.EcClosed, nil)
	default:
	}
	ch := make(chan struct{})
	l.Post(func() {
		fn.Invoke()
		close(ch)
	})
	select {
	case <-ch:
		return nil
	case <-l.done:
		return util.NewErr(util.EcClosed, nil)
	case <-ctx.Done():
		return util.WrapErr(util.EcTimeout, ctx.Err())
	}
}

// AddSystem 协程安全, system 插入到类型为 before 的 system 之前, before 不存在则追加到末尾
func (l *Loop) AddSystem(system ISystem, before string) {
	l.Post(func() {
		l.onAddSystem(system, before)
	})
}

// DelSystem 协程安全
func (l *Loop) DelSystem(typ string) {
	l.Post(func() {
		l.onDelSystem(typ)
	})
}

func (l *Loop) onAddSystem(system ISystem, before string) {
	t := system.Type()
	if _, ok := l.typeToSystem[t]; ok {
		tempo.Error2(util.EcExist, util.M{
			"system": t,
		})
		return
	}
	idx := len(l.systems)
	for i, s := range l.systems {
		if s.Type() == before {
			idx = i
			break
		}
	}
	if l.systemsOn {
		system.OnStart(l)
		tempo.Info("start system", util.M{
			"type": t,
		})
	}
	systems := make([]ISystem, 0, len(l.systems)+1)
	systems = append(systems, l.systems[:idx]...)
	systems = append(systems, system)
	l.systems = append(systems, l.systems[idx:]...)
	l.typeToSystem[t] = system
}

func (l *Loop) onDelSystem(typ string) {
	for i, s := range l.systems {
		if s.Type() != typ {
			continue
		}
		if l.systemsOn {
			s.OnStop()
			tempo.Info("stop system", util.M{
				"type": typ,
			})
		}
		l.systems = append(l.systems[:i:i], l.systems[i+1:]...)
		delete(l.typeToSystem, typ)
		return
	}
}

func (l *Loop) drain() {
	for {
		l.mtx.Lock()
		if len(l.buffer) == 0 {
			l.mtx.Unlock()
			return
		}
		l.swap, l.buffer = l.buffer, l.swap[:0]
		l.mtx.Unlock()

		for i, fn := range l.swap {
			l.swap[i] = nil
			fn()
		}
	}
}
