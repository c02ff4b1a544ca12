package coro

import (
	"github.com/15mga/tempo"
	"github.com/15mga/tempo/util"
	"github.com/15mga/tempo/worker"
)

type (
	resumeMsg struct {
		dt     float64
		cancel bool
	}
	cancelSignal struct{}
)

// Go 创建协程例程, body 在首次 Resume 时开始执行.
// body 与调用 Resume 的协程交替运行, 任一时刻只有一方在执行
func Go(body func(co *Co)) *Co {
	return &Co{
		body:     body,
		resumeCh: make(chan resumeMsg),
		yieldCh:  make(chan bool),
	}
}

type Co struct {
	body      func(co *Co)
	resumeCh  chan resumeMsg
	yieldCh   chan bool
	dt        float64
	started   bool
	done      bool
	cancelled bool
}

// Dt 最近一次恢复时的帧间隔
func (c *Co) Dt() float64 {
	return c.dt
}

func (c *Co) Done() bool {
	return c.done
}

func (c *Co) Cancelled() bool {
	return c.cancelled
}

func (c *Co) Resume(dt float64) bool {
	if c.done {
		return true
	}
	if !c.started {
		c.started = true
		err := worker.Go(c.run)
		if err != nil {
			tempo.Error(err)
			c.done = true
			return true
		}
	}
	c.resumeCh <- resumeMsg{dt: dt}
	c.done = <-c.yieldCh
	return c.done
}

// Cancel 不能在 body 内部对自身调用
func (c *Co) Cancel() {
	if c.done {
		return
	}
	c.cancelled = true
	c.done = true
	if !c.started {
		return
	}
	c.resumeCh <- resumeMsg{cancel: true}
	<-c.yieldCh
}

func (c *Co) run(_ []any) {
	msg := <-c.resumeCh
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(cancelSignal); !ok {
				tempo.Error(util.RecoverErr(r, nil))
			}
		}
		c.yieldCh <- true
	}()
	c.dt = msg.dt
	c.body(c)
}

func (c *Co) suspend() float64 {
	c.yieldCh <- false
	msg := <-c.resumeCh
	if msg.cancel {
		panic(cancelSignal{})
	}
	c.dt = msg.dt
	return msg.dt
}

// Yield 挂起到下一帧, 返回该帧的 dt
func (c *Co) Yield() float64 {
	return c.suspend()
}

// Wait 挂起直到累计 dt 达到 secs, 至少挂起一帧
func (c *Co) Wait(secs float64) {
	var elapsed float64
	for {
		elapsed += c.suspend()
		if elapsed >= secs {
			return
		}
	}
}

// WaitUntil 每帧检查一次 fn, 为 true 时继续
func (c *Co) WaitUntil(fn util.ToBool) {
	for !fn() {
		c.suspend()
	}
}

// Await 在当前帧启动 inner 并等待其结束, 外层被取消时 inner 一并取消
func (c *Co) Await(inner IRoutine) {
	if inner == nil {
		return
	}
	finished := false
	defer func() {
		if !finished {
			inner.Cancel()
		}
	}()
	dt := 0.0
	for {
		if inner.Resume(dt) {
			finished = true
			return
		}
		dt = c.suspend()
	}
}
