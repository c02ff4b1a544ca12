package coro

import (
	"testing"

	"github.com/15mga/tempo/loop"
	"github.com/stretchr/testify/assert"
)

func TestFnRoutine(t *testing.T) {
	r := NewRunner()
	steps := 0
	h := r.Start(FnRoutine(func(dt float64) bool {
		steps++
		return steps == 3
	}))
	assert.True(t, h.Running())
	assert.Equal(t, 0, steps)

	r.Update(0.1)
	r.Update(0.1)
	assert.Equal(t, 2, steps)
	assert.Equal(t, 1, r.Count())

	r.Update(0.1)
	assert.Equal(t, 3, steps)
	assert.True(t, h.Done())
	assert.Equal(t, 0, r.Count())

	r.Update(0.1)
	assert.Equal(t, 3, steps)
}

func TestStartNil(t *testing.T) {
	r := NewRunner()
	assert.Nil(t, r.Start(nil))
	assert.Equal(t, 0, r.Count())
}

func TestStartDuringUpdate(t *testing.T) {
	r := NewRunner()
	var inner int
	r.Start(FnRoutine(func(dt float64) bool {
		r.Start(FnRoutine(func(dt float64) bool {
			inner++
			return true
		}))
		return true
	}))
	r.Update(0)
	assert.Equal(t, 0, inner)
	assert.Equal(t, 1, r.Count())
	r.Update(0)
	assert.Equal(t, 1, inner)
	assert.Equal(t, 0, r.Count())
}

func TestCoYieldAndWait(t *testing.T) {
	r := NewRunner()
	var log []string
	h := r.Start(Go(func(co *Co) {
		log = append(log, "begin")
		co.Yield()
		log = append(log, "yield")
		co.Wait(1)
		log = append(log, "wait")
	}))

	r.Update(0.5)
	assert.Equal(t, []string{"begin"}, log)
	r.Update(0.5)
	assert.Equal(t, []string{"begin", "yield"}, log)
	r.Update(0.5)
	assert.Equal(t, []string{"begin", "yield"}, log)
	r.Update(0.5)
	assert.Equal(t, []string{"begin", "yield", "wait"}, log)
	assert.True(t, h.Done())
}

func TestCoWaitZeroTakesOneTick(t *testing.T) {
	r := NewRunner()
	passed := false
	r.Start(Go(func(co *Co) {
		co.Wait(0)
		passed = true
	}))
	r.Update(0)
	assert.False(t, passed)
	r.Update(0)
	assert.True(t, passed)
}

func TestCoWaitUntil(t *testing.T) {
	r := NewRunner()
	ready := false
	passed := false
	r.Start(Go(func(co *Co) {
		co.WaitUntil(func() bool {
			return ready
		})
		passed = true
	}))
	r.Update(0)
	r.Update(0)
	assert.False(t, passed)
	ready = true
	r.Update(0)
	assert.True(t, passed)
}

func TestCoCancelAtSuspension(t *testing.T) {
	r := NewRunner()
	var log []string
	h := r.Start(Go(func(co *Co) {
		defer func() {
			log = append(log, "defer")
		}()
		log = append(log, "begin")
		co.Yield()
		log = append(log, "after")
	}))
	r.Update(0)
	r.Stop(h)
	assert.True(t, h.Stopped())
	assert.Equal(t, []string{"begin", "defer"}, log)
	assert.Equal(t, 0, r.Count())

	r.Stop(h)
	r.Update(0)
	assert.Equal(t, []string{"begin", "defer"}, log)
}

func TestCoCancelBeforeStart(t *testing.T) {
	r := NewRunner()
	ran := false
	h := r.Start(Go(func(co *Co) {
		ran = true
	}))
	r.Stop(h)
	r.Update(0)
	assert.False(t, ran)
}

func TestStopSelfWhileResuming(t *testing.T) {
	r := NewRunner()
	var h *Handle
	var log []string
	h = r.Start(Go(func(co *Co) {
		defer func() {
			log = append(log, "defer")
		}()
		r.Stop(h)
		log = append(log, "stopped")
		co.Yield()
		log = append(log, "after")
	}))
	r.Update(0)
	assert.Equal(t, []string{"stopped", "defer"}, log)
	assert.True(t, h.Stopped())
	assert.Equal(t, 0, r.Count())
}

func TestCoPanicCompletes(t *testing.T) {
	r := NewRunner()
	h := r.Start(Go(func(co *Co) {
		co.Yield()
		panic("boom")
	}))
	r.Update(0)
	r.Update(0)
	assert.True(t, h.Done())
	assert.Equal(t, 0, r.Count())
}

func TestFnRoutinePanicCompletes(t *testing.T) {
	r := NewRunner()
	h := r.Start(FnRoutine(func(dt float64) bool {
		panic("boom")
	}))
	r.Update(0)
	assert.True(t, h.Done())
}

func TestAwait(t *testing.T) {
	r := NewRunner()
	var log []string
	h := r.Start(Go(func(co *Co) {
		log = append(log, "outer")
		co.Await(Go(func(inner *Co) {
			log = append(log, "inner")
			inner.Yield()
			log = append(log, "inner done")
		}))
		log = append(log, "outer done")
	}))
	r.Update(0)
	assert.Equal(t, []string{"outer", "inner"}, log)
	r.Update(0)
	assert.Equal(t, []string{"outer", "inner", "inner done", "outer done"}, log)
	assert.True(t, h.Done())
}

func TestAwaitCancelInner(t *testing.T) {
	r := NewRunner()
	innerDeferred := false
	h := r.Start(Go(func(co *Co) {
		co.Await(Go(func(inner *Co) {
			defer func() {
				innerDeferred = true
			}()
			inner.Wait(10)
		}))
	}))
	r.Update(1)
	r.Update(1)
	r.Stop(h)
	assert.True(t, innerDeferred)
}

func TestDelay(t *testing.T) {
	r := NewRunner()
	h := r.Start(Delay(1))
	r.Update(0.5)
	r.Update(0.5)
	assert.True(t, h.Running())
	r.Update(0.5)
	assert.True(t, h.Done())
}

func TestStopAll(t *testing.T) {
	r := NewRunner()
	var deferred int
	for i := 0; i < 3; i++ {
		r.Start(Go(func(co *Co) {
			defer func() {
				deferred++
			}()
			co.Wait(10)
		}))
	}
	r.Update(0)
	r.StopAll()
	assert.Equal(t, 3, deferred)
	assert.Equal(t, 0, r.Count())
}

func TestRunnerAsSystem(t *testing.T) {
	r := NewRunner()
	l := loop.New(loop.Systems(r))
	steps := 0
	r.Start(FnRoutine(func(dt float64) bool {
		steps++
		return false
	}))
	l.Tick(0.1)
	l.Tick(0.1)
	assert.Equal(t, 2, steps)
	l.DelSystem(SystemType)
	l.Tick(0.1)
	assert.Equal(t, 2, steps)
	assert.Equal(t, 0, r.Count())
}
