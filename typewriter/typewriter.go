package typewriter

import (
	"strings"

	"github.com/15mga/tempo/coro"
	"github.com/15mga/tempo/tracker"
	"github.com/15mga/tempo/util"
	"github.com/google/uuid"
)

type (
	option struct {
		speed float64
		pause float64
	}
	Option func(o *option)
)

// Speed 每个字符之间的间隔秒数
func Speed(secs float64) Option {
	return func(o *option) {
		o.speed = secs
	}
}

// Pause 循环模式下每轮之间的停顿秒数
func Pause(secs float64) Option {
	return func(o *option) {
		o.pause = secs
	}
}

func New(tr *tracker.Tracker, sink util.FnStr, opts ...Option) *Writer {
	o := &option{
		speed: 0.05,
		pause: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Writer{
		option: o,
		tr:     tr,
		sink:   sink,
	}
}

// Writer 逐字输出文本, 输出内容为当前已打出的前缀
type Writer struct {
	option *option
	tr     *tracker.Tracker
	sink   util.FnStr
	typing bool
	task   tracker.Id
}

// TypeOnce 打一遍 text
func (w *Writer) TypeOnce(text string) tracker.Id {
	w.Cancel()
	w.task = w.tr.StartTrackedTask(coro.Go(func(co *coro.Co) {
		w.typeText(co, text)
	}))
	return w.task
}

// TypeLoop 重复打 text, 直到 Stop
func (w *Writer) TypeLoop(text string) tracker.Id {
	w.Cancel()
	w.typing = true
	w.task = w.tr.StartTrackedTask(coro.Go(func(co *coro.Co) {
		for w.typing {
			co.Await(coro.Go(func(inner *coro.Co) {
				w.typeText(inner, text)
			}))
			co.Wait(w.option.pause)
		}
	}))
	return w.task
}

func (w *Writer) typeText(co *coro.Co, text string) {
	w.sink.Invoke("")
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		sb.WriteRune(r)
		w.sink.Invoke(sb.String())
		co.Wait(w.option.speed)
	}
}

// Stop 关闭循环, 当前这一轮会打完
func (w *Writer) Stop() {
	w.typing = false
}

// Cancel 立即停止正在进行的输出
func (w *Writer) Cancel() {
	w.typing = false
	if w.task == uuid.Nil {
		return
	}
	w.tr.StopTrackedTask(w.task)
	w.task = uuid.Nil
}

// SetText 直接输出 text
func (w *Writer) SetText(text string) {
	w.sink.Invoke(text)
}

// Typing 是否有输出任务在进行
func (w *Writer) Typing() bool {
	return w.task != uuid.Nil && w.tr.HasTrackedTask(w.task)
}
