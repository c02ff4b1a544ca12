package worker

import (
	"sync"

	"github.com/15mga/tempo"
	"github.com/15mga/tempo/util"
)

// NewWorker 单协程按 Push 顺序处理, 每次取走全部待处理数据
func NewWorker[T any](fn func(T)) *Worker[T] {
	return &Worker[T]{
		signal: make(chan struct{}, 1),
		fn:     fn,
	}
}

type Worker[T any] struct {
	mtx      sync.Mutex
	pending  []T
	signal   chan struct{}
	fn       func(T)
	disposed bool
}

func (w *Worker[T]) Start() {
	go w.loop()
}

// Dispose 已加入的数据仍会处理完
func (w *Worker[T]) Dispose() {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	if w.disposed {
		return
	}
	w.disposed = true
	close(w.signal)
}

func (w *Worker[T]) Push(item T) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	if w.disposed {
		return
	}
	w.pending = append(w.pending, item)
	select {
	case w.signal <- struct{}{}:
	default:
	}
}

func (w *Worker[T]) loop() {
	var batch []T
	for range w.signal {
		for {
			w.mtx.Lock()
			batch, w.pending = w.pending, batch[:0]
			w.mtx.Unlock()
			if len(batch) == 0 {
				break
			}
			for i, item := range batch {
				batch[i] = util.Default[T]()
				w.process(item)
			}
		}
	}
}

func (w *Worker[T]) process(item T) {
	defer func() {
		if r := recover(); r != nil {
			tempo.Error(util.RecoverErr(r, nil))
		}
	}()
	w.fn(item)
}
