package coro

// IRoutine 协作式例程, 由 Runner 每帧恢复一次
type IRoutine interface {
	// Resume 推进到下一个挂起点, dt 为本帧秒数, 返回 true 表示已结束
	Resume(dt float64) (done bool)
	// Cancel 在当前挂起点结束例程, 可重复调用
	Cancel()
}

// FnRoutine 显式状态机例程, 返回 true 表示结束
type FnRoutine func(dt float64) bool

func (f FnRoutine) Resume(dt float64) bool {
	return f(dt)
}

func (f FnRoutine) Cancel() {
}

// Delay 等待 secs 秒后结束, 至少占用一帧
func Delay(secs float64) IRoutine {
	var elapsed float64
	first := true
	return FnRoutine(func(dt float64) bool {
		if first {
			first = false
			return false
		}
		elapsed += dt
		return elapsed >= secs
	})
}
