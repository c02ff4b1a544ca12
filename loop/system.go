package loop

// ISystem 挂在 Loop 上按帧更新的系统
type ISystem interface {
	Type() string
	OnStart(l *Loop)
	OnUpdate(dt float64)
	OnStop()
}

// System 空实现, 嵌入后按需覆盖
type System struct {
	typ  string
	loop *Loop
}

func NewSystem(typ string) System {
	return System{typ: typ}
}

func (s *System) Type() string {
	return s.typ
}

func (s *System) Loop() *Loop {
	return s.loop
}

func (s *System) OnStart(l *Loop) {
	s.loop = l
}

func (s *System) OnUpdate(float64) {
}

func (s *System) OnStop() {
}
