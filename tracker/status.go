package tracker

type CallStatus struct {
	Id        string  `json:"id"`
	Remaining float64 `json:"remaining"`
}

type Status struct {
	Enabled bool         `json:"enabled"`
	Tasks   []string     `json:"tasks"`
	Calls   []CallStatus `json:"calls"`
}

// Snapshot 当前注册表快照, 顺序与遍历顺序一致
func (t *Tracker) Snapshot() Status {
	s := Status{
		Enabled: t.Enabled(),
		Tasks:   make([]string, 0, t.tasks.Count()),
		Calls:   make([]CallStatus, 0, t.calls.Count()),
	}
	t.tasks.Iter(func(task *trackedTask) {
		s.Tasks = append(s.Tasks, task.id.String())
	})
	t.calls.Iter(func(call *deferredCall) {
		s.Calls = append(s.Calls, CallStatus{
			Id:        call.id.String(),
			Remaining: call.remaining,
		})
	})
	return s
}
