package util

// M 日志与错误参数
type M map[string]any

// Copy 浅拷贝, 异步写日志前使用
func (m M) Copy() M {
	if m == nil {
		return nil
	}
	n := make(M, len(m))
	m.CopyTo(n)
	return n
}

func (m M) CopyTo(n M) {
	for k, v := range m {
		n[k] = v
	}
}
