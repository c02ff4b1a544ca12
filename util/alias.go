package util

type (
	TErrCode = uint16
)

type (
	Fn           func()
	ToBool       func() bool
	FnAnySlc     func([]any)
	FnStr        func(string)
	FnM          func(M)
)

func Default[T any]() (v T) {
	return
}

func (f Fn) Invoke() {
	if f == nil {
		return
	}
	f()
}

func (f FnStr) Invoke(str string) {
	if f == nil {
		return
	}
	f(str)
}
