package worker

import (
	"github.com/15mga/tempo/util"
	"github.com/panjf2000/ants/v2"
)

// Go 通过 ants 协程池执行 fn
func Go(fn util.FnAnySlc, params ...any) *util.Err {
	e := ants.Submit(func() {
		fn(params)
	})
	if e != nil {
		return util.WrapErr(util.EcUnavailable, e)
	}
	return nil
}

// Running 协程池中正在运行的协程数
func Running() int {
	return ants.Running()
}
