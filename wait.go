package tempo

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/15mga/tempo/util"
)

type waitInfo struct {
	name string
	fn   util.Fn
}

var (
	_Ctx, _Cancel  = context.WithCancel(context.Background())
	_WaitMtx       sync.Mutex
	_WaitExitInfos = make([]*waitInfo, 0, 1)
	_ExitTimeout   = time.Second * 60
)

// Ctx 进程级 context, Exit 或收到退出信号后取消
func Ctx() context.Context {
	return _Ctx
}

func Exit() {
	_Cancel()
}

func SetExitTimeout(dur time.Duration) {
	_ExitTimeout = dur
}

// BeforeExitFn 退出前等待 fn 执行完毕
func BeforeExitFn(name string, fn util.Fn) {
	_WaitMtx.Lock()
	_WaitExitInfos = append(_WaitExitInfos, &waitInfo{
		name: name,
		fn:   fn,
	})
	_WaitMtx.Unlock()
}

// BeforeExitCh 退出前等待返回的 channel 被关闭
func BeforeExitCh(name string) chan<- struct{} {
	ch := make(chan struct{})
	BeforeExitFn(name, func() {
		<-ch
	})
	return ch
}

// WaitExit 阻塞到收到信号或 Ctx 被取消, 然后并行等待所有退出项, 最多等待 SetExitTimeout
func WaitExit() {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(signalCh)
	select {
	case <-_Ctx.Done():
		Info("context done", nil)
	case s := <-signalCh:
		Info("signal notify", util.M{
			"signal": s.String(),
		})
		_Cancel()
	}

	_WaitMtx.Lock()
	infos := append([]*waitInfo(nil), _WaitExitInfos...)
	_WaitMtx.Unlock()

	var (
		wg      sync.WaitGroup
		doneMtx sync.Mutex
		waiting = make(map[string]struct{}, len(infos))
	)
	for _, info := range infos {
		waiting[info.name] = struct{}{}
		wg.Add(1)
		go func(info *waitInfo) {
			defer wg.Done()
			info.fn()
			doneMtx.Lock()
			delete(waiting, info.name)
			doneMtx.Unlock()
			Info("exit", util.M{
				"name": info.name,
			})
		}(info)
	}
	allDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(allDone)
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	timeout := time.NewTimer(_ExitTimeout)
	defer timeout.Stop()
	for {
		select {
		case <-allDone:
			Info("exit complete", nil)
			return
		case <-ticker.C:
			doneMtx.Lock()
			names := make([]string, 0, len(waiting))
			for name := range waiting {
				names = append(names, name)
			}
			doneMtx.Unlock()
			Info("waiting exit", util.M{
				"names": names,
			})
		case <-timeout.C:
			Info("exit timeout", nil)
			return
		}
	}
}
