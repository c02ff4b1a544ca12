package util

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	Cpu       = "cpu"
	Memory    = "mem"
	Disk      = "disk"
	Goroutine = "goroutine"
)

func GetCpuPercent(interval time.Duration) (float64, *Err) {
	percent, e := cpu.Percent(interval, false)
	if e != nil {
		return 0, WrapErr(EcServiceErr, e)
	}
	if len(percent) == 0 {
		return 0, NewErr(EcEmpty, M{"sample": Cpu})
	}
	return percent[0], nil
}

func GetMemPercent() (float64, *Err) {
	memInfo, e := mem.VirtualMemory()
	if e != nil {
		return 0, WrapErr(EcServiceErr, e)
	}
	return memInfo.UsedPercent, nil
}

func GetDiskPercent() (float64, *Err) {
	parts, e := disk.Partitions(false)
	if e != nil {
		return 0, WrapErr(EcServiceErr, e)
	}
	if len(parts) == 0 {
		return 0, NewErr(EcEmpty, M{"sample": Disk})
	}
	diskInfo, e := disk.Usage(parts[0].Mountpoint)
	if e != nil {
		return 0, WrapErr(EcServiceErr, e)
	}
	return diskInfo.UsedPercent, nil
}

// StartProfile 定时采样主机状态, ctx 取消后停止
func StartProfile(ctx context.Context, dur time.Duration, receiver FnM) {
	go func() {
		receiver(Sampling())
		ticker := time.NewTicker(dur)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				receiver(Sampling())
			}
		}
	}()
}

// Sampling 采样失败的项不会出现在结果中
func Sampling() M {
	status := M{
		Goroutine: uint32(runtime.NumGoroutine()),
	}
	if v, err := GetMemPercent(); err == nil {
		status[Memory] = float32(v)
	}
	if v, err := GetDiskPercent(); err == nil {
		status[Disk] = float32(v)
	}
	if runtime.GOOS != "darwin" { //暂时不支持
		if v, err := GetCpuPercent(0); err == nil {
			status[Cpu] = float32(v)
		}
	}
	return status
}
