package tempo

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/15mga/tempo/sid"
	"github.com/15mga/tempo/util"
)

// ILogger 日志输出
type ILogger interface {
	Log(level TLevel, msg, caller string, stack []byte, params util.M)
	// Trace 开始一条链路
	Trace(pid, tid int64, caller string, params util.M)
	// Span 链路内的日志
	Span(level TLevel, tid int64, msg, caller string, stack []byte, params util.M)
}

type TLevel = int64

const (
	TDebug TLevel = 1 << iota
	TInfo
	TWarn
	TError
	TFatal
)

const (
	SDebug = "debug"
	SInfo  = "info"
	SWarn  = "warn"
	SError = "error"
	SFatal = "fatal"
)

const DefTimeFormatter = "2006-01-02 15:04:05.999"

var (
	TestLevels = []TLevel{TDebug, TInfo, TWarn, TError, TFatal}
	DevLevels  = []TLevel{TInfo, TWarn, TError, TFatal}

	_LvlToStr = map[TLevel]string{
		TDebug: SDebug,
		TInfo:  SInfo,
		TWarn:  SWarn,
		TError: SError,
		TFatal: SFatal,
	}
)

// StrToLevel 不区分大小写, 未知为 info
func StrToLevel(s string) TLevel {
	s = strings.ToLower(s)
	for l, name := range _LvlToStr {
		if name == s {
			return l
		}
	}
	return TInfo
}

func LevelToStr(l TLevel) string {
	if s, ok := _LvlToStr[l]; ok {
		return s
	}
	return SInfo
}

func StrLvlToMask(levels ...string) TLevel {
	var mask TLevel
	for _, level := range levels {
		mask |= StrToLevel(level)
	}
	return mask
}

func LvlToMask(levels ...TLevel) TLevel {
	var mask TLevel
	for _, level := range levels {
		mask |= level
	}
	return mask
}

// LvlEnabled level 是否在 mask 中
func LvlEnabled(level, mask TLevel) bool {
	return level&mask != 0
}

var _Loggers []ILogger

// AddLogger 只应在启动时调用
func AddLogger(logger ILogger) {
	_Loggers = append(_Loggers, logger)
}

func ClearLoggers() {
	_Loggers = nil
}

// 调用链: Debug/TI 等 -> log/logErr/span -> GetCaller
const callerSkip = 3

func log(level TLevel, msg string, stack []byte, params util.M) {
	if len(_Loggers) == 0 {
		return
	}
	caller := GetCaller(callerSkip)
	for _, l := range _Loggers {
		l.Log(level, msg, caller, stack, params)
	}
}

func logErr(level TLevel, err *util.Err) {
	if len(_Loggers) == 0 {
		return
	}
	caller := GetCaller(callerSkip)
	for _, l := range _Loggers {
		l.Log(level, err.String(), caller, err.Stack(), err.Params())
	}
}

func Debug(msg string, params util.M) {
	log(TDebug, msg, nil, params)
}

func Info(msg string, params util.M) {
	log(TInfo, msg, nil, params)
}

func Warn(err *util.Err) {
	if err != nil {
		logErr(TWarn, err)
	}
}

func Warn2(code util.TErrCode, params util.M) {
	logErr(TWarn, util.NewErr(code, params))
}

func Error(err *util.Err) {
	if err != nil {
		logErr(TError, err)
	}
}

func Error2(code util.TErrCode, params util.M) {
	logErr(TError, util.NewErr(code, params))
}

func Error3(code util.TErrCode, e error) {
	logErr(TError, util.WrapErr(code, e))
}

func Fatal(err *util.Err) {
	if err == nil {
		return
	}
	logErr(TFatal, err)
	os.Exit(1)
}

// TC 开始一条链路, 返回链路 id; exclude 时只生成 id
func TC(pid int64, params util.M, exclude bool) int64 {
	tid := sid.GetId()
	if exclude || len(_Loggers) == 0 {
		return tid
	}
	caller := GetCaller(callerSkip - 1)
	for _, l := range _Loggers {
		l.Trace(pid, tid, caller, params)
	}
	return tid
}

func span(level TLevel, tid int64, msg string, stack []byte, params util.M) {
	if len(_Loggers) == 0 {
		return
	}
	caller := GetCaller(callerSkip)
	for _, l := range _Loggers {
		l.Span(level, tid, msg, caller, stack, params)
	}
}

func TD(tid int64, msg string, params util.M) {
	span(TDebug, tid, msg, nil, params)
}

func TI(tid int64, msg string, params util.M) {
	span(TInfo, tid, msg, nil, params)
}

func TE(tid int64, err *util.Err) {
	if err != nil {
		span(TError, tid, err.String(), err.Stack(), err.Params())
	}
}

func GetCaller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return util.LogTrim(file) + ":" + strconv.Itoa(line)
}
