package util

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

const (
	EcNil TErrCode = iota + 60001
	EcRecover
	EcTimeout
	EcClosed
	EcEmpty
	EcExist
	EcNotExist
	EcMarshallErr
	EcUnmarshallErr
	EcParamsErr
	EcParseErr
	EcIo
	EcConnectErr
	EcListenErr
	EcUnavailable
	EcServiceErr
	EcDbErr
)

var _ErrCodeToStr = map[TErrCode]string{
	EcNil:           "object_nil",
	EcRecover:       "recover",
	EcTimeout:       "timeout",
	EcClosed:        "closed",
	EcEmpty:         "empty",
	EcExist:         "exist",
	EcNotExist:      "not_exist",
	EcMarshallErr:   "marshall_error",
	EcUnmarshallErr: "unmarshall_error",
	EcParamsErr:     "args_error",
	EcParseErr:      "parse_error",
	EcIo:            "io_error",
	EcConnectErr:    "connect_error",
	EcListenErr:     "listen_error",
	EcUnavailable:   "unavailable",
	EcServiceErr:    "service_error",
	EcDbErr:         "database_error",
}

func ErrCodeToStr(ec TErrCode) string {
	if str, ok := _ErrCodeToStr[ec]; ok {
		return str
	}
	return strconv.Itoa(int(ec))
}

// WrapErr e 的信息保存在 error 参数中
func WrapErr(code TErrCode, e error) *Err {
	err := &Err{code: code, stack: GetStack(3)}
	if e != nil {
		err.params = M{"error": e.Error()}
	}
	return err
}

func NewErr(code TErrCode, params M) *Err {
	return &Err{code: code, stack: GetStack(3), params: params}
}

// RecoverErr 将 recover 的值转换为 EcRecover 错误
func RecoverErr(r any, params M) *Err {
	if params == nil {
		params = M{}
	}
	params["error"] = fmt.Sprint(r)
	return &Err{code: EcRecover, stack: GetStack(4), params: params}
}

// Err 带错误码与调用栈的错误, 通过 tempo.Error 记录
type Err struct {
	code   TErrCode
	stack  []byte
	params M
}

func (e *Err) Code() TErrCode {
	return e.code
}

func (e *Err) Params() M {
	return e.params
}

func (e *Err) Stack() []byte {
	return e.stack
}

// Error 优先返回被包装的错误信息, 否则是错误码与参数
func (e *Err) Error() string {
	if s, ok := e.params["error"].(string); ok {
		return s
	}
	if len(e.params) == 0 {
		return e.String()
	}
	ps, _ := JsonMarshal(e.params)
	return e.String() + " " + string(ps)
}

func (e *Err) String() string {
	return ErrCodeToStr(e.code)
}

const stackDepth = 8

func GetStack(skip int) []byte {
	var pcs [stackDepth]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		frame, more := frames.Next()
		sb.WriteString("\n\t")
		sb.WriteString(LogTrim(frame.File))
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(frame.Line))
		if !more {
			break
		}
	}
	return []byte(sb.String())
}

// LogTrim 去掉模块缓存与 GOROOT 前缀
func LogTrim(file string) string {
	for _, sep := range []string{"/pkg/mod/", "/src/"} {
		if i := strings.LastIndex(file, sep); i >= 0 {
			return ".." + file[i+len(sep)-1:]
		}
	}
	return file
}
