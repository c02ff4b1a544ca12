package log

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/15mga/tempo"
	"github.com/15mga/tempo/util"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	_SDebug  = "[D]"
	_SInfo   = "[I]"
	_SWarn   = "[W]"
	_SError  = "[E]"
	_SFatal  = "[F]"
	_STrace  = "[TC]"
	_STDebug = "[TD]"
	_STInfo  = "[TI]"
	_STWarn  = "[TW]"
	_STError = "[TE]"
	_STFatal = "[TF]"
)

const (
	ColorRed      = "\033[31m"
	ColorGreen    = "\033[32m"
	ColorYellow   = "\033[33m"
	ColorPurple   = "\033[35m"
	ColorCyan     = "\033[36m"
	ColorWhite    = "\033[37m"
	ColorHiRed    = "\033[91m"
	ColorHiGreen  = "\033[92m"
	ColorHiYellow = "\033[93m"
	ColorHiPurple = "\033[95m"
	ColorHiWhite  = "\033[97m"
	ColorReset    = "\033[0m"
)

type (
	stdOption struct {
		logLvl, traceLvl tempo.TLevel
		timeLayout       string
		color            bool
		writer           io.Writer
	}
	StdOption func(opt *stdOption)
)

func StdLogLvl(levels ...tempo.TLevel) StdOption {
	return func(opt *stdOption) {
		opt.logLvl = tempo.LvlToMask(levels...)
	}
}

func StdTraceLvl(levels ...tempo.TLevel) StdOption {
	return func(opt *stdOption) {
		opt.traceLvl = tempo.LvlToMask(levels...)
	}
}

func StdLogStrLvl(levels ...string) StdOption {
	return func(opt *stdOption) {
		opt.logLvl = tempo.StrLvlToMask(levels...)
	}
}

func StdTraceStrLvl(levels ...string) StdOption {
	return func(opt *stdOption) {
		opt.traceLvl = tempo.StrLvlToMask(levels...)
	}
}

func StdTimeLayout(layout string) StdOption {
	return func(opt *stdOption) {
		opt.timeLayout = layout
	}
}

func StdWriter(writer io.Writer) StdOption {
	return func(opt *stdOption) {
		opt.writer = writer
	}
}

func StdColor(color bool) StdOption {
	return func(opt *stdOption) {
		opt.color = color
	}
}

// StdFile 按天保留 30 天, 自动压缩
func StdFile(file string) StdOption {
	return func(opt *stdOption) {
		opt.writer = &lumberjack.Logger{
			Filename: file,
			MaxSize:  100,
			MaxAge:   30,
			Compress: true,
		}
	}
}

var _BufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

func NewStd(opts ...StdOption) *stdLogger {
	opt := &stdOption{
		logLvl:     tempo.LvlToMask(tempo.TestLevels...),
		traceLvl:   tempo.LvlToMask(tempo.TestLevels...),
		timeLayout: tempo.DefTimeFormatter,
		color:      true,
		writer:     os.Stdout,
	}
	for _, o := range opts {
		o(opt)
	}
	l := &stdLogger{
		option: opt,
		tail:   "\n",
		logHeads: map[tempo.TLevel]string{
			tempo.TDebug: _SDebug,
			tempo.TInfo:  _SInfo,
			tempo.TWarn:  _SWarn,
			tempo.TError: _SError,
			tempo.TFatal: _SFatal,
		},
		spanHeads: map[tempo.TLevel]string{
			tempo.TDebug: _STDebug,
			tempo.TInfo:  _STInfo,
			tempo.TWarn:  _STWarn,
			tempo.TError: _STError,
			tempo.TFatal: _STFatal,
		},
		traceHead: _STrace,
	}
	if opt.color {
		logColors := map[tempo.TLevel]string{
			tempo.TDebug: ColorHiWhite,
			tempo.TInfo:  ColorHiGreen,
			tempo.TWarn:  ColorHiYellow,
			tempo.TError: ColorHiRed,
			tempo.TFatal: ColorHiPurple,
		}
		spanColors := map[tempo.TLevel]string{
			tempo.TDebug: ColorWhite,
			tempo.TInfo:  ColorGreen,
			tempo.TWarn:  ColorYellow,
			tempo.TError: ColorRed,
			tempo.TFatal: ColorPurple,
		}
		for lvl, head := range l.logHeads {
			l.logHeads[lvl] = logColors[lvl] + head
		}
		for lvl, head := range l.spanHeads {
			l.spanHeads[lvl] = spanColors[lvl] + head
		}
		l.traceHead = ColorCyan + l.traceHead
		l.tail = ColorReset + l.tail
	}
	return l
}

type stdLogger struct {
	option    *stdOption
	mtx       sync.Mutex
	logHeads  map[tempo.TLevel]string
	spanHeads map[tempo.TLevel]string
	traceHead string
	tail      string
}

func (l *stdLogger) Log(level tempo.TLevel, msg, caller string, stack []byte, params util.M) {
	if !tempo.LvlEnabled(level, l.option.logLvl) {
		return
	}
	buffer := l.begin(l.logHeads[level])
	if msg != "" {
		buffer.WriteByte(' ')
		buffer.WriteString(msg)
	}
	l.end(buffer, caller, stack, params)
}

func (l *stdLogger) Trace(pid, tid int64, caller string, params util.M) {
	if l.option.traceLvl == 0 {
		return
	}
	buffer := l.begin(l.traceHead)
	buffer.WriteString(" pid:")
	buffer.WriteString(strconv.FormatInt(pid, 10))
	buffer.WriteString(" tid:")
	buffer.WriteString(strconv.FormatInt(tid, 10))
	l.end(buffer, caller, nil, params)
}

func (l *stdLogger) Span(level tempo.TLevel, tid int64, msg, caller string, stack []byte, params util.M) {
	if !tempo.LvlEnabled(level, l.option.traceLvl) {
		return
	}
	buffer := l.begin(l.spanHeads[level])
	buffer.WriteString(" tid:")
	buffer.WriteString(strconv.FormatInt(tid, 10))
	if msg != "" {
		buffer.WriteByte(' ')
		buffer.WriteString(msg)
	}
	l.end(buffer, caller, stack, params)
}

func (l *stdLogger) begin(head string) *bytes.Buffer {
	buffer := _BufferPool.Get().(*bytes.Buffer)
	buffer.Reset()
	buffer.WriteString(head)
	buffer.WriteString(time.Now().Format(l.option.timeLayout))
	return buffer
}

func (l *stdLogger) end(buffer *bytes.Buffer, caller string, stack []byte, params util.M) {
	buffer.WriteString(l.tail)
	if len(params) > 0 {
		ps, _ := util.JsonMarshal(params)
		buffer.Write(ps)
		buffer.WriteByte('\n')
	}
	buffer.WriteString(caller)
	if stack != nil {
		buffer.Write(stack)
	}
	buffer.WriteByte('\n')
	l.mtx.Lock()
	_, _ = l.option.writer.Write(buffer.Bytes())
	l.mtx.Unlock()
	_BufferPool.Put(buffer)
}
