package tempo

import (
	"testing"

	"github.com/15mga/tempo/util"
	"github.com/stretchr/testify/assert"
)

type logRecord struct {
	level  TLevel
	msg    string
	caller string
	params util.M
}

type memLogger struct {
	logs   []logRecord
	traces []int64
	spans  []logRecord
}

func (l *memLogger) Log(level TLevel, msg, caller string, _ []byte, params util.M) {
	l.logs = append(l.logs, logRecord{level, msg, caller, params})
}

func (l *memLogger) Trace(_, tid int64, _ string, _ util.M) {
	l.traces = append(l.traces, tid)
}

func (l *memLogger) Span(level TLevel, _ int64, msg, caller string, _ []byte, params util.M) {
	l.spans = append(l.spans, logRecord{level, msg, caller, params})
}

func TestLogFacade(t *testing.T) {
	l := &memLogger{}
	AddLogger(l)
	defer ClearLoggers()

	Info("deferred call fired", util.M{"id": "x"})
	Error2(util.EcNil, nil)
	Warn(nil)

	if assert.Len(t, l.logs, 2) {
		assert.Equal(t, TInfo, l.logs[0].level)
		assert.Equal(t, "deferred call fired", l.logs[0].msg)
		assert.Contains(t, l.logs[0].caller, "log_test.go")
		assert.Equal(t, "x", l.logs[0].params["id"])
		assert.Equal(t, TError, l.logs[1].level)
		assert.Equal(t, "object_nil", l.logs[1].msg)
		assert.Contains(t, l.logs[1].caller, "log_test.go")
	}
}

func TestTrace(t *testing.T) {
	l := &memLogger{}
	AddLogger(l)
	defer ClearLoggers()

	tid := TC(0, nil, false)
	TI(tid, "task completed", nil)
	excluded := TC(0, nil, true)
	assert.NotEqual(t, tid, excluded)
	assert.Equal(t, []int64{tid}, l.traces)
	TD(tid, "task started", nil)
	TE(tid, util.NewErr(util.EcRecover, nil))
	TE(tid, nil)
	if assert.Len(t, l.spans, 3) {
		assert.Equal(t, "task completed", l.spans[0].msg)
		assert.Contains(t, l.spans[0].caller, "log_test.go")
		assert.Equal(t, TDebug, l.spans[1].level)
		assert.Equal(t, TError, l.spans[2].level)
		assert.Equal(t, "recover", l.spans[2].msg)
	}
}

func TestLevelConv(t *testing.T) {
	assert.Equal(t, TWarn, StrToLevel("WARN"))
	assert.Equal(t, TInfo, StrToLevel("nope"))
	assert.Equal(t, SError, LevelToStr(TError))
	mask := StrLvlToMask("debug", "error")
	assert.True(t, LvlEnabled(TDebug, mask))
	assert.False(t, LvlEnabled(TInfo, mask))
}
