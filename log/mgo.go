package log

import (
	"context"
	"os"
	"time"

	"github.com/15mga/tempo"
	"github.com/15mga/tempo/util"
	"github.com/15mga/tempo/worker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	mgoLog   = "log"
	mgoTrace = "trace"
	mgoSpan  = "span"
)

type (
	mgoOption struct {
		logLvl, traceLvl tempo.TLevel
		uri              string
		db               string
		ttl              int32
		flushDur         time.Duration
		connTimeout      time.Duration
	}
	MgoOption func(opt *mgoOption)
)

func MgoLogLvl(levels ...string) MgoOption {
	return func(opt *mgoOption) {
		opt.logLvl = tempo.StrLvlToMask(levels...)
	}
}

func MgoTraceLvl(levels ...string) MgoOption {
	return func(opt *mgoOption) {
		opt.traceLvl = tempo.StrLvlToMask(levels...)
	}
}

func MgoUri(uri string) MgoOption {
	return func(opt *mgoOption) {
		opt.uri = uri
	}
}

func MgoDb(db string) MgoOption {
	return func(opt *mgoOption) {
		opt.db = db
	}
}

// MgoTtl 日志保留秒数
func MgoTtl(ttl int32) MgoOption {
	return func(opt *mgoOption) {
		opt.ttl = ttl
	}
}

func MgoFlushDur(dur time.Duration) MgoOption {
	return func(opt *mgoOption) {
		opt.flushDur = dur
	}
}

// NewMgo 连接 mongo, 日志批量写入, 退出前刷新
func NewMgo(opts ...MgoOption) (*mgoLogger, *util.Err) {
	opt := &mgoOption{
		logLvl:      tempo.LvlToMask(tempo.DevLevels...),
		traceLvl:    tempo.LvlToMask(tempo.DevLevels...),
		uri:         "mongodb://localhost:27017",
		db:          "tempo_log",
		ttl:         3600 * 24 * 7,
		flushDur:    time.Second * 5,
		connTimeout: time.Second * 5,
	}
	for _, o := range opts {
		o(opt)
	}
	l := &mgoLogger{
		option: opt,
	}
	err := l.conn()
	if err != nil {
		return nil, err
	}

	l.logBuffer, err = l.initColl(mgoLog, 16, bson.D{{Key: "lvl", Value: 1}})
	if err != nil {
		return nil, err
	}
	l.traceBuffer, err = l.initColl(mgoTrace, 32, bson.D{{Key: "pid", Value: -1}}, bson.D{{Key: "tid", Value: -1}})
	if err != nil {
		return nil, err
	}
	l.spanBuffer, err = l.initColl(mgoSpan, 128, bson.D{{Key: "tid", Value: -1}}, bson.D{{Key: "msg", Value: 1}})
	if err != nil {
		return nil, err
	}

	l.worker = worker.NewWorker(l.process)
	l.worker.Start()
	flushedCh := make(chan struct{})
	tempo.BeforeExitFn("mgo log", func() {
		<-flushedCh
	})
	go func() {
		ticker := time.NewTicker(opt.flushDur)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.worker.Push(mgoFlush{})
			case <-tempo.Ctx().Done():
				l.worker.Push(mgoFlush{done: flushedCh, exit: true})
				return
			}
		}
	}()
	return l, nil
}

type mgoLogger struct {
	option      *mgoOption
	client      *mongo.Client
	db          *mongo.Database
	worker      *worker.Worker[any]
	logBuffer   *mgoBuffer
	traceBuffer *mgoBuffer
	spanBuffer  *mgoBuffer
}

func (l *mgoLogger) conn() *util.Err {
	ctx, cancel := context.WithTimeout(context.Background(), l.option.connTimeout)
	defer cancel()
	client, e := mongo.Connect(ctx, options.Client().ApplyURI(l.option.uri))
	if e != nil {
		return util.WrapErr(util.EcConnectErr, e)
	}
	e = client.Ping(ctx, readpref.Primary())
	if e != nil {
		_ = client.Disconnect(context.Background())
		return util.WrapErr(util.EcConnectErr, e)
	}
	l.client = client
	l.db = client.Database(l.option.db)
	return nil
}

func (l *mgoLogger) initColl(name string, cap int, keys ...bson.D) (*mgoBuffer, *util.Err) {
	ctx, cancel := context.WithTimeout(context.Background(), l.option.connTimeout)
	defer cancel()
	coll := l.db.Collection(name)
	models := make([]mongo.IndexModel, 0, len(keys)+1)
	models = append(models, mongo.IndexModel{
		Keys:    bson.D{{Key: "ts", Value: -1}},
		Options: options.Index().SetExpireAfterSeconds(l.option.ttl),
	})
	for _, k := range keys {
		models = append(models, mongo.IndexModel{
			Keys: k,
		})
	}
	_, e := coll.Indexes().CreateMany(ctx, models)
	if e != nil {
		return nil, util.NewErr(util.EcDbErr, util.M{
			"coll":  name,
			"error": e.Error(),
		})
	}
	return newMgoBuffer(cap, coll), nil
}

func (l *mgoLogger) Log(level tempo.TLevel, msg, caller string, stack []byte, params util.M) {
	if !tempo.LvlEnabled(level, l.option.logLvl) {
		return
	}
	l.worker.Push(mgoLogDoc{
		Timestamp: time.Now(),
		Level:     tempo.LevelToStr(level),
		Message:   msg,
		Stack:     string(stack),
		Caller:    caller,
		Params:    params.Copy(),
	})
}

func (l *mgoLogger) Trace(pid, tid int64, caller string, params util.M) {
	l.worker.Push(mgoTraceDoc{
		Timestamp: time.Now(),
		Pid:       pid,
		Tid:       tid,
		Caller:    caller,
		Params:    params.Copy(),
	})
}

func (l *mgoLogger) Span(level tempo.TLevel, tid int64, msg, caller string, stack []byte, params util.M) {
	if !tempo.LvlEnabled(level, l.option.traceLvl) {
		return
	}
	l.worker.Push(mgoSpanDoc{
		Timestamp: time.Now(),
		Level:     tempo.LevelToStr(level),
		Tid:       tid,
		Message:   msg,
		Stack:     string(stack),
		Caller:    caller,
		Params:    params.Copy(),
	})
}

func (l *mgoLogger) process(data any) {
	switch d := data.(type) {
	case mgoLogDoc:
		l.logBuffer.push(d)
	case mgoTraceDoc:
		l.traceBuffer.push(d)
	case mgoSpanDoc:
		l.spanBuffer.push(d)
	case mgoFlush:
		l.logBuffer.flush()
		l.traceBuffer.flush()
		l.spanBuffer.flush()
		if d.exit {
			_ = l.client.Disconnect(context.Background())
		}
		if d.done != nil {
			close(d.done)
		}
	}
}

type mgoFlush struct {
	done chan struct{}
	exit bool
}

func newMgoBuffer(cap int, coll *mongo.Collection) *mgoBuffer {
	return &mgoBuffer{
		buffer: make([]any, 0, cap),
		cap:    cap,
		coll:   coll,
	}
}

type mgoBuffer struct {
	buffer []any
	cap    int
	coll   *mongo.Collection
}

func (b *mgoBuffer) push(m any) {
	b.buffer = append(b.buffer, m)
	if len(b.buffer) < b.cap {
		return
	}
	b.flush()
}

func (b *mgoBuffer) flush() {
	if len(b.buffer) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	_, e := b.coll.InsertMany(ctx, b.buffer)
	if e != nil {
		// 不能再走日志, 否则会回到这里
		_, _ = os.Stderr.WriteString(e.Error() + "\n")
	}
	for i := range b.buffer {
		b.buffer[i] = nil
	}
	b.buffer = b.buffer[:0]
}

type mgoLogDoc struct {
	Timestamp time.Time `bson:"ts"`
	Level     string    `bson:"lvl"`
	Message   string    `bson:"msg"`
	Stack     string    `bson:"stk,omitempty"`
	Caller    string    `bson:"cl"`
	Params    util.M    `bson:"p,omitempty"`
}

type mgoTraceDoc struct {
	Timestamp time.Time `bson:"ts"`
	Pid       int64     `bson:"pid"`
	Tid       int64     `bson:"tid"`
	Caller    string    `bson:"cl"`
	Params    util.M    `bson:"p,omitempty"`
}

type mgoSpanDoc struct {
	Timestamp time.Time `bson:"ts"`
	Level     string    `bson:"lvl"`
	Tid       int64     `bson:"tid"`
	Message   string    `bson:"msg"`
	Stack     string    `bson:"stk,omitempty"`
	Caller    string    `bson:"cl"`
	Params    util.M    `bson:"p,omitempty"`
}
