package admin

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/15mga/tempo"
	"github.com/15mga/tempo/loop"
	"github.com/15mga/tempo/tracker"
	"github.com/15mga/tempo/util"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

type (
	option struct {
		addr        string
		callTimeout time.Duration
	}
	Option func(o *option)
)

func Addr(addr string) Option {
	return func(o *option) {
		o.addr = addr
	}
}

// CallTimeout 等待帧循环返回快照的超时
func CallTimeout(dur time.Duration) Option {
	return func(o *option) {
		o.callTimeout = dur
	}
}

func New(l *loop.Loop, tr *tracker.Tracker, opts ...Option) *Server {
	o := &option{
		addr:        ":7070",
		callTimeout: time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	s := &Server{
		option: o,
		loop:   l,
		tr:     tr,
		router: chi.NewRouter(),
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(logRequest)
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Get("/status", s.handleStatus)
	return s
}

// Server 只读的运维接口
type Server struct {
	option *option
	loop   *loop.Loop
	tr     *tracker.Tracker
	router *chi.Mux
	srv    *http.Server
}

func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start 监听并在后台服务, tempo.Ctx 取消后关闭
func (s *Server) Start() *util.Err {
	ln, e := net.Listen("tcp", s.option.addr)
	if e != nil {
		return util.NewErr(util.EcListenErr, util.M{
			"addr":  s.option.addr,
			"error": e.Error(),
		})
	}
	s.srv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	tempo.Info("admin listening", util.M{
		"addr": ln.Addr().String(),
	})
	go func() {
		e := s.srv.Serve(ln)
		if e != nil && !errors.Is(e, http.ErrServerClosed) {
			tempo.Error3(util.EcServiceErr, e)
		}
	}()
	completeCh := tempo.BeforeExitCh("admin")
	go func() {
		<-tempo.Ctx().Done()
		s.shutdown()
		close(completeCh)
	}()
	return nil
}

func (s *Server) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	e := s.srv.Shutdown(ctx)
	if e != nil {
		tempo.Error3(util.EcServiceErr, e)
		return
	}
	tempo.Info("admin stopped", nil)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.option.callTimeout)
	defer cancel()
	var status tracker.Status
	err := s.loop.Call(ctx, func() {
		status = s.tr.Snapshot()
	})
	if err != nil {
		tempo.Warn(err)
		writeJson(w, http.StatusServiceUnavailable, util.M{
			"error": err.String(),
		})
		return
	}
	writeJson(w, http.StatusOK, status)
}

func writeJson(w http.ResponseWriter, code int, v any) {
	bytes, err := util.JsonMarshal(v)
	if err != nil {
		tempo.Error(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(bytes)
}

func logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		tempo.Debug("request", util.M{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"dur":        time.Since(start).Milliseconds(),
			"request_id": middleware.GetReqID(r.Context()),
		})
	})
}
