package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/15mga/tempo/coro"
	"github.com/15mga/tempo/loop"
	"github.com/15mga/tempo/tracker"
	"github.com/15mga/tempo/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthz(t *testing.T) {
	s := New(loop.New(), tracker.New(coro.NewRunner()))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetrics(t *testing.T) {
	s := New(loop.New(), tracker.New(coro.NewRunner()))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tempo_tracker_calls_live")
}

func TestStatus(t *testing.T) {
	runner := coro.NewRunner()
	tr := tracker.New(runner)
	tr.Enable()
	call := tr.AddDeferredCall(3, nil)

	l := loop.New(loop.Systems(runner), loop.TickDur(time.Millisecond))
	l.Start()
	defer l.Stop()

	s := New(l, tr)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var status tracker.Status
	require.Nil(t, util.JsonUnmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Enabled)
	require.Len(t, status.Calls, 1)
	assert.Equal(t, call.String(), status.Calls[0].Id)
	assert.LessOrEqual(t, status.Calls[0].Remaining, 3.0)
}

func TestStatusLoopClosed(t *testing.T) {
	l := loop.New(loop.TickDur(time.Millisecond), loop.MaxFrame(1))
	l.Start()
	<-l.Done()

	s := New(l, tracker.New(coro.NewRunner()))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "closed")
}
