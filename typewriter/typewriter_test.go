package typewriter

import (
	"testing"

	"github.com/15mga/tempo/coro"
	"github.com/15mga/tempo/tracker"
	"github.com/stretchr/testify/assert"
)

func newWriter(opts ...Option) (*coro.Runner, *Writer, *[]string) {
	r := coro.NewRunner()
	tr := tracker.New(r)
	tr.Enable()
	var out []string
	w := New(tr, func(s string) {
		out = append(out, s)
	}, opts...)
	return r, w, &out
}

func TestTypeOnce(t *testing.T) {
	r, w, out := newWriter(Speed(0.1))
	w.TypeOnce("héy")
	assert.True(t, w.Typing())

	r.Update(0.1)
	assert.Equal(t, []string{"", "h"}, *out)
	r.Update(0.1)
	assert.Equal(t, []string{"", "h", "hé"}, *out)
	r.Update(0.1)
	assert.Equal(t, []string{"", "h", "hé", "héy"}, *out)
	assert.True(t, w.Typing())
	r.Update(0.1)
	assert.False(t, w.Typing())
}

func TestTypeLoopStop(t *testing.T) {
	r, w, out := newWriter(Speed(0.1), Pause(0.2))
	w.TypeLoop("ab")
	r.Update(0.1)
	r.Update(0.1)
	r.Update(0.1)
	assert.Equal(t, []string{"", "a", "ab"}, *out)

	r.Update(0.1)
	r.Update(0.1)
	assert.Equal(t, []string{"", "a", "ab", "", "a"}, *out)

	w.Stop()
	r.Update(0.1)
	r.Update(0.1)
	r.Update(0.1)
	r.Update(0.1)
	assert.Equal(t, []string{"", "a", "ab", "", "a", "ab"}, *out)
	assert.False(t, w.Typing())
}

func TestCancel(t *testing.T) {
	r, w, out := newWriter(Speed(0.1))
	w.TypeOnce("abc")
	r.Update(0.1)
	w.Cancel()
	assert.False(t, w.Typing())
	r.Update(0.1)
	r.Update(0.1)
	assert.Equal(t, []string{"", "a"}, *out)
}

func TestSetText(t *testing.T) {
	_, w, out := newWriter()
	w.SetText("done")
	assert.Equal(t, []string{"done"}, *out)
}
