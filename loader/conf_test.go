package loader

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConf struct {
	Loop struct {
		Tick     time.Duration `mapstructure:"tick"`
		MaxFrame int64         `mapstructure:"max_frame"`
	} `mapstructure:"loop"`
	Log struct {
		Levels []string `mapstructure:"levels"`
		Color  bool     `mapstructure:"color"`
	} `mapstructure:"log"`
	Script []struct {
		After float64 `mapstructure:"after"`
		Say   string  `mapstructure:"say"`
	} `mapstructure:"script"`
}

const baseYml = `
loop:
  tick: 20ms
  max_frame: 10
log:
  levels: debug,info
  color: true
script:
  - after: 1.5
    say: hello
`

const overrideYml = `
loop:
  tick: 50ms
`

func writeFile(t *testing.T, dir, name, content string) {
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadConfLayers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yml", baseYml)
	writeFile(t, dir, "override.yaml", overrideYml)
	SetConfRoot(dir)

	var conf testConf
	err := LoadConf(&conf, LocalPaths("base.yml", "override.yaml")...)
	require.Nil(t, err)
	assert.Equal(t, time.Millisecond*50, conf.Loop.Tick)
	assert.Equal(t, int64(10), conf.Loop.MaxFrame)
	assert.Equal(t, []string{"debug", "info"}, conf.Log.Levels)
	assert.True(t, conf.Log.Color)
	require.Len(t, conf.Script, 1)
	assert.Equal(t, 1.5, conf.Script[0].After)
	assert.Equal(t, "hello", conf.Script[0].Say)
}

func TestLoadConfHttp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(baseYml))
	}))
	defer srv.Close()

	var conf testConf
	err := LoadConf(&conf, ConfHttpLoader+ConfPathSep+srv.URL+"/tempo.yml")
	require.Nil(t, err)
	assert.Equal(t, time.Millisecond*20, conf.Loop.Tick)
}

func TestLoadConfMissing(t *testing.T) {
	SetConfRoot(t.TempDir())
	var conf testConf
	err := LoadConf(&conf, LocalPaths("nope.yml")...)
	assert.NotNil(t, err)

	err = LoadConf(&conf)
	assert.NotNil(t, err)

	err = LoadConf(&conf, "bad-path")
	assert.NotNil(t, err)
}

func TestLocalPaths(t *testing.T) {
	assert.Equal(t, []string{"local|a.yml", "http|http://h/c.yml"}, LocalPaths("a.yml", "http|http://h/c.yml"))
}
