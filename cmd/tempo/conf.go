package main

import (
	"time"
)

type Conf struct {
	Loop struct {
		Tick     time.Duration `mapstructure:"tick"`
		MaxFrame int64         `mapstructure:"max_frame"`
	} `mapstructure:"loop"`
	Log struct {
		Levels []string `mapstructure:"levels"`
		File   string   `mapstructure:"file"`
		Color  bool     `mapstructure:"color"`
		Mongo  struct {
			Uri string `mapstructure:"uri"`
			Db  string `mapstructure:"db"`
			Ttl int32  `mapstructure:"ttl"`
		} `mapstructure:"mongo"`
	} `mapstructure:"log"`
	Admin struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"admin"`
	Profile struct {
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"profile"`
	Script     []ScriptConf `mapstructure:"script"`
	Typewriter struct {
		Text  string  `mapstructure:"text"`
		Speed float64 `mapstructure:"speed"`
		Pause float64 `mapstructure:"pause"`
		Loop  bool    `mapstructure:"loop"`
	} `mapstructure:"typewriter"`
}

// ScriptConf After 秒后由打字机输出 Say
type ScriptConf struct {
	After float64 `mapstructure:"after"`
	Say   string  `mapstructure:"say"`
}

func defaultConf() *Conf {
	c := &Conf{}
	c.Loop.Tick = time.Millisecond * 16
	c.Log.Levels = []string{"info", "warn", "error", "fatal"}
	c.Log.Color = true
	c.Log.Mongo.Db = "tempo_log"
	c.Log.Mongo.Ttl = 3600 * 24 * 7
	c.Admin.Addr = ":7070"
	c.Typewriter.Speed = 0.05
	c.Typewriter.Pause = 1
	return c
}

// defaultSettings 无配置文件时供环境变量覆盖的键
func defaultSettings() map[string]any {
	c := defaultConf()
	return map[string]any{
		"loop.tick":        c.Loop.Tick.String(),
		"loop.max_frame":   c.Loop.MaxFrame,
		"log.levels":       c.Log.Levels,
		"log.file":         c.Log.File,
		"log.color":        c.Log.Color,
		"log.mongo.uri":    c.Log.Mongo.Uri,
		"log.mongo.db":     c.Log.Mongo.Db,
		"log.mongo.ttl":    c.Log.Mongo.Ttl,
		"admin.addr":       c.Admin.Addr,
		"profile.interval": c.Profile.Interval.String(),
		"typewriter.text":  c.Typewriter.Text,
		"typewriter.speed": c.Typewriter.Speed,
		"typewriter.pause": c.Typewriter.Pause,
		"typewriter.loop":  c.Typewriter.Loop,
	}
}
