package main

import (
	"fmt"
	"io"

	"github.com/15mga/tempo"
	"github.com/15mga/tempo/admin"
	"github.com/15mga/tempo/coro"
	"github.com/15mga/tempo/log"
	"github.com/15mga/tempo/loop"
	"github.com/15mga/tempo/tracker"
	"github.com/15mga/tempo/typewriter"
	"github.com/15mga/tempo/util"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the frame loop with the configured script",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConf()
		if err != nil {
			return err
		}
		return run(conf, cmd.OutOrStdout())
	},
}

func setupLog(conf *Conf) *util.Err {
	opts := []log.StdOption{
		log.StdLogStrLvl(conf.Log.Levels...),
		log.StdTraceStrLvl(conf.Log.Levels...),
		log.StdColor(conf.Log.Color),
	}
	if conf.Log.File != "" {
		opts = append(opts, log.StdFile(conf.Log.File), log.StdColor(false))
	}
	tempo.AddLogger(log.NewStd(opts...))
	if conf.Log.Mongo.Uri == "" {
		return nil
	}
	mgo, err := log.NewMgo(
		log.MgoUri(conf.Log.Mongo.Uri),
		log.MgoDb(conf.Log.Mongo.Db),
		log.MgoTtl(conf.Log.Mongo.Ttl),
		log.MgoLogLvl(conf.Log.Levels...),
		log.MgoTraceLvl(conf.Log.Levels...),
	)
	if err != nil {
		return err
	}
	tempo.AddLogger(mgo)
	return nil
}

func run(conf *Conf, out io.Writer) error {
	if err := setupLog(conf); err != nil {
		return err
	}

	runner := coro.NewRunner()
	tr := tracker.New(runner, tracker.Name("main"))
	if !tracker.SetShared(tr) {
		tempo.Warn2(util.EcExist, util.M{
			"tracker": "shared",
		})
	}
	writer := typewriter.New(tr, func(s string) {
		_, _ = fmt.Fprintf(out, "\r\033[K%s", s)
	}, typewriter.Speed(conf.Typewriter.Speed), typewriter.Pause(conf.Typewriter.Pause))

	l := loop.New(
		loop.TickDur(conf.Loop.Tick),
		loop.MaxFrame(conf.Loop.MaxFrame),
		loop.Systems(runner),
		loop.BeforeDispose(func(*loop.Loop) {
			tempo.Info("tracker stop", util.M{
				"tasks": tr.TrackedCount(),
				"calls": tr.DeferredCount(),
			})
			tr.AbortAllDeferredCalls()
			tr.AbortAllTrackedTasks()
			tr.Disable()
		}),
	)
	l.Post(func() {
		tr.Enable()
		schedule(tr, writer, conf)
	})
	l.Start()

	srv := admin.New(l, tr, admin.Addr(conf.Admin.Addr))
	if err := srv.Start(); err != nil {
		tempo.Error(err)
	}
	if conf.Profile.Interval > 0 {
		util.StartProfile(tempo.Ctx(), conf.Profile.Interval, func(m util.M) {
			tempo.Info("profile", m)
		})
	}
	go func() {
		<-l.Done()
		tempo.Exit()
	}()
	tempo.WaitExit()
	_, _ = fmt.Fprintln(out)
	return nil
}

// schedule 在帧循环协程中调用
func schedule(tr *tracker.Tracker, writer *typewriter.Writer, conf *Conf) {
	if conf.Typewriter.Text != "" {
		if conf.Typewriter.Loop {
			writer.TypeLoop(conf.Typewriter.Text)
		} else {
			writer.TypeOnce(conf.Typewriter.Text)
		}
	}
	for _, s := range conf.Script {
		say := s.Say
		id := tr.AddDeferredCall(s.After, func() {
			tempo.Info("script", util.M{
				"say": say,
			})
			writer.TypeOnce(say)
		})
		tempo.Debug("script scheduled", util.M{
			"id":    id.String(),
			"after": s.After,
		})
	}
}
