package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/spf13/pflag"
	"github.com/ui-xd/test-stream-sub001/pkg/config/player"
	"github.com/ui-xd/test-stream-sub001/pkg/logger"
	"github.com/ui-xd/test-stream-sub001/pkg/monitoring"
	cos "github.com/ui-xd/test-stream-sub001/pkg/os"
	"github.com/ui-xd/test-stream-sub001/pkg/platform/sdl"
	"github.com/ui-xd/test-stream-sub001/pkg/relay"
	"github.com/ui-xd/test-stream-sub001/pkg/service"
	"github.com/ui-xd/test-stream-sub001/pkg/session"
	"github.com/ui-xd/test-stream-sub001/pkg/thread"
)

var Version = "?"

// pumpRate is how often SDL events are polled.
const pumpRate = 4 * time.Millisecond

func init() {
	// SDL wants its calls from the main thread
	runtime.LockOSThread()
}

func run() {
	conf, err := player.ParseFlags(pflag.CommandLine, os.Args[1:])
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	var log *logger.Logger
	if conf.Log.Console {
		log = logger.NewConsole(conf.Log.Debug, "p", conf.Log.NoColor)
	} else {
		log = logger.New(conf.Log.Debug)
	}
	log.Info().Msgf("version %s", Version)
	log.Debug().Msgf("conf: %+v", conf)

	services := service.Group{}
	if conf.Monitoring.IsEnabled() {
		services.Add(monitoring.New(conf.Monitoring, log))
	}
	services.Start()

	loop := thread.NewLoop(0, log.Module("loop"))

	var win *sdl.Window
	thread.MainMaybe(func() {
		win, err = sdl.New(sdl.Config{
			Title:      conf.Player.Window.Title,
			Width:      conf.Player.Window.Width,
			Height:     conf.Player.Window.Height,
			Fullscreen: conf.Player.Window.Fullscreen,
			VSync:      conf.Player.Window.VSync,
			ReleaseKey: conf.Player.Input.ReleaseKey,
		}, log)
	})
	if err != nil {
		log.Fatal().Err(err).Msg("window")
	}

	deps := session.Deps{Sched: loop, Capture: win}
	if flag, err := cos.NewFlag(conf.Player.StateDir, "intro"); err == nil {
		deps.Flag = flag
	} else {
		log.Warn().Err(err).Msg("intro flag is off")
	}
	if deps.Connect, err = relay.NewFactory(relay.Options{
		Webrtc: conf.Webrtc,
		Delay:  conf.Player.Reconnect.Delay,
		Max:    conf.Player.Reconnect.Max,
	}, log); err != nil {
		log.Fatal().Err(err).Msg("webrtc")
	}

	orc := session.New(session.Session{RoomID: conf.Player.Room, Endpoint: conf.Player.Relay}, win, deps,
		session.WithLogger(log.Module("session")))
	title := func() {
		win.SetTitle(fmt.Sprintf("%s - %s [%v]", conf.Player.Window.Title, conf.Player.Room, orc.State()))
	}
	orc.OnStateChange(func(session.StreamState) { title() })
	orc.OnPrompt(func(p session.Prompt) {
		if err := win.SetOverlay(promptText(p, win.ReleaseKeyName())); err != nil {
			log.Warn().Err(err).Msg("overlay")
		}
	})
	win.Events().Quit.Subscribe(func(struct{}) { loop.Stop() })

	loop.Post(func() {
		title()
		// a failure is logged and leaves the session offline
		_ = orc.Start(conf.Player.Room)
	})
	go pump(loop, win.Pump)
	go func() {
		select {
		case <-cos.ExpectTermination():
			log.Info().Msg("terminating")
			loop.Stop()
		case <-loop.Done():
		}
	}()

	loop.RunMain()

	thread.MainMaybe(func() {
		if err := orc.Close(); err != nil {
			log.Error().Err(err).Msg("session close")
		}
		win.Close()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = services.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

// pump posts the event polling onto the loop, one at a time.
func pump(loop *thread.Loop, fn func()) {
	var queued atomic.Bool
	t := time.NewTicker(pumpRate)
	defer t.Stop()
	for {
		select {
		case <-loop.Done():
			return
		case <-t.C:
			if !queued.CompareAndSwap(false, true) {
				continue
			}
			if !loop.Post(func() { queued.Store(false); fn() }) {
				return
			}
		}
	}
}

func promptText(p session.Prompt, releaseKey string) string {
	switch p {
	case session.PromptIntro:
		return fmt.Sprintf("Click to play. Press %s to release the mouse.", releaseKey)
	case session.PromptResume:
		return "Click to resume."
	}
	return ""
}

func main() { thread.MainWrapMaybe(run) }
