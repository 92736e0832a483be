package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/llehouerou/tubeplay/internal/app"
	"github.com/llehouerou/tubeplay/internal/config"
	"github.com/llehouerou/tubeplay/internal/icons"
	"github.com/llehouerou/tubeplay/internal/logging"
	"github.com/llehouerou/tubeplay/internal/mpris"
	"github.com/llehouerou/tubeplay/internal/notify"
	"github.com/llehouerou/tubeplay/internal/playback"
	"github.com/llehouerou/tubeplay/internal/player"
	"github.com/llehouerou/tubeplay/internal/resolver"
	"github.com/llehouerou/tubeplay/internal/sink"
	"github.com/llehouerou/tubeplay/internal/state"
	"github.com/llehouerou/tubeplay/internal/stderr"
)

// runtime holds everything that must be released on exit.
type runtime struct {
	model    app.Model
	logger   zerolog.Logger
	logFile  io.Closer
	stateMgr *state.Manager
	ctrl     *playback.Controller
	mpris    *mpris.Adapter
}

func initialModel() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	icons.Init(cfg.Icons)

	logger, logFile, err := logging.Open(logging.Config{
		File:  cfg.Logging.File,
		Level: cfg.Logging.Level,
	})
	if err != nil {
		return nil, err
	}

	// Keep C library chatter on fd 2 out of the TUI.
	if err := stderr.Start(logging.WithComponent(logger, "stderr")); err != nil {
		logger.Warn().Err(err).Msg("stderr capture unavailable")
	}

	stateMgr, err := state.Open()
	if err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("open state: %w", err)
	}

	rt := &runtime{logger: logger, logFile: logFile, stateMgr: stateMgr}

	res := newResolver(cfg, stateMgr, logger)
	eng := newEngine(cfg, logger)
	sinkCfg := cfg.GetSinkConfig()
	surface := sink.New(sink.Options{Width: sinkCfg.Width, Height: sinkCfg.Height})

	rt.ctrl = playback.New(res, eng, surface,
		playback.WithLogger(logging.WithComponent(logger, "playback")),
	)

	if cfg.NotificationsEnabled() {
		announceTo(rt.ctrl, logger)
	}

	if cfg.MPRISEnabled() {
		adapter, err := mpris.New(rt.ctrl)
		if err != nil {
			logger.Warn().Err(err).Msg("mpris unavailable")
		} else {
			rt.mpris = adapter
		}
	}

	rt.model = app.New(app.Deps{
		Playback: rt.ctrl,
		State:    stateMgr,
		Logger:   logging.WithComponent(logger, "ui"),
	})
	return rt, nil
}

// newResolver builds the resolution chain: direct media URLs are played as
// is, everything else goes through yt-dlp, optionally behind the cache.
func newResolver(cfg *config.Config, store resolver.Store, logger zerolog.Logger) resolver.Resolver {
	var res resolver.Resolver = resolver.NewAuto(
		resolver.NewYtDlp(cfg.Resolver.Command, cfg.Resolver.Format, cfg.Resolver.Args),
	)
	if cfg.CacheEnabled() {
		res = resolver.NewCached(res, store, cfg.CacheTTL(), logging.WithComponent(logger, "resolver"))
	}
	return res
}

func newEngine(cfg *config.Config, logger zerolog.Logger) player.Engine {
	ec := cfg.GetEngineConfig()
	engineLogger := logging.WithComponent(logger, "engine")
	if ec.Backend == config.BackendAudio {
		a := player.NewAudio(engineLogger)
		a.SetVolume(float64(ec.Volume) / 100)
		return a
	}
	return player.NewMPV(player.MPVOptions{
		Command: ec.Command,
		Args:    ec.Args,
		Video:   cfg.VideoEnabled(),
		Volume:  ec.Volume,
	}, engineLogger)
}

// announceTo sends a desktop notification for every outcome of the
// controller.
func announceTo(ctrl *playback.Controller, logger zerolog.Logger) {
	notifier, err := notify.New()
	if err != nil {
		logger.Warn().Err(err).Msg("notifications unavailable")
		return
	}
	announcer := notify.NewAnnouncer(notifier, logging.WithComponent(logger, "notify"))
	go announcer.Watch(ctrl.Subscribe())
}

// close releases everything in reverse order of creation. The log file
// goes last so shutdown errors are still recorded.
func (rt *runtime) close() {
	var errs []error
	if rt.mpris != nil {
		errs = append(errs, rt.mpris.Close())
	}
	errs = append(errs, rt.ctrl.Close(), rt.stateMgr.Close())
	stderr.Stop()
	if err := errors.Join(errs...); err != nil {
		rt.logger.Error().Err(err).Msg("shutdown")
	}
	_ = rt.logFile.Close()
}

func main() {
	rt, err := initialModel()
	if err != nil {
		fmt.Printf("Error initializing: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(rt.model, tea.WithAltScreen())
	_, runErr := p.Run()

	rt.close()
	if runErr != nil {
		fmt.Printf("Error running program: %v\n", runErr)
		os.Exit(1)
	}
}
