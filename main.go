package main

import (
	"errors"
	"flag"
	"io/fs"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"reader.raspi/reader_r/adapter"
	"reader.raspi/reader_r/buttonmap"
	"reader.raspi/reader_r/buttonmgr"
	"reader.raspi/reader_r/inputcfg"
	"reader.raspi/reader_r/joystick"
	"reader.raspi/reader_r/joyunit"
	"reader.raspi/reader_r/msclock"
	"reader.raspi/reader_r/sink"
)

const loop_period = 10 * time.Millisecond

// openJoystick returns nil when the unit is disabled or does not answer.
func openJoystick(cfg inputcfg.Joystick) (*joystick.Controller, func()) {
	if !cfg.Enabled {
		return nil, func() {}
	}
	unit, closebus, err := joyunit.Open(cfg.Address, cfg.Bus)
	if err != nil {
		log.WithError(err).Warn("joystick disabled")
		return nil, func() {}
	}
	if err := unit.Begin(); err != nil {
		closebus()
		if errors.Is(err, joyunit.ErrNoDevice) {
			log.WithError(err).Info("joystick not present")
		} else {
			log.WithError(err).Warn("joystick disabled")
		}
		return nil, func() {}
	}
	fw, _ := unit.FirmwareVersion()
	log.WithFields(log.Fields{
		"bus":      cfg.Bus,
		"address":  unit.Address(),
		"firmware": fw,
	}).Info("joystick found")

	ctl := joystick.NewController(unit)
	ctl.SetLEDEnabled(cfg.LED)
	return ctl, func() {
		ctl.SetLEDEnabled(false)
		closebus()
	}
}

func removeSocket(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Warn("control socket remove")
	}
}

func openSinks(cfg inputcfg.Sink) (adapter.EventSink, func()) {
	sinks := sink.FanOut{sink.Log{}}
	closers := []func(){}

	if cfg.WebhookURL != "" {
		w := sink.NewWebhook(cfg.WebhookURL)
		sinks = append(sinks, w)
		closers = append(closers, w.Close)
	}
	if cfg.MQTTBroker != "" {
		m, err := sink.DialMQTT(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic)
		if err != nil {
			log.WithError(err).Warn("mqtt sink disabled")
		} else {
			sinks = append(sinks, m)
			closers = append(closers, m.Close)
		}
	}
	return sinks, func() {
		for _, c := range closers {
			c()
		}
	}
}

func main() {
	cfgpath := flag.String("config", inputcfg.DefaultPath, "configuration file")
	flag.Parse()

	cfg, err := inputcfg.Load(*cfgpath)
	if err != nil {
		log.WithError(err).Warn("config unreadable, using defaults")
	}
	cfg.Log.Apply()

	pins, closepins, err := btninput(cfg.Buttons)
	if err != nil {
		log.WithError(err).Error("buttons")
		return
	}
	defer closepins()

	var stick adapter.JoystickSource
	ctl, closestick := openJoystick(cfg.Joystick)
	defer closestick()
	if ctl != nil {
		stick = ctl
	}

	mgr := buttonmgr.New(pins)
	input := adapter.New(mgr, stick)
	input.SetConfig(cfg.Input)

	mode, err := buttonmap.ParseAppMode(cfg.App.Mode)
	if err != nil {
		log.WithError(err).Warn("initial mode")
		mode = buttonmap.MainMenu
	}
	input.SetAppMode(mode)

	out, closesinks := openSinks(cfg.Sink)
	defer closesinks()
	input.SetEventSink(out)
	input.Init()

	// シグナルハンドラ
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGQUIT,
		syscall.SIGHUP, syscall.SIGINT)

	// 外部通信用socket
	modes := make(chan buttonmap.AppMode)
	if cfg.App.ControlSocket != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.App.ControlSocket), 0o755); err != nil {
			log.WithError(err).Warn("control socket directory")
		}
		if err := os.Remove(cfg.App.ControlSocket); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.WithError(err).Warn("stale control socket")
		}
		ln, err := net.Listen("unix", cfg.App.ControlSocket)
		if err != nil {
			log.WithError(err).Warn("control socket not open")
		} else {
			defer removeSocket(cfg.App.ControlSocket)
			defer ln.Close()
			go server(ln, modes)
		}
	}

	clock := msclock.New()
	tick := time.NewTicker(loop_period)
	defer tick.Stop()
	status := time.NewTicker(time.Minute)
	defer status.Stop()

	for {
		select {
		case <-tick.C:
			input.Update(clock.Now())

		case m := <-modes:
			input.SetAppMode(m)
			log.WithField("mode", m).Info("mode changed")

		case <-status.C:
			f := log.Fields{
				"buttons": mgr.DebugInfo(),
				"dropped": input.Dropped(),
			}
			if ctl != nil {
				f["direction"] = ctl.Direction()
				f["bus_failures"] = ctl.Sampler().Failures()
			}
			log.WithFields(f).Debug("status")

		case s := <-signals:
			log.WithField("signal", s).Info("shutting down")
			return
		}
	}
}
