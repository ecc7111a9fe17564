package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"reader.raspi/reader_r/buttonmgr"
	"reader.raspi/reader_r/debouncer"
	"reader.raspi/reader_r/evdevkeys"
	"reader.raspi/reader_r/gpiopin"
	"reader.raspi/reader_r/inputcfg"
)

// btninput opens the three key lines on the configured backend. The
// returned function releases them.
func btninput(cfg inputcfg.Buttons) (buttonmgr.Pins, func(), error) {
	names := [3]string{cfg.Up, cfg.Down, cfg.Screen}
	var pins [3]debouncer.PinReader
	release := func() {}

	switch cfg.Backend {
	case "rpio":
		for i, n := range names {
			p, err := gpiopin.OpenRpio(n)
			if err != nil {
				return buttonmgr.Pins{}, release, err
			}
			pins[i] = p
		}
		release = func() {
			if err := gpiopin.CloseRpio(); err != nil {
				log.WithError(err).Warn("rpio close")
			}
		}

	case "periph":
		for i, n := range names {
			p, err := gpiopin.OpenPeriph(n)
			if err != nil {
				return buttonmgr.Pins{}, release, err
			}
			pins[i] = p
		}

	case "evdev":
		dev, err := evdevkeys.Open(cfg.EvdevDevice)
		if err != nil {
			return buttonmgr.Pins{}, release, err
		}
		for i, n := range names {
			code, err := evdevkeys.ParseKey(n)
			if err != nil {
				dev.Close()
				return buttonmgr.Pins{}, release, err
			}
			pins[i] = dev.Key(code)
		}
		dev.Start()
		release = func() {
			if err := dev.Close(); err != nil {
				log.WithError(err).Warn("evdev close")
			}
		}

	default:
		return buttonmgr.Pins{}, release, fmt.Errorf("unknown button backend %q", cfg.Backend)
	}

	log.WithFields(log.Fields{
		"backend": cfg.Backend,
		"up":      cfg.Up,
		"down":    cfg.Down,
		"screen":  cfg.Screen,
	}).Info("buttons open")
	return buttonmgr.Pins{Up: pins[0], Down: pins[1], Screen: pins[2]}, release, nil
}
