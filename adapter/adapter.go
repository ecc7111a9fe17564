// Package adapter fuses the key and joystick inputs into a single stream of
// UnifiedInputEvent values for the application.
//
// The application owns the Adapter and calls Update once per main loop
// iteration. Keys are resolved before the joystick. A single anti-repeat
// timestamp is shared by both sources, and at most one event reaches the
// sink per Update; anything else resolved on that tick is dropped.
package adapter

import (
	log "github.com/sirupsen/logrus"

	"reader.raspi/reader_r/buttonmap"
	"reader.raspi/reader_r/buttonmgr"
	"reader.raspi/reader_r/inputcfg"
	"reader.raspi/reader_r/joystick"
)

// EventSink receives delivered events, synchronously from Update.
type EventSink interface {
	OnEvent(ev UnifiedInputEvent)
}

// SinkFunc adapts a plain function to EventSink.
type SinkFunc func(ev UnifiedInputEvent)

func (f SinkFunc) OnEvent(ev UnifiedInputEvent) {
	f(ev)
}

type discard struct{}

func (discard) OnEvent(UnifiedInputEvent) {}

// JoystickSource is the stick as the adapter sees it; *joystick.Controller
// satisfies it.
type JoystickSource interface {
	Update(now uint32) joystick.Change
	SetConfig(cfg joystick.Config)
}

type Adapter struct {
	buttons *buttonmgr.Manager
	stick   JoystickSource
	sink    EventSink
	mode    buttonmap.AppMode
	cfg     inputcfg.Input

	now          uint32
	last_event   uint32
	emitted      bool
	tick_emitted bool
	dropped      uint32
}

// New takes the key manager and, optionally, a joystick; stick may be nil
// when the unit is absent.
func New(buttons *buttonmgr.Manager, stick JoystickSource) *Adapter {
	a := &Adapter{
		buttons: buttons,
		stick:   stick,
		sink:    discard{},
		mode:    buttons.AppMode(),
	}
	a.buttons.SetEventCallback(a.handleButton)
	a.SetConfig(inputcfg.DefaultInput())
	return a
}

// Init primes the key state. Call it once the pins are configured.
func (a *Adapter) Init() {
	a.buttons.Init()
	log.WithFields(log.Fields{
		"joystick":     a.stick != nil,
		"repeat_delay": a.cfg.RepeatDelayMs,
		"mode":         a.mode,
	}).Info("input adapter ready")
}

func (a *Adapter) SetEventSink(s EventSink) {
	if s == nil {
		s = discard{}
	}
	a.sink = s
}

func (a *Adapter) SetEventCallback(f func(UnifiedInputEvent)) {
	if f == nil {
		a.SetEventSink(nil)
		return
	}
	a.SetEventSink(SinkFunc(f))
}

// SetAppMode switches context. Presses in progress are dropped and the
// anti-repeat gate is reopened.
func (a *Adapter) SetAppMode(mode buttonmap.AppMode) {
	if mode == a.mode {
		return
	}
	log.WithFields(log.Fields{"from": a.mode, "to": mode}).Debug("app mode")
	a.mode = mode
	a.buttons.SetAppMode(mode)
	a.emitted = false
}

func (a *Adapter) AppMode() buttonmap.AppMode {
	return a.mode
}

// SetConfig applies new tunables immediately. Values are sanitized first.
func (a *Adapter) SetConfig(cfg inputcfg.Input) {
	cfg = cfg.Sanitize()
	a.cfg = cfg
	a.buttons.SetLongPressTime(cfg.LongPressMs)
	a.buttons.SetDebounceTime(cfg.ButtonDebounceMs)
	if a.stick != nil {
		a.stick.SetConfig(joystick.Config{
			Threshold:           cfg.ADCThreshold,
			Deadzone:            cfg.ADCDeadzone,
			StableCountRequired: cfg.StableCountRequired,
			ButtonDebounceMs:    cfg.JoystickDebounceMs,
			DirectionRatio:      cfg.DirectionRatio,
		})
	}
}

func (a *Adapter) Config() inputcfg.Input {
	return a.cfg
}

// Dropped counts events discarded by the anti-repeat gate.
func (a *Adapter) Dropped() uint32 {
	return a.dropped
}

// Update advances every input by one tick.
func (a *Adapter) Update(now uint32) {
	a.now = now
	a.tick_emitted = false

	a.buttons.Update(now)

	if a.stick == nil {
		return
	}
	ch := a.stick.Update(now)
	if ch.DirectionChanged && ch.Direction != joystick.None {
		a.trigger(FromDirection(a.mode, ch.Direction))
	}
	if ch.Button == joystick.Pressed {
		a.trigger(FromStickButton(a.mode))
	}
}

func (a *Adapter) handleButton(f buttonmap.ButtonFunction) {
	a.trigger(FromFunction(f))
}

func (a *Adapter) trigger(ev UnifiedInputEvent) {
	if ev == None {
		return
	}
	if a.tick_emitted || (a.emitted && a.now-a.last_event < a.cfg.RepeatDelayMs) {
		a.dropped++
		log.WithFields(log.Fields{"event": ev, "t": a.now}).Debug("event suppressed")
		return
	}
	a.last_event = a.now
	a.emitted = true
	a.tick_emitted = true
	log.WithFields(log.Fields{"event": ev, "mode": a.mode}).Debug("event")
	a.sink.OnEvent(ev)
}
