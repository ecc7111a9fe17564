// Package buttonmgr turns the three physical keys into mode dependent
// ButtonFunction events.
//
// Every resolved function is handed to the callback before Update returns,
// so nothing is lost when two keys resolve on the same tick. The pending
// slot is a convenience for polling consumers: it holds the most recent
// function and is cleared when read.
package buttonmgr

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"reader.raspi/reader_r/buttonmap"
	"reader.raspi/reader_r/debouncer"
)

type ButtonCode int

const (
	btn_up ButtonCode = iota
	btn_down
	btn_screen
	btn_length
)

var btn_name = [btn_length]string{"up", "down", "screen"}

// Pins are the inputs of the three keys.
type Pins struct {
	Up     debouncer.PinReader
	Down   debouncer.PinReader
	Screen debouncer.PinReader
}

type Manager struct {
	btn      [btn_length]*debouncer.Button
	mode     buttonmap.AppMode
	mapping  buttonmap.ButtonFunctionMapping
	pending  buttonmap.ButtonFunction
	callback func(buttonmap.ButtonFunction)
}

func cb_default(buttonmap.ButtonFunction) {
}

// New starts in MainMenu with the default timings.
func New(pins Pins) *Manager {
	m := &Manager{
		mode:     buttonmap.MainMenu,
		mapping:  buttonmap.MappingFor(buttonmap.MainMenu),
		callback: cb_default,
	}
	m.btn[btn_up] = debouncer.New(btn_name[btn_up], pins.Up)
	m.btn[btn_down] = debouncer.New(btn_name[btn_down], pins.Down)
	m.btn[btn_screen] = debouncer.New(btn_name[btn_screen], pins.Screen)
	return m
}

// Init reads the current level of every key so that a key held during start
// up does not produce an event.
func (m *Manager) Init() {
	for _, b := range m.btn {
		b.Prime()
	}
	log.WithFields(log.Fields{
		"up":           m.btn[btn_up].Pressed(),
		"down":         m.btn[btn_down].Pressed(),
		"screen":       m.btn[btn_screen].Pressed(),
		"long_press":   m.btn[btn_up].LongPressTime(),
		"debounce":     m.btn[btn_up].DebounceTime(),
		"initial_mode": m.mode,
	}).Info("button manager ready")
}

func (m *Manager) SetAppMode(mode buttonmap.AppMode) {
	if mode == m.mode {
		return
	}
	log.WithFields(log.Fields{"from": m.mode, "to": mode}).Debug("button mode")
	m.mode = mode
	m.mapping = buttonmap.MappingFor(mode)
	m.ClearEvents()
	for _, b := range m.btn {
		b.Cancel()
	}
}

func (m *Manager) AppMode() buttonmap.AppMode {
	return m.mode
}

// SetEventCallback installs f; nil restores the no-op callback.
func (m *Manager) SetEventCallback(f func(buttonmap.ButtonFunction)) {
	if f == nil {
		f = cb_default
	}
	m.callback = f
}

func (m *Manager) SetLongPressTime(ms uint32) {
	for _, b := range m.btn {
		b.SetLongPressTime(ms)
	}
}

func (m *Manager) SetDebounceTime(ms uint32) {
	for _, b := range m.btn {
		b.SetDebounceTime(ms)
	}
}

// Update advances every key and dispatches what resolved, up before down
// before screen.
func (m *Manager) Update(now uint32) {
	var fn [btn_length]buttonmap.ButtonFunction

	for i, b := range m.btn {
		p := b.Update(now)
		switch ButtonCode(i) {
		case btn_up:
			fn[i] = m.resolve(p, m.mapping.SingleUp, m.mapping.LongUp)
		case btn_down:
			fn[i] = m.resolve(p, m.mapping.SingleDown, m.mapping.LongDown)
		case btn_screen:
			// screen key acts on the press edge and has no long press
			if b.JustPressed() {
				fn[i] = m.mapping.Screen
			}
		}
	}

	for _, f := range fn {
		m.trigger(f)
	}
}

func (m *Manager) resolve(p debouncer.Press, single, long buttonmap.ButtonFunction) buttonmap.ButtonFunction {
	switch p {
	case debouncer.ShortPress:
		return single
	case debouncer.LongPress:
		return long
	}
	return buttonmap.None
}

func (m *Manager) trigger(f buttonmap.ButtonFunction) {
	if f == buttonmap.None {
		return
	}
	m.pending = f
	log.WithFields(log.Fields{"function": f, "mode": m.mode}).Debug("button event")
	m.callback(f)
}

// NextEvent returns the pending function and clears the slot.
func (m *Manager) NextEvent() buttonmap.ButtonFunction {
	f := m.pending
	m.pending = buttonmap.None
	return f
}

func (m *Manager) HasEvent() bool {
	return m.pending != buttonmap.None
}

func (m *Manager) ClearEvents() {
	m.pending = buttonmap.None
}

func (m *Manager) DebugInfo() string {
	st := func(c ButtonCode) string {
		if m.btn[c].Pressed() {
			return "down"
		}
		return "up"
	}
	return fmt.Sprintf("mode: %s, up: %s, down: %s, screen: %s, event: %s",
		m.mode, st(btn_up), st(btn_down), st(btn_screen), m.pending)
}
