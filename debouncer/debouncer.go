package debouncer

import (
	log "github.com/sirupsen/logrus"
)

// PinReader is one digital input. Asserted returns true while the key is
// held; drivers for active-low wiring do the inversion.
type PinReader interface {
	Asserted() bool
}

type Press int

const (
	NoPress Press = iota
	ShortPress
	LongPress
)

func (p Press) String() string {
	switch p {
	case ShortPress:
		return "short"
	case LongPress:
		return "long"
	}
	return "none"
}

const (
	DefaultDebounceMs  uint32 = 50
	DefaultLongPressMs uint32 = 600
)

// State is a snapshot of one button.
type State struct {
	Pressed        bool
	LastPressed    bool
	PressTime      uint32
	ReleaseTime    uint32
	LongPressFired bool
	Cancelled      bool
	LastTransition uint32
	haveTransition bool
	justPressed    bool
}

// Button classifies the presses of one physical key. Times are milliseconds
// from a wrapping uint32 clock; all comparisons use unsigned subtraction.
type Button struct {
	name         string
	pin          PinReader
	debounce_ms  uint32
	longpress_ms uint32
	st           State
}

func New(name string, pin PinReader) *Button {
	return &Button{
		name:         name,
		pin:          pin,
		debounce_ms:  DefaultDebounceMs,
		longpress_ms: DefaultLongPressMs,
	}
}

func (b *Button) Name() string {
	return b.name
}

func (b *Button) SetDebounceTime(ms uint32) {
	b.debounce_ms = ms
}

func (b *Button) SetLongPressTime(ms uint32) {
	b.longpress_ms = ms
}

func (b *Button) DebounceTime() uint32 {
	return b.debounce_ms
}

func (b *Button) LongPressTime() uint32 {
	return b.longpress_ms
}

// Prime takes the current pin level as the settled state without reporting
// an edge, so a key held at power on is not seen as a fresh press.
func (b *Button) Prime() {
	p := b.pin.Asserted()
	b.st.Pressed = p
	b.st.LastPressed = p
	if p {
		// the press began before we were watching
		b.st.Cancelled = true
	}
}

// Update samples the pin and advances the state machine. At most one
// LongPress (while held) or one ShortPress (at release) is returned per
// press cycle.
func (b *Button) Update(now uint32) Press {
	raw := b.pin.Asserted()
	b.st.LastPressed = b.st.Pressed
	b.st.justPressed = false

	if raw != b.st.Pressed && b.edgeAllowed(now) {
		b.st.Pressed = raw
		b.st.LastTransition = now
		b.st.haveTransition = true

		if raw {
			b.st.PressTime = now
			b.st.LongPressFired = false
			b.st.Cancelled = false
			b.st.justPressed = true
			log.WithFields(log.Fields{"button": b.name, "t": now}).Debug("press")
			return NoPress
		}

		b.st.ReleaseTime = now
		held := now - b.st.PressTime
		log.WithFields(log.Fields{"button": b.name, "t": now, "held_ms": held}).Debug("release")
		if b.st.LongPressFired || b.st.Cancelled {
			// long press already reported, or the press belongs to a
			// context that no longer exists
			return NoPress
		}
		if held >= b.longpress_ms {
			// released on the tick the long press timer would have expired
			b.st.LongPressFired = true
			return LongPress
		}
		return ShortPress
	}

	if b.st.Pressed && !b.st.LongPressFired && !b.st.Cancelled {
		if now-b.st.PressTime >= b.longpress_ms {
			b.st.LongPressFired = true
			log.WithFields(log.Fields{"button": b.name, "held_ms": now - b.st.PressTime}).Debug("long press")
			return LongPress
		}
	}
	return NoPress
}

func (b *Button) edgeAllowed(now uint32) bool {
	if !b.st.haveTransition {
		return true
	}
	return now-b.st.LastTransition >= b.debounce_ms
}

// JustPressed is true for the tick on which a press edge was accepted.
func (b *Button) JustPressed() bool {
	return b.st.justPressed
}

func (b *Button) Pressed() bool {
	return b.st.Pressed
}

// Cancel drops the press in progress: neither a long press nor a short press
// will be reported for it. The next accepted press starts clean.
func (b *Button) Cancel() {
	b.st.LongPressFired = false
	b.st.justPressed = false
	if b.st.Pressed {
		b.st.Cancelled = true
	}
}

func (b *Button) State() State {
	return b.st
}
