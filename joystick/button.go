package joystick

type ButtonEvent int

const (
	NoButtonEvent ButtonEvent = iota
	Pressed
	Released
)

func (e ButtonEvent) String() string {
	switch e {
	case Pressed:
		return "pressed"
	case Released:
		return "released"
	}
	return "none"
}

const DefaultButtonDebounceMs uint32 = 200

// ButtonDebouncer debounces the push button built into the stick. It only
// reports edges; there is no long press.
type ButtonDebouncer struct {
	DebounceMs uint32

	pressed        bool
	lastTransition uint32
	haveTransition bool
}

func NewButtonDebouncer() *ButtonDebouncer {
	return &ButtonDebouncer{DebounceMs: DefaultButtonDebounceMs}
}

// Update takes the raw register value; 0 means pressed.
func (b *ButtonDebouncer) Update(now uint32, raw uint8) ButtonEvent {
	p := raw == 0
	if p == b.pressed {
		return NoButtonEvent
	}
	if b.haveTransition && now-b.lastTransition < b.DebounceMs {
		return NoButtonEvent
	}
	b.pressed = p
	b.lastTransition = now
	b.haveTransition = true
	if p {
		return Pressed
	}
	return Released
}

func (b *ButtonDebouncer) Pressed() bool {
	return b.pressed
}
