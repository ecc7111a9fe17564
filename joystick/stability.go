package joystick

const DefaultStableCount uint8 = 3

// StabilityFilter accepts a new direction only after it has been classified
// on Required consecutive ticks. Returning to None is held to the same rule.
type StabilityFilter struct {
	Required  uint8
	candidate Direction
	count     uint8
	stable    Direction
}

func NewStabilityFilter(required uint8) *StabilityFilter {
	return &StabilityFilter{Required: required}
}

// Push feeds one classification and reports whether the stable direction
// changed.
func (f *StabilityFilter) Push(d Direction) bool {
	if d == f.candidate {
		if f.count < 0xff {
			f.count++
		}
	} else {
		f.candidate = d
		f.count = 1
	}

	req := f.Required
	if req == 0 {
		req = 1
	}
	if f.count >= req && d != f.stable {
		f.stable = d
		return true
	}
	return false
}

func (f *StabilityFilter) Stable() Direction {
	return f.stable
}

func (f *StabilityFilter) Reset() {
	f.candidate = None
	f.count = 0
	f.stable = None
}
