package joystick

type Direction int

const (
	None Direction = iota
	Up
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "none"
}

// Center is the rest value of each axis: the 12-bit midpoint carried in a
// 16-bit field.
const Center uint16 = 2048

const (
	DefaultThreshold      uint16  = 1800
	DefaultDeadzone       uint16  = 1000
	DefaultDirectionRatio float64 = 1.5
)

// Classifier maps a raw axis pair to a direction. A deadzone gate, a
// threshold gate and a dominance test are applied in that order; a push that
// is not clearly along one axis is None.
type Classifier struct {
	Threshold uint16
	Deadzone  uint16
	Ratio     float64
}

func NewClassifier() Classifier {
	return Classifier{
		Threshold: DefaultThreshold,
		Deadzone:  DefaultDeadzone,
		Ratio:     DefaultDirectionRatio,
	}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// Classify takes raw ADC values.
func (c Classifier) Classify(x_adc, y_adc uint16) Direction {
	return c.ClassifyOffset(int32(x_adc)-int32(Center), int32(y_adc)-int32(Center))
}

// ClassifyOffset takes offsets from Center. Positive y is Down.
func (c Classifier) ClassifyOffset(dx, dy int32) Direction {
	ax := abs32(dx)
	ay := abs32(dy)
	dz := int32(c.Deadzone)
	th := int32(c.Threshold)

	if ax < dz && ay < dz {
		return None
	}
	if ax < th && ay < th {
		return None
	}

	switch {
	case float64(ax) > float64(ay)*c.Ratio:
		if dx > 0 {
			return Right
		}
		return Left
	case float64(ay) > float64(ax)*c.Ratio:
		if dy > 0 {
			return Down
		}
		return Up
	}
	return None
}
