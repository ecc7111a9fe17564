package joystick

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBus = errors.New("nack")

type simStick struct {
	x, y    uint16
	button  uint8
	failFor int
	reads   int
	leds    []uint32
}

func (s *simStick) ReadAxes(timeout time.Duration) (uint16, uint16, error) {
	s.reads++
	if s.failFor != 0 {
		if s.failFor > 0 {
			s.failFor--
		}
		return 0, 0, errBus
	}
	return s.x, s.y, nil
}

func (s *simStick) ButtonValue() (uint8, error) {
	return s.button, nil
}

func (s *simStick) SetRGB(color uint32) error {
	s.leds = append(s.leds, color)
	return nil
}

// offset places the stick at center plus (dx, dy). The result must be a
// 12-bit sample.
func (s *simStick) offset(dx, dy int32) {
	x, y := int32(Center)+dx, int32(Center)+dy
	if x < 0 || x > 4095 || y < 0 || y > 4095 {
		panic(fmt.Sprintf("offset (%d, %d) outside the 12-bit range", dx, dy))
	}
	s.x = uint16(x)
	s.y = uint16(y)
}

func TestClassifier(t *testing.T) {
	c := NewClassifier()
	assert.Equal(t, None, c.ClassifyOffset(0, 0))
	assert.Equal(t, Right, c.ClassifyOffset(3000, 0))
	assert.Equal(t, Left, c.ClassifyOffset(-3000, 0))
	assert.Equal(t, Up, c.ClassifyOffset(0, -3000))
	assert.Equal(t, Down, c.ClassifyOffset(0, 3000))
	assert.Equal(t, None, c.ClassifyOffset(1200, 1200))

	// past both gates but neither axis dominates
	assert.Equal(t, None, c.ClassifyOffset(2000, 1900))
	assert.Equal(t, None, c.ClassifyOffset(-2000, -2000))

	// inside the threshold on both axes
	assert.Equal(t, None, c.ClassifyOffset(1799, 0))
	assert.Equal(t, Right, c.ClassifyOffset(1800, 0))

	// raw values
	assert.Equal(t, Right, c.Classify(Center+2000, Center))
	assert.Equal(t, Up, c.Classify(Center, 0))
	assert.Equal(t, None, c.Classify(Center, Center))
}

func TestClassifierGatesAreIndependent(t *testing.T) {
	c := Classifier{Threshold: 500, Deadzone: 1500, Ratio: 1.5}
	// clears the threshold but not the deadzone
	assert.Equal(t, None, c.ClassifyOffset(1000, 0))
	assert.Equal(t, Right, c.ClassifyOffset(1600, 0))
}

func TestStabilityFilterSequence(t *testing.T) {
	f := NewStabilityFilter(3)
	seq := []Direction{Up, Up, None, Up, Up, Up}
	var changed []int
	for i, d := range seq {
		if f.Push(d) {
			changed = append(changed, i)
		}
	}
	assert.Equal(t, []int{5}, changed)
	assert.Equal(t, Up, f.Stable())
}

func TestStabilityFilterReturnToNoneIsDebounced(t *testing.T) {
	f := NewStabilityFilter(3)
	for i := 0; i < 3; i++ {
		f.Push(Right)
	}
	assert.Equal(t, Right, f.Stable())

	assert.False(t, f.Push(None))
	assert.False(t, f.Push(None))
	assert.Equal(t, Right, f.Stable())
	assert.True(t, f.Push(None))
	assert.Equal(t, None, f.Stable())

	// holding does not re-report
	assert.False(t, f.Push(None))
}

func TestStabilityFilterRequiredOne(t *testing.T) {
	f := NewStabilityFilter(1)
	assert.True(t, f.Push(Left))
	assert.False(t, f.Push(Left))
	assert.True(t, f.Push(Down))
}

func TestButtonDebouncer(t *testing.T) {
	b := NewButtonDebouncer()
	assert.Equal(t, NoButtonEvent, b.Update(0, 1))
	assert.Equal(t, Pressed, b.Update(10, 0))
	// bounce inside 200 ms
	assert.Equal(t, NoButtonEvent, b.Update(50, 1))
	assert.Equal(t, NoButtonEvent, b.Update(60, 0))
	assert.True(t, b.Pressed())
	assert.Equal(t, Released, b.Update(210, 1))
	assert.Equal(t, NoButtonEvent, b.Update(220, 1))
}

func fakeTime(s *Sampler) *time.Time {
	now := time.Unix(0, 0)
	s.now = func() time.Time { return now }
	s.sleep = func(d time.Duration) { now = now.Add(d) }
	return &now
}

func TestSamplerSuccess(t *testing.T) {
	dev := &simStick{}
	dev.offset(100, -200)
	s := NewSampler(dev)
	fakeTime(s)
	x, y, ok := s.Sample()
	assert.True(t, ok)
	assert.Equal(t, Center+100, x)
	assert.Equal(t, Center-200, y)
}

func TestSamplerRetriesThenRecovers(t *testing.T) {
	dev := &simStick{failFor: 3}
	dev.offset(0, 1500)
	s := NewSampler(dev)
	fakeTime(s)
	x, y, ok := s.Sample()
	assert.True(t, ok)
	assert.Equal(t, Center, x)
	assert.Equal(t, Center+1500, y)
	assert.Equal(t, 4, dev.reads)
}

func TestSamplerFallsBackToCenter(t *testing.T) {
	dev := &simStick{failFor: -1}
	dev.offset(2000, 0)
	s := NewSampler(dev)
	fakeTime(s)
	x, y, ok := s.Sample()
	assert.False(t, ok)
	assert.Equal(t, Center, x)
	assert.Equal(t, Center, y)
	// one try per millisecond of budget, plus the first
	assert.Equal(t, 11, dev.reads)
	assert.Equal(t, uint32(1), s.Failures())
}

func newTestController(dev *simStick) *Controller {
	c := NewController(dev)
	fakeTime(c.Sampler())
	return c
}

func TestControllerDirection(t *testing.T) {
	dev := &simStick{button: 1}
	c := newTestController(dev)

	dev.offset(2000, 0)
	assert.False(t, c.Update(0).DirectionChanged)
	assert.False(t, c.Update(10).DirectionChanged)
	u := c.Update(20)
	assert.True(t, u.DirectionChanged)
	assert.Equal(t, Right, u.Direction)
	assert.Equal(t, []uint32{ColorDirection}, dev.leds)

	// holding does not repeat
	assert.False(t, c.Update(30).DirectionChanged)

	dev.offset(0, 0)
	c.Update(40)
	c.Update(50)
	u = c.Update(60)
	assert.True(t, u.DirectionChanged)
	assert.Equal(t, None, u.Direction)
	assert.Equal(t, []uint32{ColorDirection, ColorOff}, dev.leds)
}

func TestControllerBusFaultReadsAsCenter(t *testing.T) {
	dev := &simStick{button: 1}
	c := newTestController(dev)
	dev.offset(0, -2000)
	for i := uint32(0); i < 3; i++ {
		c.Update(i * 10)
	}
	assert.Equal(t, Up, c.Direction())

	dev.failFor = -1
	for i := uint32(3); i < 6; i++ {
		c.Update(i * 10)
	}
	assert.Equal(t, None, c.Direction())
}

func TestControllerButtonAndLED(t *testing.T) {
	dev := &simStick{button: 1}
	c := newTestController(dev)

	dev.button = 0
	assert.Equal(t, Pressed, c.Update(0).Button)
	dev.button = 1
	assert.Equal(t, NoButtonEvent, c.Update(100).Button)
	assert.Equal(t, Released, c.Update(200).Button)
	assert.Equal(t, []uint32{ColorButton, ColorOff}, dev.leds)

	c.SetLEDEnabled(false)
	dev.button = 0
	assert.Equal(t, Pressed, c.Update(400).Button)
	// LED held off, and not rewritten
	assert.Equal(t, []uint32{ColorButton, ColorOff}, dev.leds)
}

func TestControllerSetConfig(t *testing.T) {
	dev := &simStick{button: 1}
	c := newTestController(dev)
	cfg := DefaultConfig()
	cfg.StableCountRequired = 1
	cfg.Threshold = 500
	cfg.Deadzone = 400
	c.SetConfig(cfg)

	dev.offset(600, 0)
	u := c.Update(0)
	assert.True(t, u.DirectionChanged)
	assert.Equal(t, Right, u.Direction)
}

func TestSimStickOffsetRange(t *testing.T) {
	dev := &simStick{}
	assert.Panics(t, func() { dev.offset(0, -3000) })
	assert.Panics(t, func() { dev.offset(2048, 0) })
	assert.NotPanics(t, func() { dev.offset(-2048, 2047) })
	assert.Equal(t, Up, NewClassifier().Classify(Center, 48))
}

func TestControllerSetThreshold(t *testing.T) {
	dev := &simStick{button: 1}
	c := newTestController(dev)
	c.SetStableCount(1)

	dev.offset(-1500, 0)
	assert.False(t, c.Update(0).DirectionChanged)
	assert.Equal(t, None, c.Direction())

	c.SetThreshold(1200)
	u := c.Update(10)
	assert.True(t, u.DirectionChanged)
	assert.Equal(t, Left, u.Direction)
}

func TestControllerSetStableCountOne(t *testing.T) {
	dev := &simStick{button: 1}
	c := newTestController(dev)
	c.SetStableCount(1)

	dev.offset(0, 2000)
	u := c.Update(0)
	assert.True(t, u.DirectionChanged)
	assert.Equal(t, Down, u.Direction)
	assert.Equal(t, Down, c.Direction())
}

func TestControllerReset(t *testing.T) {
	dev := &simStick{button: 1}
	c := newTestController(dev)
	dev.offset(0, -2000)
	for i := uint32(0); i < 3; i++ {
		c.Update(i * 10)
	}
	assert.Equal(t, Up, c.Direction())

	c.Reset()
	assert.Equal(t, None, c.Direction())
	// still held: commits again after the full count
	assert.False(t, c.Update(30).DirectionChanged)
	assert.False(t, c.Update(40).DirectionChanged)
	assert.True(t, c.Update(50).DirectionChanged)
	assert.Equal(t, Up, c.Direction())
}

func TestControllerButtonPressedAndLEDEnabled(t *testing.T) {
	dev := &simStick{button: 1}
	c := newTestController(dev)
	assert.True(t, c.LEDEnabled())
	assert.False(t, c.ButtonPressed())

	dev.button = 0
	c.Update(0)
	assert.True(t, c.ButtonPressed())

	c.SetLEDEnabled(false)
	assert.False(t, c.LEDEnabled())
	assert.Equal(t, []uint32{ColorButton, ColorOff}, dev.leds)
}
