package joystick

import (
	log "github.com/sirupsen/logrus"
)

// ButtonReader reads the stick's push button register; 0 means pressed.
type ButtonReader interface {
	ButtonValue() (uint8, error)
}

// LED is the RGB LED on the stick.
type LED interface {
	SetRGB(color uint32) error
}

// Device is what the joystick unit offers.
type Device interface {
	AxisReader
	ButtonReader
	LED
}

const (
	ColorOff       uint32 = 0x000000
	ColorDirection uint32 = 0x0000ff
	ColorButton    uint32 = 0xff0000
)

// Config holds the tunables the controller uses.
type Config struct {
	Threshold           uint16
	Deadzone            uint16
	StableCountRequired uint8
	ButtonDebounceMs    uint32
	DirectionRatio      float64
}

func DefaultConfig() Config {
	return Config{
		Threshold:           DefaultThreshold,
		Deadzone:            DefaultDeadzone,
		StableCountRequired: DefaultStableCount,
		ButtonDebounceMs:    DefaultButtonDebounceMs,
		DirectionRatio:      DefaultDirectionRatio,
	}
}

// Change is what happened on one tick.
type Change struct {
	DirectionChanged bool
	Direction        Direction
	Button           ButtonEvent
}

type Controller struct {
	dev        Device
	sampler    *Sampler
	classifier Classifier
	filter     *StabilityFilter
	button     *ButtonDebouncer

	led_enabled bool
	led_color   uint32
	led_known   bool
}

func NewController(dev Device) *Controller {
	c := &Controller{
		dev:         dev,
		sampler:     NewSampler(dev),
		classifier:  NewClassifier(),
		filter:      NewStabilityFilter(DefaultStableCount),
		button:      NewButtonDebouncer(),
		led_enabled: true,
	}
	return c
}

func (c *Controller) SetConfig(cfg Config) {
	c.classifier.Threshold = cfg.Threshold
	c.classifier.Deadzone = cfg.Deadzone
	c.classifier.Ratio = cfg.DirectionRatio
	c.filter.Required = cfg.StableCountRequired
	c.button.DebounceMs = cfg.ButtonDebounceMs
}

func (c *Controller) SetThreshold(th uint16) {
	c.classifier.Threshold = th
}

func (c *Controller) SetStableCount(n uint8) {
	c.filter.Required = n
}

func (c *Controller) Sampler() *Sampler {
	return c.sampler
}

// Update samples the stick once.
func (c *Controller) Update(now uint32) Change {
	var u Change

	raw, err := c.dev.ButtonValue()
	if err != nil {
		raw = 1
	}
	u.Button = c.button.Update(now, raw)
	switch u.Button {
	case Pressed:
		log.Debug("joystick button pressed")
		c.updateLED(ColorButton)
	case Released:
		log.Debug("joystick button released")
		c.updateLED(ColorOff)
	}

	x, y, _ := c.sampler.Sample()
	u.DirectionChanged = c.filter.Push(c.classifier.Classify(x, y))
	u.Direction = c.filter.Stable()
	if u.DirectionChanged {
		log.WithField("direction", u.Direction).Debug("joystick direction")
		if u.Direction == None {
			c.updateLED(ColorOff)
		} else {
			c.updateLED(ColorDirection)
		}
	}
	return u
}

func (c *Controller) Direction() Direction {
	return c.filter.Stable()
}

func (c *Controller) ButtonPressed() bool {
	return c.button.Pressed()
}

// Reset forgets the committed direction.
func (c *Controller) Reset() {
	c.filter.Reset()
}

func (c *Controller) SetLEDEnabled(enabled bool) {
	c.led_enabled = enabled
	if !enabled {
		c.updateLED(ColorOff)
	}
	log.WithField("enabled", enabled).Debug("joystick led")
}

func (c *Controller) LEDEnabled() bool {
	return c.led_enabled
}

// updateLED writes only when the colour changes. A disabled LED is held off.
func (c *Controller) updateLED(color uint32) {
	if !c.led_enabled {
		color = ColorOff
	}
	if c.led_known && color == c.led_color {
		return
	}
	if err := c.dev.SetRGB(color); err != nil {
		log.WithError(err).Debug("joystick led")
		return
	}
	c.led_color = color
	c.led_known = true
}
