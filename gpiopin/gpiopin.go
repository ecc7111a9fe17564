// Package gpiopin reads the key lines. All keys are wired to ground with the
// internal pull-up enabled, so a low level means pressed.
package gpiopin

import (
	"fmt"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/stianeikeland/go-rpio/v4"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Rpio is a key on a BCM GPIO line driven through /dev/gpiomem.
type Rpio struct {
	pin rpio.Pin
}

var rpio_once sync.Once
var rpio_err error

// OpenRpio maps the GPIO registers once and configures the line named by
// num (a BCM number) as a pulled-up input.
func OpenRpio(num string) (*Rpio, error) {
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 || n > 27 {
		return nil, fmt.Errorf("gpiopin: bad bcm pin %q", num)
	}
	rpio_once.Do(func() {
		rpio_err = rpio.Open()
	})
	if rpio_err != nil {
		return nil, fmt.Errorf("gpiopin: %w", rpio_err)
	}
	p := rpio.Pin(n)
	p.Input()
	p.PullUp()
	log.WithField("pin", n).Debug("rpio input")
	return &Rpio{pin: p}, nil
}

func (r *Rpio) Asserted() bool {
	return r.pin.Read() == rpio.Low
}

// CloseRpio unmaps the registers.
func CloseRpio() error {
	return rpio.Close()
}

// Periph is a key on any line periph knows by name (GPIO8, P1_24, ...).
type Periph struct {
	pin gpio.PinIn
}

// OpenPeriph initializes the host drivers and looks up name.
func OpenPeriph(name string) (*Periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpiopin: periph host: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpiopin: no pin %q", name)
	}
	return NewPeriph(p)
}

// NewPeriph configures p as a pulled-up input without edge detection; the
// main loop polls it.
func NewPeriph(p gpio.PinIn) (*Periph, error) {
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("gpiopin: %s: %w", p, err)
	}
	log.WithField("pin", p.String()).Debug("periph input")
	return &Periph{pin: p}, nil
}

func (p *Periph) Asserted() bool {
	return p.pin.Read() == gpio.Low
}
