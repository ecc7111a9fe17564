// Package joyunit drives the I2C joystick unit: two 12-bit axes, a push
// button and an RGB LED behind a small register map.
package joyunit

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/davecheney/i2c"
)

const (
	DefaultAddress uint8 = 0x63
	DefaultBus     int   = 1
)

const (
	reg_adc_12bits        = 0x00 // x, y little endian uint16
	reg_adc_8bits         = 0x10
	reg_button            = 0x20 // 0 while pressed
	reg_rgb               = 0x30
	reg_adc_cal           = 0x40 // 8 x uint16
	reg_offset_adc_12bits = 0x50 // x, y little endian int16
	reg_offset_adc_8bits  = 0x60
	reg_bootloader_ver    = 0xfc
	reg_firmware_ver      = 0xfe
	reg_i2c_address       = 0xff
)

var (
	ErrNoDevice  = errors.New("joyunit: no device")
	ErrTimeout   = errors.New("joyunit: timeout")
	ErrShortRead = errors.New("joyunit: short read")
)

// Bus is an I2C device handle already bound to the unit's address.
type Bus interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

type Unit struct {
	bus  Bus
	addr uint8
	now  func() time.Time
}

// Calibration holds the per-axis ADC limits used by the unit's firmware to
// compute the offset registers.
type Calibration struct {
	XNegMin, XNegMax, XPosMin, XPosMax uint16
	YNegMin, YNegMax, YPosMin, YPosMax uint16
}

func New(bus Bus, addr uint8) *Unit {
	return &Unit{
		bus:  bus,
		addr: addr,
		now:  time.Now,
	}
}

// Open opens /dev/i2c-<bus> for the unit at addr. The returned close
// function releases the bus.
func Open(addr uint8, bus int) (*Unit, func() error, error) {
	d, err := i2c.New(addr, bus)
	if err != nil {
		return nil, nil, fmt.Errorf("joyunit: open i2c-%d: %w", bus, err)
	}
	return New(d, addr), d.Close, nil
}

// Begin checks that something answers at the unit's address.
func (u *Unit) Begin() error {
	time.Sleep(10 * time.Millisecond)
	if _, err := u.FirmwareVersion(); err != nil {
		return fmt.Errorf("%w at 0x%02x: %v", ErrNoDevice, u.addr, err)
	}
	return nil
}

func (u *Unit) Address() uint8 {
	return u.addr
}

func (u *Unit) readReg(reg byte, buf []byte) error {
	if _, err := u.bus.Write([]byte{reg}); err != nil {
		return err
	}
	n, err := u.bus.Read(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return ErrShortRead
	}
	return nil
}

// readRegTimeout gives up between the address write and the data read if
// timeout has already passed.
func (u *Unit) readRegTimeout(reg byte, buf []byte, timeout time.Duration) error {
	start := u.now()
	if _, err := u.bus.Write([]byte{reg}); err != nil {
		return err
	}
	if u.now().Sub(start) >= timeout {
		return ErrTimeout
	}
	n, err := u.bus.Read(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return ErrShortRead
	}
	return nil
}

func (u *Unit) writeReg(reg byte, data []byte) error {
	_, err := u.bus.Write(append([]byte{reg}, data...))
	return err
}

// ReadAxes reads both 12-bit axes in one transaction.
func (u *Unit) ReadAxes(timeout time.Duration) (x, y uint16, err error) {
	var b [4]byte
	if err = u.readRegTimeout(reg_adc_12bits, b[:], timeout); err != nil {
		return 0, 0, err
	}
	return binary.LittleEndian.Uint16(b[0:]), binary.LittleEndian.Uint16(b[2:]), nil
}

func (u *Unit) ReadAxes8() (x, y uint8, err error) {
	var b [2]byte
	if err = u.readReg(reg_adc_8bits, b[:]); err != nil {
		return 0, 0, err
	}
	return b[0], b[1], nil
}

// Offsets are the firmware's calibrated signed offsets from center.
func (u *Unit) Offsets() (x, y int16, err error) {
	var b [4]byte
	if err = u.readReg(reg_offset_adc_12bits, b[:]); err != nil {
		return 0, 0, err
	}
	return int16(binary.LittleEndian.Uint16(b[0:])), int16(binary.LittleEndian.Uint16(b[2:])), nil
}

func (u *Unit) Offsets8() (x, y int8, err error) {
	var b [2]byte
	if err = u.readReg(reg_offset_adc_8bits, b[:]); err != nil {
		return 0, 0, err
	}
	return int8(b[0]), int8(b[1]), nil
}

// ButtonValue is 0 while the stick is pushed in.
func (u *Unit) ButtonValue() (uint8, error) {
	var b [1]byte
	if err := u.readReg(reg_button, b[:]); err != nil {
		return 1, err
	}
	return b[0], nil
}

// SetRGB takes 0xRRGGBB; the register holds R, G, B, brightness.
func (u *Unit) SetRGB(color uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], color)
	return u.writeReg(reg_rgb, b[:])
}

func (u *Unit) RGB() (uint32, error) {
	var b [4]byte
	if err := u.readReg(reg_rgb, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (u *Unit) FirmwareVersion() (uint8, error) {
	var b [1]byte
	err := u.readReg(reg_firmware_ver, b[:])
	return b[0], err
}

func (u *Unit) BootloaderVersion() (uint8, error) {
	var b [1]byte
	err := u.readReg(reg_bootloader_ver, b[:])
	return b[0], err
}

func (u *Unit) Calibration() (Calibration, error) {
	var b [16]byte
	if err := u.readReg(reg_adc_cal, b[:]); err != nil {
		return Calibration{}, err
	}
	v := func(i int) uint16 { return binary.LittleEndian.Uint16(b[i*2:]) }
	return Calibration{
		XNegMin: v(0), XNegMax: v(1), XPosMin: v(2), XPosMax: v(3),
		YNegMin: v(4), YNegMax: v(5), YPosMin: v(6), YPosMax: v(7),
	}, nil
}

func (u *Unit) SetCalibration(c Calibration) error {
	var b [16]byte
	for i, v := range []uint16{
		c.XNegMin, c.XNegMax, c.XPosMin, c.XPosMax,
		c.YNegMin, c.YNegMax, c.YPosMin, c.YPosMax,
	} {
		binary.LittleEndian.PutUint16(b[i*2:], v)
	}
	return u.writeReg(reg_adc_cal, b[:])
}

// SetAddress moves the unit to a new address. The bus handle stays bound to
// the old one; reopen with Open to keep talking to it.
func (u *Unit) SetAddress(addr uint8) error {
	if addr < 0x08 || addr > 0x77 {
		return fmt.Errorf("joyunit: address 0x%02x out of range", addr)
	}
	if err := u.writeReg(reg_i2c_address, []byte{addr}); err != nil {
		return err
	}
	u.addr = addr
	return nil
}
