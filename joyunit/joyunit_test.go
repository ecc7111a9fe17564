package joyunit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// simBus answers register reads from regs and records every write.
type simBus struct {
	regs    map[byte][]byte
	reg     byte
	writes  [][]byte
	absent  bool
	onWrite func()
}

func newSimBus() *simBus {
	return &simBus{regs: map[byte][]byte{}}
}

func (b *simBus) Write(p []byte) (int, error) {
	if b.absent {
		return 0, errors.New("remote I/O error")
	}
	b.writes = append(b.writes, append([]byte(nil), p...))
	b.reg = p[0]
	if b.onWrite != nil {
		b.onWrite()
	}
	return len(p), nil
}

func (b *simBus) Read(p []byte) (int, error) {
	if b.absent {
		return 0, errors.New("remote I/O error")
	}
	return copy(p, b.regs[b.reg]), nil
}

func TestReadAxes(t *testing.T) {
	bus := newSimBus()
	bus.regs[reg_adc_12bits] = []byte{0x00, 0x08, 0xff, 0x0f}
	u := New(bus, DefaultAddress)

	x, y, err := u.ReadAxes(time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, uint16(2048), x)
	assert.Equal(t, uint16(4095), y)
}

func TestReadAxesShortRead(t *testing.T) {
	bus := newSimBus()
	bus.regs[reg_adc_12bits] = []byte{0x00, 0x08}
	u := New(bus, DefaultAddress)
	_, _, err := u.ReadAxes(time.Millisecond)
	assert.ErrorIs(t, err, ErrShortRead)
}

func TestReadAxesTimeout(t *testing.T) {
	bus := newSimBus()
	bus.regs[reg_adc_12bits] = []byte{0, 8, 0, 8}
	u := New(bus, DefaultAddress)
	now := time.Unix(0, 0)
	u.now = func() time.Time { return now }
	bus.onWrite = func() { now = now.Add(2 * time.Millisecond) }

	_, _, err := u.ReadAxes(time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestOffsets(t *testing.T) {
	bus := newSimBus()
	bus.regs[reg_offset_adc_12bits] = []byte{0x18, 0xfc, 0xe8, 0x03} // -1000, 1000
	bus.regs[reg_offset_adc_8bits] = []byte{0x80, 0x7f}
	u := New(bus, DefaultAddress)

	x, y, err := u.Offsets()
	require.NoError(t, err)
	assert.Equal(t, int16(-1000), x)
	assert.Equal(t, int16(1000), y)

	x8, y8, err := u.Offsets8()
	require.NoError(t, err)
	assert.Equal(t, int8(-128), x8)
	assert.Equal(t, int8(127), y8)
}

func TestButtonValue(t *testing.T) {
	bus := newSimBus()
	bus.regs[reg_button] = []byte{0}
	u := New(bus, DefaultAddress)
	v, err := u.ButtonValue()
	require.NoError(t, err)
	assert.Equal(t, uint8(0), v)

	bus.absent = true
	v, err = u.ButtonValue()
	assert.Error(t, err)
	assert.Equal(t, uint8(1), v, "reads as released on error")
}

func TestSetRGB(t *testing.T) {
	bus := newSimBus()
	u := New(bus, DefaultAddress)
	require.NoError(t, u.SetRGB(0x0000ff))
	assert.Equal(t, []byte{reg_rgb, 0xff, 0, 0, 0}, bus.writes[0])
}

func TestCalibrationRoundTrip(t *testing.T) {
	bus := newSimBus()
	u := New(bus, DefaultAddress)
	c := Calibration{1, 2, 3, 4, 5, 6, 7, 0x0fff}
	require.NoError(t, u.SetCalibration(c))
	w := bus.writes[0]
	assert.Equal(t, byte(reg_adc_cal), w[0])
	bus.regs[reg_adc_cal] = w[1:]

	got, err := u.Calibration()
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestBegin(t *testing.T) {
	bus := newSimBus()
	bus.regs[reg_firmware_ver] = []byte{2}
	u := New(bus, DefaultAddress)
	assert.NoError(t, u.Begin())

	v, err := u.FirmwareVersion()
	require.NoError(t, err)
	assert.Equal(t, uint8(2), v)

	bus.absent = true
	assert.ErrorIs(t, u.Begin(), ErrNoDevice)
}

func TestSetAddress(t *testing.T) {
	bus := newSimBus()
	u := New(bus, DefaultAddress)
	assert.Error(t, u.SetAddress(0x02))
	require.NoError(t, u.SetAddress(0x64))
	assert.Equal(t, uint8(0x64), u.Address())
	assert.Equal(t, []byte{reg_i2c_address, 0x64}, bus.writes[0])
}

func TestReadAxes8(t *testing.T) {
	bus := newSimBus()
	bus.regs[reg_adc_8bits] = []byte{0x80, 0xff}
	u := New(bus, DefaultAddress)
	x, y, err := u.ReadAxes8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x80), x)
	assert.Equal(t, uint8(0xff), y)
	assert.Equal(t, []byte{reg_adc_8bits}, bus.writes[0])
}

func TestRGB(t *testing.T) {
	bus := newSimBus()
	bus.regs[reg_rgb] = []byte{0x00, 0x00, 0xff, 0x00}
	u := New(bus, DefaultAddress)
	c, err := u.RGB()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xff0000), c)

	bus.regs[reg_rgb] = []byte{0x00, 0x00}
	_, err = u.RGB()
	assert.ErrorIs(t, err, ErrShortRead)
}

func TestBootloaderVersion(t *testing.T) {
	bus := newSimBus()
	bus.regs[reg_bootloader_ver] = []byte{3}
	u := New(bus, DefaultAddress)
	v, err := u.BootloaderVersion()
	require.NoError(t, err)
	assert.Equal(t, uint8(3), v)
	assert.Equal(t, []byte{reg_bootloader_ver}, bus.writes[0])
}
