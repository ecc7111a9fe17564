// Package evdevkeys exposes keys of a Linux input device (gpio-keys overlay,
// USB keypad, IR receiver) as level readable pins.
package evdevkeys

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

type input_event struct {
	Tv    unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

const (
	KEY_ENTER      = 28
	KEY_A          = 30
	KEY_C          = 46
	KEY_B          = 48
	KEY_UP         = 103
	KEY_PAGEUP     = 104
	KEY_LEFT       = 105
	KEY_RIGHT      = 106
	KEY_DOWN       = 108
	KEY_PAGEDOWN   = 109
	KEY_VOLUMEDOWN = 114
	KEY_VOLUMEUP   = 115
	KEY_POWER      = 116
	KEY_STOP       = 128
	KEY_SCREENLOCK = 152
	KEY_SELECT     = 0x161

	key_release = 0
	key_press   = 1
	key_repeat  = 2
)

var key_name = map[string]uint16{
	"KEY_ENTER":      KEY_ENTER,
	"KEY_A":          KEY_A,
	"KEY_B":          KEY_B,
	"KEY_C":          KEY_C,
	"KEY_UP":         KEY_UP,
	"KEY_PAGEUP":     KEY_PAGEUP,
	"KEY_LEFT":       KEY_LEFT,
	"KEY_RIGHT":      KEY_RIGHT,
	"KEY_DOWN":       KEY_DOWN,
	"KEY_PAGEDOWN":   KEY_PAGEDOWN,
	"KEY_VOLUMEDOWN": KEY_VOLUMEDOWN,
	"KEY_VOLUMEUP":   KEY_VOLUMEUP,
	"KEY_POWER":      KEY_POWER,
	"KEY_STOP":       KEY_STOP,
	"KEY_SCREENLOCK": KEY_SCREENLOCK,
	"KEY_SELECT":     KEY_SELECT,
}

var event_size = int(unsafe.Sizeof(input_event{}))
var tv_size = int(unsafe.Sizeof(unix.Timeval{}))

// ParseKey accepts a KEY_ name or a decimal code.
func ParseKey(s string) (uint16, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if c, ok := key_name[s]; ok {
		return c, nil
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("evdevkeys: unknown key %q", s)
	}
	return uint16(n), nil
}

// Key is the level of one key code. The zero value reads as released.
type Key struct {
	code uint16
	down atomic.Bool
}

func (k *Key) Asserted() bool {
	return k.down.Load()
}

func (k *Key) Code() uint16 {
	return k.code
}

type Device struct {
	f       *os.File
	mu      sync.Mutex
	keys    map[uint16]*Key
	done    chan struct{}
	started bool
}

// Open opens path non-blocking so that Close unblocks the reader.
func Open(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("evdevkeys: open %s: %w", path, err)
	}
	return newDevice(os.NewFile(uintptr(fd), path)), nil
}

func newDevice(f *os.File) *Device {
	return &Device{
		f:    f,
		keys: map[uint16]*Key{},
		done: make(chan struct{}),
	}
}

// Key returns the reader for code; the same pointer for repeated calls.
func (d *Device) Key(code uint16) *Key {
	d.mu.Lock()
	defer d.mu.Unlock()
	k, ok := d.keys[code]
	if !ok {
		k = &Key{code: code}
		d.keys[code] = k
	}
	return k
}

// Start runs the reader goroutine until Close.
func (d *Device) Start() {
	d.started = true
	go func() {
		defer close(d.done)
		if err := d.run(d.f); err != nil {
			log.WithError(err).Error("evdev reader stopped")
		}
	}()
}

func (d *Device) Close() error {
	err := d.f.Close()
	if d.started {
		<-d.done
	}
	return err
}

func (d *Device) run(r io.Reader) error {
	buf := make([]byte, event_size*16)
	for {
		n, err := r.Read(buf)
		for off := 0; off+event_size <= n; off += event_size {
			d.handle(decode(buf[off : off+event_size]))
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return err
		}
	}
}

func decode(b []byte) input_event {
	return input_event{
		Type:  binary.NativeEndian.Uint16(b[tv_size:]),
		Code:  binary.NativeEndian.Uint16(b[tv_size+2:]),
		Value: int32(binary.NativeEndian.Uint32(b[tv_size+4:])),
	}
}

func (d *Device) handle(ev input_event) {
	if ev.Type != unix.EV_KEY {
		return
	}
	d.mu.Lock()
	k := d.keys[ev.Code]
	d.mu.Unlock()
	if k == nil {
		return
	}
	switch ev.Value {
	case key_press:
		k.down.Store(true)
	case key_release:
		k.down.Store(false)
	case key_repeat:
		// autorepeat carries no level change
	}
}
