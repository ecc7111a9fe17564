// Package inputcfg loads the device configuration from an INI file.
//
// Loading never fails on bad values: each key that does not parse or is out
// of range keeps its default and a warning is logged. A missing file gives
// the defaults.
package inputcfg

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

const DefaultPath = "/etc/reader/input.ini"

// Input holds the tunables of the input core.
type Input struct {
	LongPressMs         uint32
	ButtonDebounceMs    uint32
	JoystickDebounceMs  uint32
	ADCThreshold        uint16
	ADCDeadzone         uint16
	StableCountRequired uint8
	DirectionRatio      float64
	RepeatDelayMs       uint32
}

func DefaultInput() Input {
	return Input{
		LongPressMs:         600,
		ButtonDebounceMs:    50,
		JoystickDebounceMs:  200,
		ADCThreshold:        1800,
		ADCDeadzone:         1000,
		StableCountRequired: 3,
		DirectionRatio:      1.5,
		RepeatDelayMs:       200,
	}
}

// Sanitize replaces values the core cannot work with by their defaults.
func (in Input) Sanitize() Input {
	d := DefaultInput()
	if in.LongPressMs == 0 {
		warn("long_press_ms", in.LongPressMs, d.LongPressMs)
		in.LongPressMs = d.LongPressMs
	}
	if in.StableCountRequired == 0 {
		warn("stable_count_required", in.StableCountRequired, d.StableCountRequired)
		in.StableCountRequired = d.StableCountRequired
	}
	// NaN and infinity make every dominance test false
	if !(in.DirectionRatio >= 1) || math.IsInf(in.DirectionRatio, 1) {
		warn("direction_ratio", in.DirectionRatio, d.DirectionRatio)
		in.DirectionRatio = d.DirectionRatio
	}
	if in.ADCThreshold > 2048 {
		warn("adc_threshold", in.ADCThreshold, d.ADCThreshold)
		in.ADCThreshold = d.ADCThreshold
	}
	if in.ADCDeadzone > 2048 {
		warn("adc_deadzone", in.ADCDeadzone, d.ADCDeadzone)
		in.ADCDeadzone = d.ADCDeadzone
	}
	return in
}

func warn(key string, bad, def interface{}) {
	log.WithFields(log.Fields{"key": key, "value": bad, "default": def}).Warn("invalid config value")
}

type Joystick struct {
	Enabled bool
	Bus     int
	Address uint8
	LED     bool
}

type Buttons struct {
	Backend     string // rpio, periph or evdev
	Up          string
	Down        string
	Screen      string
	EvdevDevice string
}

type Sink struct {
	WebhookURL   string
	MQTTBroker   string
	MQTTTopic    string
	MQTTClientID string
}

type Log struct {
	Level  string
	Format string
}

type App struct {
	Mode          string
	ControlSocket string
}

type Config struct {
	Input    Input
	Joystick Joystick
	Buttons  Buttons
	Sink     Sink
	Log      Log
	App      App
}

func Default() Config {
	return Config{
		Input: DefaultInput(),
		Joystick: Joystick{
			Enabled: true,
			Bus:     1,
			Address: 0x63,
			LED:     true,
		},
		Buttons: Buttons{
			Backend:     "rpio",
			Up:          "8",
			Down:        "9",
			Screen:      "14",
			EvdevDevice: "/dev/input/event0",
		},
		Sink: Sink{
			MQTTTopic:    "reader/input",
			MQTTClientID: "reader-input",
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		App: App{
			Mode:          "main_menu",
			ControlSocket: "/run/reader/input.sock",
		},
	}
}

// Load reads path. A missing file is not an error.
func Load(path string) (Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			log.WithField("path", path).Info("no config file, using defaults")
			return Default(), nil
		}
		return Default(), fmt.Errorf("inputcfg: %w", err)
	}
	return fromFile(f), nil
}

// Parse reads an INI document from memory.
func Parse(data []byte) (Config, error) {
	f, err := ini.Load(data)
	if err != nil {
		return Default(), fmt.Errorf("inputcfg: %w", err)
	}
	return fromFile(f), nil
}

func fromFile(f *ini.File) Config {
	c := Default()

	in := f.Section("input")
	c.Input.LongPressMs = getUint32(in, "long_press_ms", c.Input.LongPressMs)
	c.Input.ButtonDebounceMs = getUint32(in, "button_debounce_ms", c.Input.ButtonDebounceMs)
	c.Input.JoystickDebounceMs = getUint32(in, "joystick_debounce_ms", c.Input.JoystickDebounceMs)
	c.Input.ADCThreshold = uint16(getRange(in, "adc_threshold", int(c.Input.ADCThreshold), 0, 2048))
	c.Input.ADCDeadzone = uint16(getRange(in, "adc_deadzone", int(c.Input.ADCDeadzone), 0, 2048))
	c.Input.StableCountRequired = uint8(getRange(in, "stable_count_required", int(c.Input.StableCountRequired), 1, 255))
	c.Input.RepeatDelayMs = getUint32(in, "repeat_delay_ms", c.Input.RepeatDelayMs)
	if k, err := in.GetKey("direction_ratio"); err == nil {
		if v, err := k.Float64(); err == nil && v >= 1 && !math.IsInf(v, 1) {
			c.Input.DirectionRatio = v
		} else {
			warn("direction_ratio", k.String(), c.Input.DirectionRatio)
		}
	}
	c.Input = c.Input.Sanitize()

	js := f.Section("joystick")
	c.Joystick.Enabled = getBool(js, "enabled", c.Joystick.Enabled)
	c.Joystick.Bus = getRange(js, "bus", c.Joystick.Bus, 0, 255)
	c.Joystick.Address = uint8(getRange(js, "address", int(c.Joystick.Address), 0x08, 0x77))
	c.Joystick.LED = getBool(js, "led", c.Joystick.LED)

	bt := f.Section("buttons")
	switch b := bt.Key("backend").MustString(c.Buttons.Backend); b {
	case "rpio", "periph", "evdev":
		c.Buttons.Backend = b
	default:
		warn("backend", b, c.Buttons.Backend)
	}
	c.Buttons.Up = bt.Key("up").MustString(c.Buttons.Up)
	c.Buttons.Down = bt.Key("down").MustString(c.Buttons.Down)
	c.Buttons.Screen = bt.Key("screen").MustString(c.Buttons.Screen)
	c.Buttons.EvdevDevice = bt.Key("evdev_device").MustString(c.Buttons.EvdevDevice)

	sk := f.Section("sink")
	c.Sink.WebhookURL = sk.Key("webhook_url").String()
	c.Sink.MQTTBroker = sk.Key("mqtt_broker").String()
	c.Sink.MQTTTopic = sk.Key("mqtt_topic").MustString(c.Sink.MQTTTopic)
	c.Sink.MQTTClientID = sk.Key("mqtt_client_id").MustString(c.Sink.MQTTClientID)

	lg := f.Section("log")
	c.Log.Level = lg.Key("level").MustString(c.Log.Level)
	c.Log.Format = lg.Key("format").In(c.Log.Format, []string{"text", "json"})

	ap := f.Section("app")
	c.App.Mode = ap.Key("mode").MustString(c.App.Mode)
	c.App.ControlSocket = ap.Key("control_socket").MustString(c.App.ControlSocket)
	return c
}

func getUint32(s *ini.Section, key string, def uint32) uint32 {
	if !s.HasKey(key) {
		return def
	}
	v, err := s.Key(key).Uint64()
	if err != nil || v > 0xffffffff {
		warn(key, s.Key(key).String(), def)
		return def
	}
	return uint32(v)
}

// getRange accepts decimal or 0x prefixed values in [lo, hi].
func getRange(s *ini.Section, key string, def, lo, hi int) int {
	if !s.HasKey(key) {
		return def
	}
	v, err := s.Key(key).Int()
	if err != nil || v < lo || v > hi {
		warn(key, s.Key(key).String(), def)
		return def
	}
	return v
}

func getBool(s *ini.Section, key string, def bool) bool {
	if !s.HasKey(key) {
		return def
	}
	v, err := s.Key(key).Bool()
	if err != nil {
		warn(key, s.Key(key).String(), def)
		return def
	}
	return v
}

// Apply sets the logrus level and formatter from the [log] section.
func (l Log) Apply() {
	lv, err := log.ParseLevel(l.Level)
	if err != nil {
		warn("level", l.Level, "info")
		lv = log.InfoLevel
	}
	log.SetLevel(lv)
	if l.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
