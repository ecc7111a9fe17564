package adapter

import (
	"fmt"

	"reader.raspi/reader_r/buttonmap"
	"reader.raspi/reader_r/joystick"
)

// UnifiedInputEvent is what the application sees, whichever input produced
// it.
type UnifiedInputEvent int

const (
	None UnifiedInputEvent = iota

	NavigateUp
	NavigateDown
	NavigateLeft
	NavigateRight
	Confirm
	Cancel
	Home

	PagePrevious
	PageNext
	EnterMenu

	ToggleScreen
	AdjustBrightness
	eventLength
)

var eventName = [eventLength]string{
	"NONE",
	"NAVIGATE_UP",
	"NAVIGATE_DOWN",
	"NAVIGATE_LEFT",
	"NAVIGATE_RIGHT",
	"CONFIRM",
	"CANCEL",
	"HOME",
	"PAGE_PREVIOUS",
	"PAGE_NEXT",
	"ENTER_MENU",
	"TOGGLE_SCREEN",
	"ADJUST_BRIGHTNESS",
}

func (e UnifiedInputEvent) String() string {
	if e < 0 || e >= eventLength {
		return fmt.Sprintf("UNKNOWN(%d)", int(e))
	}
	return eventName[e]
}

var functionEvent = map[buttonmap.ButtonFunction]UnifiedInputEvent{
	buttonmap.NavUp:            NavigateUp,
	buttonmap.NavDown:          NavigateDown,
	buttonmap.NavSelect:        Confirm,
	buttonmap.NavBack:          Cancel,
	buttonmap.NavHome:          Home,
	buttonmap.PageUp:           PagePrevious,
	buttonmap.PageDown:         PageNext,
	buttonmap.ScreenToggle:     ToggleScreen,
	buttonmap.MenuEnter:        EnterMenu,
	buttonmap.BrightnessAdjust: AdjustBrightness,
}

// FromFunction is the fixed, mode independent button translation.
func FromFunction(f buttonmap.ButtonFunction) UnifiedInputEvent {
	return functionEvent[f]
}

// FromDirection translates a committed stick direction. Up and down turn
// pages while reading and navigate everywhere else.
func FromDirection(mode buttonmap.AppMode, d joystick.Direction) UnifiedInputEvent {
	reading := mode == buttonmap.ContentReading
	switch d {
	case joystick.Up:
		if reading {
			return PagePrevious
		}
		return NavigateUp
	case joystick.Down:
		if reading {
			return PageNext
		}
		return NavigateDown
	case joystick.Left:
		return NavigateLeft
	case joystick.Right:
		return NavigateRight
	}
	return None
}

// FromStickButton translates a press of the stick's push button.
func FromStickButton(mode buttonmap.AppMode) UnifiedInputEvent {
	switch mode {
	case buttonmap.ContentReading:
		return EnterMenu
	case buttonmap.MainMenu, buttonmap.FileList, buttonmap.SystemConfig, buttonmap.SubMenu:
		return Confirm
	}
	return None
}
