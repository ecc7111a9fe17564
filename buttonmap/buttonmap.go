package buttonmap

import (
	"fmt"
	"strings"
)

// AppMode is the current UI context. It is the only thing that decides how a
// physical key press is remapped.
type AppMode int

const (
	ContentReading AppMode = iota // text reading
	MainMenu
	FileList
	SystemConfig
	SubMenu // brightness and similar value pages
	appModeLength
)

var appModeName = [appModeLength]string{
	"content_reading",
	"main_menu",
	"file_list",
	"system_config",
	"sub_menu",
}

func (m AppMode) String() string {
	if m < 0 || m >= appModeLength {
		return fmt.Sprintf("unknown(%d)", int(m))
	}
	return appModeName[m]
}

// Valid reports whether m has an entry in the mapping table.
func (m AppMode) Valid() bool {
	return m >= 0 && m < appModeLength
}

// ParseAppMode accepts the names returned by AppMode.String, case-insensitive.
func ParseAppMode(s string) (AppMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range appModeName {
		if n == s {
			return AppMode(i), nil
		}
	}
	return 0, fmt.Errorf("buttonmap: unknown app mode %q", s)
}

// ButtonFunction is a semantic action independent of the key that produced it.
type ButtonFunction int

const (
	None ButtonFunction = iota

	NavUp
	NavDown
	NavSelect
	NavBack
	NavHome

	PageUp
	PageDown

	ScreenToggle
	MenuEnter
	BrightnessAdjust
	buttonFunctionLength
)

var buttonFunctionName = [buttonFunctionLength]string{
	"none",
	"nav_up",
	"nav_down",
	"nav_select",
	"nav_back",
	"nav_home",
	"page_up",
	"page_down",
	"screen_toggle",
	"menu_enter",
	"brightness_adjust",
}

func (f ButtonFunction) String() string {
	if f < 0 || f >= buttonFunctionLength {
		return fmt.Sprintf("unknown(%d)", int(f))
	}
	return buttonFunctionName[f]
}

// ButtonFunctionMapping says which function each press kind produces.
type ButtonFunctionMapping struct {
	SingleUp   ButtonFunction
	SingleDown ButtonFunction
	LongUp     ButtonFunction
	LongDown   ButtonFunction
	Screen     ButtonFunction
}

// mode_table is indexed by AppMode.
var mode_table = [appModeLength]ButtonFunctionMapping{
	// content reading: clicks turn pages, long up opens the menu
	{SingleUp: PageUp, SingleDown: PageDown, LongUp: MenuEnter, LongDown: NavHome, Screen: ScreenToggle},
	// main menu
	{SingleUp: NavUp, SingleDown: NavDown, LongUp: NavSelect, LongDown: NavBack, Screen: ScreenToggle},
	// file list
	{SingleUp: NavUp, SingleDown: NavDown, LongUp: NavSelect, LongDown: NavHome, Screen: ScreenToggle},
	// system config
	{SingleUp: NavUp, SingleDown: NavDown, LongUp: NavSelect, LongDown: NavHome, Screen: ScreenToggle},
	// sub menu: long up confirms the value being adjusted
	{SingleUp: NavUp, SingleDown: NavDown, LongUp: BrightnessAdjust, LongDown: NavBack, Screen: ScreenToggle},
}

// MappingFor returns the mapping for mode. Modes outside the table map every
// press kind to None.
func MappingFor(mode AppMode) ButtonFunctionMapping {
	if !mode.Valid() {
		return ButtonFunctionMapping{}
	}
	return mode_table[mode]
}

// Modes lists every mode in the table, in order.
func Modes() []AppMode {
	m := make([]AppMode, 0, appModeLength)
	for i := AppMode(0); i < appModeLength; i++ {
		m = append(m, i)
	}
	return m
}
