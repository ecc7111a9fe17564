package buttonmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappingForIsPure(t *testing.T) {
	for _, m := range Modes() {
		assert.Equal(t, MappingFor(m), MappingFor(m), m.String())
	}
}

func TestMappingForTable(t *testing.T) {
	r := MappingFor(ContentReading)
	assert.Equal(t, PageUp, r.SingleUp)
	assert.Equal(t, PageDown, r.SingleDown)
	assert.Equal(t, MenuEnter, r.LongUp)
	assert.Equal(t, NavHome, r.LongDown)

	mm := MappingFor(MainMenu)
	assert.Equal(t, NavUp, mm.SingleUp)
	assert.Equal(t, NavSelect, mm.LongUp)
	assert.Equal(t, NavBack, mm.LongDown)

	assert.Equal(t, NavHome, MappingFor(FileList).LongDown)
	assert.Equal(t, NavHome, MappingFor(SystemConfig).LongDown)
	assert.Equal(t, BrightnessAdjust, MappingFor(SubMenu).LongUp)

	for _, m := range Modes() {
		assert.Equal(t, ScreenToggle, MappingFor(m).Screen, m.String())
	}
}

func TestMappingForUnknownMode(t *testing.T) {
	assert.Equal(t, ButtonFunctionMapping{}, MappingFor(AppMode(42)))
	assert.Equal(t, ButtonFunctionMapping{}, MappingFor(AppMode(-1)))
}

// every function except None is reachable from some mode
func TestMappingCoversAllFunctions(t *testing.T) {
	seen := map[ButtonFunction]bool{}
	for _, m := range Modes() {
		f := MappingFor(m)
		for _, v := range []ButtonFunction{f.SingleUp, f.SingleDown, f.LongUp, f.LongDown, f.Screen} {
			seen[v] = true
		}
	}
	for f := NavUp; f < buttonFunctionLength; f++ {
		assert.True(t, seen[f], f.String())
	}
	assert.False(t, seen[None])
}

func TestParseAppMode(t *testing.T) {
	for _, m := range Modes() {
		p, err := ParseAppMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, p)
	}
	p, err := ParseAppMode("  MAIN_MENU\n")
	require.NoError(t, err)
	assert.Equal(t, MainMenu, p)

	_, err = ParseAppMode("radio")
	assert.Error(t, err)
}
