package hid_test

import (
	"testing"

	evdev "github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"

	"github.com/dharunap/ninjausb/hid"
)

func TestKeyboardUsage(t *testing.T) {
	type testCase struct {
		name     string
		code     evdev.EvCode
		expected uint8
		mapped   bool
	}

	cases := []testCase{
		{"letter a", evdev.KEY_A, 0x04, true},
		{"letter z", evdev.KEY_Z, 0x1D, true},
		{"digit one", evdev.KEY_1, 0x1E, true},
		{"digit zero", evdev.KEY_0, 0x27, true},
		{"enter", evdev.KEY_ENTER, 0x28, true},
		{"semicolon skips the non-us hash slot", evdev.KEY_SEMICOLON, 0x33, true},
		{"f12", evdev.KEY_F12, 0x45, true},
		{"up arrow", evdev.KEY_UP, 0x52, true},
		{"keypad equal", evdev.KEY_KPEQUAL, 0x67, true},
		{"left ctrl", evdev.KEY_LEFTCTRL, 0xE0, true},
		{"right meta", evdev.KEY_RIGHTMETA, 0xE7, true},
		{"volume up is not a keyboard key", evdev.KEY_VOLUMEUP, 0, false},
		{"mouse button is not a keyboard key", evdev.BTN_LEFT, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			usage, ok := hid.KeyboardUsage(tc.code)
			assert.Equal(t, tc.mapped, ok)
			assert.Equal(t, tc.expected, usage)
		})
	}
}

func TestConsumerUsage(t *testing.T) {
	type testCase struct {
		name     string
		code     evdev.EvCode
		expected uint16
		mapped   bool
	}

	cases := []testCase{
		{"volume up", evdev.KEY_VOLUMEUP, 0x00E9, true},
		{"mute", evdev.KEY_MUTE, 0x00E2, true},
		{"play pause", evdev.KEY_PLAYPAUSE, 0x00CD, true},
		{"brightness down", evdev.KEY_BRIGHTNESSDOWN, 0x0070, true},
		{"browser refresh", evdev.KEY_REFRESH, 0x0227, true},
		{"plain letter is not a consumer key", evdev.KEY_A, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			usage, ok := hid.ConsumerUsage(tc.code)
			assert.Equal(t, tc.mapped, ok)
			assert.Equal(t, tc.expected, usage)
		})
	}
}

func TestIsModifier(t *testing.T) {
	assert.True(t, hid.IsModifier(0xE0))
	assert.True(t, hid.IsModifier(0xE7))
	assert.False(t, hid.IsModifier(0x04))
	assert.False(t, hid.IsModifier(0xDF))
	assert.False(t, hid.IsModifier(0xE8))
}
