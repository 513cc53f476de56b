package hid_test

import (
	"testing"

	evdev "github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"

	"github.com/dharunap/ninjausb/hid"
)

func TestKeyboardReportSequence(t *testing.T) {
	type step struct {
		code  evdev.EvCode
		value int32
	}
	type testCase struct {
		name           string
		steps          []step
		expectedReport [hid.ReportSize]byte
	}

	cases := []testCase{
		{
			name:           "empty state",
			steps:          nil,
			expectedReport: [hid.ReportSize]byte{},
		},
		{
			name: "ctrl plus a",
			steps: []step{
				{evdev.KEY_LEFTCTRL, hid.ValuePress},
				{evdev.KEY_A, hid.ValuePress},
			},
			expectedReport: [hid.ReportSize]byte{0x01, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name: "both shifts fold into one byte",
			steps: []step{
				{evdev.KEY_LEFTSHIFT, hid.ValuePress},
				{evdev.KEY_RIGHTSHIFT, hid.ValuePress},
			},
			expectedReport: [hid.ReportSize]byte{0x22, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name: "release one of two shifts keeps the other",
			steps: []step{
				{evdev.KEY_LEFTSHIFT, hid.ValuePress},
				{evdev.KEY_RIGHTSHIFT, hid.ValuePress},
				{evdev.KEY_LEFTSHIFT, hid.ValueRelease},
			},
			expectedReport: [hid.ReportSize]byte{0x20, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name: "slots filled in ascending usage order",
			steps: []step{
				{evdev.KEY_Z, hid.ValuePress}, // 0x1D
				{evdev.KEY_A, hid.ValuePress}, // 0x04
				{evdev.KEY_M, hid.ValuePress}, // 0x10
			},
			expectedReport: [hid.ReportSize]byte{0x00, 0x00, 0x04, 0x10, 0x1D, 0x00, 0x00, 0x00},
		},
		{
			name: "repeat does not toggle the key off",
			steps: []step{
				{evdev.KEY_A, hid.ValuePress},
				{evdev.KEY_A, hid.ValueRepeat},
				{evdev.KEY_A, hid.ValueRepeat},
			},
			expectedReport: [hid.ReportSize]byte{0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name: "press and release round trip",
			steps: []step{
				{evdev.KEY_LEFTCTRL, hid.ValuePress},
				{evdev.KEY_A, hid.ValuePress},
				{evdev.KEY_A, hid.ValueRelease},
				{evdev.KEY_LEFTCTRL, hid.ValueRelease},
			},
			expectedReport: [hid.ReportSize]byte{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := hid.NewKeyboardState()
			for _, s := range tc.steps {
				handled := state.ApplyKeyEvent(s.code, s.value)
				assert.True(t, handled, "event for %v should hit the keyboard table", s.code)
			}
			assert.Equal(t, tc.expectedReport, state.Report())
		})
	}
}

func TestRolloverBeyondSixKeys(t *testing.T) {
	// Usages 0x04 (A) through 0x0B (H), pressed out of order.
	pressOrder := []evdev.EvCode{
		evdev.KEY_H, evdev.KEY_A, evdev.KEY_G, evdev.KEY_B,
		evdev.KEY_F, evdev.KEY_C, evdev.KEY_E, evdev.KEY_D,
	}

	state := hid.NewKeyboardState()
	for _, code := range pressOrder {
		state.ApplyKeyEvent(code, hid.ValuePress)
	}

	assert.Equal(t, 8, state.PressedKeyCount())
	report := state.Report()
	assert.Equal(t,
		[hid.ReportSize]byte{0x00, 0x00, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09},
		report, "only the six smallest usages go on the wire")

	// Releasing in-report keys promotes the tracked overflow keys.
	state.ApplyKeyEvent(evdev.KEY_A, hid.ValueRelease)
	state.ApplyKeyEvent(evdev.KEY_B, hid.ValueRelease)
	assert.Equal(t, 6, state.PressedKeyCount())
	assert.Equal(t,
		[hid.ReportSize]byte{0x00, 0x00, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B},
		state.Report())
}

func TestReportIsIdempotent(t *testing.T) {
	state := hid.NewKeyboardState()
	state.ApplyKeyEvent(evdev.KEY_Q, hid.ValuePress)

	first := state.Report()
	second := state.Report()
	assert.Equal(t, first, second)
}

func TestClearReleasesEverything(t *testing.T) {
	state := hid.NewKeyboardState()
	state.ApplyKeyEvent(evdev.KEY_LEFTMETA, hid.ValuePress)
	state.ApplyKeyEvent(evdev.KEY_SPACE, hid.ValuePress)
	state.ApplyKeyEvent(evdev.KEY_ENTER, hid.ValuePress)
	assert.NotEqual(t, [hid.ReportSize]byte{}, state.Report())

	state.Clear()
	assert.Equal(t, [hid.ReportSize]byte{}, state.Report())
	assert.Equal(t, 0, state.PressedKeyCount())
}

func TestUnmappedCodeLeavesStateUntouched(t *testing.T) {
	state := hid.NewKeyboardState()
	state.ApplyKeyEvent(evdev.KEY_A, hid.ValuePress)
	before := state.Report()

	handled := state.ApplyKeyEvent(evdev.KEY_VOLUMEUP, hid.ValuePress)
	assert.False(t, handled, "consumer keys are not keyboard keys")
	assert.Equal(t, before, state.Report())
	assert.Equal(t, 1, state.PressedKeyCount())
}

func TestEncodeConsumerReport(t *testing.T) {
	type testCase struct {
		name     string
		code     evdev.EvCode
		value    int32
		expected [2]byte
	}

	cases := []testCase{
		{"volume up press", evdev.KEY_VOLUMEUP, hid.ValuePress, [2]byte{0xE9, 0x00}},
		{"volume up release", evdev.KEY_VOLUMEUP, hid.ValueRelease, [2]byte{0x00, 0x00}},
		{"volume up repeat", evdev.KEY_VOLUMEUP, hid.ValueRepeat, [2]byte{0x00, 0x00}},
		{"browser back press", evdev.KEY_BACK, hid.ValuePress, [2]byte{0x24, 0x02}},
		{"play pause press", evdev.KEY_PLAYPAUSE, hid.ValuePress, [2]byte{0xCD, 0x00}},
		{"unmapped code press", evdev.KEY_A, hid.ValuePress, [2]byte{0x00, 0x00}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, hid.EncodeConsumerReport(tc.code, tc.value))
		})
	}
}
