// Package hid converts Linux key events into USB HID reports.
//
// It holds the static Linux-keycode to HID-usage tables (keyboard page
// 0x07 and consumer page 0x0C), the keyboard report state machine and
// the exit hotkey detector. Nothing in this package performs I/O.
package hid

import (
	evdev "github.com/holoplot/go-evdev"
)

// Modifier usage range on the keyboard page. Usages 0xE0-0xE7 map to
// bits 0-7 of the report's modifier byte.
const (
	ModifierFirst = 0xE0
	ModifierLast  = 0xE7
)

// IsModifier reports whether a keyboard-page usage is one of the eight
// modifier keys.
func IsModifier(usage uint8) bool {
	return usage >= ModifierFirst && usage <= ModifierLast
}

// KeyboardUsage looks up the HID keyboard-page usage for a Linux key
// code. The second return is false when the code is not a keyboard key;
// callers should then try ConsumerUsage.
func KeyboardUsage(code evdev.EvCode) (uint8, bool) {
	usage, ok := keyboardUsage[code]
	return usage, ok
}

// ConsumerUsage looks up the HID consumer-page usage (media keys) for a
// Linux key code.
func ConsumerUsage(code evdev.EvCode) (uint16, bool) {
	usage, ok := consumerUsage[code]
	return usage, ok
}

// keyboardUsage maps Linux KEY_* codes to keyboard-page usages. Every
// entry is a direct 1:1 mapping; shift state travels in the modifier
// byte, never by remapping the key.
var keyboardUsage = map[evdev.EvCode]uint8{
	// Letters
	evdev.KEY_A: 0x04, evdev.KEY_B: 0x05, evdev.KEY_C: 0x06, evdev.KEY_D: 0x07,
	evdev.KEY_E: 0x08, evdev.KEY_F: 0x09, evdev.KEY_G: 0x0A, evdev.KEY_H: 0x0B,
	evdev.KEY_I: 0x0C, evdev.KEY_J: 0x0D, evdev.KEY_K: 0x0E, evdev.KEY_L: 0x0F,
	evdev.KEY_M: 0x10, evdev.KEY_N: 0x11, evdev.KEY_O: 0x12, evdev.KEY_P: 0x13,
	evdev.KEY_Q: 0x14, evdev.KEY_R: 0x15, evdev.KEY_S: 0x16, evdev.KEY_T: 0x17,
	evdev.KEY_U: 0x18, evdev.KEY_V: 0x19, evdev.KEY_W: 0x1A, evdev.KEY_X: 0x1B,
	evdev.KEY_Y: 0x1C, evdev.KEY_Z: 0x1D,

	// Number row
	evdev.KEY_1: 0x1E, evdev.KEY_2: 0x1F, evdev.KEY_3: 0x20, evdev.KEY_4: 0x21,
	evdev.KEY_5: 0x22, evdev.KEY_6: 0x23, evdev.KEY_7: 0x24, evdev.KEY_8: 0x25,
	evdev.KEY_9: 0x26, evdev.KEY_0: 0x27,

	// Punctuation and editing
	evdev.KEY_ENTER: 0x28, evdev.KEY_ESC: 0x29, evdev.KEY_BACKSPACE: 0x2A,
	evdev.KEY_TAB: 0x2B, evdev.KEY_SPACE: 0x2C, evdev.KEY_MINUS: 0x2D,
	evdev.KEY_EQUAL: 0x2E, evdev.KEY_LEFTBRACE: 0x2F, evdev.KEY_RIGHTBRACE: 0x30,
	evdev.KEY_BACKSLASH: 0x31, evdev.KEY_SEMICOLON: 0x33, evdev.KEY_APOSTROPHE: 0x34,
	evdev.KEY_GRAVE: 0x35, evdev.KEY_COMMA: 0x36, evdev.KEY_DOT: 0x37,
	evdev.KEY_SLASH: 0x38, evdev.KEY_CAPSLOCK: 0x39,

	// Function row
	evdev.KEY_F1: 0x3A, evdev.KEY_F2: 0x3B, evdev.KEY_F3: 0x3C, evdev.KEY_F4: 0x3D,
	evdev.KEY_F5: 0x3E, evdev.KEY_F6: 0x3F, evdev.KEY_F7: 0x40, evdev.KEY_F8: 0x41,
	evdev.KEY_F9: 0x42, evdev.KEY_F10: 0x43, evdev.KEY_F11: 0x44, evdev.KEY_F12: 0x45,

	// Print/Scroll/Pause
	evdev.KEY_SYSRQ: 0x46, evdev.KEY_SCROLLLOCK: 0x47, evdev.KEY_PAUSE: 0x48,

	// Navigation cluster
	evdev.KEY_INSERT: 0x49, evdev.KEY_HOME: 0x4A, evdev.KEY_PAGEUP: 0x4B,
	evdev.KEY_DELETE: 0x4C, evdev.KEY_END: 0x4D, evdev.KEY_PAGEDOWN: 0x4E,

	// Arrows
	evdev.KEY_RIGHT: 0x4F, evdev.KEY_LEFT: 0x50, evdev.KEY_DOWN: 0x51, evdev.KEY_UP: 0x52,

	// Keypad
	evdev.KEY_NUMLOCK: 0x53, evdev.KEY_KPSLASH: 0x54, evdev.KEY_KPASTERISK: 0x55,
	evdev.KEY_KPMINUS: 0x56, evdev.KEY_KPPLUS: 0x57, evdev.KEY_KPENTER: 0x58,
	evdev.KEY_KP1: 0x59, evdev.KEY_KP2: 0x5A, evdev.KEY_KP3: 0x5B,
	evdev.KEY_KP4: 0x5C, evdev.KEY_KP5: 0x5D, evdev.KEY_KP6: 0x5E,
	evdev.KEY_KP7: 0x5F, evdev.KEY_KP8: 0x60, evdev.KEY_KP9: 0x61,
	evdev.KEY_KP0: 0x62, evdev.KEY_KPDOT: 0x63, evdev.KEY_KPEQUAL: 0x67,

	// Modifiers
	evdev.KEY_LEFTCTRL: 0xE0, evdev.KEY_LEFTSHIFT: 0xE1, evdev.KEY_LEFTALT: 0xE2,
	evdev.KEY_LEFTMETA: 0xE3, evdev.KEY_RIGHTCTRL: 0xE4, evdev.KEY_RIGHTSHIFT: 0xE5,
	evdev.KEY_RIGHTALT: 0xE6, evdev.KEY_RIGHTMETA: 0xE7,

	// System keys
	evdev.KEY_MENU: 0x65, evdev.KEY_POWER: 0x66, evdev.KEY_SLEEP: 0x68,
	evdev.KEY_WAKEUP: 0x69,
}

// consumerUsage maps Linux KEY_* codes to consumer-page usages.
var consumerUsage = map[evdev.EvCode]uint16{
	// Volume
	evdev.KEY_VOLUMEUP:   0x00E9,
	evdev.KEY_VOLUMEDOWN: 0x00EA,
	evdev.KEY_MUTE:       0x00E2,

	// Transport
	evdev.KEY_PLAYPAUSE:    0x00CD,
	evdev.KEY_NEXTSONG:     0x00B5,
	evdev.KEY_PREVIOUSSONG: 0x00B6,
	evdev.KEY_STOPCD:       0x00B7,
	evdev.KEY_EJECTCD:      0x00B8,

	// Display brightness
	evdev.KEY_BRIGHTNESSUP:   0x006F,
	evdev.KEY_BRIGHTNESSDOWN: 0x0070,

	// Browser navigation
	evdev.KEY_BACK:     0x0224,
	evdev.KEY_FORWARD:  0x0225,
	evdev.KEY_REFRESH:  0x0227,
	evdev.KEY_HOMEPAGE: 0x0223,
	evdev.KEY_SEARCH:   0x0221,
}
