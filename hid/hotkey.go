package hid

import (
	evdev "github.com/holoplot/go-evdev"
)

// ExitHotkey detects the Ctrl+Alt+<letter> chord used to leave the
// bridge. Ctrl+C cannot serve that purpose here: while the bridge runs,
// the terminal's interrupt sequence is just more keyboard data being
// forwarded to the remote host.
//
// The chord fires only on the letter's press edge with both modifiers
// already down. Pressing the letter first and then the modifiers does
// not trigger until the letter is released and pressed again; key
// repeat of the letter never re-triggers.
type ExitHotkey struct {
	letter evdev.EvCode

	ctrl       bool
	alt        bool
	letterDown bool
}

// NewExitHotkey returns a detector for Ctrl+Alt+H.
func NewExitHotkey() *ExitHotkey {
	return NewExitHotkeyFor(evdev.KEY_H)
}

// NewExitHotkeyFor returns a detector for Ctrl+Alt plus the given
// letter key.
func NewExitHotkeyFor(letter evdev.EvCode) *ExitHotkey {
	return &ExitHotkey{letter: letter}
}

// Process feeds one key event into the detector and reports whether the
// chord completed. Every event may be passed in, whether or not the
// keyboard state machine handled it; codes the detector does not track
// are no-ops. Repeats (value 2) neither set nor clear any flag.
func (h *ExitHotkey) Process(code evdev.EvCode, value int32) bool {
	isPress := value == ValuePress
	isRelease := value == ValueRelease

	switch code {
	case evdev.KEY_LEFTCTRL, evdev.KEY_RIGHTCTRL:
		if isPress {
			h.ctrl = true
		} else if isRelease {
			h.ctrl = false
		}
	case evdev.KEY_LEFTALT, evdev.KEY_RIGHTALT:
		if isPress {
			h.alt = true
		} else if isRelease {
			h.alt = false
		}
	case h.letter:
		if isPress {
			h.letterDown = true
			if h.ctrl && h.alt {
				return true
			}
		} else if isRelease {
			h.letterDown = false
		}
	}
	return false
}
