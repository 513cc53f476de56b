package hid

import (
	"encoding/binary"

	evdev "github.com/holoplot/go-evdev"
)

// Key event values as delivered by the Linux input subsystem.
const (
	ValueRelease = 0
	ValuePress   = 1
	ValueRepeat  = 2
)

// ReportSize is the length of a boot-protocol keyboard report:
// modifier byte, reserved byte, six key slots.
const ReportSize = 8

// KeyboardState accumulates pressed keys into a canonical 8-byte HID
// keyboard report.
//
// Internally it uses a 256-bit bitmap so any number of simultaneously
// pressed keys stays tracked; only the six numerically smallest usages
// appear in the transmitted report. The report is rebuilt lazily and is
// a pure function of the current bitmap and modifier byte.
type KeyboardState struct {
	modifiers uint8
	keys      [32]uint8 // bitmap over usage codes 0x00-0xFF, modifiers excluded
	pressed   int
	report    [ReportSize]byte
	dirty     bool
}

// NewKeyboardState returns an empty keyboard state.
func NewKeyboardState() *KeyboardState {
	return &KeyboardState{}
}

// SetKeyState asserts or releases a single HID usage. Modifier usages
// toggle their bit in the modifier byte; everything else updates the
// key bitmap. The state is marked dirty unconditionally - report
// generation is idempotent, so redundant rebuilds are harmless.
func (s *KeyboardState) SetKeyState(usage uint8, pressed bool) {
	if IsModifier(usage) {
		bit := uint8(1) << (usage - ModifierFirst)
		if pressed {
			s.modifiers |= bit
		} else {
			s.modifiers &^= bit
		}
	} else {
		byteIdx, bit := usage/8, uint8(1)<<(usage%8)
		set := s.keys[byteIdx]&bit != 0
		if pressed && !set {
			s.keys[byteIdx] |= bit
			s.pressed++
		} else if !pressed && set {
			s.keys[byteIdx] &^= bit
			s.pressed--
		}
	}
	s.dirty = true
}

// ApplyKeyEvent routes a raw key event through the keyboard table and
// updates the state. Press and repeat both assert the key; repeat never
// toggles. Returns false without mutating anything when the code is not
// a keyboard key, so the caller can try the consumer table instead.
func (s *KeyboardState) ApplyKeyEvent(code evdev.EvCode, value int32) bool {
	usage, ok := KeyboardUsage(code)
	if !ok {
		return false
	}
	s.SetKeyState(usage, value != ValueRelease)
	return true
}

// Report returns the current 8-byte keyboard report, rebuilding it if
// the state changed since the last call. Key slots are filled in
// ascending usage order; the seventh and later pressed keys are dropped
// from the wire but remain tracked until released.
func (s *KeyboardState) Report() [ReportSize]byte {
	if !s.dirty {
		return s.report
	}
	s.report = [ReportSize]byte{}
	s.report[0] = s.modifiers
	idx := 2
	for code := 0; code < 256 && idx < ReportSize; code++ {
		if s.keys[code/8]&(1<<(code%8)) != 0 {
			s.report[idx] = uint8(code)
			idx++
		}
	}
	s.dirty = false
	return s.report
}

// Clear releases every key and modifier. Used before shutdown so the
// final report sent to the host is all zeroes.
func (s *KeyboardState) Clear() {
	s.modifiers = 0
	s.keys = [32]uint8{}
	s.pressed = 0
	s.dirty = true
}

// PressedKeyCount returns the number of tracked non-modifier keys,
// including keys beyond the six-slot report limit.
func (s *KeyboardState) PressedKeyCount() int {
	return s.pressed
}

// EncodeConsumerReport builds the 2-byte little-endian consumer-control
// report for a key event. Consumer reports are momentary: a press emits
// the usage, release and repeat emit the empty report. Codes missing
// from the consumer table encode as the empty report as well; callers
// normally check ConsumerUsage first to avoid sending spurious zeroes.
func EncodeConsumerReport(code evdev.EvCode, value int32) [2]byte {
	var usage uint16
	if value == ValuePress {
		if u, ok := ConsumerUsage(code); ok {
			usage = u
		}
	}
	var report [2]byte
	binary.LittleEndian.PutUint16(report[:], usage)
	return report
}
