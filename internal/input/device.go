// Package input manages Linux keyboard input devices: opening and
// validating /dev/input/event* nodes, watching the kernel uevent stream
// for hot-plug, and combining both into a single pollable device set.
package input

import (
	"encoding/binary"
	"strings"
	"unsafe"

	evdev "github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"
)

// Linux input_event on 64-bit platforms: 16 bytes of timestamp followed
// by type (u16), code (u16) and value (i32).
const eventSize = 24

const (
	evMax  = 0x1f
	keyMax = 0x2ff
)

// ioctl request encoding (Linux _IOC macro).
const (
	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	iocRead = 2
)

func ioc(dir, typ, nr, size uint32) uintptr {
	return uintptr(dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift)
}

// eviocgName = EVIOCGNAME(len): read the device name.
func eviocgName(size uint32) uintptr {
	return ioc(iocRead, 'E', 0x06, size)
}

// eviocgBit = EVIOCGBIT(ev, len): read the capability bitmask for an
// event type (0 queries the supported event types themselves).
func eviocgBit(ev, size uint32) uintptr {
	return ioc(iocRead, 'E', 0x20+ev, size)
}

func ioctl(fd int, req uintptr, buf []byte) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return errno
	}
	return nil
}

func hasBit(mask []byte, bit int) bool {
	return mask[bit/8]&(1<<(bit%8)) != 0
}

// Event is one raw key event read from a device: the Linux key code and
// its value (0 release, 1 press, 2 repeat).
type Event struct {
	Code  evdev.EvCode
	Value int32
}

// Device owns one open keyboard input device. A Device is created by
// NewDevice and must be checked with Valid before use; invalid devices
// hold no resources. Ownership is exclusive: the holder closes the fd
// exactly once via Close.
type Device struct {
	fd   int
	path string
	name string
	buf  []byte
}

// NewDevice opens an input device read-only and non-blocking and
// validates that it is a keyboard. It never fails loudly: an empty
// path, a failed open or a non-keyboard device all yield an invalid
// handle with every partially acquired resource released.
func NewDevice(path string) *Device {
	d := &Device{fd: -1, path: path}
	if path == "" {
		return d
	}

	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return d
	}

	if !isKeyboard(fd) {
		unix.Close(fd)
		return d
	}

	d.fd = fd
	d.name = deviceName(fd)
	d.buf = make([]byte, eventSize*64)
	return d
}

// isKeyboard checks that the device emits key events and carries at
// least one representative alphabetic key. Mice and touchpads also emit
// key-type events but lack KEY_A, so this dual check filters them out.
func isKeyboard(fd int) bool {
	var evBits [evMax/8 + 1]byte
	if err := ioctl(fd, eviocgBit(0, uint32(len(evBits))), evBits[:]); err != nil {
		return false
	}
	if !hasBit(evBits[:], int(evdev.EV_KEY)) {
		return false
	}

	var keyBits [keyMax/8 + 1]byte
	if err := ioctl(fd, eviocgBit(uint32(evdev.EV_KEY), uint32(len(keyBits))), keyBits[:]); err != nil {
		return false
	}
	return hasBit(keyBits[:], int(evdev.KEY_A))
}

func deviceName(fd int) string {
	var buf [256]byte
	if err := ioctl(fd, eviocgName(uint32(len(buf))), buf[:]); err != nil {
		return "Unknown Device"
	}
	name := string(buf[:])
	if i := strings.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return "Unknown Device"
	}
	return name
}

// Valid reports whether the device was opened and validated
// successfully.
func (d *Device) Valid() bool { return d.fd >= 0 }

// Fd returns the file descriptor for polling, or -1 when invalid.
func (d *Device) Fd() int { return d.fd }

// Path returns the device node path the handle was opened from.
func (d *Device) Path() string { return d.path }

// Name returns the cached human-readable device name.
func (d *Device) Name() string { return d.name }

// ReadEvents drains every key event currently buffered by the kernel
// and returns them in arrival order. The read is non-blocking: an empty
// slice means nothing was pending. Non-key events (sync, LED, misc) are
// filtered out.
func (d *Device) ReadEvents() []Event {
	if d.fd < 0 {
		return nil
	}

	var events []Event
	for {
		n, err := unix.Read(d.fd, d.buf)
		if err != nil || n < eventSize {
			// EAGAIN ends the drain; a vanished device stops
			// producing and is reaped via the hot-plug monitor.
			return events
		}
		for off := 0; off+eventSize <= n; off += eventSize {
			rec := d.buf[off : off+eventSize]
			typ := binary.LittleEndian.Uint16(rec[16:18])
			if evdev.EvType(typ) != evdev.EV_KEY {
				continue
			}
			events = append(events, Event{
				Code:  evdev.EvCode(binary.LittleEndian.Uint16(rec[18:20])),
				Value: int32(binary.LittleEndian.Uint32(rec[20:24])),
			})
		}
	}
}

// Close releases the underlying fd. Safe to call on invalid devices and
// safe to call twice; the fd is closed exactly once.
func (d *Device) Close() error {
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}
