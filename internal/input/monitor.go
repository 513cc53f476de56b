package input

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

const (
	devInputDir = "/dev/input"
	eventPrefix = "event"

	// Kernel uevent multicast group.
	ueventGroupKernel = 1
)

// Monitor watches the kernel uevent stream for input devices appearing
// and disappearing. Construction can fail at several stages (socket,
// non-blocking setup, bind); any failure leaves the monitor permanently
// invalid - it is never retried. Callers check Valid before use;
// operations on an invalid monitor are no-ops.
type Monitor struct {
	fd     int
	logger *slog.Logger
}

// NewMonitor opens a non-blocking netlink kobject-uevent socket bound
// to the kernel event group.
func NewMonitor(logger *slog.Logger) *Monitor {
	m := &Monitor{fd: -1, logger: logger}

	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.NETLINK_KOBJECT_UEVENT)
	if err != nil {
		logger.Error("failed to open uevent socket", "error", err)
		return m
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		logger.Error("failed to set uevent socket non-blocking", "error", err)
		unix.Close(fd)
		return m
	}

	sa := &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Groups: ueventGroupKernel}
	if err := unix.Bind(fd, sa); err != nil {
		logger.Error("failed to bind uevent socket", "error", err)
		unix.Close(fd)
		return m
	}

	m.fd = fd
	return m
}

// Valid reports whether the monitor initialized successfully.
func (m *Monitor) Valid() bool { return m.fd >= 0 }

// Fd returns the monitor socket fd for polling, or -1 when invalid.
func (m *Monitor) Fd() int { return m.fd }

// EnumerateKeyboards scans /dev/input for event devices and returns a
// handle for every one that validates as a keyboard. Devices that fail
// to open or validate are silently skipped; most input nodes are not
// keyboards and that is expected.
func (m *Monitor) EnumerateKeyboards() []*Device {
	entries, err := os.ReadDir(devInputDir)
	if err != nil {
		m.logger.Error("failed to scan input devices", "dir", devInputDir, "error", err)
		return nil
	}

	var keyboards []*Device
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), eventPrefix) {
			continue
		}
		dev := NewDevice(filepath.Join(devInputDir, e.Name()))
		if !dev.Valid() {
			dev.Close()
			continue
		}
		m.logger.Debug("found keyboard", "path", dev.Path(), "name", dev.Name())
		keyboards = append(keyboards, dev)
	}
	return keyboards
}

// ProcessEvents drains every queued hot-plug notification, calling
// onAdd or onRemove with the device node path for each add or remove of
// an input event device. The drain is complete: an event storm is fully
// consumed in one call. Returns whether anything was dispatched.
// Non-blocking.
func (m *Monitor) ProcessEvents(onAdd, onRemove func(path string)) bool {
	if m.fd < 0 {
		return false
	}

	buf := make([]byte, 4096)
	processed := false
	for {
		n, _, err := unix.Recvfrom(m.fd, buf, 0)
		if err != nil || n <= 0 {
			// EAGAIN means the queue is drained.
			return processed
		}

		action, path := parseUevent(buf[:n])
		if path == "" {
			continue
		}
		switch action {
		case "add":
			if onAdd != nil {
				onAdd(path)
				processed = true
			}
		case "remove":
			if onRemove != nil {
				onRemove(path)
				processed = true
			}
		}
	}
}

// Close releases the monitor socket.
func (m *Monitor) Close() error {
	if m.fd < 0 {
		return nil
	}
	err := unix.Close(m.fd)
	m.fd = -1
	return err
}

// parseUevent extracts the action and device node path from a kernel
// uevent message. Messages are NUL-separated: a summary record
// ("add@/devices/...") followed by KEY=VALUE properties. Only input
// subsystem events carrying an event* device node are of interest;
// everything else returns an empty path.
func parseUevent(msg []byte) (action, path string) {
	var subsystem, devname string
	for _, field := range strings.Split(string(msg), "\x00") {
		k, v, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch k {
		case "ACTION":
			action = v
		case "SUBSYSTEM":
			subsystem = v
		case "DEVNAME":
			devname = v
		}
	}

	if subsystem != "input" || devname == "" {
		return action, ""
	}
	if !strings.HasPrefix(devname, "/") {
		devname = "/dev/" + devname
	}
	if !strings.HasPrefix(filepath.Base(devname), eventPrefix) {
		return action, ""
	}
	return action, devname
}
