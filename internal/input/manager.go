package input

import (
	"log/slog"
)

// hotplugMonitor is the slice of Monitor the Manager depends on,
// extracted so tests can drive the manager with scripted events.
type hotplugMonitor interface {
	Valid() bool
	Fd() int
	EnumerateKeyboards() []*Device
	ProcessEvents(onAdd, onRemove func(path string)) bool
	Close() error
}

// Manager owns the live keyboard collection and the hot-plug monitor.
// The collection is mutated only by UpdateDevices, between poll ticks;
// there is no concurrent access and therefore no locking.
type Manager struct {
	monitor hotplugMonitor
	devices []*Device
	open    func(path string) *Device
	logger  *slog.Logger
}

// NewManager creates a monitor and, when it is valid, enumerates all
// keyboards already attached. A manager with an invalid monitor is
// still safe to use but will never see devices; callers should check
// Valid and surface the failure to the user.
func NewManager(logger *slog.Logger) *Manager {
	m := &Manager{
		monitor: NewMonitor(logger),
		open:    NewDevice,
		logger:  logger,
	}
	if m.monitor.Valid() {
		m.devices = m.monitor.EnumerateKeyboards()
		logger.Info("keyboards found at startup", "count", len(m.devices))
	}
	return m
}

// Valid reports whether hot-plug monitoring is operational.
func (m *Manager) Valid() bool { return m.monitor.Valid() }

// Devices returns the current keyboard collection. The slice is owned
// by the manager and valid until the next UpdateDevices call.
func (m *Manager) Devices() []*Device { return m.devices }

// UpdateDevices drains pending hot-plug notifications and applies them
// to the collection. Duplicate adds are idempotent and removals of
// unknown paths are no-ops. Returns whether the collection changed, in
// which case the caller must rebuild its poll set.
func (m *Manager) UpdateDevices() bool {
	if !m.monitor.Valid() {
		return false
	}

	changed := false
	m.monitor.ProcessEvents(
		func(path string) {
			if m.addDevice(path) {
				changed = true
			}
		},
		func(path string) {
			if m.removeDevice(path) {
				changed = true
			}
		},
	)
	return changed
}

// PollFDs returns the fds to multiplex on: every device fd followed by
// the monitor fd. The monitor fd is always last; callers rely on that
// position to tell hot-plug readiness from input readiness, and on
// entry i matching Devices()[i]. That alignment holds because the
// collection only ever contains valid devices: addDevice rejects
// invalid handles and removeDevice closes before dropping.
func (m *Manager) PollFDs() []int {
	fds := make([]int, 0, len(m.devices)+1)
	for _, d := range m.devices {
		fds = append(fds, d.Fd())
	}
	if m.monitor.Valid() {
		fds = append(fds, m.monitor.Fd())
	}
	return fds
}

// Close releases every device and the monitor.
func (m *Manager) Close() {
	for _, d := range m.devices {
		d.Close()
	}
	m.devices = nil
	m.monitor.Close()
}

func (m *Manager) addDevice(path string) bool {
	for _, d := range m.devices {
		if d.Path() == path {
			return false // duplicate notification
		}
	}
	dev := m.open(path)
	if !dev.Valid() {
		dev.Close()
		return false
	}
	m.logger.Info("keyboard attached", "path", dev.Path(), "name", dev.Name())
	m.devices = append(m.devices, dev)
	return true
}

func (m *Manager) removeDevice(path string) bool {
	for i, d := range m.devices {
		if d.Path() == path {
			m.logger.Info("keyboard detached", "path", path, "name", d.Name())
			d.Close()
			m.devices = append(m.devices[:i], m.devices[i+1:]...)
			return true
		}
	}
	return false
}
