// Package bridge drives the main forwarding loop: it polls the managed
// keyboards and the hot-plug monitor, routes raw key events through the
// HID translation layer and hands finished reports to the BLE sink.
package bridge

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sys/unix"

	"github.com/dharunap/ninjausb/hid"
	"github.com/dharunap/ninjausb/internal/input"
)

// ReportSink consumes finished report buffers. Fire-and-forget from the
// bridge's point of view; the BLE layer decides how writes are
// acknowledged.
type ReportSink interface {
	SendKeyboardReport(report [hid.ReportSize]byte) error
	SendConsumerReport(report [2]byte) error
}

// deviceSet is what the bridge needs from the input manager.
//
// Contract: PollFDs()[i] is the fd of Devices()[i] for every device
// index, with one extra trailing monitor fd. The implementation must
// never hold a device without a pollable fd; the tick loop maps poll
// results back to devices by index.
type deviceSet interface {
	UpdateDevices() bool
	PollFDs() []int
	Devices() []*input.Device
}

// Config holds bridge loop settings.
type Config struct {
	// PollInterval bounds a single multiplex wait so the loop can
	// observe context cancellation between ticks.
	PollInterval time.Duration
}

// Bridge owns the keyboard state machine, the exit hotkey detector and
// the poll set. Everything runs on the caller's goroutine; there is no
// internal concurrency.
type Bridge struct {
	devices deviceSet
	sink    ReportSink
	state   *hid.KeyboardState
	hotkey  *hid.ExitHotkey
	logger  *slog.Logger

	timeoutMs int
	fds       []unix.PollFd
	exit      bool
}

// New builds a bridge over an initialized device manager and a
// connected sink.
func New(devices deviceSet, sink ReportSink, cfg Config, logger *slog.Logger) *Bridge {
	timeoutMs := int(cfg.PollInterval.Milliseconds())
	if timeoutMs < 1 {
		timeoutMs = 1
	}
	b := &Bridge{
		devices:   devices,
		sink:      sink,
		state:     hid.NewKeyboardState(),
		hotkey:    hid.NewExitHotkey(),
		logger:    logger,
		timeoutMs: timeoutMs,
	}
	b.rebuildPollSet()
	return b
}

// Run ticks until the context is cancelled or the exit hotkey fires.
// On every exit path an all-zero keyboard report is sent first, so the
// remote host never ends up with stuck keys.
func (b *Bridge) Run(ctx context.Context) error {
	defer b.releaseAll()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("shutdown requested")
			return nil
		default:
		}

		if err := b.tick(); err != nil {
			return err
		}
		if b.exit {
			b.logger.Info("exit hotkey pressed")
			return nil
		}
	}
}

// tick performs one multiplex-wait over all device fds plus the monitor
// fd, drains hot-plug notifications first, then drains every ready
// device. Nothing here blocks beyond the poll timeout.
func (b *Bridge) tick() error {
	if len(b.fds) == 0 {
		b.rebuildPollSet()
		if len(b.fds) == 0 {
			time.Sleep(time.Duration(b.timeoutMs) * time.Millisecond)
			return nil
		}
	}

	n, err := unix.Poll(b.fds, b.timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return err
	}
	if n == 0 {
		return nil
	}

	// The monitor fd sits last in the poll set. A device change
	// invalidates the fd/device index alignment, so the tick restarts
	// with a fresh poll set; buffered key events survive until the
	// next tick.
	if b.fds[len(b.fds)-1].Revents&unix.POLLIN != 0 {
		if b.devices.UpdateDevices() {
			b.rebuildPollSet()
			return nil
		}
	}

	devs := b.devices.Devices()
	for i, pfd := range b.fds[:len(b.fds)-1] {
		if pfd.Revents&unix.POLLIN == 0 || i >= len(devs) {
			continue
		}
		for _, ev := range devs[i].ReadEvents() {
			if err := b.routeEvent(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// routeEvent pushes one raw key event through the translation layer.
// The exit hotkey inspects every event as a side channel regardless of
// which table, if any, claims it. Keyboard keys update the state
// machine and emit a fresh 8-byte report; consumer keys emit a
// momentary 2-byte report; unmapped codes are ignored.
func (b *Bridge) routeEvent(ev input.Event) error {
	if b.hotkey.Process(ev.Code, ev.Value) {
		b.exit = true
	}

	if b.state.ApplyKeyEvent(ev.Code, ev.Value) {
		return b.sink.SendKeyboardReport(b.state.Report())
	}
	if _, ok := hid.ConsumerUsage(ev.Code); ok {
		return b.sink.SendConsumerReport(hid.EncodeConsumerReport(ev.Code, ev.Value))
	}
	return nil
}

// rebuildPollSet regenerates the pollfd list from the device manager.
// PollFDs keeps the monitor fd last; the bridge preserves that order so
// index i of the poll set maps to device i.
func (b *Bridge) rebuildPollSet() {
	fds := b.devices.PollFDs()
	b.fds = make([]unix.PollFd, len(fds))
	for i, fd := range fds {
		b.fds[i] = unix.PollFd{Fd: int32(fd), Events: unix.POLLIN}
	}
}

// releaseAll clears the keyboard state and pushes the resulting all-zero
// report to the sink.
func (b *Bridge) releaseAll() {
	b.state.Clear()
	if err := b.sink.SendKeyboardReport(b.state.Report()); err != nil {
		b.logger.Warn("failed to send release-all report", "error", err)
	}
}
