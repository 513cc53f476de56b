package bridge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	evdev "github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"

	"github.com/dharunap/ninjausb/hid"
	"github.com/dharunap/ninjausb/internal/input"
)

// fakeSink records every report the bridge emits.
type fakeSink struct {
	keyboard [][hid.ReportSize]byte
	consumer [][2]byte
	err      error
}

func (f *fakeSink) SendKeyboardReport(report [hid.ReportSize]byte) error {
	f.keyboard = append(f.keyboard, report)
	return f.err
}

func (f *fakeSink) SendConsumerReport(report [2]byte) error {
	f.consumer = append(f.consumer, report)
	return f.err
}

// fakeDeviceSet serves a static poll-fd list and no devices.
type fakeDeviceSet struct {
	fds []int
}

func (f *fakeDeviceSet) UpdateDevices() bool      { return false }
func (f *fakeDeviceSet) PollFDs() []int           { return f.fds }
func (f *fakeDeviceSet) Devices() []*input.Device { return nil }

func newTestBridge(sink ReportSink) *Bridge {
	return New(&fakeDeviceSet{}, sink, Config{PollInterval: time.Millisecond}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRouteEvent(t *testing.T) {
	type event struct {
		code  evdev.EvCode
		value int32
	}
	type testCase struct {
		name             string
		events           []event
		expectedKeyboard [][hid.ReportSize]byte
		expectedConsumer [][2]byte
		expectExit       bool
	}

	cases := []testCase{
		{
			name:   "letter press and release",
			events: []event{{evdev.KEY_A, hid.ValuePress}, {evdev.KEY_A, hid.ValueRelease}},
			expectedKeyboard: [][hid.ReportSize]byte{
				{0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00},
				{},
			},
		},
		{
			name:   "consumer key press and release",
			events: []event{{evdev.KEY_VOLUMEUP, hid.ValuePress}, {evdev.KEY_VOLUMEUP, hid.ValueRelease}},
			expectedConsumer: [][2]byte{
				{0xE9, 0x00},
				{0x00, 0x00},
			},
		},
		{
			name:   "unmapped code emits nothing",
			events: []event{{evdev.BTN_LEFT, hid.ValuePress}},
		},
		{
			name: "exit chord sets the exit flag and still forwards",
			events: []event{
				{evdev.KEY_LEFTCTRL, hid.ValuePress},
				{evdev.KEY_LEFTALT, hid.ValuePress},
				{evdev.KEY_H, hid.ValuePress},
			},
			expectedKeyboard: [][hid.ReportSize]byte{
				{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
				{0x05, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
				{0x05, 0x00, 0x0B, 0x00, 0x00, 0x00, 0x00, 0x00},
			},
			expectExit: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sink := &fakeSink{}
			b := newTestBridge(sink)

			for _, ev := range tc.events {
				assert.NoError(t, b.routeEvent(input.Event{Code: ev.code, Value: ev.value}))
			}

			assert.Equal(t, tc.expectedKeyboard, sink.keyboard)
			assert.Equal(t, tc.expectedConsumer, sink.consumer)
			assert.Equal(t, tc.expectExit, b.exit)
		})
	}
}

func TestRouteEventPropagatesSinkError(t *testing.T) {
	sink := &fakeSink{err: errors.New("disconnected")}
	b := newTestBridge(sink)

	err := b.routeEvent(input.Event{Code: evdev.KEY_A, Value: hid.ValuePress})
	assert.Error(t, err)
}

func TestRunSendsReleaseAllOnCancel(t *testing.T) {
	sink := &fakeSink{}
	b := newTestBridge(sink)

	// Press a key directly, then cancel before the first tick.
	assert.NoError(t, b.routeEvent(input.Event{Code: evdev.KEY_A, Value: hid.ValuePress}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, b.Run(ctx))

	last := sink.keyboard[len(sink.keyboard)-1]
	assert.Equal(t, [hid.ReportSize]byte{}, last, "final report releases every key")
}

func TestRebuildPollSet(t *testing.T) {
	set := &fakeDeviceSet{fds: []int{10, 11, 7}}
	b := New(set, &fakeSink{}, Config{PollInterval: time.Millisecond}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Len(t, b.fds, 3)
	for i, fd := range set.fds {
		assert.Equal(t, int32(fd), b.fds[i].Fd)
		assert.Equal(t, int16(unix.POLLIN), b.fds[i].Events)
	}
}

func TestPollIntervalFloor(t *testing.T) {
	b := New(&fakeDeviceSet{}, &fakeSink{}, Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, 1, b.timeoutMs)
}
