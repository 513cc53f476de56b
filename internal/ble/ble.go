// Package ble connects to the NinjaUSB receiver dongle and streams HID
// reports to it over a GATT characteristic.
package ble

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/dharunap/ninjausb/hid"
	"github.com/dharunap/ninjausb/internal/log"
)

// The receiver exposes a UART-style service; reports are written to its
// RX characteristic. Keyboard and consumer frames are distinguished by
// length (8 vs 2 bytes).
var (
	serviceUUID = bluetooth.ServiceUUIDNordicUART
	reportUUID  = bluetooth.CharacteristicUUIDUARTRX
)

// Config holds the BLE link settings.
type Config struct {
	DeviceName  string        `help:"Advertised name of the receiver" default:"NinjaUSB" env:"NINJAUSB_BLE_NAME"`
	Target      string        `help:"Receiver MAC address; skips name matching" env:"NINJAUSB_BLE_TARGET"`
	ScanTimeout time.Duration `help:"BLE scan timeout" default:"10s" env:"NINJAUSB_BLE_SCAN_TIMEOUT"`
	AutoConnect bool          `help:"Connect automatically when exactly one receiver is found" default:"true" negatable:""`
}

// FoundDevice describes one peripheral seen during a scan.
type FoundDevice struct {
	Address string
	Name    string
	RSSI    int16
}

// Scan enables the adapter and collects advertisements until the scan
// timeout elapses. Results are deduplicated by address and sorted by
// descending signal strength.
func Scan(cfg Config, logger *slog.Logger) ([]FoundDevice, error) {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("enable BLE stack: %w", err)
	}

	seen := make(map[string]FoundDevice)
	timer := time.AfterFunc(cfg.ScanTimeout, func() { adapter.StopScan() })
	defer timer.Stop()

	logger.Debug("scanning for BLE devices", "timeout", cfg.ScanTimeout)
	err := adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		addr := result.Address.String()
		if prev, ok := seen[addr]; !ok || result.RSSI > prev.RSSI {
			seen[addr] = FoundDevice{Address: addr, Name: result.LocalName(), RSSI: result.RSSI}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	found := make([]FoundDevice, 0, len(seen))
	for _, d := range seen {
		found = append(found, d)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].RSSI > found[j].RSSI })
	return found, nil
}

// Sink is a connected receiver. It implements the bridge's report sink
// over write-without-response GATT writes.
type Sink struct {
	device  bluetooth.Device
	reports bluetooth.DeviceCharacteristic
	log     *slog.Logger
	dump    log.ReportLogger
}

// Connect scans for the receiver and establishes the GATT link.
// Selection policy: an explicit target address always wins; otherwise
// the advertised name is matched, and a connection is made only when
// exactly one receiver is in range (ambiguity is an error, not a
// guess). With auto-connect disabled a target address is required.
func Connect(cfg Config, logger *slog.Logger, dump log.ReportLogger) (*Sink, error) {
	if !cfg.AutoConnect && cfg.Target == "" {
		return nil, fmt.Errorf("auto-connect disabled and no target address given")
	}

	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("enable BLE stack: %w", err)
	}

	result, err := findReceiver(adapter, cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("connecting to receiver", "address", result.Address.String(), "name", result.LocalName())
	device, err := adapter.Connect(result.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", result.Address.String(), err)
	}

	services, err := device.DiscoverServices([]bluetooth.UUID{serviceUUID})
	if err != nil || len(services) == 0 {
		device.Disconnect()
		return nil, discoveryError("report service", err)
	}
	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{reportUUID})
	if err != nil || len(chars) == 0 {
		device.Disconnect()
		return nil, discoveryError("report characteristic", err)
	}

	return &Sink{device: device, reports: chars[0], log: logger, dump: dump}, nil
}

// discoveryError distinguishes a failed GATT discovery from one that
// succeeded but returned nothing; the latter has no error to wrap.
func discoveryError(what string, err error) error {
	if err != nil {
		return fmt.Errorf("discover %s: %w", what, err)
	}
	return fmt.Errorf("receiver does not expose the %s", what)
}

// findReceiver scans until the target address or a uniquely named
// receiver is found. The scan stops early on a target match; name
// matches are collected for the full timeout to detect ambiguity.
func findReceiver(adapter *bluetooth.Adapter, cfg Config, logger *slog.Logger) (bluetooth.ScanResult, error) {
	var matches []bluetooth.ScanResult
	addrSeen := make(map[string]bool)

	timer := time.AfterFunc(cfg.ScanTimeout, func() { adapter.StopScan() })
	defer timer.Stop()

	err := adapter.Scan(func(a *bluetooth.Adapter, result bluetooth.ScanResult) {
		addr := result.Address.String()
		if addrSeen[addr] {
			return
		}
		addrSeen[addr] = true

		if cfg.Target != "" {
			if strings.EqualFold(addr, cfg.Target) {
				matches = append(matches, result)
				a.StopScan()
			}
			return
		}
		if result.LocalName() == cfg.DeviceName {
			logger.Debug("receiver candidate", "address", addr, "rssi", result.RSSI)
			matches = append(matches, result)
		}
	})
	if err != nil {
		return bluetooth.ScanResult{}, fmt.Errorf("scan: %w", err)
	}

	switch len(matches) {
	case 0:
		if cfg.Target != "" {
			return bluetooth.ScanResult{}, fmt.Errorf("receiver %s not found within %s", cfg.Target, cfg.ScanTimeout)
		}
		return bluetooth.ScanResult{}, fmt.Errorf("no %q receiver found within %s", cfg.DeviceName, cfg.ScanTimeout)
	case 1:
		return matches[0], nil
	default:
		addrs := make([]string, len(matches))
		for i, m := range matches {
			addrs[i] = m.Address.String()
		}
		return bluetooth.ScanResult{}, fmt.Errorf("multiple receivers found (%s); pick one with --ble.target", strings.Join(addrs, ", "))
	}
}

// SendKeyboardReport transmits an 8-byte keyboard report.
func (s *Sink) SendKeyboardReport(report [hid.ReportSize]byte) error {
	return s.write("keyboard", report[:])
}

// SendConsumerReport transmits a 2-byte consumer-control report.
func (s *Sink) SendConsumerReport(report [2]byte) error {
	return s.write("consumer", report[:])
}

func (s *Sink) write(kind string, data []byte) error {
	s.dump.Log(kind, data)
	if _, err := s.reports.WriteWithoutResponse(data); err != nil {
		return fmt.Errorf("write %s report: %w", kind, err)
	}
	return nil
}

// Close drops the GATT connection.
func (s *Sink) Close() error {
	return s.device.Disconnect()
}
