package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/dharunap/ninjausb/internal/ble"
)

// Devices scans for nearby BLE peripherals and lists them, so a
// specific receiver address can be passed to the bridge command.
type Devices struct {
	BLE ble.Config `embed:"" prefix:"ble."`
	All bool       `help:"List every peripheral seen, not just receivers" short:"a"`
}

// Run is called by Kong when the devices command is executed.
func (d *Devices) Run(logger *slog.Logger) error {
	found, err := ble.Scan(d.BLE, logger)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	if !d.All {
		matched := found[:0]
		for _, dev := range found {
			if dev.Name == d.BLE.DeviceName {
				matched = append(matched, dev)
			}
		}
		found = matched
	}

	if len(found) == 0 {
		fmt.Println("no devices found")
		return nil
	}

	// Only decorate when a human is watching; keep script output plain.
	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Printf("%-20s %6s  %s\n", "ADDRESS", "RSSI", "NAME")
	}
	for _, dev := range found {
		name := dev.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("%-20s %6d  %s\n", dev.Address, dev.RSSI, name)
	}
	return nil
}
