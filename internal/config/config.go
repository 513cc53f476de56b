// Package config defines the top-level CLI layout parsed by Kong.
package config

import (
	"github.com/dharunap/ninjausb/internal/cmd"
)

// LogConfig groups the logging flags shared by every command.
type LogConfig struct {
	Level      string `help:"Log level (trace, debug, info, warn, error)" enum:"trace,debug,info,warn,error" default:"info" env:"NINJAUSB_LOG_LEVEL"`
	File       string `help:"Write logs to this file instead of the console" env:"NINJAUSB_LOG_FILE"`
	ReportFile string `help:"Dump every transmitted HID report to this file" env:"NINJAUSB_LOG_REPORT_FILE"`
}

// CLI is the root command structure. Flags and env vars override values
// loaded from configuration files.
type CLI struct {
	Log    LogConfig `embed:"" prefix:"log."`
	Config string    `help:"Path to configuration file" env:"NINJAUSB_CONFIG"`

	Bridge  cmd.Bridge        `cmd:"" default:"withargs" help:"Forward local keyboard input to the BLE receiver (default)"`
	Devices cmd.Devices       `cmd:"" help:"Scan for BLE receivers and list them"`
	Cfg     cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration file helpers"`
	Version cmd.Version       `cmd:"" help:"Print version information"`
}
