package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dharunap/ninjausb/internal/ble"
	"github.com/dharunap/ninjausb/internal/bridge"
	"github.com/dharunap/ninjausb/internal/input"
	"github.com/dharunap/ninjausb/internal/log"
)

// Bridge forwards local keyboard input to the BLE receiver. This is the
// default command.
type Bridge struct {
	BLE          ble.Config    `embed:"" prefix:"ble."`
	PollInterval time.Duration `help:"Input polling interval" default:"1ms" env:"NINJAUSB_POLL_INTERVAL"`
}

// Run is called by Kong when the bridge command is executed.
func (b *Bridge) Run(logger *slog.Logger, reports log.ReportLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := input.NewManager(logger)
	if !manager.Valid() {
		return errors.New("failed to initialize device monitoring; is /dev/input accessible?")
	}
	defer manager.Close()

	if len(manager.Devices()) == 0 {
		logger.Warn("no keyboards attached yet; waiting for hot-plug")
	}

	sink, err := ble.Connect(b.BLE, logger, reports)
	if err != nil {
		return fmt.Errorf("connect receiver: %w", err)
	}
	defer sink.Close()

	br := bridge.New(manager, sink, bridge.Config{PollInterval: b.PollInterval}, logger)
	logger.Info("bridge running; press Ctrl+Alt+H to exit (Ctrl+C is forwarded to the remote host)")
	return br.Run(ctx)
}
