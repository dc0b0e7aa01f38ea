package adapter

import (
	"fmt"
	"log/slog"

	"go.bug.st/serial"
)

// Config selects the serial port of the radio adapter.
type Config struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// OpenSerial opens the adapter's serial port and starts an Adapter on it.
func OpenSerial(cfg Config, logger *slog.Logger) (*Adapter, error) {
	mode := &serial.Mode{
		BaudRate: cfg.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("adapter: open %s: %w", cfg.Port, err)
	}

	// USB CDC ACM adapters wait for DTR/RTS.
	_ = port.SetDTR(true)
	_ = port.SetRTS(true)

	logger.Info("adapter serial port open", "port", cfg.Port, "baud", cfg.Baud)
	return New(port, logger), nil
}
