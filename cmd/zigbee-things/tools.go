package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"zigbee-things/internal/classifier"
	"zigbee-things/internal/expose"
	"zigbee-things/internal/thing"
	"zigbee-things/internal/zcl"
	"zigbee-things/internal/zcl/clusters"
)

// runClassify classifies a YAML device descriptor and prints the resulting
// device as JSON.
func runClassify(path string, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read descriptor: %w", err)
	}
	var desc classifier.Descriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return fmt.Errorf("parse descriptor: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	registry := zcl.NewRegistry(logger)
	clusters.RegisterStandard(registry)

	td, err := classifier.New(registry, nil, classifier.Config{LastSeen: true}, logger).Classify(&desc)
	if err != nil {
		return err
	}
	return writeIndented(out, td)
}

// runExpose compiles every usable device of a bridge/devices message and
// prints the compiled devices as JSON. Devices that fail to compile are
// reported on stderr and skipped.
func runExpose(path string, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read devices: %w", err)
	}
	var devices []expose.BridgeDevice
	if err := json.Unmarshal(data, &devices); err != nil {
		return fmt.Errorf("parse devices: %w", err)
	}

	compiled := make([]*thing.Device, 0, len(devices))
	for _, bd := range devices {
		if !bd.Usable() {
			continue
		}
		b, err := expose.CompileDevice(bd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", bd.FriendlyName, err)
			continue
		}
		compiled = append(compiled, b.Device)
	}
	return writeIndented(out, compiled)
}

func writeIndented(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
