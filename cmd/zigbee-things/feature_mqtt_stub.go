//go:build no_mqtt

package main

import (
	"log/slog"

	"zigbee-things/internal/coordinator"
)

type mqttRuntime struct{}

func (m *mqttRuntime) Transport() coordinator.Transport { return nil }

func (m *mqttRuntime) Start(*coordinator.Coordinator) {}

func (m *mqttRuntime) Stop() {}

func initMQTT(_ *Config, _ *slog.Logger) *mqttRuntime {
	return &mqttRuntime{}
}
