//go:build !no_mqtt

package main

import (
	"log/slog"

	mqttbridge "zigbee-things/internal/mqtt"

	"zigbee-things/internal/coordinator"
)

type mqttRuntime struct {
	bridge *mqttbridge.Bridge
}

// Transport returns the bridge when it is connected, nil otherwise.
func (m *mqttRuntime) Transport() coordinator.Transport {
	if m.bridge == nil {
		return nil
	}
	return m.bridge
}

func (m *mqttRuntime) Start(coord *coordinator.Coordinator) {
	if m.bridge != nil {
		m.bridge.Start(coord)
	}
}

func (m *mqttRuntime) Stop() {
	if m.bridge != nil {
		m.bridge.Stop()
	}
}

func initMQTT(cfg *Config, logger *slog.Logger) *mqttRuntime {
	if !cfg.MQTT.Enabled {
		return &mqttRuntime{}
	}
	bridge, err := mqttbridge.NewBridge(mqttbridge.Config{
		Broker:       cfg.MQTT.Broker,
		Username:     cfg.MQTT.Username,
		Password:     cfg.MQTT.Password,
		TopicPrefix:  cfg.MQTT.TopicPrefix,
		RemotePrefix: cfg.MQTT.RemotePrefix,
	}, logger)
	if err != nil {
		logger.Error("mqtt bridge", "err", err)
		return &mqttRuntime{}
	}
	return &mqttRuntime{bridge: bridge}
}
