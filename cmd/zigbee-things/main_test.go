package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(writeFile(t, "config.yaml", "mqtt:\n  enabled: false\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Path != "zigbee-things.db" {
		t.Errorf("store.path = %q", cfg.Store.Path)
	}
	if cfg.MQTT.TopicPrefix != "zigbee2mqtt" {
		t.Errorf("mqtt.topic_prefix = %q", cfg.MQTT.TopicPrefix)
	}
	if cfg.Adapter.Baud != 460800 {
		t.Errorf("adapter.baud = %d", cfg.Adapter.Baud)
	}
	if cfg.Web.Listen != "127.0.0.1:8080" {
		t.Errorf("web.listen = %q", cfg.Web.Listen)
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestLoadConfigSections(t *testing.T) {
	cfg, err := loadConfig(writeFile(t, "config.yaml", `
coordinator:
  local_ieee: "00124B00AAAAAAAA"
  local_endpoint: 2
classifier:
  last_seen: true
adapter:
  port: /dev/ttyACM0
mqtt:
  enabled: true
  broker: tcp://localhost:1883
  remote_prefix: z2m
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Coordinator.LocalEndpoint != 2 || !cfg.Classifier.LastSeen {
		t.Errorf("coordinator/classifier = %+v %+v", cfg.Coordinator, cfg.Classifier)
	}
	if cfg.Adapter.Port != "/dev/ttyACM0" || cfg.MQTT.RemotePrefix != "z2m" {
		t.Errorf("adapter/mqtt = %+v %+v", cfg.Adapter, cfg.MQTT)
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"mqtt without broker", "mqtt:\n  enabled: true\n", "mqtt.broker"},
		{"same prefixes", "mqtt:\n  topic_prefix: z\n  remote_prefix: z\n", "remote_prefix"},
		{"bad local ieee", "coordinator:\n  local_ieee: nope\n", "local_ieee"},
		{"bad baud", "adapter:\n  port: /dev/ttyUSB0\n  baud: -1\n", "adapter.baud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(writeFile(t, "config.yaml", tt.yaml))
			if err != nil {
				t.Fatal(err)
			}
			err = cfg.validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("validate() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}

func TestRunClassify(t *testing.T) {
	path := writeFile(t, "plug.yaml", `
ieee_address: "00124B0012345678"
model: plug
power_source: mains
endpoints:
  1:
    id: 1
    profile_id: 260
    device_id: 2
    in_clusters: [6]
`)
	var out bytes.Buffer
	if err := runClassify(path, &out); err != nil {
		t.Fatal(err)
	}
	var dev struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	if err := json.Unmarshal(out.Bytes(), &dev); err != nil {
		t.Fatalf("output %s: %v", out.String(), err)
	}
	if dev.ID != "00124B0012345678" || dev.Type != "switch" {
		t.Errorf("device = %+v", dev)
	}
}

func TestRunExpose(t *testing.T) {
	path := writeFile(t, "devices.json", `[
  {"ieee_address": "0x00158d0001a2b3c4", "friendly_name": "Kitchen Plug", "type": "Router",
   "supported": true, "interview_completed": true,
   "definition": {"model": "ZNCZ02LM", "vendor": "Xiaomi", "exposes": [
     {"type": "switch", "features": [
       {"type": "binary", "name": "state", "property": "state", "access": 7, "value_on": "ON", "value_off": "OFF"}
     ]}
   ]}},
  {"ieee_address": "0x0000000000000000", "friendly_name": "Coordinator", "type": "Coordinator"}
]`)
	var out bytes.Buffer
	if err := runExpose(path, &out); err != nil {
		t.Fatal(err)
	}
	var devs []struct {
		Model string `json:"model"`
	}
	if err := json.Unmarshal(out.Bytes(), &devs); err != nil {
		t.Fatalf("output %s: %v", out.String(), err)
	}
	if len(devs) != 1 || devs[0].Model != "ZNCZ02LM" {
		t.Errorf("devices = %+v", devs)
	}
}

func TestRunClassifyMissingFile(t *testing.T) {
	if err := runClassify(filepath.Join(t.TempDir(), "missing.yaml"), &bytes.Buffer{}); err == nil {
		t.Error("expected error for missing file")
	}
}
