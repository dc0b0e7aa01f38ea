//go:build !no_mqtt

package mqtt

import (
	"fmt"
	"strings"

	"zigbee-things/internal/thing"
)

// discoveryMsg is a Home Assistant MQTT discovery payload.
type discoveryMsg struct {
	Topic   string // e.g. "homeassistant/sensor/zigbee_00158D.../temperature/config"
	Payload []byte // JSON, empty means delete
}

// haDevice is the "device" block in HA discovery.
type haDevice struct {
	Identifiers []string `json:"identifiers"`
	Model       string   `json:"model,omitempty"`
	Name        string   `json:"name"`
}

// haDiscovery is a generic HA discovery payload.
type haDiscovery struct {
	Name              string   `json:"name"`
	UniqueID          string   `json:"unique_id"`
	StateTopic        string   `json:"state_topic"`
	CommandTopic      string   `json:"command_topic,omitempty"`
	CommandTemplate   string   `json:"command_template,omitempty"`
	AvailabilityTopic string   `json:"availability_topic"`
	ValueTemplate     string   `json:"value_template,omitempty"`
	UnitOfMeasurement string   `json:"unit_of_measurement,omitempty"`
	DeviceClass       string   `json:"device_class,omitempty"`
	StateClass        string   `json:"state_class,omitempty"`
	PayloadOn         string   `json:"payload_on,omitempty"`
	PayloadOff        string   `json:"payload_off,omitempty"`
	PayloadPress      string   `json:"payload_press,omitempty"`
	Min               *float64 `json:"min,omitempty"`
	Max               *float64 `json:"max,omitempty"`
	Step              float64  `json:"step,omitempty"`
	Options           []string `json:"options,omitempty"`
	Device            haDevice `json:"device"`
}

// haUnits maps property units to HA units of measurement.
var haUnits = map[string]string{
	"degree celsius": "°C",
	"percent":        "%",
	"watt":           "W",
	"volt":           "V",
	"ampere":         "A",
	"kilowatt hour":  "kWh",
	"lux":            "lx",
	"kelvin":         "K",
}

// haClasses maps property semantic types to HA device classes.
var haClasses = map[string]string{
	"TemperatureProperty":        "temperature",
	"InstantaneousPowerProperty": "power",
	"VoltageProperty":            "voltage",
	"CurrentProperty":            "current",
	"LevelProperty":              "battery",
	"MotionProperty":             "motion",
	"OpenProperty":               "door",
	"SmokeProperty":              "smoke",
	"LeakProperty":               "moisture",
	"TamperProperty":             "tamper",
	"AlarmProperty":              "safety",
}

// deviceIdentifier returns the unique identifier for HA device registry.
func deviceIdentifier(ieee string) string {
	return "zigbee_" + ieee
}

// deviceTopicName returns the topic name for a device display name,
// lowercased and restricted to characters safe in MQTT topics.
func deviceTopicName(name string) string {
	name = strings.ToLower(name)
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, name)
}

// buildDiscovery generates HA discovery messages for the visible properties
// and actions of a classified device.
func buildDiscovery(td *thing.Device, displayName, prefix string) []discoveryMsg {
	topicName := deviceTopicName(displayName)
	d := discoveryCtx{
		nodeID:     deviceIdentifier(td.ID),
		name:       displayName,
		stateTopic: prefix + "/" + topicName,
		cmdTopic:   prefix + "/" + topicName + "/set",
		avail:      prefix + "/bridge/state",
		dev: haDevice{
			Identifiers: []string{deviceIdentifier(td.ID)},
			Model:       td.Model,
			Name:        displayName,
		},
	}

	var msgs []discoveryMsg
	for _, p := range td.VisibleProperties() {
		if p.ButtonIndex > 0 {
			continue
		}
		if msg, ok := d.property(td, p); ok {
			msgs = append(msgs, msg)
		}
	}
	for _, a := range td.Actions() {
		msgs = append(msgs, d.build("button", a.Name, a.Title, haDiscovery{
			CommandTopic: d.cmdTopic,
			PayloadPress: fmt.Sprintf(`{"action":%q}`, a.Name),
		}))
	}
	return msgs
}

type discoveryCtx struct {
	nodeID, name, stateTopic, cmdTopic, avail string
	dev                                       haDevice
}

func (d discoveryCtx) build(component, objectID, title string, payload haDiscovery) discoveryMsg {
	if title == "" {
		title = objectID
	}
	payload.Name = d.name + " " + title
	payload.UniqueID = d.nodeID + "_" + objectID
	payload.StateTopic = d.stateTopic
	payload.AvailabilityTopic = d.avail
	payload.Device = d.dev
	topic := fmt.Sprintf("homeassistant/%s/%s/%s/config", component, d.nodeID, objectID)
	return discoveryMsg{Topic: topic, Payload: mustJSON(payload)}
}

func (d discoveryCtx) property(td *thing.Device, p *thing.Property) (discoveryMsg, bool) {
	s := p.Schema
	tmpl := fmt.Sprintf("{{ value_json.%s }}", p.Name)
	cmd := fmt.Sprintf(`{"%s": {{ value }}}`, p.Name)

	switch s.Type {
	case thing.TypeBoolean:
		if s.ReadOnly {
			return d.build("binary_sensor", p.Name, s.Title, haDiscovery{
				ValueTemplate: fmt.Sprintf("{{ 'ON' if value_json.%s else 'OFF' }}", p.Name),
				DeviceClass:   haClasses[s.SemanticType],
				PayloadOn:     "ON",
				PayloadOff:    "OFF",
			}), true
		}
		component := "switch"
		if td.HasTag("Light") && s.SemanticType == "OnOffProperty" {
			component = "light"
		}
		return d.build(component, p.Name, s.Title, haDiscovery{
			CommandTopic:    d.cmdTopic,
			CommandTemplate: fmt.Sprintf(`{"%s": {{ 'true' if value == 'ON' else 'false' }}}`, p.Name),
			ValueTemplate:   fmt.Sprintf("{{ 'ON' if value_json.%s else 'OFF' }}", p.Name),
			PayloadOn:       "ON",
			PayloadOff:      "OFF",
		}), true

	case thing.TypeNumber, thing.TypeInteger:
		unit := haUnits[s.Unit]
		if unit == "" {
			unit = s.Unit
		}
		if s.ReadOnly {
			return d.build("sensor", p.Name, s.Title, haDiscovery{
				ValueTemplate:     tmpl,
				UnitOfMeasurement: unit,
				DeviceClass:       haClasses[s.SemanticType],
				StateClass:        "measurement",
			}), true
		}
		return d.build("number", p.Name, s.Title, haDiscovery{
			CommandTopic:      d.cmdTopic,
			CommandTemplate:   cmd,
			ValueTemplate:     tmpl,
			UnitOfMeasurement: unit,
			Min:               s.Minimum,
			Max:               s.Maximum,
			Step:              s.MultipleOf,
		}), true

	case thing.TypeString:
		if !s.ReadOnly && len(s.Enum) > 0 {
			return d.build("select", p.Name, s.Title, haDiscovery{
				CommandTopic:    d.cmdTopic,
				CommandTemplate: fmt.Sprintf(`{"%s": "{{ value }}"}`, p.Name),
				ValueTemplate:   tmpl,
				Options:         s.Enum,
			}), true
		}
		return d.build("sensor", p.Name, s.Title, haDiscovery{ValueTemplate: tmpl}), true
	}
	return discoveryMsg{}, false
}

// buildRemoveDiscovery generates empty retained messages that remove every
// entity previously announced for a device.
func buildRemoveDiscovery(msgs []discoveryMsg) []discoveryMsg {
	out := make([]discoveryMsg, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, discoveryMsg{Topic: m.Topic})
	}
	return out
}
