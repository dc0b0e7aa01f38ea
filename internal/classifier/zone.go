package classifier

import (
	"zigbee-things/internal/thing"
	"zigbee-things/internal/zcl"
)

// IAS ZoneStatus bits.
const (
	zoneAlarm1     uint64 = 0x0001
	zoneTamper     uint64 = 0x0004
	zoneLowBattery uint64 = 0x0008
)

const zonePushButton uint16 = 0x8000

type zoneKind struct {
	typ      string
	tag      string
	prop     string
	semantic string
	title    string
}

var zoneKinds = map[uint16]zoneKind{
	0x000D: {"motionSensor", "MotionSensor", "motion", "MotionProperty", "Motion"},
	0x0015: {"doorSensor", "DoorSensor", "open", "OpenProperty", "Open"},
	0x0028: {"smokeSensor", "SmokeSensor", "smoke", "SmokeProperty", "Smoke"},
	0x002A: {"leakSensor", "LeakSensor", "leak", "LeakProperty", "Leak"},
	0x002B: {"carbonMonoxideSensor", "Alarm", "carbonMonoxide", "AlarmProperty", "Carbon monoxide"},
	0x002C: {"emergencyButton", "Alarm", "emergency", "AlarmProperty", "Emergency"},
	0x002D: {"vibrationSensor", "BinarySensor", "vibration", "BooleanProperty", "Vibration"},
	0x010F: {"remoteControl", "Alarm", "alarm", "AlarmProperty", "Alarm"},
	0x0115: {"keyFob", "Alarm", "alarm", "AlarmProperty", "Alarm"},
	0x021D: {"keypad", "Alarm", "alarm", "AlarmProperty", "Alarm"},
	0x0225: {"warningDevice", "Alarm", "alarm", "AlarmProperty", "Alarm"},
}

var genericZone = zoneKind{"binarySensor", "BinarySensor", "on", "BooleanProperty", "State"}

// zoneModels resolves devices reporting zone type 0 (standard CIE), which
// says nothing about what they sense.
var zoneModels = map[string]uint16{
	"TS0202":             0x000D,
	"RH3040":             0x000D,
	"lumi.sensor_motion": 0x000D,
	"TS0203":             0x0015,
	"DS01":               0x0015,
	"HS1SA":              0x0028,
	"SZ-WTD02N_CAR":      0x002A,
}

func zoneType(d *Descriptor) uint16 {
	zt := *d.ZoneType
	if zt == 0 {
		if mapped, ok := zoneModels[d.Model]; ok {
			return mapped
		}
	}
	return zt
}

func (b *builder) zoneEndpoint() Endpoint {
	if ep, ok := b.desc.FirstIn(zcl.ClusterIASZone); ok {
		return ep
	}
	return b.firstEndpoint()
}

func (b *builder) zone() {
	ep := b.zoneEndpoint()
	zt := zoneType(b.desc)

	if zt == zonePushButton {
		b.zonePushButton(ep)
	} else {
		kind, ok := zoneKinds[zt]
		if !ok {
			kind = genericZone
		}
		b.setType(kind.typ, kind.tag)
		b.zoneBit(ep, kind.prop, kind.title, kind.semantic, zoneAlarm1)
	}
	b.zoneBit(ep, "tamper", "Tamper", "TamperProperty", zoneTamper)
	b.zoneBit(ep, "lowBattery", "Low battery", "BooleanProperty", zoneLowBattery)
}

// zoneBit adds a boolean decoded from one bit of the shared ZoneStatus word.
func (b *builder) zoneBit(ep Endpoint, name, title, semantic string, mask uint64) *thing.Property {
	p := b.prop(name, thing.Schema{
		SemanticType: semantic,
		Title:        title,
		Type:         thing.TypeBoolean,
		ReadOnly:     true,
	}, ep, zcl.ClusterIASZone, "ZoneStatus", thing.Codec{}, report(1, 3600, 0))
	p.Mask = mask
	return p
}

// Gesture names are decoded by the transport from the extended status of a
// zone status change notification.
func (b *builder) zonePushButton(ep Endpoint) {
	b.setType("pushButton", "PushButton")
	p := b.zoneBit(ep, "pushed", "Pushed", "PushedProperty", zoneAlarm1)
	p.ButtonIndex = 1

	for _, g := range []struct{ name, title, semantic, command string }{
		{"pressed", "Pressed", "PressedEvent", "Pressed"},
		{"doublePressed", "Double pressed", "DoublePressedEvent", "DoublePressed"},
		{"longPressed", "Long pressed", "LongPressedEvent", "LongPressed"},
	} {
		b.event(thing.EventDef{
			Name:         g.name,
			Title:        g.title,
			SemanticType: g.semantic,
			ButtonIndex:  1,
			Endpoint:     ep.ID,
			ClusterID:    zcl.ClusterIASZone,
			Command:      g.command,
		})
	}
}

func (b *builder) firstEndpoint() Endpoint {
	ids := b.desc.EndpointIDs()
	if len(ids) == 0 {
		return Endpoint{ID: 1, ProfileID: zcl.ProfileHA}
	}
	return b.desc.Endpoints[ids[0]]
}
