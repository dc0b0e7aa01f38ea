package classifier

import (
	"zigbee-things/internal/thing"
	"zigbee-things/internal/zcl"
)

var occupancySensorTypes = map[uint64]string{
	0: "pir",
	1: "ultrasonic",
	2: "pirAndUltrasonic",
	3: "physicalContact",
}

func (b *builder) occupancy() {
	ep, _ := b.desc.FirstIn(zcl.ClusterOccupancySensing)
	b.setType("motionSensor", "MotionSensor")

	p := b.prop("motion", thing.Schema{
		SemanticType: "MotionProperty",
		Title:        "Motion",
		Type:         thing.TypeBoolean,
		ReadOnly:     true,
	}, ep, zcl.ClusterOccupancySensing, "Occupancy", thing.Codec{}, report(1, 3600, 0))
	p.Mask = 0x01

	b.prop("_sensorType", thing.Schema{
		Type:     thing.TypeString,
		Enum:     enumNames(occupancySensorTypes),
		ReadOnly: true,
	}, ep, zcl.ClusterOccupancySensing, "OccupancySensorType", enumCodec(occupancySensorTypes), nil)
}

var lockStates = map[uint64]string{
	0x00: "jammed",
	0x01: "locked",
	0x02: "unlocked",
	0xFF: "unknown",
}

func (b *builder) doorLock() {
	ep, _ := b.desc.FirstIn(zcl.ClusterDoorLock)
	b.setType("doorLock", "Lock")

	b.prop("locked", thing.Schema{
		SemanticType: "LockedProperty",
		Title:        "Locked",
		Type:         thing.TypeString,
		Enum:         enumNames(lockStates),
		ReadOnly:     true,
	}, ep, zcl.ClusterDoorLock, "LockState", enumCodec(lockStates), report(1, 3600, 0))

	b.dev.AddAction(&thing.Action{
		Name:         "lock",
		Title:        "Lock",
		SemanticType: "LockAction",
		Endpoint:     ep.ID,
		ClusterID:    zcl.ClusterDoorLock,
		Command:      "LockDoor",
	})
	b.dev.AddAction(&thing.Action{
		Name:         "unlock",
		Title:        "Unlock",
		SemanticType: "UnlockAction",
		Endpoint:     ep.ID,
		ClusterID:    zcl.ClusterDoorLock,
		Command:      "UnlockDoor",
	})
}

func (b *builder) binarySensor() {
	ep, _ := b.desc.FirstIn(zcl.ClusterBinaryInput)
	b.setType("binarySensor", "BinarySensor")
	b.prop("on", thing.Schema{
		SemanticType: "BooleanProperty",
		Title:        "State",
		Type:         thing.TypeBoolean,
		ReadOnly:     true,
	}, ep, zcl.ClusterBinaryInput, "PresentValue", boolCodec, report(1, 3600, 0))
}
