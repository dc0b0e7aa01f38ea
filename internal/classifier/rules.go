package classifier

import "zigbee-things/internal/zcl"

// Match runs the ordered decision list and returns the archetype of the
// first matching rule.
func Match(d *Descriptor) Archetype {
	plugCandidate := !isLightDevice(d) && !hasLightLink(d) && !d.HasIn(zcl.ClusterColorControl)

	switch {
	case d.ZoneType != nil:
		return ArchetypeZone
	case d.HasIn(zcl.ClusterOccupancySensing):
		return ArchetypeOccupancy
	case d.HasIn(zcl.ClusterThermostat):
		return ArchetypeThermostat
	case d.HasIn(zcl.ClusterMetering) && d.HasIn(zcl.ClusterLevelControl):
		return ArchetypeMeteredDimmer
	case d.HasIn(zcl.ClusterElectricalMeasurement) && plugCandidate:
		return ArchetypeElectricalPlug
	case d.HasIn(zcl.ClusterMetering) && plugCandidate:
		return ArchetypeMeteringPlug
	case d.HasIn(zcl.ClusterLevelControl):
		return ArchetypeLight
	case d.HasIn(zcl.ClusterOnOff):
		return ArchetypeOnOffSwitch
	case d.HasOut(zcl.ClusterLevelControl) && d.HasOut(zcl.ClusterOnOff):
		return ArchetypeRemote
	case d.HasOut(zcl.ClusterOnOff):
		return ArchetypeButton
	case d.HasIn(zcl.ClusterDoorLock):
		return ArchetypeDoorLock
	case d.HasIn(zcl.ClusterBinaryInput):
		return ArchetypeBinarySensor
	}
	return ArchetypeNone
}

func build(b *builder, arch Archetype) {
	switch arch {
	case ArchetypeZone:
		b.zone()
	case ArchetypeOccupancy:
		b.occupancy()
	case ArchetypeThermostat:
		b.thermostat()
	case ArchetypeMeteredDimmer:
		b.meteredDimmer()
	case ArchetypeElectricalPlug:
		b.electricalPlug()
	case ArchetypeMeteringPlug:
		b.meteringPlug()
	case ArchetypeLight:
		b.light()
	case ArchetypeOnOffSwitch:
		b.onOffSwitch()
	case ArchetypeRemote:
		b.remote(layoutFor(b.desc.Model))
	case ArchetypeButton:
		b.pushButton()
	case ArchetypeDoorLock:
		b.doorLock()
	case ArchetypeBinarySensor:
		b.binarySensor()
	}
}
