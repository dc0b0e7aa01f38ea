package clusters

import "zigbee-things/internal/zcl"

// Standard lists every cluster the classifier binds properties to.
var Standard = []zcl.ClusterDef{
	PowerConfiguration,
	DeviceTemperatureConfiguration,
	OnOff,
	LevelControl,
	BinaryInput,
	DoorLock,
	Thermostat,
	ColorControl,
	IlluminanceMeasurement,
	TemperatureMeasurement,
	OccupancySensing,
	IASZone,
	Metering,
	ElectricalMeasurement,
	LightLink,
}

// RegisterStandard registers all standard clusters into r.
func RegisterStandard(r *zcl.Registry) {
	for _, c := range Standard {
		r.Register(c)
	}
}
