package clusters

import "zigbee-things/internal/zcl"

var IlluminanceMeasurement = zcl.ClusterDef{
	ID:   zcl.ClusterIlluminance,
	Name: "Illuminance Measurement",
	Attributes: []zcl.AttributeDef{
		{ID: 0x0000, Name: "MeasuredValue", Type: zcl.TypeUint16, Access: zcl.AccessRead | zcl.AccessReport},
		{ID: 0x0001, Name: "MinMeasuredValue", Type: zcl.TypeUint16, Access: zcl.AccessRead},
		{ID: 0x0002, Name: "MaxMeasuredValue", Type: zcl.TypeUint16, Access: zcl.AccessRead},
		{ID: 0x0003, Name: "Tolerance", Type: zcl.TypeUint16, Access: zcl.AccessRead},
		{ID: 0x0004, Name: "LightSensorType", Type: zcl.TypeEnum8, Access: zcl.AccessRead},
	},
}

