package clusters

import "zigbee-things/internal/zcl"

var BinaryInput = zcl.ClusterDef{
	ID:   zcl.ClusterBinaryInput,
	Name: "Binary Input (Basic)",
	Attributes: []zcl.AttributeDef{
		{ID: 0x0004, Name: "ActiveText", Type: zcl.TypeCharStr, Access: zcl.AccessRead | zcl.AccessWrite},
		{ID: 0x001C, Name: "Description", Type: zcl.TypeCharStr, Access: zcl.AccessRead | zcl.AccessWrite},
		{ID: 0x002E, Name: "InactiveText", Type: zcl.TypeCharStr, Access: zcl.AccessRead | zcl.AccessWrite},
		{ID: 0x0051, Name: "OutOfService", Type: zcl.TypeBool, Access: zcl.AccessRead | zcl.AccessWrite},
		{ID: 0x0054, Name: "Polarity", Type: zcl.TypeEnum8, Access: zcl.AccessRead},
		{ID: 0x0055, Name: "PresentValue", Type: zcl.TypeBool, Access: zcl.AccessRead | zcl.AccessWrite | zcl.AccessReport},
		{ID: 0x0067, Name: "Reliability", Type: zcl.TypeEnum8, Access: zcl.AccessRead | zcl.AccessWrite},
		{ID: 0x006F, Name: "StatusFlags", Type: zcl.TypeBitmap8, Access: zcl.AccessRead | zcl.AccessReport},
		{ID: 0x0100, Name: "ApplicationType", Type: zcl.TypeUint32, Access: zcl.AccessRead},
	},
}

