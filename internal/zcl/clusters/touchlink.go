package clusters

import "zigbee-things/internal/zcl"

// LightLink is the ZLL commissioning cluster. Its presence on an endpoint is
// what marks a device as a Light Link product; it carries no attributes.
var LightLink = zcl.ClusterDef{
	ID:   zcl.ClusterLightLink,
	Name: "Light Link Commissioning",
	Commands: []zcl.CommandDef{
		{ID: 0x00, Name: "ScanRequest", Direction: zcl.DirectionToServer},
		{ID: 0x02, Name: "DeviceInformationRequest", Direction: zcl.DirectionToServer},
		{ID: 0x06, Name: "IdentifyRequest", Direction: zcl.DirectionToServer},
		{ID: 0x01, Name: "ScanResponse", Direction: zcl.DirectionToClient},
		{ID: 0x03, Name: "DeviceInformationResponse", Direction: zcl.DirectionToClient},
	},
}
