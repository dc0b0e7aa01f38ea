package zcl

// Profile IDs
const (
	ProfileHA        uint16 = 0x0104
	ProfileLightLink uint16 = 0xC05E
)

// Cluster IDs
const (
	ClusterPowerConfiguration    uint16 = 0x0001
	ClusterDeviceTemperature     uint16 = 0x0002
	ClusterScenes                uint16 = 0x0005
	ClusterOnOff                 uint16 = 0x0006
	ClusterLevelControl          uint16 = 0x0008
	ClusterBinaryInput           uint16 = 0x000F
	ClusterDoorLock              uint16 = 0x0101
	ClusterThermostat            uint16 = 0x0201
	ClusterColorControl          uint16 = 0x0300
	ClusterIlluminance           uint16 = 0x0400
	ClusterTemperature           uint16 = 0x0402
	ClusterOccupancySensing      uint16 = 0x0406
	ClusterIASZone               uint16 = 0x0500
	ClusterMetering              uint16 = 0x0702
	ClusterElectricalMeasurement uint16 = 0x0B04
	ClusterLightLink             uint16 = 0x1000
)

// Home Automation device IDs used for light sub-classification.
const (
	DeviceHAOnOffLight            uint16 = 0x0100
	DeviceHADimmableLight         uint16 = 0x0101
	DeviceHAColorDimmableLight    uint16 = 0x0102
	DeviceHAOnOffLightSwitch      uint16 = 0x0103
	DeviceHADimmerSwitch          uint16 = 0x0104
	DeviceHAColorTemperatureLight uint16 = 0x010C
	DeviceHAExtendedColorLight    uint16 = 0x010D
)

// ZigBee Light Link device IDs.
const (
	DeviceZLLOnOffLight            uint16 = 0x0000
	DeviceZLLOnOffPlug             uint16 = 0x0010
	DeviceZLLDimmableLight         uint16 = 0x0100
	DeviceZLLDimmablePlug          uint16 = 0x0110
	DeviceZLLColorLight            uint16 = 0x0200
	DeviceZLLExtendedColorLight    uint16 = 0x0210
	DeviceZLLColorTemperatureLight uint16 = 0x0220
)

// Color Control ColorCapabilities bits.
const (
	ColorCapHueSat    uint16 = 1 << 0
	ColorCapEnhHue    uint16 = 1 << 1
	ColorCapLoop      uint16 = 1 << 2
	ColorCapXY        uint16 = 1 << 3
	ColorCapColorTemp uint16 = 1 << 4
)
