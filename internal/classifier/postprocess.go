package classifier

import (
	"zigbee-things/internal/thing"
	"zigbee-things/internal/zcl"
)

// postProcess adds the properties every device gets regardless of the
// matched archetype.
func (b *builder) postProcess(arch Archetype, cfg Config) {
	if arch != ArchetypeThermostat {
		b.temperature()
	}
	if ep, ok := b.desc.FirstIn(zcl.ClusterIlluminance); ok {
		b.prop("illuminance", thing.Schema{
			Title:    "Illuminance",
			Type:     thing.TypeNumber,
			Unit:     "lux",
			ReadOnly: true,
		}, ep, zcl.ClusterIlluminance, "MeasuredValue", illuminanceCodec, report(10, 600, 500))
	}
	b.powerConfig()
	if cfg.LastSeen {
		b.prop("lastSeen", thing.Schema{
			Title:    "Last seen",
			Type:     thing.TypeString,
			ReadOnly: true,
		}, b.firstEndpoint(), 0, "", thing.Codec{}, nil)
	}
}

func (b *builder) temperature() {
	schema := thing.Schema{
		SemanticType: "TemperatureProperty",
		Title:        "Temperature",
		Type:         thing.TypeNumber,
		Unit:         "degree celsius",
		ReadOnly:     true,
	}
	if ep, ok := b.desc.FirstIn(zcl.ClusterTemperature); ok {
		b.dev.AddTag("TemperatureSensor")
		b.prop("temperature", schema, ep, zcl.ClusterTemperature, "MeasuredValue", centiDegrees, report(10, 600, 10))
		return
	}
	if ep, ok := b.desc.FirstIn(zcl.ClusterDeviceTemperature); ok {
		b.dev.AddTag("TemperatureSensor")
		b.prop("temperature", schema, ep, zcl.ClusterDeviceTemperature, "CurrentTemperature", thing.Codec{}, nil)
	}
}

func (b *builder) powerConfig() {
	ep, ok := b.desc.FirstIn(zcl.ClusterPowerConfiguration)
	if !ok {
		return
	}
	volts := thing.Schema{
		SemanticType: "VoltageProperty",
		Type:         thing.TypeNumber,
		Unit:         "volt",
		ReadOnly:     true,
	}
	if b.desc.PowerSource == PowerMains {
		s := volts
		s.Title = "Mains voltage"
		b.prop("mainsVoltage", s, ep, zcl.ClusterPowerConfiguration, "MainsVoltage", scaled(10), nil)
	}
	if b.desc.ReportsBatteryVoltage() {
		s := volts
		s.Title = "Battery voltage"
		b.prop("batteryVoltage", s, ep, zcl.ClusterPowerConfiguration, "BatteryVoltage", scaled(10), report(3600, 43200, 1))
	}
	if b.desc.PowerSource == PowerBattery {
		b.prop("batteryLevel", thing.Schema{
			SemanticType: "LevelProperty",
			Title:        "Battery",
			Type:         thing.TypeNumber,
			Unit:         "percent",
			Minimum:      thing.Float(0),
			Maximum:      thing.Float(100),
			ReadOnly:     true,
		}, ep, zcl.ClusterPowerConfiguration, "BatteryPercentageRemaining", scaled(2), report(3600, 43200, 2))
	}
}
